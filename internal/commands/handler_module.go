package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pixil98/go-homestead/internal/game"
	"github.com/pixil98/go-homestead/internal/plugins"
)

// ModulesHandlerFactory creates handlers that list installed modules.
type ModulesHandlerFactory struct{}

func (f *ModulesHandlerFactory) ValidateConfig(config map[string]any) error {
	return nil
}

func (f *ModulesHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		var mods []plugins.Status
		err := cmdCtx.Game.Do(ctx, func(context.Context) error {
			mods = cmdCtx.Game.Dispatcher().Modules()
			return nil
		})
		if err != nil {
			return err
		}

		if len(mods) == 0 {
			return write(cmdCtx.Session, "No modules are installed.")
		}
		lines := []string{"Modules:"}
		for _, m := range mods {
			state := "off"
			if m.Enabled {
				state = "on"
			}
			lines = append(lines, fmt.Sprintf("  [%-3s] %-10s %s v%s: %s", state, m.ID, m.Name, m.Version, m.Description))
		}
		return write(cmdCtx.Session, strings.Join(lines, "\n"))
	}, nil
}

// ModuleHandlerFactory creates handlers that show or toggle one module.
// Config:
//   - id (required): module id, expanded from input
//   - state (optional): "on" or "off"; empty shows the module
type ModuleHandlerFactory struct{}

func (f *ModuleHandlerFactory) ValidateConfig(config map[string]any) error {
	if configString(config, "id") == "" {
		return fmt.Errorf("id is required")
	}
	return nil
}

func (f *ModuleHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		id := configString(cmdCtx.Config, "id")

		var enable bool
		switch state := configString(cmdCtx.Config, "state"); state {
		case "":
			return f.show(ctx, cmdCtx, id)
		case "on", "enable", "enabled":
			enable = true
		case "off", "disable", "disabled":
		default:
			return game.NewUserError("Use: module %s on|off", id)
		}

		var name string
		err := cmdCtx.Game.Do(ctx, func(ctx context.Context) error {
			d := cmdCtx.Game.Dispatcher()
			err := d.SetEnabled(ctx, id, enable)
			if errors.Is(err, plugins.ErrUnknownModule) {
				return game.NewUserError("There is no module called %q.", id)
			}
			if err != nil {
				return game.NewUserError("The %s module could not be started.", id)
			}
			for _, m := range d.Modules() {
				if m.ID == id {
					name = m.Name
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		if enable {
			return write(cmdCtx.Session, fmt.Sprintf("%s is on.", name))
		}
		return write(cmdCtx.Session, fmt.Sprintf("%s is off. Everything it made stays yours.", name))
	}, nil
}

func (f *ModuleHandlerFactory) show(ctx context.Context, cmdCtx *CommandContext, id string) error {
	var status *plugins.Status
	err := cmdCtx.Game.Do(ctx, func(context.Context) error {
		for _, m := range cmdCtx.Game.Dispatcher().Modules() {
			if m.ID == id {
				status = &m
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if status == nil {
		return game.NewUserError("There is no module called %q.", id)
	}

	lines := []string{fmt.Sprintf("%s v%s: %s", status.Name, status.Version, status.Description)}
	if !status.Enabled {
		lines = append(lines, fmt.Sprintf("It is off. Type: module %s on", id))
	} else if status.Panel != "" {
		lines = append(lines, status.Panel)
	}
	return write(cmdCtx.Session, strings.Join(lines, "\n"))
}

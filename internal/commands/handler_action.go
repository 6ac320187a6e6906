package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixil98/go-homestead/internal/game"
)

var actions = map[string]func(*game.Homestead) error{
	"chop":    (*game.Homestead).Chop,
	"forage":  (*game.Homestead).Forage,
	"till":    (*game.Homestead).Till,
	"harvest": (*game.Homestead).Harvest,
}

// ActionHandlerFactory creates handlers that start a homestead action.
// Config:
//   - action (required): chop, forage, till or harvest
type ActionHandlerFactory struct{}

func (f *ActionHandlerFactory) ValidateConfig(config map[string]any) error {
	action := configString(config, "action")
	if action == "" {
		return fmt.Errorf("action is required")
	}
	if _, ok := actions[action]; !ok {
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}

func (f *ActionHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	fn := actions[configString(config, "action")]

	return func(ctx context.Context, cmdCtx *CommandContext) error {
		return cmdCtx.Game.Do(ctx, func(context.Context) error {
			return fn(cmdCtx.Game.Home())
		})
	}, nil
}

// PlantHandlerFactory creates handlers that sow a seed.
// Config:
//   - seed (optional): seed id or name, expanded from input
type PlantHandlerFactory struct{}

func (f *PlantHandlerFactory) ValidateConfig(config map[string]any) error {
	return nil
}

func (f *PlantHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		seed := configString(cmdCtx.Config, "seed")
		return cmdCtx.Game.Do(ctx, func(context.Context) error {
			home := cmdCtx.Game.Home()
			return home.Plant(seedID(home, seed))
		})
	}, nil
}

// seedID accepts a seed id, a seed name or a crop name.
func seedID(home *game.Homestead, name string) string {
	if name == "" {
		return ""
	}
	if _, ok := home.Seeds().Get(name); ok {
		return name
	}
	for _, s := range home.Seeds().All() {
		if strings.EqualFold(s.Name, name) || strings.EqualFold(s.Crop, name) {
			return s.ID
		}
	}
	return name
}

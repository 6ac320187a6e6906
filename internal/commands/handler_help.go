package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pixil98/go-homestead/internal/game"
)

// HelpHandlerFactory creates handlers that display command help.
// Config:
//   - command (optional): command to describe, expanded from input
type HelpHandlerFactory struct {
	commands map[string]*Command
}

// NewHelpHandlerFactory creates a new HelpHandlerFactory.
func NewHelpHandlerFactory(commands map[string]*Command) *HelpHandlerFactory {
	return &HelpHandlerFactory{commands: commands}
}

func (f *HelpHandlerFactory) ValidateConfig(config map[string]any) error {
	return nil
}

func (f *HelpHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		command := configString(cmdCtx.Config, "command")
		if command != "" {
			return f.showCommand(cmdCtx.Session, command)
		}

		return f.listCommands(cmdCtx.Session)
	}, nil
}

// listCommands displays all commands grouped by category.
func (f *HelpHandlerFactory) listCommands(sess Session) error {
	// Group commands by category
	groups := make(map[string][]string)
	for id, cmd := range f.commands {
		category := cmd.Category
		if category == "" {
			category = "other"
		}
		groups[category] = append(groups[category], id)
	}

	// Sort categories and commands within each category
	categories := make([]string, 0, len(groups))
	for cat := range groups {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	lines := []string{"Available commands:"}
	for _, cat := range categories {
		cmds := groups[cat]
		sort.Strings(cmds)
		label := strings.ToUpper(cat[:1]) + cat[1:]
		lines = append(lines, fmt.Sprintf("  %s: %s", label, strings.Join(cmds, ", ")))
	}
	lines = append(lines, "Type help <command> for details.")

	return write(sess, strings.Join(lines, "\n"))
}

// showCommand displays detailed help for a specific command.
func (f *HelpHandlerFactory) showCommand(sess Session, name string) error {
	name = strings.ToLower(name)
	cmd, ok := f.commands[name]
	if !ok {
		for id, c := range f.commands {
			for _, alias := range c.Aliases {
				if alias == name {
					name, cmd, ok = id, c, true
				}
			}
		}
	}
	if !ok {
		return game.NewUserError("Command %q is unknown.", name)
	}

	lines := []string{fmt.Sprintf("%s: %s", name, cmd.Description)}

	// Build usage line from inputs
	if len(cmd.Inputs) > 0 {
		parts := []string{name}
		for _, input := range cmd.Inputs {
			if input.Required {
				parts = append(parts, fmt.Sprintf("<%s>", input.Name))
			} else {
				parts = append(parts, fmt.Sprintf("[%s]", input.Name))
			}
		}
		lines = append(lines, fmt.Sprintf("Usage: %s", strings.Join(parts, " ")))
	}
	if len(cmd.Aliases) > 0 {
		lines = append(lines, fmt.Sprintf("Aliases: %s", strings.Join(cmd.Aliases, ", ")))
	}

	return write(sess, strings.Join(lines, "\n"))
}

package commands

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

//go:embed commands.yaml
var defaultCommands []byte

// DefaultCommands returns the built-in command set.
func DefaultCommands() (map[string]*Command, error) {
	return parseCommands(defaultCommands)
}

// LoadCommands returns the built-in command set overlaid with the commands
// defined in the YAML file at path. A command in the file replaces the
// built-in one of the same name.
func LoadCommands(path string) (map[string]*Command, error) {
	cmds, err := DefaultCommands()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cmds, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading commands file: %w", err)
	}
	extra, err := parseCommands(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for name, cmd := range extra {
		cmds[name] = cmd
	}
	return cmds, nil
}

func parseCommands(data []byte) (map[string]*Command, error) {
	var cmds map[string]*Command
	if err := yaml.Unmarshal(data, &cmds); err != nil {
		return nil, fmt.Errorf("unmarshalling commands: %w", err)
	}

	el := errors.NewErrorList()
	for name, cmd := range cmds {
		if cmd == nil {
			el.Add(fmt.Errorf("command %q: empty definition", name))
			continue
		}
		if err := cmd.Validate(); err != nil {
			el.Add(fmt.Errorf("command %q: %w", name, err))
		}
	}
	if err := el.Err(); err != nil {
		return nil, err
	}
	return cmds, nil
}

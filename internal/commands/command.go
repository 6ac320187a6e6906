package commands

import (
	"fmt"
)

// InputType represents the type of a command input parameter.
type InputType string

const (
	InputTypeString InputType = "string" // Text input (single word if rest=false, multi-word if rest=true)
	InputTypeNumber InputType = "number" // Integer
)

// InputSpec defines an input parameter that a command accepts from user input.
type InputSpec struct {
	Name     string    `yaml:"name"`
	Type     InputType `yaml:"type"`
	Required bool      `yaml:"required"`
	Rest     bool      `yaml:"rest"`              // If true, captures all remaining input
	Missing  string    `yaml:"missing,omitempty"` // Message shown when a required input is absent
}

// Command defines a console command loaded from YAML.
type Command struct {
	Handler     string         `yaml:"handler"`
	Description string         `yaml:"description"`
	Category    string         `yaml:"category"`
	Aliases     []string       `yaml:"aliases,omitempty"`
	Priority    int            `yaml:"priority,omitempty"` // Wins ambiguous prefix matches
	Config      map[string]any `yaml:"config"`             // Config passed to handler, may contain templates
	Inputs      []InputSpec    `yaml:"inputs"`             // User input parameters
}

func (c *Command) Validate() error {
	if c.Handler == "" {
		return fmt.Errorf("command handler not set")
	}

	for i, input := range c.Inputs {
		if input.Name == "" {
			return fmt.Errorf("input %d: name is required", i)
		}
		if input.Type == "" {
			return fmt.Errorf("input %q: type is required", input.Name)
		}
		switch input.Type {
		case InputTypeString, InputTypeNumber:
		default:
			return fmt.Errorf("input %q: unknown type %q", input.Name, input.Type)
		}
		// Only the last input can have rest=true
		if input.Rest && i != len(c.Inputs)-1 {
			return fmt.Errorf("input %q: only the last input can have rest=true", input.Name)
		}
	}

	return nil
}

package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

type Config struct {
	Game      GameConfig       `json:"game"`
	Console   ConsoleConfig    `json:"console"`
	Listeners []ListenerConfig `json:"listeners"`
	Storage   StorageConfig    `json:"storage"`
	Nats      NatsConfig       `json:"nats"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	el.Add(c.Game.validate())
	el.Add(c.Console.validate())

	if len(c.Listeners) == 0 {
		el.Add(fmt.Errorf("at least one listener is required"))
	}
	seen := map[string]int{}
	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
			continue
		}
		if j, ok := seen[l.workerName()]; ok {
			el.Add(fmt.Errorf("listener %d: same %s as listener %d", i, l.workerName(), j))
		}
		seen[l.workerName()] = i
	}

	el.Add(c.Storage.validate())
	el.Add(c.Nats.validate())

	return el.Err()
}

type ConsoleConfig struct {
	Width       int `json:"width"`
	MaxSessions int `json:"max_sessions"`
}

func (c *ConsoleConfig) validate() error {
	el := errors.NewErrorList()

	if c.Width < 0 {
		el.Add(fmt.Errorf("console width must not be negative"))
	}
	if c.MaxSessions < 0 {
		el.Add(fmt.Errorf("max_sessions must not be negative"))
	}

	return el.Err()
}

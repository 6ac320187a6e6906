package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-homestead/internal/catalog"
	"github.com/pixil98/go-homestead/internal/commands"
	"github.com/pixil98/go-homestead/internal/driver"
	"github.com/pixil98/go-homestead/internal/plugins"
	"github.com/pixil98/go-homestead/internal/plugins/apiary"
	"github.com/pixil98/go-homestead/internal/plugins/livestock"
)

const minFrameLength = 100 * time.Millisecond

// bundledModules are the modules shipped with the game.
var bundledModules = map[string]func() plugins.Definition{
	livestock.ID: livestock.New,
	apiary.ID:    apiary.New,
}

type GameConfig struct {
	FrameLength  string   `json:"frame_length"`
	Autosave     string   `json:"autosave"`
	Balance      string   `json:"balance"`
	BalanceFile  string   `json:"balance_file"`
	CommandsFile string   `json:"commands_file"`
	Modules      []string `json:"modules"`
}

func (c *GameConfig) validate() error {
	el := errors.NewErrorList()

	if c.FrameLength != "" {
		d, err := time.ParseDuration(c.FrameLength)
		if err != nil {
			el.Add(fmt.Errorf("parsing frame_length: %w", err))
		} else if d < minFrameLength {
			el.Add(fmt.Errorf("frame_length must be at least %s", minFrameLength))
		}
	}

	if c.Autosave != "" {
		d, err := time.ParseDuration(c.Autosave)
		if err != nil {
			el.Add(fmt.Errorf("parsing autosave: %w", err))
		} else if d < 0 {
			el.Add(fmt.Errorf("autosave must not be negative"))
		}
	}

	if _, err := catalog.Preset(c.Balance); err != nil {
		el.Add(err)
	}

	for _, path := range []string{c.BalanceFile, c.CommandsFile} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			el.Add(fmt.Errorf("invalid path %q: %w", path, err))
		}
	}

	for _, id := range c.Modules {
		if _, ok := bundledModules[id]; !ok {
			el.Add(fmt.Errorf("unknown module %q", id))
		}
	}

	return el.Err()
}

// BuildBalance resolves the preset and applies the override file.
func (c *GameConfig) BuildBalance() (catalog.Balance, error) {
	b, err := catalog.Preset(c.Balance)
	if err != nil {
		return catalog.Balance{}, err
	}
	if c.BalanceFile == "" {
		return b, nil
	}
	return catalog.LoadBalance(c.BalanceFile, b)
}

// BuildRegistry registers the configured modules, or every bundled module
// when none are listed.
func (c *GameConfig) BuildRegistry(ctx context.Context) (*plugins.Registry, error) {
	ids := c.Modules
	if len(ids) == 0 {
		ids = []string{livestock.ID, apiary.ID}
	}

	reg := plugins.NewRegistry()
	for _, id := range ids {
		build, ok := bundledModules[id]
		if !ok {
			return nil, fmt.Errorf("unknown module %q", id)
		}
		if err := reg.Register(ctx, build()); err != nil {
			return nil, fmt.Errorf("registering module %q: %w", id, err)
		}
	}
	return reg, nil
}

// BuildCommands loads the command definitions.
func (c *GameConfig) BuildCommands() (map[string]*commands.Command, error) {
	if c.CommandsFile == "" {
		return commands.DefaultCommands()
	}
	return commands.LoadCommands(c.CommandsFile)
}

// DriverOpts converts the timing settings into driver options.
func (c *GameConfig) DriverOpts() ([]driver.DriverOpt, error) {
	var opts []driver.DriverOpt
	if c.FrameLength != "" {
		d, err := time.ParseDuration(c.FrameLength)
		if err != nil {
			return nil, fmt.Errorf("parsing frame_length: %w", err)
		}
		opts = append(opts, driver.WithFrameLength(d))
	}
	if c.Autosave != "" {
		d, err := time.ParseDuration(c.Autosave)
		if err != nil {
			return nil, fmt.Errorf("parsing autosave: %w", err)
		}
		opts = append(opts, driver.WithAutosave(d))
	}
	return opts, nil
}

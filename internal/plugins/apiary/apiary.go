// Package apiary adds beehives that produce honey continuously.
package apiary

import (
	"fmt"

	"github.com/pixil98/go-homestead/internal/catalog"
	"github.com/pixil98/go-homestead/internal/game"
	"github.com/pixil98/go-homestead/internal/plugins"
	"github.com/pixil98/go-homestead/internal/resource"
)

const (
	ID = "apiary"

	Hive  = "beehive"
	Honey = resource.Key("honey")

	// HoneyPer is the seconds one hive takes to fill a jar.
	HoneyPer = 120
	MaxHives = 5

	hivesKey = "hives"
)

type apiary struct {
	hives int
}

// New returns the module definition. Hive count is kept in module state so
// it survives deactivation and restarts.
func New() plugins.Definition {
	a := &apiary{}
	return plugins.Definition{
		ID:          ID,
		Name:        "Apiary",
		Version:     "1.0.0",
		Description: "Beehives that slowly fill jars of honey.",
		Hooks: plugins.Hooks{
			Init:   a.init,
			Render: a.render,
			Reset:  a.reset,
		},
		RegisterIcon: func(c *plugins.Context) error {
			c.RegisterIcon(Hive, "🐝")
			c.RegisterIcon(string(Honey), "🍯")
			return nil
		},
	}
}

func (a *apiary) init(c *plugins.Context) error {
	a.hives = 0
	if _, err := c.State().Get(hivesKey, &a.hives); err != nil {
		return err
	}

	err := c.RegisterProduction(game.Rule{
		ID:     "apiary.honey",
		Output: Honey,
		Per:    HoneyPer,
		Units:  func() float64 { return float64(a.hives) },
	})
	if err != nil {
		return fmt.Errorf("registering honey production: %w", err)
	}

	item := catalog.Item{
		ID:   Hive,
		Name: "Beehive",
		Kind: catalog.ItemModule,
		Cost: map[resource.Key]float64{resource.Wood: 30, resource.Gold: 20},
		Max:  MaxHives,
	}
	err = c.RegisterItem(item,
		func() int { return a.hives },
		func() {
			a.hives++
			if err := c.State().Set(hivesKey, a.hives); err != nil {
				c.Warn(fmt.Sprintf("Could not record the new beehive: %v", err))
			}
		},
	)
	if err != nil {
		return fmt.Errorf("registering beehive: %w", err)
	}

	return c.RegisterPrice(catalog.Bundle{Resource: Honey, Amount: 2, Price: 9})
}

func (a *apiary) render(c *plugins.Context) error {
	if a.hives == 0 {
		c.SetPanel("no beehives")
		return nil
	}
	rate := float64(a.hives) * 3600 / HoneyPer
	c.SetPanel(fmt.Sprintf("%d %s, %.0f honey/hour (stock: %d)",
		a.hives, pluralHive(a.hives), rate, c.Resources().Floor(Honey)))
	return nil
}

func (a *apiary) reset(c *plugins.Context, _ plugins.ResetOptions) error {
	a.hives = 0
	return c.State().Set(hivesKey, 0)
}

func pluralHive(n int) string {
	if n == 1 {
		return "beehive"
	}
	return "beehives"
}

// Package livestock adds cows and pigs producing milk and pork.
package livestock

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-homestead/internal/catalog"
	"github.com/pixil98/go-homestead/internal/game"
	"github.com/pixil98/go-homestead/internal/plugins"
	"github.com/pixil98/go-homestead/internal/resource"
)

const (
	ID = "livestock"

	Cow  = "cow"
	Pig  = "pig"
	Milk = resource.Key("milk")
	Pork = resource.Key("pork")
)

var kinds = []game.HerdKind{
	{ID: Cow, Name: "Cows", Output: Milk, Per: 90, CapMultiple: 5},
	{ID: Pig, Name: "Pigs", Output: Pork, Per: 180, CapMultiple: 3},
}

var items = []catalog.Item{
	{
		ID:   Cow,
		Name: "Cow",
		Kind: catalog.ItemAnimal,
		Cost: map[resource.Key]float64{resource.Wood: 40, resource.Veggies: 20, resource.Stone: 5},
	},
	{
		ID:   Pig,
		Name: "Pig",
		Kind: catalog.ItemAnimal,
		Cost: map[resource.Key]float64{resource.Wood: 35, resource.Veggies: 15},
	},
}

var prices = []catalog.Bundle{
	{Resource: Milk, Amount: 5, Price: 12},
	{Resource: Pork, Amount: 3, Price: 15},
}

// New returns the module definition.
func New() plugins.Definition {
	return plugins.Definition{
		ID:          ID,
		Name:        "Farm animals+",
		Version:     "1.0.0",
		Description: "Adds cows, pigs, milk and pork.",
		Hooks: plugins.Hooks{
			Init:   initModule,
			Render: render,
			Reset:  reset,
		},
		RegisterIcon: registerIcons,
	}
}

func initModule(c *plugins.Context) error {
	for _, k := range kinds {
		if err := c.RegisterLivestock(k); err != nil {
			return fmt.Errorf("registering %s: %w", k.ID, err)
		}
	}
	for _, it := range items {
		if err := c.RegisterItem(it, nil, nil); err != nil {
			return fmt.Errorf("registering item %s: %w", it.ID, err)
		}
	}
	for _, b := range prices {
		if err := c.RegisterPrice(b); err != nil {
			return fmt.Errorf("registering price for %s: %w", b.Resource, err)
		}
	}
	return nil
}

func registerIcons(c *plugins.Context) error {
	c.RegisterIcon(Cow, "🐄")
	c.RegisterIcon(Pig, "🐖")
	c.RegisterIcon(string(Milk), "🥛")
	c.RegisterIcon(string(Pork), "🍖")
	return nil
}

func render(c *plugins.Context) error {
	var animals []string
	var lines []string
	for _, k := range kinds {
		herd, ok := c.Herd(k.ID)
		if !ok {
			continue
		}
		if herd.Count > 0 {
			animals = append(animals, fmt.Sprintf("%d %s", herd.Count, plural(k.ID, herd.Count)))
		}
		lines = append(lines, fmt.Sprintf("%s ready: %d (stock: %d)",
			c.Label(k.Output), int(herd.Ready), c.Resources().Floor(k.Output)))
	}

	status := "no animals"
	if len(animals) > 0 {
		status = strings.Join(animals, ", ")
	}
	c.SetPanel(status + "\n" + strings.Join(lines, "\n"))
	return nil
}

func reset(c *plugins.Context, _ plugins.ResetOptions) error {
	for _, k := range kinds {
		if herd, ok := c.Herd(k.ID); ok {
			herd.Ready = 0
		}
	}
	return nil
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

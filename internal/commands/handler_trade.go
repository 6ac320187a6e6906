package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pixil98/go-homestead/internal/display"
	"github.com/pixil98/go-homestead/internal/game"
	"github.com/pixil98/go-homestead/internal/resource"
)

// BuyHandlerFactory creates handlers that buy from the shop.
// Config:
//   - item (required): item id or name, expanded from input
type BuyHandlerFactory struct{}

func (f *BuyHandlerFactory) ValidateConfig(config map[string]any) error {
	if configString(config, "item") == "" {
		return fmt.Errorf("item is required")
	}
	return nil
}

func (f *BuyHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		name := configString(cmdCtx.Config, "item")
		return cmdCtx.Game.Do(ctx, func(context.Context) error {
			home := cmdCtx.Game.Home()
			id := name
			for _, it := range home.Items() {
				if strings.EqualFold(it.Name, name) {
					id = it.ID
				}
			}
			return home.Buy(id)
		})
	}, nil
}

// SellHandlerFactory creates handlers that sell market bundles.
// Config:
//   - resource (required): resource key or label, expanded from input
//
// The optional bundles input defaults to one.
type SellHandlerFactory struct{}

func (f *SellHandlerFactory) ValidateConfig(config map[string]any) error {
	if configString(config, "resource") == "" {
		return fmt.Errorf("resource is required")
	}
	return nil
}

func (f *SellHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		name := configString(cmdCtx.Config, "resource")
		count := inputNumber(cmdCtx.Inputs, "bundles", 1)
		return cmdCtx.Game.Do(ctx, func(context.Context) error {
			home := cmdCtx.Game.Home()
			return home.Sell(marketKey(home, name), count)
		})
	}, nil
}

// marketKey matches a bundle by key or label. Crops sell as vegetables.
func marketKey(home *game.Homestead, name string) resource.Key {
	switch name {
	case "vegetables", "veg", "crops":
		return resource.Veggies
	}
	for _, b := range home.Bundles() {
		if string(b.Resource) == name || strings.EqualFold(home.Label(b.Resource), name) {
			return b.Resource
		}
	}
	return resource.Key(name)
}

// ShopHandlerFactory creates handlers that list the shop.
type ShopHandlerFactory struct{}

func (f *ShopHandlerFactory) ValidateConfig(config map[string]any) error {
	return nil
}

func (f *ShopHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		var lines []string
		err := cmdCtx.Game.Do(ctx, func(context.Context) error {
			home := cmdCtx.Game.Home()
			lines = append(lines, "For sale:")
			for _, it := range home.Items() {
				owned := home.Owned(it.ID)
				line := fmt.Sprintf("  %s %-10s %s", home.Icon(it.ID), it.ID, formatCost(home, it.Cost))
				switch {
				case it.Max > 0 && owned >= it.Max:
					line += " (owned)"
				case owned > 0:
					line += fmt.Sprintf(" (have %d)", owned)
				}
				lines = append(lines, line)
			}
			return nil
		})
		if err != nil {
			return err
		}
		return write(cmdCtx.Session, strings.Join(lines, "\n"))
	}, nil
}

// MarketHandlerFactory creates handlers that list the market bundles.
type MarketHandlerFactory struct{}

func (f *MarketHandlerFactory) ValidateConfig(config map[string]any) error {
	return nil
}

func (f *MarketHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		var lines []string
		err := cmdCtx.Game.Do(ctx, func(context.Context) error {
			home := cmdCtx.Game.Home()
			lines = append(lines, "Market prices:")
			for _, b := range home.Bundles() {
				lines = append(lines, fmt.Sprintf("  %s %s %s → %s gold",
					home.Icon(string(b.Resource)), display.Quantity(b.Amount), home.Label(b.Resource), display.Quantity(b.Price)))
			}
			return nil
		})
		if err != nil {
			return err
		}
		return write(cmdCtx.Session, strings.Join(lines, "\n"))
	}, nil
}

func formatCost(home *game.Homestead, cost map[resource.Key]float64) string {
	keys := make([]string, 0, len(cost))
	for k := range cost {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", display.Quantity(cost[resource.Key(k)]), home.Label(resource.Key(k))))
	}
	return strings.Join(parts, ", ")
}

// CollectHandlerFactory creates handlers that collect animal output.
// Config:
//   - kind (required): herd id or output resource, expanded from input
type CollectHandlerFactory struct{}

func (f *CollectHandlerFactory) ValidateConfig(config map[string]any) error {
	if configString(config, "kind") == "" {
		return fmt.Errorf("kind is required")
	}
	return nil
}

func (f *CollectHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		kind := configString(cmdCtx.Config, "kind")
		return cmdCtx.Game.Do(ctx, func(context.Context) error {
			return cmdCtx.Game.Home().Collect(kind)
		})
	}, nil
}

// SeedsHandlerFactory creates handlers that list owned seeds.
type SeedsHandlerFactory struct{}

func (f *SeedsHandlerFactory) ValidateConfig(config map[string]any) error {
	return nil
}

func (f *SeedsHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		var lines []string
		err := cmdCtx.Game.Do(ctx, func(context.Context) error {
			home := cmdCtx.Game.Home()
			for _, s := range home.Seeds().All() {
				n := home.Resources().Floor(resource.SeedKey(s.ID))
				if n <= 0 {
					continue
				}
				lines = append(lines, fmt.Sprintf("  %s %-10s %s x%d (%s, grows in %s)",
					s.Icon, s.ID, s.Name, n, strings.ToLower(s.Crop), display.Seconds(s.Grow)))
			}
			return nil
		})
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return write(cmdCtx.Session, "You have no seeds. Forage to find some.")
		}
		return write(cmdCtx.Session, "Your seeds:\n"+strings.Join(lines, "\n"))
	}, nil
}

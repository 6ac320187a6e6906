package catalog

import (
	"fmt"
	"maps"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-homestead/internal/resource"
)

// ItemKind says what buying an item changes.
type ItemKind string

const (
	ItemTool     ItemKind = "tool"
	ItemBuilding ItemKind = "building"
	ItemAnimal   ItemKind = "animal"
	// ItemModule ownership is tracked by the module that registered it.
	ItemModule   ItemKind = "module"
)

// Item is something that can be bought in the shop.
type Item struct {
	ID   string                   `json:"id"`
	Name string                   `json:"name"`
	Kind ItemKind                 `json:"kind"`
	Cost map[resource.Key]float64 `json:"cost"`
	// Max is the most a player may own; zero means no limit.
	Max int `json:"max,omitempty"`
}

func (i *Item) Validate() error {
	el := errors.NewErrorList()

	if i.ID == "" {
		el.Add(fmt.Errorf("item id is required"))
	}
	switch i.Kind {
	case ItemTool, ItemBuilding, ItemAnimal, ItemModule:
	default:
		el.Add(fmt.Errorf("item %q: unknown kind %q", i.ID, i.Kind))
	}
	for k, v := range i.Cost {
		if v < 0 {
			el.Add(fmt.Errorf("item %q: negative cost for %s", i.ID, k))
		}
	}

	return el.Err()
}

// CostOf returns a copy of the item cost so callers may not alter the catalog.
func (i *Item) CostOf() map[resource.Key]float64 {
	return maps.Clone(i.Cost)
}

// Bundle is a market offer: Amount of Resource sells for Price gold.
type Bundle struct {
	Resource resource.Key `json:"resource"`
	Amount   float64      `json:"amount"`
	Price    float64      `json:"price"`
}

func (b *Bundle) Validate() error {
	el := errors.NewErrorList()

	if b.Resource == "" {
		el.Add(fmt.Errorf("bundle resource is required"))
	}
	if b.Amount <= 0 {
		el.Add(fmt.Errorf("bundle %s: amount must be positive", b.Resource))
	}
	if b.Price < 0 {
		el.Add(fmt.Errorf("bundle %s: price must not be negative", b.Resource))
	}

	return el.Err()
}

// Tool ids.
const (
	Axe      = "axe"
	Hoe      = "hoe"
	Chainsaw = "chainsaw"
	Tractor  = "tractor"
)

// Building ids.
const (
	Shed  = "shed"
	House = "house"
	Barn  = "barn"
)

// MaxSheds is how many sheds add to storage capacity.
const MaxSheds = 3

// Chicken is the core livestock kind.
const Chicken = "chicken"

// DefaultItems returns the core shop.
func DefaultItems() []Item {
	return []Item{
		{ID: Axe, Name: "Axe", Kind: ItemTool, Cost: map[resource.Key]float64{resource.Wood: 15}, Max: 1},
		{ID: Hoe, Name: "Hoe", Kind: ItemTool, Cost: map[resource.Key]float64{resource.Wood: 10}, Max: 1},
		{ID: Shed, Name: "Shed", Kind: ItemBuilding, Cost: map[resource.Key]float64{resource.Wood: 50}, Max: MaxSheds},
		{ID: House, Name: "House", Kind: ItemBuilding, Cost: map[resource.Key]float64{resource.Wood: 150}, Max: 1},
		{ID: Barn, Name: "Barn", Kind: ItemBuilding, Cost: map[resource.Key]float64{resource.Wood: 400, resource.Stone: 100}, Max: 1},
		{ID: Chicken, Name: "Chicken", Kind: ItemAnimal, Cost: map[resource.Key]float64{resource.Wood: 10, resource.Veggies: 5}},
		{ID: Chainsaw, Name: "Chainsaw", Kind: ItemTool, Cost: map[resource.Key]float64{resource.Gold: 150}, Max: 1},
		{ID: Tractor, Name: "Tractor", Kind: ItemTool, Cost: map[resource.Key]float64{resource.Gold: 300}, Max: 1},
	}
}

// DefaultBundles returns the core market offers.
func DefaultBundles() []Bundle {
	return []Bundle{
		{Resource: resource.Wood, Amount: 10, Price: 5},
		{Resource: resource.Stone, Amount: 5, Price: 7},
		{Resource: resource.Veggies, Amount: 5, Price: 10},
		{Resource: resource.Eggs, Amount: 5, Price: 8},
	}
}

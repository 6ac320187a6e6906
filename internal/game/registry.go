package game

import (
	"fmt"

	"github.com/pixil98/go-homestead/internal/catalog"
	"github.com/pixil98/go-homestead/internal/resource"
)

// The Register functions below extend the simulation at runtime. Each
// returns a function undoing the registration; undoing never removes
// resources or animals the player owns.

// RegisterHerd adds a livestock kind. A previously dormant herd of the
// same kind is revived with its count and ready output.
func (h *Homestead) RegisterHerd(kind HerdKind) (func(), error) {
	if err := h.herds.register(kind); err != nil {
		return nil, err
	}
	return func() { h.herds.unregister(kind.ID) }, nil
}

// RegisterProduction adds a continuous production rule.
func (h *Homestead) RegisterProduction(r Rule) (func(), error) {
	if err := h.rules.register(r); err != nil {
		return nil, err
	}
	return func() { h.rules.unregister(r.ID) }, nil
}

// RegisterItem adds a shop item. Tools, buildings and animals track
// ownership in the core; module items must supply owned and bought.
func (h *Homestead) RegisterItem(item catalog.Item, owned func() int, bought func()) (func(), error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if _, ok := h.item(item.ID); ok {
		return nil, fmt.Errorf("item %q: %w", item.ID, ErrAlreadyExists)
	}

	it := &shopItem{Item: item, owned: owned, bought: bought}
	id := item.ID
	switch item.Kind {
	case catalog.ItemTool:
		it.owned = func() int { return int(boolUnits(h.tools[id])) }
		it.bought = func() { h.tools[id] = true }
	case catalog.ItemBuilding:
		it.owned = func() int { return h.buildings[id] }
		it.bought = func() { h.buildings[id]++ }
	case catalog.ItemAnimal:
		it.owned = func() int {
			if herd, ok := h.herds.get(id); ok {
				return herd.Count
			}
			return 0
		}
		it.bought = func() {
			if herd, ok := h.herds.get(id); ok {
				herd.Count++
			}
		}
	case catalog.ItemModule:
		if owned == nil || bought == nil {
			return nil, fmt.Errorf("item %q: module items need owned and bought funcs", id)
		}
	}

	h.items = append(h.items, it)
	return func() {
		for i, v := range h.items {
			if v == it {
				h.items = append(h.items[:i], h.items[i+1:]...)
				return
			}
		}
	}, nil
}

// RegisterBundle adds a market offer. A resource has at most one offer.
func (h *Homestead) RegisterBundle(b catalog.Bundle) (func(), error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if _, ok := h.bundle(b.Resource); ok {
		return nil, fmt.Errorf("bundle %s: %w", b.Resource, ErrAlreadyExists)
	}
	h.bundles = append(h.bundles, b)
	return func() {
		for i, v := range h.bundles {
			if v.Resource == b.Resource {
				h.bundles = append(h.bundles[:i], h.bundles[i+1:]...)
				return
			}
		}
	}, nil
}

// RegisterIcon sets the icon shown for name, restoring the previous icon
// when undone.
func (h *Homestead) RegisterIcon(name, icon string) func() {
	prev, had := h.icons[name]
	h.icons[name] = icon
	return func() {
		if had {
			h.icons[name] = prev
			return
		}
		delete(h.icons, name)
	}
}

func (h *Homestead) bundle(k resource.Key) (catalog.Bundle, bool) {
	for _, b := range h.bundles {
		if b.Resource == k {
			return b, true
		}
	}
	return catalog.Bundle{}, false
}

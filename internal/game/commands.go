package game

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/pixil98/go-homestead/internal/catalog"
	"github.com/pixil98/go-homestead/internal/garden"
	"github.com/pixil98/go-homestead/internal/resource"
)

func gardenError(err error) error {
	switch {
	case errors.Is(err, garden.ErrBusy):
		return NewUserError("The garden is busy.")
	case errors.Is(err, garden.ErrAlreadyTilled):
		return NewUserError("The garden is already tilled and ready for sowing.")
	case errors.Is(err, garden.ErrNotTilled):
		return NewUserError("Till the soil first.")
	case errors.Is(err, garden.ErrAlreadyPlanted):
		return NewUserError("Something is already growing.")
	case errors.Is(err, garden.ErrNothingPlanted):
		return NewUserError("Nothing is planted.")
	case errors.Is(err, garden.ErrNotReady):
		return NewUserError("Not ripe yet.")
	}
	return err
}

// Till starts tilling the garden. It needs a hoe.
func (h *Homestead) Till() error {
	if !h.tools[catalog.Hoe] {
		return NewUserError("You need a hoe.")
	}

	g := h.balance.Garden
	duration := g.TillDuration
	if h.tools[catalog.Tractor] {
		duration = g.TractorTillDuration
	}
	if err := h.plot.Till(duration); err != nil {
		return gardenError(err)
	}
	h.notify.Log("⛏️ You start tilling the garden...")
	return nil
}

// Plant sows one seed of seedID in the tilled garden. With an empty id the
// first owned seed in catalog order is used. The seed is consumed when the
// command is accepted.
func (h *Homestead) Plant(seedID string) error {
	if err := h.plot.CanPlant(); err != nil {
		return gardenError(err)
	}

	if seedID == "" {
		for _, s := range h.seeds.All() {
			if h.store.Floor(resource.SeedKey(s.ID)) >= 1 {
				seedID = s.ID
				break
			}
		}
		if seedID == "" {
			return NewUserError("You have no seeds.")
		}
	}

	seed, ok := h.seeds.Get(seedID)
	if !ok {
		return NewUserError("Unknown seed %q.", seedID)
	}
	key := resource.SeedKey(seed.ID)
	if h.store.Floor(key) < 1 {
		return NewUserError("You do not have any %s.", strings.ToLower(seed.Name))
	}

	g := h.balance.Garden
	duration := g.PlantDuration
	grow := seed.Grow
	if h.tools[catalog.Tractor] {
		duration = g.TractorPlantDuration
		grow = math.Max(g.TractorMinGrow, math.Round(grow*g.TractorGrowFactor))
	}

	if err := h.plot.Plant(seed.ID, duration, grow); err != nil {
		return gardenError(err)
	}
	h.alloc.Spend(key, 1)
	h.notify.Log("🌱 You start sowing...")
	return nil
}

// Harvest collects a ripe crop. The yield is granted through the allocator
// and may be partially lost when crop storage is full.
func (h *Homestead) Harvest() error {
	crop, err := h.plot.Harvest()
	if err != nil {
		return gardenError(err)
	}
	seed, ok := h.seeds.Get(h.seeds.Remap(crop))
	if !ok {
		return fmt.Errorf("harvest: seed catalog lost %q", catalog.DefaultSeedID)
	}

	amount := seed.YieldMin + h.rng.IntN(seed.YieldMax-seed.YieldMin+1)
	if h.tools[catalog.Tractor] {
		amount = max(1, int(math.Floor(float64(amount)*h.balance.Garden.TractorYieldFactor)))
	}

	key := resource.CropKey(seed.ID)
	if seed.ID == catalog.DefaultSeedID {
		key = resource.Veggies
	}
	got := h.alloc.Grant(key, float64(amount))

	msg := fmt.Sprintf("%s You harvest %s (+%d).", seed.Icon, strings.ToLower(seed.Crop), int(got))
	if lost := float64(amount) - got; lost > 0 {
		msg = fmt.Sprintf("%s You harvest %s (+%d, %d did not fit).", seed.Icon, strings.ToLower(seed.Crop), int(got), int(lost))
	}
	h.notify.Log(msg)
	return nil
}

// Buy purchases a shop item.
func (h *Homestead) Buy(id string) error {
	it, ok := h.item(id)
	if !ok {
		return NewUserError("There is no %q for sale.", id)
	}
	if it.Max > 0 && it.owned() >= it.Max {
		if it.Max == 1 {
			return NewUserError("You already own: %s.", it.Name)
		}
		return NewUserError("You cannot have more than %d of %s.", it.Max, strings.ToLower(it.Name))
	}
	if it.Kind == catalog.ItemAnimal {
		if _, ok := h.herds.get(id); !ok {
			return NewUserError("You have nowhere to keep: %s.", it.Name)
		}
	}

	if missing, ok := h.alloc.SpendAll(it.Cost); !ok {
		return NewUserError("Required: %s %s.", formatAmount(it.Cost[missing]), h.Label(missing))
	}
	it.bought()

	h.notify.Log(fmt.Sprintf("%s Bought: %s.", h.Icon(id), it.Name))
	return nil
}

// Sell sells count market bundles of k for gold.
func (h *Homestead) Sell(k resource.Key, count int) error {
	b, ok := h.bundle(k)
	if !ok {
		return NewUserError("Nobody buys %s here.", h.Label(k))
	}
	if count < 1 {
		return NewUserError("You need to sell at least one bundle.")
	}

	need := b.Amount * float64(count)
	if k == resource.Veggies {
		if h.totalVeggies() < need {
			return NewUserError("You do not have enough vegetables to sell %s.", formatAmount(need))
		}
		h.takeVeggies(need)
	} else {
		if float64(h.store.Floor(k)) < need {
			return NewUserError("You need %s %s.", formatAmount(need), h.Label(k))
		}
		h.alloc.Spend(k, need)
	}

	price := b.Price * float64(count)
	h.alloc.Grant(resource.Gold, price)
	h.notify.Log(fmt.Sprintf("🪙 You sell %s %s for %s gold.", formatAmount(need), h.Label(k), formatAmount(price)))
	return nil
}

// totalVeggies counts harvested crops of every kind plus plain vegetables.
func (h *Homestead) totalVeggies() float64 {
	total := float64(h.store.Floor(resource.Veggies))
	for _, k := range h.store.WithPrefix("crop:") {
		total += float64(h.store.Floor(k))
	}
	return total
}

// takeVeggies removes crops first, the basic crop before the largest
// stacks, then plain vegetables.
func (h *Homestead) takeVeggies(amount float64) {
	crops := h.store.WithPrefix("crop:")
	basic := resource.CropKey(catalog.DefaultSeedID)
	slices.SortStableFunc(crops, func(a, b resource.Key) int {
		switch {
		case a == basic && b != basic:
			return -1
		case b == basic && a != basic:
			return 1
		}
		qa, qb := h.store.Get(a), h.store.Get(b)
		switch {
		case qa > qb:
			return -1
		case qa < qb:
			return 1
		}
		return 0
	})

	for _, k := range append(crops, resource.Veggies) {
		if amount <= 0 {
			return
		}
		amount -= h.alloc.Take(k, math.Min(amount, float64(h.store.Floor(k))))
	}
}

// Collect moves ready animal output into storage. kind is a herd id or the
// resource it produces.
func (h *Homestead) Collect(kind string) error {
	herd, ok := h.herds.get(kind)
	if !ok {
		herd, ok = h.herds.byOutput(resource.Key(kind))
	}
	if !ok {
		return NewUserError("There is nothing called %q to collect from.", kind)
	}

	ready := math.Floor(herd.Ready)
	if ready <= 0 {
		return NewUserError("No %s ready yet.", h.Label(herd.Kind.Output))
	}
	got := h.alloc.Grant(herd.Kind.Output, ready)
	if got <= 0 {
		return NewUserError("There is no room to store %s.", h.Label(herd.Kind.Output))
	}
	herd.Ready -= got

	h.notify.Log(fmt.Sprintf("%s You collect %d %s.", h.Icon(string(herd.Kind.Output)), int(got), h.Label(herd.Kind.Output)))
	return nil
}

func formatAmount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

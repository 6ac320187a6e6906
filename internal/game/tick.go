package game

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-homestead/internal/garden"
	"github.com/pixil98/go-homestead/internal/resource"
)

// AdvanceGarden moves the garden plot forward by dt seconds.
func (h *Homestead) AdvanceGarden(dt float64) {
	switch h.plot.Advance(dt) {
	case garden.TaskTill:
		h.notify.Log("The soil has been loosened.")
	case garden.TaskPlant:
		crop, _ := h.plot.Crop()
		seed, _ := h.seeds.Get(crop)
		h.notify.Log(fmt.Sprintf("%s You sow %s.", seed.Icon, strings.ToLower(seed.Name)))
	}
}

// AdvanceHerds accrues dt seconds of animal output and returns the ready
// output gained per herd kind.
func (h *Homestead) AdvanceHerds(dt float64) map[string]float64 {
	gained := map[string]float64{}
	for _, herd := range h.herds.all() {
		if g := herd.Advance(dt); g > 0 {
			gained[herd.Kind.ID] = g
		}
	}
	return gained
}

// Produce runs every production rule over dt seconds and grants the totals
// through the allocator.
func (h *Homestead) Produce(dt float64, opts ...resource.GrantOption) []Yield {
	order, totals := h.rules.accrue(dt)
	yields := make([]Yield, 0, len(order))
	for _, k := range order {
		granted := h.alloc.Grant(k, totals[k], opts...)
		yields = append(yields, Yield{Key: k, Hypothetical: totals[k], Granted: granted})
	}
	return yields
}

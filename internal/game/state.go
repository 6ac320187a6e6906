package game

import (
	"maps"

	"github.com/pixil98/go-homestead/internal/garden"
	"github.com/pixil98/go-homestead/internal/resource"
)

// State is the persisted part of the simulation.
type State struct {
	Resources map[resource.Key]float64 `json:"resources"`
	Tools     map[string]bool          `json:"tools"`
	Buildings map[string]int           `json:"buildings"`
	Herds     map[string]HerdState     `json:"herds"`
	Garden    garden.Snapshot          `json:"garden"`
	Actions   map[ActionKind]float64   `json:"actions,omitempty"`
}

func (h *Homestead) Snapshot() State {
	st := State{
		Resources: h.store.Snapshot(),
		Tools:     maps.Clone(h.tools),
		Buildings: maps.Clone(h.buildings),
		Herds:     h.herds.snapshot(),
		Garden:    h.plot.Snapshot(),
	}
	if len(h.actions) > 0 {
		st.Actions = map[ActionKind]float64{}
		for kind, t := range h.actions {
			st.Actions[kind] = t.remaining
		}
	}
	return st
}

// Restore replaces the simulation state. Upgrades are applied first so
// that resources are clamped against the capacity they imply. Unknown crop
// ids in the garden are remapped to the default seed.
func (h *Homestead) Restore(st State) {
	h.tools = map[string]bool{}
	for id, owned := range st.Tools {
		if owned {
			h.tools[id] = true
		}
	}
	h.buildings = map[string]int{}
	for id, n := range st.Buildings {
		if n > 0 {
			h.buildings[id] = n
		}
	}

	h.herds.restore(st.Herds)

	g := st.Garden
	if g.Crop != "" {
		g.Crop = h.seeds.Remap(g.Crop)
	}
	if g.Seed != "" {
		g.Seed = h.seeds.Remap(g.Seed)
	}
	h.plot.Restore(g, h.balance.Garden.DefaultGrow)

	h.actions = map[ActionKind]*actionTimer{}
	for kind, remaining := range st.Actions {
		var duration float64
		switch kind {
		case ActionChop:
			duration = h.ChopDuration()
		case ActionForage:
			duration = h.balance.Forage.Duration
		default:
			continue
		}
		if remaining > 0 {
			h.actions[kind] = &actionTimer{remaining: min(remaining, duration), duration: duration}
		}
	}

	h.alloc.Restore(st.Resources)
}

// Reset returns the core simulation to a fresh game. Registrations made by
// modules stay in place.
func (h *Homestead) Reset() {
	h.Restore(State{})
}

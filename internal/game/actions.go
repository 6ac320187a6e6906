package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/pixil98/go-homestead/internal/catalog"
	"github.com/pixil98/go-homestead/internal/resource"
)

// ActionKind is a timed manual action. Each kind has its own slot.
type ActionKind string

const (
	ActionChop   ActionKind = "chop"
	ActionForage ActionKind = "forage"
)

type actionTimer struct {
	remaining float64
	duration  float64
}

// Action reports the remaining and total time of a running action.
func (h *Homestead) Action(kind ActionKind) (float64, float64, bool) {
	t, ok := h.actions[kind]
	if !ok {
		return 0, 0, false
	}
	return t.remaining, t.duration, true
}

func (h *Homestead) ChopDuration() float64 {
	if h.tools[catalog.Chainsaw] {
		return h.balance.Chop.ChainsawDuration
	}
	return h.balance.Chop.Duration
}

// ChopYield is the wood gained from one chop with the current tools.
func (h *Homestead) ChopYield() float64 {
	c := h.balance.Chop
	base := c.BareHands
	switch {
	case h.tools[catalog.Chainsaw]:
		base = c.Chainsaw
	case h.tools[catalog.Axe]:
		base = c.Axe
	}
	bonus := 0.0
	if h.buildings[catalog.Shed] > 0 {
		bonus = base * c.ShedBonus
	}
	return math.Round(base + bonus)
}

// Chop starts chopping wood.
func (h *Homestead) Chop() error {
	if _, ok := h.actions[ActionChop]; ok {
		return NewUserError("You are already chopping wood.")
	}
	h.startAction(ActionChop, h.ChopDuration())
	h.notify.Log("🪓 You start chopping wood...")
	return nil
}

// Forage starts searching the surroundings.
func (h *Homestead) Forage() error {
	if _, ok := h.actions[ActionForage]; ok {
		return NewUserError("You are already foraging.")
	}
	h.startAction(ActionForage, h.balance.Forage.Duration)
	h.notify.Log("🔎 You start looking around...")
	return nil
}

func (h *Homestead) startAction(kind ActionKind, duration float64) {
	h.actions[kind] = &actionTimer{remaining: duration, duration: duration}
}

// AdvanceActions counts down running actions and completes those that
// finish within dt.
func (h *Homestead) AdvanceActions(dt float64) {
	if dt <= 0 {
		return
	}
	for _, kind := range []ActionKind{ActionChop, ActionForage} {
		t, ok := h.actions[kind]
		if !ok {
			continue
		}
		t.remaining -= dt
		if t.remaining > 0 {
			continue
		}
		delete(h.actions, kind)
		switch kind {
		case ActionChop:
			h.completeChop()
		case ActionForage:
			h.completeForage()
		}
	}
}

func (h *Homestead) completeChop() {
	got := h.alloc.Grant(resource.Wood, h.ChopYield())
	if got <= 0 {
		return
	}
	h.notify.Log(fmt.Sprintf("🪵 You found wood (+%d).", int(got)))
}

func (h *Homestead) completeForage() {
	f := h.balance.Forage
	roll := h.rng.Float64()

	switch {
	case roll < f.StoneChance:
		if h.alloc.Grant(resource.Stone, 1) > 0 {
			h.notify.Log("🪨 You find a loose stone (+1).")
		}
	case roll < f.StoneChance+f.WoodChance:
		extra := float64(1 + h.rng.IntN(2))
		if got := h.alloc.Grant(resource.Wood, extra); got > 0 {
			h.notify.Log(fmt.Sprintf("🪵 You pick up loose branches (+%d wood).", int(got)))
		}
	case roll < f.StoneChance+f.WoodChance+f.SeedChance:
		all := h.seeds.All()
		seed := all[h.rng.IntN(len(all))]
		if h.alloc.Grant(resource.SeedKey(seed.ID), 1) > 0 {
			h.notify.Log(fmt.Sprintf("%s You find a %s (+1).", seed.Icon, strings.ToLower(seed.Name)))
		}
	default:
		h.notify.Log("⏳ You look around but find nothing.")
	}
}

package game

import (
	"fmt"
	"math"

	"github.com/pixil98/go-homestead/internal/resource"
)

// HerdKind describes a livestock kind: each animal readies one unit of
// Output every Per seconds, up to CapMultiple units per animal.
type HerdKind struct {
	ID          string
	Name        string
	Output      resource.Key
	Per         float64
	CapMultiple float64
}

func (k HerdKind) validate() error {
	if k.ID == "" {
		return fmt.Errorf("herd kind id is required")
	}
	if k.Output == "" {
		return fmt.Errorf("herd %q: output is required", k.ID)
	}
	if k.Per <= 0 || k.CapMultiple <= 0 {
		return fmt.Errorf("herd %q: per and cap multiple must be positive", k.ID)
	}
	return nil
}

// HerdState is the persisted part of a herd.
type HerdState struct {
	Count int     `json:"count"`
	Ready float64 `json:"ready"`
}

// Herd is the animal accumulator of one kind.
type Herd struct {
	Kind HerdKind
	HerdState
}

// Cap is the most output that can be waiting for collection.
func (h *Herd) Cap() float64 {
	return math.Max(1, h.Kind.CapMultiple*float64(h.Count))
}

// Rate is the ready output gained per second.
func (h *Herd) Rate() float64 {
	return float64(h.Count) / h.Kind.Per
}

// Advance accrues dt seconds of output. Accrual is linear so a single call
// with the whole interval equals any split into smaller steps, apart from
// where the cap is reached.
func (h *Herd) Advance(dt float64) float64 {
	if h.Count <= 0 || dt <= 0 {
		return 0
	}
	before := h.Ready
	h.Ready = math.Min(h.Cap(), h.Ready+dt*float64(h.Count)/h.Kind.Per)
	if h.Ready < before {
		// restored above the cap
		return 0
	}
	return h.Ready - before
}

// herds keeps registered kinds in registration order. States of kinds that
// are not registered (a disabled module) are kept dormant so ownership
// survives deactivation.
type herds struct {
	order  []string
	active map[string]*Herd
	states map[string]HerdState
}

func newHerds() *herds {
	return &herds{
		active: map[string]*Herd{},
		states: map[string]HerdState{},
	}
}

func (hs *herds) register(kind HerdKind) error {
	if err := kind.validate(); err != nil {
		return err
	}
	if _, ok := hs.active[kind.ID]; ok {
		return fmt.Errorf("herd %q: %w", kind.ID, ErrAlreadyExists)
	}
	h := &Herd{Kind: kind, HerdState: hs.states[kind.ID]}
	delete(hs.states, kind.ID)
	hs.active[kind.ID] = h
	hs.order = append(hs.order, kind.ID)
	return nil
}

func (hs *herds) unregister(id string) {
	h, ok := hs.active[id]
	if !ok {
		return
	}
	hs.states[id] = h.HerdState
	delete(hs.active, id)
	for i, v := range hs.order {
		if v == id {
			hs.order = append(hs.order[:i], hs.order[i+1:]...)
			break
		}
	}
}

func (hs *herds) get(id string) (*Herd, bool) {
	h, ok := hs.active[id]
	return h, ok
}

// byOutput finds the herd producing k.
func (hs *herds) byOutput(k resource.Key) (*Herd, bool) {
	for _, id := range hs.order {
		if h := hs.active[id]; h.Kind.Output == k {
			return h, true
		}
	}
	return nil, false
}

func (hs *herds) all() []*Herd {
	out := make([]*Herd, 0, len(hs.order))
	for _, id := range hs.order {
		out = append(out, hs.active[id])
	}
	return out
}

func (hs *herds) snapshot() map[string]HerdState {
	out := make(map[string]HerdState, len(hs.active)+len(hs.states))
	for id, st := range hs.states {
		out[id] = st
	}
	for id, h := range hs.active {
		out[id] = h.HerdState
	}
	return out
}

func (hs *herds) restore(states map[string]HerdState) {
	hs.states = map[string]HerdState{}
	for _, h := range hs.active {
		h.HerdState = HerdState{}
	}
	for id, st := range states {
		st = sanitizeHerd(st)
		if h, ok := hs.active[id]; ok {
			h.HerdState = st
			h.Ready = math.Min(h.Ready, h.Cap())
			continue
		}
		hs.states[id] = st
	}
}

func sanitizeHerd(st HerdState) HerdState {
	if st.Count < 0 {
		st.Count = 0
	}
	if st.Ready < 0 || math.IsNaN(st.Ready) || math.IsInf(st.Ready, 0) {
		st.Ready = 0
	}
	return st
}

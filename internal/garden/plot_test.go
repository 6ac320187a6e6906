package garden

import (
	"errors"
	"testing"

	"github.com/pixil98/go-testutil"
)

func plotIn(state string) *Plot {
	p := NewPlot()
	switch state {
	case "untilled":
	case "tilling":
		_ = p.Till(4)
	case "tilled":
		_ = p.Till(4)
		p.Advance(4)
	case "planting":
		_ = p.Till(4)
		p.Advance(4)
		_ = p.Plant("carrot", 3, 20)
	case "growing":
		_ = p.Till(4)
		p.Advance(4)
		_ = p.Plant("carrot", 3, 20)
		p.Advance(3)
	case "ripe":
		_ = p.Till(4)
		p.Advance(4)
		_ = p.Plant("carrot", 3, 20)
		p.Advance(3)
		p.Advance(20)
	}
	return p
}

func TestPlot_Commands(t *testing.T) {
	tests := map[string]struct {
		state      string
		till       error
		plant      error
		harvest    error
		expAfter   State
		expTilled  bool
		expHarvest string
	}{
		"untilled accepts only till": {
			state:   "untilled",
			till:    nil,
			plant:   ErrNotTilled,
			harvest: ErrNothingPlanted,
		},
		"tilling accepts nothing": {
			state:   "tilling",
			till:    ErrBusy,
			plant:   ErrBusy,
			harvest: ErrBusy,
		},
		"tilled accepts plant": {
			state:   "tilled",
			till:    ErrAlreadyTilled,
			plant:   nil,
			harvest: ErrNothingPlanted,
		},
		"planting accepts nothing": {
			state:   "planting",
			till:    ErrBusy,
			plant:   ErrBusy,
			harvest: ErrBusy,
		},
		"growing rejects harvest": {
			state:   "growing",
			till:    ErrAlreadyPlanted,
			plant:   ErrAlreadyPlanted,
			harvest: ErrNotReady,
		},
		"ripe accepts harvest": {
			state:   "ripe",
			till:    ErrAlreadyPlanted,
			plant:   ErrAlreadyPlanted,
			harvest: nil,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			check := func(cmd string, exp error, run func(p *Plot) error) {
				p := plotIn(tt.state)
				before := p.Snapshot()
				err := run(p)
				if !errors.Is(err, exp) {
					t.Fatalf("%s: expected %v, got %v", cmd, exp, err)
				}
				if exp != nil {
					testutil.AssertEqual(t, cmd+" leaves state unchanged", p.Snapshot(), before)
				}
			}

			check("till", tt.till, func(p *Plot) error { return p.Till(4) })
			check("plant", tt.plant, func(p *Plot) error { return p.Plant("basic", 3, 20) })
			check("harvest", tt.harvest, func(p *Plot) error {
				_, err := p.Harvest()
				return err
			})
		})
	}
}

func TestPlot_HarvestReturnsToUntilled(t *testing.T) {
	p := plotIn("ripe")

	crop, err := p.Harvest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "crop", crop, "carrot")
	testutil.AssertEqual(t, "state", p.State(), StateIdle)
	testutil.AssertEqual(t, "tilled", p.Tilled(), false)
}

func TestPlot_GrowthClamps(t *testing.T) {
	p := plotIn("growing")

	p.Advance(25)

	_, progress := p.Crop()
	testutil.AssertEqual(t, "progress", progress, 1.0)
	testutil.AssertEqual(t, "ready", p.Ready(), true)
}

func TestPlot_Advance(t *testing.T) {
	tests := map[string]struct {
		state       string
		steps       []float64
		expState    State
		expDone     TaskKind
		expProgress float64
	}{
		"till completes": {
			state:    "tilling",
			steps:    []float64{1, 1, 2},
			expState: StateIdle,
			expDone:  TaskTill,
		},
		"till still running": {
			state:    "tilling",
			steps:    []float64{1, 2},
			expState: StateWorking,
		},
		"plant completes at zero progress": {
			state:    "planting",
			steps:    []float64{10},
			expState: StatePlanted,
			expDone:  TaskPlant,
		},
		"growth is linear": {
			state:       "growing",
			steps:       []float64{5, 5},
			expState:    StatePlanted,
			expProgress: 0.5,
		},
		"negative dt is ignored": {
			state:    "tilling",
			steps:    []float64{-10},
			expState: StateWorking,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := plotIn(tt.state)
			var done TaskKind
			for _, dt := range tt.steps {
				if d := p.Advance(dt); d != "" {
					done = d
				}
			}

			testutil.AssertEqual(t, "state", p.State(), tt.expState)
			testutil.AssertEqual(t, "completed", done, tt.expDone)
			_, progress := p.Crop()
			testutil.AssertEqual(t, "progress", progress, tt.expProgress)
		})
	}
}

func TestPlot_Restore(t *testing.T) {
	tests := map[string]struct {
		snap        Snapshot
		expState    State
		expProgress float64
	}{
		"planted clamps progress": {
			snap:        Snapshot{State: StatePlanted, Crop: "basic", Progress: 3, Grow: 20},
			expState:    StatePlanted,
			expProgress: 1,
		},
		"planted without crop": {
			snap:     Snapshot{State: StatePlanted, Progress: 0.5},
			expState: StateIdle,
		},
		"unknown task": {
			snap:     Snapshot{State: StateWorking, Task: "water", Remaining: 3, Duration: 4},
			expState: StateIdle,
		},
		"unknown state": {
			snap:     Snapshot{State: "flooded"},
			expState: StateIdle,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := NewPlot()
			p.Restore(tt.snap, 20)

			testutil.AssertEqual(t, "state", p.State(), tt.expState)
			_, progress := p.Crop()
			testutil.AssertEqual(t, "progress", progress, tt.expProgress)
		})
	}
}

func TestPlot_SnapshotRoundTrip(t *testing.T) {
	p := plotIn("planting")
	p.Advance(1)

	q := NewPlot()
	q.Restore(p.Snapshot(), 20)

	testutil.AssertEqual(t, "snapshot", q.Snapshot(), p.Snapshot())
}

package garden

import (
	"errors"
	"fmt"
	"math"
)

// State is the phase of the garden plot.
type State string

const (
	StateIdle    State = "idle"
	StateWorking State = "working"
	StatePlanted State = "planted"
)

// TaskKind is the kind of timed task running on the plot.
type TaskKind string

const (
	TaskTill  TaskKind = "till"
	TaskPlant TaskKind = "plant"
)

var (
	ErrBusy           = errors.New("the garden is busy")
	ErrAlreadyTilled  = errors.New("the soil is already tilled")
	ErrNotTilled      = errors.New("the soil needs to be tilled first")
	ErrAlreadyPlanted = errors.New("something is already growing")
	ErrNothingPlanted = errors.New("nothing is planted")
	ErrNotReady       = errors.New("the crop is not ready yet")
)

// Plot is the single garden slot. At most one of a pending task and a
// planted crop is active at any time.
type Plot struct {
	state  State
	tilled bool

	task      TaskKind
	remaining float64
	duration  float64
	seed      string
	grow      float64

	crop     string
	progress float64
}

func NewPlot() *Plot {
	return &Plot{state: StateIdle}
}

func (p *Plot) State() State {
	return p.state
}

// Tilled reports whether an idle plot is ready for planting.
func (p *Plot) Tilled() bool {
	return p.state == StateIdle && p.tilled
}

// Task returns the running task with its remaining and total duration.
func (p *Plot) Task() (TaskKind, float64, float64) {
	if p.state != StateWorking {
		return "", 0, 0
	}
	return p.task, p.remaining, p.duration
}

// Crop returns the planted crop id and its growth progress in [0,1].
func (p *Plot) Crop() (string, float64) {
	if p.state != StatePlanted {
		return "", 0
	}
	return p.crop, p.progress
}

// Ready reports whether the planted crop can be harvested.
func (p *Plot) Ready() bool {
	return p.state == StatePlanted && p.progress >= 1
}

// CanTill reports why a till command would be rejected, if it would be.
func (p *Plot) CanTill() error {
	switch p.state {
	case StateWorking:
		return ErrBusy
	case StatePlanted:
		return ErrAlreadyPlanted
	}
	if p.tilled {
		return ErrAlreadyTilled
	}
	return nil
}

// Till starts tilling the plot for duration seconds.
func (p *Plot) Till(duration float64) error {
	if err := p.CanTill(); err != nil {
		return err
	}
	p.start(TaskTill, duration, "", 0)
	return nil
}

// CanPlant reports why a plant command would be rejected, if it would be.
func (p *Plot) CanPlant() error {
	switch p.state {
	case StateWorking:
		return ErrBusy
	case StatePlanted:
		return ErrAlreadyPlanted
	}
	if !p.tilled {
		return ErrNotTilled
	}
	return nil
}

// Plant starts planting seed for duration seconds. Once planted the crop
// takes grow seconds of live ticking to ripen.
func (p *Plot) Plant(seed string, duration, grow float64) error {
	if err := p.CanPlant(); err != nil {
		return err
	}
	if grow <= 0 || math.IsNaN(grow) {
		panic(fmt.Sprintf("garden: invalid grow duration %v", grow))
	}
	p.start(TaskPlant, duration, seed, grow)
	return nil
}

// Harvest consumes a ripe crop and returns the plot to untilled idle.
func (p *Plot) Harvest() (string, error) {
	switch p.state {
	case StateWorking:
		return "", ErrBusy
	case StateIdle:
		return "", ErrNothingPlanted
	}
	if p.progress < 1 {
		return "", ErrNotReady
	}

	crop := p.crop
	p.reset()
	return crop, nil
}

// Advance moves the plot forward by dt seconds. It returns the kind of task
// that completed during this step, if any. Time left over after a task
// completes is not carried into the next phase.
func (p *Plot) Advance(dt float64) TaskKind {
	if dt <= 0 {
		return ""
	}

	switch p.state {
	case StateWorking:
		p.remaining -= dt
		if p.remaining > 0 {
			return ""
		}
		done := p.task
		switch done {
		case TaskTill:
			p.state = StateIdle
			p.tilled = true
		case TaskPlant:
			p.state = StatePlanted
			p.crop = p.seed
			p.progress = 0
		}
		p.clearTask()
		return done

	case StatePlanted:
		p.progress = math.Min(1, p.progress+dt/p.grow)
	}
	return ""
}

// Reset returns the plot to its initial state.
func (p *Plot) Reset() {
	p.reset()
}

func (p *Plot) start(kind TaskKind, duration float64, seed string, grow float64) {
	p.state = StateWorking
	p.task = kind
	p.duration = duration
	p.remaining = duration
	p.seed = seed
	p.grow = grow
}

func (p *Plot) clearTask() {
	p.task = ""
	p.remaining = 0
	p.duration = 0
	p.seed = ""
}

func (p *Plot) reset() {
	*p = Plot{state: StateIdle}
}

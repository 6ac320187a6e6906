package garden

import "math"

// Snapshot is the persisted form of a plot.
type Snapshot struct {
	State     State    `json:"state"`
	Tilled    bool     `json:"tilled,omitempty"`
	Task      TaskKind `json:"task,omitempty"`
	Remaining float64  `json:"remaining,omitempty"`
	Duration  float64  `json:"duration,omitempty"`
	Seed      string   `json:"seed,omitempty"`
	Crop      string   `json:"crop,omitempty"`
	Progress  float64  `json:"progress,omitempty"`
	Grow      float64  `json:"grow,omitempty"`
}

func (p *Plot) Snapshot() Snapshot {
	return Snapshot{
		State:     p.state,
		Tilled:    p.tilled,
		Task:      p.task,
		Remaining: p.remaining,
		Duration:  p.duration,
		Seed:      p.seed,
		Crop:      p.crop,
		Progress:  p.progress,
		Grow:      p.grow,
	}
}

// Restore loads a snapshot. Inconsistent snapshots fall back to the nearest
// valid state: unknown phases become untilled idle, progress is clamped to
// [0,1] and a missing grow duration is replaced by defaultGrow.
func (p *Plot) Restore(s Snapshot, defaultGrow float64) {
	p.reset()

	grow := s.Grow
	if grow <= 0 || math.IsNaN(grow) || math.IsInf(grow, 0) {
		grow = defaultGrow
	}

	switch s.State {
	case StateIdle:
		p.tilled = s.Tilled
	case StateWorking:
		switch s.Task {
		case TaskTill:
			p.start(TaskTill, s.Duration, "", 0)
		case TaskPlant:
			if s.Seed == "" {
				return
			}
			p.start(TaskPlant, s.Duration, s.Seed, grow)
		default:
			return
		}
		p.remaining = math.Max(0, math.Min(s.Remaining, s.Duration))
	case StatePlanted:
		if s.Crop == "" {
			return
		}
		p.state = StatePlanted
		p.crop = s.Crop
		p.grow = grow
		p.progress = clamp01(s.Progress)
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

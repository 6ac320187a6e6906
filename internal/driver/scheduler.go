package driver

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/pixil98/go-homestead/internal/game"
	"github.com/pixil98/go-homestead/internal/plugins"
	"github.com/pixil98/go-homestead/internal/resource"
)

const (
	DefaultMaxLiveDelta = 60 * time.Second

	// MaxCatchUp bounds how much offline time is credited on load.
	MaxCatchUp = 12 * time.Hour
	// MinCatchUp is the gap below which catch-up is skipped.
	MinCatchUp = 2 * time.Second
)

// Scheduler advances the simulation. Live steps run every subsystem in a
// fixed order; catch-up credits offline time to the continuous producers
// in one closed-form step.
type Scheduler struct {
	home         *game.Homestead
	dispatcher   *plugins.Dispatcher
	maxLiveDelta time.Duration
}

type SchedulerOpt func(*Scheduler)

// WithMaxLiveDelta sets the largest step a single live tick will apply.
func WithMaxLiveDelta(d time.Duration) SchedulerOpt {
	return func(s *Scheduler) {
		s.maxLiveDelta = d
	}
}

func NewScheduler(home *game.Homestead, dispatcher *plugins.Dispatcher, opts ...SchedulerOpt) *Scheduler {
	s := &Scheduler{
		home:         home,
		dispatcher:   dispatcher,
		maxLiveDelta: DefaultMaxLiveDelta,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Tick runs one live step of dt seconds. The step is clamped to
// [0, max live delta] so a stalled process does not jump ahead.
func (s *Scheduler) Tick(ctx context.Context, dt float64) {
	dt = min(max(dt, 0), s.maxLiveDelta.Seconds())

	s.home.AdvanceActions(dt)
	s.home.AdvanceGarden(dt)
	s.home.AdvanceHerds(dt)
	s.home.Produce(dt)
	s.dispatcher.Tick(ctx, dt)
	s.dispatcher.Render(ctx)
}

// Report summarizes one offline catch-up.
type Report struct {
	Elapsed time.Duration
	Skipped bool
	Yields  []game.Yield
	// Herds holds the ready output gained per herd kind.
	Herds map[string]float64
}

// Lost returns the production that did not fit in storage, per resource.
func (r Report) Lost() map[resource.Key]float64 {
	out := map[resource.Key]float64{}
	for _, y := range r.Yields {
		if l := y.Lost(); l > 0 {
			out[y.Key] = l
		}
	}
	return out
}

// CatchUp credits elapsed offline time. At most MaxCatchUp is applied and
// gaps up to MinCatchUp are ignored. Herds accrue in closed form up to
// their caps and every production rule is granted dt*units/per silently;
// anything that did not fit is reported with a single warning. Timed
// tasks and the garden are not advanced.
func (s *Scheduler) CatchUp(ctx context.Context, elapsed time.Duration) Report {
	dt := min(elapsed, MaxCatchUp)
	if dt <= MinCatchUp {
		return Report{Elapsed: max(dt, 0), Skipped: true}
	}

	r := Report{
		Elapsed: dt,
		Herds:   s.home.AdvanceHerds(dt.Seconds()),
		Yields:  s.home.Produce(dt.Seconds(), resource.Silent()),
	}

	slog.InfoContext(ctx, "offline catch-up", "elapsed", dt, "yields", len(r.Yields), "herds", len(r.Herds))

	s.home.Notifier().Log(s.summary(r))
	if lost := r.Lost(); len(lost) > 0 {
		s.home.Notifier().Warn(fmt.Sprintf("While you were away your storage filled up; lost %s.",
			s.list(lost, "")))
	}

	return r
}

// summary describes a catch-up: resources granted into storage, then herd
// output that accrued but still has to be collected.
func (s *Scheduler) summary(r Report) string {
	gains := map[resource.Key]float64{}
	for _, y := range r.Yields {
		if y.Granted > 0 {
			gains[y.Key] += y.Granted
		}
	}
	ready := map[resource.Key]float64{}
	for id, g := range r.Herds {
		if herd, ok := s.home.Herd(id); ok && g > 0 {
			ready[herd.Kind.Output] += g
		}
	}

	msg := fmt.Sprintf("%s Away for %d min", s.home.Icon("timer"), int(r.Elapsed.Minutes()))
	if len(gains) > 0 {
		msg += ": " + s.list(gains, "+")
	}
	msg += "."
	if len(ready) > 0 {
		msg += " " + s.list(ready, "") + " ready to collect."
	}
	return msg
}

func (s *Scheduler) list(amounts map[resource.Key]float64, sign string) string {
	keys := slices.Sorted(maps.Keys(amounts))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s%d %s", sign, int(amounts[k]), s.home.Label(k)))
	}
	return strings.Join(parts, ", ")
}

package driver

import (
	"time"

	"github.com/pixil98/go-homestead/internal/notify"
)

type DriverOpt func(*Driver)

// WithFrameLength sets how often the live simulation advances.
func WithFrameLength(d time.Duration) DriverOpt {
	return func(dr *Driver) {
		dr.frameLength = d
	}
}

// WithAutosave sets the autosave interval. Zero disables autosave; the
// game is still saved on shutdown.
func WithAutosave(d time.Duration) DriverOpt {
	return func(dr *Driver) {
		dr.autosave = d
	}
}

func WithPersister(p Persister) DriverOpt {
	return func(d *Driver) {
		d.persist = p
	}
}

func WithClock(c Clock) DriverOpt {
	return func(d *Driver) {
		d.clock = c
	}
}

func WithJournal(j *notify.Journal) DriverOpt {
	return func(d *Driver) {
		d.journal = j
	}
}

func WithScheduler(s *Scheduler) DriverOpt {
	return func(d *Driver) {
		d.scheduler = s
	}
}

package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-homestead/internal/game"
	"github.com/pixil98/go-homestead/internal/notify"
	"github.com/pixil98/go-homestead/internal/plugins"
	"github.com/pixil98/go-homestead/internal/save"
	"github.com/pixil98/go-homestead/internal/storage"
)

const (
	DefaultFrameLength = time.Second
	DefaultAutosave    = 10 * time.Second
)

// Persister reads and writes the encoded save.
type Persister interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

type request struct {
	fn    func(context.Context) error
	reply chan error
}

// Driver owns the simulation. It advances it on a fixed frame, runs
// submitted commands between frames and persists it periodically. Nothing
// outside the driver goroutine may touch the homestead or the dispatcher.
type Driver struct {
	home       *game.Homestead
	dispatcher *plugins.Dispatcher
	scheduler  *Scheduler
	journal    *notify.Journal
	persist    Persister
	clock      Clock

	frameLength time.Duration
	autosave    time.Duration

	requests chan request
	saveID   uuid.UUID
	last     time.Time
	writes   sync.WaitGroup
}

func NewDriver(home *game.Homestead, dispatcher *plugins.Dispatcher, opts ...DriverOpt) *Driver {
	d := &Driver{
		home:        home,
		dispatcher:  dispatcher,
		clock:       RealClock{},
		frameLength: DefaultFrameLength,
		autosave:    DefaultAutosave,
		requests:    make(chan request),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.scheduler == nil {
		d.scheduler = NewScheduler(home, dispatcher)
	}
	if d.journal == nil {
		d.journal = notify.NewJournal()
	}

	return d
}

func (d *Driver) Home() *game.Homestead {
	return d.home
}

func (d *Driver) Dispatcher() *plugins.Dispatcher {
	return d.dispatcher
}

func (d *Driver) Journal() *notify.Journal {
	return d.journal
}

func (d *Driver) Start(ctx context.Context) error {
	if _, err := d.Load(ctx); err != nil {
		return err
	}

	frame := time.NewTicker(d.frameLength)
	defer frame.Stop()

	var autosave <-chan time.Time
	if d.autosave > 0 {
		t := time.NewTicker(d.autosave)
		defer t.Stop()
		autosave = t.C
	}

	for {
		select {
		case <-ctx.Done():
			d.shutdown()
			return nil
		case <-frame.C:
			d.Tick(ctx)
		case <-autosave:
			d.Save(ctx)
		case req := <-d.requests:
			req.reply <- d.run(ctx, req.fn)
		}
	}
}

// Do runs fn on the driver goroutine between frames and returns its error.
func (d *Driver) Do(ctx context.Context, fn func(context.Context) error) error {
	req := request{fn: fn, reply: make(chan error, 1)}
	select {
	case d.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run shields the loop from a panicking command.
func (d *Driver) run(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "command panicked", "panic", r)
			err = fmt.Errorf("command failed: %v", r)
		}
	}()
	return fn(ctx)
}

// Tick advances the simulation by the wall time since the previous tick.
func (d *Driver) Tick(ctx context.Context) {
	now := d.clock.Now()
	dt := now.Sub(d.last).Seconds()
	d.last = now
	d.scheduler.Tick(ctx, dt)
}

// Load restores the persisted save, activates modules and credits the
// time spent offline. A missing or unreadable save starts a fresh game.
func (d *Driver) Load(ctx context.Context) (Report, error) {
	snap := d.fresh()
	corrupt := false

	if d.persist != nil {
		data, err := d.persist.Load(ctx)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			slog.InfoContext(ctx, "no save found, starting fresh")
		case err != nil:
			return Report{}, fmt.Errorf("loading save: %w", err)
		default:
			s, err := save.Decode(data)
			if err != nil {
				slog.ErrorContext(ctx, "decoding save", "error", err)
				corrupt = true
			} else {
				snap = s
			}
		}
	}

	d.apply(ctx, snap)
	if corrupt {
		d.home.Notifier().Warn("The save could not be read. Starting a new homestead.")
	}

	var report Report
	if !snap.LastTick.IsZero() {
		report = d.scheduler.CatchUp(ctx, d.clock.Now().Sub(snap.LastTick))
	}
	slog.InfoContext(ctx, "homestead loaded", "save_id", d.saveID, "caught_up", report.Elapsed)
	return report, nil
}

// Import replaces the running game with an exported save. No offline
// time is credited.
func (d *Driver) Import(ctx context.Context, data []byte) error {
	snap, err := save.Decode(data)
	if err != nil {
		return game.NewUserError("Could not import the save.")
	}
	d.apply(ctx, snap)
	d.home.Notifier().Log("Save import complete.")
	return d.SaveNow(ctx)
}

// Export encodes the running game.
func (d *Driver) Export() ([]byte, error) {
	return save.Encode(d.snapshot())
}

// Reset starts a new game. Module state is cleared and the journal
// emptied; modules stay enabled.
func (d *Driver) Reset(ctx context.Context) error {
	d.dispatcher.Reset(ctx, plugins.ResetOptions{ClearState: true})
	d.home.Reset()
	d.journal.Clear()
	d.saveID = uuid.New()
	d.last = d.clock.Now()
	d.home.Notifier().Log("A new homestead begins.")
	slog.InfoContext(ctx, "homestead reset", "save_id", d.saveID)
	return d.SaveNow(ctx)
}

// Save encodes the game on the calling goroutine and writes it in the
// background. Write failures are logged.
func (d *Driver) Save(ctx context.Context) {
	if d.persist == nil {
		return
	}
	data, err := save.Encode(d.snapshot())
	if err != nil {
		slog.ErrorContext(ctx, "encoding save", "error", err)
		return
	}

	ctx = context.WithoutCancel(ctx)
	d.writes.Add(1)
	go func() {
		defer d.writes.Done()
		if err := d.persist.Save(ctx, data); err != nil {
			slog.ErrorContext(ctx, "writing save", "error", err)
		}
	}()
}

// SaveNow encodes and writes the game before returning. Background
// writes still in flight finish first so they cannot overwrite it.
func (d *Driver) SaveNow(ctx context.Context) error {
	if d.persist == nil {
		return nil
	}
	d.writes.Wait()
	data, err := save.Encode(d.snapshot())
	if err != nil {
		return fmt.Errorf("encoding save: %w", err)
	}
	if err := d.persist.Save(ctx, data); err != nil {
		return fmt.Errorf("writing save: %w", err)
	}
	return nil
}

func (d *Driver) shutdown() {
	// The run context is already canceled.
	ctx := context.Background()
	if err := d.SaveNow(ctx); err != nil {
		slog.ErrorContext(ctx, "saving on shutdown", "error", err)
	}
	d.dispatcher.Shutdown(ctx)
}

func (d *Driver) fresh() *save.Snapshot {
	return &save.Snapshot{SaveID: uuid.New()}
}

// apply installs snap. The journal goes in before anything that can
// notify; core state is restored before module flags so it is clamped
// against the capacity it implies.
func (d *Driver) apply(ctx context.Context, snap *save.Snapshot) {
	d.dispatcher.Shutdown(ctx)
	d.journal.Restore(snap.Journal)
	d.home.Restore(snap.State)
	d.dispatcher.Apply(ctx, d.dispatcher.Restore(snap.Modules))
	d.saveID = snap.SaveID
	d.last = d.clock.Now()
}

func (d *Driver) snapshot() *save.Snapshot {
	return &save.Snapshot{
		SaveID:   d.saveID,
		LastTick: d.clock.Now(),
		State:    d.home.Snapshot(),
		Modules:  d.dispatcher.Snapshot(),
		Journal:  d.journal.Lines(0),
	}
}

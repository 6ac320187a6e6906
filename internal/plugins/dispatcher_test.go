package plugins

import (
	"context"
	"errors"
	"testing"

	"github.com/pixil98/go-homestead/internal/catalog"
	"github.com/pixil98/go-homestead/internal/game"
	"github.com/pixil98/go-homestead/internal/resource"
	"github.com/pixil98/go-testutil"
)

type recordingNotifier struct {
	logs  []string
	warns []string
}

func (n *recordingNotifier) Log(msg string)  { n.logs = append(n.logs, msg) }
func (n *recordingNotifier) Warn(msg string) { n.warns = append(n.warns, msg) }

func newTestDispatcher(t *testing.T, defs ...Definition) (*Dispatcher, *game.Homestead, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	home := game.NewHomestead(game.WithNotifier(n))
	reg := NewRegistry()
	for _, def := range defs {
		if err := reg.Register(context.Background(), def); err != nil {
			t.Fatalf("register %q: %v", def.ID, err)
		}
	}
	return NewDispatcher(reg, home), home, n
}

func TestRegistry_Register(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()

	if err := reg.Register(ctx, Definition{ID: "a", Name: "First"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := reg.Register(ctx, Definition{ID: "b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := reg.Register(ctx, Definition{ID: "a", Name: "Second"})
	if !errors.Is(err, ErrModuleExists) {
		t.Fatalf("expected ErrModuleExists, got %v", err)
	}
	testutil.AssertErrorContains(t, reg.Register(ctx, Definition{}), "id is required")

	def, _ := reg.Get("a")
	testutil.AssertEqual(t, "first registration kept", def.Name, "First")

	list := reg.List()
	testutil.AssertEqual(t, "count", len(list), 2)
	testutil.AssertEqual(t, "order", list[0].ID+list[1].ID, "ab")
}

func TestDispatcher_FaultIsolation(t *testing.T) {
	broken := Definition{
		ID:   "broken",
		Name: "Broken",
		Hooks: Hooks{
			Tick:   func(*Context, float64) error { panic("boom") },
			Render: func(*Context) error { return errors.New("render failed") },
		},
	}
	renders := 0
	good := Definition{
		ID: "good",
		Hooks: Hooks{
			Tick: func(c *Context, dt float64) error {
				c.Grant(resource.Wood, dt)
				return nil
			},
			Render: func(*Context) error {
				renders++
				return nil
			},
		},
	}
	d, home, n := newTestDispatcher(t, broken, good)
	ctx := context.Background()
	d.Apply(ctx, map[string]bool{"broken": true, "good": true})

	d.Tick(ctx, 2)
	d.Render(ctx)

	testutil.AssertEqual(t, "good module tick applied", home.Resources().Get(resource.Wood), 2.0)
	testutil.AssertEqual(t, "good module rendered", renders, 1)
	testutil.AssertEqual(t, "warnings", len(n.warns), 2)
	testutil.AssertEqual(t, "broken still enabled", d.Enabled("broken"), true)
}

func TestDispatcher_RepeatedFailureWarnsOnce(t *testing.T) {
	def := Definition{
		ID:   "leaky",
		Name: "Leaky",
		Hooks: Hooks{
			Tick:   func(*Context, float64) error { return errors.New("leak") },
			Render: func(*Context) error { panic("cracked") },
		},
	}
	d, _, n := newTestDispatcher(t, def)
	ctx := context.Background()
	d.Apply(ctx, map[string]bool{"leaky": true})

	for i := 0; i < 50; i++ {
		d.Tick(ctx, 1)
		d.Render(ctx)
	}
	testutil.AssertEqual(t, "one warning per hook", len(n.warns), 2)

	if err := d.Deactivate(ctx, "leaky"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := d.Activate(ctx, "leaky"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	d.Tick(ctx, 1)
	d.Tick(ctx, 1)
	testutil.AssertEqual(t, "warned again after reactivation", len(n.warns), 3)
}

func TestDispatcher_DeactivateKeepsResources(t *testing.T) {
	def := Definition{
		ID:   "dairy",
		Name: "Dairy",
		Hooks: Hooks{
			Init: func(c *Context) error {
				if err := c.RegisterLivestock(game.HerdKind{ID: "cow", Output: "milk", Per: 90, CapMultiple: 5}); err != nil {
					return err
				}
				if err := c.RegisterPrice(catalog.Bundle{Resource: "milk", Amount: 5, Price: 12}); err != nil {
					return err
				}
				c.RegisterIcon("milk", "🥛")
				return nil
			},
			Tick: func(c *Context, dt float64) error {
				c.Grant("milk", 1)
				return nil
			},
		},
	}
	d, home, _ := newTestDispatcher(t, def)
	ctx := context.Background()
	home.Restore(game.State{Resources: map[resource.Key]float64{"milk": 7}})

	if err := d.Activate(ctx, "dairy"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	_, ok := home.Herd("cow")
	testutil.AssertEqual(t, "herd registered", ok, true)
	testutil.AssertEqual(t, "icon registered", home.Icon("milk"), "🥛")

	if err := d.Deactivate(ctx, "dairy"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	testutil.AssertEqual(t, "milk untouched", home.Resources().Get("milk"), 7.0)
	_, ok = home.Herd("cow")
	testutil.AssertEqual(t, "herd unregistered", ok, false)
	testutil.AssertEqual(t, "icon removed", home.Icon("milk"), "")
	testutil.AssertErrorContains(t, home.Sell("milk", 1), "Nobody buys")

	d.Tick(ctx, 1)
	testutil.AssertEqual(t, "no tick after deactivation", home.Resources().Get("milk"), 7.0)
}

func TestDispatcher_CleanupOrder(t *testing.T) {
	var order []string
	def := Definition{
		ID: "ordered",
		Hooks: Hooks{
			Init: func(c *Context) error {
				c.AddCleanup(func() { order = append(order, "first") })
				c.AddCleanup(func() { order = append(order, "second") })
				c.AddCleanup(func() { panic("cleanup failed") })
				c.AddCleanup(func() { order = append(order, "third") })
				return nil
			},
			Teardown: func(*Context) error {
				order = append(order, "teardown")
				return nil
			},
		},
	}
	d, _, n := newTestDispatcher(t, def)
	ctx := context.Background()

	if err := d.Activate(ctx, "ordered"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if err := d.Deactivate(ctx, "ordered"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	testutil.AssertEqual(t, "calls", len(order), 4)
	testutil.AssertEqual(t, "teardown first", order[0], "teardown")
	testutil.AssertEqual(t, "reverse order", order[1]+","+order[2]+","+order[3], "third,second,first")
	testutil.AssertEqual(t, "panicking cleanup reported", len(n.warns), 1)
}

func TestDispatcher_InitFailureRollsBack(t *testing.T) {
	ticks := 0
	def := Definition{
		ID:   "flaky",
		Name: "Flaky",
		Hooks: Hooks{
			Init: func(c *Context) error {
				if err := c.RegisterPrice(catalog.Bundle{Resource: "honey", Amount: 1, Price: 1}); err != nil {
					return err
				}
				return errors.New("no bees")
			},
			Tick: func(*Context, float64) error {
				ticks++
				return nil
			},
		},
	}
	d, home, n := newTestDispatcher(t, def)
	ctx := context.Background()

	err := d.Activate(ctx, "flaky")
	testutil.AssertErrorContains(t, err, "no bees")

	testutil.AssertEqual(t, "enabled", d.Enabled("flaky"), false)
	testutil.AssertErrorContains(t, home.Sell("honey", 1), "Nobody buys")
	testutil.AssertEqual(t, "warnings", len(n.warns), 1)

	d.Tick(ctx, 1)
	testutil.AssertEqual(t, "ticks", ticks, 0)
}

func TestDispatcher_ActivateUnknown(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	err := d.Activate(context.Background(), "ghost")
	if !errors.Is(err, ErrUnknownModule) {
		t.Fatalf("expected ErrUnknownModule, got %v", err)
	}
}

func TestDispatcher_Reset(t *testing.T) {
	resets := map[string]int{}
	mk := func(id string) Definition {
		return Definition{
			ID: id,
			Hooks: Hooks{
				Init: func(c *Context) error {
					return c.State().Set("seen", true)
				},
				Reset: func(c *Context, _ ResetOptions) error {
					resets[c.ID()]++
					return nil
				},
			},
		}
	}
	d, _, _ := newTestDispatcher(t, mk("on"), mk("off"))
	ctx := context.Background()
	d.Apply(ctx, map[string]bool{"on": true})

	d.Reset(ctx, ResetOptions{ClearState: true})

	testutil.AssertEqual(t, "enabled reset", resets["on"], 1)
	testutil.AssertEqual(t, "disabled reset", resets["off"], 0)
	testutil.AssertEqual(t, "state cleared", len(d.Snapshot()["on"].State), 0)
}

func TestDispatcher_SnapshotRestore(t *testing.T) {
	tests := map[string]struct {
		persisted  map[string]ModuleState
		expEnabled map[string]bool
	}{
		"defaults apply without flags": {
			expEnabled: map[string]bool{"default-on": true, "default-off": false},
		},
		"flags override defaults": {
			persisted: map[string]ModuleState{
				"default-on":  {Enabled: false},
				"default-off": {Enabled: true},
			},
			expEnabled: map[string]bool{"default-on": false, "default-off": true},
		},
		"unknown module kept": {
			persisted: map[string]ModuleState{
				"retired": {Enabled: true},
			},
			expEnabled: map[string]bool{"default-on": true, "default-off": false, "retired": true},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d, _, _ := newTestDispatcher(t,
				Definition{ID: "default-on", DefaultEnabled: true},
				Definition{ID: "default-off"},
			)
			ctx := context.Background()

			d.Apply(ctx, d.Restore(tt.persisted))

			snap := d.Snapshot()
			for id, exp := range tt.expEnabled {
				testutil.AssertEqual(t, id, snap[id].Enabled, exp)
			}
		})
	}
}

func TestDispatcher_ModuleStatePersists(t *testing.T) {
	def := Definition{
		ID: "counter",
		Hooks: Hooks{
			Tick: func(c *Context, _ float64) error {
				var n int
				if _, err := c.State().Get("n", &n); err != nil {
					return err
				}
				return c.State().Set("n", n+1)
			},
			Render: func(c *Context) error {
				c.SetPanel("counting")
				return nil
			},
		},
	}
	d, _, _ := newTestDispatcher(t, def)
	ctx := context.Background()
	d.Apply(ctx, map[string]bool{"counter": true})

	d.Tick(ctx, 1)
	d.Tick(ctx, 1)
	d.Render(ctx)
	testutil.AssertEqual(t, "panel", d.Modules()[0].Panel, "counting")

	_ = d.Deactivate(ctx, "counter")
	_ = d.Activate(ctx, "counter")
	d.Tick(ctx, 1)

	var n int
	st := d.Snapshot()["counter"].State
	if _, err := st.Get("n", &n); err != nil {
		t.Fatalf("get: %v", err)
	}
	testutil.AssertEqual(t, "count survives reactivation", n, 3)
}

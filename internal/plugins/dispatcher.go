package plugins

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/pixil98/go-homestead/internal/game"
	"github.com/pixil98/go-homestead/internal/storage"
)

type entry struct {
	def     *Definition
	enabled bool
	ctx     *Context
	tick    bool
	render  bool
	// hooks already reported to the player since the last activation
	warned  map[string]bool
}

// ModuleState is the persisted form of one module.
type ModuleState struct {
	Enabled bool                   `json:"enabled"`
	State   storage.ExtensionState `json:"state,omitempty"`
}

// Status describes a module for presentation.
type Status struct {
	ID          string
	Name        string
	Version     string
	Description string
	Enabled     bool
	Panel       string
}

// Dispatcher activates and deactivates modules and fans out their hooks.
// A failing hook is recovered, logged with the module id and reported as a
// warning; it never stops other modules or the core.
type Dispatcher struct {
	registry *Registry
	home     *game.Homestead
	entries  map[string]*entry
	states   map[string]*storage.ExtensionState
	// flags of persisted modules that are not registered in this process
	dormant  map[string]bool
}

func NewDispatcher(registry *Registry, home *game.Homestead) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		home:     home,
		entries:  map[string]*entry{},
		states:   map[string]*storage.ExtensionState{},
		dormant:  map[string]bool{},
	}
}

func (d *Dispatcher) entry(id string) (*entry, error) {
	if e, ok := d.entries[id]; ok {
		return e, nil
	}
	def, ok := d.registry.byID[id]
	if !ok {
		return nil, fmt.Errorf("module %q: %w", id, ErrUnknownModule)
	}
	e := &entry{def: def}
	d.entries[id] = e
	return e, nil
}

func (d *Dispatcher) state(id string) *storage.ExtensionState {
	s, ok := d.states[id]
	if !ok {
		s = &storage.ExtensionState{}
		d.states[id] = s
	}
	return s
}

// Enabled reports whether module id is active.
func (d *Dispatcher) Enabled(id string) bool {
	e, ok := d.entries[id]
	return ok && e.enabled
}

// Activate builds a fresh context for module id and runs its Init and
// RegisterIcon hooks. If Init fails, everything it registered is rolled
// back and the module stays disabled.
func (d *Dispatcher) Activate(ctx context.Context, id string) error {
	e, err := d.entry(id)
	if err != nil {
		return err
	}
	if e.enabled {
		return nil
	}

	e.warned = map[string]bool{}
	c := &Context{id: id, home: d.home, state: d.state(id)}
	if hook := e.def.Hooks.Init; hook != nil {
		if err := d.guard(ctx, e, "init", func() error { return hook(c) }); err != nil {
			d.cleanup(ctx, e, c)
			return fmt.Errorf("activating %q: %w", id, err)
		}
	}
	if hook := e.def.RegisterIcon; hook != nil {
		// A failing icon hook is reported but does not block activation.
		_ = d.guard(ctx, e, "registerIcon", func() error { return hook(c) })
	}

	e.ctx = c
	e.enabled = true
	e.tick = e.def.Hooks.Tick != nil
	e.render = e.def.Hooks.Render != nil

	slog.InfoContext(ctx, "module activated", "module", id)
	return nil
}

// Deactivate runs the Teardown hook of module id, then its cleanups in
// reverse registration order, then discards its context. Resources the
// player owns are left untouched.
func (d *Dispatcher) Deactivate(ctx context.Context, id string) error {
	e, err := d.entry(id)
	if err != nil {
		return err
	}
	if !e.enabled {
		return nil
	}

	// Unsubscribe first so no hook can fire against a dying context.
	e.enabled = false
	e.tick = false
	e.render = false

	c := e.ctx
	if hook := e.def.Hooks.Teardown; hook != nil {
		_ = d.guard(ctx, e, "teardown", func() error { return hook(c) })
	}
	d.cleanup(ctx, e, c)
	e.ctx = nil

	slog.InfoContext(ctx, "module deactivated", "module", id)
	return nil
}

// SetEnabled activates or deactivates module id.
func (d *Dispatcher) SetEnabled(ctx context.Context, id string, enabled bool) error {
	if enabled {
		return d.Activate(ctx, id)
	}
	return d.Deactivate(ctx, id)
}

// Apply activates every registered module, in registration order, whose
// flag is set; modules without a flag use their default.
func (d *Dispatcher) Apply(ctx context.Context, flags map[string]bool) {
	for _, def := range d.registry.defs {
		enabled, ok := flags[def.ID]
		if !ok {
			enabled = def.DefaultEnabled
		}
		if err := d.SetEnabled(ctx, def.ID, enabled); err != nil {
			slog.ErrorContext(ctx, "applying module flag", "module", def.ID, "error", err)
		}
	}
}

// Tick fans dt out to the Tick hooks of enabled modules.
func (d *Dispatcher) Tick(ctx context.Context, dt float64) {
	for _, def := range d.registry.defs {
		e, ok := d.entries[def.ID]
		if !ok || !e.enabled || !e.tick {
			continue
		}
		c, hook := e.ctx, e.def.Hooks.Tick
		_ = d.guard(ctx, e, "tick", func() error { return hook(c, dt) })
	}
}

// Render fans out to the Render hooks of enabled modules.
func (d *Dispatcher) Render(ctx context.Context) {
	for _, def := range d.registry.defs {
		e, ok := d.entries[def.ID]
		if !ok || !e.enabled || !e.render {
			continue
		}
		c, hook := e.ctx, e.def.Hooks.Render
		_ = d.guard(ctx, e, "render", func() error { return hook(c) })
	}
}

// Reset runs the Reset hooks of enabled modules.
func (d *Dispatcher) Reset(ctx context.Context, opts ResetOptions) {
	for _, def := range d.registry.defs {
		e, ok := d.entries[def.ID]
		if ok && e.enabled && e.def.Hooks.Reset != nil {
			c, hook := e.ctx, e.def.Hooks.Reset
			_ = d.guard(ctx, e, "reset", func() error { return hook(c, opts) })
		}
		if opts.ClearState {
			if s, ok := d.states[def.ID]; ok {
				*s = storage.ExtensionState{}
			}
		}
	}
}

// Shutdown deactivates every active module in reverse registration order.
func (d *Dispatcher) Shutdown(ctx context.Context) {
	for i := len(d.registry.defs) - 1; i >= 0; i-- {
		_ = d.Deactivate(ctx, d.registry.defs[i].ID)
	}
}

// Modules lists every registered module with its status.
func (d *Dispatcher) Modules() []Status {
	out := make([]Status, 0, len(d.registry.defs))
	for _, def := range d.registry.defs {
		st := Status{
			ID:          def.ID,
			Name:        def.Name,
			Version:     def.Version,
			Description: def.Description,
		}
		if e, ok := d.entries[def.ID]; ok && e.enabled {
			st.Enabled = true
			st.Panel = e.ctx.panel
		}
		out = append(out, st)
	}
	return out
}

// Snapshot returns the persisted state of every module, including modules
// that are disabled or no longer registered.
func (d *Dispatcher) Snapshot() map[string]ModuleState {
	out := map[string]ModuleState{}
	for id, s := range d.states {
		out[id] = ModuleState{State: s.Clone()}
	}
	for id, enabled := range d.dormant {
		ms := out[id]
		ms.Enabled = enabled
		out[id] = ms
	}
	for id, e := range d.entries {
		ms := out[id]
		ms.Enabled = e.enabled
		out[id] = ms
	}
	return out
}

// Restore replaces persisted module state and returns the enabled flags.
// It must be called while no module is active.
func (d *Dispatcher) Restore(modules map[string]ModuleState) map[string]bool {
	d.states = map[string]*storage.ExtensionState{}
	d.dormant = map[string]bool{}
	flags := make(map[string]bool, len(modules))
	for id, ms := range modules {
		s := ms.State.Clone()
		d.states[id] = &s
		flags[id] = ms.Enabled
		if _, ok := d.registry.byID[id]; !ok {
			d.dormant[id] = ms.Enabled
		}
	}
	return flags
}

func (d *Dispatcher) cleanup(ctx context.Context, e *entry, c *Context) {
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		fn := c.cleanups[i]
		_ = d.guard(ctx, e, "cleanup", func() error {
			fn()
			return nil
		})
	}
	c.cleanups = nil
}

// guard runs one hook call, turning a panic into an error. Every failure is
// logged; the player is warned once per hook until the module is activated
// again.
func (d *Dispatcher) guard(ctx context.Context, e *entry, hook string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			slog.DebugContext(ctx, "module panic stack", "module", e.def.ID, "stack", string(debug.Stack()))
		}
		if err != nil {
			slog.ErrorContext(ctx, "module hook failed", "module", e.def.ID, "hook", hook, "error", err)
			if !e.warned[hook] {
				if e.warned == nil {
					e.warned = map[string]bool{}
				}
				e.warned[hook] = true
				d.home.Notifier().Warn(fmt.Sprintf("Module %s failed in %s: %v", e.def.Name, hook, err))
			}
		}
	}()
	return fn()
}

package plugins

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrModuleExists  = errors.New("module already registered")
	ErrUnknownModule = errors.New("unknown module")
)

// ResetOptions is passed to Reset hooks on a full game reset.
type ResetOptions struct {
	// ClearState drops the module's persisted state after its hook ran.
	ClearState bool
}

// Hooks is the capability set of a module. Only non-nil hooks are
// subscribed; the dispatcher never calls absent ones.
type Hooks struct {
	Init     func(*Context) error
	Tick     func(c *Context, dt float64) error
	Render   func(*Context) error
	Reset    func(*Context, ResetOptions) error
	Teardown func(*Context) error
}

// Definition is the immutable registration record of a module.
type Definition struct {
	ID             string
	Name           string
	Version        string
	Description    string
	DefaultEnabled bool
	Hooks          Hooks
	RegisterIcon   func(*Context) error
}

// Registry holds module definitions in registration order.
type Registry struct {
	defs []*Definition
	byID map[string]*Definition
}

func NewRegistry() *Registry {
	return &Registry{byID: map[string]*Definition{}}
}

// Register adds a definition. A duplicate id is logged and rejected, leaving
// the first registration in place.
func (r *Registry) Register(ctx context.Context, def Definition) error {
	if def.ID == "" {
		return fmt.Errorf("module id is required")
	}
	if _, ok := r.byID[def.ID]; ok {
		slog.WarnContext(ctx, "module already registered", "module", def.ID)
		return fmt.Errorf("registering %q: %w", def.ID, ErrModuleExists)
	}

	d := def
	r.defs = append(r.defs, &d)
	r.byID[d.ID] = &d
	slog.DebugContext(ctx, "registered module", "module", d.ID, "version", d.Version)
	return nil
}

// Get returns a copy of the definition with id.
func (r *Registry) Get(id string) (Definition, bool) {
	d, ok := r.byID[id]
	if !ok {
		return Definition{}, false
	}
	return *d, true
}

// List returns the definitions in registration order.
func (r *Registry) List() []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, *d)
	}
	return out
}

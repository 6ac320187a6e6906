package plugins

import (
	"github.com/pixil98/go-homestead/internal/catalog"
	"github.com/pixil98/go-homestead/internal/game"
	"github.com/pixil98/go-homestead/internal/resource"
	"github.com/pixil98/go-homestead/internal/storage"
)

// Context is the capability surface handed to a module while it is active.
// A fresh Context is built on every activation and discarded on
// deactivation. Registrations made through it are undone automatically
// when the module is deactivated.
type Context struct {
	id       string
	home     *game.Homestead
	state    *storage.ExtensionState
	panel    string
	cleanups []func()
}

func (c *Context) ID() string {
	return c.id
}

// Resources is a read-only view of the store.
func (c *Context) Resources() resource.Reader {
	return c.home.Resources()
}

// Capacity returns the current global capacity.
func (c *Context) Capacity() float64 {
	return c.home.Capacity()
}

// Grant adds up to amount of k, subject to capacity. It returns the amount
// actually added.
func (c *Context) Grant(k resource.Key, amount float64, opts ...resource.GrantOption) float64 {
	return c.home.Allocator().Grant(k, amount, opts...)
}

// Spend removes amount of k if all of it is available.
func (c *Context) Spend(k resource.Key, amount float64) bool {
	return c.home.Allocator().Spend(k, amount)
}

func (c *Context) Log(msg string) {
	c.home.Notifier().Log(msg)
}

func (c *Context) Warn(msg string) {
	c.home.Notifier().Warn(msg)
}

// Label returns the display name of a resource.
func (c *Context) Label(k resource.Key) string {
	return c.home.Label(k)
}

// Icon returns the icon registered for name.
func (c *Context) Icon(name string) string {
	return c.home.Icon(name)
}

// AddCleanup registers fn to run on deactivation. Cleanups run in reverse
// registration order.
func (c *Context) AddCleanup(fn func()) {
	c.cleanups = append(c.cleanups, fn)
}

func (c *Context) RegisterIcon(name, icon string) {
	c.AddCleanup(c.home.RegisterIcon(name, icon))
}

func (c *Context) RegisterLivestock(kind game.HerdKind) error {
	undo, err := c.home.RegisterHerd(kind)
	if err != nil {
		return err
	}
	c.AddCleanup(undo)
	return nil
}

// Herd returns the accumulator of a registered livestock kind.
func (c *Context) Herd(id string) (*game.Herd, bool) {
	return c.home.Herd(id)
}

func (c *Context) RegisterProduction(r game.Rule) error {
	undo, err := c.home.RegisterProduction(r)
	if err != nil {
		return err
	}
	c.AddCleanup(undo)
	return nil
}

// RegisterItem adds a shop item. owned and bought are only needed for
// catalog.ItemModule items.
func (c *Context) RegisterItem(item catalog.Item, owned func() int, bought func()) error {
	undo, err := c.home.RegisterItem(item, owned, bought)
	if err != nil {
		return err
	}
	c.AddCleanup(undo)
	return nil
}

// RegisterPrice adds a market offer for a resource.
func (c *Context) RegisterPrice(b catalog.Bundle) error {
	undo, err := c.home.RegisterBundle(b)
	if err != nil {
		return err
	}
	c.AddCleanup(undo)
	return nil
}

// SetPanel sets the status text shown for the module.
func (c *Context) SetPanel(text string) {
	c.panel = text
}

// State is the module's persisted state. It outlives the Context and is
// saved with the game.
func (c *Context) State() *storage.ExtensionState {
	return c.state
}

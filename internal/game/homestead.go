package game

import (
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/pixil98/go-homestead/internal/catalog"
	"github.com/pixil98/go-homestead/internal/garden"
	"github.com/pixil98/go-homestead/internal/resource"
)

// Notifier is the log/warn sink shared by the core and every module.
type Notifier interface {
	Log(msg string)
	Warn(msg string)
}

type discard struct{}

func (discard) Log(string)  {}
func (discard) Warn(string) {}

// Homestead is the simulation state: resources, upgrades, livestock, the
// garden plot and the registries modules extend. It is not safe for
// concurrent use; the driver goroutine owns it.
type Homestead struct {
	balance catalog.Balance
	seeds   *catalog.Seeds
	notify  Notifier
	rng     *rand.Rand
	now     func() time.Time

	store   *resource.Store
	classes *resource.Classifier
	alloc   *resource.Allocator

	tools     map[string]bool
	buildings map[string]int
	plot      *garden.Plot
	actions   map[ActionKind]*actionTimer

	herds   *herds
	rules   rules
	items   []*shopItem
	bundles []catalog.Bundle
	icons   map[string]string
}

type shopItem struct {
	catalog.Item
	owned  func() int
	bought func()
}

type HomesteadOpt func(*Homestead)

func WithBalance(b catalog.Balance) HomesteadOpt {
	return func(h *Homestead) {
		h.balance = b
	}
}

func WithSeeds(s *catalog.Seeds) HomesteadOpt {
	return func(h *Homestead) {
		h.seeds = s
	}
}

func WithNotifier(n Notifier) HomesteadOpt {
	return func(h *Homestead) {
		h.notify = n
	}
}

// WithRand sets the random source used for forage finds and harvest yields.
func WithRand(r *rand.Rand) HomesteadOpt {
	return func(h *Homestead) {
		h.rng = r
	}
}

// WithNow sets the wall clock used to throttle storage warnings.
func WithNow(now func() time.Time) HomesteadOpt {
	return func(h *Homestead) {
		h.now = now
	}
}

func NewHomestead(opts ...HomesteadOpt) *Homestead {
	h := &Homestead{
		balance:   catalog.Default(),
		notify:    discard{},
		now:       time.Now,
		store:     resource.NewStore(),
		classes:   resource.NewClassifier(),
		tools:     map[string]bool{},
		buildings: map[string]int{},
		plot:      garden.NewPlot(),
		actions:   map[ActionKind]*actionTimer{},
		herds:     newHerds(),
		icons:     maps.Clone(coreIcons),
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.seeds == nil {
		h.seeds = catalog.DefaultSeeds()
	}
	if h.rng == nil {
		h.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	h.alloc = resource.NewAllocator(h.store, h.classes, h.Capacity,
		resource.WithSubCapacity(resource.ClassCrop, h.CropCapacity),
		resource.WithWarner(h.notify),
		resource.WithThrottle(resource.NewThrottle(resource.DefaultWarnCooldown, h.now)),
	)

	h.registerCore()
	return h
}

func (h *Homestead) registerCore() {
	must := func(err error) {
		if err != nil {
			panic(fmt.Sprintf("game: registering core content: %v", err))
		}
	}

	must(h.herds.register(HerdKind{
		ID:          catalog.Chicken,
		Name:        "Chickens",
		Output:      resource.Eggs,
		Per:         h.balance.Chickens.Per,
		CapMultiple: h.balance.Chickens.CapMultiple,
	}))

	must(h.rules.register(Rule{
		ID:     "chainsaw",
		Output: resource.Wood,
		Per:    h.balance.Passive.ChainsawWoodPer,
		Units:  func() float64 { return boolUnits(h.tools[catalog.Chainsaw]) },
	}))
	must(h.rules.register(Rule{
		ID:     "house",
		Output: resource.Veggies,
		Per:    h.balance.Passive.HouseVeggiesPer,
		Units:  func() float64 { return float64(h.buildings[catalog.House]) },
	}))

	for _, item := range catalog.DefaultItems() {
		_, err := h.RegisterItem(item, nil, nil)
		must(err)
	}
	for _, b := range catalog.DefaultBundles() {
		_, err := h.RegisterBundle(b)
		must(err)
	}
}

func boolUnits(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (h *Homestead) Balance() catalog.Balance {
	return h.balance
}

func (h *Homestead) Seeds() *catalog.Seeds {
	return h.seeds
}

func (h *Homestead) Notifier() Notifier {
	return h.notify
}

// Resources returns a read-only view of the store.
func (h *Homestead) Resources() resource.Reader {
	return h.store
}

// Allocator returns the allocator every increase must pass through.
func (h *Homestead) Allocator() *resource.Allocator {
	return h.alloc
}

func (h *Homestead) Plot() *garden.Plot {
	return h.plot
}

// Capacity is the global storage capacity. The barn replaces the shed tiers.
func (h *Homestead) Capacity() float64 {
	c := h.balance.Capacity
	if h.buildings[catalog.Barn] > 0 {
		return c.Barn
	}
	return c.Base + c.PerShed*float64(min(h.buildings[catalog.Shed], catalog.MaxSheds))
}

// CropCapacity is the sub-capacity shared by harvested crops.
func (h *Homestead) CropCapacity() float64 {
	c := h.balance.Capacity
	if h.buildings[catalog.Barn] > 0 {
		return c.CropBarn
	}
	return c.CropBase + c.CropPerShed*float64(min(h.buildings[catalog.Shed], catalog.MaxSheds))
}

func (h *Homestead) HasTool(id string) bool {
	return h.tools[id]
}

func (h *Homestead) Buildings(id string) int {
	return h.buildings[id]
}

// Herds returns the registered herds in registration order.
func (h *Homestead) Herds() []*Herd {
	return h.herds.all()
}

func (h *Homestead) Herd(id string) (*Herd, bool) {
	return h.herds.get(id)
}

// Items returns the shop items in registration order.
func (h *Homestead) Items() []catalog.Item {
	out := make([]catalog.Item, 0, len(h.items))
	for _, it := range h.items {
		out = append(out, it.Item)
	}
	return out
}

// Owned returns how many of a shop item the player has.
func (h *Homestead) Owned(id string) int {
	it, ok := h.item(id)
	if !ok {
		return 0
	}
	return it.owned()
}

func (h *Homestead) Bundles() []catalog.Bundle {
	return slices.Clone(h.bundles)
}

// Icon returns the icon registered for name, or "" if there is none.
func (h *Homestead) Icon(name string) string {
	if icon, ok := h.icons[name]; ok {
		return icon
	}
	if id, ok := resource.Key(name).SeedID(); ok {
		if s, ok := h.seeds.Get(id); ok {
			return s.Icon
		}
	}
	if id, ok := resource.Key(name).CropID(); ok {
		if s, ok := h.seeds.Get(id); ok {
			return s.Icon
		}
	}
	return ""
}

// Label returns a display name for a resource key.
func (h *Homestead) Label(k resource.Key) string {
	if id, ok := k.SeedID(); ok {
		if s, ok := h.seeds.Get(id); ok {
			return s.Name
		}
	}
	if id, ok := k.CropID(); ok {
		if s, ok := h.seeds.Get(id); ok {
			return s.Crop
		}
	}
	return string(k)
}

func (h *Homestead) item(id string) (*shopItem, bool) {
	for _, it := range h.items {
		if it.ID == id {
			return it, true
		}
	}
	return nil, false
}

var coreIcons = map[string]string{
	string(resource.Gold):    "🪙",
	string(resource.Wood):    "🪵",
	string(resource.Stone):   "🪨",
	string(resource.Eggs):    "🥚",
	string(resource.Veggies): "🥕",
	catalog.Axe:              "🪓",
	catalog.Chainsaw:         "🪚",
	catalog.Tractor:          "🚜",
	catalog.Hoe:              "⛏️",
	catalog.Shed:             "🛖",
	catalog.House:            "🏠",
	catalog.Barn:             "🏚️",
	catalog.Chicken:          "🐔",
	"timer":                  "⏱️",
	"warning":                "⚠️",
}

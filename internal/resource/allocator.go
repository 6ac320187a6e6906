package resource

import (
	"fmt"
	"math"
	"slices"
)

// Warner receives capacity exhaustion warnings.
type Warner interface {
	Warn(msg string)
}

// CapacityFunc computes a capacity from the current upgrades.
type CapacityFunc func() float64

// Allocator gatekeeps every increase of the store against the global
// capacity and any class sub-capacity. A grant that does not fit is
// partially fulfilled; that is a normal result, not an error.
type Allocator struct {
	store    *Store
	classes  *Classifier
	capacity CapacityFunc
	subCaps  map[Class]CapacityFunc
	throttle *Throttle
	warner   Warner
}

type AllocatorOpt func(*Allocator)

// WithSubCapacity bounds the total of all keys in class in addition to the
// global capacity.
func WithSubCapacity(class Class, fn CapacityFunc) AllocatorOpt {
	return func(a *Allocator) {
		a.subCaps[class] = fn
	}
}

// WithWarner sets the sink for throttled "storage full" warnings.
func WithWarner(w Warner) AllocatorOpt {
	return func(a *Allocator) {
		a.warner = w
	}
}

// WithThrottle replaces the default warning throttle.
func WithThrottle(t *Throttle) AllocatorOpt {
	return func(a *Allocator) {
		a.throttle = t
	}
}

func NewAllocator(store *Store, classes *Classifier, capacity CapacityFunc, opts ...AllocatorOpt) *Allocator {
	a := &Allocator{
		store:    store,
		classes:  classes,
		capacity: capacity,
		subCaps:  map[Class]CapacityFunc{},
		throttle: NewThrottle(DefaultWarnCooldown, nil),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

type grantOptions struct {
	silent bool
}

type GrantOption func(*grantOptions)

// Silent suppresses the capacity warning for a partial grant.
func Silent() GrantOption {
	return func(o *grantOptions) {
		o.silent = true
	}
}

// Store returns the underlying store for reads.
func (a *Allocator) Store() *Store {
	return a.store
}

// Classes returns the classifier used for capacity accounting.
func (a *Allocator) Classes() *Classifier {
	return a.classes
}

// Capacity returns the current global capacity.
func (a *Allocator) Capacity() float64 {
	return checkCapacity(ClassGlobal, a.capacity())
}

// SubCapacity returns the sub-capacity of class, or false if it has none.
func (a *Allocator) SubCapacity(class Class) (float64, bool) {
	fn, ok := a.subCaps[class]
	if !ok {
		return 0, false
	}
	return checkCapacity(class, fn()), true
}

// Usage returns the total of every tracked quantity.
func (a *Allocator) Usage() float64 {
	total := 0.0
	for k, v := range a.store.quantities {
		if a.classes.Tracked(k) {
			total += v
		}
	}
	return total
}

// ClassUsage returns the total of every quantity in class.
func (a *Allocator) ClassUsage(class Class) float64 {
	if class == ClassGlobal {
		return a.Usage()
	}
	total := 0.0
	for k, v := range a.store.quantities {
		if a.classes.Classify(k) == class {
			total += v
		}
	}
	return total
}

// FreeSpace returns the room left under the limit of class. Classes without
// a limit report +Inf.
func (a *Allocator) FreeSpace(class Class) float64 {
	switch class {
	case ClassNone:
		return math.Inf(1)
	case ClassGlobal:
		return a.Capacity() - a.Usage()
	}
	sub, ok := a.SubCapacity(class)
	if !ok {
		return math.Inf(1)
	}
	return sub - a.ClassUsage(class)
}

// Reserve computes how much of amount fits for a resource of class, without
// mutating the store. Both the global and the class limit apply.
func (a *Allocator) Reserve(amount float64, class Class, opts ...GrantOption) float64 {
	if amount < 0 || math.IsNaN(amount) {
		panic(fmt.Sprintf("resource: invalid reservation amount %v", amount))
	}
	if class == ClassNone {
		return amount
	}

	o := &grantOptions{}
	for _, opt := range opts {
		opt(o)
	}

	free := a.FreeSpace(ClassGlobal)
	binding := ClassGlobal
	if class != ClassGlobal {
		if subFree := a.FreeSpace(class); subFree < free {
			free = subFree
			binding = class
		}
	}

	granted := math.Min(amount, math.Max(free, 0))
	if granted < amount && !o.silent {
		a.warnFull(binding)
	}
	return granted
}

// Grant reserves room for amount of k and adds what fits to the store.
// It returns the amount actually added.
func (a *Allocator) Grant(k Key, amount float64, opts ...GrantOption) float64 {
	granted := a.Reserve(amount, a.classes.Classify(k), opts...)
	if granted > 0 {
		a.store.add(k, granted)
	}
	return granted
}

// Spend removes amount of k if the whole amount is available.
func (a *Allocator) Spend(k Key, amount float64) bool {
	if amount < 0 || math.IsNaN(amount) {
		panic(fmt.Sprintf("resource: invalid spend amount %v", amount))
	}
	if a.store.Get(k) < amount {
		return false
	}
	a.store.take(k, amount)
	return true
}

// SpendAll removes every cost if all of them are available; otherwise it
// removes nothing and returns the first missing key.
func (a *Allocator) SpendAll(costs map[Key]float64) (Key, bool) {
	for _, k := range sortedKeys(costs) {
		if a.store.Get(k) < costs[k] {
			return k, false
		}
	}
	for k, v := range costs {
		a.store.take(k, v)
	}
	return "", true
}

// Take removes up to amount of k and returns what was removed.
func (a *Allocator) Take(k Key, amount float64) float64 {
	have := a.store.Get(k)
	if amount > have {
		amount = have
	}
	if amount > 0 {
		a.store.take(k, amount)
	}
	return amount
}

// Restore sets quantities from persisted state and then clamps them to the
// current limits. Negative and NaN values are dropped.
func (a *Allocator) Restore(quantities map[Key]float64) {
	a.store.Reset()
	for k, v := range quantities {
		if v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0) {
			a.store.set(k, v)
		}
	}
	a.Clamp()
}

// Clamp scales tracked quantities down so that every limit holds. Sub
// capacities are enforced first, then the global capacity.
func (a *Allocator) Clamp() {
	for _, class := range sortedClasses(a.subCaps) {
		sub, _ := a.SubCapacity(class)
		a.scale(class, a.ClassUsage(class), sub)
	}
	a.scale(ClassGlobal, a.Usage(), a.Capacity())
}

func (a *Allocator) scale(class Class, usage, limit float64) {
	if usage <= limit || usage <= 0 {
		return
	}
	factor := limit / usage
	for k, v := range a.store.quantities {
		c := a.classes.Classify(k)
		if c == ClassNone {
			continue
		}
		if class == ClassGlobal || c == class {
			a.store.set(k, v*factor)
		}
	}
}

func (a *Allocator) warnFull(class Class) {
	if a.warner == nil || !a.throttle.Allow(class) {
		return
	}
	switch class {
	case ClassGlobal:
		a.warner.Warn("Storage is full. Build a shed or a barn to store more.")
	case ClassCrop:
		a.warner.Warn("Crop storage is full.")
	default:
		a.warner.Warn(fmt.Sprintf("Storage for %s is full.", class))
	}
}

func checkCapacity(class Class, v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		panic(fmt.Sprintf("resource: capacity for %s is invalid: %v", class, v))
	}
	return v
}

func sortedKeys(m map[Key]float64) []Key {
	keys := make([]Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func sortedClasses(m map[Class]CapacityFunc) []Class {
	classes := make([]Class, 0, len(m))
	for c := range m {
		classes = append(classes, c)
	}
	slices.Sort(classes)
	return classes
}

package resource

import (
	"math"
	"slices"
	"strings"
)

// Key identifies a resource in the store. The set of keys is open-ended:
// the core defines a base set and modules may introduce their own.
type Key string

const (
	Gold    Key = "gold"
	Wood    Key = "wood"
	Stone   Key = "stone"
	Eggs    Key = "eggs"
	Veggies Key = "veggies"

	seedPrefix = "seed:"
	cropPrefix = "crop:"
)

// SeedKey returns the store key holding seeds of the given catalog id.
func SeedKey(id string) Key {
	return Key(seedPrefix + id)
}

// CropKey returns the store key holding harvested crops of the given catalog id.
func CropKey(id string) Key {
	return Key(cropPrefix + id)
}

// SeedID returns the catalog id of a seed key, or false if k is not a seed key.
func (k Key) SeedID() (string, bool) {
	return strings.CutPrefix(string(k), seedPrefix)
}

// CropID returns the catalog id of a crop key, or false if k is not a crop key.
func (k Key) CropID() (string, bool) {
	return strings.CutPrefix(string(k), cropPrefix)
}

func (k Key) String() string {
	return string(k)
}

// Reader is the read-only view of the store handed to modules.
type Reader interface {
	Get(Key) float64
	Floor(Key) int
	Keys() []Key
}

// Store holds fractional quantities per resource key. It performs no
// capacity accounting; all increases are expected to go through an Allocator.
type Store struct {
	quantities map[Key]float64
}

func NewStore() *Store {
	return &Store{quantities: map[Key]float64{}}
}

// Get returns the exact (fractional) quantity of k.
func (s *Store) Get(k Key) float64 {
	return s.quantities[k]
}

// Floor returns the quantity of k as presented and spent.
func (s *Store) Floor(k Key) int {
	return int(math.Floor(s.quantities[k]))
}

// Keys returns every key with a recorded quantity, sorted.
func (s *Store) Keys() []Key {
	keys := make([]Key, 0, len(s.quantities))
	for k := range s.quantities {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// WithPrefix returns the keys starting with prefix that hold a positive quantity.
func (s *Store) WithPrefix(prefix string) []Key {
	var keys []Key
	for _, k := range s.Keys() {
		if strings.HasPrefix(string(k), prefix) && s.quantities[k] > 0 {
			keys = append(keys, k)
		}
	}
	return keys
}

// Snapshot copies the quantities map.
func (s *Store) Snapshot() map[Key]float64 {
	out := make(map[Key]float64, len(s.quantities))
	for k, v := range s.quantities {
		out[k] = v
	}
	return out
}

// Reset drops every quantity.
func (s *Store) Reset() {
	s.quantities = map[Key]float64{}
}

func (s *Store) add(k Key, amount float64) {
	s.quantities[k] += amount
}

func (s *Store) take(k Key, amount float64) {
	v := s.quantities[k] - amount
	if v < 0 {
		v = 0
	}
	s.quantities[k] = v
}

func (s *Store) set(k Key, v float64) {
	s.quantities[k] = v
}

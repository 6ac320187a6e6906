package resource

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

type recordingWarner struct {
	msgs []string
}

func (w *recordingWarner) Warn(msg string) {
	w.msgs = append(w.msgs, msg)
}

type fakeNow struct {
	t time.Time
}

func (f *fakeNow) Now() time.Time { return f.t }

func newTestAllocator(capacity, cropCap float64) (*Allocator, *recordingWarner, *fakeNow) {
	w := &recordingWarner{}
	clock := &fakeNow{t: time.Unix(1000, 0)}
	a := NewAllocator(NewStore(), NewClassifier(),
		func() float64 { return capacity },
		WithSubCapacity(ClassCrop, func() float64 { return cropCap }),
		WithWarner(w),
		WithThrottle(NewThrottle(DefaultWarnCooldown, clock.Now)),
	)
	return a, w, clock
}

func TestAllocator_GrantPartial(t *testing.T) {
	a, w, _ := newTestAllocator(200, 1000)
	a.Grant(Stone, 195)

	granted := a.Grant(Wood, 20)

	testutil.AssertEqual(t, "granted", granted, 5.0)
	testutil.AssertEqual(t, "usage", a.Usage(), 200.0)
	testutil.AssertEqual(t, "warnings", len(w.msgs), 1)

	// A second exhausted grant inside the cooldown stays quiet.
	granted = a.Grant(Wood, 3)
	testutil.AssertEqual(t, "granted when full", granted, 0.0)
	testutil.AssertEqual(t, "warnings after second grant", len(w.msgs), 1)
}

func TestAllocator_WarningCooldown(t *testing.T) {
	a, w, clock := newTestAllocator(10, 5)
	a.Grant(Wood, 10)

	a.Grant(Wood, 1)
	clock.t = clock.t.Add(time.Second)
	a.Grant(Wood, 1)
	testutil.AssertEqual(t, "warnings within cooldown", len(w.msgs), 1)

	clock.t = clock.t.Add(1500 * time.Millisecond)
	a.Grant(Wood, 1)
	testutil.AssertEqual(t, "warnings after cooldown", len(w.msgs), 2)
}

func TestAllocator_WarningPerClass(t *testing.T) {
	a, w, _ := newTestAllocator(100, 10)

	a.Grant(Veggies, 15)
	a.Grant(Wood, 95)

	testutil.AssertEqual(t, "veggies", a.Store().Get(Veggies), 10.0)
	testutil.AssertEqual(t, "wood", a.Store().Get(Wood), 90.0)
	testutil.AssertEqual(t, "warnings", len(w.msgs), 2)
	testutil.AssertEqual(t, "crop warning", w.msgs[0], "Crop storage is full.")
}

func TestAllocator_Silent(t *testing.T) {
	a, w, _ := newTestAllocator(10, 10)

	granted := a.Grant(Wood, 50, Silent())

	testutil.AssertEqual(t, "granted", granted, 10.0)
	testutil.AssertEqual(t, "warnings", len(w.msgs), 0)
}

func TestAllocator_Reserve(t *testing.T) {
	tests := map[string]struct {
		stored map[Key]float64
		amount float64
		class  Class
		exp    float64
	}{
		"fits": {
			stored: map[Key]float64{Wood: 10},
			amount: 5,
			class:  ClassGlobal,
			exp:    5,
		},
		"global binds": {
			stored: map[Key]float64{Wood: 95},
			amount: 20,
			class:  ClassCrop,
			exp:    5,
		},
		"crop binds": {
			stored: map[Key]float64{Veggies: 45},
			amount: 20,
			class:  ClassCrop,
			exp:    5,
		},
		"untracked is never limited": {
			stored: map[Key]float64{Wood: 100},
			amount: 1e6,
			class:  ClassNone,
			exp:    1e6,
		},
		"zero amount": {
			stored: map[Key]float64{},
			amount: 0,
			class:  ClassGlobal,
			exp:    0,
		},
		"over capacity after restore": {
			stored: map[Key]float64{Wood: 100},
			amount: 1,
			class:  ClassGlobal,
			exp:    0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			a, _, _ := newTestAllocator(100, 50)
			a.Restore(tt.stored)
			before := a.Store().Snapshot()

			got := a.Reserve(tt.amount, tt.class, Silent())

			testutil.AssertEqual(t, "reserved", got, tt.exp)
			testutil.AssertEqual(t, "store untouched", len(a.Store().Snapshot()), len(before))
		})
	}
}

func TestAllocator_GoldUncapped(t *testing.T) {
	a, _, _ := newTestAllocator(10, 10)
	a.Grant(Wood, 10)

	granted := a.Grant(Gold, 500)

	testutil.AssertEqual(t, "granted", granted, 500.0)
	testutil.AssertEqual(t, "usage", a.Usage(), 10.0)
}

func TestAllocator_ModuleKeysCountTowardCapacity(t *testing.T) {
	a, _, _ := newTestAllocator(50, 50)
	a.Grant(Key("milk"), 40)

	granted := a.Grant(Wood, 20)

	testutil.AssertEqual(t, "granted", granted, 10.0)
	testutil.AssertEqual(t, "usage", a.Usage(), 50.0)
}

func TestAllocator_NegativePanics(t *testing.T) {
	a, _, _ := newTestAllocator(10, 10)
	defer func() {
		if recover() == nil {
			t.Error("expected panic on negative grant")
		}
	}()
	a.Grant(Wood, -1)
}

func TestAllocator_NegativeCapacityPanics(t *testing.T) {
	a := NewAllocator(NewStore(), NewClassifier(), func() float64 { return -1 })
	defer func() {
		if recover() == nil {
			t.Error("expected panic on negative capacity")
		}
	}()
	a.Grant(Wood, 1)
}

func TestAllocator_CapacityInvariant(t *testing.T) {
	a, _, _ := newTestAllocator(300, 120)
	keys := []Key{Wood, Stone, Eggs, Veggies, CropKey("carrot"), Key("honey"), Gold}
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 500; i++ {
		k := keys[rng.IntN(len(keys))]
		amount := float64(rng.IntN(40))
		beforeUsage := a.Usage()
		beforeFree := a.FreeSpace(ClassGlobal)

		granted := a.Grant(k, amount, Silent())

		if granted > amount {
			t.Fatalf("grant %d: granted %v more than requested %v", i, granted, amount)
		}
		if a.Classes().Tracked(k) {
			if granted > beforeFree {
				t.Fatalf("grant %d: granted %v more than free space %v", i, granted, beforeFree)
			}
			if a.Usage()-beforeUsage != granted {
				t.Fatalf("grant %d: usage grew by %v, granted %v", i, a.Usage()-beforeUsage, granted)
			}
		}
		if a.Usage() > a.Capacity() {
			t.Fatalf("grant %d: usage %v exceeds capacity %v", i, a.Usage(), a.Capacity())
		}
		if a.ClassUsage(ClassCrop) > 120 {
			t.Fatalf("grant %d: crop usage %v exceeds sub-capacity", i, a.ClassUsage(ClassCrop))
		}

		if i%7 == 0 {
			a.Take(keys[rng.IntN(len(keys))], float64(rng.IntN(30)))
		}
	}
}

func TestAllocator_SpendAll(t *testing.T) {
	a, _, _ := newTestAllocator(100, 100)
	a.Grant(Wood, 40)
	a.Grant(Veggies, 3)

	missing, ok := a.SpendAll(map[Key]float64{Wood: 10, Veggies: 5})
	testutil.AssertEqual(t, "ok", ok, false)
	testutil.AssertEqual(t, "missing", missing, Veggies)
	testutil.AssertEqual(t, "wood untouched", a.Store().Get(Wood), 40.0)

	_, ok = a.SpendAll(map[Key]float64{Wood: 10, Veggies: 3})
	testutil.AssertEqual(t, "ok", ok, true)
	testutil.AssertEqual(t, "wood", a.Store().Get(Wood), 30.0)
	testutil.AssertEqual(t, "veggies", a.Store().Get(Veggies), 0.0)
}

func TestAllocator_RestoreClamps(t *testing.T) {
	a, _, _ := newTestAllocator(100, 20)

	a.Restore(map[Key]float64{
		Wood:    120,
		Veggies: 40,
		Gold:    999,
		Stone:   -5,
	})

	testutil.AssertEqual(t, "crop usage", a.ClassUsage(ClassCrop) <= 20, true)
	testutil.AssertEqual(t, "usage", a.Usage() <= 100+1e-9, true)
	testutil.AssertEqual(t, "gold untouched", a.Store().Get(Gold), 999.0)
	testutil.AssertEqual(t, "negative dropped", a.Store().Get(Stone), 0.0)
}

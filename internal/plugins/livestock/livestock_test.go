package livestock

import (
	"context"
	"strings"
	"testing"

	"github.com/pixil98/go-homestead/internal/game"
	"github.com/pixil98/go-homestead/internal/plugins"
	"github.com/pixil98/go-homestead/internal/resource"
	"github.com/pixil98/go-testutil"
)

func setup(t *testing.T, st game.State) (*plugins.Dispatcher, *game.Homestead) {
	t.Helper()
	home := game.NewHomestead()
	home.Restore(st)
	reg := plugins.NewRegistry()
	if err := reg.Register(context.Background(), New()); err != nil {
		t.Fatalf("register: %v", err)
	}
	d := plugins.NewDispatcher(reg, home)
	if err := d.Activate(context.Background(), ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	return d, home
}

func TestLivestock_BuyAndCollect(t *testing.T) {
	_, home := setup(t, game.State{Resources: map[resource.Key]float64{
		resource.Wood:    80,
		resource.Veggies: 40,
		resource.Stone:   5,
	}})

	if err := home.Buy(Cow); err != nil {
		t.Fatalf("buy cow: %v", err)
	}
	testutil.AssertErrorContains(t, home.Buy(Cow), "Required: 5 stone.")
	if err := home.Buy(Pig); err != nil {
		t.Fatalf("buy pig: %v", err)
	}

	home.AdvanceHerds(360)
	cow, _ := home.Herd(Cow)
	pig, _ := home.Herd(Pig)
	testutil.AssertEqual(t, "milk ready", cow.Ready, 4.0)
	testutil.AssertEqual(t, "pork ready", pig.Ready, 2.0)

	if err := home.Collect(string(Milk)); err != nil {
		t.Fatalf("collect milk: %v", err)
	}
	testutil.AssertEqual(t, "milk", home.Resources().Get(Milk), 4.0)
}

func TestLivestock_Caps(t *testing.T) {
	_, home := setup(t, game.State{Herds: map[string]game.HerdState{Cow: {Count: 2}, Pig: {Count: 1}}})

	home.AdvanceHerds(12 * 3600)

	cow, _ := home.Herd(Cow)
	pig, _ := home.Herd(Pig)
	testutil.AssertEqual(t, "milk cap", cow.Ready, 10.0)
	testutil.AssertEqual(t, "pork cap", pig.Ready, 3.0)
}

func TestLivestock_ResetClearsReady(t *testing.T) {
	d, home := setup(t, game.State{Herds: map[string]game.HerdState{Cow: {Count: 1, Ready: 3}}})

	d.Reset(context.Background(), plugins.ResetOptions{})

	cow, _ := home.Herd(Cow)
	testutil.AssertEqual(t, "ready", cow.Ready, 0.0)
	testutil.AssertEqual(t, "count kept", cow.Count, 1)
}

func TestLivestock_Panel(t *testing.T) {
	d, _ := setup(t, game.State{Herds: map[string]game.HerdState{Cow: {Count: 2, Ready: 1.5}}})

	d.Render(context.Background())

	panel := d.Modules()[0].Panel
	if !strings.HasPrefix(panel, "2 cows") {
		t.Errorf("unexpected panel %q", panel)
	}
	if !strings.Contains(panel, "milk ready: 1 (stock: 0)") {
		t.Errorf("panel missing milk line: %q", panel)
	}
}

func TestLivestock_DeactivateKeepsAnimals(t *testing.T) {
	d, home := setup(t, game.State{
		Resources: map[resource.Key]float64{Milk: 3},
		Herds:     map[string]game.HerdState{Cow: {Count: 2, Ready: 1}},
	})
	ctx := context.Background()

	if err := d.Deactivate(ctx, ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	testutil.AssertEqual(t, "milk kept", home.Resources().Get(Milk), 3.0)
	testutil.AssertEqual(t, "cows persisted", home.Snapshot().Herds[Cow].Count, 2)

	if err := d.Activate(ctx, ID); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	cow, _ := home.Herd(Cow)
	testutil.AssertEqual(t, "cows back", cow.Count, 2)
}

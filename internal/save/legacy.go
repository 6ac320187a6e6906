package save

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-homestead/internal/catalog"
	"github.com/pixil98/go-homestead/internal/game"
	"github.com/pixil98/go-homestead/internal/garden"
	"github.com/pixil98/go-homestead/internal/plugins/livestock"
	"github.com/pixil98/go-homestead/internal/resource"
)

// legacySave is the version-less format written by the first release. It
// nested seeds, crops and tools under resources and kept animals and meta
// data in separate objects.
type legacySave struct {
	Resources map[string]json.RawMessage `json:"resources"`
	Garden    *legacyGarden              `json:"garden"`
	Animals   map[string]float64         `json:"animals"`
	Buildings map[string]json.RawMessage `json:"buildings"`
	Meta      struct {
		LastTick int64    `json:"lastTick"`
		Log      []string `json:"log"`
	} `json:"meta"`
}

type legacyGarden struct {
	Tilled       bool    `json:"tilled"`
	Planted      bool    `json:"planted"`
	PlantID      string  `json:"plantId"`
	GrowProgress float64 `json:"growProgress"`
	GrowTime     float64 `json:"growTime"`
}

// legacyHerds maps animal counters to herd ids and their ready counters.
var legacyHerds = []struct {
	count, ready, herd string
}{
	{"chickens", "eggsReady", catalog.Chicken},
	{"cows", "cowMilkReady", livestock.Cow},
	{"pigs", "pigMeatReady", livestock.Pig},
}

const legacyDefaultGrow = 20

func decodeLegacy(data []byte) (*Snapshot, error) {
	var l legacySave
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, err
	}

	st := game.State{
		Resources: map[resource.Key]float64{},
		Tools:     map[string]bool{},
		Buildings: map[string]int{},
		Herds:     map[string]game.HerdState{},
	}

	for name, raw := range l.Resources {
		var err error
		switch name {
		case "seeds":
			err = migrateSeeds(raw, st.Resources)
		case "crops":
			err = migrateCrops(raw, st.Resources)
		case "tools":
			err = migrateTools(raw, st.Tools)
		default:
			var v float64
			if json.Unmarshal(raw, &v) == nil {
				st.Resources[resource.Key(name)] = v
			}
		}
		if err != nil {
			return nil, fmt.Errorf("resources.%s: %w", name, err)
		}
	}

	for name, raw := range l.Buildings {
		var owned bool
		if json.Unmarshal(raw, &owned) == nil {
			if owned {
				st.Buildings[name] = 1
			}
			continue
		}
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("buildings.%s: %w", name, err)
		}
		if n > 0 {
			st.Buildings[name] = n
		}
	}

	for _, h := range legacyHerds {
		count := int(l.Animals[h.count])
		ready := l.Animals[h.ready]
		if count > 0 || ready > 0 {
			st.Herds[h.herd] = game.HerdState{Count: count, Ready: ready}
		}
	}

	st.Garden = migrateGarden(l.Garden)

	s := &Snapshot{
		Version: Version,
		SaveID:  uuid.New(),
		State:   st,
		Journal: l.Meta.Log,
	}
	if l.Meta.LastTick > 0 {
		s.LastTick = time.UnixMilli(l.Meta.LastTick)
	}
	return s, nil
}

// migrateSeeds accepts both the oldest form, a bare count of basic seeds,
// and the per-seed object.
func migrateSeeds(raw json.RawMessage, out map[resource.Key]float64) error {
	var n float64
	if json.Unmarshal(raw, &n) == nil {
		out[resource.SeedKey(catalog.DefaultSeedID)] = n
		return nil
	}
	var seeds map[string]float64
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return err
	}
	for id, v := range seeds {
		out[resource.SeedKey(id)] = v
	}
	return nil
}

// migrateCrops moves harvested crops to crop keys. Basic crops were counted
// twice, in crops and in veggies, so only the veggies side is kept.
func migrateCrops(raw json.RawMessage, out map[resource.Key]float64) error {
	var crops map[string]float64
	if err := json.Unmarshal(raw, &crops); err != nil {
		return err
	}
	for id, v := range crops {
		if id == catalog.DefaultSeedID {
			continue
		}
		out[resource.CropKey(id)] = v
	}
	return nil
}

func migrateTools(raw json.RawMessage, out map[string]bool) error {
	var tools map[string]bool
	if err := json.Unmarshal(raw, &tools); err != nil {
		return err
	}
	for id, owned := range tools {
		// the pickaxe was removed from the game
		if id == "pick" || !owned {
			continue
		}
		out[id] = true
	}
	return nil
}

// migrateGarden maps the flag based plot onto the phase based one. Legacy
// saves never persisted running tasks, so a plot mid-task comes back idle.
func migrateGarden(g *legacyGarden) garden.Snapshot {
	if g == nil {
		return garden.Snapshot{State: garden.StateIdle}
	}
	grow := g.GrowTime
	if grow <= 0 {
		grow = legacyDefaultGrow
	}
	if g.Planted {
		crop := g.PlantID
		if crop == "" {
			crop = catalog.DefaultSeedID
		}
		return garden.Snapshot{
			State:    garden.StatePlanted,
			Crop:     crop,
			Progress: g.GrowProgress,
			Grow:     grow,
		}
	}
	return garden.Snapshot{State: garden.StateIdle, Tilled: g.Tilled, Grow: grow}
}

package catalog

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

// Balance holds gameplay balance configuration. Durations and periods are
// in seconds of simulated time.
type Balance struct {
	Capacity CapacityBalance `yaml:"capacity" json:"capacity"`
	Chop     ChopBalance     `yaml:"chop" json:"chop"`
	Forage   ForageBalance   `yaml:"forage" json:"forage"`
	Garden   GardenBalance   `yaml:"garden" json:"garden"`
	Passive  PassiveBalance  `yaml:"passive" json:"passive"`
	Chickens HerdBalance     `yaml:"chickens" json:"chickens"`
}

type CapacityBalance struct {
	Base        float64 `yaml:"base" json:"base"`
	PerShed     float64 `yaml:"per_shed" json:"per_shed"`
	Barn        float64 `yaml:"barn" json:"barn"`
	CropBase    float64 `yaml:"crop_base" json:"crop_base"`
	CropPerShed float64 `yaml:"crop_per_shed" json:"crop_per_shed"`
	CropBarn    float64 `yaml:"crop_barn" json:"crop_barn"`
}

type ChopBalance struct {
	Duration         float64 `yaml:"duration" json:"duration"`
	ChainsawDuration float64 `yaml:"chainsaw_duration" json:"chainsaw_duration"`
	BareHands        float64 `yaml:"bare_hands" json:"bare_hands"`
	Axe              float64 `yaml:"axe" json:"axe"`
	Chainsaw         float64 `yaml:"chainsaw" json:"chainsaw"`
	ShedBonus        float64 `yaml:"shed_bonus" json:"shed_bonus"`
}

type ForageBalance struct {
	Duration    float64 `yaml:"duration" json:"duration"`
	StoneChance float64 `yaml:"stone_chance" json:"stone_chance"`
	WoodChance  float64 `yaml:"wood_chance" json:"wood_chance"`
	SeedChance  float64 `yaml:"seed_chance" json:"seed_chance"`
}

type GardenBalance struct {
	TillDuration         float64 `yaml:"till_duration" json:"till_duration"`
	TractorTillDuration  float64 `yaml:"tractor_till_duration" json:"tractor_till_duration"`
	PlantDuration        float64 `yaml:"plant_duration" json:"plant_duration"`
	TractorPlantDuration float64 `yaml:"tractor_plant_duration" json:"tractor_plant_duration"`
	DefaultGrow          float64 `yaml:"default_grow" json:"default_grow"`
	TractorGrowFactor    float64 `yaml:"tractor_grow_factor" json:"tractor_grow_factor"`
	TractorMinGrow       float64 `yaml:"tractor_min_grow" json:"tractor_min_grow"`
	TractorYieldFactor   float64 `yaml:"tractor_yield_factor" json:"tractor_yield_factor"`
}

type PassiveBalance struct {
	ChainsawWoodPer float64 `yaml:"chainsaw_wood_per" json:"chainsaw_wood_per"`
	HouseVeggiesPer float64 `yaml:"house_veggies_per" json:"house_veggies_per"`
}

// HerdBalance configures a livestock kind: one unit of output per Per
// seconds per animal, with at most CapMultiple units ready per animal.
type HerdBalance struct {
	Per         float64 `yaml:"per" json:"per"`
	CapMultiple float64 `yaml:"cap_multiple" json:"cap_multiple"`
}

// Default returns the default balance configuration
func Default() Balance {
	return Balance{
		Capacity: CapacityBalance{
			Base:        200,
			PerShed:     100,
			Barn:        2000,
			CropBase:    60,
			CropPerShed: 40,
			CropBarn:    500,
		},
		Chop: ChopBalance{
			Duration:         5,
			ChainsawDuration: 3,
			BareHands:        3,
			Axe:              8,
			Chainsaw:         20,
			ShedBonus:        0.1,
		},
		Forage: ForageBalance{
			Duration:    6,
			StoneChance: 0.30,
			WoodChance:  0.30,
			SeedChance:  0.30,
		},
		Garden: GardenBalance{
			TillDuration:         4,
			TractorTillDuration:  2,
			PlantDuration:        3,
			TractorPlantDuration: 1,
			DefaultGrow:          20,
			TractorGrowFactor:    0.85,
			TractorMinGrow:       10,
			TractorYieldFactor:   1.25,
		},
		Passive: PassiveBalance{
			ChainsawWoodPer: 3,
			HouseVeggiesPer: 30,
		},
		Chickens: HerdBalance{
			Per:         60,
			CapMultiple: 10,
		},
	}
}

// Casual returns easier balance with more storage and faster work
func Casual() Balance {
	cfg := Default()
	cfg.Capacity.Base = 400
	cfg.Capacity.CropBase = 120
	cfg.Chop.Duration = 4
	cfg.Garden.TillDuration = 3
	cfg.Chickens.CapMultiple = 20
	return cfg
}

// Hard returns tighter storage and slower passive production
func Hard() Balance {
	cfg := Default()
	cfg.Capacity.Base = 120
	cfg.Capacity.PerShed = 60
	cfg.Capacity.CropBase = 40
	cfg.Passive.ChainsawWoodPer = 4
	cfg.Passive.HouseVeggiesPer = 45
	cfg.Chickens.CapMultiple = 5
	return cfg
}

// Preset returns a named balance preset.
func Preset(name string) (Balance, error) {
	switch name {
	case "", "default":
		return Default(), nil
	case "casual":
		return Casual(), nil
	case "hard":
		return Hard(), nil
	default:
		return Balance{}, fmt.Errorf("unknown balance preset %q", name)
	}
}

// LoadBalance reads a YAML file on top of base. Fields absent from the file
// keep their value from base.
func LoadBalance(path string, base Balance) (Balance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Balance{}, fmt.Errorf("reading balance file: %w", err)
	}

	b := base
	if err := yaml.Unmarshal(data, &b); err != nil {
		return Balance{}, fmt.Errorf("parsing balance file %q: %w", path, err)
	}

	if err := b.Validate(); err != nil {
		return Balance{}, fmt.Errorf("validating balance file %q: %w", path, err)
	}

	return b, nil
}

func (b *Balance) Validate() error {
	el := errors.NewErrorList()

	if b.Capacity.Base < 0 || b.Capacity.PerShed < 0 || b.Capacity.Barn < 0 {
		el.Add(fmt.Errorf("capacity values must not be negative"))
	}
	if b.Capacity.CropBase < 0 || b.Capacity.CropPerShed < 0 || b.Capacity.CropBarn < 0 {
		el.Add(fmt.Errorf("crop capacity values must not be negative"))
	}
	if b.Chop.Duration <= 0 || b.Chop.ChainsawDuration <= 0 {
		el.Add(fmt.Errorf("chop durations must be positive"))
	}
	if b.Chop.BareHands <= 0 || b.Chop.Axe <= 0 || b.Chop.Chainsaw <= 0 {
		el.Add(fmt.Errorf("chop yields must be positive"))
	}
	if b.Chop.ShedBonus < 0 {
		el.Add(fmt.Errorf("chop shed_bonus must not be negative"))
	}
	if b.Forage.Duration <= 0 {
		el.Add(fmt.Errorf("forage duration must be positive"))
	}
	if b.Forage.StoneChance < 0 || b.Forage.WoodChance < 0 || b.Forage.SeedChance < 0 {
		el.Add(fmt.Errorf("forage chances must not be negative"))
	}
	if sum := b.Forage.StoneChance + b.Forage.WoodChance + b.Forage.SeedChance; sum > 1 {
		el.Add(fmt.Errorf("forage chances add up to %.2f, more than 1", sum))
	}
	if b.Garden.TillDuration <= 0 || b.Garden.PlantDuration <= 0 ||
		b.Garden.TractorTillDuration <= 0 || b.Garden.TractorPlantDuration <= 0 {
		el.Add(fmt.Errorf("garden durations must be positive"))
	}
	if b.Garden.DefaultGrow <= 0 {
		el.Add(fmt.Errorf("garden default_grow must be positive"))
	}
	if b.Garden.TractorGrowFactor <= 0 || b.Garden.TractorYieldFactor <= 0 {
		el.Add(fmt.Errorf("garden tractor factors must be positive"))
	}
	if b.Garden.TractorMinGrow < 0 {
		el.Add(fmt.Errorf("garden tractor_min_grow must not be negative"))
	}
	if b.Passive.ChainsawWoodPer <= 0 || b.Passive.HouseVeggiesPer <= 0 {
		el.Add(fmt.Errorf("passive production periods must be positive"))
	}
	if b.Chickens.Per <= 0 || b.Chickens.CapMultiple <= 0 {
		el.Add(fmt.Errorf("chickens: per and cap_multiple must be positive"))
	}

	return el.Err()
}

package catalog

import (
	"fmt"
	"slices"

	"github.com/pixil98/go-errors"
)

// DefaultSeedID is the crop used when a persisted crop id is no longer known.
const DefaultSeedID = "basic"

// Seed describes a plantable seed and the crop it grows into.
type Seed struct {
	ID       string  `json:"id" yaml:"id"`
	Icon     string  `json:"icon" yaml:"icon"`
	Name     string  `json:"name" yaml:"name"`
	Crop     string  `json:"crop" yaml:"crop"`
	YieldMin int     `json:"yield_min" yaml:"yield_min"`
	YieldMax int     `json:"yield_max" yaml:"yield_max"`
	Grow     float64 `json:"grow" yaml:"grow"`
}

func (s *Seed) Validate() error {
	el := errors.NewErrorList()

	if s.ID == "" {
		el.Add(fmt.Errorf("id is required"))
	}
	if s.YieldMin < 1 {
		el.Add(fmt.Errorf("seed %q: yield_min must be at least 1", s.ID))
	}
	if s.YieldMax < s.YieldMin {
		el.Add(fmt.Errorf("seed %q: yield_max must not be below yield_min", s.ID))
	}
	if s.Grow <= 0 {
		el.Add(fmt.Errorf("seed %q: grow must be positive", s.ID))
	}

	return el.Err()
}

// Seeds is an ordered seed catalog indexed by id.
type Seeds struct {
	list []Seed
	byID map[string]Seed
}

// NewSeeds validates and indexes a seed list. The list must contain the
// default seed so that stale crop ids can always be remapped.
func NewSeeds(list []Seed) (*Seeds, error) {
	el := errors.NewErrorList()
	byID := make(map[string]Seed, len(list))
	for i := range list {
		s := list[i]
		if err := s.Validate(); err != nil {
			el.Add(err)
			continue
		}
		if _, ok := byID[s.ID]; ok {
			el.Add(fmt.Errorf("duplicate seed id %q", s.ID))
			continue
		}
		byID[s.ID] = s
	}
	if _, ok := byID[DefaultSeedID]; !ok {
		el.Add(fmt.Errorf("seed catalog must contain %q", DefaultSeedID))
	}
	if err := el.Err(); err != nil {
		return nil, err
	}

	return &Seeds{list: slices.Clone(list), byID: byID}, nil
}

// DefaultSeeds returns the built-in catalog of thirty seeds.
func DefaultSeeds() *Seeds {
	s, err := NewSeeds(defaultSeedList)
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in seeds invalid: %v", err))
	}
	return s
}

// Get returns the seed with the given id.
func (s *Seeds) Get(id string) (Seed, bool) {
	seed, ok := s.byID[id]
	return seed, ok
}

// All returns the seeds in catalog order.
func (s *Seeds) All() []Seed {
	return slices.Clone(s.list)
}

// Remap returns id if it is known, otherwise the default seed id.
func (s *Seeds) Remap(id string) string {
	if _, ok := s.byID[id]; ok {
		return id
	}
	return DefaultSeedID
}

var defaultSeedList = []Seed{
	{ID: "basic", Icon: "🌱", Name: "Basic seed", Crop: "Vegetables", YieldMin: 4, YieldMax: 6, Grow: 20},
	{ID: "onion", Icon: "🧅", Name: "Onion seed", Crop: "Onions", YieldMin: 3, YieldMax: 5, Grow: 22},
	{ID: "pumpkin", Icon: "🎃", Name: "Pumpkin seed", Crop: "Pumpkins", YieldMin: 2, YieldMax: 3, Grow: 28},
	{ID: "carrot", Icon: "🥕", Name: "Carrot seed", Crop: "Carrots", YieldMin: 4, YieldMax: 7, Grow: 20},
	{ID: "potato", Icon: "🥔", Name: "Seed potato", Crop: "Potatoes", YieldMin: 3, YieldMax: 6, Grow: 22},
	{ID: "wheat", Icon: "🌾", Name: "Wheat seed", Crop: "Wheat", YieldMin: 5, YieldMax: 9, Grow: 24},
	{ID: "corn", Icon: "🌽", Name: "Corn seed", Crop: "Corn", YieldMin: 3, YieldMax: 5, Grow: 24},
	{ID: "tomato", Icon: "🍅", Name: "Tomato seed", Crop: "Tomatoes", YieldMin: 4, YieldMax: 7, Grow: 23},
	{ID: "lettuce", Icon: "🥬", Name: "Lettuce seed", Crop: "Lettuce", YieldMin: 4, YieldMax: 8, Grow: 18},
	{ID: "cabbage", Icon: "🥬", Name: "Cabbage seed", Crop: "Cabbage", YieldMin: 2, YieldMax: 4, Grow: 26},
	{ID: "beet", Icon: "🪻", Name: "Beet seed", Crop: "Beets", YieldMin: 4, YieldMax: 6, Grow: 21},
	{ID: "radish", Icon: "🥗", Name: "Radish seed", Crop: "Radishes", YieldMin: 5, YieldMax: 9, Grow: 17},
	{ID: "pepper", Icon: "🫑", Name: "Pepper seed", Crop: "Peppers", YieldMin: 3, YieldMax: 6, Grow: 25},
	{ID: "cucumber", Icon: "🥒", Name: "Cucumber seed", Crop: "Cucumbers", YieldMin: 3, YieldMax: 5, Grow: 23},
	{ID: "garlic", Icon: "🧄", Name: "Garlic clove", Crop: "Garlic", YieldMin: 3, YieldMax: 6, Grow: 24},
	{ID: "leek", Icon: "🥬", Name: "Leek seed", Crop: "Leeks", YieldMin: 3, YieldMax: 5, Grow: 24},
	{ID: "pea", Icon: "🟢", Name: "Pea seed", Crop: "Peas", YieldMin: 6, YieldMax: 10, Grow: 19},
	{ID: "bean", Icon: "🫘", Name: "Bean seed", Crop: "Beans", YieldMin: 6, YieldMax: 10, Grow: 21},
	{ID: "spinach", Icon: "🥬", Name: "Spinach seed", Crop: "Spinach", YieldMin: 5, YieldMax: 9, Grow: 16},
	{ID: "broccoli", Icon: "🥦", Name: "Broccoli seed", Crop: "Broccoli", YieldMin: 2, YieldMax: 4, Grow: 26},
	{ID: "cauli", Icon: "🥦", Name: "Cauliflower seed", Crop: "Cauliflower", YieldMin: 2, YieldMax: 4, Grow: 27},
	{ID: "chili", Icon: "🌶️", Name: "Chili seed", Crop: "Chilies", YieldMin: 3, YieldMax: 6, Grow: 24},
	{ID: "eggplant", Icon: "🍆", Name: "Eggplant seed", Crop: "Eggplants", YieldMin: 3, YieldMax: 5, Grow: 25},
	{ID: "melon", Icon: "🍈", Name: "Melon seed", Crop: "Melons", YieldMin: 1, YieldMax: 2, Grow: 30},
	{ID: "straw", Icon: "🍓", Name: "Strawberry seed", Crop: "Strawberries", YieldMin: 3, YieldMax: 6, Grow: 24},
	{ID: "blue", Icon: "🫐", Name: "Blueberry seed", Crop: "Blueberries", YieldMin: 2, YieldMax: 4, Grow: 28},
	{ID: "rasp", Icon: "🍇", Name: "Raspberry seed", Crop: "Raspberries", YieldMin: 2, YieldMax: 4, Grow: 28},
	{ID: "basil", Icon: "🌿", Name: "Basil seed", Crop: "Basil", YieldMin: 5, YieldMax: 9, Grow: 16},
	{ID: "sunflower", Icon: "🌻", Name: "Sunflower seed", Crop: "Sunflowers", YieldMin: 1, YieldMax: 3, Grow: 27},
	{ID: "barley", Icon: "🌾", Name: "Barley seed", Crop: "Barley", YieldMin: 5, YieldMax: 9, Grow: 24},
}

package game

import (
	"fmt"

	"github.com/pixil98/go-homestead/internal/resource"
)

// Rule is a continuous production rule: Units() producers each yield one
// unit of Output every Per seconds.
type Rule struct {
	ID     string
	Output resource.Key
	Per    float64
	Units  func() float64
}

func (r Rule) validate() error {
	if r.ID == "" {
		return fmt.Errorf("production rule id is required")
	}
	if r.Output == "" {
		return fmt.Errorf("production rule %q: output is required", r.ID)
	}
	if r.Per <= 0 {
		return fmt.Errorf("production rule %q: per must be positive", r.ID)
	}
	if r.Units == nil {
		return fmt.Errorf("production rule %q: units func is required", r.ID)
	}
	return nil
}

// Amount returns the linear accrual of the rule over dt seconds.
func (r Rule) Amount(dt float64) float64 {
	units := r.Units()
	if units <= 0 || dt <= 0 {
		return 0
	}
	return dt * units / r.Per
}

// Yield is the outcome of production for one resource.
type Yield struct {
	Key          resource.Key
	Hypothetical float64
	Granted      float64
}

// Lost is the part of the hypothetical yield that did not fit.
func (y Yield) Lost() float64 {
	return y.Hypothetical - y.Granted
}

type rules struct {
	list []Rule
}

func (rs *rules) register(r Rule) error {
	if err := r.validate(); err != nil {
		return err
	}
	for _, v := range rs.list {
		if v.ID == r.ID {
			return fmt.Errorf("production rule %q: %w", r.ID, ErrAlreadyExists)
		}
	}
	rs.list = append(rs.list, r)
	return nil
}

func (rs *rules) unregister(id string) {
	for i, v := range rs.list {
		if v.ID == id {
			rs.list = append(rs.list[:i], rs.list[i+1:]...)
			return
		}
	}
}

// accrue sums every rule over dt, per output key, in rule order.
func (rs *rules) accrue(dt float64) ([]resource.Key, map[resource.Key]float64) {
	var order []resource.Key
	totals := map[resource.Key]float64{}
	for _, r := range rs.list {
		amount := r.Amount(dt)
		if amount <= 0 {
			continue
		}
		if _, ok := totals[r.Output]; !ok {
			order = append(order, r.Output)
		}
		totals[r.Output] += amount
	}
	return order, totals
}

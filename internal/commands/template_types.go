package commands

import (
	"strings"

	"github.com/pixil98/go-homestead/internal/catalog"
	"github.com/pixil98/go-homestead/internal/game"
	"github.com/pixil98/go-homestead/internal/garden"
	"github.com/pixil98/go-homestead/internal/resource"
)

// Stable template-facing types
// These types decouple status templates from the simulation structs.

// ResourceView is one stored resource.
type ResourceView struct {
	Key    string
	Icon   string
	Label  string
	Amount float64
}

// GardenView is the garden plot.
type GardenView struct {
	State     string
	Tilled    bool
	Task      string
	Remaining float64
	Crop      string
	Icon      string
	Progress  float64
	Ready     bool
}

// ActionView is a running manual action.
type ActionView struct {
	Name      string
	Remaining float64
}

// HerdView is one kind of livestock.
type HerdView struct {
	Name   string
	Icon   string
	Count  int
	Output string
	Ready  float64
	Cap    float64
}

// OwnedView is an owned shop item.
type OwnedView struct {
	Name  string
	Icon  string
	Count int
}

// StatusView is the data handed to the status template.
type StatusView struct {
	Gold         float64
	Usage        float64
	Capacity     float64
	CropUsage    float64
	CropCapacity float64
	Resources    []ResourceView
	Seeds        []ResourceView
	Garden       GardenView
	Actions      []ActionView
	Herds        []HerdView
	Tools        []OwnedView
	Buildings    []OwnedView
	Panels       []string
}

// NewStatusView captures the homestead for presentation. It must run on the
// driver goroutine.
func NewStatusView(home *game.Homestead, panels []string) *StatusView {
	alloc := home.Allocator()
	v := &StatusView{
		Gold:         home.Resources().Get(resource.Gold),
		Usage:        alloc.Usage(),
		Capacity:     alloc.Capacity(),
		CropUsage:    alloc.ClassUsage(resource.ClassCrop),
		CropCapacity: home.CropCapacity(),
		Panels:       panels,
	}

	res := home.Resources()
	for _, k := range res.Keys() {
		if k == resource.Gold || res.Floor(k) <= 0 {
			continue
		}
		rv := ResourceView{Key: string(k), Icon: home.Icon(string(k)), Label: home.Label(k), Amount: res.Get(k)}
		if _, ok := k.SeedID(); ok {
			v.Seeds = append(v.Seeds, rv)
			continue
		}
		v.Resources = append(v.Resources, rv)
	}

	plot := home.Plot()
	v.Garden = GardenView{State: string(plot.State()), Tilled: plot.Tilled(), Ready: plot.Ready()}
	if task, remaining, _ := plot.Task(); task != "" {
		v.Garden.Task = string(task)
		v.Garden.Remaining = remaining
	}
	if crop, progress := plot.Crop(); plot.State() == garden.StatePlanted {
		v.Garden.Progress = progress
		v.Garden.Crop = crop
		if seed, ok := home.Seeds().Get(crop); ok {
			v.Garden.Crop = strings.ToLower(seed.Crop)
			v.Garden.Icon = seed.Icon
		}
	}

	for _, a := range []struct {
		kind  game.ActionKind
		label string
	}{
		{game.ActionChop, "chopping wood"},
		{game.ActionForage, "foraging"},
	} {
		if remaining, _, ok := home.Action(a.kind); ok {
			v.Actions = append(v.Actions, ActionView{Name: a.label, Remaining: remaining})
		}
	}

	for _, h := range home.Herds() {
		if h.Count <= 0 {
			continue
		}
		v.Herds = append(v.Herds, HerdView{
			Name:   h.Kind.Name,
			Icon:   home.Icon(h.Kind.ID),
			Count:  h.Count,
			Output: home.Label(h.Kind.Output),
			Ready:  h.Ready,
			Cap:    h.Cap(),
		})
	}

	for _, it := range home.Items() {
		n := home.Owned(it.ID)
		if n <= 0 {
			continue
		}
		ov := OwnedView{Name: it.Name, Icon: home.Icon(it.ID), Count: n}
		switch it.Kind {
		case catalog.ItemTool:
			v.Tools = append(v.Tools, ov)
		case catalog.ItemBuilding:
			v.Buildings = append(v.Buildings, ov)
		}
	}

	return v
}

// DefaultStatusTemplate renders a StatusView.
const DefaultStatusTemplate = `🪙 Gold: {{ floor .Gold }}
📦 Storage {{ bar .Usage .Capacity 20 }} {{ floor .Usage }}/{{ floor .Capacity }}
🧺 Crops   {{ bar .CropUsage .CropCapacity 20 }} {{ floor .CropUsage }}/{{ floor .CropCapacity }}
{{- range .Resources }}
  {{ .Icon | default "•" }} {{ .Label | title }}: {{ floor .Amount }}
{{- end }}
{{- if .Seeds }}
Seeds: {{ range $i, $s := .Seeds }}{{ if $i }}, {{ end }}{{ $s.Label }} x{{ floor $s.Amount }}{{ end }}
{{- end }}
{{- with .Garden }}
Garden: {{ if .Task }}{{ .Task }}ing, {{ secs .Remaining }} left{{ else if .Ready }}{{ .Icon }} {{ .Crop }} ready to harvest{{ else if .Crop }}{{ .Icon }} {{ .Crop }} growing ({{ pct .Progress }}){{ else if .Tilled }}tilled, ready for sowing{{ else }}untilled{{ end }}
{{- end }}
{{- range .Actions }}
Busy: {{ .Name }}, {{ secs .Remaining }} left
{{- end }}
{{- range .Herds }}
{{ .Icon }} {{ .Count }} {{ .Name | lower }}: {{ floor .Ready }}/{{ floor .Cap }} {{ .Output }} ready
{{- end }}
{{- if .Tools }}
Tools: {{ range $i, $t := .Tools }}{{ if $i }}, {{ end }}{{ $t.Name }}{{ end }}
{{- end }}
{{- if .Buildings }}
Buildings: {{ range $i, $b := .Buildings }}{{ if $i }}, {{ end }}{{ $b.Name }}{{ if gt $b.Count 1 }} x{{ $b.Count }}{{ end }}{{ end }}
{{- end }}
{{- range .Panels }}
{{ . }}
{{- end }}`

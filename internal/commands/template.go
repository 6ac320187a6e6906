package commands

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pixil98/go-homestead/internal/display"
)

// templateFuncs provides utility functions for templates.
var templateFuncs = func() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["qty"] = display.Quantity
	funcs["floor"] = display.Floor
	funcs["secs"] = display.Seconds
	funcs["pct"] = display.Percent
	funcs["bar"] = display.Bar
	return funcs
}()

// InputContext is used for Pass 1 expansion (config templates that reference inputs).
type InputContext struct {
	Inputs map[string]any // Parsed input values keyed by input name
}

// ParseTemplate parses a template with the command template functions.
func ParseTemplate(tmplStr string) (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).Parse(tmplStr)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return tmpl, nil
}

// ExpandTemplate expands a template string using the provided data.
// The data can be any struct - templates access fields via {{ .FieldName }}.
func ExpandTemplate(tmplStr string, data any) (string, error) {
	tmpl, err := ParseTemplate(tmplStr)
	if err != nil {
		return "", err
	}
	return execute(tmpl, data)
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// expandInputTemplate expands a template string using InputContext (Pass 1).
// This substitutes input values into config strings before handler execution.
func expandInputTemplate(tmplStr string, ctx *InputContext) (string, error) {
	// Quick check: if no template markers, return as-is
	if !strings.Contains(tmplStr, "{{") {
		return tmplStr, nil
	}
	return ExpandTemplate(tmplStr, ctx)
}

// expandConfig returns a copy of config with every string value expanded.
func expandConfig(config map[string]any, ctx *InputContext) (map[string]any, error) {
	out := make(map[string]any, len(config))
	for k, v := range config {
		s, ok := v.(string)
		if !ok {
			out[k] = v
			continue
		}
		expanded, err := expandInputTemplate(s, ctx)
		if err != nil {
			return nil, fmt.Errorf("config %q: %w", k, err)
		}
		out[k] = expanded
	}
	return out, nil
}

package storage

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// ExtensionState is free-form JSON state owned by one module. It is
// persisted with the save whether or not the module is enabled.
type ExtensionState map[string]json.RawMessage

// Set stores v under key after marshalling it to JSON.
func (e *ExtensionState) Set(k string, v any) error {
	if *e == nil {
		*e = ExtensionState{}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal module state %q: %w", k, err)
	}

	(*e)[k] = json.RawMessage(b)
	return nil
}

// Get unmarshals the value at key into out.
// Returns (found=false, nil) if not present.
func (e ExtensionState) Get(key string, out any) (bool, error) {
	raw, ok := e[key]
	if !ok || len(raw) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("unmarshal module state %q: %w", key, err)
	}
	return true, nil
}

func (e ExtensionState) Delete(key string) {
	delete(e, key)
}

// Keys returns the stored keys in sorted order.
func (e ExtensionState) Keys() []string {
	return slices.Sorted(maps.Keys(e))
}

// Clone returns a copy that shares no storage with e.
func (e ExtensionState) Clone() ExtensionState {
	if e == nil {
		return nil
	}
	out := make(ExtensionState, len(e))
	for k, v := range e {
		out[k] = slices.Clone(v)
	}
	return out
}

// Package save encodes homestead snapshots and migrates older save formats.
package save

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-homestead/internal/game"
	"github.com/pixil98/go-homestead/internal/plugins"
)

// Version is the current snapshot format.
const Version = 2

// ErrCorrupt reports input that cannot be read as a save.
var ErrCorrupt = errors.New("corrupt save")

// Snapshot is everything persisted between runs.
type Snapshot struct {
	Version  int       `json:"version"`
	SaveID   uuid.UUID `json:"save_id"`
	LastTick time.Time `json:"last_tick"`

	game.State

	Modules map[string]plugins.ModuleState `json:"modules,omitempty"`
	Journal []string                       `json:"journal,omitempty"`
}

// Encode renders s as indented JSON at the current version.
func Encode(s *Snapshot) ([]byte, error) {
	s.Version = Version
	if s.SaveID == uuid.Nil {
		s.SaveID = uuid.New()
	}

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling snapshot: %w", err)
	}
	return b, nil
}

// Decode reads a snapshot of any known version. Saves without a version
// field are treated as the legacy format and migrated. Anything that is not
// a JSON object, or that has an unknown version, wraps ErrCorrupt.
func Decode(data []byte) (*Snapshot, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: not a json object", ErrCorrupt)
	}

	raw, ok := fields["version"]
	if !ok {
		s, err := decodeLegacy(data)
		if err != nil {
			return nil, fmt.Errorf("%w: legacy save: %v", ErrCorrupt, err)
		}
		return s, nil
	}

	var version int
	if err := json.Unmarshal(raw, &version); err != nil {
		return nil, fmt.Errorf("%w: version: %v", ErrCorrupt, err)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, version)
	}

	s := &Snapshot{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if s.SaveID == uuid.Nil {
		s.SaveID = uuid.New()
	}
	return s, nil
}

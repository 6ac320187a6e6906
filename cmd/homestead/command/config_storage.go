package command

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-homestead/internal/storage"
)

type StorageConfig struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
	Slot    string `json:"slot"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()

	switch c.Backend {
	case "", storage.BackendFile:
		if c.Path == "" {
			el.Add(fmt.Errorf("storage: path is required"))
		} else if _, err := os.Stat(c.Path); err != nil {
			el.Add(fmt.Errorf("storage: invalid path %q: %w", c.Path, err))
		}
	case storage.BackendSQLite:
		if c.Path == "" {
			el.Add(fmt.Errorf("storage: path is required"))
		} else if _, err := os.Stat(filepath.Dir(c.Path)); err != nil {
			el.Add(fmt.Errorf("storage: invalid database directory for %q: %w", c.Path, err))
		}
	default:
		el.Add(fmt.Errorf("storage: unknown backend %q", c.Backend))
	}

	if c.Slot != "" {
		el.Add(storage.ValidateSlot(c.Slot))
	}

	return el.Err()
}

// BuildSlot opens the store and binds it to the configured slot.
func (c *StorageConfig) BuildSlot() (storage.Slot, func() error, error) {
	st, closeFn, err := storage.Open(c.Backend, c.Path)
	if err != nil {
		return storage.Slot{}, nil, fmt.Errorf("opening storage: %w", err)
	}

	slot := c.Slot
	if slot == "" {
		slot = storage.DefaultSlot
	}
	return storage.Slot{Store: st, Name: slot}, closeFn, nil
}

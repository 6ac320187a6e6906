package storage

import (
	"fmt"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open opens a store of the named backend at path. The returned function
// releases it.
func Open(backend, path string) (Storer, func() error, error) {
	switch backend {
	case "", BackendFile:
		s, err := NewFileStore(path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	case BackendSQLite:
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

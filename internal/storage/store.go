package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a slot holds no save.
var ErrNotFound = errors.New("save not found")

var slotPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// DefaultSlot is the slot used when none is configured.
const DefaultSlot = "homestead"

// SlotInfo describes one stored save.
type SlotInfo struct {
	Name    string
	Size    int
	Updated time.Time
}

// Storer keeps encoded saves in named slots.
type Storer interface {
	Load(ctx context.Context, slot string) ([]byte, error)
	Save(ctx context.Context, slot string, data []byte) error
	Delete(ctx context.Context, slot string) error
	List(ctx context.Context) ([]SlotInfo, error)
}

// ValidateSlot checks that a slot name is safe to use as a file name.
func ValidateSlot(slot string) error {
	if !slotPattern.MatchString(slot) {
		return fmt.Errorf("slot %q must be alphanumeric", slot)
	}
	return nil
}

// Slot binds a store to one slot name.
type Slot struct {
	Store Storer
	Name  string
}

func (s Slot) Load(ctx context.Context) ([]byte, error) {
	return s.Store.Load(ctx, s.Name)
}

func (s Slot) Save(ctx context.Context, data []byte) error {
	return s.Store.Save(ctx, s.Name, data)
}

func (s Slot) Delete(ctx context.Context) error {
	return s.Store.Delete(ctx, s.Name)
}

// FileStore keeps one JSON file per slot in a directory.
type FileStore struct {
	path string

	mu sync.RWMutex
}

func NewFileStore(path string) (*FileStore, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening save directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("save path %s is not a directory", path)
	}

	return &FileStore{path: path}, nil
}

func (s *FileStore) Load(_ context.Context, slot string) ([]byte, error) {
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.filePath(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("slot %q: %w", slot, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

func (s *FileStore) Save(_ context.Context, slot string, data []byte) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return atomicWrite(s.filePath(slot), data, 0644)
}

func (s *FileStore) Delete(_ context.Context, slot string) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.filePath(slot))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}

func (s *FileStore) List(_ context.Context) ([]SlotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading save directory: %w", err)
	}

	var out []SlotInfo
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok || ValidateSlot(name) != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		out = append(out, SlotInfo{Name: name, Size: int(info.Size()), Updated: info.ModTime()})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// atomicWrite writes data to a temp file then renames it to the target path.
// This prevents partial or empty files if the process is interrupted.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			slog.Warn("failed to remove temp file after rename failure", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func (s *FileStore) filePath(slot string) string {
	return filepath.Join(s.path, fmt.Sprintf("%s.json", slot))
}

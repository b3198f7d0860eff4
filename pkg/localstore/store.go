package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store persists named JSON slots on the local device, one file per slot.
// It is the server-side analogue of the browser profile storage the app
// originally relied on: each slot holds a single JSON-encoded value and
// writes are synchronous.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates the slot directory if needed and returns a Store bound to it.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("local store dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating local store dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Get decodes the slot into dest. It reports false when the slot does not
// exist; dest is left untouched in that case.
func (s *Store) Get(slot string, dest any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path(slot))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading slot %q: %w", slot, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decoding slot %q: %w", slot, err)
	}
	return true, nil
}

// Put serializes value into the slot, replacing any previous content.
// The write goes through a temp file and rename so readers never observe
// a torn slot.
func (s *Store) Put(slot string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding slot %q: %w", slot, err)
	}

	target := s.path(slot)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("writing slot %q: %w", slot, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("committing slot %q: %w", slot, err)
	}
	return nil
}

// Delete removes the slot. Deleting an absent slot is a no-op.
func (s *Store) Delete(slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(slot)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing slot %q: %w", slot, err)
	}
	return nil
}

func (s *Store) path(slot string) string {
	return filepath.Join(s.dir, sanitizeSlot(slot)+".json")
}

func sanitizeSlot(slot string) string {
	var b strings.Builder
	for _, r := range slot {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

package prefs

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce matches the write coalescing window the original
// settings screen used.
const DefaultDebounce = time.Second

// DebouncedSaver coalesces rapid Save calls into one store write per
// owner. Later patches within the window merge over earlier ones, so
// the flushed write carries the newest value of every touched field.
type DebouncedSaver struct {
	store Store
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*pendingSave
}

type pendingSave struct {
	patch Patch
	timer *time.Timer
}

// NewDebouncedSaver wraps the store with a coalescing window. A zero or
// negative delay falls back to the default.
func NewDebouncedSaver(store Store, delay time.Duration) *DebouncedSaver {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &DebouncedSaver{
		store:   store,
		delay:   delay,
		pending: make(map[string]*pendingSave),
	}
}

// Save queues the patch; the write lands after the window lapses with
// no further calls for the owner.
func (d *DebouncedSaver) Save(ownerID string, patch Patch) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if entry, ok := d.pending[ownerID]; ok {
		entry.patch = mergePatches(entry.patch, patch)
		entry.timer.Reset(d.delay)
		return
	}

	entry := &pendingSave{patch: patch}
	entry.timer = time.AfterFunc(d.delay, func() {
		d.flush(ownerID)
	})
	d.pending[ownerID] = entry
}

// Flush writes every queued patch immediately. Callers run it on
// shutdown so a quick exit never drops a settings change.
func (d *DebouncedSaver) Flush(ctx context.Context) error {
	d.mu.Lock()
	owners := make([]string, 0, len(d.pending))
	for owner := range d.pending {
		owners = append(owners, owner)
	}
	d.mu.Unlock()

	var firstErr error
	for _, owner := range owners {
		if err := d.flushNow(ctx, owner); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (d *DebouncedSaver) flush(ownerID string) {
	// Timer callbacks have no caller context; bound the write instead.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = d.flushNow(ctx, ownerID)
}

func (d *DebouncedSaver) flushNow(ctx context.Context, ownerID string) error {
	d.mu.Lock()
	entry, ok := d.pending[ownerID]
	if !ok {
		d.mu.Unlock()
		return nil
	}
	delete(d.pending, ownerID)
	entry.timer.Stop()
	patch := entry.patch
	d.mu.Unlock()

	_, err := d.store.Save(ctx, ownerID, patch)
	return err
}

func mergePatches(older, newer Patch) Patch {
	if newer.MonthlyGoal != nil {
		older.MonthlyGoal = newer.MonthlyGoal
	}
	if newer.Expenses != nil {
		older.Expenses = newer.Expenses
	}
	if newer.Fournisseurs != nil {
		older.Fournisseurs = newer.Fournisseurs
	}
	if newer.DarkMode != nil {
		older.DarkMode = newer.DarkMode
	}
	if newer.ThemeColor != nil {
		older.ThemeColor = newer.ThemeColor
	}
	if newer.SKUPrefix != nil {
		older.SKUPrefix = newer.SKUPrefix
	}
	if newer.SKUCounter != nil {
		older.SKUCounter = newer.SKUCounter
	}
	return older
}

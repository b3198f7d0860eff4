package prefs

import (
	"context"
	"fmt"
	"sync"

	pkgerrors "github.com/TinoSanchez/app-achatrevente/pkg/errors"
	"github.com/TinoSanchez/app-achatrevente/pkg/localstore"
)

// Slot names mirror the original device-storage layout: the SKU state
// lives in its own slots, separate from the per-user document.
const (
	SKUPrefixSlot  = "sku_prefix"
	SKUCounterSlot = "sku_counter"
	prefsSlotStem  = "user_prefs_"
)

// LocalStore keeps preferences in device-storage slots.
type LocalStore struct {
	store *localstore.Store
	mu    sync.Mutex
}

// NewLocalStore builds the device-local preference backend.
func NewLocalStore(store *localstore.Store) (*LocalStore, error) {
	if store == nil {
		return nil, fmt.Errorf("local store required")
	}
	return &LocalStore{store: store}, nil
}

func prefsSlot(ownerID string) string {
	return prefsSlotStem + ownerID
}

func (s *LocalStore) load(ownerID string) (Preferences, error) {
	p := Defaults()
	var stored Preferences
	found, err := s.store.Get(prefsSlot(ownerID), &stored)
	if err != nil {
		return Preferences{}, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "read preference slot")
	}
	if found {
		p = stored
		if p.Expenses == nil {
			p.Expenses = Defaults().Expenses
		}
		if p.Fournisseurs == nil {
			p.Fournisseurs = Defaults().Fournisseurs
		}
	}

	var prefix string
	if found, err := s.store.Get(SKUPrefixSlot, &prefix); err != nil {
		return Preferences{}, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "read sku prefix slot")
	} else if found {
		p.SKUPrefix = prefix
	}
	var counter int
	if found, err := s.store.Get(SKUCounterSlot, &counter); err != nil {
		return Preferences{}, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "read sku counter slot")
	} else if found {
		p.SKUCounter = counter
	}
	return p, nil
}

func (s *LocalStore) persist(ownerID string, p Preferences) error {
	if err := s.store.Put(prefsSlot(ownerID), p); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "write preference slot")
	}
	if err := s.store.Put(SKUPrefixSlot, p.SKUPrefix); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "write sku prefix slot")
	}
	if err := s.store.Put(SKUCounterSlot, p.SKUCounter); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "write sku counter slot")
	}
	return nil
}

// Get returns the stored document merged with the SKU slots.
func (s *LocalStore) Get(ctx context.Context, ownerID string) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ownerID)
}

// Save merges the patch and writes all slots back.
func (s *LocalStore) Save(ctx context.Context, ownerID string, patch Patch) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ownerID)
	if err != nil {
		return Preferences{}, err
	}
	merged := current.Apply(patch)
	if err := s.persist(ownerID, merged); err != nil {
		return Preferences{}, err
	}
	return merged, nil
}

// Clear wipes the user document and the SKU slots, matching the
// original "clear local data" action.
func (s *LocalStore) Clear(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, slot := range []string{prefsSlot(ownerID), SKUPrefixSlot, SKUCounterSlot} {
		if err := s.store.Delete(slot); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "clear preference slots")
		}
	}
	return nil
}

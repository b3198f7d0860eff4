package records

import (
	"context"
	"fmt"
)

// SKUPrefs is the slice of the preference store the SKU flow needs:
// the stored prefix and the next counter value.
type SKUPrefs interface {
	SKUState(ctx context.Context, ownerID string) (prefix string, counter int, err error)
	SaveSKUState(ctx context.Context, ownerID, prefix string, counter int) error
}

// skuChecker lets a backend offer a cheaper lookup than listing
// everything. The remote store checks the SKU column directly.
type skuChecker interface {
	SKUExists(ctx context.Context, ownerID string) (func(string) bool, error)
}

// SKUService hands out the next free SKU for an owner and persists the
// advanced counter so consecutive calls never repeat.
type SKUService struct {
	store Store
	prefs SKUPrefs
}

// NewSKUService builds the SKU generation flow.
func NewSKUService(store Store, prefs SKUPrefs) (*SKUService, error) {
	if store == nil {
		return nil, fmt.Errorf("record store required")
	}
	if prefs == nil {
		return nil, fmt.Errorf("preference store required")
	}
	return &SKUService{store: store, prefs: prefs}, nil
}

// Next generates the owner's next SKU and stores the follow-up counter.
func (s *SKUService) Next(ctx context.Context, ownerID string) (string, error) {
	prefix, counter, err := s.prefs.SKUState(ctx, ownerID)
	if err != nil {
		return "", err
	}

	exists, err := s.existsFunc(ctx, ownerID)
	if err != nil {
		return "", err
	}

	sku, nextCounter := GenerateSKU(prefix, counter, exists)
	if err := s.prefs.SaveSKUState(ctx, ownerID, SanitizeSKUPrefix(prefix), nextCounter); err != nil {
		return "", err
	}
	return sku, nil
}

func (s *SKUService) existsFunc(ctx context.Context, ownerID string) (func(string) bool, error) {
	if checker, ok := s.store.(skuChecker); ok {
		return checker.SKUExists(ctx, ownerID)
	}
	records, err := s.store.ListAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return SKUExistsIn(records), nil
}

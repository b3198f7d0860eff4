package records

import (
	"context"
	"testing"
)

func TestGenerateSKUSkipsTakenCandidates(t *testing.T) {
	taken := map[string]bool{"P-0001": true}
	exists := func(sku string) bool { return taken[sku] }

	sku, next := GenerateSKU("P", 1, exists)
	if sku != "P-0002" {
		t.Fatalf("expected P-0002, got %s", sku)
	}
	if next != 3 {
		t.Fatalf("expected next counter 3, got %d", next)
	}
}

func TestGenerateSKUWithoutCollisions(t *testing.T) {
	sku, next := GenerateSKU("lot", 7, nil)
	if sku != "LOT-0007" {
		t.Fatalf("expected LOT-0007, got %s", sku)
	}
	if next != 8 {
		t.Fatalf("expected next counter 8, got %d", next)
	}
}

func TestGenerateSKUFloorsCounter(t *testing.T) {
	sku, next := GenerateSKU("P", 0, nil)
	if sku != "P-0001" {
		t.Fatalf("expected P-0001, got %s", sku)
	}
	if next != 2 {
		t.Fatalf("expected next counter 2, got %d", next)
	}
}

func TestSanitizeSKUPrefix(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"vinted!", "VINTED"},
		{"  lot 42 ", "LOT42"},
		{"---", "P"},
		{"", "P"},
	}
	for _, tc := range cases {
		if got := SanitizeSKUPrefix(tc.in); got != tc.want {
			t.Fatalf("sanitize %q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestSKUExistsIn(t *testing.T) {
	exists := SKUExistsIn([]RecordDTO{{SKU: "P-0001"}, {SKU: ""}})
	if !exists("P-0001") {
		t.Fatal("expected P-0001 to be taken")
	}
	if exists("P-0002") {
		t.Fatal("expected P-0002 to be free")
	}
	if exists("") {
		t.Fatal("empty SKUs never count as taken")
	}
}

type fakeSKUPrefs struct {
	prefix  string
	counter int
	saved   bool
}

func (p *fakeSKUPrefs) SKUState(ctx context.Context, ownerID string) (string, int, error) {
	return p.prefix, p.counter, nil
}

func (p *fakeSKUPrefs) SaveSKUState(ctx context.Context, ownerID, prefix string, counter int) error {
	p.prefix = prefix
	p.counter = counter
	p.saved = true
	return nil
}

func TestSKUServicePersistsAdvancedCounter(t *testing.T) {
	store, _ := newLocalStore(t)
	ctx := context.Background()

	in := chairInput()
	in.SKU = "P-0001"
	if _, err := store.Create(ctx, localOwner, in); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	prefs := &fakeSKUPrefs{prefix: "P", counter: 1}
	svc, err := NewSKUService(store, prefs)
	if err != nil {
		t.Fatalf("build sku service: %v", err)
	}

	sku, err := svc.Next(ctx, localOwner)
	if err != nil {
		t.Fatalf("next sku: %v", err)
	}
	if sku != "P-0002" {
		t.Fatalf("expected P-0002, got %s", sku)
	}
	if !prefs.saved || prefs.counter != 3 {
		t.Fatalf("expected counter 3 persisted, got %+v", prefs)
	}
}

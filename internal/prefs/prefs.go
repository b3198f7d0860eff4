package prefs

import (
	"context"

	"github.com/TinoSanchez/app-achatrevente/pkg/db/models"
	"github.com/shopspring/decimal"
)

// Preferences is the per-user settings document returned to clients.
// The theme_color key keeps the original snake_case spelling so stored
// client settings keep loading.
type Preferences struct {
	MonthlyGoal  decimal.Decimal        `json:"monthlyGoal"`
	Expenses     []models.ExpenseEntry  `json:"expenses"`
	Fournisseurs []models.SupplierEntry `json:"fournisseurs"`
	DarkMode     bool                   `json:"darkMode"`
	ThemeColor   string                 `json:"theme_color"`
	SKUPrefix    string                 `json:"skuPrefix"`
	SKUCounter   int                    `json:"skuCounter"`
}

// Patch is a partial preferences write. Nil fields are left untouched
// by Save; a present field replaces the stored value wholesale.
type Patch struct {
	MonthlyGoal  *decimal.Decimal        `json:"monthlyGoal"`
	Expenses     *[]models.ExpenseEntry  `json:"expenses"`
	Fournisseurs *[]models.SupplierEntry `json:"fournisseurs"`
	DarkMode     *bool                   `json:"darkMode"`
	ThemeColor   *string                 `json:"theme_color"`
	SKUPrefix    *string                 `json:"skuPrefix"`
	SKUCounter   *int                    `json:"skuCounter"`
}

// Defaults is the document a user has before their first save.
func Defaults() Preferences {
	return Preferences{
		MonthlyGoal:  decimal.NewFromInt(500),
		Expenses:     []models.ExpenseEntry{},
		Fournisseurs: []models.SupplierEntry{},
		SKUPrefix:    "P",
		SKUCounter:   1,
	}
}

// Apply merges the patch onto the document, never dropping fields the
// patch does not mention.
func (p Preferences) Apply(patch Patch) Preferences {
	if patch.MonthlyGoal != nil {
		p.MonthlyGoal = *patch.MonthlyGoal
	}
	if patch.Expenses != nil {
		p.Expenses = *patch.Expenses
	}
	if patch.Fournisseurs != nil {
		p.Fournisseurs = *patch.Fournisseurs
	}
	if patch.DarkMode != nil {
		p.DarkMode = *patch.DarkMode
	}
	if patch.ThemeColor != nil {
		p.ThemeColor = *patch.ThemeColor
	}
	if patch.SKUPrefix != nil {
		p.SKUPrefix = *patch.SKUPrefix
	}
	if patch.SKUCounter != nil {
		p.SKUCounter = *patch.SKUCounter
	}
	return p
}

// Store is the preference persistence contract. Both backends create
// the document lazily on first save and merge every write.
type Store interface {
	// Get returns the stored document, or the defaults when absent.
	Get(ctx context.Context, ownerID string) (Preferences, error)

	// Save merges the patch and returns the resulting document.
	Save(ctx context.Context, ownerID string, patch Patch) (Preferences, error)

	// Clear drops the owner's stored document.
	Clear(ctx context.Context, ownerID string) error
}

// SKUState reads the prefix and counter the SKU generator starts from.
func SKUState(ctx context.Context, store Store, ownerID string) (string, int, error) {
	p, err := store.Get(ctx, ownerID)
	if err != nil {
		return "", 0, err
	}
	return p.SKUPrefix, p.SKUCounter, nil
}

// SaveSKUState persists the prefix and advanced counter.
func SaveSKUState(ctx context.Context, store Store, ownerID, prefix string, counter int) error {
	_, err := store.Save(ctx, ownerID, Patch{SKUPrefix: &prefix, SKUCounter: &counter})
	return err
}

// SKUAdapter exposes a Store as the narrow interface the SKU service
// consumes.
type SKUAdapter struct {
	Store Store
}

func (a SKUAdapter) SKUState(ctx context.Context, ownerID string) (string, int, error) {
	return SKUState(ctx, a.Store, ownerID)
}

func (a SKUAdapter) SaveSKUState(ctx context.Context, ownerID, prefix string, counter int) error {
	return SaveSKUState(ctx, a.Store, ownerID, prefix, counter)
}

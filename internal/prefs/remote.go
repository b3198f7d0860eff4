package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/TinoSanchez/app-achatrevente/pkg/db/models"
	pkgerrors "github.com/TinoSanchez/app-achatrevente/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RemoteStore keeps one preferences row per user.
type RemoteStore struct {
	db *gorm.DB
}

// NewRemoteStore builds the server-backed preference store.
func NewRemoteStore(db *gorm.DB) (*RemoteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &RemoteStore{db: db}, nil
}

func (s *RemoteStore) owner(ownerID string) (uuid.UUID, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodePermissionDenied, "unknown owner")
	}
	return owner, nil
}

// Get loads the row, returning defaults when the user never saved.
func (s *RemoteStore) Get(ctx context.Context, ownerID string) (Preferences, error) {
	owner, err := s.owner(ownerID)
	if err != nil {
		return Preferences{}, err
	}

	var row models.Preference
	err = s.db.WithContext(ctx).First(&row, "owner_id = ?", owner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Defaults(), nil
	}
	if err != nil {
		return Preferences{}, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "db: load preferences")
	}
	return fromRow(&row), nil
}

// Save merges the patch onto the stored document, creating the row
// lazily on first write.
func (s *RemoteStore) Save(ctx context.Context, ownerID string, patch Patch) (Preferences, error) {
	owner, err := s.owner(ownerID)
	if err != nil {
		return Preferences{}, err
	}

	var merged Preferences
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.Preference
		err := tx.First(&row, "owner_id = ?", owner).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			merged = Defaults().Apply(patch)
			row = toRow(owner, merged)
			return tx.Create(&row).Error
		case err != nil:
			return err
		default:
			merged = fromRow(&row).Apply(patch)
			row = toRow(owner, merged)
			return tx.Save(&row).Error
		}
	})
	if err != nil {
		return Preferences{}, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "db: save preferences")
	}
	return merged, nil
}

// Clear drops the stored row; clearing an absent row is a no-op.
func (s *RemoteStore) Clear(ctx context.Context, ownerID string) error {
	owner, err := s.owner(ownerID)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).
		Where("owner_id = ?", owner).
		Delete(&models.Preference{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "db: clear preferences")
	}
	return nil
}

func fromRow(row *models.Preference) Preferences {
	p := Preferences{
		MonthlyGoal:  row.MonthlyGoal,
		Expenses:     row.Expenses,
		Fournisseurs: row.Fournisseurs,
		DarkMode:     row.DarkMode,
		ThemeColor:   row.ThemeColor,
		SKUPrefix:    row.SKUPrefix,
		SKUCounter:   row.SKUCounter,
	}
	if p.Expenses == nil {
		p.Expenses = []models.ExpenseEntry{}
	}
	if p.Fournisseurs == nil {
		p.Fournisseurs = []models.SupplierEntry{}
	}
	return p
}

func toRow(owner uuid.UUID, p Preferences) models.Preference {
	return models.Preference{
		OwnerID:      owner,
		MonthlyGoal:  p.MonthlyGoal,
		Expenses:     p.Expenses,
		Fournisseurs: p.Fournisseurs,
		DarkMode:     p.DarkMode,
		ThemeColor:   p.ThemeColor,
		SKUPrefix:    p.SKUPrefix,
		SKUCounter:   p.SKUCounter,
	}
}

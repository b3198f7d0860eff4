package records

import (
	"context"
	"strings"

	"github.com/TinoSanchez/app-achatrevente/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wraps the gorm persistence of product records.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListByOwner loads every record of the owner, name ascending.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.ProductRecord, error) {
	var rows []models.ProductRecord
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("nom ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

var sortColumns = map[string]string{
	SortByNom:              "nom",
	SortByPrixAchat:        "prix_achat",
	SortByPrixVente:        "prix_vente",
	SortByBeneficeUnitaire: "benefice_unitaire",
}

// ListPage loads one filtered page plus the total row count.
func (r *Repository) ListPage(ctx context.Context, ownerID uuid.UUID, query ListQuery, offset, limit int) ([]models.ProductRecord, int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.ProductRecord{}).
		Where("owner_id = ?", ownerID)

	if query.Statut != "" {
		tx = tx.Where("statut = ?", query.Statut)
	}
	if query.Categorie != "" {
		tx = tx.Where("LOWER(categorie) = LOWER(?)", query.Categorie)
	}
	if query.Fournisseur != "" {
		tx = tx.Where("LOWER(fournisseur) = LOWER(?)", query.Fournisseur)
	}
	if q := strings.TrimSpace(query.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		tx = tx.Where(
			"LOWER(nom) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(categorie) LIKE ? OR LOWER(tags) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[query.SortBy]
	if !ok {
		column = "nom"
	}
	direction := "ASC"
	if query.SortDesc {
		direction = "DESC"
	}

	var rows []models.ProductRecord
	err := tx.Order(column + " " + direction).
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindByID loads one record scoped to its owner.
func (r *Repository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*models.ProductRecord, error) {
	var row models.ProductRecord
	err := r.db.WithContext(ctx).
		First(&row, "id = ? AND owner_id = ?", id, ownerID).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a new record row.
func (r *Repository) Create(ctx context.Context, record *models.ProductRecord) (*models.ProductRecord, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// Save persists all columns of an existing row.
func (r *Repository) Save(ctx context.Context, record *models.ProductRecord) (*models.ProductRecord, error) {
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteByID removes the row and reports whether one existed.
func (r *Repository) DeleteByID(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.ProductRecord{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SKUExists reports whether the owner already uses the SKU.
func (r *Repository) SKUExists(ctx context.Context, ownerID uuid.UUID, sku string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductRecord{}).
		Where("owner_id = ? AND sku = ?", ownerID, sku).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

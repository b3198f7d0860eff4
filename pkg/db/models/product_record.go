package models

import (
	"time"

	"github.com/TinoSanchez/app-achatrevente/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRecord is one tracked purchase/resale line owned by a single user.
// Monetary columns are stored as numerics without scale so intermediate
// precision survives the round trip; rounding happens at display time.
type ProductRecord struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID     uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index"`
	Nom         string    `gorm:"column:nom;not null"`
	SKU         string    `gorm:"column:sku"`
	Categorie   string    `gorm:"column:categorie"`
	Description string    `gorm:"column:description"`
	Fournisseur string    `gorm:"column:fournisseur"`
	Etat        string    `gorm:"column:etat"`
	Emplacement string    `gorm:"column:emplacement"`
	Tags        string    `gorm:"column:tags"`
	Notes       string    `gorm:"column:notes"`

	Quantite             int             `gorm:"column:quantite;not null;default:1"`
	PrixAchat            decimal.Decimal `gorm:"column:prix_achat;type:numeric;not null"`
	PrixVente            decimal.Decimal `gorm:"column:prix_vente;type:numeric;not null"`
	Frais                decimal.Decimal `gorm:"column:frais;type:numeric;not null;default:0"`
	FraisPort            decimal.Decimal `gorm:"column:frais_port;type:numeric;not null;default:0"`
	CommissionPlateforme decimal.Decimal `gorm:"column:commission_plateforme;type:numeric;not null;default:0"`
	FraisEmballage       decimal.Decimal `gorm:"column:frais_emballage;type:numeric;not null;default:0"`
	FraisAnnexes         decimal.Decimal `gorm:"column:frais_annexes;type:numeric;not null;default:0"`

	Statut    enums.RecordStatus `gorm:"column:statut;not null;default:'En ligne'"`
	DateAchat string             `gorm:"column:date_achat"`
	DateVente string             `gorm:"column:date_vente"`
	ImageURL  string             `gorm:"column:image_url"`

	// Derived from the price fields; persisted for display parity with
	// historical exports, recomputed on every write.
	BeneficeUnitaire decimal.Decimal `gorm:"column:benefice_unitaire;type:numeric;not null;default:0"`
	BeneficeTotal    decimal.Decimal `gorm:"column:benefice_total;type:numeric;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (ProductRecord) TableName() string {
	return "product_records"
}

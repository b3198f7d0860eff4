package records

import (
	"time"

	"github.com/TinoSanchez/app-achatrevente/internal/profit"
	"github.com/TinoSanchez/app-achatrevente/pkg/db/models"
	"github.com/TinoSanchez/app-achatrevente/pkg/enums"
	"github.com/TinoSanchez/app-achatrevente/pkg/money"
	"github.com/shopspring/decimal"
)

// RecordDTO is the record payload returned to clients. Field names keep
// the historical French vocabulary so exports and imports line up with
// the data files users already have.
type RecordDTO struct {
	ID          string `json:"id"`
	Nom         string `json:"nom"`
	SKU         string `json:"sku"`
	Categorie   string `json:"categorie"`
	Description string `json:"description"`
	Fournisseur string `json:"fournisseur"`
	Etat        string `json:"etat"`
	Emplacement string `json:"emplacement"`
	Tags        string `json:"tags"`
	Notes       string `json:"notes"`

	Quantite             int             `json:"quantite"`
	PrixAchat            decimal.Decimal `json:"prixAchat"`
	PrixVente            decimal.Decimal `json:"prixVente"`
	Frais                decimal.Decimal `json:"frais"`
	FraisPort            decimal.Decimal `json:"fraisPort"`
	CommissionPlateforme decimal.Decimal `json:"commissionPlateforme"`
	FraisEmballage       decimal.Decimal `json:"fraisEmballage"`
	FraisAnnexes         decimal.Decimal `json:"fraisAnnexes"`

	Statut    enums.RecordStatus `json:"statut"`
	DateAchat string             `json:"dateAchat"`
	DateVente string             `json:"dateVente"`
	ImageURL  string             `json:"imageUrl"`

	BeneficeUnitaire decimal.Decimal `json:"beneficeUnitaire"`
	BeneficeTotal    decimal.Decimal `json:"beneficeTotal"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecordInput is the validated payload for create and full-replace
// update operations.
type RecordInput struct {
	Nom         string
	SKU         string
	Categorie   string
	Description string
	Fournisseur string
	Etat        string
	Emplacement string
	Tags        string
	Notes       string

	Quantite             int
	PrixAchat            decimal.Decimal
	PrixVente            decimal.Decimal
	Frais                decimal.Decimal
	FraisPort            decimal.Decimal
	CommissionPlateforme decimal.Decimal
	FraisEmballage       decimal.Decimal
	FraisAnnexes         decimal.Decimal

	Statut    enums.RecordStatus
	DateAchat string
	DateVente string
	ImageURL  string
}

// normalize applies the write-time defaults and recomputes the derived
// margin fields. Quantity floors at 1 and money fields clamp to zero.
func (in RecordInput) normalize() RecordInput {
	if in.Quantite < 1 {
		in.Quantite = 1
	}
	if !in.Statut.IsValid() {
		in.Statut = enums.DefaultRecordStatus
	}
	in.PrixAchat = money.NonNegative(in.PrixAchat)
	in.PrixVente = money.NonNegative(in.PrixVente)
	in.Frais = money.NonNegative(in.Frais)
	in.FraisPort = money.NonNegative(in.FraisPort)
	in.CommissionPlateforme = money.NonNegative(in.CommissionPlateforme)
	in.FraisEmballage = money.NonNegative(in.FraisEmballage)
	in.FraisAnnexes = money.NonNegative(in.FraisAnnexes)
	return in
}

// margins returns the persisted derived fields for the input.
func (in RecordInput) margins() (unitaire, total decimal.Decimal) {
	unitaire = profit.UnitMargin(in.PrixVente, in.PrixAchat, in.Frais)
	total = profit.TotalMargin(in.PrixVente, in.PrixAchat, in.Frais, in.Quantite)
	return unitaire, total
}

// Breakdown exposes the full profitability of a record line.
func (r RecordDTO) Breakdown() profit.Breakdown {
	return profit.Calculate(profit.Input{
		PrixAchat:            r.PrixAchat,
		PrixVente:            r.PrixVente,
		Quantite:             r.Quantite,
		Frais:                r.Frais,
		FraisPort:            r.FraisPort,
		CommissionPlateforme: r.CommissionPlateforme,
		FraisEmballage:       r.FraisEmballage,
		FraisAnnexes:         r.FraisAnnexes,
	})
}

// NewRecordDTO builds a DTO from the persisted model.
func NewRecordDTO(record *models.ProductRecord) *RecordDTO {
	return &RecordDTO{
		ID:                   record.ID.String(),
		Nom:                  record.Nom,
		SKU:                  record.SKU,
		Categorie:            record.Categorie,
		Description:          record.Description,
		Fournisseur:          record.Fournisseur,
		Etat:                 record.Etat,
		Emplacement:          record.Emplacement,
		Tags:                 record.Tags,
		Notes:                record.Notes,
		Quantite:             record.Quantite,
		PrixAchat:            record.PrixAchat,
		PrixVente:            record.PrixVente,
		Frais:                record.Frais,
		FraisPort:            record.FraisPort,
		CommissionPlateforme: record.CommissionPlateforme,
		FraisEmballage:       record.FraisEmballage,
		FraisAnnexes:         record.FraisAnnexes,
		Statut:               record.Statut,
		DateAchat:            record.DateAchat,
		DateVente:            record.DateVente,
		ImageURL:             record.ImageURL,
		BeneficeUnitaire:     record.BeneficeUnitaire,
		BeneficeTotal:        record.BeneficeTotal,
		CreatedAt:            record.CreatedAt,
		UpdatedAt:            record.UpdatedAt,
	}
}

package profit

import (
	"github.com/shopspring/decimal"
)

// Input holds the raw figures for one record line. Fees default to zero
// when the caller leaves them unset. Frais is the flat legacy fee used
// by the unit margin; it does not enter the cost breakdown.
type Input struct {
	PrixAchat            decimal.Decimal
	PrixVente            decimal.Decimal
	Quantite             int
	Frais                decimal.Decimal
	FraisPort            decimal.Decimal
	CommissionPlateforme decimal.Decimal
	FraisEmballage       decimal.Decimal
	FraisAnnexes         decimal.Decimal
}

// Breakdown is the computed profitability of one record line.
type Breakdown struct {
	TotalCost     decimal.Decimal
	TotalRevenue  decimal.Decimal
	NetProfit     decimal.Decimal
	ProfitPerUnit decimal.Decimal
	ROIPercent    decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Calculate computes the full cost/revenue/profit breakdown for a line.
// Only the four fee components enter the cost; the flat Frais belongs to
// the legacy unit margin and never double-counts here. ROI is zero
// whenever the total cost is not strictly positive, so a free
// acquisition never divides by zero.
func Calculate(in Input) Breakdown {
	qty := decimal.NewFromInt(int64(in.Quantite))

	fees := in.FraisPort.
		Add(in.CommissionPlateforme).
		Add(in.FraisEmballage).
		Add(in.FraisAnnexes)

	totalCost := in.PrixAchat.Mul(qty).Add(fees)
	totalRevenue := in.PrixVente.Mul(qty)
	netProfit := totalRevenue.Sub(totalCost)

	perUnit := decimal.Zero
	if in.Quantite > 0 {
		perUnit = netProfit.Div(qty)
	}

	roi := decimal.Zero
	if totalCost.IsPositive() {
		roi = netProfit.Div(totalCost).Mul(hundred)
	}

	return Breakdown{
		TotalCost:     totalCost,
		TotalRevenue:  totalRevenue,
		NetProfit:     netProfit,
		ProfitPerUnit: perUnit,
		ROIPercent:    roi,
	}
}

// UnitMargin computes the per-unit margin the record table displays:
// sale price minus purchase price minus the flat fee.
func UnitMargin(prixVente, prixAchat, frais decimal.Decimal) decimal.Decimal {
	return prixVente.Sub(prixAchat).Sub(frais)
}

// TotalMargin is the unit margin scaled by quantity.
func TotalMargin(prixVente, prixAchat, frais decimal.Decimal, quantite int) decimal.Decimal {
	return UnitMargin(prixVente, prixAchat, frais).Mul(decimal.NewFromInt(int64(quantite)))
}

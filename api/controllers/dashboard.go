package controllers

import (
	"net/http"

	"github.com/TinoSanchez/app-achatrevente/api/responses"
	"github.com/TinoSanchez/app-achatrevente/internal/prefs"
	"github.com/TinoSanchez/app-achatrevente/internal/profit"
	"github.com/TinoSanchez/app-achatrevente/internal/records"
	"github.com/TinoSanchez/app-achatrevente/pkg/enums"
	"github.com/TinoSanchez/app-achatrevente/pkg/logger"
)

// Dashboard aggregates realized profit over sold records against the
// user's monthly goal. Shipped records count as sold; the sale already
// happened by then. Profit is the full breakdown net of every fee
// component, not the flat legacy margin.
func Dashboard(store records.Store, prefStore prefs.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		all, err := store.ListAll(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var lines []profit.SoldLine
		for _, record := range all {
			if record.Statut == enums.RecordStatusSold || record.Statut == enums.RecordStatusShipped {
				lines = append(lines, profit.SoldLine{
					NetProfit: record.Breakdown().NetProfit,
					Quantite:  record.Quantite,
				})
			}
		}

		preferences, err := prefStore.Get(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profit.Summarize(lines, preferences.MonthlyGoal))
	}
}

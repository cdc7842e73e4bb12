package v1

import (
	"net/http"

	"farmacia-catalogo/internal/usecase"
	"farmacia-catalogo/pkg/utils"
)

type StatsHandler struct {
	statsUC *usecase.StatsUsecase
}

func NewStatsHandler(uc *usecase.StatsUsecase) *StatsHandler {
	return &StatsHandler{statsUC: uc}
}

// Get aggregates every product of the caller's tenant, inactive ones included.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	stats, err := h.statsUC.Get(r.Context(), tenantID)
	if err != nil {
		writeError(w, r, "stats", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

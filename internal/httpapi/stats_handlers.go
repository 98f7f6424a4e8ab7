package httpapi

import (
	"net/http"

	"tradingjournal/internal/app"
	"tradingjournal/internal/ports"
)

// StatsHandler serves the aggregate statistics endpoints.
type StatsHandler struct {
	Stats  *app.StatsService
	Logger ports.Logger
}

// Summary handles GET /api/v1/stats/summary.
func (h StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Stats.Summary(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, summaryResponse{
		TotalTrades:   sum.TotalTrades,
		WinningTrades: sum.WinningTrades,
		LosingTrades:  sum.LosingTrades,
		WinRate:       sum.WinRate,
		AvgRiskReward: sum.AvgRiskReward,
		TotalProfit:   sum.TotalProfit,
	})
}

// EquityCurve handles GET /api/v1/stats/equity_curve.
func (h StatsHandler) EquityCurve(w http.ResponseWriter, r *http.Request) {
	curve, err := h.Stats.EquityCurve(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toEquityCurveResponse(curve))
}

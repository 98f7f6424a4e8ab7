package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"tradingjournal/internal/app"
	"tradingjournal/internal/domain"
	"tradingjournal/internal/ports"
)

// TradeHandler serves the trade CRUD and close endpoints.
type TradeHandler struct {
	Trades *app.TradeService
	Logger ports.Logger
}

type createTradeRequest struct {
	Pair          string     `json:"pair"`
	Direction     string     `json:"direction"`
	EntryPrice    float64    `json:"entry_price"`
	StopLoss      *float64   `json:"stop_loss"`
	TakeProfit    *float64   `json:"take_profit"`
	PositionSize  float64    `json:"position_size"`
	Notes         string     `json:"notes"`
	ScreenshotURL *string    `json:"screenshot_url"`
	OpenedAt      *time.Time `json:"opened_at"`
}

type updateTradeRequest struct {
	Pair          *string  `json:"pair"`
	Direction     *string  `json:"direction"`
	EntryPrice    *float64 `json:"entry_price"`
	ExitPrice     *float64 `json:"exit_price"`
	StopLoss      *float64 `json:"stop_loss"`
	TakeProfit    *float64 `json:"take_profit"`
	PositionSize  *float64 `json:"position_size"`
	Notes         *string  `json:"notes"`
	ScreenshotURL *string  `json:"screenshot_url"`
}

// Create handles POST /api/v1/trades/.
func (h TradeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTradeRequest
	if err := ReadJSON(r, &req, 1<<20); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	trade, err := h.Trades.Create(r.Context(), app.CreateTradeInput{
		Pair:          req.Pair,
		Direction:     domain.Direction(req.Direction),
		EntryPrice:    req.EntryPrice,
		StopLoss:      req.StopLoss,
		TakeProfit:    req.TakeProfit,
		PositionSize:  req.PositionSize,
		Notes:         req.Notes,
		ScreenshotURL: req.ScreenshotURL,
		OpenedAt:      req.OpenedAt,
	})
	if err != nil {
		writeServiceError(r.Context(), w, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toTradeResponse(trade))
}

// List handles GET /api/v1/trades/?pair=&status=&start=&end=&limit=&offset=.
func (h TradeHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ports.TradeFilter{
		Pair:   q.Get("pair"),
		Status: domain.TradeStatus(q.Get("status")),
	}
	if v := q.Get("start"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "start must be an RFC3339 timestamp")
			return
		}
		filter.OpenedFrom = &ts
	}
	if v := q.Get("end"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "end must be an RFC3339 timestamp")
			return
		}
		filter.OpenedTo = &ts
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		filter.Offset = n
	}

	trades, err := h.Trades.List(r.Context(), filter)
	if err != nil {
		writeServiceError(r.Context(), w, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toTradeResponses(trades))
}

// Get handles GET /api/v1/trades/{id}.
func (h TradeHandler) Get(w http.ResponseWriter, r *http.Request, id int64) {
	trade, err := h.Trades.Get(r.Context(), id)
	if err != nil {
		writeServiceError(r.Context(), w, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toTradeResponse(trade))
}

// Update handles PUT /api/v1/trades/{id}. Absent fields stay untouched.
func (h TradeHandler) Update(w http.ResponseWriter, r *http.Request, id int64) {
	var req updateTradeRequest
	if err := ReadJSON(r, &req, 1<<20); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	in := app.UpdateTradeInput{
		Pair:          req.Pair,
		EntryPrice:    req.EntryPrice,
		ExitPrice:     req.ExitPrice,
		StopLoss:      req.StopLoss,
		TakeProfit:    req.TakeProfit,
		PositionSize:  req.PositionSize,
		Notes:         req.Notes,
		ScreenshotURL: req.ScreenshotURL,
	}
	if req.Direction != nil {
		d := domain.Direction(*req.Direction)
		in.Direction = &d
	}
	trade, err := h.Trades.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(r.Context(), w, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toTradeResponse(trade))
}

// Delete handles DELETE /api/v1/trades/{id} and returns the deleted record.
func (h TradeHandler) Delete(w http.ResponseWriter, r *http.Request, id int64) {
	trade, err := h.Trades.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(r.Context(), w, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toTradeResponse(trade))
}

// Close handles PATCH /api/v1/trades/{id}/close?exit_price=.
func (h TradeHandler) Close(w http.ResponseWriter, r *http.Request, id int64) {
	raw := r.URL.Query().Get("exit_price")
	if raw == "" {
		WriteError(w, http.StatusBadRequest, "exit_price query parameter is required")
		return
	}
	exitPrice, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "exit_price must be a number")
		return
	}
	trade, err := h.Trades.Close(r.Context(), id, exitPrice)
	if err != nil {
		writeServiceError(r.Context(), w, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, toTradeResponse(trade))
}

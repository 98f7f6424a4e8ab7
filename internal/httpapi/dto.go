package httpapi

import (
	"time"

	"tradingjournal/internal/app"
	"tradingjournal/internal/domain"
)

// tradeResponse is the wire shape of a trade. Field names are part of the
// API contract and stay snake_case.
type tradeResponse struct {
	ID            int64      `json:"id"`
	Pair          string     `json:"pair"`
	Direction     string     `json:"direction"`
	EntryPrice    float64    `json:"entry_price"`
	ExitPrice     *float64   `json:"exit_price"`
	StopLoss      *float64   `json:"stop_loss"`
	TakeProfit    *float64   `json:"take_profit"`
	PositionSize  float64    `json:"position_size"`
	Status        string     `json:"status"`
	RiskReward    *float64   `json:"risk_reward"`
	ResultPips    *float64   `json:"result_pips"`
	ResultUSD     *float64   `json:"result_usd"`
	Notes         string     `json:"notes"`
	ScreenshotURL *string    `json:"screenshot_url"`
	OpenedAt      time.Time  `json:"opened_at"`
	ClosedAt      *time.Time `json:"closed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toTradeResponse(t *domain.Trade) tradeResponse {
	return tradeResponse{
		ID:            t.ID,
		Pair:          t.Pair,
		Direction:     string(t.Direction),
		EntryPrice:    t.EntryPrice,
		ExitPrice:     t.ExitPrice,
		StopLoss:      t.StopLoss,
		TakeProfit:    t.TakeProfit,
		PositionSize:  t.PositionSize,
		Status:        string(t.Status),
		RiskReward:    t.RiskReward,
		ResultPips:    t.ResultPips,
		ResultUSD:     t.ResultUSD,
		Notes:         t.Notes,
		ScreenshotURL: t.ScreenshotURL,
		OpenedAt:      t.OpenedAt,
		ClosedAt:      t.ClosedAt,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func toTradeResponses(trades []*domain.Trade) []tradeResponse {
	out := make([]tradeResponse, 0, len(trades))
	for _, t := range trades {
		out = append(out, toTradeResponse(t))
	}
	return out
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type summaryResponse struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	AvgRiskReward float64 `json:"avg_risk_reward"`
	TotalProfit   float64 `json:"total_profit"`
}

type equityPointResponse struct {
	Date    time.Time `json:"date"`
	Balance float64   `json:"balance"`
}

func toEquityCurveResponse(points []app.EquityPoint) []equityPointResponse {
	out := make([]equityPointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, equityPointResponse{Date: p.Date, Balance: p.Balance})
	}
	return out
}

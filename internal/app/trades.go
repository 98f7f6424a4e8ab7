package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradingjournal/internal/domain"
	"tradingjournal/internal/metrics"
	"tradingjournal/internal/ports"
)

// TradeService owns the trade lifecycle: the OPEN -> CLOSED state machine,
// input validation, and the points at which derived metrics are computed.
type TradeService struct {
	repo   ports.TradeRepository
	logger ports.Logger
	now    func() time.Time
}

// NewTradeService creates a new trade lifecycle service.
func NewTradeService(repo ports.TradeRepository, logger ports.Logger) (*TradeService, error) {
	if repo == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for TradeService")
	}
	return &TradeService{repo: repo, logger: logger, now: func() time.Time { return time.Now().UTC() }}, nil
}

// CreateTradeInput carries the user-supplied fields for a new trade.
// Derived fields are not accepted here; they are always computed.
type CreateTradeInput struct {
	Pair          string
	Direction     domain.Direction
	EntryPrice    float64
	StopLoss      *float64
	TakeProfit    *float64
	PositionSize  float64
	Notes         string
	ScreenshotURL *string
	OpenedAt      *time.Time
}

// Create validates the input, computes the initial risk/reward ratio and
// persists a new OPEN trade. ResultPips and ResultUSD stay nil until close.
func (s *TradeService) Create(ctx context.Context, in CreateTradeInput) (*domain.Trade, error) {
	if strings.TrimSpace(in.Pair) == "" {
		return nil, fmt.Errorf("pair must not be empty: %w", ports.ErrInvalidInput)
	}
	if !in.Direction.IsValid() {
		return nil, fmt.Errorf("direction must be BUY or SELL: %w", ports.ErrInvalidInput)
	}
	if in.EntryPrice <= 0 {
		return nil, fmt.Errorf("entry_price must be positive: %w", ports.ErrInvalidInput)
	}
	if in.PositionSize <= 0 {
		return nil, fmt.Errorf("position_size must be positive: %w", ports.ErrInvalidInput)
	}

	now := s.now()
	openedAt := now
	if in.OpenedAt != nil {
		openedAt = in.OpenedAt.UTC()
	}

	t := &domain.Trade{
		Pair:          strings.TrimSpace(in.Pair),
		Direction:     in.Direction,
		EntryPrice:    in.EntryPrice,
		StopLoss:      in.StopLoss,
		TakeProfit:    in.TakeProfit,
		PositionSize:  in.PositionSize,
		Status:        domain.StatusOpen,
		Notes:         in.Notes,
		ScreenshotURL: in.ScreenshotURL,
		OpenedAt:      openedAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	t.RiskReward = s.riskReward(ctx, t)

	if _, err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "Trade opened", map[string]interface{}{"tradeID": t.ID, "pair": t.Pair, "direction": t.Direction})
	return t, nil
}

// UpdateTradeInput carries a partial update. Nil fields are left untouched.
type UpdateTradeInput struct {
	Pair          *string
	Direction     *domain.Direction
	EntryPrice    *float64
	ExitPrice     *float64
	StopLoss      *float64
	TakeProfit    *float64
	PositionSize  *float64
	Notes         *string
	ScreenshotURL *string
}

// Update applies only the fields present in the input and bumps UpdatedAt.
// Derived metrics are deliberately not recomputed here: an edit to
// entry_price leaves risk_reward as stored. That matches the recorded
// behavior of the API; close is the only recompute point.
func (s *TradeService) Update(ctx context.Context, id int64, in UpdateTradeInput) (*domain.Trade, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("trade %d: %w", id, ports.ErrNotFound)
	}

	if in.Pair != nil {
		if strings.TrimSpace(*in.Pair) == "" {
			return nil, fmt.Errorf("pair must not be empty: %w", ports.ErrInvalidInput)
		}
		t.Pair = strings.TrimSpace(*in.Pair)
	}
	if in.Direction != nil {
		if !in.Direction.IsValid() {
			return nil, fmt.Errorf("direction must be BUY or SELL: %w", ports.ErrInvalidInput)
		}
		t.Direction = *in.Direction
	}
	if in.EntryPrice != nil {
		if *in.EntryPrice <= 0 {
			return nil, fmt.Errorf("entry_price must be positive: %w", ports.ErrInvalidInput)
		}
		t.EntryPrice = *in.EntryPrice
	}
	if in.ExitPrice != nil {
		t.ExitPrice = in.ExitPrice
	}
	if in.StopLoss != nil {
		t.StopLoss = in.StopLoss
	}
	if in.TakeProfit != nil {
		t.TakeProfit = in.TakeProfit
	}
	if in.PositionSize != nil {
		if *in.PositionSize <= 0 {
			return nil, fmt.Errorf("position_size must be positive: %w", ports.ErrInvalidInput)
		}
		t.PositionSize = *in.PositionSize
	}
	if in.Notes != nil {
		t.Notes = *in.Notes
	}
	if in.ScreenshotURL != nil {
		t.ScreenshotURL = in.ScreenshotURL
	}
	t.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Close transitions an OPEN trade to CLOSED: sets the exit price and close
// timestamp, recomputes risk/reward against the fields as they stand now,
// and computes the pip and currency results. The persist is a compare-and-set
// on status, so a concurrent close surfaces as ErrAlreadyClosed rather than
// a double recompute.
func (s *TradeService) Close(ctx context.Context, id int64, exitPrice float64) (*domain.Trade, error) {
	if exitPrice <= 0 {
		return nil, fmt.Errorf("exit_price must be positive: %w", ports.ErrInvalidInput)
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("trade %d: %w", id, ports.ErrNotFound)
	}
	if !t.IsOpen() {
		return nil, fmt.Errorf("trade %d: %w", id, ports.ErrAlreadyClosed)
	}

	now := s.now()
	pips := metrics.ResultPips(t.Direction, t.EntryPrice, exitPrice)
	usd := metrics.ResultUSD(pips, t.PositionSize)

	t.ExitPrice = &exitPrice
	t.Status = domain.StatusClosed
	t.ClosedAt = &now
	t.ResultPips = &pips
	t.ResultUSD = &usd
	t.RiskReward = s.riskReward(ctx, t)
	t.UpdatedAt = now

	if err := s.repo.CloseTrade(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "Trade closed", map[string]interface{}{"tradeID": t.ID, "pair": t.Pair, "resultUSD": usd})
	return t, nil
}

// Delete removes a trade and returns the deleted record so the caller gets a
// confirmation of what was removed, not a ghost read.
func (s *TradeService) Delete(ctx context.Context, id int64) (*domain.Trade, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("trade %d: %w", id, ports.ErrNotFound)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "Trade deleted", map[string]interface{}{"tradeID": id})
	return t, nil
}

// Get retrieves a single trade.
func (s *TradeService) Get(ctx context.Context, id int64) (*domain.Trade, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("trade %d: %w", id, ports.ErrNotFound)
	}
	return t, nil
}

// List retrieves trades matching the filter, ordered by id ascending.
func (s *TradeService) List(ctx context.Context, f ports.TradeFilter) ([]*domain.Trade, error) {
	if f.Status != "" && !f.Status.IsValid() {
		return nil, fmt.Errorf("status must be OPEN or CLOSED: %w", ports.ErrInvalidInput)
	}
	return s.repo.FindAll(ctx, f)
}

// riskReward computes the ratio from the trade's current risk parameters.
// A missing parameter or a zero risk distance yields nil, never an error:
// the ratio is simply undefined for that trade.
func (s *TradeService) riskReward(ctx context.Context, t *domain.Trade) *float64 {
	if t.StopLoss == nil || t.TakeProfit == nil {
		return nil
	}
	rr, err := metrics.RiskReward(t.EntryPrice, *t.StopLoss, *t.TakeProfit)
	if err != nil {
		s.logger.Debug(ctx, "Risk/reward undefined for trade", map[string]interface{}{"pair": t.Pair, "reason": err.Error()})
		return nil
	}
	return &rr
}

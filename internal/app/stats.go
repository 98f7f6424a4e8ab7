package app

import (
	"context"
	"fmt"
	"time"

	"tradingjournal/internal/ports"
)

// Summary aggregates performance over all closed trades. Open trades are
// excluded entirely.
type Summary struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64
	AvgRiskReward float64
	TotalProfit   float64
}

// EquityPoint is one step of the cumulative balance curve, one per closed trade.
type EquityPoint struct {
	Date    time.Time
	Balance float64
}

// StatsService computes summary statistics and the equity curve from the
// repository's closed-trade scan. It holds no state between requests.
type StatsService struct {
	repo   ports.TradeRepository
	logger ports.Logger
}

// NewStatsService creates a new statistics aggregator.
func NewStatsService(repo ports.TradeRepository, logger ports.Logger) (*StatsService, error) {
	if repo == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for StatsService")
	}
	return &StatsService{repo: repo, logger: logger}, nil
}

// Summary scans the closed trades and computes the aggregate counters.
// Zero closed trades is a valid state, not an error: every rate is 0.
// A closed trade with result_usd == 0 counts as losing (documented tiebreak).
func (s *StatsService) Summary(ctx context.Context) (*Summary, error) {
	trades, err := s.repo.FindClosedByCloseTime(ctx)
	if err != nil {
		return nil, err
	}

	sum := &Summary{TotalTrades: len(trades)}
	var rrSum float64
	var rrCount int
	for _, t := range trades {
		if t.ResultUSD != nil {
			sum.TotalProfit += *t.ResultUSD
			if *t.ResultUSD > 0 {
				sum.WinningTrades++
			}
		}
		if t.RiskReward != nil {
			rrSum += *t.RiskReward
			rrCount++
		}
	}
	sum.LosingTrades = sum.TotalTrades - sum.WinningTrades
	if sum.TotalTrades > 0 {
		sum.WinRate = float64(sum.WinningTrades) / float64(sum.TotalTrades) * 100
	}
	if rrCount > 0 {
		sum.AvgRiskReward = rrSum / float64(rrCount)
	}
	return sum, nil
}

// EquityCurve returns the running balance after each closed trade, in
// closed_at order. The balance starts at 0 and accumulates result_usd; two
// trades closed at the same instant appear as two distinct points in the
// repository's tiebreak order.
func (s *StatsService) EquityCurve(ctx context.Context) ([]EquityPoint, error) {
	trades, err := s.repo.FindClosedByCloseTime(ctx)
	if err != nil {
		return nil, err
	}

	curve := make([]EquityPoint, 0, len(trades))
	var balance float64
	for _, t := range trades {
		if t.ResultUSD != nil {
			balance += *t.ResultUSD
		}
		point := EquityPoint{Balance: balance}
		if t.ClosedAt != nil {
			point.Date = *t.ClosedAt
		}
		curve = append(curve, point)
	}
	return curve, nil
}

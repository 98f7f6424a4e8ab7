package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradingjournal/internal/domain"
)

// seedClosedTrade inserts a closed trade directly, with an explicit close time
// and result, bypassing the lifecycle clock.
func seedClosedTrade(t *testing.T, svc *TradeService, closedAt time.Time, resultUSD float64, riskReward *float64) {
	t.Helper()
	ctx := context.Background()
	now := closedAt
	tr := &domain.Trade{
		Pair:         "EUR/USD",
		Direction:    domain.Buy,
		EntryPrice:   1.10,
		ExitPrice:    f64(1.11),
		PositionSize: 1,
		Status:       domain.StatusClosed,
		RiskReward:   riskReward,
		ResultPips:   f64(resultUSD),
		ResultUSD:    f64(resultUSD),
		OpenedAt:     closedAt.Add(-time.Hour),
		ClosedAt:     &closedAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err := svc.repo.Create(ctx, tr)
	require.NoError(t, err)
}

func newStatsService(t *testing.T) (*StatsService, *TradeService) {
	t.Helper()
	tradeSvc, repo := setupService(t)
	statsSvc, err := NewStatsService(repo, nopLogger{})
	require.NoError(t, err)
	return statsSvc, tradeSvc
}

func TestStatsService_SummaryEmpty(t *testing.T) {
	statsSvc, _ := newStatsService(t)

	sum, err := statsSvc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sum.TotalTrades)
	assert.Equal(t, 0.0, sum.WinRate) // zero trades is not an error
	assert.Equal(t, 0.0, sum.AvgRiskReward)
	assert.Equal(t, 0.0, sum.TotalProfit)
}

func TestStatsService_Summary(t *testing.T) {
	statsSvc, tradeSvc := newStatsService(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	seedClosedTrade(t, tradeSvc, base, 100, f64(2.0))
	seedClosedTrade(t, tradeSvc, base.Add(time.Hour), -50, f64(1.0))
	seedClosedTrade(t, tradeSvc, base.Add(2*time.Hour), 30, nil)

	sum, err := statsSvc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.TotalTrades)
	assert.Equal(t, 2, sum.WinningTrades)
	assert.Equal(t, 1, sum.LosingTrades)
	assert.InDelta(t, 66.6666, sum.WinRate, 0.001)
	// Mean over trades that actually have a ratio, not over all closed trades.
	assert.InDelta(t, 1.5, sum.AvgRiskReward, 1e-9)
	assert.InDelta(t, 80, sum.TotalProfit, 1e-9)
}

func TestStatsService_SummaryZeroResultCountsAsLoss(t *testing.T) {
	statsSvc, tradeSvc := newStatsService(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	seedClosedTrade(t, tradeSvc, base, 0, nil)

	sum, err := statsSvc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.TotalTrades)
	assert.Equal(t, 0, sum.WinningTrades)
	assert.Equal(t, 1, sum.LosingTrades)
	assert.Equal(t, 0.0, sum.WinRate)
}

func TestStatsService_SummaryExcludesOpenTrades(t *testing.T) {
	statsSvc, tradeSvc := newStatsService(t)

	_, err := tradeSvc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	sum, err := statsSvc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sum.TotalTrades)
}

func TestStatsService_EquityCurve(t *testing.T) {
	statsSvc, tradeSvc := newStatsService(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	// Inserted out of close order on purpose: the curve must sort by closed_at.
	seedClosedTrade(t, tradeSvc, base.Add(time.Hour), -50, nil)
	seedClosedTrade(t, tradeSvc, base, 100, nil)
	seedClosedTrade(t, tradeSvc, base.Add(2*time.Hour), 30, nil)

	curve, err := statsSvc.EquityCurve(context.Background())
	require.NoError(t, err)
	require.Len(t, curve, 3)

	assert.InDelta(t, 100, curve[0].Balance, 1e-9)
	assert.InDelta(t, 50, curve[1].Balance, 1e-9)
	assert.InDelta(t, 80, curve[2].Balance, 1e-9)

	assert.True(t, curve[0].Date.Equal(base))
	assert.True(t, curve[1].Date.Equal(base.Add(time.Hour)))
	assert.True(t, curve[2].Date.Equal(base.Add(2*time.Hour)))
}

func TestStatsService_EquityCurveEmpty(t *testing.T) {
	statsSvc, _ := newStatsService(t)

	curve, err := statsSvc.EquityCurve(context.Background())
	require.NoError(t, err)
	assert.Empty(t, curve)
}

func TestStatsService_EquityCurveSameInstantCloses(t *testing.T) {
	statsSvc, tradeSvc := newStatsService(t)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	seedClosedTrade(t, tradeSvc, at, 10, nil)
	seedClosedTrade(t, tradeSvc, at, 20, nil)

	curve, err := statsSvc.EquityCurve(context.Background())
	require.NoError(t, err)
	require.Len(t, curve, 2) // two distinct points, insertion order tiebreak
	assert.InDelta(t, 10, curve[0].Balance, 1e-9)
	assert.InDelta(t, 30, curve[1].Balance, 1e-9)
}

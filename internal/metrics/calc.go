// Package metrics holds the pure derived-metric calculations for journal
// trades. Functions here are stateless and side-effect free; the lifecycle
// service decides when (and whether) to apply them.
package metrics

import (
	"errors"
	"math"

	"tradingjournal/internal/domain"
)

// ErrZeroRiskDistance is returned when the stop loss equals the entry price,
// which makes the risk/reward ratio undefined.
var ErrZeroRiskDistance = errors.New("stop loss equals entry price, risk/reward is undefined")

// RiskReward returns |takeProfit - entry| / |entry - stopLoss|, the
// direction-agnostic ratio of potential profit distance to potential loss
// distance. It fails with ErrZeroRiskDistance rather than returning +Inf.
func RiskReward(entry, stopLoss, takeProfit float64) (float64, error) {
	risk := math.Abs(entry - stopLoss)
	if risk == 0 {
		return 0, ErrZeroRiskDistance
	}
	return math.Abs(takeProfit-entry) / risk, nil
}

// ResultPips returns the trade result in price units: exit - entry for a BUY,
// entry - exit for a SELL.
func ResultPips(direction domain.Direction, entry, exit float64) float64 {
	if direction == domain.Sell {
		return entry - exit
	}
	return exit - entry
}

// ResultUSD scales a pip result by the position size. This is a deliberate
// linear simplification: there is no pip-value or lot conversion table.
func ResultUSD(pips, positionSize float64) float64 {
	return pips * positionSize
}

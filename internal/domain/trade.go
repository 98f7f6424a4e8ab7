package domain

import "time"

// Trade represents a single journaled position.
//
// Derived fields (RiskReward, ResultPips, ResultUSD) are never user-supplied:
// RiskReward is computed when the trade is created and again when it is
// closed; ResultPips and ResultUSD exist only once the trade is closed.
// Pointer fields encode "not set" as nil, so for any trade
// Status == CLOSED iff ClosedAt != nil iff ResultUSD != nil.
type Trade struct {
	ID            int64       // Unique identifier (assigned by the repository)
	Pair          string      // Instrument symbol (e.g., "EUR/USD")
	Direction     Direction   // BUY or SELL
	EntryPrice    float64     // Price at which the position was entered
	ExitPrice     *float64    // Price at which the position was exited (nil while open)
	StopLoss      *float64    // Stop-loss level (optional risk parameter)
	TakeProfit    *float64    // Take-profit level (optional risk parameter)
	PositionSize  float64     // Size of the position
	Status        TradeStatus // Current lifecycle state (OPEN, CLOSED)
	RiskReward    *float64    // |TP-entry| / |entry-SL|; nil when undefined
	ResultPips    *float64    // Result in price units (nil while open)
	ResultUSD     *float64    // Result in currency units (nil while open)
	Notes         string      // Free-text notes
	ScreenshotURL *string     // Optional chart screenshot link
	OpenedAt      time.Time   // When the position was opened
	ClosedAt      *time.Time  // When the position was closed (nil while open)
	CreatedAt     time.Time   // Record creation timestamp
	UpdatedAt     time.Time   // Bumped on every mutation
}

// IsOpen reports whether the trade is still open.
func (t *Trade) IsOpen() bool {
	return t.Status == StatusOpen
}

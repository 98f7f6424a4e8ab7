package domain

// Direction represents the side of a trade (BUY or SELL).
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
)

// IsValid reports whether d is one of the known directions.
func (d Direction) IsValid() bool {
	return d == Buy || d == Sell
}

// TradeStatus represents the lifecycle state of a trade.
// The only legal transition is OPEN -> CLOSED; there is no reopen.
type TradeStatus string

const (
	StatusOpen   TradeStatus = "OPEN"
	StatusClosed TradeStatus = "CLOSED"
)

// IsValid reports whether s is one of the known statuses.
func (s TradeStatus) IsValid() bool {
	return s == StatusOpen || s == StatusClosed
}

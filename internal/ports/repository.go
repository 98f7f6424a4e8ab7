package ports

import (
	"context"
	"time"

	"tradingjournal/internal/domain"
)

// TradeFilter narrows a trade listing. All fields are optional and combine
// with AND semantics; the OpenedAt range is inclusive on both ends.
type TradeFilter struct {
	Pair       string
	Status     domain.TradeStatus
	OpenedFrom *time.Time
	OpenedTo   *time.Time
	Limit      int
	Offset     int
}

// TradeRepository defines the interface for storing and retrieving trades.
type TradeRepository interface {
	// Create saves a new trade and returns its assigned ID.
	Create(ctx context.Context, t *domain.Trade) (int64, error)
	// FindByID retrieves a trade by its unique ID.
	// Returns nil, nil if not found.
	FindByID(ctx context.Context, id int64) (*domain.Trade, error)
	// FindAll retrieves trades matching the filter, ordered by id ascending.
	FindAll(ctx context.Context, f TradeFilter) ([]*domain.Trade, error)
	// Update persists all mutable fields of an existing trade.
	// Returns ErrNotFound if the id does not exist.
	Update(ctx context.Context, t *domain.Trade) error
	// CloseTrade persists a closed trade, but only if the stored row is
	// still OPEN (compare-and-set on status, so racing closers elect one
	// winner). Returns ErrNotFound if the id does not exist and
	// ErrAlreadyClosed if the transition already happened.
	CloseTrade(ctx context.Context, t *domain.Trade) error
	// Delete removes a trade. Returns ErrNotFound if the id does not exist.
	Delete(ctx context.Context, id int64) error
	// FindClosedByCloseTime retrieves all closed trades ordered by closed_at
	// ascending, with id as the tiebreak for same-instant closes.
	FindClosedByCloseTime(ctx context.Context) ([]*domain.Trade, error)
}

// UserRepository defines the interface for storing and retrieving users.
type UserRepository interface {
	// CreateUser saves a new user and returns its assigned ID.
	// Returns ErrDuplicateEntry if the email is already registered.
	CreateUser(ctx context.Context, u *domain.User) (int64, error)
	// FindUserByEmail retrieves a user by email. Returns nil, nil if not found.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindUserByID retrieves a user by ID. Returns nil, nil if not found.
	FindUserByID(ctx context.Context, id int64) (*domain.User, error)
}

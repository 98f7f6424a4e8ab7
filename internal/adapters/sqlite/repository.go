package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tradingjournal/internal/domain"
	"tradingjournal/internal/ports"

	"github.com/mattn/go-sqlite3"
)

// Repository implements ports.TradeRepository and ports.UserRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/trading_journal.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; the Go driver benefits from
	// limiting connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		pair TEXT NOT NULL,
		direction TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL DEFAULT NULL,
		stop_loss REAL DEFAULT NULL,
		take_profit REAL DEFAULT NULL,
		position_size REAL NOT NULL,
		status TEXT NOT NULL,
		risk_reward REAL DEFAULT NULL,
		result_pips REAL DEFAULT NULL,
		result_usd REAL DEFAULT NULL,
		notes TEXT NOT NULL DEFAULT '',
		screenshot_url TEXT DEFAULT NULL,
		opened_at TIMESTAMP NOT NULL,
		closed_at TIMESTAMP DEFAULT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		hashed_password TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trades_pair_status ON trades (pair, status);
	CREATE INDEX IF NOT EXISTS idx_trades_opened_at ON trades (opened_at);
	CREATE INDEX IF NOT EXISTS idx_trades_closed_at ON trades (closed_at);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- TradeRepository Implementation ---

const tradeColumns = `id, pair, direction, entry_price, exit_price, stop_loss, take_profit,
	       position_size, status, risk_reward, result_pips, result_usd,
	       notes, screenshot_url, opened_at, closed_at, created_at, updated_at`

// Create saves a new trade and returns its assigned ID.
func (r *Repository) Create(ctx context.Context, t *domain.Trade) (int64, error) {
	const query = `
	INSERT INTO trades (pair, direction, entry_price, exit_price, stop_loss, take_profit,
	                    position_size, status, risk_reward, result_pips, result_usd,
	                    notes, screenshot_url, opened_at, closed_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		t.Pair, t.Direction, t.EntryPrice, nullFloat(t.ExitPrice), nullFloat(t.StopLoss), nullFloat(t.TakeProfit),
		t.PositionSize, t.Status, nullFloat(t.RiskReward), nullFloat(t.ResultPips), nullFloat(t.ResultUSD),
		t.Notes, nullString(t.ScreenshotURL), t.OpenedAt, nullTime(t.ClosedAt), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert trade for pair %s: %w", t.Pair, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for trade %s: %w", t.Pair, err)
	}
	t.ID = id
	r.logger.Debug(ctx, "Trade created", map[string]interface{}{"tradeID": id, "pair": t.Pair})
	return id, nil
}

// FindByID retrieves a trade by its unique ID.
func (r *Repository) FindByID(ctx context.Context, id int64) (*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	t, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query trade by ID %d: %w", id, err)
	}
	return t, nil
}

// FindAll retrieves trades matching the filter, ordered by id ascending.
// The listing has no ordering in the API contract; id ascending (insertion
// order) is the documented stable default.
func (r *Repository) FindAll(ctx context.Context, f ports.TradeFilter) ([]*domain.Trade, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + tradeColumns + ` FROM trades`)

	var conds []string
	var args []interface{}
	if f.Pair != "" {
		conds = append(conds, "pair = ?")
		args = append(args, f.Pair)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.OpenedFrom != nil {
		conds = append(conds, "opened_at >= ?")
		args = append(args, *f.OpenedFrom)
	}
	if f.OpenedTo != nil {
		conds = append(conds, "opened_at <= ?")
		args = append(args, *f.OpenedTo)
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY id ASC")
	if f.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
		if f.Offset > 0 {
			sb.WriteString(" OFFSET ?")
			args = append(args, f.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	return collectTrades(rows)
}

// Update persists all mutable fields of an existing trade.
func (r *Repository) Update(ctx context.Context, t *domain.Trade) error {
	const query = `
	UPDATE trades
	SET pair = ?, direction = ?, entry_price = ?, exit_price = ?, stop_loss = ?,
	    take_profit = ?, position_size = ?, status = ?, risk_reward = ?,
	    result_pips = ?, result_usd = ?, notes = ?, screenshot_url = ?,
	    opened_at = ?, closed_at = ?, updated_at = ?
	WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		t.Pair, t.Direction, t.EntryPrice, nullFloat(t.ExitPrice), nullFloat(t.StopLoss),
		nullFloat(t.TakeProfit), t.PositionSize, t.Status, nullFloat(t.RiskReward),
		nullFloat(t.ResultPips), nullFloat(t.ResultUSD), t.Notes, nullString(t.ScreenshotURL),
		t.OpenedAt, nullTime(t.ClosedAt), t.UpdatedAt,
		t.ID)
	if err != nil {
		return fmt.Errorf("failed to update trade ID %d: %w", t.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for update trade ID %d: %w", t.ID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade ID %d not found for update: %w", t.ID, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Trade updated", map[string]interface{}{"tradeID": t.ID, "pair": t.Pair})
	return nil
}

// CloseTrade persists a closed trade with a compare-and-set on status: the
// update only applies while the stored row is still OPEN, so of two racing
// closers exactly one wins.
func (r *Repository) CloseTrade(ctx context.Context, t *domain.Trade) error {
	const query = `
	UPDATE trades
	SET exit_price = ?, status = ?, risk_reward = ?, result_pips = ?, result_usd = ?,
	    closed_at = ?, updated_at = ?
	WHERE id = ? AND status = ?`

	result, err := r.db.ExecContext(ctx, query,
		nullFloat(t.ExitPrice), domain.StatusClosed, nullFloat(t.RiskReward),
		nullFloat(t.ResultPips), nullFloat(t.ResultUSD), nullTime(t.ClosedAt), t.UpdatedAt,
		t.ID, domain.StatusOpen)
	if err != nil {
		return fmt.Errorf("failed to close trade ID %d: %w", t.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for close trade ID %d: %w", t.ID, err)
	}
	if rowsAffected == 0 {
		// Either the row is gone or someone else closed it first.
		var status string
		err := r.db.QueryRowContext(ctx, `SELECT status FROM trades WHERE id = ?`, t.ID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("trade ID %d not found for close: %w", t.ID, ports.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to check status of trade ID %d: %w", t.ID, err)
		}
		return fmt.Errorf("trade ID %d: %w", t.ID, ports.ErrAlreadyClosed)
	}
	r.logger.Debug(ctx, "Trade closed", map[string]interface{}{"tradeID": t.ID, "pair": t.Pair})
	return nil
}

// Delete removes a trade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trade ID %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for delete trade ID %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade ID %d not found for delete: %w", id, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Trade deleted", map[string]interface{}{"tradeID": id})
	return nil
}

// FindClosedByCloseTime retrieves all closed trades ordered by closed_at
// ascending. The id tiebreak keeps same-instant closes in insertion order.
func (r *Repository) FindClosedByCloseTime(ctx context.Context) ([]*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE status = ? ORDER BY closed_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, domain.StatusClosed)
	if err != nil {
		return nil, fmt.Errorf("failed to query closed trades: %w", err)
	}
	defer rows.Close()

	return collectTrades(rows)
}

// --- UserRepository Implementation ---

// CreateUser saves a new user and returns its assigned ID.
func (r *Repository) CreateUser(ctx context.Context, u *domain.User) (int64, error) {
	const query = `
	INSERT INTO users (email, name, hashed_password, is_active, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		u.Email, u.Name, u.HashedPassword, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, fmt.Errorf("user with email %s: %w", u.Email, ports.ErrDuplicateEntry)
		}
		return 0, fmt.Errorf("failed to insert user %s: %w", u.Email, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for user %s: %w", u.Email, err)
	}
	u.ID = id
	r.logger.Debug(ctx, "User created", map[string]interface{}{"userID": id, "email": u.Email})
	return id, nil
}

// FindUserByEmail retrieves a user by email.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
	SELECT id, email, name, hashed_password, is_active, created_at, updated_at
	FROM users WHERE email = ?`

	row := r.db.QueryRowContext(ctx, query, email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query user by email %s: %w", email, err)
	}
	return u, nil
}

// FindUserByID retrieves a user by ID.
func (r *Repository) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
	SELECT id, email, name, hashed_password, is_active, created_at, updated_at
	FROM users WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user by ID %d: %w", id, err)
	}
	return u, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTrade scans a row into a domain.Trade struct.
func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var (
		exitPrice, stopLoss, takeProfit   sql.NullFloat64
		riskReward, resultPips, resultUSD sql.NullFloat64
		screenshotURL                     sql.NullString
		closedAt                          sql.NullTime
		direction, status                 string
	)
	err := s.Scan(
		&t.ID, &t.Pair, &direction, &t.EntryPrice, &exitPrice, &stopLoss, &takeProfit,
		&t.PositionSize, &status, &riskReward, &resultPips, &resultUSD,
		&t.Notes, &screenshotURL, &t.OpenedAt, &closedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	t.Direction = domain.Direction(direction)
	t.Status = domain.TradeStatus(status)
	t.ExitPrice = floatPtr(exitPrice)
	t.StopLoss = floatPtr(stopLoss)
	t.TakeProfit = floatPtr(takeProfit)
	t.RiskReward = floatPtr(riskReward)
	t.ResultPips = floatPtr(resultPips)
	t.ResultUSD = floatPtr(resultUSD)
	t.ScreenshotURL = stringPtr(screenshotURL)
	t.ClosedAt = timePtr(closedAt)
	return t, nil
}

// scanUser scans a row into a domain.User struct.
func scanUser(s scanner) (*domain.User, error) {
	u := &domain.User{}
	err := s.Scan(&u.ID, &u.Email, &u.Name, &u.HashedPassword, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func collectTrades(rows *sql.Rows) ([]*domain.Trade, error) {
	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade row: %w", err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// --- Null Conversion Helpers ---

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *p, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time
	return &v
}

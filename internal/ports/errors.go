package ports

import "errors"

// Standard application-level errors.
// Adapters wrap underlying infrastructure errors with these sentinels so the
// HTTP layer can map them to status codes without knowing about SQL or JWT.
var (
	// Domain errors
	ErrInvalidInput  = errors.New("invalid request parameters or format")
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyClosed = errors.New("trade is already closed")
	ErrUnauthorized  = errors.New("invalid or missing credentials")

	// Database errors
	ErrDuplicateEntry = errors.New("database record already exists")
	ErrDBConnection   = errors.New("database connection error")
	ErrQueryFailed    = errors.New("database query failed")
)

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tradingjournal/internal/ports"
)

// ErrorResponse is the error body shape: {"detail": "..."}.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// WriteJSON serializes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// WriteError writes an ErrorResponse with the given status code.
func WriteError(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, ErrorResponse{Detail: detail})
}

// ReadJSON decodes the request body into dst, rejecting unknown fields and
// trailing data.
func ReadJSON(r *http.Request, dst any, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	if dec.More() {
		return errors.New("unexpected trailing json")
	}
	return nil
}

// writeServiceError maps the ports error taxonomy onto HTTP status codes.
// Repository and other unclassified failures become an opaque 500.
func writeServiceError(ctx context.Context, w http.ResponseWriter, logger ports.Logger, err error) {
	switch {
	case errors.Is(err, ports.ErrDuplicateEntry):
		WriteError(w, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, ports.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ports.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "Could not validate credentials")
	case errors.Is(err, ports.ErrNotFound):
		WriteError(w, http.StatusNotFound, "Trade not found")
	case errors.Is(err, ports.ErrAlreadyClosed):
		WriteError(w, http.StatusConflict, "Trade already closed")
	default:
		logger.Error(ctx, err, "Unhandled error in HTTP handler")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

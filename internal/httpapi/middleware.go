package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"

	"tradingjournal/internal/auth"
	"tradingjournal/internal/domain"
	"tradingjournal/internal/ports"
)

type ctxKey int

const (
	userKey ctxKey = iota + 1
	requestIDKey
)

// UserFromContext returns the authenticated user attached by AuthMiddleware.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userKey).(*domain.User)
	return u, ok
}

// RequestIDFromContext returns the request's ULID, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

// RequestIDMiddleware tags every request with a ULID. ULIDs sort by creation
// time, which keeps log lines greppable in order.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ulid.Make().String()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// CORSMiddleware answers preflight requests and sets the allow headers for
// the configured origins ("*" allows any).
func CORSMiddleware(origins []string) func(http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				if allowAll {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Vary", "Origin")
				}
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware verifies the bearer token and loads the account it names.
// The subject claim is the user's email; a token for a deleted or disabled
// account is as invalid as a forged one.
func AuthMiddleware(jwt auth.JWT, users ports.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerToken(r.Header.Get("Authorization"))
			if tok == "" {
				WriteError(w, http.StatusUnauthorized, "Could not validate credentials")
				return
			}
			email, err := jwt.Verify(tok)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "Could not validate credentials")
				return
			}
			u, err := users.FindUserByEmail(r.Context(), email)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if u == nil || !u.IsActive {
				WriteError(w, http.StatusUnauthorized, "Could not validate credentials")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
		})
	}
}

func bearerToken(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	parts := strings.SplitN(v, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

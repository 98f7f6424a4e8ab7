package httpapi

import (
	"net/http"
	"strconv"
	"strings"
)

// Router dispatches the API surface. Trade and stats routes sit behind the
// auth middleware; signup and login are public.
type Router struct {
	Auth   AuthHandler
	Trades TradeHandler
	Stats  StatsHandler

	AuthMW func(http.Handler) http.Handler
}

// Handler wraps the router with the cross-cutting middleware.
func (rt Router) Handler(corsOrigins []string) http.Handler {
	return RequestIDMiddleware(CORSMiddleware(corsOrigins)(rt))
}

func (rt Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet && r.URL.Path == "/healthz" {
		WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
		return
	}

	// Auth endpoints.
	if r.URL.Path == "/api/v1/auth/signup" {
		if r.Method != http.MethodPost {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		rt.Auth.Signup(w, r)
		return
	}
	if r.URL.Path == "/api/v1/auth/login" {
		if r.Method != http.MethodPost {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		rt.Auth.Login(w, r)
		return
	}
	if r.URL.Path == "/api/v1/auth/me" {
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		rt.requireAuth(http.HandlerFunc(rt.Auth.Me)).ServeHTTP(w, r)
		return
	}

	// Stats endpoints.
	if r.URL.Path == "/api/v1/stats/summary" {
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		rt.requireAuth(http.HandlerFunc(rt.Stats.Summary)).ServeHTTP(w, r)
		return
	}
	if r.URL.Path == "/api/v1/stats/equity_curve" {
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		rt.requireAuth(http.HandlerFunc(rt.Stats.EquityCurve)).ServeHTTP(w, r)
		return
	}

	// Trade collection.
	if r.URL.Path == "/api/v1/trades" || r.URL.Path == "/api/v1/trades/" {
		switch r.Method {
		case http.MethodPost:
			rt.requireAuth(http.HandlerFunc(rt.Trades.Create)).ServeHTTP(w, r)
		case http.MethodGet:
			rt.requireAuth(http.HandlerFunc(rt.Trades.List)).ServeHTTP(w, r)
		default:
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	// Single trade: /api/v1/trades/{id} and /api/v1/trades/{id}/close.
	if rest, ok := strings.CutPrefix(r.URL.Path, "/api/v1/trades/"); ok {
		idStr, tail, hasTail := strings.Cut(rest, "/")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			WriteError(w, http.StatusNotFound, "Trade not found")
			return
		}

		if hasTail {
			if tail != "close" {
				WriteError(w, http.StatusNotFound, "not found")
				return
			}
			if r.Method != http.MethodPatch {
				WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
				return
			}
			rt.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				rt.Trades.Close(w, r, id)
			})).ServeHTTP(w, r)
			return
		}

		var fn func(http.ResponseWriter, *http.Request, int64)
		switch r.Method {
		case http.MethodGet:
			fn = rt.Trades.Get
		case http.MethodPut:
			fn = rt.Trades.Update
		case http.MethodDelete:
			fn = rt.Trades.Delete
		default:
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		rt.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fn(w, r, id)
		})).ServeHTTP(w, r)
		return
	}

	WriteError(w, http.StatusNotFound, "not found")
}

func (rt Router) requireAuth(next http.Handler) http.Handler {
	if rt.AuthMW == nil {
		return next
	}
	return rt.AuthMW(next)
}

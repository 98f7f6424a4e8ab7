package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradingjournal/internal/adapters/sqlite"
	"tradingjournal/internal/app"
	"tradingjournal/internal/auth"
	"tradingjournal/internal/httpapi"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := nopLogger{}

	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: filepath.Join(t.TempDir(), "journal.db"),
		Logger: log,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	jwt := auth.JWT{Secret: []byte("test-secret"), TokenTTL: time.Hour}
	hasher := auth.PasswordHasher{Cost: 4} // min cost keeps the suite fast

	tradeSvc, err := app.NewTradeService(repo, log)
	require.NoError(t, err)
	statsSvc, err := app.NewStatsService(repo, log)
	require.NoError(t, err)
	userSvc, err := app.NewUserService(repo, hasher, jwt, log)
	require.NoError(t, err)

	router := httpapi.Router{
		Auth:   httpapi.AuthHandler{Users: userSvc, Logger: log},
		Trades: httpapi.TradeHandler{Trades: tradeSvc, Logger: log},
		Stats:  httpapi.StatsHandler{Stats: statsSvc, Logger: log},
		AuthMW: httpapi.AuthMiddleware(jwt, repo),
	}

	srv := httptest.NewServer(router.Handler([]string{"*"}))
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeInto(t *testing.T, data []byte, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(data, dst), "body: %s", data)
}

func signup(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, data := doRequest(t, srv, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name":     "Test Trader",
		"email":    "trader@example.com",
		"password": "s3cretpass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", data)
	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decodeInto(t, data, &tok)
	require.Equal(t, "bearer", tok.TokenType)
	require.NotEmpty(t, tok.AccessToken)
	return tok.AccessToken
}

type tradeBody struct {
	ID           int64    `json:"id"`
	Pair         string   `json:"pair"`
	Direction    string   `json:"direction"`
	EntryPrice   float64  `json:"entry_price"`
	ExitPrice    *float64 `json:"exit_price"`
	PositionSize float64  `json:"position_size"`
	Status       string   `json:"status"`
	RiskReward   *float64 `json:"risk_reward"`
	ResultPips   *float64 `json:"result_pips"`
	ResultUSD    *float64 `json:"result_usd"`
	Notes        string   `json:"notes"`
	ClosedAt     *string  `json:"closed_at"`
}

func errDetail(t *testing.T, data []byte) string {
	t.Helper()
	var e struct {
		Detail string `json:"detail"`
	}
	decodeInto(t, data, &e)
	return e.Detail
}

func TestRouter_Healthz(t *testing.T) {
	srv := setupServer(t)

	resp, data := doRequest(t, srv, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeInto(t, data, &body)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRouter_SignupLoginMe(t *testing.T) {
	srv := setupServer(t)
	token := signup(t, srv)

	resp, data := doRequest(t, srv, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", data)
	var me struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		IsActive bool   `json:"is_active"`
	}
	decodeInto(t, data, &me)
	assert.Equal(t, "trader@example.com", me.Email)
	assert.Equal(t, "Test Trader", me.Name)
	assert.True(t, me.IsActive)

	// Login issues a fresh token for the same account.
	resp, data = doRequest(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "Trader@Example.com", // email matching is case-insensitive
		"password": "s3cretpass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", data)

	resp, data = doRequest(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "trader@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Could not validate credentials", errDetail(t, data))
}

func TestRouter_SignupDuplicateEmail(t *testing.T) {
	srv := setupServer(t)
	signup(t, srv)

	resp, data := doRequest(t, srv, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name":     "Other",
		"email":    "trader@example.com",
		"password": "anotherpass",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already registered", errDetail(t, data))
}

func TestRouter_AuthRequired(t *testing.T) {
	srv := setupServer(t)

	for _, path := range []string{
		"/api/v1/trades",
		"/api/v1/stats/summary",
		"/api/v1/stats/equity_curve",
		"/api/v1/auth/me",
	} {
		resp, data := doRequest(t, srv, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, "Could not validate credentials", errDetail(t, data), path)
	}

	resp, _ := doRequest(t, srv, http.MethodGet, "/api/v1/trades", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_TradeLifecycle(t *testing.T) {
	srv := setupServer(t)
	token := signup(t, srv)

	resp, data := doRequest(t, srv, http.MethodPost, "/api/v1/trades/", token, map[string]any{
		"pair":          "EUR/USD",
		"direction":     "BUY",
		"entry_price":   1.10,
		"stop_loss":     1.095,
		"take_profit":   1.11,
		"position_size": 1.0,
		"notes":         "breakout",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", data)
	var created tradeBody
	decodeInto(t, data, &created)
	assert.Equal(t, "OPEN", created.Status)
	require.NotNil(t, created.RiskReward)
	assert.InDelta(t, 2.0, *created.RiskReward, 1e-9)
	assert.Nil(t, created.ExitPrice)
	assert.Nil(t, created.ClosedAt)

	resp, data = doRequest(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/trades/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched tradeBody
	decodeInto(t, data, &fetched)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "EUR/USD", fetched.Pair)

	resp, data = doRequest(t, srv, http.MethodPut, fmt.Sprintf("/api/v1/trades/%d", created.ID), token, map[string]any{
		"notes": "breakout, moved stop to entry",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", data)
	var updated tradeBody
	decodeInto(t, data, &updated)
	assert.Equal(t, "breakout, moved stop to entry", updated.Notes)
	assert.Equal(t, "EUR/USD", updated.Pair)

	resp, data = doRequest(t, srv, http.MethodPatch, fmt.Sprintf("/api/v1/trades/%d/close?exit_price=1.11", created.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", data)
	var closed tradeBody
	decodeInto(t, data, &closed)
	assert.Equal(t, "CLOSED", closed.Status)
	require.NotNil(t, closed.ResultPips)
	assert.InDelta(t, 0.01, *closed.ResultPips, 1e-9)
	require.NotNil(t, closed.ResultUSD)
	assert.InDelta(t, 0.01, *closed.ResultUSD, 1e-9)
	assert.NotNil(t, closed.ClosedAt)

	resp, data = doRequest(t, srv, http.MethodPatch, fmt.Sprintf("/api/v1/trades/%d/close?exit_price=1.12", created.ID), token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Trade already closed", errDetail(t, data))

	resp, data = doRequest(t, srv, http.MethodDelete, fmt.Sprintf("/api/v1/trades/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var deleted tradeBody
	decodeInto(t, data, &deleted)
	assert.Equal(t, created.ID, deleted.ID)

	resp, data = doRequest(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/trades/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Trade not found", errDetail(t, data))
}

func TestRouter_CloseValidation(t *testing.T) {
	srv := setupServer(t)
	token := signup(t, srv)

	resp, data := doRequest(t, srv, http.MethodPatch, "/api/v1/trades/1/close", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "exit_price query parameter is required", errDetail(t, data))

	resp, data = doRequest(t, srv, http.MethodPatch, "/api/v1/trades/1/close?exit_price=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "exit_price must be a number", errDetail(t, data))

	resp, data = doRequest(t, srv, http.MethodPatch, "/api/v1/trades/99/close?exit_price=1.5", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Trade not found", errDetail(t, data))
}

func TestRouter_CreateValidation(t *testing.T) {
	srv := setupServer(t)
	token := signup(t, srv)

	resp, _ := doRequest(t, srv, http.MethodPost, "/api/v1/trades/", token, map[string]any{
		"pair":          "",
		"direction":     "BUY",
		"entry_price":   1.10,
		"position_size": 1.0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, srv, http.MethodPost, "/api/v1/trades/", token, map[string]any{
		"pair":          "EUR/USD",
		"direction":     "LONG",
		"entry_price":   1.10,
		"position_size": 1.0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown fields are rejected.
	resp, _ = doRequest(t, srv, http.MethodPost, "/api/v1/trades/", token, map[string]any{
		"pair":          "EUR/USD",
		"direction":     "BUY",
		"entry_price":   1.10,
		"position_size": 1.0,
		"bogus":         true,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_TradeNotFoundPaths(t *testing.T) {
	srv := setupServer(t)
	token := signup(t, srv)

	resp, data := doRequest(t, srv, http.MethodGet, "/api/v1/trades/12345", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Trade not found", errDetail(t, data))

	resp, _ = doRequest(t, srv, http.MethodGet, "/api/v1/trades/not-a-number", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, srv, http.MethodGet, "/api/v1/nope", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_ListFilters(t *testing.T) {
	srv := setupServer(t)
	token := signup(t, srv)

	for _, pair := range []string{"EUR/USD", "XAU/USD", "EUR/USD"} {
		resp, data := doRequest(t, srv, http.MethodPost, "/api/v1/trades/", token, map[string]any{
			"pair":          pair,
			"direction":     "BUY",
			"entry_price":   1.0,
			"position_size": 1.0,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", data)
	}

	resp, data := doRequest(t, srv, http.MethodGet, "/api/v1/trades?pair=EUR/USD", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var trades []tradeBody
	decodeInto(t, data, &trades)
	assert.Len(t, trades, 2)

	resp, data = doRequest(t, srv, http.MethodGet, "/api/v1/trades?limit=1&offset=1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, data, &trades)
	require.Len(t, trades, 1)
	assert.Equal(t, int64(2), trades[0].ID)

	resp, data = doRequest(t, srv, http.MethodGet, "/api/v1/trades?status=PENDING", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body: %s", data)

	resp, _ = doRequest(t, srv, http.MethodGet, "/api/v1/trades?start=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_Stats(t *testing.T) {
	srv := setupServer(t)
	token := signup(t, srv)

	open := func(entry float64) int64 {
		resp, data := doRequest(t, srv, http.MethodPost, "/api/v1/trades/", token, map[string]any{
			"pair":          "XAU/USD",
			"direction":     "BUY",
			"entry_price":   entry,
			"position_size": 10.0,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", data)
		var tb tradeBody
		decodeInto(t, data, &tb)
		return tb.ID
	}
	closeAt := func(id int64, exit float64) {
		resp, data := doRequest(t, srv, http.MethodPatch, fmt.Sprintf("/api/v1/trades/%d/close?exit_price=%g", id, exit), token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", data)
	}

	closeAt(open(1900), 1912) // +120 USD
	closeAt(open(1912), 1907) // -50 USD
	open(1907)                // still open, excluded from stats

	resp, data := doRequest(t, srv, http.MethodGet, "/api/v1/stats/summary", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", data)
	var sum struct {
		TotalTrades   int     `json:"total_trades"`
		WinningTrades int     `json:"winning_trades"`
		LosingTrades  int     `json:"losing_trades"`
		WinRate       float64 `json:"win_rate"`
		TotalProfit   float64 `json:"total_profit"`
	}
	decodeInto(t, data, &sum)
	assert.Equal(t, 2, sum.TotalTrades)
	assert.Equal(t, 1, sum.WinningTrades)
	assert.Equal(t, 1, sum.LosingTrades)
	assert.InDelta(t, 50.0, sum.WinRate, 1e-9)
	assert.InDelta(t, 70.0, sum.TotalProfit, 1e-9)

	resp, data = doRequest(t, srv, http.MethodGet, "/api/v1/stats/equity_curve", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", data)
	var curve []struct {
		Balance float64 `json:"balance"`
	}
	decodeInto(t, data, &curve)
	require.Len(t, curve, 2)
	assert.InDelta(t, 70.0, curve[1].Balance, 1e-9)
}

func TestRouter_CORSPreflight(t *testing.T) {
	srv := setupServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/trades", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "PATCH")
}

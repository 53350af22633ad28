package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"paper-core/internal/engine"
	"paper-core/internal/events"
	"paper-core/internal/market"
	"paper-core/internal/monitor"
	"paper-core/internal/strategy"
	"paper-core/pkg/cache"
	"paper-core/pkg/db"
)

func newTestAPIServer(t *testing.T) (*httptest.Server, *engine.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	if err := db.ApplyMigrations(database); err != nil {
		t.Fatalf("ApplyMigrations: %v", err)
	}

	bus := events.NewBus()
	metrics := monitor.NewSystemMetrics()
	quotes := cache.NewShardedQuoteCache()

	eng := engine.New(engine.Config{
		Assets:         []market.Asset{{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin"}},
		Params:         strategy.DefaultParams(),
		InitialBalance: 10000,
	}, bus, metrics, quotes)

	server := NewServer(bus, eng, db.NewStore(database.DB), quotes, metrics, SystemMeta{
		UseMockQuotes: true,
		TickInterval:  time.Minute,
		Version:       "test",
	}, "test-secret")

	httpServer := httptest.NewServer(server.Router)

	cleanup := func() {
		httpServer.Close()
		_ = database.Close()
	}
	return httpServer, eng, cleanup
}

func doJSONRequest(t *testing.T, client *http.Client, method, url, token string, payload any, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func registerAndLogin(t *testing.T, client *http.Client, baseURL string) string {
	t.Helper()
	var regResp struct {
		UserID string `json:"user_id"`
	}
	status := doJSONRequest(t, client, http.MethodPost, baseURL+"/api/auth/register", "", map[string]string{
		"email":    "trader@example.com",
		"password": "StrongPass123!",
	}, &regResp)
	if status != http.StatusCreated {
		t.Fatalf("register status=%d resp=%+v", status, regResp)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	status = doJSONRequest(t, client, http.MethodPost, baseURL+"/api/auth/login", "", map[string]string{
		"email":    "trader@example.com",
		"password": "StrongPass123!",
	}, &loginResp)
	if status != http.StatusOK || loginResp.Token == "" {
		t.Fatalf("login failed status=%d resp=%+v", status, loginResp)
	}
	return loginResp.Token
}

func TestHealth(t *testing.T) {
	ts, _, cleanup := newTestAPIServer(t)
	defer cleanup()

	var resp struct {
		Status        string   `json:"status"`
		Assets        int      `json:"assets"`
		Balance       *float64 `json:"balance"`
		OpenPositions *int     `json:"open_positions"`
		ClosedTrades  *int     `json:"closed_trades"`
	}
	status := doJSONRequest(t, ts.Client(), http.MethodGet, ts.URL+"/health", "", nil, &resp)
	if status != http.StatusOK || resp.Status != "ok" || resp.Assets != 1 {
		t.Fatalf("health status=%d resp=%+v", status, resp)
	}
	if resp.Balance == nil || *resp.Balance != 10000 {
		t.Fatalf("health must report the balance: %+v", resp)
	}
	if resp.OpenPositions == nil || resp.ClosedTrades == nil {
		t.Fatalf("health must report position and trade counts: %+v", resp)
	}
}

func TestShortRequestIDHeader(t *testing.T) {
	ts, _, cleanup := newTestAPIServer(t)
	defer cleanup()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("X-Request-ID", "abc")

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("short request id broke the request: status=%d", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Request-ID"); got != "abc" {
		t.Fatalf("request id not echoed: %q", got)
	}
}

func TestGetStateIsPublic(t *testing.T) {
	ts, eng, cleanup := newTestAPIServer(t)
	defer cleanup()

	eng.Tick(map[string]market.Quote{"bitcoin": {Price: 64000, Volume: 1}})

	var state engine.State
	status := doJSONRequest(t, ts.Client(), http.MethodGet, ts.URL+"/api/state", "", nil, &state)
	if status != http.StatusOK {
		t.Fatalf("state status=%d", status)
	}
	if state.Balance != 10000 || state.InitialBalance != 10000 {
		t.Fatalf("balance mismatch: %+v", state)
	}
	if ind, ok := state.PriceIndicators["bitcoin"]; !ok || ind.Price != 64000 {
		t.Fatalf("price indicators missing: %+v", state.PriceIndicators)
	}
	if len(state.Strategies) != strategy.NumKinds() {
		t.Fatalf("expected %d strategies, got %d", strategy.NumKinds(), len(state.Strategies))
	}
}

func TestGetQuotes(t *testing.T) {
	ts, eng, cleanup := newTestAPIServer(t)
	defer cleanup()

	eng.Tick(map[string]market.Quote{"bitcoin": {Price: 64000, Volume: 5}})

	var quotes map[string]market.Quote
	status := doJSONRequest(t, ts.Client(), http.MethodGet, ts.URL+"/api/quotes", "", nil, &quotes)
	if status != http.StatusOK || quotes["bitcoin"].Price != 64000 {
		t.Fatalf("quotes status=%d resp=%+v", status, quotes)
	}
}

func TestGetMetrics(t *testing.T) {
	ts, eng, cleanup := newTestAPIServer(t)
	defer cleanup()

	eng.Tick(map[string]market.Quote{"bitcoin": {Price: 1, Volume: 1}})

	var snap monitor.MetricsSnapshot
	status := doJSONRequest(t, ts.Client(), http.MethodGet, ts.URL+"/api/metrics", "", nil, &snap)
	if status != http.StatusOK || snap.TicksProcessed != 1 {
		t.Fatalf("metrics status=%d resp=%+v", status, snap)
	}
}

func TestControlRoutesRequireAuth(t *testing.T) {
	ts, _, cleanup := newTestAPIServer(t)
	defer cleanup()

	for _, route := range []string{"/api/pause", "/api/resume", "/api/reset", "/api/logs/clear"} {
		var resp struct {
			Code string `json:"code"`
		}
		status := doJSONRequest(t, ts.Client(), http.MethodPost, ts.URL+route, "", nil, &resp)
		if status != http.StatusUnauthorized || resp.Code != "MISSING_TOKEN" {
			t.Fatalf("%s: expected 401 MISSING_TOKEN, got %d %s", route, status, resp.Code)
		}
	}
}

func TestControlRoutesRejectBadToken(t *testing.T) {
	ts, eng, cleanup := newTestAPIServer(t)
	defer cleanup()

	var resp struct {
		Code string `json:"code"`
	}
	status := doJSONRequest(t, ts.Client(), http.MethodPost, ts.URL+"/api/pause", "not-a-jwt", nil, &resp)
	if status != http.StatusUnauthorized || resp.Code != "INVALID_TOKEN" {
		t.Fatalf("expected 401 INVALID_TOKEN, got %d %s", status, resp.Code)
	}
	if eng.Paused() {
		t.Fatal("rejected request must not pause the engine")
	}
}

func TestPauseAndResume(t *testing.T) {
	ts, eng, cleanup := newTestAPIServer(t)
	defer cleanup()

	client := ts.Client()
	token := registerAndLogin(t, client, ts.URL)

	if status := doJSONRequest(t, client, http.MethodPost, ts.URL+"/api/pause", token, nil, nil); status != http.StatusOK {
		t.Fatalf("pause status=%d", status)
	}
	if !eng.Paused() {
		t.Fatal("engine should be paused")
	}

	if status := doJSONRequest(t, client, http.MethodPost, ts.URL+"/api/resume", token, nil, nil); status != http.StatusOK {
		t.Fatalf("resume status=%d", status)
	}
	if eng.Paused() {
		t.Fatal("engine should be running")
	}
}

func TestToggleStrategy(t *testing.T) {
	ts, eng, cleanup := newTestAPIServer(t)
	defer cleanup()

	client := ts.Client()
	token := registerAndLogin(t, client, ts.URL)

	var resp struct {
		Strategy string `json:"strategy"`
		Enabled  bool   `json:"enabled"`
	}
	status := doJSONRequest(t, client, http.MethodPost, ts.URL+"/api/strategy/ptsim", token,
		map[string]any{"enabled": false}, &resp)
	if status != http.StatusOK || resp.Strategy != "ptsim" || resp.Enabled {
		t.Fatalf("toggle status=%d resp=%+v", status, resp)
	}
	if eng.StrategyEnabled(strategy.KindPTSIM) {
		t.Fatal("ptsim should be disabled")
	}

	var errResp struct {
		Code string `json:"code"`
	}
	status = doJSONRequest(t, client, http.MethodPost, ts.URL+"/api/strategy/macd", token,
		map[string]any{"enabled": true}, &errResp)
	if status != http.StatusNotFound || errResp.Code != "UNKNOWN_STRATEGY" {
		t.Fatalf("unknown strategy: status=%d resp=%+v", status, errResp)
	}

	status = doJSONRequest(t, client, http.MethodPost, ts.URL+"/api/strategy/ptsi", token,
		map[string]any{}, &errResp)
	if status != http.StatusBadRequest {
		t.Fatalf("missing enabled flag should 400, got %d", status)
	}
}

func TestResetSession(t *testing.T) {
	ts, eng, cleanup := newTestAPIServer(t)
	defer cleanup()

	client := ts.Client()
	token := registerAndLogin(t, client, ts.URL)

	eng.Tick(map[string]market.Quote{"bitcoin": {Price: 64000, Volume: 1}})
	eng.Pause()

	if status := doJSONRequest(t, client, http.MethodPost, ts.URL+"/api/reset", token, nil, nil); status != http.StatusOK {
		t.Fatalf("reset status=%d", status)
	}

	state := eng.State()
	if state.Balance != 10000 || state.Paused || len(state.PriceIndicators) != 0 {
		t.Fatalf("reset incomplete: %+v", state)
	}
}

func TestClearNotices(t *testing.T) {
	ts, eng, cleanup := newTestAPIServer(t)
	defer cleanup()

	client := ts.Client()
	token := registerAndLogin(t, client, ts.URL)

	eng.Pause() // leaves an info notice
	if status := doJSONRequest(t, client, http.MethodPost, ts.URL+"/api/logs/clear", token, nil, nil); status != http.StatusOK {
		t.Fatalf("clear status=%d", status)
	}
	if got := eng.State().Notices; len(got) != 0 {
		t.Fatalf("notices should be empty, got %+v", got)
	}
}

func TestRegisterValidation(t *testing.T) {
	ts, _, cleanup := newTestAPIServer(t)
	defer cleanup()
	client := ts.Client()

	var resp struct {
		Code string `json:"code"`
	}
	status := doJSONRequest(t, client, http.MethodPost, ts.URL+"/api/auth/register", "",
		map[string]string{"email": "not-an-email", "password": "x"}, &resp)
	if status != http.StatusBadRequest || resp.Code != "INVALID_EMAIL" {
		t.Fatalf("expected INVALID_EMAIL, got %d %s", status, resp.Code)
	}

	registerAndLogin(t, client, ts.URL)
	status = doJSONRequest(t, client, http.MethodPost, ts.URL+"/api/auth/register", "",
		map[string]string{"email": "trader@example.com", "password": "other"}, &resp)
	if status != http.StatusConflict || resp.Code != "EMAIL_ALREADY_REGISTERED" {
		t.Fatalf("expected conflict, got %d %s", status, resp.Code)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	ts, _, cleanup := newTestAPIServer(t)
	defer cleanup()
	client := ts.Client()
	registerAndLogin(t, client, ts.URL)

	var resp struct {
		Code string `json:"code"`
	}
	status := doJSONRequest(t, client, http.MethodPost, ts.URL+"/api/auth/login", "",
		map[string]string{"email": "trader@example.com", "password": "wrong"}, &resp)
	if status != http.StatusUnauthorized || resp.Code != "INVALID_CREDENTIALS" {
		t.Fatalf("expected 401 INVALID_CREDENTIALS, got %d %s", status, resp.Code)
	}
}

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sirhB/tickwatch/alerts"
	"github.com/sirhB/tickwatch/engine"
	"github.com/sirhB/tickwatch/feed"
	"github.com/sirhB/tickwatch/market"
	"github.com/sirhB/tickwatch/notify"
	"github.com/sirhB/tickwatch/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	f, err := feed.NewSim([]string{"ES", "NQ"}, 42, time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	db := store.NewMemory()
	book, err := alerts.NewBook(db, zap.NewNop())
	require.NoError(t, err)
	notes, err := notify.NewLog(100, db, notify.Nop{}, zap.NewNop())
	require.NoError(t, err)

	e, err := engine.New(engine.Options{
		Feed:         f,
		Clock:        market.FixedClock{T: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		Book:         book,
		Notes:        notes,
		TickInterval: time.Second,
		QueueDepth:   8,
		Logger:       zap.NewNop(),
	})
	require.NoError(t, err)

	ts := httptest.NewServer(New(e, zap.NewNop()).Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body interface{}, out interface{}) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestGetQuote(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var q market.Data
	status := doJSON(t, http.MethodGet, ts.URL+"/api/v1/quotes/ES", nil, &q)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ES", q.Symbol)
	assert.Greater(t, q.Price, 0.0)
}

func TestGetQuoteUnknownSymbol(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var e map[string]string
	status := doJSON(t, http.MethodGet, ts.URL+"/api/v1/quotes/BOGUS", nil, &e)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, e["error"], "BOGUS")
}

func TestGetQuotes(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var all map[string]market.Data
	status := doJSON(t, http.MethodGet, ts.URL+"/api/v1/quotes", nil, &all)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, all, 2)
}

func TestAlertLifecycle(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var created alerts.PriceAlert
	status := doJSON(t, http.MethodPost, ts.URL+"/api/v1/alerts",
		map[string]interface{}{"symbol": "ES", "targetPrice": 4500.0, "direction": "above"},
		&created)
	require.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.Triggered)

	var listed []alerts.PriceAlert
	status = doJSON(t, http.MethodGet, ts.URL+"/api/v1/alerts?symbol=ES", nil, &listed)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	var removed map[string]bool
	status = doJSON(t, http.MethodDelete, ts.URL+"/api/v1/alerts/"+created.ID, nil, &removed)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, removed["removed"])

	status = doJSON(t, http.MethodDelete, ts.URL+"/api/v1/alerts/"+created.ID, nil, &removed)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, removed["removed"])
}

func TestAddAlertValidation(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	status := doJSON(t, http.MethodPost, ts.URL+"/api/v1/alerts",
		map[string]interface{}{"symbol": "ES", "targetPrice": -1.0, "direction": "above"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = doJSON(t, http.MethodPost, ts.URL+"/api/v1/alerts",
		map[string]interface{}{"symbol": "BOGUS", "targetPrice": 100.0, "direction": "above"}, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status = doJSON(t, http.MethodPost, ts.URL+"/api/v1/alerts",
		map[string]interface{}{"symbol": "ES", "targetPrice": 100.0, "direction": "sideways"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetSession(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var s market.Session
	status := doJSON(t, http.MethodGet, ts.URL+"/api/v1/session", nil, &s)
	assert.Equal(t, http.StatusOK, status)
	// Fixed clock: Monday 2024-01-01 10:00.
	assert.True(t, s.IsOpen)
}

func TestNotificationsEndpoints(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var notes []notify.Notification
	status := doJSON(t, http.MethodGet, ts.URL+"/api/v1/notifications", nil, &notes)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, notes)

	status = doJSON(t, http.MethodDelete, ts.URL+"/api/v1/notifications", nil, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sirhB/tickwatch/alerts"
	"github.com/sirhB/tickwatch/feed"
	"github.com/sirhB/tickwatch/market"
	"github.com/sirhB/tickwatch/notify"
	"github.com/sirhB/tickwatch/store"
)

// scriptedFeed lets tests set exact prices instead of walking randomly.
type scriptedFeed struct {
	quotes map[string]market.Data
}

func newScriptedFeed(symbols ...string) *scriptedFeed {
	f := &scriptedFeed{quotes: make(map[string]market.Data)}
	for _, sym := range symbols {
		f.quotes[sym] = market.Data{Symbol: sym}
	}
	return f
}

func (f *scriptedFeed) setPrice(symbol string, price float64) {
	q := f.quotes[symbol]
	q.Price = price
	f.quotes[symbol] = q
}

func (f *scriptedFeed) Tick(now time.Time) map[string]market.Data {
	out := make(map[string]market.Data, len(f.quotes))
	for sym, q := range f.quotes {
		q.Time = now
		f.quotes[sym] = q
		out[sym] = q
	}
	return out
}

func (f *scriptedFeed) Quote(symbol string) (market.Data, error) {
	q, ok := f.quotes[symbol]
	if !ok {
		return market.Data{}, feed.ErrUnknownSymbol
	}
	return q, nil
}

func (f *scriptedFeed) Quotes() map[string]market.Data {
	out := make(map[string]market.Data, len(f.quotes))
	for sym, q := range f.quotes {
		out[sym] = q
	}
	return out
}

func (f *scriptedFeed) Symbols() []string {
	syms := make([]string, 0, len(f.quotes))
	for sym := range f.quotes {
		syms = append(syms, sym)
	}
	return syms
}

func newTestEngine(t *testing.T, f feed.Feed, clock market.Clock) *Engine {
	t.Helper()

	db := store.NewMemory()
	book, err := alerts.NewBook(db, zap.NewNop())
	require.NoError(t, err)
	notes, err := notify.NewLog(100, db, notify.Nop{}, zap.NewNop())
	require.NoError(t, err)

	e, err := New(Options{
		Feed:         f,
		Clock:        clock,
		Book:         book,
		Notes:        notes,
		TickInterval: time.Second,
		QueueDepth:   8,
		Logger:       zap.NewNop(),
	})
	require.NoError(t, err)
	return e
}

func fixed(hhmm string) market.FixedClock {
	tm, err := time.Parse("2006-01-02 15:04", "2024-01-01 "+hhmm) // a Monday
	if err != nil {
		panic(err)
	}
	return market.FixedClock{T: tm}
}

func TestStepDispatchesAndEvaluates(t *testing.T) {
	t.Parallel()

	f := newScriptedFeed("ES", "NQ")
	clock := fixed("10:00")
	e := newTestEngine(t, f, clock)

	c := newCollector()
	_, err := e.Subscribe("ES", c.observe)
	require.NoError(t, err)

	_, err = e.AddPriceAlert("ES", 4500, "above")
	require.NoError(t, err)

	f.setPrice("ES", 4499)
	e.step(clock.Now())
	c.wait(t, 1)
	assert.Empty(t, e.Notifications())

	f.setPrice("ES", 4500) // inclusive boundary
	e.step(clock.Now())
	c.wait(t, 1)

	notes := e.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "ES", notes[0].Alert.Symbol)
	assert.Equal(t, 4500.0, notes[0].Quote.Price)

	// Holding above the target must not fire again.
	f.setPrice("ES", 4600)
	e.step(clock.Now())
	c.wait(t, 1)
	assert.Len(t, e.Notifications(), 1)

	got := e.PriceAlerts("ES")
	require.Len(t, got, 1)
	assert.True(t, got[0].Triggered)
}

func TestAddPriceAlertRoundTrip(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, newScriptedFeed("ES"), fixed("10:00"))

	a, err := e.AddPriceAlert("ES", 4500, "above")
	require.NoError(t, err)

	got := e.PriceAlerts("ES")
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, 4500.0, got[0].TargetPrice)
	assert.Equal(t, alerts.Above, got[0].Direction)
	assert.False(t, got[0].Triggered)
}

func TestAddPriceAlertValidation(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, newScriptedFeed("ES"), fixed("10:00"))

	_, err := e.AddPriceAlert("BOGUS", 100, "above")
	assert.ErrorIs(t, err, feed.ErrUnknownSymbol)

	_, err = e.AddPriceAlert("ES", 100, "sideways")
	assert.Error(t, err)

	_, err = e.AddPriceAlert("ES", -1, "above")
	assert.Error(t, err)

	assert.Empty(t, e.PriceAlerts(""))
}

func TestRemovePriceAlertIdempotent(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, newScriptedFeed("ES"), fixed("10:00"))
	a, err := e.AddPriceAlert("ES", 4500, "above")
	require.NoError(t, err)

	assert.True(t, e.RemovePriceAlert(a.ID))
	assert.False(t, e.RemovePriceAlert(a.ID))
}

func TestGetCurrentPriceNotFound(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, newScriptedFeed("ES"), fixed("10:00"))
	_, err := e.GetCurrentPrice("BOGUS")
	assert.ErrorIs(t, err, feed.ErrUnknownSymbol)
}

func TestSubscribeUnknownSymbol(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, newScriptedFeed("ES"), fixed("10:00"))
	_, err := e.Subscribe("BOGUS", func(market.Data) {})
	assert.ErrorIs(t, err, feed.ErrUnknownSymbol)
}

func TestMarketHoursUsesInjectedClock(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, newScriptedFeed("ES"), fixed("10:00"))
	assert.True(t, e.MarketHours().IsOpen)

	e = newTestEngine(t, newScriptedFeed("ES"), fixed("21:00"))
	s := e.MarketHours()
	assert.False(t, s.IsOpen)
	assert.False(t, s.IsAfterHours)
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	f := newScriptedFeed("ES")
	e := newTestEngine(t, f, market.SystemClock{})

	require.NoError(t, e.Start(context.Background()))
	assert.Error(t, e.Start(context.Background()), "double start must fail")

	e.Stop()
	e.Stop() // second stop is a no-op
}

func TestClearNotifications(t *testing.T) {
	t.Parallel()

	f := newScriptedFeed("ES")
	clock := fixed("10:00")
	e := newTestEngine(t, f, clock)

	_, err := e.AddPriceAlert("ES", 1, "above")
	require.NoError(t, err)
	f.setPrice("ES", 2)
	e.step(clock.Now())

	require.Len(t, e.Notifications(), 1)
	e.ClearNotifications()
	assert.Empty(t, e.Notifications())
}

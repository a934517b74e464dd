// engine/engine.go
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirhB/tickwatch/alerts"
	"github.com/sirhB/tickwatch/feed"
	"github.com/sirhB/tickwatch/market"
	"github.com/sirhB/tickwatch/notify"
	"go.uber.org/zap"
)

// Engine owns the tick loop: advance the feed, fan the new snapshots out
// to subscribers, then evaluate alert rules. One goroutine drives all
// three, so per-symbol quote state has a single writer and same-symbol
// alert evaluation is naturally serialized.
type Engine struct {
	feed     feed.Feed
	clock    market.Clock
	registry *Registry
	book     *alerts.Book
	eval     *alerts.Evaluator
	notes    *notify.Log
	interval time.Duration
	log      *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type Options struct {
	Feed         feed.Feed
	Clock        market.Clock
	Book         *alerts.Book
	Notes        *notify.Log
	TickInterval time.Duration
	QueueDepth   int
	Logger       *zap.Logger
}

func New(opts Options) (*Engine, error) {
	if opts.Feed == nil {
		return nil, fmt.Errorf("engine: feed is required")
	}
	if opts.Book == nil || opts.Notes == nil {
		return nil, fmt.Errorf("engine: alert book and notification log are required")
	}
	if opts.TickInterval <= 0 {
		return nil, fmt.Errorf("engine: tick interval must be positive")
	}
	if opts.Clock == nil {
		opts.Clock = market.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Engine{
		feed:     opts.Feed,
		clock:    opts.Clock,
		registry: NewRegistry(opts.QueueDepth),
		book:     opts.Book,
		eval:     alerts.NewEvaluator(opts.Book, opts.Notes, opts.Clock, opts.Logger),
		notes:    opts.Notes,
		interval: opts.TickInterval,
		log:      opts.Logger,
	}, nil
}

// Start launches the tick loop. It returns immediately; the loop runs
// until ctx is cancelled or Stop is called.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return fmt.Errorf("engine: already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})

	go e.run(ctx)

	e.log.Info("engine started",
		zap.Duration("interval", e.interval),
		zap.Strings("symbols", e.feed.Symbols()),
	)
	return nil
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.step(e.clock.Now())
		}
	}
}

// step is one full tick: feed advance, dispatch, evaluate. Tests drive it
// directly with injected times instead of waiting on the ticker.
func (e *Engine) step(now time.Time) {
	for symbol, data := range e.feed.Tick(now) {
		e.registry.Dispatch(symbol, data)
		e.eval.Check(symbol, data)
	}
}

// Stop halts the tick loop and drains in-flight dispatches. No observer
// is invoked after Stop returns.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel = nil
	e.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	e.registry.Close()
	e.log.Info("engine stopped")
}

// Subscribe registers an observer for symbol's ticks. The returned handle
// is idempotent.
func (e *Engine) Subscribe(symbol string, fn Observer) (func(), error) {
	if _, err := e.feed.Quote(symbol); err != nil {
		return nil, err
	}
	return e.registry.Subscribe(symbol, fn), nil
}

// GetCurrentPrice is a point read of the quote cache.
func (e *Engine) GetCurrentPrice(symbol string) (market.Data, error) {
	return e.feed.Quote(symbol)
}

// Quotes returns the last snapshot for every tracked instrument.
func (e *Engine) Quotes() map[string]market.Data {
	return e.feed.Quotes()
}

// AddPriceAlert validates and persists a new rule. The symbol must be
// tracked by the feed; target and direction are validated by the book
// before anything is written.
func (e *Engine) AddPriceAlert(symbol string, targetPrice float64, direction string) (alerts.PriceAlert, error) {
	if _, err := e.feed.Quote(symbol); err != nil {
		return alerts.PriceAlert{}, err
	}
	dir, err := alerts.ParseDirection(direction)
	if err != nil {
		return alerts.PriceAlert{}, err
	}
	return e.book.Add(symbol, targetPrice, dir)
}

// RemovePriceAlert reports whether the rule existed.
func (e *Engine) RemovePriceAlert(alertID string) bool {
	return e.book.Remove(alertID)
}

// PriceAlerts lists rules for symbol, or all rules when symbol is empty.
func (e *Engine) PriceAlerts(symbol string) []alerts.PriceAlert {
	return e.book.List(symbol)
}

// MarketHours reports the session state at the engine clock's current
// time.
func (e *Engine) MarketHours() market.Session {
	return market.SessionAt(e.clock.Now())
}

func (e *Engine) Notifications() []notify.Notification {
	return e.notes.List()
}

func (e *Engine) ClearNotifications() {
	e.notes.Clear()
}

// alerts/book.go
package alerts

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/sirhB/tickwatch/internal/id"
	"go.uber.org/zap"
)

// Persister is the durable side of the book. Implemented by store.SQLite;
// tests use store.Memory.
type Persister interface {
	LoadAlerts() ([]PriceAlert, error)
	SaveAlert(PriceAlert) error
	DeleteAlert(alertID string) error
	MarkAlertTriggered(alertID string, at time.Time) error
}

// Book holds all alert rules indexed by symbol, so evaluation on a tick
// touches only that symbol's rules instead of scanning every alert.
//
// Writes go to memory first and then to the persister. A persistence
// failure is logged and otherwise ignored: the running process keeps
// behaving correctly and we trade durability for availability.
type Book struct {
	mu       sync.Mutex
	bySymbol map[string][]*PriceAlert
	byID     map[string]*PriceAlert
	db       Persister
	log      *zap.Logger
}

// NewBook reloads all persisted alerts, triggered ones included, so
// callers can still list alert history after a restart.
func NewBook(db Persister, log *zap.Logger) (*Book, error) {
	existing, err := db.LoadAlerts()
	if err != nil {
		return nil, fmt.Errorf("load alerts: %w", err)
	}

	b := &Book{
		bySymbol: make(map[string][]*PriceAlert),
		byID:     make(map[string]*PriceAlert),
		db:       db,
		log:      log,
	}
	for i := range existing {
		a := existing[i]
		b.byID[a.ID] = &a
		b.bySymbol[a.Symbol] = append(b.bySymbol[a.Symbol], &a)
	}
	return b, nil
}

// Add validates and persists a new untriggered rule. Validation happens
// before any write, so a malformed request never reaches the store.
func (b *Book) Add(symbol string, targetPrice float64, dir Direction) (PriceAlert, error) {
	if symbol == "" {
		return PriceAlert{}, fmt.Errorf("alerts: empty symbol")
	}
	if math.IsNaN(targetPrice) || math.IsInf(targetPrice, 0) || targetPrice <= 0 {
		return PriceAlert{}, fmt.Errorf("alerts: target price must be finite and positive, got %v", targetPrice)
	}
	if _, err := ParseDirection(string(dir)); err != nil {
		return PriceAlert{}, err
	}

	a := PriceAlert{
		ID:          id.New(),
		Symbol:      symbol,
		TargetPrice: targetPrice,
		Direction:   dir,
		CreatedAt:   time.Now().UTC(),
	}

	b.mu.Lock()
	b.byID[a.ID] = &a
	b.bySymbol[symbol] = append(b.bySymbol[symbol], &a)
	b.mu.Unlock()

	if err := b.db.SaveAlert(a); err != nil {
		b.log.Warn("persist alert failed", zap.String("alert_id", a.ID), zap.Error(err))
	}
	return a, nil
}

// Remove deletes a rule. The second call for the same id returns false.
func (b *Book) Remove(alertID string) bool {
	b.mu.Lock()
	a, ok := b.byID[alertID]
	if !ok {
		b.mu.Unlock()
		return false
	}
	delete(b.byID, alertID)

	list := b.bySymbol[a.Symbol]
	for i, p := range list {
		if p.ID == alertID {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(b.bySymbol, a.Symbol)
	} else {
		b.bySymbol[a.Symbol] = list
	}
	b.mu.Unlock()

	if err := b.db.DeleteAlert(alertID); err != nil {
		b.log.Warn("delete alert failed", zap.String("alert_id", alertID), zap.Error(err))
	}
	return true
}

// List returns copies of all rules for symbol, or every rule when symbol
// is empty, newest first.
func (b *Book) List(symbol string) []PriceAlert {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []PriceAlert
	if symbol != "" {
		for _, a := range b.bySymbol[symbol] {
			out = append(out, *a)
		}
	} else {
		for _, a := range b.byID {
			out = append(out, *a)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// Untriggered returns copies of the rules still armed for symbol.
func (b *Book) Untriggered(symbol string) []PriceAlert {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []PriceAlert
	for _, a := range b.bySymbol[symbol] {
		if !a.Triggered {
			out = append(out, *a)
		}
	}
	return out
}

// MarkTriggered flips the rule into its terminal state. The in-memory
// flip and the untriggered-set check share the book's lock, so a rule can
// fire at most once per process lifetime.
func (b *Book) MarkTriggered(alertID string, at time.Time) error {
	b.mu.Lock()
	a, ok := b.byID[alertID]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("alerts: no alert %q", alertID)
	}
	if a.Triggered {
		b.mu.Unlock()
		return fmt.Errorf("alerts: alert %q already triggered", alertID)
	}
	a.Triggered = true
	t := at
	a.TriggeredAt = &t
	b.mu.Unlock()

	if err := b.db.MarkAlertTriggered(alertID, at); err != nil {
		b.log.Warn("persist trigger failed", zap.String("alert_id", alertID), zap.Error(err))
	}
	return nil
}

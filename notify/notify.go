// notify/notify.go
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirhB/tickwatch/alerts"
	"github.com/sirhB/tickwatch/internal/id"
	"github.com/sirhB/tickwatch/market"
	"go.uber.org/zap"
)

const TypePriceAlert = "price_alert"

// Notification is an immutable record of one delivered event. The
// triggering alert and the quote that fired it ride along as payload.
type Notification struct {
	ID      string            `json:"id"`
	Type    string            `json:"type"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Alert   alerts.PriceAlert `json:"alert"`
	Quote   market.Data       `json:"quote"`
	Time    time.Time         `json:"time"`
}

// Persister is the durable side of the log. Implemented by store.SQLite.
type Persister interface {
	LoadNotifications() ([]Notification, error)
	SaveNotification(Notification) error
	DeleteNotification(notificationID string) error
	ClearNotifications() error
}

// Deliverer pushes a notification out of process, e.g. to the desktop.
// Delivery is best effort; the log ignores its errors.
type Deliverer interface {
	Deliver(Notification) error
}

// Log is a capped, newest-first, append-only record of notifications.
// When full, recording a new entry evicts the oldest.
type Log struct {
	mu      sync.Mutex
	items   []Notification // newest first
	max     int
	db      Persister
	deliver Deliverer
	log     *zap.Logger
}

func NewLog(max int, db Persister, d Deliverer, log *zap.Logger) (*Log, error) {
	if max <= 0 {
		return nil, fmt.Errorf("notify: cap must be positive, got %d", max)
	}
	existing, err := db.LoadNotifications()
	if err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	if len(existing) > max {
		existing = existing[:max]
	}
	return &Log{items: existing, max: max, db: db, deliver: d, log: log}, nil
}

// RecordTrigger builds and records the notification for a fired alert.
// Implements alerts.Sink.
func (l *Log) RecordTrigger(a alerts.PriceAlert, q market.Data) {
	word := "above"
	if a.Direction == alerts.Below {
		word = "below"
	}
	l.Record(Notification{
		ID:      id.New(),
		Type:    TypePriceAlert,
		Title:   fmt.Sprintf("Price alert: %s", a.Symbol),
		Message: fmt.Sprintf("%s is %s %.2f (last %.2f)", a.Symbol, word, a.TargetPrice, q.Price),
		Alert:   a,
		Quote:   q,
		Time:    q.Time,
	})
}

// Record persists n and attempts external delivery. Neither a persistence
// nor a delivery failure is surfaced to the caller; the in-memory log is
// always updated.
func (l *Log) Record(n Notification) {
	var evicted *Notification

	l.mu.Lock()
	l.items = append([]Notification{n}, l.items...)
	if len(l.items) > l.max {
		old := l.items[len(l.items)-1]
		l.items = l.items[:len(l.items)-1]
		evicted = &old
	}
	l.mu.Unlock()

	if err := l.db.SaveNotification(n); err != nil {
		l.log.Warn("persist notification failed", zap.String("notification_id", n.ID), zap.Error(err))
	}
	if evicted != nil {
		if err := l.db.DeleteNotification(evicted.ID); err != nil {
			l.log.Warn("evict notification failed", zap.String("notification_id", evicted.ID), zap.Error(err))
		}
	}

	if l.deliver != nil {
		if err := l.deliver.Deliver(n); err != nil {
			l.log.Debug("external delivery skipped", zap.Error(err))
		}
	}
}

// List returns a newest-first copy of the log.
func (l *Log) List() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Notification, len(l.items))
	copy(out, l.items)
	return out
}

func (l *Log) Clear() {
	l.mu.Lock()
	l.items = nil
	l.mu.Unlock()

	if err := l.db.ClearNotifications(); err != nil {
		l.log.Warn("clear notifications failed", zap.Error(err))
	}
}

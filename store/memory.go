// store/memory.go
package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirhB/tickwatch/alerts"
	"github.com/sirhB/tickwatch/notify"
)

// Memory keeps everything in process. It implements the same persister
// interfaces as SQLite and is what tests wire in. FailWrites, when set,
// makes every mutating call return that error so callers' log-and-continue
// paths can be exercised.
type Memory struct {
	mu            sync.Mutex
	alerts        map[string]alerts.PriceAlert
	notifications map[string]notify.Notification

	FailWrites error
}

func NewMemory() *Memory {
	return &Memory{
		alerts:        make(map[string]alerts.PriceAlert),
		notifications: make(map[string]notify.Notification),
	}
}

func (m *Memory) SaveAlert(a alerts.PriceAlert) error {
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts[a.ID] = a
	return nil
}

func (m *Memory) DeleteAlert(alertID string) error {
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.alerts, alertID)
	return nil
}

func (m *Memory) MarkAlertTriggered(alertID string, at time.Time) error {
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[alertID]
	if !ok || a.Triggered {
		return fmt.Errorf("store: alert %q missing or already triggered", alertID)
	}
	a.Triggered = true
	t := at
	a.TriggeredAt = &t
	m.alerts[alertID] = a
	return nil
}

func (m *Memory) LoadAlerts() ([]alerts.PriceAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]alerts.PriceAlert, 0, len(m.alerts))
	for _, a := range m.alerts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveNotification(n notify.Notification) error {
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[n.ID] = n
	return nil
}

func (m *Memory) DeleteNotification(notificationID string) error {
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.notifications, notificationID)
	return nil
}

func (m *Memory) LoadNotifications() ([]notify.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notify.Notification, 0, len(m.notifications))
	for _, n := range m.notifications {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *Memory) ClearNotifications() error {
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = make(map[string]notify.Notification)
	return nil
}

func (m *Memory) Close() error { return nil }

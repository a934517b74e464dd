// store/sqlite.go
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sirhB/tickwatch/alerts"
	"github.com/sirhB/tickwatch/market"
	"github.com/sirhB/tickwatch/notify"
)

// SQLite backs both the alert book and the notification log with one
// database file. Every mutating call writes synchronously before
// returning.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) SaveAlert(a alerts.PriceAlert) error {
	_, err := s.db.Exec(`
		INSERT INTO alerts
		(alert_id, symbol, target_price, direction, triggered, created_at, triggered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Symbol, a.TargetPrice, string(a.Direction),
		a.Triggered, a.CreatedAt, a.TriggeredAt,
	)
	return err
}

func (s *SQLite) DeleteAlert(alertID string) error {
	_, err := s.db.Exec(`DELETE FROM alerts WHERE alert_id = ?`, alertID)
	return err
}

func (s *SQLite) MarkAlertTriggered(alertID string, at time.Time) error {
	res, err := s.db.Exec(`
		UPDATE alerts SET triggered = 1, triggered_at = ?
		WHERE alert_id = ? AND triggered = 0`,
		at, alertID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("store: alert %q missing or already triggered", alertID)
	}
	return nil
}

func (s *SQLite) LoadAlerts() ([]alerts.PriceAlert, error) {
	rows, err := s.db.Query(`
		SELECT alert_id, symbol, target_price, direction, triggered, created_at, triggered_at
		FROM alerts ORDER BY alert_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []alerts.PriceAlert
	for rows.Next() {
		var a alerts.PriceAlert
		var dir string
		var triggeredAt sql.NullTime
		if err := rows.Scan(&a.ID, &a.Symbol, &a.TargetPrice, &dir, &a.Triggered, &a.CreatedAt, &triggeredAt); err != nil {
			return nil, err
		}
		a.Direction = alerts.Direction(dir)
		if triggeredAt.Valid {
			t := triggeredAt.Time
			a.TriggeredAt = &t
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// notificationPayload is the opaque part of a notification row: the
// triggering alert plus the market snapshot that fired it.
type notificationPayload struct {
	Alert alerts.PriceAlert `json:"alert"`
	Quote market.Data       `json:"quote"`
}

func (s *SQLite) SaveNotification(n notify.Notification) error {
	payload, err := json.Marshal(notificationPayload{Alert: n.Alert, Quote: n.Quote})
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO notifications
		(notification_id, type, title, message, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.Type, n.Title, n.Message, string(payload), n.Time,
	)
	return err
}

func (s *SQLite) DeleteNotification(notificationID string) error {
	_, err := s.db.Exec(`DELETE FROM notifications WHERE notification_id = ?`, notificationID)
	return err
}

// LoadNotifications returns the log newest first. Notification IDs are
// ULIDs, so ordering by id is ordering by creation time.
func (s *SQLite) LoadNotifications() ([]notify.Notification, error) {
	rows, err := s.db.Query(`
		SELECT notification_id, type, title, message, payload, created_at
		FROM notifications ORDER BY notification_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []notify.Notification
	for rows.Next() {
		var n notify.Notification
		var payload string
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &payload, &n.Time); err != nil {
			return nil, err
		}
		var p notificationPayload
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return nil, fmt.Errorf("store: bad notification payload %q: %w", n.ID, err)
		}
		n.Alert = p.Alert
		n.Quote = p.Quote
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLite) ClearNotifications() error {
	_, err := s.db.Exec(`DELETE FROM notifications`)
	return err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

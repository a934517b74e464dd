// store/schema.go
package store

const Schema = `
CREATE TABLE IF NOT EXISTS alerts (
	alert_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	target_price REAL NOT NULL,
	direction TEXT NOT NULL,
	triggered INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	triggered_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_alerts_symbol ON alerts(symbol);

CREATE TABLE IF NOT EXISTS notifications (
	notification_id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

// alerts/alert.go
package alerts

import (
	"fmt"
	"time"
)

// Direction says which way price must cross the target.
type Direction string

const (
	Above Direction = "above"
	Below Direction = "below"
)

// ParseDirection validates a caller-supplied direction string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Above, Below:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("alerts: direction must be %q or %q, got %q", Above, Below, s)
	}
}

// PriceAlert is a one-shot rule. Triggered only ever flips false -> true;
// after that the record is immutable until deleted.
type PriceAlert struct {
	ID          string     `json:"id"`
	Symbol      string     `json:"symbol"`
	TargetPrice float64    `json:"targetPrice"`
	Direction   Direction  `json:"direction"`
	Triggered   bool       `json:"triggered"`
	CreatedAt   time.Time  `json:"createdAt"`
	TriggeredAt *time.Time `json:"triggeredAt,omitempty"`
}

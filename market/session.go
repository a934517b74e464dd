// market/session.go
package market

import "time"

// Session describes where the current moment falls in the trading day.
// It is derived from the clock, never stored.
type Session struct {
	IsOpen       bool      `json:"isOpen"`
	IsPreMarket  bool      `json:"isPreMarket"`
	IsAfterHours bool      `json:"isAfterHours"`
	NextOpen     time.Time `json:"nextOpen"`
	NextClose    time.Time `json:"nextClose"`
}

// Clock abstracts wall-clock time so session logic and the tick loop are
// testable with fixed inputs.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Regular session hours, local time:
//   open        [09:30, 16:00)  Mon-Fri
//   pre-market  [04:00, 09:30)  Mon-Fri
//   after-hours (16:00, 20:00]  Mon-Fri
func SessionAt(now time.Time) Session {
	var s Session

	if isWeekday(now) {
		open := atTime(now, 9, 30)
		closeT := atTime(now, 16, 0)
		pre := atTime(now, 4, 0)
		late := atTime(now, 20, 0)

		s.IsOpen = !now.Before(open) && now.Before(closeT)
		s.IsPreMarket = !now.Before(pre) && now.Before(open)
		s.IsAfterHours = now.After(closeT) && !now.After(late)
	}

	s.NextOpen = nextBoundary(now, 9, 30)
	s.NextClose = nextBoundary(now, 16, 0)
	return s
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func atTime(t time.Time, hour, min int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, min, 0, 0, t.Location())
}

// nextBoundary returns the next weekday occurrence of hour:min strictly
// after now, rolling past weekends.
func nextBoundary(now time.Time, hour, min int) time.Time {
	b := atTime(now, hour, min)
	for !b.After(now) || !isWeekday(b) {
		b = atTime(b.AddDate(0, 0, 1), hour, min)
	}
	return b
}

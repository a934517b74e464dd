// feed/feed.go
package feed

import (
	"errors"
	"time"

	"github.com/sirhB/tickwatch/market"
)

var ErrUnknownSymbol = errors.New("feed: unknown symbol")

// Feed produces one quote update per tracked instrument per tick and
// answers point reads from its cache. The engine only depends on this
// interface; a live feed adapter can replace the simulator as long as it
// emits the same market.Data shape.
type Feed interface {
	// Tick advances every tracked instrument once and returns the new
	// snapshots keyed by symbol. Only the feed mutates quote state.
	Tick(now time.Time) map[string]market.Data

	// Quote returns the last-known snapshot for symbol, or
	// ErrUnknownSymbol for instruments the feed does not track. It never
	// returns a zero value for an untracked symbol.
	Quote(symbol string) (market.Data, error)

	// Quotes returns the last-known snapshot for every tracked
	// instrument.
	Quotes() map[string]market.Data

	Symbols() []string
}

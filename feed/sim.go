// feed/sim.go
package feed

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/sirhB/tickwatch/market"
)

// SimFeed synthesizes a bounded random walk per instrument. Volatility is
// heterogeneous: each instrument's per-tick move is capped by the
// catalog's volatility coefficient, so energy futures swing harder than
// index futures.
type SimFeed struct {
	mu     sync.RWMutex
	rng    *rand.Rand
	meta   map[string]market.InstrumentMeta
	quotes map[string]market.Data
}

// NewSim seeds one quote per requested symbol from the instrument
// catalog. Unknown symbols are rejected up front rather than silently
// tracked with zero state.
func NewSim(symbols []string, seed int64, now time.Time) (*SimFeed, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("sim feed: no symbols")
	}
	if seed == 0 {
		seed = now.UnixNano()
	}

	f := &SimFeed{
		rng:    rand.New(rand.NewSource(seed)),
		meta:   make(map[string]market.InstrumentMeta, len(symbols)),
		quotes: make(map[string]market.Data, len(symbols)),
	}

	for _, sym := range symbols {
		m, ok := market.Instruments[sym]
		if !ok {
			return nil, fmt.Errorf("sim feed: unknown instrument %q", sym)
		}
		f.meta[sym] = m

		// Session-open state: previousClose is fixed here and never
		// mutates intraday.
		open := m.BasePrice * (1 + (f.rng.Float64()*2-1)*m.Volatility)
		f.quotes[sym] = market.Data{
			Symbol:        sym,
			Price:         open,
			Change:        open - m.BasePrice,
			ChangePercent: (open - m.BasePrice) / m.BasePrice * 100,
			Volume:        m.BaseVolume,
			High:          open,
			Low:           open,
			Open:          open,
			PreviousClose: m.BasePrice,
			Time:          now,
		}
	}

	return f, nil
}

func (f *SimFeed) Tick(now time.Time) map[string]market.Data {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]market.Data, len(f.quotes))
	for sym, q := range f.quotes {
		m := f.meta[sym]

		delta := (f.rng.Float64()*2 - 1) * m.Volatility * q.Price
		q.Price += delta
		q.Change = q.Price - q.PreviousClose
		q.ChangePercent = q.Change / q.PreviousClose * 100

		if q.Price > q.High {
			q.High = q.Price
		}
		if q.Price < q.Low {
			q.Low = q.Price
		}

		q.Volume += f.rng.Int63n(m.BaseVolume/100 + 1)
		q.Time = now

		f.quotes[sym] = q
		out[sym] = q
	}
	return out
}

func (f *SimFeed) Quote(symbol string) (market.Data, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	q, ok := f.quotes[symbol]
	if !ok {
		return market.Data{}, ErrUnknownSymbol
	}
	return q, nil
}

func (f *SimFeed) Quotes() map[string]market.Data {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make(map[string]market.Data, len(f.quotes))
	for sym, q := range f.quotes {
		out[sym] = q
	}
	return out
}

func (f *SimFeed) Symbols() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	syms := make([]string, 0, len(f.quotes))
	for sym := range f.quotes {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	return syms
}

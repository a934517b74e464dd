// engine/registry.go
package engine

import (
	"sync"

	"github.com/sirhB/tickwatch/market"
)

// Observer receives quote snapshots for a subscribed symbol.
type Observer func(market.Data)

type subscription struct {
	symbol string
	ch     chan market.Data
	once   sync.Once
}

// Registry fans each symbol's updates out to its current observers.
//
// Every subscription gets its own bounded queue drained by its own
// goroutine, so a slow observer backs up only its queue; Dispatch never
// blocks. When a queue is full the oldest update is dropped in favor of
// the newest, since only the latest quote matters.
type Registry struct {
	mu    sync.Mutex
	subs  map[string]map[*subscription]struct{}
	depth int
	wg    sync.WaitGroup
}

func NewRegistry(queueDepth int) *Registry {
	if queueDepth <= 0 {
		queueDepth = 16
	}
	return &Registry{
		subs:  make(map[string]map[*subscription]struct{}),
		depth: queueDepth,
	}
}

// Subscribe registers fn for symbol and returns its unsubscribe handle.
// The handle is idempotent: the second and later calls are no-ops.
func (r *Registry) Subscribe(symbol string, fn Observer) (unsubscribe func()) {
	sub := &subscription{
		symbol: symbol,
		ch:     make(chan market.Data, r.depth),
	}

	r.mu.Lock()
	set := r.subs[symbol]
	if set == nil {
		set = make(map[*subscription]struct{})
		r.subs[symbol] = set
	}
	set[sub] = struct{}{}
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for d := range sub.ch {
			fn(d)
		}
	}()

	return func() {
		sub.once.Do(func() {
			r.mu.Lock()
			if set, ok := r.subs[symbol]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(r.subs, symbol)
				}
			}
			// Sends happen only under the lock while the subscription is
			// still in the map, so closing here is safe.
			close(sub.ch)
			r.mu.Unlock()
		})
	}
}

// Dispatch hands d to every observer currently registered for symbol.
// Zero observers is fine; observers on other symbols are never touched.
func (r *Registry) Dispatch(symbol string, d market.Data) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for sub := range r.subs[symbol] {
		select {
		case sub.ch <- d:
		default:
			// Queue full: make room by dropping the oldest entry.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- d:
			default:
			}
		}
	}
}

// Close unsubscribes everything and waits for the observer goroutines to
// drain their queues.
func (r *Registry) Close() {
	r.mu.Lock()
	for symbol, set := range r.subs {
		for sub := range set {
			sub.once.Do(func() { close(sub.ch) })
		}
		delete(r.subs, symbol)
	}
	r.mu.Unlock()

	r.wg.Wait()
}

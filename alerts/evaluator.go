// alerts/evaluator.go
package alerts

import (
	"github.com/sirhB/tickwatch/market"
	"go.uber.org/zap"
)

// Sink receives the trigger event. Implemented by notify.Log.
type Sink interface {
	RecordTrigger(alert PriceAlert, quote market.Data)
}

// Evaluator applies the one-shot trigger predicate on each tick.
type Evaluator struct {
	book  *Book
	sink  Sink
	clock market.Clock
	log   *zap.Logger
}

func NewEvaluator(book *Book, sink Sink, clock market.Clock, log *zap.Logger) *Evaluator {
	return &Evaluator{book: book, sink: sink, clock: clock, log: log}
}

// Check evaluates every still-armed rule for symbol against the new
// quote. Comparison is inclusive on both directions: a tick landing
// exactly on the target fires.
//
// Ordering is record-then-mark: the notification is persisted before the
// triggered flag. A crash between the two re-arms the rule on restart and
// may duplicate the notification (at-least-once); the reverse order could
// mark a rule triggered with no notification ever recorded.
func (ev *Evaluator) Check(symbol string, quote market.Data) {
	for _, a := range ev.book.Untriggered(symbol) {
		fires := (a.Direction == Above && quote.Price >= a.TargetPrice) ||
			(a.Direction == Below && quote.Price <= a.TargetPrice)
		if !fires {
			continue
		}

		now := ev.clock.Now()
		a.Triggered = true
		a.TriggeredAt = &now
		ev.sink.RecordTrigger(a, quote)

		if err := ev.book.MarkTriggered(a.ID, now); err != nil {
			ev.log.Warn("mark triggered failed", zap.String("alert_id", a.ID), zap.Error(err))
		}

		ev.log.Info("alert triggered",
			zap.String("alert_id", a.ID),
			zap.String("symbol", symbol),
			zap.Float64("target", a.TargetPrice),
			zap.Float64("price", quote.Price),
			zap.String("direction", string(a.Direction)),
		)
	}
}

// README: Aggregator: flips the order to cooked once every leg is done.
package fulfillment

import (
	"context"

	"catering/internal/modules/order"
)

// EvaluateCooked re-reads the tracking record and, when every leg is
// cooked, advances the durable order and enqueues delivery. Every leg's
// completion calls this; the monotonic status guard picks one winner
// for the transition, and losers dispatch only when the order is stuck
// at cooked with nothing on the delivery side yet.
func (s *Service) EvaluateCooked(ctx context.Context, orderID int64) error {
	rec, err := s.tracking.Load(ctx, orderID)
	if err != nil {
		return err
	}
	if !rec.AllCooked() {
		s.log.Debug("not all legs cooked yet", "order_id", orderID)
		return nil
	}

	advanced, err := s.store.AdvanceStatus(ctx, orderID, order.StatusCooked)
	if err != nil {
		return err
	}
	if !advanced {
		// The transition already happened. If the winner crashed before
		// its publish went out, the order sits at cooked with the
		// delivery side untouched; re-dispatch in that case. The
		// delivery worker's first durable write closes this window, and
		// a duplicate task converges on the monotonic guards.
		ord, err := s.store.Get(ctx, orderID)
		if err != nil {
			return err
		}
		if ord.Status != order.StatusCooked || rec.Delivery.Status != nil {
			return nil
		}
	}

	s.log.Info("all legs cooked, dispatching delivery", "order_id", orderID)
	return s.queue.PublishDeliver(ctx, orderID)
}

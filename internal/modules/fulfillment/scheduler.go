// README: Scheduler: partitions a new order into legs and enqueues cooking tasks.
package fulfillment

import (
	"context"
	"fmt"

	"catering/internal/modules/tracking"
)

// Schedule initializes the tracking record for a freshly created order
// and enqueues one cooking task per restaurant leg. The record's leg key
// set is fixed here and never changes afterwards.
func (s *Service) Schedule(ctx context.Context, orderID int64) error {
	legs, err := s.store.Legs(ctx, orderID)
	if err != nil {
		return err
	}
	if len(legs) == 0 {
		return fmt.Errorf("order %d has no items to cook", orderID)
	}

	ids := make([]int64, len(legs))
	for i, leg := range legs {
		ids[i] = leg.RestaurantID
	}
	if err := s.tracking.Save(ctx, orderID, tracking.NewRecord(ids), s.cfg.CookingWindow); err != nil {
		return err
	}

	for _, leg := range legs {
		if err := s.queue.PublishCook(ctx, orderID, leg.RestaurantID); err != nil {
			return fmt.Errorf("enqueue cooking leg %d/%d: %w", orderID, leg.RestaurantID, err)
		}
	}

	s.log.Info("order scheduled", "order_id", orderID, "legs", len(legs))
	return nil
}

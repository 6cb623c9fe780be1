// README: Periodic cleanup of tracking records for delivered orders.
package fulfillment

import "context"

// PurgeDelivered drops the cache records of orders that completed
// delivery. The TTL would expire them eventually; the cron sweep keeps
// the keyspace from filling with finished orders in the meantime.
func (s *Service) PurgeDelivered(ctx context.Context) error {
	ids, err := s.store.DeliveredIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.tracking.Delete(ctx, id); err != nil {
			s.log.Error("purge tracking record", "order_id", id, "err", err)
		}
	}
	if len(ids) > 0 {
		s.log.Info("purged delivered tracking records", "count", len(ids))
	}
	return nil
}

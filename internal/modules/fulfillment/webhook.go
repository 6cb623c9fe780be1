// README: Webhook ingestion: external callbacks resolved into tracking-record updates.
package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"catering/internal/modules/order"
	"catering/internal/modules/providers"
	"catering/internal/modules/tracking"
	"catering/internal/types"
)

// HandleCookingWebhook ingests a cooking provider's callback: the
// payload carries only the external id and implies the leg is cooked.
// Acts on the push-driven worker's behalf, so it also invokes the
// aggregator.
func (s *Service) HandleCookingWebhook(ctx context.Context, externalID string) error {
	orderID, err := s.tracking.LookupCookingRef(ctx, externalID)
	if errors.Is(err, tracking.ErrNotFound) {
		return fmt.Errorf("%w: cooking order %q", ErrUnknownExternalID, externalID)
	}
	if err != nil {
		return err
	}

	var advanced bool
	_, err = s.tracking.Update(ctx, orderID, func(rec *tracking.Record) error {
		leg, ok := rec.LegByExternalID(externalID)
		if !ok {
			return fmt.Errorf("%w: cooking order %q", ErrUnknownExternalID, externalID)
		}
		advanced = leg.Advance(order.StatusCooked)
		return nil
	})
	if err != nil {
		return err
	}
	if !advanced {
		// Duplicate webhook; the aggregator already ran for this leg.
		return nil
	}

	s.log.Info("cooking leg cooked via webhook", "order_id", orderID, "external_id", externalID)
	return s.EvaluateCooked(ctx, orderID)
}

// HandleDeliveryWebhook ingests a courier status/location callback and
// mirrors terminal statuses onto the durable order. The webhook-driven
// delivery worker observes the delivered state through the tracking
// record this writes.
func (s *Service) HandleDeliveryWebhook(ctx context.Context, externalID, statusToken string, location *types.Point) error {
	orderID, err := s.tracking.LookupDeliveryRef(ctx, externalID)
	if errors.Is(err, tracking.ErrNotFound) {
		return fmt.Errorf("%w: delivery order %q", ErrUnknownExternalID, externalID)
	}
	if err != nil {
		return err
	}

	st, err := providers.TranslateDelivery(order.ProviderUber, statusToken)
	if err != nil {
		return err
	}

	_, err = s.tracking.Update(ctx, orderID, func(rec *tracking.Record) error {
		rec.Delivery.Status = &st
		if location != nil {
			rec.Delivery.Location = location
		}
		return nil
	})
	if err != nil {
		return err
	}

	switch st {
	case order.StatusDelivery, order.StatusDelivered:
		_, err = s.store.AdvanceStatus(ctx, orderID, st)
		return err
	}
	return nil
}

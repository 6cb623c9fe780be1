// README: Delivery dispatcher and workers: poll-driven (Uklon) and webhook-driven (Uber).
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catering/internal/modules/order"
	"catering/internal/modules/providers"
	"catering/internal/modules/tracking"
)

// HandleDeliver dispatches delivery for a fully cooked order to the
// provider chosen at order-creation time and tracks it to completion.
func (s *Service) HandleDeliver(ctx context.Context, orderID int64) error {
	ord, err := s.store.Get(ctx, orderID)
	if err != nil {
		return err
	}
	adapter, ok := s.delivery[ord.DeliveryProvider]
	if !ok {
		return fmt.Errorf("%w: delivery %q", ErrUnsupportedProvider, ord.DeliveryProvider)
	}

	if _, err := s.store.AdvanceStatus(ctx, orderID, order.StatusDeliveryLookup); err != nil {
		return err
	}

	legs, err := s.store.Legs(ctx, orderID)
	if err != nil {
		return err
	}
	if len(legs) == 0 {
		return fmt.Errorf("%w: order %d", ErrLegNotFound, orderID)
	}

	if _, err := s.store.AdvanceStatus(ctx, orderID, order.StatusDelivery); err != nil {
		return err
	}

	created, err := adapter.CreateOrder(ctx, deliveryRequest(legs))
	if err != nil {
		return err
	}

	_, err = s.tracking.Update(ctx, orderID, func(rec *tracking.Record) error {
		st := order.StatusDelivery
		rec.Delivery.Status = &st
		rec.Delivery.Location = created.Location
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("delivery order created", "order_id", orderID, "provider", ord.DeliveryProvider, "external_id", created.ID)

	switch ord.DeliveryProvider {
	case order.ProviderUklon:
		return s.trackDeliveryByPolling(ctx, ord.DeliveryProvider, adapter, orderID, created.ID)
	case order.ProviderUber:
		if err := s.tracking.SaveDeliveryRef(ctx, created.ID, orderID); err != nil {
			return err
		}
		return s.awaitDeliveryWebhook(ctx, orderID)
	default:
		return fmt.Errorf("%w: delivery %q", ErrUnsupportedProvider, ord.DeliveryProvider)
	}
}

// trackDeliveryByPolling polls the provider until the courier reports
// delivered, persisting each location change into the tracking record.
func (s *Service) trackDeliveryByPolling(ctx context.Context, p order.DeliveryProvider, adapter DeliveryAdapter, orderID int64, externalID string) error {
	current := order.StatusDelivery
	deadline := time.Now().Add(s.cfg.DeliveryWindow)
	for {
		if time.Now().After(deadline) {
			s.markDelivery(ctx, orderID, order.StatusTimedOut)
			return fmt.Errorf("%w: delivery for order %d", ErrTimedOut, orderID)
		}

		got, err := adapter.GetOrder(ctx, externalID)
		if err != nil {
			if errors.Is(err, providers.ErrUnavailable) {
				s.log.Warn("delivery poll failed, will retry", "order_id", orderID, "err", err)
				if err := s.sleep(ctx); err != nil {
					return err
				}
				continue
			}
			return err
		}

		st, err := providers.TranslateDelivery(p, got.Status)
		if err != nil {
			return err
		}
		if st == current {
			if err := s.sleep(ctx); err != nil {
				return err
			}
			continue
		}
		current = st

		_, err = s.tracking.Update(ctx, orderID, func(rec *tracking.Record) error {
			rec.Delivery.Status = &st
			if got.Location != nil {
				rec.Delivery.Location = got.Location
			}
			return nil
		})
		if err != nil {
			return err
		}

		if st == order.StatusDelivered {
			s.log.Info("order delivered", "order_id", orderID)
			_, err := s.store.AdvanceStatus(ctx, orderID, order.StatusDelivered)
			return err
		}

		if err := s.sleep(ctx); err != nil {
			return err
		}
	}
}

// awaitDeliveryWebhook watches the tracking record itself, not the
// provider: the webhook ingestion writes the delivered state there.
func (s *Service) awaitDeliveryWebhook(ctx context.Context, orderID int64) error {
	deadline := time.Now().Add(s.cfg.DeliveryWindow)
	for {
		if time.Now().After(deadline) {
			s.markDelivery(ctx, orderID, order.StatusTimedOut)
			return fmt.Errorf("%w: delivery for order %d", ErrTimedOut, orderID)
		}

		rec, err := s.tracking.Load(ctx, orderID)
		if err != nil {
			return err
		}
		if rec.Delivery.Status != nil && *rec.Delivery.Status == order.StatusDelivered {
			s.log.Info("order delivered", "order_id", orderID)
			_, err := s.store.AdvanceStatus(ctx, orderID, order.StatusDelivered)
			return err
		}

		if err := s.sleep(ctx); err != nil {
			return err
		}
	}
}

func (s *Service) markDelivery(ctx context.Context, orderID int64, st order.Status) {
	_, err := s.tracking.Update(ctx, orderID, func(rec *tracking.Record) error {
		// A webhook landing right after the deadline already finished
		// the order; the marker must not overwrite that.
		if rec.Delivery.Status != nil && *rec.Delivery.Status == order.StatusDelivered {
			return nil
		}
		rec.Delivery.Status = &st
		return nil
	})
	if err != nil {
		s.log.Error("mark delivery", "order_id", orderID, "status", st, "err", err)
	}
}

// deliveryRequest gathers one address/comment pair per restaurant leg.
func deliveryRequest(legs []order.Leg) providers.DeliveryRequest {
	req := providers.DeliveryRequest{
		Addresses: make([]string, len(legs)),
		Comments:  make([]string, len(legs)),
	}
	for i, leg := range legs {
		req.Addresses[i] = leg.Address
		req.Comments[i] = "Delivery to the " + leg.RestaurantName
	}
	return req
}

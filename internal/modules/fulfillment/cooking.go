// README: Cooking workers: poll-driven (Silpo) and webhook-driven (KFC) legs.
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

// HandleCook drives one restaurant leg of an order. Dispatch over the
// provider enum is closed: a leg whose provider matches no discipline is
// a configuration error, not a fallback.
func (s *Service) HandleCook(ctx context.Context, orderID, restaurantID int64) error {
	leg, err := s.leg(ctx, orderID, restaurantID)
	if err != nil {
		return err
	}

	switch leg.Provider {
	case order.ProviderSilpo:
		return s.cookByPolling(ctx, orderID, leg)
	case order.ProviderKFC:
		return s.cookByWebhook(ctx, orderID, leg)
	default:
		return fmt.Errorf("%w: cooking %q", ErrUnsupportedProvider, leg.Provider)
	}
}

// cookByPolling creates the provider order once, then short-polls it to
// the cooked state. The loop is bounded by the cooking window; on expiry
// the leg is marked timed out and surfaced instead of looping forever.
func (s *Service) cookByPolling(ctx context.Context, orderID int64, leg order.Leg) error {
	adapter, ok := s.cooking[leg.Provider]
	if !ok {
		return fmt.Errorf("%w: cooking %q", ErrUnsupportedProvider, leg.Provider)
	}

	deadline := time.Now().Add(s.cfg.CookingWindow)
	for {
		if time.Now().After(deadline) {
			s.markLeg(ctx, orderID, leg.RestaurantID, order.StatusTimedOut)
			return fmt.Errorf("%w: cooking leg %d/%d", ErrTimedOut, orderID, leg.RestaurantID)
		}

		rec, err := s.tracking.Load(ctx, orderID)
		if err != nil {
			return err
		}
		tracked, ok := rec.Leg(leg.RestaurantID)
		if !ok {
			return fmt.Errorf("%w: order %d restaurant %d", ErrLegNotFound, orderID, leg.RestaurantID)
		}

		if tracked.ExternalID == nil {
			if err := s.createCookingOrder(ctx, adapter, orderID, leg); err != nil {
				if errors.Is(err, providers.ErrUnavailable) {
					s.log.Warn("cooking create failed, will retry", "order_id", orderID, "provider", leg.Provider, "err", err)
					if err := s.sleep(ctx); err != nil {
						return err
					}
					continue
				}
				return err
			}
			if err := s.sleep(ctx); err != nil {
				return err
			}
			continue
		}

		got, err := adapter.GetOrder(ctx, *tracked.ExternalID)
		if err != nil {
			if errors.Is(err, providers.ErrUnavailable) {
				s.log.Warn("cooking poll failed, will retry", "order_id", orderID, "provider", leg.Provider, "err", err)
				if err := s.sleep(ctx); err != nil {
					return err
				}
				continue
			}
			return err
		}

		st, err := providers.TranslateCooking(leg.Provider, got.Status)
		if err != nil {
			return err
		}

		// Terminal for this leg. Checked before the unchanged-status
		// test: a redelivered task finds the leg already cooked, and
		// waiting for another change would spin out the window.
		if st == order.StatusCooked {
			if _, err := s.advanceLeg(ctx, orderID, leg.RestaurantID, st); err != nil {
				return err
			}
			return s.EvaluateCooked(ctx, orderID)
		}

		if st == tracked.Status {
			if err := s.sleep(ctx); err != nil {
				return err
			}
			continue
		}

		if _, err := s.advanceLeg(ctx, orderID, leg.RestaurantID, st); err != nil {
			return err
		}
		s.log.Info("cooking leg status changed", "order_id", orderID, "restaurant_id", leg.RestaurantID, "status", st)

		if st == order.StatusCooking {
			if _, err := s.store.AdvanceStatus(ctx, orderID, order.StatusCooking); err != nil {
				return err
			}
		}

		if err := s.sleep(ctx); err != nil {
			return err
		}
	}
}

// cookByWebhook issues a single create call and records the external-id
// mapping; the provider's webhook later delivers the cooked transition.
func (s *Service) cookByWebhook(ctx context.Context, orderID int64, leg order.Leg) error {
	adapter, ok := s.cooking[leg.Provider]
	if !ok {
		return fmt.Errorf("%w: cooking %q", ErrUnsupportedProvider, leg.Provider)
	}

	rec, err := s.tracking.Load(ctx, orderID)
	if err != nil {
		return err
	}
	if _, ok := rec.Leg(leg.RestaurantID); !ok {
		return fmt.Errorf("%w: order %d restaurant %d", ErrLegNotFound, orderID, leg.RestaurantID)
	}

	created, err := adapter.CreateOrder(ctx, cookingRequest(leg))
	if err != nil {
		// Transient failures surface to the queue, which redelivers the task.
		if errors.Is(err, providers.ErrRejected) {
			s.markLeg(ctx, orderID, leg.RestaurantID, order.StatusFailed)
		}
		return err
	}

	st, err := providers.TranslateCooking(leg.Provider, created.Status)
	if err != nil {
		return err
	}

	_, err = s.tracking.Update(ctx, orderID, func(rec *tracking.Record) error {
		tracked, ok := rec.Leg(leg.RestaurantID)
		if !ok {
			return fmt.Errorf("%w: order %d restaurant %d", ErrLegNotFound, orderID, leg.RestaurantID)
		}
		tracked.ExternalID = &created.ID
		tracked.Advance(st)
		return nil
	})
	if err != nil {
		return err
	}
	if err := s.tracking.SaveCookingRef(ctx, created.ID, orderID); err != nil {
		return err
	}

	s.log.Info("cooking order created, awaiting webhook", "order_id", orderID, "restaurant_id", leg.RestaurantID, "external_id", created.ID)

	switch st {
	case order.StatusCooking:
		_, err = s.store.AdvanceStatus(ctx, orderID, order.StatusCooking)
		return err
	case order.StatusCooked:
		return s.EvaluateCooked(ctx, orderID)
	}
	return nil
}

func (s *Service) createCookingOrder(ctx context.Context, adapter CookingAdapter, orderID int64, leg order.Leg) error {
	created, err := adapter.CreateOrder(ctx, cookingRequest(leg))
	if err != nil {
		if errors.Is(err, providers.ErrRejected) {
			s.markLeg(ctx, orderID, leg.RestaurantID, order.StatusFailed)
		}
		return err
	}

	st, err := providers.TranslateCooking(leg.Provider, created.Status)
	if err != nil {
		return err
	}

	_, err = s.tracking.Update(ctx, orderID, func(rec *tracking.Record) error {
		tracked, ok := rec.Leg(leg.RestaurantID)
		if !ok {
			return fmt.Errorf("%w: order %d restaurant %d", ErrLegNotFound, orderID, leg.RestaurantID)
		}
		tracked.ExternalID = &created.ID
		tracked.Advance(st)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("cooking order created", "order_id", orderID, "restaurant_id", leg.RestaurantID, "external_id", created.ID, "status", st)
	return nil
}

// advanceLeg applies a forward-only status change to one leg under CAS.
func (s *Service) advanceLeg(ctx context.Context, orderID, restaurantID int64, st order.Status) (bool, error) {
	var advanced bool
	_, err := s.tracking.Update(ctx, orderID, func(rec *tracking.Record) error {
		leg, ok := rec.Leg(restaurantID)
		if !ok {
			return fmt.Errorf("%w: order %d restaurant %d", ErrLegNotFound, orderID, restaurantID)
		}
		advanced = leg.Advance(st)
		return nil
	})
	return advanced, err
}

func (s *Service) leg(ctx context.Context, orderID, restaurantID int64) (order.Leg, error) {
	legs, err := s.store.Legs(ctx, orderID)
	if err != nil {
		return order.Leg{}, err
	}
	for _, leg := range legs {
		if leg.RestaurantID == restaurantID {
			return leg, nil
		}
	}
	return order.Leg{}, fmt.Errorf("%w: order %d restaurant %d", ErrLegNotFound, orderID, restaurantID)
}

func cookingRequest(leg order.Leg) providers.CookingRequest {
	items := make([]providers.Item, len(leg.Items))
	for i, item := range leg.Items {
		items[i] = providers.Item{Dish: item.Dish, Quantity: item.Quantity}
	}
	return providers.CookingRequest{Order: items}
}

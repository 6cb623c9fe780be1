// README: Fulfillment service: drives cooking legs and delivery over shared tracking state.
package fulfillment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"catering/internal/modules/order"
	"catering/internal/modules/providers"
	"catering/internal/modules/tracking"
)

var (
	// ErrLegNotFound means the tracking record has no leg for the
	// restaurant the caller expected. Fatal to that operation only.
	ErrLegNotFound = errors.New("leg not found in tracking record")
	// ErrUnknownExternalID means a webhook referenced an external order
	// id with no mapping entry.
	ErrUnknownExternalID = errors.New("unknown external order id")
	// ErrUnsupportedProvider is a configuration error at dispatch time;
	// the order is left where it is for manual resolution.
	ErrUnsupportedProvider = errors.New("unsupported provider")
	// ErrTimedOut is raised when a poll loop exhausts its window.
	ErrTimedOut = errors.New("fulfillment window exceeded")
)

// OrderStore is the durable side of the saga: the order row and the
// item/restaurant joins behind it.
type OrderStore interface {
	Get(ctx context.Context, id int64) (*order.Order, error)
	AdvanceStatus(ctx context.Context, id int64, to order.Status) (bool, error)
	Legs(ctx context.Context, orderID int64) ([]order.Leg, error)
	DeliveredIDs(ctx context.Context) ([]int64, error)
}

// TaskQueue schedules worker tasks; at-least-once delivery is assumed.
type TaskQueue interface {
	PublishCook(ctx context.Context, orderID, restaurantID int64) error
	PublishDeliver(ctx context.Context, orderID int64) error
}

type CookingAdapter interface {
	CreateOrder(ctx context.Context, req providers.CookingRequest) (providers.Order, error)
	GetOrder(ctx context.Context, externalID string) (providers.Order, error)
}

type DeliveryAdapter interface {
	CreateOrder(ctx context.Context, req providers.DeliveryRequest) (providers.Order, error)
	GetOrder(ctx context.Context, externalID string) (providers.Order, error)
}

type Config struct {
	// PollInterval spaces provider polls and tracking-record checks.
	PollInterval time.Duration
	// CookingWindow bounds each cooking leg and doubles as the tracking
	// record TTL.
	CookingWindow time.Duration
	// DeliveryWindow bounds the delivery tracking loop.
	DeliveryWindow time.Duration
}

type Service struct {
	store    OrderStore
	tracking *tracking.Store
	queue    TaskQueue
	cooking  map[order.CookingProvider]CookingAdapter
	delivery map[order.DeliveryProvider]DeliveryAdapter
	cfg      Config
	log      *slog.Logger
}

func NewService(
	store OrderStore,
	trackingStore *tracking.Store,
	taskQueue TaskQueue,
	cooking map[order.CookingProvider]CookingAdapter,
	delivery map[order.DeliveryProvider]DeliveryAdapter,
	cfg Config,
	log *slog.Logger,
) *Service {
	return &Service{
		store:    store,
		tracking: trackingStore,
		queue:    taskQueue,
		cooking:  cooking,
		delivery: delivery,
		cfg:      cfg,
		log:      log,
	}
}

// sleep blocks for one poll interval or until ctx is cancelled.
func (s *Service) sleep(ctx context.Context) error {
	timer := time.NewTimer(s.cfg.PollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// markLeg records a terminal failure marker on one leg. Best effort: the
// marker is diagnostic state, the returned error from the worker is what
// drives the queue.
func (s *Service) markLeg(ctx context.Context, orderID, restaurantID int64, st order.Status) {
	_, err := s.tracking.Update(ctx, orderID, func(rec *tracking.Record) error {
		leg, ok := rec.Leg(restaurantID)
		if !ok {
			return ErrLegNotFound
		}
		leg.Advance(st)
		return nil
	})
	if err != nil {
		s.log.Error("mark leg", "order_id", orderID, "restaurant_id", restaurantID, "status", st, "err", err)
	}
}

// README: Order service implements creation, totals, and fulfillment hand-off.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catering/internal/types"
)

var (
	ErrNotFound   = errors.New("order not found")
	ErrBadRequest = errors.New("bad request")
	ErrBadEta     = errors.New("eta must be at least one day ahead")
)

// Pricer resolves dish prices for total calculation.
type Pricer interface {
	PricesByIDs(ctx context.Context, dishIDs []int64) (map[int64]types.Money, error)
}

// Scheduler kicks off fulfillment for a freshly created order.
type Scheduler interface {
	Schedule(ctx context.Context, orderID int64) error
}

type Service struct {
	store     *Store
	pricer    Pricer
	scheduler Scheduler
}

func NewService(store *Store, pricer Pricer, scheduler Scheduler) *Service {
	return &Service{store: store, pricer: pricer, scheduler: scheduler}
}

type CreateCommand struct {
	UserID           int64
	Items            []Item
	Eta              time.Time
	DeliveryProvider DeliveryProvider
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Order, error) {
	if len(cmd.Items) == 0 {
		return nil, fmt.Errorf("%w: order needs at least one item", ErrBadRequest)
	}
	for _, item := range cmd.Items {
		if item.Quantity < 1 || item.Quantity > 20 {
			return nil, fmt.Errorf("%w: quantity must be within 1..20", ErrBadRequest)
		}
	}
	if cmd.Eta.Before(tomorrow()) {
		return nil, ErrBadEta
	}
	switch cmd.DeliveryProvider {
	case ProviderUklon, ProviderUber:
	default:
		return nil, fmt.Errorf("%w: unknown delivery provider %q", ErrBadRequest, cmd.DeliveryProvider)
	}

	total, err := s.total(ctx, cmd.Items)
	if err != nil {
		return nil, err
	}

	o := &Order{
		UserID:           cmd.UserID,
		Status:           StatusNotStarted,
		DeliveryProvider: cmd.DeliveryProvider,
		Items:            cmd.Items,
		Eta:              cmd.Eta,
		Total:            total,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.store.Create(ctx, o); err != nil {
		return nil, err
	}

	if err := s.scheduler.Schedule(ctx, o.ID); err != nil {
		// The order row exists either way; fulfillment is what failed.
		return nil, fmt.Errorf("schedule order %d: %w", o.ID, err)
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Order, error) {
	return s.store.List(ctx)
}

func (s *Service) total(ctx context.Context, items []Item) (types.Money, error) {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.DishID
	}
	prices, err := s.pricer.PricesByIDs(ctx, ids)
	if err != nil {
		return types.Money{}, err
	}

	var total int64
	for _, item := range items {
		price, ok := prices[item.DishID]
		if !ok {
			return types.Money{}, fmt.Errorf("%w: unknown dish %d", ErrBadRequest, item.DishID)
		}
		total += price.Amount * int64(item.Quantity)
	}
	return types.Hryvnia(total), nil
}

func tomorrow() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}

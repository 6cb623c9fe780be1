// README: Order service validation tests.
package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"catering/internal/types"
)

type stubPricer struct {
	prices map[int64]types.Money
}

func (s *stubPricer) PricesByIDs(_ context.Context, dishIDs []int64) (map[int64]types.Money, error) {
	out := make(map[int64]types.Money, len(dishIDs))
	for _, id := range dishIDs {
		if m, ok := s.prices[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

// Every case below fails before the store or scheduler is touched, so
// nil collaborators are safe.
func TestCreateValidation(t *testing.T) {
	svc := NewService(nil, &stubPricer{prices: map[int64]types.Money{1: types.Hryvnia(100)}}, nil)
	eta := time.Now().UTC().AddDate(0, 0, 2)

	cases := []struct {
		name    string
		cmd     CreateCommand
		wantErr error
	}{
		{
			name:    "no items",
			cmd:     CreateCommand{Eta: eta, DeliveryProvider: ProviderUklon},
			wantErr: ErrBadRequest,
		},
		{
			name: "zero quantity",
			cmd: CreateCommand{
				Items:            []Item{{DishID: 1, Quantity: 0}},
				Eta:              eta,
				DeliveryProvider: ProviderUklon,
			},
			wantErr: ErrBadRequest,
		},
		{
			name: "quantity above cap",
			cmd: CreateCommand{
				Items:            []Item{{DishID: 1, Quantity: 21}},
				Eta:              eta,
				DeliveryProvider: ProviderUklon,
			},
			wantErr: ErrBadRequest,
		},
		{
			name: "eta today",
			cmd: CreateCommand{
				Items:            []Item{{DishID: 1, Quantity: 1}},
				Eta:              time.Now().UTC(),
				DeliveryProvider: ProviderUklon,
			},
			wantErr: ErrBadEta,
		},
		{
			name: "unknown delivery provider",
			cmd: CreateCommand{
				Items:            []Item{{DishID: 1, Quantity: 1}},
				Eta:              eta,
				DeliveryProvider: "glovo",
			},
			wantErr: ErrBadRequest,
		},
		{
			name: "unknown dish",
			cmd: CreateCommand{
				Items:            []Item{{DishID: 999, Quantity: 1}},
				Eta:              eta,
				DeliveryProvider: ProviderUber,
			},
			wantErr: ErrBadRequest,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.cmd)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestTotalSumsQuantities(t *testing.T) {
	svc := NewService(nil, &stubPricer{prices: map[int64]types.Money{
		1: types.Hryvnia(100),
		2: types.Hryvnia(250),
	}}, nil)

	total, err := svc.total(context.Background(), []Item{
		{DishID: 1, Quantity: 3},
		{DishID: 2, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total.Amount != 800 {
		t.Fatalf("expected 800, got %d", total.Amount)
	}
	if total.Currency != types.UAH {
		t.Fatalf("expected UAH, got %s", total.Currency)
	}
}

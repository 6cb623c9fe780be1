// README: Catalog store backed by PostgreSQL.
package menu

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"catering/internal/modules/order"
	"catering/internal/types"
)

var ErrRestaurantNotFound = errors.New("restaurant not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Restaurants returns the full catalog with nested dishes.
func (s *Store) Restaurants(ctx context.Context) ([]Restaurant, error) {
	rows, err := s.db.Query(ctx, `
		SELECT r.id, r.name, r.address, r.provider, d.id, d.name, d.price
		FROM restaurants r
		LEFT JOIN dishes d ON d.restaurant_id = r.id
		ORDER BY r.id, d.id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Restaurant
	index := map[int64]int{}
	for rows.Next() {
		var (
			r         Restaurant
			provider  string
			dishID    *int64
			dishName  *string
			dishPrice *int64
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Address, &provider, &dishID, &dishName, &dishPrice); err != nil {
			return nil, err
		}
		idx, ok := index[r.ID]
		if !ok {
			r.Provider = order.CookingProvider(provider)
			out = append(out, r)
			idx = len(out) - 1
			index[r.ID] = idx
		}
		if dishID != nil {
			out[idx].Dishes = append(out[idx].Dishes, Dish{
				ID:           *dishID,
				RestaurantID: r.ID,
				Name:         *dishName,
				Price:        types.Hryvnia(*dishPrice),
			})
		}
	}
	return out, rows.Err()
}

func (s *Store) CreateDish(ctx context.Context, d *Dish) error {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM restaurants WHERE id = $1)`, d.RestaurantID,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRestaurantNotFound
	}
	return s.db.QueryRow(ctx, `
		INSERT INTO dishes (restaurant_id, name, price)
		VALUES ($1, $2, $3)
		RETURNING id`,
		d.RestaurantID, d.Name, d.Price.Amount,
	).Scan(&d.ID)
}

// PricesByIDs resolves the current price for each dish id. Missing ids
// are simply absent from the result map.
func (s *Store) PricesByIDs(ctx context.Context, dishIDs []int64) (map[int64]types.Money, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, price FROM dishes WHERE id = ANY($1)`, dishIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := make(map[int64]types.Money, len(dishIDs))
	for rows.Next() {
		var id, price int64
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		prices[id] = types.Hryvnia(price)
	}
	return prices, rows.Err()
}

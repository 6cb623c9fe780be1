// README: Order store backed by PostgreSQL.
package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"catering/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Create inserts the order and its items in one transaction and fills in
// the generated id.
func (s *Store) Create(ctx context.Context, o *Order) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, status, delivery_provider, eta, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		o.UserID,
		string(o.Status),
		string(o.DeliveryProvider),
		o.Eta,
		o.Total.Amount,
		o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		return err
	}

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, dish_id, quantity)
			VALUES ($1, $2, $3)`,
			o.ID, item.DishID, item.Quantity,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) Get(ctx context.Context, id int64) (*Order, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, status, delivery_provider, eta, total, created_at
		FROM orders
		WHERE id = $1`, id,
	)
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT dish_id, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.DishID, &item.Quantity); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}

func (s *Store) List(ctx context.Context) ([]*Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, status, delivery_provider, eta, total, created_at
		FROM orders
		ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// AdvanceStatus moves the order to a later pipeline stage. The guard set
// in the WHERE clause makes the write monotonic: a stale caller holding
// an old view cannot drag the status backward, and concurrent callers
// racing to the same stage resolve to exactly one winner.
func (s *Store) AdvanceStatus(ctx context.Context, id int64, to Status) (bool, error) {
	prior := priorStatuses(to)
	if len(prior) == 0 {
		return false, fmt.Errorf("status %q is not a pipeline stage", to)
	}
	guard := make([]string, len(prior))
	for i, st := range prior {
		guard[i] = string(st)
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE orders
		SET status = $1
		WHERE id = $2 AND status = ANY($3)`,
		string(to), id, guard,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Legs partitions the order's items by restaurant, joining dish names,
// the restaurant address, and the cooking provider column.
func (s *Store) Legs(ctx context.Context, orderID int64) ([]Leg, error) {
	rows, err := s.db.Query(ctx, `
		SELECT r.id, r.name, r.address, r.provider, d.name, oi.quantity
		FROM order_items oi
		JOIN dishes d ON d.id = oi.dish_id
		JOIN restaurants r ON r.id = d.restaurant_id
		WHERE oi.order_id = $1
		ORDER BY r.id, d.id`, orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var legs []Leg
	byRestaurant := map[int64]int{}
	for rows.Next() {
		var (
			rid      int64
			name     string
			address  string
			provider string
			dish     string
			qty      int
		)
		if err := rows.Scan(&rid, &name, &address, &provider, &dish, &qty); err != nil {
			return nil, err
		}
		idx, ok := byRestaurant[rid]
		if !ok {
			legs = append(legs, Leg{
				RestaurantID:   rid,
				RestaurantName: name,
				Address:        address,
				Provider:       CookingProvider(provider),
			})
			idx = len(legs) - 1
			byRestaurant[rid] = idx
		}
		legs[idx].Items = append(legs[idx].Items, LegItem{Dish: dish, Quantity: qty})
	}
	return legs, rows.Err()
}

// DeliveredIDs returns orders already delivered; the tracking reaper uses
// it to drop their cache records.
func (s *Store) DeliveredIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id FROM orders WHERE status = $1`, string(StatusDelivered),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var status, provider string
	err := row.Scan(&o.ID, &o.UserID, &status, &provider, &o.Eta, &o.Total.Amount, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)
	o.DeliveryProvider = DeliveryProvider(provider)
	o.Total.Currency = types.UAH
	return &o, nil
}

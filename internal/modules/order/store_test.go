// README: Postgres store tests; require CATERING_TEST_DSN (run with -race).
package order

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"catering/internal/types"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("CATERING_TEST_DSN")
	if dsn == "" {
		t.Skip("CATERING_TEST_DSN not set")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(db.Close)

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS restaurants (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			address TEXT NOT NULL,
			provider TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS dishes (
			id BIGSERIAL PRIMARY KEY,
			restaurant_id BIGINT NOT NULL REFERENCES restaurants (id),
			name TEXT NOT NULL,
			price BIGINT NOT NULL,
			UNIQUE (restaurant_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			status TEXT NOT NULL DEFAULT 'not_started',
			delivery_provider TEXT NOT NULL,
			eta DATE NOT NULL,
			total BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders (id),
			dish_id BIGINT NOT NULL REFERENCES dishes (id),
			quantity INT NOT NULL
		)`,
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(ctx, stmt); err != nil {
			t.Fatalf("ensure schema: %v", err)
		}
	}
	return NewStore(db)
}

func seedDish(t *testing.T, store *Store, restaurant string, provider CookingProvider) int64 {
	t.Helper()
	ctx := context.Background()

	var restaurantID int64
	err := store.db.QueryRow(ctx, `
		INSERT INTO restaurants (name, address, provider)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET address = EXCLUDED.address
		RETURNING id`,
		restaurant, "Kyiv, Test St 1", string(provider),
	).Scan(&restaurantID)
	if err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}

	var dishID int64
	err = store.db.QueryRow(ctx, `
		INSERT INTO dishes (restaurant_id, name, price)
		VALUES ($1, $2, 10000)
		ON CONFLICT (restaurant_id, name) DO UPDATE SET price = EXCLUDED.price
		RETURNING id`,
		restaurantID, fmt.Sprintf("dish-%d", time.Now().UnixNano()),
	).Scan(&dishID)
	if err != nil {
		t.Fatalf("seed dish: %v", err)
	}
	return dishID
}

func createTestOrder(t *testing.T, store *Store, dishID int64) *Order {
	t.Helper()
	o := &Order{
		UserID:           42,
		Status:           StatusNotStarted,
		DeliveryProvider: ProviderUklon,
		Items:            []Item{{DishID: dishID, Quantity: 2}},
		Eta:              time.Now().UTC().AddDate(0, 0, 1),
		Total:            types.Hryvnia(20000),
		CreatedAt:        time.Now().UTC(),
	}
	if err := store.Create(context.Background(), o); err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func TestCreateAndGet(t *testing.T) {
	store := setupTestStore(t)
	dishID := seedDish(t, store, "store-test-silpo", ProviderSilpo)
	o := createTestOrder(t, store, dishID)

	got, err := store.Get(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusNotStarted {
		t.Fatalf("expected not_started, got %s", got.Status)
	}
	if len(got.Items) != 1 || got.Items[0].DishID != dishID || got.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
	if got.Total.Amount != 20000 {
		t.Fatalf("unexpected total: %d", got.Total.Amount)
	}
}

func TestGetMissingOrder(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.Get(context.Background(), -1); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAdvanceStatusMonotonic(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	dishID := seedDish(t, store, "store-test-silpo", ProviderSilpo)
	o := createTestOrder(t, store, dishID)

	advanced, err := store.AdvanceStatus(ctx, o.ID, StatusCooked)
	if err != nil || !advanced {
		t.Fatalf("first advance: advanced=%v err=%v", advanced, err)
	}

	// A stale poller trying to write an earlier stage must lose.
	advanced, err = store.AdvanceStatus(ctx, o.ID, StatusCooking)
	if err != nil {
		t.Fatalf("stale advance: %v", err)
	}
	if advanced {
		t.Fatal("stale write regressed the status")
	}

	got, err := store.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusCooked {
		t.Fatalf("expected cooked, got %s", got.Status)
	}
}

func TestAdvanceStatusConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	dishID := seedDish(t, store, "store-test-silpo", ProviderSilpo)
	o := createTestOrder(t, store, dishID)

	const workers = 8
	var wg sync.WaitGroup
	wins := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			advanced, err := store.AdvanceStatus(ctx, o.ID, StatusCooked)
			if err != nil {
				t.Errorf("advance: %v", err)
				return
			}
			wins <- advanced
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for w := range wins {
		if w {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}

func TestLegsGroupByRestaurant(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	silpoDish := seedDish(t, store, "store-test-silpo", ProviderSilpo)
	kfcDish := seedDish(t, store, "store-test-kfc", ProviderKFC)

	o := &Order{
		UserID:           42,
		Status:           StatusNotStarted,
		DeliveryProvider: ProviderUber,
		Items: []Item{
			{DishID: silpoDish, Quantity: 1},
			{DishID: kfcDish, Quantity: 3},
		},
		Eta:       time.Now().UTC().AddDate(0, 0, 1),
		Total:     types.Hryvnia(40000),
		CreatedAt: time.Now().UTC(),
	}
	if err := store.Create(ctx, o); err != nil {
		t.Fatalf("create order: %v", err)
	}

	legs, err := store.Legs(ctx, o.ID)
	if err != nil {
		t.Fatalf("legs: %v", err)
	}
	if len(legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(legs))
	}
	byProvider := map[CookingProvider]Leg{}
	for _, leg := range legs {
		byProvider[leg.Provider] = leg
	}
	if leg := byProvider[ProviderKFC]; len(leg.Items) != 1 || leg.Items[0].Quantity != 3 {
		t.Fatalf("unexpected kfc leg: %+v", leg)
	}
	if leg := byProvider[ProviderSilpo]; leg.Address == "" || leg.RestaurantName == "" {
		t.Fatalf("silpo leg missing join fields: %+v", leg)
	}
}

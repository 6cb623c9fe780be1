// README: Tracking record store backed by Redis, with optimistic CAS updates.
package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	recordKeyPrefix      = "orders:%d"
	cookingRefKeyPrefix  = "kfc_orders:%s"
	deliveryRefKeyPrefix = "uber_delivery:%s"

	// TTL for external-id mapping keys (orders resolve well within a day).
	refTTL = 24 * time.Hour

	// casRetries bounds the optimistic read-modify-write loop.
	casRetries = 5
)

var (
	ErrNotFound = errors.New("tracking record not found")
	ErrDecode   = errors.New("tracking record malformed")
	ErrConflict = errors.New("tracking record update conflict")
)

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

func (s *Store) Load(ctx context.Context, orderID int64) (*Record, error) {
	raw, err := s.redis.Get(ctx, recordKey(orderID)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord([]byte(raw))
}

// Save overwrites the whole record and resets the TTL.
func (s *Store) Save(ctx context.Context, orderID int64, rec *Record, ttl time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, recordKey(orderID), payload, ttl).Err()
}

func (s *Store) Delete(ctx context.Context, orderID int64) error {
	return s.redis.Del(ctx, recordKey(orderID)).Err()
}

// Update is the serialization point for every concurrent writer of one
// order's record. The store has no partial-field primitive; each write
// replaces the whole serialized record, so two legs updating a stale
// copy would silently overwrite each other. WATCH/MULTI turns that into
// a detected conflict and the loop retries with a fresh copy, bounded
// by casRetries.
func (s *Store) Update(ctx context.Context, orderID int64, fn func(*Record) error) (*Record, error) {
	key := recordKey(orderID)

	var out *Record
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		rec, err := decodeRecord([]byte(raw))
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
		payload, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		ttl, err := tx.TTL(ctx, key).Result()
		if err != nil {
			return err
		}
		if ttl < 0 {
			ttl = 0
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		if err != nil {
			return err
		}
		out = rec
		return nil
	}

	for i := 0; i < casRetries; i++ {
		err := s.redis.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		return nil, err
	}
	return nil, ErrConflict
}

type ref struct {
	InternalOrderID int64 `json:"internal_order_id"`
}

// SaveCookingRef maps a cooking provider's external order id back to the
// internal order, so the inbound webhook can resolve its context.
func (s *Store) SaveCookingRef(ctx context.Context, externalID string, orderID int64) error {
	return s.saveRef(ctx, fmt.Sprintf(cookingRefKeyPrefix, externalID), orderID)
}

func (s *Store) LookupCookingRef(ctx context.Context, externalID string) (int64, error) {
	return s.lookupRef(ctx, fmt.Sprintf(cookingRefKeyPrefix, externalID))
}

// SaveDeliveryRef is the delivery-side counterpart of SaveCookingRef.
func (s *Store) SaveDeliveryRef(ctx context.Context, externalID string, orderID int64) error {
	return s.saveRef(ctx, fmt.Sprintf(deliveryRefKeyPrefix, externalID), orderID)
}

func (s *Store) LookupDeliveryRef(ctx context.Context, externalID string) (int64, error) {
	return s.lookupRef(ctx, fmt.Sprintf(deliveryRefKeyPrefix, externalID))
}

func (s *Store) saveRef(ctx context.Context, key string, orderID int64) error {
	payload, err := json.Marshal(ref{InternalOrderID: orderID})
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, payload, refTTL).Err()
}

func (s *Store) lookupRef(ctx context.Context, key string) (int64, error) {
	raw, err := s.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	var r ref
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return r.InternalOrderID, nil
}

func decodeRecord(raw []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if rec.Version != schemaVersion || rec.Restaurants == nil {
		return nil, fmt.Errorf("%w: unsupported schema", ErrDecode)
	}
	return &rec, nil
}

func recordKey(orderID int64) string {
	return fmt.Sprintf(recordKeyPrefix, orderID)
}

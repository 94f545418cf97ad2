// internal/infrastructure/database/redis/guest_cart_store.go
package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/ecommerce-core/internal/domain/cart"
)

const guestCartPrefix = "cart:session:"

// GuestCartStore keeps anonymous session carts as Redis hashes of
// product id to quantity. Every write pushes the expiry out by ttl.
type GuestCartStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewGuestCartStore creates a session cart store
func NewGuestCartStore(rdb redis.Cmdable, ttl time.Duration) *GuestCartStore {
	return &GuestCartStore{rdb: rdb, ttl: ttl}
}

func guestCartKey(owner cart.Owner) string {
	return guestCartPrefix + owner.SessionID
}

// Lines returns the cart lines ordered by product id
func (s *GuestCartStore) Lines(ctx context.Context, owner cart.Owner) ([]cart.Line, error) {
	fields, err := s.rdb.HGetAll(ctx, guestCartKey(owner)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session cart: %w", err)
	}

	lines := make([]cart.Line, 0, len(fields))
	for field, value := range fields {
		productID, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			continue
		}
		quantity, err := strconv.Atoi(value)
		if err != nil || quantity <= 0 {
			continue
		}
		lines = append(lines, cart.Line{ProductID: uint(productID), Quantity: quantity})
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}

// Add creates the line or increments its quantity
func (s *GuestCartStore) Add(ctx context.Context, owner cart.Owner, productID uint, quantity int) error {
	key := guestCartKey(owner)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, strconv.FormatUint(uint64(productID), 10), int64(quantity))
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update session cart: %w", err)
	}
	return nil
}

// Remove deletes the line if present
func (s *GuestCartStore) Remove(ctx context.Context, owner cart.Owner, productID uint) error {
	key := guestCartKey(owner)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, key, strconv.FormatUint(uint64(productID), 10))
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update session cart: %w", err)
	}
	return nil
}

// Clear deletes the whole session cart
func (s *GuestCartStore) Clear(ctx context.Context, owner cart.Owner) error {
	if err := s.rdb.Del(ctx, guestCartKey(owner)).Err(); err != nil {
		return fmt.Errorf("failed to clear session cart: %w", err)
	}
	return nil
}

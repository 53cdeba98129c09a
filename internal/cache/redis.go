package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aman-zulfiqar/solana-trade-router/internal/constants"
	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps a capped list of recent confirmed orders and fans
// them out over pub/sub.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   0,
		}),
	}
}

// StoreOrder pushes the order onto the recent list, trims it, and
// publishes it to the live channel.
func (r *RedisStore) StoreOrder(order *models.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.LPush(ctx, constants.RedisKeyRecentOrders, data)
	pipe.LTrim(ctx, constants.RedisKeyRecentOrders, 0, constants.MaxRecentOrders-1)
	pipe.Publish(ctx, constants.PubSubChannelOrders, data)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store order: %w", err)
	}
	return nil
}

// RecentOrders returns up to limit most recent orders, newest first.
func (r *RedisStore) RecentOrders(ctx context.Context, limit int) ([]*models.Order, error) {
	if limit <= 0 || limit > constants.MaxRecentOrders {
		limit = constants.MaxRecentOrders
	}

	raw, err := r.client.LRange(ctx, constants.RedisKeyRecentOrders, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recent orders: %w", err)
	}

	orders := make([]*models.Order, 0, len(raw))
	for _, item := range raw {
		var order models.Order
		if err := json.Unmarshal([]byte(item), &order); err != nil {
			continue
		}
		orders = append(orders, &order)
	}
	return orders, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

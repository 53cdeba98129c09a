package cache

import (
	"context"
	"encoding/json"

	"github.com/aman-zulfiqar/solana-trade-router/internal/constants"
	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Subscriber consumes the live order channel.
type Subscriber struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewSubscriber(addr string, logger *logrus.Logger) *Subscriber {
	if logger == nil {
		logger = logrus.New()
	}
	return &Subscriber{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   0,
		}),
		logger: logger,
	}
}

// Subscribe blocks, delivering each published order to handler, until
// the context ends or the connection drops.
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*models.Order)) error {
	pubsub := s.client.Subscribe(ctx, constants.PubSubChannelOrders)
	defer pubsub.Close()

	s.logger.WithFields(logrus.Fields{
		"channel": constants.PubSubChannelOrders,
	}).Info("subscribed to live orders")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var order models.Order
			if err := json.Unmarshal([]byte(msg.Payload), &order); err != nil {
				s.logger.WithError(err).Warn("failed to unmarshal order")
				continue
			}
			handler(&order)
		}
	}
}

func (s *Subscriber) Close() error {
	return s.client.Close()
}

package constants

import "time"

// Redis keys
const (
	RedisKeyRecentOrders = "orders:recent"
)

// Redis Pub/Sub channels
const (
	PubSubChannelOrders = "orders:live"
)

// Limits
const (
	MaxRecentOrders = 100
)

// Polling
const (
	SignatureBatchSize  = 25
	DelayBetweenTxFetch = 500 * time.Millisecond
)

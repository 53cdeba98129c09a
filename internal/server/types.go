package server

import "github.com/aman-zulfiqar/solana-trade-router/internal/models"

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK bool `json:"ok"` // Service health status
}

// OrdersResponse wraps a list of confirmed orders
type OrdersResponse struct {
	Items []*models.Order `json:"items"`
}

// LaunchResponse describes a decoded token launch
type LaunchResponse struct {
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	URI          string `json:"uri"`
	Mint         string `json:"mint"`
	BondingCurve string `json:"bonding_curve"`
	User         string `json:"user"`
}

// PlaceOrderRequest asks the engine to place one swap order.
// Amount is a human-scaled decimal string: SOL spent on a buy, tokens
// sold on a sell.
type PlaceOrderRequest struct {
	Router           string `json:"router"` // PumpFun | Raydium | Jupiter
	Type             string `json:"type"`   // buy | sell
	TokenAddress     string `json:"token_address"`
	Amount           string `json:"amount"`
	SlippageBps      uint16 `json:"slippage_bps"`
	SellAll          bool   `json:"sell_all"`
	ComputeUnitLimit uint32 `json:"compute_unit_limit,omitempty"`
}

// PlaceOrderResponse is the outcome of a confirmed order
type PlaceOrderResponse struct {
	Signature string        `json:"signature"`
	Order     *models.Order `json:"order,omitempty"`
	TookMs    int64         `json:"took_ms"`
}

// PoolResponse is a resolved Raydium pool and its current vault price
type PoolResponse struct {
	Keys  *models.RaydiumSwapKeys `json:"keys"`
	Price string                  `json:"price"`
}

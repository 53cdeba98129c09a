package models

// OrderType is the trade direction relative to SOL.
type OrderType string

const (
	OrderBuy  OrderType = "buy"
	OrderSell OrderType = "sell"
)

// Order is the canonical trade record every router decoder produces and
// every sink consumes. Amounts are decimal strings in human units: SOL
// shifted by 9 decimals, tokens by the mint's own decimals. Timestamp
// is the chain block time in milliseconds.
type Order struct {
	Type         OrderType  `json:"type"`
	SolAmount    string     `json:"sol_amount"`
	TokenAmount  string     `json:"token_amount"`
	TxID         string     `json:"tx_id"`
	RouterName   RouterType `json:"router_name"`
	Router       string     `json:"router"`
	Fee          string     `json:"fee"`
	TokenAddress string     `json:"token_address"`
	User         string     `json:"user"`
	Timestamp    int64      `json:"timestamp"`

	// Extra carries router-specific data recovered during decoding,
	// such as the Raydium pool keys needed to trade the same pool.
	Extra *RaydiumSwapKeys `json:"extra,omitempty"`
}

// RaydiumSwapKeys are the pool accounts a Raydium V4 swap touches,
// recovered from a confirmed swap so follow-up orders can target the
// same pool without a separate discovery call.
type RaydiumSwapKeys struct {
	AmmID                string `json:"amm_id"`
	AmmAuthority         string `json:"amm_authority"`
	AmmOpenOrders        string `json:"amm_open_orders"`
	AmmTargetOrders      string `json:"amm_target_orders"`
	PoolCoinTokenAccount string `json:"pool_coin_token_account"`
	PoolPcTokenAccount   string `json:"pool_pc_token_account"`
	SerumProgram         string `json:"serum_program"`
	SerumMarket          string `json:"serum_market"`
	SerumBids            string `json:"serum_bids"`
	SerumAsks            string `json:"serum_asks"`
	SerumEventQueue      string `json:"serum_event_queue"`
	SerumCoinVault       string `json:"serum_coin_vault"`
	SerumPcVault         string `json:"serum_pc_vault"`
	SerumVaultSigner     string `json:"serum_vault_signer"`
}

// FeeBreakdown is the reconstructed cost of a confirmed transaction,
// in human-scaled SOL decimal strings.
type FeeBreakdown struct {
	BaseFee     string `json:"base_fee"`
	PriorityFee string `json:"priority_fee"`
	TotalFee    string `json:"total_fee"`
}

package models

import "strings"

// RouterType identifies which DEX router a trade went through.
type RouterType string

const (
	RouterOrca    RouterType = "Orca"
	RouterPumpFun RouterType = "PumpFun"
	RouterRaydium RouterType = "Raydium"
	RouterMeteora RouterType = "Meteora"
	RouterJupiter RouterType = "Jupiter"
	RouterSolFi   RouterType = "SolFi"
	RouterUnknown RouterType = "Unknown"
)

// RouterPrograms maps on-chain router program addresses to router names.
var RouterPrograms = map[string]RouterType{
	"9W959DqEETiGZocYWCQPaJ6sBmUzgfxXfqGeTEdp3aQP": RouterOrca,
	"whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc":  RouterOrca,
	"6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P":  RouterPumpFun,
	"675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8": RouterRaydium,
	"Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB": RouterMeteora,
	"JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4":  RouterJupiter,
	"BSfD6SHZigAfDWSjzD5Q41jw8LmKwtmjskPH9XW1mrRW": RouterSolFi,
}

// ParseRouterType resolves a router name regardless of casing.
func ParseRouterType(name string) (RouterType, bool) {
	for _, r := range RouterPrograms {
		if strings.EqualFold(string(r), name) {
			return r, true
		}
	}
	return RouterUnknown, false
}

// KnownRouter reports whether program is one of the routers this repo
// decodes and, if so, which one.
func KnownRouter(program string) (RouterType, bool) {
	r, ok := RouterPrograms[program]
	if !ok || r == RouterUnknown {
		return RouterUnknown, false
	}
	return r, true
}

// CULimits holds the compute-unit ceilings for a router, split by trade
// direction.
type CULimits struct {
	Buy  uint32
	Sell uint32
}

// RouterTradeCULimits are the per-router compute-unit ceilings applied
// when a caller does not supply an explicit limit.
var RouterTradeCULimits = map[RouterType]CULimits{
	RouterOrca:    {Buy: 80_000, Sell: 40_000},
	RouterPumpFun: {Buy: 70_000, Sell: 40_000},
	RouterRaydium: {Buy: 80_000, Sell: 40_000},
	RouterMeteora: {Buy: 80_000, Sell: 40_000},
	RouterUnknown: {Buy: 80_000, Sell: 40_000},
}

// TradeCULimit resolves the compute-unit ceiling for a router and trade
// direction, falling back to the Unknown row.
func TradeCULimit(router RouterType, orderType OrderType) uint32 {
	limits, ok := RouterTradeCULimits[router]
	if !ok {
		limits = RouterTradeCULimits[RouterUnknown]
	}
	if orderType == OrderSell {
		return limits.Sell
	}
	return limits.Buy
}

package curve

import (
	"fmt"
	"math/big"
)

// QuoteOutput prices amountIn against spot reserves and applies the
// slippage tolerance in a single floor division:
//
//	out = floor(reserveOut * amountIn * (10000 - slippageBps) / (reserveIn * 10000))
//
// Uses big.Int throughout to prevent overflow on large reserves.
func QuoteOutput(amountIn, reserveIn, reserveOut uint64, slippageBps uint16) (uint64, error) {
	if amountIn == 0 || reserveIn == 0 || reserveOut == 0 {
		return 0, fmt.Errorf("invalid inputs: amounts must be > 0")
	}
	if slippageBps >= 10000 {
		return 0, fmt.Errorf("slippage %d bps leaves no output", slippageBps)
	}

	numerator := new(big.Int).SetUint64(reserveOut)
	numerator.Mul(numerator, new(big.Int).SetUint64(amountIn))
	numerator.Mul(numerator, big.NewInt(int64(10000-slippageBps)))

	denominator := new(big.Int).SetUint64(reserveIn)
	denominator.Mul(denominator, big.NewInt(10000))

	out := numerator.Div(numerator, denominator)
	if !out.IsUint64() {
		return 0, fmt.Errorf("output amount overflow")
	}
	return out.Uint64(), nil
}

// ApplySlippage reduces an expected output by the slippage tolerance.
// slippageBps: basis points (e.g., 100 = 1%, 50 = 0.5%)
func ApplySlippage(amountOut uint64, slippageBps uint16) uint64 {
	if slippageBps >= 10000 {
		return 0
	}

	result := new(big.Int).SetUint64(amountOut)
	result.Mul(result, big.NewInt(int64(10000-slippageBps)))
	result.Div(result, big.NewInt(10000))

	return result.Uint64()
}

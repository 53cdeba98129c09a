package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SOLDecimals is the lamport scale of native SOL.
const SOLDecimals = 9

// UnshiftAmount converts a raw base-unit amount to a human-scaled
// decimal string, e.g. 1500000000 lamports with 9 decimals -> "1.5".
func UnshiftAmount(raw uint64, decimals int32) string {
	return decimal.NewFromUint64(raw).Shift(-decimals).String()
}

// ShiftAmount converts a human-scaled decimal string to raw base units,
// truncating anything below the smallest unit.
func ShiftAmount(human string, decimals int32) (uint64, error) {
	d, err := decimal.NewFromString(human)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", human, err)
	}
	shifted := d.Shift(decimals).Truncate(0)
	if shifted.IsNegative() {
		return 0, fmt.Errorf("amount %q is negative", human)
	}
	return shifted.BigInt().Uint64(), nil
}

// UnshiftLamports converts lamports to a SOL decimal string.
func UnshiftLamports(lamports uint64) string {
	return UnshiftAmount(lamports, SOLDecimals)
}

// MicroLamportFeeDecimals is the combined scale of a priority fee:
// micro-lamports per unit times units, 6 + 9 decimals below one SOL.
const MicroLamportFeeDecimals = 15

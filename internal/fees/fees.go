package fees

import (
	"fmt"

	"github.com/aman-zulfiqar/solana-trade-router/internal/codec"
	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/rpc"
	"github.com/shopspring/decimal"
)

// ComputeBudgetProgramID is the native compute budget program.
const ComputeBudgetProgramID = "ComputeBudget111111111111111111111111111111"

// Single-byte instruction tags of the compute budget program.
const (
	discSetComputeUnitLimit = "02"
	discSetComputeUnitPrice = "03"
)

// defaultComputeUnitLimit applies when a transaction set a price but no
// explicit unit limit.
const defaultComputeUnitLimit uint64 = 200_000

// Reconstruct derives the fee breakdown of a confirmed transaction from
// its meta and compute budget instructions. The base fee is meta.fee in
// SOL. The priority fee is micro-lamports per unit times the unit
// limit; it is zero when the transaction set no price or consumed no
// compute units.
func Reconstruct(tx *rpc.TransactionResult) (*models.FeeBreakdown, error) {
	if tx == nil || tx.Meta == nil {
		return nil, fmt.Errorf("transaction has no meta")
	}

	baseFee := decimal.NewFromUint64(tx.Meta.Fee).Shift(-models.SOLDecimals)

	unitPrice, unitLimit, err := computeBudgetValues(tx)
	if err != nil {
		return nil, err
	}

	priorityFee := decimal.Zero
	consumed := tx.Meta.ComputeUnitsConsumed
	if unitPrice > 0 && consumed != nil && *consumed > 0 {
		priorityFee = decimal.NewFromUint64(unitPrice).
			Mul(decimal.NewFromUint64(unitLimit)).
			Shift(-models.MicroLamportFeeDecimals)
	}

	return &models.FeeBreakdown{
		BaseFee:     baseFee.String(),
		PriorityFee: priorityFee.String(),
		TotalFee:    baseFee.Add(priorityFee).String(),
	}, nil
}

// computeBudgetValues scans top-level instructions for the compute
// budget program's price and limit settings.
func computeBudgetValues(tx *rpc.TransactionResult) (unitPrice, unitLimit uint64, err error) {
	unitLimit = defaultComputeUnitLimit
	if tx.Transaction == nil {
		return 0, unitLimit, nil
	}

	for _, instr := range tx.Transaction.Message.Instructions {
		if instr.ProgramID != ComputeBudgetProgramID || instr.Data == "" {
			continue
		}

		data, err := codec.DecodeBase58(instr.Data)
		if err != nil {
			return 0, 0, fmt.Errorf("compute budget instruction: %w", err)
		}
		disc, err := codec.Discriminator1(data)
		if err != nil {
			return 0, 0, fmt.Errorf("compute budget instruction: %w", err)
		}

		switch disc {
		case discSetComputeUnitLimit:
			// u8 tag + u32 units
			v, err := codec.ReadU32LE(data, 1)
			if err != nil {
				return 0, 0, fmt.Errorf("set compute unit limit: %w", err)
			}
			unitLimit = uint64(v)
		case discSetComputeUnitPrice:
			// u8 tag + u64 micro-lamports
			v, err := codec.ReadU64LE(data, 1)
			if err != nil {
				return 0, 0, fmt.Errorf("set compute unit price: %w", err)
			}
			unitPrice = v
		}
	}
	return unitPrice, unitLimit, nil
}

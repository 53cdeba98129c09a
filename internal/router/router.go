package router

import (
	"context"
	"errors"

	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/gagliardetto/solana-go"
)

// ErrNonZeroRemainder is returned when a full sell asks to close the
// token account but the account would not end the trade empty.
var ErrNonZeroRemainder = errors.New("router: token account balance would not be zero after close")

// SwapRequest describes one swap to build, denominated in raw base
// units: lamports on a buy, token base units on a sell.
type SwapRequest struct {
	Type        models.OrderType
	TokenMint   solana.PublicKey
	User        solana.PublicKey
	AmountIn    uint64
	SlippageBps uint16

	// SellAll closes the token account after the sell. The sell must
	// drain the account exactly; a remainder is a hard error.
	SellAll bool

	// PoolKeys carries the Raydium pool accounts when the target pool
	// is already known, e.g. recovered from a prior decoded swap.
	PoolKeys *models.RaydiumSwapKeys
}

// BuiltInstructionSet is a ready-to-assemble swap: the ordered
// instructions plus the compute-unit ceiling the transaction should
// request.
type BuiltInstructionSet struct {
	Router       models.RouterType
	Instructions []solana.Instruction
	ComputeUnits uint32
}

// Builder turns a SwapRequest into the instruction sequence for one
// specific router.
type Builder interface {
	Build(ctx context.Context, req SwapRequest) (*BuiltInstructionSet, error)
}

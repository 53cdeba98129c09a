package jupiter

import (
	"fmt"

	"github.com/aman-zulfiqar/solana-trade-router/internal/codec"
	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/rpc"
	"github.com/gagliardetto/solana-go"
)

// SwapEvent is the per-hop route event Jupiter emits through its event
// authority.
type SwapEvent struct {
	Amm          solana.PublicKey
	InputMint    solana.PublicKey
	InputAmount  uint64
	OutputMint   solana.PublicKey
	OutputAmount uint64
}

// ParseSwap decodes the Jupiter V6 instruction at index into an order.
// A route crosses one or more AMMs, each emitting an event inner
// instruction addressed to the event authority; the trade's input is
// the first hop's input and its output the last hop's output. Routes
// that do not touch SOL on either end yield no order.
func ParseSwap(tx *rpc.TransactionResult, index int, instr rpc.ParsedInstruction) (*models.Order, error) {
	data, err := codec.DecodeBase58(instr.Data)
	if err != nil {
		return nil, err
	}
	disc, err := codec.Discriminator8(data)
	if err != nil {
		return nil, nil
	}
	switch disc {
	case DiscRoute, DiscSharedAccountsRoute:
	default:
		return nil, nil
	}

	inner, found, err := tx.InnerInstructionsOf(index)
	if err != nil || !found {
		return nil, nil
	}

	events, err := collectRouteEvents(inner)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	first, last := events[0], events[len(events)-1]

	var orderType models.OrderType
	var solRaw, tokenRaw uint64
	var tokenMint solana.PublicKey
	switch {
	case first.InputMint.String() == WSOLMint:
		orderType = models.OrderBuy
		solRaw, tokenRaw = first.InputAmount, last.OutputAmount
		tokenMint = last.OutputMint
	case last.OutputMint.String() == WSOLMint:
		orderType = models.OrderSell
		tokenRaw, solRaw = first.InputAmount, last.OutputAmount
		tokenMint = first.InputMint
	default:
		return nil, nil
	}

	decimals, ok := mintDecimals(tx, tokenMint.String())
	if !ok {
		return nil, nil
	}

	return &models.Order{
		Type:         orderType,
		SolAmount:    models.UnshiftLamports(solRaw),
		TokenAmount:  models.UnshiftAmount(tokenRaw, decimals),
		RouterName:   models.RouterJupiter,
		Router:       ProgramID.String(),
		TokenAddress: tokenMint.String(),
		User:         tx.Signer(),
	}, nil
}

// collectRouteEvents decodes every inner instruction addressed to the
// event authority, in route order.
func collectRouteEvents(inner []rpc.ParsedInstruction) ([]*SwapEvent, error) {
	var events []*SwapEvent
	for _, instr := range inner {
		if instr.ProgramID != ProgramID.String() || instr.Data == "" {
			continue
		}
		if !hasAccount(instr, EventAuthority.String()) {
			continue
		}
		data, err := codec.DecodeBase58(instr.Data)
		if err != nil {
			continue
		}
		var ev SwapEvent
		if err := codec.DecodeEvent(data, &ev); err != nil {
			return nil, fmt.Errorf("jupiter route event: %w", err)
		}
		events = append(events, &ev)
	}
	return events, nil
}

func hasAccount(instr rpc.ParsedInstruction, pubkey string) bool {
	for _, a := range instr.Accounts {
		if a == pubkey {
			return true
		}
	}
	return false
}

// mintDecimals resolves a mint's decimal scale from the transaction's
// balance records.
func mintDecimals(tx *rpc.TransactionResult, mint string) (int32, bool) {
	if tx.Meta == nil {
		return 0, false
	}
	for _, bal := range tx.Meta.PostTokenBalances {
		if bal.Mint == mint {
			return int32(bal.UITokenAmount.Decimals), true
		}
	}
	for _, bal := range tx.Meta.PreTokenBalances {
		if bal.Mint == mint {
			return int32(bal.UITokenAmount.Decimals), true
		}
	}
	return 0, false
}

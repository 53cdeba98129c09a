package parser

import (
	"github.com/aman-zulfiqar/solana-trade-router/internal/codec"
	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/pumpfun"
	"github.com/aman-zulfiqar/solana-trade-router/internal/rpc"
)

// SolFiProgramID is the fixed-protocol router decoded as SolFi. It
// emits trade events in the PumpFun layout under its own program and
// discriminators.
const SolFiProgramID = "BSfD6SHZigAfDWSjzD5Q41jw8LmKwtmjskPH9XW1mrRW"

const (
	solFiDiscBuy  = "52e177e74e1d2d46"
	solFiDiscSell = "5d583c225b1256c5"
)

func parseSolFiSwap(tx *rpc.TransactionResult, index int, instr rpc.ParsedInstruction) (*models.Order, error) {
	data, err := codec.DecodeBase58(instr.Data)
	if err != nil {
		return nil, err
	}
	disc, err := codec.Discriminator8(data)
	if err != nil {
		return nil, nil
	}
	switch disc {
	case solFiDiscBuy, solFiDiscSell:
	default:
		return nil, nil
	}

	inner, found, err := tx.InnerInstructionsOf(index)
	if err != nil || !found || len(inner) == 0 {
		return nil, nil
	}

	last := inner[len(inner)-1]
	eventData, err := codec.DecodeBase58(last.Data)
	if err != nil {
		return nil, err
	}
	ev, err := pumpfun.DecodeTradeEvent(eventData)
	if err != nil {
		return nil, err
	}

	return pumpfun.TradeEventToOrder(ev, models.RouterSolFi, SolFiProgramID), nil
}

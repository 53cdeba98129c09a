package pumpfun

import (
	"fmt"

	"github.com/aman-zulfiqar/solana-trade-router/internal/codec"
	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/rpc"
	"github.com/gagliardetto/solana-go"
)

// TradeEvent is the event the program appends as the last inner
// instruction of every buy and sell.
type TradeEvent struct {
	Mint                 solana.PublicKey
	SolAmount            uint64
	TokenAmount          uint64
	IsBuy                bool
	User                 solana.PublicKey
	Timestamp            int64
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
}

// CreateEvent is emitted when a new token launches on the curve.
type CreateEvent struct {
	Name         string
	Symbol       string
	URI          string
	Mint         solana.PublicKey
	BondingCurve solana.PublicKey
	User         solana.PublicKey
}

// DecodeTradeEvent decodes a trade event from raw inner instruction
// data. The BSfD program emits the same layout, so its decoder reuses
// this.
func DecodeTradeEvent(data []byte) (*TradeEvent, error) {
	var ev TradeEvent
	if err := codec.DecodeEvent(data, &ev); err != nil {
		return nil, fmt.Errorf("pumpfun trade event: %w", err)
	}
	return &ev, nil
}

// TradeEventToOrder maps a decoded trade event onto the canonical
// order shape.
func TradeEventToOrder(ev *TradeEvent, routerName models.RouterType, routerProgram string) *models.Order {
	orderType := models.OrderSell
	if ev.IsBuy {
		orderType = models.OrderBuy
	}
	return &models.Order{
		Type:         orderType,
		SolAmount:    models.UnshiftLamports(ev.SolAmount),
		TokenAmount:  models.UnshiftAmount(ev.TokenAmount, TokenDecimals),
		RouterName:   routerName,
		Router:       routerProgram,
		TokenAddress: ev.Mint.String(),
		User:         ev.User.String(),
	}
}

// ParseSwap decodes the PumpFun instruction at index into an order.
// Instructions that are not buys or sells, and swaps whose event inner
// instruction is missing, produce no order rather than an error.
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
	case DiscBuy, DiscSell:
	default:
		return nil, nil
	}

	inner, found, err := tx.InnerInstructionsOf(index)
	if err != nil || !found || len(inner) == 0 {
		return nil, nil
	}

	// The trade event rides in the last inner instruction.
	last := inner[len(inner)-1]
	eventData, err := codec.DecodeBase58(last.Data)
	if err != nil {
		return nil, err
	}
	ev, err := DecodeTradeEvent(eventData)
	if err != nil {
		return nil, err
	}

	return TradeEventToOrder(ev, models.RouterPumpFun, ProgramID.String()), nil
}

// ParseCreate decodes a token launch from the instruction at index.
// Returns nil when the instruction is not a create.
func ParseCreate(tx *rpc.TransactionResult, index int, instr rpc.ParsedInstruction) (*CreateEvent, error) {
	data, err := codec.DecodeBase58(instr.Data)
	if err != nil {
		return nil, err
	}
	disc, err := codec.Discriminator8(data)
	if err != nil || disc != DiscCreate {
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

	var ev CreateEvent
	if err := codec.DecodeEvent(eventData, &ev); err != nil {
		return nil, fmt.Errorf("pumpfun create event: %w", err)
	}
	return &ev, nil
}

// Withdrawal records the program draining a completed curve's
// remaining liquidity, the step before the pool migrates to Raydium.
type Withdrawal struct {
	Mint string `json:"mint"`
	User string `json:"user"`
}

// ParseWithdraw decodes a liquidity withdrawal from the instruction at
// index. Returns nil when the instruction is not a withdraw.
func ParseWithdraw(tx *rpc.TransactionResult, index int, instr rpc.ParsedInstruction) (*Withdrawal, error) {
	data, err := codec.DecodeBase58(instr.Data)
	if err != nil {
		return nil, err
	}
	disc, err := codec.Discriminator8(data)
	if err != nil || disc != DiscWithdraw {
		return nil, nil
	}

	// Accounts: global, last-withdraw, mint, bonding curve, curve ATA,
	// recipient ATA, authority.
	if len(instr.Accounts) < 7 {
		return nil, nil
	}
	return &Withdrawal{
		Mint: instr.Accounts[2],
		User: instr.Accounts[6],
	}, nil
}

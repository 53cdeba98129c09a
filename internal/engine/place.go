package engine

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/parser"
	"github.com/aman-zulfiqar/solana-trade-router/internal/router"
	"github.com/aman-zulfiqar/solana-trade-router/internal/rpc"
	"github.com/aman-zulfiqar/solana-trade-router/internal/spl"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// PlaceRequest describes one order to place.
type PlaceRequest struct {
	Router models.RouterType
	Swap   router.SwapRequest

	// ComputeUnitLimit overrides the builder's estimate when nonzero.
	ComputeUnitLimit uint32
}

// PlaceResult is the outcome of a confirmed order.
type PlaceResult struct {
	Signature string
	Order     *models.Order
	Duration  time.Duration
}

// PlaceOrder runs one order end to end. On success the result carries
// the canonical order re-decoded from the confirmed transaction; any
// other outcome, including a confirmation no decoder can verify, is a
// terminal error.
func (e *Engine) PlaceOrder(ctx context.Context, req PlaceRequest) (*PlaceResult, error) {
	started := time.Now()

	builder, ok := e.builders[req.Router]
	if !ok {
		return nil, fmt.Errorf("engine: no builder for router %q", req.Router)
	}

	swap := req.Swap
	if swap.User.IsZero() {
		swap.User = e.wallet.PublicKey()
	}

	built, err := builder.Build(ctx, swap)
	if err != nil {
		return nil, err
	}

	// Compile the bare trade message once so the fee estimate samples
	// the accounts this transaction will actually touch.
	draft, err := solana.NewTransaction(built.Instructions, solana.Hash{}, solana.TransactionPayer(swap.User))
	if err != nil {
		return nil, fmt.Errorf("failed to compile fee estimation message: %w", err)
	}
	accounts := make([]string, 0, len(draft.Message.AccountKeys))
	for _, key := range draft.Message.AccountKeys {
		accounts = append(accounts, key.String())
	}

	unitPrice, err := e.EstimateComputeUnitPrice(ctx, accounts)
	if err != nil {
		return nil, err
	}
	// The ceiling gates the market estimate; a configured accelerator
	// is the operator's own choice and may push past it.
	if unitPrice > MaxComputeUnitPrice {
		return nil, fmt.Errorf("%w: %d micro-lamports", ErrComputeUnitPriceTooHigh, unitPrice)
	}
	if e.cfg.Accelerate > 0 {
		unitPrice = uint64(float64(unitPrice) * e.cfg.Accelerate)
	}

	unitLimit := req.ComputeUnitLimit
	if unitLimit == 0 {
		unitLimit = built.ComputeUnits
	}
	if unitLimit == 0 {
		unitLimit = models.TradeCULimit(built.Router, swap.Type)
	}

	instructions := make([]solana.Instruction, 0, len(built.Instructions)+2)
	instructions = append(instructions, spl.NewSetComputeUnitLimitIx(unitLimit))
	if unitPrice > 0 {
		instructions = append(instructions, spl.NewSetComputeUnitPriceIx(unitPrice))
	}
	instructions = append(instructions, built.Instructions...)

	tx, err := e.wallet.BuildTransaction(ctx, swap.User, instructions)
	if err != nil {
		return nil, err
	}
	if err := e.wallet.SignTx(tx); err != nil {
		return nil, err
	}

	txBytes, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(txBytes)

	e.logger.WithFields(logrus.Fields{
		"router":     built.Router,
		"type":       swap.Type,
		"unit_price": unitPrice,
		"unit_limit": unitLimit,
	}).Info("submitting order")

	signature, err := e.broadcaster.Send(ctx, encoded, e.cfg.SkipPreflight)
	if err != nil {
		return nil, err
	}

	// Let the transaction propagate before polling.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(settleDelay):
	}

	confirmed, err := e.awaitConfirmation(ctx, signature)
	if err != nil {
		return nil, err
	}

	// A confirmed transaction the decoders cannot verify fails the
	// order. Callers get either a canonical trade or a terminal error.
	order, err := parser.Classify(confirmed)
	if err != nil {
		return nil, fmt.Errorf("order %s confirmed but could not be decoded: %w", signature, err)
	}
	if order == nil {
		return nil, fmt.Errorf("order %s confirmed but no router decoder recognized it", signature)
	}

	e.publish(order)

	return &PlaceResult{
		Signature: signature,
		Order:     order,
		Duration:  time.Since(started),
	}, nil
}

// awaitConfirmation waits for the submitted transaction through the
// wallet's signature-status polling, then fetches the parsed
// transaction for verification. A landed transaction whose meta
// carries an error fails the order.
func (e *Engine) awaitConfirmation(ctx context.Context, signature string) (*rpc.TransactionResult, error) {
	if err := e.wallet.AwaitConfirmation(ctx, signature, confirmTimeout, confirmPollInterval); err != nil {
		return nil, err
	}

	tx, err := e.client.GetParsedTransaction(ctx, signature)
	if err != nil {
		return nil, err
	}
	if tx.Meta != nil && tx.Meta.Err != nil {
		return nil, fmt.Errorf("transaction %s failed on-chain: %v", signature, tx.Meta.Err)
	}
	return tx, nil
}

// EstimateComputeUnitPrice averages the nonzero recent priority fee
// samples, in micro-lamports per compute unit. No nonzero samples
// means no priority fee.
func (e *Engine) EstimateComputeUnitPrice(ctx context.Context, accounts []string) (uint64, error) {
	samples, err := e.client.GetRecentPrioritizationFees(ctx, accounts)
	if err != nil {
		return 0, err
	}

	var sum, count uint64
	for _, s := range samples {
		if s.PrioritizationFee == 0 {
			continue
		}
		sum += s.PrioritizationFee
		count++
	}
	if count == 0 {
		return 0, nil
	}
	return sum / count, nil
}

func (e *Engine) publish(order *models.Order) {
	for _, sink := range e.sinks {
		if err := sink.StoreOrder(order); err != nil {
			e.logger.WithFields(logrus.Fields{
				"tx_id": order.TxID,
				"error": err,
			}).Warn("order sink failed")
		}
	}
}

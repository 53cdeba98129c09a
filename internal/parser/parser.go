package parser

import (
	"context"
	"fmt"

	"github.com/aman-zulfiqar/solana-trade-router/internal/fees"
	"github.com/aman-zulfiqar/solana-trade-router/internal/jupiter"
	"github.com/aman-zulfiqar/solana-trade-router/internal/meteora"
	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/pumpfun"
	"github.com/aman-zulfiqar/solana-trade-router/internal/raydium"
	"github.com/aman-zulfiqar/solana-trade-router/internal/rpc"
	"github.com/sirupsen/logrus"
)

// decodeFunc decodes one top-level instruction. Returning (nil, nil)
// means the instruction belongs to the router but carries no trade.
type decodeFunc func(tx *rpc.TransactionResult, index int, instr rpc.ParsedInstruction) (*models.Order, error)

var decoders = map[string]decodeFunc{
	pumpfun.ProgramID.String(): pumpfun.ParseSwap,
	raydium.ProgramID.String(): raydium.ParseSwap,
	meteora.ProgramID.String(): meteora.ParseSwap,
	jupiter.ProgramID.String(): jupiter.ParseSwap,
	SolFiProgramID:             parseSolFiSwap,
}

// Dispatcher classifies confirmed transactions across every router
// this repo understands.
type Dispatcher struct {
	Client *rpc.Client
	Logger *logrus.Logger
}

func NewDispatcher(client *rpc.Client, logger *logrus.Logger) *Dispatcher {
	if logger == nil {
		logger = logrus.New()
	}
	return &Dispatcher{Client: client, Logger: logger}
}

// Classify walks the transaction's top-level instructions in order and
// returns the order decoded from the first instruction any router
// decoder claims. Transactions no decoder claims, and failed
// transactions, come back as (nil, nil).
func Classify(tx *rpc.TransactionResult) (*models.Order, error) {
	if tx == nil || tx.Transaction == nil {
		return nil, fmt.Errorf("transaction is empty")
	}
	if tx.Meta != nil && tx.Meta.Err != nil {
		return nil, nil
	}

	for i, instr := range tx.Transaction.Message.Instructions {
		decode, ok := decoders[instr.ProgramID]
		if !ok {
			continue
		}
		order, err := decode(tx, i, instr)
		if err != nil {
			// A malformed instruction for one router must not hide a
			// clean swap elsewhere in the same transaction.
			logrus.WithFields(logrus.Fields{
				"program": instr.ProgramID,
				"index":   i,
				"error":   err,
			}).Debug("decoder rejected instruction, continuing")
			continue
		}
		if order == nil {
			continue
		}
		if err := finishOrder(order, tx); err != nil {
			return nil, err
		}
		return order, nil
	}
	return nil, nil
}

// finishOrder fills the fields common to every router: signature,
// block time and the reconstructed fee.
func finishOrder(order *models.Order, tx *rpc.TransactionResult) error {
	order.TxID = tx.Signature()
	// Nodes omit blockTime for transactions they have not yet dated;
	// the order keeps a zero timestamp until a later fetch carries one.
	if tx.BlockTime != nil {
		order.Timestamp = *tx.BlockTime * 1000
	}
	if order.User == "" {
		order.User = tx.Signer()
	}

	breakdown, err := fees.Reconstruct(tx)
	if err != nil {
		return fmt.Errorf("fee reconstruction: %w", err)
	}
	order.Fee = breakdown.TotalFee
	return nil
}

// ClassifySignature fetches a transaction through the gateway and
// classifies it.
func (d *Dispatcher) ClassifySignature(ctx context.Context, signature string) (*models.Order, error) {
	tx, err := d.Client.GetParsedTransaction(ctx, signature)
	if err != nil {
		return nil, err
	}
	order, err := Classify(tx)
	if err != nil {
		return nil, err
	}
	if order == nil {
		d.Logger.WithFields(logrus.Fields{
			"signature": signature,
		}).Debug("transaction is not a recognized swap")
	}
	return order, nil
}

// FindLaunch scans a transaction for a PumpFun token launch.
func FindLaunch(tx *rpc.TransactionResult) (*pumpfun.CreateEvent, error) {
	if tx == nil || tx.Transaction == nil {
		return nil, fmt.Errorf("transaction is empty")
	}
	for i, instr := range tx.Transaction.Message.Instructions {
		if instr.ProgramID != pumpfun.ProgramID.String() {
			continue
		}
		ev, err := pumpfun.ParseCreate(tx, i, instr)
		if err != nil {
			return nil, err
		}
		if ev != nil {
			return ev, nil
		}
	}
	return nil, nil
}

// FindMigration scans a transaction for a PumpFun liquidity
// withdrawal, the signal that a graduated curve is moving to Raydium.
func FindMigration(tx *rpc.TransactionResult) (*pumpfun.Withdrawal, error) {
	if tx == nil || tx.Transaction == nil {
		return nil, fmt.Errorf("transaction is empty")
	}
	for i, instr := range tx.Transaction.Message.Instructions {
		if instr.ProgramID != pumpfun.ProgramID.String() {
			continue
		}
		w, err := pumpfun.ParseWithdraw(tx, i, instr)
		if err != nil {
			return nil, err
		}
		if w != nil {
			return w, nil
		}
	}
	return nil, nil
}

// FindLiquidityAdd scans a transaction for a Raydium V4 deposit.
func FindLiquidityAdd(tx *rpc.TransactionResult) (*raydium.LiquidityAdd, error) {
	if tx == nil || tx.Transaction == nil {
		return nil, fmt.Errorf("transaction is empty")
	}
	for i, instr := range tx.Transaction.Message.Instructions {
		if instr.ProgramID != raydium.ProgramID.String() {
			continue
		}
		add, err := raydium.ParseAddLiquidity(tx, i, instr)
		if err != nil {
			return nil, err
		}
		if add != nil {
			return add, nil
		}
	}
	return nil, nil
}

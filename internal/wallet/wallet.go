package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	projectrpc "github.com/aman-zulfiqar/solana-trade-router/internal/rpc"
	"github.com/gagliardetto/solana-go"
)

// ErrConfirmationTimeout means a submitted transaction did not reach
// the wallet's commitment within the polling window.
var ErrConfirmationTimeout = errors.New("wallet: transaction confirmation timeout")

// SignTx signs a transaction with the wallet's private key.
func (w *Wallet) SignTx(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.pub) {
			return &w.priv
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

// BuildTransaction compiles instructions against a fresh blockhash.
// A zero payer falls back to the wallet itself.
func (w *Wallet) BuildTransaction(
	ctx context.Context,
	payer solana.PublicKey,
	instructions []solana.Instruction,
) (*solana.Transaction, error) {
	if payer.IsZero() {
		payer = w.pub
	}

	blockhash, err := w.latestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

func (w *Wallet) latestBlockhash(ctx context.Context) (solana.Hash, error) {
	blockhash, err := w.rpc.GetLatestBlockhash(ctx, w.cfg.PreflightCommitment)
	if err != nil {
		return solana.Hash{}, err
	}
	hash, err := solana.HashFromBase58(blockhash)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("invalid blockhash format: %w", err)
	}
	return hash, nil
}

// AwaitConfirmation polls signature statuses until the transaction
// reaches the wallet's commitment or the window closes. A status that
// lands carrying an on-chain error fails immediately.
func (w *Wallet) AwaitConfirmation(ctx context.Context, signature string, timeout, interval time.Duration) error {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		landed, err := w.signatureStatus(ctx, signature)
		if err != nil {
			return err
		}
		if landed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("%w: %s after %v", ErrConfirmationTimeout, signature, timeout)
}

// signatureStatus reports whether the signature has reached the
// wallet's default commitment.
func (w *Wallet) signatureStatus(ctx context.Context, signature string) (bool, error) {
	var resp struct {
		Result struct {
			Value []*struct {
				Slot               uint64      `json:"slot"`
				Err                interface{} `json:"err"`
				ConfirmationStatus string      `json:"confirmationStatus"`
			} `json:"value"`
		} `json:"result"`
		Error *projectrpc.RPCError `json:"error"`
	}

	params := []any{
		[]string{signature},
		map[string]any{"searchTransactionHistory": true},
	}

	if err := w.rpc.Call(ctx, "getSignatureStatuses", params, &resp); err != nil {
		return false, err
	}
	if resp.Error != nil {
		return false, fmt.Errorf("getSignatureStatuses error: %s", resp.Error.Message)
	}
	if len(resp.Result.Value) == 0 || resp.Result.Value[0] == nil {
		return false, nil
	}

	status := resp.Result.Value[0]
	if status.Err != nil {
		return false, fmt.Errorf("transaction %s failed on-chain: %v", signature, status.Err)
	}

	switch w.cfg.DefaultCommitment {
	case "processed":
		return status.ConfirmationStatus != "", nil
	case "finalized":
		return status.ConfirmationStatus == "finalized", nil
	default:
		return status.ConfirmationStatus == "confirmed" || status.ConfirmationStatus == "finalized", nil
	}
}

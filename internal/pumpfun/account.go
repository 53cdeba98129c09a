package pumpfun

import (
	"context"
	"fmt"

	"github.com/aman-zulfiqar/solana-trade-router/internal/codec"
	"github.com/aman-zulfiqar/solana-trade-router/internal/rpc"
	"github.com/gagliardetto/solana-go"
)

// BondingCurveAccount is the on-chain state of one token's curve.
type BondingCurveAccount struct {
	Discriminator        uint64
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
}

// Graduated reports whether the curve has completed and trading moved
// to an external pool.
func (a *BondingCurveAccount) Graduated() bool {
	return a.Complete || a.VirtualTokenReserves == 0
}

// FetchBondingCurve loads and decodes the bonding curve account for a
// mint. A mint with no curve account comes back as (nil, zero, nil).
func FetchBondingCurve(ctx context.Context, client *rpc.Client, mint solana.PublicKey) (*BondingCurveAccount, solana.PublicKey, error) {
	curveAddr, _, err := FindBondingCurve(mint)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("failed to derive bonding curve: %w", err)
	}

	raw, err := client.TryGetRawAccountInfo(ctx, curveAddr.String())
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	if raw == nil {
		return nil, curveAddr, nil
	}

	var acct BondingCurveAccount
	if err := codec.DecodeBorsh(raw, &acct); err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("bonding curve account: %w", err)
	}
	return &acct, curveAddr, nil
}

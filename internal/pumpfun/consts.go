package pumpfun

import "github.com/gagliardetto/solana-go"

var (
	// ProgramID is the PumpFun bonding curve program
	ProgramID = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")

	// GlobalAccount holds the program's global config
	GlobalAccount = solana.MustPublicKeyFromBase58("4wTV1YmiEkRvAtNtsSGPtUrqRYQMe5SKy2uB4Jjaxnjf")

	// FeeRecipient receives the protocol fee on every trade
	FeeRecipient = solana.MustPublicKeyFromBase58("CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM")

	// EventAuthority is the account trade events are emitted through
	EventAuthority = solana.MustPublicKeyFromBase58("Ce6TQqeHC9p8KetsN6JsjHK7UTZk7nasjjnr7XxXp9F1")
)

// Instruction discriminators (first 8 bytes, hex)
const (
	DiscBuy      = "66063d1201daebea"
	DiscSell     = "33e685a4017f83ad"
	DiscCreate   = "181ec828051c0777"
	DiscWithdraw = "b712469c946da122"
)

// TokenDecimals is the fixed decimal scale of every PumpFun mint.
const TokenDecimals = 6

const bondingCurveSeed = "bonding-curve"

// FindBondingCurve derives the bonding curve PDA for a mint.
func FindBondingCurve(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{[]byte(bondingCurveSeed), mint.Bytes()},
		ProgramID,
	)
}

package jupiter

import "github.com/gagliardetto/solana-go"

var (
	// ProgramID is the Jupiter V6 aggregator program
	ProgramID = solana.MustPublicKeyFromBase58("JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4")

	// EventAuthority is the account route events are emitted through
	EventAuthority = solana.MustPublicKeyFromBase58("D8cy77BBepLMngZx6ZukaTff5hCt1HrWyKk3Hnd9oitf")
)

// Instruction discriminators (first 8 bytes, hex)
const (
	DiscRoute               = "e517cb977ae3ad2a"
	DiscSharedAccountsRoute = "c1209b3341d69c81"
)

// WSOLMint is the wrapped SOL mint address.
const WSOLMint = "So11111111111111111111111111111111111111112"

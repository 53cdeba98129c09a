package raydium

import "github.com/gagliardetto/solana-go"

var (
	// ProgramID is the Raydium Liquidity Pool V4 program
	ProgramID = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")

	// AuthorityV4 is the fixed AMM authority shared by every V4 pool
	AuthorityV4 = solana.MustPublicKeyFromBase58("5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1")
)

// Single-byte instruction tags
const (
	DiscSwap         = "09"
	DiscAddLiquidity = "01"
)

// Account positions within a V4 swap instruction.
const (
	idxAmmID           = 1
	idxAmmOpenOrders   = 3
	idxAmmTargetOrders = 4
	idxPoolCoin        = 5
	idxPoolPc          = 6
	idxSerumProgram    = 7
	idxSerumMarket     = 8
	idxSerumBids       = 9
	idxSerumAsks       = 10
	idxSerumEventQueue = 11
	idxSerumCoinVault  = 12
	idxSerumPcVault    = 13
	idxSerumVaultSign  = 14

	swapAccountCount = 18
)

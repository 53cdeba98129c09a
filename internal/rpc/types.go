package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// RPCError represents a JSON-RPC error response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// ErrInnerInstructionsNotFound is returned when a transaction carries
// inner instruction metadata but recorded no set for the requested
// top-level index.
var ErrInnerInstructionsNotFound = errors.New("rpc: inner instructions not found for index")

// SignatureInfo represents a transaction signature from getSignaturesForAddress
type SignatureInfo struct {
	Signature string      `json:"signature"`
	Slot      int64       `json:"slot"`
	Err       interface{} `json:"err"`
	BlockTime int64       `json:"blockTime"`
}

// SignaturesResponse is the response from getSignaturesForAddress
type SignaturesResponse struct {
	Result []SignatureInfo `json:"result"`
	Error  *RPCError       `json:"error"`
}

// TokenAmount represents token balance information
type TokenAmount struct {
	Amount         string  `json:"amount"`
	Decimals       int     `json:"decimals"`
	UIAmountString string  `json:"uiAmountString"`
	UIAmount       float64 `json:"uiAmount"`
}

// TokenBalance represents a token balance entry in transaction meta
type TokenBalance struct {
	AccountIndex  int         `json:"accountIndex"`
	Mint          string      `json:"mint"`
	Owner         string      `json:"owner"`
	UITokenAmount TokenAmount `json:"uiTokenAmount"`
}

// ParsedInstruction is a single instruction in a jsonParsed transaction.
// Instructions the node recognizes carry a Parsed payload; everything
// else carries base58 Data plus the account list.
type ParsedInstruction struct {
	Program   string          `json:"program,omitempty"`
	ProgramID string          `json:"programId"`
	Accounts  []string        `json:"accounts,omitempty"`
	Data      string          `json:"data,omitempty"`
	Parsed    json.RawMessage `json:"parsed,omitempty"`
}

// InnerInstructionSet groups the inner instructions emitted by the
// top-level instruction at Index.
type InnerInstructionSet struct {
	Index        uint16              `json:"index"`
	Instructions []ParsedInstruction `json:"instructions"`
}

// TransactionMeta contains metadata about a confirmed transaction
type TransactionMeta struct {
	Err                  interface{}           `json:"err"`
	Fee                  uint64                `json:"fee"`
	ComputeUnitsConsumed *uint64               `json:"computeUnitsConsumed"`
	PreBalances          []int64               `json:"preBalances"`
	PostBalances         []int64               `json:"postBalances"`
	PreTokenBalances     []TokenBalance        `json:"preTokenBalances"`
	PostTokenBalances    []TokenBalance        `json:"postTokenBalances"`
	InnerInstructions    []InnerInstructionSet `json:"innerInstructions"`
}

// AccountKey represents an account in a transaction message
type AccountKey struct {
	Pubkey   string `json:"pubkey"`
	Signer   bool   `json:"signer"`
	Writable bool   `json:"writable"`
}

// TransactionMessage contains the transaction message
type TransactionMessage struct {
	AccountKeys  []AccountKey        `json:"accountKeys"`
	Instructions []ParsedInstruction `json:"instructions"`
}

// Transaction represents a parsed transaction
type Transaction struct {
	Signatures []string           `json:"signatures"`
	Message    TransactionMessage `json:"message"`
}

// TransactionResult contains the full transaction data
type TransactionResult struct {
	Slot        uint64           `json:"slot"`
	BlockTime   *int64           `json:"blockTime"`
	Meta        *TransactionMeta `json:"meta"`
	Transaction *Transaction     `json:"transaction"`
}

// TransactionResponse is the response from getTransaction
type TransactionResponse struct {
	Result *TransactionResult `json:"result"`
	Error  *RPCError          `json:"error"`
}

// Signature returns the transaction's primary signature, if present.
func (t *TransactionResult) Signature() string {
	if t == nil || t.Transaction == nil || len(t.Transaction.Signatures) == 0 {
		return ""
	}
	return t.Transaction.Signatures[0]
}

// Signer returns the fee payer, the first signer account key.
func (t *TransactionResult) Signer() string {
	if t == nil || t.Transaction == nil {
		return ""
	}
	for _, k := range t.Transaction.Message.AccountKeys {
		if k.Signer {
			return k.Pubkey
		}
	}
	return ""
}

// InnerInstructionsOf returns the inner instructions emitted by the
// top-level instruction at index. A transaction without meta or without
// inner instruction metadata yields no instructions and no error. When
// metadata exists but recorded no set for the requested index, that is
// ErrInnerInstructionsNotFound.
func (t *TransactionResult) InnerInstructionsOf(index int) ([]ParsedInstruction, bool, error) {
	if t == nil || t.Meta == nil || t.Meta.InnerInstructions == nil {
		return nil, false, nil
	}
	for _, set := range t.Meta.InnerInstructions {
		if int(set.Index) == index {
			return set.Instructions, true, nil
		}
	}
	return nil, false, ErrInnerInstructionsNotFound
}

// TransferInfo is the strict record extracted from a parsed system or
// SPL token transfer instruction. Construction fails when required
// fields are absent instead of propagating empty strings downstream.
type TransferInfo struct {
	Source      string
	Destination string
	Authority   string
	Amount      uint64
}

// ParseTransferInfo extracts a TransferInfo from a parsed instruction.
// Returns (nil, nil) when the instruction is parsed but not a transfer.
func ParseTransferInfo(instr ParsedInstruction) (*TransferInfo, error) {
	if len(instr.Parsed) == 0 {
		return nil, nil
	}

	var env struct {
		Type string `json:"type"`
		Info struct {
			Source      string  `json:"source"`
			Destination string  `json:"destination"`
			Authority   string  `json:"authority"`
			Lamports    *uint64 `json:"lamports"`
			Amount      *string `json:"amount"`
			TokenAmount *struct {
				Amount string `json:"amount"`
			} `json:"tokenAmount"`
		} `json:"info"`
	}
	if err := json.Unmarshal(instr.Parsed, &env); err != nil {
		return nil, fmt.Errorf("failed to decode parsed instruction: %w", err)
	}

	switch env.Type {
	case "transfer", "transferChecked":
	default:
		return nil, nil
	}

	info := TransferInfo{
		Source:      env.Info.Source,
		Destination: env.Info.Destination,
		Authority:   env.Info.Authority,
	}
	if info.Source == "" || info.Destination == "" {
		return nil, fmt.Errorf("transfer instruction missing source or destination")
	}

	switch {
	case env.Info.Lamports != nil:
		info.Amount = *env.Info.Lamports
	case env.Info.Amount != nil:
		amt, err := strconv.ParseUint(*env.Info.Amount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid transfer amount %q: %w", *env.Info.Amount, err)
		}
		info.Amount = amt
	case env.Info.TokenAmount != nil:
		amt, err := strconv.ParseUint(env.Info.TokenAmount.Amount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid transfer amount %q: %w", env.Info.TokenAmount.Amount, err)
		}
		info.Amount = amt
	default:
		return nil, fmt.Errorf("transfer instruction missing amount")
	}

	return &info, nil
}

// TokenAccountInfo is the strict record for a jsonParsed SPL token
// account.
type TokenAccountInfo struct {
	Pubkey      string
	Mint        string
	Owner       string
	Amount      uint64
	Decimals    int
	IsNative    bool
	Lamports    uint64
	ProgramName string
}

// PrioritizationFee is one sample from getRecentPrioritizationFees,
// micro-lamports per compute unit paid at Slot.
type PrioritizationFee struct {
	Slot              uint64 `json:"slot"`
	PrioritizationFee uint64 `json:"prioritizationFee"`
}

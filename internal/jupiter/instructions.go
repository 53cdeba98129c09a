package jupiter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gagliardetto/solana-go"
)

// DynamicSlippage bounds the slippage Jupiter may apply per route.
type DynamicSlippage struct {
	MinBps uint16 `json:"minBps"`
	MaxBps uint16 `json:"maxBps"`
}

// SwapInstructionsRequest asks the API to render a quote into
// instructions for a specific user.
type SwapInstructionsRequest struct {
	UserPublicKey    string           `json:"userPublicKey"`
	QuoteResponse    *QuoteResponse   `json:"quoteResponse"`
	WrapAndUnwrapSol bool             `json:"wrapAndUnwrapSol"`
	DynamicSlippage  *DynamicSlippage `json:"dynamicSlippage,omitempty"`
}

// APIAccountMeta is one account in an API-serialized instruction.
type APIAccountMeta struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

// APIInstruction is an instruction as the swap API serializes it:
// base58 keys and base64 data.
type APIInstruction struct {
	ProgramID string           `json:"programId"`
	Accounts  []APIAccountMeta `json:"accounts"`
	Data      string           `json:"data"`
}

// SwapInstructionsResponse is the rendered instruction set.
type SwapInstructionsResponse struct {
	ComputeBudgetInstructions   []APIInstruction `json:"computeBudgetInstructions"`
	SetupInstructions           []APIInstruction `json:"setupInstructions"`
	SwapInstruction             *APIInstruction  `json:"swapInstruction"`
	CleanupInstruction          *APIInstruction  `json:"cleanupInstruction"`
	AddressLookupTableAddresses []string         `json:"addressLookupTableAddresses"`
}

// SwapInstructions renders a quote into executable instructions.
func (c *Client) SwapInstructions(ctx context.Context, req SwapInstructionsRequest) (*SwapInstructionsResponse, error) {
	if req.UserPublicKey == "" {
		return nil, fmt.Errorf("userPublicKey is required")
	}
	if req.QuoteResponse == nil {
		return nil, fmt.Errorf("quoteResponse is required")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode swap-instructions request: %w", err)
	}

	u := c.BaseURL + "/swap-instructions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("accept", "application/json")
	httpReq.Header.Set("content-type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("x-api-key", c.APIKey)
	}

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: res.StatusCode, Body: body}
	}

	var out SwapInstructionsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode swap-instructions response: %w", err)
	}
	if out.SwapInstruction == nil {
		return nil, fmt.Errorf("swap-instructions response has no swap instruction")
	}
	return &out, nil
}

// Deserialize converts an API-serialized instruction into an
// executable one.
func (ix *APIInstruction) Deserialize() (solana.Instruction, error) {
	program, err := solana.PublicKeyFromBase58(ix.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id %q: %w", ix.ProgramID, err)
	}

	accounts := make([]*solana.AccountMeta, 0, len(ix.Accounts))
	for _, a := range ix.Accounts {
		pk, err := solana.PublicKeyFromBase58(a.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("invalid account %q: %w", a.Pubkey, err)
		}
		accounts = append(accounts, &solana.AccountMeta{
			PublicKey:  pk,
			IsSigner:   a.IsSigner,
			IsWritable: a.IsWritable,
		})
	}

	data, err := base64.StdEncoding.DecodeString(ix.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid instruction data: %w", err)
	}

	return solana.NewInstruction(program, accounts, data), nil
}

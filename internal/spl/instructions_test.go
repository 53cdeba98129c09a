package spl

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testOwner = solana.MustPublicKeyFromBase58("4wTV1YmiEkRvAtNtsSGPtUrqRYQMe5SKy2uB4Jjaxnjf")
	testMint  = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
)

func TestFindAssociatedTokenAddress_Deterministic(t *testing.T) {
	ata, _, err := FindAssociatedTokenAddress(testOwner, testMint)
	require.NoError(t, err)
	assert.False(t, ata.IsZero())

	again, _, err := FindAssociatedTokenAddress(testOwner, testMint)
	require.NoError(t, err)
	assert.Equal(t, ata, again)

	other, _, err := FindAssociatedTokenAddress(testOwner, WSOLMint)
	require.NoError(t, err)
	assert.NotEqual(t, ata, other)
}

func TestNewCreateAssociatedTokenAccountIx(t *testing.T) {
	ata, _, err := FindAssociatedTokenAddress(testOwner, testMint)
	require.NoError(t, err)

	ix := NewCreateAssociatedTokenAccountIx(testOwner, ata, testOwner, testMint)
	assert.Equal(t, AssociatedTokenProgramID, ix.ProgramID())

	accounts := ix.Accounts()
	require.Len(t, accounts, 7)
	assert.Equal(t, testOwner, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.Equal(t, ata, accounts[1].PublicKey)
	assert.Equal(t, solana.TokenProgramID, accounts[5].PublicKey)

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestNewSystemTransferIx(t *testing.T) {
	ix := NewSystemTransferIx(testOwner, testMint, 1_500_000_000)
	assert.Equal(t, solana.SystemProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 12)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, uint64(1_500_000_000), binary.LittleEndian.Uint64(data[4:12]))
}

func TestNewTokenSyncNativeIx(t *testing.T) {
	ix := NewTokenSyncNativeIx(testOwner)
	assert.Equal(t, solana.TokenProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{17}, data)
}

func TestNewTokenCloseAccountIx(t *testing.T) {
	ix := NewTokenCloseAccountIx(testMint, testOwner, testOwner)
	assert.Equal(t, solana.TokenProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, data)

	accounts := ix.Accounts()
	require.Len(t, accounts, 3)
	assert.True(t, accounts[2].IsSigner)
}

func TestNewSetComputeUnitLimitIx(t *testing.T) {
	ix := NewSetComputeUnitLimitIx(70_000)
	assert.Equal(t, ComputeBudgetProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 5)
	assert.Equal(t, byte(2), data[0])
	assert.Equal(t, uint32(70_000), binary.LittleEndian.Uint32(data[1:5]))
}

func TestNewSetComputeUnitPriceIx(t *testing.T) {
	ix := NewSetComputeUnitPriceIx(10_000)
	assert.Equal(t, ComputeBudgetProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 9)
	assert.Equal(t, byte(3), data[0])
	assert.Equal(t, uint64(10_000), binary.LittleEndian.Uint64(data[1:9]))
}

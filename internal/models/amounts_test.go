package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnshiftAmount(t *testing.T) {
	assert.Equal(t, "1.5", UnshiftAmount(1_500_000_000, 9))
	assert.Equal(t, "0.000001", UnshiftAmount(1, 6))
	assert.Equal(t, "12345", UnshiftAmount(12_345, 0))
	assert.Equal(t, "0", UnshiftAmount(0, 9))
}

func TestUnshiftLamports(t *testing.T) {
	assert.Equal(t, "0.000005", UnshiftLamports(5_000))
	assert.Equal(t, "2", UnshiftLamports(2_000_000_000))
}

func TestShiftAmount(t *testing.T) {
	raw, err := ShiftAmount("1.5", 9)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000_000), raw)

	raw, err = ShiftAmount("0.000001", 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), raw)
}

func TestShiftAmount_TruncatesSubUnit(t *testing.T) {
	raw, err := ShiftAmount("0.1234567891", 9)
	require.NoError(t, err)
	assert.Equal(t, uint64(123_456_789), raw)
}

func TestShiftAmount_Rejects(t *testing.T) {
	_, err := ShiftAmount("not-a-number", 9)
	assert.Error(t, err)

	_, err = ShiftAmount("-1", 9)
	assert.Error(t, err)
}

package codec

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/mr-tron/base58"
)

// ErrShortBuffer is returned when instruction data is too short for the
// layout being read. Callers distinguish it from malformed-content errors.
var ErrShortBuffer = errors.New("codec: buffer too short")

// DecodeBase58 decodes base58-encoded instruction data as it appears in
// jsonParsed transactions.
func DecodeBase58(s string) ([]byte, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base58 data: %w", err)
	}
	return b, nil
}

// Discriminator8 returns the first 8 bytes of data as lowercase hex.
// Anchor-style programs tag every instruction with such a prefix.
func Discriminator8(data []byte) (string, error) {
	if len(data) < 8 {
		return "", ErrShortBuffer
	}
	return hex.EncodeToString(data[:8]), nil
}

// Discriminator1 returns the first byte of data as lowercase hex.
// Raydium V4 and ComputeBudget use single-byte instruction tags.
func Discriminator1(data []byte) (string, error) {
	if len(data) < 1 {
		return "", ErrShortBuffer
	}
	return hex.EncodeToString(data[:1]), nil
}

// ReadU32LE reads a little-endian uint32 at offset.
func ReadU32LE(data []byte, offset int) (uint32, error) {
	if offset < 0 || len(data) < offset+4 {
		return 0, ErrShortBuffer
	}
	return binary.LittleEndian.Uint32(data[offset : offset+4]), nil
}

// ReadU64LE reads a little-endian uint64 at offset.
func ReadU64LE(data []byte, offset int) (uint64, error) {
	if offset < 0 || len(data) < offset+8 {
		return 0, ErrShortBuffer
	}
	return binary.LittleEndian.Uint64(data[offset : offset+8]), nil
}

// EncodeInstructionData concatenates a discriminator with little-endian
// uint64 arguments, the layout every router builder in this repo emits.
func EncodeInstructionData(discriminator []byte, args ...uint64) []byte {
	out := make([]byte, len(discriminator)+8*len(args))
	copy(out, discriminator)
	for i, a := range args {
		binary.LittleEndian.PutUint64(out[len(discriminator)+8*i:], a)
	}
	return out
}

// MustDiscriminatorBytes converts a hex discriminator constant to bytes.
// Panics on invalid hex; only used for compile-time constants.
func MustDiscriminatorBytes(hexStr string) []byte {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		panic(fmt.Sprintf("invalid discriminator hex %q: %v", hexStr, err))
	}
	return b
}

// DecodeBorsh decodes a borsh-encoded payload into out, a pointer to a
// struct of fixed-layout fields.
func DecodeBorsh(data []byte, out interface{}) error {
	decoder := ag_binary.NewBorshDecoder(data)
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("failed to decode borsh payload: %w", err)
	}
	return nil
}

// DecodeEvent decodes an Anchor event emitted through instruction data:
// the first 16 bytes (8 program log tag + 8 event discriminator) are
// skipped, the rest is borsh.
func DecodeEvent(data []byte, out interface{}) error {
	if len(data) < 16 {
		return ErrShortBuffer
	}
	return DecodeBorsh(data[16:], out)
}

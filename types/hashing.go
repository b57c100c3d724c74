package types

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// HashSize is the size of relay chain block and candidate hashes.
const HashSize = 32

// Hash is a relay chain block hash.
type Hash [HashSize]byte

// BlockNumber is the depth of a relay chain block.
type BlockNumber uint32

// HashNumber pairs a block hash with its number.
type HashNumber struct {
	Hash   Hash
	Number BlockNumber
}

// String returns hex representation of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := HashFromHex(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// HashFromHex parses hex encoded hash, with or without 0x prefix.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	if len(b) != HashSize {
		return h, ErrInvalidHashLength
	}
	copy(h[:], b)
	return h, nil
}

// BlakeTwo256 returns blake2b-256 digest of concatenated data.
func BlakeTwo256(data ...[]byte) Hash {
	hasher, _ := blake2b.New256(nil)
	for _, d := range data {
		hasher.Write(d)
	}
	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h
}

// BlockNumberHash returns deterministic hash derived from block number.
// Useful for building linear test chains.
func BlockNumberHash(n BlockNumber) Hash {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(n))
	return BlakeTwo256(buf)
}

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashHexRoundTrip(t *testing.T) {
	h := GetRandomHash()

	parsed, err := HashFromHex(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)

	parsed, err = HashFromHex("0x" + h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)

	_, err = HashFromHex("abcd")
	assert.ErrorIs(t, err, ErrInvalidHashLength)

	_, err = HashFromHex("zz")
	assert.Error(t, err)
}

func TestHashJSON(t *testing.T) {
	h := BlockNumberHash(7)
	blob, err := json.Marshal(struct{ H Hash }{h})
	require.NoError(t, err)
	assert.Contains(t, string(blob), h.String())

	var out struct{ H Hash }
	require.NoError(t, json.Unmarshal(blob, &out))
	assert.Equal(t, h, out.H)
}

func TestBlockNumberHash(t *testing.T) {
	assert.Equal(t, BlockNumberHash(1), BlockNumberHash(1))
	assert.NotEqual(t, BlockNumberHash(1), BlockNumberHash(2))
	assert.False(t, BlockNumberHash(0).IsZero())
	assert.True(t, Hash{}.IsZero())
}

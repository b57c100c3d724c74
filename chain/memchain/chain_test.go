package memchain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollkit/disputes/types"
)

// buildLinear imports blocks 1..n using BlockNumberHash hashes.
func buildLinear(t *testing.T, c *Chain, n types.BlockNumber) {
	t.Helper()
	for i := types.BlockNumber(1); i <= n; i++ {
		_, err := c.ImportBlock(context.Background(), types.BlockNumberHash(i), types.BlockNumberHash(i-1), nil)
		require.NoError(t, err)
	}
}

func TestChainLinear(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	c, err := NewInMemory(ctx)
	require.NoError(err)
	buildLinear(t, c, 5)

	n, found, err := c.BlockNumber(ctx, types.BlockNumberHash(3))
	require.NoError(err)
	require.True(found)
	require.Equal(types.BlockNumber(3), n)

	_, found, err = c.BlockNumber(ctx, types.BlockNumberHash(42))
	require.NoError(err)
	require.False(found)

	ancestors, err := c.Ancestors(ctx, types.BlockNumberHash(5), 3)
	require.NoError(err)
	require.Equal([]types.Hash{types.BlockNumberHash(4), types.BlockNumberHash(3), types.BlockNumberHash(2)}, ancestors)

	// stops at genesis
	ancestors, err = c.Ancestors(ctx, types.BlockNumberHash(2), 10)
	require.NoError(err)
	require.Equal([]types.Hash{types.BlockNumberHash(1), types.BlockNumberHash(0)}, ancestors)

	ancestors, err = c.Ancestors(ctx, types.BlockNumberHash(42), 10)
	require.NoError(err)
	require.Empty(ancestors)

	leaves := c.Leaves()
	require.Len(leaves, 1)
	require.Equal(types.GetActivatedLeaf(5), leaves[0])
}

func TestChainEvents(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	c, err := NewInMemory(ctx)
	require.NoError(err)
	receipt := types.GetRandomCandidateReceipt(c.Genesis().Hash)
	h, err := c.BuildBlock(ctx, c.Genesis().Hash, []types.CandidateEvent{types.NewIncludedEvent(receipt)})
	require.NoError(err)
	require.Equal(types.BlockNumber(1), h.Number)

	events, err := c.CandidateEvents(ctx, h.Hash)
	require.NoError(err)
	require.Len(events, 1)
	require.Equal(receipt, events[0].Receipt)

	events, err = c.CandidateEvents(ctx, c.Genesis().Hash)
	require.NoError(err)
	require.Empty(events)

	_, err = c.CandidateEvents(ctx, types.GetRandomHash())
	require.ErrorIs(err, ErrUnknownBlock)
}

func TestChainForks(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	c, err := NewInMemory(ctx)
	require.NoError(err)
	buildLinear(t, c, 2)

	a, err := c.BuildBlock(ctx, types.BlockNumberHash(2), nil)
	require.NoError(err)
	b, err := c.BuildBlock(ctx, types.BlockNumberHash(2), nil)
	require.NoError(err)
	require.NotEqual(a.Hash, b.Hash)

	leaves := c.Leaves()
	require.Len(leaves, 2)
	for _, l := range leaves {
		require.Equal(types.BlockNumber(3), l.Number)
	}

	a2, err := c.BuildBlock(ctx, a.Hash, nil)
	require.NoError(err)
	require.Equal(a2.Hash, c.BestLeaf().Hash)

	_, err = c.ImportBlock(ctx, a.Hash, types.BlockNumberHash(2), nil)
	require.ErrorIs(err, ErrBlockExists)
	_, err = c.ImportBlock(ctx, types.GetRandomHash(), types.GetRandomHash(), nil)
	require.ErrorIs(err, ErrUnknownBlock)
}

func TestChainFinalize(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	c, err := NewInMemory(ctx)
	require.NoError(err)
	buildLinear(t, c, 3)
	fork, err := c.BuildBlock(ctx, types.BlockNumberHash(1), nil)
	require.NoError(err)

	fin, err := c.Finalize(ctx, types.BlockNumberHash(2))
	require.NoError(err)
	assert.Equal(t, types.BlockFinalized{Hash: types.BlockNumberHash(2), Number: 2}, fin)
	assert.Equal(t, types.BlockNumber(2), c.Finalized().Number)

	_, err = c.Finalize(ctx, fork.Hash)
	assert.ErrorIs(t, err, ErrNotDescendant)
	_, err = c.Finalize(ctx, types.BlockNumberHash(1))
	assert.ErrorIs(t, err, ErrNotDescendant)
	_, err = c.Finalize(ctx, types.BlockNumberHash(3))
	assert.NoError(t, err)
}

func TestHeaderSerialization(t *testing.T) {
	h := Header{Hash: types.GetRandomHash(), Parent: types.GetRandomHash(), Number: 77}
	blob, err := h.MarshalBinary()
	require.NoError(t, err)

	var decoded Header
	require.NoError(t, decoded.UnmarshalBinary(blob))
	assert.Equal(t, h, decoded)
	assert.ErrorIs(t, decoded.UnmarshalBinary(blob[1:]), types.ErrInvalidEncoding)
}

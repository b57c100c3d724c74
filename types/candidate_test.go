package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateHash(t *testing.T) {
	require := require.New(t)

	r1 := GetCandidateReceipt(1, BlockNumberHash(1))
	h1, err := r1.Hash()
	require.NoError(err)

	// deterministic
	again, err := r1.Hash()
	require.NoError(err)
	require.Equal(h1, again)

	// every field contributes
	r2 := r1
	r2.Descriptor.RelayParent = BlockNumberHash(2)
	h2, err := r2.Hash()
	require.NoError(err)
	require.NotEqual(h1, h2)

	r3 := r1
	r3.CommitmentsHash[0] = 1
	h3, err := r3.Hash()
	require.NoError(err)
	require.NotEqual(h1, h3)

	r4 := r1
	r4.Descriptor.ParaID = 2
	h4, err := r4.Hash()
	require.NoError(err)
	require.NotEqual(h1, h4)
}

func TestCandidateHashNilReceipt(t *testing.T) {
	var r *CandidateReceipt
	_, err := r.Hash()
	assert.ErrorIs(t, err, ErrNilReceipt)
}

func TestIncludedReceipts(t *testing.T) {
	a := GetRandomCandidateReceipt(BlockNumberHash(1))
	b := GetRandomCandidateReceipt(BlockNumberHash(1))
	c := GetRandomCandidateReceipt(BlockNumberHash(1))
	events := []CandidateEvent{
		{Kind: CandidateEventBacked, Receipt: a},
		NewIncludedEvent(b),
		{Kind: CandidateEventTimedOut, Receipt: a},
		NewIncludedEvent(c),
	}
	assert.Equal(t, []CandidateReceipt{b, c}, IncludedReceipts(events))
	assert.Empty(t, IncludedReceipts(nil))
	assert.Equal(t, "included", CandidateEventIncluded.String())
}

func TestActiveLeavesUpdate(t *testing.T) {
	assert.True(t, ActiveLeavesUpdate{}.IsEmpty())
	u := StartWork(GetActivatedLeaf(3))
	assert.False(t, u.IsEmpty())
	assert.Equal(t, BlockNumber(3), u.Activated[0].Number)
	assert.Equal(t, LeafStatusFresh, u.Activated[0].Status)
	assert.Equal(t, []Hash{BlockNumberHash(1)}, StopWork(BlockNumberHash(1)).Deactivated)
}

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateEventsSerialization(t *testing.T) {
	require := require.New(t)

	events := []CandidateEvent{
		NewIncludedEvent(GetRandomCandidateReceipt(BlockNumberHash(4))),
		{
			Kind:       CandidateEventBacked,
			Receipt:    GetRandomCandidateReceipt(BlockNumberHash(5)),
			HeadData:   []byte{1, 2, 3},
			CoreIndex:  7,
			GroupIndex: 2,
		},
	}
	events[1].Receipt.Descriptor.ParaID = 2000

	blob, err := MarshalCandidateEvents(events)
	require.NoError(err)

	decoded, err := UnmarshalCandidateEvents(blob)
	require.NoError(err)
	require.Equal(events, decoded)

	for i := range events {
		want, err := events[i].Receipt.Hash()
		require.NoError(err)
		got, err := decoded[i].Receipt.Hash()
		require.NoError(err)
		require.Equal(want, got)
	}
}

func TestCandidateEventsSerializationEmpty(t *testing.T) {
	blob, err := MarshalCandidateEvents(nil)
	require.NoError(t, err)
	decoded, err := UnmarshalCandidateEvents(blob)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestCandidateEventsSerializationCorrupted(t *testing.T) {
	blob, err := MarshalCandidateEvents([]CandidateEvent{NewIncludedEvent(GetRandomCandidateReceipt(Hash{}))})
	require.NoError(t, err)

	_, err = UnmarshalCandidateEvents(blob[:len(blob)-3])
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = UnmarshalCandidateEvents(append(blob, 0))
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = UnmarshalCandidateEvents(nil)
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	var r CandidateReceipt
	assert.ErrorIs(t, r.UnmarshalBinary([]byte{1, 2}), ErrInvalidEncoding)
}

package chain

import (
	"sync"

	"github.com/rollkit/disputes/types"
)

// BlockNumberRequest asks for the number of a block.
type BlockNumberRequest struct {
	Hash     types.Hash
	Response chan<- BlockNumberResponse
}

// BlockNumberResponse answers BlockNumberRequest.
type BlockNumberResponse struct {
	Number types.BlockNumber
	Found  bool
	Err    error
}

// AncestorsRequest asks for up to K ancestors of a block.
type AncestorsRequest struct {
	Hash     types.Hash
	K        uint32
	Response chan<- AncestorsResponse
}

// AncestorsResponse answers AncestorsRequest.
type AncestorsResponse struct {
	Ancestors []types.Hash
	Err       error
}

// CandidateEventsRequest asks for candidate events of a block.
type CandidateEventsRequest struct {
	RelayParent types.Hash
	Response    chan<- CandidateEventsResponse
}

// CandidateEventsResponse answers CandidateEventsRequest.
type CandidateEventsResponse struct {
	Events []types.CandidateEvent
	Err    error
}

// Channels holds one request channel per query kind.
// Every request gets exactly one response or its response channel is closed.
type Channels struct {
	BlockNumber     chan BlockNumberRequest
	Ancestors       chan AncestorsRequest
	CandidateEvents chan CandidateEventsRequest

	closeOnce sync.Once
	done      chan struct{}
}

// NewChannels creates request channels with given buffer size.
func NewChannels(buffer int) *Channels {
	return &Channels{
		BlockNumber:     make(chan BlockNumberRequest, buffer),
		Ancestors:       make(chan AncestorsRequest, buffer),
		CandidateEvents: make(chan CandidateEventsRequest, buffer),
		done:            make(chan struct{}),
	}
}

// Close marks the channels as closed. Pending and future requests fail with ErrClosed.
// Request channels themselves are never closed, so senders can't panic.
func (c *Channels) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Done is closed once Close was called.
func (c *Channels) Done() <-chan struct{} {
	return c.done
}

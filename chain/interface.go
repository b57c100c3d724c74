package chain

import (
	"context"

	"github.com/rollkit/disputes/types"
)

// ChainAPI answers questions about the relay chain block tree.
type ChainAPI interface {
	// BlockNumber returns the number of the block with given hash.
	// found is false if the block is not known; this is not an error.
	BlockNumber(ctx context.Context, hash types.Hash) (number types.BlockNumber, found bool, err error)

	// Ancestors returns up to k ancestors of the block, parent first.
	// Fewer than k hashes are returned if the chain is shorter or the rest is unknown.
	Ancestors(ctx context.Context, hash types.Hash, k uint32) ([]types.Hash, error)
}

// RuntimeAPI answers questions about runtime state at a given block.
type RuntimeAPI interface {
	// CandidateEvents returns candidate events emitted in the block.
	// An empty result means nothing happened, not an error.
	CandidateEvents(ctx context.Context, relayParent types.Hash) ([]types.CandidateEvent, error)
}

// Source is the chain event source used by the ordering provider.
type Source interface {
	ChainAPI
	RuntimeAPI
}

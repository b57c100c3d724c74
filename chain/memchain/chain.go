package memchain

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"sync"

	ds "github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	dssync "github.com/ipfs/go-datastore/sync"
	"go.uber.org/multierr"

	"github.com/rollkit/disputes/chain"
	"github.com/rollkit/disputes/types"
)

var (
	// ErrUnknownBlock is returned when a block is not part of the chain.
	ErrUnknownBlock = errors.New("unknown block")
	// ErrBlockExists is returned when importing a block twice.
	ErrBlockExists = errors.New("block already imported")
	// ErrNotDescendant is returned when finalizing a block that does not extend the finalized chain.
	ErrNotDescendant = errors.New("block does not descend from the last finalized block")
)

var storePrefix = ds.NewKey("memchain")

// Chain is an in-memory relay chain block tree.
//
// Headers and candidate events are kept in a go-datastore.
// Chain implements chain.Source and is safe for concurrent use.
type Chain struct {
	db ds.Batching

	mtx       sync.RWMutex
	genesis   Header
	leaves    map[types.Hash]types.BlockNumber
	finalized types.HashNumber
	nonce     uint64
}

var _ chain.Source = &Chain{}

// New creates a chain stored in db, starting from a genesis block with given hash.
func New(ctx context.Context, db ds.Batching, genesis types.Hash) (*Chain, error) {
	c := &Chain{
		db:     namespace.Wrap(db, storePrefix),
		leaves: make(map[types.Hash]types.BlockNumber),
	}
	c.genesis = Header{Hash: genesis}
	if err := c.put(ctx, &c.genesis, nil); err != nil {
		return nil, err
	}
	c.leaves[genesis] = 0
	c.finalized = c.genesis.HashNumber()
	return c, nil
}

// NewInMemory creates a chain backed by a map datastore, with genesis BlockNumberHash(0).
func NewInMemory(ctx context.Context) (*Chain, error) {
	return New(ctx, dssync.MutexWrap(ds.NewMapDatastore()), types.BlockNumberHash(0))
}

// Genesis returns the genesis header.
func (c *Chain) Genesis() Header {
	return c.genesis
}

// ImportBlock adds a block with the given hash on top of parent.
func (c *Chain) ImportBlock(ctx context.Context, hash, parent types.Hash, events []types.CandidateEvent) (*Header, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.importBlock(ctx, hash, parent, events)
}

// BuildBlock adds a new block on top of parent, deriving a unique hash.
// Building twice on the same parent creates a fork.
func (c *Chain) BuildBlock(ctx context.Context, parent types.Hash, events []types.CandidateEvent) (*Header, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.nonce++
	var nonce [8]byte
	binary.LittleEndian.PutUint64(nonce[:], c.nonce)
	return c.importBlock(ctx, types.BlakeTwo256(parent[:], nonce[:]), parent, events)
}

func (c *Chain) importBlock(ctx context.Context, hash, parent types.Hash, events []types.CandidateEvent) (*Header, error) {
	if _, err := c.header(ctx, hash); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrBlockExists, hash)
	}
	p, err := c.header(ctx, parent)
	if err != nil {
		return nil, err
	}
	h := &Header{Hash: hash, Parent: parent, Number: p.Number + 1}
	if err := c.put(ctx, h, events); err != nil {
		return nil, err
	}
	delete(c.leaves, parent)
	c.leaves[hash] = h.Number
	return h, nil
}

func (c *Chain) put(ctx context.Context, h *Header, events []types.CandidateEvent) error {
	headerBlob, err := h.MarshalBinary()
	if err != nil {
		return err
	}
	eventsBlob, err := types.MarshalCandidateEvents(events)
	if err != nil {
		return fmt.Errorf("failed to marshal candidate events: %w", err)
	}

	batch, err := c.db.Batch(ctx)
	if err != nil {
		return fmt.Errorf("failed to create a new batch: %w", err)
	}
	err = multierr.Append(err, batch.Put(ctx, headerKey(h.Hash), headerBlob))
	err = multierr.Append(err, batch.Put(ctx, eventsKey(h.Hash), eventsBlob))
	if err != nil {
		return fmt.Errorf("failed to put block in batch: %w", err)
	}
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// Header returns the header of a block.
func (c *Chain) Header(ctx context.Context, hash types.Hash) (*Header, error) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.header(ctx, hash)
}

func (c *Chain) header(ctx context.Context, hash types.Hash) (*Header, error) {
	blob, err := c.db.Get(ctx, headerKey(hash))
	if errors.Is(err, ds.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBlock, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load header %s: %w", hash, err)
	}
	h := new(Header)
	if err := h.UnmarshalBinary(blob); err != nil {
		return nil, err
	}
	return h, nil
}

// Leaves returns blocks without children, highest first.
func (c *Chain) Leaves() []types.ActivatedLeaf {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	leaves := make([]types.ActivatedLeaf, 0, len(c.leaves))
	for hash, number := range c.leaves {
		leaves = append(leaves, types.ActivatedLeaf{Hash: hash, Number: number, Status: types.LeafStatusFresh})
	}
	sort.Slice(leaves, func(i, j int) bool {
		if leaves[i].Number != leaves[j].Number {
			return leaves[i].Number > leaves[j].Number
		}
		return string(leaves[i].Hash[:]) < string(leaves[j].Hash[:])
	})
	return leaves
}

// BestLeaf returns the highest leaf.
func (c *Chain) BestLeaf() types.ActivatedLeaf {
	return c.Leaves()[0]
}

// Finalize marks the block finalized. It must descend from the previously finalized block.
func (c *Chain) Finalize(ctx context.Context, hash types.Hash) (types.BlockFinalized, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	h, err := c.header(ctx, hash)
	if err != nil {
		return types.BlockFinalized{}, err
	}
	if h.Number < c.finalized.Number {
		return types.BlockFinalized{}, ErrNotDescendant
	}
	cur := h
	for cur.Number > c.finalized.Number {
		if cur, err = c.header(ctx, cur.Parent); err != nil {
			return types.BlockFinalized{}, err
		}
	}
	if cur.Hash != c.finalized.Hash {
		return types.BlockFinalized{}, ErrNotDescendant
	}
	c.finalized = h.HashNumber()
	return types.BlockFinalized{Hash: h.Hash, Number: h.Number}, nil
}

// Finalized returns the last finalized block.
func (c *Chain) Finalized() types.HashNumber {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.finalized
}

// BlockNumber implements chain.ChainAPI.
func (c *Chain) BlockNumber(ctx context.Context, hash types.Hash) (types.BlockNumber, bool, error) {
	h, err := c.Header(ctx, hash)
	if errors.Is(err, ErrUnknownBlock) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return h.Number, true, nil
}

// Ancestors implements chain.ChainAPI. Unknown blocks have no ancestors.
func (c *Chain) Ancestors(ctx context.Context, hash types.Hash, k uint32) ([]types.Hash, error) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	cur, err := c.header(ctx, hash)
	if errors.Is(err, ErrUnknownBlock) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ancestors []types.Hash
	for uint32(len(ancestors)) < k && cur.Number > 0 {
		if cur, err = c.header(ctx, cur.Parent); err != nil {
			return nil, err
		}
		ancestors = append(ancestors, cur.Hash)
	}
	return ancestors, nil
}

// CandidateEvents implements chain.RuntimeAPI.
func (c *Chain) CandidateEvents(ctx context.Context, relayParent types.Hash) ([]types.CandidateEvent, error) {
	blob, err := c.db.Get(ctx, eventsKey(relayParent))
	if errors.Is(err, ds.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBlock, relayParent)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate events: %w", err)
	}
	return types.UnmarshalCandidateEvents(blob)
}

func headerKey(hash types.Hash) ds.Key {
	return ds.NewKey("h").ChildString(hash.String())
}

func eventsKey(hash types.Hash) ds.Key {
	return ds.NewKey("e").ChildString(hash.String())
}

package ordering

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/multierr"

	"github.com/rollkit/disputes/chain"
	"github.com/rollkit/disputes/log"
	"github.com/rollkit/disputes/types"
)

// Provider tracks which candidates were included in which relay chain blocks
// and hands out comparators to prioritise disputes.
//
// Updates are serialised. Comparator queries never touch the chain and may run
// concurrently with updates; they observe every leaf either fully indexed or not at all.
type Provider struct {
	source  chain.Source
	logger  log.Logger
	metrics *Metrics

	maxDepth     uint32
	cacheSize    int
	relayParents *lru.Cache

	updateMtx sync.Mutex

	mtx       sync.RWMutex
	index     *inclusionIndex
	leaves    map[types.Hash]types.BlockNumber
	finalized types.BlockNumber
}

// Stats is a snapshot of the Provider state.
type Stats struct {
	IndexedBlocks     int               `json:"indexed_blocks"`
	IndexedCandidates int               `json:"indexed_candidates"`
	TrackedLeaves     int               `json:"tracked_leaves"`
	Finalized         types.BlockNumber `json:"finalized"`
}

// New creates a Provider and indexes the ancestry of the initial leaf.
func New(ctx context.Context, source chain.Source, initial types.ActivatedLeaf, opts ...Option) (*Provider, error) {
	p := &Provider{
		source:    source,
		logger:    log.NewNopLogger(),
		metrics:   NopMetrics(),
		maxDepth:  DefaultMaxAncestryDepth,
		cacheSize: DefaultRelayParentCacheSize,
		leaves:    make(map[types.Hash]types.BlockNumber),
	}
	for _, opt := range opts {
		opt(p)
	}

	cache, err := lru.New(p.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create relay parent cache: %w", err)
	}
	p.relayParents = cache
	p.index = newInclusionIndex()

	if err := p.ProcessActiveLeavesUpdate(ctx, types.StartWork(initial)); err != nil {
		return nil, err
	}
	return p, nil
}

// ProcessActiveLeavesUpdate indexes the ancestry of activated leaves, stops tracking
// deactivated leaves and evicts blocks no tracked leaf reaches anymore.
//
// Every activated leaf is indexed atomically. Leaves that fail are skipped, the
// returned error combines their LeafUpdateErrors.
func (p *Provider) ProcessActiveLeavesUpdate(ctx context.Context, update types.ActiveLeavesUpdate) error {
	if p.index == nil {
		return ErrNotInitialized
	}
	p.updateMtx.Lock()
	defer p.updateMtx.Unlock()

	var err error
	for _, leaf := range update.Activated {
		blocks, walkErr := p.walkLeaf(ctx, leaf)
		if walkErr != nil {
			p.metrics.LeafUpdateFailures.Add(1)
			err = multierr.Append(err, &LeafUpdateError{
				Leaf: types.HashNumber{Hash: leaf.Hash, Number: leaf.Number},
				Err:  walkErr,
			})
			continue
		}
		p.commit(leaf, blocks)
	}

	p.mtx.Lock()
	for _, hash := range update.Deactivated {
		delete(p.leaves, hash)
	}
	evicted := p.index.retain(p.leaves, p.maxDepth, p.finalized)
	p.updateGauges()
	p.mtx.Unlock()

	if evicted > 0 {
		p.metrics.EvictedBlocks.Add(float64(evicted))
		p.logger.Debug("evicted blocks", "count", evicted)
	}
	return err
}

func (p *Provider) commit(leaf types.ActivatedLeaf, blocks []walkedBlock) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	candidates := 0
	for _, b := range blocks {
		if p.index.record(b.hash, b.parent, b.number, b.included) {
			candidates += len(b.included)
		}
		p.relayParents.Add(b.hash, b.number)
	}
	if p.index.contains(leaf.Hash) {
		p.leaves[leaf.Hash] = leaf.Number
	}
	if len(blocks) > 0 {
		p.logger.Info("indexed leaf", "hash", leaf.Hash, "number", leaf.Number,
			"status", leaf.Status, "blocks", len(blocks), "candidates", candidates)
	}
}

// ProcessFinalizedBlock evicts blocks below the finalized block and stops tracking
// leaves below it. Later walks never go below the finalized block.
func (p *Provider) ProcessFinalizedBlock(finalized types.BlockFinalized) error {
	if p.index == nil {
		return ErrNotInitialized
	}
	p.updateMtx.Lock()
	defer p.updateMtx.Unlock()

	p.mtx.Lock()
	defer p.mtx.Unlock()
	if finalized.Number <= p.finalized {
		return nil
	}
	p.finalized = finalized.Number
	for hash, number := range p.leaves {
		if number < finalized.Number {
			delete(p.leaves, hash)
		}
	}
	evicted := p.index.retain(p.leaves, p.maxDepth, p.finalized)
	p.updateGauges()
	p.metrics.EvictedBlocks.Add(float64(evicted))
	p.logger.Debug("processed finalized block", "hash", finalized.Hash, "number", finalized.Number, "evicted", evicted)
	return nil
}

// CandidateComparator returns the comparator of an included candidate, or nil
// if its inclusion has not been observed.
func (p *Provider) CandidateComparator(receipt *types.CandidateReceipt) (*CandidateComparator, error) {
	if p.index == nil {
		return nil, ErrNotInitialized
	}
	if receipt == nil {
		return nil, ErrInvalidCandidate
	}
	hash, err := receipt.Hash()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCandidate, err)
	}
	return p.ComparatorByHash(hash)
}

// ComparatorByHash is like CandidateComparator, for a known candidate hash.
func (p *Provider) ComparatorByHash(hash types.CandidateHash) (*CandidateComparator, error) {
	if p.index == nil {
		return nil, ErrNotInitialized
	}
	p.mtx.RLock()
	loc, ok := p.index.lookup(hash)
	p.mtx.RUnlock()

	if !ok {
		p.metrics.ComparatorMisses.Add(1)
		return nil, nil
	}
	p.metrics.ComparatorHits.Add(1)
	return newComparator(hash, loc), nil
}

// SortCandidates orders receipts from most to least urgent.
// Candidates without a comparator come last, in input order.
func (p *Provider) SortCandidates(receipts []types.CandidateReceipt) ([]types.CandidateReceipt, error) {
	if p.index == nil {
		return nil, ErrNotInitialized
	}
	hashes := make([]types.CandidateHash, len(receipts))
	for i := range receipts {
		hash, err := receipts[i].Hash()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCandidate, err)
		}
		hashes[i] = hash
	}

	type keyed struct {
		receipt    types.CandidateReceipt
		comparator CandidateComparator
	}
	var known []keyed
	var unknown []types.CandidateReceipt
	for i, cmp := range p.comparators(hashes) {
		if cmp != nil {
			known = append(known, keyed{receipt: receipts[i], comparator: *cmp})
		} else {
			unknown = append(unknown, receipts[i])
		}
	}

	sort.SliceStable(known, func(i, j int) bool {
		return known[i].comparator.Less(known[j].comparator)
	})
	sorted := make([]types.CandidateReceipt, 0, len(receipts))
	for _, k := range known {
		sorted = append(sorted, k.receipt)
	}
	return append(sorted, unknown...), nil
}

// comparators looks all hashes up in a single snapshot of the index.
// Unknown candidates get a nil comparator.
func (p *Provider) comparators(hashes []types.CandidateHash) []*CandidateComparator {
	out := make([]*CandidateComparator, len(hashes))
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	for i, hash := range hashes {
		if loc, ok := p.index.lookup(hash); ok {
			out[i] = newComparator(hash, loc)
		}
	}
	return out
}

// Leaves returns the tracked leaves, highest first.
func (p *Provider) Leaves() []types.HashNumber {
	p.mtx.RLock()
	leaves := make([]types.HashNumber, 0, len(p.leaves))
	for hash, number := range p.leaves {
		leaves = append(leaves, types.HashNumber{Hash: hash, Number: number})
	}
	p.mtx.RUnlock()

	sort.Slice(leaves, func(i, j int) bool {
		if leaves[i].Number != leaves[j].Number {
			return leaves[i].Number > leaves[j].Number
		}
		return bytes.Compare(leaves[i].Hash[:], leaves[j].Hash[:]) < 0
	})
	return leaves
}

// Stats returns the current size of the index.
func (p *Provider) Stats() Stats {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	if p.index == nil {
		return Stats{}
	}
	return Stats{
		IndexedBlocks:     len(p.index.blocks),
		IndexedCandidates: len(p.index.candidates),
		TrackedLeaves:     len(p.leaves),
		Finalized:         p.finalized,
	}
}

// updateGauges must be called with mtx held.
func (p *Provider) updateGauges() {
	p.metrics.IndexedBlocks.Set(float64(len(p.index.blocks)))
	p.metrics.IndexedCandidates.Set(float64(len(p.index.candidates)))
	p.metrics.TrackedLeaves.Set(float64(len(p.leaves)))
	p.metrics.FinalizedHeight.Set(float64(p.finalized))
}

func newComparator(hash types.CandidateHash, loc candidateLocation) *CandidateComparator {
	return &CandidateComparator{
		RelayParentBlockNumber: loc.relayParentNumber,
		Position:               loc.position,
		CandidateHash:          hash,
		InclusionBlock:         loc.block,
	}
}

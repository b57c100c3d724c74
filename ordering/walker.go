package ordering

import (
	"context"
	"fmt"

	"github.com/rollkit/disputes/types"
)

// walkedBlock is a block fetched during an ancestry walk, ready to be recorded.
type walkedBlock struct {
	hash     types.Hash
	parent   types.Hash
	number   types.BlockNumber
	included []includedCandidate
}

// walkLeaf fetches the part of the leaf's ancestry that is not indexed yet, oldest block first.
//
// The walk goes back at most maxDepth blocks and never below the finalized block.
// It stops early at the first indexed ancestor, or where the chain knows no further ancestors.
// No index state is modified.
func (p *Provider) walkLeaf(ctx context.Context, leaf types.ActivatedLeaf) ([]walkedBlock, error) {
	p.mtx.RLock()
	known := p.index.contains(leaf.Hash)
	lowerBound := p.finalized
	p.mtx.RUnlock()
	if known || leaf.Number < lowerBound {
		return nil, nil
	}

	depth := uint32(leaf.Number - lowerBound)
	if depth > p.maxDepth {
		depth = p.maxDepth
	}
	hashes := []types.Hash{leaf.Hash}
	if depth > 0 {
		ancestors, err := p.source.Ancestors(ctx, leaf.Hash, depth)
		if err != nil {
			return nil, fmt.Errorf("failed to get ancestors: %w", err)
		}
		if uint32(len(ancestors)) > depth {
			ancestors = ancestors[:depth]
		}
		hashes = append(hashes, ancestors...)
	}

	var oldestParent types.Hash
	p.mtx.RLock()
	for i := 1; i < len(hashes); i++ {
		if p.index.contains(hashes[i]) {
			oldestParent = hashes[i]
			hashes = hashes[:i]
			break
		}
	}
	p.mtx.RUnlock()
	p.metrics.WalkDepth.Observe(float64(len(hashes)))

	numbers := make(map[types.Hash]types.BlockNumber, len(hashes))
	for i, hash := range hashes {
		numbers[hash] = leaf.Number - types.BlockNumber(i)
	}

	blocks := make([]walkedBlock, 0, len(hashes))
	for i := len(hashes) - 1; i >= 0; i-- {
		block := walkedBlock{
			hash:   hashes[i],
			parent: oldestParent,
			number: numbers[hashes[i]],
		}
		if i+1 < len(hashes) {
			block.parent = hashes[i+1]
		}
		events, err := p.source.CandidateEvents(ctx, block.hash)
		if err != nil {
			return nil, fmt.Errorf("failed to get candidate events of block %s: %w", block.hash, err)
		}
		if block.included, err = p.includedCandidates(ctx, block, events, numbers); err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// includedCandidates resolves the location of every candidate included in block.
// Candidates with an unknown relay parent are skipped.
func (p *Provider) includedCandidates(ctx context.Context, block walkedBlock, events []types.CandidateEvent, walked map[types.Hash]types.BlockNumber) ([]includedCandidate, error) {
	var included []includedCandidate
	for pos, receipt := range types.IncludedReceipts(events) {
		hash, err := receipt.Hash()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCandidate, err)
		}
		relayParent := receipt.RelayParent()
		number, found, err := p.relayParentNumber(ctx, relayParent, walked)
		if err != nil {
			return nil, fmt.Errorf("failed to get number of relay parent %s: %w", relayParent, err)
		}
		if !found {
			p.logger.Info("skipping candidate with unknown relay parent",
				"candidate", hash, "relayParent", relayParent, "block", block.hash)
			continue
		}
		included = append(included, includedCandidate{
			hash: hash,
			location: candidateLocation{
				block:             types.HashNumber{Hash: block.hash, Number: block.number},
				position:          uint32(pos),
				relayParentNumber: number,
			},
		})
	}
	return included, nil
}

// relayParentNumber looks the block number up in the current walk, the index,
// the relay parent cache and finally asks the chain.
func (p *Provider) relayParentNumber(ctx context.Context, hash types.Hash, walked map[types.Hash]types.BlockNumber) (types.BlockNumber, bool, error) {
	if n, ok := walked[hash]; ok {
		return n, true, nil
	}
	p.mtx.RLock()
	n, ok := p.index.number(hash)
	p.mtx.RUnlock()
	if ok {
		return n, true, nil
	}
	if v, ok := p.relayParents.Get(hash); ok {
		return v.(types.BlockNumber), true, nil
	}
	n, found, err := p.source.BlockNumber(ctx, hash)
	if err != nil || !found {
		return 0, false, err
	}
	p.relayParents.Add(hash, n)
	return n, true, nil
}

package ordering

import (
	"github.com/rollkit/disputes/types"
)

type blockEntry struct {
	number types.BlockNumber
	// zero when the parent was beyond the walk
	parent     types.Hash
	candidates []types.CandidateHash
}

type candidateLocation struct {
	block             types.HashNumber
	position          uint32
	relayParentNumber types.BlockNumber
}

type includedCandidate struct {
	hash     types.CandidateHash
	location candidateLocation
}

// inclusionIndex records which candidates were included in which blocks.
// A candidate included on several forks keeps one location per block, the latest recorded last.
// It is not safe for concurrent use; Provider guards it.
type inclusionIndex struct {
	blocks     map[types.Hash]*blockEntry
	candidates map[types.CandidateHash][]candidateLocation
}

func newInclusionIndex() *inclusionIndex {
	return &inclusionIndex{
		blocks:     make(map[types.Hash]*blockEntry),
		candidates: make(map[types.CandidateHash][]candidateLocation),
	}
}

// record inserts a block with its included candidates, in order.
// Recording a known block is a no-op.
func (idx *inclusionIndex) record(hash, parent types.Hash, number types.BlockNumber, included []includedCandidate) bool {
	if _, ok := idx.blocks[hash]; ok {
		return false
	}
	entry := &blockEntry{
		number:     number,
		parent:     parent,
		candidates: make([]types.CandidateHash, 0, len(included)),
	}
	for _, c := range included {
		entry.candidates = append(entry.candidates, c.hash)
		idx.candidates[c.hash] = append(idx.candidates[c.hash], c.location)
	}
	idx.blocks[hash] = entry
	return true
}

// lookup returns the most recently recorded location of the candidate.
func (idx *inclusionIndex) lookup(candidate types.CandidateHash) (candidateLocation, bool) {
	locs := idx.candidates[candidate]
	if len(locs) == 0 {
		return candidateLocation{}, false
	}
	return locs[len(locs)-1], true
}

func (idx *inclusionIndex) contains(hash types.Hash) bool {
	_, ok := idx.blocks[hash]
	return ok
}

func (idx *inclusionIndex) number(hash types.Hash) (types.BlockNumber, bool) {
	entry, ok := idx.blocks[hash]
	if !ok {
		return 0, false
	}
	return entry.number, true
}

// evict removes the block and the candidate locations in it.
// Candidates also recorded in other blocks stay known.
func (idx *inclusionIndex) evict(hash types.Hash) {
	entry, ok := idx.blocks[hash]
	if !ok {
		return
	}
	for _, c := range entry.candidates {
		locs := idx.candidates[c]
		kept := locs[:0]
		for _, loc := range locs {
			if loc.block.Hash != hash {
				kept = append(kept, loc)
			}
		}
		if len(kept) == 0 {
			delete(idx.candidates, c)
			continue
		}
		idx.candidates[c] = kept
	}
	delete(idx.blocks, hash)
}

// retain evicts all blocks not reachable from leaves within maxDepth parent links,
// and all blocks below lowerBound. A block still reachable from a leaf, but only
// through more than maxDepth links, is evicted as well. It returns the number of evicted blocks.
func (idx *inclusionIndex) retain(leaves map[types.Hash]types.BlockNumber, maxDepth uint32, lowerBound types.BlockNumber) int {
	reachable := make(map[types.Hash]struct{}, len(idx.blocks))
	for leaf := range leaves {
		hash := leaf
		for steps := uint32(0); steps <= maxDepth; steps++ {
			entry, ok := idx.blocks[hash]
			if !ok || entry.number < lowerBound {
				break
			}
			reachable[hash] = struct{}{}
			if entry.parent.IsZero() {
				break
			}
			hash = entry.parent
		}
	}

	evicted := 0
	for hash := range idx.blocks {
		if _, ok := reachable[hash]; !ok {
			idx.evict(hash)
			evicted++
		}
	}
	return evicted
}

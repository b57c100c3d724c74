package ordering

import (
	"bytes"
	"sort"

	"github.com/rollkit/disputes/types"
)

// CandidateComparator orders disputed candidates by urgency.
//
// Candidates built on older relay parents compare lower, so they are handled first.
// Position and CandidateHash break ties, which makes the order total.
type CandidateComparator struct {
	// Block number of the relay parent of the candidate.
	RelayParentBlockNumber types.BlockNumber
	// Position among the candidates included in the same block.
	Position      uint32
	CandidateHash types.CandidateHash

	// Block the candidate was included in.
	InclusionBlock types.HashNumber
}

// Compare returns -1, 0 or +1 depending on whether c sorts before, together with or after other.
func (c CandidateComparator) Compare(other CandidateComparator) int {
	switch {
	case c.RelayParentBlockNumber < other.RelayParentBlockNumber:
		return -1
	case c.RelayParentBlockNumber > other.RelayParentBlockNumber:
		return 1
	case c.Position < other.Position:
		return -1
	case c.Position > other.Position:
		return 1
	}
	return bytes.Compare(c.CandidateHash[:], other.CandidateHash[:])
}

// Less reports whether c is more urgent than other.
func (c CandidateComparator) Less(other CandidateComparator) bool {
	return c.Compare(other) < 0
}

// SortComparators sorts comparators from most to least urgent.
func SortComparators(comparators []CandidateComparator) {
	sort.Slice(comparators, func(i, j int) bool {
		return comparators[i].Less(comparators[j])
	})
}

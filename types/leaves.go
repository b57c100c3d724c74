package types

// LeafStatus represents the status of an activated leaf.
type LeafStatus uint8

const (
	// LeafStatusFresh is used when the leaf is encountered for the first time.
	LeafStatusFresh LeafStatus = iota
	// LeafStatusStale is used when the leaf was already seen, e.g. after a revert
	// or when fork choice abandons some chain.
	LeafStatusStale
)

func (s LeafStatus) String() string {
	if s == LeafStatusStale {
		return "stale"
	}
	return "fresh"
}

// ActivatedLeaf is a relay chain head we care to work on.
type ActivatedLeaf struct {
	Hash   Hash
	Number BlockNumber
	Status LeafStatus
}

// ActiveLeavesUpdate describes changes in the set of active leaves.
//
// Activated and Deactivated are deltas, not complete sets.
type ActiveLeavesUpdate struct {
	Activated []ActivatedLeaf
	// Relay chain block hashes no longer of interest.
	Deactivated []Hash
}

// StartWork returns an update activating a single leaf.
func StartWork(leaf ActivatedLeaf) ActiveLeavesUpdate {
	return ActiveLeavesUpdate{Activated: []ActivatedLeaf{leaf}}
}

// StopWork returns an update deactivating given leaves.
func StopWork(hashes ...Hash) ActiveLeavesUpdate {
	return ActiveLeavesUpdate{Deactivated: hashes}
}

// IsEmpty returns true if the update neither activates nor deactivates anything.
func (u ActiveLeavesUpdate) IsEmpty() bool {
	return len(u.Activated) == 0 && len(u.Deactivated) == 0
}

// BlockFinalized informs about a finalized relay chain block.
type BlockFinalized struct {
	Hash   Hash
	Number BlockNumber
}

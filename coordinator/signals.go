package coordinator

import (
	"github.com/rollkit/disputes/types"
)

// Signal is an overseer signal delivered to the Coordinator.
type Signal interface {
	signal()
}

// ActiveLeavesSignal carries a change of the active leaves.
type ActiveLeavesSignal struct {
	Update types.ActiveLeavesUpdate
}

// BlockFinalizedSignal informs about a newly finalized block.
type BlockFinalizedSignal struct {
	Finalized types.BlockFinalized
}

// ConcludeSignal makes the Coordinator stop processing signals.
type ConcludeSignal struct{}

func (ActiveLeavesSignal) signal()   {}
func (BlockFinalizedSignal) signal() {}
func (ConcludeSignal) signal()       {}

// Processed is emitted after a signal was handled.
// Err is the error returned by the ordering provider, if any.
type Processed struct {
	Signal Signal
	Err    error
}

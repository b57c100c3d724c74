package ordering

import (
	"errors"
	"fmt"

	"github.com/rollkit/disputes/types"
)

// These errors are used by Provider.
var (
	// ErrNotInitialized is returned when a Provider was not created with New.
	ErrNotInitialized = errors.New("ordering provider not initialized")

	// ErrInvalidCandidate is returned when a candidate receipt cannot be hashed.
	ErrInvalidCandidate = errors.New("invalid candidate receipt")
)

// LeafUpdateError is returned when the ancestry of an activated leaf could not be indexed.
// Nothing is recorded for the failed leaf.
type LeafUpdateError struct {
	Leaf types.HashNumber
	Err  error
}

func (e *LeafUpdateError) Error() string {
	return fmt.Sprintf("failed to index leaf %s (#%d): %v", e.Leaf.Hash, e.Leaf.Number, e.Err)
}

func (e *LeafUpdateError) Unwrap() error {
	return e.Err
}

package types

import "fmt"

// CandidateEventKind tells what happened to a candidate in a block.
type CandidateEventKind uint8

const (
	// CandidateEventBacked is emitted when a candidate is backed by a group of validators.
	CandidateEventBacked CandidateEventKind = iota
	// CandidateEventIncluded is emitted when a candidate becomes available and is included.
	CandidateEventIncluded
	// CandidateEventTimedOut is emitted when a candidate times out waiting for availability.
	CandidateEventTimedOut
)

func (k CandidateEventKind) String() string {
	switch k {
	case CandidateEventBacked:
		return "backed"
	case CandidateEventIncluded:
		return "included"
	case CandidateEventTimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// CandidateEvent is a runtime event about a candidate, as reported for a relay chain block.
type CandidateEvent struct {
	Kind       CandidateEventKind
	Receipt    CandidateReceipt
	HeadData   []byte
	CoreIndex  uint32
	GroupIndex uint32
}

// NewIncludedEvent returns a CandidateEventIncluded event for the receipt.
func NewIncludedEvent(receipt CandidateReceipt) CandidateEvent {
	return CandidateEvent{Kind: CandidateEventIncluded, Receipt: receipt}
}

// IncludedReceipts filters included candidates out of events, preserving order.
func IncludedReceipts(events []CandidateEvent) []CandidateReceipt {
	var receipts []CandidateReceipt
	for _, ev := range events {
		if ev.Kind == CandidateEventIncluded {
			receipts = append(receipts, ev.Receipt)
		}
	}
	return receipts
}

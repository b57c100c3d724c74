package chain

import "errors"

var (
	// ErrResponseDropped is returned when the responder drops the response channel
	// without answering.
	ErrResponseDropped = errors.New("response channel dropped")

	// ErrClosed is returned when the request channels are closed.
	ErrClosed = errors.New("chain request channels closed")
)

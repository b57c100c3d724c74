package types

import "errors"

var (
	// ErrInvalidHashLength is returned when decoded hash has wrong size.
	ErrInvalidHashLength = errors.New("invalid hash length")

	// ErrNilReceipt is returned when candidate receipt is missing.
	ErrNilReceipt = errors.New("nil candidate receipt")
)

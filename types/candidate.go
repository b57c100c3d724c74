package types

import (
	"encoding/hex"
)

// ParaID identifies a parachain.
type ParaID uint32

// CollatorID is the public key of a collator.
type CollatorID [32]byte

// CollatorSignature is a signature over the candidate descriptor.
type CollatorSignature [64]byte

// CandidateHash is the identity of a candidate receipt.
type CandidateHash Hash

// String returns hex representation of the candidate hash.
func (c CandidateHash) String() string {
	return hex.EncodeToString(c[:])
}

// MarshalText implements encoding.TextMarshaler.
func (c CandidateHash) MarshalText() ([]byte, error) {
	return Hash(c).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CandidateHash) UnmarshalText(text []byte) error {
	return (*Hash)(c).UnmarshalText(text)
}

// CandidateDescriptor describes a parachain candidate.
type CandidateDescriptor struct {
	ParaID                      ParaID
	RelayParent                 Hash
	Collator                    CollatorID
	PersistedValidationDataHash Hash
	PovHash                     Hash
	ErasureRoot                 Hash
	Signature                   CollatorSignature
	ParaHead                    Hash
	ValidationCodeHash          Hash
}

// CandidateReceipt is a candidate descriptor together with the hash of its commitments.
type CandidateReceipt struct {
	Descriptor      CandidateDescriptor
	CommitmentsHash Hash
}

// Hash returns the candidate hash of the receipt.
func (r *CandidateReceipt) Hash() (CandidateHash, error) {
	blob, err := r.MarshalBinary()
	if err != nil {
		return CandidateHash{}, err
	}
	return CandidateHash(BlakeTwo256(blob)), nil
}

// RelayParent returns the relay chain block the candidate was built against.
func (r *CandidateReceipt) RelayParent() Hash {
	return r.Descriptor.RelayParent
}

package types

import (
	"crypto/rand"
)

// GetRandomBytes returns a byte slice of random bytes of length n.
func GetRandomBytes(n int) []byte {
	data := make([]byte, n)
	_, _ = rand.Read(data)
	return data
}

// GetRandomHash returns a random hash.
func GetRandomHash() Hash {
	var h Hash
	copy(h[:], GetRandomBytes(HashSize))
	return h
}

// GetActivatedLeaf returns a fresh leaf for a linear chain built with BlockNumberHash.
func GetActivatedLeaf(n BlockNumber) ActivatedLeaf {
	return ActivatedLeaf{
		Hash:   BlockNumberHash(n),
		Number: n,
		Status: LeafStatusFresh,
	}
}

// GetCandidateReceipt returns a candidate receipt built against relayParent with zeroed hashes.
func GetCandidateReceipt(paraID ParaID, relayParent Hash) CandidateReceipt {
	return CandidateReceipt{
		Descriptor: CandidateDescriptor{
			ParaID:      paraID,
			RelayParent: relayParent,
		},
	}
}

// GetRandomCandidateReceipt returns a candidate receipt with random contents built against relayParent.
func GetRandomCandidateReceipt(relayParent Hash) CandidateReceipt {
	r := CandidateReceipt{
		Descriptor: CandidateDescriptor{
			RelayParent:                 relayParent,
			PersistedValidationDataHash: GetRandomHash(),
			PovHash:                     GetRandomHash(),
			ErasureRoot:                 GetRandomHash(),
			ParaHead:                    GetRandomHash(),
			ValidationCodeHash:          GetRandomHash(),
		},
		CommitmentsHash: GetRandomHash(),
	}
	copy(r.Descriptor.Collator[:], GetRandomBytes(len(r.Descriptor.Collator)))
	copy(r.Descriptor.Signature[:], GetRandomBytes(len(r.Descriptor.Signature)))
	return r
}

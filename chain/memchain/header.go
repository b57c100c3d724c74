package memchain

import (
	"encoding/binary"
	"fmt"

	"github.com/rollkit/disputes/types"
)

const headerSize = types.HashSize*2 + 4

// Header is a relay chain block header as seen by the simulator.
type Header struct {
	Hash   types.Hash
	Parent types.Hash
	Number types.BlockNumber
}

// MarshalBinary encodes Header into binary form and returns it.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, headerSize)
	copy(buf, h.Hash[:])
	copy(buf[types.HashSize:], h.Parent[:])
	binary.LittleEndian.PutUint32(buf[types.HashSize*2:], uint32(h.Number))
	return buf, nil
}

// UnmarshalBinary decodes binary form of Header into object.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) != headerSize {
		return fmt.Errorf("%w: header of %d bytes", types.ErrInvalidEncoding, len(data))
	}
	copy(h.Hash[:], data)
	copy(h.Parent[:], data[types.HashSize:])
	h.Number = types.BlockNumber(binary.LittleEndian.Uint32(data[types.HashSize*2:]))
	return nil
}

// HashNumber returns hash and number of the header.
func (h *Header) HashNumber() types.HashNumber {
	return types.HashNumber{Hash: h.Hash, Number: h.Number}
}

// ActivatedLeaf returns the block as a fresh leaf.
func (h *Header) ActivatedLeaf() types.ActivatedLeaf {
	return types.ActivatedLeaf{Hash: h.Hash, Number: h.Number, Status: types.LeafStatusFresh}
}

package types

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// receiptSize is the size of a binary encoded CandidateReceipt.
const receiptSize = 4 + 8*HashSize + 64

// ErrInvalidEncoding is returned when binary data can't be decoded.
var ErrInvalidEncoding = errors.New("invalid binary encoding")

// MarshalBinary encodes the receipt into its canonical binary form.
// Fields are written in declaration order, integers little endian.
func (r *CandidateReceipt) MarshalBinary() ([]byte, error) {
	if r == nil {
		return nil, ErrNilReceipt
	}
	buf := bytes.NewBuffer(make([]byte, 0, receiptSize))
	d := &r.Descriptor
	_ = binary.Write(buf, binary.LittleEndian, uint32(d.ParaID))
	buf.Write(d.RelayParent[:])
	buf.Write(d.Collator[:])
	buf.Write(d.PersistedValidationDataHash[:])
	buf.Write(d.PovHash[:])
	buf.Write(d.ErasureRoot[:])
	buf.Write(d.Signature[:])
	buf.Write(d.ParaHead[:])
	buf.Write(d.ValidationCodeHash[:])
	buf.Write(r.CommitmentsHash[:])
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes binary form of CandidateReceipt into object.
func (r *CandidateReceipt) UnmarshalBinary(data []byte) error {
	if len(data) != receiptSize {
		return fmt.Errorf("%w: receipt of %d bytes", ErrInvalidEncoding, len(data))
	}
	rd := bytes.NewReader(data)
	var paraID uint32
	_ = binary.Read(rd, binary.LittleEndian, &paraID)
	d := &r.Descriptor
	d.ParaID = ParaID(paraID)
	for _, field := range [][]byte{
		d.RelayParent[:],
		d.Collator[:],
		d.PersistedValidationDataHash[:],
		d.PovHash[:],
		d.ErasureRoot[:],
		d.Signature[:],
		d.ParaHead[:],
		d.ValidationCodeHash[:],
		r.CommitmentsHash[:],
	} {
		if _, err := io.ReadFull(rd, field); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
	}
	return nil
}

// MarshalCandidateEvents encodes a list of candidate events.
func MarshalCandidateEvents(events []CandidateEvent) ([]byte, error) {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(events)))
	for i := range events {
		ev := &events[i]
		receipt, err := ev.Receipt.MarshalBinary()
		if err != nil {
			return nil, err
		}
		buf.WriteByte(byte(ev.Kind))
		buf.Write(receipt)
		_ = binary.Write(&buf, binary.LittleEndian, ev.CoreIndex)
		_ = binary.Write(&buf, binary.LittleEndian, ev.GroupIndex)
		_ = binary.Write(&buf, binary.LittleEndian, uint32(len(ev.HeadData)))
		buf.Write(ev.HeadData)
	}
	return buf.Bytes(), nil
}

// UnmarshalCandidateEvents decodes a list produced by MarshalCandidateEvents.
func UnmarshalCandidateEvents(data []byte) ([]CandidateEvent, error) {
	rd := bytes.NewReader(data)
	var n uint32
	if err := binary.Read(rd, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	events := make([]CandidateEvent, 0, n)
	receipt := make([]byte, receiptSize)
	for i := uint32(0); i < n; i++ {
		var ev CandidateEvent
		kind, err := rd.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
		ev.Kind = CandidateEventKind(kind)
		if _, err := io.ReadFull(rd, receipt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
		if err := ev.Receipt.UnmarshalBinary(receipt); err != nil {
			return nil, err
		}
		var headLen uint32
		for _, v := range []*uint32{&ev.CoreIndex, &ev.GroupIndex, &headLen} {
			if err := binary.Read(rd, binary.LittleEndian, v); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
			}
		}
		if int(headLen) > rd.Len() {
			return nil, fmt.Errorf("%w: head data of %d bytes", ErrInvalidEncoding, headLen)
		}
		if headLen > 0 {
			ev.HeadData = make([]byte, headLen)
			_, _ = io.ReadFull(rd, ev.HeadData)
		}
		events = append(events, ev)
	}
	if rd.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidEncoding, rd.Len())
	}
	return events, nil
}

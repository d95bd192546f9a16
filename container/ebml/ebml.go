// Package ebml reads and writes the variable-length-integer element
// framing Matroska/WebM use: an Element ID (itself a VINT with its marker
// bit kept) followed by a VINT size and a payload that is either raw data
// or a nested run of further elements (§4.10). Grounded on icza/bitio's
// bit-level reader, which the pack already depends on transitively; the
// reflection-tag-driven decoder found elsewhere in the pack was judged a
// poor style fit for a hand-rolled, explicit walk like every other
// container in this module.
package ebml

import (
	"fmt"
	"io"

	"github.com/icza/bitio"
)

// Element is one decoded EBML element header: its raw ID (including the
// leading length-marker bits, since Matroska element IDs are conventionally
// compared including them) and payload size.
type Element struct {
	ID          uint32
	Size        uint64
	Unknown     bool // size field was all-ones: "size unknown", extends to parent end
	PayloadSize int  // total bytes consumed by the ID+size header
}

// ReadElement reads one element header from r.
func ReadElement(r io.Reader) (Element, error) {
	br := bitio.NewReader(r)
	id, idLen, err := readVINT(br, true)
	if err != nil {
		return Element{}, fmt.Errorf("ebml: reading element id: %w", err)
	}
	size, sizeLen, unknown, err := readVINTSize(br)
	if err != nil {
		return Element{}, fmt.Errorf("ebml: reading element size: %w", err)
	}
	return Element{ID: uint32(id), Size: size, Unknown: unknown, PayloadSize: idLen + sizeLen}, nil
}

// readVINT reads a VINT, keeping the leading marker bit in the returned
// value when keepMarker is true (Matroska element IDs are matched
// including it; sizes are not).
func readVINT(br *bitio.Reader, keepMarker bool) (value uint64, byteLen int, err error) {
	first, err := br.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	length := vintLength(first)
	if length == 0 {
		return 0, 0, fmt.Errorf("ebml: invalid VINT leading byte 0x%02x", first)
	}

	raw := make([]byte, length)
	raw[0] = first
	for i := 1; i < length; i++ {
		b, err := br.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		raw[i] = b
	}

	var v uint64
	if keepMarker {
		v = uint64(raw[0])
	} else {
		v = uint64(raw[0]) &^ (1 << uint(8-length))
	}
	for i := 1; i < length; i++ {
		v = v<<8 | uint64(raw[i])
	}
	return v, length, nil
}

// readVINTSize reads a size VINT (marker bit stripped), detecting the
// all-data-bits-set "unknown size" sentinel some Matroska muxers emit for
// streamed elements.
func readVINTSize(br *bitio.Reader) (value uint64, byteLen int, unknown bool, err error) {
	first, err := br.ReadByte()
	if err != nil {
		return 0, 0, false, err
	}
	length := vintLength(first)
	if length == 0 {
		return 0, 0, false, fmt.Errorf("ebml: invalid VINT leading byte 0x%02x", first)
	}
	marker := byte(1 << uint(8-length))
	dataBits := first &^ marker

	raw := make([]byte, length)
	raw[0] = dataBits
	allOnes := dataBits == marker-1
	for i := 1; i < length; i++ {
		b, err := br.ReadByte()
		if err != nil {
			return 0, 0, false, err
		}
		raw[i] = b
		if b != 0xFF {
			allOnes = false
		}
	}

	var v uint64
	for i := 0; i < length; i++ {
		v = v<<8 | uint64(raw[i])
	}
	return v, length, allOnes, nil
}

// vintLength returns the total byte length of a VINT given its leading
// byte, by locating the position of the highest set bit (the length
// marker). Returns 0 if no marker bit is set at all (invalid).
func vintLength(first byte) int {
	for i := 0; i < 8; i++ {
		if first&(0x80>>uint(i)) != 0 {
			return i + 1
		}
	}
	return 0
}

// WriteVINT encodes v as a VINT of the given byte length, or of the
// smallest length that fits when length is 0, setting the marker bit. It
// is used for element sizes; element IDs, which already carry their
// marker bit, are written byte-for-byte by their callers.
func WriteVINT(v uint64, length int) []byte {
	if length == 0 {
		length = minVINTLength(v)
	}
	marker := byte(1 << uint(8-length))
	b := make([]byte, length)
	for i := length - 1; i >= 1; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	b[0] = byte(v) | marker
	return b
}

func minVINTLength(v uint64) int {
	for length := 1; length <= 8; length++ {
		maxVal := uint64(1)<<(uint(7*length)) - 1
		if v <= maxVal {
			return length
		}
	}
	return 8
}

// ReadPayload reads an element's full payload given its declared Size.
func ReadPayload(r io.Reader, size uint64, allocLimit uint64) ([]byte, error) {
	if allocLimit != 0 && size > allocLimit {
		return nil, fmt.Errorf("ebml: declared size %d exceeds allocation limit %d", size, allocLimit)
	}
	b := make([]byte, size)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Package mp4atom walks the ISO-BMFF/MP4 atom ("box") tree: a 4-byte
// big-endian size, a 4-byte FourCC type, and a payload that is either raw
// data or (for container atoms like moov/udta/meta/ilst) a nested run of
// further atoms (§4.2). Grounded on dhowden-tag's readAtomHeader/readAtoms
// walk, extended to handle the size==0 (extends to EOF) and size==1
// (64-bit extended size) cases dhowden-tag's single-file scope never
// needed.
package mp4atom

import (
	"fmt"
	"io"

	"github.com/go-tagfmt/tagfmt/internal/binutil"
)

// containerAtoms lists the FourCCs whose payload is itself a run of atoms
// rather than opaque data.
var containerAtoms = map[string]bool{
	"moov": true, "udta": true, "ilst": true, "meta": true,
	"trak": true, "mdia": true, "minf": true, "stbl": true,
	"----": false, // explicitly not a container; walked specially by mp4ilst
}

// Atom is one box's header: its type, payload size (excluding the header
// itself), and the absolute file offset its payload starts at.
type Atom struct {
	Type         string
	PayloadSize  uint64
	PayloadStart int64
	HeaderSize   int64 // 8, or 16 when a 64-bit extended size follows the type
}

// ReadHeader reads one atom header at the reader's current position.
// parentEnd, if nonzero, bounds a size==0 "extends to end of parent" atom;
// pass 0 when the parent itself extends to EOF.
func ReadHeader(r io.ReadSeeker, parentEnd int64) (Atom, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return Atom{}, err
	}
	b, err := binutil.ReadBytes(r, 8, 0)
	if err != nil {
		return Atom{}, err
	}
	size32 := binutil.BEUint32(b[0:4])
	typ := string(b[4:8])

	headerSize := int64(8)
	var payloadSize uint64
	switch size32 {
	case 0:
		if parentEnd == 0 {
			eof, err := r.Seek(0, io.SeekEnd)
			if err != nil {
				return Atom{}, err
			}
			if _, err := r.Seek(start+headerSize, io.SeekStart); err != nil {
				return Atom{}, err
			}
			parentEnd = eof
		}
		payloadSize = uint64(parentEnd - start - headerSize)
	case 1:
		ext, err := binutil.ReadBytes(r, 8, 0)
		if err != nil {
			return Atom{}, err
		}
		headerSize = 16
		payloadSize = binutil.BEUint64(ext) - uint64(headerSize)
	default:
		if size32 < 8 {
			return Atom{}, fmt.Errorf("mp4atom: atom %q has implausible size %d", typ, size32)
		}
		payloadSize = uint64(size32) - uint64(headerSize)
	}

	payloadStart, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return Atom{}, err
	}
	return Atom{Type: typ, PayloadSize: payloadSize, PayloadStart: payloadStart, HeaderSize: headerSize}, nil
}

// End returns the absolute offset immediately after this atom's payload.
func (a Atom) End() int64 { return a.PayloadStart + int64(a.PayloadSize) }

// SeekToPayload positions r at the start of a's payload.
func (a Atom) SeekToPayload(r io.Seeker) error {
	_, err := r.Seek(a.PayloadStart, io.SeekStart)
	return err
}

// SeekPastPayload positions r immediately after a's payload, skipping it.
func (a Atom) SeekPastPayload(r io.Seeker) error {
	_, err := r.Seek(a.End(), io.SeekStart)
	return err
}

// IsContainer reports whether a's payload should itself be walked as a run
// of atoms rather than treated as opaque data. "meta" is a container too,
// but its payload carries a leading 4-byte version/flags field the caller
// must skip first (§4.2).
func IsContainer(typ string) bool { return containerAtoms[typ] }

// WriteHeader serializes an atom header for a payload of the given size.
// Extended 64-bit sizes are only emitted when the payload doesn't fit in
// 32 bits, matching how real encoders economize on header bytes.
func WriteHeader(w io.Writer, typ string, payloadSize uint64) error {
	if payloadSize+8 <= 0xFFFFFFFF {
		b := make([]byte, 8)
		binutil.PutBEUint32(b[0:4], uint32(payloadSize+8))
		copy(b[4:8], typ)
		_, err := w.Write(b)
		return err
	}
	b := make([]byte, 16)
	binutil.PutBEUint32(b[0:4], 1)
	copy(b[4:8], typ)
	binutil.PutBEUint64(b[8:16], payloadSize+16)
	_, err := w.Write(b)
	return err
}

// Walk visits every top-level atom within [start, end) (end==0 means
// "until EOF"), calling visit with each header. Stops and returns visit's
// error if it returns non-nil.
func Walk(r io.ReadSeeker, start, end int64, visit func(Atom) error) error {
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return err
	}
	for {
		pos, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		if end != 0 && pos >= end {
			return nil
		}
		atom, err := ReadHeader(r, end)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := visit(atom); err != nil {
			return err
		}
		if err := atom.SeekPastPayload(r); err != nil {
			return err
		}
	}
}

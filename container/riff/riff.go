// Package riff walks the chunk structure shared by RIFF (WAV) and its
// big-endian sibling IFF/AIFF: a 4-byte FourCC, a length, and payload
// padded to an even byte boundary. Grounded on go-audio/riff's Chunk/Parser
// shape as used by the pack's WAV LIST-chunk codec, generalized here to
// also drive AIFF's big-endian sizes via an Endian parameter (§4.6).
package riff

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-tagfmt/tagfmt/internal/binutil"
)

// Endian selects the byte order chunk sizes are encoded in: little for
// RIFF/WAVE, big for FORM/AIFF.
type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

func (e Endian) order() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Chunk is one FourCC-prefixed chunk's header; its payload is read via
// Walker.
type Chunk struct {
	ID   string
	Size uint32
}

// FileHeader is the outermost 12-byte wrapper: "RIFF"/"FORM", a size, and
// a format FourCC ("WAVE"/"AIFF").
type FileHeader struct {
	Container string
	Size      uint32
	Format    string
}

// ReadFileHeader reads the 12-byte outer header.
func ReadFileHeader(r io.Reader, endian Endian) (*FileHeader, error) {
	b, err := binutil.ReadBytes(r, 12, 0)
	if err != nil {
		return nil, fmt.Errorf("riff: reading file header: %w", err)
	}
	return &FileHeader{
		Container: string(b[0:4]),
		Size:      endian.order().Uint32(b[4:8]),
		Format:    string(b[8:12]),
	}, nil
}

// WriteFileHeader serializes h.
func WriteFileHeader(h *FileHeader, endian Endian) []byte {
	b := make([]byte, 12)
	copy(b[0:4], h.Container)
	endian.order().PutUint32(b[4:8], h.Size)
	copy(b[8:12], h.Format)
	return b
}

// Walker iterates top-level chunks of a RIFF/AIFF body (after the 12-byte
// file header), skipping each chunk's payload (plus its pad byte, if any)
// between calls to Next.
type Walker struct {
	r      io.ReadSeeker
	endian Endian
	cur    Chunk
	curOff int64
}

// NewWalker wraps r, which must be positioned immediately after the
// 12-byte outer file header.
func NewWalker(r io.ReadSeeker, endian Endian) *Walker {
	return &Walker{r: r, endian: endian}
}

// Next advances to the next chunk, returning io.EOF once exhausted.
func (w *Walker) Next() (Chunk, error) {
	if w.cur.ID != "" {
		if err := w.skipToNext(); err != nil {
			return Chunk{}, err
		}
	}
	b := make([]byte, 8)
	if _, err := io.ReadFull(w.r, b); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return Chunk{}, err
	}
	off, err := w.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return Chunk{}, err
	}
	w.cur = Chunk{ID: string(b[0:4]), Size: w.endian.order().Uint32(b[4:8])}
	w.curOff = off
	return w.cur, nil
}

// skipToNext seeks past the current chunk's payload plus its pad byte.
func (w *Walker) skipToNext() error {
	size := int64(w.cur.Size)
	if size%2 != 0 {
		size++
	}
	_, err := w.r.Seek(w.curOff+size, io.SeekStart)
	return err
}

// ReadPayload reads the current chunk's full payload. The caller must not
// call Next again afterwards without accounting for the pad byte, which
// Next itself handles via skipToNext.
func (w *Walker) ReadPayload(allocLimit uint64) ([]byte, error) {
	if _, err := w.r.Seek(w.curOff, io.SeekStart); err != nil {
		return nil, err
	}
	return binutil.ReadBytes(w.r, uint64(w.cur.Size), allocLimit)
}

// PayloadOffset returns the absolute file offset of the current chunk's
// payload, used by writers that splice a replacement chunk in place.
func (w *Walker) PayloadOffset() int64 { return w.curOff }

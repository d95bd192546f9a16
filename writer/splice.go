// Package writer rewrites a tag dialect's on-disk bytes back into a
// container in place: computing the new tag region, splicing it in over
// the old one, and shifting whatever follows, without re-encoding audio
// data or disturbing bytes outside the tag region (§4.9). Every per-format
// writer in this package is built on the same Splice primitive, the way
// go-flac's Save and bogem/id3v2's WriteTo both reduce to "assemble the
// new bytes, then move the tail."
package writer

import (
	"fmt"
	"io"
)

// FileLike is the read/seek/write/truncate/length capability set this
// package needs from a caller-supplied handle. It mirrors the module
// root's FileLike exactly; it is declared again here, rather than
// imported, because the module root imports this package to dispatch a
// TaggedFile's Save -- importing back would cycle. Any value satisfying
// the root package's FileLike interface already satisfies this one too,
// since Go interface satisfaction is structural.
type FileLike interface {
	io.Reader
	io.ReaderAt
	io.Writer
	io.Seeker
	Truncate(size int64) error
	Len() (int64, error)
}

// Splice replaces the oldLen bytes at regionStart with newRegion, shifting
// everything after the old region by the size delta. f must already be
// positioned irrelevantly; Splice seeks explicitly throughout.
func Splice(f FileLike, regionStart, oldLen int64, newRegion []byte) error {
	fileLen, err := f.Len()
	if err != nil {
		return fmt.Errorf("writer: reading file length: %w", err)
	}
	tailStart := regionStart + oldLen
	if tailStart > fileLen {
		return fmt.Errorf("writer: region end %d past file length %d", tailStart, fileLen)
	}
	tailLen := fileLen - tailStart

	tail := make([]byte, tailLen)
	if tailLen > 0 {
		if _, err := f.ReadAt(tail, tailStart); err != nil && err != io.EOF {
			return fmt.Errorf("writer: reading tail: %w", err)
		}
	}

	if _, err := f.Seek(regionStart, io.SeekStart); err != nil {
		return err
	}
	if _, err := f.Write(newRegion); err != nil {
		return fmt.Errorf("writer: writing new region: %w", err)
	}
	if _, err := f.Write(tail); err != nil {
		return fmt.Errorf("writer: writing shifted tail: %w", err)
	}

	newFileLen := regionStart + int64(len(newRegion)) + tailLen
	if newFileLen < fileLen {
		if err := f.Truncate(newFileLen); err != nil {
			return fmt.Errorf("writer: truncating: %w", err)
		}
	}
	return nil
}

// ReadAll reads the entire file into memory starting at 0. It reads
// through ReadAt, so the stream position is left unchanged.
func ReadAll(f FileLike) ([]byte, error) {
	fileLen, err := f.Len()
	if err != nil {
		return nil, err
	}
	b := make([]byte, fileLen)
	if _, err := f.ReadAt(b, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return b, nil
}

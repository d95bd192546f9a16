// Package probe identifies container type from magic bytes, possibly past
// a leading ID3v2 header or junk bytes before the first audio frame (C2).
package probe

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-tagfmt/tagfmt/config"
	"github.com/go-tagfmt/tagfmt/internal/binutil"
	"github.com/go-tagfmt/tagfmt/resolver"
)

// Result is what Guess reports: the recognised container along with the
// stream offset at which the first audio frame (or, for containers that
// carry no separate audio payload boundary, the tag) begins.
type Result struct {
	FileType string
	Offset   int64
}

// ErrUnknownFormat is returned when nothing matches and the junk budget
// (opts.MaxJunkBytes) is exhausted.
var ErrUnknownFormat = errors.New("probe: unknown format")

const headBytes = 36

// Guess implements the probe algorithm of §4.1. r must support Seek; Guess
// restores the stream position on return regardless of outcome, since the
// walkers that follow expect to start from 0 (or from Result.Offset).
func Guess(r io.ReadSeeker, ext string, opts config.ParseOptions) (Result, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return Result{}, err
	}
	defer r.Seek(start, io.SeekStart)

	res, err := guessAt(r, start, opts)
	if err == nil {
		return res, nil
	}

	if ext != "" {
		if rv, ok := resolver.ByExtension(ext); ok {
			if _, err := r.Seek(start, io.SeekStart); err != nil {
				return Result{}, err
			}
			b, _ := binutil.ReadBytes(r, headBytes, opts_allocLimit())
			if name, ok := rv.Guess(b); ok {
				return Result{FileType: name, Offset: start}, nil
			}
		}
	}

	if config.Current().UseCustomResolvers {
		if _, err := r.Seek(start, io.SeekStart); err != nil {
			return Result{}, err
		}
		b, _ := binutil.ReadBytes(r, headBytes, opts_allocLimit())
		if name, ok := resolver.Lookup(b); ok {
			return Result{FileType: name, Offset: start}, nil
		}
	}

	return Result{}, ErrUnknownFormat
}

func opts_allocLimit() uint64 {
	return config.Current().AllocationLimit
}

// guessAt performs steps 1-5: fixed-signature match, ID3v2-header skip,
// MPEG/ADTS sync disambiguation, and a bounded junk scan.
func guessAt(r io.ReadSeeker, pos int64, opts config.ParseOptions) (Result, error) {
	junkBudget := opts.MaxJunkBytes
	if junkBudget <= 0 {
		junkBudget = 1024
	}

	for scanned := 0; ; scanned++ {
		if _, err := r.Seek(pos, io.SeekStart); err != nil {
			return Result{}, err
		}
		b := make([]byte, headBytes)
		n, _ := io.ReadFull(r, b)
		b = b[:n]

		if ft, ok := matchSignature(b); ok {
			return Result{FileType: ft, Offset: pos}, nil
		}

		if len(b) >= 3 && string(b[0:3]) == "ID3" {
			if len(b) < 10 {
				return Result{}, fmt.Errorf("probe: truncated ID3v2 header")
			}
			size := binutil.SyncSafe(b[6:10])
			pos += 10 + int64(size)
			continue // retry step 2 from the new offset
		}

		if len(b) >= 2 && isFrameSync(b[0], b[1]) {
			if isADTS(b) {
				return Result{FileType: "AAC", Offset: pos}, nil
			}
			return Result{FileType: "MPEG", Offset: pos}, nil
		}

		if scanned >= junkBudget {
			break
		}
		pos++
	}
	return Result{}, ErrUnknownFormat
}

func isFrameSync(b0, b1 byte) bool {
	return b0 == 0xFF && b1&0xE0 == 0xE0
}

// isADTS disambiguates MPEG audio frame sync from AAC-ADTS sync: ADTS
// carries MPEG version bits that select layer 0, which never occurs for
// genuine MPEG audio (§4.1 step 4). This is the heuristic the design notes
// flag as inherently approximate.
func isADTS(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	layer := (b[1] >> 1) & 0x3
	return layer == 0
}

func matchSignature(b []byte) (string, bool) {
	has := func(off int, sig string) bool {
		return len(b) >= off+len(sig) && string(b[off:off+len(sig)]) == sig
	}
	switch {
	case has(0, "MAC "):
		return "APE", true
	case has(0, "FORM") && (has(8, "AIFF") || has(8, "AIFC")):
		return "AIFF", true
	case has(0, "OggS"):
		return matchOgg(b), true
	case has(0, "fLaC"):
		return "FLAC", true
	case has(0, "RIFF") && has(8, "WAVE"):
		return "WAV", true
	case has(0, "wvpk"):
		return "WavPack", true
	case has(0, "MPCK") || has(0, "MP+"):
		return "Musepack", true
	case has(0, "DSD "):
		return "DSF", true
	case has(0, "FRM8"):
		return "DSDIFF", true
	case len(b) >= 4 && b[0] == 0x1A && b[1] == 0x45 && b[2] == 0xDF && b[3] == 0xA3:
		return "Matroska", true
	case has(4, "ftyp"):
		return "MP4", true
	}
	return "", false
}

func matchOgg(b []byte) string {
	if len(b) < 36 {
		return "OggUnknown"
	}
	page := b[28:36]
	switch {
	case bytes.Contains(page, []byte("vorbis")):
		return "OggVorbis"
	case bytes.HasPrefix(page, []byte("OpusHead")):
		return "OggOpus"
	case bytes.HasPrefix(page, []byte("Speex   ")):
		return "OggSpeex"
	case bytes.Contains(page, []byte("fLaC")):
		return "OggFLAC"
	}
	return "OggUnknown"
}

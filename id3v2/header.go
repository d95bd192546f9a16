package id3v2

import (
	"fmt"
	"io"

	"github.com/go-tagfmt/tagfmt/internal/binutil"
)

// Header is the 10-byte ID3v2 tag header (§4.3).
type Header struct {
	Version           Version
	Revision          byte
	Unsynchronisation bool
	ExtendedHeader    bool
	Experimental      bool
	Footer            bool // v4 only
	Size              uint32 // synchsafe-decoded payload size, excludes header/footer
}

const HeaderSize = 10

// ReadHeader reads and validates the 10-byte header. A v2.2 tag with the
// compression flag set (bit 6) is rejected per §4.3: the spec says to
// ignore such tags entirely.
func ReadHeader(r io.Reader) (*Header, error) {
	b, err := binutil.ReadBytes(r, HeaderSize, 0)
	if err != nil {
		return nil, fmt.Errorf("id3v2: reading header: %w", err)
	}
	if string(b[0:3]) != "ID3" {
		return nil, fmt.Errorf("id3v2: missing \"ID3\" identifier")
	}
	var vers Version
	switch b[3] {
	case 2:
		vers = V2
	case 3:
		vers = V3
	case 4:
		vers = V4
	default:
		return nil, fmt.Errorf("id3v2: unsupported version %d", b[3])
	}

	flags := b[5]
	h := &Header{
		Version:           vers,
		Revision:          b[4],
		Unsynchronisation: binutil.GetBit(flags, 7),
		ExtendedHeader:    binutil.GetBit(flags, 6),
		Experimental:      binutil.GetBit(flags, 5),
		Footer:            vers == V4 && binutil.GetBit(flags, 4),
		Size:              binutil.SyncSafe(b[6:10]),
	}
	if vers == V2 && binutil.GetBit(flags, 6) {
		return nil, fmt.Errorf("id3v2: v2.2 tag is compressed, ignoring per spec")
	}
	return h, nil
}

// WriteHeader serializes a 10-byte header for the given version/flags and
// synchsafe payload size.
func WriteHeader(w io.Writer, h *Header) error {
	b := make([]byte, HeaderSize)
	copy(b[0:3], "ID3")
	b[3] = byte(h.Version)
	b[4] = h.Revision
	var flags byte
	if h.Unsynchronisation {
		flags = binutil.SetBit(flags, 7, true)
	}
	if h.ExtendedHeader {
		flags = binutil.SetBit(flags, 6, true)
	}
	if h.Experimental {
		flags = binutil.SetBit(flags, 5, true)
	}
	if h.Footer && h.Version == V4 {
		flags = binutil.SetBit(flags, 4, true)
	}
	b[5] = flags
	binutil.PutSyncSafe(b[6:10], h.Size)
	_, err := w.Write(b)
	return err
}

// ExtendedHeader carries the optional v3/v4 extended header fields. CRC
// and v4 restriction bytes are recorded but do not gate frame parsing
// (§4.3).
type ExtendedHeader struct {
	Size         uint32
	Flags        byte
	CRC          []byte
	Restrictions []byte
}

// ReadExtendedHeader reads the extended header for the given version. In
// BestAttempt/Relaxed mode, a v3 size is accepted whether or not it is
// synchsafe (the well-known hazard documented in §4.3 and §9); strict mode
// requires a synchsafe size.
func ReadExtendedHeader(r io.Reader, version Version, strict bool) (*ExtendedHeader, error) {
	sizeBytes, err := binutil.ReadBytes(r, 4, 0)
	if err != nil {
		return nil, err
	}
	var size uint32
	if version == V4 {
		size = binutil.SyncSafe(sizeBytes)
	} else {
		if strict && !binutil.LooksSyncSafe(sizeBytes) {
			return nil, fmt.Errorf("id3v2: extended header size is not synchsafe")
		}
		// Prefer the synchsafe interpretation when plausible, matching the
		// same ambiguity resolution used for v3 frame sizes.
		if binutil.LooksSyncSafe(sizeBytes) {
			size = binutil.SyncSafe(sizeBytes)
		} else {
			size = binutil.BEUint32(sizeBytes)
		}
	}

	eh := &ExtendedHeader{Size: size}
	if version == V4 {
		flagBytes, err := binutil.ReadBytes(r, 1, 0)
		if err != nil {
			return nil, err
		}
		flagSize, err := binutil.ReadBytes(r, 1, 0)
		if err != nil {
			return nil, err
		}
		eh.Flags = flagBytes[0]
		rest, err := binutil.ReadBytes(r, uint64(flagSize[0]), 0)
		if err != nil {
			return nil, err
		}
		eh.Restrictions = rest
		return eh, nil
	}

	flagBytes, err := binutil.ReadBytes(r, 2, 0)
	if err != nil {
		return nil, err
	}
	eh.Flags = flagBytes[0]
	if binutil.GetBit(flagBytes[0], 7) {
		crc, err := binutil.ReadBytes(r, 4, 0)
		if err != nil {
			return nil, err
		}
		eh.CRC = crc
	}
	return eh, nil
}

package id3v2

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-tagfmt/tagfmt/internal/binutil"
)

// ReadOptions controls how ReadTag tolerates malformed input, mirroring
// the core's three-mode ParseOptions (§6).
type ReadOptions struct {
	Strict      bool
	Relaxed     bool
	AllocLimit  uint64
}

// ReadTag parses a complete ID3v2 tag (header, optional extended header,
// frame loop) from r, which must be positioned at the leading "ID3"
// identifier. The returned int64 is the total number of bytes consumed,
// including any footer.
func ReadTag(r io.Reader, opts ReadOptions) (*Tag, int64, error) {
	header, err := ReadHeader(r)
	if err != nil {
		return nil, 0, err
	}

	payload, err := binutil.ReadBytes(r, uint64(header.Size), opts.AllocLimit)
	if err != nil {
		return nil, 0, fmt.Errorf("id3v2: reading tag body: %w", err)
	}
	if header.Unsynchronisation {
		payload = removeUnsynchronisation(payload)
	}

	body := bytes.NewReader(payload)
	if header.ExtendedHeader {
		eh, err := ReadExtendedHeader(body, header.Version, opts.Strict)
		if err != nil {
			if opts.Strict {
				return nil, 0, err
			}
			// BestAttempt/Relaxed: give up on the extended header and
			// re-read frames from the start of the payload instead.
			body = bytes.NewReader(payload)
		} else {
			_ = eh
		}
	}

	tag := &Tag{Version: header.Version, Unsynchronisation: header.Unsynchronisation}
	if err := readFrames(body, tag, opts); err != nil && opts.Strict {
		return nil, 0, err
	}

	total := int64(HeaderSize) + int64(header.Size)
	if header.Footer {
		if _, err := binutil.ReadBytes(r, HeaderSize, 0); err != nil {
			return nil, 0, fmt.Errorf("id3v2: reading footer: %w", err)
		}
		total += HeaderSize
	}
	return tag, total, nil
}

// removeUnsynchronisation strips the 0xFF 0x00 escape sequence inserted on
// write whenever unsynchronisation is set (§4.3).
func removeUnsynchronisation(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == 0xFF && i+1 < len(b) && b[i+1] == 0x00 {
			i++
		}
	}
	return out
}

// readFrames loops reading frame headers and bodies until the payload is
// exhausted or padding (a run of NUL bytes) is reached.
func readFrames(r *bytes.Reader, tag *Tag, opts ReadOptions) error {
	for r.Len() > 0 {
		if peekIsPadding(r) {
			break
		}
		id, flags, size, err := readFrameHeader(r, tag.Version, opts.Relaxed)
		if err != nil {
			if opts.Strict {
				return err
			}
			return nil
		}
		if size == 0 {
			continue
		}
		raw, err := binutil.ReadBytes(r, uint64(size), opts.AllocLimit)
		if err != nil {
			if opts.Strict {
				return err
			}
			return nil
		}
		if flags.Unsynchronisation {
			raw = removeUnsynchronisation(raw)
		}
		if flags.DataLengthIndicator && len(raw) >= 4 {
			raw = raw[4:]
		}
		body, err := decodeFrameBody(id.String(), raw, opts.Strict)
		if err != nil {
			if opts.Strict {
				return fmt.Errorf("id3v2: frame %s: %w", id, err)
			}
			body = BinaryFrame{Data: raw}
		}
		frameID := id
		if !id.IsOutdated() {
			if _, verr := Valid(id.String()); verr != nil {
				if opts.Strict {
					return verr
				}
				continue
			}
		}
		tag.add(frameID, flags, body)
	}
	return nil
}

func peekIsPadding(r *bytes.Reader) bool {
	save, _ := r.Seek(0, io.SeekCurrent)
	b, err := r.ReadByte()
	r.Seek(save, io.SeekStart)
	return err != nil || b == 0
}

// readFrameHeader reads one frame header: a 3-byte ID for v2.2, 4-byte for
// v3/v4, followed by a size (plain 24-bit BE for v2.2, plain BE for v3,
// synchsafe for v4) and, for v3/v4, two flag bytes. In relaxed mode, a v3
// size that looks synchsafe is read as one, the same ambiguity resolution
// ReadExtendedHeader already applies to the extended header's own size
// field (§4.3/§9).
func readFrameHeader(r *bytes.Reader, version Version, relaxed bool) (FrameID, FrameFlags, uint32, error) {
	if version == V2 {
		idb, err := binutil.ReadBytes(r, 3, 0)
		if err != nil {
			return FrameID{}, FrameFlags{}, 0, err
		}
		sizeb, err := binutil.ReadBytes(r, 3, 0)
		if err != nil {
			return FrameID{}, FrameFlags{}, 0, err
		}
		return Outdated(string(idb)), FrameFlags{}, binutil.BEUint24(sizeb), nil
	}

	idb, err := binutil.ReadBytes(r, 4, 0)
	if err != nil {
		return FrameID{}, FrameFlags{}, 0, err
	}
	sizeb, err := binutil.ReadBytes(r, 4, 0)
	if err != nil {
		return FrameID{}, FrameFlags{}, 0, err
	}
	flagb, err := binutil.ReadBytes(r, 2, 0)
	if err != nil {
		return FrameID{}, FrameFlags{}, 0, err
	}

	var size uint32
	if version == V4 {
		size = binutil.SyncSafe(sizeb)
	} else if relaxed && binutil.LooksSyncSafe(sizeb) {
		size = binutil.SyncSafe(sizeb)
	} else {
		// v2.3 frame sizes are plain big-endian, not synchsafe -- a common
		// point of confusion with the tag header's own size field.
		size = binutil.BEUint32(sizeb)
	}

	id, err := Valid(string(idb))
	if err != nil {
		return FrameID{}, FrameFlags{}, 0, err
	}
	flags := decodeFrameFlags(version, flagb)
	return id, flags, size, nil
}

func decodeFrameFlags(version Version, b []byte) FrameFlags {
	if version == V3 {
		return FrameFlags{
			TagAlterPreservation:  binutil.GetBit(b[0], 7),
			FileAlterPreservation: binutil.GetBit(b[0], 6),
			ReadOnly:              binutil.GetBit(b[0], 5),
			Compression:           binutil.GetBit(b[1], 7),
			Encryption:            binutil.GetBit(b[1], 6),
			GroupIdentity:         binutil.GetBit(b[1], 5),
		}
	}
	return FrameFlags{
		TagAlterPreservation:  binutil.GetBit(b[0], 6),
		FileAlterPreservation: binutil.GetBit(b[0], 5),
		ReadOnly:              binutil.GetBit(b[0], 4),
		GroupIdentity:         binutil.GetBit(b[1], 6),
		Compression:           binutil.GetBit(b[1], 3),
		Encryption:            binutil.GetBit(b[1], 2),
		Unsynchronisation:     binutil.GetBit(b[1], 1),
		DataLengthIndicator:   binutil.GetBit(b[1], 0),
	}
}

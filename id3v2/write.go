package id3v2

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-tagfmt/tagfmt/config"
	"github.com/go-tagfmt/tagfmt/internal/binutil"
)

// WriteTag serializes tag to w as a complete ID3v2 tag (header + frames +
// padding), using tag.Version. Tags are always written without
// unsynchronisation: the escape sequence exists for decoder compatibility
// on read, and every modern reader accepts a plain v4 tag.
func WriteTag(w io.Writer, tag *Tag, opts config.WriteOptions) error {
	var body bytes.Buffer
	for _, e := range tag.Frames {
		if e.ID.IsOutdated() {
			return fmt.Errorf("id3v2: %w: cannot write outdated frame id %q", ErrBadFrameId, e.ID)
		}
		if err := writeFrame(&body, e, tag.Version); err != nil {
			return err
		}
	}

	padding := uint32(0)
	if opts.HasPadding {
		padding = opts.PreferredPadding
	}
	size := uint32(body.Len()) + padding

	header := &Header{
		Version: tag.Version,
		Size:    size,
	}
	if err := WriteHeader(w, header); err != nil {
		return err
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	if padding > 0 {
		if _, err := w.Write(make([]byte, padding)); err != nil {
			return err
		}
	}
	return nil
}

// Size reports the total on-disk size WriteTag would produce for tag under
// opts, without allocating the frame payloads twice.
func Size(tag *Tag, opts config.WriteOptions) (uint32, error) {
	var body bytes.Buffer
	for _, e := range tag.Frames {
		if err := writeFrame(&body, e, tag.Version); err != nil {
			return 0, err
		}
	}
	padding := uint32(0)
	if opts.HasPadding {
		padding = opts.PreferredPadding
	}
	return HeaderSize + uint32(body.Len()) + padding, nil
}

func writeFrame(w *bytes.Buffer, e frameEntry, version Version) error {
	payload, err := encodeFrameBody(e.Body, version)
	if err != nil {
		return fmt.Errorf("id3v2: encoding frame %s: %w", e.ID, err)
	}

	w.WriteString(e.ID.String())
	sizeField := make([]byte, 4)
	if version == V4 {
		binutil.PutSyncSafe(sizeField, uint32(len(payload)))
	} else {
		copy(sizeField, []byte{
			byte(len(payload) >> 24), byte(len(payload) >> 16),
			byte(len(payload) >> 8), byte(len(payload)),
		})
	}
	w.Write(sizeField)
	w.Write(encodeFrameFlags(version, e.Flags))
	w.Write(payload)
	return nil
}

func encodeFrameFlags(version Version, f FrameFlags) []byte {
	b := make([]byte, 2)
	if version == V3 {
		b[0] = boolBit(f.TagAlterPreservation, 7) | boolBit(f.FileAlterPreservation, 6) | boolBit(f.ReadOnly, 5)
		b[1] = boolBit(f.Compression, 7) | boolBit(f.Encryption, 6) | boolBit(f.GroupIdentity, 5)
		return b
	}
	b[0] = boolBit(f.TagAlterPreservation, 6) | boolBit(f.FileAlterPreservation, 5) | boolBit(f.ReadOnly, 4)
	b[1] = boolBit(f.GroupIdentity, 6) | boolBit(f.Compression, 3) | boolBit(f.Encryption, 2) |
		boolBit(f.Unsynchronisation, 1) | boolBit(f.DataLengthIndicator, 0)
	return b
}

func boolBit(v bool, n uint) byte {
	if v {
		return 1 << n
	}
	return 0
}

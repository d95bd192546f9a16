package writer

import (
	"bytes"
	"io"

	"github.com/go-tagfmt/tagfmt/config"
	"github.com/go-tagfmt/tagfmt/id3v1"
	"github.com/go-tagfmt/tagfmt/id3v2"
	"github.com/go-tagfmt/tagfmt/internal/binutil"
)

// WriteID3v2AtHead splices tag in as the leading ID3v2 region of f,
// replacing whatever ID3v2 header (if any) currently sits at offset 0.
// oldSize is the exact byte length of the existing header+payload+footer
// (0 if there is none), as reported by a prior ReadTag.
func WriteID3v2AtHead(f FileLike, tag *id3v2.Tag, oldSize int64, opts config.WriteOptions) error {
	var buf bytes.Buffer
	if err := id3v2.WriteTag(&buf, tag, opts); err != nil {
		return err
	}
	return Splice(f, 0, oldSize, buf.Bytes())
}

// RemoveID3v2AtHead strips an existing ID3v2 region of oldSize bytes from
// the head of f.
func RemoveID3v2AtHead(f FileLike, oldSize int64) error {
	if oldSize == 0 {
		return nil
	}
	return Splice(f, 0, oldSize, nil)
}

// WriteID3v1AtTail splices tag in as the trailing 128-byte ID3v1 region of
// f, replacing any "TAG"-prefixed trailer already present. hadExisting
// reports whether the prior read found one there.
func WriteID3v1AtTail(f FileLike, tag *id3v1.Tag, hadExisting bool) error {
	fileLen, err := f.Len()
	if err != nil {
		return err
	}
	oldLen := int64(0)
	regionStart := fileLen
	if hadExisting {
		oldLen = id3v1.Size
		regionStart = fileLen - id3v1.Size
	}
	return Splice(f, regionStart, oldLen, tag.Serialize())
}

// RemoveID3v1AtTail strips an existing 128-byte ID3v1 trailer from f.
func RemoveID3v1AtTail(f FileLike) error {
	fileLen, err := f.Len()
	if err != nil {
		return err
	}
	if fileLen < id3v1.Size {
		return nil
	}
	trailer := make([]byte, 3)
	if _, err := f.ReadAt(trailer, fileLen-id3v1.Size); err != nil && err != io.EOF {
		return err
	}
	if string(trailer) != "TAG" {
		return nil
	}
	return Splice(f, fileLen-id3v1.Size, id3v1.Size, nil)
}

// DetectID3v2Size peeks the header at offset 0, reporting its total size
// in bytes (header + payload, no footer since ID3v2 tags on MPEG files
// never carry one in practice) and whether one is present at all.
func DetectID3v2Size(f FileLike, allocLimit uint64) (size int64, present bool, err error) {
	head := make([]byte, id3v2.HeaderSize)
	n, err := f.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return 0, false, err
	}
	if n < id3v2.HeaderSize || string(head[0:3]) != "ID3" {
		return 0, false, nil
	}
	sz := binutil.SyncSafe(head[6:10])
	return int64(id3v2.HeaderSize) + int64(sz), true, nil
}

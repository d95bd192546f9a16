package writer

import (
	"bytes"
	"io"

	"github.com/go-tagfmt/tagfmt/config"
	"github.com/go-tagfmt/tagfmt/id3v2"
	"github.com/go-tagfmt/tagfmt/internal/binutil"
)

// DSF's fixed 28-byte "DSD " file header: a 4-byte magic, the header's own
// chunk size (always 28), the total file size, and a pointer to a trailing
// ID3v2 metadata chunk (0 when absent).
const (
	dsfTotalSizeOff   = 12
	dsfMetaPointerOff = 20
)

// WriteDSFID3v2 splices tag in as the trailing ID3v2 metadata chunk a DSF
// stream points to from its fixed header, replacing any existing one (it
// always runs to EOF, being the last chunk in the file) or appending a new
// one, then patches the header's total-size and metadata-pointer fields
// (§4.9).
func WriteDSFID3v2(f FileLike, tag *id3v2.Tag, opts config.WriteOptions) error {
	fileLen, err := f.Len()
	if err != nil {
		return err
	}

	oldPointer, err := dsfMetaPointer(f)
	if err != nil {
		return err
	}
	start := fileLen
	oldLen := int64(0)
	if oldPointer != 0 {
		start = oldPointer
		oldLen = fileLen - oldPointer
	}

	var buf bytes.Buffer
	if err := id3v2.WriteTag(&buf, tag, opts); err != nil {
		return err
	}
	if err := Splice(f, start, oldLen, buf.Bytes()); err != nil {
		return err
	}

	newFileLen := start + int64(buf.Len())
	return patchDSFHeader(f, newFileLen, start)
}

// RemoveDSFID3v2 strips an existing trailing ID3v2 chunk and zeroes the
// header's metadata pointer.
func RemoveDSFID3v2(f FileLike) error {
	fileLen, err := f.Len()
	if err != nil {
		return err
	}
	pointer, err := dsfMetaPointer(f)
	if err != nil || pointer == 0 {
		return err
	}
	if err := Splice(f, pointer, fileLen-pointer, nil); err != nil {
		return err
	}
	return patchDSFHeader(f, pointer, 0)
}

// DSFMetaPointer reads the trailing-ID3v2 pointer from a DSF stream's
// fixed 28-byte header (0 when no metadata chunk is present).
func DSFMetaPointer(f FileLike) (int64, error) {
	return dsfMetaPointer(f)
}

func dsfMetaPointer(f FileLike) (int64, error) {
	b := make([]byte, 8)
	if _, err := f.ReadAt(b, dsfMetaPointerOff); err != nil && err != io.EOF {
		return 0, err
	}
	return int64(binutil.LEUint64(b)), nil
}

// patchDSFHeader rewrites the total-size and metadata-pointer fields of
// the 28-byte DSD header in place.
func patchDSFHeader(f FileLike, totalSize, metaPointer int64) error {
	b := make([]byte, 8)
	binutil.PutLEUint64(b, uint64(totalSize))
	if _, err := f.Seek(dsfTotalSizeOff, io.SeekStart); err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		return err
	}

	binutil.PutLEUint64(b, uint64(metaPointer))
	if _, err := f.Seek(dsfMetaPointerOff, io.SeekStart); err != nil {
		return err
	}
	_, err := f.Write(b)
	return err
}

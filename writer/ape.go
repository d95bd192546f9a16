package writer

import (
	"io"

	"github.com/go-tagfmt/tagfmt/ape"
)

// LocateAPETag finds an existing APE tag sitting at the tail of a file,
// before any trailing 128-byte ID3v1 block, and reports its on-disk
// extent. found is false when no APE footer is present there, in which
// case start equals the insertion point for a brand new tag.
func LocateAPETag(f FileLike) (start int64, totalLen int64, found bool, err error) {
	return locateAPETag(f)
}

func locateAPETag(f FileLike) (start int64, totalLen int64, found bool, err error) {
	fileLen, err := f.Len()
	if err != nil {
		return 0, 0, false, err
	}

	tagRegionEnd := fileLen
	if fileLen >= 128 {
		id3v1 := make([]byte, 3)
		if _, err := f.ReadAt(id3v1, fileLen-128); err != nil && err != io.EOF {
			return 0, 0, false, err
		}
		if string(id3v1) == "TAG" {
			tagRegionEnd = fileLen - 128
		}
	}

	if tagRegionEnd < ape.FooterSize {
		return tagRegionEnd, 0, false, nil
	}
	footerBytes := make([]byte, ape.FooterSize)
	if _, err := f.ReadAt(footerBytes, tagRegionEnd-ape.FooterSize); err != nil && err != io.EOF {
		return 0, 0, false, err
	}
	footer, err := ape.ParseFooter(footerBytes)
	if err != nil {
		return tagRegionEnd, 0, false, nil
	}

	total := int64(footer.Size)
	if footer.HasHeader {
		total += ape.FooterSize
	}
	return tagRegionEnd - total, total, true, nil
}

// WriteAPETag splices t in as the file's trailing APE tag (the layout
// shared by standalone APE tags and those attached to WavPack and
// Musepack streams), replacing any existing one and preserving a
// trailing 128-byte ID3v1 block if present (§4.5). includeHeader mirrors
// the header/footer duality most APEv2 writers use: a header immediately
// preceding the item list, mirroring the trailing footer's fields.
func WriteAPETag(f FileLike, t *ape.Tag, includeHeader bool) error {
	start, oldLen, _, err := locateAPETag(f)
	if err != nil {
		return err
	}

	items, err := ape.Serialize(t)
	if err != nil {
		return err
	}

	footer := &ape.Footer{
		Version:   uint32(t.Version),
		Size:      uint32(len(items) + ape.FooterSize),
		ItemCount: uint32(len(t.Items)),
		HasHeader: includeHeader,
	}

	var out []byte
	if includeHeader {
		header := *footer
		header.IsHeader = true
		out = append(out, ape.WriteFooter(&header)...)
	}
	out = append(out, items...)
	out = append(out, ape.WriteFooter(footer)...)

	return Splice(f, start, oldLen, out)
}

// RemoveAPETag deletes an existing trailing APE tag, leaving any trailing
// ID3v1 block untouched.
func RemoveAPETag(f FileLike) error {
	start, oldLen, found, err := locateAPETag(f)
	if err != nil || !found {
		return err
	}
	return Splice(f, start, oldLen, nil)
}

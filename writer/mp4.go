package writer

import (
	"fmt"
	"io"

	"github.com/go-tagfmt/tagfmt/container/mp4atom"
	"github.com/go-tagfmt/tagfmt/internal/binutil"
	"github.com/go-tagfmt/tagfmt/mp4ilst"
)

// mp4Path is the located moov/udta/meta/ilst chain a rewrite needs: the
// ilst atom itself plus every ancestor whose size field must grow or
// shrink by the same delta.
type mp4Path struct {
	moov, udta, meta, ilst mp4atom.Atom
	metaPayloadStart       int64 // meta's payload starts with a 4-byte version/flags field (§4.2)
}

// LocateIlst walks the top-level moov/udta/meta/ilst chain of an MP4/M4A
// file read through r (which must support Seek), returning every ancestor
// atom a rewrite needs to patch.
func LocateIlst(r io.ReadSeeker, fileLen int64) (*mp4Path, error) {
	var path mp4Path
	found := false

	err := mp4atom.Walk(r, 0, fileLen, func(a mp4atom.Atom) error {
		if a.Type == "moov" {
			path.moov = a
			return walkMoov(r, a, &path, &found)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("writer: no moov/udta/meta/ilst chain found")
	}
	return &path, nil
}

func walkMoov(r io.ReadSeeker, moov mp4atom.Atom, path *mp4Path, found *bool) error {
	return mp4atom.Walk(r, moov.PayloadStart, moov.End(), func(a mp4atom.Atom) error {
		if a.Type != "udta" {
			return nil
		}
		path.udta = a
		return mp4atom.Walk(r, a.PayloadStart, a.End(), func(a mp4atom.Atom) error {
			if a.Type != "meta" {
				return nil
			}
			path.meta = a
			path.metaPayloadStart = a.PayloadStart + 4 // skip meta's version/flags
			return mp4atom.Walk(r, path.metaPayloadStart, a.End(), func(a mp4atom.Atom) error {
				if a.Type != "ilst" {
					return nil
				}
				path.ilst = a
				*found = true
				return nil
			})
		})
	})
}

// IlstBounds reports the located ilst atom's payload extent, for a caller
// that needs to read its current contents (e.g. mp4ilst.Parse) before
// calling WriteMP4Ilst.
func (p *mp4Path) IlstBounds() (start, end int64) {
	return p.ilst.PayloadStart, p.ilst.End()
}

// WriteMP4Ilst rewrites the ilst atom the path points to with tag's
// contents, patching every ancestor's size field by the resulting delta,
// and fixing up stco/co64 chunk offset tables if growing/shrinking ilst
// shifted mdat's sample data (§4.9's MP4 writer invariant).
func WriteMP4Ilst(f FileLike, path *mp4Path, tag *mp4ilst.Tag) error {
	newIlst := mp4ilst.Serialize(tag)
	oldIlst := path.ilst.HeaderSize + int64(path.ilst.PayloadSize)
	delta := int64(len(newIlst)) - oldIlst

	fileLen, err := f.Len()
	if err != nil {
		return err
	}
	moovEndsBeforeMdat, mdatStart, err := mdatAfterMoov(f, fileLen, path.moov)
	if err != nil {
		return err
	}

	if err := Splice(f, path.ilst.PayloadStart-path.ilst.HeaderSize, oldIlst, newIlst); err != nil {
		return err
	}

	if err := patchAtomSize(f, path.meta, delta); err != nil {
		return err
	}
	if err := patchAtomSize(f, path.udta, delta); err != nil {
		return err
	}
	if err := patchAtomSize(f, path.moov, delta); err != nil {
		return err
	}

	if delta != 0 && moovEndsBeforeMdat {
		if err := fixupChunkOffsets(f, path.moov, mdatStart, delta); err != nil {
			return err
		}
	}
	return nil
}

// patchAtomSize rewrites a's own size field in place by delta, without
// touching its payload bytes. Handles both 32-bit and 64-bit (size==1)
// headers.
func patchAtomSize(f FileLike, a mp4atom.Atom, delta int64) error {
	headerStart := a.PayloadStart - a.HeaderSize
	if a.HeaderSize == 16 {
		b := make([]byte, 8)
		newSize := uint64(a.HeaderSize) + a.PayloadSize + uint64(delta)
		binutil.PutBEUint64(b, newSize)
		if _, err := f.Seek(headerStart+8, io.SeekStart); err != nil {
			return err
		}
		_, err := f.Write(b)
		return err
	}
	b := make([]byte, 4)
	newSize := uint64(a.HeaderSize) + a.PayloadSize + uint64(delta)
	binutil.PutBEUint32(b, uint32(newSize))
	if _, err := f.Seek(headerStart, io.SeekStart); err != nil {
		return err
	}
	_, err := f.Write(b)
	return err
}

// mdatAfterMoov reports whether moov's payload ends at or before mdat's
// start (the common "moov-at-front"/streaming layout, which needs offset
// fixups when moov grows) as opposed to the "moov-at-end" layout where
// growing moov never moves sample data.
func mdatAfterMoov(f FileLike, fileLen int64, moov mp4atom.Atom) (before bool, mdatStart int64, err error) {
	r := io.NewSectionReader(f, 0, fileLen)
	var mdat int64 = -1
	err = mp4atom.Walk(r, 0, fileLen, func(a mp4atom.Atom) error {
		if a.Type == "mdat" && mdat < 0 {
			mdat = a.PayloadStart - a.HeaderSize
		}
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	if mdat < 0 {
		return false, 0, nil
	}
	return moov.End() <= mdat, mdat, nil
}

// fixupChunkOffsets walks every stbl/stco (32-bit) and stbl/co64 (64-bit)
// chunk-offset table reachable under moov, adding delta to every entry at
// or past mdatStart -- the only entries shifted by moov's own resize.
func fixupChunkOffsets(f FileLike, moov mp4atom.Atom, mdatStart int64, delta int64) error {
	fileLen, err := f.Len()
	if err != nil {
		return err
	}
	r := io.NewSectionReader(f, 0, fileLen)
	return mp4atom.Walk(r, moov.PayloadStart, moov.End()+delta, func(a mp4atom.Atom) error {
		return walkForStbl(r, f, a, mdatStart, delta)
	})
}

func walkForStbl(r io.ReadSeeker, f FileLike, a mp4atom.Atom, mdatStart, delta int64) error {
	if a.Type == "stco" {
		return patchChunkOffsetTable(f, a, mdatStart, delta, false)
	}
	if a.Type == "co64" {
		return patchChunkOffsetTable(f, a, mdatStart, delta, true)
	}
	if !mp4atom.IsContainer(a.Type) {
		return nil
	}
	return mp4atom.Walk(r, a.PayloadStart, a.End(), func(child mp4atom.Atom) error {
		return walkForStbl(r, f, child, mdatStart, delta)
	})
}

// patchChunkOffsetTable rewrites an stco/co64 box's entries in place.
// Both box formats carry a 4-byte version/flags field then a 4-byte
// entry count, followed by fixed-width offsets (§4.2's MP4 cross-
// reference; grounded on the same stco-patching step every MP4 muxer
// performs after relocating moov).
func patchChunkOffsetTable(f FileLike, a mp4atom.Atom, mdatStart, delta int64, wide bool) error {
	header := make([]byte, 8)
	if _, err := f.ReadAt(header, a.PayloadStart); err != nil && err != io.EOF {
		return err
	}
	count := binutil.BEUint32(header[4:8])

	entrySize := int64(4)
	if wide {
		entrySize = 8
	}
	tableStart := a.PayloadStart + 8

	for i := uint32(0); i < count; i++ {
		pos := tableStart + int64(i)*entrySize
		if wide {
			b := make([]byte, 8)
			if _, err := f.ReadAt(b, pos); err != nil && err != io.EOF {
				return err
			}
			off := int64(binutil.BEUint64(b))
			if off >= mdatStart {
				binutil.PutBEUint64(b, uint64(off+delta))
				if _, err := f.Seek(pos, io.SeekStart); err != nil {
					return err
				}
				if _, err := f.Write(b); err != nil {
					return err
				}
			}
			continue
		}
		b := make([]byte, 4)
		if _, err := f.ReadAt(b, pos); err != nil && err != io.EOF {
			return err
		}
		off := int64(binutil.BEUint32(b))
		if off >= mdatStart {
			binutil.PutBEUint32(b, uint32(off+delta))
			if _, err := f.Seek(pos, io.SeekStart); err != nil {
				return err
			}
			if _, err := f.Write(b); err != nil {
				return err
			}
		}
	}
	return nil
}

package writer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-tagfmt/tagfmt/container/ogg"
	"github.com/go-tagfmt/tagfmt/internal/binutil"
)

// headerPage bundles a parsed page with its on-disk byte length.
type headerPage struct {
	page *ogg.Page
	size int64
}

// WriteOggComments replaces the comment-header packet (logical packet
// index 1) of the Ogg stream starting at offset in f with newCommentPacket
// verbatim -- already framed with whatever magic the codec's comment
// packet carries (Vorbis's "\x03vorbis", Opus's "OpusTags", Speex's bare
// vendor/field stream); this package stays agnostic of that framing so it
// need not import the codecs that know it. wantHeaderPackets is the number
// of leading header packets the dialect defines before audio data begins
// (3 for Vorbis: identification, comments, setup; 2 for Opus and Speex).
// Only the header pages are re-muxed -- one packet per page, the simplest
// layout every decoder accepts, even though some encoders pack several
// header packets onto one page -- and spliced in; audio pages are left
// untouched apart from (when the header page count changed) patching
// their SequenceNumber field and recomputing their CRC in place, since
// Ogg requires per-serial-number sequence numbers to stay contiguous
// (§4.8).
func WriteOggComments(f FileLike, offset int64, wantHeaderPackets int, newCommentPacket []byte) error {
	fileLen, err := f.Len()
	if err != nil {
		return err
	}
	r := io.NewSectionReader(f, offset, fileLen-offset)

	var pages []headerPage
	var packets [][]byte
	var current bytes.Buffer
	var serial uint32
	var startSeq uint32
	first := true

	for len(packets) < wantHeaderPackets {
		p, err := ogg.ReadPage(r)
		if err != nil {
			return fmt.Errorf("writer: reading ogg header page: %w", err)
		}
		if first {
			serial = p.SerialNumber
			startSeq = p.SequenceNumber
			first = false
		}
		pages = append(pages, headerPage{page: p, size: pageSize(p)})
		for _, seg := range p.Segments {
			current.Write(seg)
			if len(seg) < 255 {
				packets = append(packets, append([]byte(nil), current.Bytes()...))
				current.Reset()
			}
		}
	}
	if len(packets) < wantHeaderPackets {
		return fmt.Errorf("writer: ogg stream ended before %d header packets", wantHeaderPackets)
	}
	packets[1] = newCommentPacket

	var oldLen int64
	for _, hp := range pages {
		oldLen += hp.size
	}

	newPages := muxOnePacketPerPage(packets, serial, startSeq)
	var buf bytes.Buffer
	for _, np := range newPages {
		if err := ogg.WritePage(&buf, np); err != nil {
			return err
		}
	}

	oldPageCount := int64(len(pages))
	newPageCount := int64(len(newPages))

	if err := Splice(f, offset, oldLen, buf.Bytes()); err != nil {
		return err
	}

	if newPageCount != oldPageCount {
		return renumberTrailingPages(f, offset+int64(buf.Len()), serial, startSeq+uint32(newPageCount))
	}
	return nil
}

func pageSize(p *ogg.Page) int64 {
	n := int64(27 + len(p.Segments))
	for _, s := range p.Segments {
		n += int64(len(s))
	}
	return n
}

// muxOnePacketPerPage places each packet on its own page, splitting a
// packet whose segment count exceeds 255 across as many continuation
// pages as it needs.
func muxOnePacketPerPage(packets [][]byte, serial uint32, startSeq uint32) []*ogg.Page {
	var pages []*ogg.Page
	seq := startSeq
	for i, pkt := range packets {
		segs := ogg.SplitIntoSegments(pkt)
		continuation := false
		for len(segs) > 0 {
			take := len(segs)
			if take > 255 {
				take = 255
			}
			pages = append(pages, &ogg.Page{
				SerialNumber:   serial,
				SequenceNumber: seq,
				FirstPage:      i == 0 && len(pages) == 0,
				Continuation:   continuation,
				Segments:       segs[:take],
			})
			segs = segs[take:]
			continuation = len(segs) > 0
			seq++
		}
	}
	return pages
}

// renumberTrailingPages walks every page for serial starting at
// fileOffset, overwriting its SequenceNumber field with seq (incrementing
// per page) and recomputing its CRC. No bytes are shifted: the header
// splice already moved these pages to their new position verbatim, so
// only the two 4-byte fields embedded in each page's own header change.
func renumberTrailingPages(f FileLike, fileOffset int64, serial uint32, seq uint32) error {
	fileLen, err := f.Len()
	if err != nil {
		return err
	}
	pos := fileOffset
	for pos < fileLen {
		head := make([]byte, 27)
		if _, err := f.ReadAt(head, pos); err != nil && err != io.EOF {
			return err
		}
		if string(head[0:4]) != ogg.CapturePattern {
			return fmt.Errorf("writer: expected ogg page at offset %d", pos)
		}
		numSegments := int(head[26])
		table := make([]byte, numSegments)
		if numSegments > 0 {
			if _, err := f.ReadAt(table, pos+27); err != nil && err != io.EOF {
				return err
			}
		}
		payloadLen := 0
		for _, s := range table {
			payloadLen += int(s)
		}
		total := int64(27 + numSegments + payloadLen)

		raw := make([]byte, total)
		if _, err := f.ReadAt(raw, pos); err != nil && err != io.EOF {
			return err
		}

		if binutil.LEUint32(raw[14:18]) == serial {
			binutil.PutLEUint32(raw[18:22], seq)
			raw[22], raw[23], raw[24], raw[25] = 0, 0, 0, 0
			checksum := ogg.Checksum(raw)
			binutil.PutLEUint32(raw[22:26], checksum)
			if _, err := f.Seek(pos, io.SeekStart); err != nil {
				return err
			}
			if _, err := f.Write(raw); err != nil {
				return err
			}
			seq++
		}
		pos += total
	}
	return nil
}

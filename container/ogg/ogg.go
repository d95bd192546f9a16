// Package ogg reads and writes Ogg pages and reassembles the packets they
// carry, handling the lacing/continuation rules needed to extract and
// replace a Vorbis/Opus/Speex comment header that spans more than one page
// (§4.8). Grounded on dhowden-tag's readPackets page-walking logic,
// extended here with a writer and CRC-32 recomputation dhowden-tag never
// needed since it only reads.
package ogg

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-tagfmt/tagfmt/internal/binutil"
)

const (
	CapturePattern = "OggS"
	maxSegmentSize = 255
)

// Checksum computes an Ogg page's CRC-32 (polynomial 0x04c11db7, MSB
// first, zero initial value, no final XOR) over raw, which must already
// have its checksum field (bytes 22:26) zeroed. Exported so a writer that
// patches an existing page's bytes in place (rather than re-emitting it
// via WritePage) can recompute the same checksum.
func Checksum(raw []byte) uint32 {
	var crc uint32
	for _, b := range raw {
		crc ^= uint32(b) << 24
		for i := 0; i < 8; i++ {
			if crc&0x80000000 != 0 {
				crc = crc<<1 ^ 0x04c11db7
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// Page is one physical Ogg page: its header fields plus the raw bytes of
// every lacing segment concatenated (the packet data belonging to this
// page, not yet split at packet boundaries).
type Page struct {
	Version        byte
	Continuation   bool
	FirstPage      bool
	LastPage       bool
	GranulePosition uint64
	SerialNumber   uint32
	SequenceNumber uint32
	Segments       [][]byte // lacing-table-delimited segments, in order
}

// ReadPage reads one physical page starting at the "OggS" capture pattern.
func ReadPage(r io.Reader) (*Page, error) {
	b, err := binutil.ReadBytes(r, 27, 0)
	if err != nil {
		return nil, err
	}
	if string(b[0:4]) != CapturePattern {
		return nil, fmt.Errorf("ogg: missing capture pattern")
	}
	headerType := b[5]
	p := &Page{
		Version:         b[4],
		Continuation:    headerType&0x1 != 0,
		FirstPage:       headerType&0x2 != 0,
		LastPage:        headerType&0x4 != 0,
		GranulePosition: binutil.LEUint64(b[6:14]),
		SerialNumber:    binutil.LEUint32(b[14:18]),
		SequenceNumber:  binutil.LEUint32(b[18:22]),
	}
	numSegments := int(b[26])
	table, err := binutil.ReadBytes(r, uint64(numSegments), 0)
	if err != nil {
		return nil, err
	}

	// A segment run of consecutive 255-byte lacing values followed by a
	// value < 255 is one packet fragment; split here into raw segment
	// bytes, leaving packet reassembly to ReadPackets.
	for _, segLen := range table {
		data, err := binutil.ReadBytes(r, uint64(segLen), 0)
		if err != nil {
			return nil, err
		}
		p.Segments = append(p.Segments, data)
	}
	return p, nil
}

// payloadSize returns the total byte length of every segment in the page.
func (p *Page) payloadSize() int {
	n := 0
	for _, s := range p.Segments {
		n += len(s)
	}
	return n
}

// lacingTable rebuilds the per-segment size table. A segment exactly
// maxSegmentSize long is followed by an explicit zero-length segment only
// when the original packet boundary fell exactly there; Segments already
// holds that split, so the table is a direct transcription of lengths.
func (p *Page) lacingTable() []byte {
	table := make([]byte, 0, len(p.Segments))
	for _, s := range p.Segments {
		table = append(table, byte(len(s)))
	}
	return table
}

// WritePage serializes p, recomputing its CRC-32 checksum per the Ogg
// framing spec (the checksum field is zeroed during the computation then
// patched in).
func WritePage(w io.Writer, p *Page) error {
	var buf bytes.Buffer
	buf.WriteString(CapturePattern)
	buf.WriteByte(p.Version)

	var headerType byte
	if p.Continuation {
		headerType |= 0x1
	}
	if p.FirstPage {
		headerType |= 0x2
	}
	if p.LastPage {
		headerType |= 0x4
	}
	buf.WriteByte(headerType)

	granuleB := make([]byte, 8)
	binutil.PutLEUint64(granuleB, p.GranulePosition)
	buf.Write(granuleB)

	serialB := make([]byte, 4)
	binutil.PutLEUint32(serialB, p.SerialNumber)
	buf.Write(serialB)

	seqB := make([]byte, 4)
	binutil.PutLEUint32(seqB, p.SequenceNumber)
	buf.Write(seqB)

	crcPos := buf.Len()
	buf.Write([]byte{0, 0, 0, 0}) // checksum placeholder

	table := p.lacingTable()
	buf.WriteByte(byte(len(table)))
	buf.Write(table)
	for _, s := range p.Segments {
		buf.Write(s)
	}

	raw := buf.Bytes()
	checksum := Checksum(raw)
	binutil.PutLEUint32(raw[crcPos:crcPos+4], checksum)

	_, err := w.Write(raw)
	return err
}

// SplitIntoSegments breaks a packet's raw bytes into the 255-byte lacing
// segments Ogg framing requires, including a trailing zero-length segment
// when the packet length is an exact multiple of 255 (so the reader can
// tell the packet actually ended there).
func SplitIntoSegments(packet []byte) [][]byte {
	var segs [][]byte
	for len(packet) >= maxSegmentSize {
		segs = append(segs, packet[:maxSegmentSize])
		packet = packet[maxSegmentSize:]
	}
	segs = append(segs, packet)
	return segs
}

// ReadPackets reconstructs the logical packet stream for a run of pages
// sharing one serial number, returning each complete packet and the pages
// consumed. Packets are considered complete once a lacing value under 255
// ends a page's final segment in that packet's run, matching dhowden-tag's
// continuation-flag walk. Reading stops as soon as wantPackets complete
// packets have been produced (the header packets a tag reader needs sit in
// the first one or two pages; the remaining audio pages are never read).
func ReadPackets(r io.Reader, wantPackets int) (packets [][]byte, pagesRead int, err error) {
	var current bytes.Buffer
	for {
		page, err := ReadPage(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, pagesRead, err
		}
		pagesRead++
		for _, seg := range page.Segments {
			current.Write(seg)
			if len(seg) < maxSegmentSize {
				packets = append(packets, append([]byte(nil), current.Bytes()...))
				current.Reset()
				if len(packets) >= wantPackets {
					return packets, pagesRead, nil
				}
			}
		}
		if page.LastPage {
			break
		}
	}
	return packets, pagesRead, nil
}

package ogg

import (
	"bytes"
	"testing"
)

func TestWritePageReadPageRoundTrip(t *testing.T) {
	page := &Page{
		Version:        0,
		FirstPage:      true,
		SerialNumber:   42,
		SequenceNumber: 0,
		Segments:       [][]byte{[]byte("hello"), []byte("world")},
	}
	var buf bytes.Buffer
	if err := WritePage(&buf, page); err != nil {
		t.Fatalf("WritePage: %v", err)
	}

	got, err := ReadPage(&buf)
	if err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	if got.SerialNumber != 42 || len(got.Segments) != 2 {
		t.Fatalf("unexpected page: %#v", got)
	}
	if string(got.Segments[0]) != "hello" || string(got.Segments[1]) != "world" {
		t.Fatalf("unexpected segments: %v", got.Segments)
	}
}

func TestSplitIntoSegmentsHandlesExactMultiple(t *testing.T) {
	packet := bytes.Repeat([]byte{1}, 255)
	segs := SplitIntoSegments(packet)
	if len(segs) != 2 || len(segs[1]) != 0 {
		t.Fatalf("expected a trailing zero-length segment, got %d segments", len(segs))
	}
}

func TestReadPacketsReassemblesSpanningPackets(t *testing.T) {
	packet := bytes.Repeat([]byte{9}, 300)
	var buf bytes.Buffer
	page := &Page{FirstPage: true, SerialNumber: 1, Segments: SplitIntoSegments(packet)}
	if err := WritePage(&buf, page); err != nil {
		t.Fatalf("WritePage: %v", err)
	}

	packets, _, err := ReadPackets(&buf, 1)
	if err != nil {
		t.Fatalf("ReadPackets: %v", err)
	}
	if len(packets) != 1 || len(packets[0]) != 300 {
		t.Fatalf("unexpected packets: %d, lens=%v", len(packets), func() []int {
			var l []int
			for _, p := range packets {
				l = append(l, len(p))
			}
			return l
		}())
	}
}

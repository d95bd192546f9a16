package id3v2

import (
	"bytes"
	"testing"

	"github.com/go-tagfmt/tagfmt/config"
	"github.com/go-tagfmt/tagfmt/internal/binutil"
)

func TestRoundTripTextFrames(t *testing.T) {
	tag := New()
	_ = tag.Add(MustValid("TIT2"), FrameFlags{}, TextFrame{Values: []string{"Song Title"}})
	_ = tag.Add(MustValid("TPE1"), FrameFlags{}, TextFrame{Values: []string{"Artist One", "Artist Two"}})

	var buf bytes.Buffer
	opts := config.DefaultWriteOptions()
	opts.HasPadding = false
	if err := WriteTag(&buf, tag, opts); err != nil {
		t.Fatalf("WriteTag: %v", err)
	}

	got, n, err := ReadTag(&buf, ReadOptions{Strict: true})
	if err != nil {
		t.Fatalf("ReadTag: %v", err)
	}
	if n == 0 {
		t.Fatalf("expected non-zero bytes consumed")
	}

	title, ok := got.First("TIT2")
	if !ok {
		t.Fatalf("missing TIT2")
	}
	tf, ok := title.Body.(TextFrame)
	if !ok || len(tf.Values) != 1 || tf.Values[0] != "Song Title" {
		t.Fatalf("unexpected TIT2 body: %#v", title.Body)
	}
}

func TestAddEnforcesUniqueness(t *testing.T) {
	tag := New()
	_ = tag.Add(MustValid("PCNT"), FrameFlags{}, BinaryFrame{Data: []byte{1}})
	_ = tag.Add(MustValid("PCNT"), FrameFlags{}, BinaryFrame{Data: []byte{2}})
	if len(tag.All("PCNT")) != 1 {
		t.Fatalf("expected exactly one PCNT frame, got %d", len(tag.All("PCNT")))
	}
}

func TestAddEnforcesPictureUniqueness(t *testing.T) {
	tag := New()
	_ = tag.Add(MustValid("APIC"), FrameFlags{}, AttachedPictureFrame{PictureType: 1, Data: []byte{0xFF}})
	_ = tag.Add(MustValid("APIC"), FrameFlags{}, AttachedPictureFrame{PictureType: 1, Data: []byte{0xAA}})
	_ = tag.Add(MustValid("APIC"), FrameFlags{}, AttachedPictureFrame{PictureType: 3, Data: []byte{0xBB}})

	pics := tag.Pictures()
	if len(pics) != 2 {
		t.Fatalf("expected 2 pictures (one icon replaced, one cover), got %d", len(pics))
	}
}

func TestWriteRejectsOutdatedFrameID(t *testing.T) {
	tag := New()
	tag.Frames = append(tag.Frames, frameEntry{ID: Outdated("TT2"), Body: TextFrame{Values: []string{"x"}}})

	var buf bytes.Buffer
	if err := WriteTag(&buf, tag, config.DefaultWriteOptions()); err == nil {
		t.Fatalf("expected error writing outdated frame id")
	}
}

func TestReadID3v22Frames(t *testing.T) {
	body := append([]byte{0x00}, []byte("Song Title")...)
	frame := append([]byte("TT2"), byte(len(body)>>16), byte(len(body)>>8), byte(len(body)))
	frame = append(frame, body...)

	var buf bytes.Buffer
	buf.WriteString("ID3")
	buf.WriteByte(2) // v2.2
	buf.WriteByte(0) // revision
	buf.WriteByte(0) // flags
	sizeField := make([]byte, 4)
	binutil.PutSyncSafe(sizeField, uint32(len(frame)))
	buf.Write(sizeField)
	buf.Write(frame)

	tag, n, err := ReadTag(&buf, ReadOptions{Strict: true})
	if err != nil {
		t.Fatalf("ReadTag: %v", err)
	}
	if n == 0 {
		t.Fatalf("expected non-zero bytes consumed")
	}

	e, ok := tag.First("TT2")
	if !ok {
		t.Fatalf("expected outdated TT2 frame to survive a v2.2 read, got %d frames", len(tag.Frames))
	}
	tf, ok := e.Body.(TextFrame)
	if !ok || len(tf.Values) != 1 || tf.Values[0] != "Song Title" {
		t.Fatalf("unexpected TT2 body: %#v", e.Body)
	}
}

func TestCommentFrameRoundTrip(t *testing.T) {
	tag := New()
	_ = tag.Add(MustValid("COMM"), FrameFlags{}, CommentFrame{Language: "eng", Description: "", Text: "hello"})

	var buf bytes.Buffer
	opts := config.DefaultWriteOptions()
	opts.HasPadding = false
	if err := WriteTag(&buf, tag, opts); err != nil {
		t.Fatalf("WriteTag: %v", err)
	}
	got, _, err := ReadTag(&buf, ReadOptions{Strict: true})
	if err != nil {
		t.Fatalf("ReadTag: %v", err)
	}
	e, ok := got.First("COMM")
	if !ok {
		t.Fatalf("missing COMM")
	}
	cf := e.Body.(CommentFrame)
	if cf.Language != "eng" || cf.Text != "hello" {
		t.Fatalf("unexpected COMM body: %#v", cf)
	}
}

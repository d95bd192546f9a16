package flacblock

import (
	"bytes"
	"testing"
)

func TestWriteChainReadChainRoundTrip(t *testing.T) {
	blocks := []Block{
		{Type: StreamInfo, Data: make([]byte, 34)},
		{Type: VorbisComment, Data: []byte("hello")},
		{Type: Padding, Data: make([]byte, 100)},
	}
	var buf bytes.Buffer
	if err := WriteChain(&buf, blocks); err != nil {
		t.Fatalf("WriteChain: %v", err)
	}

	got, err := ReadChain(&buf, 0)
	if err != nil {
		t.Fatalf("ReadChain: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(got))
	}
	if !got[2].IsLast {
		t.Fatalf("expected last block to carry IsLast")
	}
	if string(got[1].Data) != "hello" {
		t.Fatalf("unexpected VorbisComment payload: %q", got[1].Data)
	}
}

func TestReplacePaddingShrinksWhenSmaller(t *testing.T) {
	blocks := []Block{
		{Type: VorbisComment, Data: []byte("0123456789")},
		{Type: Padding, Data: make([]byte, 50)},
	}
	out, ok := ReplacePadding(blocks, 0, []byte("01234"))
	if !ok {
		t.Fatalf("expected ReplacePadding to succeed")
	}
	if len(out[1].Data) != 55 {
		t.Fatalf("expected padding to grow by 5, got %d", len(out[1].Data))
	}
}

func TestReplacePaddingFailsWhenPaddingTooSmall(t *testing.T) {
	blocks := []Block{
		{Type: VorbisComment, Data: []byte("x")},
		{Type: Padding, Data: make([]byte, 2)},
	}
	_, ok := ReplacePadding(blocks, 0, []byte("a much longer replacement value"))
	if ok {
		t.Fatalf("expected ReplacePadding to fail when padding insufficient")
	}
}

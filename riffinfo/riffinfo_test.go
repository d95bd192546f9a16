package riffinfo

import "testing"

func TestSerializeParseRoundTrip(t *testing.T) {
	tag := &Tag{}
	tag.Set("IART", "A Band")
	tag.Set("INAM", "A Title")

	body := Serialize(tag)
	// Parse expects the body without the leading "INFO" FourCC, matching
	// how a LIST chunk walker would hand off after reading it.
	got, err := Parse(body[4:], 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	artist, ok := got.Get("IART")
	if !ok || artist != "A Band" {
		t.Fatalf("unexpected IART: %q ok=%v", artist, ok)
	}
}

func TestDisplayName(t *testing.T) {
	if DisplayName("IART") != "Artist" {
		t.Fatalf("expected Artist, got %s", DisplayName("IART"))
	}
	if DisplayName("IXXX") != "IXXX" {
		t.Fatalf("expected passthrough for unknown FourCC")
	}
}

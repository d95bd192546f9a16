package vorbis

import (
	"testing"

	"github.com/go-tagfmt/tagfmt/picture"
)

func TestSerializeParseRoundTrip(t *testing.T) {
	c := &Comments{Vendor: "tagfmt 1.0"}
	c.Add("TITLE", "A Song")
	c.Add("ARTIST", "Artist One")
	c.Add("ARTIST", "Artist Two")

	got, err := Parse(Serialize(c), 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Vendor != "tagfmt 1.0" {
		t.Fatalf("unexpected vendor: %q", got.Vendor)
	}
	artists := got.All("artist")
	if len(artists) != 2 || artists[0] != "Artist One" {
		t.Fatalf("unexpected artists: %v", artists)
	}
}

func TestPictureRoundTrip(t *testing.T) {
	p := picture.Picture{
		Type:        picture.CoverFront,
		MIME:        picture.KnownMIME(picture.MIMEPNG),
		Description: "front",
		Data:        []byte{0x89, 'P', 'N', 'G'},
	}
	encoded := EncodePicture(p, picture.Information{Width: 10, Height: 10})
	got, err := DecodePicture(encoded, 0)
	if err != nil {
		t.Fatalf("DecodePicture: %v", err)
	}
	if got.Description != "front" || string(got.Data) != string(p.Data) {
		t.Fatalf("unexpected picture: %#v", got)
	}
}

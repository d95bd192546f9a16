package ape

import "testing"

func TestSerializeParseRoundTrip(t *testing.T) {
	tag := &Tag{Version: Version2}
	if err := tag.Add(Item{Key: "Artist", Type: ItemUTF8, Values: []string{"A Band"}}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := tag.Add(Item{Key: "Cover Art (Front)", Type: ItemBinary, Binary: []byte{1, 2, 3}}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	items, err := Serialize(tag)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	footer := &Footer{Version: Version2, Size: uint32(len(items)) + FooterSize, ItemCount: uint32(len(tag.Items))}
	buf := append(append([]byte{}, items...), WriteFooter(footer)...)

	got, err := Parse(buf, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got.Items))
	}
	artist, ok := got.Get("artist")
	if !ok || artist.Values[0] != "A Band" {
		t.Fatalf("unexpected artist item: %#v", artist)
	}
}

func TestAddRejectsReservedKey(t *testing.T) {
	tag := &Tag{Version: Version2}
	if err := tag.Add(Item{Key: "ID3", Type: ItemUTF8, Values: []string{"x"}}); err == nil {
		t.Fatalf("expected error adding reserved key")
	}
}

package mp4ilst

import "testing"

func TestEncodeDecodeDataAtomRoundTrip(t *testing.T) {
	d := AtomData{Type: TypeUTF8, Data: []byte("A Title")}
	encoded := EncodeDataAtom(d)

	// Skip the 8-byte "data" atom header EncodeDataAtom prepends to hand
	// DecodeDataAtom the same slice a real atom walker would see.
	got, err := DecodeDataAtom(encoded[8:])
	if err != nil {
		t.Fatalf("DecodeDataAtom: %v", err)
	}
	if got.Text() != "A Title" {
		t.Fatalf("unexpected text: %q", got.Text())
	}
}

func TestTrackNumberRoundTrip(t *testing.T) {
	d := EncodeTrackNumber(3, 12)
	cur, total := TrackNumber(d)
	if cur != 3 || total != 12 {
		t.Fatalf("unexpected track number: %d/%d", cur, total)
	}
}

func TestSetOverwritesExistingAtom(t *testing.T) {
	tag := &Tag{}
	ident := AtomIdent{FourCC: "\xa9nam"}
	tag.Set(ident, AtomData{Type: TypeUTF8, Data: []byte("first")})
	tag.Set(ident, AtomData{Type: TypeUTF8, Data: []byte("second")})

	vals, ok := tag.Get("\xa9nam")
	if !ok || len(vals) != 1 || string(vals[0].Data) != "second" {
		t.Fatalf("unexpected values after Set: %#v", vals)
	}
}

func TestFreeformAtomLookup(t *testing.T) {
	tag := &Tag{}
	ident := AtomIdent{FreeMean: "com.apple.iTunes", FreeName: "MusicBrainz Track Id"}
	tag.Set(ident, AtomData{Type: TypeUTF8, Data: []byte("abc-123")})

	vals, ok := tag.GetFreeform("com.apple.iTunes", "MusicBrainz Track Id")
	if !ok || string(vals[0].Data) != "abc-123" {
		t.Fatalf("unexpected freeform lookup result: %#v ok=%v", vals, ok)
	}
}

package matroska

import "testing"

func TestSerializeParseRoundTrip(t *testing.T) {
	tags := &Tags{}
	tags.Set("TITLE", "A Track")
	tags.Set("ARTIST", "A Band")

	payload := Serialize(tags)
	got, err := Parse(payload, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v := got.Get("TITLE"); len(v) != 1 || v[0] != "A Track" {
		t.Fatalf("unexpected TITLE: %v", v)
	}
	if v := got.Get("ARTIST"); len(v) != 1 || v[0] != "A Band" {
		t.Fatalf("unexpected ARTIST: %v", v)
	}
}

func TestSetReplacesExistingValue(t *testing.T) {
	tags := &Tags{}
	tags.Set("TITLE", "first")
	tags.Set("TITLE", "second")
	if v := tags.Get("TITLE"); len(v) != 1 || v[0] != "second" {
		t.Fatalf("expected single replaced value, got %v", v)
	}
}

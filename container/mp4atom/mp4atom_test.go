package mp4atom

import (
	"bytes"
	"testing"
)

func TestReadHeaderPlainSize(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHeader(&buf, "free", 10); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	buf.Write(make([]byte, 10))

	r := bytes.NewReader(buf.Bytes())
	atom, err := ReadHeader(r, 0)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if atom.Type != "free" || atom.PayloadSize != 10 || atom.HeaderSize != 8 {
		t.Fatalf("unexpected atom: %#v", atom)
	}
}

func TestWalkVisitsTopLevelAtoms(t *testing.T) {
	var buf bytes.Buffer
	WriteHeader(&buf, "ftyp", 4)
	buf.Write([]byte("isom"))
	WriteHeader(&buf, "free", 0)

	r := bytes.NewReader(buf.Bytes())
	var seen []string
	err := Walk(r, 0, 0, func(a Atom) error {
		seen = append(seen, a.Type)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(seen) != 2 || seen[0] != "ftyp" || seen[1] != "free" {
		t.Fatalf("unexpected walk order: %v", seen)
	}
}

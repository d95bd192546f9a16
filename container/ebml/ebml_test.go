package ebml

import (
	"bytes"
	"testing"
)

func TestWriteVINTReadElementRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x73, 0x73}) // IDTag, a 2-byte class-B element id
	buf.Write(WriteVINT(5, 0))
	buf.WriteString("hello")

	el, err := ReadElement(&buf)
	if err != nil {
		t.Fatalf("ReadElement: %v", err)
	}
	if el.ID != 0x7373 || el.Size != 5 {
		t.Fatalf("unexpected element: %#v", el)
	}
	body, err := ReadPayload(&buf, el.Size, 0)
	if err != nil {
		t.Fatalf("ReadPayload: %v", err)
	}
	if string(body) != "hello" {
		t.Fatalf("unexpected payload: %q", body)
	}
}

func TestMinVINTLengthPicksSmallestWidth(t *testing.T) {
	if got := minVINTLength(100); got != 1 {
		t.Fatalf("expected length 1 for small value, got %d", got)
	}
	if got := minVINTLength(1 << 20); got != 3 {
		t.Fatalf("expected length 3 for a ~1M value, got %d", got)
	}
}

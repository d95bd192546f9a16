package id3v2

import "fmt"

// Version is the on-disk ID3v2 major version: 2, 3 or 4.
type Version byte

const (
	V2 Version = 2
	V3 Version = 3
	V4 Version = 4
)

// FrameID identifies a frame either by its modern 4-character form or by
// an Outdated 3-character v2.2 form. Outdated IDs are read-only: writing
// rejects them (invariant 1).
type FrameID struct {
	valid    string
	outdated string
}

// Valid constructs a FrameID from a 4-character ASCII uppercase-or-digit
// identifier, validating per invariant 1.
func Valid(id string) (FrameID, error) {
	if len(id) != 4 || !isFrameIDChars(id) {
		return FrameID{}, fmt.Errorf("id3v2: %w: %q", ErrBadFrameId, id)
	}
	return FrameID{valid: id}, nil
}

// MustValid is Valid, panicking on error; used for the package's own
// well-known frame ID constants where the string is trivially correct.
func MustValid(id string) FrameID {
	f, err := Valid(id)
	if err != nil {
		panic(err)
	}
	return f
}

// Outdated constructs a read-only 3-character v2.2 FrameID.
func Outdated(id string) FrameID {
	return FrameID{outdated: id}
}

func (f FrameID) String() string {
	if f.valid != "" {
		return f.valid
	}
	return f.outdated
}

// IsOutdated reports whether f is a v2.2 3-character ID.
func (f FrameID) IsOutdated() bool { return f.outdated != "" }

func isFrameIDChars(s string) bool {
	for _, r := range s {
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// ErrBadFrameId mirrors the root package's error class without importing
// it (avoiding an import cycle). It reaches callers wrapped with %w;
// nothing converts it into the root package's *ErrBadFrameId.
var ErrBadFrameId = fmt.Errorf("invalid frame id")

// FrameFlags are the message/format flags carried by v3/v4 frame headers
// (§3, Id3v2Tag).
type FrameFlags struct {
	TagAlterPreservation  bool
	FileAlterPreservation bool
	ReadOnly              bool
	GroupIdentity         bool
	Compression           bool
	Encryption            bool
	Unsynchronisation     bool
	DataLengthIndicator   bool
}

// exactlyOnce lists the frame IDs invariant 2 requires be singletons per
// tag: inserting a new instance replaces any prior one.
var exactlyOnce = map[string]bool{
	"MCDI": true, "ETCO": true, "MLLT": true, "SYTC": true, "RVRB": true,
	"PCNT": true, "RBUF": true, "POSS": true, "OWNE": true, "SEEK": true,
	"ASPI": true,
}

// MustBeUnique reports whether id is one of the exactly-one-per-tag frames.
func MustBeUnique(id string) bool { return exactlyOnce[id] }

// Package tagfmt is the entry point of a multi-format audio metadata
// library: probing a container, walking its structure, decoding whichever
// tag dialect it carries into a format-neutral Tag, and writing that Tag
// back in place without disturbing unrelated bytes.
//
// The package assumes a FileLike abstraction for all I/O; it never opens
// files itself, and never decodes audio -- sample rate, bitrate and
// duration are out of scope (§1) and are left to an embedding layer.
package tagfmt

import "io"

// FileLike is the capability set the core requires from a caller-supplied
// handle: a read/seek/write/truncate/length surface. *os.File satisfies it
// directly; callers embedding the core in something else (an in-memory
// buffer, a network-backed blob) only need to implement this interface.
type FileLike interface {
	io.Reader
	io.ReaderAt
	io.Writer
	io.Seeker
	Truncate(size int64) error
	Len() (int64, error)
}

// FileType is a closed enumeration of recognised container kinds, plus an
// open Custom variant for third-party resolvers.
type FileType struct {
	name   string
	custom bool
}

func (f FileType) String() string { return f.name }

// IsCustom reports whether f was produced by a custom resolver rather than
// being one of the built-in container kinds.
func (f FileType) IsCustom() bool { return f.custom }

// Custom returns the FileType variant for a third-party container
// identified by name.
func Custom(name string) FileType { return FileType{name: name, custom: true} }

var (
	MPEG     = FileType{name: "MPEG"}
	AAC      = FileType{name: "AAC"}
	MP4      = FileType{name: "MP4"}
	FLAC     = FileType{name: "FLAC"}
	OggVorbis = FileType{name: "OggVorbis"}
	OggOpus  = FileType{name: "OggOpus"}
	OggSpeex = FileType{name: "OggSpeex"}
	OggFLAC  = FileType{name: "OggFLAC"}
	WAV      = FileType{name: "WAV"}
	AIFF     = FileType{name: "AIFF"}
	APE      = FileType{name: "APE"}
	WavPack  = FileType{name: "WavPack"}
	Musepack = FileType{name: "Musepack"}
	DSF      = FileType{name: "DSF"}
	DSDIFF   = FileType{name: "DSDIFF"}
	Matroska = FileType{name: "Matroska"}
	Unknown  = FileType{name: "Unknown"}
)

// TagType is a closed enumeration of the tag dialects the core can parse
// and serialize.
type TagType string

const (
	TagID3v1          TagType = "ID3v1"
	TagID3v2          TagType = "ID3v2"
	TagAPE            TagType = "APE"
	TagMP4Ilst        TagType = "MP4ilst"
	TagVorbisComments TagType = "VorbisComments"
	TagRIFFInfo       TagType = "RIFFInfo"
	TagAIFFText       TagType = "AIFFText"
	TagMatroska       TagType = "Matroska"
)

package splitmerge

import (
	"github.com/go-tagfmt/tagfmt/id3v1"
	"github.com/go-tagfmt/tagfmt/itemkey"
	"github.com/go-tagfmt/tagfmt/tag"
)

// id3v1Companion preserves a GenreIndex that doesn't match any entry in
// id3v1.Genres, so a round trip doesn't silently lose it behind a blank
// Genre item.
type id3v1Companion struct {
	genreIndex uint8
}

func (id3v1Companion) TagType() string { return "id3v1" }

// SplitID3v1 converts src into the generic model (§4.7, §C7). ID3v1's
// fixed field set maps onto the same well-known ItemKeys every other
// dialect uses; GenreIndex is resolved through id3v1.Genres into plain
// text, falling back to a Companion when the index is out of range.
func SplitID3v1(src *id3v1.Tag) *tag.Tag {
	out := &tag.Tag{TagType: "id3v1"}

	if src.Title != "" {
		out.Set(itemkey.TrackTitle, tag.TextValue(src.Title))
	}
	if src.Artist != "" {
		out.Set(itemkey.TrackArtist, tag.TextValue(src.Artist))
	}
	if src.Album != "" {
		out.Set(itemkey.AlbumTitle, tag.TextValue(src.Album))
	}
	if src.Year != "" {
		out.Set(itemkey.RecordingDate, tag.TextValue(src.Year))
	}
	if src.Comment != "" {
		out.Set(itemkey.Comment, tag.TextValue(src.Comment))
	}
	if src.TrackNumber != 0 {
		p := tag.NumberPair{Number: int(src.TrackNumber), HasNumber: true}
		out.Set(itemkey.TrackNumber, tag.TextValue(p.String()))
	}

	if genre := src.Genre(); genre != "" {
		out.Set(itemkey.Genre, tag.TextValue(genre))
	} else if src.GenreIndex != 0 {
		out.Companion = &id3v1Companion{genreIndex: src.GenreIndex}
	}
	return out
}

// MergeID3v1 converts t back into an id3v1.Tag. Text fields that exceed
// ID3v1's fixed-width columns are truncated by Tag.Serialize itself; this
// merge only maps values across, per the split/merge contract (C7).
func MergeID3v1(t *tag.Tag) *id3v1.Tag {
	out := &id3v1.Tag{}

	if it, ok := t.Get(itemkey.TrackTitle); ok {
		out.Title = it.Value.Text
	}
	if it, ok := t.Get(itemkey.TrackArtist); ok {
		out.Artist = it.Value.Text
	}
	if it, ok := t.Get(itemkey.AlbumTitle); ok {
		out.Album = it.Value.Text
	}
	if it, ok := t.Get(itemkey.RecordingDate); ok {
		out.Year = it.Value.Text
	}
	if it, ok := t.Get(itemkey.Comment); ok {
		out.Comment = it.Value.Text
	}
	if it, ok := t.Get(itemkey.TrackNumber); ok {
		if p := tag.ParseNumberPair(it.Value.Text); p.HasNumber && p.Number >= 0 && p.Number <= 255 {
			out.TrackNumber = uint8(p.Number)
		}
	}

	if it, ok := t.Get(itemkey.Genre); ok {
		out.GenreIndex = genreIndexForName(it.Value.Text)
	}
	if companion, ok := t.Companion.(*id3v1Companion); ok && out.GenreIndex == 0 {
		out.GenreIndex = companion.genreIndex
	}
	return out
}

func genreIndexForName(name string) uint8 {
	for i, g := range id3v1.Genres {
		if g == name {
			return uint8(i)
		}
	}
	return 0
}

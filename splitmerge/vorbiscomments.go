// Package splitmerge implements each dialect's Split/Merge contract (C7):
// converting a dialect-specific tag into the generic tag.Tag model and
// back, tracking whatever the generic model can't represent in a
// dialect-specific Companion.
package splitmerge

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/go-tagfmt/tagfmt/itemkey"
	"github.com/go-tagfmt/tagfmt/picture"
	"github.com/go-tagfmt/tagfmt/tag"
	"github.com/go-tagfmt/tagfmt/vorbis"
)

// vorbisKeyToItem maps a Vorbis Comment field key (upper-cased) to its
// generic ItemKey, per the vocabulary table the format's de-facto registry
// documents (§4.4, §C6).
var vorbisKeyToItem = map[string]itemkey.ItemKey{
	"TITLE": itemkey.TrackTitle, "ARTIST": itemkey.TrackArtist,
	"ALBUM": itemkey.AlbumTitle, "ALBUMARTIST": itemkey.AlbumArtist,
	"COMPOSER": itemkey.Composer, "CONDUCTOR": itemkey.Conductor,
	"REMIXER": itemkey.Remixer, "ARRANGER": itemkey.Arranger,
	"GENRE": itemkey.Genre, "COMMENT": itemkey.Comment,
	"DESCRIPTION": itemkey.Description, "LYRICS": itemkey.Lyrics,
	"LANGUAGE": itemkey.Language, "LABEL": itemkey.Label,
	"CATALOGNUMBER": itemkey.CatalogNumber, "BARCODE": itemkey.Barcode,
	"ISRC": itemkey.ISRC, "DATE": itemkey.RecordingDate,
	"ORIGINALDATE": itemkey.OriginalReleaseDate,
	"COPYRIGHT": itemkey.Copyright, "LICENSE": itemkey.License,
	"ENCODER": itemkey.Encoder, "ENCODED-BY": itemkey.EncodedBy,
	"ENCODERSETTINGS": itemkey.EncoderSettings,
	"COMPILATION": itemkey.Compilation, "BPM": itemkey.BPM,
	"KEY": itemkey.InitialKey, "MOOD": itemkey.Mood,
	"WORK": itemkey.Work, "PART": itemkey.Part,
	"DISCSUBTITLE": itemkey.DiscSubtitle, "PERFORMER": itemkey.Performer,
	"PUBLISHER": itemkey.Publisher,
	"REPLAYGAIN_ALBUM_GAIN": itemkey.ReplayGainAlbumGain,
	"REPLAYGAIN_ALBUM_PEAK": itemkey.ReplayGainAlbumPeak,
	"REPLAYGAIN_TRACK_GAIN": itemkey.ReplayGainTrackGain,
	"REPLAYGAIN_TRACK_PEAK": itemkey.ReplayGainTrackPeak,
	"MUSICBRAINZ_TRACKID":       itemkey.MusicBrainzRecordingId,
	"MUSICBRAINZ_RELEASETRACKID": itemkey.MusicBrainzReleaseTrackId,
	"MUSICBRAINZ_ALBUMID":       itemkey.MusicBrainzReleaseId,
	"MUSICBRAINZ_ARTISTID":      itemkey.MusicBrainzArtistId,
	"MUSICBRAINZ_ALBUMARTISTID": itemkey.MusicBrainzAlbumArtistId,
	"MUSICBRAINZ_RELEASEGROUPID": itemkey.MusicBrainzReleaseGroupId,
	"MUSICBRAINZ_WORKID":        itemkey.MusicBrainzWorkId,
	"ACOUSTID_ID":               itemkey.AcoustidId,
	"ACOUSTID_FINGERPRINT":      itemkey.AcoustidFingerprint,
	"ARTISTSORT":      itemkey.ArtistSort,
	"ALBUMARTISTSORT": itemkey.AlbumArtistSort,
	"COMPOSERSORT":    itemkey.ComposerSort,
	"TITLESORT":       itemkey.TitleSort,
	"ALBUMSORT":       itemkey.AlbumSort,
}

var itemToVorbisKey = invertItemKeyMap(vorbisKeyToItem)

func invertItemKeyMap(m map[string]itemkey.ItemKey) map[itemkey.ItemKey]string {
	out := make(map[itemkey.ItemKey]string, len(m))
	for k, v := range m {
		if _, exists := out[v]; !exists {
			out[v] = k
		}
	}
	return out
}

// vorbisCompanion holds whatever a Vorbis comment field's key didn't map
// to a well-known ItemKey, preserved verbatim for a future merge.
type vorbisCompanion struct {
	unmapped []vorbis.Field
}

func (vorbisCompanion) TagType() string { return "vorbis" }

// SplitVorbisComments converts c into the generic tag model, per C7.
// TRACKNUMBER/TRACKTOTAL and DISCNUMBER/DISCTOTAL are combined into single
// NumberPair-rendered text items, per P7.
func SplitVorbisComments(c *vorbis.Comments) *tag.Tag {
	out := &tag.Tag{TagType: "vorbis"}
	var unmapped []vorbis.Field

	trackNum, trackTotal := "", ""
	discNum, discTotal := "", ""

	for _, f := range c.Fields {
		switch strings.ToUpper(f.Key) {
		case "TRACKNUMBER":
			trackNum = f.Value
			continue
		case "TRACKTOTAL":
			trackTotal = f.Value
			continue
		case "DISCNUMBER":
			discNum = f.Value
			continue
		case "DISCTOTAL":
			discTotal = f.Value
			continue
		case vorbis.PictureKey:
			if p, err := vorbis.DecodePicture(f.Value, 0); err == nil {
				out.AddPicture(p)
			}
			continue
		case vorbis.DeprecatedCoverArt:
			// Legacy base64 image bytes with no picture metadata: lifted
			// into a picture of type Other, MIME sniffed from the bytes.
			if data, err := base64.StdEncoding.DecodeString(f.Value); err == nil {
				out.AddPicture(picture.Picture{Type: picture.Other, MIME: picture.KnownMIME(picture.SniffMIME(data)), Data: data})
			}
			continue
		}

		if key, ok := vorbisKeyToItem[strings.ToUpper(f.Key)]; ok {
			out.Add(tag.TagItem{Key: key, Value: tag.TextValue(f.Value)})
		} else {
			unmapped = append(unmapped, f)
		}
	}

	if trackNum != "" || trackTotal != "" {
		out.Set(itemkey.TrackNumber, tag.TextValue(combineNumberPair(trackNum, trackTotal)))
	}
	if discNum != "" || discTotal != "" {
		out.Set(itemkey.DiscNumber, tag.TextValue(combineNumberPair(discNum, discTotal)))
	}

	if len(unmapped) > 0 {
		out.Companion = &vorbisCompanion{unmapped: unmapped}
	}
	return out
}

func combineNumberPair(numStr, totalStr string) string {
	p := tag.NumberPair{}
	if n, err := strconv.Atoi(strings.TrimSpace(numStr)); err == nil && n != 0 {
		p.Number, p.HasNumber = n, true
	}
	if n, err := strconv.Atoi(strings.TrimSpace(totalStr)); err == nil && n != 0 {
		p.Total, p.HasTotal = n, true
	}
	return p.String()
}

// MergeVorbisComments converts t back into a Comments value, splicing back
// any preserved companion fields untouched (invariant: merge_tag followed
// by split_tag on an unmodified Tag is the identity).
func MergeVorbisComments(t *tag.Tag, vendor string) *vorbis.Comments {
	c := &vorbis.Comments{Vendor: vendor}

	for _, it := range t.Items {
		switch it.Key {
		case itemkey.TrackNumber:
			p := tag.ParseNumberPair(it.Value.Text)
			if p.HasNumber {
				c.Add("TRACKNUMBER", strconv.Itoa(p.Number))
			}
			if p.HasTotal {
				c.Add("TRACKTOTAL", strconv.Itoa(p.Total))
			}
			continue
		case itemkey.DiscNumber:
			p := tag.ParseNumberPair(it.Value.Text)
			if p.HasNumber {
				c.Add("DISCNUMBER", strconv.Itoa(p.Number))
			}
			if p.HasTotal {
				c.Add("DISCTOTAL", strconv.Itoa(p.Total))
			}
			continue
		}
		if key, ok := itemToVorbisKey[it.Key]; ok {
			c.Add(key, it.Value.Text)
		} else if name, isUnknown := it.Key.IsUnknown(); isUnknown {
			c.Add(name, it.Value.Text)
		}
	}

	for _, p := range t.Pictures {
		c.Add(vorbis.PictureKey, vorbis.EncodePicture(p, picture.Information{}))
	}

	if companion, ok := t.Companion.(*vorbisCompanion); ok {
		for _, f := range companion.unmapped {
			c.Add(f.Key, f.Value)
		}
	}
	return c
}

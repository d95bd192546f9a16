package splitmerge

import (
	"github.com/go-tagfmt/tagfmt/itemkey"
	"github.com/go-tagfmt/tagfmt/riffinfo"
	"github.com/go-tagfmt/tagfmt/tag"
)

// riffFourCCToItem maps a WAV INFO sub-chunk FourCC to its generic
// ItemKey (§4.6, §C6).
var riffFourCCToItem = map[string]itemkey.ItemKey{
	"INAM": itemkey.TrackTitle, "IART": itemkey.TrackArtist,
	"IPRD": itemkey.AlbumTitle, "ICMT": itemkey.Comment,
	"IGNR": itemkey.Genre, "ICRD": itemkey.RecordingDate,
	"ICOP": itemkey.Copyright, "ISFT": itemkey.Encoder,
	"IENG": itemkey.Engineer, "ITCH": itemkey.Producer,
	"IKEY": itemkey.Keywords, "ISRC": itemkey.ISRC,
}

var itemToRiffFourCC = invertItemKeyMap(riffFourCCToItem)

type riffinfoCompanion struct {
	unmapped []riffinfo.Item
}

func (riffinfoCompanion) TagType() string { return "riffinfo" }

// SplitRiffInfo converts src into the generic model. ITRK (track number)
// is a plain decimal string with no total, per the INFO convention.
func SplitRiffInfo(src *riffinfo.Tag) *tag.Tag {
	out := &tag.Tag{TagType: "riffinfo"}
	var unmapped []riffinfo.Item

	for _, it := range src.Items {
		if it.FourCC == "ITRK" {
			out.Set(itemkey.TrackNumber, tag.TextValue(tag.ParseNumberPair(it.Value).String()))
			continue
		}
		if key, ok := riffFourCCToItem[it.FourCC]; ok {
			out.Set(key, tag.TextValue(it.Value))
			continue
		}
		unmapped = append(unmapped, it)
	}

	if len(unmapped) > 0 {
		out.Companion = &riffinfoCompanion{unmapped: unmapped}
	}
	return out
}

// MergeRiffInfo converts t back into a riffinfo.Tag.
func MergeRiffInfo(t *tag.Tag) *riffinfo.Tag {
	out := &riffinfo.Tag{}

	for _, it := range t.Items {
		if it.Key == itemkey.TrackNumber {
			p := tag.ParseNumberPair(it.Value.Text)
			out.Set("ITRK", p.String())
			continue
		}
		if fourCC, ok := itemToRiffFourCC[it.Key]; ok {
			out.Set(fourCC, it.Value.Text)
		}
	}

	if companion, ok := t.Companion.(*riffinfoCompanion); ok {
		for _, it := range companion.unmapped {
			out.Items = append(out.Items, it)
		}
	}
	return out
}

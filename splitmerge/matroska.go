package splitmerge

import (
	"strings"

	"github.com/go-tagfmt/tagfmt/itemkey"
	"github.com/go-tagfmt/tagfmt/matroska"
	"github.com/go-tagfmt/tagfmt/tag"
)

// matroskaCompanion preserves every file-level SimpleTag split_tag had no
// mapping for, plus every non-file-level (TargetTypeValue != 0) Tag
// element untouched.
type matroskaCompanion struct {
	unmapped      []matroska.SimpleTag
	scopedTags    []matroska.Tag
}

func (matroskaCompanion) TagType() string { return "matroska" }

// SplitMatroska converts src into the generic model (§4.10, §C7).
// Matroska's SimpleTag names follow the same de-facto vocabulary as
// Vorbis Comments, so the mapping is shared with splitmerge's Vorbis
// table. Only file-level (TargetTypeValue == 0) tags are mapped; every
// chapter/track/edition-scoped Tag element is preserved verbatim.
func SplitMatroska(src *matroska.Tags) *tag.Tag {
	out := &tag.Tag{TagType: "matroska"}
	var unmapped []matroska.SimpleTag
	var scoped []matroska.Tag

	for _, t := range src.Tags {
		if t.TargetTypeValue != 0 {
			scoped = append(scoped, t)
			continue
		}
		for _, st := range t.SimpleTags {
			upper := strings.ToUpper(st.Name)
			switch upper {
			case "TRACKNUMBER", "PART_NUMBER":
				out.Set(itemkey.TrackNumber, tag.TextValue(tag.ParseNumberPair(st.Value).String()))
				continue
			case "TOTAL_PARTS":
				unmapped = append(unmapped, st)
				continue
			}
			if key, ok := vorbisKeyToItem[upper]; ok {
				out.Add(tag.TagItem{Key: key, Value: tag.TextValue(st.Value), Lang: st.Language})
				continue
			}
			unmapped = append(unmapped, st)
		}
	}

	if len(unmapped) > 0 || len(scoped) > 0 {
		out.Companion = &matroskaCompanion{unmapped: unmapped, scopedTags: scoped}
	}
	return out
}

// MergeMatroska converts t back into a matroska.Tags, restoring any
// preserved scoped Tag elements and unmapped file-level SimpleTags.
func MergeMatroska(t *tag.Tag) *matroska.Tags {
	var simple []matroska.SimpleTag

	for _, it := range t.Items {
		if it.Key == itemkey.TrackNumber {
			p := tag.ParseNumberPair(it.Value.Text)
			simple = append(simple, matroska.SimpleTag{Name: "TRACKNUMBER", Value: p.String(), Language: "und"})
			continue
		}
		if name, ok := itemToVorbisKey[it.Key]; ok {
			simple = append(simple, matroska.SimpleTag{Name: name, Value: it.Value.Text, Language: langOrUnd(it.Lang)})
		}
	}

	out := &matroska.Tags{}
	if companion, ok := t.Companion.(*matroskaCompanion); ok {
		simple = append(simple, companion.unmapped...)
		out.Tags = append(out.Tags, companion.scopedTags...)
	}
	if len(simple) > 0 {
		out.Tags = append(out.Tags, matroska.Tag{SimpleTags: simple})
	}
	return out
}

func langOrUnd(lang string) string {
	if lang == "" {
		return "und"
	}
	return lang
}

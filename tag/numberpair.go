package tag

import (
	"strconv"
	"strings"
)

// NumberPair is a (current, total) pair such as Track/TrackTotal or
// Disc/DiscTotal. Both fields are optional; ParseNumberPair and String are
// inverses per P7: total alone round-trips through the "0/total" on-disk
// form used by ID3v2 TRCK/TPOS and MP4 trkn/disk.
type NumberPair struct {
	Number    int // 0 means absent
	Total     int // 0 means absent
	HasNumber bool
	HasTotal  bool
}

// String renders the pair the way ID3v2 and Vorbis Comments text values
// do: "current", "current/total", or "0/total" when only a total is set.
func (p NumberPair) String() string {
	switch {
	case p.HasNumber && p.HasTotal:
		return strconv.Itoa(p.Number) + "/" + strconv.Itoa(p.Total)
	case p.HasNumber:
		return strconv.Itoa(p.Number)
	case p.HasTotal:
		return "0/" + strconv.Itoa(p.Total)
	default:
		return ""
	}
}

// ParseNumberPair parses the "x", "x/n" or "0/n" textual forms used by
// ID3v2 TRCK/TPOS and Vorbis Comments TRACKNUMBER/TRACKTOTAL.
func ParseNumberPair(s string) NumberPair {
	s = strings.TrimSpace(s)
	if s == "" {
		return NumberPair{}
	}
	parts := strings.SplitN(s, "/", 2)
	x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
	var p NumberPair
	if errX == nil {
		if x == 0 {
			// "0/n" means "no track number, only a total" (invariant 5's
			// decode rule generalised to any number-pair field).
		} else {
			p.Number = x
			p.HasNumber = true
		}
	}
	if len(parts) == 2 {
		if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil && n != 0 {
			p.Total = n
			p.HasTotal = true
		}
	}
	return p
}

// FromMP4 builds a NumberPair from an MP4 trkn/disk atom's (current,
// total) u16 fields, where 0 means absent (S2).
func FromMP4(current, total uint16) NumberPair {
	p := NumberPair{}
	if current != 0 {
		p.Number = int(current)
		p.HasNumber = true
	}
	if total != 0 {
		p.Total = int(total)
		p.HasTotal = true
	}
	return p
}

// MP4Fields is the inverse of FromMP4.
func (p NumberPair) MP4Fields() (current, total uint16) {
	if p.HasNumber {
		current = uint16(p.Number)
	}
	if p.HasTotal {
		total = uint16(p.Total)
	}
	return
}

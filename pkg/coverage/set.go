// Package coverage implements canonical codepoint sets and the range
// arithmetic used to compare them.
package coverage

import (
	"slices"
	"sort"
)

// Set is a canonical codepoint set: ranges sorted by Lo, non-empty,
// non-overlapping and non-adjacent. Build one with Normalize.
type Set []Range

// Normalize returns the canonical form of ranges.
// Empty ranges (Lo > Hi) are dropped; overlapping and touching ranges are
// merged. The input slice is not modified.
func Normalize(ranges []Range) Set {
	rs := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if !r.Empty() {
			rs = append(rs, r)
		}
	}
	if len(rs) == 0 {
		return Set{}
	}

	slices.SortFunc(rs, func(a, b Range) int {
		switch {
		case a.Lo < b.Lo:
			return -1
		case a.Lo > b.Lo:
			return 1
		default:
			return 0
		}
	})

	out := rs[:1]
	for _, r := range rs[1:] {
		last := &out[len(out)-1]
		// uint64 so that Hi == MaxUint32 does not wrap.
		if uint64(r.Lo) <= uint64(last.Hi)+1 {
			if r.Hi > last.Hi {
				last.Hi = r.Hi
			}
			continue
		}
		out = append(out, r)
	}
	return Set(out)
}

// FromCodepoints builds a canonical set from individual codepoints, which
// may be unordered and contain duplicates.
func FromCodepoints(cps []Codepoint) Set {
	rs := make([]Range, len(cps))
	for i, cp := range cps {
		rs[i] = Range{Lo: cp, Hi: cp}
	}
	return Normalize(rs)
}

// FromString builds a canonical set from the runes of s.
// Invalid UTF-8 sequences contribute U+FFFD, as range over string yields.
func FromString(s string) Set {
	var cps []Codepoint
	for _, r := range s {
		cps = append(cps, Codepoint(r))
	}
	return FromCodepoints(cps)
}

// Len returns the number of codepoints in s.
func (s Set) Len() uint64 {
	var n uint64
	for _, r := range s {
		n += r.Len()
	}
	return n
}

// Contains reports whether cp is a member of s.
func (s Set) Contains(cp Codepoint) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i].Hi >= cp })
	return i < len(s) && s[i].Lo <= cp
}

// Union returns the canonical union of s and other.
func (s Set) Union(other Set) Set {
	rs := make([]Range, 0, len(s)+len(other))
	rs = append(rs, s...)
	rs = append(rs, other...)
	return Normalize(rs)
}

// IntersectionLen returns |a ∩ b| for two canonical sets.
// It walks both range lists once, so the cost is linear in len(a)+len(b)
// no matter how many codepoints the ranges span.
func IntersectionLen(a, b Set) uint64 {
	var n uint64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		x, y := a[i], b[j]

		lo := max(x.Lo, y.Lo)
		hi := min(x.Hi, y.Hi)
		if lo <= hi {
			n += uint64(hi) - uint64(lo) + 1
		}

		if x.Hi < y.Hi {
			i++
		} else {
			j++
		}
	}
	return n
}

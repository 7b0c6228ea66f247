package coverage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Codepoint is a Unicode scalar value, or any integer a caller chooses to
// treat as one. No validity check is applied.
type Codepoint uint32

// Range is an inclusive block of codepoints. A Range with Lo > Hi is empty.
type Range struct {
	Lo Codepoint
	Hi Codepoint
}

// ErrInvalidRange is returned when a range literal cannot be parsed.
var ErrInvalidRange = errors.New("invalid codepoint range")

// Empty reports whether r contains no codepoints.
func (r Range) Empty() bool {
	return r.Lo > r.Hi
}

// Len returns the number of codepoints in r.
func (r Range) Len() uint64 {
	if r.Empty() {
		return 0
	}
	return uint64(r.Hi) - uint64(r.Lo) + 1
}

// String formats r the way the language data files write it.
func (r Range) String() string {
	if r.Lo == r.Hi {
		return strconv.FormatUint(uint64(r.Lo), 10)
	}
	return fmt.Sprintf("%d..%d", r.Lo, r.Hi)
}

// MarshalJSON encodes r as a two element array [lo, hi].
func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]Codepoint{r.Lo, r.Hi})
}

// UnmarshalJSON accepts [lo, hi], [cp] or a bare number. null, on its
// own or as an element, is rejected rather than read as codepoint 0.
func (r *Range) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fmt.Errorf("%w: null", ErrInvalidRange)
	}

	var single Codepoint
	if err := json.Unmarshal(data, &single); err == nil {
		*r = Range{Lo: single, Hi: single}
		return nil
	}

	var pair []*Codepoint
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRange, string(data))
	}
	for _, cp := range pair {
		if cp == nil {
			return fmt.Errorf("%w: null in %s", ErrInvalidRange, string(data))
		}
	}
	switch len(pair) {
	case 1:
		*r = Range{Lo: *pair[0], Hi: *pair[0]}
	case 2:
		*r = Range{Lo: *pair[0], Hi: *pair[1]}
	default:
		return fmt.Errorf("%w: expected 1 or 2 elements, got %d", ErrInvalidRange, len(pair))
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
// The data files carry Ruby range literals ("!ruby/range 65..90") next to
// plain integers, so the node tag is ignored and only the scalar is parsed.
func (r *Range) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: expected scalar", ErrInvalidRange, value.Line)
	}
	parsed, err := ParseRange(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*r = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (r Range) MarshalYAML() (interface{}, error) {
	if r.Lo == r.Hi {
		return uint64(r.Lo), nil
	}
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!ruby/range",
		Value: r.String(),
	}, nil
}

// ParseRange parses a single codepoint or a range.
//
// Accepted forms: "65", "65..90", "65-90", "0x41", "U+0041",
// "U+0041..U+005A" and "0x41-0x5A".
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, fmt.Errorf("%w: empty", ErrInvalidRange)
	}

	lo, hi, found := strings.Cut(s, "..")
	if !found {
		lo, hi, found = strings.Cut(s, "-")
	}
	if !found {
		cp, err := ParseCodepoint(s)
		if err != nil {
			return Range{}, err
		}
		return Range{Lo: cp, Hi: cp}, nil
	}

	loCP, err := ParseCodepoint(lo)
	if err != nil {
		return Range{}, err
	}
	hiCP, err := ParseCodepoint(hi)
	if err != nil {
		return Range{}, err
	}
	return Range{Lo: loCP, Hi: hiCP}, nil
}

// ParseCodepoint parses a decimal, "0x" hexadecimal or "U+" hexadecimal
// codepoint.
func ParseCodepoint(s string) (Codepoint, error) {
	s = strings.TrimSpace(s)
	base := 10
	switch {
	case strings.HasPrefix(s, "U+"), strings.HasPrefix(s, "u+"):
		s = s[2:]
		base = 16
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
		base = 16
	}

	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	return Codepoint(v), nil
}

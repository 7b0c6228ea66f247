package coverage

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		input   string
		want    Range
		wantErr bool
	}{
		{input: "65", want: Range{65, 65}},
		{input: "65..90", want: Range{65, 90}},
		{input: "65-90", want: Range{65, 90}},
		{input: " 0x41 - 0x5A ", want: Range{0x41, 0x5A}},
		{input: "U+0041..U+005A", want: Range{0x41, 0x5A}},
		{input: "u+00e9", want: Range{0xE9, 0xE9}},
		{input: "90..65", want: Range{90, 65}},
		{input: "", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "-5", wantErr: true},
		{input: "1..", wantErr: true},
		{input: "4294967296", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRange(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidRange), "expected ErrInvalidRange, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRange_Empty(t *testing.T) {
	assert.True(t, Range{10, 5}.Empty())
	assert.Equal(t, uint64(0), Range{10, 5}.Len())
	assert.False(t, Range{5, 5}.Empty())
	assert.Equal(t, uint64(1), Range{5, 5}.Len())
}

func TestRange_JSON(t *testing.T) {
	var rs []Range
	require.NoError(t, json.Unmarshal([]byte(`[[65,90],[233],97]`), &rs))
	assert.Equal(t, []Range{{65, 90}, {233, 233}, {97, 97}}, rs)

	out, err := json.Marshal(Range{65, 90})
	require.NoError(t, err)
	assert.JSONEq(t, `[65,90]`, string(out))

	var r Range
	assert.Error(t, json.Unmarshal([]byte(`[1,2,3]`), &r))
	assert.Error(t, json.Unmarshal([]byte(`[-1,2]`), &r))
	assert.Error(t, json.Unmarshal([]byte(`"65..90"`), &r))

	// null is not codepoint 0.
	for _, in := range []string{`[null,[65,66]]`, `[[null,66]]`, `[[65,null]]`, `[[null]]`} {
		rs = nil
		err := json.Unmarshal([]byte(in), &rs)
		assert.ErrorIs(t, err, ErrInvalidRange, in)
	}
}

func TestRange_YAML(t *testing.T) {
	doc := `
- !ruby/range 65..90
- 97..122
- 233
`
	var rs []Range
	require.NoError(t, yaml.Unmarshal([]byte(doc), &rs))
	assert.Equal(t, []Range{{65, 90}, {97, 122}, {233, 233}}, rs)

	out, err := yaml.Marshal([]Range{{65, 90}, {233, 233}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "!ruby/range 65..90")
	assert.Contains(t, string(out), "- 233")

	assert.Error(t, yaml.Unmarshal([]byte("- [1, 2]"), &rs))
	assert.Error(t, yaml.Unmarshal([]byte("- nope"), &rs))
}

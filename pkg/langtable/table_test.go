package langtable

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langcover/pkg/coverage"
	"langcover/pkg/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		langs   []model.Language
		wantErr error
	}{
		{
			name: "Valid",
			langs: []model.Language{
				{Code: "en", Name: "English", Codepoints: coverage.Set{{Lo: 97, Hi: 122}, {Lo: 65, Hi: 90}}},
				{Code: "pt-BR", Name: "Brazilian Portuguese", Codepoints: coverage.Set{{Lo: 65, Hi: 90}}},
			},
		},
		{
			name:    "ZeroCodepoints",
			langs:   []model.Language{{Code: "en", Name: "English"}},
			wantErr: ErrEmptyLanguage,
		},
		{
			name:    "OnlyInvalidRanges",
			langs:   []model.Language{{Code: "en", Codepoints: coverage.Set{{Lo: 10, Hi: 5}}}},
			wantErr: ErrEmptyLanguage,
		},
		{
			name: "Duplicate",
			langs: []model.Language{
				{Code: "en", Codepoints: coverage.Set{{Lo: 65, Hi: 90}}},
				{Code: "en", Codepoints: coverage.Set{{Lo: 97, Hi: 122}}},
			},
			wantErr: ErrDuplicateCode,
		},
		{
			name:    "EmptyCode",
			langs:   []model.Language{{Codepoints: coverage.Set{{Lo: 65, Hi: 90}}}},
			wantErr: ErrInvalidCode,
		},
		{
			name:    "MalformedCode",
			langs:   []model.Language{{Code: "t1", Codepoints: coverage.Set{{Lo: 65, Hi: 90}}}},
			wantErr: ErrInvalidCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := New(tt.langs)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
				assert.Nil(t, tbl)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.langs), tbl.Len())
		})
	}
}

func TestNew_NormalizesAndCountsOnce(t *testing.T) {
	input := []model.Language{{
		Code:       "nl",
		Name:       "Dutch",
		NativeName: "Nederlands",
		Codepoints: coverage.Set{{Lo: 233, Hi: 233}, {Lo: 97, Hi: 122}, {Lo: 65, Hi: 90}, {Lo: 70, Hi: 80}},
		Total:      999,
	}}

	tbl, err := New(input)
	require.NoError(t, err)

	nl, ok := tbl.Lookup("nl")
	require.True(t, ok)
	assert.Equal(t, coverage.Set{{Lo: 65, Hi: 90}, {Lo: 97, Hi: 122}, {Lo: 233, Hi: 233}}, nl.Codepoints)
	assert.Equal(t, uint64(53), nl.Total, "Total must be derived from the codepoints, not trusted")

	// The caller's slice stays untouched.
	assert.Equal(t, uint64(999), input[0].Total)

	_, ok = tbl.Lookup("de")
	assert.False(t, ok)
}

func TestTable_Languages(t *testing.T) {
	tbl, err := New([]model.Language{
		{Code: "nl", Codepoints: coverage.Set{{Lo: 1, Hi: 1}}},
		{Code: "de", Codepoints: coverage.Set{{Lo: 2, Hi: 2}}},
		{Code: "en", Codepoints: coverage.Set{{Lo: 3, Hi: 3}}},
	})
	require.NoError(t, err)

	var codes []string
	for _, l := range tbl.Languages() {
		codes = append(codes, l.Code)
	}
	assert.Equal(t, []string{"de", "en", "nl"}, codes)

	// Insertion order is kept for At.
	assert.Equal(t, "nl", tbl.At(0).Code)
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"langs/en.yaml": {Data: []byte(`---
anglicized_name: English
native_name: English
codepoints:
- !ruby/range 65..90
- !ruby/range 97..122
`)},
		"langs/nl.yml": {Data: []byte(`anglicized_name: Dutch
native_name: Nederlands
codepoints:
- 97..122
- 65..90
- 233
`)},
		"langs/pt-BR": {Data: []byte(`anglicized_name: Brazilian Portuguese
native_name: Português brasileiro
codepoints: [65..90]
`)},
		"langs/t1.yaml":      {Data: []byte("anglicized_name: Broken\ncodepoints: [1]\n")},
		"langs/.hidden.yaml": {Data: []byte("garbage: [")},
		"langs/sub/de.yaml":  {Data: []byte("garbage: [")},
	}

	tbl, err := LoadFS(fsys, "langs", discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	en, ok := tbl.Lookup("en")
	require.True(t, ok)
	assert.Equal(t, "English", en.Name)
	assert.Equal(t, uint64(52), en.Total)

	nl, ok := tbl.Lookup("nl")
	require.True(t, ok)
	assert.Equal(t, "Nederlands", nl.NativeName)
	assert.Equal(t, uint64(53), nl.Total)

	pt, ok := tbl.Lookup("pt-BR")
	require.True(t, ok)
	assert.Equal(t, "Português brasileiro", pt.NativeName)

	_, ok = tbl.Lookup("t1")
	assert.False(t, ok, "files with invalid tags are skipped")
}

func TestLoadFS_Errors(t *testing.T) {
	tests := []struct {
		name    string
		fsys    fstest.MapFS
		wantErr error
	}{
		{
			name:    "MalformedYAML",
			fsys:    fstest.MapFS{"d/en.yaml": {Data: []byte("codepoints: [")}},
			wantErr: nil,
		},
		{
			name:    "BadRange",
			fsys:    fstest.MapFS{"d/en.yaml": {Data: []byte("codepoints: [a..b]")}},
			wantErr: coverage.ErrInvalidRange,
		},
		{
			name: "OnlySkippedFiles",
			fsys: fstest.MapFS{
				"d/t1.yaml":    {Data: []byte("codepoints: [1]")},
				"d/.en.yaml":   {Data: []byte("codepoints: [1]")},
				"d/sub/x.yaml": {Data: []byte("codepoints: [1]")},
			},
			wantErr: ErrNoLanguages,
		},
		{
			name:    "EmptyDir",
			fsys:    fstest.MapFS{"d": {Mode: fs.ModeDir}},
			wantErr: ErrNoLanguages,
		},
		{
			name:    "NoCodepoints",
			fsys:    fstest.MapFS{"d/en.yaml": {Data: []byte("anglicized_name: English\n")}},
			wantErr: ErrEmptyLanguage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFS(tt.fsys, "d", discardLogger())
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "de.yaml"), []byte(`anglicized_name: German
native_name: Deutsch
codepoints:
- !ruby/range 65..90
- !ruby/range 97..122
- 196
- 214
- 220
- 223
- 228
- 246
- 252
`), 0o644))

	tbl, err := LoadDir(dir, discardLogger())
	require.NoError(t, err)
	de, ok := tbl.Lookup("de")
	require.True(t, ok)
	assert.Equal(t, uint64(59), de.Total)

	_, err = LoadDir(filepath.Join(dir, "missing"), discardLogger())
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	tbl, err := Default()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, tbl.Len(), 10)

	for _, l := range tbl.Languages() {
		assert.NotEmpty(t, l.Name, "language %s has no name", l.Code)
		assert.NotEmpty(t, l.NativeName, "language %s has no native name", l.Code)
		assert.Positive(t, l.Total, "language %s has no codepoints", l.Code)
	}

	en, ok := tbl.Lookup("en")
	require.True(t, ok)
	assert.Equal(t, uint64(52), en.Total)

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, tbl, again)
}

type fakeSource struct {
	langs []model.Language
	err   error
}

func (f *fakeSource) ListLanguages(ctx context.Context) ([]model.Language, error) {
	return f.langs, f.err
}

func TestLoadStore(t *testing.T) {
	ctx := context.Background()

	tbl, err := LoadStore(ctx, &fakeSource{langs: []model.Language{
		{Code: "en", Name: "English", Codepoints: coverage.Set{{Lo: 65, Hi: 90}, {Lo: 97, Hi: 122}}},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())

	_, err = LoadStore(ctx, &fakeSource{})
	assert.ErrorIs(t, err, ErrNoLanguages, "empty store must not produce an empty table")

	boom := errors.New("boom")
	_, err = LoadStore(ctx, &fakeSource{err: boom})
	assert.ErrorIs(t, err, boom)
}

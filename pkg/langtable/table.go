// Package langtable holds the immutable table of per-language codepoint
// requirements and the loaders that build it.
package langtable

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/language"

	"langcover/pkg/coverage"
	"langcover/pkg/model"
)

var (
	// ErrEmptyLanguage is returned for a record without required codepoints.
	// Such a record would have an undefined score.
	ErrEmptyLanguage = errors.New("language has no required codepoints")
	// ErrDuplicateCode is returned when two records share a code.
	ErrDuplicateCode = errors.New("duplicate language code")
	// ErrInvalidCode is returned for codes that are not BCP 47 tags.
	ErrInvalidCode = errors.New("invalid language code")
	// ErrNoLanguages is returned by loaders whose source yields no records.
	ErrNoLanguages = errors.New("no languages loaded")
)

// Table is an immutable collection of language records.
// It is safe for concurrent use.
type Table struct {
	languages []model.Language
	index     map[string]int
}

// New validates langs and builds a table from them.
// Every record's codepoints are normalized and its Total is computed here,
// once, so that queries never recompute it.
func New(langs []model.Language) (*Table, error) {
	t := &Table{
		languages: make([]model.Language, 0, len(langs)),
		index:     make(map[string]int, len(langs)),
	}

	for i := range langs {
		lang := langs[i]
		if err := ValidateCode(lang.Code); err != nil {
			return nil, err
		}
		if _, dup := t.index[lang.Code]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, lang.Code)
		}

		lang.Codepoints = coverage.Normalize(lang.Codepoints)
		lang.Total = lang.Codepoints.Len()
		if lang.Total == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyLanguage, lang.Code)
		}

		t.index[lang.Code] = len(t.languages)
		t.languages = append(t.languages, lang)
	}

	return t, nil
}

// ValidateCode checks that code is a well-formed BCP 47 language tag.
func ValidateCode(code string) error {
	if code == "" {
		return fmt.Errorf("%w: empty", ErrInvalidCode)
	}
	if _, err := language.Parse(code); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidCode, code, err)
	}
	return nil
}

// Len returns the number of languages in t.
func (t *Table) Len() int {
	return len(t.languages)
}

// At returns the i-th record. The returned Codepoints must not be modified.
func (t *Table) At(i int) model.Language {
	return t.languages[i]
}

// Lookup returns the record for code.
func (t *Table) Lookup(code string) (model.Language, bool) {
	i, ok := t.index[code]
	if !ok {
		return model.Language{}, false
	}
	return t.languages[i], true
}

// Languages returns all records sorted by code.
func (t *Table) Languages() []model.Language {
	out := make([]model.Language, len(t.languages))
	copy(out, t.languages)
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

package model

import "langcover/pkg/coverage"

// Language is one record of the language table.
// Records are built once at table load and shared read-only afterwards.
type Language struct {
	Code       string       `json:"code" yaml:"-"`                  // BCP 47 tag, e.g. "en", "pt-BR"
	Name       string       `json:"name" yaml:"anglicized_name"`    // English name
	NativeName string       `json:"native_name" yaml:"native_name"` // Name in native script
	Codepoints coverage.Set `json:"-" yaml:"codepoints"`            // Required codepoints, canonical
	Total      uint64       `json:"total" yaml:"-"`                 // |Codepoints|, set by the table loader
}

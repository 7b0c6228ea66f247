package model

import (
	"testing"

	"langcover/pkg/coverage"
)

func TestNewMatch(t *testing.T) {
	lang := &Language{
		Code:       "nl",
		Name:       "Dutch",
		NativeName: "Nederlands",
		Codepoints: coverage.Set{{Lo: 65, Hi: 90}, {Lo: 97, Hi: 122}, {Lo: 233, Hi: 233}},
		Total:      53,
	}

	m := NewMatch(lang, 52)
	if m.Code != "nl" || m.Name != "Dutch" || m.NativeName != "Nederlands" {
		t.Errorf("metadata not copied: %+v", m)
	}
	if m.Count != 52 {
		t.Errorf("expected count 52, got %d", m.Count)
	}
	if m.Score != 52.0/53.0 {
		t.Errorf("expected score %f, got %f", 52.0/53.0, m.Score)
	}
}

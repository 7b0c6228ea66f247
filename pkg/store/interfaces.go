package store

import (
	"context"

	"langcover/pkg/model"
)

// LanguageStore handles persistence of the language catalog.
type LanguageStore interface {
	// ListLanguages returns every stored language with its ranges, ordered by code.
	ListLanguages(ctx context.Context) ([]model.Language, error)
	// ReplaceLanguages atomically replaces the whole catalog with langs.
	ReplaceLanguages(ctx context.Context, langs []model.Language) error
	// CountLanguages returns the number of stored languages.
	CountLanguages(ctx context.Context) (int, error)
}

// StateStore handles persistent application state.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
}

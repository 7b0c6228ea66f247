package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"langcover/pkg/coverage"
	"langcover/pkg/db"
	"langcover/pkg/model"
)

// Store defines the repository interface.
// It composes all sub-interfaces for full store access.
// Consumers should depend on specific sub-interfaces when possible.
type Store interface {
	LanguageStore
	StateStore

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Languages ---

func (s *SQLiteStore) ListLanguages(ctx context.Context) ([]model.Language, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, name, native_name, total FROM language ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var langs []model.Language
	index := make(map[string]int)
	for rows.Next() {
		var l model.Language
		var name, native sql.NullString
		var total int64
		if err := rows.Scan(&l.Code, &name, &native, &total); err != nil {
			return nil, err
		}
		l.Name = name.String
		l.NativeName = native.String
		l.Total = uint64(total)
		index[l.Code] = len(langs)
		langs = append(langs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rangeRows, err := s.db.QueryContext(ctx, `SELECT code, lo, hi FROM language_range ORDER BY code, lo`)
	if err != nil {
		return nil, err
	}
	defer rangeRows.Close()

	for rangeRows.Next() {
		var code string
		var lo, hi int64
		if err := rangeRows.Scan(&code, &lo, &hi); err != nil {
			return nil, err
		}
		i, ok := index[code]
		if !ok {
			slog.Warn("Store: Orphaned language range", "code", code, "lo", lo, "hi", hi)
			continue
		}
		langs[i].Codepoints = append(langs[i].Codepoints, coverage.Range{
			Lo: coverage.Codepoint(lo),
			Hi: coverage.Codepoint(hi),
		})
	}
	return langs, rangeRows.Err()
}

func (s *SQLiteStore) ReplaceLanguages(ctx context.Context, langs []model.Language) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM language_range`); err != nil {
		return fmt.Errorf("failed to clear language_range: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM language`); err != nil {
		return fmt.Errorf("failed to clear language: %w", err)
	}

	langStmt, err := tx.PrepareContext(ctx, `INSERT INTO language (code, name, native_name, total, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer langStmt.Close()

	rangeStmt, err := tx.PrepareContext(ctx, `INSERT INTO language_range (code, lo, hi) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer rangeStmt.Close()

	now := time.Now()
	for i := range langs {
		l := &langs[i]
		set := coverage.Normalize(l.Codepoints)
		if _, err = langStmt.ExecContext(ctx, l.Code, l.Name, l.NativeName, int64(set.Len()), now); err != nil {
			return fmt.Errorf("failed to save language %s: %w", l.Code, err)
		}
		for _, r := range set {
			if _, err = rangeStmt.ExecContext(ctx, l.Code, int64(r.Lo), int64(r.Hi)); err != nil {
				return fmt.Errorf("failed to save range %s of %s: %w", r, l.Code, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	slog.Debug("Store: Replaced language catalog", "languages", len(langs))
	return nil
}

func (s *SQLiteStore) CountLanguages(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM language`).Scan(&n)
	return n, err
}

// --- State ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		slog.Error("Store: GetState failed", "key", key, "error", err)
		return "", false
	}
	return val, true
}

func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	query := `INSERT OR REPLACE INTO persistent_state (key, value, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, key, val, time.Now())
	return err
}

func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}

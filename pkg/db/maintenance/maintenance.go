package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"langcover/pkg/config"
	"langcover/pkg/langtable"
	"langcover/pkg/store"
)

const languageDirStateKey = "language_dir_fingerprint"

// Run executes all maintenance tasks: directory import and seeding.
// Failures are logged; Run only returns an error when the catalog is left
// empty, since nothing could be served from it.
// It blocks until completion.
func Run(ctx context.Context, s store.Store, langDir string) error {
	slog.Info("Starting database maintenance...")

	if langDir != "" {
		if err := importDir(ctx, s, langDir); err != nil {
			slog.Error("Language import failed", "dir", langDir, "error", err)
		} else {
			slog.Info("Language import check completed")
		}
	}

	n, err := s.CountLanguages(ctx)
	if err != nil {
		return fmt.Errorf("failed to count languages: %w", err)
	}
	if n > 0 {
		return nil
	}

	slog.Info("Language catalog empty, seeding from embedded data")
	t, err := langtable.Default()
	if err != nil {
		return fmt.Errorf("failed to load embedded table: %w", err)
	}
	return ImportTable(ctx, s, t, config.SourceEmbedded)
}

// ImportTable replaces the stored catalog with the records of t and
// records where they came from.
func ImportTable(ctx context.Context, s store.Store, t *langtable.Table, source string) error {
	langs := t.Languages()
	if err := s.ReplaceLanguages(ctx, langs); err != nil {
		return fmt.Errorf("failed to replace languages: %w", err)
	}

	state := map[string]string{
		config.KeyImportedAt:    time.Now().UTC().Format(time.RFC3339),
		config.KeyImportedFrom:  source,
		config.KeyImportedCount: strconv.Itoa(len(langs)),
	}
	for k, v := range state {
		if err := s.SetState(ctx, k, v); err != nil {
			return fmt.Errorf("failed to update state: %w", err)
		}
	}

	slog.Info("Imported languages", "count", len(langs), "source", source)
	return nil
}

// importDir imports the language files in dir conditional on the directory
// having changed since the last import.
func importDir(ctx context.Context, s store.Store, dir string) error {
	fp, err := dirFingerprint(dir)
	if os.IsNotExist(err) {
		return nil // Directory doesn't exist, nothing to import
	}
	if err != nil {
		return fmt.Errorf("failed to stat language dir: %w", err)
	}

	stored, found := s.GetState(ctx, languageDirStateKey)
	if found && stored == fp {
		return nil // Up to date
	}

	slog.Info("Importing languages from directory...", "path", dir)

	t, err := langtable.LoadDir(dir, slog.Default())
	if err != nil {
		return err
	}
	if err := ImportTable(ctx, s, t, dir); err != nil {
		return err
	}

	if err := s.SetState(ctx, languageDirStateKey, fp); err != nil {
		return fmt.Errorf("failed to update state: %w", err)
	}
	return nil
}

// dirFingerprint summarizes the entries of dir by count and newest
// modification time.
func dirFingerprint(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var newest time.Time
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	return fmt.Sprintf("%d@%s", len(entries), newest.UTC().Format(time.RFC3339Nano)), nil
}

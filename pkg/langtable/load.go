package langtable

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"langcover/pkg/model"
)

//go:embed data/*.yaml
var dataFS embed.FS

var defaultTable = sync.OnceValues(func() (*Table, error) {
	return LoadFS(dataFS, "data", slog.Default())
})

// Default returns the table built from the data set compiled into the
// binary. It is built on first use and shared afterwards.
func Default() (*Table, error) {
	return defaultTable()
}

// Source lists language records from persistent storage.
type Source interface {
	ListLanguages(ctx context.Context) ([]model.Language, error)
}

// LoadStore builds a table from the records held by src.
func LoadStore(ctx context.Context, src Source) (*Table, error) {
	langs, err := src.ListLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list languages: %w", err)
	}
	if len(langs) == 0 {
		return nil, fmt.Errorf("%w: language store is empty", ErrNoLanguages)
	}
	return New(langs)
}

// LoadDir builds a table from the language files in dir.
func LoadDir(dir string, logger *slog.Logger) (*Table, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("failed to open language dir: %w", err)
	}
	return LoadFS(os.DirFS(dir), ".", logger)
}

// LoadFS builds a table from the language files in dir of fsys.
//
// Each file holds one language; its name, minus a .yaml or .yml extension,
// is the language code. Files whose name is not a valid language tag are
// skipped with a warning. Hidden files and subdirectories are ignored.
func LoadFS(fsys fs.FS, dir string, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read language dir: %w", err)
	}

	langs := make([]model.Language, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		code := codeFromFilename(name)
		if err := ValidateCode(code); err != nil {
			logger.Warn("Skipping language file", "file", name, "error", err)
			continue
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		lang, err := decodeLanguage(code, data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		langs = append(langs, lang)
	}
	if len(langs) == 0 {
		return nil, fmt.Errorf("%w: no language files in %s", ErrNoLanguages, dir)
	}

	t, err := New(langs)
	if err != nil {
		return nil, err
	}
	logger.Debug("Language table loaded", "languages", t.Len(), "dir", dir)
	return t, nil
}

func codeFromFilename(name string) string {
	switch ext := path.Ext(name); ext {
	case ".yaml", ".yml":
		return strings.TrimSuffix(name, ext)
	default:
		return name
	}
}

func decodeLanguage(code string, data []byte) (model.Language, error) {
	var lang model.Language
	if err := yaml.Unmarshal(data, &lang); err != nil {
		return model.Language{}, err
	}
	lang.Code = code
	return lang, nil
}

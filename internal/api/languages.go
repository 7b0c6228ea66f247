package api

import (
	"net/http"

	"langcover/pkg/coverage"
	"langcover/pkg/langtable"
	"langcover/pkg/model"
)

// LanguagesHandler exposes the loaded language table.
type LanguagesHandler struct {
	table *langtable.Table
}

// NewLanguagesHandler creates a new LanguagesHandler.
func NewLanguagesHandler(table *langtable.Table) *LanguagesHandler {
	return &LanguagesHandler{table: table}
}

// LanguageDetail is a language together with its required codepoints.
type LanguageDetail struct {
	model.Language
	Codepoints coverage.Set `json:"codepoints"`
}

// HandleList handles GET /api/languages.
func (h *LanguagesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.table.Languages())
}

// HandleGet handles GET /api/languages/{code}.
func (h *LanguagesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	lang, ok := h.table.Lookup(code)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown language "+code)
		return
	}
	writeJSON(w, http.StatusOK, LanguageDetail{
		Language:   lang,
		Codepoints: lang.Codepoints,
	})
}

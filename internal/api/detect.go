package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"langcover/pkg/config"
	"langcover/pkg/coverage"
	"langcover/pkg/detector"
	"langcover/pkg/model"
)

const maxDetectBody = 1 << 20

// DetectHandler serves coverage detection requests.
type DetectHandler struct {
	det *detector.Detector
	cfg config.Provider
}

// NewDetectHandler creates a new DetectHandler.
func NewDetectHandler(det *detector.Detector, cfg config.Provider) *DetectHandler {
	return &DetectHandler{
		det: det,
		cfg: cfg,
	}
}

// DetectRequest is the body of POST /api/detect. The three inputs are
// combined into one set.
type DetectRequest struct {
	Ranges     []coverage.Range     `json:"ranges"`
	Codepoints []coverage.Codepoint `json:"codepoints"`
	Text       string               `json:"text"`
	Threshold  *float64             `json:"threshold,omitempty"`
}

// DetectResponse lists the supported languages, best first.
type DetectResponse struct {
	Threshold float64       `json:"threshold"`
	Matches   []model.Match `json:"matches"`
}

// HandleDetect handles POST /api/detect.
func (h *DetectHandler) HandleDetect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDetectBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	threshold := h.cfg.Threshold(r.Context())
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	input := coverage.Normalize(req.Ranges).
		Union(coverage.FromCodepoints(req.Codepoints)).
		Union(coverage.FromString(req.Text))

	writeJSON(w, http.StatusOK, DetectResponse{
		Threshold: threshold,
		Matches:   h.det.DetectSet(input, threshold),
	})
}

// HandleQuery handles GET /api/detect?ranges=65..90,97..122&text=...&threshold=0.8.
func (h *DetectHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	threshold := h.cfg.Threshold(r.Context())
	if v := q.Get("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid threshold %q", v))
			return
		}
		threshold = f
	}

	var ranges []coverage.Range
	for _, field := range q["ranges"] {
		for _, part := range strings.Split(field, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			rg, err := coverage.ParseRange(part)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			ranges = append(ranges, rg)
		}
	}

	input := coverage.Normalize(ranges).Union(coverage.FromString(q.Get("text")))

	writeJSON(w, http.StatusOK, DetectResponse{
		Threshold: threshold,
		Matches:   h.det.DetectSet(input, threshold),
	})
}

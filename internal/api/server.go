package api

import (
	"fmt"
	"net/http"
	"time"

	"langcover/pkg/config"
	"langcover/pkg/version"
)

// Handlers bundles the endpoint handlers mounted by NewServer.
type Handlers struct {
	Detect    *DetectHandler
	Languages *LanguagesHandler
	Config    *ConfigHandler
}

// NewServer creates a new HTTP server serving the detection API.
func NewServer(cfg *config.ServerConfig, h Handlers, shutdownFunc func()) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)
	mux.HandleFunc("GET /api/log/recent", handleRecentLog)

	mux.HandleFunc("GET /api/languages", h.Languages.HandleList)
	mux.HandleFunc("GET /api/languages/{code}", h.Languages.HandleGet)

	mux.HandleFunc("GET /api/detect", h.Detect.HandleQuery)
	mux.HandleFunc("POST /api/detect", h.Detect.HandleDetect)

	mux.HandleFunc("GET /api/config", h.Config.HandleGet)
	mux.HandleFunc("PUT /api/config", h.Config.HandleSet)
	mux.HandleFunc("DELETE /api/config", h.Config.HandleReset)

	if shutdownFunc != nil {
		mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte("Shutting down..."))
			go shutdownFunc()
		})
	}

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      WithRequestID(WithRequestLogging(mux)),
		ReadTimeout:  time.Duration(cfg.ReadTimeout),
		WriteTimeout: time.Duration(cfg.WriteTimeout),
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, `{"version":%q}`, version.Version)
}

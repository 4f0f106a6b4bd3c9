package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cpunion/slidegen/pkg/llm"
	"github.com/cpunion/slidegen/pkg/pipeline"
	"github.com/cpunion/slidegen/pkg/site"
	"github.com/cpunion/slidegen/pkg/types"
)

const maxRequestBytes = 1 << 20

type generateResponse struct {
	*types.GenerationResult
	DeckPath string `json:"deckPath,omitempty"`
}

type server struct {
	pipeline *pipeline.Pipeline
	outDir   string
	logger   zerolog.Logger
}

func newRouter(p *pipeline.Pipeline, reg *prometheus.Registry, outDir string, logger zerolog.Logger) http.Handler {
	s := &server{pipeline: p, outDir: outDir, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(logRequest(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", withJSON(s.generate))
		r.Get("/themes", withJSON(s.themes))
		r.Get("/stats", withJSON(s.stats))
		r.Get("/decks", withJSON(s.decks))
	})
	if outDir != "" {
		r.Handle("/decks/*", http.StripPrefix("/decks/", serveStaticDir(outDir)))
	}
	return r
}

func (s *server) generate(w http.ResponseWriter, r *http.Request) (any, int, error) {
	var req types.SlideGenerationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err)
	}

	result, err := s.pipeline.Generate(r.Context(), req)
	if err != nil {
		return nil, generationStatus(err), err
	}

	resp := generateResponse{GenerationResult: result}
	if r.URL.Query().Get("save") == "true" && s.outDir != "" {
		name := site.DeckDirName(result)
		if _, err := site.WriteDeck(filepath.Join(s.outDir, name), result); err != nil {
			return nil, http.StatusInternalServerError, fmt.Errorf("write deck: %w", err)
		}
		if _, err := site.WriteDeckCatalog(s.outDir); err != nil {
			s.logger.Warn().Err(err).Msg("update deck catalog")
		}
		resp.DeckPath = "/decks/" + name + "/"
	}
	return resp, http.StatusOK, nil
}

func (s *server) themes(w http.ResponseWriter, r *http.Request) (any, int, error) {
	return map[string]any{"themes": s.pipeline.Catalog().All()}, http.StatusOK, nil
}

func (s *server) stats(w http.ResponseWriter, r *http.Request) (any, int, error) {
	return s.pipeline.Stats(), http.StatusOK, nil
}

func (s *server) decks(w http.ResponseWriter, r *http.Request) (any, int, error) {
	if s.outDir == "" {
		return site.DeckCatalog{Version: 1, Decks: []site.Deck{}}, http.StatusOK, nil
	}
	cat, err := site.ScanDecks(s.outDir)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return cat, http.StatusOK, nil
}

// generationStatus maps a pipeline failure to an HTTP status.
func generationStatus(err error) int {
	var gerr *pipeline.GenerationError
	if errors.As(err, &gerr) && gerr.Stage == pipeline.StageRequest {
		return http.StatusBadRequest
	}
	switch {
	case llm.IsReason(err, llm.ReasonRateLimited):
		return http.StatusTooManyRequests
	case llm.IsReason(err, llm.ReasonTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func withJSON(handler func(http.ResponseWriter, *http.Request) (any, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, status, err := handler(w, r)
		if err != nil {
			body := map[string]any{"error": err.Error()}
			var gerr *pipeline.GenerationError
			if errors.As(err, &gerr) {
				body["stage"] = gerr.Stage
			}
			writeJSON(w, status, body)
			return
		}
		writeJSON(w, status, payload)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func logRequest(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Str("request_id", middleware.GetReqID(r.Context())).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		})
	}
}

func serveStaticDir(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".html") || strings.HasSuffix(r.URL.Path, ".json") {
			w.Header().Set("Cache-Control", "no-store")
		}
		fs.ServeHTTP(w, r)
	})
}

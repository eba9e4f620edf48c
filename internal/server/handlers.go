package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"eventdocs/internal/catalog"
	"eventdocs/internal/generator"
	"eventdocs/internal/graph"
	"eventdocs/internal/storage"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listCollection handles GET /api/collections/{collection}
func (s *Server) listCollection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")
	if _, ok := catalog.ParseCollection(name); !ok {
		s.respondError(w, http.StatusNotFound, "unknown collection "+name)
		return
	}
	allVersions := false
	if raw := r.URL.Query().Get("allVersions"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "allVersions must be a boolean")
			return
		}
		allVersions = v
	}

	items, err := s.pipeline.Collection(r.Context(), name, allVersions)
	if err != nil {
		s.logger.Error("Failed to load collection", zap.String("collection", name), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load collection")
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) buildGraph(w http.ResponseWriter, r *http.Request) (*graph.Graph, bool) {
	kind, err := graph.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	mode := graph.Mode(r.URL.Query().Get("mode"))
	switch mode {
	case "":
		mode = graph.ModeSimple
	case graph.ModeSimple, graph.ModeFull:
	default:
		s.respondError(w, http.StatusBadRequest, "mode must be simple or full")
		return nil, false
	}

	id := chi.URLParam(r, "id")
	g, err := s.builder.Build(r.Context(), kind, id, r.URL.Query().Get("version"), mode)
	if err != nil {
		s.logger.Error("Failed to build graph", zap.String("kind", string(kind)), zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to build graph")
		return nil, false
	}
	// an unknown focal record renders as an empty canvas
	return g, true
}

// getGraph handles GET /api/graphs/{kind}/{id}
func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	g, ok := s.buildGraph(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, g)
}

// getMermaid handles GET /api/graphs/{kind}/{id}/mermaid
func (s *Server) getMermaid(w http.ResponseWriter, r *http.Request) {
	g, ok := s.buildGraph(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.mermaid.Generate(g)))
}

func (s *Server) getSavedGraph(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")
	saved, err := s.graphs.LoadGraph(r.Context(), graphID)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "graph not found")
		return
	}
	if err != nil {
		s.logger.Error("Failed to load saved graph", zap.String("graphID", graphID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load graph")
		return
	}
	s.respondJSON(w, http.StatusOK, saved)
}

func (s *Server) diagnostics(w http.ResponseWriter, r *http.Request) {
	diag := s.pipeline.Diagnostics()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"total":   diag.Len(),
		"reasons": diag.ReasonCounts(),
		"items":   diag.Items(),
	})
}

func (s *Server) llmsText(w http.ResponseWriter, r *http.Request) {
	records, err := s.pipeline.Records(r.Context())
	if err != nil {
		s.logger.Error("Failed to load records", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load records")
		return
	}
	opts := s.export
	if opts.BaseURL == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		opts.BaseURL = scheme + "://" + r.Host
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(generator.LLMSText(records, opts)))
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

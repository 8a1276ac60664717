// Package server exposes the aggregation engine over a small JSON API.
// Rendering, debouncing of search input (the client is expected to
// wait ~450ms after the last keystroke before calling /api/feed), and
// credential entry all live in the client; the server only triggers
// cycles and reports their outcome.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/TobiSchelling/NewsDesk/internal/aggregate"
	"github.com/TobiSchelling/NewsDesk/internal/fetch"
)

// Server wires HTTP routes to the aggregator.
type Server struct {
	agg       *aggregate.Aggregator
	extractor *fetch.Extractor
	mux       *http.ServeMux
}

// New creates a Server over the given aggregator.
func New(agg *aggregate.Aggregator) *Server {
	s := &Server{
		agg:       agg,
		extractor: fetch.NewExtractor(15 * time.Second),
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/feed", s.handleFeed)
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/read", s.handleRead)
}

// handleFeed runs one aggregation cycle. Every request is an immediate
// trigger; a request that arrives while another is in flight
// supersedes it, and the superseded caller gets 409.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")
	if category == "" {
		category = "general"
	}

	result := s.agg.Fetch(r.Context(), query, category)
	if result == nil {
		respondError(w, http.StatusConflict, "superseded by a newer request")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"sources":  s.agg.Health(),
		"lastLive": s.agg.LastLive(),
	})
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	articleURL := r.URL.Query().Get("url")
	if articleURL == "" {
		respondError(w, http.StatusBadRequest, "missing url parameter")
		return
	}

	article, err := s.extractor.Extract(r.Context(), articleURL)
	if err != nil {
		log.Printf("Extraction failed for %s: %v", articleURL, err)
		respondError(w, http.StatusBadGateway, "could not extract article content")
		return
	}

	respondJSON(w, http.StatusOK, article)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Serve starts the HTTP server on the given port.
func Serve(agg *aggregate.Aggregator, port int) error {
	srv := New(agg)
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}

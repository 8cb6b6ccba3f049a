// Package api serves the extraction and comparison endpoints over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"wishlist-extractor/extractor"
	"wishlist-extractor/internal/types"
	"wishlist-extractor/store"
)

// Pipeline runs one extraction.
type Pipeline interface {
	Extract(ctx context.Context, rawURL string) *extractor.Result
}

// Server holds the API dependencies
type Server struct {
	pipeline Pipeline
	store    store.Store
	logger   types.Logger
	mux      *http.ServeMux
}

// NewServer creates a new API server
func NewServer(pipeline Pipeline, st store.Store, logger types.Logger) *Server {
	s := &Server{
		pipeline: pipeline,
		store:    st,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/extract", s.allow(http.MethodPost, s.handleExtract))
	s.mux.HandleFunc("/compare", s.allow(http.MethodPost, s.handleCompare))
	s.mux.HandleFunc("/health", s.allow(http.MethodGet, s.handleHealth))
	s.mux.HandleFunc("/lists/{listId}/items", s.allow(http.MethodPut, s.handleReplaceItems))
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// NewHTTPServer wraps the handler in an http.Server listening on addr.
func (s *Server) NewHTTPServer(addr string, readTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readTimeout,
	}
}

// allow sets the JSON and CORS headers, answers preflight requests and
// rejects every method but the given one.
func (s *Server) allow(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", method+", OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != method {
			s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

// sendJSON writes a 200 response
func (s *Server) sendJSON(w http.ResponseWriter, body any) {
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Errorf("Failed to encode response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	response := ErrorResponse{
		Success: false,
		Message: message,
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Errorf("Failed to encode error response: %v", err)
	}
}

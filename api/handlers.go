package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"wishlist-extractor/compare"
	"wishlist-extractor/internal/types"
)

const maxRequestBytes = 4 << 20

// ExtractRequest is the body of POST /extract.
type ExtractRequest struct {
	URL string `json:"url"`
}

// CompareRequest is the body of POST /compare.
type CompareRequest struct {
	ListID string `json:"listId"`
	// FreshItems is a pointer so a missing field can be told apart from
	// an empty list.
	FreshItems *[]types.NormalizedItem `json:"freshItems"`
}

// CompareResponse is the reply of POST /compare. ExistingItems holds the
// unchanged bucket, NewItems the added one and UpdatedItems the changed pairs.
type CompareResponse struct {
	Success       bool                   `json:"success"`
	ExistingItems []types.NormalizedItem `json:"existingItems"`
	NewItems      []types.NormalizedItem `json:"newItems"`
	UpdatedItems  []types.ChangedPair    `json:"updatedItems"`
	Summary       CompareSummary         `json:"summary"`
	Message       string                 `json:"message,omitempty"`
}

// CompareSummary counts the buckets of a CompareResponse.
type CompareSummary struct {
	ExistingCount int `json:"existingCount"`
	NewCount      int `json:"newCount"`
	UpdatedCount  int `json:"updatedCount"`
}

// ReplaceItemsRequest is the body of PUT /lists/{listId}/items.
type ReplaceItemsRequest struct {
	Items []types.NormalizedItem `json:"items"`
}

// ReplaceItemsResponse acknowledges a stored snapshot.
type ReplaceItemsResponse struct {
	Success bool   `json:"success"`
	ListID  string `json:"listId,omitempty"`
	Count   int    `json:"count"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the envelope for requests that never reached the domain.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(dst); err != nil {
		s.logger.Debugf("Invalid request body on %s: %v", r.URL.Path, err)
		s.sendError(w, "Invalid request body", http.StatusOK)
		return false
	}
	return true
}

// handleExtract handles the extraction endpoint
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if !s.decode(w, r, &req) {
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		s.sendError(w, "A list URL is required", http.StatusOK)
		return
	}

	s.logger.Infof("Extract request received for %s", req.URL)
	result := s.pipeline.Extract(r.Context(), req.URL)
	s.sendJSON(w, result)
}

// handleCompare diffs fresh items against the stored snapshot of a list
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !s.decode(w, r, &req) {
		return
	}

	req.ListID = strings.TrimSpace(req.ListID)
	if req.ListID == "" {
		s.sendError(w, "A list ID is required", http.StatusOK)
		return
	}
	if req.FreshItems == nil {
		s.sendError(w, "Fresh items are required", http.StatusOK)
		return
	}

	existing, err := s.store.Items(r.Context(), req.ListID)
	if err != nil {
		s.logger.WithError(err).Errorf("Failed to load items for list %s", req.ListID)
		s.sendJSON(w, emptyCompare("We couldn't load the saved list. Please try again."))
		return
	}

	result := compare.Compare(existing, *req.FreshItems)
	s.logger.Infof("Compared list %s: %d unchanged, %d new, %d updated",
		req.ListID, result.Summary.UnchangedCount, result.Summary.AddedCount, result.Summary.ChangedCount)

	s.sendJSON(w, CompareResponse{
		Success:       true,
		ExistingItems: result.Unchanged,
		NewItems:      result.Added,
		UpdatedItems:  result.Changed,
		Summary: CompareSummary{
			ExistingCount: result.Summary.UnchangedCount,
			NewCount:      result.Summary.AddedCount,
			UpdatedCount:  result.Summary.ChangedCount,
		},
	})
}

func emptyCompare(message string) CompareResponse {
	return CompareResponse{
		ExistingItems: []types.NormalizedItem{},
		NewItems:      []types.NormalizedItem{},
		UpdatedItems:  []types.ChangedPair{},
		Message:       message,
	}
}

// handleReplaceItems stores the current items of a list
func (s *Server) handleReplaceItems(w http.ResponseWriter, r *http.Request) {
	listID := strings.TrimSpace(r.PathValue("listId"))
	if listID == "" {
		s.sendError(w, "A list ID is required", http.StatusOK)
		return
	}

	var req ReplaceItemsRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.store.ReplaceItems(r.Context(), listID, req.Items); err != nil {
		s.logger.WithError(err).Errorf("Failed to save items for list %q", listID)
		s.sendJSON(w, ReplaceItemsResponse{ListID: listID, Message: "We couldn't save the list items."})
		return
	}

	s.logger.Infof("Saved %d items for list %s", len(req.Items), listID)
	s.sendJSON(w, ReplaceItemsResponse{Success: true, ListID: listID, Count: len(req.Items)})
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, map[string]string{"status": "healthy"})
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wishlist-extractor/extractor"
	"wishlist-extractor/internal/types"
	"wishlist-extractor/store"
)

type fakePipeline struct {
	urls   []string
	result *extractor.Result
}

func (f *fakePipeline) Extract(ctx context.Context, rawURL string) *extractor.Result {
	f.urls = append(f.urls, rawURL)
	return f.result
}

type brokenStore struct{}

func (brokenStore) Items(context.Context, string) ([]types.NormalizedItem, error) {
	return nil, errors.New("connection refused")
}
func (brokenStore) ReplaceItems(context.Context, string, []types.NormalizedItem) error {
	return errors.New("connection refused")
}
func (brokenStore) Close() error { return nil }

func newTestServer(t *testing.T, pipeline Pipeline) (*Server, store.Store) {
	t.Helper()
	st, err := store.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewServer(pipeline, st, logrus.New()), st
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	return rec, decoded
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t, &fakePipeline{})

	rec, body := do(t, s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "healthy", body["status"])
}

func TestHandleExtract_Success(t *testing.T) {
	pipeline := &fakePipeline{result: &extractor.Result{
		Success:  true,
		Retailer: types.AmazonWishlist,
		Items:    []types.NormalizedItem{{Name: "Echo Dot", Price: "$49.99"}},
		Provider: types.ProviderDirect,
		Method:   types.MethodDOM,
	}}
	s, _ := newTestServer(t, pipeline)

	rec, body := do(t, s, http.MethodPost, "/extract", `{"url":"  https://www.amazon.com/hz/wishlist/ls/ABC  "}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"https://www.amazon.com/hz/wishlist/ls/ABC"}, pipeline.urls)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "amazon_wishlist", body["retailer"])
	require.Len(t, body["items"], 1)
	assert.Equal(t, "Echo Dot", body["items"].([]any)[0].(map[string]any)["name"])
	assert.NotContains(t, body, "requiresManualUpload")
}

func TestHandleExtract_DomainFailureIsStill200(t *testing.T) {
	pipeline := &fakePipeline{result: &extractor.Result{
		Retailer:             types.AmazonRegistry,
		Message:              "Amazon is blocking automated access to this list right now. Please upload your items manually.",
		RequiresManualUpload: true,
		Err:                  types.NewPipelineError(types.ErrAllProvidersExhausted, nil),
	}}
	s, _ := newTestServer(t, pipeline)

	rec, body := do(t, s, http.MethodPost, "/extract", `{"url":"https://www.amazon.com/registries/gl/guest-view/1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, true, body["requiresManualUpload"])
	assert.NotContains(t, body, "items")
}

func TestHandleExtract_BadRequests(t *testing.T) {
	pipeline := &fakePipeline{}
	s, _ := newTestServer(t, pipeline)

	for _, payload := range []string{`{}`, `{"url":"   "}`, `not json`, ``} {
		rec, body := do(t, s, http.MethodPost, "/extract", payload)
		assert.Equal(t, http.StatusOK, rec.Code, payload)
		assert.Equal(t, false, body["success"], payload)
		assert.NotEmpty(t, body["message"], payload)
	}
	assert.Empty(t, pipeline.urls)
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, &fakePipeline{})

	rec, body := do(t, s, http.MethodGet, "/extract", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, false, body["success"])

	rec, _ = do(t, s, http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPreflight(t *testing.T) {
	s, _ := newTestServer(t, &fakePipeline{})

	req := httptest.NewRequest(http.MethodOptions, "/compare", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestHandleCompare(t *testing.T) {
	s, st := newTestServer(t, &fakePipeline{})
	require.NoError(t, st.ReplaceItems(context.Background(), "list-1", []types.NormalizedItem{
		{Name: "Widget", Price: "$5"},
		{Name: "Stroller"},
	}))

	rec, body := do(t, s, http.MethodPost, "/compare", `{"listId":"list-1","freshItems":[
		{"name":"widget ","price":"$6"},
		{"name":"Gadget","price":"$9.99"}
	]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"existingCount": 1.0, "newCount": 1.0, "updatedCount": 1.0}, body["summary"])
	assert.Equal(t, []any{map[string]any{"name": "Stroller"}}, body["existingItems"])
	assert.Equal(t, []any{map[string]any{"name": "Gadget", "price": "$9.99"}}, body["newItems"])
	assert.Equal(t, []any{map[string]any{
		"existing": map[string]any{"name": "Widget", "price": "$5"},
		"fresh":    map[string]any{"name": "widget ", "price": "$6"},
	}}, body["updatedItems"])
}

func TestHandleCompare_UnknownListMakesEverythingNew(t *testing.T) {
	s, _ := newTestServer(t, &fakePipeline{})

	_, body := do(t, s, http.MethodPost, "/compare", `{"listId":"fresh-list","freshItems":[{"name":"Gadget","price":"$9.99"}]}`)

	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{}, body["existingItems"])
	assert.Equal(t, []any{}, body["updatedItems"])
	assert.Len(t, body["newItems"], 1)
}

func TestHandleCompare_Failures(t *testing.T) {
	s, _ := newTestServer(t, &fakePipeline{})
	rec, body := do(t, s, http.MethodPost, "/compare", `{"freshItems":[]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["success"])

	for _, payload := range []string{`{"listId":"list-1"}`, `{"listId":"list-1","freshItems":null}`} {
		rec, body = do(t, s, http.MethodPost, "/compare", payload)
		assert.Equal(t, http.StatusOK, rec.Code, payload)
		assert.Equal(t, false, body["success"], payload)
		assert.Equal(t, "Fresh items are required", body["message"], payload)
		assert.NotContains(t, body, "summary", payload)
	}

	broken := NewServer(&fakePipeline{}, brokenStore{}, logrus.New())
	rec, body = do(t, broken, http.MethodPost, "/compare", `{"listId":"x","freshItems":[{"name":"A"}]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, []any{}, body["newItems"])
	assert.NotEmpty(t, body["message"])
}

func TestHandleReplaceItems(t *testing.T) {
	s, st := newTestServer(t, &fakePipeline{})

	rec, body := do(t, s, http.MethodPut, "/lists/list-9/items", `{"items":[{"name":"Crib","price":"$120.00"},{"name":"Monitor"}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "list-9", body["listId"])
	assert.Equal(t, 2.0, body["count"])

	saved, err := st.Items(context.Background(), "list-9")
	require.NoError(t, err)
	assert.Equal(t, []types.NormalizedItem{{Name: "Crib", Price: "$120.00"}, {Name: "Monitor"}}, saved)

	broken := NewServer(&fakePipeline{}, brokenStore{}, logrus.New())
	rec, body = do(t, broken, http.MethodPut, "/lists/list-9/items", `{"items":[]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestHandleReplaceItems_BlankListID(t *testing.T) {
	// The failing store would answer with a save error if it were reached.
	s := NewServer(&fakePipeline{}, brokenStore{}, logrus.New())

	rec, body := do(t, s, http.MethodPut, "/lists/%20/items", `{"items":[{"name":"Crib"}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "A list ID is required", body["message"])
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TobiSchelling/NewsDesk/internal/aggregate"
	"github.com/TobiSchelling/NewsDesk/internal/news"
	"github.com/TobiSchelling/NewsDesk/internal/sources"
)

// stubSource is a canned adapter for handler tests.
type stubSource struct {
	name  string
	items []news.Item
	err   error
	fetch func(ctx context.Context, query, category string) ([]news.Item, error)
}

func (s *stubSource) Name() string     { return s.name }
func (s *stubSource) Configured() bool { return true }

func (s *stubSource) Fetch(ctx context.Context, query, category string) ([]news.Item, error) {
	if s.fetch != nil {
		return s.fetch(ctx, query, category)
	}
	return s.items, s.err
}

func newTestServer(srcs ...sources.Source) *Server {
	return New(aggregate.New(srcs, nil))
}

func TestFeedRoute(t *testing.T) {
	srv := newTestServer(&stubSource{name: "a", items: []news.Item{
		{Title: "Test headline", URL: "https://example.com/1", SourceName: "Example", Platform: news.PlatformHeadlineAPI},
	}})

	req := httptest.NewRequest("GET", "/api/feed?category=technology", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var result aggregate.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].Title != "Test headline" {
		t.Errorf("unexpected items: %v", result.Items)
	}
	if result.Category != "technology" {
		t.Errorf("expected category technology, got %q", result.Category)
	}
	if result.Fallback {
		t.Error("live result should not be marked fallback")
	}
}

func TestFeedRouteDefaultsCategory(t *testing.T) {
	srv := newTestServer(&stubSource{name: "a"})

	req := httptest.NewRequest("GET", "/api/feed", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var result aggregate.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if result.Category != "general" {
		t.Errorf("expected default category general, got %q", result.Category)
	}
}

func TestFeedRouteFallsBack(t *testing.T) {
	srv := newTestServer(&stubSource{name: "a", err: errors.New("down")})

	req := httptest.NewRequest("GET", "/api/feed", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("total failure must still answer 200, got %d", rec.Code)
	}

	var result aggregate.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if !result.Fallback || len(result.Items) == 0 {
		t.Error("expected non-empty fallback content")
	}
	if result.Health["a"] {
		t.Error("health should expose the failing source")
	}
}

func TestFeedRouteSupersededGets409(t *testing.T) {
	staleStarted := make(chan struct{})
	src := &stubSource{name: "a"}
	src.fetch = func(ctx context.Context, query, category string) ([]news.Item, error) {
		if query == "stale" {
			close(staleStarted)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []news.Item{{Title: "Fresh headline", URL: "https://example.com/fresh"}}, nil
	}
	srv := newTestServer(src)

	staleRec := httptest.NewRecorder()
	staleDone := make(chan struct{})
	go func() {
		defer close(staleDone)
		req := httptest.NewRequest("GET", "/api/feed?q=stale", nil)
		srv.Handler().ServeHTTP(staleRec, req)
	}()
	<-staleStarted

	// The second request cancels the first cycle and wins.
	freshRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(freshRec, httptest.NewRequest("GET", "/api/feed?q=fresh", nil))
	<-staleDone

	if freshRec.Code != http.StatusOK {
		t.Fatalf("winning request should answer 200, got %d", freshRec.Code)
	}
	if staleRec.Code != http.StatusConflict {
		t.Errorf("superseded request should answer 409, got %d", staleRec.Code)
	}
}

func TestHealthRoute(t *testing.T) {
	srv := newTestServer(&stubSource{name: "a", items: []news.Item{
		{Title: "x", URL: "https://example.com/x"},
	}})

	// Settle one cycle first so the snapshot has content.
	req := httptest.NewRequest("GET", "/api/feed", nil)
	srv.Handler().ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Sources map[string]bool `json:"sources"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if !payload.Sources["a"] {
		t.Errorf("expected source a healthy, got %v", payload.Sources)
	}
}

func TestReadRouteRequiresURL(t *testing.T) {
	srv := newTestServer(&stubSource{name: "a"})

	req := httptest.NewRequest("GET", "/api/read", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing url, got %d", rec.Code)
	}
}

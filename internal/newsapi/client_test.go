package newsapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/newsmania/internal/worker"
)

const headlinesJSON = `{
  "status": "ok",
  "totalResults": 2,
  "articles": [
    {
      "source": {"id": "reuters", "name": "Reuters"},
      "author": "Jane Doe",
      "title": "Markets steady after rate decision",
      "description": "Stocks were flat.",
      "url": "https://reuters.com/a",
      "urlToImage": "https://reuters.com/a.jpg",
      "publishedAt": "2024-05-01T10:00:00Z",
      "content": "Stocks were flat on Wednesday, analysts said."
    },
    {
      "source": {"id": null, "name": ""},
      "author": null,
      "title": null,
      "description": null,
      "url": null,
      "urlToImage": null,
      "publishedAt": null,
      "content": null
    }
  ]
}`

func TestClient_TopHeadlines(t *testing.T) {
	var gotPath, gotKey, gotCategory, gotCountry, gotPageSize string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		gotCategory = r.URL.Query().Get("category")
		gotCountry = r.URL.Query().Get("country")
		gotPageSize = r.URL.Query().Get("pageSize")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(headlinesJSON))
	}))
	defer server.Close()

	client := NewClient(server.Client(), "secret", WithBaseURL(server.URL), WithCountry("gb"))
	articles, err := client.TopHeadlines(context.Background(), "business", 5)
	if err != nil {
		t.Fatalf("TopHeadlines failed: %v", err)
	}

	if gotPath != "/top-headlines" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("expected API key header, got %q", gotKey)
	}
	if gotCategory != "business" || gotCountry != "gb" || gotPageSize != "5" {
		t.Errorf("unexpected query: category=%q country=%q pageSize=%q", gotCategory, gotCountry, gotPageSize)
	}

	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.Source.Name != "Reuters" || first.Source.ID != "reuters" {
		t.Errorf("unexpected source: %+v", first.Source)
	}
	if !strings.HasPrefix(first.ID, "business-0-") {
		t.Errorf("unexpected ID %q", first.ID)
	}

	second := articles[1]
	if second.Title != noTitle || second.Description != noDescription || second.Content != noContent {
		t.Errorf("defaults not applied: %+v", second)
	}
	if second.Source.Name != unknownSource || second.Author != unknownAuthor || second.URL != "#" {
		t.Errorf("defaults not applied: %+v", second)
	}
	if second.PublishedAt == "" {
		t.Error("expected publishedAt default")
	}
	if !strings.HasPrefix(second.ID, "business-1-") {
		t.Errorf("unexpected ID %q", second.ID)
	}
}

func TestClient_TopHeadlines_AllCategory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("category") {
			t.Errorf("category should be omitted for all, got %q", r.URL.Query().Get("category"))
		}
		_, _ = w.Write([]byte(`{"status":"ok","articles":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), "k", WithBaseURL(server.URL))
	articles, err := client.TopHeadlines(context.Background(), "all", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("expected no articles, got %d", len(articles))
	}
}

func TestClient_Everything(t *testing.T) {
	var gotQuery, gotPage, gotPageSize string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/everything" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("q")
		gotPage = r.URL.Query().Get("page")
		gotPageSize = r.URL.Query().Get("pageSize")
		_, _ = w.Write([]byte(headlinesJSON))
	}))
	defer server.Close()

	client := NewClient(server.Client(), "k", WithBaseURL(server.URL))
	articles, err := client.Everything(context.Background(), "climate & policy", 2, 500)
	if err != nil {
		t.Fatalf("Everything failed: %v", err)
	}

	if gotQuery != "climate & policy" || gotPage != "2" || gotPageSize != "100" {
		t.Errorf("unexpected query: q=%q page=%q pageSize=%q", gotQuery, gotPage, gotPageSize)
	}
	if !strings.HasPrefix(articles[0].ID, "search-0-") {
		t.Errorf("unexpected ID %q", articles[0].ID)
	}
}

func TestClient_Everything_EmptyQuery(t *testing.T) {
	client := NewClient(nil, "k")
	if _, err := client.Everything(context.Background(), "  ", 1, 10); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestClient_MissingAPIKey(t *testing.T) {
	client := NewClient(nil, "")
	_, err := client.TopHeadlines(context.Background(), "general", 10)
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUpgradeRequired)
		_, _ = w.Write([]byte(`{"status":"error","code":"corsNotAllowed","message":"Requests from the browser are not allowed"}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), "k", WithBaseURL(server.URL))
	_, err := client.TopHeadlines(context.Background(), "general", 10)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUpgradeRequired || apiErr.Code != "corsNotAllowed" {
		t.Errorf("unexpected API error: %+v", apiErr)
	}
	if !strings.Contains(apiErr.Error(), "426") {
		t.Errorf("error text should carry the status: %s", apiErr.Error())
	}
}

func TestClient_InvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), "k", WithBaseURL(server.URL))
	if _, err := client.TopHeadlines(context.Background(), "general", 10); err == nil {
		t.Error("expected error for missing articles array")
	}
}

func TestClient_Limiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","articles":[]}`))
	}))
	defer server.Close()

	limiter := worker.NewLimiter(0.001, 1)
	client := NewClient(server.Client(), "k", WithBaseURL(server.URL), WithLimiter(limiter))

	if _, err := client.TopHeadlines(context.Background(), "general", 10); err != nil {
		t.Fatalf("first request failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.TopHeadlines(ctx, "general", 10); err == nil {
		t.Error("expected rate limit error once budget is spent")
	}
}

func TestClampPageSize(t *testing.T) {
	tests := map[int]int{-1: 20, 0: 20, 1: 1, 50: 50, 100: 100, 101: 100}
	for in, want := range tests {
		if got := clampPageSize(in); got != want {
			t.Errorf("clampPageSize(%d) = %d, want %d", in, got, want)
		}
	}
}

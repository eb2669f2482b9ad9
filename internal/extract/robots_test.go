package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRobotsChecker_CanFetch(t *testing.T) {
	var fetches int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			atomic.AddInt32(&fetches, 1)
			_, _ = w.Write([]byte("User-agent: Newsmania\nDisallow: /no-bots\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "Newsmania/0.1 (+https://github.com/ppiankov/newsmania)")

	allowed, delay, err := checker.CanFetch(context.Background(), server.URL+"/world/story")
	if err != nil {
		t.Fatalf("CanFetch failed: %v", err)
	}
	if !allowed {
		t.Error("expected named agent group to allow /world/story")
	}
	if delay != 2*time.Second {
		t.Errorf("expected 2s crawl delay, got %v", delay)
	}

	allowed, _, _ = checker.CanFetch(context.Background(), server.URL+"/no-bots/page")
	if allowed {
		t.Error("expected /no-bots to be disallowed")
	}

	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Errorf("robots.txt should be cached per host, fetched %d times", n)
	}

	checker.Clear()
	_, _, _ = checker.CanFetch(context.Background(), server.URL+"/")
	if n := atomic.LoadInt32(&fetches); n != 2 {
		t.Errorf("expected refetch after Clear, fetched %d times", n)
	}
}

func TestRobotsChecker_MissingFileAllows(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "Newsmania/0.1")
	allowed, _, err := checker.CanFetch(context.Background(), server.URL+"/anything")
	if err != nil || !allowed {
		t.Errorf("missing robots.txt should allow, got %v, %v", allowed, err)
	}
}

func TestRobotsChecker_UnreachableAllows(t *testing.T) {
	checker := NewRobotsChecker(&http.Client{Timeout: time.Second}, "Newsmania/0.1")
	allowed, _, err := checker.CanFetch(context.Background(), "http://127.0.0.1:1/page")
	if err != nil || !allowed {
		t.Errorf("unreachable robots.txt should allow, got %v, %v", allowed, err)
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := map[string]string{
		"Newsmania/0.1 (+https://github.com/ppiankov/newsmania)": "Newsmania",
		"Bot":           "Bot",
		"":              "",
		"  Spaced/2.0 ": "Spaced",
	}
	for in, want := range tests {
		if got := NormalizeUserAgent(in); got != want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", in, got, want)
		}
	}
}

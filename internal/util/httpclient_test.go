package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ppiankov/newsmania/internal/model"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy:3128", "http://secure-proxy:3128", "localhost,.internal")

	tests := []struct {
		url  string
		want string
	}{
		{"http://example.com/", "http://proxy:3128"},
		{"https://example.com/", "http://secure-proxy:3128"},
		{"http://localhost:8080/", ""},
		{"https://api.internal/x", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.url, nil)
		got, err := proxy(req)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.url, err)
		}
		if tt.want == "" {
			if got != nil {
				t.Errorf("%s: expected direct connection, got %s", tt.url, got)
			}
			continue
		}
		if got == nil || got.String() != tt.want {
			t.Errorf("%s: got %v, want %s", tt.url, got, tt.want)
		}
	}
}

func TestBypassProxy(t *testing.T) {
	tests := []struct {
		host    string
		noProxy string
		want    bool
	}{
		{"example.com", "", false},
		{"example.com", "*", true},
		{"example.com", "example.com", true},
		{"news.example.com", "example.com", true},
		{"news.example.com", ".example.com", true},
		{"badexample.com", "example.com", false},
		{"EXAMPLE.com", "example.COM", true},
	}

	for _, tt := range tests {
		if got := bypassProxy(tt.host, tt.noProxy); got != tt.want {
			t.Errorf("bypassProxy(%q, %q) = %v, want %v", tt.host, tt.noProxy, got, tt.want)
		}
	}
}

func TestNewHTTPClient_RedirectLimit(t *testing.T) {
	hops := 0
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hops++
		http.Redirect(w, r, server.URL+"/next", http.StatusFound)
	}))
	defer server.Close()

	client := NewHTTPClient(model.HTTPConfig{Timeout: 5 * time.Second})
	resp, err := client.Get(server.URL)
	if err == nil {
		_ = resp.Body.Close()
		t.Fatal("expected redirect error")
	}
	if hops != maxRedirects {
		t.Errorf("expected %d hops, got %d", maxRedirects, hops)
	}
}

package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/ppiankov/newsmania/internal/model"
	"github.com/ppiankov/newsmania/internal/worker"
)

// ErrDisallowed is returned when robots.txt forbids fetching a URL
var ErrDisallowed = errors.New("disallowed by robots.txt")

const summaryLength = 200

// contentSelectors are tried in order; the first that matches anything wins
var contentSelectors = []string{"article", ".article-content", ".post-content", ".entry-content", ".content", "main"}

// StatusError is a non-2xx response from the page being extracted
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Extracted is the readable content of a web page
type Extracted struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Summary string   `json:"summary"`
	Source  string   `json:"source"`
	Date    string   `json:"date"`
	URL     string   `json:"url"`
	Claims  []string `json:"claims,omitempty"`
	Links   []Link   `json:"links,omitempty"`
}

// Article converts the extraction into an article the credibility scorer accepts
func (e *Extracted) Article() model.Article {
	return model.Article{
		ID:          e.URL,
		Source:      model.Source{Name: e.Source},
		Title:       e.Title,
		Description: e.Summary,
		URL:         e.URL,
		PublishedAt: e.Date,
		Content:     e.Content,
	}
}

// Extractor fetches pages and pulls out their main content
type Extractor struct {
	httpClient    *http.Client
	robots        *RobotsChecker
	limiter       *worker.Limiter
	userAgent     string
	maxBytes      int64
	respectRobots bool
	now           func() time.Time
}

// NewExtractor creates an extractor. A nil limiter disables rate limiting.
func NewExtractor(httpClient *http.Client, cfg model.HTTPConfig, limiter *worker.Limiter) *Extractor {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}

	return &Extractor{
		httpClient:    httpClient,
		robots:        NewRobotsChecker(httpClient, cfg.UserAgent),
		limiter:       limiter,
		userAgent:     cfg.UserAgent,
		maxBytes:      maxBytes,
		respectRobots: cfg.RespectRobots,
		now:           time.Now,
	}
}

// Extract fetches rawURL and returns its readable content
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Extracted, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("invalid URL: %q", rawURL)
	}

	if e.respectRobots {
		allowed, delay, err := e.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
		}
		if delay > 0 && e.limiter != nil {
			e.limiter.SetHostRate(parsed.Host, delay, 1)
		}
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	body, finalURL, err := e.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	return e.Parse(io.LimitReader(body, e.maxBytes), finalURL)
}

func (e *Extractor) fetch(ctx context.Context, rawURL string) (io.ReadCloser, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch: %w", err)
	}

	zap.L().Debug("fetched page",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, nil, &StatusError{StatusCode: resp.StatusCode}
	}

	return resp.Body, resp.Request.URL, nil
}

// Parse extracts readable content from an HTML document fetched from pageURL
func (e *Extractor) Parse(r io.Reader, pageURL *url.URL) (*Extracted, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	title := ""
	if n := findFirst(doc, "title"); n != nil {
		title = collapseSpace(textOf(n))
	}
	if title == "" {
		if n := findFirst(doc, "h1"); n != nil {
			title = collapseSpace(textOf(n))
		}
	}

	content := ""
	for _, selector := range contentSelectors {
		nodes := findAll(doc, selector)
		if len(nodes) == 0 {
			continue
		}
		parts := make([]string, 0, len(nodes))
		for _, n := range nodes {
			parts = append(parts, textOf(n))
		}
		content = collapseSpace(strings.Join(parts, " "))
		break
	}
	if content == "" {
		if body := findFirst(doc, "body"); body != nil {
			content = collapseSpace(textOf(body))
		}
	}

	return &Extracted{
		Title:   title,
		Content: content,
		Summary: summarize(content),
		Source:  pageURL.Hostname(),
		Date:    e.now().UTC().Format(time.RFC3339),
		URL:     pageURL.String(),
		Claims:  Claims(content),
		Links:   links(doc, pageURL),
	}, nil
}

// summarize returns the first 200 characters followed by an ellipsis
func summarize(content string) string {
	if utf8.RuneCountInString(content) <= summaryLength {
		return content + "..."
	}
	return string([]rune(content)[:summaryLength]) + "..."
}

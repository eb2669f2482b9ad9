package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/newsmania/internal/model"
	"github.com/ppiankov/newsmania/internal/worker"
)

// ErrMissingAPIKey is returned when no NewsAPI key is configured
var ErrMissingAPIKey = errors.New("news API key not configured (set NEWS_API_KEY or news.api_key)")

const (
	defaultBaseURL  = "https://newsapi.org/v2"
	defaultPageSize = 20
	maxPageSize     = 100

	noTitle       = "No title available"
	noDescription = "No description available"
	noContent     = "No content available"
	unknownAuthor = "Unknown Author"
	unknownSource = "Unknown Source"
)

// APIError is a non-OK response from the provider
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("news API error: %d", e.StatusCode)
	}
	return fmt.Sprintf("news API error: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Client talks to newsapi.org v2
type Client struct {
	httpClient *http.Client
	limiter    *worker.Limiter
	baseURL    string
	apiKey     string
	country    string
	userAgent  string
	maxBytes   int64
}

// Option configures a Client
type Option func(*Client)

// WithLimiter rate-limits requests per host
func WithLimiter(l *worker.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithBaseURL points the client at another endpoint (tests, proxies)
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithCountry sets the country used for top headlines
func WithCountry(country string) Option {
	return func(c *Client) { c.country = country }
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a client. An empty apiKey is allowed; requests then fail
// with ErrMissingAPIKey.
func NewClient(httpClient *http.Client, apiKey string, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		country:    "us",
		userAgent:  "Newsmania/1.0",
		maxBytes:   10 << 20,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rawSource struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

type rawArticle struct {
	Source      *rawSource `json:"source"`
	Author      string     `json:"author"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	URLToImage  string     `json:"urlToImage"`
	PublishedAt string     `json:"publishedAt"`
	Content     string     `json:"content"`
}

type response struct {
	Status       string       `json:"status"`
	TotalResults int          `json:"totalResults"`
	Articles     []rawArticle `json:"articles"`
	Code         string       `json:"code"`
	Message      string       `json:"message"`
}

// TopHeadlines fetches headlines for a category ("" or "all" means every category)
func (c *Client) TopHeadlines(ctx context.Context, category string, pageSize int) ([]model.Article, error) {
	params := url.Values{}
	params.Set("pageSize", strconv.Itoa(clampPageSize(pageSize)))
	params.Set("page", "1")
	if category != "" && category != "all" {
		params.Set("category", category)
	}
	if c.country != "" {
		params.Set("country", c.country)
	}

	raw, err := c.get(ctx, "/top-headlines", params)
	if err != nil {
		return nil, err
	}

	prefix := category
	if prefix == "" {
		prefix = "all"
	}
	return normalize(raw, prefix), nil
}

// Everything searches all indexed articles
func (c *Client) Everything(ctx context.Context, query string, page, pageSize int) ([]model.Article, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is required")
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(clampPageSize(pageSize)))

	raw, err := c.get(ctx, "/everything", params)
	if err != nil {
		return nil, err
	}
	return normalize(raw, "search"), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]rawArticle, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	endpoint := c.baseURL + path + "?" + params.Encode()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, endpoint); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	zap.L().Debug("news api request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	var decoded response
	decodeErr := json.Unmarshal(body, &decoded)

	if resp.StatusCode != http.StatusOK || decoded.Status == "error" {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Code = decoded.Code
			apiErr.Message = decoded.Message
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if decoded.Articles == nil {
		return nil, fmt.Errorf("invalid response format from news API")
	}

	return decoded.Articles, nil
}

// normalize fills the defaults the feed UI expects and assigns stable-per-fetch IDs
func normalize(raw []rawArticle, prefix string) []model.Article {
	batch := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	articles := make([]model.Article, 0, len(raw))
	for i, r := range raw {
		a := model.Article{
			ID:          fmt.Sprintf("%s-%d-%s", prefix, i, batch),
			Author:      orDefault(r.Author, unknownAuthor),
			Title:       orDefault(r.Title, noTitle),
			Description: orDefault(r.Description, noDescription),
			URL:         orDefault(r.URL, "#"),
			URLToImage:  r.URLToImage,
			PublishedAt: orDefault(r.PublishedAt, now),
			Content:     orDefault(r.Content, noContent),
		}
		if r.Source != nil {
			a.Source.Name = r.Source.Name
			if r.Source.ID != nil {
				a.Source.ID = *r.Source.ID
			}
		}
		if a.Source.Name == "" {
			a.Source.Name = unknownSource
		}
		articles = append(articles, a)
	}
	return articles
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func clampPageSize(n int) int {
	switch {
	case n <= 0:
		return defaultPageSize
	case n > maxPageSize:
		return maxPageSize
	default:
		return n
	}
}

package news

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/newsmania/internal/cache"
	"github.com/ppiankov/newsmania/internal/model"
)

var (
	// ErrUnknownCategory is returned for categories outside the configured list
	ErrUnknownCategory = errors.New("unknown category")

	// ErrArticleNotFound is returned when an article ID was never served
	ErrArticleNotFound = errors.New("article not found")
)

// staleFactor controls how long entries stay in the cache past their TTL,
// so a failing provider can still be answered from the last good fetch
const staleFactor = 24

// Provider fetches articles from an upstream news source
type Provider interface {
	TopHeadlines(ctx context.Context, category string, pageSize int) ([]model.Article, error)
	Everything(ctx context.Context, query string, page, pageSize int) ([]model.Article, error)
}

// Annotator attaches credibility data to an article
type Annotator interface {
	Annotate(article model.Article) model.Article
}

// Options configures a Service
type Options struct {
	Categories []string
	PageSize   int
	TTL        time.Duration
	Workers    int
}

type feedEntry struct {
	Articles  []model.Article `json:"articles"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Service serves category feeds and searches with caching and credibility annotation
type Service struct {
	provider  Provider
	annotator Annotator
	cache     cache.Cache
	opts      Options

	mu          sync.RWMutex
	lastRefresh time.Time
	byID        map[string]model.Article
	idsByFeed   map[string][]string

	now func() time.Time
}

// NewService creates a feed service. A nil cache disables caching.
func NewService(provider Provider, annotator Annotator, c cache.Cache, opts Options) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	if len(opts.Categories) == 0 {
		opts.Categories = Categories()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	return &Service{
		provider:  provider,
		annotator: annotator,
		cache:     c,
		opts:      opts,
		byID:      make(map[string]model.Article),
		idsByFeed: make(map[string][]string),
		now:       time.Now,
	}
}

// Categories returns the default topic list
func Categories() []string {
	return []string{"general", "business", "technology", "science", "health", "sports", "entertainment"}
}

// ValidCategory reports whether category is served
func (s *Service) ValidCategory(category string) bool {
	for _, c := range s.opts.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Feed returns the annotated headlines for a category, from cache while fresh.
// When the provider fails and an expired entry exists, the expired entry is served.
func (s *Service) Feed(ctx context.Context, category string) ([]model.Article, error) {
	if !s.ValidCategory(category) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}

	key := cache.Key("feed", category)

	var entry feedEntry
	cached := cache.GetJSON(s.cache, key, &entry)
	if cached && s.now().Sub(entry.FetchedAt) < s.opts.TTL {
		s.index(category, entry.Articles)
		return entry.Articles, nil
	}

	articles, err := s.fetch(ctx, category)
	if err != nil {
		if cached {
			zap.L().Warn("serving stale feed",
				zap.String("category", category),
				zap.Time("fetched_at", entry.FetchedAt),
				zap.Error(err))
			s.index(category, entry.Articles)
			return entry.Articles, nil
		}
		return nil, err
	}

	return articles, nil
}

// Refresh re-fetches every category, bypassing the cache.
// Categories are fetched concurrently, bounded by the configured worker count.
func (s *Service) Refresh(ctx context.Context) error {
	// a failing category must not cancel the others
	var g errgroup.Group
	g.SetLimit(s.opts.Workers)

	for _, category := range s.opts.Categories {
		g.Go(func() error {
			if _, err := s.fetch(ctx, category); err != nil {
				return fmt.Errorf("refresh %s: %w", category, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("refresh failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.lastRefresh = s.now()
	s.mu.Unlock()

	zap.L().Info("news refreshed", zap.Int("categories", len(s.opts.Categories)))
	return nil
}

// LastRefresh returns the time of the last successful full refresh
func (s *Service) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}

// Search runs an uncached full-text search and annotates the results
func (s *Service) Search(ctx context.Context, query string, page, pageSize int) ([]model.Article, error) {
	if pageSize <= 0 {
		pageSize = s.opts.PageSize
	}

	raw, err := s.provider.Everything(ctx, query, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	articles := s.annotate(raw)
	s.index("search", articles)
	return articles, nil
}

// Article returns a previously served article by ID
func (s *Service) Article(ctx context.Context, id string) (model.Article, error) {
	s.mu.RLock()
	a, ok := s.byID[id]
	s.mu.RUnlock()
	if ok {
		return a, nil
	}

	// IDs start with their category; a cold cache can still answer
	category, _, _ := strings.Cut(id, "-")
	if s.ValidCategory(category) {
		articles, err := s.Feed(ctx, category)
		if err == nil {
			for _, a := range articles {
				if a.ID == id {
					return a, nil
				}
			}
		}
	}

	return model.Article{}, fmt.Errorf("%w: %s", ErrArticleNotFound, id)
}

func (s *Service) fetch(ctx context.Context, category string) ([]model.Article, error) {
	raw, err := s.provider.TopHeadlines(ctx, category, s.opts.PageSize)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", category, err)
	}

	articles := s.annotate(raw)
	entry := feedEntry{Articles: articles, FetchedAt: s.now()}
	if err := cache.SetJSON(s.cache, cache.Key("feed", category), entry, s.opts.TTL*staleFactor); err != nil {
		zap.L().Warn("cache write failed", zap.String("category", category), zap.Error(err))
	}

	s.index(category, articles)
	return articles, nil
}

func (s *Service) annotate(raw []model.Article) []model.Article {
	if s.annotator == nil {
		return raw
	}
	out := make([]model.Article, len(raw))
	for i, a := range raw {
		out[i] = s.annotator.Annotate(a)
	}
	return out
}

// index replaces the articles remembered for one feed
func (s *Service) index(feed string, articles []model.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.idsByFeed[feed] {
		delete(s.byID, id)
	}
	ids := make([]string, 0, len(articles))
	for _, a := range articles {
		s.byID[a.ID] = a
		ids = append(ids, a.ID)
	}
	s.idsByFeed[feed] = ids
}

// Filter drops articles from sources the user excluded
func Filter(articles []model.Article, prefs model.UserPreferences) []model.Article {
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if !prefs.Excludes(a.Source.Name) {
			out = append(out, a)
		}
	}
	return out
}

package news

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/newsmania/internal/cache"
	"github.com/ppiankov/newsmania/internal/model"
)

type fakeProvider struct {
	mu       sync.Mutex
	calls    map[string]int
	fail     map[string]error
	inFlight int32
	peak     int32
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{calls: make(map[string]int), fail: make(map[string]error)}
}

func (p *fakeProvider) TopHeadlines(ctx context.Context, category string, pageSize int) ([]model.Article, error) {
	n := atomic.AddInt32(&p.inFlight, 1)
	defer atomic.AddInt32(&p.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&p.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&p.peak, peak, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	p.mu.Lock()
	p.calls[category]++
	call := p.calls[category]
	err := p.fail[category]
	p.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return []model.Article{
		{ID: fmt.Sprintf("%s-0-b%d", category, call), Title: category + " headline", Source: model.Source{Name: "Reuters"}},
		{ID: fmt.Sprintf("%s-1-b%d", category, call), Title: category + " story", Source: model.Source{Name: "Daily Mail"}},
	}, nil
}

func (p *fakeProvider) Everything(ctx context.Context, query string, page, pageSize int) ([]model.Article, error) {
	if query == "boom" {
		return nil, errors.New("upstream down")
	}
	return []model.Article{{ID: "search-0-x", Title: query, Source: model.Source{Name: "BBC News"}}}, nil
}

func (p *fakeProvider) callCount(category string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[category]
}

func (p *fakeProvider) setFail(category string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail[category] = err
}

type fixedAnnotator struct{ score int }

func (a fixedAnnotator) Annotate(article model.Article) model.Article {
	s := a.score
	article.CredibilityScore = &s
	article.IsFactChecked = true
	return article
}

func newTestService(p Provider, opts Options) *Service {
	return NewService(p, fixedAnnotator{score: 77}, cache.NewMemoryCache(time.Hour, time.Minute), opts)
}

func TestService_Feed_CachesAndAnnotates(t *testing.T) {
	p := newFakeProvider()
	s := newTestService(p, Options{})

	first, err := s.Feed(context.Background(), "science")
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(first))
	}
	if first[0].CredibilityScore == nil || *first[0].CredibilityScore != 77 || !first[0].IsFactChecked {
		t.Errorf("article not annotated: %+v", first[0])
	}

	second, err := s.Feed(context.Background(), "science")
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if p.callCount("science") != 1 {
		t.Errorf("expected cached second call, provider called %d times", p.callCount("science"))
	}
	if second[0].ID != first[0].ID {
		t.Errorf("cached feed differs: %s vs %s", second[0].ID, first[0].ID)
	}
}

func TestService_Feed_ExpiresAfterTTL(t *testing.T) {
	p := newFakeProvider()
	s := newTestService(p, Options{TTL: time.Minute})

	now := time.Now()
	s.now = func() time.Time { return now }

	if _, err := s.Feed(context.Background(), "health"); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := s.Feed(context.Background(), "health"); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if p.callCount("health") != 2 {
		t.Errorf("expected refetch after TTL, got %d calls", p.callCount("health"))
	}
}

func TestService_Feed_ServesStaleOnError(t *testing.T) {
	p := newFakeProvider()
	s := newTestService(p, Options{TTL: time.Minute})

	now := time.Now()
	s.now = func() time.Time { return now }

	fresh, err := s.Feed(context.Background(), "sports")
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}

	now = now.Add(10 * time.Minute)
	p.setFail("sports", errors.New("426 upgrade required"))

	stale, err := s.Feed(context.Background(), "sports")
	if err != nil {
		t.Fatalf("expected stale feed, got error: %v", err)
	}
	if stale[0].ID != fresh[0].ID {
		t.Errorf("expected stale articles, got %s", stale[0].ID)
	}
}

func TestService_Feed_ErrorWithoutCache(t *testing.T) {
	p := newFakeProvider()
	p.setFail("business", errors.New("down"))
	s := newTestService(p, Options{})

	if _, err := s.Feed(context.Background(), "business"); err == nil {
		t.Error("expected error with no cached entry")
	}
}

func TestService_Feed_UnknownCategory(t *testing.T) {
	s := newTestService(newFakeProvider(), Options{})

	_, err := s.Feed(context.Background(), "astrology")
	if !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestService_Refresh(t *testing.T) {
	p := newFakeProvider()
	s := newTestService(p, Options{Workers: 2})

	if !s.LastRefresh().IsZero() {
		t.Error("expected zero last refresh before first refresh")
	}

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	for _, c := range Categories() {
		if p.callCount(c) != 1 {
			t.Errorf("category %s fetched %d times", c, p.callCount(c))
		}
	}
	if atomic.LoadInt32(&p.peak) > 2 {
		t.Errorf("expected at most 2 concurrent fetches, saw %d", p.peak)
	}
	if s.LastRefresh().IsZero() {
		t.Error("expected last refresh to be recorded")
	}

	// a refresh bypasses fresh cache entries
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if p.callCount("general") != 2 {
		t.Errorf("expected refresh to refetch, got %d calls", p.callCount("general"))
	}
}

func TestService_Refresh_PartialFailure(t *testing.T) {
	p := newFakeProvider()
	p.setFail("science", errors.New("down"))
	s := newTestService(p, Options{Workers: 3})

	if err := s.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if !s.LastRefresh().IsZero() {
		t.Error("failed refresh should not be recorded")
	}
	if p.callCount("technology") != 1 {
		t.Error("other categories should still be fetched")
	}
}

func TestService_Search(t *testing.T) {
	s := newTestService(newFakeProvider(), Options{})

	articles, err := s.Search(context.Background(), "climate", 1, 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(articles) != 1 || articles[0].CredibilityScore == nil {
		t.Errorf("unexpected search results: %+v", articles)
	}

	if _, err := s.Search(context.Background(), "boom", 1, 10); err == nil {
		t.Error("expected provider error to surface")
	}
}

func TestService_Article(t *testing.T) {
	p := newFakeProvider()
	s := newTestService(p, Options{})

	if _, err := s.Search(context.Background(), "climate", 1, 10); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	got, err := s.Article(context.Background(), "search-0-x")
	if err != nil {
		t.Fatalf("Article failed: %v", err)
	}
	if got.Title != "climate" {
		t.Errorf("unexpected article: %+v", got)
	}

	// cold lookup falls back to the category feed
	got, err = s.Article(context.Background(), "technology-1-b1")
	if err != nil {
		t.Fatalf("Article cold lookup failed: %v", err)
	}
	if got.Title != "technology story" {
		t.Errorf("unexpected article: %+v", got)
	}

	if _, err := s.Article(context.Background(), "nothing-here"); !errors.Is(err, ErrArticleNotFound) {
		t.Errorf("expected ErrArticleNotFound, got %v", err)
	}
}

func TestService_Article_ForgetsReplacedFeed(t *testing.T) {
	p := newFakeProvider()
	s := newTestService(p, Options{})

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if _, err := s.Article(context.Background(), "general-0-b2"); err != nil {
		t.Errorf("current article should resolve: %v", err)
	}
	if _, err := s.Article(context.Background(), "general-0-b1"); !errors.Is(err, ErrArticleNotFound) {
		t.Errorf("replaced article should be gone, got %v", err)
	}
}

func TestFilter(t *testing.T) {
	articles := []model.Article{
		{Title: "a", Source: model.Source{Name: "Reuters"}},
		{Title: "b", Source: model.Source{Name: "Daily Mail"}},
	}
	prefs := model.DefaultPreferences()
	prefs.ExcludedSources = []string{"Daily Mail"}

	got := Filter(articles, prefs)
	if len(got) != 1 || got[0].Title != "a" {
		t.Errorf("unexpected filter result: %+v", got)
	}
}

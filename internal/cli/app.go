package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/ppiankov/newsmania/internal/cache"
	"github.com/ppiankov/newsmania/internal/config"
	"github.com/ppiankov/newsmania/internal/credibility"
	"github.com/ppiankov/newsmania/internal/extract"
	"github.com/ppiankov/newsmania/internal/feed"
	"github.com/ppiankov/newsmania/internal/llm"
	"github.com/ppiankov/newsmania/internal/model"
	"github.com/ppiankov/newsmania/internal/news"
	"github.com/ppiankov/newsmania/internal/newsapi"
	"github.com/ppiankov/newsmania/internal/util"
	"github.com/ppiankov/newsmania/internal/worker"
)

// app holds the services commands are built from
type app struct {
	http    *http.Client
	limiter *worker.Limiter
	scorer  *credibility.Scorer
}

func newApp() (*app, error) {
	table, err := config.TrustTable(cfg.Credibility)
	if err != nil {
		return nil, err
	}
	return &app{
		http:    util.NewHTTPClient(cfg.HTTP),
		limiter: worker.NewLimiter(cfg.Concurrency.RequestsPerSec, cfg.Concurrency.Burst),
		scorer:  credibility.NewScorer(table),
	}, nil
}

func (a *app) newsService() *news.Service {
	provider := newsapi.NewClient(a.http, cfg.News.APIKey,
		newsapi.WithLimiter(a.limiter),
		newsapi.WithBaseURL(cfg.News.BaseURL),
		newsapi.WithCountry(cfg.News.Country),
		newsapi.WithUserAgent(cfg.HTTP.UserAgent),
	)
	c := cache.New(cfg.Cache.Enabled, cfg.Cache.MemoryTTL, cfg.Cache.DiskDir, cfg.Cache.DiskTTL)

	return news.NewService(provider, a.scorer, c, news.Options{
		Categories: cfg.News.Categories,
		PageSize:   cfg.News.PageSize,
		TTL:        cfg.News.RefreshTTL,
		Workers:    cfg.Concurrency.RefreshWorkers,
	})
}

func (a *app) extractor() *extract.Extractor {
	return extract.NewExtractor(a.http, cfg.HTTP, a.limiter)
}

func (a *app) feedParser() *feed.Parser {
	return feed.NewParser(a.http, cfg.HTTP, a.limiter)
}

// assistant returns an assistant; with no provider configured it only produces fallback text
func (a *app) assistant() (*llm.Assistant, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}
	return llm.NewAssistant(provider), nil
}

func (a *app) batchScorer(concurrency int) *worker.BatchScorer {
	if concurrency <= 0 {
		concurrency = cfg.Concurrency.BatchWorkers
	}
	return worker.NewBatchScorer(a.scorer, concurrency)
}

// openInput opens path for reading; "" and "-" mean stdin
func openInput(cmd interface{ InOrStdin() io.Reader }, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// writeJSON writes v as indented JSON to path, or to w when path is "" or "-"
func writeJSON(w io.Writer, path string, v any) (err error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	data = append(data, '\n')

	if path == "" || path == "-" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func verdictMark(v model.Verdict) string {
	switch v {
	case model.VerdictTrue:
		return "✓"
	case model.VerdictFalse:
		return "✗"
	case model.VerdictPartiallyTrue:
		return "~"
	default:
		return "?"
	}
}

func scoreText(score *int) string {
	if score == nil {
		return "  -"
	}
	return fmt.Sprintf("%3d", *score)
}

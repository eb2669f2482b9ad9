package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/newsmania/internal/model"
)

// Scorer scores one article
type Scorer interface {
	Score(article model.Article) model.CredibilityVerdict
}

// BatchResult is the outcome for one article of a batch
type BatchResult struct {
	Line    int                       `json:"line,omitempty"` // 1-based input line, 0 for in-memory batches
	Article model.Article             `json:"article"`
	Verdict *model.CredibilityVerdict `json:"verdict,omitempty"`
	Error   string                    `json:"error,omitempty"`
}

// BatchScorer scores many articles concurrently
type BatchScorer struct {
	scorer      Scorer
	concurrency int
}

// NewBatchScorer creates a batch scorer
func NewBatchScorer(scorer Scorer, concurrency int) *BatchScorer {
	return &BatchScorer{
		scorer:      scorer,
		concurrency: concurrency,
	}
}

// ScoreArticles scores articles concurrently; results keep input order
func (b *BatchScorer) ScoreArticles(ctx context.Context, articles []model.Article) []BatchResult {
	jobs := make([]Job[BatchResult], len(articles))
	for i, a := range articles {
		article := a
		jobs[i] = JobFunc[BatchResult](func(ctx context.Context) BatchResult {
			v := b.scorer.Score(article)
			return BatchResult{Article: article, Verdict: &v}
		})
	}

	results, ok := NewPool[BatchResult](b.concurrency).Run(ctx, jobs)
	for i := range results {
		if !ok[i] {
			results[i] = BatchResult{Article: articles[i], Error: "cancelled"}
		}
	}
	return results
}

// ScoreFile reads JSON-lines articles from path ("-" for stdin) and scores them.
// Lines that fail to decode are reported in place without stopping the batch.
func (b *BatchScorer) ScoreFile(ctx context.Context, path string) ([]BatchResult, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	return b.ScoreReader(ctx, r)
}

// ScoreReader is ScoreFile over an arbitrary reader
func (b *BatchScorer) ScoreReader(ctx context.Context, r io.Reader) ([]BatchResult, error) {
	var (
		articles []model.Article
		lines    []int
		results  []BatchResult
		failed   = make(map[int]BatchResult)
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var a model.Article
		if err := json.Unmarshal([]byte(line), &a); err != nil {
			failed[lineNo] = BatchResult{Line: lineNo, Error: fmt.Sprintf("decode article: %v", err)}
			lines = append(lines, lineNo)
			continue
		}
		articles = append(articles, a)
		lines = append(lines, lineNo)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}

	scored := b.ScoreArticles(ctx, articles)

	next := 0
	for _, n := range lines {
		if f, bad := failed[n]; bad {
			results = append(results, f)
			continue
		}
		res := scored[next]
		res.Line = n
		results = append(results, res)
		next++
	}

	return results, nil
}

package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ppiankov/newsmania/internal/credibility"
	"github.com/ppiankov/newsmania/internal/extract"
	"github.com/ppiankov/newsmania/internal/llm"
	"github.com/ppiankov/newsmania/internal/model"
	"github.com/ppiankov/newsmania/internal/news"
	"github.com/ppiankov/newsmania/internal/newsapi"
)

const technicalIssue = "We encountered a technical issue while %s. This might be due to temporary service limitations. Please try again in a few moments."

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- credibility ---

func (s *Server) handleCredibility(w http.ResponseWriter, r *http.Request) {
	if s.deps.Scorer == nil {
		unavailable(w, "credibility scoring")
		return
	}
	var article model.Article
	if err := decodeJSON(r, &article); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Scorer.Score(article))
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	if s.deps.Claims == nil {
		unavailable(w, "claim checking")
		return
	}
	var req struct {
		Claim string `json:"claim"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	check, err := s.deps.Claims.CheckClaim(r.Context(), req.Claim)
	if errors.Is(err, credibility.ErrEmptyClaim) {
		writeError(w, http.StatusBadRequest, "Claim is required")
		return
	}
	if err != nil {
		zap.L().Error("claim check failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to check claim")
		return
	}
	writeJSON(w, http.StatusOK, check)
}

// --- news ---

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if s.deps.News == nil {
		unavailable(w, "news")
		return
	}
	category := chi.URLParam(r, "category")

	articles, err := s.deps.News.Feed(r.Context(), category)
	if errors.Is(err, news.ErrUnknownCategory) {
		writeError(w, http.StatusNotFound, "Unknown category: "+category)
		return
	}
	if err != nil {
		zap.L().Error("feed failed", zap.String("category", category), zap.Error(err))
		writeError(w, http.StatusBadGateway, "Failed to fetch news")
		return
	}

	if exclude := r.URL.Query().Get("exclude"); exclude != "" {
		articles = news.Filter(articles, model.UserPreferences{ExcludedSources: splitList(exclude)})
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.deps.News == nil {
		unavailable(w, "news")
		return
	}
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter is required")
		return
	}
	page := intParam(q.Get("page"), 1)
	pageSize := intParam(q.Get("pageSize"), 20)

	articles, err := s.deps.News.Search(r.Context(), query, page, pageSize)
	if err != nil {
		var apiErr *newsapi.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 {
			writeError(w, apiErr.StatusCode, "News API error")
			return
		}
		zap.L().Error("search failed", zap.String("query", query), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to search news")
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	if s.deps.News == nil {
		unavailable(w, "news")
		return
	}
	id := chi.URLParam(r, "id")

	article, err := s.deps.News.Article(r.Context(), id)
	if errors.Is(err, news.ErrArticleNotFound) {
		writeError(w, http.StatusNotFound, "Article not found")
		return
	}
	if err != nil {
		zap.L().Error("article lookup failed", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusBadGateway, "Failed to fetch article")
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.deps.News == nil {
		unavailable(w, "news")
		return
	}
	if err := s.deps.News.Refresh(r.Context()); err != nil {
		zap.L().Error("refresh failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to refresh news cache")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "News cache refreshed successfully",
	})
}

func (s *Server) handleLastRefresh(w http.ResponseWriter, _ *http.Request) {
	if s.deps.News == nil {
		unavailable(w, "news")
		return
	}
	body := map[string]any{"lastRefresh": nil}
	if last := s.deps.News.LastRefresh(); !last.IsZero() {
		body["lastRefresh"] = last.UTC()
	}
	writeJSON(w, http.StatusOK, body)
}

// --- assistant ---

type articleQuestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Question    string `json:"question"`
}

func (q articleQuestion) article() model.Article {
	return model.Article{Title: q.Title, Description: q.Description, Content: q.Content}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	s.assist(w, r, "response", "processing your question", func(req articleQuestion) (string, error) {
		return s.deps.Assistant.Answer(r.Context(), req.article(), req.Question)
	})
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	s.assist(w, r, "context", "analyzing this article", func(req articleQuestion) (string, error) {
		return s.deps.Assistant.Context(r.Context(), req.article())
	})
}

// assist runs an assistant call and replies under field. Unexpected failures
// reply 200 with an apology so clients always have text to show.
func (s *Server) assist(w http.ResponseWriter, r *http.Request, field, doing string, call func(articleQuestion) (string, error)) {
	apology := map[string]string{field: fmt.Sprintf(technicalIssue, doing)}
	if s.deps.Assistant == nil {
		writeJSON(w, http.StatusOK, apology)
		return
	}

	var req articleQuestion
	if err := decodeJSON(r, &req); err != nil {
		zap.L().Warn("assistant request rejected", zap.String("field", field), zap.Error(err))
		writeJSON(w, http.StatusOK, apology)
		return
	}

	text, err := call(req)
	var invalid *llm.InvalidInputError
	if errors.As(err, &invalid) {
		writeJSON(w, http.StatusBadRequest, map[string]string{field: invalid.Message})
		return
	}
	if err != nil {
		zap.L().Error("assistant failed", zap.String("field", field), zap.Error(err))
		writeJSON(w, http.StatusOK, apology)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{field: text})
}

// --- extraction ---

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if s.deps.Extractor == nil {
		unavailable(w, "extraction")
		return
	}
	target := r.URL.Query().Get("url")
	if target == "" {
		writeError(w, http.StatusBadRequest, "URL parameter is required")
		return
	}

	page, err := s.deps.Extractor.Extract(r.Context(), target)
	if err != nil {
		var statusErr *extract.StatusError
		switch {
		case errors.As(err, &statusErr):
			writeError(w, statusErr.StatusCode, "Failed to fetch URL")
		case errors.Is(err, extract.ErrDisallowed):
			writeError(w, http.StatusForbidden, "Fetching this URL is disallowed by robots.txt")
		default:
			zap.L().Error("extract failed", zap.String("url", target), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to extract content")
		}
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	if s.deps.Feeds == nil {
		unavailable(w, "feed parsing")
		return
	}
	target := r.URL.Query().Get("url")
	if target == "" {
		writeError(w, http.StatusBadRequest, "URL parameter is required")
		return
	}

	parsed, err := s.deps.Feeds.ParseURL(r.Context(), target)
	if err != nil {
		zap.L().Error("rss failed", zap.String("url", target), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to parse RSS feed")
		return
	}
	writeJSON(w, http.StatusOK, parsed)
}

func intParam(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ppiankov/newsmania/internal/extract"
	"github.com/ppiankov/newsmania/internal/feed"
	"github.com/ppiankov/newsmania/internal/model"
	"github.com/ppiankov/newsmania/internal/notes"
)

// NewsService serves category feeds and search
type NewsService interface {
	Feed(ctx context.Context, category string) ([]model.Article, error)
	Refresh(ctx context.Context) error
	LastRefresh() time.Time
	Search(ctx context.Context, query string, page, pageSize int) ([]model.Article, error)
	Article(ctx context.Context, id string) (model.Article, error)
}

// Scorer rates article credibility
type Scorer interface {
	Score(article model.Article) model.CredibilityVerdict
}

// ClaimChecker checks a single free-text claim
type ClaimChecker interface {
	CheckClaim(ctx context.Context, claim string) (model.ClaimCheck, error)
}

// Assistant answers questions about articles
type Assistant interface {
	Answer(ctx context.Context, article model.Article, question string) (string, error)
	Context(ctx context.Context, article model.Article) (string, error)
}

// Extractor pulls readable content from a web page
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (*extract.Extracted, error)
}

// FeedParser fetches and parses RSS/Atom feeds
type FeedParser interface {
	ParseURL(ctx context.Context, rawURL string) (*feed.Feed, error)
}

// Deps are the services behind the API. Nil members disable their routes (503).
type Deps struct {
	News      NewsService
	Scorer    Scorer
	Claims    ClaimChecker
	Assistant Assistant
	Extractor Extractor
	Feeds     FeedParser
	Notes     notes.Store
}

// Server is the newsmania HTTP API
type Server struct {
	cfg    model.ServerConfig
	deps   Deps
	router chi.Router
}

// New builds the router
func New(cfg model.ServerConfig, deps Deps) *Server {
	s := &Server{cfg: cfg, deps: deps}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", userHeader},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/credibility", s.handleCredibility)
		r.Post("/fact-check/claim", s.handleClaim)

		r.Get("/news/{category}", s.handleFeed)
		r.Get("/search", s.handleSearch)
		r.Get("/articles/{id}", s.handleArticle)
		r.Get("/refresh", s.handleRefresh)
		r.Get("/last-refresh", s.handleLastRefresh)

		r.Post("/news-chat", s.handleChat)
		r.Post("/news-context", s.handleContext)

		r.Get("/extract", s.handleExtract)
		r.Get("/rss", s.handleRSS)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Get("/notes", s.handleListNotes)
			r.Post("/notes", s.handleCreateNote)
			r.Get("/notes/{id}", s.handleGetNote)
			r.Put("/notes/{id}", s.handleUpdateNote)
			r.Delete("/notes/{id}", s.handleDeleteNote)

			r.Get("/folders", s.handleListFolders)
			r.Post("/folders", s.handleCreateFolder)
			r.Post("/folders/{id}/notes", s.handleAddToFolder)
		})
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- eris.Wrap(err, "server listen")
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	zap.L().Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server shutdown")
	}
	return <-errCh
}

// requestLogger logs one line per request through the global zap logger
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

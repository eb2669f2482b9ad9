package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/newsmania/internal/credibility"
	"github.com/ppiankov/newsmania/internal/news"
	"github.com/ppiankov/newsmania/internal/notes"
	"github.com/ppiankov/newsmania/internal/server"
)

var (
	serveAddr    string
	refreshEvery time.Duration
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve starts the JSON API used by the web client: category feeds, search,
credibility scoring, article Q&A, extraction, RSS parsing and notes.

Example:
  newsmania serve
  newsmania serve --addr :9000 --refresh-every 30m`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().DurationVar(&refreshEvery, "refresh-every", 0, "refresh all categories on this interval (0 disables)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	assistant, err := a.assistant()
	if err != nil {
		return err
	}
	if !assistant.Enabled() {
		zap.L().Warn("no LLM provider configured; chat and context return fallback text")
	}

	store, err := notes.New(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	svc := a.newsService()
	if refreshEvery > 0 {
		go refreshLoop(ctx, svc, refreshEvery)
	}

	serverCfg := cfg.Server
	if serveAddr != "" {
		serverCfg.Addr = serveAddr
	}

	srv := server.New(serverCfg, server.Deps{
		News:      svc,
		Scorer:    a.scorer,
		Claims:    credibility.NewLexicalClaimChecker(),
		Assistant: assistant,
		Extractor: a.extractor(),
		Feeds:     a.feedParser(),
		Notes:     store,
	})
	return srv.ListenAndServe(ctx)
}

// refreshLoop refreshes every category on a fixed interval until ctx ends
func refreshLoop(ctx context.Context, svc *news.Service, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		if err := svc.Refresh(ctx); err != nil {
			zap.L().Warn("scheduled refresh failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

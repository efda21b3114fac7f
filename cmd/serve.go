package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/kitedash/internal/config"
	httpapi "github.com/nextlevelbuilder/kitedash/internal/http"
	"github.com/nextlevelbuilder/kitedash/internal/orders"
	"github.com/nextlevelbuilder/kitedash/internal/sessions"
	"github.com/nextlevelbuilder/kitedash/internal/store"
	"github.com/nextlevelbuilder/kitedash/internal/store/pg"
	"github.com/nextlevelbuilder/kitedash/internal/store/sqlite"
	"github.com/nextlevelbuilder/kitedash/internal/watch"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setupLogging(cfg.Log)

	shutdownOTel := initOTel(ctx, cfg)
	defer shutdownOTel()

	journal := openJournal(ctx, cfg.Database)
	if journal != nil {
		defer journal.Close()
	}

	mgr := sessions.NewManager(sessions.Config{
		Endpoint:    cfg.Server.URL,
		TimeoutSec:  cfg.Server.TimeoutSec,
		MaxSessions: cfg.Sessions.MaxSessions,
		TTL:         time.Duration(cfg.Sessions.TTLMinutes) * time.Minute,
	})
	limiter := orders.NewLimiter(cfg.Orders.MaxPerHour)

	api := httpapi.NewServer(httpapi.Options{
		Sessions:       mgr,
		Journal:        journal,
		OrderLimiter:   limiter,
		Token:          cfg.HTTP.Token,
		RateLimitRPM:   cfg.HTTP.RateLimitRPM,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
		WatchInterval:  watch.ClampInterval(time.Duration(cfg.Watch.IntervalSec) * time.Second),
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Version:        Version,
	})

	if stop := watchConfig(cfgPath, mgr, api); stop != nil {
		defer stop()
	}

	handler := api.Handler()
	if stopTS := initTailscale(ctx, cfg, handler); stopTS != nil {
		defer stopTS()
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("kitedash.listening", "addr", cfg.HTTP.Listen, "server_url", cfg.Server.URL, "auth", cfg.HTTP.Token != "")
		errCh <- srv.ListenAndServe()
	}()

	go pruneLimiter(ctx, limiter)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("kitedash.shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := api.Shutdown(shutdownCtx); err != nil {
		slog.Warn("kitedash.watch_shutdown", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openJournal picks Postgres when a DSN is configured, SQLite otherwise.
// The journal is optional: on failure the server runs without one.
func openJournal(ctx context.Context, cfg config.DatabaseConfig) store.OrderJournal {
	if cfg.PostgresDSN != "" {
		var j *store.SQLJournal
		attempts, err := store.Retry(ctx, store.DefaultRetryConfig(), func(ctx context.Context) error {
			var err error
			j, err = pg.Open(ctx, cfg.PostgresDSN)
			return err
		})
		if err != nil {
			slog.Warn("journal.unavailable", "driver", "postgres", "attempts", attempts, "error", err)
			return nil
		}
		return j
	}
	if cfg.SQLitePath == "" {
		return nil
	}
	j, err := sqlite.Open(config.ExpandHome(cfg.SQLitePath))
	if err != nil {
		slog.Warn("journal.unavailable", "driver", "sqlite", "error", err)
		return nil
	}
	return j
}

// watchConfig applies endpoint, token and log level edits without a restart.
// Other settings need a restart.
func watchConfig(path string, mgr *sessions.Manager, api *httpapi.Server) func() {
	if _, err := os.Stat(path); err != nil {
		slog.Debug("config.watch_skipped", "path", path, "reason", "file not found")
		return nil
	}
	w, err := config.NewWatcher(path)
	if err != nil {
		slog.Warn("config.watch_unavailable", "error", err)
		return nil
	}
	w.OnChange(func(cfg *config.Config) {
		mgr.SetEndpoint(cfg.Server.URL)
		api.SetToken(cfg.HTTP.Token)
		applyLogLevel(cfg.Log.Level)
	})
	if err := w.Start(); err != nil {
		slog.Warn("config.watch_unavailable", "error", err)
		return nil
	}
	return w.Stop
}

func pruneLimiter(ctx context.Context, l *orders.Limiter) {
	if l == nil {
		return
	}
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}

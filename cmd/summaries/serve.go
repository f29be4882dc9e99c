package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/stream-summaries/internal/api"
	"github.com/andresuchdata/stream-summaries/internal/cache"
	"github.com/andresuchdata/stream-summaries/internal/indexer"
	"github.com/andresuchdata/stream-summaries/internal/publish"
	"github.com/andresuchdata/stream-summaries/internal/scheduler"
	"github.com/andresuchdata/stream-summaries/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the published catalog over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "port",
				Usage: "Listen port (overrides SERVER_PORT)",
			},
		},
		Before: initApp,
		After:  closeApp,
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	a := appFrom(c)
	cfg := a.cfg
	if c.IsSet("port") {
		cfg.Server.Port = c.String("port")
	}

	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	catalogCache, err := cache.NewCatalogCache(cfg.Cache)
	if err != nil {
		a.log.Warn().Err(err).Msg("catalog cache disabled")
		catalogCache = cache.NewNoopCatalogCache()
	}
	defer catalogCache.Close()

	summaries := service.NewSummaryService(a.store, catalogCache, cfg.Summaries.Prefix)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Schedule.IndexCron != "" {
		refresher := scheduler.NewRefresher(
			indexer.New(a.store, a.indexerOptions(), a.log),
			publish.New(a.store, cfg.Summaries.Prefix, cfg.Summaries.Locale, a.log),
			summaries,
			a.runs,
			cfg.Summaries.Locale,
			a.log,
		)
		if err := refresher.Start(ctx, cfg.Schedule.IndexCron); err != nil {
			return cli.Exit(err.Error(), 1)
		}
		defer refresher.Stop()
	}

	router := api.NewRouter(&api.Services{SummaryService: summaries}, api.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Payment:        cfg.Payment,
		DefaultLocale:  cfg.Summaries.Locale,
		Logger:         a.log,
	})
	srv := api.NewServer(router, cfg.Server)

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return cli.Exit("failed to start server: "+err.Error(), 1)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return cli.Exit("server forced to shutdown: "+err.Error(), 1)
	}

	a.log.Info().Msg("Server exiting")
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andresuchdata/stream-summaries/internal/config"
	"github.com/andresuchdata/stream-summaries/internal/indexer"
	"github.com/andresuchdata/stream-summaries/internal/repository"
	"github.com/andresuchdata/stream-summaries/internal/repository/postgres"
	"github.com/andresuchdata/stream-summaries/internal/service"
	"github.com/andresuchdata/stream-summaries/internal/storage"
	"github.com/andresuchdata/stream-summaries/internal/types"
	"github.com/andresuchdata/stream-summaries/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

// app is the environment shared by every command.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store storage.ObjectStorage
	runs  *service.RunService
	db    *postgres.DB
	// ledger is set when runs are persisted rather than discarded.
	ledger bool
}

func (a *app) indexerOptions() indexer.Options {
	return indexer.Options{
		Prefix: a.cfg.Summaries.Prefix,
		Locale: a.cfg.Summaries.Locale,
		Fields: indexer.FieldOptions{
			TitleFields:         a.cfg.Summaries.TitleFields,
			DurationFields:      a.cfg.Summaries.DurationFields,
			ThumbnailField:      a.cfg.Summaries.ThumbnailField,
			TitlePlaceholder:    a.cfg.Summaries.TitlePlaceholder,
			DurationPlaceholder: a.cfg.Summaries.DurationPlaceholder,
		},
	}
}

func initApp(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid configuration: %v", err), 1)
	}
	if c.IsSet("locale") {
		locale, err := config.ParseLocale(c.String("locale"))
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		cfg.Summaries.Locale = locale
	}
	if c.IsSet("bucket") {
		cfg.Storage.Bucket = c.String("bucket")
	}

	log := logger.Init(cfg.Log.Level, cfg.Log.Format)

	store, err := storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
		PathStyle: cfg.Storage.PathStyle,
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to create storage client: %v", err), 1)
	}

	a := &app{cfg: cfg, log: log, store: store}
	a.runs, a.db = openLedger(c.Context, cfg, log)
	a.ledger = a.db != nil

	c.Context = context.WithValue(c.Context, types.AppKey, a)
	return nil
}

// openLedger connects the run ledger when a database is configured. Any
// failure leaves the ledger disabled.
func openLedger(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*service.RunService, *postgres.DB) {
	if cfg.Database.URL == "" {
		return service.NewRunService(repository.NewNoopRunRepository()), nil
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Warn().Err(err).Msg("run ledger disabled")
		return service.NewRunService(nil), nil
	}
	if err := db.EnsureSchema(ctx); err != nil {
		log.Warn().Err(err).Msg("run ledger disabled")
		_ = db.Close()
		return service.NewRunService(nil), nil
	}
	return service.NewRunService(postgres.NewRunRepository(db)), db
}

func closeApp(c *cli.Context) error {
	if a, ok := c.Context.Value(types.AppKey).(*app); ok && a != nil && a.db != nil {
		return a.db.Close()
	}
	return nil
}

func appFrom(c *cli.Context) *app {
	return c.Context.Value(types.AppKey).(*app)
}

func main() {
	cliApp := &cli.App{
		Name:  "summaries",
		Usage: "Maintain the stream summaries catalog and restore summary versions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "locale",
				Usage: "Summary locale (overrides SUMMARIES_LOCALE)",
			},
			&cli.StringFlag{
				Name:  "bucket",
				Usage: "Bucket holding the summaries (overrides S3_BUCKET)",
			},
		},
		Commands: []*cli.Command{
			indexCommand(),
			publishCommand(),
			restoreCommand(),
			restoreHistoryCommand(),
			serveCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		logger.Log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

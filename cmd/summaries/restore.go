package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/andresuchdata/stream-summaries/internal/domain"
	"github.com/andresuchdata/stream-summaries/internal/indexer"
	"github.com/andresuchdata/stream-summaries/internal/restorer"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func restoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "restore",
		Usage: "Promote historical versions of the summaries listed in a prior catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Prior catalog file (overrides RESTORE_CATALOG_FILE)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report what would be restored without copying",
			},
		},
		Before: initApp,
		After:  closeApp,
		Action: runRestore,
	}
}

func runRestore(c *cli.Context) error {
	a := appFrom(c)
	ctx := c.Context

	file := a.cfg.Summaries.RestoreCatalogFile
	if c.IsSet("catalog") {
		file = c.String("catalog")
	}

	catalog, err := indexer.ReadFile(file)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	a.log.Info().Str("file", file).Int("entries", len(catalog.Entries)).Msg("loaded prior catalog")

	dryRun := c.Bool("dry-run")
	run := a.runs.StartRun(ctx, domain.RunKindRestore, dryRun)

	r := restorer.New(a.store, restorer.Options{
		Prefix: a.cfg.Summaries.Prefix,
		Locale: a.cfg.Summaries.Locale,
		DryRun: dryRun,
	}, a.log)

	report, err := r.Run(ctx, catalog)
	a.runs.FinishRestoreRun(ctx, run, report, err)

	if report != nil {
		fmt.Fprintln(c.App.Writer)
		if werr := report.WriteSummary(c.App.Writer); werr != nil {
			a.log.Warn().Err(werr).Msg("could not print summary")
		}
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("restore interrupted: %v", err), 1)
	}
	if code := report.ExitCode(); code != 0 {
		return cli.Exit(fmt.Sprintf("%d entries failed to restore", report.Failed), code)
	}
	return nil
}

func restoreHistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "restore-history",
		Usage: "List recent runs recorded in the run ledger",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to list",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Only list runs of this kind (index or restore)",
				Value: string(domain.RunKindRestore),
			},
			&cli.StringFlag{
				Name:  "run",
				Usage: "Show the per-entry outcomes of one run by id",
			},
		},
		Before: initApp,
		After:  closeApp,
		Action: runRestoreHistory,
	}
}

func runRestoreHistory(c *cli.Context) error {
	a := appFrom(c)
	if !a.ledger {
		return cli.Exit("run ledger is not configured (set DATABASE_URL)", 1)
	}
	if c.IsSet("run") {
		return printRunItems(c, a)
	}

	runs, err := a.runs.ListRuns(c.Context, domain.RunKind(c.String("kind")), c.Int("limit"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSTATUS\tSTARTED\tTOTAL\tRESTORED\tSKIPPED\tFAILED\tDRY RUN")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%t\n",
			run.ID, run.Kind, run.Status, run.StartedAt.Local().Format(time.DateTime),
			run.Total, run.Restored, run.Skipped, run.Failed, run.DryRun)
	}
	return tw.Flush()
}

func printRunItems(c *cli.Context, a *app) error {
	runID, err := uuid.Parse(c.String("run"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid run id %q: %v", c.String("run"), err), 1)
	}

	items, err := a.runs.ListRunItems(c.Context, runID)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if len(items) == 0 {
		fmt.Fprintf(c.App.Writer, "no items recorded for run %s\n", runID)
		return nil
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tOUTCOME\tREASON\tVERSION\tKEY\tERROR")
	for _, item := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			item.Position, item.Outcome, item.Reason, item.VersionID, item.ObjectKey, item.Error)
	}
	return tw.Flush()
}

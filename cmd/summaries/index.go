package main

import (
	"errors"
	"fmt"

	"github.com/andresuchdata/stream-summaries/internal/domain"
	"github.com/andresuchdata/stream-summaries/internal/indexer"
	"github.com/andresuchdata/stream-summaries/internal/publish"
	"github.com/urfave/cli/v2"
)

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Rebuild the summaries catalog from the store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "output",
				Usage: "Local file the catalog is written to (overrides INDEX_OUTPUT_FILE)",
			},
			&cli.BoolFlag{
				Name:  "upload",
				Usage: "Upload the catalog without asking",
			},
			&cli.BoolFlag{
				Name:  "no-prompt",
				Usage: "Never ask; skip the upload unless --upload is set",
			},
		},
		Before: initApp,
		After:  closeApp,
		Action: runIndex,
	}
}

func runIndex(c *cli.Context) error {
	a := appFrom(c)
	ctx := c.Context
	out := c.App.Writer

	output := a.cfg.Summaries.OutputFile
	if c.IsSet("output") {
		output = c.String("output")
	}

	run := a.runs.StartRun(ctx, domain.RunKindIndex, false)
	ix := indexer.New(a.store, a.indexerOptions(), a.log)

	catalog, err := ix.Build(ctx)
	a.runs.FinishIndexRun(ctx, run, catalog, err)
	if err != nil {
		if errors.Is(err, indexer.ErrNoSummaries) {
			return cli.Exit(err.Error(), 1)
		}
		return cli.Exit(fmt.Sprintf("failed to build catalog: %v", err), 1)
	}

	if err := indexer.WriteFile(output, catalog); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	a.log.Info().Str("file", output).Int("total", catalog.TotalCount).Msg("catalog written")

	pub := publish.New(a.store, a.cfg.Summaries.Prefix, a.cfg.Summaries.Locale, a.log)

	upload := c.Bool("upload")
	if !upload && !c.Bool("no-prompt") {
		upload = confirm(c.App.Reader, out, "Upload to store?")
	}
	if !upload {
		fmt.Fprint(out, manualUploadInstructions(output, a.cfg.Storage.Bucket, pub.Key()))
		return nil
	}

	if err := pub.Publish(ctx, output); err != nil {
		return cli.Exit(fmt.Sprintf("upload failed, local file %s kept: %v", output, err), 1)
	}
	fmt.Fprintf(out, "Uploaded %s to s3://%s/%s\n", output, a.cfg.Storage.Bucket, pub.Key())
	return nil
}

func publishCommand() *cli.Command {
	return &cli.Command{
		Name:  "publish",
		Usage: "Upload a catalog file to the index key",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "file",
				Usage: "Catalog file to upload (defaults to INDEX_OUTPUT_FILE)",
			},
		},
		Before: initApp,
		After:  closeApp,
		Action: func(c *cli.Context) error {
			a := appFrom(c)
			file := a.cfg.Summaries.OutputFile
			if c.IsSet("file") {
				file = c.String("file")
			}

			pub := publish.New(a.store, a.cfg.Summaries.Prefix, a.cfg.Summaries.Locale, a.log)
			if err := pub.Publish(c.Context, file); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			fmt.Fprintf(c.App.Writer, "Uploaded %s to s3://%s/%s\n", file, a.cfg.Storage.Bucket, pub.Key())
			return nil
		},
	}
}

func manualUploadInstructions(file, bucket, key string) string {
	return fmt.Sprintf("Upload skipped. To upload manually run:\n  aws s3 cp %s s3://%s/%s\n", file, bucket, key)
}

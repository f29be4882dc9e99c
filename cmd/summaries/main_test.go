package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/stream-summaries/internal/config"
	"github.com/andresuchdata/stream-summaries/internal/domain"
	"github.com/andresuchdata/stream-summaries/internal/indexer"
	"github.com/andresuchdata/stream-summaries/internal/repository"
	"github.com/andresuchdata/stream-summaries/internal/service"
	"github.com/andresuchdata/stream-summaries/internal/testutil"
	"github.com/andresuchdata/stream-summaries/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const summaryKey = "stream-summaries/foo/2024-01-01/abc.es.json"

var fixedNow = time.Date(2025, 11, 4, 12, 0, 0, 0, time.UTC)

func testConfig(dir string) *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{Bucket: "ultravioletadao"},
		Summaries: config.SummariesConfig{
			Prefix:             "stream-summaries",
			Locale:             "es",
			OutputFile:         filepath.Join(dir, "index_es_new.json"),
			RestoreCatalogFile: filepath.Join(dir, "index_es_old.json"),
		},
	}
}

// newTestCLI runs the commands against a instead of the configured store.
// stdin feeds the confirmation prompt and out collects what the commands print.
func newTestCLI(a *app, stdin string) (*cli.App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	inject := func(c *cli.Context) error {
		c.Context = context.WithValue(c.Context, types.AppKey, a)
		return nil
	}

	commands := []*cli.Command{indexCommand(), restoreCommand(), restoreHistoryCommand()}
	for _, cmd := range commands {
		cmd.Before = inject
		cmd.After = nil
	}

	return &cli.App{
		Name:           "summaries",
		Reader:         strings.NewReader(stdin),
		Writer:         out,
		ErrWriter:      io.Discard,
		ExitErrHandler: func(*cli.Context, error) {},
		Commands:       commands,
	}, out
}

func newTestApp(t *testing.T, store *testutil.MemoryStore) *app {
	t.Helper()
	return &app{
		cfg:   testConfig(t.TempDir()),
		log:   zerolog.Nop(),
		store: store,
		runs:  service.NewRunService(nil),
	}
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var coder cli.ExitCoder
	require.True(t, errors.As(err, &coder), "error %v is not an exit coder", err)
	return coder.ExitCode()
}

func writeCatalog(t *testing.T, path string, entries ...domain.Entry) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, mustMarshal(t, domain.NewCatalog(entries, fixedNow)), 0o644))
}

func mustMarshal(t *testing.T, catalog *domain.Catalog) []byte {
	t.Helper()
	data, err := domain.MarshalCatalog(catalog)
	require.NoError(t, err)
	return data
}

func TestRestore_MissingCatalogExitsOne(t *testing.T) {
	a := newTestApp(t, testutil.NewMemoryStore())
	cliApp, _ := newTestCLI(a, "")

	err := cliApp.Run([]string{"summaries", "restore", "--catalog", filepath.Join(t.TempDir(), "missing.json")})
	assert.Equal(t, 1, exitCode(t, err))
}

func TestRestore_FailedEntryExitsOne(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddVersion(summaryKey, "v1", []byte(`{}`))
	store.AddDeleteMarker(summaryKey, "dm1")
	store.CopyErrors[summaryKey] = errors.New("access denied")

	a := newTestApp(t, store)
	writeCatalog(t, a.cfg.Summaries.RestoreCatalogFile,
		domain.Entry{VideoID: "abc", Streamer: "foo", StreamDate: "2024-01-01"})
	cliApp, out := newTestCLI(a, "")

	err := cliApp.Run([]string{"summaries", "restore"})
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, out.String(), "RESTORE SUMMARY")
	assert.Contains(t, out.String(), "copy failed: access denied")
}

func TestRestore_AllRestoredExitsZero(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddVersion(summaryKey, "v1", []byte(`{}`))
	store.AddDeleteMarker(summaryKey, "dm1")

	a := newTestApp(t, store)
	writeCatalog(t, a.cfg.Summaries.RestoreCatalogFile,
		domain.Entry{VideoID: "abc", Streamer: "foo", StreamDate: "2024-01-01"},
		domain.Entry{VideoID: "", Streamer: "foo", StreamDate: "2024-01-02"})
	cliApp, out := newTestCLI(a, "")

	err := cliApp.Run([]string{"summaries", "restore"})
	assert.Equal(t, 0, exitCode(t, err))
	assert.Equal(t, []testutil.CopyCall{{Key: summaryKey, VersionID: "v1"}}, store.Copies)
	assert.Contains(t, out.String(), "RESTORE SUMMARY")
}

func TestIndex_DeclinedUploadPrintsInstructions(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddVersion(summaryKey, "", []byte(`{"titulo": "Primero"}`))

	a := newTestApp(t, store)
	cliApp, out := newTestCLI(a, "no\n")

	err := cliApp.Run([]string{"summaries", "index"})
	assert.Equal(t, 0, exitCode(t, err))
	assert.Contains(t, out.String(), "Upload to store? (yes/no)")
	assert.Contains(t, out.String(),
		"aws s3 cp "+a.cfg.Summaries.OutputFile+" s3://ultravioletadao/stream-summaries/index_es.json")
	assert.Empty(t, store.Puts)

	catalog, err := indexer.ReadFile(a.cfg.Summaries.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.TotalCount)
}

func TestIndex_AcceptedUploadPublishes(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.AddVersion(summaryKey, "", []byte(`{"titulo": "Primero"}`))

	a := newTestApp(t, store)
	cliApp, out := newTestCLI(a, "yes\n")

	err := cliApp.Run([]string{"summaries", "index"})
	assert.Equal(t, 0, exitCode(t, err))
	require.Len(t, store.Puts, 1)
	assert.Equal(t, "stream-summaries/index_es.json", store.Puts[0].Key)
	assert.Contains(t, out.String(), "Uploaded ")
}

func TestIndex_NoSummariesExitsOne(t *testing.T) {
	a := newTestApp(t, testutil.NewMemoryStore())
	cliApp, out := newTestCLI(a, "yes\n")

	err := cliApp.Run([]string{"summaries", "index"})
	assert.Equal(t, 1, exitCode(t, err))
	assert.NotContains(t, out.String(), "Upload to store?")
	assert.NoFileExists(t, a.cfg.Summaries.OutputFile)
}

type itemsLedger struct {
	repository.RunRepository
	asked uuid.UUID
	items []domain.RunItem
}

func (l *itemsLedger) ListRunItems(ctx context.Context, runID uuid.UUID) ([]domain.RunItem, error) {
	l.asked = runID
	return l.items, nil
}

func TestRestoreHistory_PrintsRunItems(t *testing.T) {
	runID := uuid.New()
	ledger := &itemsLedger{
		RunRepository: repository.NewNoopRunRepository(),
		items: []domain.RunItem{
			{RunID: runID, Position: 1, ObjectKey: summaryKey, Outcome: "restored", Reason: "promoted version", VersionID: "v1"},
			{RunID: runID, Position: 2, ObjectKey: "stream-summaries/foo/2024-01-02/def.es.json", Outcome: "failed", Reason: "copy failed", Error: "access denied"},
		},
	}

	a := newTestApp(t, testutil.NewMemoryStore())
	a.runs = service.NewRunService(ledger)
	a.ledger = true
	cliApp, out := newTestCLI(a, "")

	err := cliApp.Run([]string{"summaries", "restore-history", "--run", runID.String()})
	require.NoError(t, err)
	assert.Equal(t, runID, ledger.asked)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "OUTCOME")
	assert.Contains(t, lines[1], summaryKey)
	assert.Contains(t, lines[1], "v1")
	assert.Contains(t, lines[2], "access denied")
}

func TestRestoreHistory_Errors(t *testing.T) {
	a := newTestApp(t, testutil.NewMemoryStore())
	cliApp, _ := newTestCLI(a, "")
	err := cliApp.Run([]string{"summaries", "restore-history"})
	assert.Equal(t, 1, exitCode(t, err), "ledger not configured")

	a.ledger = true
	cliApp, _ = newTestCLI(a, "")
	err = cliApp.Run([]string{"summaries", "restore-history", "--run", "not-a-uuid"})
	assert.Equal(t, 1, exitCode(t, err), "malformed run id")
}

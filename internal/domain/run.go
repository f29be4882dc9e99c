package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunKind names the job a ledger run belongs to.
type RunKind string

const (
	RunKindIndex   RunKind = "index"
	RunKindRestore RunKind = "restore"
)

// RunStatus represents the current state of a recorded run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded execution of the indexer or the restorer.
type Run struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Kind         RunKind    `db:"kind" json:"kind"`
	Status       RunStatus  `db:"status" json:"status"`
	Total        int        `db:"total" json:"total"`
	Restored     int        `db:"restored" json:"restored"`
	Skipped      int        `db:"skipped" json:"skipped"`
	Failed       int        `db:"failed" json:"failed"`
	DryRun       bool       `db:"dry_run" json:"dry_run"`
	ErrorMessage string     `db:"error_message" json:"error_message,omitempty"`
	StartedAt    time.Time  `db:"started_at" json:"started_at"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// RunItem is the recorded outcome of a single restore entry.
type RunItem struct {
	RunID     uuid.UUID `db:"run_id" json:"run_id"`
	Position  int       `db:"position" json:"position"`
	ObjectKey string    `db:"object_key" json:"object_key"`
	Outcome   string    `db:"outcome" json:"outcome"`
	Reason    string    `db:"reason" json:"reason"`
	VersionID string    `db:"version_id" json:"version_id,omitempty"`
	Error     string    `db:"error" json:"error,omitempty"`
}

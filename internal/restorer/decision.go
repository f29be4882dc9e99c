package restorer

import (
	"time"

	"github.com/andresuchdata/stream-summaries/internal/storage"
)

// Outcome is the per-entry result of a restore run.
type Outcome string

const (
	OutcomeRestored Outcome = "restored"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeFailed   Outcome = "failed"
)

const (
	ReasonMissingMetadata = "missing metadata"
	ReasonNoVersions      = "no versions found"
	ReasonNoFileVersion   = "no file version found"
	ReasonAlreadyCurrent  = "already current"
	ReasonPromoted        = "promoted version"
	ReasonWouldPromote    = "would promote version"
	ReasonCopyFailed      = "copy failed"
)

// Action is what the reconciliation policy asks the restorer to do for one key.
type Action int

const (
	ActionSkip Action = iota
	ActionKeep
	ActionPromote
)

func (a Action) String() string {
	switch a {
	case ActionKeep:
		return "keep"
	case ActionPromote:
		return "promote"
	default:
		return "skip"
	}
}

// Decision is the result of applying the reconciliation policy to a history.
type Decision struct {
	Action          Action
	Reason          string
	VersionID       string
	HasDeleteMarker bool
	// VersionDate is the LastModified of the version kept or promoted.
	VersionDate time.Time
}

// Decide applies the reconciliation policy to a version history in the order
// the store returned it:
//
//   - an empty history is skipped;
//   - a single live version with no current delete marker is kept as is;
//   - otherwise the first record that is not a delete marker is promoted,
//     and a history made only of delete markers is skipped.
func Decide(history []storage.ObjectVersion) Decision {
	if len(history) == 0 {
		return Decision{Action: ActionSkip, Reason: ReasonNoVersions}
	}

	hasDeleteMarker := false
	for _, v := range history {
		if v.IsDeleteMarker && v.IsLatest {
			hasDeleteMarker = true
			break
		}
	}

	if !hasDeleteMarker && len(history) == 1 {
		return Decision{
			Action:      ActionKeep,
			Reason:      ReasonAlreadyCurrent,
			VersionID:   history[0].VersionID,
			VersionDate: history[0].LastModified,
		}
	}

	for _, v := range history {
		if v.IsDeleteMarker {
			continue
		}
		return Decision{
			Action:          ActionPromote,
			Reason:          ReasonPromoted,
			VersionID:       v.VersionID,
			HasDeleteMarker: hasDeleteMarker,
			VersionDate:     v.LastModified,
		}
	}

	return Decision{Action: ActionSkip, Reason: ReasonNoFileVersion, HasDeleteMarker: hasDeleteMarker}
}

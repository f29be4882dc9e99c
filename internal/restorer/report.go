package restorer

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// ItemResult is the outcome recorded for one catalog entry.
type ItemResult struct {
	Position   int
	VideoID    string
	Streamer   string
	StreamDate string
	Key        string
	Outcome    Outcome
	Reason     string
	VersionID  string
	// HasDeleteMarker is set when the key was deleted at the time of the run.
	HasDeleteMarker bool
	// VersionDate is when the kept or promoted version was written.
	VersionDate time.Time
	Err         error
}

// Report accumulates per-entry outcomes of one restore run.
type Report struct {
	Items    []ItemResult
	Restored int
	Skipped  int
	Failed   int
	DryRun   bool
}

func (r *Report) add(item ItemResult) {
	r.Items = append(r.Items, item)
	switch item.Outcome {
	case OutcomeRestored:
		r.Restored++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}

// Total is the number of entries processed.
func (r *Report) Total() int {
	return len(r.Items)
}

// ExitCode is zero iff no entry failed.
func (r *Report) ExitCode() int {
	if r.Failed > 0 {
		return 1
	}
	return 0
}

// WriteSummary prints the aggregate tally followed by one row per entry that
// was not restored.
func (r *Report) WriteSummary(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	title := "RESTORE SUMMARY"
	if r.DryRun {
		title += " (dry-run)"
	}
	fmt.Fprintln(tw, title)
	fmt.Fprintf(tw, "Restored:\t%d\n", r.Restored)
	fmt.Fprintf(tw, "Skipped:\t%d\n", r.Skipped)
	fmt.Fprintf(tw, "Failed:\t%d\n", r.Failed)
	fmt.Fprintf(tw, "Total:\t%d\n", r.Total())

	var problems []ItemResult
	for _, item := range r.Items {
		if item.Outcome != OutcomeRestored {
			problems = append(problems, item)
		}
	}
	if len(problems) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "OUTCOME\tVIDEO\tSTREAMER\tDATE\tREASON")
		for _, item := range problems {
			reason := item.Reason
			if item.Err != nil {
				reason = fmt.Sprintf("%s: %v", reason, item.Err)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", item.Outcome, item.VideoID, item.Streamer, item.StreamDate, reason)
		}
	}

	return tw.Flush()
}

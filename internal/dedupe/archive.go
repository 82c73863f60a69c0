package dedupe

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/fitsync/fitsync/client/notion"
)

// Archiver soft-deletes a Notion page.
type Archiver interface {
	ArchivePage(ctx context.Context, pageID string) (*notion.Page, error)
}

// Failure records an activity that could not be archived.
type Failure struct {
	Activity Activity
	Err      error
}

// Result summarises an archive pass.
type Result struct {
	Attempted int
	Archived  []Activity
	Failed    []Failure
}

// Archive archives each activity in order, one request at a time. A failed
// request is logged and skipped; the pass always visits every activity
// unless ctx is cancelled.
func Archive(ctx context.Context, a Archiver, remove []Activity, w io.Writer) Result {
	var res Result
	if len(remove) == 0 {
		fmt.Fprintln(w, "No duplicates to remove!")
		return res
	}

	total := len(remove)
	fmt.Fprintf(w, "\nStarting removal of %d duplicate activities...\n", total)

	for i, act := range remove {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Int("remaining", total-i).Msg("archive pass interrupted")
			break
		}
		res.Attempted++

		if _, err := a.ArchivePage(ctx, act.ID); err != nil {
			archiveAttemptsTotal.WithLabelValues("failure").Inc()
			res.Failed = append(res.Failed, Failure{Activity: act, Err: err})
			log.Error().Err(err).Str("page_id", act.ID).Str("key", act.Key()).Msg("archive failed")
			fmt.Fprintf(w, "  [%d/%d] Error removing %s: %v\n", i+1, total, act.ID, err)
			continue
		}

		archiveAttemptsTotal.WithLabelValues("success").Inc()
		res.Archived = append(res.Archived, act)
		fmt.Fprintf(w, "  [%d/%d] Archived: %s on %s\n", i+1, total, act.ActivityName, act.Date)
	}

	fmt.Fprintf(w, "\nCompleted! Successfully archived %d/%d duplicates\n", len(res.Archived), total)
	return res
}

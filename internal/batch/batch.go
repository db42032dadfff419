// Package batch processes multiple discovered sessions concurrently,
// bounded by a worker pool, the way the teacher refreshes many tmux
// instances' status in parallel (internal/ui/home.go's
// errgroup.Group+SetLimit loop). Per spec §5, each worker owns one
// session end-to-end and no ordering is promised across sessions.
package batch

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/agentaudit/agentaudit/internal/discovery"
	"github.com/agentaudit/agentaudit/internal/logging"
	"github.com/agentaudit/agentaudit/internal/model"
)

var log = logging.ForComponent(logging.CompBatch)

// DefaultWorkerLimit bounds concurrent in-flight adapter parses. Ingest is
// I/O-bound (file reads), not CPU-bound, so a modest pool is enough to
// saturate disk without spawning one goroutine per candidate.
const DefaultWorkerLimit = 8

// Worker parses one candidate into a Session. A non-nil error means the
// candidate could not be ingested at all (IngestError); per-line anomalies
// are Warnings already attached to the returned Session and never surface
// here.
type Worker func(ctx context.Context, candidate discovery.Candidate) (*model.Session, error)

// Result pairs one candidate with its outcome. Results are returned in an
// order matching the input slice; the use of that index is the only
// ordering guarantee batch.Run makes — the workers themselves race.
type Result struct {
	Candidate discovery.Candidate
	Session   *model.Session
	Err       error
}

// Run processes candidates with up to limit concurrent workers. If
// limit <= 0, DefaultWorkerLimit is used. ctx cancellation propagates to
// worker (and from there to the adapter's own cooperative cancellation);
// a cancelled worker's Result carries ctx.Err().
//
// Run always returns one Result per candidate, even on cancellation, so a
// caller can report how far processing got.
func Run(ctx context.Context, candidates []discovery.Candidate, limit int, worker Worker) []Result {
	if limit <= 0 {
		limit = DefaultWorkerLimit
	}

	results := make([]Result, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, cand := range candidates {
		i, cand := i, cand
		g.Go(func() error {
			sess, err := worker(gctx, cand)
			results[i] = Result{Candidate: cand, Session: sess, Err: err}
			if err != nil {
				log.Debug("batch_worker_failed", "path", cand.Path, "agent", string(cand.Agent), "error", err)
				logging.Aggregate(logging.CompBatch, "worker_failed", slog.String("agent", string(cand.Agent)))
			} else {
				// One-per-file debug lines would flood a large batch run;
				// aggregate successes into periodic event_summary lines instead.
				logging.Aggregate(logging.CompBatch, "worker_succeeded", slog.String("agent", string(cand.Agent)))
			}
			return nil
		})
	}
	_ = g.Wait() // per-candidate errors are carried in Result, not returned here

	return results
}

// Succeeded filters results down to those that ingested without error.
func Succeeded(results []Result) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Err == nil && r.Session != nil {
			out = append(out, r)
		}
	}
	return out
}

// Failed filters results down to those whose ingest failed.
func Failed(results []Result) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

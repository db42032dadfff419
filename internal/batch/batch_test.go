package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentaudit/agentaudit/internal/discovery"
	"github.com/agentaudit/agentaudit/internal/model"
)

func mkCandidates(n int) []discovery.Candidate {
	out := make([]discovery.Candidate, n)
	for i := range out {
		out[i] = discovery.Candidate{Agent: model.AgentClaude, Path: "session.jsonl"}
	}
	return out
}

func mkSession(agent model.AgentKind, path string) (*model.Session, error) {
	turns := []model.Turn{
		model.NewTurn(0, model.RoleUser, time.Now(), []model.Event{
			{Kind: model.EventTextMessage, TextMessage: &model.TextMessage{Role: model.RoleUser, Text: "hi"}},
		}, 0),
	}
	return model.NewSession("s", agent, path, "/cwd", turns, nil)
}

func TestRun_ReturnsOneResultPerCandidateInInputOrder(t *testing.T) {
	candidates := mkCandidates(5)
	results := Run(context.Background(), candidates, 2, func(ctx context.Context, c discovery.Candidate) (*model.Session, error) {
		return mkSession(c.Agent, c.Path)
	})

	require.Len(t, results, 5)
	for i, r := range results {
		assert.Equal(t, candidates[i].Path, r.Candidate.Path)
		assert.NoError(t, r.Err)
		require.NotNil(t, r.Session)
	}
}

func TestRun_CapsConcurrencyAtLimit(t *testing.T) {
	candidates := mkCandidates(20)

	var inFlight, maxInFlight int64
	results := Run(context.Background(), candidates, 3, func(ctx context.Context, c discovery.Candidate) (*model.Session, error) {
		n := atomic.AddInt64(&inFlight, 1)
		for {
			cur := atomic.LoadInt64(&maxInFlight)
			if n <= cur || atomic.CompareAndSwapInt64(&maxInFlight, cur, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return mkSession(c.Agent, c.Path)
	})

	require.Len(t, results, 20)
	assert.LessOrEqual(t, atomic.LoadInt64(&maxInFlight), int64(3))
}

func TestRun_CarriesPerCandidateErrorsWithoutFailingTheRest(t *testing.T) {
	candidates := []discovery.Candidate{
		{Agent: model.AgentClaude, Path: "a.jsonl"},
		{Agent: model.AgentClaude, Path: "bad.jsonl"},
		{Agent: model.AgentClaude, Path: "c.jsonl"},
	}
	results := Run(context.Background(), candidates, 2, func(ctx context.Context, c discovery.Candidate) (*model.Session, error) {
		if c.Path == "bad.jsonl" {
			return nil, errors.New("boom")
		}
		return mkSession(c.Agent, c.Path)
	})

	require.Len(t, results, 3)
	failed := Failed(results)
	require.Len(t, failed, 1)
	assert.Equal(t, "bad.jsonl", failed[0].Candidate.Path)
	assert.Len(t, Succeeded(results), 2)
}

func TestRun_ZeroLimitFallsBackToDefault(t *testing.T) {
	candidates := mkCandidates(1)
	results := Run(context.Background(), candidates, 0, func(ctx context.Context, c discovery.Candidate) (*model.Session, error) {
		return mkSession(c.Agent, c.Path)
	})
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
}

func TestSucceededAndFailed_PartitionResults(t *testing.T) {
	ok, _ := mkSession(model.AgentClaude, "ok.jsonl")
	results := []Result{
		{Candidate: discovery.Candidate{Path: "ok.jsonl"}, Session: ok},
		{Candidate: discovery.Candidate{Path: "bad.jsonl"}, Err: errors.New("x")},
	}

	assert.Len(t, Succeeded(results), 1)
	assert.Len(t, Failed(results), 1)
}

func TestRun_PropagatesContextCancellationToWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	candidates := mkCandidates(2)
	results := Run(ctx, candidates, 2, func(ctx context.Context, c discovery.Candidate) (*model.Session, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return mkSession(c.Agent, c.Path)
	})

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Error(t, r.Err)
	}
}

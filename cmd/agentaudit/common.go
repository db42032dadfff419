package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/agentaudit/agentaudit/internal/batch"
	"github.com/agentaudit/agentaudit/internal/detect"
	"github.com/agentaudit/agentaudit/internal/discovery"
	"github.com/agentaudit/agentaudit/internal/model"
)

// commonFlags is the flag set spec §6 lists as shared across subcommands.
// Not every subcommand consumes every field.
type commonFlags struct {
	agent       string
	since       string
	until       string
	cwd         string
	modelID     string
	sessionID   string
	limit       int
	top         int
	format      string
	optimizeFor string
	out         string
}

func agentKinds(raw string) []model.AgentKind {
	all := []model.AgentKind{model.AgentClaude, model.AgentOpenCode, model.AgentCodex, model.AgentPi, model.AgentKodo}
	if raw == "" {
		return all
	}
	k := model.AgentKind(raw)
	if !k.Valid() {
		return nil
	}
	return []model.AgentKind{k}
}

func parseTimeFlag(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func profileFor(optimizeFor string) detect.Profile {
	switch optimizeFor {
	case "latency":
		return detect.ProfileLatency
	case "reliability":
		return detect.ProfileReliability
	default:
		return detect.ProfileCost
	}
}

// discoverSessions runs discovery across the requested agents, ingests
// each candidate (through the parse cache when available), and applies
// the model-id and session-id post-ingest filters that discovery itself
// cannot apply structurally (SPEC_FULL §4.4).
func (a app) discoverSessions(ctx context.Context, flags commonFlags) ([]*model.Session, error) {
	since, err := parseTimeFlag(flags.since)
	if err != nil {
		return nil, fmt.Errorf("--since: %w", err)
	}
	until, err := parseTimeFlag(flags.until)
	if err != nil {
		return nil, fmt.Errorf("--until: %w", err)
	}

	agent := flags.agent
	if agent == "" {
		agent = a.cfg.DefaultAgent
	}
	kinds := agentKinds(agent)
	if kinds == nil {
		return nil, fmt.Errorf("--agent: unknown agent %q", agent)
	}

	var candidates []discovery.Candidate
	for _, k := range kinds {
		found, err := discovery.Discover(k, discovery.Filters{Since: since, Until: until, CWD: flags.cwd})
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, found...)
	}

	if flags.sessionID != "" {
		candidates = filterBySessionIDPrefix(candidates, flags.sessionID)
	}

	results := batch.Run(ctx, candidates, batch.DefaultWorkerLimit, a.ingestOne)

	sessions := make([]*model.Session, 0, len(results))
	for _, r := range batch.Succeeded(results) {
		sessions = append(sessions, r.Session)
	}

	if flags.modelID != "" {
		sessions = filterByModelID(sessions, flags.modelID)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].EndTime().After(sessions[j].EndTime())
	})

	if flags.limit > 0 && len(sessions) > flags.limit {
		sessions = sessions[:flags.limit]
	}

	return sessions, nil
}

func filterBySessionIDPrefix(candidates []discovery.Candidate, prefix string) []discovery.Candidate {
	out := make([]discovery.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if strings.HasPrefix(c.SessionIDGuess, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func filterByModelID(sessions []*model.Session, substr string) []*model.Session {
	out := make([]*model.Session, 0, len(sessions))
	for _, s := range sessions {
		for _, m := range s.ModelSet() {
			if strings.Contains(m, substr) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// ingestOne parses one discovered candidate, consulting the parse cache
// first when one is open. A cache miss or disabled cache falls through to
// the adapter directly and, on success, populates the cache for next time.
func (a app) ingestOne(ctx context.Context, c discovery.Candidate) (*model.Session, error) {
	adapter, ok := a.registry.For(c.Agent)
	if !ok {
		return nil, fmt.Errorf("no adapter registered for agent %q", c.Agent)
	}

	info, statErr := os.Stat(c.Path)
	if a.cache != nil && statErr == nil {
		if sess, hit := a.cache.Get(c.Agent, c.Path, info.ModTime(), info.Size(), 0); hit {
			return sess, nil
		}
	}

	sess, err := adapter.Parse(ctx, c.Path)
	if err != nil {
		return nil, err
	}

	if a.cache != nil && statErr == nil {
		_ = a.cache.Put(sess, info.ModTime(), info.Size(), time.Now().Unix())
	}
	return sess, nil
}

// writeOutput sends rendered bytes to --out if set, otherwise stdout.
func writeOutput(out string, data []byte) error {
	if out == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(out, data, 0o644)
}

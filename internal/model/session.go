package model

import (
	"fmt"
	"time"
)

// Session is a single recorded agent conversation. Sessions, once built by
// NewSession, are immutable: no field changes after construction.
//
// Session id uniqueness within (agent kind, source path) is a property the
// caller (ingest + discovery) is responsible for; Session itself has no way
// to observe other sessions.
type Session struct {
	id          string
	agent       AgentKind
	sourcePath  string
	cwd         string
	startTime   time.Time
	endTime     time.Time
	modelID     string
	modelSet    []string
	turns       []Turn
	usage       Usage
	costUSD     float64
	warnings    []Warning
}

// NewSession builds a Session from a non-empty, time-ordered turn list. It
// derives aggregate usage/cost, the dominant model id, and the side set of
// every model id the session touched. It returns an error if turns is empty
// or if turn timestamps are not monotonically non-decreasing — both are
// invariants the session builder must otherwise guarantee.
func NewSession(id string, agent AgentKind, sourcePath, cwd string, turns []Turn, warnings []Warning) (*Session, error) {
	if len(turns) == 0 {
		return nil, fmt.Errorf("model: session %q has no turns", id)
	}

	turnsCopy := make([]Turn, len(turns))
	copy(turnsCopy, turns)

	for i, t := range turnsCopy {
		if t.Index() != i {
			return nil, fmt.Errorf("model: session %q turn index %d does not match position %d", id, t.Index(), i)
		}
		if i > 0 && t.Timestamp().Before(turnsCopy[i-1].Timestamp()) {
			return nil, fmt.Errorf("model: session %q turn %d timestamp precedes turn %d", id, i, i-1)
		}
	}

	var usage Usage
	var costUSD float64
	for _, t := range turnsCopy {
		usage = usage.Add(t.Usage())
		costUSD += t.CostUSD()
	}

	modelID, modelSet := deriveModels(turnsCopy)

	warnCopy := make([]Warning, len(warnings))
	copy(warnCopy, warnings)

	return &Session{
		id:         id,
		agent:      agent,
		sourcePath: sourcePath,
		cwd:        cwd,
		startTime:  turnsCopy[0].Timestamp(),
		endTime:    turnsCopy[len(turnsCopy)-1].Timestamp(),
		modelID:    modelID,
		modelSet:   modelSet,
		turns:      turnsCopy,
		usage:      usage,
		costUSD:    costUSD,
		warnings:   warnCopy,
	}, nil
}

// deriveModels walks every usage record across all turns and returns the
// dominant model (by total tokens observed) plus the ordered, deduplicated
// set of every model id seen, in first-seen order.
func deriveModels(turns []Turn) (dominant string, set []string) {
	seen := make(map[string]bool)
	totals := make(map[string]int)
	var order []string

	for _, t := range turns {
		for _, e := range t.Events() {
			if e.Kind != EventUsageRecord || e.UsageRecord == nil || e.UsageRecord.ModelID == "" {
				continue
			}
			m := e.UsageRecord.ModelID
			if !seen[m] {
				seen[m] = true
				order = append(order, m)
			}
			totals[m] += e.UsageRecord.Usage.Total()
		}
	}

	best := ""
	bestTokens := -1
	for _, m := range order {
		if totals[m] > bestTokens {
			bestTokens = totals[m]
			best = m
		}
	}
	return best, order
}

// ID returns the vendor-assigned session id.
func (s *Session) ID() string { return s.id }

// Agent returns which vendor produced this session.
func (s *Session) Agent() AgentKind { return s.agent }

// SourcePath returns the on-disk path the session was parsed from.
func (s *Session) SourcePath() string { return s.sourcePath }

// CWD returns the session's working directory, or "" if unknown.
func (s *Session) CWD() string { return s.cwd }

// StartTime returns the first turn's timestamp.
func (s *Session) StartTime() time.Time { return s.startTime }

// EndTime returns the last turn's timestamp.
func (s *Session) EndTime() time.Time { return s.endTime }

// ModelID returns the dominant model used in the session (by total tokens).
func (s *Session) ModelID() string { return s.modelID }

// ModelSet returns every model id the session touched, in first-seen order.
func (s *Session) ModelSet() []string {
	out := make([]string, len(s.modelSet))
	copy(out, s.modelSet)
	return out
}

// Turns returns the session's turns in order.
func (s *Session) Turns() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Turn returns the turn at index i, or the zero Turn and false if out of range.
func (s *Session) Turn(i int) (Turn, bool) {
	if i < 0 || i >= len(s.turns) {
		return Turn{}, false
	}
	return s.turns[i], true
}

// TotalUsage returns the session's aggregate token usage.
func (s *Session) TotalUsage() Usage { return s.usage }

// TotalCostUSD returns the session's aggregate cost in USD.
func (s *Session) TotalCostUSD() float64 { return s.costUSD }

// Warnings returns every non-fatal ingest anomaly recorded for this session.
func (s *Session) Warnings() []Warning {
	out := make([]Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// Equal reports structural equality: same id, agent, cwd, start and end
// time, dominant model, usage, cost and turns. Source path, model set and
// warnings are not compared. Session identity, by contrast, is by ID alone.
func (s *Session) Equal(o *Session) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.id != o.id || s.agent != o.agent || s.cwd != o.cwd ||
		!s.startTime.Equal(o.startTime) || !s.endTime.Equal(o.endTime) ||
		s.modelID != o.modelID || s.costUSD != o.costUSD || s.usage != o.usage {
		return false
	}
	if len(s.turns) != len(o.turns) {
		return false
	}
	for i := range s.turns {
		if !turnsEqual(s.turns[i], o.turns[i]) {
			return false
		}
	}
	return true
}

func turnsEqual(a, b Turn) bool {
	if a.index != b.index || a.role != b.role || !a.timestamp.Equal(b.timestamp) ||
		a.usage != b.usage || a.costUSD != b.costUSD {
		return false
	}
	if len(a.events) != len(b.events) {
		return false
	}
	for i := range a.events {
		if !eventsEqual(a.events[i], b.events[i]) {
			return false
		}
	}
	return true
}

func eventsEqual(a, b Event) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case EventTextMessage:
		return *a.TextMessage == *b.TextMessage
	case EventToolCall:
		return a.ToolCall.ID == b.ToolCall.ID && a.ToolCall.Name == b.ToolCall.Name &&
			string(a.ToolCall.Arguments) == string(b.ToolCall.Arguments) && a.ToolCall.TurnRef == b.ToolCall.TurnRef
	case EventToolResult:
		return *a.ToolResult == *b.ToolResult
	case EventUsageRecord:
		return *a.UsageRecord == *b.UsageRecord
	case EventMeta:
		return a.Meta.Kind == b.Meta.Kind && string(a.Meta.Payload) == string(b.Meta.Payload)
	default:
		return false
	}
}

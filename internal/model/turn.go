package model

import "time"

// Turn is one user-assistant exchange, or one sidechain subagent exchange.
// Turns are produced by the session builder and never mutated afterward.
type Turn struct {
	index     int
	role      Role
	timestamp time.Time
	events    []Event
	usage     Usage
	costUSD   float64
}

// NewTurn constructs a Turn. usage is the sum of child event usages, matching
// the invariant that a turn's usage equals the sum of its events' usages
// where those events carry usage.
func NewTurn(index int, role Role, timestamp time.Time, events []Event, costUSD float64) Turn {
	evCopy := make([]Event, len(events))
	copy(evCopy, events)

	var usage Usage
	for _, e := range evCopy {
		if e.Kind == EventUsageRecord && e.UsageRecord != nil {
			usage = usage.Add(e.UsageRecord.Usage)
		}
	}

	return Turn{
		index:     index,
		role:      role,
		timestamp: timestamp,
		events:    evCopy,
		usage:     usage,
		costUSD:   costUSD,
	}
}

// Index returns the turn's 0-based position in its session's turn list.
func (t Turn) Index() int { return t.index }

// Role returns who produced this turn.
func (t Turn) Role() Role { return t.role }

// Timestamp returns the turn's timestamp, inherited from its first event.
func (t Turn) Timestamp() time.Time { return t.timestamp }

// Events returns the turn's events in trace order.
func (t Turn) Events() []Event {
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// Usage returns the turn's aggregate token usage.
func (t Turn) Usage() Usage { return t.usage }

// CostUSD returns the turn's attributed cost.
func (t Turn) CostUSD() float64 { return t.costUSD }

// ToolCalls returns every ToolCall event in the turn, in order.
func (t Turn) ToolCalls() []ToolCall {
	var out []ToolCall
	for _, e := range t.events {
		if e.Kind == EventToolCall && e.ToolCall != nil {
			out = append(out, *e.ToolCall)
		}
	}
	return out
}

// ToolResults returns every ToolResult event in the turn, in order.
func (t Turn) ToolResults() []ToolResult {
	var out []ToolResult
	for _, e := range t.events {
		if e.Kind == EventToolResult && e.ToolResult != nil {
			out = append(out, *e.ToolResult)
		}
	}
	return out
}

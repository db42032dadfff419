// Package report is the contract boundary between the core and the outer
// renderer, per spec §4.2/§6: the core never emits bytes. It hands a
// renderer immutable Session values plus the Findings Detect produced for
// them, and nothing more.
package report

import "github.com/agentaudit/agentaudit/internal/model"

// SessionReport pairs one Session with the Findings its detectors
// produced, the unit `report` builds for each matched session.
type SessionReport struct {
	Session  *model.Session
	Findings []model.Finding
}

// Aggregate summarizes Findings across many sessions for `report
// aggregate`: total estimated waste plus a per-kind breakdown. Aggregation
// here is a plain sum, never a cross-session reconciliation — spec's
// Non-goals exclude anything beyond that.
type Aggregate struct {
	SessionCount        int
	TotalWastedTokens   int
	TotalWastedCostUSD  float64
	FindingCountByKind  map[model.FindingKind]int
	WastedTokensByKind  map[model.FindingKind]int
	WastedCostUSDByKind map[model.FindingKind]float64
}

// Summarize folds a set of SessionReports into an Aggregate by plain
// summation; order of reports never affects the result.
func Summarize(reports []SessionReport) Aggregate {
	agg := Aggregate{
		FindingCountByKind:  make(map[model.FindingKind]int),
		WastedTokensByKind:  make(map[model.FindingKind]int),
		WastedCostUSDByKind: make(map[model.FindingKind]float64),
	}
	agg.SessionCount = len(reports)

	for _, r := range reports {
		for _, f := range r.Findings {
			agg.TotalWastedTokens += f.WastedTokensEstimate
			agg.TotalWastedCostUSD += f.WastedCostUSDEstimate
			agg.FindingCountByKind[f.Kind]++
			agg.WastedTokensByKind[f.Kind] += f.WastedTokensEstimate
			agg.WastedCostUSDByKind[f.Kind] += f.WastedCostUSDEstimate
		}
	}
	return agg
}

// Renderer is an interface for turning SessionReports and an Aggregate into
// bytes. Nothing in this module implements it: cmd/agentaudit calls the
// internal/render functions directly. The core depends on nothing in this
// package beyond SessionReport and Aggregate themselves.
type Renderer interface {
	RenderSession(SessionReport) ([]byte, error)
	RenderAggregate(Aggregate) ([]byte, error)
}

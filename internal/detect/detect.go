// Package detect implements the seven deterministic pattern detectors
// described in spec §4.5: pure functions that scan an immutable
// model.Session and return model.Finding values with evidence, confidence,
// and estimated waste. Detectors never fail and never block; on a
// detector's own unmet precondition (e.g. too few turns) it simply returns
// no findings.
package detect

import (
	"sort"

	"github.com/agentaudit/agentaudit/internal/logging"
	"github.com/agentaudit/agentaudit/internal/model"
)

var log = logging.ForComponent(logging.CompDetect)

// Detector is a pure function over an immutable Session. Implementations
// must be deterministic: identical sessions produce identical findings,
// byte-for-byte, across runs (spec §8 invariant 3). Cost attribution draws
// only on the session's own aggregate usage/cost (already priced during
// ingest), so no pricing catalog is threaded through here.
type Detector func(session *model.Session) []model.Finding

// registry is the fixed set of seven detectors. Adding a detector means
// extending this slice and the model.FindingKind enumeration (spec §9).
var registry = []Detector{
	DetectRetryLoop,
	DetectEditCascade,
	DetectToolFanout,
	DetectRedundantReread,
	DetectContextBloat,
	DetectErrorRepromptChurn,
	DetectSubagentOverhead,
}

// Profile re-weights finding order without changing which findings fire
// (spec §4.5 "Optimization profile").
type Profile string

const (
	ProfileCost        Profile = "cost"
	ProfileLatency     Profile = "latency"
	ProfileReliability Profile = "reliability"
)

// Detect runs every registered detector against session and returns the
// union of their findings, sorted per the given profile (empty profile
// defaults to the base ordering: wasted cost desc, kind asc, first
// evidence turn asc).
func Detect(session *model.Session, profile Profile) []model.Finding {
	var findings []model.Finding
	for _, d := range registry {
		findings = append(findings, d(session)...)
	}

	sortFindings(findings, profile)
	log.Debug("detect_complete", "session_id", session.ID(), "findings", len(findings), "profile", string(profile))
	return findings
}

func sortFindings(findings []model.Finding, profile Profile) {
	switch profile {
	case ProfileCost, "":
		sort.SliceStable(findings, func(i, j int) bool { return baseLess(findings[i], findings[j]) })
	case ProfileLatency:
		sort.SliceStable(findings, func(i, j int) bool {
			li, lj := len(findings[i].EvidenceTurns), len(findings[j].EvidenceTurns)
			if li != lj {
				return li > lj
			}
			return baseLess(findings[i], findings[j])
		})
	case ProfileReliability:
		sort.SliceStable(findings, func(i, j int) bool {
			ri, rj := reliabilityRank(findings[i].Kind), reliabilityRank(findings[j].Kind)
			if ri != rj {
				return ri < rj
			}
			return baseLess(findings[i], findings[j])
		})
	default:
		sort.SliceStable(findings, func(i, j int) bool { return baseLess(findings[i], findings[j]) })
	}
}

// baseLess implements the default ordering: wasted cost desc, kind asc,
// first evidence turn asc (spec §4.5).
func baseLess(a, b model.Finding) bool {
	if a.WastedCostUSDEstimate != b.WastedCostUSDEstimate {
		return a.WastedCostUSDEstimate > b.WastedCostUSDEstimate
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return firstEvidence(a) < firstEvidence(b)
}

func firstEvidence(f model.Finding) int {
	if len(f.EvidenceTurns) == 0 {
		return 0
	}
	return f.EvidenceTurns[0]
}

func reliabilityRank(k model.FindingKind) int {
	switch k {
	case model.FindingRetryLoop, model.FindingEditCascade, model.FindingErrorRepromptChurn:
		return 0
	default:
		return 1
	}
}

package detect

import (
	"encoding/json"
	"fmt"

	"github.com/agentaudit/agentaudit/internal/ingest"
	"github.com/agentaudit/agentaudit/internal/model"
)

// transientArgKeys are stripped before the 0.7-confidence canonical
// comparison (spec §4.5 RETRY_LOOP: "normalized-equal after stripping known
// transient fields, e.g. timestamps").
var transientArgKeys = []string{"timestamp", "time", "requestId", "request_id", "nonce"}

func stripTransientFields(raw json.RawMessage) json.RawMessage {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return raw
	}
	for _, k := range transientArgKeys {
		delete(m, k)
	}
	out, err := json.Marshal(m)
	if err != nil {
		return raw
	}
	return out
}

// DetectRetryLoop implements spec §4.5 RETRY_LOOP: a failed tool call
// followed, in the same or next turn, by a call with the same name and
// equal-after-canonicalization arguments — the agent retrying with no
// corrective change.
func DetectRetryLoop(session *model.Session) []model.Finding {
	calls := allCalls(session)
	results := resultByCallID(session)
	if len(calls) == 0 {
		return nil
	}

	var findings []model.Finding
	for i, ci := range calls {
		ri, ok := results[ci.call.ID]
		if !ok || !ri.IsError {
			continue
		}

		for j := i + 1; j < len(calls); j++ {
			cj := calls[j]
			// The session builder splits a call and its result onto separate
			// turns (spec §8 scenario A), so "same turn or next turn" of
			// authorship spans up to two turn-grouper turns: the call's own
			// turn, the intervening result turn, and the next turn the same
			// role resumes on.
			if cj.turnIdx-ci.turnIdx > 2 {
				break
			}
			if cj.call.Name != ci.call.Name {
				continue
			}

			confidence, matched := retryConfidence(ci.call.Arguments, cj.call.Arguments)
			if !matched {
				continue
			}

			wasted := sumOutputTokens(session, ci.turnIdx, cj.turnIdx)
			finding := model.Finding{
				Kind:                 model.FindingRetryLoop,
				SessionID:            session.ID(),
				EvidenceTurns:        []int{ci.turnIdx, cj.turnIdx},
				WastedTokensEstimate: wasted,
				Confidence:           confidence,
				HumanMessage: fmt.Sprintf(
					"tool %q failed and was retried with unchanged arguments at turn %d",
					ci.call.Name, cj.turnIdx,
				),
			}
			finding.WastedCostUSDEstimate = attributeCost(session, wasted, finding.EvidenceTurns)
			findings = append(findings, finding)
			break
		}
	}

	return findings
}

// retryConfidence reports whether b is a same-arguments retry of a, and at
// what confidence: 0.9 for exact equality, 0.7 for equality after stripping
// known transient fields and canonicalizing.
func retryConfidence(a, b json.RawMessage) (float64, bool) {
	if string(a) == string(b) {
		return 0.9, true
	}
	if ingest.ArgumentsEqual(stripTransientFields(a), stripTransientFields(b)) {
		return 0.7, true
	}
	return 0, false
}

// sumOutputTokens sums output tokens of every turn in [from, to] inclusive.
func sumOutputTokens(session *model.Session, from, to int) int {
	var sum int
	for _, t := range session.Turns() {
		if t.Index() >= from && t.Index() <= to {
			sum += t.Usage().OutputTokens
		}
	}
	return sum
}

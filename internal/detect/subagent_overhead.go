package detect

import (
	"fmt"

	"github.com/agentaudit/agentaudit/internal/model"
)

const subagentOverheadThreshold = 0.30
const subagentEvidenceSampleCap = 5

// DetectSubagentOverhead implements spec §4.5 SUBAGENT_OVERHEAD: an
// advisory finding when delegated sidechain turns account for more than
// 30% of the session's total tokens.
func DetectSubagentOverhead(session *model.Session) []model.Finding {
	total := session.TotalUsage().Total()
	if total == 0 {
		return nil
	}

	var sidechainTotal int
	var sidechainTurns []int
	for _, t := range session.Turns() {
		if t.Role() != model.RoleSidechain {
			continue
		}
		sidechainTotal += t.Usage().Total()
		sidechainTurns = append(sidechainTurns, t.Index())
	}
	if sidechainTotal == 0 {
		return nil
	}

	ratio := float64(sidechainTotal) / float64(total)
	if ratio <= subagentOverheadThreshold {
		return nil
	}

	finding := model.Finding{
		Kind:                 model.FindingSubagentOverhead,
		SessionID:            session.ID(),
		EvidenceTurns:        sampleEvidence(sidechainTurns, subagentEvidenceSampleCap),
		WastedTokensEstimate: sidechainTotal,
		Confidence:           0.5,
		HumanMessage:         fmt.Sprintf("sidechain turns account for %.0f%% of session tokens", ratio*100),
	}
	finding.WastedCostUSDEstimate = attributeCost(session, sidechainTotal, sidechainTurns)
	return []model.Finding{finding}
}

// sampleEvidence returns an evenly-spread subset of idxs of at most max
// elements, always including the first and last.
func sampleEvidence(idxs []int, max int) []int {
	if len(idxs) <= max {
		return append([]int(nil), idxs...)
	}
	out := make([]int, 0, max)
	step := float64(len(idxs)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		out = append(out, idxs[int(float64(i)*step)])
	}
	return out
}

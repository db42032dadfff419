package detect

import (
	"fmt"
	"sort"

	"github.com/agentaudit/agentaudit/internal/model"
)

const toolFanoutDefaultOverhead = 200

// DetectToolFanout implements spec §4.5 TOOL_FANOUT: a single assistant
// turn invoking the same tool four or more times.
func DetectToolFanout(session *model.Session) []model.Finding {
	turns := session.Turns()
	overheadSamples := collectSingleCallOverheads(turns)

	var findings []model.Finding
	for _, t := range turns {
		byName := make(map[string]int)
		var nameOrder []string
		for _, c := range t.ToolCalls() {
			if _, seen := byName[c.Name]; !seen {
				nameOrder = append(nameOrder, c.Name)
			}
			byName[c.Name]++
		}
		for _, name := range nameOrder {
			n := byName[name]
			if n < 4 {
				continue
			}
			overhead := medianOverhead(overheadSamples[name])
			wasted := (n - 1) * overhead

			confidence := 0.6 + 0.05*float64(n-4)
			if confidence > 0.9 {
				confidence = 0.9
			}

			finding := model.Finding{
				Kind:                 model.FindingToolFanout,
				SessionID:            session.ID(),
				EvidenceTurns:        []int{t.Index()},
				WastedTokensEstimate: wasted,
				Confidence:           confidence,
				HumanMessage:         fmt.Sprintf("turn %d invoked %q %d times", t.Index(), name, n),
			}
			finding.WastedCostUSDEstimate = attributeCost(session, wasted, finding.EvidenceTurns)
			findings = append(findings, finding)
		}
	}

	return findings
}

// collectSingleCallOverheads samples, per tool name, the input-token cost of
// turns that invoked that tool exactly once — the per-call overhead signal
// TOOL_FANOUT's waste estimate is built on.
func collectSingleCallOverheads(turns []model.Turn) map[string][]int {
	out := make(map[string][]int)
	for _, t := range turns {
		calls := t.ToolCalls()
		if len(calls) != 1 {
			continue
		}
		name := calls[0].Name
		out[name] = append(out[name], t.Usage().InputTokens)
	}
	return out
}

func medianOverhead(samples []int) int {
	if len(samples) == 0 {
		return toolFanoutDefaultOverhead
	}
	sorted := append([]int(nil), samples...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

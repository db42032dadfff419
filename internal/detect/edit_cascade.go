package detect

import (
	"fmt"

	"github.com/agentaudit/agentaudit/internal/model"
)

// DetectEditCascade implements spec §4.5 EDIT_CASCADE: a specialization of
// RETRY_LOOP restricted to edit-class tools repeatedly failing against the
// same file path, with no intervening success.
func DetectEditCascade(session *model.Session) []model.Finding {
	results := resultByCallID(session)

	type editCall struct {
		turnIdx int
		isError bool
	}
	byPath := make(map[string][]editCall)
	var pathOrder []string

	for _, cr := range allCalls(session) {
		if !isEditTool(cr.call.Name) {
			continue
		}
		path, ok := argPath(cr.call.Arguments)
		if !ok {
			continue
		}
		r, hasResult := results[cr.call.ID]
		isError := hasResult && r.IsError
		if _, seen := byPath[path]; !seen {
			pathOrder = append(pathOrder, path)
		}
		byPath[path] = append(byPath[path], editCall{turnIdx: cr.turnIdx, isError: isError})
	}

	var findings []model.Finding
	for _, path := range pathOrder {
		calls := byPath[path]

		var streak []int
		flush := func() {
			if len(streak) < 2 {
				streak = nil
				return
			}
			wasted := 0
			for _, idx := range streak {
				if t, ok := session.Turn(idx); ok {
					wasted += t.Usage().OutputTokens
				}
			}
			finding := model.Finding{
				Kind:                 model.FindingEditCascade,
				SessionID:            session.ID(),
				EvidenceTurns:        append([]int(nil), streak...),
				WastedTokensEstimate: wasted,
				Confidence:           0.85,
				HumanMessage: fmt.Sprintf(
					"%d consecutive edit failures against %q", len(streak), path,
				),
			}
			finding.WastedCostUSDEstimate = attributeCost(session, wasted, finding.EvidenceTurns)
			findings = append(findings, finding)
			streak = nil
		}

		for _, c := range calls {
			if c.isError {
				streak = append(streak, c.turnIdx)
				continue
			}
			flush()
		}
		flush()
	}

	return findings
}

package detect

import (
	"fmt"

	"github.com/agentaudit/agentaudit/internal/model"
)

const redundantRereadThreshold = 3

// DetectRedundantReread implements spec §4.5 REDUNDANT_REREAD: three or
// more reads of the same file path with no intervening write to that path.
func DetectRedundantReread(session *model.Session) []model.Finding {
	type pathEvent struct {
		turnIdx int
		isWrite bool
	}
	byPath := make(map[string][]pathEvent)
	var pathOrder []string

	for _, cr := range allCalls(session) {
		isRead := isReadTool(cr.call.Name)
		isWrite := isEditTool(cr.call.Name)
		if !isRead && !isWrite {
			continue
		}
		path, ok := argPath(cr.call.Arguments)
		if !ok {
			continue
		}
		if _, seen := byPath[path]; !seen {
			pathOrder = append(pathOrder, path)
		}
		byPath[path] = append(byPath[path], pathEvent{turnIdx: cr.turnIdx, isWrite: isWrite})
	}

	var findings []model.Finding
	for _, path := range pathOrder {
		var streak []int
		flush := func() {
			if len(streak) < redundantRereadThreshold {
				streak = nil
				return
			}
			wasted := 0
			for _, idx := range streak[1:] {
				if t, ok := session.Turn(idx); ok {
					wasted += t.Usage().OutputTokens
				}
			}
			finding := model.Finding{
				Kind:                 model.FindingRedundantReread,
				SessionID:            session.ID(),
				EvidenceTurns:        append([]int(nil), streak...),
				WastedTokensEstimate: wasted,
				Confidence:           0.8,
				HumanMessage:         fmt.Sprintf("%q was re-read %d times with no intervening write", path, len(streak)),
			}
			finding.WastedCostUSDEstimate = attributeCost(session, wasted, finding.EvidenceTurns)
			findings = append(findings, finding)
			streak = nil
		}

		for _, ev := range byPath[path] {
			if ev.isWrite {
				flush()
				continue
			}
			streak = append(streak, ev.turnIdx)
		}
		flush()
	}

	return findings
}

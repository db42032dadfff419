package detect

import (
	"fmt"

	"github.com/agentaudit/agentaudit/internal/model"
)

const errorChurnThreshold = 3

// DetectErrorRepromptChurn implements spec §4.5 ERROR_REPROMPT_CHURN: three
// or more consecutive turns each carrying a tool result with the same
// error class, the signature of the agent re-prompting against an error it
// isn't fixing. Tool results land on the turn following the call that
// produced them in every adapter's turn grouping, so the "consecutive
// turns" scan runs over the session's full turn stream rather than being
// filtered to assistant-role turns.
func DetectErrorRepromptChurn(session *model.Session) []model.Finding {
	turns := session.Turns()

	var findings []model.Finding
	i := 0
	for i < len(turns) {
		class, ok := turnHasError(turns[i])
		if !ok {
			i++
			continue
		}

		j := i + 1
		for j < len(turns) {
			c, ok := turnHasError(turns[j])
			if !ok || c != class {
				break
			}
			j++
		}

		run := j - i
		if run >= errorChurnThreshold {
			evidence := make([]int, 0, run)
			for k := i; k < j; k++ {
				evidence = append(evidence, turns[k].Index())
			}

			wasted := 0
			for k := i + 1; k < j; k++ {
				wasted += turns[k].Usage().InputTokens + turns[k].Usage().OutputTokens
			}

			finding := model.Finding{
				Kind:                 model.FindingErrorRepromptChurn,
				SessionID:            session.ID(),
				EvidenceTurns:        evidence,
				WastedTokensEstimate: wasted,
				Confidence:           0.75,
				HumanMessage:         fmt.Sprintf("%d consecutive turns repeated the same error %q", run, class),
			}
			finding.WastedCostUSDEstimate = attributeCost(session, wasted, finding.EvidenceTurns)
			findings = append(findings, finding)
		}

		i = j
	}

	return findings
}

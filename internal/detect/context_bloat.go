package detect

import (
	"fmt"
	"math"

	"github.com/agentaudit/agentaudit/internal/model"
)

// DetectContextBloat implements spec §4.5 CONTEXT_BLOAT: an assistant turn
// whose input-token count is a statistical outlier against the session's
// own distribution. Sessions with no token counts at all (Codex) yield no
// samples and therefore never fire, the documented graceful degradation.
func DetectContextBloat(session *model.Session) []model.Finding {
	var samples []int
	for _, t := range session.Turns() {
		if t.Role() != model.RoleAssistant {
			continue
		}
		if in := t.Usage().InputTokens; in > 0 {
			samples = append(samples, in)
		}
	}
	if len(samples) == 0 {
		return nil
	}

	mu, sigma := meanStddev(samples)
	if mu == 0 {
		return nil
	}

	var findings []model.Finding
	for _, t := range session.Turns() {
		if t.Role() != model.RoleAssistant {
			continue
		}
		in := t.Usage().InputTokens
		if in == 0 {
			continue
		}
		if float64(in) <= 3*mu || float64(in) <= mu+1.5*sigma {
			continue
		}

		wasted := in - int(math.Ceil(mu))
		if wasted < 0 {
			wasted = 0
		}
		confidence := (float64(in) / (3 * mu)) * 0.7
		if confidence > 1.0 {
			confidence = 1.0
		}

		finding := model.Finding{
			Kind:                 model.FindingContextBloat,
			SessionID:            session.ID(),
			EvidenceTurns:        []int{t.Index()},
			WastedTokensEstimate: wasted,
			Confidence:           confidence,
			HumanMessage:         fmt.Sprintf("turn %d's input context (%d tokens) is a statistical outlier", t.Index(), in),
		}
		finding.WastedCostUSDEstimate = attributeCost(session, wasted, finding.EvidenceTurns)
		findings = append(findings, finding)
	}

	return findings
}

func meanStddev(samples []int) (mean, stddev float64) {
	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	mean = sum / float64(len(samples))

	var variance float64
	for _, s := range samples {
		d := float64(s) - mean
		variance += d * d
	}
	variance /= float64(len(samples))
	return mean, math.Sqrt(variance)
}

package detect

import "github.com/agentaudit/agentaudit/internal/model"

// attributeCost converts a wasted-token estimate into a wasted-cost
// estimate. It blends the session's own observed token-kind distribution
// by using the session's average realized cost per token (spec §4.6); for
// OpenCode, whose per-event cost is already known, it instead sums the
// evidence turns' recorded costs directly and ignores wastedTokens.
// Sessions with zero total usage (Codex) always attribute zero cost.
func attributeCost(session *model.Session, wastedTokens int, evidenceTurns []int) float64 {
	if session.Agent() == model.AgentOpenCode {
		var sum float64
		turns := session.Turns()
		for _, idx := range evidenceTurns {
			if idx >= 0 && idx < len(turns) {
				sum += turns[idx].CostUSD()
			}
		}
		return sum
	}

	total := session.TotalUsage().Total()
	if total == 0 || wastedTokens == 0 {
		return 0
	}
	avgCostPerToken := session.TotalCostUSD() / float64(total)
	return avgCostPerToken * float64(wastedTokens)
}

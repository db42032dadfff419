package render

import (
	"encoding/json"

	"github.com/agentaudit/agentaudit/internal/model"
)

// sessionJSON is the --format json wire shape for one session: a flat
// projection of the accessors report.Session exposes, since model.Session
// itself carries no json tags (it is not meant to be serialized directly;
// see internal/cache's own DTO for the same reason).
type sessionJSON struct {
	ID         string    `json:"id"`
	Agent      string    `json:"agent"`
	SourcePath string    `json:"source_path"`
	CWD        string    `json:"cwd"`
	ModelID    string    `json:"model_id"`
	ModelSet   []string  `json:"model_set"`
	Turns      int       `json:"turns"`
	TotalUsage usageJSON `json:"total_usage"`
	CostUSD    float64   `json:"cost_usd"`
}

type usageJSON struct {
	InputTokens      int `json:"input_tokens"`
	OutputTokens     int `json:"output_tokens"`
	CacheReadTokens  int `json:"cache_read_tokens"`
	CacheWriteTokens int `json:"cache_write_tokens"`
}

type findingJSON struct {
	Kind                  string  `json:"kind"`
	SessionID             string  `json:"session_id"`
	EvidenceTurns         []int   `json:"evidence_turns"`
	WastedTokensEstimate  int     `json:"wasted_tokens_estimate"`
	WastedCostUSDEstimate float64 `json:"wasted_cost_usd_estimate"`
	Confidence            float64 `json:"confidence"`
	HumanMessage          string  `json:"human_message"`
}

// reportJSON is the top-level --format json document for `list sessions`,
// `analyze` and `report session`; `report aggregate` uses aggregateJSON.
type reportJSON struct {
	Sessions []sessionJSON `json:"sessions"`
	Findings []findingJSON `json:"findings"`
}

func toSessionJSON(s *model.Session) sessionJSON {
	u := s.TotalUsage()
	return sessionJSON{
		ID:         s.ID(),
		Agent:      string(s.Agent()),
		SourcePath: s.SourcePath(),
		CWD:        s.CWD(),
		ModelID:    s.ModelID(),
		ModelSet:   s.ModelSet(),
		Turns:      len(s.Turns()),
		TotalUsage: usageJSON{
			InputTokens:      u.InputTokens,
			OutputTokens:     u.OutputTokens,
			CacheReadTokens:  u.CacheReadTokens,
			CacheWriteTokens: u.CacheWriteTokens,
		},
		CostUSD: s.TotalCostUSD(),
	}
}

func toFindingJSON(f model.Finding) findingJSON {
	return findingJSON{
		Kind:                  string(f.Kind),
		SessionID:             f.SessionID,
		EvidenceTurns:         f.EvidenceTurns,
		WastedTokensEstimate:  f.WastedTokensEstimate,
		WastedCostUSDEstimate: f.WastedCostUSDEstimate,
		Confidence:            f.Confidence,
		HumanMessage:          f.HumanMessage,
	}
}

// JSON marshals sessions and findings into the --format json document,
// indented for human readability the way the teacher's `list --format json`
// commands do.
func JSON(sessions []*model.Session, findings []model.Finding) ([]byte, error) {
	doc := reportJSON{
		Sessions: make([]sessionJSON, 0, len(sessions)),
		Findings: make([]findingJSON, 0, len(findings)),
	}
	for _, s := range sessions {
		doc.Sessions = append(doc.Sessions, toSessionJSON(s))
	}
	for _, f := range findings {
		doc.Findings = append(doc.Findings, toFindingJSON(f))
	}
	return json.MarshalIndent(doc, "", "  ")
}

package render

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentaudit/agentaudit/internal/model"
)

func mkSession(t *testing.T) *model.Session {
	t.Helper()
	turns := []model.Turn{
		model.NewTurn(0, model.RoleUser, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			[]model.Event{{Kind: model.EventTextMessage, TextMessage: &model.TextMessage{Role: model.RoleUser, Text: "hi"}}}, 0),
		model.NewTurn(1, model.RoleAssistant, time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC),
			[]model.Event{{Kind: model.EventUsageRecord, UsageRecord: &model.UsageRecord{
				Usage: model.Usage{InputTokens: 10, OutputTokens: 5}, ModelID: "claude-sonnet-4-20250514",
			}}}, 0.02),
	}
	sess, err := model.NewSession("sess-1", model.AgentClaude, "/tmp/sess-1.jsonl", "/home/u/proj", turns, nil)
	require.NoError(t, err)
	return sess
}

func TestSessionRow_RendersEachSessionOnItsOwnLine(t *testing.T) {
	sess := mkSession(t)
	out := SessionRow([]*model.Session{sess}, ThemeDark)
	assert.Contains(t, out, "claude")
	assert.Contains(t, out, "$0.0200")
}

func TestFindingTable_IncludesKindAndWastedEstimates(t *testing.T) {
	findings := []model.Finding{
		{Kind: model.FindingToolFanout, SessionID: "sess-1", EvidenceTurns: []int{0, 1, 2}, WastedTokensEstimate: 600, WastedCostUSDEstimate: 0.01, Confidence: 0.9},
	}
	out := FindingTable(findings, ThemeDark)
	assert.Contains(t, out, "TOOL_FANOUT")
	assert.Contains(t, out, "600")
	assert.Contains(t, out, "turns 0-2")
}

func TestJSON_RoundTripsSessionsAndFindings(t *testing.T) {
	sess := mkSession(t)
	findings := []model.Finding{
		{Kind: model.FindingRetryLoop, SessionID: "sess-1", EvidenceTurns: []int{0}, WastedTokensEstimate: 10, Confidence: 0.7},
	}

	out, err := JSON([]*model.Session{sess}, findings)
	require.NoError(t, err)

	var doc reportJSON
	require.NoError(t, json.Unmarshal(out, &doc))
	require.Len(t, doc.Sessions, 1)
	require.Len(t, doc.Findings, 1)
	assert.Equal(t, "sess-1", doc.Sessions[0].ID)
	assert.Equal(t, "claude", doc.Sessions[0].Agent)
	assert.Equal(t, "RETRY_LOOP", doc.Findings[0].Kind)
}

func TestPadOrTruncate_TruncatesOverlongStrings(t *testing.T) {
	got := padOrTruncate("this-is-a-very-long-session-path", 10)
	assert.Len(t, []rune(got), 10)
}

func TestPadOrTruncate_PadsShortStrings(t *testing.T) {
	got := padOrTruncate("hi", 5)
	assert.Equal(t, "hi   ", got)
}

func TestResolveTheme_ExplicitThemesAreNotOverridden(t *testing.T) {
	assert.Equal(t, ThemeDark, ResolveTheme("dark"))
	assert.Equal(t, ThemeLight, ResolveTheme("light"))
}

func TestItemLabel_CombinesAgentCWDAndID(t *testing.T) {
	sess := mkSession(t)
	label := ItemLabel(sess)
	assert.Contains(t, label, "claude")
	assert.Contains(t, label, "/home/u/proj")
	assert.Contains(t, label, "sess-1")
}

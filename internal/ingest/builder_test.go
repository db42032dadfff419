package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentaudit/agentaudit/internal/model"
)

func textItem(role model.Role, t time.Time, text string) RawItem {
	return RawItem{
		Role: role, Timestamp: t,
		Event: model.Event{Kind: model.EventTextMessage, TextMessage: &model.TextMessage{Role: role, Text: text}},
	}
}

func TestBuildSession_GroupsContiguousRoleRunsIntoTurns(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []RawItem{
		textItem(model.RoleUser, base, "hello"),
		textItem(model.RoleAssistant, base.Add(time.Second), "hi"),
		textItem(model.RoleAssistant, base.Add(2*time.Second), "more"),
		textItem(model.RoleUser, base.Add(3*time.Second), "thanks"),
	}

	sess, err := BuildSession("s1", model.AgentClaude, "/tmp/s1.jsonl", "/proj", items, nil, nil)
	require.NoError(t, err)
	require.Len(t, sess.Turns(), 3)

	turns := sess.Turns()
	assert.Equal(t, model.RoleUser, turns[0].Role())
	assert.Equal(t, model.RoleAssistant, turns[1].Role())
	assert.Len(t, turns[1].Events(), 2)
	assert.Equal(t, model.RoleUser, turns[2].Role())
}

func TestBuildSession_SidechainFormsSeparateTurns(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	side := textItem(model.RoleAssistant, base.Add(time.Second), "subagent step")
	side.Sidechain = true

	items := []RawItem{
		textItem(model.RoleUser, base, "go do a thing"),
		side,
		textItem(model.RoleAssistant, base.Add(2*time.Second), "done"),
	}

	sess, err := BuildSession("s1", model.AgentClaude, "/tmp/s1.jsonl", "", items, nil, nil)
	require.NoError(t, err)
	require.Len(t, sess.Turns(), 3)
	assert.Equal(t, model.RoleSidechain, sess.Turns()[1].Role())
}

func TestBuildSession_EmptyItemsIsEmptySessionError(t *testing.T) {
	_, err := BuildSession("s1", model.AgentClaude, "/tmp/s1.jsonl", "", nil, nil, nil)
	require.Error(t, err)

	ierr, ok := err.(*IngestError)
	require.True(t, ok)
	assert.Equal(t, EmptySession, ierr.Kind)
}

func TestBuildSession_UsageSumsAcrossTurnsMatchesSessionTotal(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	usageItem := func(role model.Role, t time.Time, in, out int) RawItem {
		return RawItem{
			Role: role, Timestamp: t,
			Event: model.Event{Kind: model.EventUsageRecord, UsageRecord: &model.UsageRecord{
				Usage:   model.Usage{InputTokens: in, OutputTokens: out},
				ModelID: "claude-sonnet-4-20250514",
			}},
		}
	}

	items := []RawItem{
		textItem(model.RoleUser, base, "hi"),
		usageItem(model.RoleAssistant, base.Add(time.Second), 100, 50),
		usageItem(model.RoleAssistant, base.Add(2*time.Second), 200, 75),
		textItem(model.RoleUser, base.Add(3*time.Second), "more"),
		usageItem(model.RoleAssistant, base.Add(4*time.Second), 10, 5),
	}

	sess, err := BuildSession("s1", model.AgentClaude, "/tmp/s1.jsonl", "", items, nil, nil)
	require.NoError(t, err)

	var sum model.Usage
	for _, turn := range sess.Turns() {
		sum = sum.Add(turn.Usage())
	}
	assert.Equal(t, sess.TotalUsage(), sum)
	assert.Equal(t, 440, sess.TotalUsage().Total())
}

package detect

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agentaudit/agentaudit/internal/model"
)

func mkSession(t *testing.T, agent model.AgentKind, turns []model.Turn) *model.Session {
	t.Helper()
	sess, err := model.NewSession("s1", agent, "/tmp/s1.jsonl", "/proj", turns, nil)
	require.NoError(t, err)
	return sess
}

func callEvent(id, name string, args string) model.Event {
	return model.Event{Kind: model.EventToolCall, ToolCall: &model.ToolCall{
		ID: id, Name: name, Arguments: json.RawMessage(args),
	}}
}

func resultEvent(callID string, isError bool, preview string) model.Event {
	return model.Event{Kind: model.EventToolResult, ToolResult: &model.ToolResult{
		CallID: callID, IsError: isError, ContentPreview: preview,
	}}
}

func usageEvent(in, out int, modelID string) model.Event {
	return model.Event{Kind: model.EventUsageRecord, UsageRecord: &model.UsageRecord{
		Usage:   model.Usage{InputTokens: in, OutputTokens: out},
		ModelID: modelID,
	}}
}

func textEvent(role model.Role, text string) model.Event {
	return model.Event{Kind: model.EventTextMessage, TextMessage: &model.TextMessage{Role: role, Text: text}}
}

func baseTime() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

func turnAt(index int, role model.Role, offset time.Duration, events []model.Event, costUSD float64) model.Turn {
	return model.NewTurn(index, role, baseTime().Add(offset), events, costUSD)
}

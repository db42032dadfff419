package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentaudit/agentaudit/internal/model"
)

func TestCodexAdapter_NoUsageRecordsProduceZeroUsage(t *testing.T) {
	lines := []string{
		`{"type":"message","role":"user","timestamp":"2025-01-01T00:00:00Z","content":"list files"}`,
		`{"type":"function_call","timestamp":"2025-01-01T00:00:01Z","name":"shell","call_id":"c1","arguments":"{\"command\":[\"ls\"]}"}`,
		`{"type":"function_call_output","timestamp":"2025-01-01T00:00:02Z","call_id":"c1","output":"a.go\nb.go","success":true}`,
		`{"type":"message","role":"assistant","timestamp":"2025-01-01T00:00:03Z","content":"found two files"}`,
	}
	path := writeJSONL(t, lines...)

	a := &CodexAdapter{}
	sess, err := a.Parse(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, model.AgentCodex, sess.Agent())
	assert.True(t, sess.TotalUsage().IsZero())
	assert.Equal(t, 0.0, sess.TotalCostUSD())
	assert.Equal(t, "", sess.ModelID())
}

func TestCodexAdapter_FailedCallMarkedError(t *testing.T) {
	lines := []string{
		`{"type":"function_call","timestamp":"2025-01-01T00:00:00Z","name":"shell","call_id":"c1","arguments":"{}"}`,
		`{"type":"function_call_output","timestamp":"2025-01-01T00:00:01Z","call_id":"c1","output":"permission denied","success":false}`,
	}
	path := writeJSONL(t, lines...)

	a := &CodexAdapter{}
	sess, err := a.Parse(context.Background(), path)
	require.NoError(t, err)

	var found bool
	for _, turn := range sess.Turns() {
		for _, r := range turn.ToolResults() {
			if r.CallID == "c1" {
				found = true
				assert.True(t, r.IsError)
			}
		}
	}
	assert.True(t, found, "expected to find tool result for call c1")
}

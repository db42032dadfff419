package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentaudit/agentaudit/internal/model"
	"github.com/agentaudit/agentaudit/internal/pricing"
)

// writeJSONL writes one JSONL line per string, in order.
func writeJSONL(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	var content string
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// scenarioALines reproduces spec §8 Scenario A: a Claude session with
// [user, assistant(tool_use Read path=a), tool_result(is_error, ENOENT),
// assistant(tool_use Read path=a), tool_result(ok)].
func scenarioALines() []string {
	return []string{
		`{"type":"user","timestamp":"2025-01-01T00:00:00Z","sessionId":"sess-a","cwd":"/proj","message":{"role":"user","content":[{"type":"text","text":"read file a"}]}}`,
		`{"type":"assistant","timestamp":"2025-01-01T00:00:01Z","message":{"role":"assistant","model":"claude-sonnet-4-20250514","content":[{"type":"tool_use","id":"call-1","name":"Read","input":{"path":"a"}}],"usage":{"input_tokens":100,"output_tokens":20}}}`,
		`{"type":"user","timestamp":"2025-01-01T00:00:02Z","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"call-1","content":"ENOENT","is_error":true}]}}`,
		`{"type":"assistant","timestamp":"2025-01-01T00:00:03Z","message":{"role":"assistant","model":"claude-sonnet-4-20250514","content":[{"type":"tool_use","id":"call-2","name":"Read","input":{"path":"a"}}],"usage":{"input_tokens":110,"output_tokens":25}}}`,
		`{"type":"user","timestamp":"2025-01-01T00:00:04Z","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"call-2","content":"file contents","is_error":false}]}}`,
	}
}

func TestClaudeAdapter_ParsesScenarioA(t *testing.T) {
	path := writeJSONL(t, scenarioALines()...)
	a := &ClaudeAdapter{Catalog: pricing.NewDefaultCatalog()}

	sess, err := a.Parse(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "sess-a", sess.ID())
	assert.Equal(t, model.AgentClaude, sess.Agent())
	assert.Equal(t, "/proj", sess.CWD())
	assert.Equal(t, "claude-sonnet-4-20250514", sess.ModelID())

	turns := sess.Turns()
	require.Len(t, turns, 5)

	assert.Equal(t, model.RoleUser, turns[0].Role())
	assert.Equal(t, model.RoleAssistant, turns[1].Role())
	require.Len(t, turns[1].ToolCalls(), 1)
	assert.Equal(t, "Read", turns[1].ToolCalls()[0].Name)
	assert.Equal(t, 120, turns[1].Usage().Total())

	assert.Equal(t, model.RoleUser, turns[2].Role())
	require.Len(t, turns[2].ToolResults(), 1)
	assert.True(t, turns[2].ToolResults()[0].IsError)

	assert.Equal(t, model.RoleAssistant, turns[3].Role())
	require.Len(t, turns[3].ToolCalls(), 1)
	assert.True(t, turns[3].Usage().Total() > 0)
}

func TestClaudeAdapter_MalformedLineBecomesWarningNotError(t *testing.T) {
	lines := append([]string{`not valid json at all`}, scenarioALines()...)
	path := writeJSONL(t, lines...)
	a := &ClaudeAdapter{Catalog: pricing.NewDefaultCatalog()}

	sess, err := a.Parse(context.Background(), path)
	require.NoError(t, err)

	warnings := sess.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, model.WarningMalformedLine, warnings[0].Kind)
	assert.Equal(t, 1, warnings[0].Line)
}

func TestClaudeAdapter_EmptyFileIsEmptySessionError(t *testing.T) {
	path := writeJSONL(t)
	a := &ClaudeAdapter{Catalog: pricing.NewDefaultCatalog()}

	_, err := a.Parse(context.Background(), path)
	require.Error(t, err)

	ierr, ok := err.(*IngestError)
	require.True(t, ok)
	assert.Equal(t, EmptySession, ierr.Kind)
}

func TestClaudeAdapter_FileUnreadable(t *testing.T) {
	a := &ClaudeAdapter{Catalog: pricing.NewDefaultCatalog()}
	_, err := a.Parse(context.Background(), filepath.Join(t.TempDir(), "does-not-exist.jsonl"))
	require.Error(t, err)

	ierr, ok := err.(*IngestError)
	require.True(t, ok)
	assert.Equal(t, FileUnreadable, ierr.Kind)
}

func TestClaudeAdapter_RespectsCancelledContext(t *testing.T) {
	path := writeJSONL(t, scenarioALines()...)
	a := &ClaudeAdapter{Catalog: pricing.NewDefaultCatalog()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Parse(ctx, path)
	require.Error(t, err)
	ierr, ok := err.(*IngestError)
	require.True(t, ok)
	assert.Equal(t, Cancelled, ierr.Kind)
}

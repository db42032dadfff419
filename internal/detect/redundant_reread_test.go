package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentaudit/agentaudit/internal/model"
)

func TestDetectRedundantReread_ThreeReadsNoInterveningWriteTrigger(t *testing.T) {
	turns := []model.Turn{
		turnAt(0, model.RoleAssistant, 0, []model.Event{callEvent("c1", "read", `{"path":"a.go"}`), usageEvent(0, 10, "")}, 0),
		turnAt(1, model.RoleAssistant, 1e9, []model.Event{callEvent("c2", "read", `{"path":"a.go"}`), usageEvent(0, 20, "")}, 0),
		turnAt(2, model.RoleAssistant, 2e9, []model.Event{callEvent("c3", "read", `{"path":"a.go"}`), usageEvent(0, 30, "")}, 0),
	}
	sess := mkSession(t, model.AgentClaude, turns)

	findings := DetectRedundantReread(sess)
	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, model.FindingRedundantReread, f.Kind)
	assert.Equal(t, []int{0, 1, 2}, f.EvidenceTurns)
	assert.Equal(t, 0.8, f.Confidence)
	assert.Equal(t, 50, f.WastedTokensEstimate)
}

func TestDetectRedundantReread_InterveningWriteResetsStreak(t *testing.T) {
	turns := []model.Turn{
		turnAt(0, model.RoleAssistant, 0, []model.Event{callEvent("c1", "read", `{"path":"a.go"}`)}, 0),
		turnAt(1, model.RoleAssistant, 1e9, []model.Event{callEvent("c2", "read", `{"path":"a.go"}`)}, 0),
		turnAt(2, model.RoleAssistant, 2e9, []model.Event{callEvent("c3", "edit", `{"path":"a.go"}`)}, 0),
		turnAt(3, model.RoleAssistant, 3e9, []model.Event{callEvent("c4", "read", `{"path":"a.go"}`)}, 0),
	}
	sess := mkSession(t, model.AgentClaude, turns)

	assert.Empty(t, DetectRedundantReread(sess))
}

func TestDetectRedundantReread_TwoReadsDoesNotTrigger(t *testing.T) {
	turns := []model.Turn{
		turnAt(0, model.RoleAssistant, 0, []model.Event{callEvent("c1", "read", `{"path":"a.go"}`)}, 0),
		turnAt(1, model.RoleAssistant, 1e9, []model.Event{callEvent("c2", "read", `{"path":"a.go"}`)}, 0),
	}
	sess := mkSession(t, model.AgentClaude, turns)

	assert.Empty(t, DetectRedundantReread(sess))
}

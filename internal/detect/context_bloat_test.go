package detect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentaudit/agentaudit/internal/model"
)

func TestDetectContextBloat_OutlierTurnTriggers(t *testing.T) {
	var turns []model.Turn
	for i := 0; i < 9; i++ {
		turns = append(turns, turnAt(i, model.RoleAssistant, time.Duration(i)*time.Second, []model.Event{usageEvent(100, 10, "")}, 0))
	}
	turns = append(turns, turnAt(9, model.RoleAssistant, 9*time.Second, []model.Event{usageEvent(2000, 10, "")}, 0))
	sess := mkSession(t, model.AgentClaude, turns)

	findings := DetectContextBloat(sess)
	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, model.FindingContextBloat, f.Kind)
	assert.Equal(t, []int{9}, f.EvidenceTurns)
	assert.Equal(t, 1710, f.WastedTokensEstimate)
	assert.Equal(t, 1.0, f.Confidence)
}

func TestDetectContextBloat_ScenarioDSpecDataset(t *testing.T) {
	inputs := []int{1000, 1100, 900, 12000, 1050}
	var turns []model.Turn
	for i, in := range inputs {
		turns = append(turns, turnAt(i, model.RoleAssistant, time.Duration(i)*time.Second, []model.Event{usageEvent(in, 10, "")}, 0))
	}
	sess := mkSession(t, model.AgentClaude, turns)

	findings := DetectContextBloat(sess)
	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, []int{3}, f.EvidenceTurns)
	assert.Equal(t, 8790, f.WastedTokensEstimate)
}

func TestDetectContextBloat_UniformSessionNeverTriggers(t *testing.T) {
	var turns []model.Turn
	for i := 0; i < 5; i++ {
		turns = append(turns, turnAt(i, model.RoleAssistant, time.Duration(i)*time.Second, []model.Event{usageEvent(100, 10, "")}, 0))
	}
	sess := mkSession(t, model.AgentClaude, turns)

	assert.Empty(t, DetectContextBloat(sess))
}

func TestDetectContextBloat_CodexSessionWithNoUsageNeverTriggers(t *testing.T) {
	turns := []model.Turn{
		turnAt(0, model.RoleAssistant, 0, []model.Event{textEvent(model.RoleAssistant, "hi")}, 0),
		turnAt(1, model.RoleUser, time.Second, []model.Event{textEvent(model.RoleUser, "thanks")}, 0),
	}
	sess := mkSession(t, model.AgentCodex, turns)

	assert.Empty(t, DetectContextBloat(sess))
}

package ingest

import (
	"fmt"
	"time"

	"github.com/agentaudit/agentaudit/internal/model"
	"github.com/agentaudit/agentaudit/internal/pricing"
)

// RawItem is one event recovered from a vendor trace, tagged with the role
// and timestamp its source line carried. Adapters accumulate a flat
// []RawItem in trace order and hand it to BuildSession, which groups items
// into Turns (spec §4.3 "Session builder").
type RawItem struct {
	Role      model.Role
	Timestamp time.Time
	Event     model.Event
	Sidechain bool

	// CostUSD is the event's precomputed cost, used only by adapters (like
	// OpenCode) whose vendor already supplies per-event cost. Zero means
	// "use the pricing catalog instead".
	CostUSD float64
}

// BuildSession groups a flat, trace-ordered []RawItem into Turns and
// constructs the canonical Session. A new turn starts at every role
// transition — including sidechain/non-sidechain transitions, so sidechain
// events form their own contiguous turns (spec §4.3, §9 "sidechain DAG").
// Turn timestamp is inherited from its first item.
//
// catalog may be nil: turns price purely from each item's CostUSD in that
// case (the OpenCode and Codex paths), never falling back to zero-value
// pricing silently swallowing a missing catalog elsewhere.
func BuildSession(id string, agent model.AgentKind, sourcePath, cwd string, items []RawItem, catalog *pricing.Catalog, warnings []model.Warning) (*model.Session, error) {
	if len(items) == 0 {
		return nil, newError(EmptySession, sourcePath, 0, "no turns recovered", nil)
	}

	var turns []model.Turn
	var curRole model.Role
	var curSidechain bool
	var curEvents []model.Event
	var curTimestamp time.Time
	var curCost float64
	started := false

	flush := func() {
		if !started {
			return
		}
		role := curRole
		if curSidechain {
			role = model.RoleSidechain
		}
		turns = append(turns, model.NewTurn(len(turns), role, curTimestamp, curEvents, curCost))
	}

	for _, it := range items {
		newTurn := !started || it.Role != curRole || it.Sidechain != curSidechain
		if newTurn {
			flush()
			curRole = it.Role
			curSidechain = it.Sidechain
			curEvents = nil
			curTimestamp = it.Timestamp
			curCost = 0
			started = true
		}
		curEvents = append(curEvents, it.Event)
		if it.CostUSD != 0 {
			curCost += it.CostUSD
		} else if catalog != nil && it.Event.Kind == model.EventUsageRecord && it.Event.UsageRecord != nil {
			curCost += catalog.Price(it.Event.UsageRecord.ModelID, it.Event.UsageRecord.Usage)
		}
	}
	flush()

	if len(turns) == 0 {
		return nil, newError(EmptySession, sourcePath, 0, "no turns recovered", nil)
	}

	sess, err := model.NewSession(id, agent, sourcePath, cwd, turns, warnings)
	if err != nil {
		return nil, newError(SchemaMismatch, sourcePath, 0, fmt.Sprintf("session construction: %v", err), err)
	}
	return sess, nil
}

package detect

import (
	"encoding/json"
	"strings"

	"github.com/agentaudit/agentaudit/internal/model"
)

// editTools are tool names (vendor-normalized) that mutate a file's
// contents, per spec §4.5 EDIT_CASCADE.
var editTools = map[string]bool{
	"edit":        true,
	"str_replace": true,
	"multi_edit":  true,
	"write":       true,
	"apply_patch": true,
}

// readTools are tool names that read a file's contents without mutating it,
// used by REDUNDANT_REREAD.
var readTools = map[string]bool{
	"read": true,
	"cat":  true,
	"view": true,
}

func isEditTool(name string) bool { return editTools[strings.ToLower(name)] }
func isReadTool(name string) bool { return readTools[strings.ToLower(name)] }

// argPath extracts a file path from a tool call's arguments, checking every
// key name vendors are known to use for "the file this call targets".
func argPath(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", false
	}
	for _, key := range []string{"path", "file_path", "filePath", "file", "target_file"} {
		v, ok := m[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil && s != "" {
			return s, true
		}
	}
	return "", false
}

// callRecord pairs a tool call with the turn it occurred in, for
// cross-turn scans that the per-turn Turn API does not support directly.
type callRecord struct {
	turnIdx int
	call    model.ToolCall
}

// resultByCallID indexes every ToolResult in a session by its CallID. A
// call with no matching result is simply absent from the map, and results
// with an empty CallID (the ones ingest flags with WarningDanglingResult)
// are skipped.
func resultByCallID(session *model.Session) map[string]model.ToolResult {
	out := make(map[string]model.ToolResult)
	for _, t := range session.Turns() {
		for _, r := range t.ToolResults() {
			if r.CallID != "" {
				out[r.CallID] = r
			}
		}
	}
	return out
}

// allCalls returns every tool call in the session, in trace order, tagged
// with its owning turn index.
func allCalls(session *model.Session) []callRecord {
	var out []callRecord
	for _, t := range session.Turns() {
		for _, c := range t.ToolCalls() {
			out = append(out, callRecord{turnIdx: t.Index(), call: c})
		}
	}
	return out
}

// errorClass derives ERROR_REPROMPT_CHURN's notion of "the same error":
// the first 64 bytes of a tool result's content preview, lowercased and
// trimmed.
func errorClass(preview string) string {
	s := strings.ToLower(strings.TrimSpace(preview))
	if len(s) > 64 {
		s = s[:64]
	}
	return s
}

// turnHasError reports whether a turn carries at least one erroring tool
// result, and returns the error class of the first one found.
func turnHasError(t model.Turn) (string, bool) {
	for _, r := range t.ToolResults() {
		if r.IsError {
			return errorClass(r.ContentPreview), true
		}
	}
	return "", false
}

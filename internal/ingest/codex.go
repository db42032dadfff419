package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/agentaudit/agentaudit/internal/model"
)

// CodexAdapter parses Codex CLI rollout files under
// $HOME/.codex/sessions/**/*.jsonl.
//
// Wire shape, one JSON object per line, modeled on the OpenAI Responses API
// item shapes Codex persists verbatim:
//
//	{
//	  "timestamp": "2025-01-02T03:04:05Z",
//	  "type": "message" | "function_call" | "function_call_output",
//	  "role": "user" | "assistant",
//	  "content": "...",
//	  "name": "shell",
//	  "call_id": "...",
//	  "arguments": "{\"command\":[...]}",
//	  "output": "...",
//	  "success": true
//	}
//
// Rollout files never carry per-call token counts (spec §4.3): this
// adapter emits no UsageRecord events at all, leaving session usage and
// cost at their zero values. Detectors that require token counts degrade
// per spec §4.5.
type CodexAdapter struct{}

func (a *CodexAdapter) Agent() model.AgentKind { return model.AgentCodex }

type codexLine struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Name      string `json:"name"`
	CallID    string `json:"call_id"`
	Arguments string `json:"arguments"`
	Output    string `json:"output"`
	Success   *bool  `json:"success"`
}

func (a *CodexAdapter) Parse(ctx context.Context, path string) (*model.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(FileUnreadable, path, 0, err.Error(), err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var items []RawItem
	var warnings []model.Warning
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, newError(Cancelled, path, lineNo, "context cancelled", err)
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry codexLine
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			warnings = append(warnings, model.Warning{Kind: model.WarningMalformedLine, Detail: err.Error(), Line: lineNo})
			continue
		}

		ts, err := time.Parse(time.RFC3339, entry.Timestamp)
		if err != nil {
			warnings = append(warnings, model.Warning{Kind: model.WarningMalformedLine, Detail: "bad timestamp: " + entry.Timestamp, Line: lineNo})
			continue
		}

		switch entry.Type {
		case "message":
			role := model.Role(entry.Role)
			if entry.Content == "" {
				continue
			}
			items = append(items, RawItem{
				Role: role, Timestamp: ts,
				Event: model.Event{Kind: model.EventTextMessage, TextMessage: &model.TextMessage{Role: role, Text: entry.Content}},
			})
		case "function_call":
			items = append(items, RawItem{
				Role: model.RoleAssistant, Timestamp: ts,
				Event: model.Event{Kind: model.EventToolCall, ToolCall: &model.ToolCall{
					ID: entry.CallID, Name: entry.Name, Arguments: json.RawMessage(entry.Arguments),
				}},
			})
		case "function_call_output":
			isError := entry.Success != nil && !*entry.Success
			if entry.CallID == "" {
				warnings = append(warnings, model.Warning{Kind: model.WarningDanglingResult, Detail: "function_call_output without call_id", Line: lineNo})
			}
			items = append(items, RawItem{
				Role: model.RoleToolResult, Timestamp: ts,
				Event: model.Event{Kind: model.EventToolResult, ToolResult: &model.ToolResult{
					CallID: entry.CallID, IsError: isError, ContentPreview: model.TruncatePreview(entry.Output),
				}},
			})
		default:
			payload, _ := json.Marshal(entry)
			items = append(items, RawItem{
				Role: model.Role(entry.Role), Timestamp: ts,
				Event: model.Event{Kind: model.EventMeta, Meta: &model.MetaEvent{Kind: entry.Type, Payload: payload}},
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, newError(CorruptJSON, path, lineNo, err.Error(), err)
	}

	sessionID := sessionIDFromPath(path)
	sess, err := BuildSession(sessionID, model.AgentCodex, path, "", items, nil, warnings)
	if err != nil {
		return nil, err
	}
	log.Debug("session_parsed", "agent", "codex", "path", path, "turns", len(sess.Turns()), "warnings", len(warnings))
	return sess, nil
}

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

// OpenCodeAdapter parses OpenCode's storage JSONL, one file per session
// under $HOME/.local/share/opencode/storage.
//
// Wire shape, one JSON object per line. Unlike Claude, OpenCode's own event
// types already line up with the canonical variants (spec §4.3: "Event
// types map 1:1 to canonical variants"), and every event that carries
// tokens also carries its own precomputed "cost" in USD — this adapter
// trusts that field directly and never consults the pricing catalog:
//
//	{
//	  "type": "text_message" | "tool_call" | "tool_result" | "usage_record",
//	  "role": "user" | "assistant" | "system",
//	  "timestamp": "2025-01-02T03:04:05Z",
//	  "sessionID": "...",
//	  "cwd": "...",
//	  "text": "...",
//	  "tool": {"id": "...", "name": "...", "arguments": {...}},
//	  "result": {"callID": "...", "isError": false, "content": "..."},
//	  "usage": {"inputTokens": 0, "outputTokens": 0, "cacheReadTokens": 0, "cacheWriteTokens": 0, "modelID": "..."},
//	  "cost": 0.01234
//	}
type OpenCodeAdapter struct{}

func (a *OpenCodeAdapter) Agent() model.AgentKind { return model.AgentOpenCode }

type openCodeLine struct {
	Type      string               `json:"type"`
	Role      string               `json:"role"`
	Timestamp string               `json:"timestamp"`
	SessionID string               `json:"sessionID"`
	Cwd       string               `json:"cwd"`
	Text      string               `json:"text"`
	Tool      *openCodeTool        `json:"tool"`
	Result    *openCodeToolResult  `json:"result"`
	Usage     *openCodeUsageRecord `json:"usage"`
	Cost      float64              `json:"cost"`
}

type openCodeTool struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type openCodeToolResult struct {
	CallID  string `json:"callID"`
	IsError bool   `json:"isError"`
	Content string `json:"content"`
}

type openCodeUsageRecord struct {
	InputTokens      int    `json:"inputTokens"`
	OutputTokens     int    `json:"outputTokens"`
	CacheReadTokens  int    `json:"cacheReadTokens"`
	CacheWriteTokens int    `json:"cacheWriteTokens"`
	ModelID          string `json:"modelID"`
}

func (a *OpenCodeAdapter) Parse(ctx context.Context, path string) (*model.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(FileUnreadable, path, 0, err.Error(), err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var items []RawItem
	var warnings []model.Warning
	sessionID := ""
	cwd := ""
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

		var entry openCodeLine
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			warnings = append(warnings, model.Warning{Kind: model.WarningMalformedLine, Detail: err.Error(), Line: lineNo})
			continue
		}
		if entry.SessionID != "" {
			sessionID = entry.SessionID
		}
		if entry.Cwd != "" {
			cwd = entry.Cwd
		}

		ts, err := time.Parse(time.RFC3339, entry.Timestamp)
		if err != nil {
			warnings = append(warnings, model.Warning{Kind: model.WarningMalformedLine, Detail: "bad timestamp: " + entry.Timestamp, Line: lineNo})
			continue
		}
		role := model.Role(entry.Role)

		switch entry.Type {
		case "text_message":
			items = append(items, RawItem{
				Role: role, Timestamp: ts,
				Event: model.Event{Kind: model.EventTextMessage, TextMessage: &model.TextMessage{Role: role, Text: entry.Text}},
			})
		case "tool_call":
			if entry.Tool == nil {
				warnings = append(warnings, model.Warning{Kind: model.WarningUnrecognizedType, Detail: "tool_call missing tool", Line: lineNo})
				continue
			}
			items = append(items, RawItem{
				Role: role, Timestamp: ts,
				Event: model.Event{Kind: model.EventToolCall, ToolCall: &model.ToolCall{
					ID: entry.Tool.ID, Name: entry.Tool.Name, Arguments: entry.Tool.Arguments,
				}},
			})
		case "tool_result":
			if entry.Result == nil {
				warnings = append(warnings, model.Warning{Kind: model.WarningUnrecognizedType, Detail: "tool_result missing result", Line: lineNo})
				continue
			}
			if entry.Result.CallID == "" {
				warnings = append(warnings, model.Warning{Kind: model.WarningDanglingResult, Detail: "tool_result without callID", Line: lineNo})
			}
			items = append(items, RawItem{
				Role: role, Timestamp: ts, CostUSD: entry.Cost,
				Event: model.Event{Kind: model.EventToolResult, ToolResult: &model.ToolResult{
					CallID: entry.Result.CallID, IsError: entry.Result.IsError,
					ContentPreview: model.TruncatePreview(entry.Result.Content),
				}},
			})
		case "usage_record":
			if entry.Usage == nil {
				warnings = append(warnings, model.Warning{Kind: model.WarningMissingUsage, Detail: "usage_record missing usage", Line: lineNo})
				continue
			}
			items = append(items, RawItem{
				Role: role, Timestamp: ts, CostUSD: entry.Cost,
				Event: model.Event{Kind: model.EventUsageRecord, UsageRecord: &model.UsageRecord{
					Usage: model.Usage{
						InputTokens:      entry.Usage.InputTokens,
						OutputTokens:     entry.Usage.OutputTokens,
						CacheReadTokens:  entry.Usage.CacheReadTokens,
						CacheWriteTokens: entry.Usage.CacheWriteTokens,
					},
					ModelID: entry.Usage.ModelID,
				}},
			})
		default:
			warnings = append(warnings, model.Warning{Kind: model.WarningUnrecognizedType, Detail: "unknown type: " + entry.Type, Line: lineNo})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, newError(CorruptJSON, path, lineNo, err.Error(), err)
	}

	if sessionID == "" {
		sessionID = sessionIDFromPath(path)
	}

	// catalog is nil: every OpenCode item that carries cost already has it
	// attached, per the vendor's own accounting (spec §4.3, §4.6).
	sess, err := BuildSession(sessionID, model.AgentOpenCode, path, cwd, items, nil, warnings)
	if err != nil {
		return nil, err
	}
	log.Debug("session_parsed", "agent", "opencode", "path", path, "turns", len(sess.Turns()), "warnings", len(warnings))
	return sess, nil
}

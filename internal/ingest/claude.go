package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/agentaudit/agentaudit/internal/model"
	"github.com/agentaudit/agentaudit/internal/pricing"
)

// ClaudeAdapter parses Claude Code's per-project JSONL session files.
//
// Wire shape, one JSON object per line:
//
//	{
//	  "type": "user" | "assistant" | "system" | "summary",
//	  "timestamp": "2025-01-02T03:04:05.678Z",
//	  "sessionId": "...",
//	  "cwd": "...",
//	  "isSidechain": false,
//	  "message": {
//	    "id": "...", "model": "claude-...", "role": "user"|"assistant",
//	    "content": [
//	      {"type": "text", "text": "..."},
//	      {"type": "tool_use", "id": "...", "name": "Read", "input": {...}},
//	      {"type": "tool_result", "tool_use_id": "...", "content": "...", "is_error": false}
//	    ],
//	    "usage": {
//	      "input_tokens": 0, "output_tokens": 0,
//	      "cache_creation_input_tokens": 0, "cache_read_input_tokens": 0
//	    }
//	  }
//	}
//
// Token usage lives only on assistant-role messages. Tool calls are
// assistant content blocks of type tool_use; tool results are user content
// blocks of type tool_result.
type ClaudeAdapter struct {
	Catalog *pricing.Catalog
}

func (a *ClaudeAdapter) Agent() model.AgentKind { return model.AgentClaude }

type claudeLine struct {
	Type        string         `json:"type"`
	Timestamp   string         `json:"timestamp"`
	SessionID   string         `json:"sessionId"`
	Cwd         string         `json:"cwd"`
	IsSidechain bool           `json:"isSidechain"`
	Message     *claudeMessage `json:"message"`
}

type claudeMessage struct {
	ID      string          `json:"id"`
	Model   string          `json:"model"`
	Role    string          `json:"role"`
	Content []claudeContent `json:"content"`
	Usage   *claudeUsage    `json:"usage"`
}

type claudeContent struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	Content   json.RawMessage `json:"content"`
	ToolUseID string          `json:"tool_use_id"`
	IsError   bool            `json:"is_error"`
}

type claudeUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

func (a *ClaudeAdapter) Parse(ctx context.Context, path string) (*model.Session, error) {
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

		var entry claudeLine
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

		if entry.Type != "user" && entry.Type != "assistant" {
			continue
		}
		if entry.Message == nil {
			continue
		}

		ts, err := parseClaudeTimestamp(entry.Timestamp)
		if err != nil {
			warnings = append(warnings, model.Warning{Kind: model.WarningMalformedLine, Detail: "bad timestamp: " + entry.Timestamp, Line: lineNo})
			continue
		}

		role := model.Role(entry.Type)
		items = append(items, claudeContentItems(entry.Message, role, ts, entry.IsSidechain, &warnings, lineNo)...)

		if entry.Type == "assistant" && entry.Message.Usage != nil {
			u := model.Usage{
				InputTokens:      entry.Message.Usage.InputTokens,
				OutputTokens:     entry.Message.Usage.OutputTokens,
				CacheReadTokens:  entry.Message.Usage.CacheReadInputTokens,
				CacheWriteTokens: entry.Message.Usage.CacheCreationInputTokens,
			}
			if !u.IsZero() {
				items = append(items, RawItem{
					Role:      role,
					Timestamp: ts,
					Sidechain: entry.IsSidechain,
					Event: model.Event{
						Kind: model.EventUsageRecord,
						UsageRecord: &model.UsageRecord{
							Usage:   u,
							ModelID: entry.Message.Model,
						},
					},
				})
			} else {
				warnings = append(warnings, model.Warning{Kind: model.WarningMissingUsage, Detail: "zero usage on assistant message", Line: lineNo})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, newError(CorruptJSON, path, lineNo, err.Error(), err)
	}

	if sessionID == "" {
		sessionID = sessionIDFromPath(path)
	}

	sess, err := BuildSession(sessionID, model.AgentClaude, path, cwd, items, a.Catalog, warnings)
	if err != nil {
		return nil, err
	}
	log.Debug("session_parsed", "agent", "claude", "path", path, "turns", len(sess.Turns()), "warnings", len(warnings))
	return sess, nil
}

func claudeContentItems(msg *claudeMessage, role model.Role, ts time.Time, sidechain bool, warnings *[]model.Warning, lineNo int) []RawItem {
	var out []RawItem
	for _, c := range msg.Content {
		switch c.Type {
		case "text":
			if c.Text == "" {
				continue
			}
			out = append(out, RawItem{
				Role: role, Timestamp: ts, Sidechain: sidechain,
				Event: model.Event{
					Kind:        model.EventTextMessage,
					TextMessage: &model.TextMessage{Role: role, Text: c.Text},
				},
			})
		case "tool_use":
			out = append(out, RawItem{
				Role: role, Timestamp: ts, Sidechain: sidechain,
				Event: model.Event{
					Kind: model.EventToolCall,
					ToolCall: &model.ToolCall{
						ID:        c.ID,
						Name:      c.Name,
						Arguments: c.Input,
					},
				},
			})
		case "tool_result":
			preview := model.TruncatePreview(contentToString(c.Content))
			if c.ToolUseID == "" {
				*warnings = append(*warnings, model.Warning{Kind: model.WarningDanglingResult, Detail: "tool_result without tool_use_id", Line: lineNo})
			}
			out = append(out, RawItem{
				Role: role, Timestamp: ts, Sidechain: sidechain,
				Event: model.Event{
					Kind: model.EventToolResult,
					ToolResult: &model.ToolResult{
						CallID:         c.ToolUseID,
						IsError:        c.IsError,
						ContentPreview: preview,
					},
				},
			})
		default:
			payload, _ := json.Marshal(c)
			out = append(out, RawItem{
				Role: role, Timestamp: ts, Sidechain: sidechain,
				Event: model.Event{
					Kind: model.EventMeta,
					Meta: &model.MetaEvent{Kind: c.Type, Payload: payload},
				},
			})
		}
	}
	return out
}

// contentToString accepts a tool_result content field that is either a bare
// JSON string or a structured array/object, and returns a display string
// either way.
func contentToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func parseClaudeTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, s)
}

func sessionIDFromPath(path string) string {
	base := path
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		base = path[idx+1:]
	}
	return strings.TrimSuffix(base, ".jsonl")
}

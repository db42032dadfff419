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

// PiAdapter parses Pi's JSONL session files under
// $HOME/.pi/agent/sessions/**/*.jsonl.
//
// Pi is shaped like Claude Code (role-tagged lines with a nested message
// and content blocks) but renames several keys (spec §4.3 "Pi and Kodo
// adapters"):
//
//	claude key                    -> pi key
//	message.usage.input_tokens    -> message.usage.inputTokens
//	message.usage.output_tokens   -> message.usage.outputTokens
//	message.usage.cache_creation… -> message.usage.cacheCreationTokens
//	message.usage.cache_read…     -> message.usage.cacheReadTokens
//	content[].tool_use_id         -> content[].toolCallId
//	content[].is_error            -> content[].isError
type PiAdapter struct {
	Catalog *pricing.Catalog
}

func (a *PiAdapter) Agent() model.AgentKind { return model.AgentPi }

type piLine struct {
	Type      string     `json:"type"`
	Timestamp string     `json:"timestamp"`
	SessionID string     `json:"sessionId"`
	Cwd       string     `json:"cwd"`
	Sidechain bool        `json:"sidechain"`
	Message   *piMessage `json:"message"`
}

type piMessage struct {
	Model   string      `json:"model"`
	Role    string      `json:"role"`
	Content []piContent `json:"content"`
	Usage   *piUsage    `json:"usage"`
}

type piContent struct {
	Type       string          `json:"type"`
	Text       string          `json:"text"`
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Input      json.RawMessage `json:"input"`
	Content    string          `json:"content"`
	ToolCallID string          `json:"toolCallId"`
	IsError    bool            `json:"isError"`
}

type piUsage struct {
	InputTokens        int `json:"inputTokens"`
	OutputTokens       int `json:"outputTokens"`
	CacheCreationTokens int `json:"cacheCreationTokens"`
	CacheReadTokens    int `json:"cacheReadTokens"`
}

func (a *PiAdapter) Parse(ctx context.Context, path string) (*model.Session, error) {
	return parsePiLike(ctx, path, model.AgentPi, a.Catalog)
}

// parsePiLike implements the Pi wire format directly. KodoAdapter does not
// reuse it: Kodo has its own near-identical loop in kodo.go, which
// documents its specific renames.
func parsePiLike(ctx context.Context, path string, agent model.AgentKind, catalog *pricing.Catalog) (*model.Session, error) {
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

		var entry piLine
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

		ts, err := time.Parse(time.RFC3339, entry.Timestamp)
		if err != nil {
			warnings = append(warnings, model.Warning{Kind: model.WarningMalformedLine, Detail: "bad timestamp: " + entry.Timestamp, Line: lineNo})
			continue
		}
		role := model.Role(entry.Type)

		for _, c := range entry.Message.Content {
			switch c.Type {
			case "text":
				if c.Text == "" {
					continue
				}
				items = append(items, RawItem{Role: role, Timestamp: ts, Sidechain: entry.Sidechain,
					Event: model.Event{Kind: model.EventTextMessage, TextMessage: &model.TextMessage{Role: role, Text: c.Text}}})
			case "tool_use":
				items = append(items, RawItem{Role: role, Timestamp: ts, Sidechain: entry.Sidechain,
					Event: model.Event{Kind: model.EventToolCall, ToolCall: &model.ToolCall{ID: c.ID, Name: c.Name, Arguments: c.Input}}})
			case "tool_result":
				if c.ToolCallID == "" {
					warnings = append(warnings, model.Warning{Kind: model.WarningDanglingResult, Detail: "tool_result without toolCallId", Line: lineNo})
				}
				items = append(items, RawItem{Role: role, Timestamp: ts, Sidechain: entry.Sidechain,
					Event: model.Event{Kind: model.EventToolResult, ToolResult: &model.ToolResult{
						CallID: c.ToolCallID, IsError: c.IsError, ContentPreview: model.TruncatePreview(c.Content),
					}}})
			default:
				payload, _ := json.Marshal(c)
				items = append(items, RawItem{Role: role, Timestamp: ts, Sidechain: entry.Sidechain,
					Event: model.Event{Kind: model.EventMeta, Meta: &model.MetaEvent{Kind: c.Type, Payload: payload}}})
			}
		}

		if entry.Type == "assistant" && entry.Message.Usage != nil {
			u := model.Usage{
				InputTokens:      entry.Message.Usage.InputTokens,
				OutputTokens:     entry.Message.Usage.OutputTokens,
				CacheReadTokens:  entry.Message.Usage.CacheReadTokens,
				CacheWriteTokens: entry.Message.Usage.CacheCreationTokens,
			}
			if !u.IsZero() {
				items = append(items, RawItem{Role: role, Timestamp: ts, Sidechain: entry.Sidechain,
					Event: model.Event{Kind: model.EventUsageRecord, UsageRecord: &model.UsageRecord{Usage: u, ModelID: entry.Message.Model}}})
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
	sess, err := BuildSession(sessionID, agent, path, cwd, items, catalog, warnings)
	if err != nil {
		return nil, err
	}
	log.Debug("session_parsed", "agent", string(agent), "path", path, "turns", len(sess.Turns()), "warnings", len(warnings))
	return sess, nil
}

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

// KodoAdapter parses Kodo's JSONL session files under
// $HOME/.kodo/sessions/**/*.jsonl.
//
// Kodo is a close sibling of Pi's wire shape but with its own renames
// (SPEC_FULL §4.3 "Kodo adapter mapping table"):
//
//	pi key                 -> kodo key
//	content[].toolCallId   -> content[].tool_ref
//	message.usage.inputTokens  -> message.usage.input_tokens
//	message.usage.outputTokens -> message.usage.output_tokens
//	message.usage.cacheReadTokens  -> message.usage.cache_read_tokens
//	message.usage.cacheCreationTokens -> message.usage.cache_write_tokens
type KodoAdapter struct {
	Catalog *pricing.Catalog
}

func (a *KodoAdapter) Agent() model.AgentKind { return model.AgentKodo }

type kodoLine struct {
	Type      string       `json:"type"`
	Timestamp string       `json:"timestamp"`
	SessionID string       `json:"sessionId"`
	Cwd       string       `json:"cwd"`
	Sidechain bool         `json:"sidechain"`
	Message   *kodoMessage `json:"message"`
}

type kodoMessage struct {
	Model   string        `json:"model"`
	Role    string        `json:"role"`
	Content []kodoContent `json:"content"`
	Usage   *kodoUsage    `json:"usage"`
}

type kodoContent struct {
	Type    string          `json:"type"`
	Text    string          `json:"text"`
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Input   json.RawMessage `json:"input"`
	Content string          `json:"content"`
	ToolRef string          `json:"tool_ref"`
	IsError bool            `json:"isError"`
}

type kodoUsage struct {
	InputTokens      int `json:"input_tokens"`
	OutputTokens     int `json:"output_tokens"`
	CacheReadTokens  int `json:"cache_read_tokens"`
	CacheWriteTokens int `json:"cache_write_tokens"`
}

func (a *KodoAdapter) Parse(ctx context.Context, path string) (*model.Session, error) {
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

		var entry kodoLine
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
				if c.ToolRef == "" {
					warnings = append(warnings, model.Warning{Kind: model.WarningDanglingResult, Detail: "tool_result without tool_ref", Line: lineNo})
				}
				items = append(items, RawItem{Role: role, Timestamp: ts, Sidechain: entry.Sidechain,
					Event: model.Event{Kind: model.EventToolResult, ToolResult: &model.ToolResult{
						CallID: c.ToolRef, IsError: c.IsError, ContentPreview: model.TruncatePreview(c.Content),
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
				CacheWriteTokens: entry.Message.Usage.CacheWriteTokens,
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
	sess, err := BuildSession(sessionID, model.AgentKodo, path, cwd, items, a.Catalog, warnings)
	if err != nil {
		return nil, err
	}
	log.Debug("session_parsed", "agent", "kodo", "path", path, "turns", len(sess.Turns()), "warnings", len(warnings))
	return sess, nil
}

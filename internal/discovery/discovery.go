// Package discovery enumerates on-disk session trace files per vendor
// root (spec §4.4, §6), without parsing them. It peeks at most the first
// line of a candidate file to guess a session id, the same trick the
// teacher's getFileInternalTimestamp uses to find an active session.
package discovery

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/agentaudit/agentaudit/internal/logging"
	"github.com/agentaudit/agentaudit/internal/model"
	"github.com/agentaudit/agentaudit/internal/platform"
)

var log = logging.ForComponent(logging.CompDiscovery)

// Candidate is a discovered session file, not yet parsed.
type Candidate struct {
	Agent          model.AgentKind
	Path           string
	SessionIDGuess string
	ModTime        time.Time
}

// Filters narrow discovery structurally: by file modification time and by
// working directory substring. ModelID filtering requires parsing and is
// left to the caller, per spec §4.4.
type Filters struct {
	Since time.Time
	Until time.Time
	CWD   string
}

func (f Filters) matches(modTime time.Time) bool {
	if !f.Since.IsZero() && modTime.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && modTime.After(f.Until) {
		return false
	}
	return true
}

// roots maps each agent kind to its glob pattern relative to $HOME, per
// spec §6.
var roots = map[model.AgentKind]string{
	model.AgentClaude:   filepath.Join(".claude", "projects", "**", "*.jsonl"),
	model.AgentOpenCode: filepath.Join(".local", "share", "opencode", "storage", "**"),
	model.AgentCodex:    filepath.Join(".codex", "sessions", "**", "*.jsonl"),
	model.AgentPi:       filepath.Join(".pi", "agent", "sessions", "**", "*.jsonl"),
	model.AgentKodo:     filepath.Join(".kodo", "sessions", "**", "*.jsonl"),
}

// Root returns the absolute discovery root directory for agent, given
// home. It strips the trailing glob pattern, leaving a directory to walk.
func Root(home string, agent model.AgentKind) (string, bool) {
	pattern, ok := roots[agent]
	if !ok {
		return "", false
	}
	// every pattern's non-glob prefix is the directory worth walking;
	// "**" and "*.jsonl" are applied during the walk itself.
	prefix := pattern
	if idx := strings.Index(prefix, "**"); idx >= 0 {
		prefix = prefix[:idx]
	}
	return filepath.Join(home, prefix), true
}

// Discover enumerates candidate session files for agent under its vendor
// root, applying filters structurally. It never parses a candidate beyond
// a Stat and, for the session id guess, the first line of the file.
func Discover(agent model.AgentKind, filters Filters) ([]Candidate, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	root, ok := Root(home, agent)
	if !ok {
		return nil, nil
	}

	if _, err := os.Stat(root); os.IsNotExist(err) {
		log.Debug("discovery_root_missing", "agent", string(agent), "root", root, "platform", platform.Detect().String(), "wsl", platform.IsWSL())
		return nil, nil
	}

	var out []Candidate
	walkErr := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if !isSessionFile(agent, path) {
			return nil
		}
		if !filters.matches(info.ModTime()) {
			return nil
		}
		if filters.CWD != "" && !cwdMatches(path, filters.CWD) {
			return nil
		}

		out = append(out, Candidate{
			Agent:          agent,
			Path:           path,
			SessionIDGuess: sessionIDGuess(path),
			ModTime:        info.ModTime(),
		})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	log.Debug("discover_complete", "agent", string(agent), "candidates", len(out))
	return out, nil
}

// isSessionFile reports whether path looks like a vendor session trace:
// OpenCode's root has no fixed extension, every other vendor uses .jsonl.
func isSessionFile(agent model.AgentKind, path string) bool {
	if agent == model.AgentOpenCode {
		return true
	}
	return strings.HasSuffix(path, ".jsonl")
}

// cwdMatches is a structural filter: it checks whether cwd appears as a
// substring of the file's path, the shape discovery can test without
// parsing (the canonical cwd lives inside the trace, not the filename, for
// every vendor except Claude Code's directory-name encoding).
func cwdMatches(path, cwd string) bool {
	encoded := strings.ReplaceAll(cwd, string(filepath.Separator), "-")
	return strings.Contains(path, encoded) || strings.Contains(path, cwd)
}

var uuidPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

// sessionIDGuess extracts a session id without a full parse: first it
// tries the filename (every vendor but OpenCode names files by session
// UUID), falling back to peeking the first line's "sessionId" field.
func sessionIDGuess(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if uuidPattern.MatchString(base) {
		return uuidPattern.FindString(base)
	}

	f, err := os.Open(path)
	if err != nil {
		return base
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		return base
	}

	var peek struct {
		SessionID string `json:"sessionId"`
		Session   string `json:"session_id"`
	}
	if err := json.Unmarshal(scanner.Bytes(), &peek); err != nil {
		return base
	}
	if peek.SessionID != "" {
		return peek.SessionID
	}
	if peek.Session != "" {
		return peek.Session
	}
	return base
}

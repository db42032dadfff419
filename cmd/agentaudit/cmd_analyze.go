package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/agentaudit/agentaudit/internal/detect"
	"github.com/agentaudit/agentaudit/internal/model"
	"github.com/agentaudit/agentaudit/internal/render"
)

// handleAnalyze implements `analyze {session|recent|expensive}`, spec
// §4.10/§6: ingest one or more sessions, run the detector engine against
// each, and render the resulting findings.
func (a app) handleAnalyze(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "agentaudit: usage: agentaudit analyze {session|recent|expensive} [flags]")
		return exitUnexpected
	}
	mode := args[0]
	switch mode {
	case "session", "recent", "expensive":
	default:
		fmt.Fprintf(os.Stderr, "agentaudit: unknown analyze target %q\n", mode)
		return exitUnexpected
	}

	fs := flag.NewFlagSet("analyze "+mode, flag.ExitOnError)
	var flags commonFlags
	fs.StringVar(&flags.agent, "agent", "", "filter by agent (claude|opencode|codex|pi|kodo)")
	fs.StringVar(&flags.since, "since", "", "only sessions modified at or after this RFC3339 timestamp")
	fs.StringVar(&flags.until, "until", "", "only sessions modified at or before this RFC3339 timestamp")
	fs.StringVar(&flags.cwd, "cwd", "", "filter by working-directory substring")
	fs.StringVar(&flags.modelID, "model-id", "", "filter by model id substring")
	fs.StringVar(&flags.sessionID, "session-id", "", "session id prefix; required for `analyze session`")
	fs.IntVar(&flags.limit, "limit", 0, "cap the number of sessions discovered before ranking")
	fs.IntVar(&flags.top, "top", 10, "for `analyze expensive`, how many sessions to keep after ranking")
	fs.StringVar(&flags.format, "format", "table", "output format (table|json|html; html prints the table output)")
	fs.StringVar(&flags.optimizeFor, "optimize-for", "cost", "detector weighting (cost|latency|reliability)")
	fs.StringVar(&flags.out, "out", "", "write output to a file instead of stdout")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: agentaudit analyze %s [flags]\n", mode)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args[1:]); err != nil {
		return exitUnexpected
	}

	if mode == "session" && flags.sessionID == "" {
		fmt.Fprintln(os.Stderr, "agentaudit: analyze session requires --session-id")
		return exitUnexpected
	}

	ctx := context.Background()
	sessions, err := a.discoverSessions(ctx, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "agentaudit: %v\n", err)
		return exitUnexpected
	}

	if len(sessions) == 0 {
		if mode == "session" {
			fmt.Fprintf(os.Stderr, "agentaudit: no session matched --session-id %q\n", flags.sessionID)
			return exitIngestFailure
		}
		fmt.Fprintln(os.Stderr, "agentaudit: no sessions matched")
		return exitNoMatch
	}

	switch mode {
	case "session":
		sessions = sessions[:1]
	case "recent":
		sort.Slice(sessions, func(i, j int) bool { return sessions[i].EndTime().After(sessions[j].EndTime()) })
		if flags.top > 0 && len(sessions) > flags.top {
			sessions = sessions[:flags.top]
		}
	case "expensive":
		sort.Slice(sessions, func(i, j int) bool { return sessions[i].TotalCostUSD() > sessions[j].TotalCostUSD() })
		if flags.top > 0 && len(sessions) > flags.top {
			sessions = sessions[:flags.top]
		}
	}

	profile := profileFor(flags.optimizeFor)
	var findings []model.Finding
	for _, s := range sessions {
		findings = append(findings, detect.Detect(s, profile)...)
	}

	theme := render.ResolveTheme(a.cfg.Theme)
	format := flags.format
	if format == "" {
		format = a.cfg.DefaultFormat
	}

	var out []byte
	switch format {
	case "json":
		out, err = render.JSON(sessions, findings)
	default:
		out = []byte(render.SessionRow(sessions, theme) + "\n" + render.FindingTable(findings, theme))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "agentaudit: %v\n", err)
		return exitUnexpected
	}

	if err := writeOutput(flags.out, out); err != nil {
		fmt.Fprintf(os.Stderr, "agentaudit: %v\n", err)
		return exitUnexpected
	}
	return exitSuccess
}

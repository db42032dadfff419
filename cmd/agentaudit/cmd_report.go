package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/agentaudit/agentaudit/internal/detect"
	"github.com/agentaudit/agentaudit/internal/model"
	"github.com/agentaudit/agentaudit/internal/render"
	"github.com/agentaudit/agentaudit/internal/report"
)

// handleReport implements `report {session|aggregate}`, spec §4.10/§6:
// build report.SessionReports from matched sessions and their findings,
// then either print one session's report or summarize across all of them.
func (a app) handleReport(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "agentaudit: usage: agentaudit report {session|aggregate} [flags]")
		return exitUnexpected
	}
	mode := args[0]
	if mode != "session" && mode != "aggregate" {
		fmt.Fprintf(os.Stderr, "agentaudit: unknown report target %q\n", mode)
		return exitUnexpected
	}

	fs := flag.NewFlagSet("report "+mode, flag.ExitOnError)
	var flags commonFlags
	fs.StringVar(&flags.agent, "agent", "", "filter by agent (claude|opencode|codex|pi|kodo)")
	fs.StringVar(&flags.since, "since", "", "only sessions modified at or after this RFC3339 timestamp")
	fs.StringVar(&flags.until, "until", "", "only sessions modified at or before this RFC3339 timestamp")
	fs.StringVar(&flags.cwd, "cwd", "", "filter by working-directory substring")
	fs.StringVar(&flags.modelID, "model-id", "", "filter by model id substring")
	fs.StringVar(&flags.sessionID, "session-id", "", "session id prefix; required for `report session`")
	fs.IntVar(&flags.limit, "limit", 0, "cap the number of sessions considered")
	fs.StringVar(&flags.format, "format", "table", "output format (table|json|html; html prints the table output)")
	fs.StringVar(&flags.optimizeFor, "optimize-for", "cost", "detector weighting (cost|latency|reliability)")
	fs.StringVar(&flags.out, "out", "", "write output to a file instead of stdout")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: agentaudit report %s [flags]\n", mode)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args[1:]); err != nil {
		return exitUnexpected
	}

	if mode == "session" && flags.sessionID == "" {
		fmt.Fprintln(os.Stderr, "agentaudit: report session requires --session-id")
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
	if mode == "session" {
		sessions = sessions[:1]
	}

	profile := profileFor(flags.optimizeFor)
	reports := make([]report.SessionReport, len(sessions))
	var allFindings []model.Finding
	for i, s := range sessions {
		findings := detect.Detect(s, profile)
		reports[i] = report.SessionReport{Session: s, Findings: findings}
		allFindings = append(allFindings, findings...)
	}

	theme := render.ResolveTheme(a.cfg.Theme)
	format := flags.format
	if format == "" {
		format = a.cfg.DefaultFormat
	}

	var out []byte
	if mode == "session" {
		switch format {
		case "json":
			out, err = render.JSON(sessions, allFindings)
		default:
			out = []byte(render.SessionRow(sessions, theme) + "\n" + render.FindingTable(allFindings, theme))
		}
	} else {
		agg := report.Summarize(reports)
		switch format {
		case "json":
			out, err = render.JSONAggregate(agg)
		default:
			out = []byte(render.TableAggregate(agg, theme))
		}
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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/agentaudit/agentaudit/internal/render"
)

// handleList implements `list sessions`, spec §4.10/§6: enumerate
// discovered sessions after structural and post-ingest filtering, then
// render either a table, JSON, or (interactively) a fuzzy picker.
func (a app) handleList(args []string) int {
	if len(args) == 0 || args[0] != "sessions" {
		fmt.Fprintln(os.Stderr, "agentaudit: usage: agentaudit list sessions [flags]")
		return exitUnexpected
	}

	fs := flag.NewFlagSet("list sessions", flag.ExitOnError)
	var flags commonFlags
	var pick bool
	fs.StringVar(&flags.agent, "agent", "", "filter by agent (claude|opencode|codex|pi|kodo)")
	fs.StringVar(&flags.since, "since", "", "only sessions modified at or after this RFC3339 timestamp")
	fs.StringVar(&flags.until, "until", "", "only sessions modified at or before this RFC3339 timestamp")
	fs.StringVar(&flags.cwd, "cwd", "", "filter by working-directory substring")
	fs.StringVar(&flags.modelID, "model-id", "", "filter by model id substring")
	fs.StringVar(&flags.sessionID, "session-id", "", "filter by session id prefix")
	fs.IntVar(&flags.limit, "limit", 0, "cap the number of sessions returned")
	fs.StringVar(&flags.format, "format", "table", "output format (table|json|html; html prints the table output)")
	fs.StringVar(&flags.out, "out", "", "write output to a file instead of stdout")
	fs.BoolVar(&pick, "pick", false, "open an interactive fuzzy picker instead of printing")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: agentaudit list sessions [flags]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args[1:]); err != nil {
		return exitUnexpected
	}

	sessions, err := a.discoverSessions(context.Background(), flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "agentaudit: %v\n", err)
		return exitUnexpected
	}
	if len(sessions) == 0 {
		fmt.Fprintln(os.Stderr, "agentaudit: no sessions matched")
		return exitNoMatch
	}

	theme := render.ResolveTheme(a.cfg.Theme)

	if pick {
		items := make([]render.PickerItem, len(sessions))
		for i, s := range sessions {
			items[i] = render.PickerItem{Session: s, Label: render.ItemLabel(s)}
		}
		chosen, err := render.Pick(items, theme)
		if err != nil {
			fmt.Fprintf(os.Stderr, "agentaudit: %v\n", err)
			return exitUnexpected
		}
		if chosen == nil {
			return exitSuccess
		}
		fmt.Println(render.ItemLabel(chosen))
		return exitSuccess
	}

	format := flags.format
	if format == "" {
		format = a.cfg.DefaultFormat
	}

	var out []byte
	switch format {
	case "json":
		out, err = render.JSON(sessions, nil)
	default:
		out = []byte(render.SessionRow(sessions, theme))
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

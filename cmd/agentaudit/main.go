// Command agentaudit is the outer collaborator spec.md reserves for CLI
// parsing and rendering (SPEC_FULL §1, §4.10): it wires discovery, the
// ingest registry, the parse cache, the detector engine, and the render
// package end to end, dispatching subcommands the way the teacher's own
// cmd/agent-deck/main.go does — a plain switch on os.Args[1] feeding
// flag.NewFlagSet per subcommand.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/agentaudit/agentaudit/internal/cache"
	"github.com/agentaudit/agentaudit/internal/config"
	"github.com/agentaudit/agentaudit/internal/ingest"
	"github.com/agentaudit/agentaudit/internal/logging"
	"github.com/agentaudit/agentaudit/internal/pricing"
	"github.com/agentaudit/agentaudit/internal/render"
)

// Version is the agentaudit build version.
const Version = "0.1.0"

// Exit codes, per spec §6.
const (
	exitSuccess       = 0
	exitUnexpected    = 1
	exitNoMatch       = 2
	exitIngestFailure = 3
)

// app bundles the wired-up core dependencies every subcommand needs,
// built once in main() and threaded through by value.
type app struct {
	cfg      config.Config
	catalog  *pricing.Catalog
	registry ingest.Registry
	cache    *cache.Cache
}

func main() {
	os.Exit(run())
}

// run holds everything that needs its deferred cleanup (cache close, log
// rotation flush, aggregator drain) to actually execute, which main's old
// direct os.Exit calls would have skipped — deferred funcs never run past
// an os.Exit.
func run() (code int) {
	render.InitColorProfile()

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v (using defaults)\n", cfgErr)
	}

	initLogging(cfg)
	defer logging.Shutdown()
	defer recoverAndDumpRingBuffer(cfg)

	catalog := pricing.NewDefaultCatalog()
	if entries := cfg.PricingEntries(); len(entries) > 0 {
		catalog = catalog.Merge(entries)
	}

	a := app{
		cfg:      cfg,
		catalog:  catalog,
		registry: ingest.NewRegistry(catalog),
	}

	if home, err := os.UserHomeDir(); err == nil {
		if c, err := cache.Open(filepath.Join(home, config.ConfigDirName, "cache.db")); err == nil {
			a.cache = c
			defer c.Close()
		}
	}

	args := os.Args[1:]
	if len(args) == 0 {
		printHelp()
		return exitUnexpected
	}

	var code int
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Printf("agentaudit v%s\n", Version)
		code = exitSuccess
	case "help", "--help", "-h":
		printHelp()
		code = exitSuccess
	case "capture":
		code = a.handleCapture(args[1:])
	case "list":
		code = a.handleList(args[1:])
	case "analyze":
		code = a.handleAnalyze(args[1:])
	case "report":
		code = a.handleReport(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "agentaudit: unknown command %q\n", args[0])
		printHelp()
		code = exitUnexpected
	}

	return code
}

// recoverAndDumpRingBuffer writes the in-memory log ring buffer to a crash
// file next to the regular log directory before letting a panic continue
// to unwind, the one-shot equivalent of the teacher's SIGUSR1 crash-dump
// handler (agentaudit exits after one command instead of running as a
// long-lived TUI, so there's no signal to wait for).
func recoverAndDumpRingBuffer(cfg config.Config) {
	r := recover()
	if r == nil {
		return
	}

	logDir := cfg.Logs.Dir
	if logDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			logDir = filepath.Join(home, config.ConfigDirName, "logs")
		}
	}
	if logDir != "" {
		dumpPath := filepath.Join(logDir, "crash-dump.jsonl")
		if err := logging.DumpRingBuffer(dumpPath); err != nil {
			logging.ForComponent(logging.CompCLI).Error("crash_dump_failed", slog.String("error", err.Error()))
		} else {
			logging.ForComponent(logging.CompCLI).Error("crash_dump_written", slog.String("path", dumpPath))
		}
	}

	panic(r)
}

func initLogging(cfg config.Config) {
	home, err := os.UserHomeDir()
	logDir := cfg.Logs.Dir
	if logDir == "" && err == nil {
		logDir = filepath.Join(home, config.ConfigDirName, "logs")
	}
	logging.Init(logging.Config{
		LogDir:       logDir,
		Level:        cfg.Logs.Level,
		MaxSizeMB:    cfg.Logs.MaxSizeMB,
		MaxBackups:   cfg.Logs.MaxBackups,
		MaxAgeDays:   cfg.Logs.MaxAgeDays,
		Compress:     cfg.Logs.GetCompress(),
		Debug:        cfg.Logs.Debug,
		PprofEnabled: cfg.Logs.PprofEnabled,
	})
}

func printHelp() {
	fmt.Println(`agentaudit analyzes coding-agent session transcripts for token/cost inefficiencies.

Usage:
  agentaudit <command> [flags]

Commands:
  capture                 not implemented: sessions are analyzed post hoc
  list sessions           enumerate discovered sessions
  analyze session         run detectors against one session
  analyze recent          run detectors against recently modified sessions
  analyze expensive       run detectors against the costliest sessions
  report session          render one session's findings
  report aggregate        render summed findings across matched sessions
  version                 print the build version
  help                    print this message

Flags (accepted where relevant):
  --agent {claude|opencode|codex|pi|kodo}
  --since, --until        RFC3339 timestamps
  --cwd                   working-directory substring filter
  --model-id              model id substring filter (post-ingest)
  --session-id            session id prefix (8 chars suffice)
  --limit, --top          result bounds
  --format {table|json|html}  html prints the table output
  --optimize-for {cost|latency|reliability}
  --out <path>            write rendered output to a file instead of stdout
`)
}

package main

import (
	"fmt"
	"os"
)

// handleCapture exists only to give spec §4.10's documented non-feature a
// clear error instead of falling through to "unknown command": agentaudit
// never attaches to a running agent, it only reads traces left on disk
// after the fact (spec Non-goals, real-time tailing).
func (a app) handleCapture(args []string) int {
	fmt.Fprintln(os.Stderr, "agentaudit: not implemented: sessions are analyzed post hoc")
	return exitUnexpected
}

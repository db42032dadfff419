package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/agentaudit/agentaudit/internal/model"
)

// Table column widths, mirroring the teacher's fixed const widths for its
// own `list` command output.
const (
	colSessionID = 10
	colAgent     = 10
	colCWD       = 34
	colTurns     = 7
	colCost      = 10
	colModel     = 26
)

// SessionRow renders a lipgloss-styled column table summarizing sessions,
// the shape `list sessions`, `analyze` and `report session` print under
// --format table.
func SessionRow(sessions []*model.Session, theme Theme) string {
	p := paletteFor(theme)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
	dimStyle := lipgloss.NewStyle().Foreground(p.TextDim)

	var b strings.Builder
	b.WriteString(headerStyle.Render(padOrTruncate("SESSION", colSessionID)))
	b.WriteString(" ")
	b.WriteString(headerStyle.Render(padOrTruncate("AGENT", colAgent)))
	b.WriteString(" ")
	b.WriteString(headerStyle.Render(padOrTruncate("CWD", colCWD)))
	b.WriteString(" ")
	b.WriteString(headerStyle.Render(padOrTruncate("TURNS", colTurns)))
	b.WriteString(" ")
	b.WriteString(headerStyle.Render(padOrTruncate("COST", colCost)))
	b.WriteString(" ")
	b.WriteString(headerStyle.Render(padOrTruncate("MODEL", colModel)))
	b.WriteString("\n")

	for _, s := range sessions {
		id := s.ID()
		if len(id) > 8 {
			id = id[:8]
		}
		b.WriteString(padOrTruncate(id, colSessionID))
		b.WriteString(" ")
		b.WriteString(padOrTruncate(string(s.Agent()), colAgent))
		b.WriteString(" ")
		b.WriteString(dimStyle.Render(padOrTruncate(s.CWD(), colCWD)))
		b.WriteString(" ")
		b.WriteString(padOrTruncate(fmt.Sprintf("%d", len(s.Turns())), colTurns))
		b.WriteString(" ")
		b.WriteString(padOrTruncate(fmt.Sprintf("$%.4f", s.TotalCostUSD()), colCost))
		b.WriteString(" ")
		b.WriteString(padOrTruncate(s.ModelID(), colModel))
		b.WriteString("\n")
	}

	return b.String()
}

// findingCols mirrors SessionRow's width table for Finding rows.
const (
	colKind       = 22
	colConfidence = 11
	colWasted     = 12
	colWastedCost = 11
	colEvidence   = 16
)

// FindingTable renders findings as a lipgloss-styled table, ordered as
// Detect already sorted them (table rendering never re-sorts).
func FindingTable(findings []model.Finding, theme Theme) string {
	p := paletteFor(theme)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(p.Accent)

	var b strings.Builder
	b.WriteString(headerStyle.Render(padOrTruncate("KIND", colKind)))
	b.WriteString(" ")
	b.WriteString(headerStyle.Render(padOrTruncate("CONFIDENCE", colConfidence)))
	b.WriteString(" ")
	b.WriteString(headerStyle.Render(padOrTruncate("WASTED TOK", colWasted)))
	b.WriteString(" ")
	b.WriteString(headerStyle.Render(padOrTruncate("WASTED $", colWastedCost)))
	b.WriteString(" ")
	b.WriteString(headerStyle.Render(padOrTruncate("EVIDENCE", colEvidence)))
	b.WriteString("\n")

	for _, f := range findings {
		kindStyle := lipgloss.NewStyle().Foreground(severityColor(p, f.Confidence))
		b.WriteString(kindStyle.Render(padOrTruncate(string(f.Kind), colKind)))
		b.WriteString(" ")
		b.WriteString(padOrTruncate(fmt.Sprintf("%.2f", f.Confidence), colConfidence))
		b.WriteString(" ")
		b.WriteString(padOrTruncate(fmt.Sprintf("%d", f.WastedTokensEstimate), colWasted))
		b.WriteString(" ")
		b.WriteString(padOrTruncate(fmt.Sprintf("$%.4f", f.WastedCostUSDEstimate), colWastedCost))
		b.WriteString(" ")
		b.WriteString(padOrTruncate(evidenceSummary(f.EvidenceTurns), colEvidence))
		b.WriteString("\n")
	}

	return b.String()
}

func severityColor(p palette, confidence float64) lipgloss.Color {
	switch {
	case confidence >= 0.8:
		return p.Red
	case confidence >= 0.5:
		return p.Yellow
	default:
		return p.Green
	}
}

func evidenceSummary(turns []int) string {
	if len(turns) == 0 {
		return "-"
	}
	if len(turns) == 1 {
		return fmt.Sprintf("turn %d", turns[0])
	}
	return fmt.Sprintf("turns %d-%d", turns[0], turns[len(turns)-1])
}

// padOrTruncate fits s into width columns, accounting for wide runes via
// go-runewidth the way the teacher's preview pane measures text width.
func padOrTruncate(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w > width {
		return runewidth.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-w)
}

package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agentaudit/agentaudit/internal/model"
	"github.com/agentaudit/agentaudit/internal/report"
)

// aggregateJSON is the --format json document for `report aggregate`.
type aggregateJSON struct {
	SessionCount       int                `json:"session_count"`
	TotalWastedTokens  int                `json:"total_wasted_tokens"`
	TotalWastedCostUSD float64            `json:"total_wasted_cost_usd"`
	ByKind             []aggregateKindRow `json:"by_kind"`
}

type aggregateKindRow struct {
	Kind        string  `json:"kind"`
	Count       int     `json:"count"`
	WastedToken int     `json:"wasted_tokens"`
	WastedCost  float64 `json:"wasted_cost_usd"`
}

func sortedKinds(agg report.Aggregate) []string {
	kinds := make([]string, 0, len(agg.FindingCountByKind))
	for k := range agg.FindingCountByKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	return kinds
}

// JSONAggregate marshals an Aggregate into the `report aggregate --format
// json` document.
func JSONAggregate(agg report.Aggregate) ([]byte, error) {
	doc := aggregateJSON{
		SessionCount:       agg.SessionCount,
		TotalWastedTokens:  agg.TotalWastedTokens,
		TotalWastedCostUSD: agg.TotalWastedCostUSD,
	}
	for _, k := range sortedKinds(agg) {
		kind := model.FindingKind(k)
		doc.ByKind = append(doc.ByKind, aggregateKindRow{
			Kind:        k,
			Count:       agg.FindingCountByKind[kind],
			WastedToken: agg.WastedTokensByKind[kind],
			WastedCost:  agg.WastedCostUSDByKind[kind],
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// TableAggregate renders an Aggregate as a human-readable summary,
// following the same lipgloss header styling as SessionRow/FindingTable.
func TableAggregate(agg report.Aggregate, theme Theme) string {
	pal := paletteFor(theme)
	header := lipgloss.NewStyle().Bold(true).Foreground(pal.Accent)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", header.Render("AGGREGATE"))
	fmt.Fprintf(&b, "sessions: %d    wasted tokens: %d    wasted cost: $%.4f\n\n",
		agg.SessionCount, agg.TotalWastedTokens, agg.TotalWastedCostUSD)

	fmt.Fprint(&b, header.Render(padOrTruncate("KIND", colKind))+" "+
		header.Render(padOrTruncate("COUNT", 7))+" "+
		header.Render(padOrTruncate("WASTED TOK", colWasted))+" "+
		header.Render(padOrTruncate("WASTED $", colWastedCost))+"\n")

	for _, k := range sortedKinds(agg) {
		kind := model.FindingKind(k)
		fmt.Fprintf(&b, "%s %s %s %s\n",
			padOrTruncate(k, colKind),
			padOrTruncate(fmt.Sprintf("%d", agg.FindingCountByKind[kind]), 7),
			padOrTruncate(fmt.Sprintf("%d", agg.WastedTokensByKind[kind]), colWasted),
			padOrTruncate(fmt.Sprintf("$%.4f", agg.WastedCostUSDByKind[kind]), colWastedCost),
		)
	}
	return b.String()
}

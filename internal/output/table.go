// Package output renders shot summaries and profiles for the terminal.
//
// Tables are drawn with tablewriter. Color is used only when stdout is a
// terminal and NO_COLOR is unset.
package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"

	"github.com/blackwell-systems/shotprofile/internal/analyzer"
	"github.com/blackwell-systems/shotprofile/internal/store"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorBold   = "\033[1m"
)

// IsColorEnabled reports whether ANSI color codes should be emitted.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// writerIsTTY reports whether w is a terminal file.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func summaryCells(r store.SummaryRow) []string {
	return []string{
		humanize.Comma(r.Attempts),
		humanize.Comma(r.Made),
		humanize.Comma(r.Missed),
		formatAccuracy(r.Accuracy),
	}
}

// RenderSummaryTable renders summary rows under the given key headers,
// sorted by attempts descending then keys ascending. limit <= 0 shows all.
func RenderSummaryTable(keyHeaders []string, rows []store.SummaryRow, limit int) string {
	if len(rows) == 0 {
		return "No shots found.\n"
	}

	sorted := make([]store.SummaryRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Attempts != sorted[j].Attempts {
			return sorted[i].Attempts > sorted[j].Attempts
		}
		return strings.Join(sorted[i].Keys, "\x00") < strings.Join(sorted[j].Keys, "\x00")
	})

	shown := sorted
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	var sb strings.Builder
	header := append(append([]string(nil), keyHeaders...), "Attempts", "Made", "Missed", "Accuracy")
	table := newTable(&sb, header)
	alignments := make([]int, len(header))
	for i := len(keyHeaders); i < len(header); i++ {
		alignments[i] = tablewriter.ALIGN_RIGHT
	}
	table.SetColumnAlignment(alignments)

	for _, r := range shown {
		cells := make([]string, 0, len(header))
		for i := range keyHeaders {
			cells = append(cells, r.Key(i))
		}
		table.Append(append(cells, summaryCells(r)...))
	}
	table.Render()

	if len(shown) < len(sorted) {
		fmt.Fprintf(&sb, "... %d more\n", len(sorted)-len(shown))
	}
	return sb.String()
}

// RenderProfile renders the clustered zones of a player with the best
// cluster highlighted, followed by the best-shot profile itself.
func RenderProfile(p *analyzer.Profile) string {
	if p == nil || len(p.Assignments) == 0 {
		return "No profile available.\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", colorize(colorBold, "Shot zones for "+p.Player))

	table := newTable(&sb, []string{"Zone", "Attempts", "Accuracy", "Cluster", "PCA1", "PCA2"})
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})
	for _, a := range p.Assignments {
		cluster := fmt.Sprintf("%d", a.Cluster)
		if a.Cluster == p.BestCluster {
			cluster = colorize(colorGreen, cluster+"*")
		}
		table.Append([]string{
			a.Zone(),
			humanize.Comma(a.Row.Attempts),
			formatAccuracy(a.Row.Accuracy),
			cluster,
			fmt.Sprintf("%.3f", a.PCA1),
			fmt.Sprintf("%.3f", a.PCA2),
		})
	}
	table.Render()

	if len(p.ExplainedVariance) == 2 {
		fmt.Fprintf(&sb, "\nExplained variance: PC1 %.1f%%, PC2 %.1f%%\n",
			p.ExplainedVariance[0]*100, p.ExplainedVariance[1]*100)
	}

	fmt.Fprintf(&sb, "\n%s (cluster %d, %d of %d zones)\n\n",
		colorize(colorBold, "Best shot profile"), p.BestCluster, len(p.Best), len(p.Assignments))

	best := newTable(&sb, []string{"Zone", "Attempts", "Made", "Missed", "Accuracy"})
	best.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})
	for _, r := range p.Best {
		best.Append(append([]string{r.Key(1)}, summaryCells(r)...))
	}
	best.Render()

	return sb.String()
}

// RenderExtractCounts renders the row count of each extract table in the
// order given.
func RenderExtractCounts(tables []string, counts map[string]int64) string {
	var sb strings.Builder
	table := newTable(&sb, []string{"Table", "Rows"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, name := range tables {
		n, ok := counts[name]
		cell := humanize.Comma(n)
		if !ok {
			cell = colorize(colorRed, "missing")
		}
		table.Append([]string{name, cell})
	}
	table.Render()
	return sb.String()
}

func formatAccuracy(pct float64) string {
	s := fmt.Sprintf("%.2f%%", pct)
	switch {
	case pct >= 50:
		return colorize(colorGreen, s)
	case pct >= 35:
		return colorize(colorYellow, s)
	default:
		return s
	}
}

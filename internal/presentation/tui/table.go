package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/aretw0/unitgrid/pkg/grid"
	"github.com/muesli/termenv"
)

// Cell markers used in the markdown table.
const (
	DisabledMark = "·"
	InvalidMark  = "⚠"
)

// GridMarkdown renders the project as a markdown document: a title, a summary line
// and one table row per grid row. Disabled cells show DisabledMark and invalid cells
// are prefixed with InvalidMark.
func GridMarkdown(p *domain.Project) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", escape(p.Name))

	cells := grid.VisibleCells(p.InputDataConfig, p.InputData)
	invalid := 0
	for _, row := range cells {
		for _, c := range row {
			if c.Enabled && !c.Valid {
				invalid++
			}
		}
	}
	fmt.Fprintf(&sb, "Company **%s** · status **%s** · %d rows · %d invalid cells\n\n",
		escape(p.Company), p.Status, len(cells), invalid)

	names := p.InputDataConfig.Names()
	if len(names) == 0 {
		sb.WriteString("_No columns._\n")
		return sb.String()
	}

	sb.WriteString("| # | " + strings.Join(mapStrings(names, escape), " | ") + " |\n")
	sb.WriteString("|---|" + strings.Repeat("---|", len(names)) + "\n")
	for i, row := range cells {
		out := make([]string, len(row))
		for j, c := range row {
			switch {
			case !c.Enabled:
				out[j] = DisabledMark
			case !c.Valid:
				out[j] = InvalidMark + " " + escape(c.Value)
			default:
				out[j] = escape(c.Value)
			}
		}
		fmt.Fprintf(&sb, "| %d | %s |\n", i+1, strings.Join(out, " | "))
	}
	return sb.String()
}

// Legend returns a colored key for the cell markers.
func Legend() string {
	p := termenv.ColorProfile()
	disabled := termenv.String(DisabledMark + " disabled").Foreground(p.Color("#9ca3af"))
	invalid := termenv.String(InvalidMark + " invalid").Foreground(p.Color("#f87171"))
	return fmt.Sprintf("%s   %s", disabled, invalid)
}

// Status returns a colored one-line verdict.
func Status(invalid int) string {
	p := termenv.ColorProfile()
	if invalid == 0 {
		return termenv.String("✔ grid is valid").Foreground(p.Color("#4ade80")).String()
	}
	return termenv.String(fmt.Sprintf("✘ %d invalid cells", invalid)).Foreground(p.Color("#f87171")).Bold().String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func mapStrings(in []string, fn func(string) string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fn(s)
	}
	return out
}

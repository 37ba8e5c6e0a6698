package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
)

// Printer styles text output for one writer. Colors are dropped when the
// writer is not a color terminal.
type Printer struct {
	r       *lipgloss.Renderer
	profile termenv.Profile
}

func NewPrinter(w io.Writer) Printer {
	out := termenv.NewOutput(w)
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(out.Profile)
	return Printer{r: r, profile: out.Profile}
}

// Plain reports whether ANSI styling is off.
func (p Printer) Plain() bool {
	return p.r == nil || p.profile == termenv.Ascii
}

func (p Printer) style() lipgloss.Style {
	if p.r == nil {
		return lipgloss.NewStyle()
	}
	return p.r.NewStyle()
}

func (p Printer) Bold(s string) string {
	return p.style().Bold(true).Render(s)
}

func (p Printer) Faint(s string) string {
	return p.style().Faint(true).Render(s)
}

// Status colors a normalized status word.
func (p Printer) Status(s string) string {
	st := p.style()
	switch strings.ToLower(s) {
	case "pending", "active", "urgent":
		st = st.Foreground(lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"})
	case "signed", "approved":
		st = st.Foreground(lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"})
	case "rejected":
		st = st.Foreground(lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"})
	}
	return st.Render(s)
}

// Table renders rows under headers with a rounded border.
func (p Printer) Table(headers []string, rows [][]string) string {
	header := p.style().Bold(true).Padding(0, 1)
	cell := p.style().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.style().Faint(true)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	return t.Render()
}

// KV renders aligned "key: value" lines, skipping empty values.
func (p Printer) KV(pairs ...[2]string) string {
	width := 0
	for _, kv := range pairs {
		if kv[1] != "" && len(kv[0]) > width {
			width = len(kv[0])
		}
	}
	var b strings.Builder
	for _, kv := range pairs {
		if kv[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "%s  %s\n", p.Faint(fmt.Sprintf("%-*s", width, kv[0])), kv[1])
	}
	return strings.TrimRight(b.String(), "\n")
}

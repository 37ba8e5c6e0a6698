package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// rowItem is a list row with a main line and a muted second line.
type rowItem interface {
	list.Item
	Title() string
	Description() string
}

// rowDelegate renders two-line rows with a full-width selection bar.
type rowDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newRowDelegate() rowDelegate {
	return rowDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
	}
}

func (d rowDelegate) Height() int  { return 2 }
func (d rowDelegate) Spacing() int { return 1 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		fmt.Fprint(w, "\n")
		return
	}

	title, desc := fmt.Sprint(item), ""
	if it, ok := item.(rowItem); ok {
		title, desc = it.Title(), it.Description()
	}

	style := d.normal
	marker := "  "
	if index == m.Index() {
		style = d.selected
		marker = "▌ "
	}
	line1 := style.Render(fitLine(marker+title, contentW))
	line2 := styleMuted().Render(fitLine("  "+desc, contentW))
	fmt.Fprint(w, line1+"\n"+line2)
}

// checkDelegate renders one-line rows with a selection checkbox.
type checkDelegate struct {
	checked func(list.Item) bool
}

func (d checkDelegate) Height() int  { return 1 }
func (d checkDelegate) Spacing() int { return 0 }
func (d checkDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d checkDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		fmt.Fprint(w, "")
		return
	}
	box := "[ ] "
	if d.checked != nil && d.checked(item) {
		box = "[x] "
	}
	txt := fmt.Sprint(item)
	if it, ok := item.(rowItem); ok {
		txt = it.Title()
		if desc := strings.TrimSpace(it.Description()); desc != "" {
			txt += "  " + styleMuted().Render(desc)
		}
	}
	line := fitLine(box+txt, contentW)
	if index == m.Index() {
		line = lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Render(xansi.Strip(line))
	}
	fmt.Fprint(w, line)
}

package tui

import (
	"fmt"
	"strconv"
	"strings"

	"ttd-cli/internal/model"

	"github.com/charmbracelet/bubbles/list"
)

type documentItem struct{ doc model.DocumentSummary }

func (i documentItem) FilterValue() string { return i.doc.Title }
func (i documentItem) Title() string {
	return badge(string(i.doc.Status)) + "  " + i.doc.Title
}
func (i documentItem) Description() string {
	parts := []string{"#" + strconv.Itoa(i.doc.ID)}
	if s := strings.TrimSpace(i.doc.SenderName); s != "" {
		parts = append(parts, "from "+s)
	}
	if d := model.FormatDate(i.doc.CreatedAt, model.DateShort); d != "" {
		parts = append(parts, d)
	}
	return strings.Join(parts, " · ")
}

type dispositionItem struct {
	dis model.DispositionItem
}

func (i dispositionItem) FilterValue() string { return i.dis.Subject }
func (i dispositionItem) Title() string {
	return badge(string(i.dis.Type)) + "  " + i.dis.Subject
}
func (i dispositionItem) Description() string {
	parts := []string{"#" + strconv.Itoa(i.dis.ID)}
	if s := strings.TrimSpace(i.dis.SourceLetterRef); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(i.dis.LetterNo); s != "" {
		parts = append(parts, "no. "+s)
	}
	if s := strings.TrimSpace(i.dis.Status); s != "" {
		parts = append(parts, model.Capitalize(s))
	}
	return strings.Join(parts, " · ")
}

type recipientItem struct{ r model.Recipient }

func (i recipientItem) FilterValue() string { return i.r.DisplayName }
func (i recipientItem) Title() string       { return i.r.DisplayName }
func (i recipientItem) Description() string { return i.r.DepartmentName }

func documentItems(docs []model.DocumentSummary) []list.Item {
	out := make([]list.Item, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentItem{doc: d})
	}
	return out
}

func dispositionItems(items []model.DispositionItem) []list.Item {
	out := make([]list.Item, 0, len(items))
	for _, d := range items {
		out = append(out, dispositionItem{dis: d})
	}
	return out
}

func recipientItems(rs []model.Recipient, query string) []list.Item {
	out := make([]list.Item, 0, len(rs))
	for _, r := range rs {
		if model.MatchesRecipient(r, query) {
			out = append(out, recipientItem{r: r})
		}
	}
	return out
}

func newList(items []list.Item, d list.ItemDelegate) list.Model {
	l := list.New(items, d, 0, 0)
	// Header, search and footer are drawn by the app, so keep list chrome off.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetShowFilter(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	l.KeyMap.CursorUp.SetKeys(append(cursorUpKeys, "ctrl+p")...)
	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	l.KeyMap.CursorDown.SetKeys(append(cursorDownKeys, "ctrl+n")...)
	// Left/right change the backend page, not the list's own page.
	l.KeyMap.PrevPage.SetKeys("pgup")
	l.KeyMap.NextPage.SetKeys("pgdown")
	return l
}

func pageLabel(page, total int) string {
	return fmt.Sprintf("page %d of %d", page, total)
}

package tui

import (
	"fmt"
	"strconv"
	"strings"

	"ttd-cli/internal/listing"
	"ttd-cli/internal/markdown"
	"ttd-cli/internal/model"
	"ttd-cli/internal/nav"
	"ttd-cli/internal/session"
	"ttd-cli/internal/workflow"

	"github.com/charmbracelet/lipgloss"
)

const maxContentW = 100

func (m appModel) contentWidth() int {
	w := m.width - 4
	if w > maxContentW {
		w = maxContentW
	}
	if w < 20 {
		w = 20
	}
	return w
}

// bodyHeight is what is left between the header and the footer.
func (m appModel) bodyHeight() int {
	h := m.height - 5
	if h < 3 {
		h = 3
	}
	return h
}

func (m appModel) View() string {
	if m.width == 0 {
		return ""
	}
	w := m.contentWidth()

	var body string
	switch {
	case m.guard.Restoring():
		body = m.renderLoading("Restoring session…")
	case m.loc.Route == nav.RouteLogin:
		body = m.renderLogin()
	default:
		body = m.renderRoute()
	}

	if m.modal != modalNone {
		body = lipgloss.Place(w, m.bodyHeight(), lipgloss.Center, lipgloss.Center, m.renderModal())
	}

	out := strings.Join([]string{
		m.renderHeader(w),
		"",
		fitBlock(body, w, m.bodyHeight()),
		m.renderFlash(w),
		m.renderFooter(w),
	}, "\n")
	return lipgloss.NewStyle().Padding(0, 2).Render(out)
}

func (m appModel) renderLoading(label string) string {
	return "\n" + m.spinner.View() + " " + styleMuted().Render(label)
}

func (m appModel) renderHeader(w int) string {
	title := styleTitle().Render("TTD")
	if m.guard.State() != nav.Authenticated || m.guard.Restoring() {
		return fitLine(title+"  "+styleChrome().Render("Document signing"), w)
	}
	tabs := []struct {
		key   string
		label string
		route nav.Route
	}{
		{"1", "Home", nav.RouteHome},
		{"2", "Documents", nav.RouteDocuments},
		{"3", "Dispositions", nav.RouteDispositions},
		{"4", "Profile", nav.RouteProfile},
	}
	active := m.loc.Route
	switch active {
	case nav.RouteDocument:
		active = nav.RouteDocuments
	case nav.RouteDisposition:
		active = nav.RouteDispositions
	}
	parts := []string{title, " "}
	for _, t := range tabs {
		label := t.key + " " + t.label
		if t.route == nav.RouteDispositions && m.dis.Notice() > 0 {
			label += fmt.Sprintf(" (%d)", m.dis.Notice())
		}
		parts = append(parts, styleTab(t.route == active).Render(label))
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if id := m.deps.Sessions.Current().Identity; id != nil {
		name := styleChrome().Render(id.DisplayName())
		gap := w - lipgloss.Width(line) - lipgloss.Width(name)
		if gap > 1 {
			line += strings.Repeat(" ", gap) + name
		}
	}
	return fitLine(line, w)
}

func (m appModel) renderFlash(w int) string {
	if m.flashText == "" {
		return ""
	}
	st := lipgloss.NewStyle().Padding(0, 1).Foreground(colorAccentFg).Background(colorFlashInfoBg)
	if m.flashError {
		st = st.Background(colorFlashErrorBg)
	}
	return st.Render(fitLine(m.flashText, w-2))
}

func (m appModel) renderFooter(w int) string {
	var help string
	switch {
	case m.modal != modalNone:
		help = ""
	case m.guard.Restoring():
		help = "q: quit"
	case m.loc.Route == nav.RouteLogin:
		help = "tab: next field   enter: sign in   esc: quit"
	case m.searching:
		help = "type to filter this page   enter: done   esc: clear"
	default:
		switch m.loc.Route {
		case nav.RouteHome:
			help = "d: documents   i: dispositions   r: refresh   L: sign out   q: quit"
		case nav.RouteDocuments, nav.RouteDispositions:
			help = "enter: open   /: search   ←/→: page   r: refresh   esc: back   q: quit"
		case nav.RouteDocument:
			help = "↑/↓: scroll   r: refresh   esc: back"
			if m.docWF.CanAct() {
				help = "s: sign   x: reject   " + help
			}
		case nav.RouteDisposition:
			help = "f: forward   ↑/↓: scroll   r: refresh   esc: back"
		case nav.RouteProfile:
			help = "L: sign out   esc: back   q: quit"
		}
	}
	return styleMuted().Render(fitLine(help, w))
}

func (m appModel) renderRoute() string {
	switch m.loc.Route {
	case nav.RouteHome:
		return m.renderHome()
	case nav.RouteDocuments:
		return m.renderDocumentList()
	case nav.RouteDispositions:
		return m.renderDispositionList()
	case nav.RouteDocument:
		return m.renderDocument()
	case nav.RouteDisposition:
		return m.renderDisposition()
	case nav.RouteProfile:
		return m.renderProfile()
	}
	return ""
}

func (m appModel) renderLogin() string {
	fieldW := 40
	submit := renderButtons([]string{"Sign in"}, -1)
	if m.loginFocus == loginFocusSubmit {
		submit = renderButtons([]string{"Sign in"}, 0)
	}
	if m.loggingIn {
		submit = m.spinner.View() + " signing in…"
	}
	lines := []string{
		styleTitle().Render("Sign in"),
		styleMuted().Render("Use your work account to sign documents and handle dispositions."),
		"",
		renderField(fieldW, "Email or username", m.emailInput.View(), m.loginFocus == loginFocusEmail),
		"",
		renderField(fieldW, "Password", m.passwordInput.View(), m.loginFocus == loginFocusPassword),
		"",
		submit,
	}
	if m.loginErr != "" {
		lines = append(lines, "", styleError().Render(m.loginErr))
	}
	return strings.Join(lines, "\n")
}

func statCard(label string, n int, color lipgloss.TerminalColor) string {
	num := lipgloss.NewStyle().Bold(true).Foreground(color).Render(strconv.Itoa(n))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorModalBorder).
		Padding(0, 2).
		Render(num + "\n" + styleMuted().Render(label))
}

func (m appModel) renderHome() string {
	name := ""
	if id := m.deps.Sessions.Current().Identity; id != nil {
		name = id.DisplayName()
	}
	lines := []string{styleTitle().Render("Welcome, " + name)}

	if !m.docs.Loaded() && m.docs.Loading() {
		lines = append(lines, m.renderLoading("Loading documents…"))
		return strings.Join(lines, "\n")
	}

	s := listing.Stats(m.docs.Items())
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		statCard("Pending", s.Pending, colorPending), " ",
		statCard("Signed", s.Signed, colorSigned), " ",
		statCard("Rejected", s.Rejected, colorRejected), " ",
		statCard("Total", s.Total, colorSurfaceFg),
	)
	lines = append(lines, "", cards, "")

	if n := m.dis.Notice(); n > 0 {
		lines = append(lines, badge("urgent")+" "+fmt.Sprintf("%d unread dispositions", n), "")
	}

	pending := listing.Pending(m.docs.Items())
	lines = append(lines, styleChrome().Render("Awaiting your signature"))
	if len(pending) == 0 {
		lines = append(lines, styleMuted().Render("Nothing to sign."))
	}
	for i, d := range pending {
		if i == 5 {
			lines = append(lines, styleMuted().Render(fmt.Sprintf("…and %d more", len(pending)-5)))
			break
		}
		lines = append(lines, fmt.Sprintf("  #%d  %s  %s", d.ID, d.Title, styleMuted().Render(d.SenderName)))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) renderSearchLine() string {
	if m.searching {
		return m.searchInput.View()
	}
	q := strings.TrimSpace(m.docs.Search())
	if m.loc.Route == nav.RouteDispositions {
		q = strings.TrimSpace(m.dis.Search())
	}
	if q == "" {
		return styleMuted().Render("/ to search this page")
	}
	return styleChrome().Render("filter: " + q)
}

func renderPageLinks(links []listing.PageLink) string {
	parts := make([]string, 0, len(links))
	for _, l := range links {
		switch {
		case l.Gap:
			parts = append(parts, styleMuted().Render("…"))
		case l.Current:
			parts = append(parts, styleTab(true).Render(strconv.Itoa(l.Page)))
		default:
			parts = append(parts, styleChrome().Render(strconv.Itoa(l.Page)))
		}
	}
	return strings.Join(parts, " ")
}

func (m appModel) renderDocumentList() string {
	head := m.renderSearchLine()
	var body string
	switch {
	case !m.docs.Loaded() && m.docs.Loading():
		body = m.renderLoading("Loading documents…")
	case len(m.docList.Items()) == 0 && m.docs.Search() != "":
		body = styleMuted().Render("No document on this page matches the search.")
	case len(m.docList.Items()) == 0:
		body = styleMuted().Render("No documents.")
	default:
		body = m.docList.View()
	}
	foot := renderPageLinks(m.docs.PageLinks()) + "  " + styleMuted().Render(pageLabel(m.docs.CurrentPage(), m.docs.TotalPages()))
	if m.docs.Loaded() && m.docs.Loading() {
		foot += "  " + m.spinner.View()
	}
	if m.listErr != "" {
		foot += "  " + styleError().Render(m.listErr)
	}
	return head + "\n" + fitBlock(body, m.contentWidth(), m.bodyHeight()-2) + "\n" + fitLine(foot, m.contentWidth())
}

func (m appModel) renderDispositionList() string {
	head := m.renderSearchLine()
	if n := m.dis.Notice(); n > 0 {
		head += "   " + badge("urgent") + fmt.Sprintf(" %d unread", n)
	}
	var body string
	switch {
	case !m.dis.Loaded() && m.dis.Loading():
		body = m.renderLoading("Loading dispositions…")
	case len(m.disList.Items()) == 0 && m.dis.Search() != "":
		body = styleMuted().Render("No disposition on this page matches the search.")
	case len(m.disList.Items()) == 0:
		body = styleMuted().Render("No dispositions.")
	default:
		body = m.disList.View()
	}
	foot := renderPageLinks(m.dis.PageLinks()) + "  " + styleMuted().Render(pageLabel(m.dis.CurrentPage(), m.dis.TotalPages()))
	if m.dis.Loaded() && m.dis.Loading() {
		foot += "  " + m.spinner.View()
	}
	if m.listErr != "" {
		foot += "  " + styleError().Render(m.listErr)
	}
	return head + "\n" + fitBlock(body, m.contentWidth(), m.bodyHeight()-2) + "\n" + fitLine(foot, m.contentWidth())
}

func kvLines(pairs ...[2]string) string {
	keyW := 0
	for _, p := range pairs {
		if strings.TrimSpace(p[1]) != "" && len(p[0]) > keyW {
			keyW = len(p[0])
		}
	}
	var lines []string
	for _, p := range pairs {
		if strings.TrimSpace(p[1]) == "" {
			continue
		}
		lines = append(lines, styleMuted().Render(fmt.Sprintf("%-*s", keyW, p[0]))+"  "+p[1])
	}
	return strings.Join(lines, "\n")
}

func (m appModel) renderDetailState(st workflow.State, what string) (string, bool) {
	switch st {
	case workflow.Idle, workflow.Loading:
		return m.renderLoading("Loading " + what + "…"), true
	case workflow.NotFound:
		return styleTitle().Render(model.Capitalize(what)+" not found") + "\n" +
			styleMuted().Render("It may have been removed or is not addressed to you. esc to go back."), true
	case workflow.Failed:
		return styleError().Render("Could not load the "+what+": "+m.detailErr) + "\n" +
			styleMuted().Render("r to retry, esc to go back."), true
	}
	return "", false
}

func (m appModel) scrolled(s string) string {
	out, _ := scrollLines(s, m.detailScroll, m.bodyHeight())
	return out
}

func (m appModel) renderDocument() string {
	st := m.docWF.State()
	if s, ok := m.renderDetailState(st, "document"); ok {
		return s
	}
	d, _ := m.docWF.Detail()
	w := m.contentWidth()

	head := styleTitle().Render(d.Title) + "  " + badge(string(d.Status))
	switch st {
	case workflow.Signing:
		head += "  " + m.spinner.View() + " signing…"
	case workflow.Rejecting:
		head += "  " + m.spinner.View() + " rejecting…"
	}
	meta := kvLines(
		[2]string{"ID", strconv.Itoa(d.ID)},
		[2]string{"From", d.SenderName},
		[2]string{"Department", d.SenderDepartment},
		[2]string{"Date", model.FormatDate(d.CreatedAt, model.DateLong)},
		[2]string{"Type", d.SigningType},
		[2]string{"File", d.FileURL},
	)
	parts := []string{head, "", meta}
	if desc := markdown.Render(d.Description, w, m.deps.Config.MarkdownStyle()); desc != "" {
		parts = append(parts, "", desc)
	}
	if !d.Actionable(m.deps.Sessions.Current()) && d.Status == model.StatusPending {
		parts = append(parts, "", styleMuted().Render("Waiting for the recipient to act."))
	}
	return m.scrolled(strings.Join(parts, "\n"))
}

func (m appModel) renderDisposition() string {
	st := m.disWF.State()
	if s, ok := m.renderDetailState(st, "disposition"); ok {
		return s
	}
	d, _ := m.disWF.Detail()
	w := m.contentWidth()

	head := styleTitle().Render(d.Subject) + "  " + badge(string(d.Type)) + "  " + styleChrome().Render(model.Capitalize(d.Status))
	if st == workflow.Forwarding {
		head += "  " + m.spinner.View() + " forwarding…"
	}
	meta := kvLines(
		[2]string{"ID", strconv.Itoa(d.ID)},
		[2]string{"From letter", d.SourceLetterRef},
		[2]string{"Letter no", d.LetterNo},
		[2]string{"Letter date", model.FormatDate(d.LetterDate, model.DateLong)},
		[2]string{"Accepted", model.FormatDate(d.AcceptDate, model.DateLong)},
		[2]string{"Agenda no", d.AgendaNo},
		[2]string{"CC", d.CC},
		[2]string{"Sent by", d.Originator.Name},
		[2]string{"Department", d.Originator.DepartmentName},
		[2]string{"File", d.FileURL},
	)
	parts := []string{head, "", meta}
	if instr := markdown.Render(d.Instruction, w, m.deps.Config.MarkdownStyle()); instr != "" {
		parts = append(parts, "", styleChrome().Render("Instruction"), instr)
	}
	return m.scrolled(strings.Join(parts, "\n"))
}

func (m appModel) renderProfile() string {
	sess := m.deps.Sessions.Current()
	if sess.Identity == nil {
		return ""
	}
	id := sess.Identity
	pairs := [][2]string{
		{"Name", id.DisplayName()},
		{"Username", id.Username},
		{"Email", id.Email},
		{"Department", id.SKPDName},
		{"Level", id.LevelID},
	}
	if !sess.LoggedInAt.IsZero() {
		pairs = append(pairs, [2]string{"Signed in", sess.LoggedInAt.Local().Format("02 Jan 2006 15:04")})
	}
	if exp, ok := session.TokenExpiry(sess.Token); ok {
		pairs = append(pairs, [2]string{"Token expires", exp.Local().Format("02 Jan 2006 15:04")})
	}
	return styleTitle().Render("Profile") + "\n\n" + kvLines(pairs...)
}

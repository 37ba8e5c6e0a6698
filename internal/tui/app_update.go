package tui

import (
	"errors"
	"strings"

	"ttd-cli/internal/listing"
	"ttd-cli/internal/nav"
	"ttd-cli/internal/workflow"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.flashText = ""
			m.flashError = false
		}
		return m, nil

	case restoredMsg:
		if msg.err != nil {
			m.log.Warn("restore session", zap.Error(msg.err))
		}
		m.guard.Restored(msg.sess.Authenticated())
		return m, m.navigate(m.pending)

	case loginDoneMsg:
		m.loggingIn = false
		if msg.err != nil {
			m.loginErr = msg.err.Error()
			return m, m.showFlash(msg.err.Error(), true)
		}
		m.loginErr = ""
		m.passwordInput.SetValue("")
		d := m.guard.OnLogin()
		name := ""
		if msg.sess.Identity != nil {
			name = msg.sess.Identity.DisplayName()
		}
		return m, tea.Batch(m.enter(d.To), m.showFlash("Signed in as "+name, false))

	case logoutDoneMsg:
		// The in-memory session is gone even when persisting failed.
		d := m.guard.OnLogout()
		m.resetAfterLogout()
		cmd := m.enter(d.To)
		if msg.err != nil {
			m.log.Warn("logout", zap.Error(msg.err))
			return m, tea.Batch(cmd, m.showFlash("Signed out, but the stored session could not be cleared: "+msg.err.Error(), true))
		}
		return m, tea.Batch(cmd, m.showFlash("Signed out", false))

	case documentsLoadedMsg:
		if msg.ctl != m.docs {
			return m, nil
		}
		err := m.docs.Apply(msg.req, msg.page, msg.err)
		if errors.Is(err, listing.ErrStale) {
			return m, nil
		}
		if err != nil {
			m.listErr = err.Error()
			return m, m.showFlash(err.Error(), true)
		}
		m.listErr = ""
		m.syncDocumentList()
		return m, nil

	case dispositionsLoadedMsg:
		if msg.ctl != m.dis {
			return m, nil
		}
		err := m.dis.Apply(msg.req, msg.page, msg.err)
		if errors.Is(err, listing.ErrStale) {
			return m, nil
		}
		if err != nil {
			m.listErr = err.Error()
			return m, m.showFlash(err.Error(), true)
		}
		m.listErr = ""
		m.syncDispositionList()
		return m, nil

	case documentOpenedMsg:
		if errors.Is(msg.err, workflow.ErrStale) || m.loc != (nav.Location{Route: nav.RouteDocument, ID: msg.id}) {
			return m, nil
		}
		if msg.err != nil {
			m.detailErr = msg.err.Error()
			return m, m.showFlash(msg.err.Error(), true)
		}
		m.detailErr = ""
		return m, nil

	case dispositionOpenedMsg:
		if errors.Is(msg.err, workflow.ErrStale) || m.loc != (nav.Location{Route: nav.RouteDisposition, ID: msg.id}) {
			return m, nil
		}
		if msg.err != nil {
			m.detailErr = msg.err.Error()
			return m, m.showFlash(msg.err.Error(), true)
		}
		m.detailErr = ""
		return m, nil

	case recipientsLoadedMsg:
		if m.modal != modalForward || msg.entry != m.forwardEntry || errors.Is(msg.err, workflow.ErrStale) {
			return m, nil
		}
		m.recipientsBusy = false
		if msg.err != nil {
			m.modalErr = msg.err.Error()
			return m, m.showFlash(msg.err.Error(), true)
		}
		m.recipients = msg.recipients
		m.syncRecipientList()
		return m, nil

	case actionDoneMsg:
		m.submitting = false
		if errors.Is(msg.err, workflow.ErrStale) {
			return m, nil
		}
		if msg.err != nil {
			// The form stays open so the user can correct and retry.
			m.modalErr = msg.err.Error()
			return m, m.showFlash(msg.err.Error(), true)
		}
		if msg.outcome.RefreshErr != nil {
			m.log.Warn("refresh after action", zap.Error(msg.outcome.RefreshErr))
		}
		m.closeModal()
		text := strings.TrimSpace(msg.outcome.Message)
		if text == "" {
			text = defaultActionMessage(msg.kind)
		}
		return m, tea.Batch(
			m.showFlash(text, false),
			m.returnToListCmd(msg.outcome.ReturnAfter, m.navSeq),
		)

	case returnToListMsg:
		if msg.navSeq != m.navSeq {
			return m, nil
		}
		if to, ok := m.backTarget(); ok && (m.loc.Route == nav.RouteDocument || m.loc.Route == nav.RouteDisposition) {
			return m, m.navigate(to)
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m.updateFocusedInput(msg)
}

func defaultActionMessage(k actionKind) string {
	switch k {
	case actionSign:
		return "Document signed"
	case actionReject:
		return "Document rejected"
	default:
		return "Disposition forwarded"
	}
}

func (m *appModel) resize() {
	bodyH := m.bodyHeight()
	w := m.contentWidth()
	m.docList.SetSize(w, bodyH-2)
	m.disList.SetSize(w, bodyH-2)
	m.searchInput.Width = w - 4

	mw := modalBodyWidth(m.width)
	m.passInput.Width = mw - 4
	m.recipientQuery.Width = mw - 4
	m.reasonArea.SetWidth(mw - 2)
	m.instruction.SetWidth(mw - 2)
	m.recipientList.SetSize(mw, 6)
	m.emailInput.Width = 36
	m.passwordInput.Width = 36
}

func (m appModel) updateKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if k.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.modal != modalNone {
		return m.updateModalKey(k)
	}
	if m.guard.Restoring() {
		if k.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}
	if m.loc.Route == nav.RouteLogin {
		return m.updateLoginKey(k)
	}
	if m.searching {
		return m.updateSearchKey(k)
	}

	switch k.String() {
	case "q":
		return m, tea.Quit
	case "1":
		return m, m.navigate(nav.Home)
	case "2":
		return m, m.navigate(nav.Location{Route: nav.RouteDocuments})
	case "3":
		return m, m.navigate(nav.Location{Route: nav.RouteDispositions})
	case "4":
		return m, m.navigate(nav.Location{Route: nav.RouteProfile})
	case "L":
		m.modal = modalConfirmLogout
		m.confirmFocus = confirmFocusCancel
		return m, nil
	case "esc", "backspace":
		if to, ok := m.backTarget(); ok {
			return m, m.navigate(to)
		}
		return m, nil
	}

	switch m.loc.Route {
	case nav.RouteHome:
		switch k.String() {
		case "d":
			return m, m.navigate(nav.Location{Route: nav.RouteDocuments})
		case "i":
			return m, m.navigate(nav.Location{Route: nav.RouteDispositions})
		case "r":
			return m, tea.Batch(m.reloadDocuments(), m.reloadDispositions())
		}
	case nav.RouteDocuments, nav.RouteDispositions:
		return m.updateListKey(k)
	case nav.RouteDocument:
		return m.updateDocumentKey(k)
	case nav.RouteDisposition:
		return m.updateDispositionKey(k)
	}
	return m, nil
}

func (m appModel) updateLoginKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "down":
		m.focusLogin((m.loginFocus + 1) % 3)
		return m, nil
	case "shift+tab", "up":
		m.focusLogin((m.loginFocus + 2) % 3)
		return m, nil
	case "enter":
		if m.loginFocus == loginFocusEmail {
			m.focusLogin(loginFocusPassword)
			return m, nil
		}
		if m.loggingIn {
			return m, nil
		}
		m.loggingIn = true
		m.loginErr = ""
		return m, m.loginCmd(strings.TrimSpace(m.emailInput.Value()), m.passwordInput.Value())
	}

	var cmd tea.Cmd
	switch m.loginFocus {
	case loginFocusEmail:
		m.emailInput, cmd = m.emailInput.Update(k)
	case loginFocusPassword:
		m.passwordInput, cmd = m.passwordInput.Update(k)
	}
	return m, cmd
}

func (m *appModel) startSearch() tea.Cmd {
	m.searching = true
	switch m.loc.Route {
	case nav.RouteDocuments:
		m.searchInput.SetValue(m.docs.Search())
	case nav.RouteDispositions:
		m.searchInput.SetValue(m.dis.Search())
	}
	m.searchInput.CursorEnd()
	return m.searchInput.Focus()
}

func (m *appModel) stopSearch() {
	m.searching = false
	m.searchInput.Blur()
}

func (m appModel) updateSearchKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "esc":
		m.stopSearch()
		m.searchInput.SetValue("")
		m.applySearch("")
		return m, nil
	case "enter":
		m.stopSearch()
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(k)
	m.applySearch(m.searchInput.Value())
	return m, cmd
}

// applySearch narrows the loaded page. It never fetches.
func (m *appModel) applySearch(q string) {
	switch m.loc.Route {
	case nav.RouteDocuments:
		m.docs.SetSearch(q)
		m.syncDocumentList()
	case nav.RouteDispositions:
		m.dis.SetSearch(q)
		m.syncDispositionList()
	}
}

func (m appModel) updateListKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	onDocs := m.loc.Route == nav.RouteDocuments
	page, total := m.dis.CurrentPage(), m.dis.TotalPages()
	if onDocs {
		page, total = m.docs.CurrentPage(), m.docs.TotalPages()
	}

	switch k.String() {
	case "/":
		return m, m.startSearch()
	case "r":
		if onDocs {
			return m, m.reloadDocuments()
		}
		return m, m.reloadDispositions()
	case "left", "h", "[":
		if !listing.HasPrev(page) {
			return m, nil
		}
		return m, m.goToPage(page - 1)
	case "right", "l", "]":
		if !listing.HasNext(page, total) {
			return m, nil
		}
		return m, m.goToPage(page + 1)
	case "enter":
		if onDocs {
			if it, ok := m.docList.SelectedItem().(documentItem); ok {
				return m, m.navigate(nav.Location{Route: nav.RouteDocument, ID: it.doc.ID})
			}
			return m, nil
		}
		if it, ok := m.disList.SelectedItem().(dispositionItem); ok {
			return m, m.navigate(nav.Location{Route: nav.RouteDisposition, ID: it.dis.ID})
		}
		return m, nil
	}

	var cmd tea.Cmd
	if onDocs {
		m.docList, cmd = m.docList.Update(k)
	} else {
		m.disList, cmd = m.disList.Update(k)
	}
	return m, cmd
}

// goToPage changes the backend page; the search text is cleared.
func (m *appModel) goToPage(p int) tea.Cmd {
	m.searchInput.SetValue("")
	if m.loc.Route == nav.RouteDocuments {
		req := m.docs.SetPage(p)
		m.syncDocumentList()
		return m.fetchDocumentsCmd(req)
	}
	req := m.dis.SetPage(p)
	m.syncDispositionList()
	return m.fetchDispositionsCmd(req)
}

func (m *appModel) syncDocumentList() {
	m.docList.SetItems(documentItems(m.docs.Visible()))
}

func (m *appModel) syncDispositionList() {
	m.disList.SetItems(dispositionItems(m.dis.Visible()))
}

func (m appModel) updateDocumentKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "s", "x":
		if m.docWF.State() != workflow.Loaded {
			return m, nil
		}
		if !m.docWF.CanAct() {
			return m, m.showFlash(workflow.ErrNotActionable.Error(), true)
		}
		if k.String() == "s" {
			return m, m.openSignModal()
		}
		return m, m.openRejectModal()
	case "r":
		return m, m.openDocumentCmd(m.loc.ID)
	case "up", "k":
		if m.detailScroll > 0 {
			m.detailScroll--
		}
	case "down", "j":
		m.detailScroll++
	}
	return m, nil
}

func (m appModel) updateDispositionKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "f":
		if m.disWF.State() != workflow.Loaded {
			return m, nil
		}
		return m, m.openForwardModal()
	case "r":
		return m, m.openDispositionCmd(m.loc.ID)
	case "up", "k":
		if m.detailScroll > 0 {
			m.detailScroll--
		}
	case "down", "j":
		m.detailScroll++
	}
	return m, nil
}

// updateFocusedInput forwards non-key messages (cursor blink) to whatever
// input has focus.
func (m appModel) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.modal == modalSign:
		m.passInput, cmd = m.passInput.Update(msg)
	case m.modal == modalReject:
		m.reasonArea, cmd = m.reasonArea.Update(msg)
	case m.modal == modalForward:
		switch m.forwardFocus {
		case forwardFocusSearch:
			m.recipientQuery, cmd = m.recipientQuery.Update(msg)
		case forwardFocusInstruction:
			m.instruction, cmd = m.instruction.Update(msg)
		case forwardFocusPassphrase:
			m.passInput, cmd = m.passInput.Update(msg)
		}
	case m.searching:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case m.loc.Route == nav.RouteLogin && m.loginFocus == loginFocusEmail:
		m.emailInput, cmd = m.emailInput.Update(msg)
	case m.loc.Route == nav.RouteLogin && m.loginFocus == loginFocusPassword:
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

package tui

import (
	"ttd-cli/internal/nav"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// navigate asks the guard about loc and enters whatever it decides. Requests
// made while the session is still being restored are parked in pending.
func (m *appModel) navigate(loc nav.Location) tea.Cmd {
	d := m.guard.Resolve(loc)
	switch d.Kind {
	case nav.Loading:
		m.pending = loc
		return nil
	case nav.Redirect:
		return m.enter(d.To)
	default:
		return m.enter(loc)
	}
}

func (m *appModel) enter(loc nav.Location) tea.Cmd {
	if m.loc != loc {
		switch m.loc.Route {
		case nav.RouteDocument:
			m.docWF.Leave()
		case nav.RouteDisposition:
			m.disWF.Leave()
		}
	}
	m.loc = loc
	m.navSeq++
	m.closeModal()
	m.stopSearch()
	m.detailErr = ""
	m.detailScroll = 0
	m.listErr = ""

	switch loc.Route {
	case nav.RouteLogin:
		m.loginErr = ""
		m.focusLogin(loginFocusEmail)
		return textinput.Blink
	case nav.RouteHome:
		return tea.Batch(m.reloadDocuments(), m.reloadDispositions())
	case nav.RouteDocuments:
		return m.reloadDocuments()
	case nav.RouteDispositions:
		return m.reloadDispositions()
	case nav.RouteDocument:
		return m.openDocumentCmd(loc.ID)
	case nav.RouteDisposition:
		return m.openDispositionCmd(loc.ID)
	}
	return nil
}

func (m *appModel) reloadDocuments() tea.Cmd {
	return m.fetchDocumentsCmd(m.docs.Reload())
}

func (m *appModel) reloadDispositions() tea.Cmd {
	return m.fetchDispositionsCmd(m.dis.Reload())
}

// backTarget is where esc goes from the current view.
func (m appModel) backTarget() (nav.Location, bool) {
	switch m.loc.Route {
	case nav.RouteDocument:
		return nav.Location{Route: nav.RouteDocuments}, true
	case nav.RouteDisposition:
		return nav.Location{Route: nav.RouteDispositions}, true
	case nav.RouteDocuments, nav.RouteDispositions, nav.RouteProfile:
		return nav.Home, true
	}
	return nav.Location{}, false
}

func (m *appModel) focusLogin(f loginFocus) {
	m.loginFocus = f
	m.emailInput.Blur()
	m.passwordInput.Blur()
	switch f {
	case loginFocusEmail:
		m.emailInput.Focus()
	case loginFocusPassword:
		m.passwordInput.Focus()
	}
}

// resetAfterLogout drops everything loaded for the previous user.
func (m *appModel) resetAfterLogout() {
	m.docWF.Leave()
	m.disWF.Leave()
	m.resetData()
	m.docList.SetItems(nil)
	m.disList.SetItems(nil)
	m.emailInput.SetValue("")
	m.passwordInput.SetValue("")
}

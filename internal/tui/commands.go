package tui

import (
	"time"

	"ttd-cli/internal/listing"
	"ttd-cli/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

const flashDuration = 4 * time.Second

func (m appModel) restoreCmd() tea.Cmd {
	ctx, sessions := m.ctx, m.deps.Sessions
	return func() tea.Msg {
		sess, err := sessions.Restore(ctx)
		return restoredMsg{sess: sess, err: err}
	}
}

func (m appModel) loginCmd(email, password string) tea.Cmd {
	ctx, sessions := m.ctx, m.deps.Sessions
	return func() tea.Msg {
		sess, err := sessions.Login(ctx, email, password)
		return loginDoneMsg{sess: sess, err: err}
	}
}

func (m appModel) logoutCmd() tea.Cmd {
	ctx, sessions := m.ctx, m.deps.Sessions
	return func() tea.Msg {
		return logoutDoneMsg{err: sessions.Logout(ctx)}
	}
}

// fetchDocumentsCmd runs req off the view loop; Apply happens in Update.
func (m appModel) fetchDocumentsCmd(req listing.Request) tea.Cmd {
	ctx, ctl := m.ctx, m.docs
	return func() tea.Msg {
		p, err := ctl.Fetch(ctx, req)
		return documentsLoadedMsg{ctl: ctl, req: req, page: p, err: err}
	}
}

func (m appModel) fetchDispositionsCmd(req listing.Request) tea.Cmd {
	ctx, ctl := m.ctx, m.dis
	return func() tea.Msg {
		p, err := ctl.Fetch(ctx, req)
		return dispositionsLoadedMsg{ctl: ctl, req: req, page: p, err: err}
	}
}

func (m appModel) openDocumentCmd(id int) tea.Cmd {
	ctx, wf := m.ctx, m.docWF
	return func() tea.Msg {
		d, err := wf.Open(ctx, id)
		return documentOpenedMsg{id: id, detail: d, err: err}
	}
}

func (m appModel) openDispositionCmd(id int) tea.Cmd {
	ctx, wf := m.ctx, m.disWF
	return func() tea.Msg {
		d, err := wf.Open(ctx, id)
		return dispositionOpenedMsg{id: id, detail: d, err: err}
	}
}

func (m appModel) recipientsCmd() tea.Cmd {
	ctx, wf, entry := m.ctx, m.disWF, m.forwardEntry
	return func() tea.Msg {
		rs, err := wf.EnterForward(ctx)
		return recipientsLoadedMsg{entry: entry, recipients: rs, err: err}
	}
}

func (m appModel) signCmd(passphrase string) tea.Cmd {
	ctx, wf := m.ctx, m.docWF
	return func() tea.Msg {
		out, err := wf.Sign(ctx, passphrase)
		return actionDoneMsg{kind: actionSign, outcome: out, err: err}
	}
}

func (m appModel) rejectCmd(reason string) tea.Cmd {
	ctx, wf := m.ctx, m.docWF
	return func() tea.Msg {
		out, err := wf.Reject(ctx, reason)
		return actionDoneMsg{kind: actionReject, outcome: out, err: err}
	}
}

func (m appModel) forwardCmd(req model.ForwardRequest) tea.Cmd {
	ctx, wf := m.ctx, m.disWF
	return func() tea.Msg {
		out, err := wf.Forward(ctx, req.RecipientUserIDs, req.Instruction, req.Passphrase)
		return actionDoneMsg{kind: actionForward, outcome: out, err: err}
	}
}

func (m appModel) returnToListCmd(after time.Duration, navSeq int) tea.Cmd {
	if after <= 0 {
		return func() tea.Msg { return returnToListMsg{navSeq: navSeq} }
	}
	return m.tick(after, func(time.Time) tea.Msg { return returnToListMsg{navSeq: navSeq} })
}

// showFlash sets the transient notification line.
func (m *appModel) showFlash(text string, isErr bool) tea.Cmd {
	m.flashSeq++
	m.flashText = text
	m.flashError = isErr
	seq := m.flashSeq
	return m.tick(flashDuration, func(time.Time) tea.Msg { return flashDoneMsg{seq: seq} })
}

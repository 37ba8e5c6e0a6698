package tui

import (
	"fmt"
	"strings"

	"ttd-cli/internal/model"
	"ttd-cli/internal/workflow"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *appModel) closeModal() {
	m.modal = modalNone
	m.modalErr = ""
	m.submitting = false
	m.formFocus = formFocusInput
	m.confirmFocus = confirmFocusCancel

	m.passInput.SetValue("")
	m.passInput.Blur()
	m.reasonArea.SetValue("")
	m.reasonArea.Blur()

	m.recipients = nil
	m.recipientsBusy = false
	m.recipientQuery.SetValue("")
	m.recipientQuery.Blur()
	m.recipientList.SetItems(nil)
	// Cleared in place: the checkbox delegate holds this map.
	for id := range m.selected {
		delete(m.selected, id)
	}
	m.instruction.SetValue("")
	m.instruction.Blur()
	m.forwardFocus = forwardFocusSearch
}

func (m *appModel) openSignModal() tea.Cmd {
	m.closeModal()
	m.modal = modalSign
	return m.setFormFocus(formFocusInput)
}

func (m *appModel) openRejectModal() tea.Cmd {
	m.closeModal()
	m.modal = modalReject
	return m.setFormFocus(formFocusInput)
}

// openForwardModal asks for a fresh recipient list every time.
func (m *appModel) openForwardModal() tea.Cmd {
	m.closeModal()
	m.modal = modalForward
	m.recipientsBusy = true
	m.forwardEntry++
	return tea.Batch(m.setForwardFocus(forwardFocusSearch), m.recipientsCmd())
}

func (m *appModel) setFormFocus(f formFocus) tea.Cmd {
	m.formFocus = f
	m.passInput.Blur()
	m.reasonArea.Blur()
	if f != formFocusInput {
		return nil
	}
	if m.modal == modalReject {
		return m.reasonArea.Focus()
	}
	return m.passInput.Focus()
}

func (m *appModel) setForwardFocus(f forwardFocus) tea.Cmd {
	m.forwardFocus = f
	m.recipientQuery.Blur()
	m.instruction.Blur()
	m.passInput.Blur()
	switch f {
	case forwardFocusSearch:
		return m.recipientQuery.Focus()
	case forwardFocusInstruction:
		return m.instruction.Focus()
	case forwardFocusPassphrase:
		return m.passInput.Focus()
	}
	return nil
}

func (m *appModel) syncRecipientList() {
	m.recipientList.SetItems(recipientItems(m.recipients, m.recipientQuery.Value()))
}

// selectedRecipientIDs keeps the backend's recipient order.
func (m appModel) selectedRecipientIDs() []int {
	var ids []int
	for _, r := range m.recipients {
		if m.selected[r.UserID] {
			ids = append(ids, r.UserID)
		}
	}
	return ids
}

func (m appModel) updateModalKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalConfirmLogout:
		switch k.String() {
		case "esc", "n":
			m.closeModal()
		case "tab", "shift+tab", "left", "right":
			if m.confirmFocus == confirmFocusConfirm {
				m.confirmFocus = confirmFocusCancel
			} else {
				m.confirmFocus = confirmFocusConfirm
			}
		case "y":
			m.closeModal()
			return m, m.logoutCmd()
		case "enter":
			confirmed := m.confirmFocus == confirmFocusConfirm
			m.closeModal()
			if confirmed {
				return m, m.logoutCmd()
			}
		}
		return m, nil
	case modalSign, modalReject:
		return m.updateFormKey(k)
	case modalForward:
		return m.updateForwardKey(k)
	}
	return m, nil
}

func (m appModel) updateFormKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	switch k.String() {
	case "esc":
		m.closeModal()
		return m, nil
	case "tab":
		return m, m.setFormFocus((m.formFocus + 1) % 3)
	case "shift+tab":
		return m, m.setFormFocus((m.formFocus + 2) % 3)
	case "ctrl+s":
		return m.submitForm()
	case "enter":
		switch m.formFocus {
		case formFocusCancel:
			m.closeModal()
			return m, nil
		case formFocusSubmit:
			return m.submitForm()
		}
		// Enter in the passphrase field submits; in the reason box it is a
		// newline.
		if m.modal == modalSign {
			return m.submitForm()
		}
	}

	if m.formFocus != formFocusInput {
		return m, nil
	}
	var cmd tea.Cmd
	if m.modal == modalReject {
		m.reasonArea, cmd = m.reasonArea.Update(k)
	} else {
		m.passInput, cmd = m.passInput.Update(k)
	}
	return m, cmd
}

// submitForm checks the form locally; nothing is sent when that fails.
func (m appModel) submitForm() (tea.Model, tea.Cmd) {
	if m.modal == modalSign {
		pass := m.passInput.Value()
		if err := workflow.CheckPassphrase(pass); err != nil {
			m.modalErr = err.Error()
			return m, m.showFlash(err.Error(), true)
		}
		m.submitting = true
		m.modalErr = ""
		return m, m.signCmd(pass)
	}
	reason := m.reasonArea.Value()
	if err := workflow.CheckReason(reason); err != nil {
		m.modalErr = err.Error()
		return m, m.showFlash(err.Error(), true)
	}
	m.submitting = true
	m.modalErr = ""
	return m, m.rejectCmd(strings.TrimSpace(reason))
}

func (m appModel) updateForwardKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	switch k.String() {
	case "esc":
		m.closeModal()
		return m, nil
	case "tab":
		return m, m.setForwardFocus((m.forwardFocus + 1) % 6)
	case "shift+tab":
		return m, m.setForwardFocus((m.forwardFocus + 5) % 6)
	case "ctrl+s":
		return m.submitForward()
	}

	switch m.forwardFocus {
	case forwardFocusSearch:
		if k.String() == "enter" || k.String() == "down" {
			return m, m.setForwardFocus(forwardFocusList)
		}
		var cmd tea.Cmd
		m.recipientQuery, cmd = m.recipientQuery.Update(k)
		m.syncRecipientList()
		return m, cmd
	case forwardFocusList:
		switch k.String() {
		case " ", "enter", "x":
			if it, ok := m.recipientList.SelectedItem().(recipientItem); ok {
				if m.selected[it.r.UserID] {
					delete(m.selected, it.r.UserID)
				} else {
					m.selected[it.r.UserID] = true
				}
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.recipientList, cmd = m.recipientList.Update(k)
		return m, cmd
	case forwardFocusInstruction:
		var cmd tea.Cmd
		m.instruction, cmd = m.instruction.Update(k)
		return m, cmd
	case forwardFocusPassphrase:
		if k.String() == "enter" {
			return m.submitForward()
		}
		var cmd tea.Cmd
		m.passInput, cmd = m.passInput.Update(k)
		return m, cmd
	case forwardFocusSubmit:
		if k.String() == "enter" {
			return m.submitForward()
		}
	case forwardFocusCancel:
		if k.String() == "enter" {
			m.closeModal()
		}
	}
	return m, nil
}

func (m appModel) submitForward() (tea.Model, tea.Cmd) {
	req := model.ForwardRequest{
		DispositionID:    m.loc.ID,
		ForwarderUserID:  m.deps.Sessions.Current().UserID(),
		RecipientUserIDs: m.selectedRecipientIDs(),
		Instruction:      m.instruction.Value(),
		Passphrase:       m.passInput.Value(),
	}
	if err := req.Validate(); err != nil {
		m.modalErr = err.Error()
		return m, m.showFlash(err.Error(), true)
	}
	m.submitting = true
	m.modalErr = ""
	return m, m.forwardCmd(req)
}

func (m appModel) renderModal() string {
	switch m.modal {
	case modalConfirmLogout:
		name := ""
		if id := m.deps.Sessions.Current().Identity; id != nil {
			name = id.DisplayName()
		}
		return renderConfirmModal(m.width, "Sign out", fmt.Sprintf("Sign out %s from this device?", name), "Sign out", "Cancel", m.confirmFocus)
	case modalSign:
		return m.renderSignModal()
	case modalReject:
		return m.renderRejectModal()
	case modalForward:
		return m.renderForwardModal()
	}
	return ""
}

func (m appModel) formFooter(submitLabel string, focusSubmit, focusCancel bool) string {
	focused := -1
	if focusSubmit {
		focused = 0
	}
	if focusCancel {
		focused = 1
	}
	if m.submitting {
		submitLabel = m.spinner.View() + " " + submitLabel
	}
	lines := []string{renderButtons([]string{submitLabel, "Cancel"}, focused)}
	if m.modalErr != "" {
		lines = append(lines, "", styleError().Render(m.modalErr))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) renderSignModal() string {
	d, _ := m.docWF.Detail()
	bodyW := modalBodyWidth(m.width)
	body := strings.Join([]string{
		"Sign " + styleTitle().Render(d.Title) + "?",
		"",
		renderField(bodyW, "Passphrase", m.passInput.View(), m.formFocus == formFocusInput),
		"",
		m.formFooter("Sign", m.formFocus == formFocusSubmit, m.formFocus == formFocusCancel),
		"",
		styleMuted().Render("enter: sign   tab: focus   esc: cancel"),
	}, "\n")
	return renderModalBox(m.width, "Sign document", body)
}

func (m appModel) renderRejectModal() string {
	d, _ := m.docWF.Detail()
	label := styleMuted().Render("Reason")
	if m.formFocus == formFocusInput {
		label = styleTitle().Render("Reason")
	}
	body := strings.Join([]string{
		"Reject " + styleTitle().Render(d.Title) + "?",
		"",
		label,
		m.reasonArea.View(),
		"",
		m.formFooter("Reject", m.formFocus == formFocusSubmit, m.formFocus == formFocusCancel),
		"",
		styleMuted().Render("ctrl+s: reject   tab: focus   esc: cancel"),
	}, "\n")
	return renderModalBox(m.width, "Reject document", body)
}

func (m appModel) renderForwardModal() string {
	bodyW := modalBodyWidth(m.width)

	var recipients string
	switch {
	case m.recipientsBusy:
		recipients = m.spinner.View() + " loading recipients…"
	case len(m.recipients) == 0:
		recipients = styleMuted().Render("No recipients available.")
	case len(m.recipientList.Items()) == 0:
		recipients = styleMuted().Render("No recipient matches the search.")
	default:
		recipients = m.recipientList.View()
	}
	listLabel := fmt.Sprintf("Recipients (%d selected)", len(m.selectedRecipientIDs()))
	if m.forwardFocus == forwardFocusList {
		listLabel = styleTitle().Render(listLabel)
	} else {
		listLabel = styleMuted().Render(listLabel)
	}
	instrLabel := styleMuted().Render("Instruction")
	if m.forwardFocus == forwardFocusInstruction {
		instrLabel = styleTitle().Render("Instruction")
	}

	body := strings.Join([]string{
		renderField(bodyW, "Search", m.recipientQuery.View(), m.forwardFocus == forwardFocusSearch),
		"",
		listLabel,
		recipients,
		"",
		instrLabel,
		m.instruction.View(),
		"",
		renderField(bodyW, "Passphrase", m.passInput.View(), m.forwardFocus == forwardFocusPassphrase),
		"",
		m.formFooter("Forward", m.forwardFocus == forwardFocusSubmit, m.forwardFocus == forwardFocusCancel),
		"",
		styleMuted().Render("space: toggle   tab: next field   ctrl+s: forward   esc: cancel"),
	}, "\n")
	return renderModalBox(m.width, "Forward disposition", body)
}

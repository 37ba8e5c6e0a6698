package tui

import (
	"ttd-cli/internal/listing"
	"ttd-cli/internal/model"
	"ttd-cli/internal/workflow"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalSign
	modalReject
	modalForward
	modalConfirmLogout
)

type loginFocus int

const (
	loginFocusEmail loginFocus = iota
	loginFocusPassword
	loginFocusSubmit
)

type forwardFocus int

const (
	forwardFocusSearch forwardFocus = iota
	forwardFocusList
	forwardFocusInstruction
	forwardFocusPassphrase
	forwardFocusSubmit
	forwardFocusCancel
)

// formFocus is shared by the sign and reject modals.
type formFocus int

const (
	formFocusInput formFocus = iota
	formFocusSubmit
	formFocusCancel
)

type restoredMsg struct {
	sess model.Session
	err  error
}

type loginDoneMsg struct {
	sess model.Session
	err  error
}

type logoutDoneMsg struct{ err error }

type documentsLoadedMsg struct {
	ctl  *listing.Controller[model.DocumentSummary]
	req  listing.Request
	page listing.Page[model.DocumentSummary]
	err  error
}

type dispositionsLoadedMsg struct {
	ctl  *listing.Controller[model.DispositionItem]
	req  listing.Request
	page listing.Page[model.DispositionItem]
	err  error
}

type documentOpenedMsg struct {
	id     int
	detail model.DocumentDetail
	err    error
}

type dispositionOpenedMsg struct {
	id     int
	detail model.DispositionDetail
	err    error
}

type recipientsLoadedMsg struct {
	entry      int
	recipients []model.Recipient
	err        error
}

type actionKind int

const (
	actionSign actionKind = iota
	actionReject
	actionForward
)

type actionDoneMsg struct {
	kind    actionKind
	outcome workflow.Outcome
	err     error
}

// returnToListMsg fires after a successful action. It is ignored when the
// user navigated elsewhere in the meantime.
type returnToListMsg struct{ navSeq int }

type flashDoneMsg struct{ seq int }

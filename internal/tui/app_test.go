package tui

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ttd-cli/internal/api"
	"ttd-cli/internal/mockapi"
	"ttd-cli/internal/model"
	"ttd-cli/internal/nav"
	"ttd-cli/internal/session"
	"ttd-cli/internal/store"
	"ttd-cli/internal/workflow"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// cmdTimeout bounds one round of commands. Timers are disabled in tests, so
// a round that hits it is a hung request, not a tick.
const cmdTimeout = 5 * time.Second

func newTestApp(t *testing.T) (*mockapi.Server, appModel) {
	t.Helper()
	mock := mockapi.Seeded()
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)

	var sessions *session.Store
	client := api.New(srv.URL+"/api/",
		api.WithHTTPClient(srv.Client()),
		api.WithToken(func() string { return sessions.Token() }),
	)
	sessions = session.New(client, store.Store{Dir: t.TempDir()})

	m := newAppModel(context.Background(), Deps{
		Sessions: sessions,
		Backend:  client,
		Config:   &store.Config{},
	})
	// Tests deliver flash expiry and returns to a list by hand.
	m.tick = func(time.Duration, func(time.Time) tea.Msg) tea.Cmd { return nil }
	staticCursors(&m)
	mAny, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return mock, mAny.(appModel)
}

// staticCursors stops the inputs from scheduling blink timers.
func staticCursors(m *appModel) {
	for _, c := range []*cursor.Model{
		&m.emailInput.Cursor, &m.passwordInput.Cursor, &m.searchInput.Cursor,
		&m.passInput.Cursor, &m.recipientQuery.Cursor,
		&m.reasonArea.Cursor, &m.instruction.Cursor,
	} {
		c.SetMode(cursor.CursorStatic)
	}
}

func dropped(msg tea.Msg) bool {
	switch msg.(type) {
	case nil, spinner.TickMsg, flashDoneMsg, returnToListMsg, tea.QuitMsg:
		return true
	}
	return strings.Contains(strings.ToLower(fmt.Sprintf("%T", msg)), "blink")
}

// drain runs cmd and everything it leads to through Update.
func drain(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for round := 0; len(queue) > 0; round++ {
		if round > 20 {
			t.Fatalf("commands did not settle")
		}
		var msgs []tea.Msg
		msgs, queue = runRound(t, queue)
		for _, msg := range msgs {
			mAny, next := m.Update(msg)
			m = mAny.(appModel)
			queue = append(queue, next)
		}
	}
	return m
}

func runRound(t *testing.T, cmds []tea.Cmd) ([]tea.Msg, []tea.Cmd) {
	t.Helper()
	out := make(chan tea.Msg, len(cmds))
	n := 0
	for _, c := range cmds {
		if c == nil {
			continue
		}
		n++
		go func(c tea.Cmd) { out <- c() }(c)
	}
	var msgs []tea.Msg
	var next []tea.Cmd
	deadline := time.After(cmdTimeout)
	for i := 0; i < n; i++ {
		select {
		case msg := <-out:
			if batch, ok := msg.(tea.BatchMsg); ok {
				next = append(next, batch...)
				continue
			}
			if !dropped(msg) {
				msgs = append(msgs, msg)
			}
		case <-deadline:
			t.Fatalf("%d of %d commands still running after %s", n-i, n, cmdTimeout)
		}
	}
	return msgs, next
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m appModel, keys ...string) appModel {
	t.Helper()
	for _, k := range keys {
		mAny, cmd := m.Update(key(k))
		m = drain(t, mAny.(appModel), cmd)
	}
	return m
}

func typeText(t *testing.T, m appModel, s string) appModel {
	t.Helper()
	for _, r := range s {
		mAny, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = drain(t, mAny.(appModel), cmd)
	}
	return m
}

func restored(t *testing.T, m appModel) appModel {
	t.Helper()
	return drain(t, m, m.restoreCmd())
}

func loggedIn(t *testing.T) (*mockapi.Server, appModel) {
	t.Helper()
	mock, m := newTestApp(t)
	m = restored(t, m)
	m = typeText(t, m, "budi")
	m = press(t, m, "tab")
	m = typeText(t, m, "secret")
	m = press(t, m, "enter")
	if m.loc != nav.Home {
		t.Fatalf("expected home after login, got %v (err %q)", m.loc, m.loginErr)
	}
	return mock, m
}

func goTo(t *testing.T, m appModel, loc nav.Location) appModel {
	t.Helper()
	cmd := m.navigate(loc)
	return drain(t, m, cmd)
}

func TestRestore_ShowsPlaceholderThenLogin(t *testing.T) {
	_, m := newTestApp(t)
	if !m.guard.Restoring() {
		t.Fatalf("expected restoring at start")
	}
	if v := m.View(); !strings.Contains(v, "Restoring session") {
		t.Fatalf("expected restoring placeholder, got:\n%s", v)
	}

	m = restored(t, m)
	if m.loc.Route != nav.RouteLogin {
		t.Fatalf("expected login, got %v", m.loc)
	}
	if v := m.View(); !strings.Contains(v, "Sign in") {
		t.Fatalf("expected login form, got:\n%s", v)
	}
}

func TestRestore_ParksRequestedLocation(t *testing.T) {
	_, m := newTestApp(t)
	want := nav.Location{Route: nav.RouteDocument, ID: 1}
	if cmd := m.navigate(want); cmd != nil {
		t.Fatalf("expected no command while restoring")
	}
	if m.pending != want {
		t.Fatalf("expected pending=%v, got %v", want, m.pending)
	}
	m = restored(t, m)
	if m.loc.Route != nav.RouteLogin {
		t.Fatalf("protected location should redirect to login, got %v", m.loc)
	}
}

func TestLogin_EmptyFieldsNeverCallBackend(t *testing.T) {
	mock, m := newTestApp(t)
	m = restored(t, m)
	m = press(t, m, "tab", "enter")
	if m.loginErr == "" {
		t.Fatalf("expected a login error")
	}
	if m.loc.Route != nav.RouteLogin {
		t.Fatalf("expected to stay on login, got %v", m.loc)
	}
	if got := mock.Calls(mockapi.EndpointLogin); got != 0 {
		t.Fatalf("expected no login call, got %d", got)
	}
}

func TestLogin_WrongPasswordStaysOnLogin(t *testing.T) {
	_, m := newTestApp(t)
	m = restored(t, m)
	m = typeText(t, m, "budi")
	m = press(t, m, "tab")
	m = typeText(t, m, "nope")
	m = press(t, m, "enter")
	if m.loc.Route != nav.RouteLogin || m.loginErr == "" || !m.flashError {
		t.Fatalf("expected login error on login view, got loc=%v err=%q", m.loc, m.loginErr)
	}
}

func TestLogin_LandsOnDashboard(t *testing.T) {
	_, m := loggedIn(t)
	if !m.docs.Loaded() || !m.dis.Loaded() {
		t.Fatalf("expected both lists loaded on home")
	}
	if !strings.Contains(m.flashText, "Budi Santoso") {
		t.Fatalf("expected welcome flash, got %q", m.flashText)
	}
	v := m.View()
	for _, want := range []string{"Welcome, Budi Santoso", "Pending", "Employment Contract"} {
		if !strings.Contains(v, want) {
			t.Fatalf("expected %q in dashboard:\n%s", want, v)
		}
	}
}

func TestLoginRoute_RedirectsHomeWhenSignedIn(t *testing.T) {
	_, m := loggedIn(t)
	m = goTo(t, m, nav.Login)
	if m.loc != nav.Home {
		t.Fatalf("expected home, got %v", m.loc)
	}
}

func TestDocuments_SearchFiltersWithoutFetching(t *testing.T) {
	mock, m := loggedIn(t)
	m = press(t, m, "2")
	if m.loc.Route != nav.RouteDocuments {
		t.Fatalf("expected documents, got %v", m.loc)
	}
	if got := len(m.docList.Items()); got != 4 {
		t.Fatalf("expected 4 documents, got %d", got)
	}
	before := mock.Calls(mockapi.EndpointGetDoc)

	m = press(t, m, "/")
	m = typeText(t, m, "purch")
	if got := len(m.docList.Items()); got != 1 {
		t.Fatalf("expected 1 match, got %d", got)
	}
	if got := mock.Calls(mockapi.EndpointGetDoc); got != before {
		t.Fatalf("search fetched: %d -> %d calls", before, got)
	}

	m = press(t, m, "esc")
	if got := len(m.docList.Items()); got != 4 {
		t.Fatalf("expected search cleared, got %d items", got)
	}
}

func TestDocuments_PagingFetchesNextPage(t *testing.T) {
	mock, m := newTestApp(t)
	mock.SetPageSize(2)
	m = restored(t, m)
	m = typeText(t, m, "budi")
	m = press(t, m, "tab")
	m = typeText(t, m, "secret")
	m = press(t, m, "enter")

	m = press(t, m, "2")
	if m.docs.TotalPages() != 2 {
		t.Fatalf("expected 2 pages, got %d", m.docs.TotalPages())
	}
	m = press(t, m, "right")
	if m.docs.CurrentPage() != 2 {
		t.Fatalf("expected page 2, got %d", m.docs.CurrentPage())
	}
	if got := mock.LastQuery(mockapi.EndpointGetDoc).Get("page"); got != "2" {
		t.Fatalf("expected page=2 query, got %q", got)
	}
	// Already on the last page.
	calls := mock.Calls(mockapi.EndpointGetDoc)
	m = press(t, m, "right")
	if mock.Calls(mockapi.EndpointGetDoc) != calls {
		t.Fatalf("expected no fetch past the last page")
	}
}

func TestDocument_SignValidatesLocallyThenReturnsToList(t *testing.T) {
	mock, m := loggedIn(t)
	m = goTo(t, m, nav.Location{Route: nav.RouteDocument, ID: 1})
	if m.docWF.State() != workflow.Loaded || !m.docWF.CanAct() {
		t.Fatalf("expected actionable loaded document, got %v", m.docWF.State())
	}
	if v := m.View(); !strings.Contains(v, "s: sign") {
		t.Fatalf("expected sign hint:\n%s", v)
	}

	m = press(t, m, "s")
	if m.modal != modalSign {
		t.Fatalf("expected sign modal, got %v", m.modal)
	}
	m = press(t, m, "ctrl+s")
	if m.modalErr == "" || m.modal != modalSign {
		t.Fatalf("expected local validation error in open modal")
	}
	if got := mock.Calls(mockapi.EndpointSign); got != 0 {
		t.Fatalf("expected no sign call, got %d", got)
	}

	m = typeText(t, m, "123456")
	m = press(t, m, "enter")
	if m.modal != modalNone {
		t.Fatalf("expected modal closed, err=%q", m.modalErr)
	}
	if got := mock.DocumentStatus(1); got != "approved" {
		t.Fatalf("expected approved, got %q", got)
	}
	if m.docWF.CanAct() {
		t.Fatalf("expected actions disabled after signing")
	}
	if m.flashText == "" || m.flashError {
		t.Fatalf("expected success flash, got %q", m.flashText)
	}

	mAny, cmd := m.Update(returnToListMsg{navSeq: m.navSeq})
	m = drain(t, mAny.(appModel), cmd)
	if m.loc.Route != nav.RouteDocuments {
		t.Fatalf("expected documents list, got %v", m.loc)
	}
}

func TestDocument_WrongPassphraseKeepsModalOpen(t *testing.T) {
	mock, m := loggedIn(t)
	m = goTo(t, m, nav.Location{Route: nav.RouteDocument, ID: 1})
	m = press(t, m, "s")
	m = typeText(t, m, "000000")
	m = press(t, m, "enter")
	if m.modal != modalSign || m.modalErr == "" || m.submitting {
		t.Fatalf("expected modal open with error, got modal=%v err=%q", m.modal, m.modalErr)
	}
	if got := mock.DocumentStatus(1); got != "active" {
		t.Fatalf("expected active, got %q", got)
	}
}

func TestDocument_RejectNeedsReason(t *testing.T) {
	mock, m := loggedIn(t)
	m = goTo(t, m, nav.Location{Route: nav.RouteDocument, ID: 2})
	m = press(t, m, "x")
	if m.modal != modalReject {
		t.Fatalf("expected reject modal, got %v", m.modal)
	}
	m = press(t, m, "ctrl+s")
	if m.modalErr == "" || mock.Calls(mockapi.EndpointRevoke) != 0 {
		t.Fatalf("expected local validation without request")
	}
	m = typeText(t, m, "Wrong amount")
	m = press(t, m, "ctrl+s")
	if m.modal != modalNone {
		t.Fatalf("expected modal closed, err=%q", m.modalErr)
	}
	if got := mock.DocumentStatus(2); got == "active" {
		t.Fatalf("expected document no longer active")
	}
}

func TestDocument_NotActionableFlashes(t *testing.T) {
	_, m := loggedIn(t)
	m = goTo(t, m, nav.Location{Route: nav.RouteDocument, ID: 4})
	m = press(t, m, "s")
	if m.modal != modalNone {
		t.Fatalf("expected no modal for a signed document")
	}
	if !m.flashError {
		t.Fatalf("expected error flash")
	}
}

func TestDocument_NotFound(t *testing.T) {
	_, m := loggedIn(t)
	m = goTo(t, m, nav.Location{Route: nav.RouteDocument, ID: 999})
	if m.docWF.State() != workflow.NotFound {
		t.Fatalf("expected not found, got %v", m.docWF.State())
	}
	if v := m.View(); !strings.Contains(v, "Document not found") {
		t.Fatalf("expected not found view:\n%s", v)
	}
}

func TestReturnToList_IgnoredAfterNavigatingAway(t *testing.T) {
	_, m := loggedIn(t)
	m = goTo(t, m, nav.Location{Route: nav.RouteDocument, ID: 1})
	seq := m.navSeq
	m = press(t, m, "4")
	if m.loc.Route != nav.RouteProfile {
		t.Fatalf("expected profile, got %v", m.loc)
	}
	mAny, cmd := m.Update(returnToListMsg{navSeq: seq})
	m = drain(t, mAny.(appModel), cmd)
	if m.loc.Route != nav.RouteProfile {
		t.Fatalf("stale return moved the view to %v", m.loc)
	}
	if v := m.View(); !strings.Contains(v, "budi@example.go.id") {
		t.Fatalf("expected profile email:\n%s", v)
	}
}

func TestDisposition_ForwardFlow(t *testing.T) {
	mock, m := loggedIn(t)
	m = goTo(t, m, nav.Location{Route: nav.RouteDisposition, ID: 11})
	if m.disWF.State() != workflow.Loaded {
		t.Fatalf("expected loaded disposition, got %v", m.disWF.State())
	}

	m = press(t, m, "f")
	if m.modal != modalForward || m.recipientsBusy {
		t.Fatalf("expected forward modal with recipients, busy=%v", m.recipientsBusy)
	}
	if len(m.recipients) != 2 {
		t.Fatalf("expected 2 recipients, got %d", len(m.recipients))
	}

	m = press(t, m, "ctrl+s")
	if m.modalErr == "" || mock.Calls(mockapi.EndpointForward) != 0 {
		t.Fatalf("expected local validation without request, err=%q", m.modalErr)
	}

	m = press(t, m, "enter", " ")
	if ids := m.selectedRecipientIDs(); len(ids) != 1 || ids[0] != 7 {
		t.Fatalf("expected recipient 7 selected, got %v", ids)
	}
	m.instruction.SetValue("Please follow up")
	m.passInput.SetValue("123456")
	m = press(t, m, "ctrl+s")
	if m.modal != modalNone {
		t.Fatalf("expected modal closed, err=%q", m.modalErr)
	}
	d, ok := mock.Disposition(11)
	if !ok || d.Status != "dispath" {
		t.Fatalf("expected forwarded disposition, got %#v", d)
	}
}

func TestDisposition_RecipientSearchFiltersModalList(t *testing.T) {
	_, m := loggedIn(t)
	m = goTo(t, m, nav.Location{Route: nav.RouteDisposition, ID: 11})
	m = press(t, m, "f")
	m = typeText(t, m, "ahmad")
	if got := len(m.recipientList.Items()); got != 1 {
		t.Fatalf("expected 1 recipient, got %d", got)
	}
	m = press(t, m, "esc")
	if m.modal != modalNone || len(m.selected) != 0 {
		t.Fatalf("expected modal closed and selection cleared")
	}
}

func TestDisposition_ReopenedForwardIgnoresEarlierRecipients(t *testing.T) {
	_, m := loggedIn(t)
	m = goTo(t, m, nav.Location{Route: nav.RouteDisposition, ID: 11})
	m = press(t, m, "f")
	earlier := m.forwardEntry
	m = press(t, m, "esc")

	mAny, cmd := m.Update(key("f"))
	m = mAny.(appModel)
	if m.forwardEntry == earlier || !m.recipientsBusy {
		t.Fatalf("expected a new forward entry loading recipients")
	}

	stale := recipientsLoadedMsg{entry: earlier, recipients: []model.Recipient{{UserID: 1, DisplayName: "stale"}}}
	mAny, _ = m.Update(stale)
	m = mAny.(appModel)
	if !m.recipientsBusy {
		t.Fatalf("earlier entry's recipients were accepted")
	}
	for _, r := range m.recipients {
		if r.UserID == 1 {
			t.Fatalf("stale recipient shown: %+v", m.recipients)
		}
	}

	m = drain(t, m, cmd)
	if m.recipientsBusy || len(m.recipients) != 2 {
		t.Fatalf("expected 2 fresh recipients, got %+v", m.recipients)
	}
}

func TestStaleListResultAfterLogoutIsDropped(t *testing.T) {
	_, m := loggedIn(t)
	old := m.docs
	req := old.Reload()

	m = press(t, m, "L")
	if m.modal != modalConfirmLogout {
		t.Fatalf("expected logout confirm, got %v", m.modal)
	}
	m = press(t, m, "y")
	if m.loc.Route != nav.RouteLogin || m.guard.State() != nav.Unauthenticated {
		t.Fatalf("expected login after logout, got %v", m.loc)
	}
	if m.docs == old || len(m.docs.Items()) != 0 {
		t.Fatalf("expected fresh, empty document list")
	}

	page, err := old.Fetch(context.Background(), req)
	mAny, _ := m.Update(documentsLoadedMsg{ctl: old, req: req, page: page, err: err})
	m = mAny.(appModel)
	if len(m.docs.Items()) != 0 || len(m.docList.Items()) != 0 {
		t.Fatalf("stale result leaked into the new session")
	}
}

func TestLogoutConfirm_CancelKeepsSession(t *testing.T) {
	_, m := loggedIn(t)
	m = press(t, m, "L", "n")
	if m.modal != modalNone || m.guard.State() != nav.Authenticated {
		t.Fatalf("expected session kept")
	}
}

package tui

import (
	"context"
	"time"

	"ttd-cli/internal/listing"
	"ttd-cli/internal/model"
	"ttd-cli/internal/nav"
	"ttd-cli/internal/workflow"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type appModel struct {
	ctx  context.Context
	deps Deps
	log  *zap.Logger

	width  int
	height int

	guard *nav.Guard
	// loc is what is on screen. While restoring, pending holds the location
	// the user asked for.
	loc     nav.Location
	pending nav.Location
	// navSeq changes on every navigation; delayed returns check it.
	navSeq int

	// Login form.
	emailInput    textinput.Model
	passwordInput textinput.Model
	loginFocus    loginFocus
	loggingIn     bool
	loginErr      string

	docs    *listing.Controller[model.DocumentSummary]
	dis     *listing.Controller[model.DispositionItem]
	docList list.Model
	disList list.Model
	// listErr is the last failed list fetch; the previous items stay.
	listErr string

	searchInput textinput.Model
	searching   bool

	docWF        *workflow.Document
	disWF        *workflow.Disposition
	detailErr    string
	detailScroll int

	modal        modalKind
	modalErr     string
	formFocus    formFocus
	confirmFocus confirmFocus
	submitting   bool

	passInput  textinput.Model
	reasonArea textarea.Model

	recipients     []model.Recipient
	recipientsBusy bool
	forwardEntry   int
	recipientQuery textinput.Model
	recipientList  list.Model
	selected       map[int]bool
	instruction    textarea.Model
	forwardFocus   forwardFocus

	spinner spinner.Model

	flashText  string
	flashError bool
	flashSeq   int

	// tick schedules the flash expiry and the delayed return to a list.
	tick func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
}

func newAppModel(ctx context.Context, deps Deps) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	m := appModel{
		ctx:      ctx,
		deps:     deps,
		log:      deps.Logger,
		guard:    nav.NewGuard(),
		loc:      nav.Home,
		pending:  nav.Home,
		selected: map[int]bool{},
		tick:     tea.Tick,
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	if deps.Start.Route != "" {
		m.pending = deps.Start
	}

	m.resetData()

	m.docList = newList(nil, newRowDelegate())
	m.disList = newList(nil, newRowDelegate())
	m.recipientList = newList(nil, checkDelegate{checked: m.isSelected})

	m.emailInput = textinput.New()
	m.emailInput.Placeholder = "Email or username"
	m.emailInput.CharLimit = 200
	m.emailInput.Width = 40
	m.emailInput.Prompt = ""

	m.passwordInput = textinput.New()
	m.passwordInput.Placeholder = "Password"
	m.passwordInput.EchoMode = textinput.EchoPassword
	m.passwordInput.EchoCharacter = '•'
	m.passwordInput.CharLimit = 200
	m.passwordInput.Width = 40
	m.passwordInput.Prompt = ""

	m.searchInput = textinput.New()
	m.searchInput.Placeholder = "Search this page"
	m.searchInput.Prompt = "/ "
	m.searchInput.CharLimit = 100

	m.passInput = textinput.New()
	m.passInput.Placeholder = "Passphrase"
	m.passInput.EchoMode = textinput.EchoPassword
	m.passInput.EchoCharacter = '•'
	m.passInput.CharLimit = 200
	m.passInput.Prompt = ""

	m.reasonArea = textarea.New()
	m.reasonArea.Placeholder = "Reason for rejection…"
	m.reasonArea.ShowLineNumbers = false
	m.reasonArea.CharLimit = 0
	m.reasonArea.SetWidth(60)
	m.reasonArea.SetHeight(4)

	m.recipientQuery = textinput.New()
	m.recipientQuery.Placeholder = "Search by name or department"
	m.recipientQuery.Prompt = ""
	m.recipientQuery.CharLimit = 100

	m.instruction = textarea.New()
	m.instruction.Placeholder = "Instruction for the recipients…"
	m.instruction.ShowLineNumbers = false
	m.instruction.CharLimit = 0
	m.instruction.SetWidth(60)
	m.instruction.SetHeight(3)

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))

	m.focusLogin(loginFocusEmail)
	return m
}

// resetData replaces the list controllers and detail workflows with empty
// ones; results still in flight for the old ones are dropped.
func (m *appModel) resetData() {
	deps := m.deps
	sess := func() model.Session { return deps.Sessions.Current() }
	m.docs = listing.NewDocuments(deps.Backend, sess)
	m.dis = listing.NewDispositions(deps.Backend, sess)
	m.docWF = workflow.NewDocument(deps.Backend, sess, workflow.Options{
		BaseURL:     deps.Backend.BaseURL(),
		ReturnAfter: deps.documentReturnDelay(),
		Logger:      m.log,
	})
	m.disWF = workflow.NewDisposition(deps.Backend, sess, workflow.Options{
		BaseURL:     deps.Backend.BaseURL(),
		ReturnAfter: deps.dispositionReturnDelay(),
		Logger:      m.log,
	})
}

// isSelected backs the recipient checkboxes. The map is shared by every
// copy of the model, so the delegate always sees the current selection.
func (m appModel) isSelected(it list.Item) bool {
	ri, ok := it.(recipientItem)
	return ok && m.selected[ri.r.UserID]
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.restoreCmd(), m.spinner.Tick)
}

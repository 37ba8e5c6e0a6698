package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ttd-cli/internal/format"
	"ttd-cli/internal/listing"
	"ttd-cli/internal/markdown"
	"ttd-cli/internal/model"
	"ttd-cli/internal/nav"
	"ttd-cli/internal/workflow"

	"github.com/spf13/cobra"
)

type dispositionListView struct {
	Items      []model.DispositionItem `json:"items"`
	Unread     int                     `json:"unread"`
	Page       int                     `json:"page"`
	TotalPages int                     `json:"totalPages"`
	Search     string                  `json:"search,omitempty"`
}

func (v dispositionListView) Text(p format.Printer) string {
	var b strings.Builder
	if v.Unread > 0 {
		b.WriteString(p.Bold(fmt.Sprintf("%d unread", v.Unread)))
		b.WriteString("\n")
	}
	if len(v.Items) == 0 {
		b.WriteString(p.Faint("No dispositions."))
		return b.String()
	}
	rows := make([][]string, 0, len(v.Items))
	for _, d := range v.Items {
		rows = append(rows, []string{
			strconv.Itoa(d.ID),
			d.Subject,
			d.SourceLetterRef,
			model.FormatDate(d.AcceptDate, model.DateShort),
			p.Status(string(d.Type)),
			model.Capitalize(d.Status),
		})
	}
	b.WriteString(p.Table([]string{"ID", "Subject", "From", "Accepted", "Type", "Status"}, rows))
	b.WriteString("\n")
	b.WriteString(p.Faint(fmt.Sprintf("page %d of %d", v.Page, v.TotalPages)))
	return b.String()
}

type dispositionView struct {
	model.DispositionDetail

	rendered string
}

func (v dispositionView) Text(p format.Printer) string {
	var b strings.Builder
	b.WriteString(p.KV(
		[2]string{"Subject", p.Bold(v.Subject)},
		[2]string{"ID", strconv.Itoa(v.ID)},
		[2]string{"Type", p.Status(string(v.Type))},
		[2]string{"Status", model.Capitalize(v.Status)},
		[2]string{"From", v.SourceLetterRef},
		[2]string{"Letter no", v.LetterNo},
		[2]string{"Letter date", model.FormatDate(v.LetterDate, model.DateLong)},
		[2]string{"Accepted", model.FormatDate(v.AcceptDate, model.DateLong)},
		[2]string{"Agenda no", v.AgendaNo},
		[2]string{"CC", v.CC},
		[2]string{"Sent by", v.Originator.Name},
		[2]string{"File", v.FileURL},
	))
	body := v.rendered
	if body == "" {
		body = strings.TrimSpace(v.Instruction)
	}
	if body != "" {
		b.WriteString("\n\n")
		b.WriteString(body)
	}
	return b.String()
}

type recipientListView struct {
	Items []model.Recipient `json:"items"`
}

func (v recipientListView) Text(p format.Printer) string {
	if len(v.Items) == 0 {
		return p.Faint("No recipients.")
	}
	rows := make([][]string, 0, len(v.Items))
	for _, r := range v.Items {
		rows = append(rows, []string{strconv.Itoa(r.UserID), r.DisplayName, r.DepartmentName})
	}
	return p.Table([]string{"ID", "Name", "Department"}, rows)
}

func newDispositionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dispositions",
		Aliases: []string{"dis"},
		Short:   "List, read and forward dispositions",
	}
	cmd.AddCommand(newDispositionsListCmd(app))
	cmd.AddCommand(newDispositionsShowCmd(app))
	cmd.AddCommand(newDispositionsRecipientsCmd(app))
	cmd.AddCommand(newDispositionsForwardCmd(app))
	return cmd
}

func newDispositionsListCmd(app *App) *cobra.Command {
	var page int
	var search string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List dispositions sent to you (one page)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := app.authorize(cmd.Context(), nav.Location{Route: nav.RouteDispositions})
			if err != nil {
				return writeErr(cmd, app, err)
			}
			ctl := listing.NewDispositions(e.client, e.sessions.Current)
			if err := ctl.GoTo(cmd.Context(), page); err != nil {
				return writeErr(cmd, app, err)
			}
			ctl.SetSearch(search)
			v := dispositionListView{
				Items:      ctl.Visible(),
				Unread:     ctl.Notice(),
				Page:       ctl.CurrentPage(),
				TotalPages: ctl.TotalPages(),
				Search:     strings.TrimSpace(search),
			}
			return writeOut(cmd, app, result{Data: v, text: v.Text})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().StringVar(&search, "search", "", "Filter the page by subject, source, letter number or instruction")
	return cmd
}

func (app *App) dispositionWorkflow(e *env) *workflow.Disposition {
	return workflow.NewDisposition(e.client, e.sessions.Current, workflow.Options{
		BaseURL:     e.client.BaseURL(),
		ReturnAfter: time.Duration(e.cfg.DispositionReturnDelayMs()) * time.Millisecond,
		Logger:      e.log,
	})
}

// openDisposition authorizes and loads the disposition named by raw.
func (app *App) openDisposition(cmd *cobra.Command, raw string) (*env, *workflow.Disposition, model.DispositionDetail, error) {
	id, err := parseID("disposition", raw)
	if err != nil {
		return nil, nil, model.DispositionDetail{}, err
	}
	e, _, err := app.authorize(cmd.Context(), nav.Location{Route: nav.RouteDisposition, ID: id})
	if err != nil {
		return nil, nil, model.DispositionDetail{}, err
	}
	wf := app.dispositionWorkflow(e)
	d, err := wf.Open(cmd.Context(), id)
	if err != nil {
		return nil, nil, model.DispositionDetail{}, err
	}
	return e, wf, d, nil
}

func newDispositionsShowCmd(app *App) *cobra.Command {
	var render bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one disposition (marks it read)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, d, err := app.openDisposition(cmd, args[0])
			if err != nil {
				return writeErr(cmd, app, err)
			}
			v := dispositionView{DispositionDetail: d}
			var meta map[string]any
			if render {
				v.rendered = markdown.Render(d.Instruction, 80, e.cfg.MarkdownStyle())
				meta = map[string]any{"rendered": v.rendered}
			}
			return writeOut(cmd, app, result{Data: v, Meta: meta, text: v.Text})
		},
	}

	cmd.Flags().BoolVar(&render, "render", false, "Render the instruction as markdown")
	return cmd
}

func newDispositionsRecipientsCmd(app *App) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "recipients <id>",
		Short: "List who a disposition can be forwarded to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, wf, _, err := app.openDisposition(cmd, args[0])
			if err != nil {
				return writeErr(cmd, app, err)
			}
			recs, err := wf.EnterForward(cmd.Context())
			if err != nil {
				return writeErr(cmd, app, err)
			}
			v := recipientListView{Items: make([]model.Recipient, 0, len(recs))}
			for _, r := range recs {
				if model.MatchesRecipient(r, search) {
					v.Items = append(v.Items, r)
				}
			}
			return writeOut(cmd, app, result{Data: v, text: v.Text})
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by name or department")
	return cmd
}

func newDispositionsForwardCmd(app *App) *cobra.Command {
	var to string
	var instruction string
	var pass passphraseFlags

	cmd := &cobra.Command{
		Use:   "forward <id>",
		Short: "Forward a disposition to one or more recipients",
		Example: strings.TrimSpace(`
  ttd dispositions recipients 11
  ttd dispositions forward 11 --to 7,8 --instruction "Please follow up" --passphrase-stdin
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDList(to)
			if err != nil {
				return writeErr(cmd, app, err)
			}
			passphrase, err := pass.read(cmd)
			if err != nil {
				return writeErr(cmd, app, err)
			}
			// Local validation first; no request is made for an incomplete form.
			draft := model.ForwardRequest{RecipientUserIDs: ids, Instruction: instruction, Passphrase: passphrase}
			if err := draft.Validate(); err != nil {
				return writeErr(cmd, app, err)
			}
			_, wf, d, err := app.openDisposition(cmd, args[0])
			if err != nil {
				return writeErr(cmd, app, err)
			}
			out, err := wf.Forward(cmd.Context(), ids, instruction, passphrase)
			if err != nil {
				return writeErr(cmd, app, err)
			}
			v := actionView{ID: d.ID, Message: out.Message}
			if nd, ok := wf.Detail(); ok && out.RefreshErr == nil {
				v.Status = nd.Status
			}
			res := result{Data: v, text: v.Text}
			if out.RefreshErr != nil {
				res.Meta = map[string]any{"refreshError": out.RefreshErr.Error()}
			}
			return writeOut(cmd, app, res)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Comma-separated recipient user ids")
	cmd.Flags().StringVar(&instruction, "instruction", "", "Instruction for the recipients")
	pass.bind(cmd)
	return cmd
}

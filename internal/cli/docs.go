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

type documentListView struct {
	Items      []model.DocumentSummary `json:"items"`
	Page       int                     `json:"page"`
	TotalPages int                     `json:"totalPages"`
	Search     string                  `json:"search,omitempty"`
}

func (v documentListView) Text(p format.Printer) string {
	if len(v.Items) == 0 {
		return p.Faint("No documents.")
	}
	rows := make([][]string, 0, len(v.Items))
	for _, d := range v.Items {
		rows = append(rows, []string{
			strconv.Itoa(d.ID),
			d.Title,
			d.SenderName,
			model.FormatDate(d.CreatedAt, model.DateShort),
			p.Status(string(d.Status)),
		})
	}
	return p.Table([]string{"ID", "Title", "From", "Date", "Status"}, rows) +
		"\n" + p.Faint(fmt.Sprintf("page %d of %d", v.Page, v.TotalPages))
}

type documentView struct {
	model.DocumentDetail
	Actionable bool `json:"actionable"`

	rendered string
}

func (v documentView) Text(p format.Printer) string {
	var b strings.Builder
	b.WriteString(p.KV(
		[2]string{"Title", p.Bold(v.Title)},
		[2]string{"ID", strconv.Itoa(v.ID)},
		[2]string{"From", v.SenderName},
		[2]string{"Department", v.SenderDepartment},
		[2]string{"Date", model.FormatDate(v.CreatedAt, model.DateLong)},
		[2]string{"Type", v.SigningType},
		[2]string{"Status", p.Status(string(v.Status))},
		[2]string{"File", v.FileURL},
	))
	body := v.rendered
	if body == "" {
		body = strings.TrimSpace(v.Description)
	}
	if body != "" {
		b.WriteString("\n\n")
		b.WriteString(body)
	}
	if v.Actionable {
		b.WriteString("\n\n")
		b.WriteString(p.Faint(fmt.Sprintf("ttd docs sign %d | ttd docs reject %d", v.ID, v.ID)))
	}
	return b.String()
}

type actionView struct {
	ID      int    `json:"id"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

func (v actionView) Text(p format.Printer) string {
	if v.Status == "" {
		return v.Message
	}
	return v.Message + " " + p.Faint("("+v.Status+")")
}

func newDocsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "docs",
		Aliases: []string{"documents"},
		Short:   "List, read, sign and reject documents",
	}
	cmd.AddCommand(newDocsListCmd(app))
	cmd.AddCommand(newDocsShowCmd(app))
	cmd.AddCommand(newDocsSignCmd(app))
	cmd.AddCommand(newDocsRejectCmd(app))
	cmd.AddCommand(newDocsStatsCmd(app))
	return cmd
}

func newDocsListCmd(app *App) *cobra.Command {
	var page int
	var search string
	var pendingOnly bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List documents addressed to you (one page)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := app.authorize(cmd.Context(), nav.Location{Route: nav.RouteDocuments})
			if err != nil {
				return writeErr(cmd, app, err)
			}
			ctl := listing.NewDocuments(e.client, e.sessions.Current)
			if err := ctl.GoTo(cmd.Context(), page); err != nil {
				return writeErr(cmd, app, err)
			}
			ctl.SetSearch(search)
			items := ctl.Visible()
			if pendingOnly {
				items = listing.Pending(items)
			}
			v := documentListView{
				Items:      items,
				Page:       ctl.CurrentPage(),
				TotalPages: ctl.TotalPages(),
				Search:     strings.TrimSpace(search),
			}
			return writeOut(cmd, app, result{Data: v, text: v.Text})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().StringVar(&search, "search", "", "Filter the page by title, sender or id")
	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "Only documents awaiting your signature")
	return cmd
}

func (app *App) documentWorkflow(e *env) *workflow.Document {
	return workflow.NewDocument(e.client, e.sessions.Current, workflow.Options{
		BaseURL:     e.client.BaseURL(),
		ReturnAfter: time.Duration(e.cfg.DocumentReturnDelayMs()) * time.Millisecond,
		Logger:      e.log,
	})
}

func newDocsShowCmd(app *App) *cobra.Command {
	var render bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("document", args[0])
			if err != nil {
				return writeErr(cmd, app, err)
			}
			e, _, err := app.authorize(cmd.Context(), nav.Location{Route: nav.RouteDocument, ID: id})
			if err != nil {
				return writeErr(cmd, app, err)
			}
			wf := app.documentWorkflow(e)
			d, err := wf.Open(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, app, err)
			}
			v := documentView{DocumentDetail: d, Actionable: wf.CanAct()}
			var meta map[string]any
			if render {
				v.rendered = markdown.Render(d.Description, 80, e.cfg.MarkdownStyle())
				meta = map[string]any{"rendered": v.rendered}
			}
			return writeOut(cmd, app, result{Data: v, Meta: meta, text: v.Text})
		},
	}

	cmd.Flags().BoolVar(&render, "render", false, "Render the document content as markdown")
	return cmd
}

// passphraseFlags binds --passphrase and --passphrase-stdin.
type passphraseFlags struct {
	value string
	stdin bool
}

func (f *passphraseFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.value, "passphrase", envOr("TTD_PASSPHRASE", ""), "Signing passphrase (prefer --passphrase-stdin)")
	cmd.Flags().BoolVar(&f.stdin, "passphrase-stdin", false, "Read the passphrase from stdin")
}

func (f *passphraseFlags) read(cmd *cobra.Command) (string, error) {
	if !f.stdin {
		return f.value, nil
	}
	return readSecret(cmd.InOrStdin())
}

func newDocsSignCmd(app *App) *cobra.Command {
	var pass passphraseFlags

	cmd := &cobra.Command{
		Use:   "sign <id>",
		Short: "Sign a pending document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("document", args[0])
			if err != nil {
				return writeErr(cmd, app, err)
			}
			passphrase, err := pass.read(cmd)
			if err != nil {
				return writeErr(cmd, app, err)
			}
			if err := workflow.CheckPassphrase(passphrase); err != nil {
				return writeErr(cmd, app, err)
			}
			e, _, err := app.authorize(cmd.Context(), nav.Location{Route: nav.RouteDocument, ID: id})
			if err != nil {
				return writeErr(cmd, app, err)
			}
			wf := app.documentWorkflow(e)
			if _, err := wf.Open(cmd.Context(), id); err != nil {
				return writeErr(cmd, app, err)
			}
			out, err := wf.Sign(cmd.Context(), passphrase)
			if err != nil {
				return writeErr(cmd, app, err)
			}
			return writeOut(cmd, app, actionResult(wf, id, out))
		},
	}

	pass.bind(cmd)
	return cmd
}

func newDocsRejectCmd(app *App) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("document", args[0])
			if err != nil {
				return writeErr(cmd, app, err)
			}
			if err := workflow.CheckReason(reason); err != nil {
				return writeErr(cmd, app, err)
			}
			e, _, err := app.authorize(cmd.Context(), nav.Location{Route: nav.RouteDocument, ID: id})
			if err != nil {
				return writeErr(cmd, app, err)
			}
			wf := app.documentWorkflow(e)
			if _, err := wf.Open(cmd.Context(), id); err != nil {
				return writeErr(cmd, app, err)
			}
			out, err := wf.Reject(cmd.Context(), reason)
			if err != nil {
				return writeErr(cmd, app, err)
			}
			return writeOut(cmd, app, actionResult(wf, id, out))
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Reason for rejection (required)")
	return cmd
}

func actionResult(wf *workflow.Document, id int, out workflow.Outcome) result {
	v := actionView{ID: id, Message: out.Message}
	if d, ok := wf.Detail(); ok && out.RefreshErr == nil {
		v.Status = string(d.Status)
	}
	res := result{Data: v, text: v.Text}
	if out.RefreshErr != nil {
		res.Meta = map[string]any{"refreshError": out.RefreshErr.Error()}
	}
	return res
}

func newDocsStatsCmd(app *App) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count pending, signed and rejected documents on a page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := app.authorize(cmd.Context(), nav.Home)
			if err != nil {
				return writeErr(cmd, app, err)
			}
			ctl := listing.NewDocuments(e.client, e.sessions.Current)
			if err := ctl.GoTo(cmd.Context(), page); err != nil {
				return writeErr(cmd, app, err)
			}
			s := listing.Stats(ctl.Items())
			return writeOut(cmd, app, result{
				Data: s,
				Meta: map[string]any{"page": ctl.CurrentPage(), "totalPages": ctl.TotalPages()},
				text: func(p format.Printer) string {
					return p.KV(
						[2]string{"Pending", strconv.Itoa(s.Pending)},
						[2]string{"Signed", strconv.Itoa(s.Signed)},
						[2]string{"Rejected", strconv.Itoa(s.Rejected)},
						[2]string{"Total", strconv.Itoa(s.Total)},
					)
				},
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	return cmd
}

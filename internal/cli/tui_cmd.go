package cli

import (
	"ttd-cli/internal/nav"
	"ttd-cli/internal/tui"

	"github.com/spf13/cobra"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [path]",
		Short: "Start the interactive TUI, optionally at a route such as /documents or /document/12",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var start nav.Location
			if len(args) == 1 {
				loc, err := nav.Parse(args[0])
				if err != nil {
					return writeErr(cmd, app, err)
				}
				start = loc
			}
			return runTUIAt(cmd, app, start)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	return runTUIAt(cmd, app, nav.Location{})
}

func runTUIAt(cmd *cobra.Command, app *App, start nav.Location) error {
	e, err := app.open(cmd.Context())
	if err != nil {
		return writeErr(cmd, app, err)
	}
	return tui.Run(cmd.Context(), tui.Deps{
		Sessions: e.sessions,
		Backend:  e.client,
		Config:   e.cfg,
		Logger:   e.log,
		Start:    start,
	})
}

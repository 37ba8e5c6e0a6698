package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"ttd-cli/internal/apperr"
	"ttd-cli/internal/format"

	"github.com/spf13/cobra"
)

type App struct {
	BaseURL    string
	Format     string
	PrettyJSON bool
	LogFile    string
	LogLevel   string

	env *env
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "ttd",
		Short:        "Document signing and disposition client (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  ttd

  # Scriptable commands
  ttd login --email budi@example.go.id --password-stdin
  ttd docs list --format text
  ttd docs sign 12 --passphrase "$PASSPHRASE"
  ttd dispositions forward 11 --to 7,8 --instruction "Please follow up" --passphrase "$PASSPHRASE"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		app.close()
	}

	cmd.PersistentFlags().StringVar(&app.BaseURL, "base-url", envOr("TTD_BASE_URL", ""), "Backend base URL (default: config.json baseUrl, then the built-in server)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TTD_FORMAT", "json"), "Output format (json|text)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", envOr("TTD_LOG_FILE", ""), "Log file (default: ~/.ttd/ttd.log)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("TTD_LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newDispositionsCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newMockServerCmd(app))
	cmd.AddCommand(newGuideCmd(app))
	cmd.AddCommand(newTUICmd(app))

	return cmd
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

// writeErr reports err on stderr. In JSON mode the error envelope also goes
// to stdout so scripts can branch on its kind.
func writeErr(cmd *cobra.Command, app *App, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	if app != nil && (app.Format == "" || app.Format == "json") {
		field := ""
		if ve, ok := apperr.IsValidation(err); ok {
			field = ve.Field
		}
		_ = format.WriteError(cmd.OutOrStdout(), apperr.KindOf(err), err.Error(), field)
	}
	return err
}

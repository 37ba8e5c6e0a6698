package cli

import (
	"fmt"
	"sort"

	"ttd-cli/internal/docs"
	"ttd-cli/internal/markdown"
	"ttd-cli/internal/store"

	"github.com/spf13/cobra"
)

func newGuideCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "guide [topic]",
		Short: "Show built-in usage guides",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				topics := docs.Topics()
				sort.Strings(topics)
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"topics": topics}})
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return writeErr(cmd, app, fmt.Errorf("unknown guide topic: %q (run `ttd guide` to list topics)", topic))
			}

			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			if app.Format == "text" {
				style := ""
				if cfg, err := store.LoadConfig(); err == nil {
					style = cfg.MarkdownStyle()
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), markdown.Render(body, 80, style))
				return err
			}

			return writeOut(cmd, app, map[string]any{"data": map[string]any{"topic": topic, "markdown": body}})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown (no JSON envelope)")

	return cmd
}

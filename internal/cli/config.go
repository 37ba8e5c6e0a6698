package cli

import (
	"fmt"
	"net/url"
	"strings"

	"ttd-cli/internal/apperr"
	"ttd-cli/internal/format"
	"ttd-cli/internal/store"

	"github.com/spf13/cobra"
)

type configView struct {
	Path                     string `json:"path"`
	BaseURL                  string `json:"baseUrl"`
	EffectiveBaseURL         string `json:"effectiveBaseUrl"`
	HTTPTimeoutSeconds       int    `json:"httpTimeoutSeconds"`
	DocumentReturnDelayMs    int    `json:"documentReturnDelayMs"`
	DispositionReturnDelayMs int    `json:"dispositionReturnDelayMs"`
	MarkdownStyle            string `json:"markdownStyle,omitempty"`
}

func (v configView) Text(p format.Printer) string {
	return p.KV(
		[2]string{"Config", v.Path},
		[2]string{"Base URL", v.EffectiveBaseURL},
		[2]string{"HTTP timeout", fmt.Sprintf("%ds", v.HTTPTimeoutSeconds)},
		[2]string{"Return delay", fmt.Sprintf("documents %dms, dispositions %dms", v.DocumentReturnDelayMs, v.DispositionReturnDelayMs)},
		[2]string{"Markdown", v.MarkdownStyle},
	)
}

func newConfigView(app *App, cfg *store.Config) (configView, error) {
	path, err := store.ConfigPath()
	if err != nil {
		return configView{}, err
	}
	return configView{
		Path:                     path,
		BaseURL:                  cfg.BaseURL,
		EffectiveBaseURL:         resolveBaseURL(app.BaseURL, cfg),
		HTTPTimeoutSeconds:       cfg.HTTPTimeoutSeconds,
		DocumentReturnDelayMs:    cfg.DocumentReturnDelayMs(),
		DispositionReturnDelayMs: cfg.DispositionReturnDelayMs(),
		MarkdownStyle:            cfg.MarkdownStyle(),
	}, nil
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change ~/.ttd/config.json",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetBaseURLCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, app, err)
			}
			v, err := newConfigView(app, cfg)
			if err != nil {
				return writeErr(cmd, app, err)
			}
			return writeOut(cmd, app, result{Data: v, text: v.Text})
		},
	}
}

func newConfigSetBaseURLCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-base-url <url>",
		Short: "Point the client at a different backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.TrimSpace(args[0])
			u, err := url.Parse(raw)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return writeErr(cmd, app, apperr.Validation("url", fmt.Sprintf("invalid base url: %q", raw)))
			}
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, app, err)
			}
			cfg.BaseURL = raw
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, app, err)
			}
			v, err := newConfigView(app, cfg)
			if err != nil {
				return writeErr(cmd, app, err)
			}
			return writeOut(cmd, app, result{Data: v, text: v.Text})
		},
	}
}

// Package markdown renders document content and disposition instructions for
// the terminal.
package markdown

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	rendererMu sync.Mutex
	// Keyed by style + wrap width. WithAutoStyle can block on terminal
	// queries, so styles are always resolved up front.
	renderers = map[string]*glamour.TermRenderer{}
)

// Render renders md wrapped at width. On any renderer error the input is
// returned unchanged.
func Render(md string, width int, style string) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}
	style = normalizeStyle(style)

	rendererMu.Lock()
	key := style + ":" + strconv.Itoa(width)
	r := renderers[key]
	rendererMu.Unlock()

	if r == nil {
		rr, err := newRenderer(style, width)
		if err != nil {
			return md
		}
		rendererMu.Lock()
		if existing := renderers[key]; existing != nil {
			r = existing
		} else {
			renderers[key] = rr
			r = rr
		}
		rendererMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func newRenderer(style string, width int) (*glamour.TermRenderer, error) {
	if style == styles.NoTTYStyle {
		return glamour.NewTermRenderer(
			glamour.WithStandardStyle(styles.NoTTYStyle),
			glamour.WithWordWrap(width),
		)
	}
	cfg := styleConfig(style)
	zero := uint(0)
	cfg.Document.Margin = &zero
	return glamour.NewTermRenderer(
		glamour.WithStyles(cfg),
		glamour.WithWordWrap(width),
	)
}

func normalizeStyle(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light":
		return styles.LightStyle
	case "notty", "plain":
		return styles.NoTTYStyle
	case "dark":
		return styles.DarkStyle
	default:
		return DetectStyle()
	}
}

// Resolve turns a configured preference into a concrete style name.
func Resolve(pref string) string { return normalizeStyle(pref) }

func styleConfig(style string) ansi.StyleConfig {
	var cfg ansi.StyleConfig
	if style == styles.LightStyle {
		cfg = styles.LightStyleConfig
	} else {
		cfg = styles.DarkStyleConfig
	}
	applyPalette(&cfg, style)
	return cfg
}

// DetectStyle picks dark or light without querying the terminal.
func DetectStyle() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TTD_TUI_MD_STYLE"))) {
	case "light":
		return styles.LightStyle
	case "dark":
		return styles.DarkStyle
	case "notty":
		return styles.NoTTYStyle
	}
	// COLORFGBG is often "fg;bg" (e.g. "15;0" => dark bg).
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			// Common xterm palette: 0-6 dark colors, 7-15 light colors.
			if bg >= 7 {
				return styles.LightStyle
			}
			return styles.DarkStyle
		}
	}
	if lipgloss.HasDarkBackground() {
		return styles.DarkStyle
	}
	return styles.LightStyle
}

var (
	textColor   = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"}
	accentColor = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#93C5FD"}
)

func applyPalette(cfg *ansi.StyleConfig, style string) {
	pick := func(c lipgloss.AdaptiveColor) *string {
		v := c.Dark
		if style == styles.LightStyle {
			v = c.Light
		}
		return &v
	}
	yes := true

	heading := pick(textColor)
	cfg.Heading.Color = heading
	cfg.H1.Color = heading
	cfg.H2.Color = heading
	cfg.H3.Color = heading

	cfg.Link.Color = pick(accentColor)
	cfg.Link.Underline = &yes
	cfg.LinkText.Color = pick(accentColor)

	cfg.Text.Color = pick(textColor)
	cfg.Strong.Color = nil
	cfg.Emph.Color = nil
}

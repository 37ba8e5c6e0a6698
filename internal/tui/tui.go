// Package tui is the interactive terminal client: login, dashboard, document
// and disposition lists and details, and the sign, reject and forward forms.
package tui

import (
	"context"
	"time"

	"ttd-cli/internal/api"
	"ttd-cli/internal/listing"
	"ttd-cli/internal/logging"
	"ttd-cli/internal/model"
	"ttd-cli/internal/nav"
	"ttd-cli/internal/store"
	"ttd-cli/internal/workflow"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Sessions is the session store the TUI drives (*session.Store).
type Sessions interface {
	Current() model.Session
	Login(ctx context.Context, email, password string) (model.Session, error)
	Logout(ctx context.Context) error
	Restore(ctx context.Context) (model.Session, error)
}

// Backend is every endpoint the views call (*api.Client).
type Backend interface {
	listing.DocumentSource
	listing.DispositionSource
	workflow.DocumentSource
	workflow.DispositionSource
	BaseURL() string
}

var _ Backend = (*api.Client)(nil)

type Deps struct {
	Sessions Sessions
	Backend  Backend
	Config   *store.Config
	Logger   *zap.Logger

	// Start is the first location requested. Zero means home.
	Start nav.Location
}

func (d Deps) documentReturnDelay() time.Duration {
	return time.Duration(d.Config.DocumentReturnDelayMs()) * time.Millisecond
}

func (d Deps) dispositionReturnDelay() time.Duration {
	return time.Duration(d.Config.DispositionReturnDelayMs()) * time.Millisecond
}

func Run(ctx context.Context, deps Deps) error {
	applyColorProfilePreference()
	applyThemePreference()
	if deps.Logger == nil {
		deps.Logger = logging.OrNop(nil)
	}
	m := newAppModel(ctx, deps)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

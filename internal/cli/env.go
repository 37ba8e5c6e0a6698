package cli

import (
	"context"
	"strconv"
	"strings"
	"time"

	"ttd-cli/internal/api"
	"ttd-cli/internal/logging"
	"ttd-cli/internal/model"
	"ttd-cli/internal/nav"
	"ttd-cli/internal/session"
	"ttd-cli/internal/store"

	"go.uber.org/zap"
)

// env is everything a command needs, built once per invocation.
type env struct {
	cfg      *store.Config
	store    store.Store
	log      *zap.Logger
	client   *api.Client
	sessions *session.Store
	guard    *nav.Guard
}

// resolveBaseURL applies flag/env > config.json > built-in default.
func resolveBaseURL(flag string, cfg *store.Config) string {
	if v := strings.TrimSpace(flag); v != "" {
		return v
	}
	if cfg != nil && strings.TrimSpace(cfg.BaseURL) != "" {
		return strings.TrimSpace(cfg.BaseURL)
	}
	return api.DefaultBaseURL
}

func (app *App) open(ctx context.Context) (*env, error) {
	if app.env != nil {
		return app.env, nil
	}
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	st, err := store.Default()
	if err != nil {
		return nil, err
	}

	logPath := strings.TrimSpace(app.LogFile)
	if logPath == "" {
		if p, err := store.DefaultLogPath(); err == nil {
			logPath = p
		}
	}
	log, err := logging.New(logPath, app.LogLevel)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, store: st, log: log, guard: nav.NewGuard()}
	opts := []api.Option{
		api.WithLogger(log),
		api.WithToken(func() string { return e.sessions.Token() }),
	}
	if cfg.HTTPTimeoutSeconds > 0 {
		opts = append(opts, api.WithTimeout(time.Duration(cfg.HTTPTimeoutSeconds)*time.Second))
	}
	e.client = api.New(resolveBaseURL(app.BaseURL, cfg), opts...)
	e.sessions = session.New(e.client, st, session.WithLogger(log))

	sess, err := e.sessions.Restore(ctx)
	if err != nil {
		log.Warn("restore session", zap.Error(err))
	}
	e.guard.Restored(sess.Authenticated())

	app.env = e
	return e, nil
}

func (app *App) close() {
	if app.env != nil && app.env.log != nil {
		_ = app.env.log.Sync()
	}
}

// authorize opens the env and checks that loc may be shown.
func (app *App) authorize(ctx context.Context, loc nav.Location) (*env, model.Session, error) {
	e, err := app.open(ctx)
	if err != nil {
		return nil, model.Session{}, err
	}
	d := e.guard.Resolve(loc)
	if d.Kind == nav.Redirect && d.To.Route == nav.RouteLogin {
		return nil, model.Session{}, errNotLoggedIn()
	}
	return e, e.sessions.Current(), nil
}

func parseID(kind, raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, errBadID(kind, raw)
	}
	return id, nil
}

func parseIDList(raw string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := parseID("recipient", part)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// Package session owns authentication state. It is the only writer of the
// persisted session; everything else reads through Current.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ttd-cli/internal/api"
	"ttd-cli/internal/apperr"
	"ttd-cli/internal/logging"
	"ttd-cli/internal/model"
	"ttd-cli/internal/store"

	"go.uber.org/zap"
)

const loginFallback = "Login failed. Please check your credentials."

// Authenticator performs the login request (*api.Client).
type Authenticator interface {
	Login(ctx context.Context, cred api.Credentials) (*api.LoginResponse, error)
}

// Persister is durable key/value storage (store.Store).
type Persister interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, kv map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

type Store struct {
	auth    Authenticator
	persist Persister
	log     *zap.Logger
	now     func() time.Time

	mu  sync.RWMutex
	cur model.Session
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = logging.OrNop(l) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func New(auth Authenticator, persist Persister, opts ...Option) *Store {
	s := &Store{
		auth:    auth,
		persist: persist,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// persistedUser is the value stored under store.KeyUser.
type persistedUser struct {
	model.UserIdentity
	Token      string    `json:"token"`
	LoginEmail string    `json:"login_email,omitempty"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

// Current returns a copy of the in-memory session.
func (s *Store) Current() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.cur
	if s.cur.Identity != nil {
		id := *s.cur.Identity
		out.Identity = &id
	}
	return out
}

// Token returns the bearer token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Token
}

// Login authenticates and persists the new session before returning it. On
// any failure the current session is left as it was.
func (s *Store) Login(ctx context.Context, email, password string) (model.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.Session{}, apperr.Validation("email", "please fill in all fields")
	}
	if password == "" {
		return model.Session{}, apperr.Validation("password", "please fill in all fields")
	}
	if s.auth == nil {
		return model.Session{}, errors.New("session: no authenticator")
	}

	resp, err := s.auth.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		var ae *apperr.APIError
		if errors.As(err, &ae) {
			s.log.Info("login refused", zap.Int("status", ae.StatusCode))
			return model.Session{}, &apperr.AuthError{Message: ae.Message, Err: err}
		}
		s.log.Warn("login failed", zap.Error(err))
		return model.Session{}, err
	}

	identity, token, err := extractLogin(resp.Body)
	if err != nil {
		s.log.Warn("login response unusable", zap.Error(err))
		return model.Session{}, &apperr.AuthError{Message: loginFallback, Err: err}
	}

	next := model.Session{Identity: identity, Token: token, Email: email, LoggedInAt: s.now().UTC()}
	if err := s.save(ctx, next); err != nil {
		return model.Session{}, fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.cur = next
	s.mu.Unlock()
	s.log.Info("logged in", zap.Int("user_id", identity.UserID))
	return s.Current(), nil
}

// Logout clears the persisted and in-memory session. The in-memory session
// is cleared even when the storage write fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	uid := s.cur.UserID()
	s.cur = model.Session{}
	s.mu.Unlock()

	if s.persist == nil {
		return nil
	}
	if err := s.persist.Delete(ctx, store.KeyAuthenticated, store.KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.log.Info("logged out", zap.Int("user_id", uid))
	return nil
}

// Restore hydrates the session from storage. Absent or malformed data yields
// an empty session and no error; only storage failures are returned.
func (s *Store) Restore(ctx context.Context) (model.Session, error) {
	if s.persist == nil {
		return model.Session{}, nil
	}
	flag, ok, err := s.persist.Get(ctx, store.KeyAuthenticated)
	if err != nil {
		return model.Session{}, err
	}
	if !ok || strings.TrimSpace(flag) != "true" {
		return model.Session{}, nil
	}
	raw, ok, err := s.persist.Get(ctx, store.KeyUser)
	if err != nil {
		return model.Session{}, err
	}
	if !ok {
		return model.Session{}, nil
	}

	var pu persistedUser
	if err := json.Unmarshal([]byte(raw), &pu); err != nil {
		s.log.Warn("ignoring malformed persisted session", zap.Error(err))
		return model.Session{}, nil
	}
	if pu.UserID <= 0 || strings.TrimSpace(pu.Token) == "" {
		s.log.Warn("ignoring incomplete persisted session")
		return model.Session{}, nil
	}

	identity := pu.UserIdentity
	next := model.Session{Identity: &identity, Token: pu.Token, Email: pu.LoginEmail, LoggedInAt: pu.LoggedInAt}
	s.mu.Lock()
	s.cur = next
	s.mu.Unlock()
	return s.Current(), nil
}

func (s *Store) save(ctx context.Context, sess model.Session) error {
	if s.persist == nil {
		return nil
	}
	b, err := json.Marshal(persistedUser{
		UserIdentity: *sess.Identity,
		Token:        sess.Token,
		LoginEmail:   sess.Email,
		LoggedInAt:   sess.LoggedInAt,
	})
	if err != nil {
		return err
	}
	return s.persist.Put(ctx, map[string]string{
		store.KeyAuthenticated: "true",
		store.KeyUser:          string(b),
	})
}

package session

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"ttd-cli/internal/api"
	"ttd-cli/internal/apperr"
	"ttd-cli/internal/mockapi"
	"ttd-cli/internal/store"

	"github.com/golang-jwt/jwt/v5"
)

type fakeAuth struct {
	calls int
	body  map[string]any
	err   error
}

func (f *fakeAuth) Login(_ context.Context, _ api.Credentials) (*api.LoginResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &api.LoginResponse{Body: f.body}, nil
}

type memPersist struct {
	kv     map[string]string
	putErr error
	puts   int
}

func newMem() *memPersist { return &memPersist{kv: map[string]string{}} }

func (m *memPersist) Get(_ context.Context, k string) (string, bool, error) {
	v, ok := m.kv[k]
	return v, ok, nil
}

func (m *memPersist) Put(_ context.Context, kv map[string]string) error {
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	for k, v := range kv {
		m.kv[k] = v
	}
	return nil
}

func (m *memPersist) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.kv, k)
	}
	return nil
}

func nestedBody() map[string]any {
	return map[string]any{
		"status": true,
		"data": map[string]any{
			"token": "nested-token",
			"user": map[string]any{
				"user_id":       float64(42),
				"user_name":     "Budi Santoso",
				"skpd_generate": "D1",
				"user_level_id": float64(3),
			},
		},
	}
}

func TestLogin_NestedShape(t *testing.T) {
	t.Parallel()

	auth := &fakeAuth{body: nestedBody()}
	mem := newMem()
	s := New(auth, mem)

	sess, err := s.Login(context.Background(), "budi", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Token != "nested-token" || sess.Identity.UserID != 42 || sess.Identity.LevelID != "3" || sess.Identity.SKPD != "D1" {
		t.Fatalf("unexpected session: %+v %+v", sess, sess.Identity)
	}
	if mem.kv[store.KeyAuthenticated] != "true" || mem.kv[store.KeyUser] == "" {
		t.Fatalf("session not persisted: %v", mem.kv)
	}
}

func TestLogin_FlatShapeWithAccessToken(t *testing.T) {
	t.Parallel()

	auth := &fakeAuth{body: map[string]any{
		"access_token": "flat-token",
		"user":         map[string]any{"user_id": "7", "user_name": "Sarah", "skpd_generate": float64(12)},
	}}
	s := New(auth, newMem())
	sess, err := s.Login(context.Background(), "sarah", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Token != "flat-token" || sess.Identity.UserID != 7 || sess.Identity.SKPD != "12" {
		t.Fatalf("unexpected session: %+v %+v", sess, sess.Identity)
	}
}

func TestLogin_PrefersNestedShape(t *testing.T) {
	t.Parallel()

	body := nestedBody()
	body["token"] = "flat-token"
	body["user"] = map[string]any{"user_id": float64(1), "user_name": "Other"}
	s := New(&fakeAuth{body: body}, newMem())
	sess, err := s.Login(context.Background(), "budi", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Token != "nested-token" || sess.Identity.UserID != 42 {
		t.Fatalf("expected nested shape to win, got %+v %+v", sess, sess.Identity)
	}
}

func TestLogin_FailuresLeaveSessionEmpty(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		auth *fakeAuth
	}{
		{"api error", &fakeAuth{err: &apperr.APIError{Op: "login", StatusCode: 401, Message: "Email atau password salah"}}},
		{"falsy status", &fakeAuth{err: &apperr.APIError{Op: "login", StatusCode: 200, Message: "Login failed. Please check your credentials."}}},
		{"no token", &fakeAuth{body: map[string]any{"status": true, "data": map[string]any{"user": map[string]any{"user_id": float64(1)}}}}},
		{"no user", &fakeAuth{body: map[string]any{"token": "t"}}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mem := newMem()
			s := New(tc.auth, mem)
			_, err := s.Login(context.Background(), "budi", "secret")
			var ae *apperr.AuthError
			if !errors.As(err, &ae) {
				t.Fatalf("expected AuthError, got %T %v", err, err)
			}
			if s.Current().Authenticated() || len(mem.kv) != 0 {
				t.Fatalf("session should stay empty: %+v %v", s.Current(), mem.kv)
			}
		})
	}
}

func TestLogin_ServerMessageSurfaced(t *testing.T) {
	t.Parallel()

	s := New(&fakeAuth{err: &apperr.APIError{Message: "Akun dinonaktifkan"}}, newMem())
	_, err := s.Login(context.Background(), "budi", "secret")
	if err == nil || err.Error() != "Akun dinonaktifkan" {
		t.Fatalf("expected server message, got %v", err)
	}
}

func TestLogin_EmptyFieldsNeverCallBackend(t *testing.T) {
	t.Parallel()

	auth := &fakeAuth{body: nestedBody()}
	s := New(auth, newMem())
	for _, in := range [][2]string{{"", "pw"}, {"  ", "pw"}, {"budi", ""}} {
		_, err := s.Login(context.Background(), in[0], in[1])
		if ve, ok := apperr.IsValidation(err); !ok || ve.Message != "please fill in all fields" {
			t.Fatalf("expected validation error for %q, got %v", in, err)
		}
	}
	if auth.calls != 0 {
		t.Fatalf("expected no backend calls, got %d", auth.calls)
	}
}

func TestLogin_PersistFailureKeepsSessionEmpty(t *testing.T) {
	t.Parallel()

	mem := newMem()
	mem.putErr = errors.New("disk full")
	s := New(&fakeAuth{body: nestedBody()}, mem)
	if _, err := s.Login(context.Background(), "budi", "secret"); err == nil {
		t.Fatalf("expected error")
	}
	if s.Current().Authenticated() {
		t.Fatalf("session must not be set when persistence fails")
	}
}

func TestRestore_RoundTripsAfterLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.Store{Dir: t.TempDir()}
	fixed := time.Date(2025, 4, 5, 9, 0, 0, 0, time.UTC)
	s := New(&fakeAuth{body: nestedBody()}, st, WithClock(func() time.Time { return fixed }))
	sess, err := s.Login(ctx, "budi", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	fresh := New(nil, st)
	got, err := fresh.Restore(ctx)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if *got.Identity != *sess.Identity || got.Token != sess.Token || !got.LoggedInAt.Equal(fixed) {
		t.Fatalf("restore mismatch: got %+v want %+v", got.Identity, sess.Identity)
	}
	if !fresh.Current().Authenticated() {
		t.Fatalf("expected hydrated session")
	}

	if err := fresh.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	again, err := New(nil, st).Restore(ctx)
	if err != nil || again.Authenticated() {
		t.Fatalf("expected empty session after logout, got %+v err=%v", again, err)
	}
}

func TestRestore_MalformedIsEmpty(t *testing.T) {
	t.Parallel()

	cases := map[string]map[string]string{
		"missing":      {},
		"flag false":   {store.KeyAuthenticated: "false", store.KeyUser: `{"user_id":1,"token":"t"}`},
		"bad json":     {store.KeyAuthenticated: "true", store.KeyUser: `{`},
		"no token":     {store.KeyAuthenticated: "true", store.KeyUser: `{"user_id":1}`},
		"no user key":  {store.KeyAuthenticated: "true"},
		"zero user id": {store.KeyAuthenticated: "true", store.KeyUser: `{"user_id":0,"token":"t"}`},
	}
	for name, kv := range cases {
		mem := newMem()
		for k, v := range kv {
			mem.kv[k] = v
		}
		got, err := New(nil, mem).Restore(context.Background())
		if err != nil {
			t.Fatalf("%s: unexpected error %v", name, err)
		}
		if got.Authenticated() || got.Identity != nil {
			t.Fatalf("%s: expected empty session, got %+v", name, got)
		}
	}
}

func TestLogin_AgainstMockBackend(t *testing.T) {
	t.Parallel()

	m := mockapi.Seeded()
	srv := httptest.NewServer(m.Handler())
	t.Cleanup(srv.Close)

	client := api.New(srv.URL+"/api/", api.WithHTTPClient(srv.Client()))
	s := New(client, newMem())
	sess, err := s.Login(context.Background(), "budi", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Identity.Name != "Budi Santoso" || sess.Identity.SKPDName != "Dinas Komunikasi dan Informatika" {
		t.Fatalf("unexpected identity: %+v", sess.Identity)
	}

	_, err = s.Login(context.Background(), "budi", "wrong")
	if apperr.KindOf(err) != apperr.KindAuth || err.Error() != "Email atau password salah" {
		t.Fatalf("expected auth error with server message, got %v", err)
	}
	// The earlier session survives a failed re-login.
	if s.Current().UserID() != 42 {
		t.Fatalf("expected previous session kept")
	}
}

func TestTokenExpiry(t *testing.T) {
	t.Parallel()

	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix(), "sub": "42"}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	got, ok := TokenExpiry(tok)
	if !ok || !got.Equal(exp) {
		t.Fatalf("expected %v, got %v ok=%v", exp, got, ok)
	}
	if _, ok := TokenExpiry("token-42"); ok {
		t.Fatalf("opaque token should have no expiry")
	}
}

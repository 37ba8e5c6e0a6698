package model

import (
	"strings"
	"time"
)

// UserIdentity is the signed-in user as reported by the login endpoint.
type UserIdentity struct {
	UserID   int    `json:"user_id"`
	Name     string `json:"user_name"`
	Username string `json:"user_username,omitempty"`
	Email    string `json:"user_email,omitempty"`

	// SKPD is the department code used to scope list and recipient queries.
	SKPD     string `json:"skpd_generate"`
	SKPDName string `json:"skpd_name,omitempty"`

	LevelID string `json:"user_level_id"`
}

// DisplayName prefers the full name, then the username, then the email.
func (u UserIdentity) DisplayName() string {
	for _, s := range []string{u.Name, u.Username, u.Email} {
		if strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// Session holds authentication state. Token is set iff Identity is set.
type Session struct {
	Identity *UserIdentity `json:"identity,omitempty"`
	Token    string        `json:"token,omitempty"`

	// Email is the login name that produced the session.
	Email      string    `json:"email,omitempty"`
	LoggedInAt time.Time `json:"loggedInAt,omitempty"`
}

// Authenticated reports whether the session carries both identity and token.
func (s Session) Authenticated() bool {
	return s.Identity != nil && strings.TrimSpace(s.Token) != ""
}

// WellFormed reports whether the identity/token invariant holds: either both
// are present or both are absent.
func (s Session) WellFormed() bool {
	hasToken := strings.TrimSpace(s.Token) != ""
	return (s.Identity != nil) == hasToken
}

// UserID returns the identity's user id, or 0 when signed out.
func (s Session) UserID() int {
	if s.Identity == nil {
		return 0
	}
	return s.Identity.UserID
}

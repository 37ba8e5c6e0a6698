package cli

import (
	"fmt"

	"ttd-cli/internal/apperr"
)

func errNotLoggedIn() error {
	return &apperr.AuthError{Message: "not logged in; run `ttd login` first"}
}

func errAlreadyLoggedIn(name string) error {
	return &apperr.AuthError{Message: fmt.Sprintf("already logged in as %s; run `ttd logout` first", name)}
}

func errBadID(kind, raw string) error {
	return apperr.Validation("id", fmt.Sprintf("invalid %s id: %q", kind, raw))
}

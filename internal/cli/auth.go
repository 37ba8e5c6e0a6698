package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"ttd-cli/internal/format"
	"ttd-cli/internal/model"
	"ttd-cli/internal/nav"
	"ttd-cli/internal/session"

	"github.com/spf13/cobra"
)

type profileView struct {
	UserID      int        `json:"userId"`
	Name        string     `json:"name"`
	Username    string     `json:"username,omitempty"`
	Email       string     `json:"email,omitempty"`
	Department  string     `json:"department,omitempty"`
	DeptCode    string     `json:"departmentCode"`
	LevelID     string     `json:"levelId"`
	LoggedInAt  *time.Time `json:"loggedInAt,omitempty"`
	TokenExpiry *time.Time `json:"tokenExpiresAt,omitempty"`
}

func newProfileView(s model.Session) profileView {
	id := s.Identity
	v := profileView{
		UserID:     id.UserID,
		Name:       id.DisplayName(),
		Username:   id.Username,
		Email:      id.Email,
		Department: id.SKPDName,
		DeptCode:   id.SKPD,
		LevelID:    id.LevelID,
	}
	if !s.LoggedInAt.IsZero() {
		t := s.LoggedInAt
		v.LoggedInAt = &t
	}
	if exp, ok := session.TokenExpiry(s.Token); ok {
		v.TokenExpiry = &exp
	}
	return v
}

func (v profileView) Text(p format.Printer) string {
	pairs := [][2]string{
		{"Name", p.Bold(v.Name)},
		{"User ID", fmt.Sprint(v.UserID)},
		{"Username", v.Username},
		{"Email", v.Email},
		{"Department", v.Department},
		{"Level", v.LevelID},
	}
	if v.LoggedInAt != nil {
		pairs = append(pairs, [2]string{"Logged in", v.LoggedInAt.Local().Format("02 Jan 2006 15:04")})
	}
	if v.TokenExpiry != nil {
		pairs = append(pairs, [2]string{"Token expires", v.TokenExpiry.Local().Format("02 Jan 2006 15:04")})
	}
	return p.KV(pairs...)
}

func newLoginCmd(app *App) *cobra.Command {
	var email string
	var password string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.open(cmd.Context())
			if err != nil {
				return writeErr(cmd, app, err)
			}
			if d := e.guard.Resolve(nav.Login); d.Kind == nav.Redirect {
				return writeErr(cmd, app, errAlreadyLoggedIn(e.sessions.Current().Identity.DisplayName()))
			}
			if passwordStdin {
				pw, err := readSecret(cmd.InOrStdin())
				if err != nil {
					return writeErr(cmd, app, err)
				}
				password = pw
			}
			sess, err := e.sessions.Login(cmd.Context(), email, password)
			if err != nil {
				return writeErr(cmd, app, err)
			}
			e.guard.OnLogin()
			v := newProfileView(sess)
			return writeOut(cmd, app, result{Data: v, text: v.Text})
		},
	}

	cmd.Flags().StringVar(&email, "email", envOr("TTD_EMAIL", ""), "Email or username")
	cmd.Flags().StringVar(&password, "password", envOr("TTD_PASSWORD", ""), "Password (prefer --password-stdin)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.open(cmd.Context())
			if err != nil {
				return writeErr(cmd, app, err)
			}
			if err := e.sessions.Logout(cmd.Context()); err != nil {
				return writeErr(cmd, app, err)
			}
			e.guard.OnLogout()
			return writeOut(cmd, app, result{
				Data: map[string]any{"loggedOut": true},
				text: func(format.Printer) string { return "Logged out." },
			})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Aliases: []string{"profile"},
		Short:   "Show the signed-in user",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sess, err := app.authorize(cmd.Context(), nav.Location{Route: nav.RouteProfile})
			if err != nil {
				return writeErr(cmd, app, err)
			}
			v := newProfileView(sess)
			return writeOut(cmd, app, result{Data: v, text: v.Text})
		},
	}
}

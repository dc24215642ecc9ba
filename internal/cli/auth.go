package cli

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/spf13/cobra"

	"tugestor-cli/internal/model"
)

func newLoginCmd(app *App) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" || password == "" {
				return writeErr(cmd, errors.New("missing --email or --password"))
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := ctxOf(cmd)
			resp, err := c.Login(ctx, strings.TrimSpace(email), password)
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(resp.Token) == "" {
				return writeErr(cmd, errors.New("login response did not include a token"))
			}
			if err := c.Session.SetToken(ctx, resp.Token); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": model.User{ID: resp.UserID, Name: resp.Name, Email: resp.Email}})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", envOr("TUGESTOR_PASSWORD", ""), "Account password")
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var name string
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			u, err := c.Register(ctxOf(cmd), strings.TrimSpace(name), strings.TrimSpace(email), password)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": u})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", envOr("TUGESTOR_PASSWORD", ""), "Account password")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.ClearToken(ctxOf(cmd)); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"loggedIn": false}})
		},
	}
}

type whoami struct {
	LoggedIn  bool   `json:"loggedIn"`
	BaseURL   string `json:"baseUrl"`
	Subject   string `json:"sub,omitempty"`
	Email     string `json:"email,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`
	Expired   bool   `json:"expired,omitempty"`
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the session state (token claims are not verified)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session()
			if err != nil {
				return writeErr(cmd, err)
			}
			tok, ok, err := s.Token(ctxOf(cmd))
			if err != nil {
				return writeErr(cmd, err)
			}
			out := whoami{LoggedIn: ok, BaseURL: app.baseURL()}
			if ok {
				describeToken(tok, &out)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}

// describeToken fills claim details when tok happens to be a JWT. Any token counts as logged in.
func describeToken(tok string, out *whoami) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return
	}
	out.Subject, _ = claims["sub"].(string)
	out.Email, _ = claims["email"].(string)
	if exp, ok := claims["exp"].(float64); ok {
		t := time.Unix(int64(exp), 0)
		out.ExpiresAt = t.Format(time.RFC3339)
		out.Expired = time.Now().After(t)
	}
}

package account

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thenoetrevino/circles/internal/app"
	"github.com/thenoetrevino/circles/internal/cli"
	"github.com/thenoetrevino/circles/internal/cli/handler"
	"github.com/thenoetrevino/circles/internal/cli/styles"
	"github.com/thenoetrevino/circles/internal/models"
	"github.com/thenoetrevino/circles/internal/share"
	"github.com/thenoetrevino/circles/internal/syncer"
)

// PasswordEnvVar supplies the password when --password is not given
const PasswordEnvVar = "CIRCLES_PASSWORD"

// AuthCmd returns the auth parent command
func AuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign up, sign in and out",
		Long: `Manage your account session.

Signed out, boards live in an offline snapshot on this machine. Signing in
switches to your remote boards and merges the offline boards into your
account. Signing in with --join adds a shared board to your account
instead.`,
	}

	cmd.AddCommand(SignUpCmd())
	cmd.AddCommand(LoginCmd())
	cmd.AddCommand(LogoutCmd())
	cmd.AddCommand(WhoAmICmd())

	return cmd
}

func addCredentialFlags(cmd *cobra.Command) {
	cmd.Flags().String("password", "", "Password (defaults to $"+PasswordEnvVar+", then the first line of stdin)")
	cmd.Flags().String("join", "", "Share link of a board to join instead of merging offline boards")
	cli.AddOutputFlags(cmd)
}

// SignUpCmd returns the auth signup subcommand
func SignUpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup <email>",
		Short: "Create an account and sign in",
		Long: `Create an account and sign in. Offline boards are merged into the new
account; a title that already exists remotely is reported and left out.

Examples:
  CIRCLES_PASSWORD=... circles auth signup me@example.com
  circles auth signup me@example.com --join https://circles.example/board/share/1f0c...`,
		Args: cobra.ExactArgs(1),
		RunE: handler.Func(func(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
			return runLogin(ctx, c, args, c.App.SignUp)
		}),
	}

	addCredentialFlags(cmd)

	return cmd
}

// LoginCmd returns the auth login subcommand
func LoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in",
		Long: `Sign in and switch to your remote boards. Offline boards are merged into
your account on the way in.

Examples:
  circles auth login me@example.com --password hunter22
  echo "$PW" | circles auth login me@example.com --json`,
		Args: cobra.ExactArgs(1),
		RunE: handler.Func(func(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
			return runLogin(ctx, c, args, c.App.SignIn)
		}),
	}

	addCredentialFlags(cmd)

	return cmd
}

type loginFunc func(ctx context.Context, email, password, joinBoardID string) (*app.LoginResult, error)

// loginView is the outcome of signing in without the access token
type loginView struct {
	UserID  string              `json:"userId"`
	Email   string              `json:"email"`
	Merge   *syncer.MergeReport `json:"merge,omitempty"`
	Joined  *models.BoardMeta   `json:"joined,omitempty"`
	Warning string              `json:"warning,omitempty"`
}

func (v loginView) GetID() string { return v.UserID }

func (v loginView) String() string {
	var b strings.Builder
	b.WriteString(styles.SuccessStyle.Render("Signed in as " + v.Email))
	if v.Joined != nil {
		fmt.Fprintf(&b, "\nJoined %s", v.Joined.Title)
	}
	if v.Merge != nil {
		if n := len(v.Merge.Created); n > 0 {
			fmt.Fprintf(&b, "\nMerged %d offline board(s) into your account", n)
		}
		for _, s := range v.Merge.Skipped {
			fmt.Fprintf(&b, "\n%s %s (%s)", styles.ErrorStyle.Render("Skipped"), s.Title, s.Reason)
		}
	}
	if v.Warning != "" {
		b.WriteString("\n" + styles.ErrorStyle.Render("Warning: ") + v.Warning)
	}
	return b.String()
}

func runLogin(ctx context.Context, c *cli.CLI, args *handler.Arguments, login loginFunc) (any, error) {
	email := args.Args[0]
	password, err := readPassword(args)
	if err != nil {
		return nil, err
	}

	joinID := ""
	if link := args.GetString("join", ""); link != "" {
		if joinID, err = share.ParseLink(link); err != nil {
			return nil, err
		}
	}

	res, err := login(ctx, email, password, joinID)
	if err != nil {
		return nil, err
	}

	view := loginView{Merge: res.Merge, Joined: res.Joined}
	if res.Session != nil {
		view.UserID = res.Session.UserID
		view.Email = res.Session.Email
	}
	if res.Err != nil {
		view.Warning = res.Err.Error()
	}
	if res.Joined != nil {
		if _, err := c.App.Sync.Open(ctx, res.Joined.ID); err != nil {
			return nil, err
		}
	}
	return view, nil
}

func readPassword(args *handler.Arguments) (string, error) {
	if p := args.GetString("password", ""); p != "" {
		return p, nil
	}
	if p := os.Getenv(PasswordEnvVar); p != "" {
		return p, nil
	}
	cmd := args.GetCmd()
	return promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
}

// promptPassword reads without echo from a terminal, else the first line of in
func promptPassword(in io.Reader, prompt io.Writer) (string, error) {
	var password string
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(prompt, "Password: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(raw)
	} else {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if password == "" {
		return "", errors.New("password required: pass --password, set $" + PasswordEnvVar + " or pipe it on stdin")
	}
	return password, nil
}

// LogoutCmd returns the auth logout subcommand
func LogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and return to offline boards",
		Args:  cobra.NoArgs,
		RunE: handler.Func(func(ctx context.Context, c *cli.CLI, _ *handler.Arguments) (any, error) {
			if err := c.App.Auth.SignOut(ctx); err != nil {
				return nil, err
			}
			return statusView{Mode: syncer.ModeLocal}, nil
		}),
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

// WhoAmICmd returns the auth whoami subcommand
func WhoAmICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account and the board store in use",
		Args:  cobra.NoArgs,
		RunE: handler.Func(func(ctx context.Context, c *cli.CLI, _ *handler.Arguments) (any, error) {
			mode, err := c.App.Sync.Mode(ctx)
			if err != nil {
				return nil, err
			}
			view := statusView{Mode: mode}
			if sess, ok := c.App.Auth.CurrentSession(); ok {
				view.SignedIn = true
				view.UserID = sess.UserID
				view.Email = sess.Email
			}
			return view, nil
		}),
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

type statusView struct {
	SignedIn bool        `json:"signedIn"`
	UserID   string      `json:"userId,omitempty"`
	Email    string      `json:"email,omitempty"`
	Mode     syncer.Mode `json:"mode"`
}

func (v statusView) GetID() string { return v.UserID }

func (v statusView) String() string {
	if !v.SignedIn {
		return fmt.Sprintf("Signed out. Using %s boards.", v.Mode)
	}
	return fmt.Sprintf("%s %s\n%s %s", styles.LabelStyle.Render("Signed in as:"), v.Email,
		styles.LabelStyle.Render("Boards:"), v.Mode)
}

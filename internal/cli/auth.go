package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type statusView struct {
	Server string `json:"server" yaml:"server"`
	State  string `json:"state" yaml:"state"`
	User   string `json:"user,omitempty" yaml:"user,omitempty"`
}

func (rt *runtime) statusView() statusView {
	return statusView{
		Server: rt.session.Server(),
		State:  rt.session.State().String(),
		User:   rt.session.Identity(),
	}
}

func newStatusCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who the stored token belongs to",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			if _, err := rt.session.RefreshStatus(cmd.Context()); err != nil {
				return err
			}
			return rt.print(cmd, rt.statusView())
		}),
	}
}

func newSignInCmd(rt *runtime) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "signin <username>",
		Short: "Sign in with a username and password",
		Long: `Sign in with a username and password.

Without --password the password is read from the first line of standard
input, so it stays out of your shell history:

  echo "$JUB_PASSWORD" | jub signin jdoe`,
		Args: cobra.ExactArgs(1),
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = readLine(cmd); err != nil {
					return err
				}
			}

			if _, err := rt.session.SignIn(cmd.Context(), args[0], password); err != nil {
				return fmt.Errorf("sign in failed: %w", err)
			}
			if _, err := rt.session.RefreshStatus(cmd.Context()); err != nil {
				return err
			}

			okLabel.Fprintf(cmd.ErrOrStderr(), "Signed in as %s\n", rt.session.Identity())
			return nil
		}),
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (read from stdin when empty)")
	return cmd
}

func readLine(cmd *cobra.Command) (string, error) {
	dimLabel.Fprint(cmd.ErrOrStderr(), "Password: ")

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", errors.New("empty password")
	}
	return line, nil
}

func newSignOutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			if rt.session.Token() == "" {
				dimLabel.Fprintln(cmd.ErrOrStderr(), "Not signed in.")
				return nil
			}
			if _, err := rt.session.SignOut(cmd.Context()); err != nil {
				return fmt.Errorf("sign out failed: %w", err)
			}

			okLabel.Fprintln(cmd.ErrOrStderr(), "Signed out.")
			return nil
		}),
	}
}

func newOnCampusCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "oncampus",
		Short: "Ask the server whether this machine is on the campus network",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			resp, err := rt.session.IsOnCampus(cmd.Context())
			if err != nil {
				return err
			}
			return rt.print(cmd, resp.Payload)
		}),
	}
}

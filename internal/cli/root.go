// Package cli implements the jub command, a terminal client for an OpenJUB
// directory server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aussiebroadwan/openjub/pkg/jubsdk"
	"github.com/aussiebroadwan/openjub/pkg/slogx"
	"github.com/aussiebroadwan/openjub/pkg/tokenstore/sqlite"
	"github.com/spf13/cobra"
)

// Version is overridden at build time via -ldflags.
var Version = "v0.1.0"

// runtime is the state shared by every command during one invocation.
type runtime struct {
	cfg     Config
	logger  *slog.Logger
	store   *sqlite.Store
	session *jubsdk.Session
}

// NewRootCmd builds the command tree with cfg as flag defaults.
func NewRootCmd(cfg Config) *cobra.Command {
	rt := &runtime{cfg: cfg}

	root := &cobra.Command{
		Use:   "jub",
		Short: "Command line client for an OpenJUB directory",
		Long: `jub talks to an OpenJUB directory server.

The session token is kept in a local SQLite database, so a sign-in carries
over between invocations until it expires or you sign out.

Examples:
  jub signin jdoe
  jub me --fields fullName,email
  jub query "college:mercator" --fields username --pages 0
  jub search nguyen -o yaml
  jub signout`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rt.open,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&rt.cfg.Server, "server", "s", cfg.Server, "OpenJUB server address")
	flags.StringVarP(&rt.cfg.Output, "output", "o", cfg.Output, "Output format (json, yaml)")
	flags.StringVar(&rt.cfg.TokenDB, "token-db", cfg.TokenDB, "Path to the token database")
	flags.StringVar(&rt.cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	root.AddCommand(
		newVersionCmd(),
		newStatusCmd(rt),
		newSignInCmd(rt),
		newSignOutCmd(rt),
		newOnCampusCmd(rt),
		newMeCmd(rt),
		newUserCmd(rt),
		newListCmd(rt, jubsdk.KindQuery),
		newListCmd(rt, jubsdk.KindSearch),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCmd(LoadConfig())
	if err := root.ExecuteContext(ctx); err != nil {
		errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (rt *runtime) open(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	if err := validOutput(rt.cfg.Output); err != nil {
		return err
	}

	rt.logger = slogx.New(slogx.Config{
		Service: "jub",
		Version: Version,
		Level:   rt.cfg.LogLevel,
		Format:  "text",
		Output:  cmd.ErrOrStderr(),
	})

	if err := os.MkdirAll(filepath.Dir(rt.cfg.TokenDB), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	store, err := sqlite.Open(rt.cfg.TokenDB)
	if err != nil {
		return fmt.Errorf("open token database: %w", err)
	}
	rt.store = store

	if _, err := store.DeleteExpired(cmd.Context()); err != nil {
		rt.logger.Warn("purge expired tokens", "error", err)
	}

	rt.session = jubsdk.New(rt.cfg.Server,
		jubsdk.WithTokenStore(store),
		jubsdk.WithLogger(rt.logger),
	)
	rt.session.RestoreToken(cmd.Context())
	return nil
}

// run wraps a command body so the token database is closed even when the
// body fails.
func (rt *runtime) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() { err = errors.Join(err, rt.close()) }()
		return fn(cmd, args)
	}
}

func (rt *runtime) close() error {
	if rt.store == nil {
		return nil
	}
	err := rt.store.Close()
	rt.store = nil
	return err
}

// print writes v to the command's output in the selected format.
func (rt *runtime) print(cmd *cobra.Command, v any) error {
	return printValue(cmd.OutOrStdout(), rt.cfg.Output, v)
}

// requireToken fails early for commands that make no sense anonymously.
func (rt *runtime) requireToken() error {
	if rt.session.State() == jubsdk.Anonymous {
		return errNotSignedIn
	}
	return nil
}

var errNotSignedIn = errors.New("not signed in; run 'jub signin <username>' first")

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of jub",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("jub %s\n", Version)
		},
	}
}

// Command garmin-session creates, tests and moves Garmin Connect sessions so
// scheduled jobs can authenticate without a password prompt.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fitsync/fitsync/client/garmin"
	"github.com/fitsync/fitsync/internal/cli"
	"github.com/fitsync/fitsync/internal/config"
	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/internal/metrics"
	"github.com/fitsync/fitsync/internal/session"
)

var errorHandler = cli.Handler{
	Hint:     "Set GARMIN_EMAIL and GARMIN_PASSWORD, then run 'garmin-session login'.",
	Expected: []error{session.ErrNoSession, session.ErrInvalidEncoding},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	os.Exit(errorHandler.Report(os.Stdout, err))
}

// app is the state shared by every subcommand, filled in before each runs.
type app struct {
	common  *config.Common
	garmin  *config.Garmin
	manager *session.Manager
}

func (a *app) flushMetrics() {
	if a.common == nil {
		return
	}
	if err := metrics.WriteTextfile(a.common.MetricsTextfile); err != nil {
		log.Warn().Err(err).Msg("could not write metrics")
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "garmin-session",
		Short: "Garmin Session Authentication Manager",
		Long: `Garmin Session Authentication Manager

Keeps a Garmin Connect login in GARMIN_SESSION_DIR and reuses it until it is
older than 360 days or Garmin rejects it. Export the session once on a
trusted machine and store it as the GARMIN_SESSION secret of a CI job.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.flushMetrics()
		},
	}

	rootCmd.AddCommand(newLoginCmd(a))
	rootCmd.AddCommand(newExportCmd(a))
	rootCmd.AddCommand(newImportCmd(a))
	rootCmd.AddCommand(newTestCmd(a))
	return rootCmd
}

func (a *app) setup(logOut io.Writer) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	var err error
	if a.common, err = config.LoadCommon(); err != nil {
		return err
	}
	logger.Init(logOut, a.common.LogLevel)

	if a.garmin, err = config.LoadGarmin(); err != nil {
		return err
	}
	cfg := a.garmin
	a.manager, err = session.NewManager(cfg.SessionDir,
		session.Credentials{Email: cfg.Email, Password: cfg.Password},
		session.WithClientOptions(
			garmin.WithSSOURL(cfg.SSOURL),
			garmin.WithAPIURL(cfg.APIURL),
			garmin.WithTokenURL(cfg.TokenURL),
			garmin.WithClientID(cfg.ClientID),
			garmin.WithHTTPTimeout(cfg.HTTPTimeout),
		),
	)
	return err
}

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Create a new session from GARMIN_EMAIL and GARMIN_PASSWORD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.manager.Login(cmd.Context(), true); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "\nSession created successfully!")
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the session as base64 for a CI secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			encoded, err := a.manager.Export()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			rule := strings.Repeat("=", 60)
			fmt.Fprintf(out, "\n%s\nSESSION DATA FOR GITHUB SECRET\n%s\n", rule, rule)
			fmt.Fprintln(out, "\nAdd this as a GitHub secret named 'GARMIN_SESSION':")
			fmt.Fprintf(out, "\n%s\n", encoded)
			fmt.Fprintf(out, "\n%s\n", rule)
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import [encoded]",
		Short: "Restore an exported session from the argument or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var encoded string
			if len(args) == 1 {
				encoded = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read session from stdin: %w", err)
				}
				encoded = string(data)
			}
			if err := a.manager.Import(encoded); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session imported to %s\n", a.manager.Store().Path())
			return nil
		},
	}
}

func newTestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Authenticate with the current session and print the account name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.garmin.Session != "" {
				log.Info().Msg("using session from GARMIN_SESSION")
			}
			client, err := a.manager.Resolve(cmd.Context(), a.garmin.Session)
			if err != nil {
				return err
			}
			profile, err := client.UserProfile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authenticated as: %s\n", profile.Name())
			return nil
		},
	}
}

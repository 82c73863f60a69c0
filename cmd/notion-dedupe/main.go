// Command notion-dedupe archives duplicate activities in a Notion database,
// keeping the oldest copy of each.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fitsync/fitsync/client/notion"
	"github.com/fitsync/fitsync/internal/cli"
	"github.com/fitsync/fitsync/internal/config"
	"github.com/fitsync/fitsync/internal/dedupe"
	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/internal/metrics"
)

const retryBaseDelay = 500 * time.Millisecond

var errorHandler = cli.Handler{
	Hint:      "Please check your Notion token and database ID.",
	Cancelled: "Cleanup cancelled.",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	os.Exit(errorHandler.Report(os.Stdout, err))
}

// NewRootCmd constructs the command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	var common *config.Common

	return &cobra.Command{
		Use:           "notion-dedupe",
		Short:         "Archive duplicate activities in a Notion database",
		Long:          "Finds activities sharing Date + Activity Type + Activity Name and archives every copy except the one created first.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			var err error
			if common, err = config.LoadCommon(); err != nil {
				return err
			}
			logger.Init(cmd.ErrOrStderr(), common.LogLevel)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer func() {
				if err := metrics.WriteTextfile(common.MetricsTextfile); err != nil {
					log.Warn().Err(err).Msg("could not write metrics")
				}
			}()
			return run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func run(ctx context.Context, in io.Reader, out io.Writer) error {
	cfg, err := config.LoadNotion()
	if err != nil {
		return err
	}
	client, err := notion.New(cfg.Token,
		notion.WithBaseURL(cfg.BaseURL),
		notion.WithVersion(cfg.Version),
		notion.WithHTTPTimeout(cfg.HTTPTimeout),
		notion.WithMaxRetries(cfg.MaxRetries, retryBaseDelay),
	)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "=== Notion Activities Duplicate Cleanup ===")
	fmt.Fprintln(out, "This tool will identify and remove duplicate activities.")
	fmt.Fprintln(out, "Duplicates are identified by: Date + Activity Type + Activity Name")
	fmt.Fprintln(out, "The oldest entry (by creation time) will be kept.")
	fmt.Fprintln(out)

	prompt := cli.NewPrompter(in, out)
	if ok, err := prompt.Confirm("Do you want to proceed?"); err != nil {
		return err
	} else if !ok {
		return cli.ErrCancelled
	}

	fmt.Fprintln(out, "Fetching all activities from Notion...")
	inv, err := dedupe.FetchAll(ctx, client, cfg.DatabaseID, cfg.PageSize)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Found %d total activities\n", len(inv.All))

	plan := dedupe.Classify(inv)
	plan.WriteReport(out)

	if len(plan.Remove) == 0 {
		fmt.Fprintln(out, "\nNo duplicates found! Your database is clean.")
		return nil
	}

	fmt.Fprintf(out, "\nFound %d duplicate activities to remove.\n", len(plan.Remove))
	if ok, err := prompt.Confirm("Proceed with removal?"); err != nil {
		return err
	} else if !ok {
		return cli.ErrCancelled
	}

	res := dedupe.Archive(ctx, client, plan.Remove, out)
	if err := ctx.Err(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nDuplicate cleanup completed successfully!")
	fmt.Fprintln(out, "Note: Duplicates were archived (not permanently deleted).")
	log.Info().Int("archived", len(res.Archived)).Int("failed", len(res.Failed)).Msg("cleanup finished")
	return nil
}

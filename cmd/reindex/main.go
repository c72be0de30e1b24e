package main

// Rebuild search index entries from stored blobs:
//   go run ./cmd/reindex
//   go run ./cmd/reindex --user <owner-id> --batch-size 50

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"docqa-backend/internal/bootstrap"
	"docqa-backend/internal/documents"
	"docqa-backend/internal/shared/config"
	"docqa-backend/internal/shared/telemetry"
)

type options struct {
	UserID    string
	BatchSize int
}

type runFunc func(ctx context.Context, opts options) (documents.ReindexReport, error)

func main() {
	defer telemetry.Sync()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(reindex).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(run runFunc) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("REINDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "reindex",
		Short:         "Rebuild search index entries from stored documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := options{
				UserID:    strings.TrimSpace(v.GetString("user")),
				BatchSize: v.GetInt("batch-size"),
			}
			if opts.BatchSize < 0 {
				return fmt.Errorf("batch-size must be positive")
			}
			report, err := run(cmd.Context(), opts)
			if err != nil {
				telemetry.Error("reindex.failed", map[string]any{"user_id": opts.UserID, "error": err})
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d indexed=%d failed=%d\n", report.Scanned, report.Indexed, report.Failed)
			return nil
		},
	}
	cmd.Flags().String("user", "", "only reindex documents owned by this user")
	cmd.Flags().Int("batch-size", 100, "documents loaded per page")
	_ = v.BindPFlags(cmd.Flags())
	return cmd
}

func reindex(ctx context.Context, opts options) (documents.ReindexReport, error) {
	app, err := bootstrap.Build(ctx, config.Load())
	if err != nil {
		return documents.ReindexReport{}, fmt.Errorf("bootstrap build: %w", err)
	}
	defer app.Close()

	report, err := app.DocumentsService.Reindex(ctx, opts.UserID, opts.BatchSize)
	if err != nil {
		return report, err
	}
	telemetry.Info("reindex.completed", map[string]any{
		"user_id": opts.UserID,
		"scanned": report.Scanned,
		"indexed": report.Indexed,
		"failed":  report.Failed,
	})
	return report, nil
}

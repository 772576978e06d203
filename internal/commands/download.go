package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/flexquery-dev/flexquery/internal/config"
	"github.com/flexquery-dev/flexquery/internal/flexclient"
	"github.com/flexquery-dev/flexquery/internal/format"
	"github.com/flexquery-dev/flexquery/internal/history"
	"github.com/flexquery-dev/flexquery/internal/reportfile"
)

func newDownloadCommand(loadConfig configLoader) *cobra.Command {
	var token string
	var outputDir string
	var maxAttempts int
	var pollInterval time.Duration
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "download <report-number>",
		Short: "Request a statement, poll until ready, and save it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if token != "" {
				cfg.Token = token
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if maxAttempts > 0 {
				cfg.Poll.MaxAttempts = maxAttempts
			}
			if pollInterval > 0 {
				cfg.Poll.IntervalSeconds = int(pollInterval.Seconds())
			}
			if cfg.Token == "" {
				return fmt.Errorf("no token: set --token or %s", config.EnvToken)
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			return runDownload(ctx, cfg, args[0])
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "authentication token (env "+config.EnvToken+")")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "output directory (env "+config.EnvOutputDir+")")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "maximum poll attempts")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "base wait between poll attempts")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall deadline for the download (0 = none)")

	return cmd
}

func runDownload(ctx context.Context, cfg *config.Config, reportNumber string) error {
	runID := uuid.NewString()
	logger := slog.Default().With("run_id", runID, "report_number", reportNumber)

	client := flexclient.New(flexclient.Config{
		BaseURL:       cfg.BaseURL,
		MaxAttempts:   cfg.Poll.MaxAttempts,
		PollInterval:  time.Duration(cfg.Poll.IntervalSeconds) * time.Second,
		WaitIncrement: time.Duration(cfg.Poll.IncrementSeconds) * time.Second,
		Logger:        logger,
	})

	logger.Info("downloading statement")
	data, err := client.Fetch(ctx, flexclient.ReportRequest{
		ReportNumber: reportNumber,
		Token:        cfg.Token,
	})
	if err != nil {
		return err
	}

	detected := format.Detect(data)
	logger.Debug("format detected", "format", detected)
	if detected == format.Unknown {
		logger.Warn("unrecognized statement format, saving raw bytes")
	}

	report := reportfile.RawReport{
		ReportNumber: reportNumber,
		Data:         data,
		Format:       detected,
		Downloaded:   time.Now(),
	}
	path, err := reportfile.Save(cfg.OutputDir, report)
	if err != nil {
		return err
	}

	if err := history.Append(cfg.OutputDir, []history.Entry{{
		Timestamp:    report.Downloaded,
		RunID:        runID,
		ReportNumber: reportNumber,
		Format:       string(detected),
		File:         report.Filename(),
	}}); err != nil {
		return fmt.Errorf("recording download: %w", err)
	}

	logger.Info("statement saved", "path", path, "format", detected, "bytes", len(data))
	fmt.Println(path)
	return nil
}

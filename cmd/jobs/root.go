package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"logistics-scheduler-service/internal/config"
	"logistics-scheduler-service/internal/di"
	"logistics-scheduler-service/internal/platform/obs"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "jobs",
	Short:         "Runs the scheduled logistics batch jobs",
	Long:          `jobs runs one batch job to completion and exits. It is meant to be triggered by an external scheduler (cron, Kubernetes CronJob).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var recurrenceCmd = &cobra.Command{
	Use:   "recurrence",
	Short: "Generate service orders from due recurrence profiles (daily, 06:00)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withJobs(cmd.Context(), "recurrence", func(ctx context.Context, jobs *di.Jobs) error {
			report, err := jobs.Recurrence.Run(ctx)
			if err != nil {
				return err
			}
			return printReport(report)
		})
	},
}

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "Back up due accounts and apply backup retention (daily, 01:00)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withJobs(cmd.Context(), "backups", func(ctx context.Context, jobs *di.Jobs) error {
			report, err := jobs.Backups.RunScheduled(ctx)
			if err != nil {
				return err
			}
			return printReport(report)
		})
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace an account's live data with a completed backup",
	RunE: func(cmd *cobra.Command, _ []string) error {
		accountID, _ := cmd.Flags().GetString("account")
		backupID, _ := cmd.Flags().GetString("backup")
		confirm, _ := cmd.Flags().GetBool("confirm")

		if !confirm {
			return errors.New("restore deletes live documents; pass --confirm to proceed")
		}

		return withJobs(cmd.Context(), "restore", func(ctx context.Context, jobs *di.Jobs) error {
			report, err := jobs.Backups.RestoreBackup(ctx, accountID, backupID)
			if err != nil {
				return err
			}
			return printReport(report)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); LOGISTICS_* environment variables override it")

	restoreCmd.Flags().String("account", "", "account id")
	restoreCmd.Flags().String("backup", "", "backup id (backup-<millis>)")
	restoreCmd.Flags().Bool("confirm", false, "confirm the destructive restore")
	_ = restoreCmd.MarkFlagRequired("account")
	_ = restoreCmd.MarkFlagRequired("backup")

	rootCmd.AddCommand(recurrenceCmd, backupsCmd, restoreCmd)
}

const metricsPushTimeout = 10 * time.Second

func withJobs(parent context.Context, name string, run func(ctx context.Context, jobs *di.Jobs) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found (using environment variables)")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	jobs, cleanup, err := di.InitJobs(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init jobs: %w", err)
	}
	defer cleanup()

	runErr := run(jobs.Logger.WithContext(ctx), jobs)

	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsPushTimeout)
	defer cancel()
	if err := obs.PushJobMetrics(pushCtx, cfg.Metrics.PushgatewayURL, name, jobs.Registry); err != nil {
		jobs.Logger.Warn().Err(err).Str("job", name).Msg("pushing job metrics failed")
	}

	return runErr
}

func printReport(report any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

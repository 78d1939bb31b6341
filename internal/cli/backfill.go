package cli

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclelog/internal/config"
	"github.com/terraincognita07/cyclelog/internal/cycle"
	"github.com/terraincognita07/cyclelog/internal/scheduler"
	"github.com/terraincognita07/cyclelog/internal/services"
)

func newBackfillCommand() *cobra.Command {
	var schedule bool

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Fill in missing days after the last logged entry",
		Long: `Adds one entry per missing day up to yesterday for BACKFILL_USER_EMAIL,
stepping the cycle day from the last logged entry.

With --schedule the command keeps running and repeats on BACKFILL_CRON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(config.ScopeBackfill)
			if err != nil {
				return err
			}
			defer rt.Close()

			location, err := rt.cfg.BackfillLocation()
			if err != nil {
				return fmt.Errorf("load BACKFILL_TIMEZONE: %w", err)
			}
			service := services.NewBackfillService(rt.repos.Users, rt.repos.CycleEntries, location, rt.logger)

			if !schedule {
				result, err := service.Run(rt.cfg.BackfillUserEmail, time.Now())
				return reportBackfill(cmd.OutOrStdout(), result, err)
			}

			jobs := scheduler.NewBackfillScheduler(service, rt.cfg.BackfillUserEmail, rt.cfg.BackfillCron, location, rt.logger)
			jobs.RunOnce()
			if err := jobs.Start(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			stopCtx, cancel := contextWithShutdownTimeout()
			defer cancel()
			return jobs.Stop(stopCtx)
		},
	}

	cmd.Flags().BoolVar(&schedule, "schedule", false, "keep running and backfill on BACKFILL_CRON")
	return cmd
}

func reportBackfill(out io.Writer, result services.BackfillResult, err error) error {
	if errors.Is(err, services.ErrNoPreviousEntry) {
		fmt.Fprintln(out, "No previous entry, nothing to backfill.")
		return nil
	}
	if err != nil {
		return err
	}
	if len(result.Inserted) == 0 {
		fmt.Fprintf(out, "Up to date (last entry %s).\n", cycle.FormatDate(result.LastDate))
		return nil
	}

	last := result.Inserted[len(result.Inserted)-1]
	fmt.Fprintf(out, "Inserted %d entries through %s (cycle day %d).\n", len(result.Inserted), cycle.FormatDate(last.Date), last.CycleDay)
	return nil
}

package cmd

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/example/gym-scheduler/internal/booking"
	"github.com/example/gym-scheduler/internal/config"
	"github.com/example/gym-scheduler/internal/notify"
)

// newRunCmd starts the daemon mode: the same single booking pass,
// fired on a cron schedule instead of by an external scheduler.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Keep running, firing a booking pass on the configured cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			runner := booking.NewRunner(cfg, notify.NewSlack(cfg.WebhookURL))

			// Booking runs stay single-invocation: a tick that finds the
			// previous run still going is skipped, not queued.
			var running atomic.Bool
			c := cron.New()
			_, err = c.AddFunc(cfg.CronExpr, func() {
				if !running.CompareAndSwap(false, true) {
					slog.Warn("previous booking run still in progress, skipping tick")
					return
				}
				defer running.Store(false)
				if outcome, err := runner.Run(cmd.Context(), time.Now()); err != nil {
					slog.Error("scheduled booking run failed", "outcome", outcome, "err", err)
				}
			})
			if err != nil {
				return fmt.Errorf("invalid GYM_CRON %q: %w", cfg.CronExpr, err)
			}

			slog.Info("scheduler started", "cron", cfg.CronExpr)
			c.Start()
			<-cmd.Context().Done()
			slog.Info("shutting down")
			stopCtx := c.Stop()
			<-stopCtx.Done()
			return nil
		},
	}
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/gym-scheduler/internal/booking"
	"github.com/example/gym-scheduler/internal/config"
	"github.com/example/gym-scheduler/internal/notify"
)

func newBookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "book",
		Short: "Run one booking pass for the class nine days from today",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			runner := booking.NewRunner(cfg, notify.NewSlack(cfg.WebhookURL))
			outcome, err := runner.Run(cmd.Context(), time.Now())
			if err != nil {
				return fmt.Errorf("booking run ended %s: %w", outcome, err)
			}
			return nil
		},
	}
}

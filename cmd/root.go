package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "gymsched",
		Short: "Books a recurring gym class nine days ahead via the club's booking site",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newBookCmd())
	root.AddCommand(newRunCmd())

	return root
}

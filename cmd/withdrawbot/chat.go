package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"withdraw_bot/internal/transport/tui"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	var (
		userID  string
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the bot from the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			out, closeLog, err := openLogOutput(logFile)
			if err != nil {
				return err
			}
			defer closeLog()

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt)
			defer stop()

			logger := setupLogger(cfg, out)
			a, err := wireApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				a.shutdown(shutdownCtx)
			}()

			go a.engine.Run(ctx)
			return tui.Run(ctx, a.engine, userID)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "local", "user id the terminal session speaks as")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file instead of discarding them")

	return cmd
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"folio/internal/logging"
	"folio/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification through the configured targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			dispatcher := notifications.NewService(cfg, logger)
			if err := dispatcher.Publish(cmd.Context(), notifications.EventTest, nil); err != nil {
				return fmt.Errorf("queue test notification: %w", err)
			}
			flushCtx, cancel := context.WithTimeout(cmd.Context(), notifyFlushTimeout)
			defer cancel()
			if err := dispatcher.Close(flushCtx); err != nil {
				return fmt.Errorf("deliver test notification: %w", err)
			}
			if dispatcher.Dropped() > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Notification not sent")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification dispatched")
			return nil
		},
	}
}

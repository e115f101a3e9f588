package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"folio/internal/logging"
	"folio/internal/notifications"
	"folio/internal/services"
	"folio/internal/workflow"
)

const notifyFlushTimeout = 15 * time.Second

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process every chapter in the listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx)
		},
	}
}

func runPipeline(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := notifications.NewService(cfg, logger)
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), notifyFlushTimeout)
		defer cancel()
		if err := dispatcher.Close(flushCtx); err != nil {
			logger.Warn("pending notifications were not delivered", logging.Error(err))
		}
	}()

	runner := workflow.NewRunner(cfg, logger, dispatcher, ctx.runnerOptions...)
	summary, runErr := runner.Run(runCtx)
	if runErr == nil || errors.Is(runErr, services.ErrRunHadFailures) {
		out := cmd.OutOrStdout()
		fmt.Fprint(out, renderSummary(summary, shouldColorize(out)))
	}
	return runErr
}

package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &overrideFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "folio",
		Short:         "Download chapters and bind them into PDFs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx)
		},
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&flags.configPath, "config", "c", "", "Configuration file path")
	persistent.StringVar(&flags.feedURL, "feed-url", "", "Listing page or feed to read chapters from")
	persistent.IntVar(&flags.concurrency, "concurrency", 0, "Maximum concurrent image downloads per chapter")
	persistent.StringVar(&flags.outputDir, "output-dir", "", "Root directory for images and documents")
	persistent.BoolVar(&flags.failOnError, "fail-on-error", false, "Exit non-zero when any chapter is degraded or failed")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newTestNotifyCommand(ctx))

	return rootCmd
}

package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pad",
		Short:         "localpad (pad): local-first record pads from the terminal",
		Long:          "pad keeps small local-first collections (todos, books, expenses, chat messages, ...) in per-pad JSON snapshots, with filtered/sorted/paginated listings, JSON export, and a simulated delivery queue for the chat pad.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newAppsCmd(app),
		newAddCmd(app),
		newEditCmd(app),
		newRemoveCmd(app),
		newListCmd(app),
		newExportCmd(app),
		newChatCmd(app),
		newQueueCmd(app),
		newFactCmd(app),
	)

	return rootCmd
}

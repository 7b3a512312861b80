package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newQueueCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Control the chat delivery queue",
	}

	cmd.AddCommand(
		newQueueStatsCmd(app),
		newQueueDrainCmd(app),
		newQueueDrainOneCmd(app),
		newQueuePauseCmd(app),
		newQueueResumeCmd(app),
		newQueueClearCmd(app),
	)

	return cmd
}

func newQueueStatsCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show queue state and counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.chatService(cmd.Context())
			if err != nil {
				return err
			}

			stats := svc.Stats()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(),
				"state: %s\npending: %d\nenqueued: %d\nprocessed: %d\ndropped: %d\n",
				stats.State, stats.Pending,
				stats.Counters.Enqueued, stats.Counters.Processed, stats.Counters.Dropped)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newQueueDrainCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drain",
		Short: "Deliver every pending message, in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.chatService(cmd.Context())
			if err != nil {
				return err
			}

			if err := runDrainSpinner(cmd.Context(), cmd.ErrOrStderr(), "Draining queue...", svc.Queue().ProcessAll); err != nil {
				return err
			}

			stats := svc.Stats()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "processed: %d, pending: %d\n", stats.Counters.Processed, stats.Pending)
			return nil
		},
	}
}

func newQueueDrainOneCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drain-one",
		Short: "Deliver only the head message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.chatService(cmd.Context())
			if err != nil {
				return err
			}

			attempted, err := svc.Queue().ProcessOne(cmd.Context())
			if err != nil {
				return err
			}
			if !attempted {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "nothing to deliver")
				return nil
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "delivered 1 message")
			return nil
		},
	}
}

func newQueuePauseCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Stop new deliveries from starting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.chatService(cmd.Context())
			if err != nil {
				return err
			}

			svc.Queue().Pause(cmd.Context())
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "queue paused")
			return nil
		},
	}
}

func newQueueResumeCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Allow deliveries again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.chatService(cmd.Context())
			if err != nil {
				return err
			}

			svc.Queue().Resume(cmd.Context())
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "queue resumed")
			return nil
		},
	}
}

func newQueueClearCmd(app *app) *cobra.Command {
	var all bool
	var conversation string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop pending messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !all && conversation == "" {
				return fmt.Errorf("pass --all or --conversation")
			}

			svc, err := app.chatService(cmd.Context())
			if err != nil {
				return err
			}

			dropped, err := svc.Clear(cmd.Context(), all, conversation)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dropped %d message(s)\n", dropped)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Drop every pending message")
	cmd.Flags().StringVar(&conversation, "conversation", "", "Drop only one conversation's pending messages")

	return cmd
}

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	listrender "github.com/localpad/localpad/internal/adapters/render/list"
	"github.com/localpad/localpad/internal/domain"
)

func newChatCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send and review chat messages",
	}

	cmd.AddCommand(
		newChatSendCmd(app),
		newChatLogCmd(app),
	)

	return cmd
}

func newChatSendCmd(app *app) *cobra.Command {
	var conversation string
	var noDeliver bool

	cmd := &cobra.Command{
		Use:   "send <text>",
		Short: "Queue a message for delivery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.chatService(cmd.Context())
			if err != nil {
				return err
			}

			rec, err := svc.Send(cmd.Context(), args[0], conversation)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rec.ID)

			if noDeliver || !app.autoDeliver {
				return nil
			}

			return runDrainSpinner(cmd.Context(), cmd.ErrOrStderr(), "Delivering...", svc.Queue().ProcessAll)
		},
	}

	cmd.Flags().StringVar(&conversation, "conversation", "general", "Conversation the message belongs to")
	cmd.Flags().BoolVar(&noDeliver, "no-deliver", false, "Leave the message pending instead of draining the queue")

	return cmd
}

func newChatLogCmd(app *app) *cobra.Command {
	var conversation string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the message log, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.chatService(cmd.Context())
			if err != nil {
				return err
			}

			spec := domain.Spec{}
			if conversation != "" {
				spec.Equals = map[string]string{"conversation": conversation}
			}

			page := svc.Store().Project(spec, 1, 0)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(page)
			}

			rendered, err := listrender.Render(page, listrender.RenderOptions{
				Title:   "Chat",
				Columns: []string{"conversation", "text", "status"},
				Page:    1,
			})
			if err != nil {
				return fmt.Errorf("render log: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	cmd.Flags().StringVar(&conversation, "conversation", "", "Limit to one conversation")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localpad/localpad/internal/domain"
)

func newFactCmd(app *app) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "fact",
		Short: "Fetch a random fact (falls back to local data on any failure)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entry, err := app.feed.Fetch(cmd.Context())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), entry.Text)

			if !save {
				return nil
			}

			profile, err := app.profile("facts")
			if err != nil {
				return err
			}

			store, err := app.storeFor(cmd.Context(), profile)
			if err != nil {
				return err
			}

			rec, err := store.Add(cmd.Context(), domain.Fields{
				"text":   entry.Text,
				"source": entry.Source,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rec.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Store the fact in the facts pad")

	return cmd
}

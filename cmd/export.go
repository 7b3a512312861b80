package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/localpad/localpad/internal/application"
)

func newExportCmd(app *app) *cobra.Command {
	var appName string
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a pad's full collection as pretty-printed JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := app.profile(appName)
			if err != nil {
				return err
			}

			store, err := app.storeFor(cmd.Context(), profile)
			if err != nil {
				return err
			}

			path := filepath.Join(outDir, application.ExportFileName(profile.Name, app.now()))
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			defer f.Close()

			if err := application.ExportCollection(f, profile.Name, store.All(), app.now()); err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close export file: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&appName, "app", "", "Pad name")
	cmd.Flags().StringVar(&outDir, "out", ".", "Directory the export is written to")
	_ = cmd.MarkFlagRequired("app")

	return cmd
}

package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/carry/internal/app"
	"go.trai.ch/carry/internal/core/domain"
)

func (c *CLI) newSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save every marked directory and the manifest listing them",
		Long: "Save each directory matching --path that holds a uuid marker under the marker's key,\n" +
			"then save the manifest under the primary key recorded by restore. Never fails.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.app.Save(cmd.Context(), app.RunOptions{
				Inputs: changedInputs(cmd, domain.InputPath, domain.InputUploadChunkSize),
			})
			return nil
		},
	}
	cmd.Flags().StringArray(domain.InputPath, nil, "Path pattern matching directories to cache (repeatable)")
	cmd.Flags().Int64(domain.InputUploadChunkSize, 0, "Upload chunk size in bytes (default backend setting)")
	return cmd
}

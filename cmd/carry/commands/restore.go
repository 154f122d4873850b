package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/carry/internal/app"
	"go.trai.ch/carry/internal/core/domain"
)

func (c *CLI) newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore the cached directories listed under the primary key",
		Long: "Restore the manifest stored under --key, then every directory it lists.\n" +
			"Flags fall back to the INPUT_* environment of a GitHub Actions step.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Restore(cmd.Context(), app.RunOptions{
				Inputs: changedInputs(cmd, domain.InputKey, domain.InputPath, domain.InputRestoreKeys),
			})
		},
	}
	cmd.Flags().String(domain.InputKey, "", "Primary cache key")
	cmd.Flags().StringArray(domain.InputPath, nil, "Path pattern the cached directories live under (repeatable)")
	cmd.Flags().StringArray(domain.InputRestoreKeys, nil, "Fallback key prefix for directory entries (repeatable)")
	return cmd
}

// Package commands implements the CLI commands for carry.
package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/carry/internal/app"
	"go.trai.ch/carry/internal/build"
)

// CLI represents the command line interface for carry.
type CLI struct {
	app           Application
	rootCmd       *cobra.Command
	logFormatHook func(string) error
}

// Application represents the application logic interface.
type Application interface {
	Restore(ctx context.Context, opts app.RunOptions) error
	Save(ctx context.Context, opts app.RunOptions)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "carry",
		Short:         "Restore and save per-directory build caches in CI",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().String("log-format", "auto", "Log format: auto, pretty, json, or actions")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if c.logFormatHook == nil {
			return nil
		}
		format, _ := cmd.Flags().GetString("log-format")
		return c.logFormatHook(format)
	}

	rootCmd.AddCommand(c.newRestoreCmd())
	rootCmd.AddCommand(c.newSaveCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// SetLogFormatHook registers fn to receive the --log-format value before any command runs.
func (c *CLI) SetLogFormatHook(fn func(string) error) {
	c.logFormatHook = fn
}

// changedInputs collects the named flags the user actually set, keyed by input name.
// Repeated values are joined with newlines, the same way multi-line inputs arrive from a workflow.
func changedInputs(cmd *cobra.Command, names ...string) map[string]string {
	inputs := make(map[string]string)
	for _, name := range names {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if values, err := cmd.Flags().GetStringArray(name); err == nil {
			inputs[name] = strings.Join(values, "\n")
			continue
		}
		inputs[name] = flag.Value.String()
	}
	return inputs
}

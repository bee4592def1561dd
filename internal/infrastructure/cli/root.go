// Package cli wires the cobra command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/doeshing/cmdverify/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration taken from the environment.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command. Services are built per subcommand
// after flags are parsed, so `init` and `doctor` work without a valid config.
func NewRootCmd(opts Options) *cobra.Command {
	rt := &commands.Runtime{}
	rt.Options.Verbose = opts.Verbose

	root := &cobra.Command{
		Use:   "cmdverify",
		Short: "Validate the shell commands in your documentation",
		Long: `cmdverify extracts shell commands from markdown documentation, classifies
them as safe, conditional, dangerous or unknown, and checks that the tools
they need are installed. Results are cached per command and only the commands
affected by changes since the last validated commit are checked again.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&rt.Options.Root, "root", "C", ".", "Project root directory")
	flags.StringVarP(&rt.Options.ConfigPath, "config", "c", "", "Config file (default .cmdverify.yaml in the project root)")
	flags.BoolVarP(&rt.Options.Verbose, "verbose", "v", opts.Verbose, "Show every result and debug logs")
	flags.BoolVarP(&rt.Options.Silent, "silent", "s", false, "Only print failures")
	flags.BoolVar(&rt.NoColor, "no-color", false, "Disable coloured output")

	root.AddCommand(
		commands.NewVerifyCommand(rt),
		commands.NewClassifyCommand(rt),
		commands.NewWatchCommand(rt),
		commands.NewCacheCommand(rt),
		commands.NewHistoryCommand(rt),
		commands.NewDoctorCommand(rt),
		commands.NewInitCommand(rt),
		commands.NewVersionCommand(),
	)
	return root
}

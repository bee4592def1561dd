package commands

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdverify/internal/application/verify"
	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/infrastructure/cli/helpers"
)

// verifyFlags are shared by verify and watch.
type verifyFlags struct {
	force bool
	json  bool
	stats bool
}

func (f *verifyFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.force, "force", "f", false, "Clear the cache and revalidate every command")
	cmd.Flags().BoolVar(&f.json, "json", false, "Print the summary and results as JSON")
	cmd.Flags().BoolVar(&f.stats, "stats", false, "Show cache statistics")
}

// NewVerifyCommand creates the verify command
func NewVerifyCommand(rt *Runtime) *cobra.Command {
	var flags verifyFlags
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Validate commands referenced in the documentation",
		Long: `Discover commands in the project's documentation, revalidate the ones
affected by changes since the last validated commit and reuse cached results
for the rest. Exits 1 when any command fails with error severity.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := rt.Container(cmd.Context())
			if err != nil {
				return err
			}
			defer container.Close()

			spinner := helpers.NewSpinner(cmd.ErrOrStderr(), "Verifying documentation commands",
				!flags.json && !rt.Options.Silent && helpers.IsTerminal(cmd.ErrOrStderr()))
			spinner.Start()
			summary, err := container.VerifyService.Run(cmd.Context(), verify.Options{Force: flags.force})
			spinner.Stop()
			if err != nil {
				return err
			}
			if err := reportSummary(cmd.OutOrStdout(), rt, summary, flags); err != nil {
				return err
			}
			if summary.HasErrors() {
				return ErrVerificationFailed
			}
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func reportSummary(out io.Writer, rt *Runtime, summary domain.Summary, flags verifyFlags) error {
	if flags.json {
		return writeJSON(out, summary)
	}
	rt.Renderer(out).Summary(summary, helpers.SummaryOptions{
		Stats:      flags.stats,
		FailedOnly: rt.Options.Silent,
	})
	return nil
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

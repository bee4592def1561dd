package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdverify/internal/app"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration, knowledge base and git setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.BuildDoctor(rt.Options)
			if err != nil {
				return err
			}

			report, err := svc.Run(cmd.Context())
			// Display report even if there were errors
			rt.Renderer(cmd.OutOrStdout()).Health(report)
			if err != nil {
				return fmt.Errorf("diagnostics completed with errors: %w", err)
			}
			if report.HasErrors() {
				return fmt.Errorf("diagnostics found problems")
			}
			return nil
		},
	}
}

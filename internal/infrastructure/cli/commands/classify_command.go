package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

// NewClassifyCommand creates the classify command
func NewClassifyCommand(rt *Runtime) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "classify <command...>",
		Short: "Show how a command would be classified",
		Long:  "Runs the knowledge base and built-in pattern rules for one command. Nothing is probed or cached.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := strings.TrimSpace(strings.Join(args, " "))
			if command == "" {
				return errors.New(ErrCommandRequired)
			}
			container, err := rt.Container(cmd.Context())
			if err != nil {
				return err
			}
			defer container.Close()

			source, detail := "built-in patterns", ""
			cls, ok := container.Resolver.Classify(command)
			if ok {
				source = "knowledge base"
			} else {
				match := container.Patterns.Explain(command)
				cls = match.Classification
				detail = match.Rule.Message
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"command":    command,
					"category":   cls.Category,
					"confidence": cls.Confidence,
					"source":     source,
					"rule":       detail,
				})
			}
			rt.Renderer(cmd.OutOrStdout()).Classification(command, cls, source, detail)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the classification as JSON")
	return cmd
}

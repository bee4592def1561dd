package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/infrastructure/config"
)

// NewInitCommand creates the init command, which writes the default
// configuration and a starter knowledge base into the project.
func NewInitCommand(rt *Runtime) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create .cmdverify.yaml and a starter knowledge base",
		Long: `Write the default configuration to .cmdverify.yaml and a starter
knowledge base to .cmdverify/knowledge.json in the project root.

Existing files are left untouched unless --force is given. Afterwards run
'cmdverify doctor' to check the setup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(rt.Options.Root)
			if err != nil {
				return fmt.Errorf("resolve project root: %w", err)
			}
			return runInit(cmd.OutOrStdout(), root, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	return cmd
}

func runInit(out io.Writer, root string, force bool) error {
	configPath := filepath.Join(root, config.CandidateNames[0])
	if err := config.WriteDefault(configPath, force); err != nil {
		return fmt.Errorf("write configuration: %w", err)
	}
	kbPath := filepath.Join(root, filepath.FromSlash(domain.DefaultKnowledgeBase))
	if err := config.WriteDefaultKnowledgeBase(kbPath, force); err != nil {
		return fmt.Errorf("write knowledge base: %w", err)
	}

	fmt.Fprintf(out, "✓ Configuration initialized: %s\n", configPath)
	fmt.Fprintf(out, "✓ Knowledge base initialized: %s\n\n", kbPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Add cacheDir to .gitignore:")
	fmt.Fprintf(out, "     echo '%s/' >> .gitignore\n", domain.DefaultConfigDir+"/cache")
	fmt.Fprintln(out, "  2. Verify your setup:")
	fmt.Fprintln(out, "     cmdverify doctor")
	fmt.Fprintln(out, "  3. Validate the documentation:")
	fmt.Fprintln(out, "     cmdverify verify")
	return nil
}

package commands

import (
	"context"
	"io"

	"github.com/doeshing/cmdverify/internal/app"
	"github.com/doeshing/cmdverify/internal/infrastructure/cli/helpers"
)

// Runtime carries the global flags into every subcommand. Flags are bound to
// Options before execution, so containers are built lazily per command.
type Runtime struct {
	Options app.Options
	NoColor bool
}

// Container builds the dependency graph for the current flags.
func (r *Runtime) Container(ctx context.Context) (*app.Container, error) {
	return app.BuildContainer(ctx, r.Options)
}

// Renderer returns a renderer honouring --no-color and TTY detection.
func (r *Runtime) Renderer(out io.Writer) *helpers.Renderer {
	return helpers.NewRenderer(out, !r.NoColor && helpers.ColorEnabled(), r.Options.Verbose)
}

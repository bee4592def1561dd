package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdverify/internal/app"
	"github.com/doeshing/cmdverify/internal/application/verify"
	"github.com/doeshing/cmdverify/internal/infrastructure/git"
)

// NewWatchCommand creates the watch command
func NewWatchCommand(rt *Runtime) *cobra.Command {
	var flags verifyFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run verification when documentation or HEAD changes",
		Long: `Runs verify once, then watches markdown files and the repository's
HEAD and branch refs, re-running verify after each burst of changes.
Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			container, err := rt.Container(ctx)
			if err != nil {
				return err
			}
			defer container.Close()
			return runWatch(ctx, cmd, rt, container, flags)
		},
	}
	flags.bind(cmd)
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, rt *Runtime, container *app.Container, flags verifyFlags) error {
	out := cmd.OutOrStdout()
	runOnce := func(ctx context.Context, force bool) {
		summary, err := container.VerifyService.Run(ctx, verify.Options{Force: force})
		if err != nil {
			if ctx.Err() == nil {
				container.Logger.Error("verification failed", err, nil)
			}
			return
		}
		if err := reportSummary(out, rt, summary, flags); err != nil {
			container.Logger.Error("report failed", err, nil)
		}
	}
	runOnce(ctx, flags.force)

	gitDir, err := container.Git.GitDir(ctx)
	if err != nil {
		container.Logger.Warn("not a git repository, watching documentation only", map[string]interface{}{"error": err.Error()})
		gitDir = ""
	}
	watcher, err := git.NewWatcher(git.WatcherOptions{
		Root:   container.Root,
		GitDir: gitDir,
		Skip:   []string{container.Config.CacheDir},
		Logger: container.Logger,
		OnChange: func(ctx context.Context, paths []string) {
			container.Logger.Info("change detected", map[string]interface{}{"paths": len(paths)})
			runOnce(ctx, false)
		},
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Stop()

	fmt.Fprintf(out, "Watching %s for changes (Ctrl-C to stop)\n", container.Root)
	if err := watcher.Start(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

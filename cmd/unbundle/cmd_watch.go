package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"unbundle/internal/logging"
	"unbundle/internal/pipeline"
	"unbundle/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// watchCmd re-extracts the bundle every time it changes.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-extract modules whenever the bundle changes",
	Long: `Runs one extraction, then watches the input file and runs again after it
has been quiet for watch.debounce. Failed runs are reported and watching
continues. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	opts, err := runOptions(cmd)
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := func(ctx context.Context) error {
		report, err := pipeline.Run(ctx, opts)
		if err != nil {
			if isFatal(err) {
				fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(err.Error()))
			}
			return err
		}
		printReport(cmd.ErrOrStderr(), report, verbose)
		return nil
	}

	// First run happens immediately; a broken bundle is not a reason to stop
	// watching it.
	if err := run(ctx); err != nil {
		logger.Warn("initial extraction failed", zap.Error(err))
	}

	w, err := watch.NewBundleWatcher(opts.InputPath, cfg.GetWatchDebounce(), run)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render(fmt.Sprintf("Watching %s (Ctrl+C to stop)", opts.InputPath)))

	select {
	case <-ctx.Done():
	case <-w.Done():
	}
	w.Stop()

	stats := w.Stats()
	logging.Watch("watch ended after %d runs (%d failed)", stats.Runs, stats.Failures)
	return nil
}

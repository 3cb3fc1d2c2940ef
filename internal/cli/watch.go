package cli

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dbizzy/internal/logger"
	"dbizzy/internal/preview"
	"dbizzy/internal/watcher"
)

func newWatchCmd(st *state) *cobra.Command {
	opts := &diagramOptions{}
	cmd := &cobra.Command{
		Use:   "watch [schema.sql]",
		Short: "Redraw a schema file every time it changes",
		Long: `Draw a schema file, then watch it and redraw it after every save until
interrupted. Bursts of saves within watch.debounce_ms produce one redraw.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, st, opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, mermaid or json (default dot)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, rewritten on every change (default standard output)")
	return cmd
}

func runWatch(cmd *cobra.Command, st *state, opts *diagramOptions, args []string) error {
	path, err := schemaPath(st, args)
	if err != nil {
		return err
	}
	name := cmp.Or(opts.format, st.cfg.Diagram.Format)
	if _, err := format(preview.Snapshot{}, name); err != nil {
		return err
	}

	p := preview.New(st.cfg.Diagram.Options)
	w, err := watcher.New(path, st.cfg.Watch.Debounce(), func(ctx context.Context, text string) error {
		snap := p.SetText(text)
		out, err := format(snap, name)
		if err != nil {
			return err
		}
		if err := writeOutput(cmd, opts.output, out); err != nil {
			return fmt.Errorf("write diagram: %w", err)
		}
		logger.Info("revision %d: %d tables, %d relationships",
			snap.Revision, len(snap.Schema.Tables), len(snap.Schema.Origins()))
		return nil
	})
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Load(ctx); err != nil {
		return err
	}
	logger.Info("watching %s (press Ctrl+C to stop)", path)
	return w.Start(ctx)
}

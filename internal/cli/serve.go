package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "dbizzy/internal/db/extractors"
	"dbizzy/internal/logger"
	"dbizzy/internal/preview"
	"dbizzy/internal/server"
	"dbizzy/internal/watcher"
	"dbizzy/pkg/config"
)

type serveOptions struct {
	driver  string
	dsn     string
	port    int
	timeout int
	webDir  string
	schema  string
}

func newServeCmd(st *state) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagram, query and live schema panels over HTTP",
		Long: `Serve the web UI and its API. With --schema the named file is watched and
its diagram pushed to every websocket client on each save. With --driver and
--dsn (or a database section in the config) /api/schema draws a live database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, st, opts)
		},
	}
	cmd.Flags().StringVar(&opts.driver, "driver", "", "db driver override (postgres,mysql,sqlite,sqlserver,godror)")
	cmd.Flags().StringVar(&opts.dsn, "dsn", "", "dsn override")
	cmd.Flags().IntVar(&opts.port, "port", 0, fmt.Sprintf("http port (overrides config, default %d)", server.DefaultPort))
	cmd.Flags().IntVar(&opts.timeout, "timeout", server.DefaultTimeout, "db connect timeout seconds")
	cmd.Flags().StringVar(&opts.webDir, "web", "", "web ui directory (default ./web)")
	cmd.Flags().StringVar(&opts.schema, "schema", "", "schema file to watch (overrides diagram.schema_file)")
	return cmd
}

func runServe(cmd *cobra.Command, st *state, opts *serveOptions) error {
	cfg := st.cfg
	if opts.webDir != "" {
		cfg.Server.WebDir = opts.webDir
	}
	if opts.schema != "" {
		cfg.Diagram.SchemaFile = opts.schema
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := preview.New(cfg.Diagram.Options)
	if cfg.Diagram.SchemaFile != "" {
		w, err := watchSchema(ctx, cfg, p)
		if err != nil {
			return err
		}
		defer w.Close()
	}

	srv := server.New(cfg, p, opts.timeout)
	// allow CLI overrides
	if opts.driver != "" && opts.dsn != "" {
		srv.SetActive(config.NormalizeDriver(opts.driver), opts.dsn)
	} else if cfg.Database.Type != "" {
		drv, dsn, err := config.BuildDriverAndDSN(cfg.Database)
		if err == nil {
			srv.SetActive(drv, dsn)
		} else {
			logger.Error("error building DSN: %v", err)
		}
	}

	return srv.ListenAndServe(ctx, opts.port)
}

// watchSchema loads the schema file into p and keeps it current.
func watchSchema(ctx context.Context, cfg config.AppConfig, p *preview.Preview) (*watcher.Watcher, error) {
	path := cfg.Diagram.SchemaFile
	w, err := watcher.New(path, cfg.Watch.Debounce(), func(ctx context.Context, text string) error {
		snap := p.SetText(text)
		logger.Info("%s revision %d: %d tables", path, snap.Revision, len(snap.Schema.Tables))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Load(ctx); err != nil {
		w.Close()
		return nil, err
	}
	go func() {
		if err := w.Start(ctx); err != nil {
			logger.Error("watcher: %v", err)
		}
	}()
	return w, nil
}

package cli

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dbizzy/internal/graph"
	"dbizzy/internal/logger"
	"dbizzy/internal/preview"
)

type diagramOptions struct {
	format string
	output string
}

func newDiagramCmd(st *state) *cobra.Command {
	opts := &diagramOptions{}
	cmd := &cobra.Command{
		Use:   "diagram [schema.sql]",
		Short: "Draw a schema file",
		Long: `Parse a schema file and write its diagram. Use "-" to read standard input.
Without an argument the config's diagram.schema_file is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagram(cmd, st, opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, mermaid or json (default dot)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default standard output)")
	return cmd
}

func runDiagram(cmd *cobra.Command, st *state, opts *diagramOptions, args []string) error {
	path, err := schemaPath(st, args)
	if err != nil {
		return err
	}
	text, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	snap := preview.Render(text, st.cfg.Diagram.Options.WithDefaults())
	if snap.Empty {
		logger.Warn("no tables found in %s", path)
	}
	logger.Debug("%s: %d lines, %d tables, %d lines skipped",
		path, snap.Stats.Lines, snap.Stats.TablesCreated, snap.Stats.LinesSkipped)

	out, err := format(snap, cmp.Or(opts.format, st.cfg.Diagram.Format))
	if err != nil {
		return err
	}
	return writeOutput(cmd, opts.output, out)
}

// schemaPath returns the schema file named on the command line or in the
// config.
func schemaPath(st *state, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if st.cfg.Diagram.SchemaFile != "" {
		return st.cfg.Diagram.SchemaFile, nil
	}
	return "", errors.New("no schema file given")
}

// format renders a snapshot in the named output format.
func format(snap preview.Snapshot, name string) (string, error) {
	switch name {
	case "", "dot":
		return snap.DOT, nil
	case "mermaid":
		return graph.Mermaid(snap.Schema), nil
	case "json":
		b, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b) + "\n", nil
	}
	return "", fmt.Errorf("unknown format %q (want dot, mermaid or json)", name)
}

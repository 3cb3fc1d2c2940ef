package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dbizzy/internal/logger"
	"dbizzy/internal/sqlrunner"
)

type queryOptions struct {
	db     string
	schema string
	export string
	json   bool
}

func newQueryCmd(st *state) *cobra.Command {
	opts := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "query [sql]",
		Short: "Run SQL against an in-process SQLite database",
		Long: `Run a SQL script against an empty in-memory database, or against a copy of
an existing SQLite file (--db), which is never modified. Without an argument
the script is read from standard input. --schema runs a DDL file first and
--export saves the resulting database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.db, "db", "", "SQLite file to query (default an empty in-memory database)")
	cmd.Flags().StringVar(&opts.schema, "schema", "", "SQL file to run before the query")
	cmd.Flags().StringVar(&opts.export, "export", "", "write the database to this file afterwards")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print results as JSON")
	return cmd
}

func runQuery(cmd *cobra.Command, opts *queryOptions, args []string) error {
	script := strings.Join(args, " ")
	if len(args) == 0 || script == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		script = string(b)
	}

	var d *sqlrunner.DB
	var err error
	if opts.db != "" {
		d, err = sqlrunner.OpenFile(opts.db)
	} else {
		d, err = sqlrunner.OpenMemory()
	}
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	if opts.schema != "" {
		ddl, err := readInput(cmd, opts.schema)
		if err != nil {
			return err
		}
		if _, err := d.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("schema %s: %w", opts.schema, err)
		}
	}

	results, err := d.Exec(ctx, script)
	if perr := printResults(cmd.OutOrStdout(), results, opts.json); perr != nil {
		return perr
	}
	if err != nil {
		return err
	}

	if opts.export != "" {
		size, err := d.Export(ctx, opts.export)
		if err != nil {
			return err
		}
		logger.Info("wrote %s (%s)", opts.export, humanize.Bytes(uint64(size)))
	}
	return nil
}

func printResults(w io.Writer, results []sqlrunner.ResultSet, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if results == nil {
			results = []sqlrunner.ResultSet{}
		}
		return enc.Encode(results)
	}

	for i, rs := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(rs.Columns, "\t"))
		for _, row := range rs.Values {
			cells := make([]string, len(row))
			for j, v := range row {
				cells[j] = cell(v)
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(w, "(%s)\n", rowCount(len(rs.Values)))
	}
	return nil
}

func cell(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("<%s blob>", humanize.Bytes(uint64(len(v))))
	}
	return fmt.Sprint(v)
}

func rowCount(n int) string {
	if n == 1 {
		return "1 row"
	}
	return humanize.Comma(int64(n)) + " rows"
}

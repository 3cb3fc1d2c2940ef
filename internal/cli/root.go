// Package cli is the dbizzy command tree.
package cli

import (
	"cmp"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"dbizzy/internal/logger"
	"dbizzy/pkg/config"
)

// state is shared by the commands of one invocation.
type state struct {
	configPath string
	logLevel   string
	cfg        config.AppConfig
}

// load reads the config file, when one is named, applies environment
// overrides and sets the log level. The --log-level flag wins over both.
func (st *state) load() error {
	if st.configPath != "" {
		cfg, err := config.LoadFile(st.configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		st.cfg = cfg
		logger.Debug("config file %s", st.configPath)
	}
	if err := config.ApplyEnv(&st.cfg); err != nil {
		return err
	}
	return logger.SetLevel(cmp.Or(st.logLevel, st.cfg.Log.Level))
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	st := &state{}
	root := &cobra.Command{
		Use:   "dbizzy",
		Short: "Draw entity relationship diagrams from SQL schema files and live databases",
		Long: `dbizzy reads CREATE TABLE and ALTER TABLE statements (MySQL or SQL Server
style) or the catalog of a live database, and draws the tables and their key
relationships as Graphviz DOT or Mermaid.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.load()
		},
	}
	root.PersistentFlags().StringVar(&st.configPath, "config", "", "path to config file (YAML, or TOML with a .toml extension)")
	root.PersistentFlags().StringVar(&st.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newDiagramCmd(st),
		newWatchCmd(st),
		newQueryCmd(st),
		newServeCmd(st),
	)
	return root
}

// Execute runs the root cobra command and returns an exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// readInput reads path, or standard input when path is "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// writeOutput writes text to path, or to the command's output when path is
// empty.
func writeOutput(cmd *cobra.Command, path, text string) error {
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), text)
		return err
	}
	return os.WriteFile(path, []byte(text), 0644)
}

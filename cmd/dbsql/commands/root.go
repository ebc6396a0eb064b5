package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrjgreen/database"
)

// options holds the global flags.
type options struct {
	configPath string
	connection string
	verbose    bool
}

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	sqlColor     = color.New(color.FgYellow)
)

// NewRootCommand builds the dbsql command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "dbsql",
		Short:         "Compile and run queries against configured connections",
		Long:          "dbsql compiles YAML query descriptions to SQL for every supported grammar and runs them against the connections of a database config file.",
		Version:       database.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "database.yaml", "Database config file (yaml, json or toml)")
	cmd.PersistentFlags().StringVar(&opts.connection, "connection", "", "Connection name (default: the config's default)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log every statement to stderr")

	cmd.AddCommand(newCompileCommand())
	cmd.AddCommand(newQueryCommand(opts))
	cmd.AddCommand(newRawCommand(opts))
	cmd.AddCommand(newConfigCommand(opts))
	return cmd
}

// logger returns a stderr logger tagged with a fresh run id.
func (o *options) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("run", uuid.Must(uuid.NewV7()).String())
}

// connect loads the config file and resolves the selected connection.
func (o *options) connect(ctx context.Context, stderr io.Writer) (*database.Connection, func(), error) {
	logger := o.logger(stderr)

	loader := database.NewConfigLoader(o.configPath, database.WithLoaderLogger(logger))
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}

	factory := database.NewConnectionFactory(
		database.WithFactoryLogger(logger),
		database.WithFactoryQueryLog(o.verbose),
	)
	resolver := database.NewResolverFromConfig(cfg, factory)
	conn, err := resolver.Connection(ctx, o.connection)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if err := resolver.Close(); err != nil {
			logger.Warn("closing connections failed", "error", err)
		}
	}
	return conn, closer, nil
}

// printSQL writes a statement and its bindings.
func printSQL(w io.Writer, sql string, bindings []any) {
	sqlColor.Fprintln(w, sql)
	if len(bindings) > 0 {
		parts := make([]string, len(bindings))
		for i, b := range bindings {
			parts[i] = fmt.Sprintf("%v", b)
		}
		infoColor.Fprintf(w, "bindings: [%s]\n", strings.Join(parts, ", "))
	}
}

// printYAML writes v as YAML.
func printYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return encoder.Close()
}

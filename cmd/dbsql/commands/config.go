package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mrjgreen/database"
)

const maskedPassword = "********"

func newConfigCommand(opts *options) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved database config",
		Long: `Load the config file the way the resolver does (.env files, ${VAR}
expansion and DB_ environment overrides) and print it with passwords masked.
With --check every connection is opened once and the result reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := database.NewConfigLoader(opts.configPath)
			cfg, err := loader.Load()
			if err != nil {
				return err
			}
			if !check {
				return printYAML(cmd.OutOrStdout(), maskPasswords(cfg))
			}

			resolver := database.NewResolverFromConfig(cfg, database.NewConnectionFactory(
				database.WithFactoryLogger(opts.logger(cmd.ErrOrStderr())),
			))
			defer resolver.Close()

			names := make([]string, 0, len(cfg.Connections))
			for name := range cfg.Connections {
				names = append(names, name)
			}
			sort.Strings(names)

			failed := 0
			for _, name := range names {
				conn, err := resolver.Connection(cmd.Context(), name)
				if err == nil {
					err = conn.Connect(cmd.Context())
				}
				if err != nil {
					failed++
					errorColor.Fprintf(cmd.OutOrStdout(), "✗ %s: %v\n", name, err)
					continue
				}
				successColor.Fprintf(cmd.OutOrStdout(), "✓ %s (%s)\n", name, conn.DriverName())
			}
			if failed > 0 {
				return errConnectionsFailed(failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Open every connection and report failures")
	return cmd
}

type errConnectionsFailed int

func (e errConnectionsFailed) Error() string {
	if e == 1 {
		return "1 connection failed"
	}
	return fmt.Sprintf("%d connections failed", int(e))
}

// maskPasswords returns a copy of cfg with every password replaced.
func maskPasswords(cfg *database.DatabaseConfig) *database.DatabaseConfig {
	out := &database.DatabaseConfig{Default: cfg.Default, Connections: make(map[string]database.Config, len(cfg.Connections))}
	for name, c := range cfg.Connections {
		c.Password = mask(c.Password)
		c.Read = maskEndpoints(c.Read)
		c.Write = maskEndpoints(c.Write)
		out.Connections[name] = c
	}
	return out
}

func maskEndpoints(endpoints []database.Config) []database.Config {
	if endpoints == nil {
		return nil
	}
	out := make([]database.Config, len(endpoints))
	for i, e := range endpoints {
		e.Password = mask(e.Password)
		out[i] = e
	}
	return out
}

func mask(password string) string {
	if password == "" {
		return ""
	}
	return maskedPassword
}

package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mrjgreen/database"
)

func newQueryCommand(opts *options) *cobra.Command {
	var (
		pretend bool
		count   bool
	)

	cmd := &cobra.Command{
		Use:   "query [query.yaml]",
		Short: "Run a YAML query on a connection",
		Long: `Run a YAML query description on the selected connection and print the
rows as YAML. With --pretend the statement is logged instead of executed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := ReadQuerySpec(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			conn, closeAll, err := opts.connect(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeAll()

			if pretend {
				return runPretend(ctx, cmd, conn, spec, count)
			}
			builder := spec.Apply(conn.Table(spec.Table))
			if count {
				n, err := builder.CountContext(ctx)
				if err != nil {
					return err
				}
				successColor.Fprintf(cmd.OutOrStdout(), "%d\n", n)
				return nil
			}
			rows, err := builder.GetContext(ctx)
			if err != nil {
				return err
			}
			if err := printYAML(cmd.OutOrStdout(), rows); err != nil {
				return err
			}
			infoColor.Fprintf(cmd.ErrOrStderr(), "%d row(s)\n", len(rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&pretend, "pretend", false, "Log the statement without executing it")
	cmd.Flags().BoolVar(&count, "count", false, "Print the number of matching rows")
	return cmd
}

func runPretend(ctx context.Context, cmd *cobra.Command, conn *database.Connection, spec *QuerySpec, count bool) error {
	log, err := conn.Pretend(ctx, func(c *database.Connection) error {
		builder := spec.Apply(c.Table(spec.Table))
		if count {
			_, err := builder.CountContext(ctx)
			return err
		}
		_, err := builder.GetContext(ctx)
		return err
	})
	if err != nil {
		return err
	}
	for _, entry := range log {
		printSQL(cmd.OutOrStdout(), entry.Query, entry.Bindings)
	}
	return nil
}

func newRawCommand(opts *options) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "raw SQL [bindings...]",
		Short: "Run a raw statement",
		Long: `Run a raw SQL statement with positional "?" bindings. Statements are
sent to the read connection unless --write is set; with --write the number of
affected rows is printed instead of the result set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			conn, closeAll, err := opts.connect(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeAll()

			bindings := make([]any, len(args)-1)
			for i, a := range args[1:] {
				bindings[i] = a
			}

			if write {
				result, err := conn.Query(ctx, args[0], bindings)
				if err != nil {
					return err
				}
				n, err := result.RowsAffected()
				if err != nil {
					return fmt.Errorf("rows affected: %w", err)
				}
				successColor.Fprintf(cmd.OutOrStdout(), "%d row(s) affected\n", n)
				return nil
			}

			rows, err := conn.Select(ctx, args[0], bindings, true)
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Execute on the write connection and print affected rows")
	return cmd
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrjgreen/database"
	"github.com/mrjgreen/database/dialect"
)

func newCompileCommand() *cobra.Command {
	var (
		driver string
		prefix string
	)

	cmd := &cobra.Command{
		Use:   "compile [query.yaml]",
		Short: "Print the SQL a query compiles to",
		Long: `Compile a YAML query description for one grammar and print the SQL and
its bindings. Nothing is sent to a database. Reads stdin when the file is "-".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := ReadQuerySpec(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			grammar, err := grammarForFlag(driver)
			if err != nil {
				return err
			}
			grammar.SetTablePrefix(prefix)

			sql, bindings, err := spec.Apply(database.New(grammar)).ToSQL()
			if err != nil {
				return err
			}
			printSQL(cmd.OutOrStdout(), sql, bindings)
			return nil
		},
	}

	cmd.Flags().StringVarP(&driver, "driver", "d", "ansi", "Grammar: ansi, mysql, pgsql, sqlite or sqlsrv")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Table prefix")
	return cmd
}

func grammarForFlag(driver string) (dialect.Grammar, error) {
	if driver == "" || driver == "ansi" {
		return dialect.NewGrammar(), nil
	}
	g, err := database.GrammarFor(driver)
	if err != nil {
		return nil, fmt.Errorf("unknown grammar %q: %w", driver, err)
	}
	return g, nil
}

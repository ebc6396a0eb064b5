package connectors

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"github.com/mrjgreen/database/internal/validation"
)

// PostgresConnector connects to PostgreSQL with lib/pq, or with pgx when the config
// sets PgsqlDriver to "pgx".
//
// Statements are written with "?" placeholders and rebound to $n before they reach
// the driver.
type PostgresConnector struct{}

// DSN returns a key/value connection string.
func (PostgresConnector) DSN(cfg Config) string {
	params := map[string]string{}
	for k, v := range cfg.Options {
		params[k] = v
	}

	host := cfg.Host
	if cfg.UnixSocket != "" {
		host = cfg.UnixSocket
	}
	if host != "" {
		params["host"] = host
	}
	if cfg.Port > 0 {
		params["port"] = strconv.Itoa(cfg.Port)
	}
	if cfg.Database != "" {
		params["dbname"] = cfg.Database
	}
	if cfg.Username != "" {
		params["user"] = cfg.Username
	}
	if cfg.Password != "" {
		params["password"] = cfg.Password
	}
	if _, ok := params["sslmode"]; !ok {
		if cfg.TLS {
			params["sslmode"] = "require"
		} else {
			params["sslmode"] = "disable"
		}
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + dsnValue(params[k])
	}
	return strings.Join(parts, " ")
}

func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// SessionStatements returns the statements run right after connecting: the client
// encoding and, when Schema is set, the search path.
func (PostgresConnector) SessionStatements(cfg Config) ([]string, error) {
	charset := cfg.Charset
	if charset == "" {
		charset = "utf8"
	}
	if err := validation.ValidateIdentifier(charset); err != nil {
		return nil, err
	}

	statements := []string{"set names '" + charset + "'"}
	if cfg.Schema != "" {
		schemas, err := validation.ValidateIdentifierList(cfg.Schema)
		if err != nil {
			return nil, err
		}
		quoted := make([]string, len(schemas))
		for i, s := range schemas {
			quoted[i] = pq.QuoteIdentifier(s)
		}
		statements = append(statements, "set search_path to "+strings.Join(quoted, ", "))
	}
	return statements, nil
}

func (p PostgresConnector) open(cfg Config) (*sql.DB, error) {
	dsn := p.DSN(cfg)
	if cfg.PgsqlDriver == "pgx" {
		connConfig, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, err
		}
		return stdlib.OpenDB(*connConfig), nil
	}
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(connector), nil
}

func (p PostgresConnector) Connect(ctx context.Context, cfg Config) (Handle, error) {
	statements, err := p.SessionStatements(cfg)
	if err != nil {
		return nil, err
	}

	db, err := p.open(cfg)
	if err != nil {
		return nil, err
	}

	h, err := NewSQLHandle(ctx, db, "pgsql", WithQuote(pq.QuoteLiteral), WithRebind(RebindDollar))
	if err != nil {
		return nil, err
	}
	return setup(ctx, h, statements...)
}

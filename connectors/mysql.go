package connectors

import (
	"context"
	"database/sql"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/mrjgreen/database/internal/validation"
)

// MySQLConnector connects to MySQL and MariaDB with go-sql-driver/mysql.
//
// After connecting it runs "set names '<charset>' collate '<collation>'" and, for a
// strict config, "set session sql_mode='STRICT_ALL_TABLES'".
type MySQLConnector struct{}

// DriverConfig builds the driver configuration: a unix socket when UnixSocket is set,
// otherwise tcp to Host:Port.
func (MySQLConnector) DriverConfig(cfg Config) *mysql.Config {
	c := mysql.NewConfig()
	c.User = cfg.Username
	c.Passwd = cfg.Password
	c.DBName = cfg.Database

	if cfg.UnixSocket != "" {
		c.Net = "unix"
		c.Addr = cfg.UnixSocket
	} else {
		host := cfg.Host
		if host == "" {
			host = "localhost"
		}
		port := cfg.Port
		if port == 0 {
			port = 3306
		}
		c.Net = "tcp"
		c.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	}

	if cfg.TLS {
		c.TLSConfig = "true"
	}
	if len(cfg.Options) > 0 {
		c.Params = make(map[string]string, len(cfg.Options))
		for k, v := range cfg.Options {
			c.Params[k] = v
		}
	}
	return c
}

// DSN returns the data source name DriverConfig describes.
func (m MySQLConnector) DSN(cfg Config) string {
	return m.DriverConfig(cfg).FormatDSN()
}

// SessionStatements returns the statements run right after connecting.
func (MySQLConnector) SessionStatements(cfg Config) ([]string, error) {
	charset := cfg.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	if err := validation.ValidateIdentifier(charset); err != nil {
		return nil, err
	}

	names := "set names '" + charset + "'"
	if cfg.Collation != "" {
		if err := validation.ValidateIdentifier(cfg.Collation); err != nil {
			return nil, err
		}
		names += " collate '" + cfg.Collation + "'"
	}

	statements := []string{names}
	if cfg.Strict {
		statements = append(statements, "set session sql_mode='STRICT_ALL_TABLES'")
	}
	return statements, nil
}

func (m MySQLConnector) Connect(ctx context.Context, cfg Config) (Handle, error) {
	statements, err := m.SessionStatements(cfg)
	if err != nil {
		return nil, err
	}

	connector, err := mysql.NewConnector(m.DriverConfig(cfg))
	if err != nil {
		return nil, err
	}

	h, err := NewSQLHandle(ctx, sql.OpenDB(connector), "mysql", WithQuote(QuoteMySQL))
	if err != nil {
		return nil, err
	}
	return setup(ctx, h, statements...)
}

var mysqlEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	"\x1a", `\Z`,
)

// QuoteMySQL escapes value the way mysql_real_escape_string does and wraps it in
// single quotes.
func QuoteMySQL(value string) string {
	return "'" + mysqlEscaper.Replace(value) + "'"
}

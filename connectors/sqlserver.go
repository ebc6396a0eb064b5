package connectors

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"strconv"

	_ "github.com/microsoft/go-mssqldb"
)

// SQLServerConnector connects to SQL Server with microsoft/go-mssqldb.
//
// The legacy "mssql" driver name is used because it accepts "?" placeholders.
type SQLServerConnector struct{}

// DSN returns a sqlserver:// URL.
func (SQLServerConnector) DSN(cfg Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 1433
	}

	query := url.Values{}
	for k, v := range cfg.Options {
		query.Set(k, v)
	}
	if cfg.Database != "" {
		query.Set("database", cfg.Database)
	}
	if cfg.TLS {
		query.Set("encrypt", "true")
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		Host:     net.JoinHostPort(host, strconv.Itoa(port)),
		RawQuery: query.Encode(),
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	return u.String()
}

func (s SQLServerConnector) Connect(ctx context.Context, cfg Config) (Handle, error) {
	db, err := sql.Open("mssql", s.DSN(cfg))
	if err != nil {
		return nil, err
	}
	return NewSQLHandle(ctx, db, "sqlsrv")
}

package connectors

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
)

// Connector opens a session for one driver.
type Connector interface {
	Connect(ctx context.Context, cfg Config) (Handle, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context, cfg Config) (Handle, error)

func (f ConnectorFunc) Connect(ctx context.Context, cfg Config) (Handle, error) {
	return f(ctx, cfg)
}

// Drivers lists the configuration driver names with a built-in connector.
var Drivers = []string{"mysql", "pgsql", "sqlite", "sqlsrv"}

// ForDriver returns the built-in connector for driver. ok is false for an unknown driver.
func ForDriver(driver string) (c Connector, ok bool) {
	switch driver {
	case "mysql":
		return MySQLConnector{}, true
	case "pgsql":
		return PostgresConnector{}, true
	case "sqlite":
		return SQLiteConnector{Fs: afero.NewOsFs()}, true
	case "sqlsrv":
		return SQLServerConnector{}, true
	}
	return nil, false
}

// setup runs session statements on a fresh handle and closes it on failure.
func setup(ctx context.Context, h Handle, statements ...string) (Handle, error) {
	for _, stmt := range statements {
		if _, err := h.ExecContext(ctx, stmt); err != nil {
			_ = h.Close()
			return nil, fmt.Errorf("connectors: %s: %w", stmt, err)
		}
	}
	return h, nil
}

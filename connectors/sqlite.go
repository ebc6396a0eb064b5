package connectors

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/afero"
)

// SQLiteConnector opens SQLite databases with mattn/go-sqlite3.
//
// Database is ":memory:" or a path to an existing file; a missing file is an error
// rather than silently creating a new database.
type SQLiteConnector struct {
	Fs afero.Fs
}

// DSN returns the file URI for cfg. Options other than foreign_keys become URI
// parameters.
func (SQLiteConnector) DSN(cfg Config) string {
	params := url.Values{}
	for k, v := range cfg.Options {
		if k == "foreign_keys" {
			continue
		}
		params.Set(k, v)
	}

	dsn := "file:" + cfg.Database
	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = url.QueryEscape(k) + "=" + url.QueryEscape(params.Get(k))
		}
		dsn += "?" + strings.Join(parts, "&")
	}
	return dsn
}

// SessionStatements enables foreign key enforcement when the "foreign_keys" option is
// "true" or "on".
func (SQLiteConnector) SessionStatements(cfg Config) []string {
	switch strings.ToLower(cfg.Options["foreign_keys"]) {
	case "true", "on", "1":
		return []string{"pragma foreign_keys = on"}
	}
	return nil
}

func (s SQLiteConnector) Connect(ctx context.Context, cfg Config) (Handle, error) {
	if cfg.Database == "" {
		return nil, fmt.Errorf("connectors: sqlite database path is required")
	}
	if cfg.Database != ":memory:" {
		fs := s.Fs
		if fs == nil {
			fs = afero.NewOsFs()
		}
		exists, err := afero.Exists(fs, cfg.Database)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("connectors: database (%s) does not exist", cfg.Database)
		}
	}

	db, err := sql.Open("sqlite3", s.DSN(cfg))
	if err != nil {
		return nil, err
	}
	h, err := NewSQLHandle(ctx, db, "sqlite")
	if err != nil {
		return nil, err
	}
	return setup(ctx, h, s.SessionStatements(cfg)...)
}

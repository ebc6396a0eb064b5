// Package connectors opens database sessions for each supported driver and exposes them
// through a small Handle abstraction.
//
// A Handle owns one dedicated *sql.Conn, so session state set right after connecting
// (character set, strict mode, search path, pragmas) stays in effect for every statement
// run through it. Transactions are started on that same connection.
//
// Yazar: Ahmet ALTUN
// Github: github.com/biyonik
// LinkedIn: linkedin.com/in/biyonik
// Email: ahmet.altun60@gmail.com
package connectors

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"sync"
)

// Rows is the cursor returned by a Handle. *sql.Rows implements it.
type Rows interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

var _ Rows = (*sql.Rows)(nil)

// Handle is one live database session.
type Handle interface {
	// ExecContext runs a statement that returns no rows.
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)

	// QueryContext runs a statement that returns rows.
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)

	// Begin starts a driver transaction on the session.
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error
	InTransaction() bool

	// Quote renders value as a literal safe to embed in SQL text.
	Quote(value string) string

	DriverName() string
	Ping(ctx context.Context) error
	Close() error
}

// queryExecutor is the part of *sql.Conn and *sql.Tx a handle runs statements on.
type queryExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

var (
	_ queryExecutor = (*sql.Conn)(nil)
	_ queryExecutor = (*sql.Tx)(nil)
)

var (
	ErrTxActive     = errors.New("connectors: transaction already active")
	ErrNoTx         = errors.New("connectors: no active transaction")
	ErrHandleClosed = errors.New("connectors: handle is closed")
)

// QuoteFunc renders a string literal for a specific server.
type QuoteFunc func(value string) string

// HandleOption configures an SQLHandle.
type HandleOption func(*SQLHandle)

// WithQuote sets the literal quoting used by Quote. Default QuoteStandard.
func WithQuote(quote QuoteFunc) HandleOption {
	return func(h *SQLHandle) {
		h.quote = quote
	}
}

// WithRebind rewrites every statement before it reaches the driver, for drivers that
// do not accept "?" placeholders.
func WithRebind(rebind func(query string) string) HandleOption {
	return func(h *SQLHandle) {
		h.rebind = rebind
	}
}

// SQLHandle implements Handle on a dedicated connection taken from db.
type SQLHandle struct {
	db     *sql.DB
	conn   *sql.Conn
	driver string
	quote  QuoteFunc
	rebind func(string) string

	mu     sync.Mutex
	tx     *sql.Tx
	closed bool
}

var _ Handle = (*SQLHandle)(nil)

// NewSQLHandle reserves one connection from db for the lifetime of the handle.
// Closing the handle releases the connection and closes db.
func NewSQLHandle(ctx context.Context, db *sql.DB, driver string, opts ...HandleOption) (*SQLHandle, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	h := &SQLHandle{db: db, conn: conn, driver: driver, quote: QuoteStandard}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *SQLHandle) executor(query string) (queryExecutor, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, "", ErrHandleClosed
	}
	if h.rebind != nil {
		query = h.rebind(query)
	}
	if h.tx != nil {
		return h.tx, query, nil
	}
	return h.conn, query, nil
}

func (h *SQLHandle) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ex, query, err := h.executor(query)
	if err != nil {
		return nil, err
	}
	return ex.ExecContext(ctx, query, args...)
}

func (h *SQLHandle) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	ex, query, err := h.executor(query)
	if err != nil {
		return nil, err
	}
	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (h *SQLHandle) Begin(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHandleClosed
	}
	if h.tx != nil {
		return ErrTxActive
	}
	tx, err := h.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	h.tx = tx
	return nil
}

func (h *SQLHandle) Commit() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.tx == nil {
		return ErrNoTx
	}
	tx := h.tx
	h.tx = nil
	return tx.Commit()
}

func (h *SQLHandle) Rollback() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.tx == nil {
		return ErrNoTx
	}
	tx := h.tx
	h.tx = nil
	return tx.Rollback()
}

func (h *SQLHandle) InTransaction() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tx != nil
}

func (h *SQLHandle) Quote(value string) string {
	return h.quote(value)
}

func (h *SQLHandle) DriverName() string {
	return h.driver
}

func (h *SQLHandle) Ping(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHandleClosed
	}
	return h.conn.PingContext(ctx)
}

// Close rolls back an open transaction, then releases the session.
func (h *SQLHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	var errs []error
	if h.tx != nil {
		errs = append(errs, h.tx.Rollback())
		h.tx = nil
	}
	errs = append(errs, h.conn.Close(), h.db.Close())
	return errors.Join(errs...)
}

// QuoteStandard doubles single quotes, the ANSI string literal escape.
func QuoteStandard(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// RebindDollar replaces "?" placeholders with $1, $2, ... Question marks inside quoted
// strings and quoted identifiers are left alone.
func RebindDollar(query string) string {
	var (
		out   []byte
		n     int
		quote byte
	)
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '?':
			n++
			out = append(out, '$')
			out = strconv.AppendInt(out, int64(n), 10)
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

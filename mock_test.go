package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/mrjgreen/database/connectors"
	"github.com/mrjgreen/database/dialect"
)

// ---- Executor ----

type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Select(_ context.Context, query string, bindings []any, useReadHandle bool) ([]Row, error) {
	args := m.Called(query, bindings, useReadHandle)
	rows, _ := args.Get(0).([]Row)
	return rows, args.Error(1)
}

func (m *mockExecutor) Query(_ context.Context, query string, bindings []any) (sql.Result, error) {
	args := m.Called(query, bindings)
	result, _ := args.Get(0).(sql.Result)
	return result, args.Error(1)
}

func newTestBuilder(t *testing.T, g dialect.Grammar) (*Builder, *mockExecutor) {
	t.Helper()
	exec := &mockExecutor{}
	t.Cleanup(func() { exec.AssertExpectations(t) })
	return NewBuilder(exec, g), exec
}

// ---- Handle ----

type mockHandle struct {
	mock.Mock
}

var _ connectors.Handle = (*mockHandle)(nil)

func (m *mockHandle) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	ret := m.Called(query, args)
	result, _ := ret.Get(0).(sql.Result)
	return result, ret.Error(1)
}

func (m *mockHandle) QueryContext(_ context.Context, query string, args ...any) (connectors.Rows, error) {
	ret := m.Called(query, args)
	rows, _ := ret.Get(0).(connectors.Rows)
	return rows, ret.Error(1)
}

func (m *mockHandle) Begin(context.Context) error { return m.Called().Error(0) }
func (m *mockHandle) Commit() error               { return m.Called().Error(0) }
func (m *mockHandle) Rollback() error             { return m.Called().Error(0) }
func (m *mockHandle) InTransaction() bool         { return m.Called().Bool(0) }
func (m *mockHandle) Quote(value string) string   { return connectors.QuoteStandard(value) }
func (m *mockHandle) DriverName() string          { return "mock" }
func (m *mockHandle) Ping(context.Context) error  { return nil }
func (m *mockHandle) Close() error                { return m.Called().Error(0) }

// ---- Rows and results ----

// fakeRows is an in-memory cursor.
type fakeRows struct {
	columns []string
	values  [][]any
	pos     int
	closed  bool
}

func newRows(columns []string, values ...[]any) *fakeRows {
	return &fakeRows{columns: columns, values: values, pos: -1}
}

func (r *fakeRows) Columns() ([]string, error) { return r.columns, nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.values)
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.pos < 0 || r.pos >= len(r.values) {
		return errors.New("scan out of range")
	}
	for i, d := range dest {
		*(d.(*any)) = r.values[r.pos][i]
	}
	return nil
}

func (r *fakeRows) Err() error   { return nil }
func (r *fakeRows) Close() error { r.closed = true; return nil }

type fakeResult struct {
	lastID   int64
	affected int64
}

func (r fakeResult) LastInsertId() (int64, error) { return r.lastID, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.affected, nil }

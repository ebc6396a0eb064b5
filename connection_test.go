package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjgreen/database/dialect"
)

func newMockConnection(t *testing.T, opts ...Option) (*Connection, *mockHandle) {
	t.Helper()
	write := &mockHandle{}
	t.Cleanup(func() { write.AssertExpectations(t) })
	return NewConnection(write, opts...), write
}

func TestConnection_SelectUsesReadHandle(t *testing.T) {
	read := &mockHandle{}
	defer read.AssertExpectations(t)
	read.On("QueryContext", "select * from users where id = ?", []any{1}).
		Return(newRows([]string{"id", "name"}, []any{int64(1), []byte("foo")}), nil)

	conn, _ := newMockConnection(t, WithReadHandle(read))

	rows, err := conn.Select(context.Background(), "select * from users where id = ?", []any{1}, true)
	require.NoError(t, err)
	assert.Equal(t, []Row{{"id": int64(1), "name": "foo"}}, rows)
}

func TestConnection_SelectOnWriteHandle(t *testing.T) {
	read := &mockHandle{}
	defer read.AssertExpectations(t)

	conn, write := newMockConnection(t, WithReadHandle(read))
	write.On("QueryContext", "select 1", []any{}).Return(newRows([]string{"1"}), nil)

	rows, err := conn.Select(context.Background(), "select 1", nil, false)
	require.NoError(t, err)
	assert.Equal(t, []Row{}, rows)
}

func TestConnection_ReadHandleInsideTransaction(t *testing.T) {
	read := &mockHandle{}
	conn, write := newMockConnection(t, WithReadHandle(read))
	write.On("Begin").Return(nil).Once()

	assert.Same(t, read, conn.ReadHandle())
	require.NoError(t, conn.BeginTransaction(context.Background()))
	assert.Same(t, write, conn.ReadHandle())
}

func TestConnection_FetchModeRaw(t *testing.T) {
	conn, write := newMockConnection(t, WithFetchMode(FetchRaw))
	write.On("QueryContext", "select name from users", []any{}).
		Return(newRows([]string{"name"}, []any{[]byte("foo")}), nil)

	rows, err := conn.FetchAll(context.Background(), "select name from users")
	require.NoError(t, err)
	assert.Equal(t, []byte("foo"), rows[0]["name"])
	assert.Equal(t, FetchRaw, conn.FetchMode())
}

func TestConnection_Fetch(t *testing.T) {
	t.Run("first row", func(t *testing.T) {
		conn, write := newMockConnection(t)
		cursor := newRows([]string{"id"}, []any{int64(1)}, []any{int64(2)})
		write.On("QueryContext", "select id from users", []any{}).Return(cursor, nil)

		row, err := conn.Fetch(context.Background(), "select id from users")
		require.NoError(t, err)
		assert.Equal(t, Row{"id": int64(1)}, row)
		assert.True(t, cursor.closed)
	})

	t.Run("no rows", func(t *testing.T) {
		conn, write := newMockConnection(t)
		write.On("QueryContext", "select id from users", []any{}).Return(newRows([]string{"id"}), nil)

		_, err := conn.Fetch(context.Background(), "select id from users")
		assert.ErrorIs(t, err, ErrNoRows)
	})

	t.Run("numeric and one", func(t *testing.T) {
		conn, write := newMockConnection(t)
		write.On("QueryContext", "select id, name from users", []any{}).
			Return(newRows([]string{"id", "name"}, []any{int64(7), "foo"}), nil).Once()
		write.On("QueryContext", "select count(*) from users", []any{}).
			Return(newRows([]string{"count(*)"}, []any{int64(3)}), nil).Once()

		values, err := conn.FetchNumeric(context.Background(), "select id, name from users")
		require.NoError(t, err)
		assert.Equal(t, []any{int64(7), "foo"}, values)

		one, err := conn.FetchOne(context.Background(), "select count(*) from users")
		require.NoError(t, err)
		assert.Equal(t, int64(3), one)
	})
}

func TestConnection_Cursor(t *testing.T) {
	conn, write := newMockConnection(t)
	cursor := newRows([]string{"id"}, []any{int64(1)})
	write.On("QueryContext", "select id from users", []any{}).Return(cursor, nil)

	rows, err := conn.Cursor(context.Background(), "select id from users", nil, true)
	require.NoError(t, err)
	assert.Same(t, cursor, rows)
	assert.False(t, cursor.closed)
}

func TestConnection_Query(t *testing.T) {
	conn, write := newMockConnection(t)
	write.On("ExecContext", "update users set a = ?", []any{"b"}).Return(fakeResult{affected: 4}, nil)

	result, err := conn.Query(context.Background(), "update users set a = ?", []any{"b"})
	require.NoError(t, err)
	n, err := result.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestConnection_PrepareBindings(t *testing.T) {
	conn := NewConnection(nil, WithGrammar(dialect.SQLServer()))
	at := time.Date(2024, 3, 1, 12, 30, 5, 0, time.UTC)

	in := []any{at, &at, (*time.Time)(nil), true, false, "x", 5}
	got := conn.PrepareBindings(in)

	assert.Equal(t, []any{"2024-03-01 12:30:05.000", "2024-03-01 12:30:05.000", nil, true, 0, "x", 5}, got)
	assert.Equal(t, at, in[0], "input must not be modified")
}

func TestConnection_PreparedBindingsReachDriver(t *testing.T) {
	conn, write := newMockConnection(t)
	write.On("ExecContext", "update users set active = ?", []any{0}).Return(fakeResult{}, nil)

	_, err := conn.Query(context.Background(), "update users set active = ?", []any{false})
	require.NoError(t, err)
}

func TestConnection_Pretend(t *testing.T) {
	conn, _ := newMockConnection(t)

	log, err := conn.Pretend(context.Background(), func(c *Connection) error {
		assert.True(t, c.Pretending())
		if _, err := c.Table("users").Where("id", 1).Update(map[string]any{"name": "foo"}); err != nil {
			return err
		}
		_, err := c.Table("users").Get()
		return err
	})
	require.NoError(t, err)

	require.Len(t, log, 2)
	assert.Equal(t, `update "users" set "name" = ? where "id" = ?`, log[0].Query)
	assert.Equal(t, []any{"foo", 1}, log[0].Bindings)
	assert.Equal(t, `select * from "users"`, log[1].Query)
	assert.False(t, conn.Pretending())
	assert.False(t, conn.Logging())
}

func TestConnection_PretendReturnsCallbackError(t *testing.T) {
	conn, _ := newMockConnection(t)
	boom := errors.New("boom")

	log, err := conn.Pretend(context.Background(), func(c *Connection) error {
		_, _ = c.Query(context.Background(), "delete from users", nil)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, log, 1)
}

func TestConnection_QueryLog(t *testing.T) {
	conn, write := newMockConnection(t)
	write.On("ExecContext", "delete from users where id = ?", []any{1}).Return(fakeResult{affected: 1}, nil)
	write.On("ExecContext", "delete from users", []any{}).Return(fakeResult{}, nil)

	_, err := conn.Query(context.Background(), "delete from users where id = ?", []any{1})
	require.NoError(t, err)
	assert.Empty(t, conn.QueryLog())

	conn.EnableQueryLog()
	assert.True(t, conn.Logging())
	_, err = conn.Query(context.Background(), "delete from users", nil)
	require.NoError(t, err)

	log := conn.QueryLog()
	require.Len(t, log, 1)
	assert.Equal(t, "delete from users", log[0].Query)
	assert.GreaterOrEqual(t, log[0].Time, 0.0)

	conn.FlushQueryLog()
	assert.Empty(t, conn.QueryLog())

	conn.DisableQueryLog()
	assert.False(t, conn.Logging())
}

func TestConnection_ReconnectsWhenHandleIsMissing(t *testing.T) {
	write := &mockHandle{}
	defer write.AssertExpectations(t)
	write.On("ExecContext", "select 1", []any{}).Return(fakeResult{}, nil)

	calls := 0
	conn := NewConnection(nil, WithReconnector(ReconnectorFunc(func(context.Context) (Handle, Handle, error) {
		calls++
		return write, nil, nil
	})))

	_, err := conn.Query(context.Background(), "select 1", nil)
	require.NoError(t, err)
	_, err = conn.Query(context.Background(), "select 1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Same(t, write, conn.WriteHandle())
}

func TestConnection_NoReconnector(t *testing.T) {
	conn := NewConnection(nil)

	_, err := conn.Select(context.Background(), "select 1", nil, true)
	assert.ErrorIs(t, err, ErrNoReconnector)
}

func TestConnection_ReconnectFailureIsHandled(t *testing.T) {
	boom := errors.New("connection refused")
	conn := NewConnection(nil,
		WithReconnector(ReconnectorFunc(func(context.Context) (Handle, Handle, error) {
			return nil, nil, boom
		})),
		WithExceptionHandler(NewExceptionHandler(map[string]any{"host": "db"}, 0)),
	)

	err := conn.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "connection refused\nhost: db\nSQL: Connection attempt", qe.Message)
}

func TestConnection_DisconnectClosesHandles(t *testing.T) {
	read := &mockHandle{}
	defer read.AssertExpectations(t)
	read.On("Close").Return(nil).Once()

	conn, write := newMockConnection(t, WithReadHandle(read))
	write.On("Close").Return(nil).Once()

	require.NoError(t, conn.Disconnect())
	assert.Nil(t, conn.WriteHandle())
	assert.Empty(t, conn.DriverName())
}

func TestConnection_DriverErrorsGoThroughExceptionHandler(t *testing.T) {
	boom := errors.New("syntax error")
	conn, write := newMockConnection(t,
		WithExceptionHandler(NewExceptionHandler(map[string]any{"driver": "mysql", "database": "app"}, 0)),
	)
	write.On("ExecContext", "update users set name = ? where id = ?", []any{"foo", 1}).Return(nil, boom)

	_, err := conn.Query(context.Background(), "update users set name = ? where id = ?", []any{"foo", 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "update users set name = ? where id = ?", qe.SQL)
	assert.Equal(t, []any{"foo", 1}, qe.Bindings)
	assert.Equal(t, "syntax error\ndatabase: app\ndriver: mysql\nSQL: update users set name = foo where id = 1", qe.Error())
}

func TestConnection_CustomExceptionHandler(t *testing.T) {
	wrapped := errors.New("wrapped")
	conn, write := newMockConnection(t, WithExceptionHandler(ExceptionHandlerFunc(func(string, []any, error) error {
		return wrapped
	})))
	write.On("ExecContext", "x", []any{}).Return(nil, errors.New("driver"))

	_, err := conn.Query(context.Background(), "x", nil)
	assert.Same(t, wrapped, err)
}

func TestConnection_Quote(t *testing.T) {
	conn, _ := newMockConnection(t)

	q, err := conn.Quote(context.Background(), "it's")
	require.NoError(t, err)
	assert.Equal(t, `'it''s'`, q)

	sql, err := conn.QuoteInto(context.Background(), "select * from users where name = ? and age > ?", "o'neil", 30)
	require.NoError(t, err)
	assert.Equal(t, `select * from users where name = 'o''neil' and age > '30'`, sql)

	sql, err = conn.QuoteInto(context.Background(), "select ?", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, `select 'a'`, sql)
}

func TestConnection_TablePrefix(t *testing.T) {
	conn := NewConnection(nil, WithGrammar(dialect.MySQL()), WithTablePrefix("app_"))
	assert.Equal(t, "app_", conn.TablePrefix())
	assert.Equal(t, "app_", conn.Grammar().TablePrefix())

	sql, _, err := conn.Table("users").ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "select * from `app_users`", sql)

	conn.SetGrammar(dialect.Postgres())
	sql, _, err = conn.Table("users").ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `select * from "app_users"`, sql)

	conn.SetTablePrefix("")
	sql, _, err = conn.Table("users").ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `select * from "users"`, sql)
}

func TestConnection_ConvenienceWriters(t *testing.T) {
	conn, write := newMockConnection(t, WithGrammar(dialect.MySQL()))
	write.On("ExecContext", "insert into `users` (`email`) values (?)", []any{"foo"}).Return(fakeResult{affected: 1}, nil)
	write.On("ExecContext", "update `users` set `email` = ? where id = ?", []any{"bar", 1}).Return(fakeResult{affected: 1}, nil)
	write.On("ExecContext", "delete from `users` where id = ?", []any{1}).Return(fakeResult{affected: 1}, nil)
	write.On("ExecContext", "insert into `users` (`email`) values (?) on duplicate key update `email` = ?", []any{"foo", "baz"}).
		Return(fakeResult{affected: 2}, nil)

	ctx := context.Background()
	_, err := conn.Insert(ctx, "users", map[string]any{"email": "foo"})
	require.NoError(t, err)
	_, err = conn.Update(ctx, "users", map[string]any{"email": "bar"}, "id = ?", 1)
	require.NoError(t, err)
	_, err = conn.Delete(ctx, "users", "id = ?", 1)
	require.NoError(t, err)
	_, err = conn.InsertUpdate(ctx, "users", []map[string]any{{"email": "foo"}}, map[string]any{"email": "baz"})
	require.NoError(t, err)
}

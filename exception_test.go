package database

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultExceptionHandler_Message(t *testing.T) {
	h := NewExceptionHandler(map[string]any{"host": "db", "driver": "mysql"}, 0)
	boom := errors.New("table not found")

	err := h.Handle("select * from users where id = ? and name = ?", []any{1, nil}, boom)

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "table not found\ndriver: mysql\nhost: db\nSQL: select * from users where id = 1 and name = null", qe.Error())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, qe.Code)
	assert.Nil(t, qe.ErrorInfo)
}

func TestDefaultExceptionHandler_NilError(t *testing.T) {
	assert.NoError(t, NewExceptionHandler(nil, 0).Handle("select 1", nil, nil))
}

func TestDefaultExceptionHandler_DriverCode(t *testing.T) {
	driverErr := &mysql.MySQLError{Number: 1062, SQLState: [5]byte{'2', '3', '0', '0', '0'}, Message: "Duplicate entry"}

	err := NewExceptionHandler(nil, 0).Handle("insert into users (id) values (?)", []any{1}, fmt.Errorf("exec: %w", driverErr))

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "23000", qe.Code)
	assert.Equal(t, []any{"23000", 1062, "Duplicate entry"}, qe.ErrorInfo)

	var unwrapped *mysql.MySQLError
	assert.ErrorAs(t, err, &unwrapped)
}

func TestDefaultExceptionHandler_TruncatesSQL(t *testing.T) {
	h := NewExceptionHandler(nil, 10)

	err := h.Handle(strings.Repeat("x", 50), nil, errors.New("boom"))
	assert.Equal(t, "boom\nSQL: xxxxxxxxxx...", err.Error())

	err = h.Handle("short", nil, errors.New("boom"))
	assert.Equal(t, "boom\nSQL: short", err.Error())
}

func TestSubstituteBindings(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		query    string
		bindings []any
		want     string
	}{
		{"none", "select 1", nil, "select 1"},
		{"ordered", "a = ? and b = ?", []any{"x", 2}, "a = x and b = 2"},
		{"extra placeholders", "a = ? and b = ?", []any{"x"}, "a = x and b = ?"},
		{"bytes and time", "a = ? and b = ?", []any{[]byte("raw"), at}, "a = raw and b = 2024-01-02 03:04:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, substituteBindings(tt.query, tt.bindings))
		})
	}
}

func TestErrors(t *testing.T) {
	assert.NoError(t, WrapError("op", nil))
	assert.EqualError(t, WrapError("commit", errors.New("x")), "database: commit: x")

	qe := &QueryError{Err: errors.New("driver")}
	assert.Equal(t, "driver", qe.Error())

	assert.ErrorIs(t, &UnsupportedDriverError{Driver: "x"}, ErrUnsupportedDriver)
}

package database

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryLogger_RecordsEntries(t *testing.T) {
	l := NewQueryLogger()
	logger := slog.New(l).With("connection", "main")

	bindings := []any{1, "foo"}
	logger.LogAttrs(context.Background(), slog.LevelDebug, "select * from users where id = ?",
		slog.Any(LogKeyBindings, bindings),
		slog.Float64(LogKeyElapsedMS, 1.25),
	)
	bindings[0] = 99

	log := l.QueryLog()
	require.Len(t, log, 1)
	assert.Equal(t, QueryLogEntry{
		Query:    "select * from users where id = ?",
		Bindings: []any{1, "foo"},
		Time:     1.25,
		Level:    slog.LevelDebug,
	}, log[0])

	l.Flush()
	assert.Empty(t, l.QueryLog())
}

func TestQueryLogger_Concurrent(t *testing.T) {
	l := NewQueryLogger()
	logger := slog.New(l)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Debug("select 1")
		}()
	}
	wg.Wait()

	assert.Len(t, l.QueryLog(), 20)
}

func TestElapsedMS(t *testing.T) {
	assert.Equal(t, 1.23, elapsedMS(1234*time.Microsecond))
	assert.Equal(t, 0.0, elapsedMS(0))
	assert.Equal(t, 1500.0, elapsedMS(1500*time.Millisecond))
}

func TestFetchMode_String(t *testing.T) {
	assert.Equal(t, "assoc", FetchAssoc.String())
	assert.Equal(t, "raw", FetchRaw.String())
}

func TestQueryResult(t *testing.T) {
	r := NewQueryResult(fakeResult{lastID: 5, affected: 2})
	id, err := r.LastInsertID()
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)

	var empty *QueryResult
	_, err = empty.RowsAffected()
	assert.ErrorIs(t, err, ErrNoRows)
}

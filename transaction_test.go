package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_NestedLevelsShareOneTransaction(t *testing.T) {
	conn, write := newMockConnection(t)
	write.On("Begin").Return(nil).Once()
	write.On("Commit").Return(nil).Once()
	ctx := context.Background()

	require.NoError(t, conn.BeginTransaction(ctx))
	require.NoError(t, conn.BeginTransaction(ctx))
	assert.Equal(t, 2, conn.TransactionLevel())
	assert.True(t, conn.InTransaction())

	require.NoError(t, conn.Commit())
	assert.Equal(t, 1, conn.TransactionLevel())
	require.NoError(t, conn.Commit())
	assert.Equal(t, 0, conn.TransactionLevel())
	assert.False(t, conn.InTransaction())
}

func TestTransaction_InnerRollbackOnlyDecrements(t *testing.T) {
	conn, write := newMockConnection(t)
	write.On("Begin").Return(nil).Once()
	write.On("Rollback").Return(nil).Once()
	ctx := context.Background()

	require.NoError(t, conn.BeginTransaction(ctx))
	require.NoError(t, conn.BeginTransaction(ctx))
	require.NoError(t, conn.RollBack())
	assert.Equal(t, 1, conn.TransactionLevel())
	require.NoError(t, conn.RollBack())
	assert.Equal(t, 0, conn.TransactionLevel())
}

func TestTransaction_NoActiveTransaction(t *testing.T) {
	conn, _ := newMockConnection(t)

	assert.ErrorIs(t, conn.Commit(), ErrNoActiveTransaction)
	assert.ErrorIs(t, conn.RollBack(), ErrNoActiveTransaction)
	assert.Equal(t, 0, conn.TransactionLevel())
}

func TestTransaction_BeginFailureKeepsDepth(t *testing.T) {
	conn, write := newMockConnection(t)
	boom := errors.New("boom")
	write.On("Begin").Return(boom).Once()

	err := conn.BeginTransaction(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, conn.TransactionLevel())
}

func TestTransaction_Commits(t *testing.T) {
	conn, write := newMockConnection(t)
	write.On("Begin").Return(nil).Once()
	write.On("ExecContext", "update accounts set balance = balance - 1", []any{}).Return(fakeResult{affected: 1}, nil)
	write.On("Commit").Return(nil).Once()

	err := conn.Transaction(context.Background(), func(tx *Connection) error {
		assert.Equal(t, 1, tx.TransactionLevel())
		_, err := tx.Query(context.Background(), "update accounts set balance = balance - 1", nil)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 0, conn.TransactionLevel())
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	conn, write := newMockConnection(t)
	boom := errors.New("boom")
	write.On("Begin").Return(nil).Once()
	// The rollback error is dropped in favour of the callback error.
	write.On("Rollback").Return(errors.New("rollback failed")).Once()

	err := conn.Transaction(context.Background(), func(*Connection) error {
		return boom
	})
	assert.Same(t, boom, err)
	assert.Equal(t, 0, conn.TransactionLevel())
}

func TestTransaction_RollsBackOnPanic(t *testing.T) {
	conn, write := newMockConnection(t)
	write.On("Begin").Return(nil).Once()
	write.On("Rollback").Return(nil).Once()

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = conn.Transaction(context.Background(), func(*Connection) error {
			panic("kaboom")
		})
	})
	assert.Equal(t, 0, conn.TransactionLevel())
}

func TestTransaction_PretendNeverTouchesTheHandle(t *testing.T) {
	conn, _ := newMockConnection(t)

	log, err := conn.Pretend(context.Background(), func(c *Connection) error {
		return c.Transaction(context.Background(), func(tx *Connection) error {
			_, err := tx.Table("users").Delete()
			return err
		})
	})
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, `delete from "users"`, log[0].Query)
}

func TestTransaction_PretendRestoresDepth(t *testing.T) {
	conn, write := newMockConnection(t)
	write.On("Begin").Return(nil).Once()
	write.On("Commit").Return(nil).Once()
	ctx := context.Background()

	_, err := conn.Pretend(ctx, func(c *Connection) error {
		return c.BeginTransaction(ctx)
	})
	require.NoError(t, err)
	assert.Equal(t, 0, conn.TransactionLevel())
	assert.ErrorIs(t, conn.Commit(), ErrNoActiveTransaction)

	require.NoError(t, conn.BeginTransaction(ctx))
	_, err = conn.Pretend(ctx, func(c *Connection) error {
		return c.Commit()
	})
	require.NoError(t, err)
	assert.Equal(t, 1, conn.TransactionLevel())
	require.NoError(t, conn.Commit())
}

func TestTransaction_ReconnectsBeforeBegin(t *testing.T) {
	write := &mockHandle{}
	defer write.AssertExpectations(t)
	write.On("Begin").Return(nil).Once()

	conn := NewConnection(nil, WithReconnector(ReconnectorFunc(func(context.Context) (Handle, Handle, error) {
		return write, nil, nil
	})))
	require.NoError(t, conn.BeginTransaction(context.Background()))
	assert.Equal(t, 1, conn.TransactionLevel())
}

package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresGrammar_Locks(t *testing.T) {
	g := Postgres()

	q := &Query{From: "foo", Wheres: whereBar(), Lock: true}
	assert.Equal(t, `select * from "foo" where "bar" = ? for update`, compile(t, g, q))

	q.Lock = false
	assert.Equal(t, `select * from "foo" where "bar" = ? for share`, compile(t, g, q))
}

func TestPostgresGrammar_DateWheres(t *testing.T) {
	q := &Query{From: "users", Wheres: []WhereClause{{Type: WhereTypeMonth, Column: "created_at", Operator: "=", Value: 5}}}
	assert.Equal(t, `select * from "users" where month("created_at") = ?`, compile(t, Postgres(), q))
}

func TestPostgresGrammar_InsertGetID(t *testing.T) {
	g := Postgres()
	assert.True(t, g.ReturnsID())

	sql, err := g.CompileInsertGetID(table("users"), map[string]any{"email": "foo"}, "")
	require.NoError(t, err)
	assert.Equal(t, `insert into "users" ("email") values (?) returning "id"`, sql)

	sql, err = g.CompileInsertGetID(table("users"), map[string]any{"email": "foo"}, "user_id")
	require.NoError(t, err)
	assert.Equal(t, `insert into "users" ("email") values (?) returning "user_id"`, sql)
}

func TestPostgresGrammar_Update(t *testing.T) {
	g := Postgres()
	values := map[string]any{"email": "foo", "name": "bar"}

	q := &Query{From: "users", Wheres: []WhereClause{{Type: WhereTypeBasic, Column: "id", Operator: "=", Value: 1}}}
	sql, err := g.CompileUpdate(q, values)
	require.NoError(t, err)
	assert.Equal(t, `update "users" set "email" = ?, "name" = ? where "id" = ?`, sql)

	joined := &Query{
		From:   "users",
		Joins:  []*JoinClause{NewJoinClause(JoinInner, "orders").On("users.id", "=", "orders.user_id")},
		Wheres: []WhereClause{{Type: WhereTypeBasic, Column: "users.id", Operator: "=", Value: 1}},
	}
	sql, err = g.CompileUpdate(joined, values)
	require.NoError(t, err)
	assert.Equal(t, `update "users" set "email" = ?, "name" = ? from "orders" where "users"."id" = ? and "users"."id" = "orders"."user_id"`, sql)

	joined.Wheres = nil
	sql, err = g.CompileUpdate(joined, values)
	require.NoError(t, err)
	assert.Equal(t, `update "users" set "email" = ?, "name" = ? from "orders" where "users"."id" = "orders"."user_id"`, sql)
}

func TestPostgresGrammar_UpdateBindings(t *testing.T) {
	b := NewBindings()
	require.NoError(t, b.Add(PhaseJoin, "j"))
	require.NoError(t, b.Add(PhaseWhere, 1))

	got := Postgres().UpdateBindings(table("users"), b, []any{"foo"})
	assert.Equal(t, []any{"foo", 1, "j"}, got)
}

func TestPostgresGrammar_Truncate(t *testing.T) {
	stmts, err := Postgres().CompileTruncate(table("users"))
	require.NoError(t, err)
	assert.Equal(t, []Statement{{SQL: `truncate "users" restart identity`, Bindings: []any{}}}, stmts)
}

func TestPostgresGrammar_InsertIgnoreUnsupported(t *testing.T) {
	_, err := Postgres().CompileInsertIgnore(table("users"), []map[string]any{{"a": 1}})
	assert.EqualError(t, err, "Insert ignore is not supported by the postgres grammar driver")
}

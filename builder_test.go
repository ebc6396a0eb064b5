package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjgreen/database/dialect"
)

func builder() *Builder {
	return NewBuilder(nil, dialect.NewGrammar())
}

func mysqlBuilder() *Builder {
	return NewBuilder(nil, dialect.MySQL())
}

func assertSQL(t *testing.T, b *Builder, wantSQL string, wantBindings []any) {
	t.Helper()
	sql, bindings, err := b.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, wantSQL, sql)
	assert.Equal(t, wantBindings, bindings)
}

func TestBuilder_Select(t *testing.T) {
	tests := []struct {
		name string
		b    *Builder
		want string
	}{
		{"basic", builder().Select("*").From("users"), `select * from "users"`},
		{"default columns", builder().From("users"), `select * from "users"`},
		{"empty select", builder().Select().From("users"), `select * from "users"`},
		{"alias", builder().Select("foo as bar").From("users"), `select "foo" as "bar" from "users"`},
		{"distinct", builder().Distinct().Select("foo", "bar").From("users"), `select distinct "foo", "bar" from "users"`},
		{"add select", builder().Select("foo").AddSelect("bar").AddSelect("baz", "boom").From("users"), `select "foo", "bar", "baz", "boom" from "users"`},
		{"expression", builder().Select(Raw("count(*)")).From("users"), `select count(*) from "users"`},
		{"wrapped table", builder().Select("*").From("public.users"), `select * from "public"."users"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSQL(t, tt.b, tt.want, []any{})
		})
	}
}

func TestBuilder_TablePrefix(t *testing.T) {
	g := dialect.NewGrammar()
	g.SetTablePrefix("prefix_")
	b := NewBuilder(nil, g).Select("*").From("users")

	assertSQL(t, b, `select * from "prefix_users"`, []any{})
}

func TestBuilder_SelectRawAndSub(t *testing.T) {
	b := builder().SelectRaw("count(*) as c, ? as k", "key").From("users")
	assertSQL(t, b, `select count(*) as c, ? as k from "users"`, []any{"key"})

	sub := builder().Select("id").From("posts").Where("active", 1)
	b = builder().SelectSub(sub, "post").From("users").Where("id", 5)
	assertSQL(t, b, `select (select "id" from "posts" where "active" = ?) as "post" from "users" where "id" = ?`, []any{1, 5})
}

func TestBuilder_Where(t *testing.T) {
	tests := []struct {
		name     string
		b        *Builder
		sql      string
		bindings []any
	}{
		{
			name:     "basic",
			b:        builder().From("users").Where("id", "=", 1),
			sql:      `select * from "users" where "id" = ?`,
			bindings: []any{1},
		},
		{
			name:     "shorthand equals",
			b:        builder().From("users").Where("id", 1),
			sql:      `select * from "users" where "id" = ?`,
			bindings: []any{1},
		},
		{
			name:     "unknown operator is a value",
			b:        builder().From("users").Where("name", "john", "ignored"),
			sql:      `select * from "users" where "name" = ?`,
			bindings: []any{"john"},
		},
		{
			name:     "operator case",
			b:        builder().From("users").Where("name", "LIKE", "%jo%"),
			sql:      `select * from "users" where "name" like ?`,
			bindings: []any{"%jo%"},
		},
		{
			name:     "or where",
			b:        builder().From("users").Where("id", "=", 1).OrWhere("email", "=", "foo"),
			sql:      `select * from "users" where "id" = ? or "email" = ?`,
			bindings: []any{1, "foo"},
		},
		{
			name:     "raw",
			b:        builder().From("users").WhereRaw("id = ? or email = ?", 1, "foo"),
			sql:      `select * from "users" where id = ? or email = ?`,
			bindings: []any{1, "foo"},
		},
		{
			name:     "or raw",
			b:        builder().From("users").Where("id", 1).OrWhereRaw("email = ?", "foo"),
			sql:      `select * from "users" where "id" = ? or email = ?`,
			bindings: []any{1, "foo"},
		},
		{
			name:     "between",
			b:        builder().From("users").WhereBetween("id", 1, 2),
			sql:      `select * from "users" where "id" between ? and ?`,
			bindings: []any{1, 2},
		},
		{
			name:     "not between",
			b:        builder().From("users").WhereNotBetween("id", 1, 2),
			sql:      `select * from "users" where "id" not between ? and ?`,
			bindings: []any{1, 2},
		},
		{
			name:     "in",
			b:        builder().From("users").WhereIn("id", []any{1, 2, 3}),
			sql:      `select * from "users" where "id" in (?, ?, ?)`,
			bindings: []any{1, 2, 3},
		},
		{
			name:     "or in",
			b:        builder().From("users").Where("id", 1).OrWhereIn("id", []any{1, 2, 3}),
			sql:      `select * from "users" where "id" = ? or "id" in (?, ?, ?)`,
			bindings: []any{1, 1, 2, 3},
		},
		{
			name:     "not in",
			b:        builder().From("users").WhereNotIn("id", []any{1, 2, 3}),
			sql:      `select * from "users" where "id" not in (?, ?, ?)`,
			bindings: []any{1, 2, 3},
		},
		{
			name:     "empty in matches nothing",
			b:        builder().From("users").WhereIn("id", []any{}),
			sql:      `select * from "users" where 0 = 1`,
			bindings: []any{},
		},
		{
			name:     "empty not in matches everything",
			b:        builder().From("users").WhereNotIn("id", nil),
			sql:      `select * from "users" where 1 = 1`,
			bindings: []any{},
		},
		{
			name:     "null",
			b:        builder().From("users").WhereNull("id"),
			sql:      `select * from "users" where "id" is null`,
			bindings: []any{},
		},
		{
			name:     "or not null",
			b:        builder().From("users").Where("id", ">", 1).OrWhereNotNull("id"),
			sql:      `select * from "users" where "id" > ? or "id" is not null`,
			bindings: []any{1},
		},
		{
			name:     "nil value",
			b:        builder().From("users").Where("foo", nil),
			sql:      `select * from "users" where "foo" is null`,
			bindings: []any{},
		},
		{
			name:     "nil value not equal",
			b:        builder().From("users").Where("foo", "<>", nil),
			sql:      `select * from "users" where "foo" is not null`,
			bindings: []any{},
		},
		{
			name:     "expression value",
			b:        builder().From("users").Where("created_at", "<", Raw("now()")),
			sql:      `select * from "users" where "created_at" < now()`,
			bindings: []any{},
		},
		{
			name:     "day",
			b:        builder().From("users").WhereDay("created_at", "=", 1),
			sql:      `select * from "users" where day("created_at") = ?`,
			bindings: []any{1},
		},
		{
			name:     "month and year",
			b:        builder().From("users").WhereMonth("created_at", "=", 5).WhereYear("created_at", ">", 2020),
			sql:      `select * from "users" where month("created_at") = ? and year("created_at") > ?`,
			bindings: []any{5, 2020},
		},
		{
			name:     "or day month year",
			b:        builder().From("users").Where("id", 1).OrWhereDay("created_at", "=", 1).OrWhereMonth("created_at", "=", 2).OrWhereYear("created_at", "<", 2000),
			sql:      `select * from "users" where "id" = ? or day("created_at") = ? or month("created_at") = ? or year("created_at") < ?`,
			bindings: []any{1, 1, 2, 2000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSQL(t, tt.b, tt.sql, tt.bindings)
		})
	}
}

func TestBuilder_NestedWheres(t *testing.T) {
	b := builder().From("users").Where("email", "=", "foo").OrWhere(func(q *Builder) {
		q.Where("name", "=", "bar").Where("age", "=", 25)
	})
	assertSQL(t, b, `select * from "users" where "email" = ? or ("name" = ? and "age" = ?)`, []any{"foo", "bar", 25})

	b = builder().From("users").WhereNested(func(q *Builder) {
		q.Where("a", 1).OrWhere("b", 2)
	}).Where("c", 3)
	assertSQL(t, b, `select * from "users" where ("a" = ? or "b" = ?) and "c" = ?`, []any{1, 2, 3})
}

func TestBuilder_EmptyNestedWhereIsSkipped(t *testing.T) {
	b := builder().From("users").Where("id", 1).WhereNested(func(*Builder) {})
	assertSQL(t, b, `select * from "users" where "id" = ?`, []any{1})
}

func TestBuilder_WhereMap(t *testing.T) {
	b := builder().From("users").Where(map[string]any{"name": "bar", "age": 25})
	assertSQL(t, b, `select * from "users" where ("age" = ? and "name" = ?)`, []any{25, "bar"})

	b = builder().From("users").Where("id", 1).OrWhereMap(map[string]any{"a": 2})
	assertSQL(t, b, `select * from "users" where "id" = ? or ("a" = ?)`, []any{1, 2})
}

func TestBuilder_SubQueries(t *testing.T) {
	t.Run("sub select comparison", func(t *testing.T) {
		b := builder().From("users").Where("email", "=", "foo").OrWhere("id", "=", func(q *Builder) {
			q.Select(Raw("max(id)")).From("users").Where("email", "=", "bar")
		})
		assertSQL(t, b, `select * from "users" where "email" = ? or "id" = (select max(id) from "users" where "email" = ?)`, []any{"foo", "bar"})
	})

	t.Run("exists", func(t *testing.T) {
		b := builder().From("orders").WhereExists(func(q *Builder) {
			q.From("products").WhereRaw(`"products"."id" = "orders"."id"`)
		})
		assertSQL(t, b, `select * from "orders" where exists (select * from "products" where "products"."id" = "orders"."id")`, []any{})

		b = builder().From("orders").Where("id", 1).OrWhereNotExists(builder().From("products").Where("sku", "x"))
		assertSQL(t, b, `select * from "orders" where "id" = ? or not exists (select * from "products" where "sku" = ?)`, []any{1, "x"})
	})

	t.Run("in sub", func(t *testing.T) {
		b := builder().From("users").WhereInSub("id", func(q *Builder) {
			q.Select("id").From("users").Where("age", ">", 25).Take(3)
		})
		assertSQL(t, b, `select * from "users" where "id" in (select "id" from "users" where "age" > ? limit 3)`, []any{25})

		b = builder().From("users").WhereNotInSub("id", builder().Select("id").From("banned"))
		assertSQL(t, b, `select * from "users" where "id" not in (select "id" from "banned")`, []any{})
	})

	t.Run("unsupported sub query", func(t *testing.T) {
		b := builder().From("users").WhereExists("select 1")
		_, _, err := b.ToSQL()
		require.Error(t, err)
	})
}

func TestBuilder_Joins(t *testing.T) {
	b := builder().Select("*").From("users").
		Join("contacts", "users.id", "=", "contacts.id").
		LeftJoin("photos", "users.id", "=", "photos.id")
	assertSQL(t, b, `select * from "users" inner join "contacts" on "users"."id" = "contacts"."id" left join "photos" on "users"."id" = "photos"."id"`, []any{})

	b = builder().From("users").JoinOn("contacts", func(j *dialect.JoinClause) {
		j.On("users.id", "=", "contacts.id").OrOn("users.name", "=", "contacts.name")
	})
	assertSQL(t, b, `select * from "users" inner join "contacts" on "users"."id" = "contacts"."id" or "users"."name" = "contacts"."name"`, []any{})

	b = builder().From("users").JoinWhere("contacts", "users.id", "=", "foo")
	assertSQL(t, b, `select * from "users" inner join "contacts" on "users"."id" = ?`, []any{"foo"})

	b = builder().From("users").RightJoin("photos", "users.id", "=", "photos.user_id").CrossJoin("tags")
	assertSQL(t, b, `select * from "users" right join "photos" on "users"."id" = "photos"."user_id" cross join "tags"`, []any{})
}

func TestBuilder_GroupsHavingsOrders(t *testing.T) {
	b := builder().From("users").GroupBy("id", "domain").Having("email", ">", 1)
	assertSQL(t, b, `select * from "users" group by "id", "domain" having "email" > ?`, []any{1})

	b = builder().From("users").HavingRaw("user_foo < user_bar").OrHaving("baz", "=", 2)
	assertSQL(t, b, `select * from "users" having user_foo < user_bar or "baz" = ?`, []any{2})

	b = builder().From("users").OrderBy("email", "ASC").OrderBy("age", "desc").OrderBy("name", "sideways")
	assertSQL(t, b, `select * from "users" order by "email" asc, "age" desc, "name" desc`, []any{})

	b = builder().From("users").Latest().Oldest("id")
	assertSQL(t, b, `select * from "users" order by "created_at" desc, "id" asc`, []any{})

	b = builder().From("users").OrderByRaw(`"age" ? desc`, "foo")
	assertSQL(t, b, `select * from "users" order by "age" ? desc`, []any{"foo"})
}

func TestBuilder_InvalidOperatorIsRejected(t *testing.T) {
	_, _, err := builder().From("users").Having("id", "; drop", 1).ToSQL()
	require.Error(t, err)

	_, _, err = builder().From("users").WhereDay("d", "or 1=1", 1).ToSQL()
	require.Error(t, err)
}

func TestBuilder_LimitsAndOffsets(t *testing.T) {
	assertSQL(t, builder().From("users").Offset(5).Limit(10), `select * from "users" limit 10 offset 5`, []any{})
	assertSQL(t, builder().From("users").Skip(-5).Take(0), `select * from "users" offset 0`, []any{})
	assertSQL(t, builder().From("users").ForPage(2, 15), `select * from "users" limit 15 offset 15`, []any{})
	assertSQL(t, builder().From("users").ForPage(0, 15), `select * from "users" limit 15 offset 0`, []any{})
}

func TestBuilder_Unions(t *testing.T) {
	b := builder().From("users").Where("id", 1).
		Union(builder().From("users").Where("id", 2)).
		UnionAll(func(q *Builder) { q.From("users").Where("id", 3) })
	assertSQL(t, b,
		`select * from "users" where "id" = ? union select * from "users" where "id" = ? union all select * from "users" where "id" = ?`,
		[]any{1, 2, 3})

	b = mysqlBuilder().From("users").Where("id", 1).Union(mysqlBuilder().From("users").Where("id", 2))
	assertSQL(t, b, "(select * from `users` where `id` = ?) union (select * from `users` where `id` = ?)", []any{1, 2})
}

func TestBuilder_Locks(t *testing.T) {
	assertSQL(t, mysqlBuilder().From("foo").Where("bar", "baz").LockForUpdate(),
		"select * from `foo` where `bar` = ? for update", []any{"baz"})
	assertSQL(t, mysqlBuilder().From("foo").Where("bar", "baz").SharedLock(),
		"select * from `foo` where `bar` = ? lock in share mode", []any{"baz"})
	assertSQL(t, NewBuilder(nil, dialect.Postgres()).From("foo").Where("bar", "baz").SharedLock(),
		`select * from "foo" where "bar" = ? for share`, []any{"baz"})
	assertSQL(t, NewBuilder(nil, dialect.SQLServer()).From("foo").Where("bar", "baz").LockForUpdate(),
		"select * from [foo] with(rowlock,updlock,holdlock) where [bar] = ?", []any{"baz"})
	assertSQL(t, builder().From("users").LockRaw("for update nowait"),
		`select * from "users" for update nowait`, []any{})
}

func TestBuilder_SQLServerOffsetBindsOrderFirst(t *testing.T) {
	assertSQL(t, NewBuilder(nil, dialect.SQLServer()).From("t").Where("id", 1).OrderByRaw("abs(x - ?)", 3).Offset(10).Limit(5),
		"select * from (select *, row_number() over (order by abs(x - ?)) as row_num from [t] where [id] = ?) as temp_table where row_num between 11 and 15",
		[]any{3, 1})
}

func TestBuilder_Outfile(t *testing.T) {
	b := mysqlBuilder().From("foo").Where("bar", "baz").IntoOutfile("filename", nil)
	assertSQL(t, b, "select * into outfile 'filename' from `foo` where `bar` = ?", []any{"baz"})

	b = mysqlBuilder().From("foo").IntoDumpfile("/tmp/it's", nil)
	assertSQL(t, b, "select * into dumpfile '/tmp/it\\'s' from `foo`", []any{})
}

func TestBuilder_BindingOrderFollowsPlaceholders(t *testing.T) {
	want := `select * from "users" inner join "othertable" on "bar" = ? where "registered" = ? group by "city" having "population" > ? order by match ("foo") against(?)`
	wantBindings := []any{"foo", 1, 3, "bar"}

	b := builder().Select("*").From("users").
		JoinOn("othertable", func(j *dialect.JoinClause) { j.Where("bar", "=", "foo") }).
		Where("registered", 1).
		GroupBy("city").
		Having("population", ">", 3).
		OrderByRaw(`match ("foo") against(?)`, "bar")
	assertSQL(t, b, want, wantBindings)

	// Reverse call order, same placeholders.
	b = builder().Select("*").From("users").
		OrderByRaw(`match ("foo") against(?)`, "bar").
		Having("population", ">", 3).
		GroupBy("city").
		Where("registered", 1).
		JoinOn("othertable", func(j *dialect.JoinClause) { j.Where("bar", "=", "foo") })
	assertSQL(t, b, want, wantBindings)
}

func TestBuilder_BindingsAPI(t *testing.T) {
	t.Run("add array", func(t *testing.T) {
		b := builder().From("users").Where("foo", "bar").AddBinding([]any{"baz"}, dialect.PhaseWhere)
		assert.Equal(t, []any{"bar", "baz"}, b.Bindings())
	})

	t.Run("phases order flatten", func(t *testing.T) {
		b := builder().From("users").
			AddBinding("foo", dialect.PhaseHaving).
			AddBinding("bar", dialect.PhaseWhere)
		assert.Equal(t, []any{"bar", "foo"}, b.Bindings())
	})

	t.Run("merge", func(t *testing.T) {
		b := builder().From("users").AddBinding("foo", dialect.PhaseWhere)
		other := builder().From("users").AddBinding("bar", dialect.PhaseWhere)
		b.MergeBindings(other)
		assert.Equal(t, []any{"foo", "bar"}, b.Bindings())
	})

	t.Run("set", func(t *testing.T) {
		b := builder().From("users").Where("a", 1).SetBindings([]any{"x", "y"}, dialect.PhaseWhere)
		assert.Equal(t, []any{"x", "y"}, b.Bindings())
		assert.Equal(t, []any{"x", "y"}, b.RawBindings()[dialect.PhaseWhere])
	})

	t.Run("invalid phase", func(t *testing.T) {
		b := builder().From("users").SetBindings([]any{"foo"}, "nope")
		assert.ErrorIs(t, b.Err(), ErrInvalidBindingPhase)

		b = builder().From("users").AddBinding("foo", "nope")
		_, _, err := b.ToSQL()
		assert.ErrorIs(t, err, ErrInvalidBindingPhase)
	})
}

func TestBuilder_WhereValueRequired(t *testing.T) {
	_, _, err := builder().From("users").Where("foo").ToSQL()
	assert.ErrorIs(t, err, ErrValueRequired)

	_, _, err = builder().From("users").Where("foo", ">", nil).ToSQL()
	assert.ErrorIs(t, err, ErrValueRequired)
}

func TestBuilder_CloneIsIndependent(t *testing.T) {
	b := builder().From("users").Where("id", 1)
	c := b.Clone().Where("name", "john").OrderBy("id", "asc")

	assertSQL(t, b, `select * from "users" where "id" = ?`, []any{1})
	assertSQL(t, c, `select * from "users" where "id" = ? and "name" = ? order by "id" asc`, []any{1, "john"})
}

func TestBuilder_WhenUnless(t *testing.T) {
	filter := func(q *Builder) { q.Where("active", 1) }

	assertSQL(t, builder().From("users").When(true, filter), `select * from "users" where "active" = ?`, []any{1})
	assertSQL(t, builder().From("users").When(false, filter), `select * from "users"`, []any{})
	assertSQL(t, builder().From("users").Unless(false, filter), `select * from "users" where "active" = ?`, []any{1})
}

func TestBuilder_ToSQLIsIdempotent(t *testing.T) {
	b := builder().From("users").Where("id", 1).OrderBy("id", "desc").Limit(3)

	sql1, b1, err := b.ToSQL()
	require.NoError(t, err)
	sql2, b2, err := b.ToSQL()
	require.NoError(t, err)

	assert.Equal(t, sql1, sql2)
	assert.Equal(t, b1, b2)
}

func TestPackage_TableAndNew(t *testing.T) {
	assertSQL(t, Table("users").Where("id", 1), `select * from "users" where "id" = ?`, []any{1})
	assertSQL(t, New(dialect.MySQL()).From("users"), "select * from `users`", []any{})
}

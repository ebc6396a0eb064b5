package database

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mrjgreen/database/dialect"
	"github.com/mrjgreen/database/internal/validation"
)

// Builder, SQL sorgularını akıcı bir arayüz (fluent interface) ile oluşturmak için kullanılan ana yapıdır.
//
// Builder bir *dialect.Query spesifikasyonu ve faz bazlı bağlamalar (select, join, where,
// having, order, union) biriktirir. Derleme grammar'a, çalıştırma Executor'a bırakılır.
// Builder örnekleri **concurrent-safe** değildir; paralel kullanımlar için Clone() ile çoğaltılmalıdır.
//
// Genel kullanım örneği:
//
//	rows, err := conn.Table("users").
//	    Select("id", "name", "email").
//	    Where("status", "active").
//	    OrderByDesc("created_at").
//	    Limit(10).
//	    GetContext(ctx)
//
// Zincir sırasında oluşan hatalar (ör. geçersiz binding fazı) birikir ve ilk derleme
// ya da çalıştırma çağrısında döner.
//
// @author Ahmet ALTUN
// @github github.com/biyonik
// @linkedin linkedin.com/in/biyonik
// @email ahmet.altun60@gmail.com
type Builder struct {
	executor Executor
	grammar  dialect.Grammar

	query    *dialect.Query
	bindings dialect.Bindings

	// SELECT'lerin okuma oturumu yerine yazma oturumuna gitmesini zorlar
	useWrite bool

	// Biriken hata
	err error
}

// NewBuilder, belirtilen executor ve grammar ile yeni bir Builder oluşturur.
// executor nil olabilir; bu durumda yalnızca ToSQL kullanılabilir.
func NewBuilder(executor Executor, grammar dialect.Grammar) *Builder {
	if grammar == nil {
		grammar = dialect.NewGrammar()
	}
	return &Builder{
		executor: executor,
		grammar:  grammar,
		query:    &dialect.Query{},
		bindings: dialect.NewBindings(),
	}
}

// NewQuery, aynı executor ve grammar ile boş bir Builder döndürür.
func (b *Builder) NewQuery() *Builder {
	return NewBuilder(b.executor, b.grammar)
}

// ---- Projeksiyon ----

// Select, seçilecek kolonları ayarlar. Kolon verilmezse "*" seçilir.
func (b *Builder) Select(columns ...any) *Builder {
	if len(columns) == 0 {
		columns = []any{"*"}
	}
	b.query.Columns = slices.Clone(columns)
	return b
}

// AddSelect, mevcut seçime kolon ekler.
func (b *Builder) AddSelect(columns ...any) *Builder {
	b.query.Columns = append(b.query.Columns, columns...)
	return b
}

// SelectRaw, ham SQL select ifadesi ekler.
// Dikkat: SQL injection riskine karşı ifadeyi güvenli şekilde kullanın.
func (b *Builder) SelectRaw(expr string, bindings ...any) *Builder {
	b.AddSelect(dialect.Raw(expr))
	return b.addBinding(dialect.PhaseSelect, bindings...)
}

// SelectSub, bir alt sorguyu "(...) as alias" olarak seçer. query bir *Builder
// ya da func(*Builder) olabilir.
func (b *Builder) SelectSub(query any, alias string) *Builder {
	sub, ok := b.subQuery(query)
	if !ok {
		return b
	}
	sql, err := b.grammar.CompileSelect(sub.query)
	if err != nil {
		return b.fail(err)
	}
	return b.SelectRaw("("+sql+") as "+b.grammar.Wrap(alias), sub.Bindings()...)
}

// Distinct, sorguyu DISTINCT olarak işaretler.
func (b *Builder) Distinct() *Builder {
	b.query.Distinct = true
	return b
}

// From, sorgunun tablosunu ayarlar. Tablo bir string ya da Expression olabilir.
func (b *Builder) From(table any) *Builder {
	b.query.From = table
	return b
}

// Table, From için okunabilir alias sağlar.
func (b *Builder) Table(table any) *Builder {
	return b.From(table)
}

// ---- Joins ----

// Join, INNER JOIN ekler.
func (b *Builder) Join(table, first any, operator string, second any) *Builder {
	return b.addJoin(dialect.NewJoinClause(dialect.JoinInner, table).On(first, operator, second))
}

// LeftJoin, LEFT JOIN ekler.
func (b *Builder) LeftJoin(table, first any, operator string, second any) *Builder {
	return b.addJoin(dialect.NewJoinClause(dialect.JoinLeft, table).On(first, operator, second))
}

// RightJoin, RIGHT JOIN ekler.
func (b *Builder) RightJoin(table, first any, operator string, second any) *Builder {
	return b.addJoin(dialect.NewJoinClause(dialect.JoinRight, table).On(first, operator, second))
}

// CrossJoin, koşulsuz CROSS JOIN ekler.
func (b *Builder) CrossJoin(table any) *Builder {
	return b.addJoin(dialect.NewJoinClause(dialect.JoinCross, table))
}

// JoinWhere, ikinci tarafı bağlanan bir değer olan INNER JOIN ekler.
func (b *Builder) JoinWhere(table, first any, operator string, value any) *Builder {
	return b.addJoin(dialect.NewJoinClause(dialect.JoinInner, table).Where(first, operator, value))
}

// LeftJoinWhere, ikinci tarafı bağlanan bir değer olan LEFT JOIN ekler.
func (b *Builder) LeftJoinWhere(table, first any, operator string, value any) *Builder {
	return b.addJoin(dialect.NewJoinClause(dialect.JoinLeft, table).Where(first, operator, value))
}

// RightJoinWhere, ikinci tarafı bağlanan bir değer olan RIGHT JOIN ekler.
func (b *Builder) RightJoinWhere(table, first any, operator string, value any) *Builder {
	return b.addJoin(dialect.NewJoinClause(dialect.JoinRight, table).Where(first, operator, value))
}

// JoinOn, koşulları fn içinde kurulan bir INNER JOIN ekler.
//
//	b.JoinOn("contacts", func(j *dialect.JoinClause) {
//	    j.On("users.id", "=", "contacts.id").Where("contacts.active", "=", 1)
//	})
func (b *Builder) JoinOn(table any, fn func(*dialect.JoinClause)) *Builder {
	return b.joinWith(dialect.JoinInner, table, fn)
}

// LeftJoinOn, koşulları fn içinde kurulan bir LEFT JOIN ekler.
func (b *Builder) LeftJoinOn(table any, fn func(*dialect.JoinClause)) *Builder {
	return b.joinWith(dialect.JoinLeft, table, fn)
}

// RightJoinOn, koşulları fn içinde kurulan bir RIGHT JOIN ekler.
func (b *Builder) RightJoinOn(table any, fn func(*dialect.JoinClause)) *Builder {
	return b.joinWith(dialect.JoinRight, table, fn)
}

func (b *Builder) joinWith(typ dialect.JoinType, table any, fn func(*dialect.JoinClause)) *Builder {
	join := dialect.NewJoinClause(typ, table)
	if fn != nil {
		fn(join)
	}
	return b.addJoin(join)
}

func (b *Builder) addJoin(join *dialect.JoinClause) *Builder {
	for _, c := range join.Clauses {
		// "is" yalnızca JoinClause.WhereNull/WhereNotNull tarafından üretilir.
		if c.Operator == "is" {
			continue
		}
		if err := validation.ValidateOperator(c.Operator); err != nil {
			return b.fail(err)
		}
	}
	b.query.Joins = append(b.query.Joins, join)
	return b.addBinding(dialect.PhaseJoin, join.Bindings...)
}

// ---- Where koşulları ----

// Where, temel bir WHERE koşulu ekler.
//
// Kabul edilen biçimler:
//
//	Where("id", 1)                    // "id" = ?
//	Where("votes", ">", 100)          // "votes" > ?
//	Where("deleted_at", nil)          // "deleted_at" is null
//	Where("deleted_at", "!=", nil)    // "deleted_at" is not null
//	Where(map[string]any{"a": 1})     // ("a" = ?)
//	Where(func(q *Builder) { ... })   // ( ... )
//	Where("id", "=", subBuilder)      // "id" = (select ...)
//
// Tanınmayan bir operatör değer olarak kabul edilir ve "=" kullanılır.
func (b *Builder) Where(column any, args ...any) *Builder {
	return b.where(column, args, dialect.WhereBooleanAnd)
}

// OrWhere, OR WHERE koşulu ekler.
func (b *Builder) OrWhere(column any, args ...any) *Builder {
	return b.where(column, args, dialect.WhereBooleanOr)
}

func (b *Builder) where(column any, args []any, boolean dialect.WhereBoolean) *Builder {
	switch c := column.(type) {
	case func(*Builder):
		return b.whereNested(c, boolean)
	case map[string]any:
		return b.whereMap(c, boolean)
	}

	var (
		operator = "="
		value    any
	)
	switch len(args) {
	case 0:
		return b.fail(fmt.Errorf("%w: where %v", ErrValueRequired, column))
	case 1:
		value = args[0]
	default:
		op, ok := args[0].(string)
		if ok && validation.IsValidOperator(op) {
			operator, value = strings.ToLower(strings.TrimSpace(op)), args[1]
		} else {
			value = args[0]
		}
	}

	switch v := value.(type) {
	case nil:
		switch operator {
		case "=":
			return b.addNull(column, false, boolean)
		case "!=", "<>":
			return b.addNull(column, true, boolean)
		}
		return b.fail(fmt.Errorf("%w: where %v %s", ErrValueRequired, column, operator))
	case func(*Builder):
		return b.whereSub(column, operator, v, boolean)
	case *Builder:
		return b.whereSub(column, operator, v, boolean)
	}

	b.query.Wheres = append(b.query.Wheres, dialect.WhereClause{
		Type:     dialect.WhereTypeBasic,
		Boolean:  boolean,
		Column:   column,
		Operator: operator,
		Value:    value,
	})
	return b.addBinding(dialect.PhaseWhere, dialect.CleanBindings([]any{value})...)
}

// WhereMap, haritadaki her anahtar için "=" koşulu içeren parantezli bir grup ekler.
// Anahtarlar sıralı eklenir.
func (b *Builder) WhereMap(values map[string]any) *Builder {
	return b.whereMap(values, dialect.WhereBooleanAnd)
}

// OrWhereMap, WhereMap'in OR versiyonudur.
func (b *Builder) OrWhereMap(values map[string]any) *Builder {
	return b.whereMap(values, dialect.WhereBooleanOr)
}

func (b *Builder) whereMap(values map[string]any, boolean dialect.WhereBoolean) *Builder {
	return b.whereNested(func(q *Builder) {
		for _, column := range dialect.SortedColumns(values) {
			q.Where(column, "=", values[column])
		}
	}, boolean)
}

// WhereRaw, ham SQL WHERE koşulu ekler.
func (b *Builder) WhereRaw(sql string, bindings ...any) *Builder {
	return b.whereRaw(sql, bindings, dialect.WhereBooleanAnd)
}

// OrWhereRaw, ham SQL OR WHERE koşulu ekler.
func (b *Builder) OrWhereRaw(sql string, bindings ...any) *Builder {
	return b.whereRaw(sql, bindings, dialect.WhereBooleanOr)
}

func (b *Builder) whereRaw(sql string, bindings []any, boolean dialect.WhereBoolean) *Builder {
	b.query.Wheres = append(b.query.Wheres, dialect.WhereClause{
		Type:    dialect.WhereTypeRaw,
		Boolean: boolean,
		SQL:     sql,
	})
	return b.addBinding(dialect.PhaseWhere, bindings...)
}

// WhereBetween, BETWEEN koşulu ekler.
func (b *Builder) WhereBetween(column any, min, max any) *Builder {
	return b.whereBetween(column, min, max, false, dialect.WhereBooleanAnd)
}

// OrWhereBetween, OR BETWEEN koşulu ekler.
func (b *Builder) OrWhereBetween(column any, min, max any) *Builder {
	return b.whereBetween(column, min, max, false, dialect.WhereBooleanOr)
}

// WhereNotBetween, NOT BETWEEN koşulu ekler.
func (b *Builder) WhereNotBetween(column any, min, max any) *Builder {
	return b.whereBetween(column, min, max, true, dialect.WhereBooleanAnd)
}

// OrWhereNotBetween, OR NOT BETWEEN koşulu ekler.
func (b *Builder) OrWhereNotBetween(column any, min, max any) *Builder {
	return b.whereBetween(column, min, max, true, dialect.WhereBooleanOr)
}

func (b *Builder) whereBetween(column, min, max any, not bool, boolean dialect.WhereBoolean) *Builder {
	values := []any{min, max}
	b.query.Wheres = append(b.query.Wheres, dialect.WhereClause{
		Type:    dialect.WhereTypeBetween,
		Boolean: boolean,
		Column:  column,
		Values:  values,
		Not:     not,
	})
	return b.addBinding(dialect.PhaseWhere, dialect.CleanBindings(values)...)
}

// WhereNested, fn içinde kurulan koşulları parantez içinde ekler.
func (b *Builder) WhereNested(fn func(*Builder)) *Builder {
	return b.whereNested(fn, dialect.WhereBooleanAnd)
}

// OrWhereNested, WhereNested'in OR versiyonudur.
func (b *Builder) OrWhereNested(fn func(*Builder)) *Builder {
	return b.whereNested(fn, dialect.WhereBooleanOr)
}

func (b *Builder) whereNested(fn func(*Builder), boolean dialect.WhereBoolean) *Builder {
	nested := b.NewQuery().From(b.query.From)
	fn(nested)
	if nested.err != nil {
		return b.fail(nested.err)
	}
	if len(nested.query.Wheres) == 0 {
		return b
	}
	b.query.Wheres = append(b.query.Wheres, dialect.WhereClause{
		Type:    dialect.WhereTypeNested,
		Boolean: boolean,
		Query:   nested.query,
	})
	b.bindings.Merge(nested.bindings)
	return b
}

// WhereSub, bir kolonu alt sorgunun sonucuyla karşılaştırır.
func (b *Builder) WhereSub(column any, operator string, query any) *Builder {
	return b.whereSub(column, operator, query, dialect.WhereBooleanAnd)
}

func (b *Builder) whereSub(column any, operator string, query any, boolean dialect.WhereBoolean) *Builder {
	if err := validation.ValidateOperator(operator); err != nil {
		return b.fail(err)
	}
	sub, ok := b.subQuery(query)
	if !ok {
		return b
	}
	b.query.Wheres = append(b.query.Wheres, dialect.WhereClause{
		Type:     dialect.WhereTypeSub,
		Boolean:  boolean,
		Column:   column,
		Operator: operator,
		Query:    sub.query,
	})
	return b.addBinding(dialect.PhaseWhere, sub.Bindings()...)
}

// WhereExists, EXISTS (alt sorgu) koşulu ekler.
func (b *Builder) WhereExists(query any) *Builder {
	return b.whereExists(query, false, dialect.WhereBooleanAnd)
}

// OrWhereExists, OR EXISTS koşulu ekler.
func (b *Builder) OrWhereExists(query any) *Builder {
	return b.whereExists(query, false, dialect.WhereBooleanOr)
}

// WhereNotExists, NOT EXISTS koşulu ekler.
func (b *Builder) WhereNotExists(query any) *Builder {
	return b.whereExists(query, true, dialect.WhereBooleanAnd)
}

// OrWhereNotExists, OR NOT EXISTS koşulu ekler.
func (b *Builder) OrWhereNotExists(query any) *Builder {
	return b.whereExists(query, true, dialect.WhereBooleanOr)
}

func (b *Builder) whereExists(query any, not bool, boolean dialect.WhereBoolean) *Builder {
	sub, ok := b.subQuery(query)
	if !ok {
		return b
	}
	typ := dialect.WhereTypeExists
	if not {
		typ = dialect.WhereTypeNotExists
	}
	b.query.Wheres = append(b.query.Wheres, dialect.WhereClause{
		Type:    typ,
		Boolean: boolean,
		Query:   sub.query,
	})
	return b.addBinding(dialect.PhaseWhere, sub.Bindings()...)
}

// WhereIn, WHERE IN koşulu ekler. Boş liste hiçbir satırla eşleşmez.
func (b *Builder) WhereIn(column any, values []any) *Builder {
	return b.whereIn(column, values, false, dialect.WhereBooleanAnd)
}

// OrWhereIn, OR WHERE IN koşulu ekler.
func (b *Builder) OrWhereIn(column any, values []any) *Builder {
	return b.whereIn(column, values, false, dialect.WhereBooleanOr)
}

// WhereNotIn, WHERE NOT IN koşulu ekler. Boş liste tüm satırlarla eşleşir.
func (b *Builder) WhereNotIn(column any, values []any) *Builder {
	return b.whereIn(column, values, true, dialect.WhereBooleanAnd)
}

// OrWhereNotIn, OR WHERE NOT IN koşulu ekler.
func (b *Builder) OrWhereNotIn(column any, values []any) *Builder {
	return b.whereIn(column, values, true, dialect.WhereBooleanOr)
}

func (b *Builder) whereIn(column any, values []any, not bool, boolean dialect.WhereBoolean) *Builder {
	typ := dialect.WhereTypeIn
	if not {
		typ = dialect.WhereTypeNotIn
	}
	values = slices.Clone(values)
	b.query.Wheres = append(b.query.Wheres, dialect.WhereClause{
		Type:    typ,
		Boolean: boolean,
		Column:  column,
		Values:  values,
	})
	return b.addBinding(dialect.PhaseWhere, dialect.CleanBindings(values)...)
}

// WhereInSub, WHERE IN (alt sorgu) koşulu ekler.
func (b *Builder) WhereInSub(column any, query any) *Builder {
	return b.whereInSub(column, query, false, dialect.WhereBooleanAnd)
}

// OrWhereInSub, OR WHERE IN (alt sorgu) koşulu ekler.
func (b *Builder) OrWhereInSub(column any, query any) *Builder {
	return b.whereInSub(column, query, false, dialect.WhereBooleanOr)
}

// WhereNotInSub, WHERE NOT IN (alt sorgu) koşulu ekler.
func (b *Builder) WhereNotInSub(column any, query any) *Builder {
	return b.whereInSub(column, query, true, dialect.WhereBooleanAnd)
}

// OrWhereNotInSub, OR WHERE NOT IN (alt sorgu) koşulu ekler.
func (b *Builder) OrWhereNotInSub(column any, query any) *Builder {
	return b.whereInSub(column, query, true, dialect.WhereBooleanOr)
}

func (b *Builder) whereInSub(column any, query any, not bool, boolean dialect.WhereBoolean) *Builder {
	sub, ok := b.subQuery(query)
	if !ok {
		return b
	}
	typ := dialect.WhereTypeInSub
	if not {
		typ = dialect.WhereTypeNotInSub
	}
	b.query.Wheres = append(b.query.Wheres, dialect.WhereClause{
		Type:    typ,
		Boolean: boolean,
		Column:  column,
		Query:   sub.query,
	})
	return b.addBinding(dialect.PhaseWhere, sub.Bindings()...)
}

// WhereNull, IS NULL koşulu ekler.
func (b *Builder) WhereNull(column any) *Builder {
	return b.addNull(column, false, dialect.WhereBooleanAnd)
}

// OrWhereNull, OR IS NULL koşulu ekler.
func (b *Builder) OrWhereNull(column any) *Builder {
	return b.addNull(column, false, dialect.WhereBooleanOr)
}

// WhereNotNull, IS NOT NULL koşulu ekler.
func (b *Builder) WhereNotNull(column any) *Builder {
	return b.addNull(column, true, dialect.WhereBooleanAnd)
}

// OrWhereNotNull, OR IS NOT NULL koşulu ekler.
func (b *Builder) OrWhereNotNull(column any) *Builder {
	return b.addNull(column, true, dialect.WhereBooleanOr)
}

func (b *Builder) addNull(column any, not bool, boolean dialect.WhereBoolean) *Builder {
	typ := dialect.WhereTypeNull
	if not {
		typ = dialect.WhereTypeNotNull
	}
	b.query.Wheres = append(b.query.Wheres, dialect.WhereClause{
		Type:    typ,
		Boolean: boolean,
		Column:  column,
	})
	return b
}

// WhereDay, tarih kolonunun gün kısmını karşılaştırır.
func (b *Builder) WhereDay(column any, operator string, value any) *Builder {
	return b.whereDate(dialect.WhereTypeDay, column, operator, value, dialect.WhereBooleanAnd)
}

// OrWhereDay, WhereDay'in OR ile bağlanan sürümüdür.
func (b *Builder) OrWhereDay(column any, operator string, value any) *Builder {
	return b.whereDate(dialect.WhereTypeDay, column, operator, value, dialect.WhereBooleanOr)
}

// WhereMonth, tarih kolonunun ay kısmını karşılaştırır.
func (b *Builder) WhereMonth(column any, operator string, value any) *Builder {
	return b.whereDate(dialect.WhereTypeMonth, column, operator, value, dialect.WhereBooleanAnd)
}

// OrWhereMonth, WhereMonth'un OR ile bağlanan sürümüdür.
func (b *Builder) OrWhereMonth(column any, operator string, value any) *Builder {
	return b.whereDate(dialect.WhereTypeMonth, column, operator, value, dialect.WhereBooleanOr)
}

// WhereYear, tarih kolonunun yıl kısmını karşılaştırır.
func (b *Builder) WhereYear(column any, operator string, value any) *Builder {
	return b.whereDate(dialect.WhereTypeYear, column, operator, value, dialect.WhereBooleanAnd)
}

// OrWhereYear, WhereYear'ın OR ile bağlanan sürümüdür.
func (b *Builder) OrWhereYear(column any, operator string, value any) *Builder {
	return b.whereDate(dialect.WhereTypeYear, column, operator, value, dialect.WhereBooleanOr)
}

func (b *Builder) whereDate(typ dialect.WhereType, column any, operator string, value any, boolean dialect.WhereBoolean) *Builder {
	if err := validation.ValidateOperator(operator); err != nil {
		return b.fail(err)
	}
	b.query.Wheres = append(b.query.Wheres, dialect.WhereClause{
		Type:     typ,
		Boolean:  boolean,
		Column:   column,
		Operator: operator,
		Value:    value,
	})
	return b.addBinding(dialect.PhaseWhere, dialect.CleanBindings([]any{value})...)
}

// ---- Gruplama ve sıralama ----

// GroupBy, GROUP BY kolonlarını ekler.
func (b *Builder) GroupBy(columns ...any) *Builder {
	b.query.Groups = append(b.query.Groups, columns...)
	return b
}

// WithRollup, GROUP BY'a WITH ROLLUP ekler (MySQL).
func (b *Builder) WithRollup() *Builder {
	b.query.Rollup = true
	return b
}

// Having, HAVING koşulu ekler.
func (b *Builder) Having(column any, operator string, value any) *Builder {
	return b.having(column, operator, value, dialect.WhereBooleanAnd)
}

// OrHaving, OR HAVING koşulu ekler.
func (b *Builder) OrHaving(column any, operator string, value any) *Builder {
	return b.having(column, operator, value, dialect.WhereBooleanOr)
}

func (b *Builder) having(column any, operator string, value any, boolean dialect.WhereBoolean) *Builder {
	if err := validation.ValidateOperator(operator); err != nil {
		return b.fail(err)
	}
	b.query.Havings = append(b.query.Havings, dialect.WhereClause{
		Type:     dialect.WhereTypeBasic,
		Boolean:  boolean,
		Column:   column,
		Operator: operator,
		Value:    value,
	})
	return b.addBinding(dialect.PhaseHaving, dialect.CleanBindings([]any{value})...)
}

// HavingRaw, ham SQL HAVING koşulu ekler.
func (b *Builder) HavingRaw(sql string, bindings ...any) *Builder {
	return b.havingRaw(sql, bindings, dialect.WhereBooleanAnd)
}

// OrHavingRaw, ham SQL OR HAVING koşulu ekler.
func (b *Builder) OrHavingRaw(sql string, bindings ...any) *Builder {
	return b.havingRaw(sql, bindings, dialect.WhereBooleanOr)
}

func (b *Builder) havingRaw(sql string, bindings []any, boolean dialect.WhereBoolean) *Builder {
	b.query.Havings = append(b.query.Havings, dialect.WhereClause{
		Type:    dialect.WhereTypeRaw,
		Boolean: boolean,
		SQL:     sql,
	})
	return b.addBinding(dialect.PhaseHaving, bindings...)
}

// OrderBy, ORDER BY ekler. "asc" dışındaki her yön "desc" kabul edilir.
func (b *Builder) OrderBy(column any, direction string) *Builder {
	dir := dialect.OrderDesc
	if strings.EqualFold(strings.TrimSpace(direction), "asc") {
		dir = dialect.OrderAsc
	}
	b.query.Orders = append(b.query.Orders, dialect.OrderClause{Column: column, Direction: dir})
	return b
}

// OrderByAsc, artan sıralama ekler.
func (b *Builder) OrderByAsc(column any) *Builder {
	return b.OrderBy(column, "asc")
}

// OrderByDesc, azalan sıralama ekler.
func (b *Builder) OrderByDesc(column any) *Builder {
	return b.OrderBy(column, "desc")
}

// Latest, kolona göre (varsayılan created_at) azalan sıralama ekler.
func (b *Builder) Latest(column ...any) *Builder {
	return b.OrderByDesc(firstOr(column, "created_at"))
}

// Oldest, kolona göre (varsayılan created_at) artan sıralama ekler.
func (b *Builder) Oldest(column ...any) *Builder {
	return b.OrderByAsc(firstOr(column, "created_at"))
}

// OrderByRaw, ham SQL ORDER BY ifadesi ekler.
func (b *Builder) OrderByRaw(sql string, bindings ...any) *Builder {
	b.query.Orders = append(b.query.Orders, dialect.OrderClause{SQL: sql})
	return b.addBinding(dialect.PhaseOrder, bindings...)
}

// Offset, OFFSET değerini ayarlar. Negatif değerler 0 kabul edilir.
func (b *Builder) Offset(n int) *Builder {
	n = max(n, 0)
	b.query.Offset = &n
	return b
}

// Skip, Offset için alias.
func (b *Builder) Skip(n int) *Builder {
	return b.Offset(n)
}

// Limit, LIMIT değerini ayarlar. Sıfır ve negatif değerler yok sayılır.
func (b *Builder) Limit(n int) *Builder {
	if n > 0 {
		b.query.Limit = &n
	}
	return b
}

// Take, Limit için alias.
func (b *Builder) Take(n int) *Builder {
	return b.Limit(n)
}

// ForPage, sayfa numarası ve sayfa başına kayıt sayısına göre limit/offset ayarlar.
func (b *Builder) ForPage(page, perPage int) *Builder {
	if page < 1 {
		page = 1
	}
	return b.Skip((page - 1) * perPage).Take(perPage)
}

// ---- Union ve kilitler ----

// Union, başka bir sorguyu UNION ile ekler.
func (b *Builder) Union(query any) *Builder {
	return b.union(query, false)
}

// UnionAll, başka bir sorguyu UNION ALL ile ekler.
func (b *Builder) UnionAll(query any) *Builder {
	return b.union(query, true)
}

func (b *Builder) union(query any, all bool) *Builder {
	sub, ok := b.subQuery(query)
	if !ok {
		return b
	}
	b.query.Unions = append(b.query.Unions, dialect.Union{Query: sub.query, All: all})
	return b.addBinding(dialect.PhaseUnion, sub.Bindings()...)
}

// Lock, kilit ekler: true özel kilit, false paylaşımlı kilit, string ise olduğu gibi.
func (b *Builder) Lock(value any) *Builder {
	b.query.Lock = value
	return b
}

// LockForUpdate, özel (FOR UPDATE) kilit ekler.
func (b *Builder) LockForUpdate() *Builder {
	return b.Lock(true)
}

// SharedLock, paylaşımlı kilit ekler.
func (b *Builder) SharedLock() *Builder {
	return b.Lock(false)
}

// LockRaw, ham kilit ifadesi ekler.
func (b *Builder) LockRaw(lock string) *Builder {
	return b.Lock(lock)
}

// IntoOutfile, sonuç kümesini sunucu tarafında bir dosyaya yazar (MySQL).
//
//	b.IntoOutfile("/tmp/users.csv", func(o *dialect.OutfileClause) {
//	    o.FieldsTerminatedBy(",").EnclosedBy(`"`, true)
//	})
func (b *Builder) IntoOutfile(file string, fn func(*dialect.OutfileClause)) *Builder {
	return b.outfile(dialect.NewOutfileClause(file, dialect.Outfile), fn)
}

// IntoDumpfile, tek bir satırı biçimlendirmeden dosyaya yazar (MySQL).
func (b *Builder) IntoDumpfile(file string, fn func(*dialect.OutfileClause)) *Builder {
	return b.outfile(dialect.NewOutfileClause(file, dialect.Dumpfile), fn)
}

func (b *Builder) outfile(clause *dialect.OutfileClause, fn func(*dialect.OutfileClause)) *Builder {
	if fn != nil {
		fn(clause)
	}
	b.query.Outfile = clause
	return b
}

// ---- Bağlamalar ----

// Bindings, tüm bağlamaları grammar'ın derlediği yer tutucu sırasıyla döndürür.
func (b *Builder) Bindings() []any {
	return b.grammar.SelectBindings(b.query, b.bindings)
}

// RawBindings, faz bazlı bağlamaların bir kopyasını döndürür.
func (b *Builder) RawBindings() dialect.Bindings {
	return b.bindings.Clone()
}

// SetBindings, bir fazın bağlamalarını değiştirir.
func (b *Builder) SetBindings(values []any, phase dialect.Phase) *Builder {
	if err := b.bindings.Set(phase, values); err != nil {
		return b.fail(fmt.Errorf("%w %q", ErrInvalidBindingPhase, phase))
	}
	return b
}

// AddBinding, bir faza değer ekler. value bir []any ise elemanları eklenir.
func (b *Builder) AddBinding(value any, phase dialect.Phase) *Builder {
	if values, ok := value.([]any); ok {
		return b.addBinding(phase, values...)
	}
	return b.addBinding(phase, value)
}

// MergeBindings, diğer builder'ın bağlamalarını faz faz ekler.
func (b *Builder) MergeBindings(other *Builder) *Builder {
	b.bindings.Merge(other.bindings)
	return b
}

func (b *Builder) addBinding(phase dialect.Phase, values ...any) *Builder {
	if len(values) == 0 {
		return b
	}
	if err := b.bindings.Add(phase, values...); err != nil {
		return b.fail(fmt.Errorf("%w %q", ErrInvalidBindingPhase, phase))
	}
	return b
}

// ---- Derleme ve durum ----

// ToSQL, SELECT sorgusunu derler ve bağlamaları döndürür.
func (b *Builder) ToSQL() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	sql, err := b.grammar.CompileSelect(b.query)
	if err != nil {
		return "", nil, err
	}
	return sql, b.Bindings(), nil
}

// Query, derlenecek sorgu spesifikasyonunu döndürür.
func (b *Builder) Query() *dialect.Query {
	return b.query
}

// Grammar, builder'ın grammar'ını döndürür.
func (b *Builder) Grammar() dialect.Grammar {
	return b.grammar
}

// Executor, builder'ın çalıştırıcısını döndürür.
func (b *Builder) Executor() Executor {
	return b.executor
}

// Clone, Builder'ın derin kopyasını oluşturur.
func (b *Builder) Clone() *Builder {
	return &Builder{
		executor: b.executor,
		grammar:  b.grammar,
		query:    b.query.Clone(),
		bindings: b.bindings.Clone(),
		useWrite: b.useWrite,
		err:      b.err,
	}
}

// Err, birikmiş hatayı döndürür.
func (b *Builder) Err() error {
	return b.err
}

// When, koşullu olarak callback uygular.
func (b *Builder) When(condition bool, fn func(*Builder)) *Builder {
	if condition {
		fn(b)
	}
	return b
}

// Unless, When'in tersidir.
func (b *Builder) Unless(condition bool, fn func(*Builder)) *Builder {
	return b.When(!condition, fn)
}

// UseWriteHandle, SELECT'lerin yazma oturumundan okunmasını sağlar.
func (b *Builder) UseWriteHandle() *Builder {
	b.useWrite = true
	return b
}

// subQuery, *Builder ya da func(*Builder) argümanını bir builder'a çevirir.
func (b *Builder) subQuery(query any) (*Builder, bool) {
	switch q := query.(type) {
	case *Builder:
		if q.err != nil {
			b.fail(q.err)
			return nil, false
		}
		return q, true
	case func(*Builder):
		sub := b.NewQuery()
		q(sub)
		if sub.err != nil {
			b.fail(sub.err)
			return nil, false
		}
		return sub, true
	}
	b.fail(fmt.Errorf("database: unsupported sub query type %T", query))
	return nil, false
}

// fail, ilk hatayı saklar.
func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func firstOr(values []any, fallback any) any {
	if len(values) > 0 {
		return values[0]
	}
	return fallback
}

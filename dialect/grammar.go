package dialect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

/*
 * ----------------------------------------------------------------------------
 * BASE GRAMMAR
 * ----------------------------------------------------------------------------
 *
 * BaseGrammar is the ANSI compiler every dialect builds on. Dialects embed it and
 * override the hooks they need; BaseGrammar always calls hooks through self so the
 * outermost dialect wins, the way a virtual call would.
 *
 * Compilation never mutates the Query, so compiling the same specification twice
 * yields byte-identical SQL.
 *
 * @author Ahmet ALTUN
 * @github github.com/biyonik
 * @linkedin linkedin.com/in/biyonik
 * @email ahmet.altun60@gmail.com
 * ----------------------------------------------------------------------------
 */

// component, bir SELECT ifadesinin tek bir bölümüdür.
type component int

const (
	componentAggregate component = iota
	componentColumns
	componentOutfile
	componentFrom
	componentJoins
	componentWheres
	componentGroups
	componentHavings
	componentOrders
	componentLimit
	componentOffset
	componentUnions
	componentLock
)

var ansiComponents = []component{
	componentAggregate,
	componentColumns,
	componentFrom,
	componentJoins,
	componentWheres,
	componentGroups,
	componentHavings,
	componentOrders,
	componentLimit,
	componentOffset,
	componentUnions,
	componentLock,
}

// hooks, bir dialect'in değiştirebileceği parçalardır.
type hooks interface {
	Grammar
	wrapValue(value string) string
	selectComponents() []component
	compileColumns(q *Query) string
	compileFrom(q *Query) string
	compileGroups(q *Query) string
	compileLimit(q *Query) string
	compileOffset(q *Query) string
	compileUnion(u Union) (string, error)
	compileLock(q *Query) string
	compileOutfile(q *Query) string
	dateBasedWhere(fn string, w WhereClause) string
}

var leadingBoolean = regexp.MustCompile(`and |or `)

// removeLeadingBoolean, en soldaki "and " veya "or " bağlacını bir kez siler.
func removeLeadingBoolean(sql string) string {
	loc := leadingBoolean.FindStringIndex(sql)
	if loc == nil {
		return sql
	}
	return sql[:loc[0]] + sql[loc[1]:]
}

// BaseGrammar, ANSI SQL için Grammar implementasyonudur.
type BaseGrammar struct {
	name        string
	dateFormat  string
	tablePrefix string
	self        hooks
}

// NewGrammar, ANSI gramerini döndürür.
func NewGrammar() *BaseGrammar {
	g := &BaseGrammar{}
	g.init("ansi", "", g)
	return g
}

func (g *BaseGrammar) init(name, dateFormat string, self hooks) {
	g.name = name
	g.dateFormat = dateFormat
	g.self = self
}

// Name, gramerin kimliğini döndürür.
func (g *BaseGrammar) Name() string {
	return g.name
}

// DateFormat, zaman bağlamaları için kullanılan düzeni döndürür.
// Varsayılan "2006-01-02 15:04:05".
func (g *BaseGrammar) DateFormat() string {
	if g.dateFormat == "" {
		return "2006-01-02 15:04:05"
	}
	return g.dateFormat
}

func (g *BaseGrammar) TablePrefix() string {
	return g.tablePrefix
}

func (g *BaseGrammar) SetTablePrefix(prefix string) {
	g.tablePrefix = prefix
}

// ----------------------------------------------------------------------------
// Tırnaklama
// ----------------------------------------------------------------------------

// WrapTable, tablo referansını tırnaklar ve tablo önekini uygular.
func (g *BaseGrammar) WrapTable(table any) string {
	if e, ok := table.(Expression); ok {
		return e.Value()
	}
	return g.wrap(g.tablePrefix+toString(table), true)
}

// Wrap, kolon referansını tırnaklar. "table.column" biçiminde tablo kısmı WrapTable ile,
// "name as alias" biçiminde her iki taraf da tırnaklanır.
func (g *BaseGrammar) Wrap(value any) string {
	return g.wrap(value, false)
}

func (g *BaseGrammar) wrap(value any, prefixAlias bool) string {
	if e, ok := value.(Expression); ok {
		return e.Value()
	}
	s := toString(value)

	if idx := strings.Index(strings.ToLower(s), " as "); idx >= 0 {
		name := s[:idx]
		alias := strings.TrimSpace(s[idx+4:])
		if prefixAlias {
			alias = g.tablePrefix + alias
		}
		return g.wrap(name, false) + " as " + g.self.wrapValue(alias)
	}

	segments := strings.Split(s, ".")
	wrapped := make([]string, len(segments))
	for i, segment := range segments {
		if i == 0 && len(segments) > 1 {
			wrapped[i] = g.self.WrapTable(segment)
		} else {
			wrapped[i] = g.self.wrapValue(segment)
		}
	}
	return strings.Join(wrapped, ".")
}

func (g *BaseGrammar) wrapValue(value string) string {
	if value == "*" {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// Columnize, kolon listesini tırnaklayıp birleştirir.
func (g *BaseGrammar) Columnize(columns []any) string {
	wrapped := make([]string, len(columns))
	for i, c := range columns {
		wrapped[i] = g.self.Wrap(c)
	}
	return strings.Join(wrapped, ", ")
}

// Parameter, value için yer tutucuyu döndürür: "?" veya Expression metni.
func (g *BaseGrammar) Parameter(value any) string {
	if e, ok := value.(Expression); ok {
		return e.Value()
	}
	return "?"
}

func (g *BaseGrammar) Parameterize(values []any) string {
	params := make([]string, len(values))
	for i, v := range values {
		params[i] = g.Parameter(v)
	}
	return strings.Join(params, ", ")
}

// ----------------------------------------------------------------------------
// SELECT
// ----------------------------------------------------------------------------

// CompileSelect, q'yu bir SELECT ifadesine derler.
func (g *BaseGrammar) CompileSelect(q *Query) (string, error) {
	parts, err := g.compileComponents(q)
	if err != nil {
		return "", err
	}
	return g.concatenate(parts), nil
}

type compiled struct {
	component component
	sql       string
}

func (g *BaseGrammar) compileComponents(q *Query) ([]compiled, error) {
	components := g.self.selectComponents()
	parts := make([]compiled, 0, len(components))
	for _, c := range components {
		sql, err := g.compileComponent(q, c)
		if err != nil {
			return nil, err
		}
		parts = append(parts, compiled{component: c, sql: sql})
	}
	return parts, nil
}

func (g *BaseGrammar) compileComponent(q *Query, c component) (string, error) {
	switch c {
	case componentAggregate:
		return g.compileAggregate(q), nil
	case componentColumns:
		return g.self.compileColumns(q), nil
	case componentOutfile:
		return g.self.compileOutfile(q), nil
	case componentFrom:
		return g.self.compileFrom(q), nil
	case componentJoins:
		return g.compileJoins(q.Joins), nil
	case componentWheres:
		return g.compileWheres(q)
	case componentGroups:
		return g.self.compileGroups(q), nil
	case componentHavings:
		return g.compileHavings(q), nil
	case componentOrders:
		return g.compileOrders(q), nil
	case componentLimit:
		return g.self.compileLimit(q), nil
	case componentOffset:
		return g.self.compileOffset(q), nil
	case componentUnions:
		return g.compileUnions(q)
	case componentLock:
		return g.self.compileLock(q), nil
	}
	return "", nil
}

func (g *BaseGrammar) concatenate(parts []compiled) string {
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.sql != "" {
			segments = append(segments, p.sql)
		}
	}
	return strings.TrimSpace(strings.Join(segments, " "))
}

func (g *BaseGrammar) selectComponents() []component {
	return ansiComponents
}

func (g *BaseGrammar) compileAggregate(q *Query) string {
	if q.Aggregate == nil {
		return ""
	}
	column := g.self.Columnize(q.Aggregate.Columns)
	if q.Distinct && column != "*" {
		column = "distinct " + column
	}
	return "select " + q.Aggregate.Function + "(" + column + ") as aggregate"
}

func (g *BaseGrammar) compileColumns(q *Query) string {
	if q.Aggregate != nil {
		return ""
	}
	return g.selectKeyword(q) + g.self.Columnize(selectColumns(q))
}

func (g *BaseGrammar) selectKeyword(q *Query) string {
	if q.Distinct {
		return "select distinct "
	}
	return "select "
}

func selectColumns(q *Query) []any {
	if q.Columns == nil {
		return []any{"*"}
	}
	return q.Columns
}

func (g *BaseGrammar) compileFrom(q *Query) string {
	if q.From == nil {
		return ""
	}
	return "from " + g.self.WrapTable(q.From)
}

func (g *BaseGrammar) compileJoins(joins []*JoinClause) string {
	if len(joins) == 0 {
		return ""
	}
	sql := make([]string, 0, len(joins))
	for _, join := range joins {
		table := g.self.WrapTable(join.Table)
		if len(join.Clauses) == 0 {
			sql = append(sql, string(join.Type)+" join "+table)
			continue
		}
		clauses := make([]string, len(join.Clauses))
		for i, clause := range join.Clauses {
			clauses[i] = g.compileJoinConstraint(clause)
		}
		clauses[0] = removeLeadingBoolean(clauses[0])
		sql = append(sql, string(join.Type)+" join "+table+" on "+strings.Join(clauses, " "))
	}
	return strings.Join(sql, " ")
}

func (g *BaseGrammar) compileJoinConstraint(c JoinCondition) string {
	first := g.self.Wrap(c.First)
	var second string
	if c.Where {
		second = g.Parameter(c.Second)
	} else {
		second = g.self.Wrap(c.Second)
	}
	return c.Boolean.String() + " " + first + " " + c.Operator + " " + second
}

// ----------------------------------------------------------------------------
// WHERE
// ----------------------------------------------------------------------------

func (g *BaseGrammar) compileWheres(q *Query) (string, error) {
	if len(q.Wheres) == 0 {
		return "", nil
	}
	list, err := g.compileWhereList(q.Wheres)
	if err != nil {
		return "", err
	}
	return "where " + list, nil
}

// compileWhereList, koşulları bağlaçlarıyla birleştirir ve ilk bağlacı atar.
func (g *BaseGrammar) compileWhereList(wheres []WhereClause) (string, error) {
	parts := make([]string, len(wheres))
	for i, where := range wheres {
		sql, err := g.compileWhere(where)
		if err != nil {
			return "", err
		}
		parts[i] = where.Boolean.String() + " " + sql
	}
	return removeLeadingBoolean(strings.Join(parts, " ")), nil
}

func (g *BaseGrammar) compileWhere(w WhereClause) (string, error) {
	switch w.Type {
	case WhereTypeBasic:
		return g.self.Wrap(w.Column) + " " + w.Operator + " " + g.Parameter(w.Value), nil
	case WhereTypeBetween:
		between := "between"
		if w.Not {
			between = "not between"
		}
		return g.self.Wrap(w.Column) + " " + between + " " + g.Parameter(valueAt(w.Values, 0)) + " and " + g.Parameter(valueAt(w.Values, 1)), nil
	case WhereTypeIn:
		if len(w.Values) == 0 {
			return "0 = 1", nil
		}
		return g.self.Wrap(w.Column) + " in (" + g.Parameterize(w.Values) + ")", nil
	case WhereTypeNotIn:
		if len(w.Values) == 0 {
			return "1 = 1", nil
		}
		return g.self.Wrap(w.Column) + " not in (" + g.Parameterize(w.Values) + ")", nil
	case WhereTypeInSub, WhereTypeNotInSub:
		sub, err := g.self.CompileSelect(w.Query)
		if err != nil {
			return "", err
		}
		in := " in ("
		if w.Type == WhereTypeNotInSub {
			in = " not in ("
		}
		return g.self.Wrap(w.Column) + in + sub + ")", nil
	case WhereTypeNull:
		return g.self.Wrap(w.Column) + " is null", nil
	case WhereTypeNotNull:
		return g.self.Wrap(w.Column) + " is not null", nil
	case WhereTypeExists, WhereTypeNotExists:
		sub, err := g.self.CompileSelect(w.Query)
		if err != nil {
			return "", err
		}
		if w.Type == WhereTypeNotExists {
			return "not exists (" + sub + ")", nil
		}
		return "exists (" + sub + ")", nil
	case WhereTypeNested:
		list, err := g.compileWhereList(w.Query.Wheres)
		if err != nil {
			return "", err
		}
		return "(" + list + ")", nil
	case WhereTypeSub:
		sub, err := g.self.CompileSelect(w.Query)
		if err != nil {
			return "", err
		}
		return g.self.Wrap(w.Column) + " " + w.Operator + " (" + sub + ")", nil
	case WhereTypeRaw:
		return w.SQL, nil
	case WhereTypeDay:
		return g.self.dateBasedWhere("day", w), nil
	case WhereTypeMonth:
		return g.self.dateBasedWhere("month", w), nil
	case WhereTypeYear:
		return g.self.dateBasedWhere("year", w), nil
	}
	return "", ErrUnknownWhere
}

func (g *BaseGrammar) dateBasedWhere(fn string, w WhereClause) string {
	return fn + "(" + g.self.Wrap(w.Column) + ") " + w.Operator + " " + g.Parameter(w.Value)
}

func valueAt(values []any, i int) any {
	if i < len(values) {
		return values[i]
	}
	return nil
}

// ----------------------------------------------------------------------------
// GROUP BY, HAVING, ORDER BY, LIMIT, OFFSET, UNION, LOCK
// ----------------------------------------------------------------------------

func (g *BaseGrammar) compileGroups(q *Query) string {
	if len(q.Groups) == 0 {
		return ""
	}
	return "group by " + g.self.Columnize(q.Groups)
}

func (g *BaseGrammar) compileHavings(q *Query) string {
	if len(q.Havings) == 0 {
		return ""
	}
	parts := make([]string, len(q.Havings))
	for i, h := range q.Havings {
		if h.Type == WhereTypeRaw {
			parts[i] = h.Boolean.String() + " " + h.SQL
			continue
		}
		parts[i] = h.Boolean.String() + " " + g.self.Wrap(h.Column) + " " + h.Operator + " " + g.Parameter(h.Value)
	}
	return "having " + removeLeadingBoolean(strings.Join(parts, " "))
}

func (g *BaseGrammar) compileOrders(q *Query) string {
	if len(q.Orders) == 0 {
		return ""
	}
	parts := make([]string, len(q.Orders))
	for i, o := range q.Orders {
		if o.SQL != "" {
			parts[i] = o.SQL
			continue
		}
		parts[i] = g.self.Wrap(o.Column) + " " + string(o.Direction)
	}
	return "order by " + strings.Join(parts, ", ")
}

func (g *BaseGrammar) compileLimit(q *Query) string {
	if q.Limit == nil {
		return ""
	}
	return "limit " + strconv.Itoa(*q.Limit)
}

func (g *BaseGrammar) compileOffset(q *Query) string {
	if q.Offset == nil {
		return ""
	}
	return "offset " + strconv.Itoa(*q.Offset)
}

func (g *BaseGrammar) compileUnions(q *Query) (string, error) {
	var sql strings.Builder
	for _, u := range q.Unions {
		s, err := g.self.compileUnion(u)
		if err != nil {
			return "", err
		}
		sql.WriteString(s)
	}
	return strings.TrimLeft(sql.String(), " "), nil
}

func (g *BaseGrammar) compileUnion(u Union) (string, error) {
	sub, err := g.self.CompileSelect(u.Query)
	if err != nil {
		return "", err
	}
	if u.All {
		return " union all " + sub, nil
	}
	return " union " + sub, nil
}

func (g *BaseGrammar) compileLock(q *Query) string {
	if s, ok := q.Lock.(string); ok {
		return s
	}
	return ""
}

func (g *BaseGrammar) compileOutfile(q *Query) string {
	return ""
}

// ----------------------------------------------------------------------------
// INSERT
// ----------------------------------------------------------------------------

func (g *BaseGrammar) CompileInsert(q *Query, rows []map[string]any) (string, error) {
	return g.compileInsertWith(q, rows, "insert")
}

// compileInsertWith, "<verb> into t (cols) values (..), (..)" üretir. Kolon listesini
// ilk satırın kolonları belirler.
func (g *BaseGrammar) compileInsertWith(q *Query, rows []map[string]any, verb string) (string, error) {
	if q.From == nil {
		return "", ErrNoTable
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return "", ErrEmptyInsert
	}
	columns := SortedColumns(rows[0])
	values := make([]string, len(rows))
	for i, row := range rows {
		values[i] = "(" + g.Parameterize(rowValues(row, columns)) + ")"
	}
	return verb + " into " + g.self.WrapTable(q.From) + " (" + g.self.Columnize(stringsToAny(columns)) + ") values " + strings.Join(values, ", "), nil
}

func (g *BaseGrammar) CompileInsertIgnore(q *Query, rows []map[string]any) (string, error) {
	return "", g.unsupported("Insert ignore")
}

func (g *BaseGrammar) CompileReplace(q *Query, rows []map[string]any) (string, error) {
	return "", g.unsupported("Replace")
}

func (g *BaseGrammar) CompileInsertOnDuplicateKeyUpdate(q *Query, rows []map[string]any, update map[string]any) (string, error) {
	return "", g.unsupported("Insert on duplicate key update")
}

func (g *BaseGrammar) CompileInsertGetID(q *Query, row map[string]any, sequence string) (string, error) {
	return g.self.CompileInsert(q, []map[string]any{row})
}

// ReturnsID false döner: id sürücünün last insert id değerinden gelir.
func (g *BaseGrammar) ReturnsID() bool {
	return false
}

func (g *BaseGrammar) CompileInsertSelect(q *Query, columns []any, sub *Query) (string, error) {
	return g.compileInsertSelectWith(q, columns, sub, "insert")
}

func (g *BaseGrammar) compileInsertSelectWith(q *Query, columns []any, sub *Query, verb string) (string, error) {
	if q.From == nil {
		return "", ErrNoTable
	}
	if len(columns) == 0 {
		return "", ErrNoColumns
	}
	sel, err := g.self.CompileSelect(sub)
	if err != nil {
		return "", err
	}
	return verb + " into " + g.self.WrapTable(q.From) + " (" + g.self.Columnize(columns) + ") " + sel, nil
}

func (g *BaseGrammar) CompileInsertIgnoreSelect(q *Query, columns []any, sub *Query) (string, error) {
	return "", g.unsupported("Insert ignore")
}

func (g *BaseGrammar) CompileReplaceSelect(q *Query, columns []any, sub *Query) (string, error) {
	return "", g.unsupported("Replace")
}

func (g *BaseGrammar) CompileInsertSelectOnDuplicateKeyUpdate(q *Query, columns []any, sub *Query, update map[string]any) (string, error) {
	return "", g.unsupported("On duplicate key update")
}

// ----------------------------------------------------------------------------
// UPDATE, DELETE, TRUNCATE
// ----------------------------------------------------------------------------

// CompileUpdate, "update t [joins] set c = ?, ... [where]" üretir.
func (g *BaseGrammar) CompileUpdate(q *Query, values map[string]any) (string, error) {
	if q.From == nil {
		return "", ErrNoTable
	}
	if len(values) == 0 {
		return "", ErrNoColumns
	}
	joins := ""
	if len(q.Joins) > 0 {
		joins = " " + g.compileJoins(q.Joins)
	}
	where, err := g.compileWheres(q)
	if err != nil {
		return "", err
	}
	sql := "update " + g.self.WrapTable(q.From) + joins + " set " + g.updateColumns(values) + " " + where
	return strings.TrimSpace(sql), nil
}

// SelectBindings, tüm fazları cümle sırasıyla döndürür.
func (g *BaseGrammar) SelectBindings(q *Query, b Bindings) []any {
	return b.Flatten()
}

// UpdateBindings önce join bağlamalarını, sonra SET değerlerini, sonra where'leri koyar.
// Order, having ve union bir UPDATE içine hiç derlenmez.
func (g *BaseGrammar) UpdateBindings(q *Query, b Bindings, values []any) []any {
	out := make([]any, 0, len(b[PhaseJoin])+len(values)+len(b[PhaseWhere]))
	out = append(out, b[PhaseJoin]...)
	out = append(out, values...)
	return append(out, b[PhaseWhere]...)
}

// updateColumns, "c = ?" çiftlerini sıralı kolon düzeninde derler.
func (g *BaseGrammar) updateColumns(values map[string]any) string {
	columns := SortedColumns(values)
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = g.self.Wrap(c) + " = " + g.Parameter(values[c])
	}
	return strings.Join(parts, ", ")
}

func (g *BaseGrammar) CompileDelete(q *Query) (string, error) {
	if q.From == nil {
		return "", ErrNoTable
	}
	where, err := g.compileWheres(q)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace("delete from " + g.self.WrapTable(q.From) + " " + where), nil
}

// DeleteBindings, where bağlamalarını döndürür; temel DELETE join içermez.
func (g *BaseGrammar) DeleteBindings(q *Query, b Bindings) []any {
	return append([]any{}, b[PhaseWhere]...)
}

func (g *BaseGrammar) CompileTruncate(q *Query) ([]Statement, error) {
	if q.From == nil {
		return nil, ErrNoTable
	}
	return []Statement{{SQL: "truncate " + g.self.WrapTable(q.From), Bindings: []any{}}}, nil
}

func (g *BaseGrammar) CompileInfile(q *Query, infile *InfileClause) (string, error) {
	return "", g.unsupported("Load data infile")
}

func (g *BaseGrammar) unsupported(operation string) error {
	return &UnsupportedError{Operation: operation, Grammar: g.name}
}

// ----------------------------------------------------------------------------
// İç yardımcılar
// ----------------------------------------------------------------------------

func rowValues(row map[string]any, columns []string) []any {
	values := make([]any, len(columns))
	for i, c := range columns {
		values[i] = row[c]
	}
	return values
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case Expression:
		return s.Value()
	case interface{ String() string }:
		return s.String()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

package dialect

import (
	"strconv"
	"strings"
)

/*
 * ----------------------------------------------------------------------------
 * MYSQL GRAMMAR IMPLEMENTATION
 * ----------------------------------------------------------------------------
 *
 * MySQLGrammar adds what MySQL and MariaDB do differently from ANSI SQL:
 * backtick quoting, INSERT IGNORE / REPLACE / ON DUPLICATE KEY UPDATE, pessimistic
 * locks, WITH ROLLUP, multi-table DELETE and the LOAD DATA INFILE and
 * SELECT ... INTO OUTFILE file transfer statements.
 *
 * @author Ahmet ALTUN
 * @github github.com/biyonik
 * @linkedin linkedin.com/in/biyonik
 * @email ahmet.altun60@gmail.com
 * ----------------------------------------------------------------------------
 */

// MySQLGrammar, MySQL ve MariaDB için Grammar implementasyonudur.
type MySQLGrammar struct {
	BaseGrammar
}

var mysqlComponents = []component{
	componentAggregate,
	componentColumns,
	componentOutfile,
	componentFrom,
	componentJoins,
	componentWheres,
	componentGroups,
	componentHavings,
	componentOrders,
	componentLimit,
	componentOffset,
	componentLock,
}

// MySQL, bir MySQL grameri döndürür.
func MySQL() *MySQLGrammar {
	g := &MySQLGrammar{}
	g.init("mysql", "2006-01-02 15:04:05", g)
	return g
}

func (g *MySQLGrammar) wrapValue(value string) string {
	if value == "*" {
		return value
	}
	return "`" + strings.ReplaceAll(value, "`", "``") + "`"
}

func (g *MySQLGrammar) selectComponents() []component {
	return mysqlComponents
}

// CompileSelect, union'ın her iki tarafını parantez içine alır:
// "(select ...) union (select ...)".
func (g *MySQLGrammar) CompileSelect(q *Query) (string, error) {
	sql, err := g.BaseGrammar.CompileSelect(q)
	if err != nil {
		return "", err
	}
	if len(q.Unions) == 0 {
		return sql, nil
	}
	unions, err := g.compileUnions(q)
	if err != nil {
		return "", err
	}
	return "(" + sql + ") " + unions, nil
}

func (g *MySQLGrammar) compileUnion(u Union) (string, error) {
	sub, err := g.CompileSelect(u.Query)
	if err != nil {
		return "", err
	}
	joiner := " union "
	if u.All {
		joiner = " union all "
	}
	return joiner + "(" + sub + ")", nil
}

func (g *MySQLGrammar) compileLock(q *Query) string {
	switch lock := q.Lock.(type) {
	case string:
		return lock
	case bool:
		if lock {
			return "for update"
		}
		return "lock in share mode"
	}
	return ""
}

func (g *MySQLGrammar) compileGroups(q *Query) string {
	sql := g.BaseGrammar.compileGroups(q)
	if sql != "" && q.Rollup {
		sql += " with rollup"
	}
	return sql
}

// ----------------------------------------------------------------------------
// INSERT türevleri
// ----------------------------------------------------------------------------

func (g *MySQLGrammar) CompileInsertIgnore(q *Query, rows []map[string]any) (string, error) {
	return g.compileInsertWith(q, rows, "insert ignore")
}

func (g *MySQLGrammar) CompileReplace(q *Query, rows []map[string]any) (string, error) {
	return g.compileInsertWith(q, rows, "replace")
}

// CompileInsertOnDuplicateKeyUpdate, düz bir insert'e "on duplicate key update c = ?, ..."
// ekler. Expression değerleri olduğu gibi yazılır, örn. Raw("VALUES(email)").
func (g *MySQLGrammar) CompileInsertOnDuplicateKeyUpdate(q *Query, rows []map[string]any, update map[string]any) (string, error) {
	insert, err := g.CompileInsert(q, rows)
	if err != nil {
		return "", err
	}
	if len(update) == 0 {
		return "", ErrNoColumns
	}
	return insert + " on duplicate key update " + g.updateColumns(update), nil
}

func (g *MySQLGrammar) CompileInsertIgnoreSelect(q *Query, columns []any, sub *Query) (string, error) {
	return g.compileInsertSelectWith(q, columns, sub, "insert ignore")
}

func (g *MySQLGrammar) CompileReplaceSelect(q *Query, columns []any, sub *Query) (string, error) {
	return g.compileInsertSelectWith(q, columns, sub, "replace")
}

func (g *MySQLGrammar) CompileInsertSelectOnDuplicateKeyUpdate(q *Query, columns []any, sub *Query, update map[string]any) (string, error) {
	insert, err := g.compileInsertSelectWith(q, columns, sub, "insert")
	if err != nil {
		return "", err
	}
	if len(update) == 0 {
		return "", ErrNoColumns
	}
	return insert + " on duplicate key update " + g.updateColumns(update), nil
}

// ----------------------------------------------------------------------------
// UPDATE ve DELETE
// ----------------------------------------------------------------------------

// CompileUpdate, tek tablolu update'lerde ORDER BY ve LIMIT destekler.
func (g *MySQLGrammar) CompileUpdate(q *Query, values map[string]any) (string, error) {
	sql, err := g.BaseGrammar.CompileUpdate(q, values)
	if err != nil {
		return "", err
	}
	if orders := g.compileOrders(q); orders != "" {
		sql += " " + orders
	}
	if limit := g.compileLimit(q); limit != "" {
		sql += " " + limit
	}
	return strings.TrimRight(sql, " "), nil
}

// UpdateBindings, CompileUpdate'in where'lerden sonra yazdığı order bağlamalarını ekler.
func (g *MySQLGrammar) UpdateBindings(q *Query, b Bindings, values []any) []any {
	return append(g.BaseGrammar.UpdateBindings(q, b, values), b[PhaseOrder]...)
}

// DeleteBindings, "delete t from t <joins> <where>" düzenine göre önce join, sonra where bağlamalarını döndürür.
func (g *MySQLGrammar) DeleteBindings(q *Query, b Bindings) []any {
	out := make([]any, 0, len(b[PhaseJoin])+len(b[PhaseWhere]))
	out = append(out, b[PhaseJoin]...)
	return append(out, b[PhaseWhere]...)
}

// CompileDelete, sorguda join varsa "delete t from t <joins>" üretir.
func (g *MySQLGrammar) CompileDelete(q *Query) (string, error) {
	if len(q.Joins) == 0 {
		return g.BaseGrammar.CompileDelete(q)
	}
	if q.From == nil {
		return "", ErrNoTable
	}
	where, err := g.compileWheres(q)
	if err != nil {
		return "", err
	}
	table := g.WrapTable(q.From)
	return strings.TrimSpace("delete " + table + " from " + table + " " + g.compileJoins(q.Joins) + " " + where), nil
}

// ----------------------------------------------------------------------------
// LOAD DATA INFILE ve SELECT ... INTO OUTFILE
// ----------------------------------------------------------------------------

func (g *MySQLGrammar) compileOutfile(q *Query) string {
	if q.Outfile == nil {
		return ""
	}
	parts := []string{"into " + string(q.Outfile.Type) + " " + quoteLiteral(q.Outfile.File)}
	if options := fileOptions(q.Outfile.FileOptions); options != "" {
		parts = append(parts, options)
	}
	return strings.Join(parts, " ")
}

// CompileInfile, sorgunun tablosuna LOAD DATA [LOCAL] INFILE derler.
func (g *MySQLGrammar) CompileInfile(q *Query, infile *InfileClause) (string, error) {
	if err := infile.Err(); err != nil {
		return "", err
	}
	if q.From == nil {
		return "", ErrNoTable
	}
	if len(infile.Columns) == 0 {
		return "", ErrNoInfileColumn
	}

	local := ""
	if infile.Local {
		local = "local "
	}
	typ := ""
	if infile.Type != "" {
		typ = string(infile.Type) + " "
	}

	parts := []string{"load data " + local + "infile " + quoteLiteral(infile.File) + " " + typ + "into table " + g.WrapTable(q.From)}
	if options := fileOptions(infile.FileOptions); options != "" {
		parts = append(parts, options)
	}
	if infile.IgnoreCount > 0 {
		parts = append(parts, "ignore "+strconv.Itoa(infile.IgnoreCount)+" lines")
	}
	parts = append(parts, "("+g.Columnize(infile.Columns)+")")
	if len(infile.Rules) > 0 {
		parts = append(parts, "set "+g.updateColumns(infile.Rules))
	}
	return strings.Join(parts, " "), nil
}

type fileOption struct {
	sql   string
	value *string
}

type fileOptionGroup struct {
	keyword string
	options []fileOption
}

// fileOptions, karakter seti, FIELDS ve LINES seçeneklerini yazar. FIELDS ve LINES
// anahtar kelimeleri gruplarının ilk seçeneğinden önce bir kez görünür.
func fileOptions(o FileOptions) string {
	var parts []string
	if o.CharacterSet != nil {
		parts = append(parts, "character set "+*o.CharacterSet)
	}

	enclosed := "enclosed by"
	if o.OptionallyEnclosedBy {
		enclosed = "optionally enclosed by"
	}

	groups := []fileOptionGroup{
		{"fields", []fileOption{
			{"terminated by", o.FieldsTerminatedBy},
			{enclosed, o.EnclosedBy},
			{"escaped by", o.EscapedBy},
		}},
		{"lines", []fileOption{
			{"starting by", o.LinesStartingBy},
			{"terminated by", o.LinesTerminatedBy},
		}},
	}

	for _, group := range groups {
		keyword := group.keyword + " "
		for _, option := range group.options {
			if option.value == nil {
				continue
			}
			parts = append(parts, keyword+option.sql+" "+quoteLiteral(*option.value))
			keyword = ""
		}
	}
	return strings.Join(parts, " ")
}

// quoteLiteral, s'yi tek tırnaklı bir MySQL string literal'i olarak yazar.
func quoteLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

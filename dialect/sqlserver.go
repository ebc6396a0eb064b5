package dialect

import (
	"strconv"
	"strings"
)

// SQLServerGrammar, Microsoft SQL Server için Grammar implementasyonudur.
//
// Offset'siz limitler "select top N" olarak derlenir. Offset varsa ifade bir row_number()
// tablo ifadesine sarılır; desteklenen sunucularda OFFSET ... FETCH yoktur.
type SQLServerGrammar struct {
	BaseGrammar
}

// SQLServer, bir SQL Server grameri döndürür.
func SQLServer() *SQLServerGrammar {
	g := &SQLServerGrammar{}
	g.init("sqlserver", "2006-01-02 15:04:05.000", g)
	return g
}

func (g *SQLServerGrammar) wrapValue(value string) string {
	if value == "*" {
		return value
	}
	return "[" + strings.ReplaceAll(value, "]", "]]") + "]"
}

func (g *SQLServerGrammar) CompileSelect(q *Query) (string, error) {
	parts, err := g.compileComponents(q)
	if err != nil {
		return "", err
	}
	if offset(q) > 0 {
		return g.compileAnsiOffset(q, parts), nil
	}
	return g.concatenate(parts), nil
}

func (g *SQLServerGrammar) compileColumns(q *Query) string {
	if q.Aggregate != nil {
		return ""
	}
	sql := g.selectKeyword(q)
	if limit(q) > 0 && offset(q) <= 0 {
		sql += "top " + strconv.Itoa(limit(q)) + " "
	}
	return sql + g.Columnize(selectColumns(q))
}

// compileFrom, kilidi tablo ipucu olarak taşır.
func (g *SQLServerGrammar) compileFrom(q *Query) string {
	from := g.BaseGrammar.compileFrom(q)
	if from == "" {
		return ""
	}
	switch lock := q.Lock.(type) {
	case string:
		return from + " " + lock
	case bool:
		if lock {
			return from + " with(rowlock,updlock,holdlock)"
		}
		return from + " with(rowlock,holdlock)"
	}
	return from
}

func (g *SQLServerGrammar) compileLock(q *Query) string {
	return ""
}

func (g *SQLServerGrammar) compileLimit(q *Query) string {
	return ""
}

func (g *SQLServerGrammar) compileOffset(q *Query) string {
	return ""
}

// compileAnsiOffset, satırları row_number() ile numaralar ve numaraya göre süzer.
func (g *SQLServerGrammar) compileAnsiOffset(q *Query, parts []compiled) string {
	orderings := "order by (select 0)"
	kept := make([]compiled, 0, len(parts))
	for _, p := range parts {
		if p.component == componentOrders {
			if p.sql != "" {
				orderings = p.sql
			}
			continue
		}
		kept = append(kept, p)
	}
	for i := range kept {
		if kept[i].component == componentColumns {
			kept[i].sql += ", row_number() over (" + orderings + ") as row_num"
		}
	}

	sql := g.concatenate(kept)
	return "select * from (" + sql + ") as temp_table where row_num " + rowConstraint(q)
}

// SelectBindings, offset varsa order bağlamalarını select bağlamalarının hemen
// arkasına taşır; sıralamalar row_number() kolonuna derlenir.
func (g *SQLServerGrammar) SelectBindings(q *Query, b Bindings) []any {
	if offset(q) <= 0 {
		return b.Flatten()
	}
	out := []any{}
	for _, phase := range []Phase{PhaseSelect, PhaseOrder, PhaseJoin, PhaseWhere, PhaseHaving, PhaseUnion} {
		out = append(out, b[phase]...)
	}
	return out
}

func rowConstraint(q *Query) string {
	start := offset(q) + 1
	if limit(q) > 0 {
		finish := offset(q) + limit(q)
		return "between " + strconv.Itoa(start) + " and " + strconv.Itoa(finish)
	}
	return ">= " + strconv.Itoa(start)
}

func (g *SQLServerGrammar) CompileTruncate(q *Query) ([]Statement, error) {
	if q.From == nil {
		return nil, ErrNoTable
	}
	return []Statement{{SQL: "truncate table " + g.WrapTable(q.From), Bindings: []any{}}}, nil
}

func limit(q *Query) int {
	if q.Limit == nil {
		return 0
	}
	return *q.Limit
}

func offset(q *Query) int {
	if q.Offset == nil {
		return 0
	}
	return *q.Offset
}

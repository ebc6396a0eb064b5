package dialect

// SQLiteGrammar, SQLite 3 için Grammar implementasyonudur.
type SQLiteGrammar struct {
	BaseGrammar
}

// SQLite, bir SQLite grameri döndürür.
func SQLite() *SQLiteGrammar {
	g := &SQLiteGrammar{}
	g.init("sqlite", "2006-01-02 15:04:05", g)
	return g
}

var strftimeFormats = map[string]string{
	"day":   "%d",
	"month": "%m",
	"year":  "%Y",
}

func (g *SQLiteGrammar) dateBasedWhere(fn string, w WhereClause) string {
	return "strftime('" + strftimeFormats[fn] + "', " + g.Wrap(w.Column) + ") " + w.Operator + " " + g.Parameter(w.Value)
}

// CompileInsertIgnore, "insert or ignore" üretir; çok satırlı insert'ler temel
// "values (..), (..)" biçimini kullanır.
func (g *SQLiteGrammar) CompileInsertIgnore(q *Query, rows []map[string]any) (string, error) {
	return g.compileInsertWith(q, rows, "insert or ignore")
}

func (g *SQLiteGrammar) CompileReplace(q *Query, rows []map[string]any) (string, error) {
	return g.compileInsertWith(q, rows, "insert or replace")
}

func (g *SQLiteGrammar) CompileInsertIgnoreSelect(q *Query, columns []any, sub *Query) (string, error) {
	return g.compileInsertSelectWith(q, columns, sub, "insert or ignore")
}

func (g *SQLiteGrammar) CompileReplaceSelect(q *Query, columns []any, sub *Query) (string, error) {
	return g.compileInsertSelectWith(q, columns, sub, "insert or replace")
}

// CompileTruncate, tabloyu boşaltır ve autoincrement sayacını sıfırlar.
func (g *SQLiteGrammar) CompileTruncate(q *Query) ([]Statement, error) {
	if q.From == nil {
		return nil, ErrNoTable
	}
	return []Statement{
		{SQL: "delete from sqlite_sequence where name = ?", Bindings: []any{g.TablePrefix() + toString(q.From)}},
		{SQL: "delete from " + g.WrapTable(q.From), Bindings: []any{}},
	}, nil
}

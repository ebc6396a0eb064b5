package dialect

import "strings"

// PostgresGrammar, PostgreSQL için Grammar implementasyonudur.
//
// Join'li update'ler "update t set ... from j where <join koşulları>" ile ifade edilir;
// InsertGetID, sürücünün last insert id'si yerine "returning" kullanır.
type PostgresGrammar struct {
	BaseGrammar
}

// Postgres, bir PostgreSQL grameri döndürür.
func Postgres() *PostgresGrammar {
	g := &PostgresGrammar{}
	g.init("postgres", "2006-01-02 15:04:05", g)
	return g
}

func (g *PostgresGrammar) compileLock(q *Query) string {
	switch lock := q.Lock.(type) {
	case string:
		return lock
	case bool:
		if lock {
			return "for update"
		}
		return "for share"
	}
	return ""
}

// CompileInsertGetID, "returning <sequence>" ekler; sequence varsayılan olarak "id"dir.
func (g *PostgresGrammar) CompileInsertGetID(q *Query, row map[string]any, sequence string) (string, error) {
	if sequence == "" {
		sequence = "id"
	}
	insert, err := g.CompileInsert(q, []map[string]any{row})
	if err != nil {
		return "", err
	}
	return insert + " returning " + g.Wrap(sequence), nil
}

func (g *PostgresGrammar) ReturnsID() bool {
	return true
}

// CompileUpdate, join edilen tabloları FROM listesine, koşullarını WHERE'e taşır.
func (g *PostgresGrammar) CompileUpdate(q *Query, values map[string]any) (string, error) {
	if q.From == nil {
		return "", ErrNoTable
	}
	if len(values) == 0 {
		return "", ErrNoColumns
	}
	where, err := g.compileUpdateWheres(q)
	if err != nil {
		return "", err
	}
	sql := "update " + g.WrapTable(q.From) + " set " + g.updateColumns(values) + g.compileUpdateFrom(q) + " " + where
	return strings.TrimSpace(sql), nil
}

func (g *PostgresGrammar) compileUpdateFrom(q *Query) string {
	if len(q.Joins) == 0 {
		return ""
	}
	froms := make([]string, len(q.Joins))
	for i, join := range q.Joins {
		froms[i] = g.WrapTable(join.Table)
	}
	return " from " + strings.Join(froms, ", ")
}

func (g *PostgresGrammar) compileUpdateWheres(q *Query) (string, error) {
	base, err := g.compileWheres(q)
	if err != nil {
		return "", err
	}
	if len(q.Joins) == 0 {
		return base, nil
	}

	var conditions []string
	for _, join := range q.Joins {
		for _, clause := range join.Clauses {
			conditions = append(conditions, g.compileJoinConstraint(clause))
		}
	}
	joinWhere := strings.Join(conditions, " ")

	if strings.TrimSpace(base) == "" {
		return "where " + removeLeadingBoolean(joinWhere), nil
	}
	return base + " " + joinWhere, nil
}

// UpdateBindings, CompileUpdate'in yer tutucu düzenini izler: SET değerleri, sonra
// temel where, sonra taşınan join koşulları.
func (g *PostgresGrammar) UpdateBindings(q *Query, b Bindings, values []any) []any {
	out := make([]any, 0, len(values)+len(b[PhaseWhere])+len(b[PhaseJoin]))
	out = append(out, values...)
	out = append(out, b[PhaseWhere]...)
	return append(out, b[PhaseJoin]...)
}

func (g *PostgresGrammar) CompileTruncate(q *Query) ([]Statement, error) {
	if q.From == nil {
		return nil, ErrNoTable
	}
	return []Statement{{SQL: "truncate " + g.WrapTable(q.From) + " restart identity", Bindings: []any{}}}, nil
}

package dialect

// ----------------------------------------------------------------------------
// JOIN Tipleri
// ----------------------------------------------------------------------------

// JoinType, join türüdür.
type JoinType string

const (
	JoinInner JoinType = "inner"
	JoinLeft  JoinType = "left"
	JoinRight JoinType = "right"
	JoinCross JoinType = "cross"
)

// JoinCondition, bir ON cümlesinin "first operator second" terimidir. Where true ise
// Second bir kolon değil, bağlanan bir değerdir.
type JoinCondition struct {
	First    any
	Operator string
	Second   any
	Boolean  WhereBoolean
	Where    bool
}

// JoinClause, sıralı koşullarıyla birlikte join edilen bir tablodur. Where tarzı
// koşulların bağladığı değerler Bindings'te toplanır.
type JoinClause struct {
	Type     JoinType
	Table    any
	Clauses  []JoinCondition
	Bindings []any
}

// NewJoinClause, table üzerinde boş bir join döndürür.
func NewJoinClause(typ JoinType, table any) *JoinClause {
	if typ == "" {
		typ = JoinInner
	}
	return &JoinClause{Type: typ, Table: table}
}

func (j *JoinClause) add(first any, operator string, second any, boolean WhereBoolean, where bool) *JoinClause {
	j.Clauses = append(j.Clauses, JoinCondition{
		First:    first,
		Operator: operator,
		Second:   second,
		Boolean:  boolean,
		Where:    where,
	})
	if where && !IsExpression(second) {
		j.Bindings = append(j.Bindings, second)
	}
	return j
}

// On, AND ile bağlanan bir kolon karşılaştırması ekler.
func (j *JoinClause) On(first any, operator string, second any) *JoinClause {
	return j.add(first, operator, second, WhereBooleanAnd, false)
}

// OrOn, OR ile bağlanan bir kolon karşılaştırması ekler.
func (j *JoinClause) OrOn(first any, operator string, second any) *JoinClause {
	return j.add(first, operator, second, WhereBooleanOr, false)
}

// Where, first'ü bağlanan bir değerle karşılaştırır.
func (j *JoinClause) Where(first any, operator string, value any) *JoinClause {
	return j.add(first, operator, value, WhereBooleanAnd, true)
}

// OrWhere, first'ü bağlanan bir değerle OR ile karşılaştırır.
func (j *JoinClause) OrWhere(first any, operator string, value any) *JoinClause {
	return j.add(first, operator, value, WhereBooleanOr, true)
}

func (j *JoinClause) WhereNull(column any) *JoinClause {
	return j.add(column, "is", Raw("null"), WhereBooleanAnd, false)
}

func (j *JoinClause) OrWhereNull(column any) *JoinClause {
	return j.add(column, "is", Raw("null"), WhereBooleanOr, false)
}

func (j *JoinClause) WhereNotNull(column any) *JoinClause {
	return j.add(column, "is", Raw("not null"), WhereBooleanAnd, false)
}

func (j *JoinClause) OrWhereNotNull(column any) *JoinClause {
	return j.add(column, "is", Raw("not null"), WhereBooleanOr, false)
}

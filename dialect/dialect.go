// Package dialect, yapılandırılmış sorgu tanımını veritabanına özgü SQL'e derler.
//
// Paket; sorgu tanımının kendisini (Query, WhereClause, JoinClause vb.), yer tutucu
// sırasını sabit tutan bağlama fazlarını, Grammar arayüzünü ve desteklenen her veritabanı
// için bir Grammar'ı (MySQL, PostgreSQL, SQLite, SQL Server) içerir. Gramerler saftır;
// hiçbir zaman veritabanıyla konuşmaz.
//
// Yazar: Ahmet ALTUN
// Github: github.com/biyonik
// LinkedIn: linkedin.com/in/biyonik
// Email: ahmet.altun60@gmail.com
package dialect

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
)

// ----------------------------------------------------------------------------
// Expression
// ----------------------------------------------------------------------------

// Expression, bir SQL parçasını ham olarak işaretler. Gramerler onu olduğu gibi yazar:
// tırnaklanmaz ve yer tutucuya dönüştürülmez.
type Expression struct {
	value string
}

// Raw, value'yu bir Expression olarak sarar.
func Raw(value string) Expression {
	return Expression{value: value}
}

// Value, sarılmış SQL'i döndürür.
func (e Expression) Value() string {
	return e.value
}

func (e Expression) String() string {
	return e.value
}

// IsExpression, v'nin bir Expression olup olmadığını bildirir.
func IsExpression(v any) bool {
	_, ok := v.(Expression)
	return ok
}

// ----------------------------------------------------------------------------
// Grammar Interface
// ----------------------------------------------------------------------------

// Grammar, bir Query'yi konumsal "?" yer tutuculu SQL metnine çevirir.
//
// Her derleme metodu argümanlarının saf bir fonksiyonudur. Bağlamalar burada üretilmez;
// sorgu oluşturucu tarafından faz bazında biriktirilir ve yer tutucuların göründüğü
// sırayla düzleştirilir.
type Grammar interface {
	// Name, gramerin kimliğini döndürür ("ansi", "mysql", "postgres", "sqlite", "sqlserver").
	Name() string

	// TablePrefix, expression olmayan her tablo referansının önüne eklenen öneki döndürür.
	TablePrefix() string

	// SetTablePrefix, tablo önekini değiştirir.
	SetTablePrefix(prefix string)

	// DateFormat, zaman değerleri bağlanırken kullanılan Go zaman düzenini döndürür.
	DateFormat() string

	Wrap(value any) string
	WrapTable(table any) string
	Columnize(columns []any) string
	Parameter(value any) string
	Parameterize(values []any) string

	CompileSelect(q *Query) (string, error)

	CompileInsert(q *Query, rows []map[string]any) (string, error)
	CompileInsertIgnore(q *Query, rows []map[string]any) (string, error)
	CompileReplace(q *Query, rows []map[string]any) (string, error)
	CompileInsertOnDuplicateKeyUpdate(q *Query, rows []map[string]any, update map[string]any) (string, error)

	// CompileInsertGetID, yeni birincil anahtarı üreten bir insert derler.
	// ReturnsID, ifadenin anahtarı sonuç satırı olarak döndürüp döndürmediğini bildirir.
	CompileInsertGetID(q *Query, row map[string]any, sequence string) (string, error)
	ReturnsID() bool

	CompileInsertSelect(q *Query, columns []any, sub *Query) (string, error)
	CompileInsertIgnoreSelect(q *Query, columns []any, sub *Query) (string, error)
	CompileReplaceSelect(q *Query, columns []any, sub *Query) (string, error)
	CompileInsertSelectOnDuplicateKeyUpdate(q *Query, columns []any, sub *Query, update map[string]any) (string, error)

	// SelectBindings, b'yi CompileSelect'in yer tutucuları yazdığı sırayla düzleştirir.
	SelectBindings(q *Query, b Bindings) []any

	CompileUpdate(q *Query, values map[string]any) (string, error)

	// UpdateBindings, UPDATE bağlamalarını CompileUpdate'in yer tutucu düzenine göre sıralar.
	// values, expression'lardan arındırılmış SET bağlamalarıdır.
	UpdateBindings(q *Query, b Bindings, values []any) []any

	CompileDelete(q *Query) (string, error)

	// DeleteBindings, CompileDelete'in yazdığı yer tutucuların bağlamalarını döndürür.
	DeleteBindings(q *Query, b Bindings) []any

	CompileTruncate(q *Query) ([]Statement, error)
	CompileInfile(q *Query, infile *InfileClause) (string, error)
}

// Statement, kendi bağlamalarıyla derlenmiş tek bir ifadedir.
type Statement struct {
	SQL      string
	Bindings []any
}

// ----------------------------------------------------------------------------
// Bağlama fazları
// ----------------------------------------------------------------------------

// Phase, bir bağlamanın ait olduğu ifade bölümünü adlandırır.
type Phase string

const (
	PhaseSelect Phase = "select"
	PhaseJoin   Phase = "join"
	PhaseWhere  Phase = "where"
	PhaseHaving Phase = "having"
	PhaseOrder  Phase = "order"
	PhaseUnion  Phase = "union"
)

// Phases, bağlama fazlarını yer tutucu sırasıyla listeler.
var Phases = []Phase{PhaseSelect, PhaseJoin, PhaseWhere, PhaseHaving, PhaseOrder, PhaseUnion}

// IsValid, p'nin bilinen bir faz olup olmadığını bildirir.
func (p Phase) IsValid() bool {
	return slices.Contains(Phases, p)
}

// Bindings, faza göre anahtarlanmış bağlı değerleri tutar.
type Bindings map[Phase][]any

// NewBindings, boş bir bağlama kümesi döndürür.
func NewBindings() Bindings {
	return make(Bindings, len(Phases))
}

// Add, değerleri faza ekler.
func (b Bindings) Add(phase Phase, values ...any) error {
	if !phase.IsValid() {
		return &DialectError{Message: fmt.Sprintf("invalid binding phase %q", phase)}
	}
	b[phase] = append(b[phase], values...)
	return nil
}

// Set, fazın değerlerini değiştirir.
func (b Bindings) Set(phase Phase, values []any) error {
	if !phase.IsValid() {
		return &DialectError{Message: fmt.Sprintf("invalid binding phase %q", phase)}
	}
	b[phase] = slices.Clone(values)
	return nil
}

// Merge, other'ın her fazını b'nin karşılık gelen fazına ekler.
func (b Bindings) Merge(other Bindings) {
	for _, phase := range Phases {
		if len(other[phase]) > 0 {
			b[phase] = append(b[phase], other[phase]...)
		}
	}
}

// Flatten, tüm değerleri faz sırasıyla döndürür. skip'teki fazlar atlanır.
func (b Bindings) Flatten(skip ...Phase) []any {
	out := make([]any, 0)
	for _, phase := range Phases {
		if slices.Contains(skip, phase) {
			continue
		}
		out = append(out, b[phase]...)
	}
	return out
}

// Clone, bağlama kümesini kopyalar.
func (b Bindings) Clone() Bindings {
	c := NewBindings()
	for phase, values := range b {
		c[phase] = slices.Clone(values)
	}
	return c
}

// CleanBindings, expression'ları values'tan çıkarır; onları gramer satır içine yazar.
func CleanBindings(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		if !IsExpression(v) {
			out = append(out, v)
		}
	}
	return out
}

// SortedColumns, row anahtarlarını gramerlerin yazdığı sırayla döndürür.
func SortedColumns(row map[string]any) []string {
	keys := slices.Collect(maps.Keys(row))
	sort.Strings(keys)
	return keys
}

// ----------------------------------------------------------------------------
// WHERE Cümle Tipleri
// ----------------------------------------------------------------------------

// WhereType, bir koşul düğümünün türünü belirtir.
type WhereType int

const (
	WhereTypeBasic WhereType = iota
	WhereTypeBetween
	WhereTypeIn
	WhereTypeNotIn
	WhereTypeInSub
	WhereTypeNotInSub
	WhereTypeNull
	WhereTypeNotNull
	WhereTypeExists
	WhereTypeNotExists
	WhereTypeNested
	WhereTypeSub
	WhereTypeRaw
	WhereTypeDay
	WhereTypeMonth
	WhereTypeYear
)

func (t WhereType) String() string {
	names := [...]string{
		"Basic", "Between", "In", "NotIn", "InSub", "NotInSub",
		"Null", "NotNull", "Exists", "NotExists", "Nested", "Sub",
		"Raw", "Day", "Month", "Year",
	}
	if int(t) >= 0 && int(t) < len(names) {
		return names[t]
	}
	return "Unknown"
}

// WhereBoolean, bir koşulun önüne konan bağlaçtır.
type WhereBoolean string

const (
	WhereBooleanAnd WhereBoolean = "and"
	WhereBooleanOr  WhereBoolean = "or"
)

func (b WhereBoolean) String() string {
	if b == "" {
		return string(WhereBooleanAnd)
	}
	return string(b)
}

// WhereClause, tek bir koşul düğümüdür. Hangi alanların kullanıldığı Type'a bağlıdır.
type WhereClause struct {
	Type     WhereType
	Boolean  WhereBoolean
	Column   any    // string veya Expression
	Operator string // basit, alt sorgu ve tarih koşulları
	Value    any    // basit ve tarih koşulları
	Values   []any  // in, not in, between
	Not      bool   // between
	Query    *Query // iç içe, alt sorgu, exists, in-sub
	SQL      string // ham
}

// ----------------------------------------------------------------------------
// ORDER BY Tipleri
// ----------------------------------------------------------------------------

// OrderDirection, bir ORDER BY teriminin yönüdür.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "asc"
	OrderDesc OrderDirection = "desc"
)

// IsValid, d'nin asc veya desc olup olmadığını bildirir.
func (d OrderDirection) IsValid() bool {
	return d == OrderAsc || d == OrderDesc
}

// OrderClause, bir kolon sıralamasıdır; SQL doluysa ham sıralamadır.
type OrderClause struct {
	Column    any
	Direction OrderDirection
	SQL       string
}

// ----------------------------------------------------------------------------
// Aggregate ve union
// ----------------------------------------------------------------------------

// Aggregate, varsa select listesini belirler.
type Aggregate struct {
	Function string
	Columns  []any
}

// Union, UNION veya UNION ALL ile eklenen bir sorgudur.
type Union struct {
	Query *Query
	All   bool
}

// ----------------------------------------------------------------------------
// Sorgu tanımı
// ----------------------------------------------------------------------------

// Query, tek bir SQL ifadesinin yapılandırılmış gösterimidir.
//
// nil bir Columns dilimi select listesinin seçilmediği anlamına gelir ve "*" olarak derlenir.
// Lock; nil, bool (true ise özel kilit) veya dialect'e özgü bir string'dir.
type Query struct {
	Aggregate *Aggregate
	Columns   []any
	Distinct  bool
	From      any
	Joins     []*JoinClause
	Wheres    []WhereClause
	Groups    []any
	Rollup    bool
	Havings   []WhereClause
	Orders    []OrderClause
	Limit     *int
	Offset    *int
	Unions    []Union
	Lock      any
	Outfile   *OutfileClause
}

// Clone, sorgu tanımını kopyalar. İç içe sorgular paylaşılır; eklendikten sonra
// hiç değiştirilmezler.
func (q *Query) Clone() *Query {
	c := *q
	if q.Aggregate != nil {
		agg := *q.Aggregate
		agg.Columns = slices.Clone(q.Aggregate.Columns)
		c.Aggregate = &agg
	}
	c.Columns = slices.Clone(q.Columns)
	c.Joins = slices.Clone(q.Joins)
	c.Wheres = slices.Clone(q.Wheres)
	c.Groups = slices.Clone(q.Groups)
	c.Havings = slices.Clone(q.Havings)
	c.Orders = slices.Clone(q.Orders)
	c.Unions = slices.Clone(q.Unions)
	if q.Limit != nil {
		n := *q.Limit
		c.Limit = &n
	}
	if q.Offset != nil {
		n := *q.Offset
		c.Offset = &n
	}
	return &c
}

// ----------------------------------------------------------------------------
// Hatalar
// ----------------------------------------------------------------------------

var (
	// ErrUnsupported, her UnsupportedError ile eşleşir.
	ErrUnsupported = errors.New("dialect: unsupported grammar operation")

	ErrNoTable        = &DialectError{Message: "no table specified"}
	ErrEmptyInsert    = &DialectError{Message: "cannot insert an empty set of rows"}
	ErrNoColumns      = &DialectError{Message: "no columns specified"}
	ErrInvalidLines   = &DialectError{Message: "ignore lines must be a positive integer"}
	ErrUnknownWhere   = &DialectError{Message: "unknown where type"}
	ErrNoInfileColumn = &DialectError{Message: "infile requires at least one column"}
)

// DialectError, bir gramerin derleme sırasında ürettiği hatadır.
type DialectError struct {
	Message string
}

func (e *DialectError) Error() string {
	return "dialect: " + e.Message
}

// UnsupportedError, gramerin ifade edemediği bir işlemi bildirir.
type UnsupportedError struct {
	Operation string
	Grammar   string
}

func (e *UnsupportedError) Error() string {
	return e.Operation + " is not supported by the " + e.Grammar + " grammar driver"
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

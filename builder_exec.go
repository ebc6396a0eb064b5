package database

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/mrjgreen/database/dialect"
)

// -----------------------------------------------------------------------------
//  Builder Çalıştırma Katmanı
//
//  Bu dosyadaki metotlar Builder'ın biriktirdiği sorguyu grammar ile derler ve
//  Executor üzerinden çalıştırır. Her işlemin bir XContext sürümü vardır; sık
//  kullanılanların context.Background() ile çağıran kısa sürümleri de bulunur.
//
//  Zincir sırasında biriken hata varsa hiçbir sorgu çalıştırılmaz.
//
//  -- @author   Ahmet ALTUN
//  -- @github   github.com/biyonik
//  -- @linkedin linkedin.com/in/biyonik
//  -- @email    ahmet.altun60@gmail.com
// -----------------------------------------------------------------------------

// ---- Okumalar ----

// GetContext, SELECT sorgusunu çalıştırır ve tüm satırları döndürür. columns
// verilirse ve henüz bir seçim yapılmamışsa seçim olarak kullanılır.
func (b *Builder) GetContext(ctx context.Context, columns ...any) ([]Row, error) {
	if len(columns) > 0 && b.query.Columns == nil {
		b.query.Columns = columns
	}
	exec, err := b.exec()
	if err != nil {
		return nil, err
	}
	sql, bindings, err := b.ToSQL()
	if err != nil {
		return nil, err
	}
	return exec.Select(ctx, sql, bindings, !b.useWrite)
}

// Get, GetContext'in context.Background() ile çağrılan sürümüdür.
func (b *Builder) Get(columns ...any) ([]Row, error) {
	return b.GetContext(context.Background(), columns...)
}

// FirstContext, ilk satırı döndürür. Satır yoksa ErrNoRows döner.
func (b *Builder) FirstContext(ctx context.Context, columns ...any) (Row, error) {
	rows, err := b.Take(1).GetContext(ctx, columns...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows[0], nil
}

// First, FirstContext'in kısa sürümüdür.
func (b *Builder) First(columns ...any) (Row, error) {
	return b.FirstContext(context.Background(), columns...)
}

// FindContext, "id" kolonuna göre tek bir satır getirir.
func (b *Builder) FindContext(ctx context.Context, id any, columns ...any) (Row, error) {
	return b.Where("id", "=", id).FirstContext(ctx, columns...)
}

// Find, FindContext'in kısa sürümüdür.
func (b *Builder) Find(id any, columns ...any) (Row, error) {
	return b.FindContext(context.Background(), id, columns...)
}

// PluckContext, ilk satırdaki tek bir kolonun değerini döndürür.
func (b *Builder) PluckContext(ctx context.Context, column string) (any, error) {
	row, err := b.FirstContext(ctx, column)
	if err != nil {
		return nil, err
	}
	v, ok := columnValue(row, resultKey(column))
	if !ok {
		return nil, ErrNoRows
	}
	return v, nil
}

// Pluck, PluckContext'in kısa sürümüdür.
func (b *Builder) Pluck(column string) (any, error) {
	return b.PluckContext(context.Background(), column)
}

// ListsContext, bir kolonun tüm değerlerini sırasıyla döndürür.
func (b *Builder) ListsContext(ctx context.Context, column string) ([]any, error) {
	rows, err := b.GetContext(ctx, column)
	if err != nil {
		return nil, err
	}
	key := resultKey(column)
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		v, _ := columnValue(row, key)
		out = append(out, v)
	}
	return out, nil
}

// Lists, ListsContext'in kısa sürümüdür.
func (b *Builder) Lists(column string) ([]any, error) {
	return b.ListsContext(context.Background(), column)
}

// ListsKeyedContext, column değerlerini key kolonunun metin karşılığına göre
// anahtarlanmış bir harita olarak döndürür. Aynı anahtarda son satır kazanır.
func (b *Builder) ListsKeyedContext(ctx context.Context, column, key string) (map[string]any, error) {
	rows, err := b.GetContext(ctx, column, key)
	if err != nil {
		return nil, err
	}
	valueKey, indexKey := resultKey(column), resultKey(key)
	out := make(map[string]any, len(rows))
	for _, row := range rows {
		out[bindingString(row[indexKey])] = row[valueKey]
	}
	return out, nil
}

// ImplodeContext, bir kolonun değerlerini glue ile birleştirir.
func (b *Builder) ImplodeContext(ctx context.Context, column, glue string) (string, error) {
	values, err := b.ListsContext(ctx, column)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(values))
	for i, v := range values {
		if v != nil {
			parts[i] = bindingString(v)
		}
	}
	return strings.Join(parts, glue), nil
}

// Implode, ImplodeContext'in kısa sürümüdür.
func (b *Builder) Implode(column, glue string) (string, error) {
	return b.ImplodeContext(context.Background(), column, glue)
}

// ChunkContext, sonuçları size büyüklüğündeki sayfalar halinde fn'e verir.
// fn ErrStopChunk dönerse işlem hatasız sona erer.
//
//	err := conn.Table("users").OrderBy("id", "asc").ChunkContext(ctx, 500, func(rows []database.Row) error {
//	    return process(rows)
//	})
func (b *Builder) ChunkContext(ctx context.Context, size int, fn func([]Row) error) error {
	if size < 1 {
		return ErrInvalidChunkSize
	}
	for page := 1; ; page++ {
		rows, err := b.Clone().ForPage(page, size).GetContext(ctx)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		if err := fn(rows); err != nil {
			if errors.Is(err, ErrStopChunk) {
				return nil
			}
			return err
		}
		if len(rows) < size {
			return nil
		}
	}
}

// Chunk, ChunkContext'in kısa sürümüdür.
func (b *Builder) Chunk(size int, fn func([]Row) error) error {
	return b.ChunkContext(context.Background(), size, fn)
}

// ---- Aggregate'ler ----

// AggregateContext, function(columns) as aggregate sorgusunu çalıştırır.
// Builder'ın seçimi çağrıdan sonra eski haline döner. Satır yoksa nil döner.
func (b *Builder) AggregateContext(ctx context.Context, function string, columns ...any) (any, error) {
	if len(columns) == 0 {
		columns = []any{"*"}
	}
	previous := b.query.Columns
	b.query.Aggregate = &dialect.Aggregate{Function: function, Columns: columns}

	rows, err := b.GetContext(ctx)

	b.query.Aggregate = nil
	b.query.Columns = previous

	if err != nil || len(rows) == 0 {
		return nil, err
	}
	v, _ := columnValue(rows[0], "aggregate")
	return v, nil
}

// CountContext, kayıt sayısını döndürür.
func (b *Builder) CountContext(ctx context.Context, columns ...any) (int64, error) {
	v, err := b.AggregateContext(ctx, "count", columns...)
	if err != nil {
		return 0, err
	}
	return toInt64(v)
}

// Count, CountContext'in kısa sürümüdür.
func (b *Builder) Count(columns ...any) (int64, error) {
	return b.CountContext(context.Background(), columns...)
}

// ExistsContext, sorguya uyan en az bir kayıt olup olmadığını bildirir.
func (b *Builder) ExistsContext(ctx context.Context) (bool, error) {
	n, err := b.CountContext(ctx)
	return n > 0, err
}

// Exists, ExistsContext'in kısa sürümüdür.
func (b *Builder) Exists() (bool, error) {
	return b.ExistsContext(context.Background())
}

// MinContext, kolonun en küçük değerini döndürür.
func (b *Builder) MinContext(ctx context.Context, column any) (any, error) {
	return b.AggregateContext(ctx, "min", column)
}

// MaxContext, kolonun en büyük değerini döndürür.
func (b *Builder) MaxContext(ctx context.Context, column any) (any, error) {
	return b.AggregateContext(ctx, "max", column)
}

// SumContext, kolonun toplamını döndürür. Eşleşen kayıt yoksa 0 döner.
func (b *Builder) SumContext(ctx context.Context, column any) (any, error) {
	v, err := b.AggregateContext(ctx, "sum", column)
	if err == nil && v == nil {
		v = int64(0)
	}
	return v, err
}

// AvgContext, kolonun ortalamasını döndürür.
func (b *Builder) AvgContext(ctx context.Context, column any) (any, error) {
	return b.AggregateContext(ctx, "avg", column)
}

// GetTotalRowCountContext, sıralama, limit ve offset olmadan toplam kayıt
// sayısını döndürür. Sayfalama için kullanılır; builder değişmez.
func (b *Builder) GetTotalRowCountContext(ctx context.Context) (int64, error) {
	counter := b.Clone()
	counter.query.Orders = nil
	counter.query.Limit = nil
	counter.query.Offset = nil
	counter.bindings[dialect.PhaseOrder] = nil
	return counter.CountContext(ctx)
}

// GetTotalRowCount, GetTotalRowCountContext'in kısa sürümüdür.
func (b *Builder) GetTotalRowCount() (int64, error) {
	return b.GetTotalRowCountContext(context.Background())
}

// ---- Ekleme ----

// InsertContext, bir ya da daha fazla satır ekler. İlk satırın kolonları
// tüm satırlar için kullanılır.
func (b *Builder) InsertContext(ctx context.Context, rows ...map[string]any) (*QueryResult, error) {
	return b.insertRows(ctx, b.grammar.CompileInsert, rows, nil)
}

// Insert, InsertContext'in kısa sürümüdür.
func (b *Builder) Insert(rows ...map[string]any) (*QueryResult, error) {
	return b.InsertContext(context.Background(), rows...)
}

// InsertIgnoreContext, çakışan satırları atlayarak ekler.
func (b *Builder) InsertIgnoreContext(ctx context.Context, rows ...map[string]any) (*QueryResult, error) {
	return b.insertRows(ctx, b.grammar.CompileInsertIgnore, rows, nil)
}

// ReplaceContext, çakışan satırların yerine yenilerini yazar.
func (b *Builder) ReplaceContext(ctx context.Context, rows ...map[string]any) (*QueryResult, error) {
	return b.insertRows(ctx, b.grammar.CompileReplace, rows, nil)
}

// InsertOnDuplicateKeyUpdateContext, satırları ekler; anahtar çakışmasında
// update içindeki kolonları günceller (MySQL).
func (b *Builder) InsertOnDuplicateKeyUpdateContext(ctx context.Context, rows []map[string]any, update map[string]any) (*QueryResult, error) {
	compile := func(q *dialect.Query, rows []map[string]any) (string, error) {
		return b.grammar.CompileInsertOnDuplicateKeyUpdate(q, rows, update)
	}
	return b.insertRows(ctx, compile, rows, sortedValues(update))
}

func (b *Builder) insertRows(ctx context.Context, compile func(*dialect.Query, []map[string]any) (string, error), rows []map[string]any, extra []any) (*QueryResult, error) {
	exec, err := b.exec()
	if err != nil {
		return nil, err
	}
	sql, err := compile(b.query, rows)
	if err != nil {
		return nil, err
	}
	bindings := append(insertBindings(rows), dialect.CleanBindings(extra)...)
	return b.run(ctx, exec, sql, bindings)
}

// InsertGetIDContext, tek bir satır ekler ve üretilen anahtarı döndürür.
// sequence verilmezse "id" kullanılır.
func (b *Builder) InsertGetIDContext(ctx context.Context, row map[string]any, sequence ...string) (int64, error) {
	exec, err := b.exec()
	if err != nil {
		return 0, err
	}
	seq := "id"
	if len(sequence) > 0 && sequence[0] != "" {
		seq = sequence[0]
	}
	sql, err := b.grammar.CompileInsertGetID(b.query, row, seq)
	if err != nil {
		return 0, err
	}
	bindings := insertBindings([]map[string]any{row})

	if b.grammar.ReturnsID() {
		rows, err := exec.Select(ctx, sql, bindings, false)
		if err != nil || len(rows) == 0 {
			return 0, err
		}
		v, _ := columnValue(rows[0], seq)
		return toInt64(v)
	}

	result, err := exec.Query(ctx, sql, bindings)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// InsertGetID, InsertGetIDContext'in kısa sürümüdür.
func (b *Builder) InsertGetID(row map[string]any, sequence ...string) (int64, error) {
	return b.InsertGetIDContext(context.Background(), row, sequence...)
}

// InsertSelectContext, query (bir *Builder ya da func(*Builder)) sonucunu
// columns kolonlarına ekler.
//
//	conn.Table("users").InsertSelectContext(ctx, func(q *database.Builder) {
//	    q.From("admin").Select("email").Where("name", "John")
//	}, []any{"email"})
func (b *Builder) InsertSelectContext(ctx context.Context, query any, columns []any) (*QueryResult, error) {
	return b.insertSelect(ctx, b.grammar.CompileInsertSelect, query, columns, nil)
}

// InsertIgnoreSelectContext, InsertSelectContext'in çakışmaları atlayan sürümüdür.
func (b *Builder) InsertIgnoreSelectContext(ctx context.Context, query any, columns []any) (*QueryResult, error) {
	return b.insertSelect(ctx, b.grammar.CompileInsertIgnoreSelect, query, columns, nil)
}

// ReplaceSelectContext, InsertSelectContext'in REPLACE sürümüdür.
func (b *Builder) ReplaceSelectContext(ctx context.Context, query any, columns []any) (*QueryResult, error) {
	return b.insertSelect(ctx, b.grammar.CompileReplaceSelect, query, columns, nil)
}

// InsertSelectOnDuplicateKeyUpdateContext, alt sorgu sonucunu ekler ve
// çakışmada update kolonlarını günceller (MySQL).
func (b *Builder) InsertSelectOnDuplicateKeyUpdateContext(ctx context.Context, query any, columns []any, update map[string]any) (*QueryResult, error) {
	compile := func(q *dialect.Query, columns []any, sub *dialect.Query) (string, error) {
		return b.grammar.CompileInsertSelectOnDuplicateKeyUpdate(q, columns, sub, update)
	}
	return b.insertSelect(ctx, compile, query, columns, sortedValues(update))
}

func (b *Builder) insertSelect(ctx context.Context, compile func(*dialect.Query, []any, *dialect.Query) (string, error), query any, columns []any, extra []any) (*QueryResult, error) {
	sub, ok := b.subQuery(query)
	if !ok {
		return nil, b.err
	}
	exec, err := b.exec()
	if err != nil {
		return nil, err
	}
	sql, err := compile(b.query, columns, sub.query)
	if err != nil {
		return nil, err
	}
	bindings := append(sub.Bindings(), dialect.CleanBindings(extra)...)
	return b.run(ctx, exec, sql, bindings)
}

// ---- Güncelleme ve silme ----

// UpdateContext, eşleşen kayıtları values ile günceller.
func (b *Builder) UpdateContext(ctx context.Context, values map[string]any) (*QueryResult, error) {
	exec, err := b.exec()
	if err != nil {
		return nil, err
	}
	sql, err := b.grammar.CompileUpdate(b.query, values)
	if err != nil {
		return nil, err
	}
	bindings := b.grammar.UpdateBindings(b.query, b.bindings, dialect.CleanBindings(sortedValues(values)))
	return b.run(ctx, exec, sql, bindings)
}

// Update, UpdateContext'in kısa sürümüdür.
func (b *Builder) Update(values map[string]any) (*QueryResult, error) {
	return b.UpdateContext(context.Background(), values)
}

// IncrementContext, kolonu amount kadar artırır. extra içindeki kolonlar da
// aynı sorguda güncellenir.
func (b *Builder) IncrementContext(ctx context.Context, column string, amount int64, extra ...map[string]any) (*QueryResult, error) {
	return b.step(ctx, column, "+", amount, extra)
}

// DecrementContext, kolonu amount kadar azaltır.
func (b *Builder) DecrementContext(ctx context.Context, column string, amount int64, extra ...map[string]any) (*QueryResult, error) {
	return b.step(ctx, column, "-", amount, extra)
}

func (b *Builder) step(ctx context.Context, column, sign string, amount int64, extra []map[string]any) (*QueryResult, error) {
	values := make(map[string]any)
	for _, m := range extra {
		for k, v := range m {
			values[k] = v
		}
	}
	values[column] = dialect.Raw(b.grammar.Wrap(column) + " " + sign + " " + strconv.FormatInt(amount, 10))
	return b.UpdateContext(ctx, values)
}

// DeleteContext, eşleşen kayıtları siler.
func (b *Builder) DeleteContext(ctx context.Context) (*QueryResult, error) {
	exec, err := b.exec()
	if err != nil {
		return nil, err
	}
	sql, err := b.grammar.CompileDelete(b.query)
	if err != nil {
		return nil, err
	}
	return b.run(ctx, exec, sql, b.grammar.DeleteBindings(b.query, b.bindings))
}

// Delete, DeleteContext'in kısa sürümüdür.
func (b *Builder) Delete() (*QueryResult, error) {
	return b.DeleteContext(context.Background())
}

// DeleteByIDContext, "id" kolonu verilen değere eşit olan kaydı siler.
func (b *Builder) DeleteByIDContext(ctx context.Context, id any) (*QueryResult, error) {
	return b.Where("id", "=", id).DeleteContext(ctx)
}

// TruncateContext, tabloyu boşaltır. Bazı gramerler birden fazla ifade üretir;
// hepsi sırayla çalıştırılır.
func (b *Builder) TruncateContext(ctx context.Context) error {
	exec, err := b.exec()
	if err != nil {
		return err
	}
	statements, err := b.grammar.CompileTruncate(b.query)
	if err != nil {
		return err
	}
	for _, stmt := range statements {
		if _, err := exec.Query(ctx, stmt.SQL, stmt.Bindings); err != nil {
			return err
		}
	}
	return nil
}

// InfileContext, bir dosyayı tabloya yükler (MySQL LOAD DATA INFILE).
//
//	conn.Table("users").InfileContext(ctx, "/tmp/users.csv", []any{"id", "email"}, func(c *dialect.InfileClause) {
//	    c.FieldsTerminatedBy(",").IgnoreLines(1)
//	})
func (b *Builder) InfileContext(ctx context.Context, file string, columns []any, fn func(*dialect.InfileClause)) (*QueryResult, error) {
	exec, err := b.exec()
	if err != nil {
		return nil, err
	}
	clause := dialect.NewInfileClause(file, columns)
	if fn != nil {
		fn(clause)
	}
	sql, err := b.grammar.CompileInfile(b.query, clause)
	if err != nil {
		return nil, err
	}
	return b.run(ctx, exec, sql, dialect.CleanBindings(sortedValues(clause.Rules)))
}

// Buffer, satırları size'lık gruplar halinde ekleyen bir InsertBuffer döndürür.
func (b *Builder) Buffer(size int) *InsertBuffer {
	return &InsertBuffer{builder: b, size: size}
}

// ---- Yardımcılar ----

// exec, çalıştırılabilir bir executor döndürür ya da biriken hatayı bildirir.
func (b *Builder) exec() (Executor, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.executor == nil {
		return nil, ErrNoExecutor
	}
	return b.executor, nil
}

func (b *Builder) run(ctx context.Context, exec Executor, sql string, bindings []any) (*QueryResult, error) {
	result, err := exec.Query(ctx, sql, bindings)
	if err != nil {
		return nil, err
	}
	return NewQueryResult(result), nil
}

// insertBindings, her satırın değerlerini ilk satırın kolon sırasına göre dizer.
func insertBindings(rows []map[string]any) []any {
	if len(rows) == 0 {
		return nil
	}
	columns := dialect.SortedColumns(rows[0])
	out := make([]any, 0, len(rows)*len(columns))
	for _, row := range rows {
		for _, c := range columns {
			out = append(out, row[c])
		}
	}
	return dialect.CleanBindings(out)
}

// sortedValues, m'nin değerlerini sıralı anahtar düzeninde döndürür.
func sortedValues(m map[string]any) []any {
	columns := dialect.SortedColumns(m)
	out := make([]any, len(columns))
	for i, c := range columns {
		out[i] = m[c]
	}
	return out
}

// resultKey, seçilen bir kolonu sonuç satırındaki anahtarına eşler:
// "users.name as n" → "n", "users.name" → "name".
func resultKey(column string) string {
	if i := strings.LastIndex(strings.ToLower(column), " as "); i >= 0 {
		return strings.TrimSpace(column[i+4:])
	}
	if i := strings.LastIndex(column, "."); i >= 0 {
		return column[i+1:]
	}
	return column
}

package database

import (
	"context"
	"iter"
	"slices"
)

// InsertBuffer, bir satır kaynağını size'lık gruplar halinde tek INSERT
// ifadeleriyle yazar. Builder.Buffer ile oluşturulur.
//
//	n, err := conn.Table("events").Buffer(500).Insert(ctx, database.Rows(events...))
type InsertBuffer struct {
	builder *Builder
	size    int
}

// Rows, bir satır dilimini InsertBuffer'ın beklediği kaynağa çevirir.
func Rows(rows ...map[string]any) iter.Seq[map[string]any] {
	return slices.Values(rows)
}

// Size, bir gruptaki satır sayısını döndürür.
func (ib *InsertBuffer) Size() int {
	return ib.size
}

// Insert, satırları INSERT ile yazar ve etkilenen toplam satır sayısını döndürür.
func (ib *InsertBuffer) Insert(ctx context.Context, rows iter.Seq[map[string]any]) (int64, error) {
	return ib.flushEach(ctx, rows, ib.builder.InsertContext)
}

// InsertIgnore, satırları INSERT IGNORE ile yazar.
func (ib *InsertBuffer) InsertIgnore(ctx context.Context, rows iter.Seq[map[string]any]) (int64, error) {
	return ib.flushEach(ctx, rows, ib.builder.InsertIgnoreContext)
}

// Replace, satırları REPLACE ile yazar.
func (ib *InsertBuffer) Replace(ctx context.Context, rows iter.Seq[map[string]any]) (int64, error) {
	return ib.flushEach(ctx, rows, ib.builder.ReplaceContext)
}

// InsertOnDuplicateKeyUpdate, her grubu aynı update kolonlarıyla yazar.
func (ib *InsertBuffer) InsertOnDuplicateKeyUpdate(ctx context.Context, rows iter.Seq[map[string]any], update map[string]any) (int64, error) {
	return ib.flushEach(ctx, rows, func(ctx context.Context, batch ...map[string]any) (*QueryResult, error) {
		return ib.builder.InsertOnDuplicateKeyUpdateContext(ctx, batch, update)
	})
}

type flushFunc func(ctx context.Context, rows ...map[string]any) (*QueryResult, error)

// flushEach, kaynak bitene kadar her size satırda bir, sonunda da kalan
// satırlar için flush çağırır.
func (ib *InsertBuffer) flushEach(ctx context.Context, rows iter.Seq[map[string]any], flush flushFunc) (int64, error) {
	if ib.size < 1 {
		return 0, ErrInvalidChunkSize
	}

	var (
		total int64
		batch = make([]map[string]any, 0, ib.size)
	)
	write := func() error {
		result, err := flush(ctx, batch...)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		total += n
		batch = batch[:0]
		return nil
	}

	for row := range rows {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		batch = append(batch, row)
		if len(batch) == ib.size {
			if err := write(); err != nil {
				return total, err
			}
		}
	}
	if len(batch) > 0 {
		if err := write(); err != nil {
			return total, err
		}
	}
	return total, nil
}

package database

import (
	"fmt"
	"strconv"

	"github.com/mrjgreen/database/connectors"
)

//
// =====================================================================================
// 📚 DATABASE – SCANNER BİRİMİ
// -------------------------------------------------------------------------------------
// Bu dosya, sürücüden gelen imleçlerin (connectors.Rows) Row haritalarına ya da
// sıralı değer listelerine aktarılmasını sağlar.
//
// Çalışma biçimi:
//   1. Kolon adları imleçten bir kez okunur
//   2. Her satır için kolon sayısı kadar `any` hedefi hazırlanır
//   3. FetchAssoc modunda []byte değerler string'e çevrilir
//   4. İmleç her durumda kapatılır
//
// YAZAR BİLGİSİ
// @author    Ahmet ALTUN
// @github    github.com/biyonik
// @linkedin  linkedin.com/in/biyonik
// @email     ahmet.altun60@gmail.com
// =====================================================================================
//

// emptyRows, pretend modunda verilen imleçtir.
type emptyRows struct{}

func (emptyRows) Columns() ([]string, error) { return nil, nil }
func (emptyRows) Next() bool                 { return false }
func (emptyRows) Scan(...any) error          { return ErrNoRows }
func (emptyRows) Err() error                 { return nil }
func (emptyRows) Close() error               { return nil }

var _ connectors.Rows = emptyRows{}

// scanRows, en fazla limit satır okur (limit < 1 ise tümünü) ve imleci kapatır.
func scanRows(rows connectors.Rows, mode FetchMode, limit int) ([]Row, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, WrapError("get columns", err)
	}

	out := make([]Row, 0)
	for rows.Next() {
		values, err := scanValues(rows, len(columns), mode)
		if err != nil {
			return nil, err
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		out = append(out, row)
		if limit > 0 && len(out) >= limit {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, WrapError("rows iteration", err)
	}
	return out, nil
}

// scanNumeric, ilk satırı sıralı bir değer listesi olarak okur.
func scanNumeric(rows connectors.Rows, mode FetchMode) ([]any, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, WrapError("get columns", err)
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, WrapError("rows iteration", err)
		}
		return nil, ErrNoRows
	}
	return scanValues(rows, len(columns), mode)
}

func scanValues(rows connectors.Rows, n int, mode FetchMode) ([]any, error) {
	values := make([]any, n)
	dest := make([]any, n)
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, WrapError("scan row", err)
	}
	if mode == FetchAssoc {
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
	}
	return values, nil
}

// columnValue, row[key] değerini ya da tek kolonlu bir satırın tek değerini döndürür.
func columnValue(row Row, key string) (any, bool) {
	if v, ok := row[key]; ok {
		return v, true
	}
	if len(row) == 1 {
		for _, v := range row {
			return v, true
		}
	}
	return nil, false
}

// toInt64, taranan sayısal bir değeri çevirir.
func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	return 0, fmt.Errorf("database: cannot convert %T to int64", v)
}

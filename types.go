package database

import (
	"database/sql"
	"database/sql/driver"

	"github.com/mrjgreen/database/connectors"
	"github.com/mrjgreen/database/dialect"
)

/*
 * ----------------------------------------------------------------------------
 * DATABASE TYPE DEFINITIONS
 * ----------------------------------------------------------------------------
 *
 * Bu dosya paketin veri taşıma tiplerini toplar: sorgu sonuçları, satırlar,
 * fetch modları ve alt paketlerden dışarı açılan takma adlar.
 *
 * Ham `sql.Result` nesnesi QueryResult ile sarmalanır; pretend modunda
 * çalıştırılmayan bir sorgu da etkisiz bir sonuç döndürür, böylece çağıran
 * taraf nil kontrolü yapmak zorunda kalmaz.
 *
 * @author Ahmet ALTUN
 * @github github.com/biyonik
 * @linkedin linkedin.com/in/biyonik
 * @email ahmet.altun60@gmail.com
 * ----------------------------------------------------------------------------
 */

// ----------------------------------------------------------------------------
// Takma adlar
// ----------------------------------------------------------------------------

// Expression, bir SQL parçasını ham olarak işaretler. Tırnaklanmaz ve bağlanmaz.
type Expression = dialect.Expression

// Config, isimli tek bir bağlantının yapılandırmasıdır.
type Config = connectors.Config

// Handle, canlı bir sürücü oturumudur.
type Handle = connectors.Handle

// Raw, value'yu bir Expression olarak sarar.
func Raw(value string) Expression {
	return dialect.Raw(value)
}

// ----------------------------------------------------------------------------
// Satırlar
// ----------------------------------------------------------------------------

// Row, kolon adına göre anahtarlanmış bir sonuç satırıdır.
type Row map[string]any

// FetchMode, kolon değerlerinin nasıl döndürüleceğini belirler.
type FetchMode int

const (
	// FetchAssoc, []byte kolon değerlerini string'e çevirir.
	FetchAssoc FetchMode = iota
	// FetchRaw, değerleri sürücünün taradığı haliyle bırakır.
	FetchRaw
)

func (m FetchMode) String() string {
	if m == FetchRaw {
		return "raw"
	}
	return "assoc"
}

// ----------------------------------------------------------------------------
// Sorgu Sonuç Tipleri
// ----------------------------------------------------------------------------

// QueryResult, bir INSERT, UPDATE veya DELETE sonucunu sarar.
type QueryResult struct {
	result sql.Result
}

// inertResult, bağlantı pretend modundayken bir ifadenin döndürdüğü sonuçtur.
var inertResult sql.Result = driver.RowsAffected(0)

// NewQueryResult, result'ı sarar.
func NewQueryResult(result sql.Result) *QueryResult {
	return &QueryResult{result: result}
}

// LastInsertID, sürücü bildiriyorsa ifadenin ürettiği id'yi döndürür.
func (r *QueryResult) LastInsertID() (int64, error) {
	if r == nil || r.result == nil {
		return 0, ErrNoRows
	}
	return r.result.LastInsertId()
}

// RowsAffected, ifadenin değiştirdiği satır sayısını döndürür.
func (r *QueryResult) RowsAffected() (int64, error) {
	if r == nil || r.result == nil {
		return 0, ErrNoRows
	}
	return r.result.RowsAffected()
}

// Result, sürücü sonucunu döndürür.
func (r *QueryResult) Result() sql.Result {
	return r.result
}

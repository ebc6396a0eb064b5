// Package validation, sorgu oluşturucunun kabul ettiği karşılaştırma operatörlerini ve
// bağlantı kurulumunda kullanılan tanımlayıcıları (charset, collation, schema) doğrular.
//
// Yazar: Ahmet ALTUN
// Github: github.com/biyonik
// LinkedIn: linkedin.com/in/biyonik
// Email: ahmet.altun60@gmail.com
package validation

import "strings"

// operators, WHERE, HAVING ve JOIN cümlelerinde kabul edilen operatörlerdir.
// Karşılaştırma küçük harfe çevrilmiş hali üzerinden yapılır.
var operators = map[string]bool{
	// Karşılaştırma
	"=":   true,
	"<":   true,
	">":   true,
	"<=":  true,
	">=":  true,
	"<>":  true,
	"!=":  true,
	"<=>": true,

	// Desen eşleştirme
	"like":           true,
	"not like":       true,
	"ilike":          true,
	"between":        true,
	"rlike":          true,
	"regexp":         true,
	"not regexp":     true,
	"similar to":     true,
	"not similar to": true,
	"~":              true,
	"~*":             true,
	"!~":             true,
	"!~*":            true,

	// Bit operatörleri
	"&":  true,
	"|":  true,
	"^":  true,
	"<<": true,
	">>": true,
}

func normalize(op string) string {
	return strings.ToLower(strings.TrimSpace(op))
}

// IsValidOperator, operatörün izin verilen listede olup olmadığını döndürür.
// Sorgu oluşturucu bu bilgiyi "where(col, value)" kısaltmasını tanımak için kullanır.
func IsValidOperator(op string) bool {
	return operators[normalize(op)]
}

// ValidateOperator, operatör listede değilse OperatorError döner.
func ValidateOperator(op string) error {
	if !IsValidOperator(op) {
		return &OperatorError{
			Operator: op,
			Reason:   "operator not in allowed list",
		}
	}
	return nil
}

// Operators, izin verilen tüm operatörleri döndürür.
func Operators() []string {
	ops := make([]string, 0, len(operators))
	for op := range operators {
		ops = append(ops, op)
	}
	return ops
}

// OperatorError, operatör doğrulama hatasını temsil eder.
type OperatorError struct {
	Operator string
	Reason   string
}

func (e *OperatorError) Error() string {
	return "database: invalid operator '" + e.Operator + "': " + e.Reason
}

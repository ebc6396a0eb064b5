package validation

import (
	"regexp"
	"strings"
)

// identifierRegex, bağlantı kurulumunda SQL metnine doğrudan yazılan isimleri doğrular
// (charset, collation, schema). İlk karakter harf veya alt çizgi olmalıdır.
var identifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_$]*$`)

// ValidateIdentifier, id geçerli bir SQL tanımlayıcısı değilse IdentifierError döner.
func ValidateIdentifier(id string) error {
	if id == "" {
		return &IdentifierError{
			Identifier: id,
			Reason:     "identifier cannot be empty",
		}
	}

	if len(id) > 128 {
		return &IdentifierError{
			Identifier: id,
			Reason:     "identifier exceeds maximum length of 128 characters",
		}
	}

	if !identifierRegex.MatchString(id) {
		return &IdentifierError{
			Identifier: id,
			Reason:     "identifier contains invalid characters; only letters, numbers, underscores and dollar signs are allowed",
		}
	}

	return nil
}

// ValidateIdentifierList, virgülle ayrılmış bir listeyi (örn: "public, app") doğrular
// ve kırpılmış elemanları döndürür.
func ValidateIdentifierList(list string) ([]string, error) {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if err := ValidateIdentifier(p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// IdentifierError, tanımlayıcı doğrulama hatalarını temsil eder.
type IdentifierError struct {
	Identifier string
	Reason     string
}

// Error, error arayüzünü uygular.
func (e *IdentifierError) Error() string {
	if e.Identifier == "" {
		return "database: invalid identifier: " + e.Reason
	}
	return "database: invalid identifier '" + e.Identifier + "': " + e.Reason
}

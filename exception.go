package database

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mrjgreen/database/connectors"
)

// DefaultMaxSQLLength, bir QueryError mesajına gömülen ifadenin üst sınırıdır.
const DefaultMaxSQLLength = 1000

// ExceptionHandler, bir ifadenin ürettiği sürücü hatasını çağırana dönen hataya çevirir.
type ExceptionHandler interface {
	Handle(query string, bindings []any, err error) error
}

// ExceptionHandlerFunc, bir fonksiyonu ExceptionHandler'a uyarlar.
type ExceptionHandlerFunc func(query string, bindings []any, err error) error

func (f ExceptionHandlerFunc) Handle(query string, bindings []any, err error) error {
	return f(query, bindings, err)
}

// DefaultExceptionHandler, mesajı sürücü mesajı, her tanılama parametresi için bir
// "ad: değer" satırı ve bağlamaları yerine konmuş son bir "SQL: ..." satırından
// oluşan bir QueryError üretir.
type DefaultExceptionHandler struct {
	params       map[string]any
	maxSQLLength int
}

var _ ExceptionHandler = (*DefaultExceptionHandler)(nil)

// NewExceptionHandler, her hatayla params'ı raporlayan bir handler döndürür.
// 1'den küçük maxSQLLength DefaultMaxSQLLength'i kullanır.
func NewExceptionHandler(params map[string]any, maxSQLLength int) *DefaultExceptionHandler {
	if maxSQLLength < 1 {
		maxSQLLength = DefaultMaxSQLLength
	}
	return &DefaultExceptionHandler{params: params, maxSQLLength: maxSQLLength}
}

func (h *DefaultExceptionHandler) Handle(query string, bindings []any, err error) error {
	if err == nil {
		return nil
	}

	names := make([]string, 0, len(h.params))
	for name := range h.params {
		names = append(names, name)
	}
	sort.Strings(names)

	var msg strings.Builder
	msg.WriteString(err.Error())
	for _, name := range names {
		fmt.Fprintf(&msg, "\n%s: %v", name, h.params[name])
	}
	msg.WriteString("\nSQL: ")
	msg.WriteString(truncate(substituteBindings(query, bindings), h.maxSQLLength))

	code, info, _ := connectors.ErrorCode(err)
	return &QueryError{
		Err:       err,
		SQL:       query,
		Bindings:  bindings,
		Code:      code,
		ErrorInfo: info,
		Message:   msg.String(),
	}
}

// substituteBindings, her "?" işaretini sırasıyla karşılık gelen bağlamayla değiştirir.
func substituteBindings(query string, bindings []any) string {
	if len(bindings) == 0 {
		return query
	}
	var out strings.Builder
	i := 0
	for _, r := range query {
		if r == '?' && i < len(bindings) {
			out.WriteString(bindingString(bindings[i]))
			i++
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

func bindingString(v any) string {
	switch b := v.(type) {
	case nil:
		return "null"
	case []byte:
		return string(b)
	case time.Time:
		return b.Format(time.DateTime)
	}
	return fmt.Sprint(v)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

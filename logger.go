package database

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Sorgu kayıtlarında kullanılan log öznitelik anahtarları.
const (
	LogKeyBindings  = "bindings"
	LogKeyElapsedMS = "elapsed_ms"
)

// QueryLogEntry, loglanmış tek bir ifadedir.
type QueryLogEntry struct {
	Query    string
	Bindings []any
	Time     float64 // geçen süre, milisaniye
	Level    slog.Level
}

type queryLog struct {
	mu      sync.Mutex
	entries []QueryLogEntry
}

// QueryLogger, her kaydı bellekte tutan bir slog.Handler'dır.
//
// Bağlantı her ifadeyi debug seviyesinde "bindings" ve "elapsed_ms" öznitelikleriyle
// loglar; QueryLogger bu kayıtları QueryLogEntry değerlerine geri çevirir.
type QueryLogger struct {
	log *queryLog
}

var _ slog.Handler = (*QueryLogger)(nil)

// NewQueryLogger, boş bir bellek içi logger döndürür.
func NewQueryLogger() *QueryLogger {
	return &QueryLogger{log: &queryLog{}}
}

func (l *QueryLogger) Enabled(context.Context, slog.Level) bool {
	return true
}

func (l *QueryLogger) Handle(_ context.Context, r slog.Record) error {
	entry := QueryLogEntry{Query: r.Message, Level: r.Level}
	r.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case LogKeyBindings:
			if b, ok := a.Value.Any().([]any); ok {
				entry.Bindings = slices.Clone(b)
			}
		case LogKeyElapsedMS:
			if a.Value.Kind() == slog.KindFloat64 {
				entry.Time = a.Value.Float64()
			}
		}
		return true
	})

	l.log.mu.Lock()
	l.log.entries = append(l.log.entries, entry)
	l.log.mu.Unlock()
	return nil
}

// WithAttrs ve WithGroup alttaki kaydı paylaşır.
func (l *QueryLogger) WithAttrs([]slog.Attr) slog.Handler {
	return l
}

func (l *QueryLogger) WithGroup(string) slog.Handler {
	return l
}

// QueryLog, kaydedilen girdilerin bir kopyasını döndürür.
func (l *QueryLogger) QueryLog() []QueryLogEntry {
	l.log.mu.Lock()
	defer l.log.mu.Unlock()
	return slices.Clone(l.log.entries)
}

// Flush, kaydı temizler.
func (l *QueryLogger) Flush() {
	l.log.mu.Lock()
	l.log.entries = nil
	l.log.mu.Unlock()
}

// elapsedMS, d'yi iki ondalıklı milisaniyeye yuvarlar.
func elapsedMS(d time.Duration) float64 {
	ms := float64(d.Microseconds()) / 1000
	return float64(int64(ms*100+0.5)) / 100
}

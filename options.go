package database

import (
	"log/slog"

	"github.com/mrjgreen/database/dialect"
)

// -----------------------------------------------------------------------------
//  Bu dosya; Connection yapısının yapılandırma katmanını oluşturan Option
//  mimarisini içerir. Her With* fonksiyonu, NewConnection çağrısına eklenen
//  küçük bir ayardır: grammar, okuma bağlantısı, yeniden bağlanma stratejisi,
//  hata çevirici, logger.
//
//  Factory de bağlantıları aynı seçeneklerle kurar; elle kurulan bir
//  Connection ile factory'den gelen arasında davranış farkı yoktur.
//
//  -- @author   Ahmet ALTUN
//  -- @github   github.com/biyonik
//  -- @linkedin linkedin.com/in/biyonik
//  -- @email    ahmet.altun60@gmail.com
// -----------------------------------------------------------------------------

// Option, bir *Connection üzerinde çalışan yapılandırma fonksiyonudur.
type Option func(*Connection)

// WithGrammar, bağlantının kullanacağı SQL gramerini belirler. Varsayılan
// dialect.NewGrammar() ile dönen ANSI gramerdir.
//
// Örnek:
//
//	conn := database.NewConnection(h, database.WithGrammar(dialect.Postgres()))
func WithGrammar(g dialect.Grammar) Option {
	return func(c *Connection) {
		c.grammar = g
	}
}

// WithTablePrefix, tüm tablo adlarına otomatik olarak prefix ekler.
//
//	conn.Table("users")  →  "app_users"
func WithTablePrefix(prefix string) Option {
	return func(c *Connection) {
		c.tablePrefix = prefix
	}
}

// WithReadHandle, SELECT sorgularının gönderileceği ayrı bir okuma oturumu tanımlar.
func WithReadHandle(h Handle) Option {
	return func(c *Connection) {
		c.read = h
	}
}

// WithReconnector, kopan bağlantının yeniden kurulmasını sağlayan stratejiyi atar.
func WithReconnector(r Reconnector) Option {
	return func(c *Connection) {
		c.reconnector = r
	}
}

// WithExceptionHandler, sürücü hatalarını çeviren bileşeni değiştirir.
func WithExceptionHandler(h ExceptionHandler) Option {
	return func(c *Connection) {
		c.exceptions = h
	}
}

// WithLogger, sorgu kayıtlarının yazılacağı slog.Logger'ı belirler. Kayıt
// yalnızca query log açıkken yapılır.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Connection) {
		c.logger = logger
	}
}

// WithQueryLog, sorgu kaydını başlangıçta açar.
func WithQueryLog(enabled bool) Option {
	return func(c *Connection) {
		c.logging = enabled
	}
}

// WithFetchMode, satır değerlerinin nasıl döndürüleceğini belirler.
func WithFetchMode(mode FetchMode) Option {
	return func(c *Connection) {
		c.fetchMode = mode
	}
}

// WithName, bağlantıya resolver'daki adını verir.
func WithName(name string) Option {
	return func(c *Connection) {
		c.name = name
	}
}

// applyOptions, verilen bütün Option'ları sırayla uygular; nil olanlar atlanır.
func applyOptions(c *Connection, opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
}

package database

import (
	"context"

	"github.com/mrjgreen/database/dialect"
)

// Version, kütüphanenin mevcut sürümünü belirtir.
const Version = "0.2.0"

// Open, tek bir yapılandırmadan varsayılan factory ile bağlantı kurar.
// Lazy olmayan yapılandırmalarda oturum hemen açılır.
//
// Örnek:
//
//	conn, err := database.Open(ctx, database.Config{
//	    Driver:   "mysql",
//	    Host:     "localhost",
//	    Port:     3306,
//	    Database: "mydb",
//	    Username: "user",
//	    Password: "pass",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Disconnect()
func Open(ctx context.Context, cfg Config, opts ...FactoryOption) (*Connection, error) {
	return NewConnectionFactory(opts...).Make(ctx, cfg)
}

// New, veritabanı bağlantısı olmadan yeni bir Builder oluşturur.
// SQL stringleri oluşturmak ve sorgu yürütmeden hazırlık yapmak için kullanılır.
// grammar nil ise ANSI grammar kullanılır.
//
// Örnek:
//
//	sql, bindings, err := database.New(dialect.MySQL()).
//	    From("users").
//	    Select("id", "name").
//	    Where("status", "active").
//	    ToSQL()
func New(grammar dialect.Grammar) *Builder {
	return NewBuilder(nil, grammar)
}

// Table, bağlantısız yeni bir Builder oluşturup tabloyu ayarlamak için kısayoldur.
//
// Örnek:
//
//	sql, bindings, err := database.Table("users").
//	    Where("status", "active").
//	    ToSQL()
func Table(name any) *Builder {
	return New(nil).From(name)
}

package database

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"

	"github.com/mrjgreen/database/connectors"
	"github.com/mrjgreen/database/dialect"
)

/*
=======================================================================================================================
  💠 DATABASE – CONNECTION FACTORY 💠
  Bu dosya, bir Config'ten kullanıma hazır bir *Connection üretir.

  Make sırasıyla:
  - Sürücü adını doğrular ve sürücüye uygun grammar'ı seçer (mysql, pgsql, sqlite, sqlsrv).
  - Read/Write uç noktalarını üst düzey ayarların üzerine birleştirir; her bağlantı denemesinde
    adaylar arasından rastgele biri seçilir.
  - Her bağlantıya bir reconnector bağlar. Lazy bağlantılar ilk sorguda kurulur.
  - Hata mesajlarına eklenecek parametreleri (şifre hariç) exception handler'a verir.

  @author    Ahmet ALTUN
  @github    github.com/biyonik
  @linkedin  linkedin.com/in/biyonik
  @email     ahmet.altun60@gmail.com
=======================================================================================================================
*/

// ConnectionFactory, yapılandırmadan bağlantı üretir. Üretilen bağlantılar
// birbirinden bağımsızdır.
type ConnectionFactory struct {
	connectors   map[string]connectors.Connector
	logger       *slog.Logger
	maxSQLLength int
	queryLog     bool
}

// FactoryOption, bir *ConnectionFactory üzerinde çalışan yapılandırma fonksiyonudur.
type FactoryOption func(*ConnectionFactory)

// WithConnector, bir sürücü için yerleşik connector yerine verileni kullanır.
// Testlerde sahte oturumlar üretmek için kullanılır.
func WithConnector(driver string, c connectors.Connector) FactoryOption {
	return func(f *ConnectionFactory) {
		f.connectors[driver] = c
	}
}

// WithFactoryLogger, üretilen her bağlantıya verilecek logger'ı belirler.
func WithFactoryLogger(logger *slog.Logger) FactoryOption {
	return func(f *ConnectionFactory) {
		f.logger = logger
	}
}

// WithMaxSQLLength, hata mesajına eklenen SQL'in azami uzunluğunu belirler.
func WithMaxSQLLength(n int) FactoryOption {
	return func(f *ConnectionFactory) {
		f.maxSQLLength = n
	}
}

// WithFactoryQueryLog, üretilen bağlantılarda sorgu kaydını açar.
func WithFactoryQueryLog(enabled bool) FactoryOption {
	return func(f *ConnectionFactory) {
		f.queryLog = enabled
	}
}

// NewConnectionFactory, yerleşik connector'larla yeni bir factory oluşturur.
func NewConnectionFactory(opts ...FactoryOption) *ConnectionFactory {
	f := &ConnectionFactory{connectors: make(map[string]connectors.Connector)}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Make, cfg için yeni bir Connection oluşturur. Lazy olmayan yapılandırmalarda
// oturum hemen açılır.
//
// Örnek:
//
//	conn, err := factory.Make(ctx, database.Config{
//	    Driver:   "mysql",
//	    Host:     "127.0.0.1",
//	    Database: "app",
//	    Username: "root",
//	    Prefix:   "app_",
//	}, "default")
func (f *ConnectionFactory) Make(ctx context.Context, cfg Config, name ...string) (*Connection, error) {
	if cfg.Driver == "" {
		return nil, ErrDriverRequired
	}
	grammar, err := GrammarFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	connector, err := f.connector(cfg.Driver)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithGrammar(grammar),
		WithTablePrefix(cfg.Prefix),
		WithReconnector(&configReconnector{cfg: cfg, connector: connector}),
		WithExceptionHandler(NewExceptionHandler(cfg.Params(), f.maxSQLLength)),
		WithQueryLog(f.queryLog),
	}
	if f.logger != nil {
		opts = append(opts, WithLogger(f.logger))
	}
	if len(name) > 0 {
		opts = append(opts, WithName(name[0]))
	}

	conn := NewConnection(nil, opts...)
	if cfg.Lazy {
		return conn, nil
	}
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	return conn, nil
}

func (f *ConnectionFactory) connector(driver string) (connectors.Connector, error) {
	if c, ok := f.connectors[driver]; ok {
		return c, nil
	}
	if c, ok := connectors.ForDriver(driver); ok {
		return c, nil
	}
	return nil, &UnsupportedDriverError{Driver: driver}
}

// GrammarFor, yapılandırmadaki sürücü adına karşılık gelen yeni bir grammar döndürür.
func GrammarFor(driver string) (dialect.Grammar, error) {
	switch driver {
	case "mysql":
		return dialect.MySQL(), nil
	case "pgsql":
		return dialect.Postgres(), nil
	case "sqlite":
		return dialect.SQLite(), nil
	case "sqlsrv":
		return dialect.SQLServer(), nil
	}
	return nil, &UnsupportedDriverError{Driver: driver}
}

// configReconnector, her denemede uç noktaları yeniden seçerek oturum açar.
type configReconnector struct {
	cfg       Config
	connector connectors.Connector
}

func (r *configReconnector) Reconnect(ctx context.Context) (Handle, Handle, error) {
	if !r.cfg.HasReadWriteSplit() {
		write, err := r.connector.Connect(ctx, r.cfg)
		return write, nil, err
	}

	writeCfg, err := endpoint(r.cfg, r.cfg.Write)
	if err != nil {
		return nil, nil, err
	}
	readCfg, err := endpoint(r.cfg, r.cfg.Read)
	if err != nil {
		return nil, nil, err
	}

	write, err := r.connector.Connect(ctx, writeCfg)
	if err != nil {
		return nil, nil, err
	}
	read, err := r.connector.Connect(ctx, readCfg)
	if err != nil {
		return nil, nil, errors.Join(err, write.Close())
	}
	return write, read, nil
}

// endpoint, candidates içinden rastgele birini seçip base'in üzerine birleştirir.
// Aday yoksa base olduğu gibi kullanılır.
func endpoint(base Config, candidates []Config) (Config, error) {
	if len(candidates) == 0 {
		return base.Merge(Config{})
	}
	return base.Merge(candidates[rand.IntN(len(candidates))])
}

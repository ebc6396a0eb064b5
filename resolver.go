package database

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// DefaultConnectionName, SetDefaultConnection veya yüklenen bir yapılandırma
// değiştirene kadar resolver'ın varsayılan bağlantısıdır.
const DefaultConnectionName = "default"

// ConnectionResolver, isimli bağlantıları dağıtır; her birini ilk kullanımda
// oluşturur ve sonra önbellekte tutar. Connection'ın aksine eşzamanlı kullanıma
// uygundur; döndürdüğü bağlantılar değildir.
//
//	resolver := database.NewConnectionResolver(cfg.Connections, nil)
//	resolver.SetDefaultConnection(cfg.Default)
//	conn, err := resolver.Connection(ctx, "")
type ConnectionResolver struct {
	mu          sync.Mutex
	factory     *ConnectionFactory
	configs     map[string]Config
	connections map[string]*Connection
	defaultName string
}

// NewConnectionResolver, configs üzerinde bir resolver döndürür. nil factory
// NewConnectionFactory() kullanır.
func NewConnectionResolver(configs map[string]Config, factory *ConnectionFactory) *ConnectionResolver {
	if factory == nil {
		factory = NewConnectionFactory()
	}
	r := &ConnectionResolver{
		factory:     factory,
		configs:     make(map[string]Config, len(configs)),
		connections: make(map[string]*Connection),
		defaultName: DefaultConnectionName,
	}
	for name, cfg := range configs {
		r.configs[name] = cfg
	}
	return r
}

// NewResolverFromConfig, yüklenmiş bir DatabaseConfig'ten resolver kurar.
func NewResolverFromConfig(cfg *DatabaseConfig, factory *ConnectionFactory) *ConnectionResolver {
	r := NewConnectionResolver(cfg.Connections, factory)
	if cfg.Default != "" {
		r.defaultName = cfg.Default
	}
	return r
}

// Connection, isimli bağlantıyı döndürür; gerekirse oluşturur. Boş ad varsayılan
// bağlantı demektir.
func (r *ConnectionResolver) Connection(ctx context.Context, name string) (*Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		name = r.defaultName
	}
	if conn, ok := r.connections[name]; ok {
		return conn, nil
	}
	cfg, ok := r.configs[name]
	if !ok {
		return nil, fmt.Errorf("%w [%s]", ErrUnknownConnection, name)
	}
	conn, err := r.factory.Make(ctx, cfg, name)
	if err != nil {
		return nil, err
	}
	r.connections[name] = conn
	return conn, nil
}

// ConnectionConfig, name altında kayıtlı yapılandırmayı döndürür.
func (r *ConnectionResolver) ConnectionConfig(name string) (Config, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.configs[name]
	return cfg, ok
}

// AddConnection, cfg'yi name altında kaydeder. Bu adla önbellekteki bağlantı
// kapatılır ve atılır.
func (r *ConnectionResolver) AddConnection(name string, cfg Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[name] = cfg
	return r.purge(name)
}

// HasConnection, name altında bir yapılandırma kayıtlı olup olmadığını bildirir.
func (r *ConnectionResolver) HasConnection(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.configs[name]
	return ok
}

// DefaultConnection, Connection "" ile çağrıldığında kullanılan adı döndürür.
func (r *ConnectionResolver) DefaultConnection() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defaultName
}

// SetDefaultConnection, varsayılan bağlantı adını değiştirir.
func (r *ConnectionResolver) SetDefaultConnection(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultName = name
}

// Purge, name için önbellekteki bağlantıyı kapatır ve unutur. Sonraki Connection
// çağrısı yenisini oluşturur.
func (r *ConnectionResolver) Purge(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.purge(name)
}

func (r *ConnectionResolver) purge(name string) error {
	conn, ok := r.connections[name]
	if !ok {
		return nil
	}
	delete(r.connections, name)
	return conn.Disconnect()
}

// Reload, kayıtlı yapılandırmaları değiştirir. Yapılandırması değişen veya kaybolan
// önbellekteki bağlantılar atılır; diğerleri korunur.
func (r *ConnectionResolver) Reload(cfg *DatabaseConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name := range r.connections {
		next, ok := cfg.Connections[name]
		if ok && reflect.DeepEqual(next, r.configs[name]) {
			continue
		}
		errs = append(errs, r.purge(name))
	}

	r.configs = make(map[string]Config, len(cfg.Connections))
	for name, c := range cfg.Connections {
		r.configs[name] = c
	}
	if cfg.Default != "" {
		r.defaultName = cfg.Default
	}
	return errors.Join(errs...)
}

// Watch, ctx bitene kadar loader'ın dosyası her değiştiğinde resolver'ı yeniden yükler.
func (r *ConnectionResolver) Watch(ctx context.Context, loader *ConfigLoader) error {
	return loader.Watch(ctx, func(cfg *DatabaseConfig) {
		if err := r.Reload(cfg); err != nil {
			loader.logger.Warn("closing stale connections failed", "error", err)
		}
	})
}

// Close, önbellekteki tüm bağlantıları kapatır.
func (r *ConnectionResolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name := range r.connections {
		errs = append(errs, r.purge(name))
	}
	return errors.Join(errs...)
}

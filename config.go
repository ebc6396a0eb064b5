package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// -----------------------------------------------------------------------------
//  Yapılandırma Yükleyici
//
//  Bağlantı yapılandırmaları tek bir dosyadan (YAML, JSON ya da TOML) okunur:
//
//	default: mysql
//	connections:
//	  mysql:
//	    driver: mysql
//	    host: ${DB_HOST}
//	    database: app
//	    read:
//	      - host: replica-1
//	      - host: replica-2
//
//  Dosyadaki ${VAR} ifadeleri ortam değişkenleriyle doldurulur. .env dosyaları
//  önce yüklenir ve var olan ortam değişkenlerini ezmez. DB_ önekli
//  değişkenler dosyadaki değerleri ezer (DB_CONNECTIONS_MYSQL_HOST gibi).
//
//  -- @author   Ahmet ALTUN
//  -- @github   github.com/biyonik
//  -- @linkedin linkedin.com/in/biyonik
//  -- @email    ahmet.altun60@gmail.com
// -----------------------------------------------------------------------------

// EnvPrefix, dosya değerlerini ezen ortam değişkenlerinin önekidir.
const EnvPrefix = "DB"

// reloadDebounce, editörlerin tek bir kayıt için ürettiği olay dizisini birleştirir.
const reloadDebounce = 250 * time.Millisecond

// ErrNoConfigFile, yükleyicinin okuyacak dosyası olmadığında döner.
var ErrNoConfigFile = errors.New("database: config file not found")

// DatabaseConfig, veritabanı bölümünün tamamıdır: varsayılan bağlantı adı ve
// tüm isimli bağlantılar.
type DatabaseConfig struct {
	Default     string            `mapstructure:"default" yaml:"default" json:"default"`
	Connections map[string]Config `mapstructure:"connections" yaml:"connections" json:"connections"`
}

// ConfigLoader, DatabaseConfig'i bir dosyadan, .env dosyalarından ve ortamdan okur.
type ConfigLoader struct {
	fs       afero.Fs
	path     string
	envFiles []string
	logger   *slog.Logger
}

// LoaderOption, bir ConfigLoader'ı yapılandırır.
type LoaderOption func(*ConfigLoader)

// WithFs, yapılandırma ve .env dosyalarını işletim sistemi yerine fs'ten okur.
func WithFs(fs afero.Fs) LoaderOption {
	return func(l *ConfigLoader) {
		l.fs = fs
	}
}

// WithEnvFiles, yapılandırma dosyasından önce yüklenen .env dosyalarını ayarlar.
// Olmayan dosyalar atlanır. Varsayılan ".env".
func WithEnvFiles(files ...string) LoaderOption {
	return func(l *ConfigLoader) {
		l.envFiles = files
	}
}

// WithLoaderLogger, Watch sırasındaki yeniden yükleme hatalarını raporlar.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *ConfigLoader) {
		l.logger = logger
	}
}

// NewConfigLoader, path'teki yapılandırma dosyası için bir yükleyici döndürür.
func NewConfigLoader(path string, opts ...LoaderOption) *ConfigLoader {
	l := &ConfigLoader{
		fs:       afero.NewOsFs(),
		path:     path,
		envFiles: []string{".env"},
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path, yapılandırma dosyasının yolunu döndürür.
func (l *ConfigLoader) Path() string {
	return l.path
}

// Load, yapılandırmayı okur. Bağlantı adları küçük harfe çevrilir.
func (l *ConfigLoader) Load() (*DatabaseConfig, error) {
	if err := l.loadEnv(); err != nil {
		return nil, err
	}

	content, err := afero.ReadFile(l.fs, l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoConfigFile, l.path)
		}
		return nil, fmt.Errorf("database: read config: %w", err)
	}

	v := viper.New()
	v.SetConfigType(configType(l.path))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadConfig(strings.NewReader(os.ExpandEnv(string(content)))); err != nil {
		return nil, fmt.Errorf("database: parse config %s: %w", l.path, err)
	}

	cfg := &DatabaseConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("database: decode config %s: %w", l.path, err)
	}
	if cfg.Connections == nil {
		cfg.Connections = map[string]Config{}
	}
	if cfg.Default == "" && len(cfg.Connections) == 1 {
		for name := range cfg.Connections {
			cfg.Default = name
		}
	}
	return cfg, nil
}

func (l *ConfigLoader) loadEnv() error {
	for _, file := range l.envFiles {
		content, err := afero.ReadFile(l.fs, file)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("database: read %s: %w", file, err)
		}
		values, err := godotenv.UnmarshalBytes(content)
		if err != nil {
			return fmt.Errorf("database: parse %s: %w", file, err)
		}
		for k, v := range values {
			if _, set := os.LookupEnv(k); !set {
				_ = os.Setenv(k, v)
			}
		}
	}
	return nil
}

// Watch, ctx bitene kadar yapılandırma dosyası her değiştiğinde fn'i yeni yüklenen
// yapılandırmayla çağırır. Yüklenemeyen dosya loglanır ve atlanır. Watch işletim
// sistemi dosya sistemini gerektirir.
func (l *ConfigLoader) Watch(ctx context.Context, fn func(*DatabaseConfig)) error {
	path, err := filepath.Abs(l.path)
	if err != nil {
		return fmt.Errorf("database: watch %s: %w", l.path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("database: create watcher: %w", err)
	}
	// Editörler kayıtta dosyayı değiştirir; bu yüzden dizin izlenir.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("database: watch %s: %w", filepath.Dir(path), err)
	}

	go func() {
		defer watcher.Close()

		debounce := time.NewTimer(reloadDebounce)
		debounce.Stop()

		for {
			select {
			case <-ctx.Done():
				debounce.Stop()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					debounce.Reset(reloadDebounce)
				}
			case <-debounce.C:
				cfg, err := l.Load()
				if err != nil {
					l.logger.Warn("config reload failed", slog.String("path", l.path), slog.Any("error", err))
					continue
				}
				fn(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Warn("config watch error", slog.String("path", l.path), slog.Any("error", err))
			}
		}
	}()
	return nil
}

// configType, dosya uzantısını bir viper yapılandırma tipine eşler. Bilinmeyen
// uzantılar YAML olarak okunur.
func configType(path string) string {
	switch ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."); ext {
	case "json", "toml", "yaml":
		return ext
	}
	return "yaml"
}

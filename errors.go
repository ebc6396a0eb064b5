package database

import (
	"errors"
	"fmt"
)

// database paketinin sentinel hataları.
// Bu hatalar errors.Is() ile kontrol edilebilir.
var (
	// ErrNoRows, tek satırlık bir okuma hiçbir şey bulamadığında döner.
	ErrNoRows = errors.New("database: no rows in result set")

	// ErrNoExecutor, bağlantısı olmayan bir builder'dan sorgu çalıştırması istendiğinde döner.
	ErrNoExecutor = errors.New("database: builder has no executor")

	// ErrNoActiveTransaction, transaction derinliği 0 iken Commit veya RollBack tarafından döner.
	ErrNoActiveTransaction = errors.New("database: no active transaction")

	// ErrNoReconnector, oturumunu kaybeden bir bağlantı yenisini alamadığında döner.
	ErrNoReconnector = errors.New("database: lost connection and no reconnector available")

	// ErrDriverRequired, factory tarafından sürücüsüz bir yapılandırma için döner.
	ErrDriverRequired = errors.New("database: a driver must be specified")

	// ErrUnsupportedDriver, her UnsupportedDriverError ile eşleşir.
	ErrUnsupportedDriver = errors.New("database: unsupported driver")

	// ErrUnknownConnection, resolver tarafından yapılandırması olmayan bir ad için döner.
	ErrUnknownConnection = errors.New("database: unknown connection")

	// ErrValueRequired, değeri eksik bir where koşulu ya da "=", "!=" veya "<>" dışındaki
	// bir operatörle karşılaştırılan nil değer için döner.
	ErrValueRequired = errors.New("database: value must be provided")

	// ErrInvalidBindingPhase, bilinmeyen bir faza bağlama eklendiğinde döner.
	ErrInvalidBindingPhase = errors.New("database: invalid binding phase")

	// ErrInvalidChunkSize, 1'den küçük chunk veya buffer boyutu için döner.
	ErrInvalidChunkSize = errors.New("database: chunk size must be at least 1")

	// ErrStopChunk, Chunk'ı hata bildirmeden erken durdurur.
	ErrStopChunk = errors.New("database: stop chunking")
)

// UnsupportedDriverError, factory'nin connector'ı veya grameri olmayan bir sürücüyü adlandırır.
type UnsupportedDriverError struct {
	Driver string
}

func (e *UnsupportedDriverError) Error() string {
	return "Unsupported driver [" + e.Driver + "]"
}

func (e *UnsupportedDriverError) Is(target error) bool {
	return target == ErrUnsupportedDriver
}

// QueryError, bir ExceptionHandler tarafından çevrilmiş sürücü hatasıdır. Hatalı
// ifadeyi, sürücünün hata kodunu ve bilgisini tutar.
type QueryError struct {
	Err       error
	SQL       string
	Bindings  []any
	Code      string
	ErrorInfo []any
	Message   string
}

func (e *QueryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// WrapError, başarısız işlemi err'e ekler. nil err nil kalır.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("database: %s: %w", op, err)
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mrjgreen/database/connectors"
	"github.com/mrjgreen/database/dialect"
)

/*
=======================================================================================================================
  💠 DATABASE – CONNECTION 💠
  Bu dosya, sürücü oturumları (Handle) ile sorgu oluşturucu arasındaki köprüyü kurar.

  Bir Connection:
  - Bir yazma oturumu ve isteğe bağlı bir okuma oturumu taşır. SELECT'ler, açık bir transaction
    yoksa okuma oturumuna gider; transaction içindeyken yazılmamış verinin görülebilmesi için
    her şey yazma oturumundan geçer.
  - Oturum kaybolduysa Reconnector ile yeniden kurar. Reconnector yoksa sessizce denemez, hata döner.
  - Her sorguyu çalıştırmadan hemen önce bağlamaları (bindings) hazırlar, süresini ölçer ve
    query log açıksa slog üzerinden kaydeder.
  - Sürücü hatalarını tek bir noktada ExceptionHandler'a devreder.

  Connection eş zamanlı kullanım için tasarlanmamıştır: iç durum (transaction derinliği, pretend
  bayrağı, oturumlar) kilitsizdir. Her goroutine kendi Connection'ını kullanmalıdır.

  @author    Ahmet ALTUN
  @github    github.com/biyonik
  @linkedin  linkedin.com/in/biyonik
  @email     ahmet.altun60@gmail.com
=======================================================================================================================
*/

// Executor, Builder'ın derlenmiş sorguları çalıştırmak için ihtiyaç duyduğu
// asgari yüzeydir. *Connection bu arayüzü sağlar; testlerde sahte bir
// uygulama verilebilir.
type Executor interface {
	// Select satır döndüren bir sorguyu çalıştırır. useReadHandle true ise ve
	// açık bir transaction yoksa okuma oturumu kullanılır.
	Select(ctx context.Context, query string, bindings []any, useReadHandle bool) ([]Row, error)

	// Query satır döndürmeyen bir sorguyu yazma oturumunda çalıştırır.
	Query(ctx context.Context, query string, bindings []any) (sql.Result, error)
}

var _ Executor = (*Connection)(nil)

// Reconnector, kaybolan oturumların yerine yenilerini üretir.
type Reconnector interface {
	Reconnect(ctx context.Context) (write, read Handle, err error)
}

// ReconnectorFunc, bir fonksiyonu Reconnector'a uyarlar.
type ReconnectorFunc func(ctx context.Context) (write, read Handle, err error)

func (f ReconnectorFunc) Reconnect(ctx context.Context) (Handle, Handle, error) {
	return f(ctx)
}

// Connection, bir yazma ve isteğe bağlı bir okuma oturumu üzerinde sorgu
// çalıştırır. Eş zamanlı kullanım için güvenli değildir.
type Connection struct {
	name        string
	write       Handle
	read        Handle
	reconnector Reconnector
	grammar     dialect.Grammar
	tablePrefix string
	fetchMode   FetchMode
	pretending  bool
	logging     bool
	logger      *slog.Logger
	exceptions  ExceptionHandler
	depth       int
}

// NewConnection, write oturumu üzerinde yeni bir Connection oluşturur. write
// nil olabilir; ilk sorguda Reconnector ile kurulur.
//
// Örnek:
//
//	conn := database.NewConnection(handle,
//	    database.WithGrammar(dialect.MySQL()),
//	    database.WithTablePrefix("app_"),
//	)
func NewConnection(write Handle, opts ...Option) *Connection {
	c := &Connection{write: write}
	applyOptions(c, opts)

	if c.grammar == nil {
		c.grammar = dialect.NewGrammar()
	}
	if c.tablePrefix != "" {
		c.grammar.SetTablePrefix(c.tablePrefix)
	} else {
		c.tablePrefix = c.grammar.TablePrefix()
	}
	if c.exceptions == nil {
		c.exceptions = NewExceptionHandler(nil, 0)
	}
	if c.logging && c.logger == nil {
		c.logger = slog.New(NewQueryLogger())
	}
	return c
}

// ---- Sorgu API'si ----

// Table, verilen tablo üzerinde yeni bir Builder başlatır.
func (c *Connection) Table(table any) *Builder {
	return NewBuilder(c, c.grammar).From(table)
}

// Raw, ham bir SQL ifadesi döndürür.
func (c *Connection) Raw(value string) Expression {
	return Raw(value)
}

// Select, satır döndüren bir sorguyu çalıştırır ve tüm satırları okur.
func (c *Connection) Select(ctx context.Context, query string, bindings []any, useReadHandle bool) ([]Row, error) {
	var rows []Row
	err := c.run(ctx, query, bindings, useReadHandle, func(h Handle, args []any) error {
		cursor, err := h.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		rows, err = scanRows(cursor, c.fetchMode, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

// Cursor, sorguyu çalıştırıp imleci açık olarak döndürür. İmleci kapatmak
// çağıranın sorumluluğundadır. Pretend modunda boş bir imleç döner.
func (c *Connection) Cursor(ctx context.Context, query string, bindings []any, useReadHandle bool) (connectors.Rows, error) {
	var cursor connectors.Rows = emptyRows{}
	err := c.run(ctx, query, bindings, useReadHandle, func(h Handle, args []any) error {
		rows, err := h.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		cursor = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cursor, nil
}

// Query, satır döndürmeyen bir sorguyu yazma oturumunda çalıştırır.
func (c *Connection) Query(ctx context.Context, query string, bindings []any) (sql.Result, error) {
	result := inertResult
	err := c.run(ctx, query, bindings, false, func(h Handle, args []any) error {
		res, err := h.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FetchAll, tüm satırları döndürür.
func (c *Connection) FetchAll(ctx context.Context, query string, bindings ...any) ([]Row, error) {
	return c.Select(ctx, query, bindings, true)
}

// Fetch, ilk satırı döndürür. Satır yoksa ErrNoRows.
func (c *Connection) Fetch(ctx context.Context, query string, bindings ...any) (Row, error) {
	var row Row
	err := c.run(ctx, query, bindings, true, func(h Handle, args []any) error {
		cursor, err := h.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		rows, err := scanRows(cursor, c.fetchMode, 1)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			row = rows[0]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNoRows
	}
	return row, nil
}

// FetchNumeric, ilk satırı kolon sırasıyla döndürür.
func (c *Connection) FetchNumeric(ctx context.Context, query string, bindings ...any) ([]any, error) {
	var values []any
	err := c.run(ctx, query, bindings, true, func(h Handle, args []any) error {
		cursor, err := h.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		values, err = scanNumeric(cursor, c.fetchMode)
		if errors.Is(err, ErrNoRows) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if values == nil {
		return nil, ErrNoRows
	}
	return values, nil
}

// FetchOne, ilk satırın ilk kolonunu döndürür.
func (c *Connection) FetchOne(ctx context.Context, query string, bindings ...any) (any, error) {
	values, err := c.FetchNumeric(ctx, query, bindings...)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, ErrNoRows
	}
	return values[0], nil
}

// ---- Kısayol yazıcılar ----

// Insert, tek bir satır veya satır listesini ekler.
func (c *Connection) Insert(ctx context.Context, table string, rows ...map[string]any) (*QueryResult, error) {
	return c.Table(table).InsertContext(ctx, rows...)
}

func (c *Connection) InsertIgnore(ctx context.Context, table string, rows ...map[string]any) (*QueryResult, error) {
	return c.Table(table).InsertIgnoreContext(ctx, rows...)
}

func (c *Connection) Replace(ctx context.Context, table string, rows ...map[string]any) (*QueryResult, error) {
	return c.Table(table).ReplaceContext(ctx, rows...)
}

// InsertUpdate, "insert ... on duplicate key update" çalıştırır.
func (c *Connection) InsertUpdate(ctx context.Context, table string, values []map[string]any, update map[string]any) (*QueryResult, error) {
	return c.Table(table).InsertOnDuplicateKeyUpdateContext(ctx, values, update)
}

// Delete, ham bir WHERE koşulu ile silme yapar.
func (c *Connection) Delete(ctx context.Context, table, where string, bindings ...any) (*QueryResult, error) {
	return c.Table(table).WhereRaw(where, bindings...).DeleteContext(ctx)
}

// Update, ham bir WHERE koşulu ile güncelleme yapar.
func (c *Connection) Update(ctx context.Context, table string, values map[string]any, where string, bindings ...any) (*QueryResult, error) {
	return c.Table(table).WhereRaw(where, bindings...).UpdateContext(ctx, values)
}

// ---- Tırnaklama ----

// Quote, değeri yazma oturumunun kurallarına göre bir SQL literaline çevirir.
func (c *Connection) Quote(ctx context.Context, value any) (string, error) {
	if err := c.reconnectIfMissing(ctx); err != nil {
		return "", err
	}
	return c.write.Quote(bindingString(value)), nil
}

// QuoteInto, sql içindeki her "?" işaretini sırasıyla bind değerlerinin
// literal karşılığıyla değiştirir.
func (c *Connection) QuoteInto(ctx context.Context, sql string, bind ...any) (string, error) {
	for _, value := range bind {
		i := strings.Index(sql, "?")
		if i < 0 {
			break
		}
		quoted, err := c.Quote(ctx, value)
		if err != nil {
			return "", err
		}
		sql = sql[:i] + quoted + sql[i+1:]
	}
	return sql, nil
}

// ---- Çalıştırma çekirdeği ----

// run, sorguyu çalıştırmanın tek giriş noktasıdır. Pretend modunda hiçbir
// oturuma dokunmaz; sadece kaydı tutar.
func (c *Connection) run(ctx context.Context, query string, bindings []any, useReadHandle bool, exec func(h Handle, args []any) error) error {
	start := time.Now()

	if !c.pretending {
		if err := c.reconnectIfMissing(ctx); err != nil {
			return err
		}

		h := c.write
		if useReadHandle {
			h = c.readHandle()
		}

		prepared := c.PrepareBindings(bindings)
		if err := exec(h, prepared); err != nil {
			return c.exceptions.Handle(query, prepared, err)
		}
	}

	c.logQuery(ctx, query, bindings, time.Since(start))
	return nil
}

// readHandle, açık bir transaction yokken okuma oturumunu, aksi halde yazma oturumunu döndürür.
func (c *Connection) readHandle() Handle {
	if c.read == nil || c.depth > 0 {
		return c.write
	}
	return c.read
}

// PrepareBindings, zaman değerlerini grammar'ın tarih biçimine, false'u 0'a çevirir.
// Girdi dilimi değiştirilmez.
func (c *Connection) PrepareBindings(bindings []any) []any {
	out := make([]any, len(bindings))
	for i, v := range bindings {
		switch b := v.(type) {
		case time.Time:
			out[i] = b.Format(c.grammar.DateFormat())
		case *time.Time:
			if b != nil {
				out[i] = b.Format(c.grammar.DateFormat())
			} else {
				out[i] = nil
			}
		case bool:
			if b {
				out[i] = true
			} else {
				out[i] = 0
			}
		default:
			out[i] = v
		}
	}
	return out
}

func (c *Connection) logQuery(ctx context.Context, query string, bindings []any, elapsed time.Duration) {
	if !c.logging || c.logger == nil {
		return
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, query,
		slog.Any(LogKeyBindings, bindings),
		slog.Float64(LogKeyElapsedMS, elapsedMS(elapsed)),
	)
}

// ---- Yaşam döngüsü ----

// Connect, oturum yoksa kurar.
func (c *Connection) Connect(ctx context.Context) error {
	return c.reconnectIfMissing(ctx)
}

// Disconnect, iki oturumu da kapatır. Sonraki sorgu yeniden bağlanır.
func (c *Connection) Disconnect() error {
	err := c.closeHandles(c.write, c.read)
	c.write, c.read = nil, nil
	c.depth = 0
	return err
}

// Reconnect, Reconnector ile yeni oturumlar kurar ve eskilerini kapatır.
func (c *Connection) Reconnect(ctx context.Context) error {
	if c.reconnector == nil {
		return ErrNoReconnector
	}
	write, read, err := c.reconnector.Reconnect(ctx)
	if err != nil {
		return c.exceptions.Handle("Connection attempt", nil, err)
	}
	_ = c.closeHandles(c.write, c.read)
	c.write, c.read = write, read
	c.depth = 0
	return nil
}

func (c *Connection) reconnectIfMissing(ctx context.Context) error {
	if c.write != nil {
		return nil
	}
	return c.Reconnect(ctx)
}

func (c *Connection) closeHandles(write, read Handle) error {
	var err error
	if write != nil {
		err = write.Close()
	}
	if read != nil && read != write {
		if rerr := read.Close(); err == nil {
			err = rerr
		}
	}
	return err
}

// ---- Pretend ----

// Pretend, fn içinde çalışan sorguları veritabanına göndermeden kaydeder ve
// kayıtları döndürür. Önceki logger, log ayarı ve transaction derinliği sonunda
// geri yüklenir; fn içinde açılıp kapanmayan transaction'lar iz bırakmaz.
func (c *Connection) Pretend(ctx context.Context, fn func(*Connection) error) ([]QueryLogEntry, error) {
	log := NewQueryLogger()

	prevLogger, prevLogging, prevPretending, prevDepth := c.logger, c.logging, c.pretending, c.depth
	c.logger, c.logging, c.pretending = slog.New(log), true, true
	defer func() {
		c.logger, c.logging, c.pretending, c.depth = prevLogger, prevLogging, prevPretending, prevDepth
	}()

	err := fn(c)
	return log.QueryLog(), err
}

// Pretending, bağlantının pretend modunda olup olmadığını bildirir.
func (c *Connection) Pretending() bool {
	return c.pretending
}

// ---- Sorgu kaydı ----

// EnableQueryLog, sorgu kaydını açar. Logger yoksa bellek içi bir QueryLogger kurulur.
func (c *Connection) EnableQueryLog() {
	c.logging = true
	if c.logger == nil {
		c.logger = slog.New(NewQueryLogger())
	}
}

func (c *Connection) DisableQueryLog() {
	c.logging = false
}

// Logging, sorgu kaydının açık olup olmadığını bildirir.
func (c *Connection) Logging() bool {
	return c.logging
}

// QueryLog, logger bir QueryLogger ise kayıtları döndürür.
func (c *Connection) QueryLog() []QueryLogEntry {
	if l, ok := c.queryLogger(); ok {
		return l.QueryLog()
	}
	return nil
}

// FlushQueryLog, bellek içi kayıtları temizler.
func (c *Connection) FlushQueryLog() {
	if l, ok := c.queryLogger(); ok {
		l.Flush()
	}
}

func (c *Connection) queryLogger() (*QueryLogger, bool) {
	if c.logger == nil {
		return nil, false
	}
	l, ok := c.logger.Handler().(*QueryLogger)
	return l, ok
}

func (c *Connection) Logger() *slog.Logger {
	return c.logger
}

func (c *Connection) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// ---- Erişimciler ----

func (c *Connection) Grammar() dialect.Grammar {
	return c.grammar
}

// SetGrammar, grameri değiştirir ve mevcut prefix'i yeni gramere uygular.
func (c *Connection) SetGrammar(g dialect.Grammar) {
	c.grammar = g
	c.grammar.SetTablePrefix(c.tablePrefix)
}

func (c *Connection) TablePrefix() string {
	return c.tablePrefix
}

// SetTablePrefix, prefix'i hem bağlantıya hem gramere uygular.
func (c *Connection) SetTablePrefix(prefix string) {
	c.tablePrefix = prefix
	c.grammar.SetTablePrefix(prefix)
}

func (c *Connection) FetchMode() FetchMode {
	return c.fetchMode
}

func (c *Connection) SetFetchMode(mode FetchMode) {
	c.fetchMode = mode
}

func (c *Connection) SetExceptionHandler(h ExceptionHandler) {
	c.exceptions = h
}

func (c *Connection) ExceptionHandler() ExceptionHandler {
	return c.exceptions
}

func (c *Connection) SetReconnector(r Reconnector) {
	c.reconnector = r
}

// WriteHandle, yazma oturumunu döndürür; bağlantı kurulmamışsa nil.
func (c *Connection) WriteHandle() Handle {
	return c.write
}

// ReadHandle, SELECT'lerin kullanacağı oturumu döndürür.
func (c *Connection) ReadHandle() Handle {
	return c.readHandle()
}

func (c *Connection) SetWriteHandle(h Handle) {
	c.write = h
}

func (c *Connection) SetReadHandle(h Handle) {
	c.read = h
}

// DriverName, yazma oturumunun sürücü adını döndürür.
func (c *Connection) DriverName() string {
	if c.write == nil {
		return ""
	}
	return c.write.DriverName()
}

// Name, resolver'daki bağlantı adını döndürür.
func (c *Connection) Name() string {
	return c.name
}

// Package database, Go için Laravel'den esinlenen bir veri erişim katmanı sunar:
// akıcı bir sorgu oluşturucu, dialect başına SQL gramerleri ve okuma/yazma ayrımı,
// iç içe transaction, tembel yeniden bağlanma, pretend modu ile sorgu kaydı
// destekleyen bağlantılar.
//
// # Hızlı Başlangıç
//
// Bir yapılandırmadan bağlantı açın ve sorgu oluşturmaya başlayın:
//
//	conn, err := database.Open(ctx, database.Config{
//	    Driver:   "mysql",
//	    Host:     "127.0.0.1",
//	    Database: "app",
//	    Username: "root",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Disconnect()
//
// # Select Sorguları
//
//	rows, err := conn.Table("users").
//	    Select("id", "name", "email").
//	    Where("status", "active").
//	    OrderByDesc("created_at").
//	    Limit(10).
//	    GetContext(ctx)
//
// # Where Koşulları
//
//	b.Where("age", ">", 18)
//	b.OrWhere("role", "admin")
//	b.WhereIn("status", []any{"active", "pending"})
//	b.WhereBetween("created_at", start, end)
//	b.WhereNull("deleted_at")
//	b.Where(func(q *database.Builder) {
//	    q.Where("a", 1).OrWhere("b", 2)
//	})
//
// # Ekleme, Güncelleme, Silme
//
//	conn.Table("users").InsertContext(ctx, map[string]any{"email": "john@example.com"})
//	conn.Table("users").Where("id", 1).UpdateContext(ctx, map[string]any{"status": "inactive"})
//	conn.Table("users").Where("status", "banned").DeleteContext(ctx)
//
// Büyük eklemeler gruplara bölünebilir:
//
//	n, err := conn.Table("events").Buffer(500).Insert(ctx, database.Rows(events...))
//
// # Transaction'lar
//
// Transaction'lar iç içe geçer; sürücüye yalnızca en dış seviye ulaşır:
//
//	err := conn.Transaction(ctx, func(tx *database.Connection) error {
//	    _, err := tx.Table("accounts").Where("id", 1).DecrementContext(ctx, "balance", 100)
//	    return err
//	})
//
// # Birden Fazla Bağlantı
//
// ConnectionResolver, bir yapılandırma dosyasındaki isimli bağlantıları dağıtır:
//
//	cfg, err := database.NewConfigLoader("database.yaml").Load()
//	resolver := database.NewResolverFromConfig(cfg, nil)
//	conn, err := resolver.Connection(ctx, "")
//
// Bir Connection aynı anda tek bir goroutine içindir; resolver eşzamanlı kullanıma
// uygundur.
package database

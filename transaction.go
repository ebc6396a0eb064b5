package database

import "context"

// -----------------------------------------------------------------------------
//  Transaction Derinliği — İç İçe İşlemler, Tek Gerçek Transaction
//
//  Connection, iç içe BeginTransaction çağrılarını bir sayaçla izler. Sürücüye
//  yalnızca en dıştaki begin/commit/rollback gider:
//
//   • BeginTransaction: derinlik 0 → 1 geçişinde gerçek BEGIN, sonra derinlik++
//   • Commit: derinlik 1 → 0 geçişinde gerçek COMMIT, aksi halde derinlik--
//   • RollBack: derinlik 1'de gerçek ROLLBACK ve derinlik 0, aksi halde derinlik--
//
//  Derinlik 0 iken Commit ya da RollBack çağırmak çağıranın hatasıdır ve
//  ErrNoActiveTransaction döner. Pretend modunda sayaç yine işler fakat
//  oturuma hiç dokunulmaz.
//
//  -- @author   Ahmet ALTUN
//  -- @github   github.com/biyonik
//  -- @linkedin linkedin.com/in/biyonik
//  -- @email    ahmet.altun60@gmail.com
// -----------------------------------------------------------------------------

// BeginTransaction, yeni bir transaction seviyesi açar.
func (c *Connection) BeginTransaction(ctx context.Context) error {
	if c.depth == 0 && !c.pretending {
		if err := c.reconnectIfMissing(ctx); err != nil {
			return err
		}
		if err := c.write.Begin(ctx); err != nil {
			return WrapError("begin transaction", err)
		}
	}
	c.depth++
	return nil
}

// Commit, en içteki transaction seviyesini kapatır. Gerçek commit yalnızca en
// dış seviyede yapılır.
func (c *Connection) Commit() error {
	switch {
	case c.depth == 0:
		return ErrNoActiveTransaction
	case c.depth > 1:
		c.depth--
		return nil
	}

	c.depth = 0
	if c.pretending {
		return nil
	}
	if err := c.write.Commit(); err != nil {
		return WrapError("commit transaction", err)
	}
	return nil
}

// RollBack, en içteki transaction seviyesini geri alır. İç seviyelerde
// yalnızca sayaç azalır; gerçek rollback en dış seviyede yapılır.
func (c *Connection) RollBack() error {
	switch {
	case c.depth == 0:
		return ErrNoActiveTransaction
	case c.depth > 1:
		c.depth--
		return nil
	}

	c.depth = 0
	if c.pretending || c.write == nil {
		return nil
	}
	if err := c.write.Rollback(); err != nil {
		return WrapError("rollback transaction", err)
	}
	return nil
}

// TransactionLevel, açık transaction seviyelerinin sayısını döndürür.
func (c *Connection) TransactionLevel() int {
	return c.depth
}

// InTransaction, en az bir transaction seviyesinin açık olup olmadığını bildirir.
func (c *Connection) InTransaction() bool {
	return c.depth > 0
}

// Transaction, fn'i bir transaction içinde çalıştırır. fn hata dönerse ya da
// panic olursa rollback yapılır. fn'in hatası olduğu gibi döndürülür (rollback
// hatası yutulur); panic ise rollback'ten sonra yeniden fırlatılır.
//
// Örnek:
//
//	err := conn.Transaction(ctx, func(tx *database.Connection) error {
//	    if _, err := tx.Table("accounts").Where("id", 1).DecrementContext(ctx, "balance", 100); err != nil {
//	        return err
//	    }
//	    _, err := tx.Table("accounts").Where("id", 2).IncrementContext(ctx, "balance", 100)
//	    return err
//	})
func (c *Connection) Transaction(ctx context.Context, fn func(*Connection) error) error {
	if err := c.BeginTransaction(ctx); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = c.RollBack()
			panic(p)
		}
	}()

	if err := fn(c); err != nil {
		_ = c.RollBack()
		return err
	}

	return c.Commit()
}

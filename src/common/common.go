package common

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate locks the rows a transaction is about to inspect-then-write,
// so concurrent requests for the same (guide, date) serialize instead of both
// passing their precondition checks. sqlite has no FOR UPDATE syntax and
// serializes writers on its own, so the clause is only added elsewhere.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{
		Strength: "UPDATE",
		Table:    clause.Table{Name: clause.CurrentTable},
	})
}

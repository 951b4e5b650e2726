package dbx

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockForUpdate adds a FOR UPDATE row lock on dialects that support it.
// SQLite (the test dialect) serializes writers on its own and rejects
// the clause.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

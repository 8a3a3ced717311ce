package model

import (
	"time"
)

// AuditEntry represents the database model for the audit trail. It carries no
// foreign key to ledgers: the hard-delete entry is written after the ledger
// row is gone and must survive it.
type AuditEntry struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	LedgerID  uint64    `gorm:"not null;index"`
	Action    string    `gorm:"not null;size:50;index"`
	Actor     string    `gorm:"not null;size:20"`
	OldValue  int64     `gorm:"not null;default:0"` // Cents
	NewValue  int64     `gorm:"not null;default:0"` // Cents
	Delta     int64     `gorm:"not null;default:0"` // Cents
	Notes     string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for AuditEntry
func (AuditEntry) TableName() string {
	return "audit_entries"
}

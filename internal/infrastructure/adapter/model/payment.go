package model

import (
	"time"
)

// Payment represents the database model for the append-only payment trail.
// No foreign key constraint to ledgers: a hard delete purges payments
// explicitly inside the same transaction.
type Payment struct {
	ID               uint64    `gorm:"primaryKey;autoIncrement"`
	Reference        string    `gorm:"uniqueIndex;not null;size:64"`
	LedgerID         uint64    `gorm:"not null;index"`
	Amount           int64     `gorm:"not null"` // Cents
	Kind             string    `gorm:"not null;size:20;index"`
	ConfirmedByAdmin bool      `gorm:"not null;default:false"`
	Notes            string    `gorm:"type:text"`
	IdempotencyKey   *string   `gorm:"uniqueIndex;size:255"` // NULL when not provided
	CreatedAt        time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

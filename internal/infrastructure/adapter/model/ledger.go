package model

import (
	"time"
)

// Ledger represents the database model for user ledgers
type Ledger struct {
	ID                 uint64    `gorm:"primaryKey;autoIncrement"`
	Name               string    `gorm:"not null;size:255"`
	CurrentTab         int64     `gorm:"not null;default:0"` // Cents
	PendingPayment     int64     `gorm:"not null;default:0"` // Cents
	AccountBalance     int64     `gorm:"not null;default:0"` // Cents
	Status             string    `gorm:"not null;size:20;index"`
	DeletedAt          *time.Time
	LastPaymentRequest *time.Time
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName specifies the table name for Ledger
func (Ledger) TableName() string {
	return "ledgers"
}

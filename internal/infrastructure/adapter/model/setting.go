package model

import (
	"time"
)

// Setting is a key/value row for runtime-tunable values such as the unit
// price. Read live on every use so changes apply without a restart.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:64"`
	Value     string    `gorm:"not null;size:255"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Setting keys
const (
	SettingUnitPrice = "unit_price"
)

// TableName specifies the table name for Setting
func (Setting) TableName() string {
	return "settings"
}

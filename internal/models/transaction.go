package models

import "time"

// Transaction is one immutable ledger entry. BalanceAfter snapshots the
// user's earnings right after the operation, for audit.
type Transaction struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	UserID       uint    `gorm:"not null;index" json:"user_id"`
	Type         string  `gorm:"size:30;not null;index" json:"type"`
	Amount       float64 `gorm:"not null" json:"amount"`
	BalanceAfter float64 `gorm:"not null" json:"balance_after"`
	Details      string  `gorm:"size:255" json:"details"`

	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Transaction) TableName() string { return "transactions" }

package models

import (
	"time"

	"gorm.io/gorm"
)

// Withdrawal is a payout request against a user's earnings. The amount is
// debited when the request is created; an admin later marks it COMPLETED or
// REJECTED (rejection refunds the balance).
type Withdrawal struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	UserID    uint    `gorm:"not null;index" json:"user_id"`
	Reference string  `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	Amount    float64 `gorm:"not null" json:"amount"`
	Status    string  `gorm:"size:20;not null;index" json:"status"` // PENDING, COMPLETED, REJECTED

	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Withdrawal) TableName() string { return "withdrawals" }

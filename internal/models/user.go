package models

import (
	"time"

	"upline/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Name         string  `gorm:"size:128" json:"name"`
	Username     string  `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string  `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string  `gorm:"size:255" json:"-"`
	PhoneNumber  string  `gorm:"size:20" json:"phone_number"`
	Role         string  `gorm:"size:20;not null;index" json:"role"` // user | admin
	AvatarURL    string  `gorm:"size:512" json:"avatar_url"`

	// Package currently owned. Nil only for the seeded superadmin.
	PackageID *uint    `gorm:"index" json:"package_id"`
	Package   *Package `gorm:"foreignKey:PackageID" json:"package,omitempty"`

	// Username of the referrer. Empty only for the root of the tree.
	// Children are derived by querying referred_by, not stored on the parent.
	ReferredBy string `gorm:"size:64;index" json:"referred_by"`

	Earnings         float64 `gorm:"default:0" json:"earnings"`          // withdrawable balance
	TotalEarnings    float64 `gorm:"default:0" json:"total_earnings"`    // lifetime credit
	TotalWithdrawals float64 `gorm:"default:0" json:"total_withdrawals"`
	BV               float64 `gorm:"default:0" json:"bv"` // cumulative business volume
	MonthlyBV        float64 `gorm:"default:0" json:"monthly_bv"`

	// Code mailed out for password resets; rotated on every successful reset.
	VerificationCode string `gorm:"size:12" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IsAdmin() bool { return u.Role == domain.RoleAdmin }

// IsRoot reports whether the user sits at the top of the referral tree.
func (u *User) IsRoot() bool { return u.ReferredBy == "" }

package models

import (
	"time"

	"gorm.io/gorm"
)

// Package is a purchasable MLM tier. Price is in Naira, BV is the business
// volume awarded on purchase.
type Package struct {
	ID    uint    `gorm:"primaryKey" json:"id"`
	Name  string  `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Price float64 `gorm:"not null" json:"price"`
	BV    float64 `gorm:"not null" json:"bv"`

	// Optional per-package level table, stored as JSON. Kept as reference
	// data for admin tooling; the distribution engine pays out from the
	// global schedule only.
	CommissionLevels string `gorm:"type:text" json:"commission_levels,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Package) TableName() string { return "packages" }

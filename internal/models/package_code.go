package models

import "time"

// PackageCode is a prepaid voucher that gates registration. Codes are
// generated in bulk by an admin and redeemed exactly once: AssignedTo is set
// on redemption and never cleared.
type PackageCode struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Code      string `gorm:"uniqueIndex;size:20;not null" json:"code"`
	PackageID uint   `gorm:"not null;index" json:"package_id"`
	Package   Package `gorm:"foreignKey:PackageID" json:"package,omitempty"`

	// ID of the user who redeemed the code; nil while unused.
	AssignedTo *uint `gorm:"index" json:"assigned_to"`

	CreatedAt time.Time `json:"created_at"`
}

func (PackageCode) TableName() string { return "package_codes" }

func (c *PackageCode) Redeemed() bool { return c.AssignedTo != nil }

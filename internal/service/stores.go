package service

import "upline/internal/models"

// UserStore is the referral-graph access the core services need: point
// lookups by username plus persistence of mutated balance fields. The gorm
// UserRepository satisfies it.
type UserStore interface {
	GetByUsername(username string) (*models.User, error)
	Update(u *models.User) error
	ListReferrals(username string) ([]models.User, error)
}

// Ledger appends immutable balance-affecting records.
type Ledger interface {
	Append(tx *models.Transaction) error
}

// Notifier delivers a best-effort user message. Failures must never abort
// the flow that triggered them.
type Notifier interface {
	Notify(userID uint, notifType, body string) error
}

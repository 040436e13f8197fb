package repository

import (
	"upline/internal/models"

	"gorm.io/gorm"
)

// TransactionRepository is the append-only ledger. It intentionally exposes
// no update or delete methods.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Append(tx *models.Transaction) error {
	return r.db.Create(tx).Error
}

func (r *TransactionRepository) ListByUserID(userID uint, limit, offset int) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

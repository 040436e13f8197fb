package repository

import (
	"time"

	"upline/internal/domain"
	"upline/internal/models"

	"gorm.io/gorm"
)

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) Create(w *models.Withdrawal) error {
	return r.db.Create(w).Error
}

func (r *WithdrawalRepository) GetByID(id uint) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := r.db.First(&w, id).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepository) ListByUserID(userID uint, limit, offset int) ([]models.Withdrawal, error) {
	var list []models.Withdrawal
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *WithdrawalRepository) ListByStatus(status string, limit, offset int) ([]models.Withdrawal, error) {
	var list []models.Withdrawal
	err := r.db.Where("status = ?", status).Order("created_at ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// SetStatus transitions a PENDING withdrawal; completed requests also get a
// completion timestamp.
func (r *WithdrawalRepository) SetStatus(id uint, status string) error {
	updates := map[string]interface{}{"status": status}
	if status == domain.WithdrawalCompleted {
		now := time.Now()
		updates["completed_at"] = &now
	}
	return r.db.Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", id, domain.WithdrawalPending).
		Updates(updates).Error
}

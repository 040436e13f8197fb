package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"upline/internal/domain"
	"upline/internal/middleware"
	"upline/internal/models"
	"upline/internal/repository"
	"upline/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WithdrawalHandler struct {
	userRepo       *repository.UserRepository
	withdrawalRepo *repository.WithdrawalRepository
	txRepo         *repository.TransactionRepository
	notifications  *service.NotificationService
}

func NewWithdrawalHandler(
	userRepo *repository.UserRepository,
	withdrawalRepo *repository.WithdrawalRepository,
	txRepo *repository.TransactionRepository,
	notifications *service.NotificationService,
) *WithdrawalHandler {
	return &WithdrawalHandler{
		userRepo:       userRepo,
		withdrawalRepo: withdrawalRepo,
		txRepo:         txRepo,
		notifications:  notifications,
	}
}

// Create debits earnings immediately and records a PENDING request for an
// admin to settle.
func (h *WithdrawalHandler) Create(c *gin.Context) {
	var req struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.userRepo.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if u.Earnings < req.Amount {
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
		return
	}

	u.Earnings -= req.Amount
	u.TotalWithdrawals += req.Amount
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to debit balance"})
		return
	}

	w := &models.Withdrawal{
		UserID:    u.ID,
		Reference: fmt.Sprintf("wd-%s", uuid.New().String()),
		Amount:    req.Amount,
		Status:    domain.WithdrawalPending,
	}
	if err := h.withdrawalRepo.Create(w); err != nil {
		// Roll the debit back so the money is not stranded.
		u.Earnings += req.Amount
		u.TotalWithdrawals -= req.Amount
		if rErr := h.userRepo.Update(u); rErr != nil {
			log.Printf("[withdrawal] refund after failed create also failed for %s: %v", u.Username, rErr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record withdrawal"})
		return
	}

	if err := h.txRepo.Append(&models.Transaction{
		UserID:       u.ID,
		Type:         domain.TxTypeWithdrawal,
		Amount:       req.Amount,
		BalanceAfter: u.Earnings,
		Details:      "User withdrawal request",
	}); err != nil {
		log.Printf("[withdrawal] ledger append failed for %s: %v", u.Username, err)
	}
	h.notify(u.ID, fmt.Sprintf("Your withdrawal request of ₦%.2f is pending.", req.Amount))

	c.JSON(http.StatusCreated, gin.H{
		"id":        w.ID,
		"reference": w.Reference,
		"amount":    w.Amount,
		"status":    w.Status,
	})
}

// ListMine returns the caller's withdrawal history.
func (h *WithdrawalHandler) ListMine(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.withdrawalRepo.ListByUserID(middleware.GetUserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch withdrawals"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// AdminList returns withdrawals by status (default PENDING). Admin only.
func (h *WithdrawalHandler) AdminList(c *gin.Context) {
	status := c.DefaultQuery("status", domain.WithdrawalPending)
	limit, offset := pagination(c)
	list, err := h.withdrawalRepo.ListByStatus(status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch withdrawals"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// Complete marks a PENDING withdrawal as settled. Admin only.
func (h *WithdrawalHandler) Complete(c *gin.Context) {
	w := h.pendingWithdrawal(c)
	if w == nil {
		return
	}
	if err := h.withdrawalRepo.SetStatus(w.ID, domain.WithdrawalCompleted); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update withdrawal"})
		return
	}
	h.notify(w.UserID, fmt.Sprintf("Your withdrawal of ₦%.2f has been paid out.", w.Amount))
	c.JSON(http.StatusOK, gin.H{"status": domain.WithdrawalCompleted})
}

// Reject refuses a PENDING withdrawal and refunds the debited amount.
// Admin only.
func (h *WithdrawalHandler) Reject(c *gin.Context) {
	w := h.pendingWithdrawal(c)
	if w == nil {
		return
	}
	if err := h.withdrawalRepo.SetStatus(w.ID, domain.WithdrawalRejected); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update withdrawal"})
		return
	}
	u, err := h.userRepo.GetByID(w.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user for refund"})
		return
	}
	u.Earnings += w.Amount
	u.TotalWithdrawals -= w.Amount
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to refund balance"})
		return
	}
	if err := h.txRepo.Append(&models.Transaction{
		UserID:       u.ID,
		Type:         domain.TxTypeEarning,
		Amount:       w.Amount,
		BalanceAfter: u.Earnings,
		Details:      fmt.Sprintf("Refund for rejected withdrawal %s", w.Reference),
	}); err != nil {
		log.Printf("[withdrawal] refund ledger append failed for %s: %v", u.Username, err)
	}
	h.notify(u.ID, fmt.Sprintf("Your withdrawal of ₦%.2f was rejected and refunded.", w.Amount))
	c.JSON(http.StatusOK, gin.H{"status": domain.WithdrawalRejected})
}

// pendingWithdrawal loads the :id withdrawal and writes the error response
// itself when the request cannot proceed.
func (h *WithdrawalHandler) pendingWithdrawal(c *gin.Context) *models.Withdrawal {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid withdrawal id"})
		return nil
	}
	w, err := h.withdrawalRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found"})
		return nil
	}
	if w.Status != domain.WithdrawalPending {
		c.JSON(http.StatusConflict, gin.H{"error": "withdrawal already settled"})
		return nil
	}
	return w
}

func (h *WithdrawalHandler) notify(userID uint, body string) {
	if h.notifications == nil {
		return
	}
	if err := h.notifications.Notify(userID, domain.NotifTypeWithdrawal, body); err != nil {
		log.Printf("[withdrawal] notify user %d failed: %v", userID, err)
	}
}

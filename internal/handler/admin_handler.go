package handler

import (
	"net/http"

	"upline/internal/domain"
	"upline/internal/repository"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	userRepo *repository.UserRepository
	txRepo   *repository.TransactionRepository
}

func NewAdminHandler(userRepo *repository.UserRepository, txRepo *repository.TransactionRepository) *AdminHandler {
	return &AdminHandler{userRepo: userRepo, txRepo: txRepo}
}

// ListUsers returns accounts filtered by role (default "user").
func (h *AdminHandler) ListUsers(c *gin.Context) {
	role := c.DefaultQuery("role", domain.RoleUser)
	limit, offset := pagination(c)
	users, err := h.userRepo.ListByRole(role, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch users"})
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		row := gin.H{
			"id":                u.ID,
			"name":              u.Name,
			"username":          u.Username,
			"email":             u.Email,
			"referred_by":       u.ReferredBy,
			"earnings":          u.Earnings,
			"total_earnings":    u.TotalEarnings,
			"total_withdrawals": u.TotalWithdrawals,
			"bv":                u.BV,
			"monthly_bv":        u.MonthlyBV,
		}
		if u.Package != nil {
			row["package"] = u.Package.Name
		}
		out = append(out, row)
	}
	c.JSON(http.StatusOK, out)
}

// GetUserTransactions returns the ledger for any account by username.
func (h *AdminHandler) GetUserTransactions(c *gin.Context) {
	u, err := h.userRepo.GetByUsername(c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	limit, offset := pagination(c)
	txs, err := h.txRepo.ListByUserID(u.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch transactions"})
		return
	}
	c.JSON(http.StatusOK, txs)
}

package handler

import (
	"net/http"

	"upline/internal/middleware"
	"upline/internal/repository"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	txRepo *repository.TransactionRepository
}

func NewTransactionHandler(txRepo *repository.TransactionRepository) *TransactionHandler {
	return &TransactionHandler{txRepo: txRepo}
}

// ListMine returns the authenticated user's ledger, newest first.
func (h *TransactionHandler) ListMine(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.txRepo.ListByUserID(middleware.GetUserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch transactions"})
		return
	}
	c.JSON(http.StatusOK, list)
}

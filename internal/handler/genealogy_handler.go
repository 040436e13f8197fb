package handler

import (
	"net/http"

	"upline/internal/domain"
	"upline/internal/middleware"
	"upline/internal/service"

	"github.com/gin-gonic/gin"
)

// GenealogyHandler serves the read-only downline queries: the BV tree and
// the incentive qualification check.
type GenealogyHandler struct {
	tree          *service.TreeService
	qualification *service.QualificationService
}

func NewGenealogyHandler(tree *service.TreeService, qualification *service.QualificationService) *GenealogyHandler {
	return &GenealogyHandler{tree: tree, qualification: qualification}
}

// targetUsername is the caller's own username, unless an admin asks for
// someone else via ?username=.
func targetUsername(c *gin.Context) string {
	if requested := c.Query("username"); requested != "" && middleware.GetRole(c) == domain.RoleAdmin {
		return requested
	}
	return middleware.GetUsername(c)
}

func (h *GenealogyHandler) GetTree(c *gin.Context) {
	username := targetUsername(c)
	node, err := h.tree.BuildTree(username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build referral tree"})
		return
	}
	if node == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, node)
}

func (h *GenealogyHandler) CheckQualification(c *gin.Context) {
	username := targetUsername(c)
	result, err := h.qualification.CheckQualification(username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "qualification check failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

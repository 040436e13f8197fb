package handler

import (
	"errors"
	"net/http"
	"strconv"

	"upline/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CodeHandler struct {
	codeRepo    *repository.PackageCodeRepository
	packageRepo *repository.PackageRepository
}

func NewCodeHandler(codeRepo *repository.PackageCodeRepository, packageRepo *repository.PackageRepository) *CodeHandler {
	return &CodeHandler{codeRepo: codeRepo, packageRepo: packageRepo}
}

// Generate bulk-creates prepaid codes for a package. Admin only.
func (h *CodeHandler) Generate(c *gin.Context) {
	var req struct {
		PackageID uint `json:"package_id" binding:"required"`
		Quantity  int  `json:"quantity" binding:"required,min=1,max=1000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.packageRepo.GetByID(req.PackageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid package ID"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	codes, err := h.codeRepo.GenerateBatch(req.PackageID, req.Quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate codes"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "package codes generated successfully", "codes": codes})
}

// List returns codes with their assignment state. Admin only.
func (h *CodeHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	codes, err := h.codeRepo.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch codes"})
		return
	}
	c.JSON(http.StatusOK, codes)
}

// pagination reads limit/offset query params with sane bounds.
func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

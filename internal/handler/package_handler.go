package handler

import (
	"errors"
	"log"
	"net/http"

	"upline/internal/middleware"
	"upline/internal/models"
	"upline/internal/repository"
	"upline/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PackageHandler struct {
	packageRepo *repository.PackageRepository
	svc         *service.PackageService
}

func NewPackageHandler(packageRepo *repository.PackageRepository, svc *service.PackageService) *PackageHandler {
	return &PackageHandler{packageRepo: packageRepo, svc: svc}
}

func (h *PackageHandler) List(c *gin.Context) {
	packages, err := h.packageRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch packages"})
		return
	}
	c.JSON(http.StatusOK, packages)
}

// Create adds a new MLM package. Admin only.
func (h *PackageHandler) Create(c *gin.Context) {
	var req struct {
		Name             string  `json:"name" binding:"required"`
		Price            float64 `json:"price" binding:"required,gt=0"`
		BV               float64 `json:"bv" binding:"required,gt=0"`
		CommissionLevels string  `json:"commission_levels"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.packageRepo.GetByName(req.Name); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "package already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	p := &models.Package{
		Name:             req.Name,
		Price:            req.Price,
		BV:               req.BV,
		CommissionLevels: req.CommissionLevels,
	}
	if err := h.packageRepo.Create(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create package"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "package added successfully", "package": p})
}

// Upgrade moves the authenticated user to a higher package, paid from
// earnings.
func (h *PackageHandler) Upgrade(c *gin.Context) {
	var req struct {
		NewPackageID uint `json:"new_package_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.GetUserID(c)
	u, reward, err := h.svc.Upgrade(userID, req.NewPackageID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPackage),
			errors.Is(err, service.ErrNotHigherPackage),
			errors.Is(err, service.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrDistributionFailed):
			// Upgrade itself is committed; only the upline payout failed.
			log.Printf("[package] distribution failed after upgrade for user %d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error distributing commission, try again later"})
		default:
			log.Printf("[package] upgrade failed for user %d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upgrade failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "package upgraded successfully",
		"user":    u,
		"reward":  reward,
	})
}

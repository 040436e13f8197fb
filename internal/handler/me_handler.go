package handler

import (
	"fmt"
	"log"
	"net/http"

	"upline/internal/middleware"
	"upline/internal/repository"
	"upline/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type MeHandler struct {
	userRepo *repository.UserRepository
	cloud    cloudinary.Client
}

func NewMeHandler(userRepo *repository.UserRepository, cloud cloudinary.Client) *MeHandler {
	return &MeHandler{userRepo: userRepo, cloud: cloud}
}

// GetProfile returns the authenticated user's profile with package and
// direct referrals.
func (h *MeHandler) GetProfile(c *gin.Context) {
	u, err := h.userRepo.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	referrals, err := h.userRepo.ListReferrals(u.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load referrals"})
		return
	}
	type referralSummary struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	refs := make([]referralSummary, 0, len(referrals))
	for _, r := range referrals {
		refs = append(refs, referralSummary{Username: r.Username, Email: r.Email})
	}
	c.JSON(http.StatusOK, gin.H{
		"name":              u.Name,
		"username":          u.Username,
		"email":             u.Email,
		"phone_number":      u.PhoneNumber,
		"avatar_url":        u.AvatarURL,
		"package":           u.Package,
		"earnings":          u.Earnings,
		"total_earnings":    u.TotalEarnings,
		"bv":                u.BV,
		"total_withdrawals": u.TotalWithdrawals,
		"monthly_bv":        u.MonthlyBV,
		"referrals":         refs,
		"created_at":        u.CreatedAt,
	})
}

// UpdateProfile updates the provided fields only.
func (h *MeHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number"`
		Password    string `json:"password"`
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
	if req.Username != "" {
		u.Username = req.Username
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	if req.PhoneNumber != "" {
		u.PhoneNumber = req.PhoneNumber
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
			return
		}
		u.PasswordHash = string(hash)
	}
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile updated successfully", "user": u})
}

// UploadAvatar stores a profile picture and saves its delivery URL.
func (h *MeHandler) UploadAvatar(c *gin.Context) {
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads not configured"})
		return
	}
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file required"})
		return
	}
	defer file.Close()
	if header.Size > 5<<20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar too large (max 5MB)"})
		return
	}
	userID := middleware.GetUserID(c)
	url, err := h.cloud.UploadAvatar(c.Request.Context(), file, fmt.Sprintf("user_%d", userID))
	if err != nil {
		log.Printf("[me] avatar upload failed for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	u.AvatarURL = url
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save avatar"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}

// GetSummary returns the earnings figures shown on the dashboard.
func (h *MeHandler) GetSummary(c *gin.Context) {
	u, err := h.userRepo.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"earnings":          u.Earnings,
		"total_earnings":    u.TotalEarnings,
		"total_withdrawals": u.TotalWithdrawals,
		"monthly_bv":        u.MonthlyBV,
	})
}

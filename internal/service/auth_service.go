package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"

	"upline/config"
	"upline/internal/auth"
	"upline/internal/domain"
	"upline/internal/models"
	"upline/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrUsernameExists     = errors.New("username already taken")
	ErrInvalidCreds       = errors.New("invalid email or password")
	ErrWrongPortal        = errors.New("wrong login portal for this account")
	ErrInvalidPackageCode = errors.New("invalid or used package code")
	ErrInvalidReferrer    = errors.New("invalid referrer username")
	ErrInvalidResetCode   = errors.New("invalid or expired reset code")
)

// AuthService handles registration (package-code gated), login and password
// management. Registration is the entry point that triggers commission
// distribution up the referral chain.
type AuthService struct {
	cfg           *config.Config
	users         *repository.UserRepository
	codes         *repository.PackageCodeRepository
	ledger        *repository.TransactionRepository
	notifications *NotificationService
	commissions   *CommissionService
	mailer        *EmailService
}

func NewAuthService(
	cfg *config.Config,
	users *repository.UserRepository,
	codes *repository.PackageCodeRepository,
	ledger *repository.TransactionRepository,
	notifications *NotificationService,
	commissions *CommissionService,
	mailer *EmailService,
) *AuthService {
	return &AuthService{
		cfg:           cfg,
		users:         users,
		codes:         codes,
		ledger:        ledger,
		notifications: notifications,
		commissions:   commissions,
		mailer:        mailer,
	}
}

// RegisterInput carries the validated registration payload.
type RegisterInput struct {
	Name        string
	Username    string
	Email       string
	Password    string
	PhoneNumber string
	PackageCode string
	ReferredBy  string // optional referrer username
	Role        string
}

// Register creates the user, redeems the package code, credits the signup
// bonus and then synchronously distributes commission up the referral chain.
//
// Side effects are sequential, not transactional: if distribution fails the
// created user, redeemed code and signup bonus stay committed and the error
// is returned for the handler to surface.
func (s *AuthService) Register(in RegisterInput) (*models.User, string, string, error) {
	if _, err := s.users.GetByUsername(in.Username); err == nil {
		return nil, "", "", ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	if _, err := s.users.GetByEmail(in.Email); err == nil {
		return nil, "", "", ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}

	code, err := s.codes.GetUnused(in.PackageCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidPackageCode
		}
		return nil, "", "", err
	}

	referredBy := domain.SuperadminUsername
	if in.ReferredBy != "" {
		referrer, err := s.users.GetByUsername(in.ReferredBy)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "", "", ErrInvalidReferrer
			}
			return nil, "", "", err
		}
		referredBy = referrer.Username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}

	role := in.Role
	if role != domain.RoleAdmin {
		role = domain.RoleUser
	}

	pkg := code.Package
	bonus := pkg.Price * domain.WelcomeBonusPercent / 100

	u := &models.User{
		Name:             in.Name,
		Username:         in.Username,
		Email:            in.Email,
		PasswordHash:     string(hash),
		PhoneNumber:      in.PhoneNumber,
		Role:             role,
		PackageID:        &code.PackageID,
		ReferredBy:       referredBy,
		Earnings:         bonus,
		TotalEarnings:    bonus,
		BV:               pkg.BV,
		MonthlyBV:        pkg.BV,
		VerificationCode: newResetCode(),
	}
	if err := s.users.Create(u); err != nil {
		return nil, "", "", err
	}
	u.Package = &pkg

	if err := s.ledger.Append(&models.Transaction{
		UserID:       u.ID,
		Type:         domain.TxTypeBonus,
		Amount:       bonus,
		BalanceAfter: u.Earnings,
		Details:      "Registration bonus",
	}); err != nil {
		return nil, "", "", err
	}

	if err := s.codes.Assign(code.ID, u.ID); err != nil {
		return nil, "", "", err
	}

	// Synchronous; a failure here surfaces to the caller but nothing above
	// is rolled back.
	if err := s.commissions.Distribute(u.Username, false, nil); err != nil {
		return nil, "", "", err
	}

	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Username, u.Email, u.Role)
	if err != nil {
		return u, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return u, access, "", err
	}
	return u, access, refresh, nil
}

// Login authenticates by email. portal, when non-empty, must match the
// account role so users cannot sign in through the admin portal and vice
// versa.
func (s *AuthService) Login(email, password, portal string) (*models.User, string, string, error) {
	u, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if portal != "" && u.Role != portal {
		return nil, "", "", ErrWrongPortal
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, _ := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Username, u.Email, u.Role)
	refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	return u, access, refresh, nil
}

func (s *AuthService) RefreshToken(refreshToken string) (string, string, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return "", "", auth.ErrInvalidToken
	}
	u, err := s.users.GetByID(userID)
	if err != nil {
		return "", "", auth.ErrInvalidToken
	}
	access, _ := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Username, u.Email, u.Role)
	refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	return access, refresh, nil
}

// ChangePassword updates the user's password after verifying the current one.
func (s *AuthService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	u, err := s.users.GetByID(userID)
	if err != nil {
		return ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCreds
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return s.users.Update(u)
}

// ForgotPassword emails the stored reset code to the account. Always
// succeeds silently for unknown emails so the endpoint cannot be used to
// probe which addresses exist.
func (s *AuthService) ForgotPassword(email string) error {
	u, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if u.VerificationCode == "" {
		u.VerificationCode = newResetCode()
		if err := s.users.Update(u); err != nil {
			return err
		}
	}
	if s.mailer == nil {
		log.Printf("[auth] mailer not configured, reset code for %s not sent", email)
		return nil
	}
	return s.mailer.SendPasswordReset(u.Email, u.VerificationCode)
}

// ResetPassword sets a new password for the account holding the reset code,
// then rotates the code so it cannot be replayed.
func (s *AuthService) ResetPassword(code, newPassword string) error {
	u, err := s.users.GetByVerificationCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetCode
		}
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.VerificationCode = newResetCode()
	return s.users.Update(u)
}

// newResetCode returns a random 6-digit code.
func newResetCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}

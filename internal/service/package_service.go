package service

import (
	"errors"
	"fmt"
	"log"

	"upline/internal/domain"
	"upline/internal/models"
	"upline/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrInvalidPackage      = errors.New("invalid package")
	ErrNotHigherPackage    = errors.New("upgrade must be to a higher package")
	ErrInsufficientBalance = errors.New("insufficient balance for upgrade")
)

// UpgradeReward summarizes what the upgrading user received.
type UpgradeReward struct {
	Cash float64 `json:"cash"`
	BV   float64 `json:"bv"`
}

// PackageService handles the catalog and package upgrades. An upgrade pays
// the cost out of earnings, grants a 20% cash reward plus the BV delta, and
// then re-runs commission distribution in upgrade mode.
type PackageService struct {
	users         *repository.UserRepository
	packages      *repository.PackageRepository
	ledger        *repository.TransactionRepository
	notifications *NotificationService
	commissions   *CommissionService
}

func NewPackageService(
	users *repository.UserRepository,
	packages *repository.PackageRepository,
	ledger *repository.TransactionRepository,
	notifications *NotificationService,
	commissions *CommissionService,
) *PackageService {
	return &PackageService{
		users:         users,
		packages:      packages,
		ledger:        ledger,
		notifications: notifications,
		commissions:   commissions,
	}
}

// Upgrade moves the user to a strictly higher-priced package.
//
// Like registration, the side effects are sequential: once the user row is
// saved the upgrade has happened, and a later distribution failure surfaces
// as an error without undoing it.
func (s *PackageService) Upgrade(userID, newPackageID uint) (*models.User, *UpgradeReward, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, nil, err
	}
	newPkg, err := s.packages.GetByID(newPackageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidPackage
		}
		return nil, nil, err
	}

	var prevPrice, prevBV float64
	var prev *models.Package
	if user.Package != nil {
		prevCopy := *user.Package
		prev = &prevCopy
		prevPrice = prevCopy.Price
		prevBV = prevCopy.BV
	}
	if prev != nil && prevPrice >= newPkg.Price {
		return nil, nil, ErrNotHigherPackage
	}

	upgradeCost := newPkg.Price - prevPrice
	if user.Earnings < upgradeCost {
		return nil, nil, ErrInsufficientBalance
	}

	bvDelta := newPkg.BV - prevBV
	cashReward := upgradeCost * domain.WelcomeBonusPercent / 100

	user.Earnings -= upgradeCost
	user.Earnings += cashReward
	user.TotalEarnings += cashReward
	user.BV += bvDelta
	user.MonthlyBV += bvDelta
	user.PackageID = &newPkg.ID
	user.Package = newPkg
	if err := s.users.Update(user); err != nil {
		return nil, nil, err
	}

	if err := s.commissions.Distribute(user.Username, true, prev); err != nil {
		return nil, nil, err
	}

	prevName := ""
	if prev != nil {
		prevName = prev.Name
	}
	if err := s.ledger.Append(&models.Transaction{
		UserID:       user.ID,
		Type:         domain.TxTypePackageUpgrade,
		Amount:       upgradeCost,
		BalanceAfter: user.Earnings,
		Details:      fmt.Sprintf("Package upgrade from %s to %s", prevName, newPkg.Name),
	}); err != nil {
		return nil, nil, err
	}
	s.notify(user.ID, fmt.Sprintf("You upgraded your package from %s to %s.", prevName, newPkg.Name))

	if err := s.ledger.Append(&models.Transaction{
		UserID:       user.ID,
		Type:         domain.TxTypeUpgradeReward,
		Amount:       cashReward,
		BalanceAfter: user.Earnings,
		Details:      fmt.Sprintf("20%% reward for upgrading package from %s to %s", prevName, newPkg.Name),
	}); err != nil {
		return nil, nil, err
	}
	s.notify(user.ID, fmt.Sprintf("You received ₦%.2f for upgrading your package.", cashReward))

	return user, &UpgradeReward{Cash: cashReward, BV: bvDelta}, nil
}

func (s *PackageService) notify(userID uint, body string) {
	if s.notifications == nil {
		return
	}
	if err := s.notifications.Notify(userID, domain.NotifTypeUpgrade, body); err != nil {
		log.Printf("[package] notify user %d failed: %v", userID, err)
	}
}

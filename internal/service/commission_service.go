package service

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"upline/internal/domain"
	"upline/internal/models"
	"upline/internal/monitoring"

	"gorm.io/gorm"
)

// ErrDistributionFailed wraps any persistence failure inside a distribution
// run. Earlier levels stay committed; the caller decides what to surface.
var ErrDistributionFailed = errors.New("commission distribution failed")

// CommissionService walks the upline of a freshly registered or upgraded
// user and credits each referrer according to the injected schedule.
type CommissionService struct {
	users    UserStore
	ledger   Ledger
	notifier Notifier
	schedule domain.CommissionSchedule
	locks    userLocks
}

func NewCommissionService(users UserStore, ledger Ledger, notifier Notifier, schedule domain.CommissionSchedule) *CommissionService {
	return &CommissionService{
		users:    users,
		ledger:   ledger,
		notifier: notifier,
		schedule: schedule,
	}
}

// levelAward is one planned credit for a single upline level.
type levelAward struct {
	referrer   *models.User
	level      int
	percentage float64
	amount     float64

	// credited is false on the upgrade path when the award came out <= 0;
	// the referrer still receives the BV delta but no money, ledger entry
	// or notification.
	credited bool

	bvDelta float64 // upgrade BV difference, applied regardless of credit
	addBV   float64 // full package BV, applied only when credited

	txType  string
	details string
	notice  string
}

// shortfallAward reallocates the unconsumed share of the schedule to the
// deepest referrer reached.
type shortfallAward struct {
	referrer *models.User
	amount   float64
	details  string
	notice   string
}

type distributionPlan struct {
	levels    []levelAward
	shortfall *shortfallAward
}

// Distribute credits the upline of username. isUpgrade switches the engine
// to delta awards against previousPackage plus a one-time welcome bonus.
//
// Missing user, missing referrer and unresolvable package are silent no-ops
// (logged only). A failed save or ledger append aborts the remainder of the
// walk and returns a wrapped ErrDistributionFailed; levels already committed
// are not rolled back.
func (s *CommissionService) Distribute(username string, isUpgrade bool, previousPackage *models.Package) error {
	plan, err := s.buildPlan(username, isUpgrade, previousPackage)
	if err != nil {
		return err
	}
	if plan == nil {
		return nil
	}
	return s.commit(plan)
}

// buildPlan performs the upline walk and computes every award without
// mutating anything. All validation and the shortfall reallocation decision
// happen here.
func (s *CommissionService) buildPlan(username string, isUpgrade bool, previousPackage *models.Package) (*distributionPlan, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[commission] no user %q, nothing to distribute", username)
			return nil, nil
		}
		return nil, fmt.Errorf("%w: load %s: %v", ErrDistributionFailed, username, err)
	}
	if user.IsRoot() {
		return nil, nil
	}
	if user.Package == nil {
		log.Printf("[commission] package not populated for %q, skipping", username)
		return nil, nil
	}

	price := user.Package.Price
	packageBV := user.Package.BV

	var bvDelta, welcomeBonus float64
	if isUpgrade {
		if previousPackage == nil || previousPackage.Price <= 0 || previousPackage.BV <= 0 {
			log.Printf("[commission] invalid previous package data for %q, skipping", username)
			return nil, nil
		}
		bvDelta = packageBV - previousPackage.BV
		// Computed once for the whole walk, not per level.
		welcomeBonus = (price - previousPackage.Price) * domain.WelcomeBonusPercent / 100
	}

	plan := &distributionPlan{}
	referrerUsername := user.ReferredBy
	level := 1
	totalDistributed := 0.0
	var lastValid *models.User

	for referrerUsername != "" && level <= s.schedule.Depth() {
		percentage := s.schedule.PercentageAt(level)

		referrer, err := s.users.GetByUsername(referrerUsername)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return nil, fmt.Errorf("%w: load referrer %s: %v", ErrDistributionFailed, referrerUsername, err)
		}
		lastValid = referrer

		amount := price * percentage / 100
		award := levelAward{
			referrer:   referrer,
			level:      level,
			percentage: percentage,
			credited:   true,
			addBV:      packageBV,
			txType:     domain.TxTypeCommission,
			details:    fmt.Sprintf("Commission from referring %s", user.Username),
		}
		if isUpgrade {
			amount = amount - previousPackage.Price*percentage/100 + welcomeBonus
			award.bvDelta = bvDelta
			award.txType = domain.TxTypeUpgradeCommission
			award.details = fmt.Sprintf("Additional commission from %s's upgrade", user.Username)
			if amount <= 0 {
				// No money at this level, but the BV delta still lands.
				award.credited = false
				award.addBV = 0
			}
		}
		award.amount = amount
		if award.credited {
			totalDistributed += percentage
			award.notice = fmt.Sprintf("You earned ₦%.2f from %s.", amount, user.Username)
		}
		plan.levels = append(plan.levels, award)

		referrerUsername = referrer.ReferredBy
		level++
	}

	if lastValid != nil && totalDistributed < s.schedule.Total() {
		remaining := s.schedule.Total() - totalDistributed
		amount := price * remaining / 100
		plan.shortfall = &shortfallAward{
			referrer: lastValid,
			amount:   amount,
			details:  fmt.Sprintf("Extra commission due to incomplete upline structure from %s", user.Username),
			notice:   fmt.Sprintf("You received ₦%.2f extra commission from %s.", amount, user.Username),
		}
	}
	return plan, nil
}

// commit applies the plan level by level: mutate balances, append a ledger
// entry, fire a notification. Best-effort sequential — a failed save aborts
// the remainder but leaves prior levels committed.
func (s *CommissionService) commit(plan *distributionPlan) error {
	for i := range plan.levels {
		a := &plan.levels[i]
		if err := s.commitLevel(a); err != nil {
			return err
		}
	}
	if sf := plan.shortfall; sf != nil {
		if err := s.commitShortfall(sf); err != nil {
			return err
		}
	}
	return nil
}

func (s *CommissionService) commitLevel(a *levelAward) error {
	unlock := s.locks.lock(a.referrer.Username)
	defer unlock()

	a.referrer.BV += a.bvDelta
	if !a.credited {
		// Upgrade level with zero or negative award: persist the BV delta only.
		if err := s.users.Update(a.referrer); err != nil {
			return fmt.Errorf("%w: save referrer %s: %v", ErrDistributionFailed, a.referrer.Username, err)
		}
		return nil
	}

	a.referrer.Earnings += a.amount
	a.referrer.TotalEarnings += a.amount
	a.referrer.BV += a.addBV
	a.referrer.MonthlyBV += a.addBV
	if err := s.users.Update(a.referrer); err != nil {
		return fmt.Errorf("%w: save referrer %s: %v", ErrDistributionFailed, a.referrer.Username, err)
	}

	if err := s.ledger.Append(&models.Transaction{
		UserID:       a.referrer.ID,
		Type:         a.txType,
		Amount:       a.amount,
		BalanceAfter: a.referrer.Earnings,
		Details:      a.details,
	}); err != nil {
		return fmt.Errorf("%w: ledger append for %s: %v", ErrDistributionFailed, a.referrer.Username, err)
	}

	monitoring.CommissionsDistributed.WithLabelValues(a.txType).Inc()
	monitoring.CommissionAmountTotal.Add(a.amount)

	s.notify(a.referrer.ID, a.notice)
	return nil
}

func (s *CommissionService) commitShortfall(sf *shortfallAward) error {
	unlock := s.locks.lock(sf.referrer.Username)
	defer unlock()

	sf.referrer.Earnings += sf.amount
	sf.referrer.TotalEarnings += sf.amount
	if err := s.users.Update(sf.referrer); err != nil {
		return fmt.Errorf("%w: save referrer %s: %v", ErrDistributionFailed, sf.referrer.Username, err)
	}
	if err := s.ledger.Append(&models.Transaction{
		UserID:       sf.referrer.ID,
		Type:         domain.TxTypeExtraCommission,
		Amount:       sf.amount,
		BalanceAfter: sf.referrer.Earnings,
		Details:      sf.details,
	}); err != nil {
		return fmt.Errorf("%w: ledger append for %s: %v", ErrDistributionFailed, sf.referrer.Username, err)
	}

	monitoring.CommissionsDistributed.WithLabelValues(domain.TxTypeExtraCommission).Inc()
	monitoring.CommissionAmountTotal.Add(sf.amount)

	s.notify(sf.referrer.ID, sf.notice)
	return nil
}

// notify swallows delivery errors: a dead notifier must not abort the walk.
func (s *CommissionService) notify(userID uint, body string) {
	if s.notifier == nil || body == "" {
		return
	}
	if err := s.notifier.Notify(userID, domain.NotifTypeCommission, body); err != nil {
		log.Printf("[commission] notify user %d failed: %v", userID, err)
	}
}

// userLocks serializes balance read-modify-writes per username so two
// concurrent distributions through the same upline cannot lose an update.
type userLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (l *userLocks) lock(username string) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[string]*sync.Mutex)
	}
	um := l.m[username]
	if um == nil {
		um = &sync.Mutex{}
		l.m[username] = um
	}
	l.mu.Unlock()
	um.Lock()
	return um.Unlock
}

package service

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"testing"

	"upline/internal/domain"
	"upline/internal/models"

	"gorm.io/gorm"
)

// stubStore is an in-memory UserStore shared by the service tests.
type stubStore struct {
	users     map[string]*models.User
	updated   []string
	failSave  string // username whose Update call fails
	listErr   error
}

func newStubStore(users ...*models.User) *stubStore {
	s := &stubStore{users: map[string]*models.User{}}
	for _, u := range users {
		s.users[u.Username] = u
	}
	return s
}

func (s *stubStore) GetByUsername(username string) (*models.User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (s *stubStore) Update(u *models.User) error {
	if s.failSave != "" && u.Username == s.failSave {
		return errors.New("save failed")
	}
	s.updated = append(s.updated, u.Username)
	return nil
}

func (s *stubStore) ListReferrals(username string) ([]models.User, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.User
	for _, u := range s.users {
		if u.ReferredBy == username {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type stubLedger struct {
	entries []models.Transaction
	err     error
}

func (l *stubLedger) Append(tx *models.Transaction) error {
	if l.err != nil {
		return l.err
	}
	l.entries = append(l.entries, *tx)
	return nil
}

type stubNotifier struct {
	sent []string
	err  error
}

func (n *stubNotifier) Notify(userID uint, notifType, body string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, fmt.Sprintf("%d:%s", userID, body))
	return nil
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// chain builds root <- r1 <- ... <- rN <- member where member holds pkg.
func chain(depth int, pkg *models.Package) (*stubStore, *models.User) {
	root := &models.User{ID: 1, Username: "superadmin"}
	users := []*models.User{root}
	prev := "superadmin"
	for i := 1; i <= depth; i++ {
		name := fmt.Sprintf("r%d", i)
		users = append(users, &models.User{ID: uint(i + 1), Username: name, ReferredBy: prev})
		prev = name
	}
	member := &models.User{
		ID:         uint(depth + 2),
		Username:   "member",
		ReferredBy: prev,
		PackageID:  &pkg.ID,
		Package:    pkg,
	}
	users = append(users, member)
	return newStubStore(users...), member
}

func TestDistributeFullChain(t *testing.T) {
	pkg := &models.Package{Name: "Gold", Price: 1000, BV: 50}
	pkg.ID = 10
	store, _ := chain(6, pkg)
	ledger := &stubLedger{}
	notifier := &stubNotifier{}
	svc := NewCommissionService(store, ledger, notifier, domain.DefaultCommissionSchedule())

	if err := svc.Distribute("member", false, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// r6 is level 1 (member's direct referrer), r1 is level 6.
	want := map[string]float64{
		"r6": 200, "r5": 100, "r4": 50, "r3": 15, "r2": 10, "r1": 5,
	}
	total := 0.0
	for name, amount := range want {
		u := store.users[name]
		if !almostEqual(u.Earnings, amount) {
			t.Errorf("%s earnings = %v, want %v", name, u.Earnings, amount)
		}
		if !almostEqual(u.TotalEarnings, amount) {
			t.Errorf("%s total earnings = %v, want %v", name, u.TotalEarnings, amount)
		}
		if !almostEqual(u.BV, 50) || !almostEqual(u.MonthlyBV, 50) {
			t.Errorf("%s BV/monthly = %v/%v, want 50/50", name, u.BV, u.MonthlyBV)
		}
		total += amount
	}
	if !almostEqual(total, 380) {
		t.Errorf("total distributed = %v, want 380 (38%% of 1000)", total)
	}

	if len(ledger.entries) != 6 {
		t.Fatalf("ledger entries = %d, want 6", len(ledger.entries))
	}
	for _, e := range ledger.entries {
		if e.Type != domain.TxTypeCommission {
			t.Errorf("ledger type = %q, want %q", e.Type, domain.TxTypeCommission)
		}
	}
	if len(notifier.sent) != 6 {
		t.Errorf("notifications = %d, want 6", len(notifier.sent))
	}
}

func TestDistributeShortChainReallocatesShortfall(t *testing.T) {
	pkg := &models.Package{Name: "Gold", Price: 1000, BV: 50}
	pkg.ID = 10
	// Only two referrers above member; the chain top has no referrer, so the
	// walk stops at depth 2 and 8% (38 - 20 - 10) goes to the deepest one.
	r1 := &models.User{ID: 1, Username: "r1"}
	r2 := &models.User{ID: 2, Username: "r2", ReferredBy: "r1"}
	member := &models.User{ID: 3, Username: "member", ReferredBy: "r2", PackageID: &pkg.ID, Package: pkg}
	store := newStubStore(r1, r2, member)
	ledger := &stubLedger{}
	svc := NewCommissionService(store, ledger, &stubNotifier{}, domain.DefaultCommissionSchedule())

	if err := svc.Distribute("member", false, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(r2.Earnings, 200) {
		t.Errorf("r2 earnings = %v, want 200", r2.Earnings)
	}
	// r1 is the deepest referrer reached: level-2 commission plus the 8% extra.
	if !almostEqual(r1.Earnings, 100+80) {
		t.Errorf("r1 earnings = %v, want 180", r1.Earnings)
	}

	if len(ledger.entries) != 3 {
		t.Fatalf("ledger entries = %d, want 3", len(ledger.entries))
	}
	last := ledger.entries[2]
	if last.Type != domain.TxTypeExtraCommission {
		t.Errorf("last entry type = %q, want %q", last.Type, domain.TxTypeExtraCommission)
	}
	if !almostEqual(last.Amount, 80) {
		t.Errorf("extra commission = %v, want 80", last.Amount)
	}
	if !almostEqual(last.BalanceAfter, 180) {
		t.Errorf("extra commission balance after = %v, want 180", last.BalanceAfter)
	}
}

func TestDistributeLedgerSnapshotsBalance(t *testing.T) {
	pkg := &models.Package{Name: "Gold", Price: 1000, BV: 50}
	pkg.ID = 10
	r1 := &models.User{ID: 1, Username: "r1", Earnings: 500, TotalEarnings: 900}
	member := &models.User{ID: 2, Username: "member", ReferredBy: "r1", PackageID: &pkg.ID, Package: pkg}
	store := newStubStore(r1, member)
	ledger := &stubLedger{}
	svc := NewCommissionService(store, ledger, nil, domain.DefaultCommissionSchedule())

	if err := svc.Distribute("member", false, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ledger.entries) == 0 {
		t.Fatal("expected ledger entries")
	}
	// First entry: 500 existing + 200 level-1 commission.
	if !almostEqual(ledger.entries[0].BalanceAfter, 700) {
		t.Errorf("balance after = %v, want 700", ledger.entries[0].BalanceAfter)
	}
}

func TestDistributeRootIsNoOp(t *testing.T) {
	root := &models.User{ID: 1, Username: "superadmin"}
	store := newStubStore(root)
	ledger := &stubLedger{}
	svc := NewCommissionService(store, ledger, &stubNotifier{}, domain.DefaultCommissionSchedule())

	if err := svc.Distribute("superadmin", false, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.updated) != 0 || len(ledger.entries) != 0 {
		t.Errorf("root distribution must not touch anything, got %d updates %d entries",
			len(store.updated), len(ledger.entries))
	}
}

func TestDistributeUnknownUserIsNoOp(t *testing.T) {
	store := newStubStore()
	svc := NewCommissionService(store, &stubLedger{}, &stubNotifier{}, domain.DefaultCommissionSchedule())
	if err := svc.Distribute("ghost", false, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDistributeUpgradeDeltaWithWelcomeBonus(t *testing.T) {
	prev := &models.Package{Name: "Silver", Price: 1000, BV: 50}
	prev.ID = 9
	next := &models.Package{Name: "Gold", Price: 1500, BV: 80}
	next.ID = 10
	r1 := &models.User{ID: 1, Username: "r1", BV: 50, MonthlyBV: 50}
	member := &models.User{ID: 2, Username: "member", ReferredBy: "r1", PackageID: &next.ID, Package: next}
	store := newStubStore(r1, member)
	ledger := &stubLedger{}
	svc := NewCommissionService(store, ledger, &stubNotifier{}, domain.DefaultCommissionSchedule())

	if err := svc.Distribute("member", true, prev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Level 1: price delta commission 300-200 plus welcome bonus 100. r1 is
	// also the deepest referrer, so the unwalked 18% of 1500 (270) lands as
	// extra commission.
	wantLevel := 1500*0.20 - 1000*0.20 + 100.0
	if !almostEqual(r1.Earnings, wantLevel+270) {
		t.Errorf("r1 earnings = %v, want %v", r1.Earnings, wantLevel+270)
	}
	if !almostEqual(ledger.entries[0].Amount, wantLevel) {
		t.Errorf("level-1 upgrade award = %v, want %v", ledger.entries[0].Amount, wantLevel)
	}
	if ledger.entries[0].Type != domain.TxTypeUpgradeCommission {
		t.Errorf("entry type = %q, want %q", ledger.entries[0].Type, domain.TxTypeUpgradeCommission)
	}
	// BV delta 30 plus the full new package BV 80 on the credited level.
	if !almostEqual(r1.BV, 50+30+80) {
		t.Errorf("r1 BV = %v, want 160", r1.BV)
	}
	if !almostEqual(r1.MonthlyBV, 50+80) {
		t.Errorf("r1 monthly BV = %v, want 130", r1.MonthlyBV)
	}
}

func TestDistributeUpgradeSkipStillAppliesBVDelta(t *testing.T) {
	// Previous package costs more than the new one, so the per-level award is
	// negative. No credit, no ledger entry, but the BV delta still lands.
	prev := &models.Package{Name: "Gold", Price: 2000, BV: 100}
	prev.ID = 9
	next := &models.Package{Name: "Silver", Price: 1500, BV: 80}
	next.ID = 10
	r1 := &models.User{ID: 1, Username: "r1", BV: 100, MonthlyBV: 100}
	member := &models.User{ID: 2, Username: "member", ReferredBy: "r1", PackageID: &next.ID, Package: next}
	store := newStubStore(r1, member)
	ledger := &stubLedger{}
	notifier := &stubNotifier{}
	svc := NewCommissionService(store, ledger, notifier, domain.DefaultCommissionSchedule())

	if err := svc.Distribute("member", true, prev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No level credit, but the whole 38% of 1500 reallocates to r1 as extra
	// commission since nothing was distributed.
	if !almostEqual(r1.Earnings, 570) {
		t.Errorf("r1 earnings = %v, want 570 (extra commission only)", r1.Earnings)
	}
	if !almostEqual(r1.BV, 100-20) {
		t.Errorf("r1 BV = %v, want 80 (delta still applied)", r1.BV)
	}
	if !almostEqual(r1.MonthlyBV, 100) {
		t.Errorf("r1 monthly BV = %v, want unchanged 100", r1.MonthlyBV)
	}
	for _, e := range ledger.entries {
		if e.UserID == r1.ID && e.Type == domain.TxTypeUpgradeCommission {
			t.Errorf("skipped level must not write a commission entry: %+v", e)
		}
	}
	if len(store.updated) == 0 {
		t.Error("BV delta must still be persisted")
	}
}

func TestDistributeNotifierFailureDoesNotAbort(t *testing.T) {
	pkg := &models.Package{Name: "Gold", Price: 1000, BV: 50}
	pkg.ID = 10
	store, _ := chain(3, pkg)
	ledger := &stubLedger{}
	notifier := &stubNotifier{err: errors.New("socket closed")}
	svc := NewCommissionService(store, ledger, notifier, domain.DefaultCommissionSchedule())

	if err := svc.Distribute("member", false, nil); err != nil {
		t.Fatalf("notifier failure must not fail distribution: %v", err)
	}
	// r3, r2, r1 and superadmin all receive commission, then the 1.5%
	// shortfall for the two unreached levels goes to superadmin.
	if len(ledger.entries) != 5 {
		t.Errorf("ledger entries = %d, want 5", len(ledger.entries))
	}
}

func TestDistributeSaveFailureAbortsRemainder(t *testing.T) {
	pkg := &models.Package{Name: "Gold", Price: 1000, BV: 50}
	pkg.ID = 10
	store, _ := chain(6, pkg)
	store.failSave = "r5" // level 2
	ledger := &stubLedger{}
	svc := NewCommissionService(store, ledger, &stubNotifier{}, domain.DefaultCommissionSchedule())

	err := svc.Distribute("member", false, nil)
	if !errors.Is(err, ErrDistributionFailed) {
		t.Fatalf("err = %v, want ErrDistributionFailed", err)
	}
	// Level 1 committed before the failure and is not rolled back.
	if !almostEqual(store.users["r6"].Earnings, 200) {
		t.Errorf("r6 earnings = %v, want 200", store.users["r6"].Earnings)
	}
	if len(ledger.entries) != 1 {
		t.Errorf("ledger entries = %d, want 1", len(ledger.entries))
	}
}

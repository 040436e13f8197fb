package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Ledger entry types. Entries are append-only; no code path mutates or
// deletes a transaction once written.
const (
	TxTypeBonus             = "bonus"
	TxTypeCommission        = "commission"
	TxTypeUpgradeCommission = "upgrade-commission"
	TxTypeExtraCommission   = "extra-commission"
	TxTypePackageUpgrade    = "package-upgrade"
	TxTypeUpgradeReward     = "upgrade-reward"
	TxTypeWithdrawal        = "withdrawal"
	TxTypeEarning           = "earning"
)

const (
	WithdrawalPending   = "PENDING"
	WithdrawalCompleted = "COMPLETED"
	WithdrawalRejected  = "REJECTED"
)

const (
	NotifTypeCommission = "COMMISSION"
	NotifTypeUpgrade    = "UPGRADE"
	NotifTypeWithdrawal = "WITHDRAWAL"
	NotifTypeGeneral    = "GENERAL"
)

// Username of the seeded root account. Users who register without naming a
// referrer are attached to it so the referral relation stays a single tree.
const SuperadminUsername = "superadmin"

// Percentage of the package price difference paid out as a one-time
// welcome/reward bonus on registration and upgrade.
const WelcomeBonusPercent = 20.0

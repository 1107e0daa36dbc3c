package models

import "time"

type User struct {
	ID                string    `db:"id" json:"id"`
	Username          string    `db:"username" json:"username"`
	Email             string    `db:"email" json:"email"`
	PasswordHash      string    `db:"password_hash" json:"-"`
	Level             int       `db:"level" json:"level"`
	ReferralCode      string    `db:"referral_code" json:"referral_code"`
	ReferrerID        *string   `db:"referrer_id" json:"referrer_id,omitempty"`
	AffiliateEarnings int64     `db:"affiliate_earnings" json:"affiliate_earnings"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

type Wallet struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Currency  string    `db:"currency" json:"currency"`
	Balance   int64     `db:"balance" json:"balance"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Transaction is an immutable ledger entry. Once a row is written with
// status "completed" neither the row nor its amount is ever edited;
// corrections are new compensating transactions.
type Transaction struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	WalletID    string    `db:"wallet_id" json:"wallet_id"`
	Type        string    `db:"type" json:"type"`
	Status      string    `db:"status" json:"status"`
	Source      string    `db:"source" json:"source"`
	Amount      int64     `db:"amount" json:"amount"`
	Currency    string    `db:"currency" json:"currency"`
	Description string    `db:"description" json:"description"`
	Metadata    string    `db:"metadata" json:"metadata"`
	ReferenceID *string   `db:"reference_id" json:"reference_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

const (
	TxTypeCredit = "credit"
	TxTypeDebit  = "debit"

	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusFailed    = "failed"

	SourceDeposit          = "deposit"
	SourceWithdrawal       = "withdrawal"
	SourceReferral         = "referral"
	SourceBonus            = "bonus"
	SourceInvestmentProfit = "investment_profit"
	SourcePrincipalReturn  = "principal_return"
	SourceRefund           = "refund"
	SourceOther            = "other"
)

type Deposit struct {
	ID            string     `db:"id" json:"id"`
	UserID        string     `db:"user_id" json:"user_id"`
	Amount        int64      `db:"amount" json:"amount"`
	Currency      string     `db:"currency" json:"currency"`
	PaymentMethod string     `db:"payment_method" json:"payment_method"`
	EvidenceRef   string     `db:"evidence_ref" json:"evidence_ref"`
	Status        string     `db:"status" json:"status"`
	PlanID        *string    `db:"plan_id" json:"plan_id,omitempty"`
	ReviewerID    *string    `db:"reviewer_id" json:"reviewer_id,omitempty"`
	ReviewedAt    *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	Notes         string     `db:"notes" json:"notes"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

type Withdrawal struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	Amount      int64      `db:"amount" json:"amount"`
	Currency    string     `db:"currency" json:"currency"`
	Destination string     `db:"destination" json:"destination"`
	Status      string     `db:"status" json:"status"`
	ReviewerID  *string    `db:"reviewer_id" json:"reviewer_id,omitempty"`
	ReviewedAt  *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	Notes       string     `db:"notes" json:"notes"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// InvestmentPlan is the template an investment is created from. Fixed
// plans carry a total ReturnRate paid evenly over the term with the
// principal returned at the end; yield plans carry a DailyRate and keep
// the principal.
type InvestmentPlan struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	Kind         string    `db:"kind" json:"kind"`
	MinAmount    int64     `db:"min_amount" json:"min_amount"`
	MaxAmount    int64     `db:"max_amount" json:"max_amount"`
	DurationDays int       `db:"duration_days" json:"duration_days"`
	ReturnRate   string    `db:"return_rate" json:"return_rate"`
	DailyRate    string    `db:"daily_rate" json:"daily_rate"`
	MinLevel     int       `db:"min_level" json:"min_level"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	IsFeatured   bool      `db:"is_featured" json:"is_featured"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	PlanKindFixed = "fixed"
	PlanKindYield = "yield"
)

type Investment struct {
	ID              string     `db:"id" json:"id"`
	UserID          string     `db:"user_id" json:"user_id"`
	PlanID          string     `db:"plan_id" json:"plan_id"`
	DepositID       string     `db:"deposit_id" json:"deposit_id"`
	Amount          int64      `db:"amount" json:"amount"`
	Profit          int64      `db:"profit" json:"profit"`
	Status          string     `db:"status" json:"status"`
	FirstInvestment bool       `db:"first_investment" json:"first_investment"`
	StartDate       time.Time  `db:"start_date" json:"start_date"`
	EndDate         time.Time  `db:"end_date" json:"end_date"`
	LastProfitDate  *time.Time `db:"last_profit_date" json:"last_profit_date,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

const (
	InvestmentActive     = "active"
	InvestmentCompleted  = "completed"
	InvestmentTerminated = "terminated"
)

type AffiliateReward struct {
	ID            string     `db:"id" json:"id"`
	ReferrerID    string     `db:"referrer_id" json:"referrer_id"`
	ReferralID    string     `db:"referral_id" json:"referral_id"`
	Amount        int64      `db:"amount" json:"amount"`
	Level         int        `db:"level" json:"level"`
	ReferrerLevel int        `db:"referrer_level" json:"referrer_level"`
	Kind          string     `db:"kind" json:"kind"`
	RewardDate    time.Time  `db:"reward_date" json:"reward_date"`
	Status        string     `db:"status" json:"status"`
	InvestmentID  *string    `db:"investment_id" json:"investment_id,omitempty"`
	ProcessedAt   *time.Time `db:"processed_at" json:"processed_at,omitempty"`
}

const (
	RewardKindFirstPurchase = "first_purchase"
	RewardKindDaily         = "daily"
)

// CommissionRate is one cell of the 4x4 commission table, indexed by
// referrer level and referral level. Fixed cells pay AmountMinor flat;
// percent cells pay Rate percent of the reference investment amount.
type CommissionRate struct {
	ReferrerLevel int    `db:"referrer_level" json:"referrer_level"`
	ReferralLevel int    `db:"referral_level" json:"referral_level"`
	Kind          string `db:"kind" json:"kind"`
	AmountMinor   int64  `db:"amount_minor" json:"amount_minor"`
	Rate          string `db:"rate" json:"rate"`
}

const (
	RateKindFixed   = "fixed"
	RateKindPercent = "percent"
)

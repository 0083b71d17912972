package models

import "time"

// TransactionType represents the type of a ledger transaction
type TransactionType string

const (
	TransactionTypeBuy               TransactionType = "buy"
	TransactionTypeSell              TransactionType = "sell"
	TransactionTypeDividend          TransactionType = "dividend"
	TransactionTypeInterest          TransactionType = "interest"
	TransactionTypeDeposit           TransactionType = "deposit"
	TransactionTypeDepositWithdrawal TransactionType = "deposit_withdrawal"
	TransactionTypeInsurance         TransactionType = "insurance"
)

// KnownTransactionType reports whether t is one of the supported types.
func KnownTransactionType(t TransactionType) bool {
	switch t {
	case TransactionTypeBuy, TransactionTypeSell, TransactionTypeDividend,
		TransactionTypeInterest, TransactionTypeDeposit,
		TransactionTypeDepositWithdrawal, TransactionTypeInsurance:
		return true
	}
	return false
}

// Transaction is an event record against a portfolio. User-facing fields are
// edited only through reverse-then-reapply; the engine owns the bookkeeping
// fields (RealizedGain, link ids, CashDisciplineApplied).
type Transaction struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	PortfolioID   string          `gorm:"type:uuid;not null;index" json:"portfolio_id"`
	InstitutionID *string         `gorm:"type:uuid" json:"institution_id,omitempty"`
	AssetID       *string         `gorm:"type:uuid" json:"asset_id,omitempty"`
	Type          TransactionType `gorm:"not null" json:"type"`

	Amount   float64 `gorm:"not null" json:"amount"`
	Quantity float64 `gorm:"not null;default:0" json:"quantity"`
	Price    float64 `gorm:"not null;default:0" json:"price"`
	Fees     float64 `gorm:"not null;default:0" json:"fees"`
	Tax      float64 `gorm:"not null;default:0" json:"tax"`
	Currency string  `gorm:"size:3;not null;default:'USD'" json:"currency"`

	TransactionDate time.Time `gorm:"not null;index" json:"transaction_date"`
	Notes           string    `json:"notes"`

	// Stored at apply time for Sell and treated as ground truth on reversal.
	RealizedGain float64 `gorm:"not null;default:0" json:"realized_gain"`

	// Early fixed-deposit withdrawal adjustments.
	AccruedInterest    float64 `gorm:"not null;default:0" json:"accrued_interest"`
	InstitutionPenalty float64 `gorm:"not null;default:0" json:"institution_penalty"`

	// Explicit companion reference; legacy records resolve through the
	// note-token or heuristic fallbacks and are backfilled here.
	LinkedTransactionID *string `gorm:"type:uuid;index" json:"linked_transaction_id,omitempty"`

	// Links a deposit withdrawal to the fixed-deposit asset it drains.
	ParentDepositAssetID *string `gorm:"type:uuid" json:"parent_deposit_asset_id,omitempty"`

	// Records whether cash side effects were applied. Legacy rows default
	// to true.
	CashDisciplineApplied bool `gorm:"default:true" json:"cash_discipline_applied"`

	// Relationships
	Portfolio   Portfolio    `gorm:"foreignKey:PortfolioID" json:"-"`
	Institution *Institution `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
	Asset       *Asset       `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
}

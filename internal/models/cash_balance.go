package models

// CashBalance is derived state, one record per (portfolio, institution,
// currency). A nil institution means the portfolio-level bucket. Records are
// created lazily on first cash movement and never deleted; zero balances
// persist. Portfolio cash totals are always computed by summing and
// converting these records.
type CashBalance struct {
	Base
	PortfolioID   string  `gorm:"type:uuid;not null;uniqueIndex:uq_cash_balances_scope" json:"portfolio_id"`
	InstitutionID *string `gorm:"type:uuid;uniqueIndex:uq_cash_balances_scope" json:"institution_id,omitempty"`
	Currency      string  `gorm:"size:3;not null;uniqueIndex:uq_cash_balances_scope" json:"currency"`
	Amount        float64 `gorm:"not null;default:0" json:"amount"`

	// Relationships
	Institution *Institution `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
}

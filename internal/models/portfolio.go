package models

// Portfolio is the aggregate root for a tracked collection of holdings and
// cash balances. TotalValue is a cache recomputed after every ledger mutation,
// expressed in MainCurrency; it is never the source of truth for cash, which
// always lives in the per-currency CashBalance records.
type Portfolio struct {
	Base
	UserID       string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string `gorm:"not null" json:"name"`
	MainCurrency string `gorm:"size:3;not null;default:'USD'" json:"main_currency"`

	// EnforcesCashDiscipline requires Buy/Sell transactions to move cash.
	// Portfolios with the flag off track holdings only.
	EnforcesCashDiscipline bool    `gorm:"default:true" json:"enforces_cash_discipline"`
	TotalValue             float64 `gorm:"not null;default:0" json:"total_value"`

	// Relationships
	Holdings     []Holding     `gorm:"foreignKey:PortfolioID" json:"holdings,omitempty"`
	CashBalances []CashBalance `gorm:"foreignKey:PortfolioID" json:"cash_balances,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:PortfolioID" json:"transactions,omitempty"`
}

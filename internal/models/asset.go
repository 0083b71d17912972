package models

// AssetClass represents the class of a tracked asset.
type AssetClass string

const (
	AssetClassStock        AssetClass = "stock"
	AssetClassFund         AssetClass = "fund"
	AssetClassBond         AssetClass = "bond"
	AssetClassFixedDeposit AssetClass = "fixed_deposit"
	AssetClassInsurance    AssetClass = "insurance"
)

// Asset represents an instrument held within a portfolio.
//
// Fixed-deposit assets are not valued as quantity times price: CashValue
// carries the remaining principal, drained by withdrawal transactions.
// Insurance assets are valued at the policy's cash-surrender value held on
// the linked InsuranceDetail record.
type Asset struct {
	Base
	PortfolioID string     `gorm:"type:uuid;not null;index" json:"portfolio_id"`
	Symbol      string     `gorm:"not null" json:"symbol"`
	Name        string     `gorm:"not null" json:"name"`
	Class       AssetClass `gorm:"not null" json:"class"`
	Currency    string     `gorm:"size:3;not null;default:'USD'" json:"currency"`

	// Remaining principal for fixed-deposit assets; unused otherwise.
	CashValue float64 `gorm:"not null;default:0" json:"cash_value"`

	// Populated at query time from asset_prices, never stored.
	CurrentPrice float64 `gorm:"-" json:"current_price"`
}

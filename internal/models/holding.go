package models

// Holding is derived state, one record per (portfolio, asset, institution).
// AverageCostBasis is meaningful only while Quantity is positive; when the
// quantity returns to zero the basis is reset to zero. All monetary fields
// are expressed in the owning portfolio's main currency.
type Holding struct {
	Base
	PortfolioID   string  `gorm:"type:uuid;not null;uniqueIndex:uq_holdings_scope" json:"portfolio_id"`
	AssetID       string  `gorm:"type:uuid;not null;uniqueIndex:uq_holdings_scope" json:"asset_id"`
	InstitutionID *string `gorm:"type:uuid;uniqueIndex:uq_holdings_scope" json:"institution_id,omitempty"`

	Quantity         float64 `gorm:"not null;default:0" json:"quantity"`
	AverageCostBasis float64 `gorm:"not null;default:0" json:"average_cost_basis"`
	RealizedGainLoss float64 `gorm:"not null;default:0" json:"realized_gain_loss"`
	TotalDividends   float64 `gorm:"not null;default:0" json:"total_dividends"`

	// Relationships
	Asset       Asset        `gorm:"foreignKey:AssetID" json:"asset"`
	Institution *Institution `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
}

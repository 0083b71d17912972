package models

import "time"

// InsuranceDetail carries policy data for an insurance asset. The policy's
// cash-surrender value is used for valuation instead of quantity times price.
type InsuranceDetail struct {
	Base
	AssetID        string     `gorm:"type:uuid;not null;uniqueIndex" json:"asset_id"`
	PolicyNumber   string     `json:"policy_number"`
	Insurer        string     `json:"insurer"`
	SurrenderValue float64    `gorm:"not null;default:0" json:"surrender_value"`
	PremiumsPaid   float64    `gorm:"not null;default:0" json:"premiums_paid"`
	MaturityDate   *time.Time `json:"maturity_date,omitempty"`

	// Relationships
	Beneficiaries []Beneficiary `gorm:"foreignKey:InsuranceDetailID" json:"beneficiaries,omitempty"`
}

// Beneficiary is a named beneficiary on an insurance policy.
type Beneficiary struct {
	Base
	InsuranceDetailID string  `gorm:"type:uuid;not null;index" json:"insurance_detail_id"`
	Name              string  `gorm:"not null" json:"name"`
	SharePercent      float64 `gorm:"not null;default:100" json:"share_percent"`
}

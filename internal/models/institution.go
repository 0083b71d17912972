package models

// InstitutionKind represents the kind of financial institution
type InstitutionKind string

const (
	InstitutionKindBank    InstitutionKind = "bank"
	InstitutionKindBroker  InstitutionKind = "broker"
	InstitutionKindInsurer InstitutionKind = "insurer"
)

// Institution represents a bank, broker, or insurer that holds assets or cash
// for the user. Transactions, holdings, and cash balances reference it
// optionally; records without an institution book against the portfolio level.
type Institution struct {
	Base
	UserID string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string          `gorm:"not null" json:"name"`
	Kind   InstitutionKind `gorm:"not null;default:'bank'" json:"kind"`
}

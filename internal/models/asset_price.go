package models

import (
	"time"

	"folio/internal/uuid"

	"gorm.io/gorm"
)

// AssetPrice represents a historical price entry for an asset, in the asset's
// own currency. This is immutable time-series data, so there is no Base embed
// and no soft delete. Valuation reads the latest entry per asset; apply/reverse
// arithmetic never does, it uses the transaction's own recorded price.
type AssetPrice struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	AssetID    string    `gorm:"type:uuid;not null;index" json:"asset_id"`
	Price      float64   `gorm:"not null" json:"price"`
	RecordedAt time.Time `gorm:"not null" json:"recorded_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (p *AssetPrice) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New()
	}
	return nil
}

package models

import (
	"time"

	"folio/internal/uuid"

	"gorm.io/gorm"
)

// ExchangeRate is one multiplicative rate for a currency pair, refreshed in
// place by the external rate fetcher. The engine only ever reads a snapshot
// of these rows; a stale rate never blocks a ledger mutation.
type ExchangeRate struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	FromCurrency string    `gorm:"size:3;not null;uniqueIndex:uq_exchange_rates_pair" json:"from_currency"`
	ToCurrency   string    `gorm:"size:3;not null;uniqueIndex:uq_exchange_rates_pair" json:"to_currency"`
	Rate         float64   `gorm:"not null" json:"rate"`
	FetchedAt    time.Time `gorm:"not null" json:"fetched_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (r *ExchangeRate) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New()
	}
	return nil
}

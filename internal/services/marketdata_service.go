package services

import (
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "folio/internal/errors"
	"folio/internal/fx"
	"folio/internal/ledger"
	"folio/internal/models"
)

const snapshotCacheKey = "market_snapshot"

// marketDataService manages exchange rates and asset price history, and
// assembles the snapshot the ledger engine consumes. Snapshot assembly
// touches every rate row and the latest price per asset, so the result is
// cached; rate and price writes invalidate it.
type marketDataService struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewMarketDataService creates a new MarketDataServicer with the given
// snapshot cache TTL.
func NewMarketDataService(db *gorm.DB, snapshotTTL time.Duration) MarketDataServicer {
	if snapshotTTL <= 0 {
		snapshotTTL = 15 * time.Minute
	}
	return &marketDataService{
		db:    db,
		cache: cache.New(snapshotTTL, 2*snapshotTTL),
	}
}

// UpsertExchangeRate creates or refreshes the rate for a currency pair.
func (s *marketDataService) UpsertExchangeRate(fromCurrency, toCurrency string, rate float64) (*models.ExchangeRate, error) {
	if fromCurrency == "" || toCurrency == "" || fromCurrency == toCurrency {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "a rate needs two distinct currencies")
	}
	if rate <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "rate must be positive")
	}

	record := &models.ExchangeRate{
		FromCurrency: fromCurrency,
		ToCurrency:   toCurrency,
		Rate:         rate,
		FetchedAt:    time.Now(),
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "from_currency"}, {Name: "to_currency"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "fetched_at"}),
	}).Create(record).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.cache.Delete(snapshotCacheKey)
	return record, nil
}

// ListExchangeRates returns all stored rates.
func (s *marketDataService) ListExchangeRates() ([]models.ExchangeRate, error) {
	var rates []models.ExchangeRate
	if err := s.db.Order("from_currency, to_currency").Find(&rates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rates, nil
}

// RecordAssetPrice appends a price observation for an asset owned by the
// user. History is append-only; valuation reads the latest entry.
func (s *marketDataService) RecordAssetPrice(userID, assetID string, price float64, recordedAt time.Time) (*models.AssetPrice, error) {
	if price <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "price must be positive")
	}
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	var asset models.Asset
	err := s.db.Joins("JOIN portfolios ON portfolios.id = assets.portfolio_id").
		Where("assets.id = ? AND portfolios.user_id = ?", assetID, userID).
		First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrAssetNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	entry := &models.AssetPrice{
		AssetID:    assetID,
		Price:      price,
		RecordedAt: recordedAt,
	}
	if err := s.db.Create(entry).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.cache.Delete(snapshotCacheKey)
	return entry, nil
}

// GetSnapshot assembles the market snapshot for the ledger engine, serving
// from cache when fresh.
func (s *marketDataService) GetSnapshot() (ledger.Snapshot, error) {
	if cached, ok := s.cache.Get(snapshotCacheKey); ok {
		return cached.(ledger.Snapshot), nil
	}

	var rateRows []models.ExchangeRate
	if err := s.db.Find(&rateRows).Error; err != nil {
		return ledger.Snapshot{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	rates := fx.RateTable{}
	for _, r := range rateRows {
		rates.Set(r.FromCurrency, r.ToCurrency, r.Rate)
	}

	// Latest observation per asset.
	var priceRows []models.AssetPrice
	err := s.db.Raw(`
		SELECT ap.* FROM asset_prices ap
		JOIN (
			SELECT asset_id, MAX(recorded_at) AS recorded_at
			FROM asset_prices GROUP BY asset_id
		) latest ON latest.asset_id = ap.asset_id AND latest.recorded_at = ap.recorded_at
	`).Scan(&priceRows).Error
	if err != nil {
		return ledger.Snapshot{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	prices := make(map[string]float64, len(priceRows))
	for _, p := range priceRows {
		prices[p.AssetID] = p.Price
	}

	snap := ledger.Snapshot{Rates: rates, Prices: prices}
	s.cache.SetDefault(snapshotCacheKey, snap)
	return snap, nil
}

package ledger

import (
	"errors"

	"gorm.io/gorm"

	apperrors "folio/internal/errors"
	"folio/internal/fx"
	"folio/internal/models"
)

// Aggregator derives a portfolio's total value in its main currency: the sum
// of all holding valuations plus the cash balance rollup. Missing rates and
// missing prices degrade gracefully so a partial snapshot still yields a
// usable number.
type Aggregator struct {
	cash *CashLedger
}

func NewAggregator(cash *CashLedger) *Aggregator {
	return &Aggregator{cash: cash}
}

// Recompute rebuilds the portfolio's cached total value and persists it.
func (a *Aggregator) Recompute(tx *gorm.DB, portfolio *models.Portfolio, snap Snapshot) error {
	total, err := a.TotalValue(tx, portfolio, snap)
	if err != nil {
		return err
	}
	portfolio.TotalValue = total
	if err := tx.Model(&models.Portfolio{}).Where("id = ?", portfolio.ID).
		Update("total_value", total).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// TotalValue computes the portfolio total without persisting it.
func (a *Aggregator) TotalValue(tx *gorm.DB, portfolio *models.Portfolio, snap Snapshot) (float64, error) {
	var holdings []models.Holding
	if err := tx.Where("portfolio_id = ?", portfolio.ID).Find(&holdings).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := 0.0
	for i := range holdings {
		v, err := a.holdingValue(tx, portfolio, &holdings[i], snap)
		if err != nil {
			return 0, err
		}
		total += v
	}

	cashTotal, err := a.cash.TotalInMainCurrency(tx, portfolio, snap.Rates)
	if err != nil {
		return 0, err
	}
	return total + cashTotal, nil
}

// HoldingValue values a single holding in the portfolio's main currency.
func (a *Aggregator) HoldingValue(tx *gorm.DB, portfolio *models.Portfolio, holding *models.Holding, snap Snapshot) (float64, error) {
	return a.holdingValue(tx, portfolio, holding, snap)
}

func (a *Aggregator) holdingValue(tx *gorm.DB, portfolio *models.Portfolio, holding *models.Holding, snap Snapshot) (float64, error) {
	var asset models.Asset
	err := tx.First(&asset, "id = ?", holding.AssetID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Orphaned holding contributes nothing rather than failing the rollup.
		return 0, nil
	}
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	switch asset.Class {
	case models.AssetClassFixedDeposit:
		return fx.Convert(asset.CashValue, asset.Currency, portfolio.MainCurrency, snap.Rates), nil

	case models.AssetClassInsurance:
		var detail models.InsuranceDetail
		err := tx.First(&detail, "asset_id = ?", asset.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No detail yet: fall back to the accumulated premium basis.
			return holding.Quantity * holding.AverageCostBasis, nil
		}
		if err != nil {
			return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return fx.Convert(detail.SurrenderValue, asset.Currency, portfolio.MainCurrency, snap.Rates), nil

	default:
		price, ok := snap.Prices[asset.ID]
		if !ok || price <= 0 {
			// No quoted price: the cost basis, already in main currency,
			// stands in so the holding never silently values at zero.
			return holding.Quantity * holding.AverageCostBasis, nil
		}
		value := holding.Quantity * price
		return fx.Convert(value, asset.Currency, portfolio.MainCurrency, snap.Rates), nil
	}
}

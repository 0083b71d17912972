// Package ledger implements the transaction engine: applying a transaction's
// effect to holdings and cash balances, reversing it exactly, and keeping
// portfolio totals consistent across currencies.
package ledger

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	apperrors "folio/internal/errors"
	"folio/internal/fx"
	"folio/internal/models"
)

// Snapshot is the read-only market view injected into engine entry points:
// an exchange-rate table and the latest known price per asset (in the
// asset's own currency). Both are produced by asynchronous fetchers; the
// engine never blocks on them, and stale values are acceptable.
type Snapshot struct {
	Rates  fx.RateTable
	Prices map[string]float64
}

// Engine orchestrates apply and reverse. Mutations against one portfolio are
// serialized through a per-portfolio mutex and executed inside a single
// database transaction; different portfolios proceed in parallel since all
// ledger state is portfolio-scoped.
type Engine struct {
	db     *gorm.DB
	cash   *CashLedger
	book   HoldingBook
	linker *CompanionLinker
	agg    *Aggregator
	locks  sync.Map
}

// NewEngine creates an engine over the given database handle. The companion
// date window bounds the legacy heuristic matcher.
func NewEngine(db *gorm.DB, companionDateWindow time.Duration) *Engine {
	cash := NewCashLedger(db)
	return &Engine{
		db:     db,
		cash:   cash,
		linker: NewCompanionLinker(companionDateWindow),
		agg:    NewAggregator(cash),
	}
}

// Cash exposes the cash ledger for read accessors.
func (e *Engine) Cash() *CashLedger { return e.cash }

// lockPortfolio acquires the single-writer lock for a portfolio.
func (e *Engine) lockPortfolio(portfolioID string) *sync.Mutex {
	v, _ := e.locks.LoadOrStore(portfolioID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu
}

// skipError aborts the surrounding database transaction, rolling back any
// companion side effects, and carries the skip outcome out of the closure.
// It keeps a companion pair atomic: either both legs land or neither does.
type skipError struct {
	out Outcome
}

func (s skipError) Error() string { return "ledger skip: " + s.out.SkipReason }

// Apply applies a transaction's effect to holdings and cash balances. The
// companion, when one resolves, is applied first as part of the same atomic
// unit. Totals are recomputed before returning.
func (e *Engine) Apply(t *models.Transaction, snap Snapshot) (Outcome, error) {
	if !models.KnownTransactionType(t.Type) {
		return Outcome{Status: StatusSkippedUnknownType, SkipReason: "unknown transaction type " + string(t.Type)}, nil
	}

	mu := e.lockPortfolio(t.PortfolioID)
	defer mu.Unlock()

	out := Outcome{Status: StatusApplied}
	err := e.db.Transaction(func(tx *gorm.DB) error {
		portfolio, err := e.loadPortfolio(tx, t.PortfolioID)
		if err != nil {
			return err
		}
		companion, err := e.linker.FindCompanion(tx, t)
		if err != nil {
			return err
		}
		if companion != nil {
			out.CompanionID = companion.ID
			if err := e.applyOne(tx, companion, portfolio, snap, nil); err != nil {
				return err
			}
		}
		if err := e.applyOne(tx, t, portfolio, snap, &out); err != nil {
			return err
		}
		return e.agg.Recompute(tx, portfolio, snap)
	})
	return e.finish(out, err)
}

// Reverse undoes a previously applied transaction, restoring every touched
// holding and cash balance to its pre-apply value. The companion is reversed
// first, mirroring apply order, so cash is never transiently double-counted.
func (e *Engine) Reverse(t *models.Transaction, snap Snapshot, opts ReverseOptions) (Outcome, error) {
	if !models.KnownTransactionType(t.Type) {
		return Outcome{Status: StatusSkippedUnknownType, SkipReason: "unknown transaction type " + string(t.Type)}, nil
	}

	mu := e.lockPortfolio(t.PortfolioID)
	defer mu.Unlock()

	out := Outcome{Status: StatusReversed}
	err := e.db.Transaction(func(tx *gorm.DB) error {
		portfolio, err := e.loadPortfolio(tx, t.PortfolioID)
		if err != nil {
			return err
		}
		companion, err := e.linker.FindCompanion(tx, t)
		if err != nil {
			return err
		}
		if companion != nil {
			out.CompanionID = companion.ID
			if err := e.reverseOne(tx, companion, portfolio, snap, opts); err != nil {
				return err
			}
		}
		if err := e.reverseOne(tx, t, portfolio, snap, opts); err != nil {
			return err
		}
		return e.agg.Recompute(tx, portfolio, snap)
	})
	return e.finish(out, err)
}

// RecomputeTotals re-derives a portfolio's cached total value from current
// holdings, prices, and cash balances.
func (e *Engine) RecomputeTotals(portfolioID string, snap Snapshot) error {
	mu := e.lockPortfolio(portfolioID)
	defer mu.Unlock()

	return e.db.Transaction(func(tx *gorm.DB) error {
		portfolio, err := e.loadPortfolio(tx, portfolioID)
		if err != nil {
			return err
		}
		return e.agg.Recompute(tx, portfolio, snap)
	})
}

func (e *Engine) finish(out Outcome, err error) (Outcome, error) {
	var skip skipError
	if errors.As(err, &skip) {
		return skip.out, nil
	}
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

func (e *Engine) loadPortfolio(tx *gorm.DB, portfolioID string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	err := tx.First(&portfolio, "id = ?", portfolioID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, skipError{Outcome{Status: StatusSkippedMissingRecord, SkipReason: "portfolio not found"}}
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &portfolio, nil
}

// applyOne applies a single leg without cascading further. out is nil for
// companion legs; only the primary leg reports realized gains.
func (e *Engine) applyOne(tx *gorm.DB, t *models.Transaction, portfolio *models.Portfolio, snap Snapshot, out *Outcome) error {
	switch t.Type {
	case models.TransactionTypeBuy:
		return e.applyBuy(tx, t, portfolio, snap)
	case models.TransactionTypeSell:
		return e.applySell(tx, t, portfolio, snap, out)
	case models.TransactionTypeDividend, models.TransactionTypeInterest:
		return e.applyIncome(tx, t, portfolio, snap)
	case models.TransactionTypeDeposit:
		return e.cash.AddDelta(tx, t.PortfolioID, t.InstitutionID, t.Currency, netAmount(t))
	case models.TransactionTypeDepositWithdrawal:
		return e.applyDepositWithdrawal(tx, t)
	case models.TransactionTypeInsurance:
		return e.applyInsurance(tx, t, portfolio, snap)
	default:
		return skipError{Outcome{Status: StatusSkippedUnknownType, SkipReason: "unknown transaction type " + string(t.Type)}}
	}
}

// reverseOne reverses a single leg without cascading further.
func (e *Engine) reverseOne(tx *gorm.DB, t *models.Transaction, portfolio *models.Portfolio, snap Snapshot, opts ReverseOptions) error {
	switch t.Type {
	case models.TransactionTypeBuy:
		return e.reverseBuy(tx, t, portfolio, snap)
	case models.TransactionTypeSell:
		return e.reverseSell(tx, t, portfolio, snap)
	case models.TransactionTypeDividend, models.TransactionTypeInterest:
		return e.reverseIncome(tx, t, portfolio, snap)
	case models.TransactionTypeDeposit:
		return e.cash.AddDelta(tx, t.PortfolioID, t.InstitutionID, t.Currency, -netAmount(t))
	case models.TransactionTypeDepositWithdrawal:
		return e.reverseDepositWithdrawal(tx, t)
	case models.TransactionTypeInsurance:
		return e.reverseInsurance(tx, t, portfolio, snap, opts)
	default:
		return skipError{Outcome{Status: StatusSkippedUnknownType, SkipReason: "unknown transaction type " + string(t.Type)}}
	}
}

// netAmount is the cash-effective amount of an income or deposit entry.
func netAmount(t *models.Transaction) float64 {
	return t.Amount - t.Fees - t.Tax
}

// toMain converts an amount from the transaction currency into the
// portfolio's main currency.
func toMain(amount float64, t *models.Transaction, portfolio *models.Portfolio, snap Snapshot) float64 {
	return fx.Convert(amount, t.Currency, portfolio.MainCurrency, snap.Rates)
}

// cashOutlay is the full cash cost of a purchase in the transaction
// currency. Fixed-deposit placements carry the principal in Amount rather
// than quantity times price.
func cashOutlay(t *models.Transaction, asset *models.Asset) float64 {
	if asset.Class == models.AssetClassFixedDeposit {
		return depositPrincipal(t) + t.Fees + t.Tax
	}
	return t.Quantity*t.Price + t.Fees + t.Tax
}

// depositPrincipal is the principal placed into a fixed deposit.
func depositPrincipal(t *models.Transaction) float64 {
	if t.Amount != 0 {
		return t.Amount
	}
	return t.Quantity * t.Price
}

func (e *Engine) applyBuy(tx *gorm.DB, t *models.Transaction, portfolio *models.Portfolio, snap Snapshot) error {
	asset, err := e.loadAsset(tx, t.AssetID)
	if err != nil {
		return err
	}
	holding, err := e.findOrCreateHolding(tx, t.PortfolioID, asset.ID, t.InstitutionID)
	if err != nil {
		return err
	}

	if asset.Class == models.AssetClassFixedDeposit {
		// Placements grow the asset's cash-equivalent value; the holding
		// records the relationship but is not valued by quantity and price.
		asset.CashValue += depositPrincipal(t)
		if err := tx.Model(asset).Update("cash_value", asset.CashValue).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	} else {
		e.book.ApplyBuy(holding,
			t.Quantity,
			toMain(t.Price, t, portfolio, snap),
			toMain(t.Fees, t, portfolio, snap),
			toMain(t.Tax, t, portfolio, snap))
		if err := e.saveHolding(tx, holding); err != nil {
			return err
		}
	}

	applied := portfolio.EnforcesCashDiscipline
	if applied {
		if err := e.cash.AddDelta(tx, t.PortfolioID, t.InstitutionID, t.Currency, -cashOutlay(t, asset)); err != nil {
			return err
		}
	}
	return e.setDisciplineFlag(tx, t, applied)
}

func (e *Engine) reverseBuy(tx *gorm.DB, t *models.Transaction, portfolio *models.Portfolio, snap Snapshot) error {
	asset, err := e.loadAsset(tx, t.AssetID)
	if err != nil {
		return err
	}
	holding, err := e.findHolding(tx, t.PortfolioID, asset.ID, t.InstitutionID)
	if err != nil {
		return err
	}

	if asset.Class == models.AssetClassFixedDeposit {
		asset.CashValue -= depositPrincipal(t)
		if asset.CashValue < 0 {
			asset.CashValue = 0
		}
		if err := tx.Model(asset).Update("cash_value", asset.CashValue).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	} else {
		e.book.ReverseBuy(holding,
			t.Quantity,
			toMain(t.Price, t, portfolio, snap),
			toMain(t.Fees, t, portfolio, snap),
			toMain(t.Tax, t, portfolio, snap))
		if err := e.saveHolding(tx, holding); err != nil {
			return err
		}
	}

	if t.CashDisciplineApplied {
		return e.cash.AddDelta(tx, t.PortfolioID, t.InstitutionID, t.Currency, cashOutlay(t, asset))
	}
	return nil
}

func (e *Engine) applySell(tx *gorm.DB, t *models.Transaction, portfolio *models.Portfolio, snap Snapshot, out *Outcome) error {
	asset, err := e.loadAsset(tx, t.AssetID)
	if err != nil {
		return err
	}
	holding, err := e.findHolding(tx, t.PortfolioID, asset.ID, t.InstitutionID)
	if err != nil {
		return err
	}

	realizedGain := e.book.ApplySell(holding,
		t.Quantity,
		toMain(t.Price, t, portfolio, snap),
		toMain(t.Fees, t, portfolio, snap),
		toMain(t.Tax, t, portfolio, snap))
	if err := e.saveHolding(tx, holding); err != nil {
		return err
	}

	// The stored gain is ground truth for reversal; never recompute it later.
	t.RealizedGain = realizedGain
	if err := tx.Model(&models.Transaction{}).Where("id = ?", t.ID).
		Update("realized_gain", realizedGain).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if out != nil {
		out.RealizedGain = realizedGain
	}

	applied := portfolio.EnforcesCashDiscipline
	if applied {
		proceeds := t.Quantity*t.Price - t.Fees - t.Tax
		if err := e.cash.AddDelta(tx, t.PortfolioID, t.InstitutionID, t.Currency, proceeds); err != nil {
			return err
		}
	}
	return e.setDisciplineFlag(tx, t, applied)
}

func (e *Engine) reverseSell(tx *gorm.DB, t *models.Transaction, portfolio *models.Portfolio, snap Snapshot) error {
	asset, err := e.loadAsset(tx, t.AssetID)
	if err != nil {
		return err
	}
	holding, err := e.findHolding(tx, t.PortfolioID, asset.ID, t.InstitutionID)
	if err != nil {
		return err
	}

	e.book.ReverseSell(holding,
		t.Quantity,
		toMain(t.Price, t, portfolio, snap),
		toMain(t.Fees, t, portfolio, snap),
		toMain(t.Tax, t, portfolio, snap),
		t.RealizedGain)
	if err := e.saveHolding(tx, holding); err != nil {
		return err
	}

	if t.CashDisciplineApplied {
		proceeds := t.Quantity*t.Price - t.Fees - t.Tax
		return e.cash.AddDelta(tx, t.PortfolioID, t.InstitutionID, t.Currency, -proceeds)
	}
	return nil
}

func (e *Engine) applyIncome(tx *gorm.DB, t *models.Transaction, portfolio *models.Portfolio, snap Snapshot) error {
	net := netAmount(t)
	if err := e.cash.AddDelta(tx, t.PortfolioID, t.InstitutionID, t.Currency, net); err != nil {
		return err
	}
	if t.AssetID == nil {
		return nil
	}
	holding, err := e.optionalHolding(tx, t.PortfolioID, *t.AssetID, t.InstitutionID)
	if err != nil || holding == nil {
		return err
	}
	e.book.ApplyIncome(holding, toMain(net, t, portfolio, snap))
	return e.saveHolding(tx, holding)
}

func (e *Engine) reverseIncome(tx *gorm.DB, t *models.Transaction, portfolio *models.Portfolio, snap Snapshot) error {
	net := netAmount(t)
	if err := e.cash.AddDelta(tx, t.PortfolioID, t.InstitutionID, t.Currency, -net); err != nil {
		return err
	}
	if t.AssetID == nil {
		return nil
	}
	holding, err := e.optionalHolding(tx, t.PortfolioID, *t.AssetID, t.InstitutionID)
	if err != nil || holding == nil {
		return err
	}
	e.book.ReverseIncome(holding, toMain(net, t, portfolio, snap))
	return e.saveHolding(tx, holding)
}

func (e *Engine) applyDepositWithdrawal(tx *gorm.DB, t *models.Transaction) error {
	if err := e.cash.AddDelta(tx, t.PortfolioID, t.InstitutionID, t.Currency, netAmount(t)); err != nil {
		return err
	}
	return e.drainParentDeposit(tx, t, -1)
}

func (e *Engine) reverseDepositWithdrawal(tx *gorm.DB, t *models.Transaction) error {
	if err := e.cash.AddDelta(tx, t.PortfolioID, t.InstitutionID, t.Currency, -netAmount(t)); err != nil {
		return err
	}
	return e.drainParentDeposit(tx, t, 1)
}

// drainParentDeposit adjusts the parent fixed-deposit asset's cash value by
// the withdrawn principal. The amount received includes accrued interest and
// is reduced by any institution penalty, so the principal drained is
// amount - accruedInterest + institutionPenalty.
func (e *Engine) drainParentDeposit(tx *gorm.DB, t *models.Transaction, direction float64) error {
	if t.ParentDepositAssetID == nil {
		return nil
	}
	var asset models.Asset
	err := tx.First(&asset, "id = ?", *t.ParentDepositAssetID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Parent already removed; the cash effect stands on its own.
		return nil
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	principal := t.Amount - t.AccruedInterest + t.InstitutionPenalty
	asset.CashValue += direction * principal
	if asset.CashValue < 0 {
		asset.CashValue = 0
	}
	if err := tx.Model(&asset).Update("cash_value", asset.CashValue).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (e *Engine) applyInsurance(tx *gorm.DB, t *models.Transaction, portfolio *models.Portfolio, snap Snapshot) error {
	asset, err := e.loadAsset(tx, t.AssetID)
	if err != nil {
		return err
	}
	holding, err := e.findOrCreateHolding(tx, t.PortfolioID, asset.ID, t.InstitutionID)
	if err != nil {
		return err
	}

	// A policy is held as a single unit whose blended cost accumulates the
	// premiums paid.
	outlay := t.Amount + t.Fees + t.Tax
	if holding.Quantity == 0 {
		holding.Quantity = 1
	}
	holding.AverageCostBasis += toMain(outlay, t, portfolio, snap)
	if err := e.saveHolding(tx, holding); err != nil {
		return err
	}

	if err := e.adjustPremiumsPaid(tx, asset.ID, t.Amount); err != nil {
		return err
	}

	// paymentDeducted: the entry form decides whether the premium came out
	// of tracked cash. Persist the flag explicitly since the column default
	// would otherwise swallow a false value.
	if t.CashDisciplineApplied {
		if err := e.cash.AddDelta(tx, t.PortfolioID, t.InstitutionID, t.Currency, -outlay); err != nil {
			return err
		}
	}
	return e.setDisciplineFlag(tx, t, t.CashDisciplineApplied)
}

func (e *Engine) reverseInsurance(tx *gorm.DB, t *models.Transaction, portfolio *models.Portfolio, snap Snapshot, opts ReverseOptions) error {
	asset, err := e.loadAsset(tx, t.AssetID)
	if err != nil {
		return err
	}

	outlay := t.Amount + t.Fees + t.Tax
	if t.CashDisciplineApplied {
		if err := e.cash.AddDelta(tx, t.PortfolioID, t.InstitutionID, t.Currency, outlay); err != nil {
			return err
		}
	}

	if opts.PreserveRecords {
		holding, err := e.findHolding(tx, t.PortfolioID, asset.ID, t.InstitutionID)
		if err != nil {
			return err
		}
		holding.AverageCostBasis -= toMain(outlay, t, portfolio, snap)
		if holding.AverageCostBasis < 0 {
			holding.AverageCostBasis = 0
		}
		if err := e.saveHolding(tx, holding); err != nil {
			return err
		}
		return e.adjustPremiumsPaid(tx, asset.ID, -t.Amount)
	}

	// Destructive reversal: remove the policy's derived records entirely.
	var detail models.InsuranceDetail
	err = tx.First(&detail, "asset_id = ?", asset.ID).Error
	if err == nil {
		if err := tx.Where("insurance_detail_id = ?", detail.ID).
			Delete(&models.Beneficiary{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&detail).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := tx.Where("portfolio_id = ? AND asset_id = ?", t.PortfolioID, asset.ID).
		Delete(&models.Holding{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := tx.Delete(asset).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// adjustPremiumsPaid shifts the premiums-paid counter on the policy detail,
// clamped at zero. Policies without a detail record are tolerated.
func (e *Engine) adjustPremiumsPaid(tx *gorm.DB, assetID string, delta float64) error {
	var detail models.InsuranceDetail
	err := tx.First(&detail, "asset_id = ?", assetID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	detail.PremiumsPaid += delta
	if detail.PremiumsPaid < 0 {
		detail.PremiumsPaid = 0
	}
	if err := tx.Model(&detail).Update("premiums_paid", detail.PremiumsPaid).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (e *Engine) setDisciplineFlag(tx *gorm.DB, t *models.Transaction, applied bool) error {
	t.CashDisciplineApplied = applied
	if err := tx.Model(&models.Transaction{}).Where("id = ?", t.ID).
		Update("cash_discipline_applied", applied).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (e *Engine) loadAsset(tx *gorm.DB, assetID *string) (*models.Asset, error) {
	if assetID == nil {
		return nil, skipError{Outcome{Status: StatusSkippedMissingRecord, SkipReason: "transaction has no asset"}}
	}
	var asset models.Asset
	err := tx.First(&asset, "id = ?", *assetID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, skipError{Outcome{Status: StatusSkippedMissingRecord, SkipReason: "asset not found"}}
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &asset, nil
}

func scopeHolding(q *gorm.DB, portfolioID, assetID string, institutionID *string) *gorm.DB {
	q = q.Where("portfolio_id = ? AND asset_id = ?", portfolioID, assetID)
	if institutionID == nil {
		return q.Where("institution_id IS NULL")
	}
	return q.Where("institution_id = ?", *institutionID)
}

func (e *Engine) findOrCreateHolding(tx *gorm.DB, portfolioID, assetID string, institutionID *string) (*models.Holding, error) {
	holding := models.Holding{
		PortfolioID:   portfolioID,
		AssetID:       assetID,
		InstitutionID: institutionID,
	}
	if err := scopeHolding(tx, portfolioID, assetID, institutionID).FirstOrCreate(&holding).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &holding, nil
}

// findHolding loads an existing holding or skips the transaction when it is
// gone: reversing against a deleted holding would fabricate state.
func (e *Engine) findHolding(tx *gorm.DB, portfolioID, assetID string, institutionID *string) (*models.Holding, error) {
	holding, err := e.optionalHolding(tx, portfolioID, assetID, institutionID)
	if err != nil {
		return nil, err
	}
	if holding == nil {
		return nil, skipError{Outcome{Status: StatusSkippedMissingRecord, SkipReason: "holding not found"}}
	}
	return holding, nil
}

func (e *Engine) optionalHolding(tx *gorm.DB, portfolioID, assetID string, institutionID *string) (*models.Holding, error) {
	var holding models.Holding
	err := scopeHolding(tx, portfolioID, assetID, institutionID).First(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &holding, nil
}

func (e *Engine) saveHolding(tx *gorm.DB, holding *models.Holding) error {
	err := tx.Model(&models.Holding{}).Where("id = ?", holding.ID).Updates(map[string]interface{}{
		"quantity":           holding.Quantity,
		"average_cost_basis": holding.AverageCostBasis,
		"realized_gain_loss": holding.RealizedGainLoss,
		"total_dividends":    holding.TotalDividends,
	}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

package ledger

import (
	"errors"

	"gorm.io/gorm"

	apperrors "folio/internal/errors"
	"folio/internal/fx"
	"folio/internal/models"
)

// CashLedger owns the cash balance records keyed by (portfolio, institution,
// currency). All mutations go through Set and AddDelta, which use
// find-or-create semantics so the triple stays unique; a nil institution is
// the portfolio-level bucket.
type CashLedger struct {
	db *gorm.DB
}

// NewCashLedger creates a CashLedger over the given database handle.
func NewCashLedger(db *gorm.DB) *CashLedger {
	return &CashLedger{db: db}
}

// handle returns tx when inside a database transaction, else the base handle.
func (l *CashLedger) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return l.db
}

func scopeBalance(q *gorm.DB, portfolioID string, institutionID *string, currency string) *gorm.DB {
	q = q.Where("portfolio_id = ? AND currency = ?", portfolioID, currency)
	if institutionID == nil {
		return q.Where("institution_id IS NULL")
	}
	return q.Where("institution_id = ?", *institutionID)
}

// Get returns the balance for the triple, or 0 when no record exists yet.
func (l *CashLedger) Get(tx *gorm.DB, portfolioID string, institutionID *string, currency string) (float64, error) {
	var balance models.CashBalance
	err := scopeBalance(l.handle(tx).Model(&models.CashBalance{}), portfolioID, institutionID, currency).
		First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return balance.Amount, nil
}

// findOrCreate loads the balance record for the triple, creating it lazily on
// first use. The unique index on the triple guards against duplicates.
func (l *CashLedger) findOrCreate(tx *gorm.DB, portfolioID string, institutionID *string, currency string) (*models.CashBalance, error) {
	balance := models.CashBalance{
		PortfolioID:   portfolioID,
		InstitutionID: institutionID,
		Currency:      currency,
	}
	err := scopeBalance(l.handle(tx), portfolioID, institutionID, currency).
		FirstOrCreate(&balance).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &balance, nil
}

// Set stores an absolute balance for the triple.
func (l *CashLedger) Set(tx *gorm.DB, portfolioID string, institutionID *string, currency string, amount float64) error {
	balance, err := l.findOrCreate(tx, portfolioID, institutionID, currency)
	if err != nil {
		return err
	}
	if err := l.handle(tx).Model(balance).Update("amount", amount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AddDelta adjusts the balance for the triple by delta.
func (l *CashLedger) AddDelta(tx *gorm.DB, portfolioID string, institutionID *string, currency string, delta float64) error {
	balance, err := l.findOrCreate(tx, portfolioID, institutionID, currency)
	if err != nil {
		return err
	}
	if err := l.handle(tx).Model(balance).Update("amount", balance.Amount+delta).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Balances returns all cash balance records for a portfolio.
func (l *CashLedger) Balances(tx *gorm.DB, portfolioID string) ([]models.CashBalance, error) {
	var balances []models.CashBalance
	if err := l.handle(tx).Where("portfolio_id = ?", portfolioID).Find(&balances).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return balances, nil
}

// TotalInMainCurrency sums every currency bucket of the portfolio, each
// converted into the portfolio's main currency.
func (l *CashLedger) TotalInMainCurrency(tx *gorm.DB, portfolio *models.Portfolio, rates fx.RateTable) (float64, error) {
	balances, err := l.Balances(tx, portfolio.ID)
	if err != nil {
		return 0, err
	}
	var total float64
	for i := range balances {
		total += fx.Convert(balances[i].Amount, balances[i].Currency, portfolio.MainCurrency, rates)
	}
	return total, nil
}

// InstitutionTotalInMainCurrency restricts the converted sum to one
// institution's buckets.
func (l *CashLedger) InstitutionTotalInMainCurrency(tx *gorm.DB, portfolio *models.Portfolio, institutionID string, rates fx.RateTable) (float64, error) {
	var balances []models.CashBalance
	err := l.handle(tx).
		Where("portfolio_id = ? AND institution_id = ?", portfolio.ID, institutionID).
		Find(&balances).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var total float64
	for i := range balances {
		total += fx.Convert(balances[i].Amount, balances[i].Currency, portfolio.MainCurrency, rates)
	}
	return total, nil
}

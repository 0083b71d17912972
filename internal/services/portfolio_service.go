package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "folio/internal/errors"
	"folio/internal/ledger"
	"folio/internal/models"
	"folio/internal/pagination"
)

// portfolioService handles portfolio-related business logic.
type portfolioService struct {
	db     *gorm.DB
	engine *ledger.Engine
	market MarketDataServicer
}

// NewPortfolioService creates a new PortfolioServicer.
func NewPortfolioService(db *gorm.DB, engine *ledger.Engine, market MarketDataServicer) PortfolioServicer {
	return &portfolioService{db: db, engine: engine, market: market}
}

// CreatePortfolio creates a portfolio for the user. MainCurrency is fixed at
// creation: changing it later would silently re-denominate every derived
// figure without recomputing them.
func (s *portfolioService) CreatePortfolio(userID, name, mainCurrency string, enforcesCashDiscipline bool) (*models.Portfolio, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "portfolio name is required")
	}
	if mainCurrency == "" {
		mainCurrency = "USD"
	}

	portfolio := &models.Portfolio{
		UserID:                 userID,
		Name:                   name,
		MainCurrency:           mainCurrency,
		EnforcesCashDiscipline: enforcesCashDiscipline,
	}
	if err := s.db.Create(portfolio).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return portfolio, nil
}

// GetUserPortfolios returns the user's portfolios, paginated.
func (s *portfolioService) GetUserPortfolios(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Portfolio], error) {
	page.Defaults()

	var total int64
	query := s.db.Model(&models.Portfolio{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var portfolios []models.Portfolio
	err := query.Scopes(pagination.Paginate(page)).Order("created_at DESC").Find(&portfolios).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	response := pagination.NewPageResponse(portfolios, page.Page, page.PageSize, total)
	return &response, nil
}

// GetPortfolioByID retrieves a portfolio, scoped to the owning user.
func (s *portfolioService) GetPortfolioByID(userID, portfolioID string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	err := s.db.Where("id = ? AND user_id = ?", portfolioID, userID).First(&portfolio).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &portfolio, nil
}

// UpdatePortfolio updates mutable portfolio settings. Flipping cash
// discipline affects future transactions only; already-applied ones keep
// their recorded flag.
func (s *portfolioService) UpdatePortfolio(userID, portfolioID, name string, enforcesCashDiscipline *bool) (*models.Portfolio, error) {
	portfolio, err := s.GetPortfolioByID(userID, portfolioID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
		portfolio.Name = name
	}
	if enforcesCashDiscipline != nil {
		updates["enforces_cash_discipline"] = *enforcesCashDiscipline
		portfolio.EnforcesCashDiscipline = *enforcesCashDiscipline
	}
	if len(updates) == 0 {
		return portfolio, nil
	}

	if err := s.db.Model(portfolio).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return portfolio, nil
}

// DeletePortfolio soft-deletes a portfolio and its dependent records.
func (s *portfolioService) DeletePortfolio(userID, portfolioID string) error {
	portfolio, err := s.GetPortfolioByID(userID, portfolioID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.Transaction{}, &models.Holding{}, &models.CashBalance{}, &models.Asset{},
		} {
			if err := tx.Where("portfolio_id = ?", portfolioID).Delete(model).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if err := tx.Delete(portfolio).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetHoldings returns the portfolio's holdings with assets preloaded and
// current prices attached from the latest snapshot.
func (s *portfolioService) GetHoldings(userID, portfolioID string) ([]models.Holding, error) {
	if _, err := s.GetPortfolioByID(userID, portfolioID); err != nil {
		return nil, err
	}

	var holdings []models.Holding
	err := s.db.Preload("Asset").Preload("Institution").
		Where("portfolio_id = ?", portfolioID).Find(&holdings).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	snap, err := s.market.GetSnapshot()
	if err != nil {
		return nil, err
	}
	for i := range holdings {
		if price, ok := snap.Prices[holdings[i].AssetID]; ok {
			holdings[i].Asset.CurrentPrice = price
		}
	}
	return holdings, nil
}

// GetCashBalances returns every cash bucket of the portfolio, including
// zeroed ones.
func (s *portfolioService) GetCashBalances(userID, portfolioID string) ([]models.CashBalance, error) {
	if _, err := s.GetPortfolioByID(userID, portfolioID); err != nil {
		return nil, err
	}
	return s.engine.Cash().Balances(s.db, portfolioID)
}

// RecomputeTotals refreshes the portfolio's cached total value against the
// current market snapshot and returns the updated record.
func (s *portfolioService) RecomputeTotals(userID, portfolioID string) (*models.Portfolio, error) {
	if _, err := s.GetPortfolioByID(userID, portfolioID); err != nil {
		return nil, err
	}

	snap, err := s.market.GetSnapshot()
	if err != nil {
		return nil, err
	}
	if err := s.engine.RecomputeTotals(portfolioID, snap); err != nil {
		return nil, err
	}
	return s.GetPortfolioByID(userID, portfolioID)
}

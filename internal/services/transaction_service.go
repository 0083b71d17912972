package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "folio/internal/errors"
	"folio/internal/ledger"
	"folio/internal/models"
	"folio/internal/pagination"
)

// transactionService handles transaction-related business logic. The
// transaction log is the source of truth; every write goes through the
// ledger engine so holdings and cash balances stay derived state.
type transactionService struct {
	db     *gorm.DB
	engine *ledger.Engine
	market MarketDataServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, engine *ledger.Engine, market MarketDataServicer) TransactionServicer {
	return &transactionService{db: db, engine: engine, market: market}
}

// RecordTransaction persists a transaction and applies its ledger effect.
func (s *transactionService) RecordTransaction(userID string, input TransactionInput) (*models.Transaction, ledger.Outcome, error) {
	t, err := s.buildTransaction(userID, input)
	if err != nil {
		return nil, ledger.Outcome{}, err
	}

	if err := s.db.Create(t).Error; err != nil {
		return nil, ledger.Outcome{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	snap, err := s.market.GetSnapshot()
	if err != nil {
		return nil, ledger.Outcome{}, err
	}
	out, err := s.engine.Apply(t, snap)
	if err != nil {
		return nil, ledger.Outcome{}, err
	}
	return t, out, nil
}

// RecordDepositTransfer records a fixed-deposit placement together with the
// deposit entry that funds it, linked as a companion pair and applied as one
// atomic unit. The input describes the placement; the cash leg is derived.
func (s *transactionService) RecordDepositTransfer(userID string, input TransactionInput) (*models.Transaction, ledger.Outcome, error) {
	if input.AssetID == nil {
		return nil, ledger.Outcome{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "a deposit transfer needs a fixed-deposit asset")
	}
	input.Type = models.TransactionTypeBuy

	buy, err := s.buildTransaction(userID, input)
	if err != nil {
		return nil, ledger.Outcome{}, err
	}
	asset, err := s.loadOwnedAsset(userID, *input.AssetID)
	if err != nil {
		return nil, ledger.Outcome{}, err
	}
	if asset.Class != models.AssetClassFixedDeposit {
		return nil, ledger.Outcome{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "deposit transfers only apply to fixed-deposit assets")
	}

	cashLeg := &models.Transaction{
		UserID:          userID,
		PortfolioID:     buy.PortfolioID,
		InstitutionID:   buy.InstitutionID,
		Type:            models.TransactionTypeDeposit,
		Amount:          buy.Amount,
		Currency:        buy.Currency,
		TransactionDate: buy.TransactionDate,
		Notes:           "Transfer into " + asset.Name,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(cashLeg).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		buy.LinkedTransactionID = &cashLeg.ID
		if err := tx.Create(buy).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return tx.Model(cashLeg).Update("linked_transaction_id", buy.ID).Error
	})
	if err != nil {
		return nil, ledger.Outcome{}, err
	}

	snap, err := s.market.GetSnapshot()
	if err != nil {
		return nil, ledger.Outcome{}, err
	}
	out, err := s.engine.Apply(buy, snap)
	if err != nil {
		return nil, ledger.Outcome{}, err
	}
	return buy, out, nil
}

// GetPortfolioTransactions lists a portfolio's transactions with optional
// filters, newest first.
func (s *transactionService) GetPortfolioTransactions(userID, portfolioID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	if err := s.checkPortfolioOwnership(userID, portfolioID); err != nil {
		return nil, err
	}

	query := s.db.Model(&models.Transaction{}).Where("portfolio_id = ?", portfolioID)
	if filter.FromDate != nil {
		query = query.Where("transaction_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("transaction_date <= ?", *filter.ToDate)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.AssetID != nil {
		query = query.Where("asset_id = ?", *filter.AssetID)
	}
	if filter.InstitutionID != nil {
		query = query.Where("institution_id = ?", *filter.InstitutionID)
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	err := query.Scopes(pagination.Paginate(page)).
		Preload("Asset").Preload("Institution").
		Order("transaction_date DESC, created_at DESC").
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	response := pagination.NewPageResponse(transactions, page.Page, page.PageSize, total)
	return &response, nil
}

// GetTransactionByID retrieves a transaction, scoped to the owning user.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var t models.Transaction
	err := s.db.Preload("Asset").Preload("Institution").
		Where("id = ? AND user_id = ?", transactionID, userID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &t, nil
}

// UpdateTransaction edits a transaction by reversing its current effect,
// mutating the record, and reapplying. The reversal preserves derived
// records so the reapply lands on the same rows.
func (s *transactionService) UpdateTransaction(userID, transactionID string, input TransactionInput) (*models.Transaction, ledger.Outcome, error) {
	t, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, ledger.Outcome{}, err
	}
	if input.Type != "" && input.Type != t.Type {
		return nil, ledger.Outcome{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "a transaction's type cannot change; delete and re-record instead")
	}

	snap, err := s.market.GetSnapshot()
	if err != nil {
		return nil, ledger.Outcome{}, err
	}
	if _, err := s.engine.Reverse(t, snap, ledger.ReverseOptions{PreserveRecords: true}); err != nil {
		return nil, ledger.Outcome{}, err
	}

	t.Amount = input.Amount
	t.Quantity = input.Quantity
	t.Price = input.Price
	t.Fees = input.Fees
	t.Tax = input.Tax
	if input.Currency != "" {
		t.Currency = input.Currency
	}
	if !input.TransactionDate.IsZero() {
		t.TransactionDate = input.TransactionDate
	}
	t.Notes = input.Notes
	t.AccruedInterest = input.AccruedInterest
	t.InstitutionPenalty = input.InstitutionPenalty
	if t.Type == models.TransactionTypeInsurance {
		t.CashDisciplineApplied = input.PaymentDeducted
	}

	if err := s.db.Save(t).Error; err != nil {
		return nil, ledger.Outcome{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	out, err := s.engine.Apply(t, snap)
	if err != nil {
		return nil, ledger.Outcome{}, err
	}
	return t, out, nil
}

// DeleteTransaction reverses a transaction's ledger effect and removes the
// record along with its companion, keeping the pair's invariant that both
// legs exist or neither does.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	t, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	snap, err := s.market.GetSnapshot()
	if err != nil {
		return err
	}
	out, err := s.engine.Reverse(t, snap, ledger.ReverseOptions{})
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if out.CompanionID != "" {
			if err := tx.Delete(&models.Transaction{}, "id = ?", out.CompanionID).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if err := tx.Delete(&models.Transaction{}, "id = ?", t.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// buildTransaction validates the input and referenced records and returns an
// unsaved transaction.
func (s *transactionService) buildTransaction(userID string, input TransactionInput) (*models.Transaction, error) {
	if !models.KnownTransactionType(input.Type) {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}
	if input.TransactionDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction date is required")
	}

	portfolio := models.Portfolio{}
	err := s.db.Where("id = ? AND user_id = ?", input.PortfolioID, userID).First(&portfolio).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if input.InstitutionID != nil {
		var count int64
		s.db.Model(&models.Institution{}).Where("id = ? AND user_id = ?", *input.InstitutionID, userID).Count(&count)
		if count == 0 {
			return nil, apperrors.ErrInstitutionNotFound
		}
	}
	if input.AssetID != nil {
		if _, err := s.loadOwnedAsset(userID, *input.AssetID); err != nil {
			return nil, err
		}
	}

	switch input.Type {
	case models.TransactionTypeBuy, models.TransactionTypeSell:
		if input.AssetID == nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "buy and sell require an asset")
		}
	case models.TransactionTypeInsurance:
		if input.AssetID == nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "an insurance premium requires a policy asset")
		}
	}
	if input.Type == models.TransactionTypeSell {
		if err := s.checkSellQuantity(input); err != nil {
			return nil, err
		}
	}

	t := &models.Transaction{
		UserID:               userID,
		PortfolioID:          input.PortfolioID,
		InstitutionID:        input.InstitutionID,
		AssetID:              input.AssetID,
		Type:                 input.Type,
		Amount:               input.Amount,
		Quantity:             input.Quantity,
		Price:                input.Price,
		Fees:                 input.Fees,
		Tax:                  input.Tax,
		Currency:             input.Currency,
		TransactionDate:      input.TransactionDate,
		Notes:                input.Notes,
		AccruedInterest:      input.AccruedInterest,
		InstitutionPenalty:   input.InstitutionPenalty,
		LinkedTransactionID:  input.LinkedTransactionID,
		ParentDepositAssetID: input.ParentDepositAssetID,
	}
	if input.Type == models.TransactionTypeInsurance {
		t.CashDisciplineApplied = input.PaymentDeducted
	}
	return t, nil
}

// checkSellQuantity rejects sales exceeding the held quantity. The engine
// itself clamps instead of failing; validation belongs here, where the user
// gets a useful error before anything is written.
func (s *transactionService) checkSellQuantity(input TransactionInput) error {
	var holding models.Holding
	query := s.db.Where("portfolio_id = ? AND asset_id = ?", input.PortfolioID, *input.AssetID)
	if input.InstitutionID == nil {
		query = query.Where("institution_id IS NULL")
	} else {
		query = query.Where("institution_id = ?", *input.InstitutionID)
	}
	err := query.First(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrInsufficientQuantity
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if holding.Quantity+1e-6 < input.Quantity {
		return apperrors.ErrInsufficientQuantity
	}
	return nil
}

func (s *transactionService) checkPortfolioOwnership(userID, portfolioID string) error {
	var count int64
	s.db.Model(&models.Portfolio{}).Where("id = ? AND user_id = ?", portfolioID, userID).Count(&count)
	if count == 0 {
		return apperrors.ErrPortfolioNotFound
	}
	return nil
}

func (s *transactionService) loadOwnedAsset(userID, assetID string) (*models.Asset, error) {
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
	return &asset, nil
}

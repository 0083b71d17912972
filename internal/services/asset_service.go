package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "folio/internal/errors"
	"folio/internal/models"
	"folio/internal/pagination"
)

// assetService handles asset-related business logic.
type assetService struct {
	db *gorm.DB
}

// NewAssetService creates a new AssetServicer.
func NewAssetService(db *gorm.DB) AssetServicer {
	return &assetService{db: db}
}

// CreateAsset creates an asset in a portfolio. Insurance assets may carry
// policy detail and beneficiaries, created atomically with the asset.
func (s *assetService) CreateAsset(userID, portfolioID, symbol, name string, class models.AssetClass, currency string, insurance *InsuranceDetailInput) (*models.Asset, error) {
	if symbol == "" && name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "asset symbol or name is required")
	}
	if currency == "" {
		currency = "USD"
	}
	if insurance != nil && class != models.AssetClassInsurance {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "policy details only apply to insurance assets")
	}

	var count int64
	s.db.Model(&models.Portfolio{}).Where("id = ? AND user_id = ?", portfolioID, userID).Count(&count)
	if count == 0 {
		return nil, apperrors.ErrPortfolioNotFound
	}

	asset := &models.Asset{
		PortfolioID: portfolioID,
		Symbol:      symbol,
		Name:        name,
		Class:       class,
		Currency:    currency,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(asset).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if insurance == nil {
			return nil
		}

		detail := &models.InsuranceDetail{
			AssetID:        asset.ID,
			PolicyNumber:   insurance.PolicyNumber,
			Insurer:        insurance.Insurer,
			SurrenderValue: insurance.SurrenderValue,
			MaturityDate:   insurance.MaturityDate,
		}
		if err := tx.Create(detail).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, b := range insurance.Beneficiaries {
			beneficiary := &models.Beneficiary{
				InsuranceDetailID: detail.ID,
				Name:              b.Name,
				SharePercent:      b.SharePercent,
			}
			if err := tx.Create(beneficiary).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// GetPortfolioAssets returns a portfolio's assets, paginated.
func (s *assetService) GetPortfolioAssets(userID, portfolioID string, page pagination.PageRequest) (*pagination.PageResponse[models.Asset], error) {
	page.Defaults()

	var count int64
	s.db.Model(&models.Portfolio{}).Where("id = ? AND user_id = ?", portfolioID, userID).Count(&count)
	if count == 0 {
		return nil, apperrors.ErrPortfolioNotFound
	}

	var total int64
	query := s.db.Model(&models.Asset{}).Where("portfolio_id = ?", portfolioID)
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var assets []models.Asset
	err := query.Scopes(pagination.Paginate(page)).Order("symbol").Find(&assets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	response := pagination.NewPageResponse(assets, page.Page, page.PageSize, total)
	return &response, nil
}

// GetAssetByID retrieves an asset, scoped to the owning user.
func (s *assetService) GetAssetByID(userID, assetID string) (*models.Asset, error) {
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

// UpdateAsset updates an asset's display fields. Class and currency are
// fixed at creation; changing either would invalidate the derived ledger
// state built from past transactions.
func (s *assetService) UpdateAsset(userID, assetID, symbol, name string) (*models.Asset, error) {
	asset, err := s.GetAssetByID(userID, assetID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if symbol != "" {
		updates["symbol"] = symbol
		asset.Symbol = symbol
	}
	if name != "" {
		updates["name"] = name
		asset.Name = name
	}
	if len(updates) == 0 {
		return asset, nil
	}

	if err := s.db.Model(asset).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return asset, nil
}

// UpdateSurrenderValue refreshes the cash-surrender value on an insurance
// asset's policy detail. Valuation picks it up on the next recompute.
func (s *assetService) UpdateSurrenderValue(userID, assetID string, surrenderValue float64) (*models.InsuranceDetail, error) {
	asset, err := s.GetAssetByID(userID, assetID)
	if err != nil {
		return nil, err
	}
	if asset.Class != models.AssetClassInsurance {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "surrender value only applies to insurance assets")
	}

	var detail models.InsuranceDetail
	err = s.db.First(&detail, "asset_id = ?", asset.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		detail = models.InsuranceDetail{AssetID: asset.ID, SurrenderValue: surrenderValue}
		if err := s.db.Create(&detail).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &detail, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	detail.SurrenderValue = surrenderValue
	if err := s.db.Model(&detail).Update("surrender_value", surrenderValue).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &detail, nil
}

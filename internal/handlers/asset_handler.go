package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "folio/internal/errors"
	"folio/internal/models"
	"folio/internal/pagination"
	"folio/internal/services"
)

// AssetHandler handles asset-related requests.
type AssetHandler struct {
	assetService services.AssetServicer
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assetService services.AssetServicer) *AssetHandler {
	return &AssetHandler{assetService: assetService}
}

// BeneficiaryRequest names one beneficiary on an insurance policy.
type BeneficiaryRequest struct {
	Name         string  `json:"name" binding:"required,min=1,max=100"`
	SharePercent float64 `json:"share_percent" binding:"gte=0,lte=100"`
}

// InsuranceDetailRequest carries optional policy data for insurance assets.
type InsuranceDetailRequest struct {
	PolicyNumber   string               `json:"policy_number" binding:"max=100"`
	Insurer        string               `json:"insurer" binding:"max=100"`
	SurrenderValue float64              `json:"surrender_value" binding:"gte=0"`
	MaturityDate   *string              `json:"maturity_date"`
	Beneficiaries  []BeneficiaryRequest `json:"beneficiaries" binding:"omitempty,dive"`
}

// CreateAssetRequest represents the request payload for creating an asset.
type CreateAssetRequest struct {
	Symbol    string                  `json:"symbol" binding:"max=20"`
	Name      string                  `json:"name" binding:"max=200"`
	Class     string                  `json:"class" binding:"required,asset_class"`
	Currency  string                  `json:"currency" binding:"omitempty,iso4217"`
	Insurance *InsuranceDetailRequest `json:"insurance"`
}

// UpdateAssetRequest represents the request payload for updating an asset.
type UpdateAssetRequest struct {
	Symbol string `json:"symbol" binding:"omitempty,max=20"`
	Name   string `json:"name" binding:"omitempty,max=200"`
}

// UpdateSurrenderValueRequest refreshes an insurance asset's surrender value.
type UpdateSurrenderValueRequest struct {
	SurrenderValue float64 `json:"surrender_value" binding:"gte=0"`
}

// CreateAsset handles the creation of a new asset in a portfolio
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	portfolioID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var insurance *services.InsuranceDetailInput
	if req.Insurance != nil {
		insurance = &services.InsuranceDetailInput{
			PolicyNumber:   req.Insurance.PolicyNumber,
			Insurer:        req.Insurance.Insurer,
			SurrenderValue: req.Insurance.SurrenderValue,
		}
		if req.Insurance.MaturityDate != nil {
			maturity, err := parseFlexibleTime(*req.Insurance.MaturityDate)
			if err != nil {
				respondWithError(c, err)
				return
			}
			insurance.MaturityDate = &maturity
		}
		for _, b := range req.Insurance.Beneficiaries {
			insurance.Beneficiaries = append(insurance.Beneficiaries, services.BeneficiaryInput{
				Name:         b.Name,
				SharePercent: b.SharePercent,
			})
		}
	}

	asset, err := h.assetService.CreateAsset(userID, portfolioID, req.Symbol, req.Name,
		models.AssetClass(req.Class), req.Currency, insurance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, asset)
}

// GetAssets lists a portfolio's assets
func (h *AssetHandler) GetAssets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	portfolioID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	response, err := h.assetService.GetPortfolioAssets(userID, portfolioID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetAsset returns a single asset
func (h *AssetHandler) GetAsset(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	asset, err := h.assetService.GetAssetByID(userID, assetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, asset)
}

// UpdateAsset updates an asset's display fields
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	asset, err := h.assetService.UpdateAsset(userID, assetID, req.Symbol, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, asset)
}

// UpdateSurrenderValue refreshes an insurance asset's surrender value
func (h *AssetHandler) UpdateSurrenderValue(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSurrenderValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	detail, err := h.assetService.UpdateSurrenderValue(userID, assetID, req.SurrenderValue)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

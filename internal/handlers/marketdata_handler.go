package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "folio/internal/errors"
	"folio/internal/services"
)

// MarketDataHandler handles exchange rate and asset price requests.
type MarketDataHandler struct {
	marketDataService services.MarketDataServicer
}

// NewMarketDataHandler creates a new MarketDataHandler.
func NewMarketDataHandler(marketDataService services.MarketDataServicer) *MarketDataHandler {
	return &MarketDataHandler{marketDataService: marketDataService}
}

// UpsertExchangeRateRequest represents the payload for storing a rate.
type UpsertExchangeRateRequest struct {
	FromCurrency string  `json:"from_currency" binding:"required,iso4217"`
	ToCurrency   string  `json:"to_currency" binding:"required,iso4217"`
	Rate         float64 `json:"rate" binding:"required,gt=0"`
}

// RecordAssetPriceRequest represents the payload for appending a price.
type RecordAssetPriceRequest struct {
	Price      float64 `json:"price" binding:"required,gt=0"`
	RecordedAt *string `json:"recorded_at"`
}

// UpsertExchangeRate stores or refreshes the rate for a currency pair
func (h *MarketDataHandler) UpsertExchangeRate(c *gin.Context) {
	var req UpsertExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	rate, err := h.marketDataService.UpsertExchangeRate(req.FromCurrency, req.ToCurrency, req.Rate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rate)
}

// GetExchangeRates lists all stored rates
func (h *MarketDataHandler) GetExchangeRates(c *gin.Context) {
	rates, err := h.marketDataService.ListExchangeRates()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"exchange_rates": rates})
}

// RecordAssetPrice appends a price observation for an asset
func (h *MarketDataHandler) RecordAssetPrice(c *gin.Context) {
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

	var req RecordAssetPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	recordedAt := time.Now()
	if req.RecordedAt != nil {
		recordedAt, err = parseFlexibleTime(*req.RecordedAt)
		if err != nil {
			respondWithError(c, err)
			return
		}
	}

	price, err := h.marketDataService.RecordAssetPrice(userID, assetID, req.Price, recordedAt)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, price)
}

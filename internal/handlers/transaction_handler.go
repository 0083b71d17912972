package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "folio/internal/errors"
	"folio/internal/models"
	"folio/internal/pagination"
	"folio/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionRequest represents the request payload for recording or editing
// a transaction.
type TransactionRequest struct {
	InstitutionID        *string `json:"institution_id" binding:"omitempty,uuid"`
	AssetID              *string `json:"asset_id" binding:"omitempty,uuid"`
	Type                 string  `json:"type" binding:"omitempty,transaction_type"`
	Amount               float64 `json:"amount"`
	Quantity             float64 `json:"quantity" binding:"gte=0"`
	Price                float64 `json:"price" binding:"gte=0"`
	Fees                 float64 `json:"fees" binding:"gte=0"`
	Tax                  float64 `json:"tax" binding:"gte=0"`
	Currency             string  `json:"currency" binding:"omitempty,iso4217"`
	TransactionDate      string  `json:"transaction_date" binding:"required"`
	Notes                string  `json:"notes" binding:"max=1000"`
	AccruedInterest      float64 `json:"accrued_interest" binding:"gte=0"`
	InstitutionPenalty   float64 `json:"institution_penalty" binding:"gte=0"`
	LinkedTransactionID  *string `json:"linked_transaction_id" binding:"omitempty,uuid"`
	ParentDepositAssetID *string `json:"parent_deposit_asset_id" binding:"omitempty,uuid"`
	PaymentDeducted      bool    `json:"payment_deducted"`
}

func (r *TransactionRequest) toInput(portfolioID string) (services.TransactionInput, error) {
	date, err := parseFlexibleTime(r.TransactionDate)
	if err != nil {
		return services.TransactionInput{}, err
	}
	return services.TransactionInput{
		PortfolioID:          portfolioID,
		InstitutionID:        r.InstitutionID,
		AssetID:              r.AssetID,
		Type:                 models.TransactionType(r.Type),
		Amount:               r.Amount,
		Quantity:             r.Quantity,
		Price:                r.Price,
		Fees:                 r.Fees,
		Tax:                  r.Tax,
		Currency:             r.Currency,
		TransactionDate:      date,
		Notes:                r.Notes,
		AccruedInterest:      r.AccruedInterest,
		InstitutionPenalty:   r.InstitutionPenalty,
		LinkedTransactionID:  r.LinkedTransactionID,
		ParentDepositAssetID: r.ParentDepositAssetID,
		PaymentDeducted:      r.PaymentDeducted,
	}, nil
}

// RecordTransaction records a transaction against a portfolio and applies
// its ledger effect
func (h *TransactionHandler) RecordTransaction(c *gin.Context) {
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

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	input, err := req.toInput(portfolioID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, outcome, err := h.transactionService.RecordTransaction(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"transaction": transaction,
		"outcome":     outcome,
	})
}

// RecordDepositTransfer records a fixed-deposit placement with its funding
// deposit as one atomic companion pair
func (h *TransactionHandler) RecordDepositTransfer(c *gin.Context) {
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

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	input, err := req.toInput(portfolioID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, outcome, err := h.transactionService.RecordDepositTransfer(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"transaction": transaction,
		"outcome":     outcome,
	})
}

// GetTransactions lists a portfolio's transactions with optional filters
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
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

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	response, err := h.transactionService.GetPortfolioTransactions(userID, portfolioID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetTransaction returns a single transaction
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// UpdateTransaction edits a transaction, reversing and reapplying its
// ledger effect
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	input, err := req.toInput("")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, outcome, err := h.transactionService.UpdateTransaction(userID, transactionID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transaction": transaction,
		"outcome":     outcome,
	})
}

// DeleteTransaction reverses and removes a transaction
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
}

// parseTransactionFilter reads the optional list filters from the query
// string.
func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, err
		}
		filter.FromDate = &t
	}
	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, err
		}
		filter.ToDate = &t
	}
	if v := c.Query("type"); v != "" {
		transactionType := models.TransactionType(v)
		if !models.KnownTransactionType(transactionType) {
			return filter, apperrors.ErrInvalidTransactionType
		}
		filter.Type = &transactionType
	}
	if v := c.Query("asset_id"); v != "" {
		filter.AssetID = &v
	}
	if v := c.Query("institution_id"); v != "" {
		filter.InstitutionID = &v
	}
	return filter, nil
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "folio/internal/errors"
	"folio/internal/pagination"
	"folio/internal/services"
)

// PortfolioHandler handles portfolio-related requests.
type PortfolioHandler struct {
	portfolioService services.PortfolioServicer
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService services.PortfolioServicer) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// CreatePortfolioRequest represents the request payload for creating a portfolio.
type CreatePortfolioRequest struct {
	Name                   string `json:"name" binding:"required,min=1,max=100"`
	MainCurrency           string `json:"main_currency" binding:"omitempty,iso4217"`
	EnforcesCashDiscipline *bool  `json:"enforces_cash_discipline"`
}

// UpdatePortfolioRequest represents the request payload for updating a portfolio.
type UpdatePortfolioRequest struct {
	Name                   string `json:"name" binding:"omitempty,min=1,max=100"`
	EnforcesCashDiscipline *bool  `json:"enforces_cash_discipline"`
}

// CreatePortfolio handles the creation of a new portfolio
func (h *PortfolioHandler) CreatePortfolio(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	enforces := true
	if req.EnforcesCashDiscipline != nil {
		enforces = *req.EnforcesCashDiscipline
	}

	portfolio, err := h.portfolioService.CreatePortfolio(userID, req.Name, req.MainCurrency, enforces)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, portfolio)
}

// GetPortfolios lists the authenticated user's portfolios
func (h *PortfolioHandler) GetPortfolios(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	response, err := h.portfolioService.GetUserPortfolios(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetPortfolio returns a single portfolio
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
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

	portfolio, err := h.portfolioService.GetPortfolioByID(userID, portfolioID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, portfolio)
}

// UpdatePortfolio updates a portfolio's settings
func (h *PortfolioHandler) UpdatePortfolio(c *gin.Context) {
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

	var req UpdatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	portfolio, err := h.portfolioService.UpdatePortfolio(userID, portfolioID, req.Name, req.EnforcesCashDiscipline)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, portfolio)
}

// DeletePortfolio removes a portfolio and its dependent records
func (h *PortfolioHandler) DeletePortfolio(c *gin.Context) {
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

	if err := h.portfolioService.DeletePortfolio(userID, portfolioID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Portfolio deleted"})
}

// GetHoldings lists a portfolio's holdings with current prices attached
func (h *PortfolioHandler) GetHoldings(c *gin.Context) {
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

	holdings, err := h.portfolioService.GetHoldings(userID, portfolioID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"holdings": holdings})
}

// GetCashBalances lists a portfolio's cash buckets
func (h *PortfolioHandler) GetCashBalances(c *gin.Context) {
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

	balances, err := h.portfolioService.GetCashBalances(userID, portfolioID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cash_balances": balances})
}

// RecomputeTotals refreshes the portfolio's cached total value
func (h *PortfolioHandler) RecomputeTotals(c *gin.Context) {
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

	portfolio, err := h.portfolioService.RecomputeTotals(userID, portfolioID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, portfolio)
}

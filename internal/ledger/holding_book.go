package ledger

import "folio/internal/models"

// HoldingBook applies weighted-average cost-basis arithmetic to holdings.
// All monetary inputs must already be expressed in the portfolio's main
// currency; callers convert before invoking. Quantities are clamped so a
// holding never goes negative, and the average cost basis is reset to zero
// whenever the quantity returns to zero.
type HoldingBook struct{}

// ApplyBuy blends a purchase into the holding's weighted-average cost basis.
func (HoldingBook) ApplyBuy(h *models.Holding, quantity, price, fees, tax float64) {
	newTotalCost := h.Quantity*h.AverageCostBasis + quantity*price + fees + tax
	h.Quantity += quantity
	if h.Quantity > 0 {
		h.AverageCostBasis = newTotalCost / h.Quantity
	} else {
		h.Quantity = 0
		h.AverageCostBasis = 0
	}
}

// ReverseBuy removes a purchase's cost contribution from the holding.
func (HoldingBook) ReverseBuy(h *models.Holding, quantity, price, fees, tax float64) {
	remainingCost := h.Quantity*h.AverageCostBasis - (quantity*price + fees + tax)
	h.Quantity -= quantity
	if h.Quantity <= 0 {
		h.Quantity = 0
		h.AverageCostBasis = 0
		return
	}
	if remainingCost < 0 {
		remainingCost = 0
	}
	h.AverageCostBasis = remainingCost / h.Quantity
}

// ApplySell reduces the holding quantity and returns the realized gain.
// The average cost basis of the remainder is unchanged: selling does not
// alter the blended cost of what is left. The returned gain is what callers
// persist on the transaction record; reversal treats that stored value as
// ground truth.
func (HoldingBook) ApplySell(h *models.Holding, quantity, price, fees, tax float64) float64 {
	proceeds := quantity*price - fees - tax
	costRemoved := quantity * h.AverageCostBasis
	realizedGain := proceeds - costRemoved

	h.Quantity -= quantity
	if h.Quantity <= 0 {
		h.Quantity = 0
		h.AverageCostBasis = 0
	}
	h.RealizedGainLoss += realizedGain
	return realizedGain
}

// ReverseSell restores the quantity sold and reconstructs the pre-sale
// average cost basis from the transaction's stored realized gain, so the
// reconstruction never depends on cost-basis drift that happened in between.
func (HoldingBook) ReverseSell(h *models.Holding, quantity, price, fees, tax, storedRealizedGain float64) {
	proceeds := quantity*price - fees - tax
	costRemoved := proceeds - storedRealizedGain

	newTotalCost := h.Quantity*h.AverageCostBasis + costRemoved
	h.Quantity += quantity
	if h.Quantity > 0 {
		h.AverageCostBasis = newTotalCost / h.Quantity
	}
	h.RealizedGainLoss -= storedRealizedGain
}

// ApplyIncome accumulates dividend or interest income on the holding.
func (HoldingBook) ApplyIncome(h *models.Holding, netAmount float64) {
	h.TotalDividends += netAmount
}

// ReverseIncome removes previously recorded income, clamped at zero.
func (HoldingBook) ReverseIncome(h *models.Holding, netAmount float64) {
	h.TotalDividends -= netAmount
	if h.TotalDividends < 0 {
		h.TotalDividends = 0
	}
}

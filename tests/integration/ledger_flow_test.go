package integration

import (
	"fmt"
	"math"
	"net/http"
	"testing"
	"time"
)

const floatTolerance = 1e-6

func approx(a, b float64) bool {
	return math.Abs(a-b) <= floatTolerance
}

func TestLedgerFlow_BuySellLifecycle(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "ledger@test.com", "password123")

	portfolioID := app.createPortfolio(t, token, "Family Growth", "USD")
	brokerID := app.createInstitution(t, token, "Interactive Brokers", "broker")
	assetID := app.createAsset(t, token, portfolioID, "AAPL", "Apple Inc.", "stock")

	date := time.Now().Format(time.RFC3339)

	// Fund the portfolio.
	app.recordTransaction(t, token, portfolioID, fmt.Sprintf(
		`{"type":"deposit","amount":5000,"currency":"USD","institution_id":%q,"transaction_date":%q}`,
		brokerID, date))
	if got := app.cashBalances(t, token, portfolioID)["USD"]; !approx(got, 5000) {
		t.Fatalf("expected 5000 cash after deposit, got %v", got)
	}

	// First buy: 10 shares at $100 with a $1 fee.
	app.recordTransaction(t, token, portfolioID, fmt.Sprintf(
		`{"type":"buy","asset_id":%q,"institution_id":%q,"quantity":10,"price":100,"fees":1,"currency":"USD","transaction_date":%q}`,
		assetID, brokerID, date))

	// Second buy at a higher price blends the cost basis.
	app.recordTransaction(t, token, portfolioID, fmt.Sprintf(
		`{"type":"buy","asset_id":%q,"institution_id":%q,"quantity":10,"price":120,"currency":"USD","transaction_date":%q}`,
		assetID, brokerID, date))

	rec := app.request("GET", fmt.Sprintf("/api/v1/portfolios/%s/holdings", portfolioID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for holdings, got %d: %s", rec.Code, rec.Body.String())
	}
	holdings := parseJSON(t, rec)["holdings"].([]interface{})
	if len(holdings) != 1 {
		t.Fatalf("expected 1 holding, got %d", len(holdings))
	}
	holding := holdings[0].(map[string]interface{})
	if got := holding["quantity"].(float64); !approx(got, 20) {
		t.Errorf("expected 20 shares, got %v", got)
	}
	// (10*100.1 + 10*120) / 20
	if got := holding["average_cost_basis"].(float64); !approx(got, 110.05) {
		t.Errorf("expected blended cost basis 110.05, got %v", got)
	}
	if got := app.cashBalances(t, token, portfolioID)["USD"]; !approx(got, 2799) {
		t.Errorf("expected 2799 cash after buys, got %v", got)
	}

	// Sell 5 shares at $150. Gain = 750 - 5*110.05.
	sellTx, sellOutcome := app.recordTransaction(t, token, portfolioID, fmt.Sprintf(
		`{"type":"sell","asset_id":%q,"institution_id":%q,"quantity":5,"price":150,"currency":"USD","transaction_date":%q}`,
		assetID, brokerID, date))
	if got := sellOutcome["realized_gain"].(float64); !approx(got, 199.75) {
		t.Errorf("expected realized gain 199.75, got %v", got)
	}
	if got := sellTx["realized_gain"].(float64); !approx(got, 199.75) {
		t.Errorf("expected realized gain persisted on the transaction, got %v", got)
	}

	rec = app.request("GET", fmt.Sprintf("/api/v1/portfolios/%s/holdings", portfolioID), "", token)
	holding = parseJSON(t, rec)["holdings"].([]interface{})[0].(map[string]interface{})
	if got := holding["quantity"].(float64); !approx(got, 15) {
		t.Errorf("expected 15 shares after sell, got %v", got)
	}
	// Selling never moves the average cost basis.
	if got := holding["average_cost_basis"].(float64); !approx(got, 110.05) {
		t.Errorf("expected cost basis unchanged at 110.05, got %v", got)
	}
	if got := app.cashBalances(t, token, portfolioID)["USD"]; !approx(got, 3549) {
		t.Errorf("expected 3549 cash after sell, got %v", got)
	}

	// Record a market price and recompute: 15*120 + 3549 cash.
	rec = app.request("POST", fmt.Sprintf("/api/v1/assets/%s/prices", assetID),
		`{"price":120}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 recording price, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("POST", fmt.Sprintf("/api/v1/portfolios/%s/recompute", portfolioID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for recompute, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := parseJSON(t, rec)["total_value"].(float64); !approx(got, 5349) {
		t.Errorf("expected total value 5349, got %v", got)
	}

	// Deleting the sell reverses it: shares and cash return, gain is undone.
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/transactions/%s", sellTx["id"].(string)), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 deleting sell, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", fmt.Sprintf("/api/v1/portfolios/%s/holdings", portfolioID), "", token)
	holding = parseJSON(t, rec)["holdings"].([]interface{})[0].(map[string]interface{})
	if got := holding["quantity"].(float64); !approx(got, 20) {
		t.Errorf("expected 20 shares after reversal, got %v", got)
	}
	if got := holding["realized_gain_loss"].(float64); !approx(got, 0) {
		t.Errorf("expected realized gain reversed to 0, got %v", got)
	}
	if got := app.cashBalances(t, token, portfolioID)["USD"]; !approx(got, 2799) {
		t.Errorf("expected 2799 cash after reversal, got %v", got)
	}
}

func TestLedgerFlow_EditTransactionReapplies(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "edit@test.com", "password123")

	portfolioID := app.createPortfolio(t, token, "Edits", "USD")
	assetID := app.createAsset(t, token, portfolioID, "VWRA", "Vanguard FTSE All-World", "fund")
	date := time.Now().Format(time.RFC3339)

	app.recordTransaction(t, token, portfolioID, fmt.Sprintf(
		`{"type":"deposit","amount":3000,"currency":"USD","transaction_date":%q}`, date))
	buyTx, _ := app.recordTransaction(t, token, portfolioID, fmt.Sprintf(
		`{"type":"buy","asset_id":%q,"quantity":10,"price":100,"fees":1,"currency":"USD","transaction_date":%q}`,
		assetID, date))

	// Edit the buy down to 10 shares at $90 with the same fee.
	rec := app.request("PUT", fmt.Sprintf("/api/v1/transactions/%s", buyTx["id"].(string)),
		fmt.Sprintf(`{"type":"buy","asset_id":%q,"quantity":10,"price":90,"fees":1,"currency":"USD","transaction_date":%q}`,
			assetID, date), token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for edit, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", fmt.Sprintf("/api/v1/portfolios/%s/holdings", portfolioID), "", token)
	holding := parseJSON(t, rec)["holdings"].([]interface{})[0].(map[string]interface{})
	if got := holding["average_cost_basis"].(float64); !approx(got, 90.1) {
		t.Errorf("expected re-applied cost basis 90.1, got %v", got)
	}
	if got := app.cashBalances(t, token, portfolioID)["USD"]; !approx(got, 2099) {
		t.Errorf("expected 2099 cash after edit, got %v", got)
	}
}

func TestLedgerFlow_SellMoreThanHeldRejected(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "oversell@test.com", "password123")

	portfolioID := app.createPortfolio(t, token, "Oversell", "USD")
	assetID := app.createAsset(t, token, portfolioID, "TSLA", "Tesla Inc.", "stock")
	date := time.Now().Format(time.RFC3339)

	app.recordTransaction(t, token, portfolioID, fmt.Sprintf(
		`{"type":"deposit","amount":2000,"currency":"USD","transaction_date":%q}`, date))
	app.recordTransaction(t, token, portfolioID, fmt.Sprintf(
		`{"type":"buy","asset_id":%q,"quantity":5,"price":200,"currency":"USD","transaction_date":%q}`,
		assetID, date))

	rec := app.request("POST", fmt.Sprintf("/api/v1/portfolios/%s/transactions", portfolioID),
		fmt.Sprintf(`{"type":"sell","asset_id":%q,"quantity":6,"price":200,"currency":"USD","transaction_date":%q}`,
			assetID, date), token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversell, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"].(string) != "INSUFFICIENT_QUANTITY" {
		t.Errorf("expected INSUFFICIENT_QUANTITY, got %v", errObj["code"])
	}
}

func TestLedgerFlow_PortfolioIsolation(t *testing.T) {
	app := setupApp(t)
	aliceToken, _, _ := app.registerUser(t, "alice@test.com", "password123")
	bobToken, _, _ := app.registerUser(t, "bob@test.com", "password123")

	portfolioID := app.createPortfolio(t, aliceToken, "Alice Portfolio", "USD")

	rec := app.request("GET", fmt.Sprintf("/api/v1/portfolios/%s", portfolioID), "", bobToken)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for foreign portfolio, got %d", rec.Code)
	}

	rec = app.request("POST", fmt.Sprintf("/api/v1/portfolios/%s/transactions", portfolioID),
		fmt.Sprintf(`{"type":"deposit","amount":100,"currency":"USD","transaction_date":%q}`,
			time.Now().Format(time.RFC3339)), bobToken)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 recording into foreign portfolio, got %d", rec.Code)
	}
}

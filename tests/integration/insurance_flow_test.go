package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestInsuranceFlow_PremiumsAndSurrenderValue(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "insurance@test.com", "password123")

	portfolioID := app.createPortfolio(t, token, "Protection", "USD")
	insurerID := app.createInstitution(t, token, "Great Eastern", "insurer")
	date := time.Now().Format(time.RFC3339)

	// Create the policy asset with its detail and a beneficiary.
	rec := app.request("POST", fmt.Sprintf("/api/v1/portfolios/%s/assets", portfolioID),
		`{"symbol":"WL-01","name":"Whole Life Policy","class":"insurance","currency":"USD",
		  "insurance":{"policy_number":"POL-12345","insurer":"Great Eastern",
		    "beneficiaries":[{"name":"Jamie Tan","share_percent":100}]}}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating policy asset, got %d: %s", rec.Code, rec.Body.String())
	}
	policyID := parseJSON(t, rec)["id"].(string)

	app.recordTransaction(t, token, portfolioID, fmt.Sprintf(
		`{"type":"deposit","amount":5000,"currency":"USD","institution_id":%q,"transaction_date":%q}`,
		insurerID, date))

	// Two annual premiums, both paid from tracked cash.
	app.recordTransaction(t, token, portfolioID, fmt.Sprintf(
		`{"type":"insurance","asset_id":%q,"institution_id":%q,"amount":1200,"payment_deducted":true,"currency":"USD","transaction_date":%q}`,
		policyID, insurerID, date))
	premium2, _ := app.recordTransaction(t, token, portfolioID, fmt.Sprintf(
		`{"type":"insurance","asset_id":%q,"institution_id":%q,"amount":1200,"payment_deducted":true,"currency":"USD","transaction_date":%q}`,
		policyID, insurerID, date))

	if got := app.cashBalances(t, token, portfolioID)["USD"]; !approx(got, 2600) {
		t.Errorf("expected 2600 cash after two premiums, got %v", got)
	}

	// The policy holding tracks one unit with the accumulated premiums as basis.
	rec = app.request("GET", fmt.Sprintf("/api/v1/portfolios/%s/holdings", portfolioID), "", token)
	holding := parseJSON(t, rec)["holdings"].([]interface{})[0].(map[string]interface{})
	if got := holding["quantity"].(float64); !approx(got, 1) {
		t.Errorf("expected policy quantity 1, got %v", got)
	}
	if got := holding["average_cost_basis"].(float64); !approx(got, 2400) {
		t.Errorf("expected accumulated premium basis 2400, got %v", got)
	}

	// Refresh the surrender value; valuation uses it instead of premiums.
	rec = app.request("PUT", fmt.Sprintf("/api/v1/assets/%s/surrender-value", policyID),
		`{"surrender_value":1500}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 updating surrender value, got %d: %s", rec.Code, rec.Body.String())
	}
	detail := parseJSON(t, rec)
	if got := detail["premiums_paid"].(float64); !approx(got, 2400) {
		t.Errorf("expected premiums paid 2400, got %v", got)
	}

	rec = app.request("POST", fmt.Sprintf("/api/v1/portfolios/%s/recompute", portfolioID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for recompute, got %d: %s", rec.Code, rec.Body.String())
	}
	// 1500 surrender value + 2600 cash.
	if got := parseJSON(t, rec)["total_value"].(float64); !approx(got, 4100) {
		t.Errorf("expected total value 4100, got %v", got)
	}

	// Deleting a premium reverses it destructively, tearing down the
	// policy's derived records.
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/transactions/%s", premium2["id"].(string)), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 deleting premium, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := app.cashBalances(t, token, portfolioID)["USD"]; !approx(got, 3800) {
		t.Errorf("expected 3800 cash after premium reversal, got %v", got)
	}
	rec = app.request("GET", fmt.Sprintf("/api/v1/assets/%s", policyID), "", token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for torn-down policy asset, got %d", rec.Code)
	}
}

func TestInsuranceFlow_PremiumWithoutCashDeduction(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "giro@test.com", "password123")

	portfolioID := app.createPortfolio(t, token, "External Pay", "USD")
	rec := app.request("POST", fmt.Sprintf("/api/v1/portfolios/%s/assets", portfolioID),
		`{"symbol":"TERM-01","name":"Term Policy","class":"insurance","currency":"USD","insurance":{}}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating policy asset, got %d: %s", rec.Code, rec.Body.String())
	}
	policyID := parseJSON(t, rec)["id"].(string)

	// Premium paid outside the tracked accounts leaves cash alone.
	app.recordTransaction(t, token, portfolioID, fmt.Sprintf(
		`{"type":"insurance","asset_id":%q,"amount":800,"payment_deducted":false,"currency":"USD","transaction_date":%q}`,
		policyID, time.Now().Format(time.RFC3339)))

	if got := app.cashBalances(t, token, portfolioID)["USD"]; !approx(got, 0) {
		t.Errorf("expected cash untouched, got %v", got)
	}
	rec = app.request("GET", fmt.Sprintf("/api/v1/portfolios/%s/holdings", portfolioID), "", token)
	holding := parseJSON(t, rec)["holdings"].([]interface{})[0].(map[string]interface{})
	if got := holding["average_cost_basis"].(float64); !approx(got, 800) {
		t.Errorf("expected premium basis 800, got %v", got)
	}
}

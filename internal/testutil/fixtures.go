package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"folio/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestPortfolio creates a USD portfolio with cash discipline enabled.
func CreateTestPortfolio(t *testing.T, db *gorm.DB, userID string) *models.Portfolio {
	t.Helper()
	return CreateTestPortfolioWithOptions(t, db, userID, "USD", true)
}

// CreateTestPortfolioWithOptions creates a portfolio with the given main
// currency and cash discipline setting.
func CreateTestPortfolioWithOptions(t *testing.T, db *gorm.DB, userID, mainCurrency string, cashDiscipline bool) *models.Portfolio {
	t.Helper()

	portfolio := &models.Portfolio{
		UserID:                 userID,
		Name:                   fmt.Sprintf("Portfolio %d", nextID()),
		MainCurrency:           mainCurrency,
		EnforcesCashDiscipline: cashDiscipline,
	}
	if err := db.Create(portfolio).Error; err != nil {
		t.Fatalf("failed to create test portfolio: %v", err)
	}
	return portfolio
}

// CreateTestInstitution creates an institution of the given kind.
func CreateTestInstitution(t *testing.T, db *gorm.DB, userID string, kind models.InstitutionKind) *models.Institution {
	t.Helper()

	institution := &models.Institution{
		UserID: userID,
		Name:   fmt.Sprintf("Institution %d", nextID()),
		Kind:   kind,
	}
	if err := db.Create(institution).Error; err != nil {
		t.Fatalf("failed to create test institution: %v", err)
	}
	return institution
}

// CreateTestAsset creates an asset of the given class in USD.
func CreateTestAsset(t *testing.T, db *gorm.DB, portfolioID string, class models.AssetClass) *models.Asset {
	t.Helper()

	n := nextID()
	asset := &models.Asset{
		PortfolioID: portfolioID,
		Symbol:      fmt.Sprintf("AST%d", n),
		Name:        fmt.Sprintf("Asset %d", n),
		Class:       class,
		Currency:    "USD",
	}
	if err := db.Create(asset).Error; err != nil {
		t.Fatalf("failed to create test asset: %v", err)
	}
	return asset
}

// CreateTestTransaction persists the given transaction, filling in defaults
// for the date and currency when unset.
func CreateTestTransaction(t *testing.T, db *gorm.DB, tx *models.Transaction) *models.Transaction {
	t.Helper()

	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = time.Now()
	}
	if tx.Currency == "" {
		tx.Currency = "USD"
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestInsuranceDetail creates a policy detail for an insurance asset.
func CreateTestInsuranceDetail(t *testing.T, db *gorm.DB, assetID string, surrenderValue float64) *models.InsuranceDetail {
	t.Helper()

	detail := &models.InsuranceDetail{
		AssetID:        assetID,
		PolicyNumber:   fmt.Sprintf("POL-%d", nextID()),
		SurrenderValue: surrenderValue,
	}
	if err := db.Create(detail).Error; err != nil {
		t.Fatalf("failed to create test insurance detail: %v", err)
	}
	return detail
}

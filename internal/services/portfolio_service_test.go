package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"folio/internal/ledger"
	"folio/internal/models"
	"folio/internal/testutil"
)

func newPortfolioFixture(t *testing.T) (*gorm.DB, PortfolioServicer, *ledger.Engine, MarketDataServicer) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	engine := ledger.NewEngine(db, 24*time.Hour)
	market := NewMarketDataService(db, time.Minute)
	return db, NewPortfolioService(db, engine, market), engine, market
}

func TestCreatePortfolio(t *testing.T) {
	db, svc, _, _ := newPortfolioFixture(t)
	user := testutil.CreateTestUser(t, db)

	t.Run("valid", func(t *testing.T) {
		portfolio, err := svc.CreatePortfolio(user.ID, "Retirement", "EUR", true)
		testutil.AssertNoError(t, err)
		if portfolio.MainCurrency != "EUR" {
			t.Errorf("expected EUR, got %s", portfolio.MainCurrency)
		}
		if !portfolio.EnforcesCashDiscipline {
			t.Error("expected cash discipline on")
		}
	})

	t.Run("defaults currency to USD", func(t *testing.T) {
		portfolio, err := svc.CreatePortfolio(user.ID, "Kids", "", false)
		testutil.AssertNoError(t, err)
		if portfolio.MainCurrency != "USD" {
			t.Errorf("expected USD default, got %s", portfolio.MainCurrency)
		}
	})

	t.Run("requires a name", func(t *testing.T) {
		_, err := svc.CreatePortfolio(user.ID, "", "USD", true)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetPortfolioByID(t *testing.T) {
	db, svc, _, _ := newPortfolioFixture(t)
	user := testutil.CreateTestUser(t, db)
	portfolio := testutil.CreateTestPortfolio(t, db, user.ID)

	found, err := svc.GetPortfolioByID(user.ID, portfolio.ID)
	testutil.AssertNoError(t, err)
	if found.ID != portfolio.ID {
		t.Fatalf("expected %s, got %s", portfolio.ID, found.ID)
	}

	t.Run("scoped to owner", func(t *testing.T) {
		intruder := testutil.CreateTestUser(t, db)
		_, err := svc.GetPortfolioByID(intruder.ID, portfolio.ID)
		testutil.AssertAppError(t, err, "PORTFOLIO_NOT_FOUND")
	})
}

func TestUpdatePortfolio(t *testing.T) {
	db, svc, _, _ := newPortfolioFixture(t)
	user := testutil.CreateTestUser(t, db)
	portfolio := testutil.CreateTestPortfolio(t, db, user.ID)

	off := false
	updated, err := svc.UpdatePortfolio(user.ID, portfolio.ID, "Renamed", &off)
	testutil.AssertNoError(t, err)
	if updated.Name != "Renamed" {
		t.Errorf("expected renamed portfolio, got %s", updated.Name)
	}
	if updated.EnforcesCashDiscipline {
		t.Error("expected cash discipline off")
	}
}

func TestRecomputeTotals(t *testing.T) {
	db, svc, engine, market := newPortfolioFixture(t)
	user := testutil.CreateTestUser(t, db)
	portfolio := testutil.CreateTestPortfolio(t, db, user.ID)
	asset := testutil.CreateTestAsset(t, db, portfolio.ID, models.AssetClassStock)

	testutil.AssertNoError(t, engine.Cash().AddDelta(db, portfolio.ID, nil, "USD", 1000))

	buy := testutil.CreateTestTransaction(t, db, &models.Transaction{
		UserID: user.ID, PortfolioID: portfolio.ID, AssetID: &asset.ID,
		Type: models.TransactionTypeBuy, Quantity: 10, Price: 100,
	})
	snap, err := market.GetSnapshot()
	testutil.AssertNoError(t, err)
	_, err = engine.Apply(buy, snap)
	testutil.AssertNoError(t, err)

	_, err = market.RecordAssetPrice(user.ID, asset.ID, 120, time.Now())
	testutil.AssertNoError(t, err)

	updated, err := svc.RecomputeTotals(user.ID, portfolio.ID)
	testutil.AssertNoError(t, err)
	// 10 shares at 120 plus the remaining cash.
	testutil.AssertFloatEquals(t, 1200+0, updated.TotalValue, "total value")
}

func TestGetCashBalances(t *testing.T) {
	db, svc, engine, _ := newPortfolioFixture(t)
	user := testutil.CreateTestUser(t, db)
	portfolio := testutil.CreateTestPortfolio(t, db, user.ID)

	testutil.AssertNoError(t, engine.Cash().AddDelta(db, portfolio.ID, nil, "USD", 100))
	testutil.AssertNoError(t, engine.Cash().AddDelta(db, portfolio.ID, nil, "EUR", 50))

	balances, err := svc.GetCashBalances(user.ID, portfolio.ID)
	testutil.AssertNoError(t, err)
	if len(balances) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(balances))
	}
}

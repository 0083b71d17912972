package ledger

import (
	"testing"

	"folio/internal/fx"
	"folio/internal/models"
	"folio/internal/testutil"
)

func TestCashLedgerBuckets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	portfolio := testutil.CreateTestPortfolio(t, db, user.ID)
	bank := testutil.CreateTestInstitution(t, db, user.ID, models.InstitutionKindBank)
	ledger := NewCashLedger(db)

	t.Run("absent bucket reads as zero", func(t *testing.T) {
		amount, err := ledger.Get(db, portfolio.ID, nil, "USD")
		testutil.AssertNoError(t, err)
		testutil.AssertFloatEquals(t, 0, amount, "absent balance")
	})

	t.Run("delta creates the bucket lazily", func(t *testing.T) {
		err := ledger.AddDelta(db, portfolio.ID, nil, "USD", 100)
		testutil.AssertNoError(t, err)

		amount, err := ledger.Get(db, portfolio.ID, nil, "USD")
		testutil.AssertNoError(t, err)
		testutil.AssertFloatEquals(t, 100, amount, "created balance")
	})

	t.Run("institution bucket is distinct from portfolio level", func(t *testing.T) {
		err := ledger.AddDelta(db, portfolio.ID, &bank.ID, "USD", 40)
		testutil.AssertNoError(t, err)

		portfolioLevel, err := ledger.Get(db, portfolio.ID, nil, "USD")
		testutil.AssertNoError(t, err)
		atBank, err := ledger.Get(db, portfolio.ID, &bank.ID, "USD")
		testutil.AssertNoError(t, err)

		testutil.AssertFloatEquals(t, 100, portfolioLevel, "portfolio-level balance")
		testutil.AssertFloatEquals(t, 40, atBank, "institution balance")
	})

	t.Run("bucket survives returning to zero", func(t *testing.T) {
		err := ledger.AddDelta(db, portfolio.ID, &bank.ID, "USD", -40)
		testutil.AssertNoError(t, err)

		balances, err := ledger.Balances(db, portfolio.ID)
		testutil.AssertNoError(t, err)
		if len(balances) != 2 {
			t.Fatalf("expected 2 balance records, got %d", len(balances))
		}
		atBank, err := ledger.Get(db, portfolio.ID, &bank.ID, "USD")
		testutil.AssertNoError(t, err)
		testutil.AssertFloatEquals(t, 0, atBank, "zeroed balance")
	})
}

func TestCashLedgerTotalInMainCurrency(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	portfolio := testutil.CreateTestPortfolio(t, db, user.ID)
	ledger := NewCashLedger(db)

	testutil.AssertNoError(t, ledger.AddDelta(db, portfolio.ID, nil, "USD", 100))
	testutil.AssertNoError(t, ledger.AddDelta(db, portfolio.ID, nil, "EUR", 50))

	rates := fx.RateTable{"EUR": {"USD": 1.1}}

	t.Run("converts each bucket into the main currency", func(t *testing.T) {
		total, err := ledger.TotalInMainCurrency(db, portfolio, rates)
		testutil.AssertNoError(t, err)
		testutil.AssertFloatEquals(t, 155, total, "total cash")
	})

	t.Run("missing rate keeps the amount unconverted", func(t *testing.T) {
		total, err := ledger.TotalInMainCurrency(db, portfolio, nil)
		testutil.AssertNoError(t, err)
		testutil.AssertFloatEquals(t, 150, total, "total cash without rates")
	})
}

func TestCashLedgerInstitutionTotal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	portfolio := testutil.CreateTestPortfolio(t, db, user.ID)
	bank := testutil.CreateTestInstitution(t, db, user.ID, models.InstitutionKindBank)
	broker := testutil.CreateTestInstitution(t, db, user.ID, models.InstitutionKindBroker)
	ledger := NewCashLedger(db)

	testutil.AssertNoError(t, ledger.AddDelta(db, portfolio.ID, &bank.ID, "USD", 100))
	testutil.AssertNoError(t, ledger.AddDelta(db, portfolio.ID, &bank.ID, "EUR", 50))
	testutil.AssertNoError(t, ledger.AddDelta(db, portfolio.ID, &broker.ID, "USD", 999))

	rates := fx.RateTable{"EUR": {"USD": 1.1}}
	total, err := ledger.InstitutionTotalInMainCurrency(db, portfolio, bank.ID, rates)
	testutil.AssertNoError(t, err)
	testutil.AssertFloatEquals(t, 155, total, "bank total")
}

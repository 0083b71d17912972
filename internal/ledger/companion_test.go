package ledger

import (
	"testing"
	"time"

	"folio/internal/models"
	"folio/internal/testutil"
)

func TestFindCompanionExplicitLink(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	portfolio := testutil.CreateTestPortfolio(t, db, user.ID)
	asset := testutil.CreateTestAsset(t, db, portfolio.ID, models.AssetClassFixedDeposit)
	linker := NewCompanionLinker(24 * time.Hour)

	deposit := testutil.CreateTestTransaction(t, db, &models.Transaction{
		UserID:      user.ID,
		PortfolioID: portfolio.ID,
		Type:        models.TransactionTypeDeposit,
		Amount:      5000,
	})
	buy := testutil.CreateTestTransaction(t, db, &models.Transaction{
		UserID:              user.ID,
		PortfolioID:         portfolio.ID,
		AssetID:             &asset.ID,
		Type:                models.TransactionTypeBuy,
		Amount:              5000,
		LinkedTransactionID: &deposit.ID,
	})

	t.Run("forward direction", func(t *testing.T) {
		companion, err := linker.FindCompanion(db, buy)
		testutil.AssertNoError(t, err)
		if companion == nil || companion.ID != deposit.ID {
			t.Fatalf("expected companion %s, got %+v", deposit.ID, companion)
		}
	})

	t.Run("reverse direction", func(t *testing.T) {
		companion, err := linker.FindCompanion(db, deposit)
		testutil.AssertNoError(t, err)
		if companion == nil || companion.ID != buy.ID {
			t.Fatalf("expected companion %s, got %+v", buy.ID, companion)
		}
	})
}

func TestFindCompanionNoteToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	portfolio := testutil.CreateTestPortfolio(t, db, user.ID)
	asset := testutil.CreateTestAsset(t, db, portfolio.ID, models.AssetClassFixedDeposit)
	linker := NewCompanionLinker(24 * time.Hour)

	deposit := testutil.CreateTestTransaction(t, db, &models.Transaction{
		UserID:      user.ID,
		PortfolioID: portfolio.ID,
		Type:        models.TransactionTypeDeposit,
		Amount:      5000,
	})
	buy := testutil.CreateTestTransaction(t, db, &models.Transaction{
		UserID:      user.ID,
		PortfolioID: portfolio.ID,
		AssetID:     &asset.ID,
		Type:        models.TransactionTypeBuy,
		Amount:      5000,
		Notes:       "funded by transfer " + LinkToken(deposit.ID),
	})

	companion, err := linker.FindCompanion(db, buy)
	testutil.AssertNoError(t, err)
	if companion == nil || companion.ID != deposit.ID {
		t.Fatalf("expected companion %s, got %+v", deposit.ID, companion)
	}

	t.Run("token match backfills the explicit link", func(t *testing.T) {
		var reloaded models.Transaction
		testutil.AssertNoError(t, db.First(&reloaded, "id = ?", buy.ID).Error)
		if reloaded.LinkedTransactionID == nil || *reloaded.LinkedTransactionID != deposit.ID {
			t.Fatalf("expected backfilled link to %s, got %v", deposit.ID, reloaded.LinkedTransactionID)
		}

		var reloadedDeposit models.Transaction
		testutil.AssertNoError(t, db.First(&reloadedDeposit, "id = ?", deposit.ID).Error)
		if reloadedDeposit.LinkedTransactionID == nil || *reloadedDeposit.LinkedTransactionID != buy.ID {
			t.Fatalf("expected backfilled link to %s, got %v", buy.ID, reloadedDeposit.LinkedTransactionID)
		}
	})
}

func TestFindCompanionHeuristic(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	portfolio := testutil.CreateTestPortfolio(t, db, user.ID)
	linker := NewCompanionLinker(24 * time.Hour)
	now := time.Now()

	t.Run("matches deposit by amount, date, and note text", func(t *testing.T) {
		asset := testutil.CreateTestAsset(t, db, portfolio.ID, models.AssetClassFixedDeposit)
		deposit := testutil.CreateTestTransaction(t, db, &models.Transaction{
			UserID:          user.ID,
			PortfolioID:     portfolio.ID,
			Type:            models.TransactionTypeDeposit,
			Amount:          5000,
			TransactionDate: now.Add(-2 * time.Hour),
			Notes:           "transfer into " + asset.Symbol,
		})
		buy := testutil.CreateTestTransaction(t, db, &models.Transaction{
			UserID:          user.ID,
			PortfolioID:     portfolio.ID,
			AssetID:         &asset.ID,
			Type:            models.TransactionTypeBuy,
			Amount:          5000,
			TransactionDate: now,
		})

		companion, err := linker.FindCompanion(db, buy)
		testutil.AssertNoError(t, err)
		if companion == nil || companion.ID != deposit.ID {
			t.Fatalf("expected companion %s, got %+v", deposit.ID, companion)
		}
	})

	t.Run("ignores deposits outside the date window", func(t *testing.T) {
		asset := testutil.CreateTestAsset(t, db, portfolio.ID, models.AssetClassFixedDeposit)
		testutil.CreateTestTransaction(t, db, &models.Transaction{
			UserID:          user.ID,
			PortfolioID:     portfolio.ID,
			Type:            models.TransactionTypeDeposit,
			Amount:          5000,
			TransactionDate: now.Add(-72 * time.Hour),
			Notes:           "transfer into " + asset.Symbol,
		})
		buy := testutil.CreateTestTransaction(t, db, &models.Transaction{
			UserID:          user.ID,
			PortfolioID:     portfolio.ID,
			AssetID:         &asset.ID,
			Type:            models.TransactionTypeBuy,
			Amount:          5000,
			TransactionDate: now,
		})

		companion, err := linker.FindCompanion(db, buy)
		testutil.AssertNoError(t, err)
		if companion != nil {
			t.Fatalf("expected no companion, got %s", companion.ID)
		}
	})

	t.Run("ignores deposits with mismatched amounts", func(t *testing.T) {
		asset := testutil.CreateTestAsset(t, db, portfolio.ID, models.AssetClassFixedDeposit)
		testutil.CreateTestTransaction(t, db, &models.Transaction{
			UserID:          user.ID,
			PortfolioID:     portfolio.ID,
			Type:            models.TransactionTypeDeposit,
			Amount:          4000,
			TransactionDate: now,
			Notes:           "transfer into " + asset.Symbol,
		})
		buy := testutil.CreateTestTransaction(t, db, &models.Transaction{
			UserID:          user.ID,
			PortfolioID:     portfolio.ID,
			AssetID:         &asset.ID,
			Type:            models.TransactionTypeBuy,
			Amount:          5000,
			TransactionDate: now,
		})

		companion, err := linker.FindCompanion(db, buy)
		testutil.AssertNoError(t, err)
		if companion != nil {
			t.Fatalf("expected no companion, got %s", companion.ID)
		}
	})

	t.Run("never fires for non-deposit assets", func(t *testing.T) {
		asset := testutil.CreateTestAsset(t, db, portfolio.ID, models.AssetClassStock)
		testutil.CreateTestTransaction(t, db, &models.Transaction{
			UserID:          user.ID,
			PortfolioID:     portfolio.ID,
			Type:            models.TransactionTypeDeposit,
			Amount:          5000,
			TransactionDate: now,
			Notes:           "transfer into " + asset.Symbol,
		})
		buy := testutil.CreateTestTransaction(t, db, &models.Transaction{
			UserID:          user.ID,
			PortfolioID:     portfolio.ID,
			AssetID:         &asset.ID,
			Type:            models.TransactionTypeBuy,
			Amount:          5000,
			TransactionDate: now,
		})

		companion, err := linker.FindCompanion(db, buy)
		testutil.AssertNoError(t, err)
		if companion != nil {
			t.Fatalf("expected no companion, got %s", companion.ID)
		}
	})
}

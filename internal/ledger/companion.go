package ledger

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "folio/internal/errors"
	"folio/internal/models"
)

// LinkTokenPrefix marks a companion reference embedded in a transaction's
// free-text notes. Early schema generations had no explicit link column and
// wrote "txlink:<uuid>" into the notes at creation time instead.
const LinkTokenPrefix = "txlink:"

var linkTokenPattern = regexp.MustCompile(LinkTokenPrefix + `([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})`)

// LinkToken renders the note token for a transaction ID, used when writing
// records that must stay readable by legacy clients.
func LinkToken(transactionID string) string {
	return LinkTokenPrefix + transactionID
}

// companionAmountTolerance bounds the absolute-amount comparison in the
// heuristic matcher.
const companionAmountTolerance = 0.01

// CompanionLinker resolves the paired transaction that represents the cash
// side of a combined user action. Resolution is tiered: the explicit link
// column first, then the legacy note token, then an amount/date/text
// heuristic for fixed-deposit transfers. Both legacy tiers backfill the
// explicit link so the text paths never run again for the same record.
type CompanionLinker struct {
	dateWindow time.Duration
}

// NewCompanionLinker creates a linker with the given date window for the
// heuristic matcher. A non-positive window defaults to one day.
func NewCompanionLinker(dateWindow time.Duration) *CompanionLinker {
	if dateWindow <= 0 {
		dateWindow = 24 * time.Hour
	}
	return &CompanionLinker{dateWindow: dateWindow}
}

// FindCompanion returns the companion for t, or nil when none resolves.
// A missing companion is the expected case for standalone transactions,
// not an error.
func (cl *CompanionLinker) FindCompanion(tx *gorm.DB, t *models.Transaction) (*models.Transaction, error) {
	// Tier 1: explicit link, in either direction.
	if t.LinkedTransactionID != nil && *t.LinkedTransactionID != "" {
		companion, err := loadTransaction(tx, *t.LinkedTransactionID)
		if err != nil {
			return nil, err
		}
		if companion != nil {
			return companion, nil
		}
		// Stale link to a deleted record; fall through to the legacy tiers.
	}
	var reverse models.Transaction
	err := tx.Where("linked_transaction_id = ?", t.ID).First(&reverse).Error
	if err == nil {
		return &reverse, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Tier 2: identifier token embedded in the notes at creation time.
	if m := linkTokenPattern.FindStringSubmatch(t.Notes); m != nil {
		companion, err := loadTransaction(tx, m[1])
		if err != nil {
			return nil, err
		}
		if companion != nil {
			if err := cl.backfillLink(tx, t, companion); err != nil {
				return nil, err
			}
			return companion, nil
		}
	}

	// Tier 3: fixed-deposit transfer heuristic.
	return cl.matchDepositHeuristic(tx, t)
}

// matchDepositHeuristic recovers the lost cash leg of a fixed-deposit
// transfer: a Deposit in the same portfolio, close in date, with an
// approximately equal absolute amount and a note mentioning the asset.
func (cl *CompanionLinker) matchDepositHeuristic(tx *gorm.DB, t *models.Transaction) (*models.Transaction, error) {
	if t.AssetID == nil {
		return nil, nil
	}
	var asset models.Asset
	if err := tx.First(&asset, "id = ?", *t.AssetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if asset.Class != models.AssetClassFixedDeposit {
		return nil, nil
	}

	var candidates []models.Transaction
	err := tx.Where("portfolio_id = ? AND type = ? AND id <> ?",
		t.PortfolioID, models.TransactionTypeDeposit, t.ID).
		Where("linked_transaction_id IS NULL").
		Where("transaction_date BETWEEN ? AND ?",
			t.TransactionDate.Add(-cl.dateWindow), t.TransactionDate.Add(cl.dateWindow)).
		Find(&candidates).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range candidates {
		c := &candidates[i]
		if math.Abs(math.Abs(c.Amount)-math.Abs(t.Amount)) > companionAmountTolerance {
			continue
		}
		note := strings.ToLower(c.Notes)
		if !strings.Contains(note, strings.ToLower(asset.Symbol)) &&
			!strings.Contains(note, strings.ToLower(asset.Name)) {
			continue
		}
		if err := cl.backfillLink(tx, t, c); err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, nil
}

// backfillLink persists the explicit link on both sides so future lookups
// resolve in one read.
func (cl *CompanionLinker) backfillLink(tx *gorm.DB, t, companion *models.Transaction) error {
	if err := tx.Model(&models.Transaction{}).Where("id = ?", t.ID).
		Update("linked_transaction_id", companion.ID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := tx.Model(&models.Transaction{}).Where("id = ?", companion.ID).
		Update("linked_transaction_id", t.ID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	t.LinkedTransactionID = &companion.ID
	companion.LinkedTransactionID = &t.ID
	return nil
}

// loadTransaction returns the transaction or nil when it no longer exists.
func loadTransaction(tx *gorm.DB, id string) (*models.Transaction, error) {
	var t models.Transaction
	err := tx.First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &t, nil
}

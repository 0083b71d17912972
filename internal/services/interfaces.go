package services

import (
	"time"

	"folio/internal/ledger"
	"folio/internal/models"
	"folio/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// PortfolioServicer defines the contract for portfolio-related business logic.
type PortfolioServicer interface {
	CreatePortfolio(userID, name, mainCurrency string, enforcesCashDiscipline bool) (*models.Portfolio, error)
	GetUserPortfolios(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Portfolio], error)
	GetPortfolioByID(userID, portfolioID string) (*models.Portfolio, error)
	UpdatePortfolio(userID, portfolioID, name string, enforcesCashDiscipline *bool) (*models.Portfolio, error)
	DeletePortfolio(userID, portfolioID string) error
	GetHoldings(userID, portfolioID string) ([]models.Holding, error)
	GetCashBalances(userID, portfolioID string) ([]models.CashBalance, error)
	RecomputeTotals(userID, portfolioID string) (*models.Portfolio, error)
}

// InstitutionServicer defines the contract for institution-related business logic.
type InstitutionServicer interface {
	CreateInstitution(userID, name string, kind models.InstitutionKind) (*models.Institution, error)
	GetUserInstitutions(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Institution], error)
	GetInstitutionByID(userID, institutionID string) (*models.Institution, error)
	UpdateInstitution(userID, institutionID, name string, kind *models.InstitutionKind) (*models.Institution, error)
	DeleteInstitution(userID, institutionID string) error
}

// InsuranceDetailInput holds optional policy data supplied when creating an
// insurance asset.
type InsuranceDetailInput struct {
	PolicyNumber   string
	Insurer        string
	SurrenderValue float64
	MaturityDate   *time.Time
	Beneficiaries  []BeneficiaryInput
}

// BeneficiaryInput names one beneficiary on a policy.
type BeneficiaryInput struct {
	Name         string
	SharePercent float64
}

// AssetServicer defines the contract for asset-related business logic.
type AssetServicer interface {
	CreateAsset(userID, portfolioID, symbol, name string, class models.AssetClass, currency string, insurance *InsuranceDetailInput) (*models.Asset, error)
	GetPortfolioAssets(userID, portfolioID string, page pagination.PageRequest) (*pagination.PageResponse[models.Asset], error)
	GetAssetByID(userID, assetID string) (*models.Asset, error)
	UpdateAsset(userID, assetID, symbol, name string) (*models.Asset, error)
	UpdateSurrenderValue(userID, assetID string, surrenderValue float64) (*models.InsuranceDetail, error)
}

// TransactionInput carries the user-editable fields of a ledger transaction.
type TransactionInput struct {
	PortfolioID          string
	InstitutionID        *string
	AssetID              *string
	Type                 models.TransactionType
	Amount               float64
	Quantity             float64
	Price                float64
	Fees                 float64
	Tax                  float64
	Currency             string
	TransactionDate      time.Time
	Notes                string
	AccruedInterest      float64
	InstitutionPenalty   float64
	LinkedTransactionID  *string
	ParentDepositAssetID *string

	// PaymentDeducted controls whether an insurance premium moves tracked
	// cash. Ignored for other types, where the portfolio setting decides.
	PaymentDeducted bool
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate      *time.Time
	ToDate        *time.Time
	Type          *models.TransactionType
	AssetID       *string
	InstitutionID *string
	MinAmount     *float64
	MaxAmount     *float64
}

// TransactionServicer defines the contract for transaction-related business
// logic. Recording, updating, and deleting all route through the ledger
// engine so derived state stays consistent with the event log.
type TransactionServicer interface {
	RecordTransaction(userID string, input TransactionInput) (*models.Transaction, ledger.Outcome, error)
	RecordDepositTransfer(userID string, input TransactionInput) (*models.Transaction, ledger.Outcome, error)
	GetPortfolioTransactions(userID, portfolioID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, input TransactionInput) (*models.Transaction, ledger.Outcome, error)
	DeleteTransaction(userID, transactionID string) error
}

// MarketDataServicer defines the contract for exchange rates and asset
// prices. Snapshot assembly is cached; writes invalidate the cache.
type MarketDataServicer interface {
	UpsertExchangeRate(fromCurrency, toCurrency string, rate float64) (*models.ExchangeRate, error)
	ListExchangeRates() ([]models.ExchangeRate, error)
	RecordAssetPrice(userID, assetID string, price float64, recordedAt time.Time) (*models.AssetPrice, error)
	GetSnapshot() (ledger.Snapshot, error)
}

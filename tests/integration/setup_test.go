package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"folio/internal/handlers"
	"folio/internal/ledger"
	"folio/internal/logger"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/services"
	"folio/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Portfolio{},
		&models.Institution{},
		&models.Asset{},
		&models.Transaction{},
		&models.Holding{},
		&models.CashBalance{},
		&models.InsuranceDetail{},
		&models.Beneficiary{},
		&models.ExchangeRate{},
		&models.AssetPrice{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Ledger engine and services
	engine := ledger.NewEngine(db, 24*time.Hour)
	userService := services.NewUserService(db)
	marketDataService := services.NewMarketDataService(db, 15*time.Minute)
	portfolioService := services.NewPortfolioService(db, engine, marketDataService)
	institutionService := services.NewInstitutionService(db)
	assetService := services.NewAssetService(db)
	transactionService := services.NewTransactionService(db, engine, marketDataService)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
	institutionHandler := handlers.NewInstitutionHandler(institutionService)
	assetHandler := handlers.NewAssetHandler(assetService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	marketDataHandler := handlers.NewMarketDataHandler(marketDataService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	portfolios := protected.Group("/portfolios")
	portfolios.POST("", portfolioHandler.CreatePortfolio)
	portfolios.GET("", portfolioHandler.GetPortfolios)
	portfolios.GET("/:id", portfolioHandler.GetPortfolio)
	portfolios.PUT("/:id", portfolioHandler.UpdatePortfolio)
	portfolios.DELETE("/:id", portfolioHandler.DeletePortfolio)
	portfolios.GET("/:id/holdings", portfolioHandler.GetHoldings)
	portfolios.GET("/:id/cash-balances", portfolioHandler.GetCashBalances)
	portfolios.POST("/:id/recompute", portfolioHandler.RecomputeTotals)
	portfolios.POST("/:id/assets", assetHandler.CreateAsset)
	portfolios.GET("/:id/assets", assetHandler.GetAssets)
	portfolios.POST("/:id/transactions", transactionHandler.RecordTransaction)
	portfolios.POST("/:id/deposit-transfers", transactionHandler.RecordDepositTransfer)
	portfolios.GET("/:id/transactions", transactionHandler.GetTransactions)

	institutions := protected.Group("/institutions")
	institutions.POST("", institutionHandler.CreateInstitution)
	institutions.GET("", institutionHandler.GetInstitutions)
	institutions.GET("/:id", institutionHandler.GetInstitution)
	institutions.PUT("/:id", institutionHandler.UpdateInstitution)
	institutions.DELETE("/:id", institutionHandler.DeleteInstitution)

	assets := protected.Group("/assets")
	assets.GET("/:id", assetHandler.GetAsset)
	assets.PUT("/:id", assetHandler.UpdateAsset)
	assets.PUT("/:id/surrender-value", assetHandler.UpdateSurrenderValue)
	assets.POST("/:id/prices", marketDataHandler.RecordAssetPrice)

	transactions := protected.Group("/transactions")
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	marketData := protected.Group("/market-data")
	marketData.PUT("/exchange-rates", marketDataHandler.UpsertExchangeRate)
	marketData.GET("/exchange-rates", marketDataHandler.GetExchangeRates)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// createPortfolio creates a portfolio and returns its ID.
func (app *testApp) createPortfolio(t *testing.T, token, name, mainCurrency string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"main_currency":%q}`, name, mainCurrency)
	rec := app.request("POST", "/api/v1/portfolios", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create portfolio failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["id"].(string)
}

// createInstitution creates an institution and returns its ID.
func (app *testApp) createInstitution(t *testing.T, token, name, kind string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"kind":%q}`, name, kind)
	rec := app.request("POST", "/api/v1/institutions", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create institution failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["id"].(string)
}

// createAsset creates an asset in a portfolio and returns its ID.
func (app *testApp) createAsset(t *testing.T, token, portfolioID, symbol, name, class string) string {
	t.Helper()
	body := fmt.Sprintf(`{"symbol":%q,"name":%q,"class":%q,"currency":"USD"}`, symbol, name, class)
	rec := app.request("POST", fmt.Sprintf("/api/v1/portfolios/%s/assets", portfolioID), body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create asset failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["id"].(string)
}

// recordTransaction posts a transaction to a portfolio and returns the
// created transaction and outcome objects.
func (app *testApp) recordTransaction(t *testing.T, token, portfolioID, body string) (map[string]interface{}, map[string]interface{}) {
	t.Helper()
	rec := app.request("POST", fmt.Sprintf("/api/v1/portfolios/%s/transactions", portfolioID), body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("record transaction failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["transaction"].(map[string]interface{}), result["outcome"].(map[string]interface{})
}

// cashBalances fetches a portfolio's cash balances keyed by currency.
func (app *testApp) cashBalances(t *testing.T, token, portfolioID string) map[string]float64 {
	t.Helper()
	rec := app.request("GET", fmt.Sprintf("/api/v1/portfolios/%s/cash-balances", portfolioID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get cash balances failed: %d %s", rec.Code, rec.Body.String())
	}
	balances := map[string]float64{}
	list, _ := parseJSON(t, rec)["cash_balances"].([]interface{})
	for _, raw := range list {
		b := raw.(map[string]interface{})
		balances[b["currency"].(string)] += b["amount"].(float64)
	}
	return balances
}

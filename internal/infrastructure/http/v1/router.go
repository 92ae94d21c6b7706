// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"tillbook/internal/domain/audit"
	"tillbook/internal/domain/auth"
	"tillbook/internal/domain/catalogs/customer"
	"tillbook/internal/domain/catalogs/product"
	"tillbook/internal/domain/documents/transaction"
	"tillbook/internal/domain/ledger"
	"tillbook/internal/domain/posting"
	"tillbook/internal/domain/registers/returns"
	"tillbook/internal/domain/reports"
	"tillbook/internal/domain/settings"
	"tillbook/internal/infrastructure/http/v1/handlers"
	"tillbook/internal/infrastructure/http/v1/middleware"
	"tillbook/internal/infrastructure/storage/postgres"
	"tillbook/internal/infrastructure/storage/postgres/catalog_repo"
	"tillbook/internal/infrastructure/storage/postgres/document_repo"
	"tillbook/internal/infrastructure/storage/postgres/register_repo"
	"tillbook/internal/infrastructure/storage/postgres/report_repo"
	"tillbook/pkg/logger"
	"tillbook/pkg/numerator"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the store database connection pool
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// SettingsProvider serves store settings to the domain services
	SettingsProvider settings.Provider

	// Auditor records document changes. Defaults to the store-backed
	// recorder created from the pool.
	Auditor audit.Recorder

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool

	// IdempotencyTTL is how long completed keys replay. Zero means 10 minutes.
	IdempotencyTTL time.Duration
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Shared infrastructure
	txManager := postgres.NewTxManager(cfg.Pool)
	num := numerator.New(cfg.Pool.Unwrap())

	auditor := cfg.Auditor
	if auditor == nil {
		auditService, err := postgres.NewAuditService(txManager)
		if err != nil {
			return nil, err
		}
		auditor = auditService
	}

	settingsProvider := cfg.SettingsProvider
	if settingsProvider == nil {
		settingsProvider = &settings.StaticProvider{Settings: settings.Default()}
	}
	policy := settings.NewStorePolicy(settingsProvider)

	// API v1
	apiV1 := router.Group("/api/v1")
	{
		registerAuthRoutes(apiV1, cfg)

		protected := apiV1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		if cfg.IdempotencyEnabled {
			ttl := cfg.IdempotencyTTL
			if ttl <= 0 {
				ttl = 10 * time.Minute
			}
			store := postgres.NewIdempotencyStore(cfg.Pool, txManager, ttl)
			protected.Use(middleware.Idempotency(store))
		}

		deps := routeDeps{
			txManager:        txManager,
			numerator:        num,
			auditor:          auditor,
			settingsProvider: settingsProvider,
			policy:           policy,
		}

		registerLedgerRoutes(protected, deps)
		registerSettingsRoutes(protected, deps)
	}

	return router, nil
}

// routeDeps carries the shared single-store dependencies into route wiring.
type routeDeps struct {
	txManager        *postgres.TxManager
	numerator        *numerator.Service
	auditor          audit.Recorder
	settingsProvider settings.Provider
	policy           settings.PostingPolicy
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required)
	publicAuth := rg.Group("/auth")

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerLedgerRoutes wires the catalogs, the transaction ledger and the
// reports. Repos and services are built once; the TxManager routes their
// queries through the ambient transaction when one is open.
func registerLedgerRoutes(rg *gin.RouterGroup, deps routeDeps) {
	baseHandler := handlers.NewBaseHandler()

	// Repositories
	customerRepo := catalog_repo.NewCustomerRepo(deps.txManager)
	productRepo := catalog_repo.NewProductRepo(deps.txManager)
	transactionRepo := document_repo.NewTransactionRepo(deps.txManager)
	returnsRepo := register_repo.NewReturnsRepo(deps.txManager)
	reportRepo := report_repo.NewReportRepo(deps.txManager)

	// Domain services
	returnsRegister := returns.NewService(returnsRepo)
	postingEngine := posting.NewEngine(deps.txManager, returnsRegister, deps.policy)

	customerService := customer.NewService(customerRepo, deps.txManager, deps.numerator, deps.settingsProvider)
	productService := product.NewService(productRepo, deps.txManager, deps.numerator)

	transactionService := transaction.NewService(
		transactionRepo,
		customerRepo,
		deps.settingsProvider,
		deps.policy,
		postingEngine,
		deps.numerator,
		deps.txManager,
		deps.auditor,
	)

	ledgerService := ledger.NewService(
		transactionRepo,
		customerRepo,
		returnsRegister,
		deps.policy,
		postingEngine,
		deps.numerator,
		deps.txManager,
		deps.auditor,
	)

	reportService := reports.NewService(reportRepo)

	// --- CUSTOMERS ---
	{
		handler := handlers.NewCustomerHandler(baseHandler, customerService, ledgerService)
		group := rg.Group("/customers")
		RegisterCatalogRoutes(group, handler)
		group.GET("/by-phone/:phone", handler.FindByPhone)
		group.GET("/:id/ledger", handler.GetLedger)
		group.GET("/:id/debt-limit", handler.GetDebtLimit)
	}

	// --- PRODUCTS ---
	{
		handler := handlers.NewProductHandler(baseHandler, productService)
		group := rg.Group("/products")
		RegisterCatalogRoutes(group, handler)
		group.GET("/by-stock-code/:code", handler.FindByStockCode)
		group.GET("/by-barcode/:barcode", handler.FindByBarcode)
	}

	// --- TRANSACTIONS ---
	{
		handler := handlers.NewTransactionHandler(baseHandler, transactionService, ledgerService)
		group := rg.Group("/transactions")
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/by-code/:code", handler.GetByCode)
		group.GET("/:id", handler.Get)
		group.GET("/:id/returnable", handler.GetReturnable)
		group.POST("/:id/returns", handler.SubmitReturn)
		// The only destructive edits on the ledger, both supervisor-gated.
		group.DELETE("/:id", middleware.RequireSupervisor(), handler.DeletePayment)
		group.PUT("/:id/lines", middleware.RequireSupervisor(), handler.UpdateSaleLines)
	}

	// --- REPORTS ---
	{
		handler := handlers.NewReportsHandler(baseHandler, reportService)
		handler.RegisterRoutes(rg.Group("/reports"))
	}
}

// registerSettingsRoutes registers the supervisor-only settings endpoints.
func registerSettingsRoutes(rg *gin.RouterGroup, deps routeDeps) {
	baseHandler := handlers.NewBaseHandler()
	repo := postgres.NewSettingsRepo(deps.txManager)
	handler := handlers.NewSettingsHandler(baseHandler, repo, deps.settingsProvider)

	group := rg.Group("/settings")
	group.Use(middleware.RequireSupervisor())
	group.GET("", handler.Get)
	group.PUT("", handler.Update)
}

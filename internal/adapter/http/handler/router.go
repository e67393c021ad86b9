package handler

import (
	"pocket-ledger/internal/adapter/http/middleware"
	"pocket-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	DirectorySvc   ports.DirectoryService
	UserRepo       ports.UserRepository
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// API v1 routes
	v1 := r.Group("/api/v1")

	directoryHandler := NewDirectoryHandler(deps.DirectorySvc)

	// --- Public routes (no user scope) ---
	v1.POST("/users", directoryHandler.CreateUser)

	// --- User-scoped routes ---
	scoped := v1.Group("", middleware.UserScope(deps.UserRepo, deps.Logger))

	accounts := scoped.Group("/accounts")
	{
		accounts.POST("", directoryHandler.CreateAccount)
		accounts.GET("", directoryHandler.ListAccounts)
		accounts.DELETE("/:name", directoryHandler.DeleteAccount)
	}

	partners := scoped.Group("/partners")
	{
		partners.POST("", directoryHandler.CreatePartner)
		partners.GET("", directoryHandler.ListPartners)
		partners.DELETE("/:name", directoryHandler.DeletePartner)
	}

	transactionHandler := NewTransactionHandler(deps.LedgerSvc)
	transactions := scoped.Group("/transactions")
	{
		transactions.POST("", transactionHandler.Create)
		transactions.POST("/:id/reverse", transactionHandler.Reverse)
		transactions.GET("", transactionHandler.List)
	}

	ledgerHandler := NewLedgerHandler(deps.LedgerSvc)
	scoped.GET("/ledger", ledgerHandler.GetLedger)
	scoped.GET("/balances", ledgerHandler.GetBalances)

	return r
}

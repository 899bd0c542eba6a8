package router

import (
	"time"

	"github.com/AmericableSA/Sistema-sub001/internal/config"
	"github.com/AmericableSA/Sistema-sub001/internal/handler"
	"github.com/AmericableSA/Sistema-sub001/internal/infra"
	"github.com/AmericableSA/Sistema-sub001/internal/middleware"
	"github.com/AmericableSA/Sistema-sub001/internal/model"
	"github.com/AmericableSA/Sistema-sub001/internal/repository"
	"github.com/AmericableSA/Sistema-sub001/internal/service"
	"github.com/AmericableSA/Sistema-sub001/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailerCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	mailer := infra.NewMailer(cfg)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	cashRepo := repository.NewCashRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewServiceOrderRepository(db)
	logRepo := repository.NewClientLogRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	clientSvc := service.NewClientService(clientRepo, logRepo, cfg)
	cashSvc := service.NewCashService(cashRepo, txRepo, cfg)
	productSvc := service.NewProductService(productRepo)
	orderSvc := service.NewServiceOrderService(orderRepo, clientRepo, logRepo)
	reportSvc := service.NewReportService(txRepo, clientRepo, cfg)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb, mailer, mailerCB)

	txSvc := service.NewTransactionService(txRepo, cashRepo, clientRepo, productRepo, orderRepo, logRepo, cfg, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	healthH := handler.NewHealthHandler(db, rdb, mailerCB)
	authH := handler.NewAuthHandler(authSvc)
	clientsH := handler.NewClientHandler(clientSvc)
	cashH := handler.NewCashHandler(cashSvc)
	txH := handler.NewTransactionHandler(txSvc)
	productsH := handler.NewProductHandler(productSvc)
	ordersH := handler.NewServiceOrderHandler(orderSvc)
	reportsH := handler.NewReportHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", healthH.Check)

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret, cfg.DefaultActingUserID)
	anyStaff := middleware.RequireRole(model.RoleCashier, model.RoleSupervisor, model.RoleAdmin)
	backOffice := middleware.RequireRole(model.RoleSupervisor, model.RoleAdmin)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		// Clients — reads for everyone at the counter, writes for back office
		v1.GET("/clients", anyStaff, clientsH.List)
		v1.GET("/clients/:id", anyStaff, clientsH.Get)
		v1.GET("/clients/:id/debt", anyStaff, clientsH.Debt)
		v1.GET("/clients/:id/history", anyStaff, clientsH.History)
		clients := v1.Group("/clients", backOffice)
		{
			clients.POST("", clientsH.Create)
			clients.PUT("/:id", clientsH.Update)
			clients.DELETE("/:id", clientsH.Delete)
		}

		cash := v1.Group("/cash", anyStaff)
		{
			cash.GET("/status", cashH.Status)
			cash.POST("/open", cashH.Open)
			cash.POST("/movement", cashH.AddMovement)
			cash.POST("/close", cashH.Close)
			cash.GET("/:id/report", cashH.Report)
		}
		v1.GET("/cash/history", backOffice, cashH.History)

		v1.POST("/transactions", anyStaff, txH.Create)
		v1.GET("/transactions", anyStaff, txH.List)
		v1.GET("/transactions/:id", anyStaff, txH.Get)
		v1.POST("/transactions/:id/cancel", anyStaff, txH.Cancel)

		// Products — reads for everyone, stock adjust for back office,
		// catalog writes admin only
		v1.GET("/products", anyStaff, productsH.List)
		v1.GET("/products/:id", anyStaff, productsH.Get)
		v1.GET("/products/:id/moves", backOffice, productsH.Moves)
		v1.POST("/products/:id/stock", backOffice, productsH.AdjustStock)
		products := v1.Group("/products", adminOnly)
		{
			products.POST("", productsH.Create)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Delete)
		}

		orders := v1.Group("/orders", anyStaff)
		{
			orders.GET("", ordersH.List)
			orders.GET("/:id", ordersH.Get)
			orders.POST("", ordersH.Create)
		}
		v1.POST("/orders/:id/assign", backOffice, ordersH.Assign)
		v1.POST("/orders/:id/complete", backOffice, ordersH.Complete)
		v1.DELETE("/orders/:id", backOffice, ordersH.Cancel)

		reports := v1.Group("/reports", backOffice)
		{
			reports.GET("/daily", reportsH.DailySummary)
			reports.GET("/debtors", reportsH.TopDebtors)
		}

		users := v1.Group("/users", adminOnly)
		{
			users.POST("", authH.CreateUser)
			users.GET("", authH.ListUsers)
			users.PUT("/:id", authH.UpdateUser)
			users.DELETE("/:id", authH.DeactivateUser)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

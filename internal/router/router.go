package router

import (
	"time"

	"stockroom/internal/config"
	"stockroom/internal/handler"
	"stockroom/internal/middleware"
	"stockroom/internal/model"
	"stockroom/internal/repository"
	"stockroom/internal/service"
	"stockroom/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
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

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, movementRepo, dispatcher)
	supplierSvc := service.NewSupplierService(supplierRepo)
	orderSvc := service.NewOrderService(orderRepo, productRepo, supplierRepo, movementRepo, dispatcher)
	reportSvc := service.NewReportService(productRepo, supplierRepo, orderRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	suppliersH := handler.NewSuppliersHandler(supplierSvc)
	ordersH := handler.NewOrdersHandler(orderSvc, orderRepo, cfg)
	reportsH := handler.NewReportsHandler(reportSvc)
	exportH := handler.NewExportHandler(productRepo, orderRepo)
	lookupH := handler.NewLookupHandler(productSvc, orderSvc, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleClerk)
	managerUp := middleware.RequireRole(model.RoleAdmin, model.RoleManager)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		// QR payload resolution — every role scans
		v1.GET("/lookup/:payload", anyRole, lookupH.Resolve)

		// Products — clerks read only; stock edits need manager
		v1.GET("/products", anyRole, productsH.List)
		v1.GET("/products/sku/:sku", anyRole, productsH.GetBySKU)
		v1.GET("/products/:id", anyRole, productsH.GetByID)
		v1.GET("/products/:id/movements", anyRole, productsH.ListMovements)
		v1.PATCH("/products/:id/stock", managerUp, productsH.AdjustStock)
		prods := v1.Group("/products", managerUp)
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
		}

		// Suppliers
		v1.GET("/suppliers", anyRole, suppliersH.List)
		v1.GET("/suppliers/:id", anyRole, suppliersH.GetByID)
		sup := v1.Group("/suppliers", managerUp)
		{
			sup.POST("", suppliersH.Create)
			sup.PUT("/:id", suppliersH.Update)
			sup.DELETE("/:id", suppliersH.Deactivate)
		}

		// Purchase orders
		v1.GET("/orders", anyRole, ordersH.List)
		v1.GET("/orders/number/:number", anyRole, ordersH.GetByNumber)
		v1.GET("/orders/:id", anyRole, ordersH.GetByID)
		v1.GET("/orders/:id/pdf", anyRole, ordersH.DownloadPDF)
		v1.POST("/orders/:id/receive", managerUp, ordersH.Receive)
		v1.POST("/orders", managerUp, ordersH.Create)
		v1.POST("/orders/:id/cancel", managerUp, ordersH.Cancel)
		v1.DELETE("/orders/:id", adminOnly, ordersH.Delete)

		// Reports and exports
		reports := v1.Group("/reports", managerUp)
		{
			reports.GET("/summary", reportsH.Summary)
			reports.GET("/low-stock", reportsH.LowStock)
			reports.GET("/inventory-value", reportsH.InventoryValue)
			reports.GET("/monthly-purchases", reportsH.MonthlyPurchases)
		}
		exports := v1.Group("/exports", managerUp)
		{
			exports.GET("/products", exportH.Products)
			exports.GET("/orders", exportH.Orders)
		}

		// Users — admin only
		users := v1.Group("/users", adminOnly)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.DELETE("/:id", usersH.Deactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

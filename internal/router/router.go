package router

import (
	"time"

	"github.com/Gilderlan0101/qodo-pdv/internal/config"
	"github.com/Gilderlan0101/qodo-pdv/internal/handler"
	"github.com/Gilderlan0101/qodo-pdv/internal/middleware"
	"github.com/Gilderlan0101/qodo-pdv/internal/repository"
	"github.com/Gilderlan0101/qodo-pdv/internal/service"
	"github.com/Gilderlan0101/qodo-pdv/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
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
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	productRepo := repository.NewProductRepository(db)
	registerRepo := repository.NewRegisterRepository(db)
	cartRepo := repository.NewCartRepository(db)
	saleRepo := repository.NewSaleRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	dispatcher := worker.NewDispatcher(rdb)

	registerSvc := service.NewRegisterService(registerRepo)
	productSvc := service.NewProductService(productRepo)
	cartSvc := service.NewCartService(cartRepo, productRepo, registerSvc)
	reportSvc := service.NewReportService(saleRepo, productRepo, rdb)
	checkoutSvc := service.NewCheckoutService(saleRepo, cartRepo, productRepo, registerSvc, registerRepo, cartSvc, reportSvc, dispatcher)
	saleSvc := service.NewSaleService(saleRepo, productRepo, registerRepo, reportSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	registerH := handler.NewRegisterHandler(registerSvc)
	productH := handler.NewProductHandler(productSvc)
	cartH := handler.NewCartHandler(cartSvc)
	checkoutH := handler.NewCheckoutHandler(checkoutSvc)
	saleH := handler.NewSaleHandler(saleSvc)
	reportH := handler.NewReportHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		operator := middleware.RequireRole("operator", "supervisor", "admin")
		supervisor := middleware.RequireRole("supervisor", "admin")
		admin := middleware.RequireRole("admin")

		register := v1.Group("/register")
		{
			register.POST("/open", operator, registerH.Open)
			register.GET("/current", operator, registerH.Current)
			register.GET("/:id", operator, registerH.Report)
			register.POST("/:id/movements", operator, registerH.PostMovement)
			register.POST("/:id/close", operator, registerH.Close)
		}

		cart := v1.Group("/cart")
		{
			cart.GET("", operator, cartH.List)
			cart.GET("/summary", operator, cartH.Summary)
			cart.POST("/lines", operator, cartH.AddLine)
			cart.PUT("/lines", operator, cartH.UpdateLine)
			cart.DELETE("/lines/:ref", operator, cartH.RemoveLine)
			cart.DELETE("", operator, cartH.Clear)
		}

		v1.POST("/checkout", operator, checkoutH.Checkout)

		sales := v1.Group("/sales")
		{
			sales.GET("/:id", operator, saleH.Get)
			sales.PATCH("/:id", supervisor, saleH.Amend)
			sales.DELETE("/:id", supervisor, saleH.Void)
		}

		products := v1.Group("/products")
		{
			products.GET("/:ref", operator, productH.Get)
			products.POST("", admin, productH.Create)
			products.POST("/stock/entry", supervisor, productH.StockEntry)
			products.POST("/stock/exit", supervisor, productH.StockExit)
		}

		reports := v1.Group("/reports", supervisor)
		{
			reports.GET("/payment-methods", reportH.PaymentMethods)
			reports.GET("/low-stock", reportH.LowStock)
		}
	}

	return r
}

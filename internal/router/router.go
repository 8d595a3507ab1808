package router

import (
	"time"

	"shopapp/internal/config"
	"shopapp/internal/handler"
	"shopapp/internal/infra"
	"shopapp/internal/middleware"
	"shopapp/internal/repository"
	"shopapp/internal/search"
	"shopapp/internal/service"
	"shopapp/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB / Redis / search index.
// rdb may be nil: the shop cache and the index-sync queue are then disabled.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, index search.Index, searchCB *infra.CircuitBreaker) *gin.Engine {
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
	shopRepo := repository.NewShopRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	massIndexer := worker.NewMassIndexer(shopRepo, index, cfg.ReindexWorkers, cfg.ReindexBatchSize)
	syncQueue := worker.NewIndexSyncQueue(rdb)

	shopSvc := service.NewShopService(shopRepo, index, massIndexer, syncQueue, rdb, cfg.ShopCacheTTL)
	categorySvc := service.NewCategoryService(categoryRepo)
	productSvc := service.NewProductService(productRepo, categoryRepo, shopRepo, shopSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	shopsH := handler.NewShopsHandler(shopSvc)
	categoriesH := handler.NewCategoriesHandler(categorySvc)
	productsH := handler.NewProductsHandler(productSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb, index, searchCB))

	v1 := r.Group("/api/v1")
	{
		shops := v1.Group("/shops")
		{
			// static segments are matched before /:id
			shops.GET("/search", shopsH.Search)
			shops.GET("/reindex", shopsH.Reindex)
			shops.GET("", shopsH.List)
			shops.POST("", shopsH.Create)
			shops.PUT("", shopsH.Update)
			shops.GET("/:id", shopsH.GetByID)
			shops.DELETE("/:id", shopsH.Delete)
		}

		v1.GET("/categories", categoriesH.List)
		v1.POST("/categories", categoriesH.Create)

		v1.GET("/products", productsH.List)
		v1.POST("/products", productsH.Create)
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

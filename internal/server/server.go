package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/restock/internal/catalog"
	catalogdomain "github.com/smallbiznis/restock/internal/catalog/domain"
	"github.com/smallbiznis/restock/internal/config"
	"github.com/smallbiznis/restock/internal/observability"
	obslogger "github.com/smallbiznis/restock/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/restock/internal/observability/metrics"
	obstracing "github.com/smallbiznis/restock/internal/observability/tracing"
	"github.com/smallbiznis/restock/internal/product"
	productdomain "github.com/smallbiznis/restock/internal/product/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	catalog.Module,
	product.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ActorMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	db         *gorm.DB
	genID      *snowflake.Node
	productSvc productdomain.Service
	catalogSvc catalogdomain.Service
	obsMetrics *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	GenID      *snowflake.Node
	ProductSvc productdomain.Service
	CatalogSvc catalogdomain.Service
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		db:         p.DB,
		genID:      p.GenID,
		productSvc: p.ProductSvc,
		catalogSvc: p.CatalogSvc,
		obsMetrics: p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	products := api.Group("/products")
	products.GET("", s.ListProducts)
	products.POST("", s.CreateProduct)
	products.GET("/low-stock", s.ListLowStockProducts)
	products.GET("/search", s.SearchProducts)
	products.POST("/bulk/stock", s.BulkUpdateStock)
	products.POST("/bulk/prices", s.BulkUpdatePrices)
	products.POST("/bulk/status", s.BulkUpdateStatus)
	products.POST("/bulk/delete", s.BulkDeleteProducts)

	dropdowns := products.Group("/dropdowns")
	dropdowns.GET("/product-types", s.ListProductTypeOptions)
	dropdowns.GET("/brands", s.ListBrandOptions)
	dropdowns.GET("/models", s.ListModelOptions)
	dropdowns.GET("/colors", s.ListColorOptions)
	dropdowns.GET("/conditions", s.ListConditionOptions)

	products.GET("/:id", s.GetProductByID)
	products.PUT("/:id", s.UpdateProduct)
	products.DELETE("/:id", s.DeleteProduct)
	products.PATCH("/:id/stock", s.UpdateProductStock)
	products.POST("/:id/status", s.MarkProductStatus)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin/catalog")
	admin.GET("/:kind", s.ListCatalogEntries)
	admin.POST("/:kind", s.CreateCatalogEntry)
	admin.PATCH("/:kind/:id", s.UpdateCatalogEntry)
	admin.POST("/:kind/:id/archive", s.ArchiveCatalogEntry)
}

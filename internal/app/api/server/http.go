package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Caddilac1/DataHub/docs"
	"github.com/Caddilac1/DataHub/internal/app/api/handlers"
	mw "github.com/Caddilac1/DataHub/internal/app/api/middleware"
	"github.com/Caddilac1/DataHub/internal/app/service/audit"
	"github.com/Caddilac1/DataHub/internal/app/service/catalog"
	"github.com/Caddilac1/DataHub/internal/app/service/order"
	"github.com/Caddilac1/DataHub/internal/app/service/statistics"
	cfgpkg "github.com/Caddilac1/DataHub/pkg/config"
	metrics "github.com/Caddilac1/DataHub/pkg/metrics"
	"github.com/Caddilac1/DataHub/pkg/types"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Request tracing only; request logger & access log are attached per group
	r.Use(mw.TraceMiddleware())
	return r
}

func registerRoutes(
	r *gin.Engine,
	log *zap.SugaredLogger,
	cfg *cfgpkg.Config,
	db *gorm.DB,
	orderSvc *order.Service,
	catalogSvc *catalog.Service,
	auditSvc *audit.Service,
	statsSvc *statistics.Service,
) {
	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterCatalogRoutes(apiV1, catalogSvc)

	authed := apiV1.Group("/")
	authed.Use(mw.AuthMiddleware(cfg, db))
	handlers.RegisterPaymentRoutes(apiV1, authed, orderSvc, cfg)

	admin := apiV1.Group("/admin")
	admin.Use(mw.AuthMiddleware(cfg, db), mw.RequireRole(types.UserRoleAdmin))
	handlers.RegisterAdminRoutes(admin, orderSvc, catalogSvc, auditSvc, statsSvc)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)

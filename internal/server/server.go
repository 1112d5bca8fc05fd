package server

import (
	"context"
	"net/http"
	"time"

	"github.com/coptimize/openinventory/internal/config"
	discoverydomain "github.com/coptimize/openinventory/internal/discovery/domain"
	"github.com/coptimize/openinventory/internal/migration"
	"github.com/coptimize/openinventory/internal/prefs"
	productdomain "github.com/coptimize/openinventory/internal/product/domain"
	userdomain "github.com/coptimize/openinventory/internal/user/domain"
	"github.com/coptimize/openinventory/pkg/db"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	prefs        *prefs.Preferences
	mode         db.Mode
	migrator     *migration.Engine
	productSvc   productdomain.Service
	userSvc      userdomain.Service
	discoverySvc discoverydomain.Service
}

type Params struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	Prefs        *prefs.Preferences
	Mode         db.Mode
	Migrator     *migration.Engine
	ProductSvc   productdomain.Service
	UserSvc      userdomain.Service
	DiscoverySvc discoverydomain.Service
}

func NewServer(p Params) *Server {
	s := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("http"),
		prefs:        p.Prefs,
		mode:         p.Mode,
		migrator:     p.Migrator,
		productSvc:   p.ProductSvc,
		userSvc:      p.UserSvc,
		discoverySvc: p.DiscoverySvc,
	}

	s.registerProductRoutes()
	s.registerDiscoveryRoutes()
	s.registerMigrationRoutes()
	if s.mode == db.ModeMultiTenant {
		s.registerUserRoutes()
	}

	return s
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

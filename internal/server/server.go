package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/smallbiznis/livescan/internal/audit"
	auditdomain "github.com/smallbiznis/livescan/internal/audit/domain"
	"github.com/smallbiznis/livescan/internal/auth"
	authdomain "github.com/smallbiznis/livescan/internal/auth/domain"
	"github.com/smallbiznis/livescan/internal/catalog"
	catalogdomain "github.com/smallbiznis/livescan/internal/catalog/domain"
	"github.com/smallbiznis/livescan/internal/config"
	"github.com/smallbiznis/livescan/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/livescan/internal/dashboard/domain"
	"github.com/smallbiznis/livescan/internal/export"
	exportdomain "github.com/smallbiznis/livescan/internal/export/domain"
	"github.com/smallbiznis/livescan/internal/observability"
	obslogger "github.com/smallbiznis/livescan/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/livescan/internal/observability/metrics"
	obstracing "github.com/smallbiznis/livescan/internal/observability/tracing"
	"github.com/smallbiznis/livescan/internal/providers/email"
	"github.com/smallbiznis/livescan/internal/ratelimit"
	"github.com/smallbiznis/livescan/internal/servicerecord"
	recorddomain "github.com/smallbiznis/livescan/internal/servicerecord/domain"
	"github.com/smallbiznis/livescan/internal/storage"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	audit.Module,
	auth.Module,
	email.Module,
	catalog.Module,
	servicerecord.Module,
	export.Module,
	dashboard.Module,
	ratelimit.Module,
	storage.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, tracer *obstracing.Provider, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	if tracer.Enabled() {
		r.Use(obstracing.GinMiddleware(tracer))
	}
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, tracer *obstracing.Provider, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, tracer, httpMetrics)
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
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	genID         *snowflake.Node
	authSvc       authdomain.Service
	catalogSvc    catalogdomain.CatalogService
	recordSvc     recorddomain.RecordService
	exportSvc     exportdomain.ExportService
	dashboardSvc  dashboarddomain.Service
	auditSvc      auditdomain.Service
	authLimiter   *ratelimit.AuthLimiter
	loginFallback *rateLimiter
	resetFallback *rateLimiter
	store         storage.ObjectStore
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	GenID        *snowflake.Node
	AuthSvc      authdomain.Service
	CatalogSvc   catalogdomain.CatalogService
	RecordSvc    recorddomain.RecordService
	ExportSvc    exportdomain.ExportService
	DashboardSvc dashboarddomain.Service
	AuditSvc     auditdomain.Service
	AuthLimiter  *ratelimit.AuthLimiter `optional:"true"`
	Store        storage.ObjectStore
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		genID:        p.GenID,
		authSvc:      p.AuthSvc,
		catalogSvc:   p.CatalogSvc,
		recordSvc:    p.RecordSvc,
		exportSvc:    p.ExportSvc,
		dashboardSvc: p.DashboardSvc,
		auditSvc:     p.AuditSvc,
		authLimiter:  p.AuthLimiter,
		store:        p.Store,
	}

	if !s.authLimiter.Enabled() {
		s.loginFallback = newRateLimiter(10, time.Minute)
		s.resetFallback = newRateLimiter(3, 10*time.Minute)
	}

	s.registerAuthRoutes()
	s.registerAPIRoutes()
	s.registerFileRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	authGroup := s.engine.Group("/auth")

	authGroup.POST("/login", s.Login)
	authGroup.POST("/logout", s.Logout)
	authGroup.POST("/forgot-password", s.ForgotPassword)
	authGroup.POST("/reset-password", s.ResetPassword)
	authGroup.GET("/me", s.AuthRequired(), s.Me)
	authGroup.POST("/change-password", s.AuthRequired(), s.ChangePassword)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1", s.AuthRequired())

	api.GET("/dashboard", s.DashboardStats)

	api.GET("/organizations", s.ListOrganizations)
	api.GET("/organizations/:id", s.GetOrganization)
	api.GET("/services", s.ListServices)
	api.GET("/fees", s.ListFees)
	api.GET("/technicians", s.ListTechnicians)

	api.POST("/service-records", s.CreateServiceRecord)
	api.GET("/service-records", s.ListServiceRecords)
	api.GET("/service-records/:id", s.GetServiceRecord)
	api.PATCH("/service-records/:id", s.UpdateServiceRecord)

	admin := api.Group("", s.RequireAdmin())

	admin.POST("/organizations", s.CreateOrganization)
	admin.PATCH("/organizations/:id", s.UpdateOrganization)
	admin.POST("/services", s.CreateService)
	admin.PATCH("/services/:id", s.UpdateService)
	admin.POST("/fees", s.CreateFee)
	admin.PATCH("/fees/:id", s.UpdateFee)
	admin.POST("/technicians", s.CreateTechnician)
	admin.PATCH("/technicians/:id", s.UpdateTechnician)

	admin.GET("/users", s.ListUsers)
	admin.POST("/users", s.CreateUser)
	admin.PATCH("/users/:id", s.UpdateUser)

	admin.POST("/export/monthly", s.RunExport)
	admin.GET("/export/history", s.ExportHistory)
	admin.GET("/export/:id", s.GetExportBatch)
	admin.GET("/export/:id/download", s.DownloadExport)

	admin.GET("/audit-logs", s.ListAuditLogs)
}

package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/school-results-api/internal/handler"
	internalmiddleware "github.com/noah-isme/school-results-api/internal/middleware"
	"github.com/noah-isme/school-results-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-results-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-results-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler mounted by the router.
type Handlers struct {
	Auth      *handler.AuthHandler
	Results   *handler.ResultHandler
	Students  *handler.StudentHandler
	Promotion *handler.PromotionHandler
	Subjects  *handler.SubjectHandler
	Dashboard *handler.DashboardHandler
	Metrics   *handler.MetricsHandler
}

// Options configures router-level middleware.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	CookieName     string
	EnableDocs     bool
	Logger         *zap.Logger
	Observer       internalmiddleware.RequestObserver
	Sessions       internalmiddleware.SessionValidator
}

// NewRouter builds the gin engine with public and admin route groups.
func NewRouter(h Handlers, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(opts.Observer))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.APIPrefix)
	api.GET("/results", h.Results.Lookup)
	api.GET("/results/print", h.Results.Print)
	api.GET("/subjects", h.Subjects.Catalog)

	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)

	secured := internalmiddleware.Session(opts.Sessions, opts.CookieName)
	auth.POST("/logout", secured, h.Auth.Logout)
	auth.GET("/session", secured, h.Auth.Session)

	admin := api.Group("/admin", secured)
	admin.GET("/dashboard", h.Dashboard.Summary)

	admin.GET("/results", h.Results.Sheet)
	admin.POST("/results", internalmiddleware.Audit(opts.Logger, "submit_results", "result"), h.Results.Submit)
	admin.GET("/results/export", h.Results.Export)

	admin.GET("/students", h.Students.List)
	admin.POST("/students", internalmiddleware.Audit(opts.Logger, "create", "student"), h.Students.Create)
	admin.POST("/students/promote", internalmiddleware.Audit(opts.Logger, "promote", "class_record"), h.Promotion.Promote)
	admin.GET("/students/:id", h.Students.Get)
	admin.PUT("/students/:id", internalmiddleware.Audit(opts.Logger, "update", "student"), h.Students.Update)
	admin.PATCH("/students/:id/status", internalmiddleware.Audit(opts.Logger, "update_status", "student"), h.Students.UpdateStatus)
	admin.GET("/students/:id/promotion", h.Promotion.Options)
	admin.GET("/classes/:class/roster", h.Students.Roster)

	return r
}

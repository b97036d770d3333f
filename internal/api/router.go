package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/talentsphere/talentsphere/docs"
	"github.com/talentsphere/talentsphere/internal/api/handler"
	"github.com/talentsphere/talentsphere/internal/api/middleware"
	"github.com/talentsphere/talentsphere/internal/core/domain"
	"github.com/talentsphere/talentsphere/internal/core/ports"
)

// Deps is everything the router needs. ResumeParser is optional; the resume
// route is only registered when it is set. A nil Registry uses the default
// Prometheus registry.
type Deps struct {
	AuthService  ports.AuthService
	ResumeParser ports.ResumeParser
	Health       map[string]handler.Pinger
	JWTSecret    string
	Log          zerolog.Logger
	Registry     *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	metricsCfg := echoprometheus.MiddlewareConfig{Subsystem: "talentsphere"}
	metricsHandler := echoprometheus.NewHandler()
	if deps.Registry != nil {
		metricsCfg.Registerer = deps.Registry
		metricsHandler = echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Registry})
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(metricsCfg))

	authHandler := handler.NewAuthHandler(deps.AuthService)
	authMiddleware := middleware.Auth(deps.JWTSecret)

	v1 := e.Group("/v1")

	// --- Auth routes (public) ---
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)
	v1.GET("/profiles/:id", authHandler.Profile)

	// --- Current user ---
	me := v1.Group("/me", authMiddleware)
	me.GET("", authHandler.Me)
	me.POST("/company", authHandler.AssociateCompany, middleware.RBAC(domain.RoleRecruiterUnassociated))

	if deps.ResumeParser != nil {
		resumeHandler := handler.NewResumeHandler(deps.ResumeParser)
		v1.POST("/resumes/parse", resumeHandler.Parse, authMiddleware)
	}

	// --- Health checks (no auth required) ---
	healthHandler := handler.NewHealthHandler(deps.Health)
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", metricsHandler)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

package router

import (
	"time"

	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/clothshop/backend/internal/infrastructure/logger"
	"github.com/clothshop/backend/internal/interfaces/http/handler"
	"github.com/clothshop/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithGroupMiddleware adds middleware that runs on the versioned API group only
func WithGroupMiddleware(mw ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.middleware = append(r.middleware, mw...)
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/"+r.apiVersion, r.middleware...)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// Options configures the middleware stack of the API
type Options struct {
	Logger           *zap.Logger
	ServiceName      string
	Tracing          bool
	Verifier         middleware.TokenVerifier
	Idempotency      shared.IdempotencyStore
	IdempotencyTTL   time.Duration
	MaxBodySize      int64
	CORSAllowOrigins []string
}

// New builds the engine: global middleware, /health at the root and every
// registrar under /api/v1 behind tenant resolution and replay protection
func New(opts Options, health *handler.HealthHandler, registrars ...RouteRegistrar) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	if opts.Tracing {
		engine.Use(middleware.Tracing(opts.ServiceName), middleware.SpanStatus())
	}
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = opts.CORSAllowOrigins
	engine.Use(
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(cors),
		middleware.BodyLimit(opts.MaxBodySize),
	)

	if health != nil {
		engine.GET("/health", health.Health)
	}

	NewRouter(engine, WithGroupMiddleware(
		middleware.Tenant(opts.Verifier, log),
		middleware.Idempotency(opts.Idempotency, opts.IdempotencyTTL, log),
	)).Register(registrars...).Setup()
	return engine
}

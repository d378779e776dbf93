package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql" // DB handle shared by the repositories
	"log/slog"     // structured logging

	"github.com/google/uuid"                        // request id generator
	"github.com/labstack/echo/v4"                   // the Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo's stock middleware
	"github.com/redis/go-redis/v9"                  // backing store of the rate limiter

	"github.com/iliyamo/todo-api/internal/auth"       // token issuer
	"github.com/iliyamo/todo-api/internal/config"     // app configuration
	"github.com/iliyamo/todo-api/internal/events"     // domain event publisher
	"github.com/iliyamo/todo-api/internal/handler"    // the handlers that implement business logic
	"github.com/iliyamo/todo-api/internal/middleware" // JWT authentication, rate limiting and request logs
	"github.com/iliyamo/todo-api/internal/repository" // DB repositories
)

// BodyLimit caps request bodies.
const BodyLimit = "1M"

// Deps is everything New needs to assemble the API.
type Deps struct {
	Config    config.Config
	RateLimit config.RateLimitConfig
	DB        *sql.DB
	Redis     *redis.Client      // nil disables rate limiting
	Limiter   middleware.Limiter // overrides the Redis limiter when set
	Events    events.Publisher
	Logger    *slog.Logger
}

// New builds the Echo instance with global middleware and every route.
func New(d Deps) *echo.Echo {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(d.Logger)
	e.IPExtractor = ipExtractor(d.Config.TrustProxy)

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit(BodyLimit))

	base := handler.NewBase(d.Config.DBTimeout, d.Events, d.Logger)
	users := repository.NewUserRepo(d.DB)
	todos := repository.NewTodoRepo(d.DB)
	issuer := auth.NewIssuer(d.Config.JWTSecret, d.Config.TokenTTL)
	limiter := d.Limiter
	if limiter == nil && d.RateLimit.Enabled && d.Redis != nil {
		limiter = middleware.NewRedisLimiter(d.Redis, d.RateLimit)
	}
	prefix := d.RateLimit.Prefix

	RegisterRoutes(e, base, d.DB)
	RegisterAuth(e, handler.NewAuthHandler(base, users, issuer, d.Config.BcryptCost),
		middleware.RateLimit(limiter, prefix, "auth", d.Logger))

	guard := []echo.MiddlewareFunc{
		middleware.JWTAuth(issuer),
		middleware.RateLimit(limiter, prefix, "api", d.Logger),
	}
	RegisterTodos(e, handler.NewTodoHandler(base, todos), guard...)
	RegisterUsers(e, handler.NewUserHandler(base, users, todos, d.Config.BcryptCost), guard...)
	return e
}

// ipExtractor uses the socket peer unless a proxy on a private network is
// trusted to report the client in X-Forwarded-For.
func ipExtractor(trustProxy bool) echo.IPExtractor {
	if trustProxy {
		return echo.ExtractIPFromXFFHeader()
	}
	return echo.ExtractIPDirect()
}

// RegisterRoutes registers routes that need neither a session nor rate
// limiting.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, base handler.Base, db handler.Pinger) {
	e.GET("/healthz", base.Health(db))
}

// RegisterAuth registers the public register/login endpoints.  The limiter
// keys these by client IP since there is no identity yet.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	e.POST("/register", a.Register, limiter)
	e.POST("/login", a.Login, limiter)
}

// RegisterTodos registers the todo CRUD endpoints behind mw (JWT first).
func RegisterTodos(e *echo.Echo, t *handler.TodoHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/todos", mw...)
	g.GET("", t.List)
	g.POST("", t.Create)
	g.GET("/:id", t.Get)
	g.PUT("/:id", t.Update)
	g.DELETE("/:id", t.Delete)
}

// RegisterUsers registers the profile endpoints.  /user and /users expose
// the same route set.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, mw ...echo.MiddlewareFunc) {
	for _, prefix := range []string{"/user", "/users"} {
		g := e.Group(prefix, mw...)
		g.GET("", u.Me)
		g.GET("/todos", u.MyTodos)
		g.GET("/:id", u.Get)
		g.PUT("/:id", u.Update)
		g.DELETE("/:id", u.Delete)
	}
}

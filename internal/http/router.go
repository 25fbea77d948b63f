package http

import (
	"net/http"

	"github.com/geocoder89/todohub/internal/config"
	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/geocoder89/todohub/internal/http/handlers"
	"github.com/geocoder89/todohub/internal/http/middlewares"
	"github.com/geocoder89/todohub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

type TodoRepo interface {
	handlers.TodoStore
	handlers.AdminTodoStore
}

// Deps is everything the router needs from main. Prom, Gatherer,
// LoginLimiter and Health are optional.
type Deps struct {
	Auth         handlers.AuthService
	Verifier     middlewares.TokenVerifier
	Users        handlers.AdminUserStore
	Todos        TodoRepo
	LoginLimiter middlewares.Limiter
	Prom         *observability.Prom
	Gatherer     prometheus.Gatherer
	Checks       map[string]handlers.Check
	Health       *handlers.HealthHandler
}

func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware("todohub-api"))
	r.Use(middlewares.RequestLogger())
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	// ops
	health := deps.Health
	if health == nil {
		health = handlers.NewHealthHandler(deps.Checks)
	}
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	authMW := middlewares.NewAuthMiddleware(deps.Verifier, deps.Prom)

	limiter := deps.LoginLimiter
	if limiter == nil {
		limiter = middlewares.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow())
	}

	// auth
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Prom)
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/", middlewares.RequireJSON(), authMW.OptionalAuth(), authHandler.Register)
		authGroup.POST("/token", middlewares.RateLimit(limiter, middlewares.KeyByIP), authHandler.Token)
		authGroup.GET("/me", authMW.RequireAuth(), authHandler.Me)
	}

	// todos, scoped to the caller
	todosHandler := handlers.NewTodosHandler(deps.Todos)
	todos := r.Group("/todos", authMW.RequireAuth(), middlewares.RequireJSON())
	{
		todos.GET("", todosHandler.List)
		todos.POST("", todosHandler.Create)
		todos.GET("/:id", todosHandler.Get)
		todos.PUT("/:id", todosHandler.Update)
		todos.DELETE("/:id", todosHandler.Delete)
	}

	// admin
	adminHandler := handlers.NewAdminHandler(deps.Todos, deps.Users)
	admin := r.Group("/admin", authMW.RequireAuth(), authMW.RequireRole(user.RoleAdmin), middlewares.RequireJSON())
	{
		admin.GET("/todo", adminHandler.ListTodos)
		admin.DELETE("/todo/:id", adminHandler.DeleteTodo)
		admin.GET("/users", adminHandler.ListUsers)
		admin.PUT("/users/:id/role", adminHandler.UpdateUserRole)
	}

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondError(ctx, http.StatusNotFound, "not_found", "Route not found", nil)
	})

	return r
}

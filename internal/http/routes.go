package http

import (
	"time"

	"todo_webapp/internal/http/handlers"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the router needs. Stores are injected, never global.
type Deps struct {
	Tasks   *service.TaskService
	Items   repository.ItemStore
	Version string

	// RateLimit guards /api. nil disables limiting.
	RateLimit   gin.HandlerFunc
	CORSOrigins []string
}

// RateLimiter picks the Redis limiter when it is connected and falls back to
// the per-process one otherwise.
func RateLimiter(redisRL *middleware.RedisRateLimiter, maxRequests int, window time.Duration) gin.HandlerFunc {
	if redisRL.Enabled() {
		return redisRL.Limit(maxRequests, window)
	}
	return middleware.NewLocalRateLimiter().Limit(maxRequests, window)
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.Recovery(), middleware.Metrics(), middleware.CORS(d.CORSOrigins))

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := handlers.NewHandler(d.Tasks, d.Items, d.Version)

	// Health checks (no rate limiting)
	r.GET("/health", h.Readiness)
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if d.RateLimit != nil {
		api.Use(d.RateLimit)
	}

	tasks := api.Group("/tasks")
	{
		tasks.GET("", h.ListTasks)
		tasks.POST("", h.CreateTask)
		tasks.GET("/:id", h.GetTask)
		tasks.PUT("/:id", h.UpdateTask)
		tasks.PATCH("/:id/status", h.UpdateTaskStatus)
		tasks.DELETE("/:id", h.DeleteTask)

		// no id at all: the handlers see an empty :id and answer 400
		tasks.PUT("/", h.UpdateTask)
		tasks.DELETE("/", h.DeleteTask)
	}

	// Legacy items
	items := api.Group("/items")
	{
		items.GET("", h.ListItems)
		items.POST("", h.CreateItem)
		items.DELETE("/:id", h.DeleteItem)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Not found"})
	})
}

package handlers

import (
	"time"

	"task_manager/internal/logger"
	"task_manager/internal/policy"
	"task_manager/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services, the access policy and logging.
type Handler struct {
	services *service.Service
	policy   *policy.Policy
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, pol *policy.Policy, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{services: services, policy: pol, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	api := router.Group("/api")
	h.registerAuthRoutes(api)
	h.registerProtectedRoutes(api)

	return router
}

func (h *Handler) registerAuthRoutes(api *gin.RouterGroup) {
	api.POST("/register", h.optionalAuthMiddleware, h.register)
	api.POST("/login", h.login)
}

func (h *Handler) registerProtectedRoutes(api *gin.RouterGroup) {
	protected := api.Group("", h.authMiddleware)
	{
		protected.POST("/logout", h.logout)
		protected.GET("/users", h.listUsers)
		h.registerTaskRoutes(protected)
	}
}

func (h *Handler) registerTaskRoutes(api *gin.RouterGroup) {
	tasks := api.Group("/tasks")
	{
		tasks.GET("", h.listTasks)
		tasks.POST("", h.createTask)
		tasks.GET("/:id", h.getTask)
		tasks.PUT("/:id", h.updateTask)
		tasks.DELETE("/:id", h.deleteTask)
	}
}

// requestLogger writes one line per request.
func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	kv := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
		"client_ip", c.ClientIP(),
	}
	if p := principalFrom(c); p != nil {
		kv = append(kv, "user_id", p.UserID)
	}
	h.log.Infow("http_request", kv...)
}

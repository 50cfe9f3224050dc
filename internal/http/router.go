package api

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travelorders/internal/domain/models"
	h "travelorders/internal/http/handlers"
	"travelorders/internal/http/middleware"
	"travelorders/internal/repositories"
	"travelorders/internal/services"
)

type Deps struct {
	DB        *sql.DB
	Log       *zap.Logger
	JWTSecret []byte
	Orders    *services.TravelOrderService
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(deps.Log), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		deps.Log.Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "route not found",
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	})

	users := repositories.UserRepository{DB: deps.DB}
	authHandler := h.AuthHandler{Users: users, JWTSecret: deps.JWTSecret}
	userHandler := h.UserHandler{Users: users}
	orderHandler := h.TravelOrderHandler{
		Service:  deps.Orders,
		Vouchers: services.VoucherService{Orders: deps.Orders},
	}
	systemHandler := h.SystemHandler{DB: deps.DB}

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", systemHandler.Health)
		apiGroup.GET("/db-check", systemHandler.DBCheck)

		auth := apiGroup.Group("/auth")
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		orders := apiGroup.Group("/travel-orders")
		orders.Use(middleware.Auth(deps.JWTSecret))
		orders.GET("", orderHandler.List)
		orders.POST("", orderHandler.Create)
		orders.GET("/:id", orderHandler.Show)
		orders.PATCH("/:id", orderHandler.UpdateStatus)
		orders.DELETE("/:id", orderHandler.Cancel)
		orders.GET("/:id/voucher", orderHandler.Voucher)

		admin := apiGroup.Group("/users")
		admin.Use(middleware.Auth(deps.JWTSecret), middleware.RequireScope(models.ScopeAdmin))
		admin.GET("", userHandler.List)
		admin.GET("/:id", userHandler.Get)
	}

	return r
}

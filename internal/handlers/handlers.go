package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"sweetshop/internal/middleware"
	"sweetshop/internal/service"
)

// HandlerSet serves the /api surface. images, db and cache are nil when the
// matching backend is not configured.
type HandlerSet struct {
	log         zerolog.Logger
	environment string
	shop        *service.ShopService
	images      *service.ImageService
	db          *pgxpool.Pool
	cache       *redis.Client
}

func NewHandlerSet(
	log zerolog.Logger,
	environment string,
	shop *service.ShopService,
	images *service.ImageService,
	db *pgxpool.Pool,
	cache *redis.Client,
) HandlerSet {
	return HandlerSet{
		log:         log,
		environment: environment,
		shop:        shop,
		images:      images,
		db:          db,
		cache:       cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)
	router.GET("/categories", h.Categories)

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.RegisterAccount)
		auth.POST("/login", h.Login)

		protected := auth.Group("")
		protected.Use(middleware.Auth())
		protected.POST("/logout", h.Logout)
		protected.GET("/me", h.Me)
	}

	sweets := router.Group("/sweets")
	{
		sweets.GET("", h.ListSweets)
		sweets.GET("/search", h.SearchSweets)
		sweets.GET("/:id", h.GetSweet)

		protected := sweets.Group("")
		protected.Use(middleware.Auth())
		protected.POST("", h.CreateSweet)
		protected.PUT("/:id", h.UpdateSweet)
		protected.DELETE("/:id", h.DeleteSweet)
		protected.POST("/:id/purchase", h.PurchaseSweet)
		protected.POST("/:id/restock", h.RestockSweet)
		protected.POST("/:id/image", h.UploadSweetImage)
	}
}

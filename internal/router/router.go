// Package router sets up HTTP routes for the API.
package router

import (
	_ "micasa/swagger" // Import generated swagger docs

	"micasa/internal/authz"
	"micasa/internal/handler"
	"micasa/internal/middleware"
	"micasa/internal/models"
	"micasa/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// DefaultMaxMultipartMemory is the in-memory budget for one multipart form.
const DefaultMaxMultipartMemory = 32 << 20

// Config holds all dependencies needed to set up routes.
type Config struct {
	AuthHandler     *handler.AuthHandler
	UserHandler     *handler.UserHandler
	ListingHandler  *handler.ListingHandler
	ReviewHandler   *handler.ReviewHandler
	WishlistHandler *handler.WishlistHandler
	UploadHandler   *handler.UploadHandler
	HealthHandler   *handler.HealthHandler

	TokenManager auth.TokenManager
	Authorizer   authz.Authorizer
	RateLimiter  *middleware.RateLimiter

	// Metrics and Gatherer are optional. Without a Gatherer /metrics is not served.
	Metrics  *middleware.HTTPMetrics
	Gatherer prometheus.Gatherer

	CORSAllowedOrigins []string
	MaxMultipartMemory int64
}

// Setup creates and configures the Gin router.
func Setup(cfg *Config) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = DefaultMaxMultipartMemory
	if cfg.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = cfg.MaxMultipartMemory
	}

	// Global middleware
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins...))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Swagger docs at /docs
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/health", cfg.HealthHandler.Health)
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	r.GET("/uploads/*filename", cfg.UploadHandler.Serve)

	authn := middleware.Auth(cfg.TokenManager)
	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.RateLimiter != nil {
		limit = middleware.RateLimit(cfg.RateLimiter)
	}
	can := func(action string) gin.HandlerFunc {
		return middleware.RequirePermission(cfg.Authorizer, action)
	}

	api := r.Group("/api")
	{
		// Auth routes (public)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", limit, cfg.AuthHandler.Login)
			authRoutes.POST("/refresh", limit, cfg.AuthHandler.Refresh)
			authRoutes.POST("/logout", authn, cfg.AuthHandler.Logout)
			authRoutes.POST("/logout-all", authn, cfg.AuthHandler.LogoutAll)
		}

		users := api.Group("/users")
		{
			users.POST("/register", limit, cfg.AuthHandler.Register)

			users.GET("", authn, can(authz.ActionUserList), cfg.UserHandler.ListUsers)
			users.PUT("/:uid/role", authn, can(authz.ActionUserAssignRole), cfg.UserHandler.AssignRole)

			users.GET("/profile", authn, cfg.UserHandler.GetProfile)
			users.PUT("/profile", authn, limit, cfg.UserHandler.UpdateProfile)
			users.DELETE("/profile", authn, cfg.UserHandler.DeleteProfile)
			users.PUT("/profile/role", authn, limit, cfg.UserHandler.ChangeOwnRole)

			users.GET("/notifications", authn, cfg.UserHandler.Notifications)
			users.PUT("/notifications/read-all", authn, cfg.UserHandler.MarkAllNotificationsRead)
			users.PUT("/notifications/:id/read", authn, cfg.UserHandler.MarkNotificationRead)
			users.GET("/activity", authn, cfg.UserHandler.Activity)
		}

		listings := api.Group("/listings")
		{
			listings.GET("", cfg.ListingHandler.ListListings)
			listings.GET("/:id", cfg.ListingHandler.GetListing)

			listings.POST("", authn, can(authz.ActionListingCreate), limit, cfg.ListingHandler.CreateListing)
			// Ownership is checked by the service against the stored listing.
			listings.PUT("/:id", authn, limit, cfg.ListingHandler.UpdateListing)
			listings.DELETE("/:id", authn, limit, cfg.ListingHandler.DeleteListing)
			listings.POST("/:id/rating/recompute", authn, middleware.RequireRole(models.RoleAdmin), cfg.ListingHandler.RecomputeRating)
		}

		reviews := api.Group("/reviews")
		{
			reviews.GET("/:l_id", cfg.ReviewHandler.ListReviews)
			reviews.POST("/:l_id", authn, can(authz.ActionReviewCreate), limit, cfg.ReviewHandler.CreateReview)
		}

		wishlist := api.Group("/wishlist")
		wishlist.Use(authn)
		{
			wishlist.GET("", cfg.WishlistHandler.List)
			wishlist.GET("/:listingId", cfg.WishlistHandler.Status)
			wishlist.POST("/:listingId", can(authz.ActionWishlistToggle), limit, cfg.WishlistHandler.Toggle)
		}
	}

	return r
}

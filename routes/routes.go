package routes

import (
	"time"

	"reelfake-backend/config"
	"reelfake-backend/firebase"
	"reelfake-backend/handlers"
	"reelfake-backend/middleware"
	"reelfake-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes wires every handler. catalog holds movies, stores and rentals;
// users holds accounts and refresh tokens.
func SetupRoutes(r *gin.Engine, catalog, users *gorm.DB, storage firebase.StorageClient, registry *utils.UploadRegistry) {
	authHandler := &handlers.AuthHandler{DB: users}
	referenceHandler := &handlers.ReferenceHandler{DB: catalog}
	movieHandler := &handlers.MovieHandler{DB: catalog, Storage: storage}
	uploadHandler := &handlers.MovieUploadHandler{
		DB:        catalog,
		Registry:  registry,
		UploadDir: config.UploadDir(),
		MaxBytes:  config.UploadMaxBytes(),
	}
	actorHandler := &handlers.ActorHandler{DB: catalog}
	storeHandler := &handlers.StoreHandler{DB: catalog}
	cartHandler := &handlers.CartHandler{DB: catalog}
	wishlistHandler := &handlers.WishlistHandler{DB: catalog}
	rentalHandler := &handlers.RentalHandler{DB: catalog}

	authLimiter := middleware.NewRateLimiter(config.GetEnvInt("RATE_LIMIT_PER_MINUTE", 60), time.Minute)

	// Public routes
	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		auth.Use(authLimiter.Middleware())
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshTokenHandler)
		auth.POST("/logout", authHandler.Logout)

		api.GET("/genres", referenceHandler.GetGenres)
		api.GET("/genres/:id", referenceHandler.GetGenre)
		api.GET("/countries", referenceHandler.GetCountries)
		api.GET("/languages", referenceHandler.GetLanguages)

		api.GET("/movies", movieHandler.ListMovies)
		api.GET("/movies/:id", movieHandler.GetMovie)

		api.GET("/actors", actorHandler.GetActors)
		api.GET("/actors/:id", actorHandler.GetActor)

		api.GET("/stores", storeHandler.GetStores)
		api.GET("/stores/:id/inventory", storeHandler.GetStoreInventory)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)
		protected.PUT("/auth/profile", authHandler.UpdateProfile)
		protected.PUT("/auth/password", authHandler.ChangePassword)

		protected.GET("/cart", cartHandler.GetCart)
		protected.POST("/cart", cartHandler.AddToCart)
		protected.PUT("/cart/:id", cartHandler.UpdateCartItem)
		protected.DELETE("/cart/:id", cartHandler.RemoveFromCart)
		protected.DELETE("/cart", cartHandler.ClearCart)

		protected.GET("/wishlist", wishlistHandler.GetWishlist)
		protected.POST("/wishlist", wishlistHandler.AddToWishlist)
		protected.DELETE("/wishlist/:movie_id", wishlistHandler.RemoveFromWishlist)

		protected.POST("/rentals/checkout", rentalHandler.Checkout)
		protected.GET("/rentals", rentalHandler.GetRentals)
		protected.GET("/rentals/:id", rentalHandler.GetRental)
		protected.POST("/rentals/:id/return", rentalHandler.ReturnRental)
	}

	// Staff routes (staff and admins)
	staff := api.Group("/staff")
	staff.Use(middleware.AuthMiddleware())
	staff.Use(middleware.StaffMiddleware())
	{
		staff.GET("/rentals", rentalHandler.AdminGetRentals)
		staff.POST("/rentals/:id/return", rentalHandler.ReturnRental)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		// Bulk catalog upload
		admin.POST("/movies/upload", uploadHandler.Upload)
		admin.GET("/movies/upload/track", uploadHandler.TrackUpload)
		admin.POST("/movies/upload/validate", uploadHandler.ValidateUpload)
		admin.GET("/movies/upload/track_validation", uploadHandler.TrackValidation)

		admin.POST("/movies", movieHandler.CreateMovie)
		admin.PUT("/movies/:id", movieHandler.UpdateMovie)
		admin.DELETE("/movies/:id", movieHandler.DeleteMovie)
		admin.POST("/movies/:id/poster", movieHandler.UploadPoster)
		admin.POST("/movies/:id/poster/import", movieHandler.ImportPoster)
		admin.POST("/movies/:id/actors", movieHandler.AddCast)
		admin.DELETE("/movies/:id/actors/:actor_id", movieHandler.RemoveCast)

		admin.POST("/actors", actorHandler.CreateActor)
		admin.PUT("/actors/:id", actorHandler.UpdateActor)
		admin.DELETE("/actors/:id", actorHandler.DeleteActor)

		admin.POST("/stores", storeHandler.CreateStore)
		admin.PUT("/stores/:id/inventory", storeHandler.SetInventory)

		admin.GET("/rentals", rentalHandler.AdminGetRentals)

		admin.GET("/users", authHandler.ListUsers)
		admin.PUT("/users/:id", authHandler.UpdateUser)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}

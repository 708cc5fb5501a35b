package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reelfake-backend/config"
	"reelfake-backend/database"
	"reelfake-backend/firebase"
	"reelfake-backend/logger"
	"reelfake-backend/middleware"
	"reelfake-backend/routes"
	"reelfake-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// Load environment variables
	if err := config.LoadEnv(); err != nil {
		panic("loading .env: " + err.Error())
	}

	if err := logger.Init(config.IsProduction()); err != nil {
		panic("initialising logger: " + err.Error())
	}
	defer logger.Sync()
	log := logger.L()

	// Validate critical environment variables
	if err := config.ValidateEnv(); err != nil {
		log.Fatal("environment validation failed", zap.Error(err))
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal("failed to connect to catalog database", zap.Error(err))
	}
	usersDB, err := database.ConnectUsers(db)
	if err != nil {
		log.Fatal("failed to connect to users database", zap.Error(err))
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal("catalog migrations failed", zap.Error(err))
	}
	if err := database.MigrateUsers(usersDB); err != nil {
		log.Fatal("users migrations failed", zap.Error(err))
	}
	if err := database.SeedReferenceData(db); err != nil {
		log.Fatal("seeding reference data failed", zap.Error(err))
	}

	// Create default admin user if not exists
	if err := database.CreateDefaultAdmin(usersDB); err != nil {
		log.Warn("could not create default admin", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := firebase.Init(ctx); err != nil {
		log.Warn("firebase unavailable, poster uploads will fail", zap.Error(err))
	}
	storageClient := firebase.NewStorageClient()

	registry := utils.NewUploadRegistry(config.GetEnvDuration("UPLOAD_TRACKING_TTL", time.Hour))
	go registry.RunCleanup(ctx, 5*time.Minute)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	// Limit multipart form memory to 10MB; larger uploads spill to disk
	r.MaxMultipartMemory = 10 << 20

	// CORS configuration - filter out empty strings from AllowOrigins
	var origins []string
	for _, o := range []string{os.Getenv("FRONTEND_URL"), os.Getenv("ADMIN_URL")} {
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
		log.Warn("no CORS origins configured, defaulting to http://localhost:3000")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	routes.SetupRoutes(r, db, usersDB, storageClient, registry)

	port := config.GetEnv("PORT", "8080")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	closeDB(log, "catalog", db)
	if usersDB != db {
		closeDB(log, "users", usersDB)
	}

	log.Info("server exited gracefully")
}

func closeDB(log *zap.Logger, name string, db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("error closing database connection", zap.String("db", name), zap.Error(err))
		return
	}
	log.Info("database connection closed", zap.String("db", name))
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/trefstays/stays-backend/internal/config"
	"github.com/trefstays/stays-backend/internal/database"
	"github.com/trefstays/stays-backend/internal/handlers"
	"github.com/trefstays/stays-backend/internal/middleware"
	"github.com/trefstays/stays-backend/internal/models"
	"github.com/trefstays/stays-backend/internal/services"
	"github.com/trefstays/stays-backend/internal/session"
	"github.com/trefstays/stays-backend/internal/wizard"
	"github.com/trefstays/stays-backend/pkg/jwt"
	"github.com/trefstays/stays-backend/pkg/storage"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

const (
	wizardSweepInterval  = time.Minute
	limiterSweepInterval = 10 * time.Minute
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting stays backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logger.Fatalf("Failed to migrate database: %v", err)
		}
		logger.Info("Database schema is up to date")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatalf("Failed to connect to redis: %v", err)
	}
	logger.Info("Redis connection established")

	store, err := storage.NewMinioStore(ctx, storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize object storage: %v", err)
	}
	logger.WithField("bucket", cfg.Storage.Bucket).Info("Object storage ready")

	// Repositories
	accountRepository := database.NewAccountRepository(db)
	profileRepository := database.NewProfileRepository(db)
	propertyRepository := database.NewPropertyRepository(db)
	adminUserRepository := database.NewAdminUserRepository(db)

	// Services
	broker := session.NewBroker()
	unsubscribe := broker.Subscribe(func(ev session.Event) {
		logger.WithFields(logrus.Fields{
			"event":      ev.Kind,
			"account_id": ev.Session.AccountID,
			"roles":      ev.Session.Roles,
		}).Info("Session state changed")
	})
	defer unsubscribe()

	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	identityService := services.NewIdentityService(accountRepository, profileRepository, jwtService, cfg.Security.BcryptCost, logger)
	listingService := services.NewListingService(propertyRepository, logger)
	adminAuthService := services.NewAdminAuthService(
		adminUserRepository,
		session.NewRedisStore(rdb, cfg.Admin.SessionTTL, cfg.Admin.RememberTTL),
		broker,
		logger,
	)

	registry := wizard.NewRegistry(cfg.Wizard.MaxImages, cfg.Wizard.MaxSessions, cfg.Wizard.SessionTTL, logger)
	go registry.Run(ctx, wizardSweepInterval)

	sequencer := wizard.NewSequencer(
		services.NewWizardBackend(identityService, profileRepository, propertyRepository, store),
		logger,
		cfg.Wizard.UploadConcurrency,
	)
	wizardService := services.NewWizardService(registry, sequencer, identityService, broker, logger)

	loginLimiter := middleware.NewIPRateLimiter(cfg.Admin.LoginRatePerMinute)
	wizardLimiter := middleware.NewIPRateLimiter(cfg.Wizard.RatePerMinute)
	go func() {
		ticker := time.NewTicker(limiterSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				loginLimiter.Cleanup()
				wizardLimiter.Cleanup()
			}
		}
	}()

	// Handlers
	wizardHandler := handlers.NewWizardHandler(registry, wizardService, cfg.Wizard.MaxImages, cfg.Wizard.MaxImageBytes, logger)
	listingHandler := handlers.NewListingHandler(listingService, logger)
	adminAuthHandler := handlers.NewAdminAuthHandler(adminAuthService, listingService, cfg.Admin.CookieSecure, logger)

	router := gin.New()
	// Limiters key on ClientIP, which only honours forwarding headers from these peers
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Fatalf("Invalid TRUSTED_PROXIES: %v", err)
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.MaxMultipartMemory = cfg.Wizard.MaxImageBytes
	router.SetHTMLTemplate(handlers.Templates())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthCheckHandler(db, rdb))

	v1 := router.Group("/api/v1")
	{
		wizardHandler.RegisterRoutes(v1, middleware.APIRateLimit(wizardLimiter, logger))

		v1.GET("/properties", listingHandler.Search)
		v1.GET("/properties/:id", listingHandler.Get)

		me := v1.Group("/me", middleware.AuthMiddleware(jwtService, logger))
		me.GET("/properties", middleware.RequireRole(models.RoleOwner), listingHandler.Mine)
	}

	adminAuthHandler.RegisterRoutes(router, middleware.LoginRateLimit(loginLimiter, logger))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.WithField("open_wizards", registry.Len()).Info("Server exited successfully")
}

// healthCheckHandler reports database and redis reachability
func healthCheckHandler(db database.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus, redisStatus := "healthy", "healthy"
		if err := db.PingContext(ctx); err != nil {
			dbStatus = "unhealthy"
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}

		status := http.StatusOK
		overall := "healthy"
		if dbStatus != "healthy" || redisStatus != "healthy" {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}

		c.JSON(status, gin.H{
			"status":    overall,
			"database":  dbStatus,
			"redis":     redisStatus,
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}

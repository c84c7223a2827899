package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/OffCrazyFreak/Pogled-app/config"
	"github.com/OffCrazyFreak/Pogled-app/controllers"
	"github.com/OffCrazyFreak/Pogled-app/data_access"
	"github.com/OffCrazyFreak/Pogled-app/middleware"
	"github.com/OffCrazyFreak/Pogled-app/services"
)

// enrichmentCooldown paces the auxiliary provider calls during ingestion.
const enrichmentCooldown = 200 * time.Millisecond

func setupCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	logger := log.With().Str("env", cfg.Env).Logger()
	logger.Info().Msg("configuration loaded")

	// Initialize MongoDB connection
	mongodb, err := data_access.NewMongoDB(cfg.MongoURI, cfg.DBName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer mongodb.Close(context.Background())

	// Redis is optional: without it recommendations are recomputed per
	// request.
	var cache services.ResponseCache
	if redisCache, err := data_access.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, recommendation caching disabled")
	} else {
		cache = redisCache
		defer redisCache.Close()
	}

	// Initialize repositories
	userRepo := data_access.NewUserRepository(mongodb)
	movieRepo := data_access.NewMovieRepository(mongodb)
	interactionRepo := data_access.NewInteractionRepository(mongodb)

	// Initialize provider clients
	tmdbClient := data_access.NewTMDBClient(cfg.TMDB.APIKey, cfg.TMDB.BaseURL)
	omdbClient := data_access.NewOMDBClient(cfg.OMDB.APIKey, cfg.OMDB.BaseURL)
	youtubeClient := data_access.NewYouTubeClient(cfg.YouTube.APIKey, cfg.YouTube.BaseURL)
	traktClient := data_access.NewTraktClient(cfg.Trakt.APIKey, cfg.Trakt.BaseURL)

	// Set JWT secret for middleware
	middleware.SetJWTSecret(cfg.JWTSecret)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	recommendService := services.NewRecommendService(movieRepo, interactionRepo, cache, logger)
	catalogService := services.NewCatalogService(movieRepo, interactionRepo, recommendService, logger)
	ingestService := services.NewIngestService(
		tmdbClient, omdbClient, youtubeClient, traktClient, movieRepo,
		rate.NewLimiter(rate.Every(enrichmentCooldown), 1), logger,
	)

	// Initialize controllers
	authController := controllers.NewAuthController(authService)
	movieController := controllers.NewMovieController(catalogService)
	ingestController := controllers.NewIngestController(ingestService)
	recommendController := controllers.NewRecommendController(recommendService)

	// Setup Gin router
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(setupCORS())

	// Health check endpoint
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Public routes
	api := r.Group("/api")
	{
		api.POST("/register", authController.Register)
		api.POST("/login", authController.Login)
		api.POST("/logout", authController.Logout)

		api.GET("/movies", movieController.ListMovies)
		api.DELETE("/movies", movieController.DeleteMovies)

		api.POST("/ingest", ingestController.TriggerIngest)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/movies/saved", movieController.SavedMovies)
			protected.GET("/movies/rated", movieController.RatedMovies)
			protected.POST("/movies/:id/save", movieController.SaveMovie)
			protected.POST("/movies/:id/rating", movieController.RateMovie)
			protected.GET("/recommendations", recommendController.GetRecommendations)
		}

		api.GET("/movies/:id", movieController.GetMovie)
		api.DELETE("/movies/:id", movieController.DeleteMovie)
	}

	logger.Info().Str("port", cfg.Port).Msg("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

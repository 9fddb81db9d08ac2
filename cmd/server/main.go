package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"core/internal/config"
	"core/internal/faredata"
	"core/internal/handler"
	"core/internal/middleware"
	"core/internal/repository"
	"core/internal/resilience"
	"core/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("Rental Recommendation Engine")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	log.Println("✅ Connected to PostgreSQL database")

	// Redis is optional; without it, rate limiting is disabled.
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = repository.NewRedisClient(context.Background(), cfg.Redis.URL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable, rate limiting disabled: %v", err)
			rdb = nil
		} else {
			log.Println("✅ Connected to Redis")
			defer rdb.Close()
		}
	} else {
		log.Println("⚠️  Redis not configured - rate limiting disabled")
	}

	// Load the embedded city fare table
	fareTable, err := faredata.Load()
	if err != nil {
		log.Fatalf("Failed to load fare table: %v", err)
	}
	log.Printf("✅ Fare table loaded (%d routes)", len(fareTable.Routes()))

	// One resilience policy per external service
	initialBackoff := time.Duration(cfg.Resilience.InitialBackoffMs) * time.Millisecond
	resetTimeout := time.Duration(cfg.Resilience.ResetTimeoutSec) * time.Second
	newPolicy := func(name string) *resilience.Policy {
		return resilience.NewPolicy(name, cfg.Resilience.MaxAttempts, initialBackoff, cfg.Resilience.FailureThreshold, resetTimeout)
	}

	// Initialize external service clients
	gebetaClient := service.NewGebetaClient(&cfg.Gebeta, newPolicy("gebeta"))
	if cfg.Gebeta.Enabled {
		log.Printf("✅ Gebeta routing client initialized")
		log.Printf("   - API Base: %s", cfg.Gebeta.APIBase)
	} else {
		log.Println("⚠️  Gebeta is disabled - transport costs fall back to fare-table estimates")
		log.Println("   Set GEBETA_API_KEY environment variable to enable routing")
	}

	geminiClient := service.NewGeminiClient(&cfg.Gemini, newPolicy("gemini"))
	if cfg.Gemini.Enabled {
		log.Printf("✅ Gemini client initialized")
		log.Printf("   - API Base: %s", cfg.Gemini.APIBase)
		log.Printf("   - Chat model: %s", cfg.Gemini.ChatModel)
		log.Printf("   - Fallback model: %s", cfg.Gemini.FallbackModel)
		log.Printf("   - Embedding model: %s", cfg.Gemini.EmbeddingModel)
	} else {
		log.Println("⚠️  Gemini is disabled - reason generation and semantic search will not work")
		log.Println("   Set GEMINI_API_KEY environment variable to enable AI features")
	}

	inventoryClient := service.NewInventoryClient(&cfg.Services, newPolicy("search-filters"))
	authClient := service.NewAuthClient(&cfg.Services, newPolicy("user-management"))

	// Initialize pipeline stages
	semanticIndex := service.NewSemanticIndex(geminiClient, repo)
	geocoder := service.NewGeocoder(fareTable)
	searchResolver := service.NewSearchResolver(inventoryClient, cfg.Search)
	if cfg.Gemini.Enabled {
		searchResolver.WithIndexer(semanticIndex)
	}
	routeCostResolver := service.NewRouteCostResolver(gebetaClient, fareTable)
	ranker := service.NewRanker(repo, cfg.Ranking, cfg.Search.TopK)
	enricher := service.NewReasonEnricher(geminiClient, repo, cfg.Gebeta.APIBase)
	agent := service.NewRecommendationAgent(geocoder, searchResolver, routeCostResolver, ranker, enricher)

	log.Println("✅ Services initialized")

	// Initialize handlers
	recommendationHandler := handler.NewRecommendationHandler(repo, agent)
	propertySearchHandler := handler.NewPropertySearchHandler(semanticIndex, cfg.Search.TopK)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "rental-recommendation-engine",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	rateLimitWindow := time.Duration(cfg.Resilience.RateLimitWindowSec) * time.Second
	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.Auth(authClient))
	{
		tenantOnly := middleware.RequireRole("tenant")

		// Recommendation endpoints
		apiV1.POST("/recommendations", tenantOnly,
			middleware.RateLimit(rdb, cfg.Resilience.RateLimitRequests, rateLimitWindow),
			recommendationHandler.Create)
		apiV1.GET("/recommendations/:id", tenantOnly, recommendationHandler.ListSaved)
		apiV1.POST("/recommendations/feedback", tenantOnly, recommendationHandler.Feedback)

		// Semantic property search
		apiV1.POST("/properties/search", middleware.RequireRole("tenant", "landlord"), propertySearchHandler.Search)
	}

	// Seed the semantic index with the fare table so route queries work from
	// the first request. Property documents are indexed as searches run.
	if cfg.Gemini.Enabled {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			indexed := semanticIndex.IndexFareTable(ctx, fareTable)
			log.Printf("✅ Indexed %d fare-table routes", indexed)
		}()
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API Documentation: http://localhost:%d/api/v1", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/parkfinder/backend/internal/delivery/http"
	"github.com/parkfinder/backend/internal/repository/postgres"
	"github.com/parkfinder/backend/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Configuration
	cfg := loadConfig()

	// Repository: PostgreSQL when reachable, in-memory otherwise
	repo, closeRepo := openRepository(cfg.DatabaseURL)
	defer closeRepo()

	// Dependency Injection: Providers
	rng := service.NewRand(cfg.RandomSeed)
	overpass := service.NewOverpassClient(cfg.OverpassURL, cfg.ProviderTimeout)
	nominatim := service.NewNominatimClient(service.NominatimConfig{
		BaseURL:        cfg.NominatimURL,
		UserAgent:      cfg.NominatimUserAgent,
		RequestsPerSec: cfg.NominatimRPS,
		Timeout:        cfg.ProviderTimeout,
	})

	// Dependency Injection: Services
	currency := service.NewCurrencyDetector(nominatim, cfg.ProviderTimeout)
	weatherSvc := service.NewWeatherService(cfg.OpenWeatherAPIKey)
	searchSvc := service.NewSearchService(overpass, nominatim, rng, repo, service.SearchConfig{
		RadiusMeters:    cfg.SearchRadiusMeters,
		ProviderTimeout: cfg.ProviderTimeout,
	})
	contextSvc := service.NewContextService(currency, weatherSvc)
	parkingSvc := service.NewParkingService(repo)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "ParkFinder API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(http.RequestContext(cfg.RequestTimeout))

	// Routes
	http.SetupRoutes(app, http.Services{
		Search:   searchSvc,
		Parking:  parkingSvc,
		Context:  contextSvc,
		Currency: currency,
		Weather:  weatherSvc,
		Repo:     repo,
	})

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s (%s)", cfg.Port, cfg.Env)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	searchSvc.WaitBackground()
	log.Println("Server exited gracefully")
}

// openRepository connects to PostgreSQL and migrates the schema, falling back to memory
func openRepository(databaseURL string) (service.ParkingRepository, func()) {
	if databaseURL == "" {
		log.Println("DATABASE_URL not set, running with in-memory storage")
		return postgres.NewMemoryRepository(), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err == nil {
		err = pool.Ping(ctx)
	}
	if err != nil {
		log.Printf("Warning: Could not connect to database: %v", err)
		log.Println("Running with in-memory storage")
		if pool != nil {
			pool.Close()
		}
		return postgres.NewMemoryRepository(), func() {}
	}

	repo := postgres.NewPostgresRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		log.Printf("Warning: %v", err)
		log.Println("Running with in-memory storage")
		pool.Close()
		return postgres.NewMemoryRepository(), func() {}
	}

	log.Println("Connected to PostgreSQL")
	return repo, pool.Close
}

type Config struct {
	DatabaseURL        string
	OpenWeatherAPIKey  string
	OverpassURL        string
	NominatimURL       string
	NominatimUserAgent string
	NominatimRPS       float64
	ProviderTimeout    time.Duration
	RequestTimeout     time.Duration
	SearchRadiusMeters int
	RandomSeed         int64
	Port               string
	Env                string
}

func loadConfig() *Config {
	return &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		OpenWeatherAPIKey:  getEnv("OPENWEATHER_API_KEY", ""),
		OverpassURL:        getEnv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		NominatimURL:       getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: getEnv("NOMINATIM_USER_AGENT", "parkfinder-backend/1.0"),
		NominatimRPS:       getEnvFloat("NOMINATIM_RPS", 1),
		ProviderTimeout:    getEnvDuration("PROVIDER_TIMEOUT", 8*time.Second),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 25*time.Second),
		SearchRadiusMeters: getEnvInt("SEARCH_RADIUS_M", 2000),
		RandomSeed:         int64(getEnvInt("RANDOM_SEED", 0)),
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("GO_ENV", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid %s=%q, using %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid %s=%q, using %g", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid %s=%q, using %s", key, value, defaultValue)
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// API Configuration
	TMDB    ProviderConfig
	OMDB    ProviderConfig
	YouTube ProviderConfig
	Trakt   ProviderConfig

	// Database Configuration
	MongoURI string
	DBName   string

	// Cache Configuration
	Redis RedisConfig

	// Security Configuration
	JWTSecret string

	// Server Configuration
	Port string
	Env  string
}

// ProviderConfig holds the key and base URL for one external movie API.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load environment file based on GO_ENV when present; plain env vars
	// are enough in containerized deployments.
	env := getEnvOrDefault("GO_ENV", "development")
	envFile := filepath.Join("environments", fmt.Sprintf(".env.%s", env))
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("error loading env file %s: %v", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value %q: %v", os.Getenv("REDIS_DB"), err)
	}

	return &Config{
		// API Configuration
		TMDB: ProviderConfig{
			APIKey:  getEnvOrDefault("TMDB_API_KEY", ""),
			BaseURL: getEnvOrDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		},
		OMDB: ProviderConfig{
			APIKey:  getEnvOrDefault("OMDB_API_KEY", ""),
			BaseURL: getEnvOrDefault("OMDB_BASE_URL", "https://www.omdbapi.com"),
		},
		YouTube: ProviderConfig{
			APIKey:  getEnvOrDefault("YOUTUBE_API_KEY", ""),
			BaseURL: getEnvOrDefault("YOUTUBE_BASE_URL", "https://www.googleapis.com/youtube/v3"),
		},
		Trakt: ProviderConfig{
			APIKey:  getEnvOrDefault("TRAKT_CLIENT_ID", ""),
			BaseURL: getEnvOrDefault("TRAKT_BASE_URL", "https://api.trakt.tv"),
		},

		// Database Configuration
		MongoURI: getEnvOrDefault("MONGO_URI", ""),
		DBName:   getEnvOrDefault("DB_NAME", "pogledDB"),

		// Cache Configuration
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},

		// Security Configuration
		JWTSecret: getEnvOrDefault("JWT_SECRET", ""),

		// Server Configuration
		Port: getEnvOrDefault("PORT", "8080"),
		Env:  env,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

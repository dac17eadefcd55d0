package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port           int
	LogLevel       string
	LogFormat      string
	DBUser         string
	DBPassword     string
	DBHost         string
	DBPort         string
	DBName         string
	DBMaxConns     int
	CatalogDir     string
	APIKey         string   // API key for authentication
	TrustedProxies []string // proxies whose X-Forwarded-For is honored
	CacheSize      int      // LRU entries in front of the document store
	Seed           int64    // RNG seed, 0 draws from the clock
	SpawnPeriod    int      // seconds between spawn ticks
	BattlePeriod   int      // seconds between raid rounds
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:   getEnv("LOG_LEVEL", "INFO"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "fishpond"),
		CatalogDir: getEnv("CATALOG_DIR", "data/catalog"),
		APIKey:     getEnv("API_KEY", ""),
	}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	spawnStr := getEnv("SPAWN_PERIOD_SECONDS", "60")
	spawn, err := strconv.Atoi(spawnStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SPAWN_PERIOD_SECONDS value: %w", err)
	}
	cfg.SpawnPeriod = spawn

	battleStr := getEnv("BATTLE_PERIOD_SECONDS", "180")
	battle, err := strconv.Atoi(battleStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BATTLE_PERIOD_SECONDS value: %w", err)
	}
	cfg.BattlePeriod = battle

	maxConnsStr := getEnv("DB_MAX_CONNS", "10")
	maxConns, err := strconv.Atoi(maxConnsStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS value: %w", err)
	}
	cfg.DBMaxConns = maxConns

	cacheStr := getEnv("CACHE_SIZE", "1024")
	cache, err := strconv.Atoi(cacheStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_SIZE value: %w", err)
	}
	cfg.CacheSize = cache

	seedStr := getEnv("RNG_SEED", "0")
	seed, err := strconv.ParseInt(seedStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RNG_SEED value: %w", err)
	}
	cfg.Seed = seed

	if proxies := getEnv("TRUSTED_PROXIES", ""); proxies != "" {
		for _, p := range strings.Split(proxies, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.TrustedProxies = append(cfg.TrustedProxies, p)
			}
		}
	}

	// Validate API key is set
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

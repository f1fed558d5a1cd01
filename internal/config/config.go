package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	BaseURL string

	// Response cache. CachePath is the SQLite file used by default;
	// setting CacheRedisAddr switches the backend to Redis.
	CachePath      string
	CacheTTL       time.Duration
	CacheRedisAddr string

	EntriesPerCategory int
	RequestTimeout     time.Duration

	// Cron spec for the cache warmer. Empty disables warming.
	WarmSpec string
}

func Load() *Config {
	// Optional .env for local runs; a missing file is fine.
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:            getEnv("APP_PORT", "8080"),
		BaseURL:            getEnv("QTHRSS_BASE_URL", "https://swap.qth.com"),
		CachePath:          getEnv("QTHRSS_CACHE_PATH", "cache.sqlite3"),
		CacheTTL:           time.Duration(getEnvInt("QTHRSS_CACHE_LIFETIME", 3600)) * time.Second,
		CacheRedisAddr:     getEnv("QTHRSS_CACHE_REDIS_ADDR", ""),
		EntriesPerCategory: getEnvInt("QTHRSS_ENTRIES_PER_CATEGORY", 20),
		RequestTimeout:     time.Duration(getEnvInt("QTHRSS_REQUEST_TIMEOUT", 15)) * time.Second,
		WarmSpec:           getEnv("QTHRSS_WARM_SPEC", ""),
	}

	log.Printf("config loaded: port=%s cache=%s ttl=%s per_category=%d",
		cfg.AppPort, cfg.CachePath, cfg.CacheTTL, cfg.EntriesPerCategory)
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: %s=%q is not a number, using %d", key, v, def)
		return def
	}
	return n
}

// Package config loads server settings from the environment
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/damacus/trash-lens/internal/i18n"
	"github.com/damacus/trash-lens/internal/maps"
	"github.com/damacus/trash-lens/internal/services"
	"github.com/damacus/trash-lens/internal/workflow"
	"github.com/joho/godotenv"
)

// DefaultAPIURL is where the classifier runs in development
const DefaultAPIURL = "http://localhost:8000"

// Config holds everything main needs to wire the server
type Config struct {
	Addr            string
	APIURL          string
	AnalyzeTimeout  time.Duration
	UploadTimeout   time.Duration
	RecentCapacity  int
	ViewCapacity    int
	ViewTTL         time.Duration
	DefaultLanguage string
	Map             maps.Config
	Archive         services.ArchiveConfig
}

// Load reads the environment, after an optional .env file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("CONFIG: ignoring .env: %v", err)
	}

	cfg := &Config{
		Addr:            getEnv("ADDR", ":8080"),
		APIURL:          getEnv("API_URL", DefaultAPIURL),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", i18n.DefaultLanguage),
		Map:             maps.Default(),
		Archive: services.ArchiveConfig{
			Endpoint:  os.Getenv("ARCHIVE_ENDPOINT"),
			AccessKey: os.Getenv("ARCHIVE_ACCESS_KEY"),
			SecretKey: os.Getenv("ARCHIVE_SECRET_KEY"),
			Bucket:    getEnv("ARCHIVE_BUCKET", "trash-photos"),
			Region:    os.Getenv("ARCHIVE_REGION"),
		},
	}

	var err error
	if cfg.AnalyzeTimeout, err = getEnvDuration("ANALYZE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.UploadTimeout, err = getEnvDuration("UPLOAD_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.ViewTTL, err = getEnvDuration("VIEW_TTL", workflow.DefaultViewTTL); err != nil {
		return nil, err
	}
	if cfg.RecentCapacity, err = getEnvInt("RECENT_CAPACITY", workflow.DefaultRecentCapacity); err != nil {
		return nil, err
	}
	if cfg.ViewCapacity, err = getEnvInt("VIEW_CAPACITY", workflow.DefaultViewCapacity); err != nil {
		return nil, err
	}
	if v := os.Getenv("ARCHIVE_USE_SSL"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("ARCHIVE_USE_SSL: %w", err)
		}
		cfg.Archive.Secure = &secure
	}

	if !i18n.Supported(cfg.DefaultLanguage) {
		log.Printf("CONFIG: unsupported DEFAULT_LANGUAGE %q, using %q", cfg.DefaultLanguage, i18n.DefaultLanguage)
		cfg.DefaultLanguage = i18n.DefaultLanguage
	}

	if path := os.Getenv("MAP_MARKERS_FILE"); path != "" {
		m, err := maps.Load(path)
		if err != nil {
			return nil, err
		}
		cfg.Map = m
	}
	cfg.Map.APIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	if cfg.Map.APIKey == "" {
		log.Println("CONFIG: GOOGLE_MAPS_API_KEY not set, map is disabled")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: expected a positive integer, got %q", key, value)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

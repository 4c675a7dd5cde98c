package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	LogLevel               string
	CORSAllowOrigins       string
	DatabaseURL            string
	DatabaseMaxOpenConns   int
	DatabaseMaxIdleConns   int
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	SimilarityThreshold    int
	SimilaritySkewExponent float64
	SimilarityCacheTTL     time.Duration
	SimilarityAlertSubject string
	SimilarityAlertEvery   time.Duration
	PlagiarismRatePerMin   int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CAMPUS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Campus API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("cloudinary.folder", "campus/submissions")
	v.SetDefault("similarity.threshold", 70)
	v.SetDefault("similarity.skew_exponent", 0.6)
	v.SetDefault("similarity.cache_ttl", "10m")
	v.SetDefault("similarity.alert_subject", "campus.similarity.flagged")
	v.SetDefault("similarity.alert_interval", "1m")
	v.SetDefault("ratelimit.plagiarism_per_minute", 30)

	ttlString := v.GetString("similarity.cache_ttl")
	if ttlString == "" {
		ttlString = "10m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid similarity cache ttl: %w", err)
	}
	if ttl < 0 {
		return Config{}, fmt.Errorf("similarity cache ttl must not be negative")
	}

	alertEvery, err := time.ParseDuration(v.GetString("similarity.alert_interval"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid similarity alert interval: %w", err)
	}
	if alertEvery < 0 {
		return Config{}, fmt.Errorf("similarity alert interval must not be negative")
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		LogLevel:               strings.ToLower(v.GetString("log.level")),
		CORSAllowOrigins:       v.GetString("cors.allow_origins"),
		DatabaseURL:            v.GetString("database.url"),
		DatabaseMaxOpenConns:   v.GetInt("database.max_open_conns"),
		DatabaseMaxIdleConns:   v.GetInt("database.max_idle_conns"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		SimilarityThreshold:    v.GetInt("similarity.threshold"),
		SimilaritySkewExponent: v.GetFloat64("similarity.skew_exponent"),
		SimilarityCacheTTL:     ttl,
		SimilarityAlertSubject: v.GetString("similarity.alert_subject"),
		SimilarityAlertEvery:   alertEvery,
		PlagiarismRatePerMin:   v.GetInt("ratelimit.plagiarism_per_minute"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.SimilarityThreshold < 0 || cfg.SimilarityThreshold > 100 {
		return Config{}, fmt.Errorf("similarity threshold must be between 0 and 100, got %d", cfg.SimilarityThreshold)
	}

	exponent := cfg.SimilaritySkewExponent
	if exponent <= 0 || math.IsNaN(exponent) || math.IsInf(exponent, 0) {
		return Config{}, fmt.Errorf("similarity skew exponent must be a positive number")
	}

	if cfg.DatabaseMaxOpenConns <= 0 {
		cfg.DatabaseMaxOpenConns = 20
	}

	if cfg.DatabaseMaxIdleConns < 0 {
		cfg.DatabaseMaxIdleConns = 0
	}

	if cfg.PlagiarismRatePerMin <= 0 {
		cfg.PlagiarismRatePerMin = 30
	}

	return cfg, nil
}

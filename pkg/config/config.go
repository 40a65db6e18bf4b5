package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Upstream UpstreamConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Cache    CacheConfig
	Lists    ListConfig
	Exports  ExportConfig
	Sessions SessionConfig
	Refetch  RefetchConfig
}

// UpstreamConfig locates the church platform backend every read and write
// goes through.
type UpstreamConfig struct {
	BaseURL   string
	AssetHost string
	Timeout   time.Duration
	Token     string
	TokenFile string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig tunes the snapshot cache shared by all list views.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// ListConfig bounds list view pagination.
type ListConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// ExportConfig bounds on-demand export generation.
type ExportConfig struct {
	MaxRows int
}

// SessionConfig governs multi-step form session lifetime.
type SessionConfig struct {
	TTL time.Duration
}

// RefetchConfig tunes the worker that re-primes invalidated snapshots.
type RefetchConfig struct {
	Enabled bool
	Workers int
	Retries int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Upstream = UpstreamConfig{
		BaseURL:   strings.TrimRight(v.GetString("UPSTREAM_BASE_URL"), "/"),
		AssetHost: strings.TrimRight(v.GetString("UPSTREAM_ASSET_HOST"), "/"),
		Timeout:   parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 10*time.Second),
		Token:     v.GetString("UPSTREAM_TOKEN"),
		TokenFile: v.GetString("UPSTREAM_TOKEN_FILE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("CACHE_ENABLED"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	cfg.Lists = ListConfig{
		DefaultPageSize: v.GetInt("LIST_DEFAULT_PAGE_SIZE"),
		MaxPageSize:     v.GetInt("LIST_MAX_PAGE_SIZE"),
	}

	cfg.Exports = ExportConfig{MaxRows: v.GetInt("EXPORT_MAX_ROWS")}

	cfg.Sessions = SessionConfig{
		TTL: parseDuration(v.GetString("FORM_SESSION_TTL"), 30*time.Minute),
	}

	cfg.Refetch = RefetchConfig{
		Enabled: v.GetBool("REFETCH_ENABLED"),
		Workers: v.GetInt("REFETCH_WORKERS"),
		Retries: v.GetInt("REFETCH_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("UPSTREAM_BASE_URL", "http://localhost:4000")
	v.SetDefault("UPSTREAM_ASSET_HOST", "http://localhost:4000")
	v.SetDefault("UPSTREAM_TIMEOUT", "10s")
	v.SetDefault("UPSTREAM_TOKEN", "")
	v.SetDefault("UPSTREAM_TOKEN_FILE", "")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("LIST_DEFAULT_PAGE_SIZE", 7)
	v.SetDefault("LIST_MAX_PAGE_SIZE", 100)

	v.SetDefault("EXPORT_MAX_ROWS", 5000)

	v.SetDefault("FORM_SESSION_TTL", "30m")

	v.SetDefault("REFETCH_ENABLED", true)
	v.SetDefault("REFETCH_WORKERS", 2)
	v.SetDefault("REFETCH_RETRIES", 3)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

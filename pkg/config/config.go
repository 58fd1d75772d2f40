package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Supported entity store backends.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	Location  *time.Location

	Store      StoreConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Log        LogConfig
	Sessions   SessionConfig
	Media      MediaConfig
	Exports    ExportsConfig
	Instructor InstructorConfig
}

// StoreConfig selects the backend behind the entity store.
type StoreConfig struct {
	Backend    string
	SQLitePath string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SessionConfig tunes session creation defaults.
type SessionConfig struct {
	DefaultCapacity int
}

// MediaConfig controls photo storage & validation.
type MediaConfig struct {
	Enabled          bool
	StorageDir       string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// ExportsConfig gates the CSV/PDF export endpoints.
type ExportsConfig struct {
	Enabled bool
}

// InstructorConfig seeds the lazily created instructor profile.
type InstructorConfig struct {
	DefaultName string
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	loc, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	cfg.Location = loc

	cfg.Store = StoreConfig{
		Backend:    strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND"))),
		SQLitePath: v.GetString("SQLITE_PATH"),
	}
	switch cfg.Store.Backend {
	case StoreMemory, StoreSQLite, StorePostgres, StoreRedis:
	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND %q", cfg.Store.Backend)
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:      v.GetString("REDIS_HOST"),
		Port:      v.GetInt("REDIS_PORT"),
		Password:  v.GetString("REDIS_PASSWORD"),
		DB:        v.GetInt("REDIS_DB"),
		KeyPrefix: v.GetString("REDIS_KEY_PREFIX"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	capacity := v.GetInt("DEFAULT_SESSION_CAPACITY")
	if capacity <= 0 {
		capacity = 10
	}
	cfg.Sessions = SessionConfig{DefaultCapacity: capacity}

	maxPhotoSize := v.GetInt64("MEDIA_MAX_FILE_SIZE")
	if maxPhotoSize <= 0 {
		maxPhotoSize = 5 * 1024 * 1024
	}
	cfg.Media = MediaConfig{
		Enabled:          v.GetBool("ENABLE_MEDIA"),
		StorageDir:       v.GetString("MEDIA_STORAGE_DIR"),
		SignedURLSecret:  v.GetString("MEDIA_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("MEDIA_SIGNED_URL_TTL"), 24*time.Hour),
		MaxFileSizeBytes: maxPhotoSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("MEDIA_ALLOWED_MIME_TYPES")),
	}

	cfg.Exports = ExportsConfig{Enabled: v.GetBool("ENABLE_EXPORTS")}

	cfg.Instructor = InstructorConfig{DefaultName: v.GetString("DEFAULT_INSTRUCTOR_NAME")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("TIMEZONE", "UTC")

	v.SetDefault("STORE_BACKEND", StoreSQLite)
	v.SetDefault("SQLITE_PATH", "./skateflow.db")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "skateflow")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "skateflow:")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DEFAULT_SESSION_CAPACITY", 10)

	v.SetDefault("ENABLE_MEDIA", true)
	v.SetDefault("MEDIA_STORAGE_DIR", "./media")
	v.SetDefault("MEDIA_SIGNED_URL_SECRET", "dev_media_secret")
	v.SetDefault("MEDIA_SIGNED_URL_TTL", "24h")
	v.SetDefault("MEDIA_MAX_FILE_SIZE", 5*1024*1024)
	v.SetDefault("MEDIA_ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/webp")

	v.SetDefault("ENABLE_EXPORTS", true)

	v.SetDefault("DEFAULT_INSTRUCTOR_NAME", "Bruno Oliveira")
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

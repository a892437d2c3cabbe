package config

import (
	"errors"
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

// Survey storage backends.
const (
	BackendPostgres    = "postgres"
	BackendObjectStore = "objectstore"
)

// Image storage providers.
const (
	ImageProviderLocal = "local"
	ImageProviderMinio = "minio"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Log         LogConfig
	Survey      SurveyConfig
	Images      ImageConfig
	ObjectStore ObjectStoreConfig
	Admin       AdminConfig
	RateLimit   RateLimitConfig
	Cleanup     CleanupConfig
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
	AutoMigrate  bool

	ConnectRetries int
	ConnectBackoff time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// SurveyConfig governs where surveys live and how reads degrade.
type SurveyConfig struct {
	Backend           string
	AllowPartialReads bool
	RequireImage      bool
	CacheEnabled      bool
	CacheTTL          time.Duration
}

// ImageConfig selects and tunes the image store.
type ImageConfig struct {
	Provider       string
	LocalDir       string
	PublicBaseURL  string
	MaxUploadBytes int64
	AllowedMIMEs   []string
}

// ObjectStoreConfig holds S3-compatible connection settings shared by the
// survey blob backend and the MinIO image provider.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Prefix    string
}

// AdminConfig protects the admin portal. PasswordHash wins when both are set.
type AdminConfig struct {
	Password     string
	PasswordHash string
}

// RateLimitConfig bounds submissions per client.
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// CleanupConfig tunes the background image cleanup queue.
type CleanupConfig struct {
	Workers    int
	Retries    int
	RetryDelay time.Duration
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

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),

		ConnectRetries: v.GetInt("DB_CONNECT_RETRIES"),
		ConnectBackoff: parseDuration(v.GetString("DB_CONNECT_BACKOFF"), time.Second),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:      v.GetString("LOG_LEVEL"),
		Format:     v.GetString("LOG_FORMAT"),
		File:       v.GetString("LOG_FILE"),
		MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
		MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
		MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
	}

	cfg.Survey = SurveyConfig{
		Backend:           strings.ToLower(strings.TrimSpace(v.GetString("SURVEY_BACKEND"))),
		AllowPartialReads: v.GetBool("SURVEY_ALLOW_PARTIAL_READS"),
		RequireImage:      v.GetBool("SURVEY_REQUIRE_IMAGE"),
		CacheEnabled:      v.GetBool("SURVEY_CACHE_ENABLED"),
		CacheTTL:          parseDuration(v.GetString("SURVEY_CACHE_TTL"), 2*time.Minute),
	}

	maxUpload := v.GetInt64("IMAGE_MAX_UPLOAD_BYTES")
	if maxUpload <= 0 {
		maxUpload = 5 * 1024 * 1024
	}
	cfg.Images = ImageConfig{
		Provider:       strings.ToLower(strings.TrimSpace(v.GetString("IMAGE_PROVIDER"))),
		LocalDir:       v.GetString("IMAGE_LOCAL_DIR"),
		PublicBaseURL:  strings.TrimRight(v.GetString("IMAGE_PUBLIC_BASE_URL"), "/"),
		MaxUploadBytes: maxUpload,
		AllowedMIMEs:   splitAndTrim(v.GetString("IMAGE_ALLOWED_MIME_TYPES")),
	}

	cfg.ObjectStore = ObjectStoreConfig{
		Endpoint:  v.GetString("MINIO_ENDPOINT"),
		AccessKey: v.GetString("MINIO_ACCESS_KEY"),
		SecretKey: v.GetString("MINIO_SECRET_KEY"),
		Bucket:    v.GetString("MINIO_BUCKET"),
		UseSSL:    v.GetBool("MINIO_USE_SSL"),
		Prefix:    strings.Trim(v.GetString("MINIO_SURVEY_PREFIX"), "/"),
	}

	cfg.Admin = AdminConfig{
		Password:     v.GetString("ADMIN_PASSWORD"),
		PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
	}

	cfg.RateLimit = RateLimitConfig{
		Enabled:  v.GetBool("RATE_LIMIT_ENABLED"),
		Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
		Window:   parseDuration(v.GetString("RATE_LIMIT_WINDOW"), time.Minute),
	}

	cfg.Cleanup = CleanupConfig{
		Workers:    v.GetInt("IMAGE_CLEANUP_WORKERS"),
		Retries:    v.GetInt("IMAGE_CLEANUP_RETRIES"),
		RetryDelay: parseDuration(v.GetString("IMAGE_CLEANUP_RETRY_DELAY"), 5*time.Second),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "survey_platform")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("DB_CONNECT_RETRIES", 5)
	v.SetDefault("DB_CONNECT_BACKOFF", "1s")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("JWT_ISSUER", "survey-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 5)
	v.SetDefault("LOG_MAX_AGE_DAYS", 30)

	v.SetDefault("SURVEY_BACKEND", BackendPostgres)
	v.SetDefault("SURVEY_ALLOW_PARTIAL_READS", true)
	v.SetDefault("SURVEY_REQUIRE_IMAGE", false)
	v.SetDefault("SURVEY_CACHE_ENABLED", true)
	v.SetDefault("SURVEY_CACHE_TTL", "2m")

	v.SetDefault("IMAGE_PROVIDER", ImageProviderLocal)
	v.SetDefault("IMAGE_LOCAL_DIR", "./uploads")
	v.SetDefault("IMAGE_PUBLIC_BASE_URL", "/uploads")
	v.SetDefault("IMAGE_MAX_UPLOAD_BYTES", 5*1024*1024)
	v.SetDefault("IMAGE_ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/gif,image/webp")

	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "survey-platform")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_SURVEY_PREFIX", "survey_platform")

	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")

	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_REQUESTS", 20)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")

	v.SetDefault("IMAGE_CLEANUP_WORKERS", 1)
	v.SetDefault("IMAGE_CLEANUP_RETRIES", 3)
	v.SetDefault("IMAGE_CLEANUP_RETRY_DELAY", "5s")
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

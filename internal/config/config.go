package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rohits-web03/sharelink/internal/utils"
	"github.com/rs/cors"
	"gopkg.in/yaml.v3"
)

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or postgres
	URL    string `yaml:"url"`
}

type StorageConfig struct {
	Backend              string   `yaml:"backend"` // local or r2
	Path                 string   `yaml:"path"`
	MaxFileSize          int64    `yaml:"max_file_size"`
	ChunkSize            int64    `yaml:"chunk_size"`
	AllowedMimeTypes     []string `yaml:"allowed_mime_types"`
	ChunkSessionTTLHours int      `yaml:"chunk_session_ttl_hours"`
}

type RetentionConfig struct {
	DefaultExpirationDays int `yaml:"default_expiration_days"`
	CleanupIntervalHours  int `yaml:"cleanup_interval_hours"`
	AuditLogDays          int `yaml:"audit_log_days"`
}

type LinksConfig struct {
	DefaultExpirationDays int `yaml:"default_expiration_days"`
	TokenLength           int `yaml:"token_length"`
}

type SharedVolumeConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Path     string `yaml:"path"`
	ReadOnly bool   `yaml:"read_only"`
	MaxDepth int    `yaml:"max_depth"`
}

type AuthConfig struct {
	Enabled             bool   `yaml:"enabled"`
	AdminPassword       string `yaml:"admin_password"`
	JWTSecret           string `yaml:"jwt_secret"`
	SessionTimeoutHours int    `yaml:"session_timeout_hours"`
}

type R2Config struct {
	AccountID       string `yaml:"account_id"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	BucketName      string `yaml:"bucket_name"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
}

type Config struct {
	Port          string             `yaml:"port"`
	Environment   string             `yaml:"environment"`
	BaseURL       string             `yaml:"base_url"`
	UploadEnabled bool               `yaml:"upload_enabled"`
	CorsOrigins   []string           `yaml:"cors_allowed_origins"`
	Log           LogConfig          `yaml:"log"`
	Database      DatabaseConfig     `yaml:"database"`
	Storage       StorageConfig      `yaml:"storage"`
	Retention     RetentionConfig    `yaml:"retention"`
	Links         LinksConfig        `yaml:"links"`
	Shared        SharedVolumeConfig `yaml:"shared_volume"`
	Auth          AuthConfig         `yaml:"auth"`
	R2            R2Config           `yaml:"r2"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:          "8080",
		Environment:   "development",
		UploadEnabled: true,
		CorsOrigins:   []string{"http://localhost:5173"},
		Log:           LogConfig{Level: "info", Format: "text"},
		Database:      DatabaseConfig{Driver: "sqlite"},
		Storage: StorageConfig{
			Backend:              "local",
			Path:                 "./storage",
			MaxFileSize:          5 << 30,
			ChunkSize:            5 << 20,
			ChunkSessionTTLHours: 24,
		},
		Retention: RetentionConfig{DefaultExpirationDays: 7, CleanupIntervalHours: 1, AuditLogDays: 90},
		Links:     LinksConfig{DefaultExpirationDays: 7, TokenLength: 32},
		Shared:    SharedVolumeConfig{ReadOnly: true, MaxDepth: 10},
		Auth:      AuthConfig{SessionTimeoutHours: 24},
		R2:        R2Config{Region: "auto"},
	}
}

// Load builds the configuration from defaults, an optional YAML file
// (CONFIG_FILE), a dotenv file (ENV_FILE, default .env) and the process
// environment, in that order, then validates it.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	// a missing dotenv file is normal outside development
	_ = godotenv.Load(envFile)

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.finalize(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var errs []error
	p := envParser{errs: &errs}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("ENV", cfg.Environment)
	cfg.BaseURL = getEnv("BASE_URL", cfg.BaseURL)
	cfg.CorsOrigins = p.listVar("CORS_ALLOWED_ORIGINS", cfg.CorsOrigins)
	// uploads stay on unless explicitly switched off
	if v, ok := os.LookupEnv("UPLOAD_ENABLED"); ok {
		cfg.UploadEnabled = strings.TrimSpace(v) != "false"
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.URL = getEnv("DB_URL", cfg.Database.URL)

	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.Path = getEnv("STORAGE_PATH", cfg.Storage.Path)
	cfg.Storage.MaxFileSize = p.int64Var("MAX_FILE_SIZE", cfg.Storage.MaxFileSize)
	cfg.Storage.ChunkSize = p.int64Var("CHUNK_SIZE", cfg.Storage.ChunkSize)
	cfg.Storage.AllowedMimeTypes = p.listVar("ALLOWED_MIME_TYPES", cfg.Storage.AllowedMimeTypes)
	cfg.Storage.ChunkSessionTTLHours = p.intVar("CHUNK_SESSION_TTL_HOURS", cfg.Storage.ChunkSessionTTLHours)

	cfg.Retention.DefaultExpirationDays = p.intVar("DEFAULT_EXPIRATION_DAYS", cfg.Retention.DefaultExpirationDays)
	cfg.Retention.CleanupIntervalHours = p.intVar("CLEANUP_INTERVAL_HOURS", cfg.Retention.CleanupIntervalHours)
	cfg.Retention.AuditLogDays = p.intVar("AUDIT_RETENTION_DAYS", cfg.Retention.AuditLogDays)

	cfg.Links.DefaultExpirationDays = p.intVar("LINK_EXPIRATION_DAYS", cfg.Links.DefaultExpirationDays)
	cfg.Links.TokenLength = p.intVar("LINK_TOKEN_LENGTH", cfg.Links.TokenLength)

	cfg.Shared.Enabled = p.boolVar("SHARED_VOLUME_ENABLED", cfg.Shared.Enabled)
	cfg.Shared.Path = getEnv("SHARED_VOLUME_PATH", cfg.Shared.Path)
	cfg.Shared.ReadOnly = p.boolVar("SHARED_VOLUME_READ_ONLY", cfg.Shared.ReadOnly)
	cfg.Shared.MaxDepth = p.intVar("SHARED_VOLUME_MAX_DEPTH", cfg.Shared.MaxDepth)

	cfg.Auth.Enabled = p.boolVar("AUTH_ENABLED", cfg.Auth.Enabled)
	cfg.Auth.AdminPassword = getEnv("ADMIN_PASSWORD", cfg.Auth.AdminPassword)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.SessionTimeoutHours = p.intVar("SESSION_TIMEOUT_HOURS", cfg.Auth.SessionTimeoutHours)

	cfg.R2.AccountID = getEnv("R2_ACCOUNT_ID", cfg.R2.AccountID)
	cfg.R2.AccessKeyID = getEnv("R2_ACCESS_KEY_ID", cfg.R2.AccessKeyID)
	cfg.R2.SecretAccessKey = getEnv("R2_SECRET_ACCESS_KEY", cfg.R2.SecretAccessKey)
	cfg.R2.BucketName = getEnv("R2_BUCKET_NAME", cfg.R2.BucketName)
	cfg.R2.Region = getEnv("R2_REGION", cfg.R2.Region)
	cfg.R2.Endpoint = getEnv("R2_ENDPOINT", cfg.R2.Endpoint)

	return errors.Join(errs...)
}

// finalize fills values derived from other settings.
func (c *Config) finalize() error {
	if c.Database.Driver == "sqlite" && c.Database.URL == "" {
		c.Database.URL = filepath.Join(c.Storage.Path, "sharelink.db")
	}
	if c.Auth.JWTSecret == "" {
		secret, err := utils.GenerateSecureToken(48)
		if err != nil {
			return fmt.Errorf("generate session secret: %w", err)
		}
		c.Auth.JWTSecret = secret
	}
	return nil
}

// Validate reports every setting that would prevent the server from running.
func (c Config) Validate() error {
	var errs []error
	if c.Auth.Enabled && c.Auth.AdminPassword == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD is required when AUTH_ENABLED=true"))
	}
	if c.Shared.Enabled && c.Shared.Path == "" {
		errs = append(errs, errors.New("SHARED_VOLUME_PATH is required when SHARED_VOLUME_ENABLED=true"))
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}
	if c.Database.Driver == "postgres" && c.Database.URL == "" {
		errs = append(errs, errors.New("DB_URL is required for postgres"))
	}
	switch c.Storage.Backend {
	case "local":
	case "r2":
		if c.R2.BucketName == "" || c.R2.AccessKeyID == "" || c.R2.SecretAccessKey == "" {
			errs = append(errs, errors.New("R2_BUCKET_NAME, R2_ACCESS_KEY_ID and R2_SECRET_ACCESS_KEY are required for the r2 backend"))
		}
		if c.R2.AccountID == "" && c.R2.Endpoint == "" {
			errs = append(errs, errors.New("R2_ACCOUNT_ID or R2_ENDPOINT is required for the r2 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_BACKEND %q", c.Storage.Backend))
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("STORAGE_PATH must not be empty"))
	}
	if c.Storage.MaxFileSize <= 0 || c.Storage.ChunkSize <= 0 {
		errs = append(errs, errors.New("MAX_FILE_SIZE and CHUNK_SIZE must be positive"))
	}
	if c.Retention.DefaultExpirationDays <= 0 || c.Links.DefaultExpirationDays <= 0 {
		errs = append(errs, errors.New("expiration days must be positive"))
	}
	if c.Retention.CleanupIntervalHours <= 0 || c.Storage.ChunkSessionTTLHours <= 0 {
		errs = append(errs, errors.New("CLEANUP_INTERVAL_HOURS and CHUNK_SESSION_TTL_HOURS must be positive"))
	}
	if c.Retention.AuditLogDays <= 0 {
		errs = append(errs, errors.New("AUDIT_RETENTION_DAYS must be positive"))
	}
	if c.Links.TokenLength < 16 {
		errs = append(errs, errors.New("LINK_TOKEN_LENGTH must be at least 16"))
	}
	if c.Shared.MaxDepth < 0 {
		errs = append(errs, errors.New("SHARED_VOLUME_MAX_DEPTH must not be negative"))
	}
	if c.Auth.SessionTimeoutHours <= 0 {
		errs = append(errs, errors.New("SESSION_TIMEOUT_HOURS must be positive"))
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("invalid PORT %q", c.Port))
	}
	return errors.Join(errs...)
}

func (c Config) IsProduction() bool { return c.Environment == "production" }

func (c Config) FileRetention() time.Duration {
	return time.Duration(c.Retention.DefaultExpirationDays) * 24 * time.Hour
}

func (c Config) LinkExpiration() time.Duration {
	return time.Duration(c.Links.DefaultExpirationDays) * 24 * time.Hour
}

func (c Config) CleanupInterval() time.Duration {
	return time.Duration(c.Retention.CleanupIntervalHours) * time.Hour
}

func (c Config) AuditRetention() time.Duration {
	return time.Duration(c.Retention.AuditLogDays) * 24 * time.Hour
}

func (c Config) ChunkSessionTTL() time.Duration {
	return time.Duration(c.Storage.ChunkSessionTTLHours) * time.Hour
}

func (c Config) SessionTimeout() time.Duration {
	return time.Duration(c.Auth.SessionTimeoutHours) * time.Hour
}

// MaxChunkBytes is the largest chunk body accepted, leaving 10% headroom over CHUNK_SIZE.
func (c Config) MaxChunkBytes() int64 {
	return c.Storage.ChunkSize + c.Storage.ChunkSize/10
}

func (c Config) CorsOptions() cors.Options {
	return cors.Options{
		AllowedOrigins:   c.CorsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Disposition", "Content-Range", "Accept-Ranges", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
	}
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// envParser collects conversion errors instead of stopping at the first one.
type envParser struct {
	errs *[]error
}

func (p envParser) intVar(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (p envParser) int64Var(key string, fallback int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (p envParser) boolVar(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func (p envParser) listVar(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

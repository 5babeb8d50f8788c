package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string  `mapstructure:"listen_addr"`
	Port              string  `mapstructure:"port"`
	GinMode           string  `mapstructure:"gin_mode"`
	LogLevel          string  `mapstructure:"log_level"`
	DatabaseDriver    string  `mapstructure:"database_driver"`
	DatabaseDSN       string  `mapstructure:"database_dsn"`
	SessionSecret     string  `mapstructure:"session_secret"`
	UploadDir         string  `mapstructure:"upload_dir"`
	MediaURLPath      string  `mapstructure:"media_url_path"`
	StorageBackend    string  `mapstructure:"storage_backend"`
	MinIO             MinIO   `mapstructure:"minio"`
	ClamdAddr         string  `mapstructure:"clamd_addr"`
	CORSAllowOrigins  string  `mapstructure:"cors_allow_origins"`
	ContactRateLimit  float64 `mapstructure:"contact_rate_limit"`
	ContactRateBurst  int     `mapstructure:"contact_rate_burst"`
	CVDownloadName    string  `mapstructure:"cv_download_name"`
	TrustedProxies    string  `mapstructure:"trusted_proxies"`
	SuperRootUserName string  `mapstructure:"super_root_user_name"`
	SuperRootPassword string  `mapstructure:"super_root_password"`
	SeedOnStart       bool    `mapstructure:"seed_on_start"`
}

// MinIO contains connection options for MinIO/S3-compatible media storage.
type MinIO struct {
	Endpoint         string `mapstructure:"endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

const (
	StorageLocal = "local"
	StorageMinIO = "minio"
)

var supportedDrivers = []string{"sqlite", "postgres", "mysql"}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	if err := bindEnv(v); err != nil {
		return AppConfig{}, fmt.Errorf("bind env: %w", err)
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() AppConfig {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// CORSOrigins splits the comma separated origin list.
func (c AppConfig) CORSOrigins() []string {
	return splitList(c.CORSAllowOrigins)
}

// TrustedProxyList splits the comma separated proxy list.
func (c AppConfig) TrustedProxyList() []string {
	return splitList(c.TrustedProxies)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("listen_addr", "")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("log_level", "info")
	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_dsn", "folio.db")
	v.SetDefault("session_secret", "folio-dev-secret")
	v.SetDefault("upload_dir", "web/static/uploads")
	v.SetDefault("media_url_path", "/media")
	v.SetDefault("storage_backend", StorageLocal)
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "folio")
	v.SetDefault("minio.region", "")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("clamd_addr", "")
	v.SetDefault("cors_allow_origins", "*")
	v.SetDefault("contact_rate_limit", 0.2)
	v.SetDefault("contact_rate_burst", 3)
	v.SetDefault("cv_download_name", "")
	v.SetDefault("trusted_proxies", "")
	v.SetDefault("super_root_user_name", "")
	v.SetDefault("super_root_password", "")
	v.SetDefault("seed_on_start", false)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"listen_addr":              "LISTEN_ADDR",
		"port":                     "PORT",
		"gin_mode":                 "GIN_MODE",
		"log_level":                "LOG_LEVEL",
		"database_driver":          "DATABASE_DRIVER",
		"database_dsn":             "DATABASE_DSN",
		"session_secret":           "SESSION_SECRET",
		"upload_dir":               "UPLOAD_DIR",
		"media_url_path":           "MEDIA_URL_PATH",
		"storage_backend":          "STORAGE_BACKEND",
		"minio.endpoint":           "MINIO_ENDPOINT",
		"minio.access_key_id":      "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":  "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":            "MINIO_USE_SSL",
		"minio.bucket":             "MINIO_BUCKET",
		"minio.region":             "MINIO_REGION",
		"minio.auto_create_bucket": "MINIO_AUTO_CREATE_BUCKET",
		"clamd_addr":               "CLAMD_ADDR",
		"cors_allow_origins":       "CORS_ALLOW_ORIGINS",
		"contact_rate_limit":       "CONTACT_RATE_LIMIT",
		"contact_rate_burst":       "CONTACT_RATE_BURST",
		"cv_download_name":         "CV_DOWNLOAD_NAME",
		"trusted_proxies":          "TRUSTED_PROXIES",
		"super_root_user_name":     "SUPER_ROOT_USER_NAME",
		"super_root_password":      "SUPER_ROOT_PASSWORD",
		"seed_on_start":            "SEED_ON_START",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}
	return nil
}

func (c *AppConfig) normalize() {
	c.Port = strings.TrimSpace(c.Port)
	if c.Port == "" {
		c.Port = "8080"
	}
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	}
	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))

	mediaPath := "/" + strings.Trim(strings.TrimSpace(c.MediaURLPath), "/")
	if mediaPath == "/" {
		mediaPath = "/media"
	}
	c.MediaURLPath = mediaPath
}

func (c AppConfig) validate() error {
	driverOK := false
	for _, driver := range supportedDrivers {
		if c.DatabaseDriver == driver {
			driverOK = true
			break
		}
	}
	if !driverOK {
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		return errors.New("database dsn is required")
	}

	switch c.StorageBackend {
	case StorageLocal:
		if strings.TrimSpace(c.UploadDir) == "" {
			return errors.New("upload dir is required for local storage")
		}
	case StorageMinIO:
		if c.MinIO.Endpoint == "" {
			return errors.New("minio endpoint is required")
		}
		if c.MinIO.AccessKeyID == "" || c.MinIO.SecretAccessKey == "" {
			return errors.New("minio credentials are required")
		}
		if c.MinIO.Bucket == "" {
			return errors.New("minio bucket is required")
		}
	default:
		return fmt.Errorf("unsupported storage backend %q", c.StorageBackend)
	}

	if c.ContactRateLimit < 0 || c.ContactRateBurst < 0 {
		return errors.New("contact rate limit must not be negative")
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
)

// DefaultUploadLimit is the per-file and aggregate upload budget (1 GiB).
const DefaultUploadLimit int64 = 1 << 30

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string `toml:"host"`
	Port               string `toml:"port"`
	User               string `toml:"user"`
	Password           string `toml:"password"`
	Name               string `toml:"name"`
	SSLMode            string `toml:"sslmode"`
	MaxOpenConns       int    `toml:"max_open_conns"`
	MaxIdleConns       int    `toml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `toml:"conn_max_lifetime_sec"`
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint      string `toml:"endpoint"`
	AccessKey     string `toml:"access_key"`
	SecretKey     string `toml:"secret_key"`
	Bucket        string `toml:"bucket"`
	UseSSL        bool   `toml:"use_ssl"`
	PresignTTLSec int    `toml:"presign_ttl_sec"`
}

// UploadConfig controls the ingestion endpoint.
type UploadConfig struct {
	MaxFileSize  int64  `toml:"max_file_size"`
	MaxTotalSize int64  `toml:"max_total_size"`
	TempDir      string `toml:"temp_dir"`
	Workers      int    `toml:"workers"`
	APIKey       string `toml:"api_key"`
}

// RedisConfig is optional; an empty Addr disables the bus list cache.
type RedisConfig struct {
	Addr        string `toml:"addr"`
	Password    string `toml:"password"`
	DB          int    `toml:"db"`
	BusesTTLSec int    `toml:"buses_ttl_sec"`
}

// AppConfig is the centralized configuration struct for the application.
// Defaults are overlaid by an optional TOML file (CONFIG_FILE), then by environment variables.
type AppConfig struct {
	AppHost  string         `toml:"app_host"`
	Port     string         `toml:"port"`
	Database DatabaseConfig `toml:"database"`
	MinIO    MinIOConfig    `toml:"minio"`
	Upload   UploadConfig   `toml:"upload"`
	Redis    RedisConfig    `toml:"redis"`
}

// Load reads configuration. A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Neither the .env file nor the TOML file is required; real environment variables take precedence.
func Load() (*AppConfig, error) {
	cfg := defaultConfig()

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("decode config file %s: %w", path, err)
			}
		}
	}

	overrideByEnv(cfg)
	return cfg, nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		AppHost: "localhost:8080",
		Port:    "8080",
		Database: DatabaseConfig{
			Port:               "5432",
			SSLMode:            "disable",
			MaxOpenConns:       10,
			MaxIdleConns:       5,
			ConnMaxLifetimeSec: 300,
		},
		MinIO: MinIOConfig{
			PresignTTLSec: 3600,
		},
		Upload: UploadConfig{
			MaxFileSize:  DefaultUploadLimit,
			MaxTotalSize: DefaultUploadLimit,
			TempDir:      os.TempDir(),
			Workers:      1,
		},
		Redis: RedisConfig{
			BusesTTLSec: 60,
		},
	}
}

func overrideByEnv(cfg *AppConfig) {
	cfg.AppHost = getEnv("APP_HOST", cfg.AppHost)
	cfg.Port = getEnv("PORT", cfg.Port)

	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.ConnMaxLifetimeSec = getEnvInt("DB_CONN_MAX_LIFETIME_SEC", cfg.Database.ConnMaxLifetimeSec)

	cfg.MinIO.Endpoint = getEnv("MINIO_ENDPOINT", cfg.MinIO.Endpoint)
	cfg.MinIO.AccessKey = getEnv("MINIO_ACCESS_KEY", cfg.MinIO.AccessKey)
	cfg.MinIO.SecretKey = getEnv("MINIO_SECRET_KEY", cfg.MinIO.SecretKey)
	cfg.MinIO.Bucket = getEnv("MINIO_BUCKET", cfg.MinIO.Bucket)
	cfg.MinIO.UseSSL = getEnvBool("MINIO_USE_SSL", cfg.MinIO.UseSSL)
	cfg.MinIO.PresignTTLSec = getEnvInt("MINIO_PRESIGN_TTL_SEC", cfg.MinIO.PresignTTLSec)

	cfg.Upload.MaxFileSize = getEnvBytes("UPLOAD_MAX_FILE_SIZE", cfg.Upload.MaxFileSize)
	cfg.Upload.MaxTotalSize = getEnvBytes("UPLOAD_MAX_TOTAL_SIZE", cfg.Upload.MaxTotalSize)
	cfg.Upload.TempDir = getEnv("UPLOAD_TEMP_DIR", cfg.Upload.TempDir)
	cfg.Upload.Workers = getEnvInt("INGEST_WORKERS", cfg.Upload.Workers)
	cfg.Upload.APIKey = getEnv("UPLOAD_API_KEY", cfg.Upload.APIKey)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.BusesTTLSec = getEnvInt("REDIS_BUSES_TTL_SECONDS", cfg.Redis.BusesTTLSec)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvBytes accepts plain byte counts as well as human sizes ("100MB", "1GiB").
func getEnvBytes(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		n, err := humanize.ParseBytes(v)
		if err == nil && n > 0 {
			return int64(n)
		}
	}
	return def
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// MongoDB holds media metadata and, with the gridfs backend, the binaries
	MongoDB MongoDBConfig `json:"mongodb"`

	// Database Configuration (MySQL social graph)
	Database DatabaseConfig `json:"database"`

	Storage StorageConfig `json:"storage"`

	Upload UploadConfig `json:"upload"`

	Auth AuthConfig `json:"auth"`

	// Firebase Configuration
	Firebase FirebaseConfig `json:"firebase"`

	Gemini GeminiConfig `json:"gemini"`

	Feed FeedConfig `json:"feed"`

	// Logging Configuration
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port          string        `json:"port"`
	Host          string        `json:"host"`
	ReadTimeout   time.Duration `json:"read_timeout"`
	WriteTimeout  time.Duration `json:"write_timeout"`
	PublicBaseURL string        `json:"public_base_url"` // empty means derive from the request
	Environment   string        `json:"environment"`     // development, staging, production
}

// MongoDBConfig contains the document store connection settings
type MongoDBConfig struct {
	URI            string        `json:"-"` // overrides the discrete fields when set
	Host           string        `json:"host"`
	Port           string        `json:"port"`
	Username       string        `json:"username"`
	Password       string        `json:"password"`
	Database       string        `json:"database"`
	BucketName     string        `json:"bucket_name"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

// StorageConfig selects where uploaded binaries live
type StorageConfig struct {
	Backend     string `json:"backend"` // gridfs, s3
	S3Bucket    string `json:"s3_bucket"`
	S3Region    string `json:"s3_region"`
	S3Endpoint  string `json:"s3_endpoint"`
	S3AccessKey string `json:"-"`
	S3SecretKey string `json:"-"`
}

type UploadConfig struct {
	TempDir       string `json:"temp_dir"`
	ImageMaxBytes int64  `json:"image_max_bytes"`
	AudioMaxBytes int64  `json:"audio_max_bytes"`
}

type AuthConfig struct {
	Provider  string `json:"provider"` // firebase, jwt
	JWTSecret string `json:"-"`
	JWTIssuer string `json:"jwt_issuer"`
}

// FirebaseConfig contains Firebase Admin configuration used for ID token checks
type FirebaseConfig struct {
	ProjectID           string `json:"project_id"`
	CredentialsFilePath string `json:"credentials_file_path"`
}

type GeminiConfig struct {
	APIKey  string        `json:"-"`
	BaseURL string        `json:"base_url"`
	Model   string        `json:"model"`
	Timeout time.Duration `json:"timeout"`

	// circuit breaker
	BreakerFailures uint32        `json:"breaker_failures"`
	BreakerCooldown time.Duration `json:"breaker_cooldown"`

	// per-user requests per minute
	RatePerMinute int `json:"rate_per_minute"`
}

type FeedConfig struct {
	Limit             int           `json:"limit"`
	CorrelationWindow time.Duration `json:"correlation_window"`
	Concurrency       int           `json:"concurrency"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, console; empty follows the environment
}

func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          getEnv("SERVER_PORT", "5000"),
			Host:          getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:   getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:  getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
			Environment:   getEnv("APP_ENV", "development"),
		},
		MongoDB: MongoDBConfig{
			URI:            getEnv("MONGODB_URI", ""),
			Host:           getEnv("MONGO_HOST", "localhost"),
			Port:           getEnv("MONGO_PORT", "27017"),
			Username:       getEnv("MONGO_USERNAME", ""),
			Password:       getEnv("MONGO_PASSWORD", ""),
			Database:       getEnv("MONGO_DATABASE", "travelgram"),
			BucketName:     getEnv("GRIDFS_BUCKET", "uploads"),
			ConnectTimeout: getEnvAsDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("MYSQL_HOST", "localhost"),
			Port:         getEnv("MYSQL_PORT", "3306"),
			Username:     getEnv("MYSQL_USERNAME", "travelgram"),
			Password:     getEnv("MYSQL_PASSWORD", "travelgram"),
			DatabaseName: getEnv("MYSQL_DATABASE", "travelgram"),
			MaxOpenConns: getEnvAsInt("MYSQL_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("MYSQL_MAX_IDLE_CONNS", 5),
		},
		Storage: StorageConfig{
			Backend:     strings.ToLower(getEnv("STORAGE_BACKEND", "gridfs")),
			S3Bucket:    getEnv("S3_BUCKET", "uploads"),
			S3Region:    getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:  getEnv("S3_ENDPOINT", ""),
			S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		},
		Upload: UploadConfig{
			TempDir:       getEnv("UPLOAD_TEMP_DIR", os.TempDir()),
			ImageMaxBytes: int64(getEnvAsInt("IMAGE_MAX_BYTES", 5*1024*1024)),
			AudioMaxBytes: int64(getEnvAsInt("AUDIO_MAX_BYTES", 10*1024*1024)),
		},
		Auth: AuthConfig{
			Provider:  strings.ToLower(getEnv("AUTH_PROVIDER", "firebase")),
			JWTSecret: getEnv("JWT_SECRET", ""),
			JWTIssuer: getEnv("JWT_ISSUER", ""),
		},
		Firebase: FirebaseConfig{
			ProjectID:           getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsFilePath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		Gemini: GeminiConfig{
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			BaseURL:         strings.TrimRight(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"), "/"),
			Model:           getEnv("GEMINI_MODEL", "gemini-1.5-pro"),
			Timeout:         getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
			BreakerFailures: uint32(getEnvAsInt("GEMINI_BREAKER_FAILURES", 5)),
			BreakerCooldown: getEnvAsDuration("GEMINI_BREAKER_COOLDOWN", 30*time.Second),
			RatePerMinute:   getEnvAsInt("GEMINI_RATE_PER_MINUTE", 20),
		},
		Feed: FeedConfig{
			Limit:             getEnvAsInt("FEED_LIMIT", 20),
			CorrelationWindow: getEnvAsDuration("FEED_CORRELATION_WINDOW", 60*time.Second),
			Concurrency:       getEnvAsInt("FEED_CONCURRENCY", 8),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", ""),
		},
	}
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func (cfg *Config) GetMongoURI() string {
	if cfg.MongoDB.URI != "" {
		return cfg.MongoDB.URI
	}
	if cfg.MongoDB.Username != "" && cfg.MongoDB.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin",
			cfg.MongoDB.Username,
			cfg.MongoDB.Password,
			cfg.MongoDB.Host,
			cfg.MongoDB.Port,
			cfg.MongoDB.Database,
		)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s", cfg.MongoDB.Host, cfg.MongoDB.Port, cfg.MongoDB.Database)
}

func (cfg *Config) IsDevelopment() bool {
	return cfg.Server.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

// accepts Go durations ("90s") or bare seconds ("90")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

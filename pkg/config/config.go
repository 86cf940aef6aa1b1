package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Queue    QueueConfig
	Storage  StorageConfig
	AI       AIConfig
	Security SecurityConfig
	Upload   UploadConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int32
	AutoMigrate bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type QueueConfig struct {
	// Driver is "redis" or "memory".
	Driver         string
	Name           string
	MaxConcurrency int
	PollTimeout    time.Duration
	BufferSize     int
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

type AIConfig struct {
	// Provider is "placeholder", "gemini" or "gigachat".
	Provider string
	Timeout  time.Duration
	Gemini   GeminiConfig
	GigaChat GigaChatConfig
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

type SecurityConfig struct {
	Enabled    bool
	JWTSecret  string
	TokenTTL   time.Duration
	MockTenant string
}

type UploadConfig struct {
	MaxFileSize     int64
	RatePerMinute   int
	DefaultCurrency string
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables win in containers
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getEnvSeconds("SERVER_READ_TIMEOUT", 30),
			WriteTimeout:    getEnvSeconds("SERVER_WRITE_TIMEOUT", 30),
			ShutdownTimeout: getEnvSeconds("SERVER_SHUTDOWN_TIMEOUT", 30),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "statement_ingest"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    int32(getEnvInt("DB_MAX_CONNS", 10)),
			AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Queue: QueueConfig{
			Driver:         strings.ToLower(getEnv("QUEUE_DRIVER", "redis")),
			Name:           getEnv("QUEUE_NAME", "financas-transacoes-processadas"),
			MaxConcurrency: getEnvInt("QUEUE_MAX_CONCURRENCY", 5),
			PollTimeout:    getEnvSeconds("QUEUE_POLL_TIMEOUT", 20),
			BufferSize:     getEnvInt("QUEUE_BUFFER_SIZE", 100),
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("STORAGE_ENDPOINT", ""),
			AccessKey: getEnv("STORAGE_ACCESS_KEY", "minio"),
			SecretKey: getEnv("STORAGE_SECRET_KEY", "minio123"),
			Bucket:    getEnv("STORAGE_BUCKET", "statements"),
			UseSSL:    getEnvBool("STORAGE_USE_SSL", false),
			Region:    getEnv("STORAGE_REGION", ""),
		},
		AI: AIConfig{
			Provider: strings.ToLower(getEnv("AI_PROVIDER", "placeholder")),
			Timeout:  getEnvSeconds("AI_TIMEOUT", 60),
			Gemini: GeminiConfig{
				APIKey: getEnv("GEMINI_API_KEY", ""),
				Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			},
			GigaChat: GigaChatConfig{
				APIKey:             getEnv("GIGACHAT_API_KEY", ""),
				Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
				Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
				InsecureSkipVerify: getEnvBool("GIGACHAT_INSECURE_SKIP_VERIFY", false),
			},
		},
		Security: SecurityConfig{
			Enabled:    getEnvBool("SECURITY_ENABLED", false),
			JWTSecret:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			TokenTTL:   getEnvSeconds("JWT_TOKEN_TTL", 86400),
			MockTenant: getEnv("SECURITY_MOCK_TENANT", "local-user"),
		},
		Upload: UploadConfig{
			MaxFileSize:     int64(getEnvInt("UPLOAD_MAX_FILE_SIZE", 52428800)),
			RatePerMinute:   getEnvInt("UPLOAD_RATE_PER_MINUTE", 10),
			DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", "BRL")),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvSeconds accepts either a bare number of seconds or a Go duration string.
func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return time.Duration(defaultSeconds) * time.Second
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return time.Duration(defaultSeconds) * time.Second
}

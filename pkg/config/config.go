package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// SQLite (점포별 파일)
	SQLite SQLiteConfig

	// Store 선택
	Store StoreConfig

	// Engine
	Engine EngineConfig

	// Association boost
	Association AssociationConfig

	// Accuracy feedback
	Feedback FeedbackConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// SQLiteConfig 점포별 SQLite 파일 위치
type SQLiteConfig struct {
	Dir           string
	BusyTimeoutMS int
}

// StoreConfig 시계열 저장소 선택
type StoreConfig struct {
	Backend  string   // postgres, sqlite, memory
	StoreIDs []string // 배치 대상 점포
}

// EngineConfig 예측 엔진 설정
type EngineConfig struct {
	CategoryConfigPath string        // 카테고리 프로파일 YAML (비어 있으면 내장 기본값)
	CacheTTL           time.Duration // 연관 규칙/트리거 캐시 TTL
	OrderUnitDefault   int
}

// AssociationConfig 연관 부스트 설정
type AssociationConfig struct {
	Enabled       bool
	MinLift       float64
	MinConfidence float64
	MaxBoost      float64
	LookbackDays  int
}

// FeedbackConfig 정확도 추적 전달 설정
type FeedbackConfig struct {
	Enabled      bool
	KafkaBrokers []string
	KafkaTopic   string
}

// SchedulerConfig 일일 배치 스케줄
type SchedulerConfig struct {
	PredictionCron string
	AccuracyCron   string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "ordercast"),
			User:            getEnv("DB_USER", "ordercast"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		SQLite: SQLiteConfig{
			Dir:           getEnv("SQLITE_DIR", "data/stores"),
			BusyTimeoutMS: getEnvAsInt("SQLITE_BUSY_TIMEOUT_MS", 10000),
		},

		Store: StoreConfig{
			Backend:  strings.ToLower(getEnv("STORE_BACKEND", BackendSQLite)),
			StoreIDs: getEnvAsList("STORE_IDS", nil),
		},

		Engine: EngineConfig{
			CategoryConfigPath: getEnv("CATEGORY_CONFIG_PATH", ""),
			CacheTTL:           getEnvAsDuration("CACHE_TTL", "300s"),
			OrderUnitDefault:   getEnvAsInt("ORDER_UNIT_DEFAULT", 1),
		},

		Association: AssociationConfig{
			Enabled:       getEnvAsBool("ASSOCIATION_ENABLED", true),
			MinLift:       getEnvAsFloat("ASSOCIATION_MIN_LIFT", 1.2),
			MinConfidence: getEnvAsFloat("ASSOCIATION_MIN_CONFIDENCE", 0.3),
			MaxBoost:      getEnvAsFloat("ASSOCIATION_MAX_BOOST", 1.15),
			LookbackDays:  getEnvAsInt("ASSOCIATION_LOOKBACK_DAYS", 3),
		},

		Feedback: FeedbackConfig{
			Enabled:      getEnvAsBool("FEEDBACK_ENABLED", false),
			KafkaBrokers: getEnvAsList("KAFKA_BROKERS", nil),
			KafkaTopic:   getEnv("KAFKA_TOPIC", "ordercast.predictions"),
		},

		Scheduler: SchedulerConfig{
			PredictionCron: getEnv("SCHEDULE_CRON", "0 0 6 * * *"),
			AccuracyCron:   getEnv("ACCURACY_CRON", "0 30 5 * * *"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Store.Backend {
	case BackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendSQLite:
		if c.SQLite.Dir == "" {
			return fmt.Errorf("SQLITE_DIR is required for the sqlite backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of: postgres, sqlite, memory")
	}

	a := c.Association
	if a.MinLift < 1 {
		return fmt.Errorf("ASSOCIATION_MIN_LIFT must be >= 1, got %v", a.MinLift)
	}
	if a.MinConfidence < 0 || a.MinConfidence > 1 {
		return fmt.Errorf("ASSOCIATION_MIN_CONFIDENCE must be within [0, 1], got %v", a.MinConfidence)
	}
	if a.MaxBoost < 1 {
		return fmt.Errorf("ASSOCIATION_MAX_BOOST must be >= 1, got %v", a.MaxBoost)
	}
	if a.LookbackDays < 1 {
		return fmt.Errorf("ASSOCIATION_LOOKBACK_DAYS must be >= 1, got %d", a.LookbackDays)
	}

	if c.Engine.OrderUnitDefault < 1 {
		return fmt.Errorf("ORDER_UNIT_DEFAULT must be >= 1")
	}
	if c.Feedback.Enabled && len(c.Feedback.KafkaBrokers) == 0 && c.Store.Backend != BackendPostgres {
		return fmt.Errorf("FEEDBACK_ENABLED needs KAFKA_BROKERS or the postgres backend")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList 쉼표 구분 목록 (빈 항목 제거)
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

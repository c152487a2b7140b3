package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	Database DatabaseConfig
	Redis    RedisConfig
	NSE      NSEConfig
	Engine   EngineConfig

	// SymbolsFile points at the per-symbol YAML (strike step, range, expiries)
	SymbolsFile string

	// Logging
	LogLevel      string
	LogFormat     string
	LogFile       string // empty = stdout only
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
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
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// NSEConfig holds the option-chain / volatility index endpoints
type NSEConfig struct {
	BaseURL        string
	VIXURL         string
	VIXFallbackURL string // HTML page scraped when the JSON endpoint fails
	UserAgent      string
	RequestsPerSec float64
	Burst          int
	Timeout        time.Duration
	MaxRetries     int
	// SharedRateLimit throttles through Redis so several workers share one budget
	SharedRateLimit bool
}

// EngineConfig holds signal derivation defaults
type EngineConfig struct {
	DefaultStrikeRange int
	DefaultStrikeStep  int
	TopExpiryCount     int
	Schedule           string // 6-field cron (seconds precision)
	Concurrency        int
	StatelessFallback  bool
	RetryDelay         time.Duration // pause before the per-symbol retry
	SupportStateTTL    time.Duration
	Retention          time.Duration
	RetentionSchedule  string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit .env file; empty searches the default locations
func LoadFrom(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		loadEnvFile()
	}

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		NSE: NSEConfig{
			BaseURL:         getEnv("NSE_BASE_URL", "https://www.nseindia.com"),
			VIXURL:          getEnv("NSE_VIX_URL", "https://www1.nseindia.com/live_market/dynaContent/live_watch/VixDetails.json"),
			VIXFallbackURL:  getEnv("NSE_VIX_FALLBACK_URL", ""),
			UserAgent:       getEnv("NSE_USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"),
			RequestsPerSec:  getEnvAsFloat("NSE_REQUESTS_PER_SEC", 2),
			Burst:           getEnvAsInt("NSE_BURST", 2),
			Timeout:         getEnvAsDuration("NSE_TIMEOUT", "15s"),
			MaxRetries:      getEnvAsInt("NSE_MAX_RETRIES", 2),
			SharedRateLimit: getEnvAsBool("NSE_SHARED_RATE_LIMIT", false),
		},

		Engine: EngineConfig{
			DefaultStrikeRange: getEnvAsInt("ENGINE_STRIKE_RANGE", 10),
			DefaultStrikeStep:  getEnvAsInt("ENGINE_STRIKE_STEP", 50),
			TopExpiryCount:     getEnvAsInt("ENGINE_TOP_EXPIRY_COUNT", 6),
			Schedule:           getEnv("ENGINE_SCHEDULE", "0 */5 * * * *"),
			Concurrency:        getEnvAsInt("ENGINE_CONCURRENCY", 3),
			StatelessFallback:  getEnvAsBool("ENGINE_STATELESS_FALLBACK", true),
			RetryDelay:         getEnvAsDuration("ENGINE_RETRY_DELAY", "10s"),
			SupportStateTTL:    getEnvAsDuration("ENGINE_SUPPORT_STATE_TTL", "24h"),
			Retention:          getEnvAsDuration("ENGINE_RETENTION", "24h"),
			RetentionSchedule:  getEnv("ENGINE_RETENTION_SCHEDULE", "0 0 * * * *"),
		},

		SymbolsFile: getEnv("SYMBOLS_FILE", "config/symbols.yaml"),

		LogLevel:      getEnv("LOG_LEVEL", "debug"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 14),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Engine.DefaultStrikeStep <= 0 {
		return fmt.Errorf("ENGINE_STRIKE_STEP must be positive")
	}
	if c.Engine.DefaultStrikeRange < 0 {
		return fmt.Errorf("ENGINE_STRIKE_RANGE must not be negative")
	}
	if c.Engine.TopExpiryCount <= 0 {
		return fmt.Errorf("ENGINE_TOP_EXPIRY_COUNT must be positive")
	}
	if c.Engine.Concurrency <= 0 {
		c.Engine.Concurrency = 1
	}

	if c.NSE.RequestsPerSec <= 0 {
		return fmt.Errorf("NSE_REQUESTS_PER_SEC must be positive")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

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
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

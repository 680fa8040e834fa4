package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// KeyPairConfig locates one encrypted signing key pair on disk.
type KeyPairConfig struct {
	PrivateKeyFile string
	PublicKeyFile  string
	Passphrase     string
}

// AuthConfig defines authentication parameters. Access and refresh tokens
// are signed with separate key pairs.
type AuthConfig struct {
	AccessKeys              KeyPairConfig
	RefreshKeys             KeyPairConfig
	AccessTokenTTLMinutes   int
	RefreshTokenTTLMinutes  int
	BcryptCost              int
	RefreshRotation         bool
	LedgerPruneIntervalMins int
}

// AccessTokenTTL returns the access token lifetime.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime.
func (a AuthConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(a.RefreshTokenTTLMinutes) * time.Minute
}

// LedgerPruneInterval returns how often expired revocation records are swept.
func (a AuthConfig) LedgerPruneInterval() time.Duration {
	return time.Duration(a.LedgerPruneIntervalMins) * time.Minute
}

// Load reads configuration from environment variables, applying defaults
// where possible. Key material locations and passphrases have no defaults;
// their absence is a startup error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	accessKeys, err := loadKeyPairConfig("AUTH_ACCESS")
	if err != nil {
		return nil, err
	}
	refreshKeys, err := loadKeyPairConfig("AUTH_REFRESH")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "article-platform"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			AccessKeys:              accessKeys,
			RefreshKeys:             refreshKeys,
			AccessTokenTTLMinutes:   getEnvAsInt("AUTH_ACCESS_TTL_MINUTES", 15),
			RefreshTokenTTLMinutes:  getEnvAsInt("AUTH_REFRESH_TTL_MINUTES", 10080),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
			RefreshRotation:         getEnvAsBool("AUTH_REFRESH_ROTATION", false),
			LedgerPruneIntervalMins: getEnvAsInt("LEDGER_PRUNE_INTERVAL_MINUTES", 60),
		},
	}

	return cfg, nil
}

func loadKeyPairConfig(prefix string) (KeyPairConfig, error) {
	cfg := KeyPairConfig{
		PrivateKeyFile: os.Getenv(prefix + "_PRIVATE_KEY_FILE"),
		PublicKeyFile:  os.Getenv(prefix + "_PUBLIC_KEY_FILE"),
		Passphrase:     os.Getenv(prefix + "_KEY_PASSPHRASE"),
	}
	if cfg.PrivateKeyFile == "" {
		return cfg, fmt.Errorf("%s_PRIVATE_KEY_FILE is required", prefix)
	}
	if cfg.PublicKeyFile == "" {
		return cfg, fmt.Errorf("%s_PUBLIC_KEY_FILE is required", prefix)
	}
	if cfg.Passphrase == "" {
		return cfg, fmt.Errorf("%s_KEY_PASSPHRASE is required", prefix)
	}
	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

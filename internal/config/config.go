package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a secret from a file path specified by an env var with
// _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Export    ExportConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Enabled  bool
}

type JWTConfig struct {
	Secret string
}

type RateLimitConfig struct {
	ExportPerHour      int
	CredentialsPerHour int
}

type ExportConfig struct {
	KeyringService     string
	ProgressIntervalMs int
	JobTimeoutSeconds  int
}

func Load() (*Config, error) {
	readSecret("REDIS_PASSWORD")
	readSecret("JWT_SECRET")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("redis.enabled", "REDIS_ENABLED")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("ratelimit.export_per_hour", "RATELIMIT_EXPORT_PER_HOUR")
	_ = viper.BindEnv("ratelimit.credentials_per_hour", "RATELIMIT_CREDENTIALS_PER_HOUR")
	_ = viper.BindEnv("export.keyring_service", "EXPORT_KEYRING_SERVICE")
	_ = viper.BindEnv("export.progress_interval_ms", "EXPORT_PROGRESS_INTERVAL_MS")
	_ = viper.BindEnv("export.job_timeout_s", "EXPORT_JOB_TIMEOUT_S")

	// Defaults
	viper.SetDefault("server.port", "8090")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("jwt.secret", "")
	viper.SetDefault("ratelimit.export_per_hour", 120)
	viper.SetDefault("ratelimit.credentials_per_hour", 60)
	viper.SetDefault("export.keyring_service", "ernest-export")
	viper.SetDefault("export.progress_interval_ms", 150)
	// 0 means jobs run until they finish or are cancelled
	viper.SetDefault("export.job_timeout_s", 0)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:     viper.GetString("server.port"),
			Env:      viper.GetString("server.env"),
			LogLevel: viper.GetString("server.log_level"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			Enabled:  viper.GetBool("redis.enabled"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("jwt.secret"),
		},
		RateLimit: RateLimitConfig{
			ExportPerHour:      viper.GetInt("ratelimit.export_per_hour"),
			CredentialsPerHour: viper.GetInt("ratelimit.credentials_per_hour"),
		},
		Export: ExportConfig{
			KeyringService:     viper.GetString("export.keyring_service"),
			ProgressIntervalMs: viper.GetInt("export.progress_interval_ms"),
			JobTimeoutSeconds:  viper.GetInt("export.job_timeout_s"),
		},
	}

	return cfg, nil
}

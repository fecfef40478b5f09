package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/taskmanager/errs"
)

func New() map[string]string {
	environ := os.Environ()
	envAsMap := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry != "" {
			key, value := split(entry)
			envAsMap[key] = value
		}
	}
	return envAsMap
}

// assumes entry is not the empty string
func split(entry string) (key, value string) {
	parts := strings.SplitN(entry, "=", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func GetString(config map[string]string, key string, defaultValue string) string {
	if config == nil {
		return defaultValue
	}

	if val, ok := config[key]; ok && val != "" {
		return val
	}
	return defaultValue
}

func GetInt(config map[string]string, key string, defaultValue int) int {
	s := GetString(config, key, "")
	if s == "" {
		return defaultValue
	}

	asInt, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}

	return asInt
}

func GetBool(config map[string]string, key string, defaultValue bool) bool {
	s := GetString(config, key, "")
	if s == "" {
		return defaultValue
	}

	asBool, err := strconv.ParseBool(s)
	if err != nil {
		return defaultValue
	}

	return asBool
}

// GetDuration reads a whole number of the given unit, e.g. READ_TIMEOUT_SECONDS=30.
func GetDuration(config map[string]string, key string, unit time.Duration, defaultValue time.Duration) time.Duration {
	n := GetInt(config, key, -1)
	if n < 0 {
		return defaultValue
	}
	return time.Duration(n) * unit
}

type Config struct {
	Env      string
	Port     string
	LogLevel string

	Database DatabaseConfig
	Session  SessionConfig
	Password PasswordConfig

	AcceptedOrigins []string
	// TrustProxyHeaders takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration

	LoginRatePerMinute int
	LoginRateBurst     int

	// TaskUpdateReassignsCreator makes every task update record the editor as creator.
	TaskUpdateReassignsCreator bool
}

type DatabaseConfig struct {
	Type       string // sqlite or postgres
	DSN        string
	ReplicaDSN string
}

type SessionConfig struct {
	Secret string
	MaxAge time.Duration
	Secure bool
}

type PasswordConfig struct {
	Algorithm string
	Secret    string
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads .env, overlays SSM parameters when CONFIG_SSM_PATH is set, and builds the typed config.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	env := New()

	if path := GetString(env, "CONFIG_SSM_PATH", ""); path != "" {
		params, err := LoadSSMParameters(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("loading ssm parameters from %s: %w", path, err)
		}
		for k, v := range params {
			env[k] = v
		}
		log.Info().Str("path", path).Int("count", len(params)).Msg("loaded configuration from ssm")
	}

	return FromMap(env)
}

// FromMap builds the typed config from an env map and validates it.
func FromMap(env map[string]string) (*Config, error) {
	appEnv := GetString(env, "APP_ENV", "development")

	cfg := &Config{
		Env:      appEnv,
		Port:     GetString(env, "PORT", "8080"),
		LogLevel: GetString(env, "LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Type:       strings.ToLower(GetString(env, "DB_TYPE", "sqlite")),
			ReplicaDSN: GetString(env, "DB_REPLICA_DSN", ""),
		},
		Session: SessionConfig{
			Secret: GetString(env, "SESSION_SECRET", GetString(env, "SECURE_SESSION_SECRET", "")),
			MaxAge: GetDuration(env, "SESSION_MAX_AGE_HOURS", time.Hour, 7*24*time.Hour),
			Secure: GetBool(env, "SESSION_SECURE_COOKIE", appEnv == "production"),
		},
		Password: PasswordConfig{
			Algorithm: GetString(env, "PASSWORD_ALGORITHM", "sha256"),
			Secret:    GetString(env, "PASSWORD_SALT_SECRET", ""),
		},
		AcceptedOrigins:            splitList(GetString(env, "ACCEPTED_ORIGINS", "")),
		TrustProxyHeaders:          GetBool(env, "TRUST_PROXY_HEADERS", false),
		ReadTimeout:                GetDuration(env, "READ_TIMEOUT_SECONDS", time.Second, 30*time.Second),
		WriteTimeout:               GetDuration(env, "WRITE_TIMEOUT_SECONDS", time.Second, 30*time.Second),
		IdleTimeout:                GetDuration(env, "IDLE_TIMEOUT_SECONDS", time.Second, 120*time.Second),
		LoginRatePerMinute:         GetInt(env, "LOGIN_RATE_PER_MINUTE", 10),
		LoginRateBurst:             GetInt(env, "LOGIN_RATE_BURST", 5),
		TaskUpdateReassignsCreator: GetBool(env, "TASK_UPDATE_REASSIGNS_CREATOR", true),
	}

	switch cfg.Database.Type {
	case "sqlite":
		cfg.Database.DSN = GetString(env, "SQLITE_PATH", "taskmanager.db?_pragma=foreign_keys(1)")
	case "postgres":
		cfg.Database.DSN = GetString(env, "DATABASE_URL", postgresDSN(env))
	default:
		return nil, errs.NewConfigInvalidError("DB_TYPE", "must be sqlite or postgres")
	}

	if cfg.Session.Secret == "" {
		if appEnv == "production" {
			return nil, errs.NewConfigMissingError("SESSION_SECRET")
		}
		cfg.Session.Secret = "development-session-secret-change-me"
	}
	if len(cfg.Session.Secret) < 16 {
		return nil, errs.NewConfigInvalidError("SESSION_SECRET", "must be at least 16 characters")
	}

	if cfg.Password.Secret == "" {
		if appEnv == "production" {
			return nil, errs.NewConfigMissingError("PASSWORD_SALT_SECRET")
		}
		cfg.Password.Secret = "development-password-secret"
	}

	return cfg, nil
}

func postgresDSN(env map[string]string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(GetString(env, "PG_USER", "postgres"), GetString(env, "PG_PASSWORD", "")),
		Host:     GetString(env, "PG_HOST", "localhost") + ":" + GetString(env, "PG_PORT", "5432"),
		Path:     GetString(env, "PG_DATABASE", "taskmanager"),
		RawQuery: "sslmode=" + GetString(env, "PG_SSLMODE", "disable"),
	}
	return u.String()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

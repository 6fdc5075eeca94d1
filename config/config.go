// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath      = pflag.String("config", ".", "Directory containing config.toml")
	envFile         = pflag.String("env-file", ".env", "Optional dotenv file loaded before the config")
	validLogLevels  = []string{"debug", "info", "warn", "error", "fatal"}
	validDatabases  = []string{"sqlite", "postgres"}
	minAppKeyLength = 32
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s, %w", *envFile, err)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	SetDefaults()
	bindEnvs()

	if err := v.ReadInConfig(); err != nil {
		var notFound v.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file, %w", err)
		}

		fmt.Println("[WARNING]: config.toml not found, running on defaults and environment variables")
	}

	if v.GetString("app.key") == "" {
		fmt.Println("WARNING: You haven't set an app key, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random app key:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	return Validate()
}

// SetDefaults registers the default value of every key
func SetDefaults() {
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors", "http://localhost:5173")
	v.SetDefault("host.max_body_size", 1<<20)
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("db.type", "sqlite")
	v.SetDefault("db.path", "blog.db")

	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.from", "no-reply@localhost")
	v.SetDefault("mail.workers", 2)
	v.SetDefault("mail.queue_size", 100)

	v.SetDefault("frontend.url", "http://localhost:5173")

	v.SetDefault("auth.reset_ttl", "60m")
	v.SetDefault("auth.reset_throttle", "60s")
	v.SetDefault("auth.reveal_unknown_email", false)

	v.SetDefault("security.rate_limit", 10)
	v.SetDefault("security.resend_per_minute", 6)
	v.SetDefault("security.turnstile.enabled", false)

	v.SetDefault("cleanup.interval", "1h")
}

func bindEnvs() {
	v.BindEnv("app.log_level", "APP_LOG_LEVEL")
	v.BindEnv("app.key", "APP_KEY")

	v.BindEnv("host.port", "HOST_PORT")
	v.BindEnv("host.cors", "HOST_CORS")
	v.BindEnv("host.max_body_size", "HOST_MAX_BODY_SIZE")

	v.BindEnv("host.ssl.enabled", "HOST_SSL_ENABLED")
	v.BindEnv("host.ssl.certificate_path", "HOST_SSL_CERTIFICATE_PATH")
	v.BindEnv("host.ssl.certificate_key_path", "HOST_SSL_CERTIFICATE_KEY_PATH")

	v.BindEnv("db.type", "DB_TYPE")
	v.BindEnv("db.path", "DB_PATH")
	v.BindEnv("db.dsn", "DB_DSN")

	v.BindEnv("mail.host", "MAIL_HOST")
	v.BindEnv("mail.port", "MAIL_PORT")
	v.BindEnv("mail.username", "MAIL_USERNAME")
	v.BindEnv("mail.password", "MAIL_PASSWORD")
	v.BindEnv("mail.from", "MAIL_FROM")
	v.BindEnv("mail.workers", "MAIL_WORKERS")
	v.BindEnv("mail.queue_size", "MAIL_QUEUE_SIZE")

	v.BindEnv("frontend.url", "FRONTEND_URL")

	v.BindEnv("auth.reset_ttl", "AUTH_RESET_TTL")
	v.BindEnv("auth.reset_throttle", "AUTH_RESET_THROTTLE")
	v.BindEnv("auth.reveal_unknown_email", "AUTH_REVEAL_UNKNOWN_EMAIL")

	v.BindEnv("security.rate_limit", "SECURITY_RATE_LIMIT")
	v.BindEnv("security.resend_per_minute", "SECURITY_RESEND_PER_MINUTE")
	v.BindEnv("security.turnstile.enabled", "SECURITY_TURNSTILE_ENABLED")
	v.BindEnv("security.turnstile.secret_token", "SECURITY_TURNSTILE_SECRET_TOKEN")

	v.BindEnv("cleanup.interval", "CLEANUP_INTERVAL")
}

// Validate checks the loaded values. It's separate from Setup so tests
// can run it against values set directly on viper.
func Validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if len(v.GetString("app.key")) < minAppKeyLength {
		return fmt.Errorf("app.key must be at least %d characters long", minAppKeyLength)
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetInt64("host.max_body_size") <= 0 {
		return errors.New("host.max_body_size must be bigger than 0")
	}

	if v.GetBool("host.ssl.enabled") {
		if v.GetString("host.ssl.certificate_path") == "" {
			return errors.New("no ssl certificate path provided")
		}

		if v.GetString("host.ssl.certificate_key_path") == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	switch dbType := v.GetString("db.type"); {
	case !slices.Contains(validDatabases, dbType):
		return errors.New("invalid database type provided")
	case dbType == "postgres" && v.GetString("db.dsn") == "":
		return errors.New("db.dsn is required for postgres")
	case dbType == "sqlite" && v.GetString("db.path") == "":
		return errors.New("db.path is required for sqlite")
	}

	if v.GetInt("mail.workers") <= 0 {
		return errors.New("mail.workers must be bigger than 0")
	}

	if v.GetInt("mail.queue_size") <= 0 {
		return errors.New("mail.queue_size must be bigger than 0")
	}

	if v.GetString("mail.host") == "" {
		fmt.Println("[WARNING]: mail.host is empty. Mail will be logged instead of sent")
	}

	if !strings.HasPrefix(v.GetString("frontend.url"), "http") {
		return errors.New("frontend.url must be an absolute http(s) URL")
	}

	if v.GetDuration("auth.reset_ttl") <= 0 {
		return errors.New("auth.reset_ttl must be bigger than 0")
	}

	if v.GetDuration("auth.reset_throttle") < 0 {
		return errors.New("auth.reset_throttle can't be negative")
	}

	if v.GetInt("security.rate_limit") <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	if v.GetInt("security.resend_per_minute") <= 0 {
		return errors.New("security.resend_per_minute must be bigger than 0")
	}

	if v.GetDuration("cleanup.interval") <= 0 {
		return errors.New("cleanup.interval must be bigger than 0")
	}

	if !v.GetBool("security.turnstile.enabled") {
		fmt.Println("[WARNING]: Cloudflare's turnstile is disabled. Some public endpoints won't be guarded against bots")
	} else if v.GetString("security.turnstile.secret_token") == "" {
		return errors.New("turnstile secret token is missing")
	}

	return nil
}

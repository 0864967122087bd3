// Package config loads runtime configuration from environment variables
// into an explicit struct that is passed to constructors. Nothing in this
// repository reads the environment directly at call sites.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every runtime setting of the server.
type Config struct {
	// Addr is the listen address of the HTTP server (":8080" by default).
	Addr string

	// BaseURL is the externally visible origin of the site, used to build
	// the reset-password links sent by mail.
	BaseURL string

	// MongoURI selects the MongoDB credential/post store when non-empty.
	// When empty the server falls back to the GORM store (MySQL, or a
	// local SQLite file when no DB host is configured).
	MongoURI   string
	MongoDB    string
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	SQLitePath string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	// SessionCookie is the name of the session cookie.
	SessionCookie string
	// SessionTTL bounds the lifetime of a server-side session.
	SessionTTL time.Duration

	// ResetTokenTTL bounds how long a password-reset token validates.
	// Tokens older than this are treated as absent.
	ResetTokenTTL time.Duration

	// ResendAPIKey and MailSender configure the outbound mailer.
	ResendAPIKey string
	MailSender   string
	// MailTimeout bounds a single mail-delivery call.
	MailTimeout time.Duration

	// UploadDir is where post images are stored.
	UploadDir string
}

// FromEnv loads a Config from the environment, falling back to defaults
// suitable for local development.
func FromEnv() Config {
	return Config{
		Addr:          getEnv("ADDR", ":8080"),
		BaseURL:       getEnv("BASE_URL", "http://localhost:8080"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDB:       getEnv("MONGO_DB", "blog"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBName:        getEnv("DB_NAME", "blog"),
		SQLitePath:    getEnv("SQLITE_PATH", "blog.db"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		SessionCookie: getEnv("SESSION_COOKIE", "blog_session"),
		SessionTTL:    getEnvDuration("SESSION_TTL", 7*24*time.Hour),
		ResetTokenTTL: getEnvDuration("RESET_TOKEN_TTL", 1*time.Hour),
		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		MailSender:    getEnv("MAIL_SENDER", "no-reply@localhost"),
		MailTimeout:   getEnvDuration("MAIL_TIMEOUT", 10*time.Second),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

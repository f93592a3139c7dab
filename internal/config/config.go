package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

type AppConfig struct {
	Name     string
	Env      string
	Port     string
	TimeZone string
}

type DBConfig struct {
	Driver   string // postgres or sqlite
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type AuthConfig struct {
	JWTSecret     string
	SessionTTL    time.Duration
	CookieName    string
	SecureCookie  bool
	AdminEmail    string
	AdminPassword string
}

type StorageConfig struct {
	Type      string // local or s3
	BasePath  string
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	MaxSize   int64
}

type QueueConfig struct {
	Type        string // memory or rabbitmq
	RabbitMQURL string
	QueueName   string
	Workers     int
	Buffer      int
}

type LLMConfig struct {
	GeminiAPIKey string
	Model        string
}

type MailConfig struct {
	Enabled         bool
	UserEmail       string
	CredentialsFile string
	TokenFile       string
	PollInterval    time.Duration
}

type Config struct {
	App     AppConfig
	DB      DBConfig
	Auth    AuthConfig
	Storage StorageConfig
	Queue   QueueConfig
	LLM     LLMConfig
	Mail    MailConfig
}

var (
	cfg     *Config
	cfgOnce sync.Once
)

// Load reads the configuration from the environment once. Call godotenv.Load
// before the first call if a .env file should be honoured.
func Load() *Config {
	cfgOnce.Do(func() {
		cfg = FromEnv()
	})
	return cfg
}

// FromEnv builds a fresh Config from the current environment.
func FromEnv() *Config {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
		log.Printf("Warning: APP_ENV not set, defaulting to %s", env)
	}

	c := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "jobtracker"),
			Env:      env,
			Port:     getEnv("APP_PORT", ":8080"),
			TimeZone: getEnv("APP_TIMEZONE", "UTC"),
		},
		DB: DBConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			DSN:      os.Getenv("DB_DSN"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "jobtracker"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			SessionTTL:    getDuration("SESSION_TTL", 24*time.Hour),
			CookieName:    getEnv("SESSION_COOKIE", "jobtracker_session"),
			SecureCookie:  env == "production",
			AdminEmail:    os.Getenv("ADMIN_EMAIL"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
		Storage: StorageConfig{
			Type:      getEnv("STORAGE_TYPE", "local"),
			BasePath:  getEnv("STORAGE_PATH", "./uploads"),
			Bucket:    os.Getenv("STORAGE_BUCKET"),
			Region:    getEnv("STORAGE_REGION", "auto"),
			Endpoint:  os.Getenv("STORAGE_ENDPOINT"),
			AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
			MaxSize:   int64(getInt("UPLOAD_MAX_BYTES", 10*1024*1024)),
		},
		Queue: QueueConfig{
			Type:        getEnv("QUEUE_TYPE", "memory"),
			RabbitMQURL: os.Getenv("RABBITMQ_URL"),
			QueueName:   getEnv("QUEUE_NAME", "resume_extraction"),
			Workers:     getInt("QUEUE_WORKERS", 3),
			Buffer:      getInt("QUEUE_BUFFER", 100),
		},
		LLM: LLMConfig{
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			Model:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Mail: MailConfig{
			Enabled:         getBool("MAIL_SYNC_ENABLED", false),
			UserEmail:       os.Getenv("MAIL_SYNC_USER_EMAIL"),
			CredentialsFile: getEnv("GMAIL_CREDENTIALS_FILE", "credential.json"),
			TokenFile:       getEnv("GMAIL_TOKEN_FILE", "token.json"),
			PollInterval:    getDuration("MAIL_SYNC_INTERVAL", 15*time.Minute),
		},
	}
	if c.Auth.JWTSecret == "" {
		if env == "production" {
			log.Fatal("CRITICAL ERROR: JWT_SECRET is empty. Did you load the .env file?")
		}
		c.Auth.JWTSecret = "dev-secret-change-me"
		log.Println("Warning: JWT_SECRET not set, using an insecure development secret")
	}
	return c
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Location resolves the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.TimeZone)
	if err != nil {
		log.Printf("Warning: invalid APP_TIMEZONE %q, using UTC", c.App.TimeZone)
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Warning: %s=%q is not a duration, using %s", key, v, fallback)
		return fallback
	}
	return d
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MicroCMS MicroCMSConfig
	Mail     MailConfig
	Contact  ContactConfig
	Server   ServerConfig
	Redis    RedisConfig
	Header   HeaderConfig
	Logging  LoggingConfig
}

type MicroCMSConfig struct {
	ServiceDomain string
	APIKey        string
	BaseURL       string
	Revalidate    time.Duration
}

type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

type ContactConfig struct {
	RelayURL string
}

type ServerConfig struct {
	Addr      string
	SiteURL   string
	PublicDir string
	CSRFKey   string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Enabled reports whether the revalidate cache should be backed by Redis.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

type HeaderConfig struct {
	SessionTTL time.Duration
}

type LoggingConfig struct {
	Level string
	File  string
}

// Load reads the full site configuration and validates every group.
func Load() (*Config, error) {
	cfg := read()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadContent is Load for tools that only read the CMS: mail, relay and server
// settings are read but not required.
func LoadContent() (*Config, error) {
	cfg := read()
	if err := cfg.validateMicroCMS(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func read() *Config {
	_ = godotenv.Load()

	serviceDomain := getEnv("MICRO_CMS_SERVICE_DOMAIN", "")

	cfg := &Config{
		MicroCMS: MicroCMSConfig{
			ServiceDomain: serviceDomain,
			APIKey:        getEnv("MICRO_CMS_API_KEY", ""),
			BaseURL:       getEnv("MICRO_CMS_BASE_URL", defaultCMSBaseURL(serviceDomain)),
			Revalidate:    time.Duration(getEnvInt("CONTENT_REVALIDATE_SECONDS", 86400)) * time.Second,
		},
		Mail: MailConfig{
			Host:     getEnv("MAIL_HOST", "smtp.gmail.com"),
			Port:     getEnvInt("MAIL_PORT", 465),
			User:     getEnv("MAIL_AUTH_USER", ""),
			Password: getEnv("MAIL_AUTH_PASS", ""),
		},
		Contact: ContactConfig{
			RelayURL: getEnv("CONTACT_RELAY_URL", ""),
		},
		Server: ServerConfig{
			Addr:      getEnv("SERVER_ADDR", ":8080"),
			SiteURL:   strings.TrimRight(getEnv("SITE_URL", "https://www.higapro.jp"), "/"),
			PublicDir: getEnv("PUBLIC_DIR", "public"),
			CSRFKey:   getEnv("CSRF_KEY", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Header: HeaderConfig{
			SessionTTL: time.Duration(getEnvInt("HEADER_SESSION_TTL_MINUTES", 30)) * time.Minute,
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	return cfg
}

func (c *Config) Validate() error {
	if err := c.validateMicroCMS(); err != nil {
		return err
	}
	if c.Contact.RelayURL == "" {
		if c.Mail.User == "" {
			return fmt.Errorf("MAIL_AUTH_USER is required")
		}
		if c.Mail.Password == "" {
			return fmt.Errorf("MAIL_AUTH_PASS is required")
		}
	}
	if c.Server.CSRFKey != "" && len(c.Server.CSRFKey) != 32 {
		return fmt.Errorf("CSRF_KEY must be exactly 32 bytes")
	}
	if c.Header.SessionTTL <= 0 {
		return fmt.Errorf("HEADER_SESSION_TTL_MINUTES must be positive")
	}
	return nil
}

func (c *Config) validateMicroCMS() error {
	if c.MicroCMS.ServiceDomain == "" && c.MicroCMS.BaseURL == "" {
		return fmt.Errorf("MICRO_CMS_SERVICE_DOMAIN is required")
	}
	if c.MicroCMS.APIKey == "" {
		return fmt.Errorf("MICRO_CMS_API_KEY is required")
	}
	return nil
}

func defaultCMSBaseURL(serviceDomain string) string {
	if serviceDomain == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.microcms.io/api/v1", serviceDomain)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

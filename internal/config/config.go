package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Clinic    ClinicConfig    `mapstructure:"clinic"`
	Notifier  NotifierConfig  `mapstructure:"notifier"`
	Broker    BrokerConfig    `mapstructure:"broker"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Seed      SeedConfig      `mapstructure:"seed"`
}

type ServerConfig struct {
	Port           int    `mapstructure:"port"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
	Mode           string `mapstructure:"mode"`
}

type StoreConfig struct {
	// Driver is one of memory, sqlite, postgres, redis.
	Driver          string `mapstructure:"driver"`
	Prefix          string `mapstructure:"prefix"`
	DSN             string `mapstructure:"dsn"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
	// TokenTTLMinutes of zero issues tokens without expiry.
	TokenTTLMinutes int `mapstructure:"token_ttl_minutes"`
}

type ClinicConfig struct {
	TimeZone string `mapstructure:"timezone"`
}

type NotifierConfig struct {
	// Driver is one of noop, smtp, broker.
	Driver string     `mapstructure:"driver"`
	SMTP   SMTPConfig `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type BrokerConfig struct {
	// RedisURL left empty disables event publishing.
	RedisURL string `mapstructure:"redis_url"`
	Channel  string `mapstructure:"channel"`
}

type AuditConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Output is stdout, stderr or a file path.
	Output string `mapstructure:"output"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type SeedConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	AdminPassword   string `mapstructure:"admin_password"`
	PatientPassword string `mapstructure:"patient_password"`
	StaffPassword   string `mapstructure:"staff_password"`
}

// Overrides are the CLINIC_* process variables applied after the config file.
type Overrides struct {
	Port          int    `envconfig:"PORT"`
	StoreDriver   string `envconfig:"STORE_DRIVER"`
	StoreDSN      string `envconfig:"STORE_DSN"`
	JWTSecret     string `envconfig:"JWT_SECRET"`
	BrokerURL     string `envconfig:"BROKER_REDIS_URL"`
	LogLevel      string `envconfig:"LOG_LEVEL"`
	NotifyDriver  string `envconfig:"NOTIFIER_DRIVER"`
	ClinicTZ      string `envconfig:"TIMEZONE"`
	DisableSeed   bool   `envconfig:"DISABLE_SEED"`
	DisableAudits bool   `envconfig:"DISABLE_AUDIT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeoutSeconds", 30)
	v.SetDefault("server.mode", "release")

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.prefix", "medical_system_")
	v.SetDefault("store.dsn", "clinic.db")
	v.SetDefault("store.cache_ttl_seconds", 0)

	v.SetDefault("auth.issuer", "clinic-api")
	v.SetDefault("auth.token_ttl_minutes", 0)

	v.SetDefault("clinic.timezone", "Local")

	v.SetDefault("notifier.driver", "noop")
	v.SetDefault("notifier.smtp.port", 587)

	v.SetDefault("broker.channel", "clinic.appointments")

	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.output", "stdout")

	v.SetDefault("log.level", "info")

	v.SetDefault("rate_limit.requests_per_second", 20)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.admin_password", "admin123")
	v.SetDefault("seed.patient_password", "cliente123")
	v.SetDefault("seed.staff_password", "medico123")
}

// LoadConfig reads config.yaml from the given paths (defaults to . and
// ./config). A missing file is fine; defaults and CLINIC_* overrides apply.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("clinic")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var ov Overrides
	if err := envconfig.Process("clinic", &ov); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	config.apply(ov)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) apply(ov Overrides) {
	if ov.Port > 0 {
		c.Server.Port = ov.Port
	}
	if ov.StoreDriver != "" {
		c.Store.Driver = ov.StoreDriver
	}
	if ov.StoreDSN != "" {
		c.Store.DSN = ov.StoreDSN
	}
	if ov.JWTSecret != "" {
		c.Auth.JWTSecret = ov.JWTSecret
	}
	if ov.BrokerURL != "" {
		c.Broker.RedisURL = ov.BrokerURL
	}
	if ov.LogLevel != "" {
		c.Log.Level = ov.LogLevel
	}
	if ov.NotifyDriver != "" {
		c.Notifier.Driver = ov.NotifyDriver
	}
	if ov.ClinicTZ != "" {
		c.Clinic.TimeZone = ov.ClinicTZ
	}
	if ov.DisableSeed {
		c.Seed.Enabled = false
	}
	if ov.DisableAudits {
		c.Audit.Enabled = false
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Notifier.Driver {
	case "noop", "smtp", "broker":
	default:
		return fmt.Errorf("unknown notifier driver %q", c.Notifier.Driver)
	}
	if c.Notifier.Driver == "broker" && c.Broker.RedisURL == "" {
		return errors.New("notifier driver broker requires broker.redis_url")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid clinic timezone: %w", err)
	}
	return nil
}

// Location resolves the clinic time zone used to interpret appointment slots.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Clinic.TimeZone)
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Store.CacheTTLSeconds) * time.Second
}

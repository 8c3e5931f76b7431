package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Biometric BiometricConfig `mapstructure:"biometric"`
	Facility  FacilityConfig  `mapstructure:"facility"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Notifier  NotifierConfig  `mapstructure:"notifier"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Type     string         `mapstructure:"type"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN builds a pgx connection string from the postgres settings.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

type BiometricConfig struct {
	ExtractorURL   string        `mapstructure:"extractor_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MatchThreshold float64       `mapstructure:"match_threshold"`
	EmbeddingDim   int           `mapstructure:"embedding_dim"`
}

// FacilityConfig carries the attendance policy of the site. Clock values
// are "HH:MM" strings in the facility timezone.
type FacilityConfig struct {
	WorkStart    string `mapstructure:"work_start"`
	LateCutoff   string `mapstructure:"late_cutoff"`
	CloseTime    string `mapstructure:"close_time"`
	Timezone     string `mapstructure:"timezone"`
	CalendarFile string `mapstructure:"calendar_file"`
}

type ReconcileConfig struct {
	Hour      int    `mapstructure:"hour"`
	CloseMode string `mapstructure:"close_mode"`
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	RedisURL string        `mapstructure:"redis_url"`
	Limit    int           `mapstructure:"limit"`
	Window   time.Duration `mapstructure:"window"`
}

type NotifierConfig struct {
	// Mode selects the delivery channel: "nats", "webhook" or "off".
	Mode    string        `mapstructure:"mode"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DirectoryConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("database.type", "memory")
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "vericlock")
	v.SetDefault("database.postgres.user", "vericlock")
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("biometric.extractor_url", "http://extractor:9090")
	v.SetDefault("biometric.timeout", "10s")
	v.SetDefault("biometric.match_threshold", 0.5)
	v.SetDefault("biometric.embedding_dim", 128)
	v.SetDefault("facility.work_start", "08:00")
	v.SetDefault("facility.late_cutoff", "08:15")
	v.SetDefault("facility.close_time", "18:00")
	v.SetDefault("facility.timezone", "Local")
	v.SetDefault("reconcile.hour", 23)
	v.SetDefault("reconcile.close_mode", "facility_close")
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.redis_url", "redis://localhost:6379/0")
	v.SetDefault("ratelimit.limit", 5)
	v.SetDefault("ratelimit.window", "1m")
	v.SetDefault("notifier.mode", "off")
	v.SetDefault("notifier.timeout", "5s")
	v.SetDefault("directory.url", "http://directory:8081")
	v.SetDefault("directory.timeout", "10s")
	v.SetDefault("auth.jwt_secret", "change-this-in-production")
	v.SetDefault("auth.access_token_ttl", "12h")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/vericlock")
	}

	// Environment variables override
	v.SetEnvPrefix("VERICLOCK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

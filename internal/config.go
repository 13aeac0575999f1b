package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Environment   string              `mapstructure:"environment"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security" validate:"required"`
	Notification  NotificationConfig  `mapstructure:"notification"`
	Scheduler     SchedulerConfig     `mapstructure:"scheduler"`
	Report        ReportConfig        `mapstructure:"report"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	OpenAPIPath       string        `mapstructure:"openapi_path"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
	Source          string        `mapstructure:"source"`
}

type SecurityConfig struct {
	JWTSecret           string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration" validate:"required,min=1m"`
	BCryptCost          int           `mapstructure:"bcrypt_cost" validate:"required,min=10,max=15"`
}

// Admin targeting policies for broadcast notifications.
const (
	AdminPolicySingleAdmin   = "single_admin"
	AdminPolicyAllAdmins     = "all_admins"
	AdminPolicyRoleBroadcast = "role_broadcast"
)

type NotificationConfig struct {
	Workers     int           `mapstructure:"workers"`
	QueueSize   int           `mapstructure:"queue_size"`
	MaxRetries  uint64        `mapstructure:"max_retries"`
	RetryBase   time.Duration `mapstructure:"retry_base"`
	AdminPolicy string        `mapstructure:"admin_policy" validate:"oneof=single_admin all_admins role_broadcast"`
	Store       string        `mapstructure:"store" validate:"oneof=postgres mongo"`
	Mongo       MongoConfig   `mapstructure:"mongo"`
	MQTT        MQTTConfig    `mapstructure:"mqtt"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type MQTTConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BrokerURL   string        `mapstructure:"broker_url"`
	ClientID    string        `mapstructure:"client_id"`
	TopicPrefix string        `mapstructure:"topic_prefix"`
	QoS         byte          `mapstructure:"qos"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type SchedulerConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	RunAt              string `mapstructure:"run_at"`
	OverdueAfterMonths int    `mapstructure:"overdue_after_months"`
	Dedupe             bool   `mapstructure:"dedupe"`
}

type ReportConfig struct {
	CacheSize int           `mapstructure:"cache_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string        `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string        `mapstructure:"format" validate:"required,oneof=json text"`
	File   LogFileConfig `mapstructure:"file"`
}

type LogFileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// ApplyDefaults fills the optional knobs a config file is allowed to omit.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.OpenAPIPath == "" {
		c.Server.OpenAPIPath = "api/openapi.yml"
	}
	if c.Database.QueryTimeout == 0 {
		c.Database.QueryTimeout = 5 * time.Second
	}
	if c.Security.AccessTokenDuration == 0 {
		c.Security.AccessTokenDuration = 5 * time.Hour
	}
	if c.Security.BCryptCost == 0 {
		c.Security.BCryptCost = 12
	}
	if c.Notification.Workers <= 0 {
		c.Notification.Workers = 4
	}
	if c.Notification.QueueSize <= 0 {
		c.Notification.QueueSize = 256
	}
	if c.Notification.MaxRetries == 0 {
		c.Notification.MaxRetries = 3
	}
	if c.Notification.RetryBase == 0 {
		c.Notification.RetryBase = 100 * time.Millisecond
	}
	if c.Notification.AdminPolicy == "" {
		c.Notification.AdminPolicy = AdminPolicySingleAdmin
	}
	if c.Notification.Store == "" {
		c.Notification.Store = "postgres"
	}
	if c.Notification.Mongo.Collection == "" {
		c.Notification.Mongo.Collection = "notifications"
	}
	if c.Notification.MQTT.TopicPrefix == "" {
		c.Notification.MQTT.TopicPrefix = "fleet/notifications"
	}
	if c.Notification.MQTT.Timeout == 0 {
		c.Notification.MQTT.Timeout = 5 * time.Second
	}
	if c.Scheduler.RunAt == "" {
		c.Scheduler.RunAt = "00:00"
	}
	if c.Scheduler.OverdueAfterMonths <= 0 {
		c.Scheduler.OverdueAfterMonths = 4
	}
	if c.Report.CacheSize <= 0 {
		c.Report.CacheSize = 512
	}
	if c.Report.CacheTTL == 0 {
		c.Report.CacheTTL = time.Minute
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// LoadConfigFromEnv builds the configuration from FLEET_* variables for
// container deployments that ship no config file.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Environment: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:              getEnvAsInt("FLEET_HTTP_SERVER_PORT", 8080),
			BaseURL:           getEnv("FLEET_HTTP_SERVER_BASE_URL", ""),
			AllowedOrigins:    getEnv("FLEET_HTTP_SERVER_ALLOWED_ORIGINS", "*"),
			OpenAPIPath:       getEnv("FLEET_HTTP_SERVER_OPENAPI_PATH", "api/openapi.yml"),
			ReadHeaderTimeout: getEnvAsDuration("FLEET_HTTP_SERVER_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("FLEET_HTTP_SERVER_READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("FLEET_HTTP_SERVER_IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("FLEET_HTTP_SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("FLEET_DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("FLEET_DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("FLEET_DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("FLEET_DATABASE_CONN_MAX_IDLE_TIME", 5*time.Minute),
			QueryTimeout:    getEnvAsDuration("FLEET_DATABASE_QUERY_TIMEOUT", 5*time.Second),
			Source:          getEnv("FLEET_DATABASE_SOURCE", ""),
		},
		Security: SecurityConfig{
			JWTSecret:           getEnv("FLEET_SECURITY_JWT_SECRET", ""),
			AccessTokenDuration: getEnvAsDuration("FLEET_SECURITY_ACCESS_TOKEN_DURATION", 5*time.Hour),
			BCryptCost:          getEnvAsInt("FLEET_SECURITY_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			Workers:     getEnvAsInt("FLEET_NOTIFICATION_WORKERS", 4),
			QueueSize:   getEnvAsInt("FLEET_NOTIFICATION_QUEUE_SIZE", 256),
			MaxRetries:  uint64(getEnvAsInt("FLEET_NOTIFICATION_MAX_RETRIES", 3)),
			RetryBase:   getEnvAsDuration("FLEET_NOTIFICATION_RETRY_BASE", 100*time.Millisecond),
			AdminPolicy: getEnv("FLEET_NOTIFICATION_ADMIN_POLICY", AdminPolicySingleAdmin),
			Store:       getEnv("FLEET_NOTIFICATION_STORE", "postgres"),
			Mongo: MongoConfig{
				URI:        getEnv("FLEET_NOTIFICATION_MONGO_URI", ""),
				Database:   getEnv("FLEET_NOTIFICATION_MONGO_DATABASE", "fleet"),
				Collection: getEnv("FLEET_NOTIFICATION_MONGO_COLLECTION", "notifications"),
			},
			MQTT: MQTTConfig{
				Enabled:     getEnvAsBool("FLEET_NOTIFICATION_MQTT_ENABLED", false),
				BrokerURL:   getEnv("FLEET_NOTIFICATION_MQTT_BROKER_URL", ""),
				ClientID:    getEnv("FLEET_NOTIFICATION_MQTT_CLIENT_ID", "fleet-api"),
				TopicPrefix: getEnv("FLEET_NOTIFICATION_MQTT_TOPIC_PREFIX", "fleet/notifications"),
				QoS:         byte(getEnvAsInt("FLEET_NOTIFICATION_MQTT_QOS", 1)),
				Timeout:     getEnvAsDuration("FLEET_NOTIFICATION_MQTT_TIMEOUT", 5*time.Second),
			},
		},
		Scheduler: SchedulerConfig{
			Enabled:            getEnvAsBool("FLEET_SCHEDULER_ENABLED", true),
			RunAt:              getEnv("FLEET_SCHEDULER_RUN_AT", "00:00"),
			OverdueAfterMonths: getEnvAsInt("FLEET_SCHEDULER_OVERDUE_AFTER_MONTHS", 4),
			Dedupe:             getEnvAsBool("FLEET_SCHEDULER_DEDUPE", true),
		},
		Report: ReportConfig{
			CacheSize: getEnvAsInt("FLEET_REPORT_CACHE_SIZE", 512),
			CacheTTL:  getEnvAsDuration("FLEET_REPORT_CACHE_TTL", time.Minute),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("FLEET_LOG_LEVEL", "info"),
				Format: getEnv("FLEET_LOG_FORMAT", "json"),
				File: LogFileConfig{
					Enabled:    getEnvAsBool("FLEET_LOG_FILE_ENABLED", false),
					Path:       getEnv("FLEET_LOG_FILE_PATH", "logs/fleet.log"),
					MaxSizeMB:  getEnvAsInt("FLEET_LOG_FILE_MAX_SIZE_MB", 100),
					MaxBackups: getEnvAsInt("FLEET_LOG_FILE_MAX_BACKUPS", 5),
					MaxAgeDays: getEnvAsInt("FLEET_LOG_FILE_MAX_AGE_DAYS", 28),
				},
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Notification.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("notification config: %v", err))
	}

	if err := c.Scheduler.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("scheduler config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Origins splits the comma separated allowed_origins list.
func (c *ServerConfig) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		for _, origin := range c.Origins() {
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("jwt_secret must be at least 32 characters")
	}
	if c.BCryptCost < 10 || c.BCryptCost > 15 {
		return errors.New("bcrypt_cost must be between 10 and 15")
	}
	return nil
}

func (c *NotificationConfig) Validate() error {
	switch c.AdminPolicy {
	case AdminPolicySingleAdmin, AdminPolicyAllAdmins, AdminPolicyRoleBroadcast:
	default:
		return fmt.Errorf("unknown admin_policy %q", c.AdminPolicy)
	}
	switch c.Store {
	case "postgres":
	case "mongo":
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return errors.New("mongo.uri and mongo.database are required when store is mongo")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.MQTT.Enabled && c.MQTT.BrokerURL == "" {
		return errors.New("mqtt.broker_url is required when mqtt is enabled")
	}
	return nil
}

func (c *SchedulerConfig) Validate() error {
	if _, err := time.Parse("15:04", c.RunAt); err != nil {
		return fmt.Errorf("run_at must be HH:MM: %w", err)
	}
	return nil
}

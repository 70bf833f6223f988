// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig               `mapstructure:"app"`
	Server    ServerConfig            `mapstructure:"server"`
	Camunda   CamundaConfig           `mapstructure:"camunda"`
	Database  DatabaseConfig          `mapstructure:"database"`
	Dashboard DashboardConfig         `mapstructure:"dashboard"`
	Sharing   SharingConfig           `mapstructure:"sharing"`
	Analytics AnalyticsConfig         `mapstructure:"analytics"`
	Search    SearchConfig            `mapstructure:"search"`
	Registry  RegistryConfig          `mapstructure:"registry"`
	Workers   map[string]WorkerConfig `mapstructure:"workers"`
	Logging   LoggingConfig           `mapstructure:"logging"`
	Tracing   TracingConfig           `mapstructure:"tracing"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	ReadTimeout    int `mapstructure:"read_timeout"`    // milliseconds
	WriteTimeout   int `mapstructure:"write_timeout"`   // milliseconds
	RequestTimeout int `mapstructure:"request_timeout"` // milliseconds
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// CamundaConfig is optional. Workers are only started when BrokerAddress is set.
type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// Enabled reports whether a broker is configured.
func (c CamundaConfig) Enabled() bool {
	return c.BrokerAddress != ""
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Domain Configuration ---

// DashboardConfig holds the default list sizes used by Refresh and the API.
type DashboardConfig struct {
	ActivityLimit       int `mapstructure:"activity_limit"`
	RecommendationLimit int `mapstructure:"recommendation_limit"`
	AchievementLimit    int `mapstructure:"achievement_limit"`
}

// SharingConfig controls shareable profile links.
type SharingConfig struct {
	PublicBaseURL string `mapstructure:"public_base_url"`
	QRCodeBaseURL string `mapstructure:"qr_code_base_url"`
	QRCodeSize    int    `mapstructure:"qr_code_size"`
}

// AnalyticsConfig controls profile view tracking.
type AnalyticsConfig struct {
	ViewDedupeWindow int    `mapstructure:"view_dedupe_window"` // milliseconds
	EventsChannel    string `mapstructure:"events_channel"`
}

// SearchConfig controls the project search index.
type SearchConfig struct {
	Index        string `mapstructure:"index"`
	SyncInterval string `mapstructure:"sync_interval"` // cron spec, e.g. "@every 15m"
	SyncOnStart  bool   `mapstructure:"sync_on_start"`
	BatchSize    int    `mapstructure:"batch_size"`
}

// RegistryConfig points at the activity registry describing worker inputs.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// TracingConfig selects where finished spans are exported.
type TracingConfig struct {
	Exporter    string  `mapstructure:"exporter"` // none | stdout
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

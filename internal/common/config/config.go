// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Engine        EngineConfig            `mapstructure:"engine"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Registry      RegistryConfig          `mapstructure:"registry"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
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
	Addresses     []string `mapstructure:"addresses"`
	Username      string   `mapstructure:"username"`
	Password      string   `mapstructure:"password"`
	RankingsIndex string   `mapstructure:"rankings_index"`
	MaxResults    int      `mapstructure:"max_results"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	CacheTTL int    `mapstructure:"cache_ttl"` // seconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
	Concurrency   int  `mapstructure:"concurrency"` // batch fan-out
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// --- Engine Configuration ---

type EngineConfig struct {
	Intent          IntentEngineConfig          `mapstructure:"intent"`
	Clustering      ClusteringEngineConfig      `mapstructure:"clustering"`
	Cannibalization CannibalizationEngineConfig `mapstructure:"cannibalization"`
}

type IntentEngineConfig struct {
	// SkipBootstrap starts untrained instead of fitting the bundled seed
	// model when no checkpoint exists.
	SkipBootstrap bool `mapstructure:"skip_bootstrap"`
	ReviewLimit   int  `mapstructure:"review_limit"`
}

type ClusteringEngineConfig struct {
	DefaultMethod       string  `mapstructure:"default_method"`
	Threshold           float64 `mapstructure:"threshold"`
	MinClusterSize      int     `mapstructure:"min_cluster_size"`
	MaxClusterSize      int     `mapstructure:"max_cluster_size"`
	MembershipThreshold float64 `mapstructure:"membership_threshold"`
}

type CannibalizationEngineConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	URLOverlapThreshold float64 `mapstructure:"url_overlap_threshold"`
}

// --- Notifications ---

// NotificationConfig holds settings for cannibalization alerts.
type NotificationConfig struct {
	AWSRegion string `mapstructure:"aws_region"`
	// MinSeverity is the lowest report severity that triggers an alert.
	MinSeverity string `mapstructure:"min_severity"`
	SNS         struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	SES struct {
		Enabled    bool     `mapstructure:"enabled"`
		FromEmail  string   `mapstructure:"from_email"`
		Recipients []string `mapstructure:"recipients"`
	} `mapstructure:"ses"`
}

type ObservabilityConfig struct {
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	MetricsPort    int    `mapstructure:"metrics_port"`
}

// RegistryConfig points at the activity registry used for payload validation.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

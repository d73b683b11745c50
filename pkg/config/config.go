package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/clinsight-ai/clinsight/pkg/models"
)

// Config holds all clinsight configuration.
type Config struct {
	Listen      string          `yaml:"listen" env:"CLINSIGHT_LISTEN"`
	DBPath      string          `yaml:"db_path" env:"CLINSIGHT_DB_PATH"`
	PricingPath string          `yaml:"pricing_path" env:"CLINSIGHT_PRICING_PATH"`
	DataPath    string          `yaml:"data_path" env:"CLINSIGHT_DATA_PATH"`
	BlobDir     string          `yaml:"blob_dir" env:"CLINSIGHT_BLOB_DIR"`
	OpenAI      OpenAIConfig    `yaml:"openai"`
	Session     SessionConfig   `yaml:"session"`
	Cache       CacheConfig     `yaml:"cache"`
	Spend       SpendConfig     `yaml:"spend"`
	VTE         VTEConfig       `yaml:"vte"`
	Jobs        JobsConfig      `yaml:"jobs"`
	Analytics   AnalyticsConfig `yaml:"analytics"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
}

// OpenAIConfig points at the Azure OpenAI resource serving the assistant.
type OpenAIConfig struct {
	Endpoint   string             `yaml:"endpoint" env:"AZURE_OPENAI_ENDPOINT"`
	APIKey     string             `yaml:"api_key" env:"AZURE_OPENAI_API_KEY"`
	APIVersion string             `yaml:"api_version" env:"AZURE_OPENAI_API_VERSION"`
	Deployment string             `yaml:"deployment" env:"AZURE_OPENAI_DEPLOYMENT"`
	Models     []DeploymentConfig `yaml:"models"`
}

// DeploymentConfig maps a model name to the endpoint and deployment that
// serve it. Models without an entry use the top-level endpoint and the model
// name as the deployment.
type DeploymentConfig struct {
	Model      string `yaml:"model"`
	Endpoint   string `yaml:"endpoint"`
	Deployment string `yaml:"deployment"`
}

// SessionConfig controls conversation session detection.
type SessionConfig struct {
	GapTimeout time.Duration `yaml:"gap_timeout"`
}

// CacheConfig controls the completion response cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// SpendConfig controls estimated-spend limits.
type SpendConfig struct {
	Enabled  bool                 `yaml:"enabled"`
	Policies []models.SpendPolicy `yaml:"policies"`
}

// VTEConfig holds the clinical goals the alerting jobs check against.
// GoalPercent and MaxEventRate are percentages (85 means 85%).
type VTEConfig struct {
	GoalPercent  float64  `yaml:"goal_percent"`
	MaxEventRate float64  `yaml:"max_event_rate"`
	Departments  []string `yaml:"departments"`
}

// JobsConfig holds cron schedules for the background jobs.
type JobsConfig struct {
	Enabled        bool   `yaml:"enabled"`
	DataRefresh    string `yaml:"data_refresh"`
	ThresholdCheck string `yaml:"threshold_check"`
	CostAggregator string `yaml:"cost_aggregator"`
	WeeklyReport   string `yaml:"weekly_report"`
}

// AnalyticsConfig holds Log Analytics workspace credentials. When empty, the
// collector logs events to the console instead of shipping them.
type AnalyticsConfig struct {
	WorkspaceID string `yaml:"workspace_id" env:"LOG_ANALYTICS_WORKSPACE_ID"`
	SharedKey   string `yaml:"shared_key" env:"LOG_ANALYTICS_SHARED_KEY"`
	LogType     string `yaml:"log_type"`
}

// TelemetryConfig controls the OTLP trace exporter.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" env:"CLINSIGHT_TELEMETRY_ENABLED"`
	ServiceName string `yaml:"service_name"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen:      ":8080",
		DBPath:      "clinsight.db",
		PricingPath: "pricing/prices.yaml",
		DataPath:    "data/vte_records.json",
		BlobDir:     "blobs",
		OpenAI: OpenAIConfig{
			APIVersion: "2024-12-01-preview",
			Deployment: "gpt-5-mini",
		},
		Session: SessionConfig{
			GapTimeout: 30 * time.Minute,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Hour,
		},
		VTE: VTEConfig{
			GoalPercent:  85.0,
			MaxEventRate: 5.0,
			Departments: []string{
				"Medical ICU", "Surgical ICU", "General Medicine", "Orthopedics",
				"Cardiology", "Oncology", "Neurology", "Emergency",
			},
		},
		Jobs: JobsConfig{
			Enabled:        true,
			DataRefresh:    "0 6 * * *",
			ThresholdCheck: "0 * * * *",
			CostAggregator: "0 0 * * *",
			WeeklyReport:   "0 8 * * 1",
		},
		Analytics: AnalyticsConfig{
			LogType: "ChatAnalytics",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "clinsight",
		},
	}
}

// Load reads a YAML config file, expands environment variables inside it,
// and applies env-tagged overrides on top. A missing file is tolerated:
// defaults plus environment overrides are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
		// defaults + env only
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	return cfg, nil
}

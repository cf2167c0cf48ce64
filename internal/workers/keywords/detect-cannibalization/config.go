package detectcannibalization

import (
	"fmt"
	"time"

	"keyword-intelligence/internal/common/config"
	"keyword-intelligence/internal/engine/clustering"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Concurrency   int           `mapstructure:"concurrency"`

	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	URLOverlapThreshold float64 `mapstructure:"url_overlap_threshold"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:             true,
		MaxJobsActive:       3,
		Timeout:             120 * time.Second,
		Concurrency:         1,
		SimilarityThreshold: clustering.DefaultCannibalizationSimilarity,
		URLOverlapThreshold: clustering.DefaultURLOverlapThreshold,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be within (0, 1]")
	}
	if c.URLOverlapThreshold <= 0 || c.URLOverlapThreshold >= 1 {
		return fmt.Errorf("url_overlap_threshold must be within (0, 1)")
	}
	return nil
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}

	if v := appConfig.Engine.Cannibalization.SimilarityThreshold; v > 0 {
		cfg.SimilarityThreshold = v
	}
	if v := appConfig.Engine.Cannibalization.URLOverlapThreshold; v > 0 {
		cfg.URLOverlapThreshold = v
	}

	if workerCfg, exists := appConfig.Workers[TaskType]; exists {
		cfg.Enabled = workerCfg.Enabled
		if workerCfg.MaxJobsActive > 0 {
			cfg.MaxJobsActive = workerCfg.MaxJobsActive
		}
		if workerCfg.Timeout > 0 {
			cfg.Timeout = config.GetDuration(workerCfg.Timeout)
		}
		if workerCfg.Concurrency > 0 {
			cfg.Concurrency = workerCfg.Concurrency
		}
	}
	return cfg
}

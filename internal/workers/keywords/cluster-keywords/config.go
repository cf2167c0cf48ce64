package clusterkeywords

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

	DefaultMethod       clustering.Method `mapstructure:"default_method"`
	Threshold           float64           `mapstructure:"threshold"`
	MinClusterSize      int               `mapstructure:"min_cluster_size"`
	MaxClusterSize      int               `mapstructure:"max_cluster_size"`
	MembershipThreshold float64           `mapstructure:"membership_threshold"`
	// MaxKeywords bounds the keyword set of one job, including sets loaded
	// from the keyword source.
	MaxKeywords int `mapstructure:"max_keywords"`
}

// DefaultMaxKeywords matches the maxItems of the job input schema.
const DefaultMaxKeywords = 5000

func DefaultConfig() *Config {
	return &Config{
		Enabled:             true,
		MaxJobsActive:       3,
		Timeout:             120 * time.Second,
		Concurrency:         1,
		DefaultMethod:       clustering.MethodSemantic,
		Threshold:           clustering.DefaultThreshold,
		MinClusterSize:      clustering.DefaultMinClusterSize,
		MaxClusterSize:      clustering.DefaultMaxClusterSize,
		MembershipThreshold: clustering.DefaultMembershipThreshold,
		MaxKeywords:         DefaultMaxKeywords,
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
	if c.Threshold <= 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be within (0, 1]")
	}
	if c.MaxKeywords <= 0 {
		return fmt.Errorf("max_keywords must be positive")
	}
	if c.MinClusterSize > c.MaxClusterSize {
		return fmt.Errorf("min_cluster_size exceeds max_cluster_size")
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

	cl := appConfig.Engine.Clustering
	if cl.DefaultMethod != "" {
		cfg.DefaultMethod = clustering.Method(cl.DefaultMethod)
	}
	if cl.Threshold > 0 {
		cfg.Threshold = cl.Threshold
	}
	if cl.MinClusterSize > 0 {
		cfg.MinClusterSize = cl.MinClusterSize
	}
	if cl.MaxClusterSize > 0 {
		cfg.MaxClusterSize = cl.MaxClusterSize
	}
	if cl.MembershipThreshold > 0 {
		cfg.MembershipThreshold = cl.MembershipThreshold
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

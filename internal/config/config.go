// Package config provides layered configuration for the phasergun
// retrieval and cache core: built-in defaults, an optional project config
// file (phasergun.yaml at the project root), and environment variable
// overrides (PHASERGUN_*), in that order of increasing precedence — the
// same layering the teacher's internal/config package uses for AmanMCP's
// search/embeddings configuration, retargeted to this domain's surface.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete phasergun configuration.
type Config struct {
	Cache      CacheConfig      `yaml:"cache" json:"cache"`
	Lock       LockConfig       `yaml:"lock" json:"lock"`
	Retrieval  RetrievalConfig  `yaml:"retrieval" json:"retrieval"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// CacheConfig controls the on-disk cache lifecycle (spec.md §4.7, §6).
type CacheConfig struct {
	// Enabled toggles CACHE_ENABLED (spec.md §6). When false, the
	// CacheCoordinator still builds an in-memory CacheEntry per request but
	// never reads or writes the on-disk cache files.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// RootDir, when set, is used directly as the cache root in place of
	// <OS temp dir>/phasergun-cache (spec.md §6). Empty means use that
	// default.
	RootDir string `yaml:"root_dir" json:"root_dir"`
}

// LockConfig controls LockManager.Acquire (spec.md §4.2).
type LockConfig struct {
	StaleMs      int `yaml:"stale_ms" json:"stale_ms"`
	MaxRetries   int `yaml:"max_retries" json:"max_retries"`
	MinBackoffMs int `yaml:"min_backoff_ms" json:"min_backoff_ms"`
	MaxBackoffMs int `yaml:"max_backoff_ms" json:"max_backoff_ms"`
}

// StaleDuration returns StaleMs as a time.Duration.
func (c LockConfig) StaleDuration() time.Duration {
	return time.Duration(c.StaleMs) * time.Millisecond
}

// MinBackoff returns MinBackoffMs as a time.Duration.
func (c LockConfig) MinBackoff() time.Duration {
	return time.Duration(c.MinBackoffMs) * time.Millisecond
}

// MaxBackoff returns MaxBackoffMs as a time.Duration.
func (c LockConfig) MaxBackoff() time.Duration {
	return time.Duration(c.MaxBackoffMs) * time.Millisecond
}

// RetrievalConfig holds RetrievalService.retrieve's default options
// (spec.md §4.8).
type RetrievalConfig struct {
	TopKProcedures   int  `yaml:"top_k_procedures" json:"top_k_procedures"`
	TopKContext      int  `yaml:"top_k_context" json:"top_k_context"`
	IncludeSummaries bool `yaml:"include_summaries" json:"include_summaries"`
	MaxTokens        int  `yaml:"max_tokens" json:"max_tokens"`
}

// EmbeddingsConfig controls the Embedder (spec.md §4.4).
type EmbeddingsConfig struct {
	ModelVersion  string `yaml:"model_version" json:"model_version"`
	Dimensions    int    `yaml:"dimensions" json:"dimensions"`
	BatchSize     int    `yaml:"batch_size" json:"batch_size"`
	MemoStorePath string `yaml:"memo_store_path" json:"memo_store_path"`
	MemoLRUSize   int    `yaml:"memo_lru_size" json:"memo_lru_size"`
	SummaryWords  int    `yaml:"summary_words" json:"summary_words"`
}

// LoggingConfig controls internal/logging.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	FilePath  string `yaml:"file_path" json:"file_path"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// Default returns the built-in configuration defaults, matching every
// default spec.md documents: 60s stale lock, 500-3000ms backoff, topK 3/2,
// includeSummaries true, maxTokens 150000, 250-word summaries, D=384.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Enabled: true,
		},
		Lock: LockConfig{
			StaleMs:      60_000,
			MaxRetries:   8,
			MinBackoffMs: 500,
			MaxBackoffMs: 3000,
		},
		Retrieval: RetrievalConfig{
			TopKProcedures:   3,
			TopKContext:      2,
			IncludeSummaries: true,
			MaxTokens:        150_000,
		},
		Embeddings: EmbeddingsConfig{
			ModelVersion:  "static-384-v1",
			Dimensions:    384,
			BatchSize:     32,
			MemoStorePath: defaultMemoStorePath(),
			MemoLRUSize:   1000,
			SummaryWords:  250,
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// ConfigFileName is the project-scoped config file spec.md §2's "primary
// context configuration" lives alongside.
const ConfigFileName = "phasergun.yaml"

// defaultMemoStorePath returns a default on-disk path for the embedding
// memoization table (spec.md §4.4), siblinged under the same
// platform-temp-dir "phasergun-cache" root internal/cache uses for the rest
// of the cache layout, so the memoizer is live out of the box instead of
// requiring every caller to opt in with an explicit path.
func defaultMemoStorePath() string {
	return filepath.Join(os.TempDir(), "phasergun-cache", "embeddings", "memo.db")
}

// Load builds a Config by layering defaults, an optional
// <projectRoot>/phasergun.yaml file, and PHASERGUN_* environment variables.
func Load(projectRoot string) (Config, error) {
	cfg := Default()

	path := filepath.Join(projectRoot, ConfigFileName)
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyEnvOverrides layers PHASERGUN_* environment variables over cfg,
// highest precedence per spec.md §6's CACHE_ENABLED toggle and this
// package's doc comment.
func applyEnvOverrides(cfg *Config) {
	if v, ok := lookupBool("CACHE_ENABLED"); ok {
		cfg.Cache.Enabled = v
	}
	if v, ok := os.LookupEnv("PHASERGUN_CACHE_ROOT"); ok {
		cfg.Cache.RootDir = v
	}
	if v, ok := lookupInt("PHASERGUN_LOCK_STALE_MS"); ok {
		cfg.Lock.StaleMs = v
	}
	if v, ok := lookupInt("PHASERGUN_LOCK_MAX_RETRIES"); ok {
		cfg.Lock.MaxRetries = v
	}
	if v, ok := lookupInt("PHASERGUN_TOP_K_PROCEDURES"); ok {
		cfg.Retrieval.TopKProcedures = v
	}
	if v, ok := lookupInt("PHASERGUN_TOP_K_CONTEXT"); ok {
		cfg.Retrieval.TopKContext = v
	}
	if v, ok := lookupInt("PHASERGUN_MAX_TOKENS"); ok {
		cfg.Retrieval.MaxTokens = v
	}
	if v, ok := os.LookupEnv("PHASERGUN_MEMO_STORE_PATH"); ok {
		cfg.Embeddings.MemoStorePath = v
	}
	if v, ok := os.LookupEnv("PHASERGUN_LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := os.LookupEnv("PHASERGUN_LOG_FILE"); ok {
		cfg.Logging.FilePath = v
	}
}

// lookupBool reads an environment variable both under its bare name
// (CACHE_ENABLED, as spec.md §6 names it literally) and under the
// PHASERGUN_ prefix used by every other override, preferring the prefixed
// form when both are set.
func lookupBool(bareName string) (bool, bool) {
	if v, ok := os.LookupEnv("PHASERGUN_" + bareName); ok {
		return parseBool(v), true
	}
	if v, ok := os.LookupEnv(bareName); ok {
		return parseBool(v), true
	}
	return false, false
}

func lookupInt(name string) (int, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false
	}
	return b
}

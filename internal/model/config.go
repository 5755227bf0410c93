package model

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config holds all runtime settings.
type Config struct {
	Parser      ParserConfig      `yaml:"parser" mapstructure:"parser"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Extraction  ExtractionConfig  `yaml:"extraction" mapstructure:"extraction"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// ParserConfig points at a CoreNLP-compatible annotation server.
type ParserConfig struct {
	URL               string        `yaml:"url" mapstructure:"url"`
	Annotators        string        `yaml:"annotators" mapstructure:"annotators"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// CacheConfig controls caching of parser annotations.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ExtractionConfig restricts which mentions and relations are used.
type ExtractionConfig struct {
	EntityTypes    []string `yaml:"entity_types" mapstructure:"entity_types"`
	MentionTypes   []string `yaml:"mention_types" mapstructure:"mention_types"`
	RelationTypes  []string `yaml:"relation_types" mapstructure:"relation_types"`
	SkipSameEntity bool     `yaml:"skip_same_entity" mapstructure:"skip_same_entity"`
}

// OutputConfig selects the instance format.
type OutputConfig struct {
	Format  string `yaml:"format" mapstructure:"format"` // json or kernel
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// ConcurrencyConfig sizes the document worker pool.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or console
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	cacheDir := ".relcontext/cache"
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".relcontext", "cache")
	}
	return &Config{
		Parser: ParserConfig{
			URL:               "http://localhost:9000",
			Annotators:        "tokenize,ssplit,pos,parse,depparse",
			Timeout:           60 * time.Second,
			MaxBodyBytes:      8 << 20,
			RequestsPerSecond: 5,
			Burst:             2,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       cacheDir,
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Extraction: ExtractionConfig{
			EntityTypes:    append([]string(nil), EntityTypes...),
			MentionTypes:   append([]string(nil), MentionTypes...),
			RelationTypes:  append([]string(nil), RelationTypes...),
			SkipSameEntity: true,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

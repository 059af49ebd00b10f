// Package config loads and validates knowledgeengine configuration.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete recognized configuration surface (spec.md §6).
type Config struct {
	Chunk   ChunkConfig   `yaml:"chunk" json:"chunk"`
	Embed   EmbedConfig   `yaml:"embed" json:"embed"`
	Batch   BatchConfig   `yaml:"batch" json:"batch"`
	Media   MediaConfig   `yaml:"media" json:"media"`
	Search  SearchConfig  `yaml:"search" json:"search"`
	Output  OutputConfig  `yaml:"output" json:"output"`
}

// ChunkConfig configures the smart splitter (C3).
type ChunkConfig struct {
	ChunkSize           int `yaml:"chunk_size" json:"chunk_size"`
	CodeChunkSize       int `yaml:"code_chunk_size" json:"code_chunk_size"`
	TranscriptChunkSize int `yaml:"transcript_chunk_size" json:"transcript_chunk_size"`
	OCRChunkSize        int `yaml:"ocr_chunk_size" json:"ocr_chunk_size"`
}

// EmbedConfig configures the embedder client, rate limiter, and retry (C5-C7).
type EmbedConfig struct {
	EmbeddingDim int `yaml:"embedding_dim" json:"embedding_dim"`
	EmbedderRPM  int `yaml:"embedder_rpm" json:"embedder_rpm"`
	EmbedderBurst int `yaml:"embedder_burst" json:"embedder_burst"`
	// RateLimitRPM bounds the media analyzer's upstream calls (C9), kept
	// distinct from EmbedderRPM because the embedder and analyzer are
	// typically different upstream services with different quotas.
	RateLimitRPM int `yaml:"rate_limit_rpm" json:"rate_limit_rpm"`
}

// BatchConfig configures the embedder's deferred/batch submission mode.
type BatchConfig struct {
	Enabled        bool          `yaml:"batch_enabled" json:"batch_enabled"`
	MinQueueSize   int           `yaml:"batch_min_queue_size" json:"batch_min_queue_size"`
	PollInterval   time.Duration `yaml:"batch_poll_interval" json:"batch_poll_interval"`
	// AllowedModels lists the models known to support batch mode. BatchConfig
	// is loaded here, but no other package reads it to gate batch mode.
	AllowedModels []string `yaml:"batch_allowed_models" json:"batch_allowed_models"`
}

// MediaConfig configures the media analyzer and pipeline (C9-C11).
type MediaConfig struct {
	OCRParserMode          string `yaml:"media_ocr_parser_mode" json:"media_ocr_parser_mode"` // "markdown" | "plain"
	EnableTimecodes        bool   `yaml:"media_enable_timecodes" json:"media_enable_timecodes"`
	StrictTimecodeOrdering bool   `yaml:"media_strict_timecode_ordering" json:"media_strict_timecode_ordering"`
}

// SearchConfig configures hybrid RRF fusion (C8/C13).
type SearchConfig struct {
	RRFK int `yaml:"rrf_k" json:"rrf_k"`
}

// OutputConfig configures analyzer prompt templating (C9).
type OutputConfig struct {
	Language string `yaml:"output_language" json:"output_language"`
}

// NewConfig returns a Config populated with the spec's stated defaults.
func NewConfig() *Config {
	return &Config{
		Chunk: ChunkConfig{
			ChunkSize:           1800,
			CodeChunkSize:       2000,
			TranscriptChunkSize: 1800,
			OCRChunkSize:        1800,
		},
		Embed: EmbedConfig{
			EmbeddingDim:  768,
			EmbedderRPM:   60,
			EmbedderBurst: 10,
			RateLimitRPM:  60,
		},
		Batch: BatchConfig{
			Enabled:       false,
			MinQueueSize:  16,
			PollInterval:  5 * time.Second,
			AllowedModels: nil,
		},
		Media: MediaConfig{
			OCRParserMode:          "markdown",
			EnableTimecodes:        true,
			StrictTimecodeOrdering: false,
		},
		Search: SearchConfig{
			RRFK: 60,
		},
		Output: OutputConfig{
			Language: "en",
		},
	}
}

// Load applies configuration in order of increasing precedence:
//  1. hardcoded defaults (NewConfig)
//  2. a YAML file at dir/.knowledgeengine.yaml (if present)
//  3. KNOWLEDGEENGINE_* environment variables
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{".knowledgeengine.yaml", ".knowledgeengine.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		var parsed Config
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		c.mergeWith(&parsed)
		return nil
	}
	return nil
}

// mergeWith overlays non-zero fields of other onto c.
func (c *Config) mergeWith(other *Config) {
	if other.Chunk.ChunkSize != 0 {
		c.Chunk.ChunkSize = other.Chunk.ChunkSize
	}
	if other.Chunk.CodeChunkSize != 0 {
		c.Chunk.CodeChunkSize = other.Chunk.CodeChunkSize
	}
	if other.Chunk.TranscriptChunkSize != 0 {
		c.Chunk.TranscriptChunkSize = other.Chunk.TranscriptChunkSize
	}
	if other.Chunk.OCRChunkSize != 0 {
		c.Chunk.OCRChunkSize = other.Chunk.OCRChunkSize
	}

	if other.Embed.EmbeddingDim != 0 {
		c.Embed.EmbeddingDim = other.Embed.EmbeddingDim
	}
	if other.Embed.EmbedderRPM != 0 {
		c.Embed.EmbedderRPM = other.Embed.EmbedderRPM
	}
	if other.Embed.EmbedderBurst != 0 {
		c.Embed.EmbedderBurst = other.Embed.EmbedderBurst
	}
	if other.Embed.RateLimitRPM != 0 {
		c.Embed.RateLimitRPM = other.Embed.RateLimitRPM
	}

	if other.Batch.Enabled {
		c.Batch.Enabled = true
	}
	if other.Batch.MinQueueSize != 0 {
		c.Batch.MinQueueSize = other.Batch.MinQueueSize
	}
	if other.Batch.PollInterval != 0 {
		c.Batch.PollInterval = other.Batch.PollInterval
	}
	if len(other.Batch.AllowedModels) > 0 {
		c.Batch.AllowedModels = other.Batch.AllowedModels
	}

	if other.Media.OCRParserMode != "" {
		c.Media.OCRParserMode = other.Media.OCRParserMode
	}
	c.Media.EnableTimecodes = other.Media.EnableTimecodes || c.Media.EnableTimecodes
	if other.Media.StrictTimecodeOrdering {
		c.Media.StrictTimecodeOrdering = true
	}

	if other.Search.RRFK != 0 {
		c.Search.RRFK = other.Search.RRFK
	}

	if other.Output.Language != "" {
		c.Output.Language = other.Output.Language
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("KNOWLEDGEENGINE_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Chunk.ChunkSize = n
		}
	}
	if v := os.Getenv("KNOWLEDGEENGINE_CODE_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Chunk.CodeChunkSize = n
		}
	}
	if v := os.Getenv("KNOWLEDGEENGINE_EMBEDDING_DIM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Embed.EmbeddingDim = n
		}
	}
	if v := os.Getenv("KNOWLEDGEENGINE_EMBEDDER_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Embed.EmbedderRPM = n
		}
	}
	if v := os.Getenv("KNOWLEDGEENGINE_RATE_LIMIT_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Embed.RateLimitRPM = n
		}
	}
	if v := os.Getenv("KNOWLEDGEENGINE_BATCH_ENABLED"); v != "" {
		c.Batch.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("KNOWLEDGEENGINE_MEDIA_OCR_PARSER_MODE"); v != "" {
		c.Media.OCRParserMode = v
	}
	if v := os.Getenv("KNOWLEDGEENGINE_OUTPUT_LANGUAGE"); v != "" {
		c.Output.Language = v
	}
	if v := os.Getenv("KNOWLEDGEENGINE_RRF_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.RRFK = n
		}
	}
}

// Validate rejects configurations that would violate component invariants.
func (c *Config) Validate() error {
	if c.Chunk.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.Chunk.ChunkSize)
	}
	if c.Chunk.CodeChunkSize <= 0 {
		return fmt.Errorf("code_chunk_size must be positive, got %d", c.Chunk.CodeChunkSize)
	}
	if c.Embed.EmbeddingDim <= 0 {
		return fmt.Errorf("embedding_dim must be positive, got %d", c.Embed.EmbeddingDim)
	}
	if c.Embed.EmbedderRPM <= 0 {
		return fmt.Errorf("embedder_rpm must be positive, got %d", c.Embed.EmbedderRPM)
	}
	if c.Embed.EmbedderBurst <= 0 {
		return fmt.Errorf("embedder_burst must be positive, got %d", c.Embed.EmbedderBurst)
	}
	if c.Media.OCRParserMode != "markdown" && c.Media.OCRParserMode != "plain" {
		return fmt.Errorf("media_ocr_parser_mode must be \"markdown\" or \"plain\", got %q", c.Media.OCRParserMode)
	}
	if c.Search.RRFK <= 0 {
		return fmt.Errorf("rrf_k must be positive, got %d", c.Search.RRFK)
	}
	if math.IsNaN(float64(c.Search.RRFK)) {
		return fmt.Errorf("rrf_k must be a real number")
	}
	return nil
}

package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Owner      string           `toml:"owner"` // Default owner identity for CLI commands (overridden by --owner / DOCQA_OWNER)
	Pipeline   PipelineConfig   `toml:"pipeline"`
	Embedding  EmbeddingConfig  `toml:"embedding"`
	Generation GenerationConfig `toml:"generation"`
	Gemini     GeminiConfig     `toml:"gemini"`
	Claude     ClaudeConfig     `toml:"claude"`
	Limits     LimitsConfig     `toml:"limits"`
	Storage    StorageConfig    `toml:"storage"`
	Logging    LoggingConfig    `toml:"logging"`
	Export     ExportConfig     `toml:"export"`
}

// PipelineConfig contains chunking and retrieval settings
type PipelineConfig struct {
	ChunkSize    int `toml:"chunk_size" validate:"gt=0"`     // Characters per chunk (default: 1000)
	ChunkOverlap int `toml:"chunk_overlap" validate:"gte=0"` // Characters shared by adjacent chunks (default: 200)
	TopK         int `toml:"top_k" validate:"gt=0"`          // Chunks retrieved per question (default: 5)
	HistoryTurns int `toml:"history_turns" validate:"gte=0"` // Chat turns fed into the prompt (default: 5)
}

// EmbeddingConfig contains embedding client settings
type EmbeddingConfig struct {
	Model             string  `toml:"model" validate:"required"`            // Embedding model (default: "text-embedding-004")
	Dimensions        int     `toml:"dimensions" validate:"gte=0"`          // Expected vector length, 0 disables the check (default: 768)
	BatchSize         int     `toml:"batch_size" validate:"gt=0"`           // Parallel embeddings per batch (default: 5)
	BatchCooldown     string  `toml:"batch_cooldown"`                       // Pause between batches (default: "1s")
	MaxRetries        int     `toml:"max_retries" validate:"gte=0"`         // Additional attempts per text (default: 3)
	RetryDelay        string  `toml:"retry_delay"`                          // Fixed delay between attempts (default: "2s")
	Timeout           string  `toml:"timeout"`                              // Per-call timeout (default: "30s")
	RequestsPerSecond float64 `toml:"requests_per_second" validate:"gte=0"` // Provider call rate cap, 0 = unlimited
}

// GenerationConfig contains answer generator settings
type GenerationConfig struct {
	Provider   LLMProvider `toml:"provider" validate:"oneof=gemini claude"` // "gemini" or "claude" (default: "gemini")
	MaxRetries int         `toml:"max_retries" validate:"gte=0"`            // Retry budget for transient faults (default: 3)
	BaseDelay  string      `toml:"base_delay"`                              // Linear backoff base (default: "2s")
	Timeout    string      `toml:"timeout"`                                 // Per-call timeout (default: "60s")
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key (or GEMINI_API_KEY)
	Model       string  `toml:"model"`       // Generation model (default: "gemini-2.5-flash")
	Temperature float32 `toml:"temperature"` // Generation temperature (default: 0.7)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key (or ANTHROPIC_API_KEY)
	Model       string  `toml:"model"`       // Generation model (default: "claude-haiku-4-5")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 2048)
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// Upload limits applied when no config is loaded
const (
	DefaultMaxUploadBytes int64 = 10 << 20
	DefaultMaxImageBytes  int64 = 5 << 20
)

// LimitsConfig caps the size of uploaded documents and question images
type LimitsConfig struct {
	MaxUploadBytes int64 `toml:"max_upload_bytes" validate:"gt=0"` // Largest ingestible document (default: 10MB)
	MaxImageBytes  int64 `toml:"max_image_bytes" validate:"gt=0"`  // Largest question image (default: 5MB)
}

// LLMProvider represents the generation provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// ExportConfig controls transcript rendering
type ExportConfig struct {
	FontSize float64 `toml:"font_size"` // Body font size in points (default: 10)
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			TopK:         5,
			HistoryTurns: 5,
		},
		Embedding: EmbeddingConfig{
			Model:         "text-embedding-004",
			Dimensions:    768,
			BatchSize:     5,
			BatchCooldown: "1s",
			MaxRetries:    3,
			RetryDelay:    "2s",
			Timeout:       "30s",
		},
		Generation: GenerationConfig{
			Provider:   LLMProviderGemini,
			MaxRetries: 3,
			BaseDelay:  "2s",
			Timeout:    "60s",
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			Model:       "claude-haiku-4-5",
			MaxTokens:   2048,
			Temperature: 0.7,
		},
		Limits: LimitsConfig{
			MaxUploadBytes: DefaultMaxUploadBytes,
			MaxImageBytes:  DefaultMaxImageBytes,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Export: ExportConfig{
			FontSize: 10,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if owner := os.Getenv("DOCQA_OWNER"); owner != "" {
		config.Owner = owner
	}

	// Pipeline configuration
	if chunkSize := os.Getenv("DOCQA_CHUNK_SIZE"); chunkSize != "" {
		if v, err := strconv.Atoi(chunkSize); err == nil {
			config.Pipeline.ChunkSize = v
		}
	}
	if overlap := os.Getenv("DOCQA_CHUNK_OVERLAP"); overlap != "" {
		if v, err := strconv.Atoi(overlap); err == nil {
			config.Pipeline.ChunkOverlap = v
		}
	}
	if topK := os.Getenv("DOCQA_TOP_K"); topK != "" {
		if v, err := strconv.Atoi(topK); err == nil {
			config.Pipeline.TopK = v
		}
	}

	// Embedding configuration
	if model := os.Getenv("DOCQA_EMBEDDING_MODEL"); model != "" {
		config.Embedding.Model = model
	}
	if batchSize := os.Getenv("DOCQA_EMBEDDING_BATCH_SIZE"); batchSize != "" {
		if v, err := strconv.Atoi(batchSize); err == nil {
			config.Embedding.BatchSize = v
		}
	}
	if cooldown := os.Getenv("DOCQA_EMBEDDING_BATCH_COOLDOWN"); cooldown != "" {
		config.Embedding.BatchCooldown = cooldown
	}
	if retries := os.Getenv("DOCQA_EMBEDDING_MAX_RETRIES"); retries != "" {
		if v, err := strconv.Atoi(retries); err == nil {
			config.Embedding.MaxRetries = v
		}
	}
	if rps := os.Getenv("DOCQA_EMBEDDING_REQUESTS_PER_SECOND"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			config.Embedding.RequestsPerSecond = v
		}
	}

	// Generation configuration
	if provider := os.Getenv("DOCQA_GENERATION_PROVIDER"); provider != "" {
		config.Generation.Provider = LLMProvider(strings.ToLower(provider))
	}
	if retries := os.Getenv("DOCQA_GENERATION_MAX_RETRIES"); retries != "" {
		if v, err := strconv.Atoi(retries); err == nil {
			config.Generation.MaxRetries = v
		}
	}
	if baseDelay := os.Getenv("DOCQA_GENERATION_BASE_DELAY"); baseDelay != "" {
		config.Generation.BaseDelay = baseDelay
	}

	// Gemini configuration (GEMINI_API_KEY first, DOCQA_GEMINI_API_KEY wins)
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if apiKey := os.Getenv("DOCQA_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("DOCQA_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}

	// Claude configuration (ANTHROPIC_API_KEY first, DOCQA_CLAUDE_API_KEY wins)
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("DOCQA_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if model := os.Getenv("DOCQA_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}

	// Limits configuration
	if maxUpload := os.Getenv("DOCQA_MAX_UPLOAD_BYTES"); maxUpload != "" {
		if v, err := strconv.ParseInt(maxUpload, 10, 64); err == nil {
			config.Limits.MaxUploadBytes = v
		}
	}
	if maxImage := os.Getenv("DOCQA_MAX_IMAGE_BYTES"); maxImage != "" {
		if v, err := strconv.ParseInt(maxImage, 10, 64); err == nil {
			config.Limits.MaxImageBytes = v
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("DOCQA_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("DOCQA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("DOCQA_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// Validate checks the pipeline settings. Invalid settings are fatal at startup.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ConfigurationError{
				Field:  fe.Namespace(),
				Reason: fmt.Sprintf("failed '%s' constraint (value: %v)", fe.Tag(), fe.Value()),
			}
		}
		return &ConfigurationError{Field: "config", Reason: err.Error()}
	}

	if c.Pipeline.ChunkOverlap >= c.Pipeline.ChunkSize {
		return &ConfigurationError{
			Field:  "pipeline.chunk_overlap",
			Reason: fmt.Sprintf("overlap %d must be smaller than chunk_size %d", c.Pipeline.ChunkOverlap, c.Pipeline.ChunkSize),
		}
	}

	// Checked in declaration order
	durations := []struct {
		field string
		value string
	}{
		{"embedding.batch_cooldown", c.Embedding.BatchCooldown},
		{"embedding.retry_delay", c.Embedding.RetryDelay},
		{"embedding.timeout", c.Embedding.Timeout},
		{"generation.base_delay", c.Generation.BaseDelay},
		{"generation.timeout", c.Generation.Timeout},
	}
	for _, duration := range durations {
		d, err := time.ParseDuration(duration.value)
		if err != nil {
			return &ConfigurationError{Field: duration.field, Reason: fmt.Sprintf("invalid duration '%s'", duration.value)}
		}
		if d < 0 {
			return &ConfigurationError{Field: duration.field, Reason: "duration must not be negative"}
		}
	}

	return nil
}

// EmbeddingBatchCooldown returns the parsed inter-batch cooldown
func (c *Config) EmbeddingBatchCooldown() time.Duration {
	return parseDurationOr(c.Embedding.BatchCooldown, time.Second)
}

// EmbeddingRetryDelay returns the parsed fixed delay between embedding attempts
func (c *Config) EmbeddingRetryDelay() time.Duration {
	return parseDurationOr(c.Embedding.RetryDelay, 2*time.Second)
}

// EmbeddingTimeout returns the per-call embedding timeout
func (c *Config) EmbeddingTimeout() time.Duration {
	return parseDurationOr(c.Embedding.Timeout, 30*time.Second)
}

// GenerationBaseDelay returns the linear backoff base for generation retries
func (c *Config) GenerationBaseDelay() time.Duration {
	return parseDurationOr(c.Generation.BaseDelay, 2*time.Second)
}

// GenerationTimeout returns the per-call generation timeout
func (c *Config) GenerationTimeout() time.Duration {
	return parseDurationOr(c.Generation.Timeout, 60*time.Second)
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

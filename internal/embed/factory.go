package embed

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ProviderType represents an embedding provider.
type ProviderType string

const (
	// ProviderOllama uses the Ollama HTTP API for embeddings (default).
	ProviderOllama ProviderType = "ollama"

	// ProviderStatic uses hash-based embeddings (fallback/testing, no upstream).
	ProviderStatic ProviderType = "static"
)

// NewEmbedder creates an embedder for the given provider and model.
// KNOWLEDGEENGINE_EMBEDDER overrides provider selection; unset falls back to
// the provider argument, and an unrecognized provider argument defaults to
// Ollama. Query embedding caching is enabled unless KNOWLEDGEENGINE_EMBED_CACHE
// is set to a falsy value.
func NewEmbedder(ctx context.Context, provider ProviderType, model string) (Embedder, error) {
	selected := provider
	if env := os.Getenv("KNOWLEDGEENGINE_EMBEDDER"); env != "" {
		selected = ParseProvider(env)
	}

	var embedder Embedder
	var err error
	switch selected {
	case ProviderStatic:
		embedder, err = NewStaticEmbedder768(), nil
	default:
		embedder, err = newOllamaWithFallback(ctx, model)
	}
	if err != nil {
		return nil, err
	}

	if !isCacheDisabled() {
		embedder = NewCachedEmbedderWithDefaults(embedder)
	}
	return embedder, nil
}

func isCacheDisabled() bool {
	v := strings.ToLower(os.Getenv("KNOWLEDGEENGINE_EMBED_CACHE"))
	return v == "false" || v == "0" || v == "off" || v == "disabled"
}

// newOllamaWithFallback creates an Ollama embedder, returning a descriptive
// error (no silent fallback to static) when Ollama is unreachable.
func newOllamaWithFallback(ctx context.Context, model string) (Embedder, error) {
	cfg := DefaultOllamaConfig()
	if model != "" {
		cfg.Model = model
	}
	if host := os.Getenv("KNOWLEDGEENGINE_OLLAMA_HOST"); host != "" {
		cfg.Host = host
	}
	if timeoutStr := os.Getenv("KNOWLEDGEENGINE_OLLAMA_TIMEOUT"); timeoutStr != "" {
		if timeout, err := time.ParseDuration(timeoutStr); err == nil {
			cfg.Timeout = timeout
		}
	}
	if delayStr := os.Getenv("KNOWLEDGEENGINE_INTER_BATCH_DELAY"); delayStr != "" {
		if delay, err := time.ParseDuration(delayStr); err == nil && delay >= 0 {
			if delay > MaxInterBatchDelay {
				delay = MaxInterBatchDelay
			}
			cfg.InterBatchDelay = delay
		}
	}
	if progressionStr := os.Getenv("KNOWLEDGEENGINE_TIMEOUT_PROGRESSION"); progressionStr != "" {
		if progression, err := strconv.ParseFloat(progressionStr, 64); err == nil && progression >= 1.0 {
			if progression > MaxTimeoutProgression {
				progression = MaxTimeoutProgression
			}
			cfg.TimeoutProgression = progression
		}
	}

	embedder, err := NewOllamaEmbedder(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ollama unavailable: %w (set KNOWLEDGEENGINE_EMBEDDER=static to run without an embedding backend)", err)
	}
	return embedder, nil
}

// ParseProvider converts a string to a ProviderType, defaulting to Ollama.
func ParseProvider(s string) ProviderType {
	switch strings.ToLower(s) {
	case "static":
		return ProviderStatic
	default:
		return ProviderOllama
	}
}

func (p ProviderType) String() string {
	return string(p)
}

// ValidProviders returns all recognized provider names.
func ValidProviders() []string {
	return []string{string(ProviderOllama), string(ProviderStatic)}
}

// IsValidProvider reports whether s names a recognized provider.
func IsValidProvider(s string) bool {
	for _, p := range ValidProviders() {
		if strings.EqualFold(s, p) {
			return true
		}
	}
	return false
}

// EmbedderInfo describes a resolved embedder instance.
type EmbedderInfo struct {
	Provider   ProviderType
	Model      string
	Dimensions int
	Available  bool
}

// GetInfo inspects an embedder, unwrapping a CachedEmbedder to its backend.
func GetInfo(ctx context.Context, embedder Embedder) EmbedderInfo {
	info := EmbedderInfo{
		Model:      embedder.ModelName(),
		Dimensions: embedder.Dimensions(),
		Available:  embedder.Available(ctx),
	}

	inner := embedder
	if cached, ok := embedder.(*CachedEmbedder); ok {
		inner = cached.inner
	}

	switch inner.(type) {
	case *OllamaEmbedder:
		info.Provider = ProviderOllama
	default:
		info.Provider = ProviderStatic
	}
	return info
}

// MustNewEmbedder creates an embedder and panics on failure.
// Use only in tests or initialization paths where failure is fatal.
func MustNewEmbedder(ctx context.Context, provider ProviderType, model string) Embedder {
	embedder, err := NewEmbedder(ctx, provider, model)
	if err != nil {
		panic(fmt.Sprintf("failed to create embedder: %v", err))
	}
	return embedder
}

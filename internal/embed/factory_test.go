package embed

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	assert.Equal(t, ProviderStatic, ParseProvider("static"))
	assert.Equal(t, ProviderOllama, ParseProvider("ollama"))
	assert.Equal(t, ProviderOllama, ParseProvider("unknown"))
	assert.Equal(t, ProviderOllama, ParseProvider(""))
}

func TestIsValidProvider(t *testing.T) {
	assert.True(t, IsValidProvider("static"))
	assert.True(t, IsValidProvider("OLLAMA"))
	assert.False(t, IsValidProvider("mlx"))
}

func TestNewEmbedder_Static(t *testing.T) {
	embedder, err := NewEmbedder(context.Background(), ProviderStatic, "")
	require.NoError(t, err)
	require.NotNil(t, embedder)
	assert.Equal(t, 768, embedder.Dimensions())
}

func TestNewEmbedder_EnvOverride(t *testing.T) {
	os.Setenv("KNOWLEDGEENGINE_EMBEDDER", "static")
	defer os.Unsetenv("KNOWLEDGEENGINE_EMBEDDER")

	embedder, err := NewEmbedder(context.Background(), ProviderOllama, "")
	require.NoError(t, err)
	info := GetInfo(context.Background(), embedder)
	assert.Equal(t, ProviderStatic, info.Provider)
}

func TestNewEmbedder_CacheDisabled(t *testing.T) {
	os.Setenv("KNOWLEDGEENGINE_EMBED_CACHE", "false")
	defer os.Unsetenv("KNOWLEDGEENGINE_EMBED_CACHE")

	embedder, err := NewEmbedder(context.Background(), ProviderStatic, "")
	require.NoError(t, err)
	_, isCached := embedder.(*CachedEmbedder)
	assert.False(t, isCached)
}

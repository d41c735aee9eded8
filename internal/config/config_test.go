package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "localhost", cfg.QdrantHost)
	assert.Equal(t, 6334, cfg.QdrantPort)
	assert.Equal(t, 400, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.ChunkOverlap)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 20, cfg.FetchPoolSize)
	assert.InDelta(t, 0.5, cfg.MMRLambda, 1e-9)
	assert.Equal(t, 10, cfg.MaxTurns)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DOCINTEL_PORT", "9000")
	t.Setenv("CHUNK_SIZE", "512")
	t.Setenv("CHUNK_OVERLAP", "64")
	t.Setenv("RETRIEVAL_MMR_LAMBDA", "0.7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 512, cfg.ChunkSize)
	assert.Equal(t, 64, cfg.ChunkOverlap)
	assert.InDelta(t, 0.7, cfg.MMRLambda, 1e-9)
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Port = 0 }},
		{"overlap >= size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }},
		{"zero top-k", func(c *Config) { c.TopK = 0 }},
		{"pool < top-k", func(c *Config) { c.FetchPoolSize = 2; c.TopK = 5 }},
		{"lambda out of range", func(c *Config) { c.MMRLambda = 1.5 }},
		{"negative turns", func(c *Config) { c.MaxTurns = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

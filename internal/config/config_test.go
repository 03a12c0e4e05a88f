package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dferrors "github.com/docfind-go/docfind/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, defaultTierWeightMetadata, cfg.Extract.TierWeightMetadata)
	assert.Equal(t, defaultTierWeightTitle, cfg.Extract.TierWeightTitle)
	assert.Equal(t, defaultTierWeightBody, cfg.Extract.TierWeightBody)
	assert.Equal(t, defaultMaxPhraseTokens, cfg.Extract.MaxPhraseTokens)
	assert.Equal(t, int64(defaultSampleBytes), cfg.Build.SampleBytes)
	require.NoError(t, cfg.Validate())
}

func TestLoadWithoutFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Extract, cfg.Extract)
}

func TestLoadFromYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	yamlContent := "extract:\n  tier_weight_body: 2.5\n  max_phrase_tokens: 6\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docfind.yaml"), []byte(yamlContent), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.Extract.TierWeightBody)
	assert.Equal(t, 6, cfg.Extract.MaxPhraseTokens)
	// Untouched fields keep their defaults.
	assert.Equal(t, defaultTierWeightMetadata, cfg.Extract.TierWeightMetadata)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docfind.yaml"), []byte("extract: [not a map"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Equal(t, dferrors.ErrCodeInputMalformed, dferrors.GetCode(err))
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DOCFIND_TIER_WEIGHT_TITLE", "5")
	t.Setenv("DOCFIND_MAX_PHRASE_TOKENS", "7")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.Extract.TierWeightTitle)
	assert.Equal(t, 7, cfg.Extract.MaxPhraseTokens)
}

func TestValidateRejectsNonPositiveWeights(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"metadata", func(c *Config) { c.Extract.TierWeightMetadata = 0 }},
		{"title", func(c *Config) { c.Extract.TierWeightTitle = -1 }},
		{"body", func(c *Config) { c.Extract.TierWeightBody = 0 }},
		{"max-phrase-tokens", func(c *Config) { c.Extract.MaxPhraseTokens = 0 }},
		{"sample-bytes", func(c *Config) { c.Build.SampleBytes = 0 }},
		{"workers", func(c *Config) { c.Build.Workers = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, dferrors.ErrCodeBuilderInvariant, dferrors.GetCode(err))
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extract.TierWeightBody = 1.5

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.loadYAML(path))
	assert.Equal(t, 1.5, loaded.Extract.TierWeightBody)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdiff/internal/pipeline"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Source", cfg.SourceLabel)
	assert.Equal(t, "Target", cfg.TargetLabel)
	assert.Equal(t, []string{"Box", "Bag"}, cfg.ExcludePrefixes)
	assert.Equal(t, pipeline.DefaultRules(), cfg.Rules())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "out", filepath.Base(cfg.OutputDir))
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("STOCKDIFF_KEYWORDS_SOURCE_QUANTITY", "on hand, available ,")
	t.Setenv("STOCKDIFF_EXCLUDE_PREFIXES", "Box,Pallet")
	t.Setenv("STOCKDIFF_SOURCE_LABEL", "NetSuite")
	t.Setenv("STOCKDIFF_LOG_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"on hand", "available"}, cfg.SourceQuantityKeywords)
	assert.Equal(t, []string{"Box", "Pallet"}, cfg.ExcludePrefixes)
	assert.Equal(t, "NetSuite", cfg.SourceLabel)
	assert.Equal(t, "json", cfg.LogFormat)

	opts := cfg.Options()
	assert.True(t, opts.ExcludeTarget("Pallet-7"))
	assert.False(t, opts.ExcludeTarget("Bag-1"))
	assert.Equal(t, "NetSuite", opts.SourceLabel)
}

func TestLoadEmptyEnvDisablesExclusion(t *testing.T) {
	isolate(t)
	t.Setenv("STOCKDIFF_EXCLUDE_PREFIXES", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.ExcludePrefixes)
	assert.False(t, cfg.Options().ExcludeTarget("Box-1"))
	assert.Equal(t, "Source", cfg.SourceLabel)
}

func TestLoadEmptyEnvKeywordsFailValidation(t *testing.T) {
	isolate(t)
	t.Setenv("STOCKDIFF_KEYWORDS_IDENTIFIER", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keywords.identifier")
}

func TestLoadYAMLFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := []byte(`source_label: NS
target_label: WMS
target_sheet: Inventory
output_dir: /tmp/reports
keywords:
  target_quantity:
    - available to promise
    - qty
log:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "NS", cfg.SourceLabel)
	assert.Equal(t, "WMS", cfg.TargetLabel)
	assert.Equal(t, "Inventory", cfg.TargetSheet)
	assert.Equal(t, "/tmp/reports", cfg.OutputDir)
	assert.Equal(t, []string{"available to promise", "qty"}, cfg.TargetQuantityKeywords)
	assert.Equal(t, []string{"ean"}, cfg.IdentifierKeywords)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadSearchesWorkingDirectory(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("stockdiff.yaml", []byte("target_label: WMS\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "WMS", cfg.TargetLabel)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)

	broken := cfg
	broken.TargetQuantityKeywords = nil
	err = broken.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keywords.target_quantity")

	broken = cfg
	broken.SourceLabel = " "
	require.Error(t, broken.Validate())
}

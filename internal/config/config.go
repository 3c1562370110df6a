package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"stockdiff/internal/pipeline"
)

type Config struct {
	SourceLabel string
	TargetLabel string
	SourceSheet string
	TargetSheet string
	OutputDir   string

	ExcludePrefixes []string

	IdentifierKeywords     []string
	ItemKeywords           []string
	SourceQuantityKeywords []string
	TargetQuantityKeywords []string
	DescriptionKeywords    []string

	LogLevel  string
	LogFormat string
}

// Load reads .env, then the optional stockdiff.yaml, then STOCKDIFF_* env vars.
// An empty path searches the working directory and ~/.config/stockdiff.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("STOCKDIFF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// STOCKDIFF_EXCLUDE_PREFIXES="" turns the packaging filter off
	v.AllowEmptyEnv(true)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("stockdiff")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "stockdiff"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}
	outputDir := v.GetString("output_dir")
	if outputDir == "" {
		outputDir = filepath.Join(cwd, "out")
	}

	cfg := Config{
		SourceLabel: v.GetString("source_label"),
		TargetLabel: v.GetString("target_label"),
		SourceSheet: v.GetString("source_sheet"),
		TargetSheet: v.GetString("target_sheet"),
		OutputDir:   outputDir,

		ExcludePrefixes: getList(v, "exclude_prefixes"),

		IdentifierKeywords:     getList(v, "keywords.identifier"),
		ItemKeywords:           getList(v, "keywords.item"),
		SourceQuantityKeywords: getList(v, "keywords.source_quantity"),
		TargetQuantityKeywords: getList(v, "keywords.target_quantity"),
		DescriptionKeywords:    getList(v, "keywords.description"),

		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := pipeline.DefaultRules()

	v.SetDefault("source_label", "Source")
	v.SetDefault("target_label", "Target")
	v.SetDefault("source_sheet", "")
	v.SetDefault("target_sheet", "")
	v.SetDefault("output_dir", "")
	v.SetDefault("exclude_prefixes", []string{"Box", "Bag"})

	v.SetDefault("keywords.identifier", defaults.Identifier)
	v.SetDefault("keywords.item", defaults.Item)
	v.SetDefault("keywords.source_quantity", defaults.SourceQuantity)
	v.SetDefault("keywords.target_quantity", defaults.TargetQuantity)
	v.SetDefault("keywords.description", defaults.Description)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Validate rejects keyword tables that would make a required role unresolvable.
func (c Config) Validate() error {
	required := []struct {
		name  string
		value []string
	}{
		{"keywords.identifier", c.IdentifierKeywords},
		{"keywords.item", c.ItemKeywords},
		{"keywords.source_quantity", c.SourceQuantityKeywords},
		{"keywords.target_quantity", c.TargetQuantityKeywords},
	}
	for _, r := range required {
		if len(r.value) == 0 {
			return fmt.Errorf("config %s must list at least one keyword", r.name)
		}
	}
	if strings.TrimSpace(c.SourceLabel) == "" || strings.TrimSpace(c.TargetLabel) == "" {
		return errors.New("config source_label and target_label must not be empty")
	}
	return nil
}

func (c Config) Rules() pipeline.Rules {
	return pipeline.Rules{
		Identifier:     c.IdentifierKeywords,
		Item:           c.ItemKeywords,
		SourceQuantity: c.SourceQuantityKeywords,
		TargetQuantity: c.TargetQuantityKeywords,
		Description:    c.DescriptionKeywords,
	}
}

func (c Config) Options() pipeline.Options {
	return pipeline.Options{
		Rules:         c.Rules(),
		ExcludeTarget: pipeline.PrefixFilter(c.ExcludePrefixes...),
		SourceLabel:   c.SourceLabel,
		TargetLabel:   c.TargetLabel,
		SourceSheet:   c.SourceSheet,
		TargetSheet:   c.TargetSheet,
	}
}

// getList accepts YAML sequences and comma separated env values. Env values are
// split on commas only, so multi-word keywords such as "on hand" survive.
func getList(v *viper.Viper, key string) []string {
	var raw []string
	switch value := v.Get(key).(type) {
	case string:
		raw = strings.Split(value, ",")
	default:
		raw = v.GetStringSlice(key)
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

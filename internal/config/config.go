// Package config reads the optional YAML options file shared by the tools.
// Everything has a working zero-value default; a missing file is not an
// error condition the tools need to handle.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"demandest/internal/filter"
	"demandest/internal/ingest"
)

// Config selects the source-file variant and the filter behavior.
type Config struct {
	// Filter behavior; defaults to the most permissive variant.
	CategoryMode   string   `yaml:"category_mode"`
	KeywordColumns []string `yaml:"keyword_columns"`
	CaseSensitive  bool     `yaml:"case_sensitive"`
	MinKeywordLen  int      `yaml:"min_keyword_length"`

	// Variant schema requirements beyond the base columns.
	RequireCampaignName bool `yaml:"require_campaign_name"`
	RequireCategoryName bool `yaml:"require_category_name"`

	// Forced input encoding; empty means guess from the bytes.
	Encoding string `yaml:"encoding"`
}

// Default is the configuration used when no file is given: the base schema
// plus Campaign name (the shape of most source exports), permissive filter.
func Default() Config {
	return Config{RequireCampaignName: true}
}

// Load reads a YAML config file. Unknown keys are rejected so a typo in an
// option name fails loudly instead of silently reverting to a default.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %v", path, err)
	}
	// A misspelled column would make the keyword predicate match nothing.
	for _, col := range cfg.KeywordColumns {
		if !filter.ValidKeywordColumn(col) {
			return cfg, fmt.Errorf("parse config %s: unknown keyword column %q", path, col)
		}
	}
	return cfg, nil
}

// FilterOptions maps the config onto the filter option set.
func (c Config) FilterOptions() filter.Options {
	return filter.Options{
		CategoryMode:   c.CategoryMode,
		KeywordColumns: c.KeywordColumns,
		CaseSensitive:  c.CaseSensitive,
		MinKeywordLen:  c.MinKeywordLen,
	}
}

// LoadOptions maps the config onto the ingestion option set.
func (c Config) LoadOptions() ingest.Options {
	return ingest.Options{
		Encoding:            c.Encoding,
		RequireCampaignName: c.RequireCampaignName,
		RequireCategoryName: c.RequireCategoryName,
	}
}

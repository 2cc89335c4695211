// Package scoring computes the importance score of candidate news items
// from externally configured keyword and weight tables. The score
// function is pure: identical input and configuration always produce
// the identical float.
package scoring

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultTiers mirror the wire-service / named-outlet split the weights
// were tuned against; configuration overrides them.
var defaultTiers = SourceTiers{
	Tier1: []string{"reuters", "ap", "bloomberg"},
	Tier2: []string{"techcrunch", "coindesk", "the verge"},
}

// LoadConfig reads the keyword/weight table from a YAML file. Callers
// downgrade a failure to DefaultScore rather than propagating it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse keywords file: %w", err)
	}

	if len(config.SourceTiers.Tier1) == 0 {
		config.SourceTiers.Tier1 = defaultTiers.Tier1
	}
	if len(config.SourceTiers.Tier2) == 0 {
		config.SourceTiers.Tier2 = defaultTiers.Tier2
	}

	return &config, nil
}

// Score computes the importance of one candidate item. Each urgent
// keyword category contributes its weight once when any member keyword
// substring-matches the item text; trending categories likewise. One
// source tier weight and the flat freshness bonus are always added.
// A nil config yields DefaultScore.
func Score(input Input, config *Config) float64 {
	if config == nil {
		return DefaultScore
	}

	score := 0.0
	text := strings.ToLower(input.Title + " " + input.Content)

	for _, keywords := range config.UrgentKeywords {
		if anyMatch(text, keywords) {
			score += config.Weights.KeywordMatchUrgent
		}
	}

	for _, keywords := range config.TrendingKeywords {
		if anyMatch(text, keywords) {
			score += config.Weights.KeywordMatchTrending
		}
	}

	score += sourceTierWeight(input.Source, config)
	score += config.Weights.FreshnessBonus

	return score
}

func anyMatch(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if keyword != "" && strings.Contains(text, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

func sourceTierWeight(source string, config *Config) float64 {
	lowered := strings.ToLower(source)
	for _, tier1 := range config.SourceTiers.Tier1 {
		if lowered == strings.ToLower(tier1) {
			return config.Weights.SourceTier1
		}
	}
	for _, tier2 := range config.SourceTiers.Tier2 {
		if lowered == strings.ToLower(tier2) {
			return config.Weights.SourceTier2
		}
	}
	return config.Weights.SourceTier3
}

package scoring

// DefaultScore is used whenever the keyword/weight configuration is
// missing or malformed. Scoring must never fail the caller.
const DefaultScore = 1.0

// Weights holds the numeric importance weights from configuration.
type Weights struct {
	KeywordMatchUrgent   float64 `yaml:"keyword_match_urgent"`
	KeywordMatchTrending float64 `yaml:"keyword_match_trending"`
	SourceTier1          float64 `yaml:"source_tier_1"`
	SourceTier2          float64 `yaml:"source_tier_2"`
	SourceTier3          float64 `yaml:"source_tier_3"`
	FreshnessBonus       float64 `yaml:"freshness_bonus"`
}

// SourceTiers lists the outlets that receive tier 1 and tier 2 weights.
// Everything else falls into tier 3.
type SourceTiers struct {
	Tier1 []string `yaml:"tier_1"`
	Tier2 []string `yaml:"tier_2"`
}

// Config is the externally loaded keyword/weight table.
type Config struct {
	UrgentKeywords   map[string][]string `yaml:"urgent_keywords"`
	TrendingKeywords map[string][]string `yaml:"trending_keywords"`
	Weights          Weights             `yaml:"importance_weights"`
	SourceTiers      SourceTiers         `yaml:"source_tiers"`
}

// Input is one candidate item to score.
type Input struct {
	Title    string
	Content  string
	Keywords []string
	Source   string
}

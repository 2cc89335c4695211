package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath     string `long:"db-path" env:"DB_PATH" default:"data/news.db" description:"Path to the sqlite database file"`
	VectorPath string `long:"vector-path" env:"VECTOR_PATH" default:"data/vectors.json" description:"Path to the vector index snapshot file"`

	// Domain configuration files
	KeywordsFile string `long:"keywords-file" env:"KEYWORDS_FILE" default:"config/keywords.yml" description:"YAML file with keyword categories and importance weights"`
	SourcesFile  string `long:"sources-file" env:"SOURCES_FILE" default:"config/sources.yml" description:"YAML file with RSS feed sources per category"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for mutating endpoints (optional)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for collection tasks"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"900" description:"Collection scheduler interval in seconds"`
	IndexWindowHours  int    `long:"index-window" env:"INDEX_WINDOW_HOURS" default:"24" description:"Trailing window in hours for vector indexing passes"`
	RetentionDays     int    `long:"retention-days" env:"RETENTION_DAYS" default:"30" description:"Vector retention in days for cleanup passes"`

	// Embedding configuration
	EmbeddingDim int    `long:"embedding-dim" env:"EMBEDDING_DIM" default:"256" description:"Dimension of the local hashing encoder"`
	GeminiAPIKey string `long:"gemini-api-key" env:"GEMINI_API_KEY" description:"Gemini API key; when set, embeddings use the Gemini encoder"`
	GeminiModel  string `long:"gemini-model" env:"GEMINI_EMBEDDING_MODEL" default:"gemini-embedding-001" description:"Gemini embedding model name"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"NewsBrief/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		VectorPath:        raw.VectorPath,
		KeywordsFile:      raw.KeywordsFile,
		SourcesFile:       raw.SourcesFile,
		Port:              raw.Port,
		APIAccessKey:      raw.APIAccessKey,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		IndexWindowHours:  raw.IndexWindowHours,
		RetentionDays:     raw.RetentionDays,
		EmbeddingDim:      raw.EmbeddingDim,
		GeminiAPIKey:      raw.GeminiAPIKey,
		GeminiModel:       raw.GeminiModel,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}

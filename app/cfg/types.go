package cfg

type Cfg struct {
	// Storage configuration
	DBPath     string
	VectorPath string

	// Domain configuration files
	KeywordsFile string
	SourcesFile  string

	// Application configuration
	Port              string
	APIAccessKey      string
	WorkerCount       int
	SchedulerInterval int
	IndexWindowHours  int
	RetentionDays     int

	// Embedding configuration
	EmbeddingDim int
	GeminiAPIKey string
	GeminiModel  string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

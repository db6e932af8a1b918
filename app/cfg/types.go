package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	SourcesDir        string
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Crawl politeness
	RateLimit float64
	RateBurst int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

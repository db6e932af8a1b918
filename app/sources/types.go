package sources

// Config describes a single publisher integration.
type Config struct {
	Name      string    // Derived from filename (without .yml extension)
	Publisher string    `yaml:"publisher"` // Display name, e.g. "El Tiempo"
	URL       string    `yaml:"url"`       // Publisher homepage
	FeedURL   string    `yaml:"feed_url"`  // RSS/Atom feed used for article discovery
	Locale    string    `yaml:"locale"`    // Month-name language hint for date parsing, e.g. "es"
	Settings  Settings  `yaml:"settings"`
	Selectors Selectors `yaml:"selectors"`
}

type Settings struct {
	Enabled         bool    `yaml:"enabled"`
	RefreshInterval int     `yaml:"refresh_interval"` // seconds
	MaxArticles     int     `yaml:"max_articles"`     // per processing run
	Timeout         int     `yaml:"timeout"`          // seconds, per page fetch
	RateLimit       float64 `yaml:"rate_limit"`       // requests per second, overrides global
}

// Selectors is the publisher-specific fallback strategy: CSS queries used to
// recover article fields when a page carries no usable structured data.
// Only Title and Body are required for a fallback extraction to succeed.
type Selectors struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Body     string `yaml:"body"`
	Author   string `yaml:"author"`
	Date     string `yaml:"date"`
	DateAttr string `yaml:"date_attr"` // attribute holding the date, e.g. "datetime"; empty means element text
	Tags     string `yaml:"tags"`
	Category string `yaml:"category"`
	Image    string `yaml:"image"`

	// UseReadability enables generic content recovery when the body
	// selector matches nothing on a given page.
	UseReadability bool `yaml:"use_readability"`
}

// Empty reports whether no fallback strategy is configured at all.
func (s Selectors) Empty() bool {
	return s.Title == "" && s.Body == "" && s.Author == "" && s.Date == "" &&
		s.Tags == "" && s.Category == "" && s.Image == "" && !s.UseReadability
}

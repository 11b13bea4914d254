package cfg

type Cfg struct {
	// Storage configuration
	DBPath    string
	RedisAddr string

	// Application configuration
	FeedsDir          string
	Port              string
	SchedulerInterval int
	APIAccessKey      string
	Once              bool

	// Tagging configuration
	TaggingStrategy string
	OpenAIKey       string
	OpenAIModel     string

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}

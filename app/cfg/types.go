package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Provider credentials
	NewsAPIKey string
	GNewsKey   string

	// Collaborator endpoints
	SummarizerURL string
	GeoURL        string

	// Application configuration
	Port              string
	FeedsFile         string
	JWTSecret         string
	FallbackCountry   string
	WorkerCount       int
	SchedulerInterval int
	EnableDebugAPI    bool

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

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
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./newshub.db" description:"Path to the SQLite database file"`

	// Provider credentials
	NewsAPIKey string `long:"newsapi-key" env:"NEWSAPI_KEY" description:"NewsAPI.org API key (NewsAPI adapter disabled when empty)"`
	GNewsKey   string `long:"gnews-key" env:"GNEWS_API_KEY" description:"GNews API key (GNews adapter disabled when empty)"`

	// Collaborator endpoints
	SummarizerURL string `long:"summarizer-url" env:"SUMMARIZER_URL" description:"Summarizer service endpoint (summaries disabled when empty)"`
	GeoURL        string `long:"geo-url" env:"GEO_URL" default:"https://ipapi.co" description:"Geo-IP lookup service base URL"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	FeedsFile         string `long:"feeds-file" env:"FEEDS_FILE" description:"YAML file overriding the built-in RSS feed list"`
	JWTSecret         string `long:"jwt-secret" env:"JWT_SECRET" default:"supersecret" description:"Secret for signing access tokens"`
	FallbackCountry   string `long:"fallback-country" env:"FALLBACK_COUNTRY" default:"us" description:"Country code used when geo lookup fails"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for feed ingestion"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"0" description:"Background RSS refresh interval in seconds (0 disables)"`
	EnableDebugAPI    bool   `long:"enable-debug-api" env:"ENABLE_DEBUG_API" description:"Expose user-inspection debug endpoints (never in production)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"NewsHub/1.0" description:"User agent string for HTTP requests"`
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
		NewsAPIKey:        raw.NewsAPIKey,
		GNewsKey:          raw.GNewsKey,
		SummarizerURL:     raw.SummarizerURL,
		GeoURL:            raw.GeoURL,
		Port:              raw.Port,
		FeedsFile:         raw.FeedsFile,
		JWTSecret:         raw.JWTSecret,
		FallbackCountry:   raw.FallbackCountry,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		EnableDebugAPI:    raw.EnableDebugAPI,
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

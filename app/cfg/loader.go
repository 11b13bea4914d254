package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath    string `long:"db-path" env:"DB_PATH" default:"./feedhive.db" description:"Path to the sqlite database file"`
	RedisAddr string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for search indexing (optional)"`

	// Application configuration
	FeedsDir          string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed configuration files"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"300" description:"Ingestion interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	Once              bool   `long:"once" env:"RUN_ONCE" description:"Run a single ingestion pass and exit"`

	// Tagging configuration
	TaggingStrategy string `long:"tagging-strategy" env:"TAGGING_STRATEGY" default:"categories" description:"Tagging strategy (categories, openai, fixed)"`
	OpenAIKey       string `long:"openai-key" env:"OPENAI_API_KEY" description:"OpenAI API key (required for the openai strategy)"`
	OpenAIModel     string `long:"openai-model" env:"OPENAI_MODEL" description:"OpenAI model for the openai strategy"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"FeedHive/1.0" description:"User agent string for HTTP requests"`
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
		RedisAddr:         raw.RedisAddr,
		FeedsDir:          raw.FeedsDir,
		Port:              raw.Port,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		Once:              raw.Once,
		TaggingStrategy:   raw.TaggingStrategy,
		OpenAIKey:         raw.OpenAIKey,
		OpenAIModel:       raw.OpenAIModel,
		UserAgent:         raw.UserAgent,
		Debug:             raw.Debug,
		Version:           GetVersion(),
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

package cfg

import (
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	if Version != "" {
		return Version
	}
	return "unknown"
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"pulse_user" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"pulse_password" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"pulse" description:"Database name"`

	// Pipeline configuration
	SeedsDir                string `long:"seeds-dir" env:"SEEDS_DIR" default:"./seeds" description:"Directory containing taxonomy seed files"`
	WorkerCount             int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for article processing"`
	SchedulerInterval       int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler interval in seconds"`
	TaxonomyRefreshInterval int    `long:"taxonomy-refresh-interval" env:"TAXONOMY_REFRESH_INTERVAL" default:"300" description:"Taxonomy cache refresh interval in seconds"`
	HomeCountry             string `long:"home-country" env:"HOME_COUNTRY" default:"Colombia" description:"Home country for geographic eligibility"`
	ReferenceCity           string `long:"reference-city" env:"REFERENCE_CITY" default:"Medellín" description:"City of the reference business used for suitability refinement"`

	// LLM cross-check configuration
	LLMEnabled  bool   `long:"llm-enabled" env:"LLM_ENABLED" description:"Enable the LLM extraction cross-check"`
	LLMEndpoint string `long:"llm-endpoint" env:"LLM_ENDPOINT" default:"http://localhost:11434" description:"Ollama-compatible inference endpoint"`
	LLMModel    string `long:"llm-model" env:"LLM_MODEL" default:"llama3.2:1b" description:"Model name for LLM extraction"`
	LLMTimeout  int    `long:"llm-timeout" env:"LLM_TIMEOUT" default:"30" description:"LLM request timeout in seconds"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"America/Bogota" description:"Timezone for timestamps (e.g., UTC, America/Bogota)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
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
		DBHost:                  raw.DBHost,
		DBPort:                  raw.DBPort,
		DBUser:                  raw.DBUser,
		DBPassword:              raw.DBPassword,
		DBName:                  raw.DBName,
		SeedsDir:                raw.SeedsDir,
		WorkerCount:             raw.WorkerCount,
		SchedulerInterval:       raw.SchedulerInterval,
		TaxonomyRefreshInterval: raw.TaxonomyRefreshInterval,
		HomeCountry:             raw.HomeCountry,
		ReferenceCity:           raw.ReferenceCity,
		LLMEnabled:              raw.LLMEnabled,
		LLMEndpoint:             raw.LLMEndpoint,
		LLMModel:                raw.LLMModel,
		LLMTimeout:              raw.LLMTimeout,
		Timezone:                raw.Timezone,
		Debug:                   raw.Debug,
		Version:                 GetVersion(),
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

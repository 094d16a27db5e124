// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// PostgresConfig describes the job-store Postgres connection.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
	SSLMode  string
}

// LLMConfig holds the genai client credentials and per-stage timeouts.
type LLMConfig struct {
	APIKey string
	Model  string

	GateTimeout            time.Duration
	IntentTimeout          time.Duration
	FiltersTimeout         time.Duration
	RouteMapperTimeout     time.Duration
	AssistantTimeout       time.Duration
	CuisineEnforcerTimeout time.Duration
}

// CacheConfig carries the L1/L2 tunables from §6.
type CacheConfig struct {
	L1MaxEntries      int
	L1MaxTTL          time.Duration
	L2DefaultTTL      time.Duration
	L2EmptyTTL        time.Duration
	CanonicalQueryTTL time.Duration
	LandmarkResTTL    time.Duration
	SamplingRate      float64
}

// JobStoreConfig carries staleness/heartbeat/dedupe tunables from §6.
type JobStoreConfig struct {
	MaxRunningJobAge      time.Duration
	DoneSuccessFreshWindow time.Duration
	HeartbeatInterval     time.Duration
}

// RedisConfig describes the shared L2 cache / ticket single-use store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TicketConfig describes the WebSocket ticket signer.
type TicketConfig struct {
	Secret string
	TTL    time.Duration
}

// ProviderConfig describes the outbound Places API client.
type ProviderConfig struct {
	BaseURL          string
	APIKey           string
	Timeout          time.Duration
	RequestsPerSecond float64
	LanguagePolicy   string // "queryLanguage" (active) | "regionDefault" (legacy)
}

// Config is the process-wide configuration record, loaded once at startup.
type Config struct {
	ServerPort        string
	PprofPort         string
	MetricsAddr       string
	FilterEnforcerTimeout time.Duration

	Postgres  PostgresConfig
	LLM       LLMConfig
	Cache     CacheConfig
	JobStore  JobStoreConfig
	Redis     RedisConfig
	Ticket    TicketConfig
	Provider  ProviderConfig
}

// Load reads the process configuration from the environment, applying the
// defaults from spec §6 where a variable is unset.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:  getEnvOrDefault("SERVER_PORT", "8080"),
		PprofPort:   getEnvOrDefault("PPROF_PORT", "6060"),
		MetricsAddr: getEnvOrDefault("METRICS_ADDR", ":9092"),
		FilterEnforcerTimeout: durationMsOrDefault("FILTER_ENFORCER_TIMEOUT_MS", 4000),

		Postgres: PostgresConfig{
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
			User:     getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DB:       getEnvOrDefault("POSTGRES_DB", "placesearch"),
			SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		},
		LLM: LLMConfig{
			APIKey:                 os.Getenv("GENAI_API_KEY"),
			Model:                  getEnvOrDefault("GENAI_MODEL", "gemini-2.0-flash"),
			GateTimeout:            durationMsOrDefault("LLM_TIMEOUT_GATE_MS", 3500),
			IntentTimeout:          durationMsOrDefault("LLM_TIMEOUT_INTENT_MS", 3500),
			FiltersTimeout:         durationMsOrDefault("LLM_TIMEOUT_FILTERS_MS", 4500),
			RouteMapperTimeout:     durationMsOrDefault("LLM_TIMEOUT_ROUTE_MAPPER_MS", 3500),
			AssistantTimeout:       durationMsOrDefault("LLM_TIMEOUT_ASSISTANT_MS", 3000),
			CuisineEnforcerTimeout: durationMsOrDefault("LLM_TIMEOUT_CUISINE_ENFORCER_MS", 4000),
		},
		Cache: CacheConfig{
			L1MaxEntries:      intOrDefault("L1_MAX_ENTRIES", 500),
			L1MaxTTL:          durationSOrDefault("L1_MAX_TTL_S", 60),
			L2DefaultTTL:      durationSOrDefault("L2_DEFAULT_TTL_S", 900),
			L2EmptyTTL:        durationSOrDefault("L2_EMPTY_TTL_S", 120),
			CanonicalQueryTTL: durationSOrDefault("CANONICAL_QUERY_TTL_S", 86400),
			LandmarkResTTL:    durationSOrDefault("LANDMARK_RESOLUTION_TTL_S", 604800),
			SamplingRate:      floatOrDefault("CACHE_SAMPLING_RATE", 0.05),
		},
		JobStore: JobStoreConfig{
			MaxRunningJobAge:       durationMsOrDefault("MAX_RUNNING_JOB_AGE_MS", 90000),
			DoneSuccessFreshWindow: durationMsOrDefault("DONE_SUCCESS_FRESH_WINDOW_MS", 5000),
			HeartbeatInterval:      durationMsOrDefault("HEARTBEAT_INTERVAL_MS", 15000),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       intOrDefault("REDIS_DB", 0),
		},
		Ticket: TicketConfig{
			Secret: os.Getenv("WS_TICKET_SECRET"),
			TTL:    60 * time.Second,
		},
		Provider: ProviderConfig{
			BaseURL:           getEnvOrDefault("PLACES_BASE_URL", "https://places.googleapis.com"),
			APIKey:            os.Getenv("PLACES_API_KEY"),
			Timeout:           durationMsOrDefault("PROVIDER_TIMEOUT_MS", 5000),
			RequestsPerSecond: floatOrDefault("PROVIDER_RPS", 10),
			LanguagePolicy:    getEnvOrDefault("PROVIDER_LANGUAGE_POLICY", "queryLanguage"),
		},
	}

	if cfg.Postgres.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.Ticket.Secret == "" {
		return nil, fmt.Errorf("WS_TICKET_SECRET is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intOrDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func floatOrDefault(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func durationMsOrDefault(key string, defMs int) time.Duration {
	return time.Duration(intOrDefault(key, defMs)) * time.Millisecond
}

func durationSOrDefault(key string, defS int) time.Duration {
	return time.Duration(intOrDefault(key, defS)) * time.Second
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	Latitude  float64
	Longitude float64
	Timezone  string

	// ProviderKeys carries every non-empty WX_-prefixed variable beyond the
	// required location settings, so provider modules can read their secrets
	// without this package depending on them.
	ProviderKeys map[string]string

	SQLitePath string
	JSONLRoot  string

	KafkaBrokers   []string
	KafkaSinkTopic string
	KafkaEnabled   bool

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	RunInterval     time.Duration

	ProviderTimeout time.Duration
	ProviderRetries int
}

var requiredKeys = []string{"WX_LAT", "WX_LON", "WX_TZ"}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is merged in first when
// present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnviron(os.Environ())
}

func fromEnviron(environ []string) (*Config, error) {
	env := make(map[string]string, len(environ))
	for _, entry := range environ {
		if key, value, ok := strings.Cut(entry, "="); ok {
			env[key] = value
		}
	}
	return FromMap(env)
}

// FromMap validates a plain environment mapping. Split out from Load so
// tests can exercise validation without touching the process environment.
func FromMap(env map[string]string) (*Config, error) {
	latitude, err := parseCoordinate(env, "WX_LAT", -90.0, 90.0)
	if err != nil {
		return nil, err
	}
	longitude, err := parseCoordinate(env, "WX_LON", -180.0, 180.0)
	if err != nil {
		return nil, err
	}
	timezone, err := parseTimezone(env)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := parseDuration(env, "SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	runInterval, err := parseDuration(env, "RUN_INTERVAL", 0)
	if err != nil {
		return nil, err
	}
	providerTimeout, err := parseDuration(env, "PROVIDER_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Latitude:        latitude,
		Longitude:       longitude,
		Timezone:        timezone,
		ProviderKeys:    collectProviderKeys(env),
		SQLitePath:      envOrDefault(env, "SQLITE_PATH", "data/wxbench.sqlite"),
		JSONLRoot:       envOrDefault(env, "JSONL_ROOT", "data"),
		KafkaBrokers:    parseBrokers(envOrDefault(env, "KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:  envOrDefault(env, "KAFKA_SINK_TOPIC", "weather-data-points"),
		KafkaEnabled:    envOrDefault(env, "KAFKA_ENABLED", "false") == "true",
		HTTPAddr:        envOrDefault(env, "HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault(env, "LOG_LEVEL", "info"),
		LogFormat:       envOrDefault(env, "LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		RunInterval:     runInterval,
		ProviderTimeout: providerTimeout,
		ProviderRetries: parseRetries(env),
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
		}
	}

	return cfg, nil
}

// ProviderKey returns the named WX_ secret, empty when unset.
func (c *Config) ProviderKey(name string) string {
	return c.ProviderKeys[name]
}

func parseCoordinate(env map[string]string, key string, min, max float64) (float64, error) {
	raw, ok := env[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("missing required configuration: %s", key)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("%s must be between %g and %g", key, min, max)
	}
	return value, nil
}

func parseTimezone(env map[string]string) (string, error) {
	raw, ok := env["WX_TZ"]
	if !ok || strings.TrimSpace(raw) == "" {
		return "", errors.New("missing required configuration: WX_TZ")
	}
	if _, err := time.LoadLocation(raw); err != nil {
		return "", fmt.Errorf("WX_TZ must be a valid IANA timezone, got: %s", raw)
	}
	return raw, nil
}

func collectProviderKeys(env map[string]string) map[string]string {
	keys := make(map[string]string)
	for key, value := range env {
		if !strings.HasPrefix(key, "WX_") || value == "" {
			continue
		}
		required := false
		for _, req := range requiredKeys {
			if key == req {
				required = true
				break
			}
		}
		if !required {
			keys[key] = value
		}
	}
	return keys
}

func parseDuration(env map[string]string, key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := env[key]
	if !ok || raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseRetries(env map[string]string) int {
	if s := env["PROVIDER_RETRIES"]; s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return 2
}

func parseBrokers(raw string) []string {
	var brokers []string
	for _, broker := range strings.Split(raw, ",") {
		if b := strings.TrimSpace(broker); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok && v != "" {
		return v
	}
	return fallback
}

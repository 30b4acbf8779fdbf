package metrics

import "github.com/BTreeMap/PlayaBooth/internal/util"

// Config holds OTEL exporter configuration.
type Config struct {
	Endpoint string
	Enabled  bool
	Insecure bool
}

// LoadConfig loads OTEL configuration from environment variables.
func LoadConfig() Config {
	return Config{
		Endpoint: util.EnvOrDefault("PLAYABOOTH_OTEL_ENDPOINT", ""),
		Enabled:  util.ParseBoolEnv("PLAYABOOTH_OTEL_ENABLED", false),
		Insecure: util.ParseBoolEnv("PLAYABOOTH_OTEL_INSECURE", false),
	}
}

package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the lookup service.
type Config struct {
	Addr              string   `env:"ADDR,default=:5000"`
	DBDSN             string   `env:"DB_DSN,required"`
	AllowedOrigins    []string `env:"CORS_ALLOWED_ORIGINS,default=*"`
	OTLPEndpoint      string   `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	RequestsPerMinute int      `env:"REQUESTS_PER_MINUTE,default=600"`
	RedirectURL       string   `env:"REDIRECT_URL,default=https://www.suse.com/solutions/public-cloud/"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	ModelPath     string `env:"MODEL_PATH,required"`
	DataPath      string `env:"DATA_PATH"`
	DatasetSource string `env:"DATASET_SOURCE" envDefault:"csv"` // csv | postgres

	DropdownTTL   time.Duration `env:"DROPDOWN_TTL" envDefault:"1h"`
	BrandModelTTL time.Duration `env:"BRAND_MODEL_TTL" envDefault:"24h"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	GuestRateWindow time.Duration `env:"GUEST_RATE_WINDOW" envDefault:"1m"`
	GuestRateMax    int           `env:"GUEST_RATE_MAX" envDefault:"10"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

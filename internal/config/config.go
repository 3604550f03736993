package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort          string `env:"HTTP_PORT" envDefault:"3000"`
	DatabaseURL       string `env:"DATABASE_URL,required"`
	StaticDir         string `env:"STATIC_DIR" envDefault:"./www"`
	RedisAddr         string `env:"REDIS_ADDR"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisDB           int    `env:"REDIS_DB" envDefault:"0"`
	SessionTTLMinutes int    `env:"SESSION_TTL_MINUTES" envDefault:"0"`
	WSSendBuffer      int    `env:"WS_SEND_BUFFER" envDefault:"256"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

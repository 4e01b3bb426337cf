package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"monitor.db"`

	Stripe Stripe `envPrefix:"STRIPE_"`
	JWT    JWT    `envPrefix:"JWT_"`
}

type Stripe struct {
	SecretKey string `env:"SECRET_KEY"`
	// WebhookSecret empty disables signature verification; only
	// acceptable for local development against the stripe CLI.
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	ClientID      string `env:"CLIENT_ID"`
	RedirectURL   string `env:"REDIRECT_URL"`
}

type JWT struct {
	Secret string        `env:"SECRET"`
	TTL    time.Duration `env:"TTL" envDefault:"24h"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// PortalConfig centraliza la configuracion del portal (cliente de la API).
type PortalConfig struct {
	HTTPPort           string        `env:"PORTAL_HTTP_PORT" envDefault:"8081"`
	APIBaseURL         string        `env:"API_BASE_URL,required,notEmpty"`
	APITimeout         time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
	SessionStore       string        `env:"SESSION_STORE" envDefault:"file"`
	SessionFile        string        `env:"SESSION_FILE"`
	SessionNamespace   string        `env:"SESSION_NAMESPACE" envDefault:"default"`
	RedisAddr          string        `env:"REDIS_ADDR"`
	RedisPassword      string        `env:"REDIS_PASSWORD"`
	RedisDB            int           `env:"REDIS_DB" envDefault:"0"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	AuthRatePerMinute  int           `env:"AUTH_RATE_PER_MINUTE" envDefault:"30"`
}

// DevAPIConfig configura la API remota de desarrollo.
type DevAPIConfig struct {
	HTTPPort             string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL          string `env:"DATABASE_URL"`
	JWTSecret            string `env:"JWT_SECRET,required,notEmpty"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"60"`
	JWTRememberTTLHours  int    `env:"JWT_REMEMBER_TTL_HOURS" envDefault:"720"`
	SMTPHost             string `env:"SMTP_HOST"`
	SMTPPort             int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser             string `env:"SMTP_USER"`
	SMTPPass             string `env:"SMTP_PASS"`
	SMTPFrom             string `env:"SMTP_FROM"`
	SMTPFromName         string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS           bool   `env:"SMTP_USE_TLS" envDefault:"false"`
	RedisAddr            string `env:"REDIS_ADDR"`
	RedisPassword        string `env:"REDIS_PASSWORD"`
	RedisDB              int    `env:"REDIS_DB" envDefault:"0"`
	OTPRequestsPerWindow int    `env:"OTP_REQUESTS_PER_WINDOW" envDefault:"3"`
}

// LoadPortalConfig carga la configuracion del portal desde variables de entorno.
func LoadPortalConfig() (*PortalConfig, error) {
	var cfg PortalConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDevAPIConfig carga la configuracion de la API de desarrollo.
func LoadDevAPIConfig() (*DevAPIConfig, error) {
	var cfg DevAPIConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

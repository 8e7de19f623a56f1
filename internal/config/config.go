package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/suchimauz/cist-schedule-api/internal/core/domain"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvStage      Environment = "stage"
	EnvProduction Environment = "production"
)

type Config struct {
	App struct {
		Version  string      `env:"APP_VERSION" envDefault:"local"`
		Env      Environment `env:"APP_ENV" envDefault:"local"`
		Timezone string      `env:"APP_TIMEZONE" envDefault:"Europe/Kyiv"`
	}

	HTTP struct {
		Port string `env:"HTTP_SERVER_PORT" envDefault:"8080"`
		Host string `env:"HTTP_SERVER_HOST" envDefault:"localhost"`
	}

	Log struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"console"`
	}

	Groups struct {
		File string `env:"GROUPS_FILE" envDefault:"groups.txt"`
	}

	Cist struct {
		BaseURL      string        `env:"CIST_BASE_URL" envDefault:"https://cist.nure.ua/ias/app/tt/f"`
		UserAgent    string        `env:"CIST_USER_AGENT" envDefault:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"`
		Timeout      time.Duration `env:"CIST_TIMEOUT" envDefault:"15s"`
		MaxBodyBytes int64         `env:"CIST_MAX_BODY_BYTES" envDefault:"8388608"`

		LessonTypeMarkersString string `env:"LESSON_TYPE_MARKERS"`
		LessonTypeMarkers       []domain.LessonTypeMarker
	}

	Cache struct {
		Size int           `env:"CACHE_SIZE" envDefault:"100"`
		TTL  time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	}

	RabbitMQ struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED"`
		URL      string `env:"RABBITMQ_URL"`
		Queue    string `env:"RABBITMQ_QUEUE" envDefault:"cist-schedule-svc.cache"`
		Exchange string `env:"RABBITMQ_EXCHANGE" envDefault:"cist"`
		Bind     string `env:"RABBITMQ_BIND" envDefault:"*.cist-schedule-svc.#"`
	}
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Приведение окружения к нижнему регистру для унификации
	cfg.App.Env = Environment(strings.ToLower(string(cfg.App.Env)))

	// Маркеры типов занятий, порядок из строки сохраняется
	cfg.Cist.LessonTypeMarkers = domain.DefaultLessonTypeMarkers
	if cfg.Cist.LessonTypeMarkersString != "" {
		markers, err := domain.ParseLessonTypeMarkers(cfg.Cist.LessonTypeMarkersString)
		if err != nil {
			return nil, err
		}
		if len(markers) > 0 {
			cfg.Cist.LessonTypeMarkers = markers
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Cache.Size <= 0 {
		return fmt.Errorf("CACHE_SIZE must be positive, got %d", c.Cache.Size)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.Cache.TTL)
	}
	if c.Cist.Timeout <= 0 {
		return fmt.Errorf("CIST_TIMEOUT must be positive, got %s", c.Cist.Timeout)
	}
	if c.Cist.BaseURL == "" {
		return errors.New("CIST_BASE_URL is empty")
	}
	if c.RabbitMQ.Enabled && c.RabbitMQ.URL == "" {
		return errors.New("RABBITMQ_URL is required when RABBITMQ_ENABLED is set")
	}
	return nil
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) IsNotLocal() bool {
	return c.App.Env == EnvDev || c.App.Env == EnvStage || c.App.Env == EnvProduction
}

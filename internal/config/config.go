package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EventsDriverMemory = "memory"
	EventsDriverRedis  = "redis"
)

var ErrUnknownEventsDriver = errors.New("unknown events driver")

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort  string    `yaml:"http-port" env:"HTTP_PORT" env-default:"4000"`
	CORS      CORS      `yaml:"cors"`
	Registry  Registry  `yaml:"registry"`
	Events    Events    `yaml:"events"`
	Redis     Redis     `yaml:"redis"`
	WebSocket WebSocket `yaml:"websocket"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed-origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
}

type Registry struct {
	IdleTTL       time.Duration `yaml:"idle-ttl" env:"REGISTRY_IDLE_TTL" env-default:"2h"`
	SweepInterval time.Duration `yaml:"sweep-interval" env:"REGISTRY_SWEEP_INTERVAL" env-default:"5m"`
}

type Events struct {
	Driver string `yaml:"driver" env:"EVENTS_DRIVER" env-default:"memory"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type WebSocket struct {
	PingInterval time.Duration `yaml:"ping-interval" env:"WS_PING_INTERVAL" env-default:"30s"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// Load reads path and applies env overrides. A missing file is not an error:
// defaults and the environment are used instead.
func Load(path string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else if err = cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) validate() error {
	switch that.Events.Driver {
	case EventsDriverMemory, EventsDriverRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventsDriver, that.Events.Driver)
	}

	if that.Registry.SweepInterval <= 0 {
		return fmt.Errorf("registry.sweep-interval must be positive, got %s", that.Registry.SweepInterval)
	}

	if that.WebSocket.PingInterval <= 0 {
		return fmt.Errorf("websocket.ping-interval must be positive, got %s", that.WebSocket.PingInterval)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
